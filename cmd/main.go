package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"product-template-service/internal/config"
	"product-template-service/internal/database/postgres"
	"product-template-service/internal/database/redis"
	"product-template-service/internal/event"
	"product-template-service/internal/governance"
	"product-template-service/internal/handlers"
	"product-template-service/internal/repository"
	"product-template-service/internal/services"
)

func setupLogging(logDir string) (*os.File, error) {
	fmt.Println("Log directory:", logDir)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logFileName := fmt.Sprintf("log_%s.log", time.Now().Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	if absPath, err := filepath.Abs(logFile); err == nil {
		fmt.Printf("Logging to %s\n", absPath)
	}

	handler := slog.NewJSONHandler(io.MultiWriter(os.Stdout, file), &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(handler))
	return file, nil
}

func openStore(ctx context.Context, cfg *config.TemplateServiceConfig) (repository.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		slog.Warn("using in-memory store, state is lost on restart")
		return repository.NewMemoryStore(), func() {}, nil
	case config.StorePostgres:
		slog.Info("Connecting to PostgreSQL",
			"host", cfg.PostgresCfg.Host, "port", cfg.PostgresCfg.Port,
			"user", cfg.PostgresCfg.Username, "dbname", cfg.PostgresCfg.DBname)
		db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
		if err != nil {
			slog.Error("error connect to database", "error", err)
			retryCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()
			if db, err = postgres.RetryConnectOnFailed(retryCtx, 30*time.Second, cfg.PostgresCfg); err != nil {
				return nil, nil, fmt.Errorf("database unavailable: %w", err)
			}
		}
		return repository.NewPostgresStore(db), func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func main() {
	cfg := config.New()

	logFile, err := setupLogging(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		log.Fatalf("Failed to load registry rules: %v", err)
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	opts := []services.Option{services.WithClock(services.SystemClock{})}

	if cfg.RedisCfg.Enabled {
		client, err := redis.Connect(cfg.RedisCfg)
		if err != nil {
			slog.Error("redis unavailable, template cache disabled", "error", err)
		} else {
			defer client.Close()
			opts = append(opts, services.WithCache(repository.NewTemplateCache(client, repository.DefaultTemplateCacheTTL)))
		}
	}

	if cfg.RabbitMQCfg.Enabled {
		conn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
		if err != nil {
			slog.Error("rabbitmq unavailable, template events disabled", "error", err)
		} else {
			defer conn.Close()
			opts = append(opts, services.WithPublisher(event.NewTemplatePublisher(conn)))
		}
	}

	access, err := services.NewAccessControl(cfg.RegistryAdmin, cfg.GovernanceMembers)
	if err != nil {
		log.Fatalf("Invalid access configuration: %v", err)
	}

	board := governance.NewBoard()
	registry, err := services.NewTemplateRegistry(store, board, rules.Validation, access, opts...)
	if err != nil {
		log.Fatalf("Invalid validation rules: %v", err)
	}
	calculator, err := services.NewPremiumCalculator(rules.Pricing)
	if err != nil {
		log.Fatalf("Invalid pricing configuration: %v", err)
	}
	factory := services.NewPolicyFactory(store, calculator, opts...)

	app := handlers.NewApp(handlers.Dependencies{
		Registry:  registry,
		Factory:   factory,
		Access:    access,
		Board:     board,
		JWTSecret: cfg.JWTSecret,
	})

	go func() {
		<-ctx.Done()
		slog.Info("shutting down template service")
		if err := app.Shutdown(); err != nil {
			slog.Error("failed to shut down server", "error", err)
		}
	}()

	slog.Info("Starting template-service", "port", cfg.Port, "store", cfg.StoreDriver, "admin", access.Admin())
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
