package config

import (
	"os"
	"strings"
)

type TemplateServiceConfig struct {
	Port              string
	LogDir            string
	StoreDriver       string
	RulesFile         string
	JWTSecret         string
	RegistryAdmin     string
	GovernanceMembers []string
	PostgresCfg       PostgresConfig
	RabbitMQCfg       RabbitMQConfig
	RedisCfg          RedisConfig
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RabbitMQConfig struct {
	Host     string
	Username string
	Password string
	Port     string
	Enabled  bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

func New() *TemplateServiceConfig {
	return &TemplateServiceConfig{
		Port:              getEnvOrDefault("PORT", "8086"),
		LogDir:            getEnvOrDefault("LOG_DIR", "/agrisa/log/template_service"),
		StoreDriver:       getEnvOrDefault("STORE_DRIVER", StoreMemory),
		RulesFile:         getEnvOrDefault("RULES_FILE", ""),
		JWTSecret:         getEnvOrDefault("JWT_SECRET", ""),
		RegistryAdmin:     getEnvOrDefault("REGISTRY_ADMIN", "admin"),
		GovernanceMembers: splitList(getEnvOrDefault("GOVERNANCE_MEMBERS", "")),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "product_templates"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RabbitMQCfg: RabbitMQConfig{
			Host:     getEnvOrDefault("RABBITMQ_HOST", "localhost"),
			Username: getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "admin"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
			Enabled:  getEnvOrDefault("RABBITMQ_ENABLED", "false") == "true",
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       0,
			Enabled:  getEnvOrDefault("REDIS_ENABLED", "false") == "true",
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
