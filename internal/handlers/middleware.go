package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"product-template-service/internal/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	callerKey    = "caller"
	requestIDKey = "request_id"

	HeaderUserID    = "X-User-ID"
	HeaderRequestID = "X-Request-ID"
)

// Claims is the token body issued by the auth service.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type Middleware struct {
	jwtSecret []byte
}

// NewMiddleware verifies bearer tokens when jwtSecret is set. Without a secret the
// caller is taken from the X-User-ID header written by the API gateway.
func NewMiddleware(jwtSecret string) *Middleware {
	m := &Middleware{}
	if jwtSecret != "" {
		m.jwtSecret = []byte(jwtSecret)
	}
	return m
}

// RequestID tags each request with the incoming X-Request-ID or a fresh uuid.
func (m *Middleware) RequestID() fiber.Handler {
	return func(c fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(requestIDKey, id)
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}

// Authenticate resolves the caller. Reads may stay anonymous; any other method
// needs an identity.
func (m *Middleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		caller, err := m.resolveCaller(c)
		if err != nil {
			slog.Warn("token validation failed", "error", err, "request_id", requestID(c))
			return c.Status(http.StatusUnauthorized).JSON(utils.CreateErrorResponse("INVALID_TOKEN", "token validation failed"))
		}
		if caller == "" && c.Method() != fiber.MethodGet {
			return c.Status(http.StatusUnauthorized).JSON(utils.CreateErrorResponse("MISSING_TOKEN", "caller identity required"))
		}
		c.Locals(callerKey, caller)
		return c.Next()
	}
}

func (m *Middleware) resolveCaller(c fiber.Ctx) (string, error) {
	if m.jwtSecret == nil {
		return strings.TrimSpace(c.Get(HeaderUserID)), nil
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", nil
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := m.VerifyToken(tokenString)
	if err != nil {
		return "", err
	}
	if claims.UserID != "" {
		return claims.UserID, nil
	}
	if claims.Subject != "" {
		return claims.Subject, nil
	}
	return "", fmt.Errorf("token carries no user id")
}

func (m *Middleware) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.jwtSecret, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func caller(c fiber.Ctx) string {
	id, _ := c.Locals(callerKey).(string)
	return id
}

func requestID(c fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}
