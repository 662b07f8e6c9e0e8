package handlers

import (
	"product-template-service/internal/governance"
	"product-template-service/internal/services"

	"github.com/gofiber/fiber/v3"
)

const APIPrefix = "/template/protected/api/v1"

// Dependencies is what the HTTP surface is built from. Board may be nil when
// an external governance system settles proposals.
type Dependencies struct {
	Registry  *services.TemplateRegistry
	Factory   *services.PolicyFactory
	Access    services.AccessControl
	Board     *governance.Board
	JWTSecret string
}

// NewApp builds the fiber app with every route registered.
func NewApp(deps Dependencies) *fiber.App {
	app := fiber.New()
	mw := NewMiddleware(deps.JWTSecret)

	app.Use(mw.RequestID())
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Template service is healthy")
	})

	protected := app.Group(APIPrefix, mw.Authenticate())
	NewTemplateHandler(deps.Registry).Register(protected)
	NewPolicyHandler(deps.Factory).Register(protected)
	NewAdminHandler(deps.Registry, deps.Access, deps.Board).Register(protected)
	return app
}
