package handlers

import (
	"log/slog"
	"net/http"

	"product-template-service/internal/models"
	"product-template-service/internal/services"
	"product-template-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

type PolicyHandler struct {
	factory *services.PolicyFactory
}

func NewPolicyHandler(factory *services.PolicyFactory) *PolicyHandler {
	return &PolicyHandler{factory: factory}
}

func (ph *PolicyHandler) Register(router fiber.Router) {
	router.Post("/templates/:id/policies", ph.CreatePolicy)
	router.Post("/templates/:id/quote", ph.QuotePremium)
	router.Get("/templates/:id/policies", ph.GetPoliciesByTemplate)

	policyGroup := router.Group("/policies")
	policyGroup.Get("/count", ph.GetPolicyCount)
	policyGroup.Get("/holder/:holder", ph.GetPoliciesByHolder)
	policyGroup.Get("/:id", ph.GetPolicy)
}

// CreatePolicy issues a policy to the authenticated caller.
func (ph *PolicyHandler) CreatePolicy(c fiber.Ctx) error {
	templateID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "INVALID_ID", "Invalid template id")
	}
	var req models.CreatePolicyRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return badRequest(c, "INVALID_REQUEST", "Invalid request body")
	}

	policyID, err := ph.factory.CreatePolicyFromTemplate(c.Context(), caller(c), templateID, req)
	if err != nil {
		return respondError(c, err)
	}
	policy, err := ph.factory.GetTemplatePolicy(c.Context(), policyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(policy))
}

func (ph *PolicyHandler) QuotePremium(c fiber.Ctx) error {
	templateID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "INVALID_ID", "Invalid template id")
	}
	var req models.CreatePolicyRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return badRequest(c, "INVALID_REQUEST", "Invalid request body")
	}

	quote, err := ph.factory.QuotePremium(c.Context(), templateID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(quote))
}

func (ph *PolicyHandler) GetPolicy(c fiber.Ctx) error {
	policyID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "INVALID_ID", "Invalid policy id")
	}
	policy, err := ph.factory.GetTemplatePolicy(c.Context(), policyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(policy))
}

func (ph *PolicyHandler) GetPoliciesByTemplate(c fiber.Ctx) error {
	templateID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "INVALID_ID", "Invalid template id")
	}
	start, limit, ok := parsePage(c)
	if !ok {
		return badRequest(c, "INVALID_PAGINATION_PARAMS", "start and limit must be non-negative integers")
	}

	policies, err := ph.factory.GetPoliciesByTemplate(c.Context(), templateID, start, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateListResponse(policies, uint64(len(policies))))
}

func (ph *PolicyHandler) GetPoliciesByHolder(c fiber.Ctx) error {
	start, limit, ok := parsePage(c)
	if !ok {
		return badRequest(c, "INVALID_PAGINATION_PARAMS", "start and limit must be non-negative integers")
	}

	policies, err := ph.factory.GetPoliciesByHolder(c.Context(), c.Params("holder"), start, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateListResponse(policies, uint64(len(policies))))
}

func (ph *PolicyHandler) GetPolicyCount(c fiber.Ctx) error {
	count, err := ph.factory.GetTemplatePolicyCount(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"count": count}))
}
