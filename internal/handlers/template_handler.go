package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"product-template-service/internal/models"
	"product-template-service/internal/services"
	"product-template-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

type TemplateHandler struct {
	registry *services.TemplateRegistry
}

func NewTemplateHandler(registry *services.TemplateRegistry) *TemplateHandler {
	return &TemplateHandler{registry: registry}
}

func (th *TemplateHandler) Register(router fiber.Router) {
	templateGroup := router.Group("/templates")

	// static paths go before /:id
	templateGroup.Post("/", th.CreateTemplate)
	templateGroup.Post("/lint", th.LintTemplate)
	templateGroup.Get("/active", th.GetActiveTemplates)
	templateGroup.Get("/count", th.GetTemplateCount)
	templateGroup.Get("/status/:status", th.GetTemplatesByStatus)
	templateGroup.Get("/category/:category", th.GetTemplatesByCategory)

	templateGroup.Get("/:id", th.GetTemplate)
	templateGroup.Patch("/:id", th.UpdateTemplate)
	templateGroup.Post("/:id/submit", th.SubmitTemplate)
	templateGroup.Post("/:id/approval-proposals", th.ProposeApproval)
	templateGroup.Post("/:id/rejection-proposals", th.ProposeRejection)
	templateGroup.Post("/:id/proposals/:proposalID/execute", th.ExecuteProposal)
	templateGroup.Post("/:id/deploy", th.DeployTemplate)
	templateGroup.Post("/:id/retire", th.RetireTemplate)
	templateGroup.Post("/:id/archive", th.ArchiveTemplate)
}

func (th *TemplateHandler) CreateTemplate(c fiber.Ctx) error {
	var req models.CreateTemplateRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return badRequest(c, "INVALID_REQUEST", "Invalid request body")
	}

	id, err := th.registry.CreateTemplate(c.Context(), caller(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(fiber.Map{"template_id": id}))
}

func (th *TemplateHandler) LintTemplate(c fiber.Ctx) error {
	var req models.CreateTemplateRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return badRequest(c, "INVALID_REQUEST", "Invalid request body")
	}

	if err := th.registry.LintTemplate(req); err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"valid": true}))
}

func (th *TemplateHandler) UpdateTemplate(c fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "INVALID_ID", "Invalid template id")
	}
	var req models.UpdateTemplateRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return badRequest(c, "INVALID_REQUEST", "Invalid request body")
	}

	if err := th.registry.UpdateTemplate(c.Context(), caller(c), id, req); err != nil {
		return respondError(c, err)
	}
	return th.writeTemplate(c, id)
}

func (th *TemplateHandler) SubmitTemplate(c fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "INVALID_ID", "Invalid template id")
	}
	if err := th.registry.SubmitTemplateForReview(c.Context(), caller(c), id); err != nil {
		return respondError(c, err)
	}
	return th.writeTemplate(c, id)
}

func (th *TemplateHandler) ProposeApproval(c fiber.Ctx) error {
	return th.propose(c, th.registry.ProposeTemplateApproval)
}

func (th *TemplateHandler) ProposeRejection(c fiber.Ctx) error {
	return th.propose(c, th.registry.ProposeTemplateRejection)
}

type proposeFunc func(ctx context.Context, caller string, templateID uint64, req models.ProposalRequest) (uint64, error)

func (th *TemplateHandler) propose(c fiber.Ctx, fn proposeFunc) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "INVALID_ID", "Invalid template id")
	}
	var req models.ProposalRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return badRequest(c, "INVALID_REQUEST", "Invalid request body")
	}

	proposalID, err := fn(c.Context(), caller(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(fiber.Map{
		"template_id": id,
		"proposal_id": proposalID,
	}))
}

func (th *TemplateHandler) ExecuteProposal(c fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "INVALID_ID", "Invalid template id")
	}
	proposalID, ok := parseID(c, "proposalID")
	if !ok {
		return badRequest(c, "INVALID_ID", "Invalid proposal id")
	}

	if err := th.registry.ExecuteTemplateApproval(c.Context(), caller(c), proposalID, id); err != nil {
		return respondError(c, err)
	}
	return th.writeTemplate(c, id)
}

func (th *TemplateHandler) DeployTemplate(c fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "INVALID_ID", "Invalid template id")
	}
	if err := th.registry.DeployTemplate(c.Context(), caller(c), id); err != nil {
		return respondError(c, err)
	}
	return th.writeTemplate(c, id)
}

func (th *TemplateHandler) RetireTemplate(c fiber.Ctx) error {
	return th.withReason(c, th.registry.RetireTemplate)
}

func (th *TemplateHandler) ArchiveTemplate(c fiber.Ctx) error {
	return th.withReason(c, th.registry.ArchiveTemplate)
}

func (th *TemplateHandler) withReason(c fiber.Ctx, fn func(ctx context.Context, caller string, templateID uint64, reason string) error) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "INVALID_ID", "Invalid template id")
	}
	var req models.ReasonRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return badRequest(c, "INVALID_REQUEST", "Invalid request body")
	}

	if err := fn(c.Context(), caller(c), id, req.Reason); err != nil {
		return respondError(c, err)
	}
	return th.writeTemplate(c, id)
}

func (th *TemplateHandler) GetTemplate(c fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "INVALID_ID", "Invalid template id")
	}
	return th.writeTemplate(c, id)
}

// writeTemplate answers with the current state of the template.
func (th *TemplateHandler) writeTemplate(c fiber.Ctx, id uint64) error {
	tmpl, err := th.registry.GetTemplate(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(tmpl))
}

func (th *TemplateHandler) GetActiveTemplates(c fiber.Ctx) error {
	templates, err := th.registry.GetActiveTemplates(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateListResponse(templates, uint64(len(templates))))
}

func (th *TemplateHandler) GetTemplatesByStatus(c fiber.Ctx) error {
	start, limit, ok := parsePage(c)
	if !ok {
		return badRequest(c, "INVALID_PAGINATION_PARAMS", "start and limit must be non-negative integers")
	}
	status := models.TemplateStatus(c.Params("status"))

	templates, err := th.registry.GetTemplatesByStatus(c.Context(), status, start, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateListResponse(templates, uint64(len(templates))))
}

func (th *TemplateHandler) GetTemplatesByCategory(c fiber.Ctx) error {
	start, limit, ok := parsePage(c)
	if !ok {
		return badRequest(c, "INVALID_PAGINATION_PARAMS", "start and limit must be non-negative integers")
	}
	category := models.ProductCategory(c.Params("category"))

	templates, err := th.registry.GetTemplatesByCategory(c.Context(), category, start, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateListResponse(templates, uint64(len(templates))))
}

func (th *TemplateHandler) GetTemplateCount(c fiber.Ctx) error {
	count, err := th.registry.GetTemplateCount(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"count": count}))
}
