package handlers

import (
	"log/slog"
	"net/http"

	"product-template-service/internal/apperr"
	"product-template-service/internal/governance"
	"product-template-service/internal/services"
	"product-template-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

// AdminHandler serves the pause switch, the rules read-back and, when the
// in-process board is the governance gateway, proposal settlement.
type AdminHandler struct {
	registry *services.TemplateRegistry
	access   services.AccessControl
	board    *governance.Board
}

func NewAdminHandler(registry *services.TemplateRegistry, access services.AccessControl, board *governance.Board) *AdminHandler {
	return &AdminHandler{registry: registry, access: access, board: board}
}

func (ah *AdminHandler) Register(router fiber.Router) {
	adminGroup := router.Group("/admin")
	adminGroup.Post("/pause", ah.Pause)
	adminGroup.Post("/unpause", ah.Unpause)
	adminGroup.Get("/paused", ah.IsPaused)
	adminGroup.Get("/rules", ah.GetValidationRules)
	if ah.board != nil {
		adminGroup.Get("/proposals/:proposalID", ah.GetProposal)
		adminGroup.Post("/proposals/:proposalID/decide", ah.DecideProposal)
	}
}

func (ah *AdminHandler) Pause(c fiber.Ctx) error {
	if err := ah.registry.Pause(c.Context(), caller(c)); err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"paused": true}))
}

func (ah *AdminHandler) Unpause(c fiber.Ctx) error {
	if err := ah.registry.Unpause(c.Context(), caller(c)); err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"paused": false}))
}

func (ah *AdminHandler) IsPaused(c fiber.Ctx) error {
	paused, err := ah.registry.IsPaused(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"paused": paused}))
}

func (ah *AdminHandler) GetValidationRules(c fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(ah.registry.GetValidationRules()))
}

func (ah *AdminHandler) GetProposal(c fiber.Ctx) error {
	proposalID, ok := parseID(c, "proposalID")
	if !ok {
		return badRequest(c, "INVALID_ID", "Invalid proposal id")
	}
	decision, err := ah.board.Outcome(c.Context(), proposalID)
	if err != nil {
		return respondError(c, err)
	}
	proposal, _ := ah.board.Proposal(proposalID)
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{
		"proposal": proposal,
		"decision": decision,
	}))
}

type decideRequest struct {
	Passed bool `json:"passed"`
}

// DecideProposal records the board's vote result. Admin only.
func (ah *AdminHandler) DecideProposal(c fiber.Ctx) error {
	if !ah.access.IsAdmin(caller(c)) {
		return respondError(c, apperr.New(apperr.Unauthorized, "caller", "admin only"))
	}
	proposalID, ok := parseID(c, "proposalID")
	if !ok {
		return badRequest(c, "INVALID_ID", "Invalid proposal id")
	}
	var req decideRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return badRequest(c, "INVALID_REQUEST", "Invalid request body")
	}

	if err := ah.board.Decide(proposalID, req.Passed); err != nil {
		return respondError(c, err)
	}
	decision, err := ah.board.Outcome(c.Context(), proposalID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(decision))
}
