package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"product-template-service/internal/apperr"
	"product-template-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

const defaultPageLimit = 100

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.Unauthorized:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.InvalidTemplateStatus, apperr.GovernanceApprovalRequired:
		return http.StatusConflict
	case apperr.UpdateTooSoon:
		return http.StatusTooManyRequests
	case apperr.TemplateValidationFailed, apperr.Overflow, apperr.Underflow, apperr.DivisionByZero:
		return http.StatusUnprocessableEntity
	case apperr.InvalidInput, apperr.InvalidParameterValue, apperr.InvalidPaginationParams, apperr.ThresholdTooLow:
		return http.StatusBadRequest
	case apperr.Paused:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error envelope for err. Internal details stay in the log.
func respondError(c fiber.Ctx, err error) error {
	var e *apperr.Error
	if !errors.As(err, &e) || e.Kind == apperr.Internal {
		slog.Error("request failed", "path", c.Path(), "request_id", requestID(c), "error", err)
		return c.Status(http.StatusInternalServerError).JSON(utils.CreateErrorResponse(string(apperr.Internal), "internal error"))
	}

	resp := utils.CreateErrorResponse(string(e.Kind), e.Reason)
	resp.Error.Field = e.Field
	for _, issue := range e.Issues {
		resp.Error.Issues = append(resp.Error.Issues, utils.APIIssue{
			Code:   string(issue.Kind),
			Field:  issue.Field,
			Reason: issue.Reason,
		})
	}
	if resp.Error.Message == "" {
		resp.Error.Message = string(e.Kind)
	}
	return c.Status(statusFor(e.Kind)).JSON(resp)
}

func badRequest(c fiber.Ctx, code, message string) error {
	return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse(code, message))
}

func parseID(c fiber.Ctx, param string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Params(param), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// parsePage reads start and limit from the query string. A missing limit means
// defaultPageLimit; range checks are left to the service.
func parsePage(c fiber.Ctx) (start, limit uint32, ok bool) {
	s, err := strconv.ParseUint(c.Query("start", "0"), 10, 32)
	if err != nil {
		return 0, 0, false
	}
	l, err := strconv.ParseUint(c.Query("limit", strconv.Itoa(defaultPageLimit)), 10, 32)
	if err != nil {
		return 0, 0, false
	}
	return uint32(s), uint32(l), true
}
