package handlers

import (
	"errors"
	"insurance-service/internal/metrics"
	"insurance-service/internal/models"
	"insurance-service/internal/utils"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v3"
)

var statusByCode = map[string]int{
	"DUPLICATE_KEY":            http.StatusConflict,
	"NOT_FOUND":                http.StatusNotFound,
	"UNKNOWN_REFERENCE":        http.StatusUnprocessableEntity,
	"INACTIVE_REFERENCE":       http.StatusUnprocessableEntity,
	"INVALID_STATUS":           http.StatusBadRequest,
	"INVALID_DATE":             http.StatusBadRequest,
	"INVALID_FIELD":            http.StatusBadRequest,
	"STORE_UNAVAILABLE":        http.StatusServiceUnavailable,
	"CRITICAL_PARTIAL_FAILURE": http.StatusInternalServerError,
}

// respondError writes the error envelope for a service error. A partial
// failure carries the storage reference and failed keys so the caller knows
// the record exists.
func respondError(c fiber.Ctx, operation string, err error) error {
	code := models.ErrorCode(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	metrics.CommandFailures.WithLabelValues(operation, code).Inc()

	var partial *models.PartialFailureError
	if errors.As(err, &partial) {
		return c.Status(status).JSON(utils.CreateErrorResponseWithDetails(code, err.Error(), partial))
	}

	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "operation", operation, "code", code, "error", err)
		if code == "INTERNAL_ERROR" {
			return c.Status(status).JSON(utils.CreateErrorResponse(code, "internal error"))
		}
	}
	return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
}

func badRequest(c fiber.Ctx, message string) error {
	return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", message))
}
