package handlers

import (
	"context"
	"insurance-service/internal/models"
	"insurance-service/internal/utils"
	"net/http"

	"github.com/gofiber/fiber/v3"
)

type PolicyCommands interface {
	IssuePolicy(ctx context.Context, req models.IssuePolicyRequest) (*models.CommandResult, error)
}

type PolicyHandler struct {
	policies PolicyCommands
}

func NewPolicyHandler(policies PolicyCommands) *PolicyHandler {
	return &PolicyHandler{policies: policies}
}

func (h *PolicyHandler) Register(app *fiber.App) {
	policyGroup := app.Group("insurance/public/api/v1/policies")
	policyGroup.Post("/", h.IssuePolicy) // POST /policies
}

// IssuePolicy answers 201 on success. A critical partial failure answers 500
// with the storage reference in error.details: the policy was stored and must
// not be re-submitted.
func (h *PolicyHandler) IssuePolicy(c fiber.Ctx) error {
	var req models.IssuePolicyRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	result, err := h.policies.IssuePolicy(c.Context(), utils.TrimAllStringFields(req))
	if err != nil {
		return respondError(c, "issue policy", err)
	}
	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(result))
}
