package handlers

import (
	"context"
	"insurance-service/internal/models"
	"insurance-service/internal/utils"
	"net/http"

	"github.com/gofiber/fiber/v3"
)

type ClaimCommands interface {
	CreateClaim(ctx context.Context, req models.CreateClaimRequest) (*models.CommandResult, error)
}

type ClaimHandler struct {
	claims ClaimCommands
}

func NewClaimHandler(claims ClaimCommands) *ClaimHandler {
	return &ClaimHandler{claims: claims}
}

func (h *ClaimHandler) Register(app *fiber.App) {
	claimGroup := app.Group("insurance/public/api/v1/claims")
	claimGroup.Post("/", h.CreateClaim) // POST /claims
}

func (h *ClaimHandler) CreateClaim(c fiber.Ctx) error {
	var req models.CreateClaimRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	result, err := h.claims.CreateClaim(c.Context(), utils.TrimAllStringFields(req))
	if err != nil {
		return respondError(c, "create claim", err)
	}
	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(result))
}
