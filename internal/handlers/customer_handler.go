package handlers

import (
	"context"
	"fmt"
	"insurance-service/internal/models"
	"insurance-service/internal/utils"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"
)

type CustomerCommands interface {
	CreateCustomer(ctx context.Context, req models.CreateCustomerRequest) (*models.CommandResult, error)
	UpdateCustomer(ctx context.Context, customerID int, patch models.CustomerPatch) (*models.CommandResult, error)
	DeactivateCustomer(ctx context.Context, customerID int) (*models.CommandResult, error)
}

type CustomerHandler struct {
	customers CustomerCommands
}

func NewCustomerHandler(customers CustomerCommands) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

func (h *CustomerHandler) Register(app *fiber.App) {
	customerGroup := app.Group("insurance/public/api/v1/customers")
	customerGroup.Post("/", h.CreateCustomer)          // POST /customers
	customerGroup.Patch("/:id", h.UpdateCustomer)      // PATCH /customers/:id
	customerGroup.Delete("/:id", h.DeactivateCustomer) // DELETE /customers/:id (soft)
}

func (h *CustomerHandler) CreateCustomer(c fiber.Ctx) error {
	var req models.CreateCustomerRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}
	req = utils.TrimAllStringFields(req)

	result, err := h.customers.CreateCustomer(c.Context(), req)
	if err != nil {
		return respondError(c, "create customer", err)
	}
	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(result))
}

// UpdateCustomer takes a JSON object of field name to new value. Unknown
// fields are rejected.
func (h *CustomerHandler) UpdateCustomer(c fiber.Ctx) error {
	customerID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return badRequest(c, "customer id must be an integer")
	}

	var body map[string]any
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}
	fields := make(map[string]string, len(body))
	for name, value := range body {
		text, err := patchValue(name, value)
		if err != nil {
			return respondError(c, "update customer", err)
		}
		fields[name] = text
	}
	fields = utils.TrimAllStringFields(fields)

	patch, err := models.NewCustomerPatch(fields)
	if err != nil {
		return respondError(c, "update customer", err)
	}

	result, err := h.customers.UpdateCustomer(c.Context(), customerID, patch)
	if err != nil {
		return respondError(c, "update customer", err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(result))
}

func (h *CustomerHandler) DeactivateCustomer(c fiber.Ctx) error {
	customerID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return badRequest(c, "customer id must be an integer")
	}

	result, err := h.customers.DeactivateCustomer(c.Context(), customerID)
	if err != nil {
		return respondError(c, "deactivate customer", err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(result))
}

// patchValue renders a decoded JSON scalar as the text the patch expects.
// Null, objects and arrays are not valid field values.
func patchValue(name string, value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%w: %q must be a string, number or boolean", models.ErrInvalidField, name)
	}
}
