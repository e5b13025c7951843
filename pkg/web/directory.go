package web

import (
	"github.com/dukex/formreport/pkg/models"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) ListUsers(c fiber.Ctx) error {
	var (
		users []*models.User
		err   error
	)

	if role := c.Query("role_id"); role != "" {
		users, err = h.services.Directory.UsersInRole(c.Context(), role)
	} else {
		users, err = h.services.Directory.Users(c.Context())
	}

	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(users)
}

func (h *APIHandlers) GetUser(c fiber.Ctx) error {
	user, err := h.services.Directory.User(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(user)
}

// SaveUser creates the user, or replaces it when the body carries an existing ID.
func (h *APIHandlers) SaveUser(c fiber.Ctx) error {
	var user models.User

	err := h.decode(c, &user)
	if err != nil {
		return badRequest(c, err.Error())
	}

	saved, err := h.services.Directory.SaveUser(c.Context(), &user)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(saved)
}

func (h *APIHandlers) ListTenants(c fiber.Ctx) error {
	tenants, err := h.services.Directory.Tenants(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(tenants)
}

func (h *APIHandlers) GetTenant(c fiber.Ctx) error {
	tenant, err := h.services.Directory.Tenant(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(tenant)
}

func (h *APIHandlers) SaveTenant(c fiber.Ctx) error {
	var tenant models.Tenant

	err := h.decode(c, &tenant)
	if err != nil {
		return badRequest(c, err.Error())
	}

	saved, err := h.services.Directory.SaveTenant(c.Context(), &tenant)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(saved)
}
