package web

import (
	"github.com/dukex/formreport/pkg/models"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) ListCategories(c fiber.Ctx) error {
	active, err := queryBool(c, "active")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var categories []*models.Category
	if active != nil && *active {
		categories, err = h.services.Categories.Active(c.Context())
	} else {
		categories, err = h.services.Categories.All(c.Context())
	}

	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(categories)
}

func (h *APIHandlers) CategorySelectList(c fiber.Ctx) error {
	items, err := h.services.Categories.SelectList(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(items)
}

func (h *APIHandlers) GetCategory(c fiber.Ctx) error {
	category, err := h.services.Categories.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(category)
}

func (h *APIHandlers) CreateCategory(c fiber.Ctx) error {
	var category models.Category

	err := h.decode(c, &category)
	if err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.services.Categories.Create(c.Context(), &category)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateCategory(c fiber.Ctx) error {
	var category models.Category

	err := h.decode(c, &category)
	if err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.services.Categories.Update(c.Context(), c.Params("id"), &category)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteCategory(c fiber.Ctx) error {
	err := h.services.Categories.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
