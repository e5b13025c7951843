package web

import (
	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/services"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) SearchOptionTemplates(c fiber.Ctx) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return badRequest(c, err.Error())
	}

	pageSize, err := queryInt(c, "page_size", 20)
	if err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.services.OptionTemplates.Search(c.Context(), services.OptionTemplateSearch{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

// ActiveOptionTemplates lists active option templates, narrowed by "category" or "field_type".
func (h *APIHandlers) ActiveOptionTemplates(c fiber.Ctx) error {
	var (
		optionTemplates []*models.OptionTemplate
		err             error
	)

	switch {
	case c.Query("category") != "":
		optionTemplates, err = h.services.OptionTemplates.ByCategory(c.Context(), c.Query("category"))
	case c.Query("field_type") != "":
		optionTemplates, err = h.services.OptionTemplates.ByFieldType(c.Context(), c.Query("field_type"))
	default:
		optionTemplates, err = h.services.OptionTemplates.Active(c.Context())
	}

	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(optionTemplates)
}

func (h *APIHandlers) OptionTemplateCategories(c fiber.Ctx) error {
	categories, err := h.services.OptionTemplates.Categories(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(categories)
}

func (h *APIHandlers) OptionTemplateSelectList(c fiber.Ctx) error {
	items, err := h.services.OptionTemplates.SelectList(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(items)
}

func (h *APIHandlers) OptionTemplateCodeExists(c fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return badRequest(c, "code is required")
	}

	exists, err := h.services.OptionTemplates.CodeExists(c.Context(), code, c.Query("exclude_id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"code": code, "exists": exists})
}

func (h *APIHandlers) GetOptionTemplateByCode(c fiber.Ctx) error {
	optionTemplate, err := h.services.OptionTemplates.ByCode(c.Context(), c.Params("code"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(optionTemplate)
}

func (h *APIHandlers) GetOptionTemplate(c fiber.Ctx) error {
	optionTemplate, err := h.services.OptionTemplates.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(optionTemplate)
}

func (h *APIHandlers) CreateOptionTemplate(c fiber.Ctx) error {
	var optionTemplate models.OptionTemplate

	err := h.decode(c, &optionTemplate)
	if err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.services.OptionTemplates.Create(c.Context(), &optionTemplate, currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateOptionTemplate(c fiber.Ctx) error {
	var optionTemplate models.OptionTemplate

	err := h.decode(c, &optionTemplate)
	if err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.services.OptionTemplates.Update(c.Context(), c.Params("id"), &optionTemplate, currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteOptionTemplate(c fiber.Ctx) error {
	err := h.services.OptionTemplates.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
