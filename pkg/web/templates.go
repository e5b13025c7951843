package web

import (
	"time"

	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/services"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) ListTemplates(c fiber.Ctx) error {
	req, err := parseListTemplatesRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.services.Templates.List(c.Context(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"templates":     result.Templates,
		"total_count":   result.TotalCount,
		"has_next_page": result.HasNextPage,
		"pagination": fiber.Map{
			"limit":  req.Limit,
			"offset": req.Offset,
		},
		"sorting": fiber.Map{
			"sort_by":    req.SortBy,
			"sort_order": req.SortOrder,
		},
	})
}

func parseListTemplatesRequest(c fiber.Ctx) (*services.ListTemplatesRequest, error) {
	req := &services.ListTemplatesRequest{
		CategoryID: c.Query("category_id"),
		Search:     c.Query("search"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}

	var err error

	req.Limit, err = queryInt(c, "limit", 0)
	if err != nil {
		return nil, err
	}

	req.Offset, err = queryInt(c, "offset", 0)
	if err != nil {
		return nil, err
	}

	if status := c.Query("publish_status"); status != "" {
		publishStatus := models.PublishStatus(status)
		req.PublishStatus = &publishStatus
	}

	if kind := c.Query("template_type"); kind != "" {
		templateType := models.TemplateType(kind)
		req.TemplateType = &templateType
	}

	return req, nil
}

func (h *APIHandlers) GetTemplate(c fiber.Ctx) error {
	template, err := h.services.Templates.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(template)
}

func (h *APIHandlers) GetTemplateByCode(c fiber.Ctx) error {
	template, err := h.services.Templates.GetByCode(c.Context(), c.Params("code"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(template)
}

func (h *APIHandlers) GenerateTemplateCode(c fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return badRequest(c, "name is required")
	}

	code, err := h.services.Templates.GenerateUniqueCode(c.Context(), name, c.Query("exclude_id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"code": code})
}

func (h *APIHandlers) TemplateCodeExists(c fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return badRequest(c, "code is required")
	}

	exists, err := h.services.Templates.CodeExists(c.Context(), code, c.Query("exclude_id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"code":         code,
		"exists":       exists,
		"valid_format": services.IsValidCodeFormat(code),
	})
}

func (h *APIHandlers) CreateTemplate(c fiber.Ctx) error {
	var req CreateTemplateRequest

	err := h.decode(c, &req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.services.Templates.Create(c.Context(), req.Template(), currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateTemplate(c fiber.Ctx) error {
	var req UpdateTemplateRequest

	err := h.decode(c, &req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.services.Templates.Update(c.Context(), c.Params("id"), req.Update(), currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) UpdateTemplateStructure(c fiber.Ctx) error {
	var req UpdateStructureRequest

	err := h.decode(c, &req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.services.Templates.UpdateStructure(c.Context(), c.Params("id"), req.Sections, currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) PublishTemplate(c fiber.Ctx) error {
	published, err := h.services.Templates.Publish(c.Context(), c.Params("id"), currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(published)
}

func (h *APIHandlers) ArchiveTemplate(c fiber.Ctx) error {
	var req ArchiveRequest

	err := h.decode(c, &req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	archived, err := h.services.Templates.Archive(c.Context(), c.Params("id"), currentUserID(c), req.Reason)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(archived)
}

func (h *APIHandlers) CreateTemplateVersion(c fiber.Ctx) error {
	version, err := h.services.Templates.CreateNewVersion(c.Context(), c.Params("id"), currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(version)
}

func (h *APIHandlers) DeleteTemplate(c fiber.Ctx) error {
	err := h.services.Templates.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) TemplateProgress(c fiber.Ctx) error {
	progress, err := h.services.Templates.Progress(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(progress)
}

func (h *APIHandlers) TemplateCoverage(c fiber.Ctx) error {
	coverage, err := h.services.Assignments.Coverage(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(coverage)
}

// TemplateTiming checks a submission time, "at" or now, against the template's submission rules.
func (h *APIHandlers) TemplateTiming(c fiber.Ctx) error {
	at, err := queryTime(c, "at")
	if err != nil {
		return badRequest(c, err.Error())
	}

	submittedAt := time.Now().UTC()
	if at != nil {
		submittedAt = *at
	}

	_, err = h.services.Templates.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	timing, err := h.services.Rules.ValidateSubmissionTiming(c.Context(), c.Params("id"), submittedAt)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(timing)
}

func (h *APIHandlers) TemplateAssignments(c fiber.Ctx) error {
	assignments, err := h.services.Assignments.ListByTemplate(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(assignments)
}

func (h *APIHandlers) TemplateRules(c fiber.Ctx) error {
	rules, err := h.services.Rules.ListByTemplate(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(rules)
}

func (h *APIHandlers) TemplateScores(c fiber.Ctx) error {
	id := c.Params("id")

	average, err := h.services.Scoring.TemplateAverage(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	fields, err := h.services.Scoring.FieldPerformance(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"template_id":     id,
		"average_score":   average,
		"field_breakdown": fields,
	})
}

func (h *APIHandlers) ApplyOptionTemplate(c fiber.Ctx) error {
	var req ApplyOptionTemplateRequest

	err := h.decode(c, &req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	item, err := h.services.OptionTemplates.ApplyToItem(
		c.Context(),
		c.Params("id"),
		req.OptionTemplateID,
		c.Params("sectionId"),
		c.Params("itemId"),
		currentUserID(c),
	)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(item)
}
