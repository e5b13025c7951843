package web

import (
	"time"

	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/services"
	"github.com/gofiber/fiber/v3"
)

const previewDueDates = 5

func (h *APIHandlers) ListSubmissionRules(c fiber.Ctx) error {
	templateID := c.Query("template_id")
	if templateID == "" {
		return badRequest(c, "template_id is required")
	}

	rules, err := h.services.Rules.ListByTemplate(c.Context(), templateID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(rules)
}

func (h *APIHandlers) GetSubmissionRule(c fiber.Ctx) error {
	rule, err := h.services.Rules.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(rule)
}

func (h *APIHandlers) CreateSubmissionRule(c fiber.Ctx) error {
	var rule models.SubmissionRule

	err := h.decode(c, &rule)
	if err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.services.Rules.Create(c.Context(), &rule, currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateSubmissionRule(c fiber.Ctx) error {
	var rule models.SubmissionRule

	err := h.decode(c, &rule)
	if err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.services.Rules.Update(c.Context(), c.Params("id"), &rule, currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteSubmissionRule(c fiber.Ctx) error {
	err := h.services.Rules.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ToggleSubmissionRule(c fiber.Ctx) error {
	rule, err := h.services.Rules.Toggle(c.Context(), c.Params("id"), currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(rule)
}

// PreviewSubmissionRule describes an unsaved rule and lists its next due dates.
func (h *APIHandlers) PreviewSubmissionRule(c fiber.Ctx) error {
	var rule models.SubmissionRule

	err := c.Bind().JSON(&rule)
	if err != nil {
		return badRequest(c, errInvalidJSON.Error())
	}

	preview := RulePreview{NextDueDates: []time.Time{}}

	err = services.ValidateSchedule(&rule)
	if err != nil {
		preview.Error = err.Error()

		return c.JSON(preview)
	}

	preview.Valid = true
	preview.Description = services.ScheduleDescription(&rule)
	preview.NextDueDates = services.NextDueDates(&rule, time.Now().UTC(), previewDueDates)

	return c.JSON(preview)
}

// RuleReminders lists the rules that send reminders on "date", today by default.
func (h *APIHandlers) RuleReminders(c fiber.Ctx) error {
	date, err := queryTime(c, "date")
	if err != nil {
		return badRequest(c, err.Error())
	}

	forDate := time.Now().UTC()
	if date != nil {
		forDate = *date
	}

	reminders, err := h.services.Rules.RulesNeedingReminders(c.Context(), forDate)
	if err != nil {
		return handleServiceError(c, err)
	}

	response := make([]ReminderResponse, 0, len(reminders))
	for _, reminder := range reminders {
		response = append(response, ReminderResponse{
			RuleID:     reminder.Rule.ID,
			RuleName:   reminder.Rule.RuleName,
			TemplateID: reminder.Rule.TemplateID,
			DueDate:    reminder.DueDate,
			DaysBefore: reminder.DaysBefore,
		})
	}

	return c.JSON(response)
}
