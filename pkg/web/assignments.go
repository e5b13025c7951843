package web

import (
	"time"

	"github.com/dukex/formreport/pkg/models"
	"github.com/gofiber/fiber/v3"
)

// ListAssignments lists the assignments of "template_id", or every assignment without it.
func (h *APIHandlers) ListAssignments(c fiber.Ctx) error {
	var (
		assignments []*models.Assignment
		err         error
	)

	if templateID := c.Query("template_id"); templateID != "" {
		assignments, err = h.services.Assignments.ListByTemplate(c.Context(), templateID)
	} else {
		assignments, err = h.services.Assignments.All(c.Context())
	}

	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(assignments)
}

func (h *APIHandlers) MyAssignments(c fiber.Ctx) error {
	assignments, err := h.services.Assignments.UserAssignments(c.Context(), currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(assignments)
}

func (h *APIHandlers) MyPendingAssignments(c fiber.Ctx) error {
	assignments, err := h.services.Assignments.PendingAssignments(c.Context(), currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(assignments)
}

func (h *APIHandlers) AssignmentStatistics(c fiber.Ctx) error {
	stats, err := h.services.Assignments.Statistics(c.Context(), c.Query("template_id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(stats)
}

func (h *APIHandlers) GetAssignment(c fiber.Ctx) error {
	assignment, err := h.services.Assignments.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(assignment)
}

func (h *APIHandlers) CreateAssignment(c fiber.Ctx) error {
	var assignment models.Assignment

	err := h.decode(c, &assignment)
	if err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.services.Assignments.Create(c.Context(), &assignment, currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateAssignment(c fiber.Ctx) error {
	var req UpdateAssignmentRequest

	err := h.decode(c, &req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.services.Assignments.Update(c.Context(), c.Params("id"), req.Update())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteAssignment(c fiber.Ctx) error {
	err := h.services.Assignments.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) CancelAssignment(c fiber.Ctx) error {
	var req ReasonRequest

	err := h.decode(c, &req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	assignment, err := h.services.Assignments.Cancel(c.Context(), c.Params("id"), currentUserID(c), req.Reason)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(assignment)
}

func (h *APIHandlers) ExtendAssignment(c fiber.Ctx) error {
	var req ExtendRequest

	err := h.decode(c, &req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	assignment, err := h.services.Assignments.Extend(c.Context(), c.Params("id"), req.Until)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(assignment)
}

func (h *APIHandlers) SuspendAssignment(c fiber.Ctx) error {
	var req ReasonRequest

	err := h.decode(c, &req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	assignment, err := h.services.Assignments.Suspend(c.Context(), c.Params("id"), req.Reason)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(assignment)
}

func (h *APIHandlers) ReactivateAssignment(c fiber.Ctx) error {
	assignment, err := h.services.Assignments.Reactivate(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(assignment)
}

func (h *APIHandlers) ValidateAssignment(c fiber.Ctx) error {
	check, err := h.services.Assignments.ValidateForSubmission(c.Context(), c.Params("id"), time.Now().UTC())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(check)
}

func (h *APIHandlers) BulkExtendAssignments(c fiber.Ctx) error {
	var req BulkExtendRequest

	err := h.decode(c, &req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.services.Assignments.BulkExtend(c.Context(), req.IDs, req.Until)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"updated": updated})
}

func (h *APIHandlers) BulkCancelAssignments(c fiber.Ctx) error {
	var req BulkCancelRequest

	err := h.decode(c, &req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.services.Assignments.BulkCancel(c.Context(), req.IDs, currentUserID(c), req.Reason)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"updated": updated})
}
