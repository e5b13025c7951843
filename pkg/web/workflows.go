package web

import (
	"github.com/dukex/formreport/pkg/models"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) ListWorkflows(c fiber.Ctx) error {
	isActive, err := queryBool(c, "is_active")
	if err != nil {
		return badRequest(c, err.Error())
	}

	workflows, err := h.services.Workflows.List(c.Context(), isActive)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflows)
}

func (h *APIHandlers) ListWorkflowActions(c fiber.Ctx) error {
	actions, err := h.services.Workflows.ListActions(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(actions)
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	workflow, err := h.services.Workflows.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var workflow models.Workflow

	err := h.decode(c, &workflow)
	if err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.services.Workflows.Create(c.Context(), &workflow, currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	var req UpdateWorkflowRequest

	err := h.decode(c, &req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.services.Workflows.Update(c.Context(), c.Params("id"), req.Update(), currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

// DeleteWorkflow answers with the delete mode: "soft" when templates still use the workflow.
func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	mode, err := h.services.Workflows.Delete(c.Context(), c.Params("id"), currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"mode": mode})
}

func (h *APIHandlers) ValidateWorkflow(c fiber.Ctx) error {
	result, err := h.services.Workflows.Validate(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) CloneWorkflow(c fiber.Ctx) error {
	var req CloneWorkflowRequest

	err := h.decode(c, &req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	clone, err := h.services.Workflows.Clone(c.Context(), c.Params("id"), req.WorkflowName, currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(clone)
}

func (h *APIHandlers) AddWorkflowStep(c fiber.Ctx) error {
	var step models.WorkflowStep

	err := h.decode(c, &step)
	if err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.services.Workflows.AddStep(c.Context(), c.Params("id"), &step, currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflowStep(c fiber.Ctx) error {
	var req UpdateStepRequest

	err := h.decode(c, &req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	step, err := h.services.Workflows.UpdateStep(c.Context(), c.Params("id"), c.Params("stepId"), req.Update(), currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(step)
}

func (h *APIHandlers) DeleteWorkflowStep(c fiber.Ctx) error {
	err := h.services.Workflows.DeleteStep(c.Context(), c.Params("id"), c.Params("stepId"), currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ReorderWorkflowSteps(c fiber.Ctx) error {
	var req ReorderStepsRequest

	err := h.decode(c, &req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	workflow, err := h.services.Workflows.ReorderSteps(c.Context(), c.Params("id"), req.Orders, currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}
