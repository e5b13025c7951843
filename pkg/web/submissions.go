package web

import (
	"slices"

	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/persistence"
	"github.com/dukex/formreport/pkg/services"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) ListSubmissions(c fiber.Ctx) error {
	filter := persistence.SubmissionFilter{
		TemplateID:  c.Query("template_id"),
		TenantID:    c.Query("tenant_id"),
		SubmittedBy: c.Query("submitted_by"),
	}

	if status := c.Query("status"); status != "" {
		submissionStatus := models.SubmissionStatus(status)
		if !slices.Contains(models.SubmissionStatuses, submissionStatus) {
			return badRequest(c, "unknown status '"+status+"'")
		}

		filter.Status = &submissionStatus
	}

	var err error

	filter.From, err = queryTime(c, "from")
	if err != nil {
		return badRequest(c, err.Error())
	}

	filter.To, err = queryTime(c, "to")
	if err != nil {
		return badRequest(c, err.Error())
	}

	submissions, err := h.services.Submissions.List(c.Context(), filter)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(submissions)
}

func (h *APIHandlers) GetSubmission(c fiber.Ctx) error {
	submission, err := h.services.Submissions.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(submission)
}

func (h *APIHandlers) SaveDraft(c fiber.Ctx) error {
	var req SaveDraftRequest

	err := h.decode(c, &req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	draft := req.Draft()

	tenantID := CurrentIdentity(c).TenantID
	if tenantID != "" {
		if draft.TenantID != "" && draft.TenantID != tenantID {
			return forbidden(c, "tenant_id does not match the authenticated tenant")
		}

		draft.TenantID = tenantID
	}

	submission, err := h.services.Submissions.SaveDraft(c.Context(), currentUserID(c), draft)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"submission_id": submission.ID,
		"message":       "Draft saved successfully",
		"saved_at":      submission.LastSavedDate,
		"submission":    submission,
	})
}

func (h *APIHandlers) SubmitSubmission(c fiber.Ctx) error {
	result, err := h.services.Submissions.Submit(c.Context(), c.Params("id"), currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) DeleteDraft(c fiber.Ctx) error {
	err := h.services.Submissions.DeleteDraft(c.Context(), c.Params("id"), currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) SubmissionResponses(c fiber.Ctx) error {
	responses, err := h.services.Submissions.Responses(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(responses)
}

func (h *APIHandlers) ValidateSubmission(c fiber.Ctx) error {
	validation, err := h.services.Submissions.Validate(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(validation)
}

func (h *APIHandlers) SubmissionScores(c fiber.Ctx) error {
	breakdown, err := h.services.Scoring.Breakdown(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(breakdown)
}

func (h *APIHandlers) SubmissionWorkflow(c fiber.Ctx) error {
	progress, err := h.services.Engine.Progress(c.Context(), c.Params("id"), currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(progress)
}

func (h *APIHandlers) CompleteStep(c fiber.Ctx) error {
	var req CompleteStepRequest

	err := h.decode(c, &req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	progressID, err := h.stepOfSubmission(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	progress, err := h.services.Engine.Complete(c.Context(), progressID, currentUserID(c), services.StepCompletion{
		Comments:      req.Comments,
		SignatureType: req.SignatureType,
		SignatureData: req.SignatureData,
		SignatureIP:   c.IP(),
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(progress)
}

func (h *APIHandlers) RejectStep(c fiber.Ctx) error {
	var req RejectStepRequest

	err := h.decode(c, &req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	progressID, err := h.stepOfSubmission(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	progress, err := h.services.Engine.Reject(c.Context(), progressID, currentUserID(c), req.Reason)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(progress)
}

func (h *APIHandlers) DelegateStep(c fiber.Ctx) error {
	var req DelegateStepRequest

	err := h.decode(c, &req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	progressID, err := h.stepOfSubmission(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	progress, err := h.services.Engine.Delegate(c.Context(), progressID, currentUserID(c), req.ToUserID, req.Reason)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(progress)
}

// stepOfSubmission returns the :progressId parameter once it is known to belong to the :id submission.
func (h *APIHandlers) stepOfSubmission(c fiber.Ctx) (string, error) {
	progressID := c.Params("progressId")

	progress, err := h.services.Engine.Progress(c.Context(), c.Params("id"), currentUserID(c))
	if err != nil {
		return "", err
	}

	found := slices.ContainsFunc(progress.Steps, func(step *models.StepProgress) bool {
		return step.ID == progressID
	})
	if !found {
		return "", services.ErrProgressNotFound
	}

	return progressID, nil
}

func (h *APIHandlers) PendingActions(c fiber.Ctx) error {
	actions, err := h.services.Engine.PendingActions(c.Context(), currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(actions)
}

func (h *APIHandlers) PendingActionCount(c fiber.Ctx) error {
	count, err := h.services.Engine.PendingActionCount(c.Context(), currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"count": count})
}
