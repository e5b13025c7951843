package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/formreport/pkg/eventbus"
	"github.com/dukex/formreport/pkg/events"
	"github.com/dukex/formreport/pkg/metrics"
	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/persistence"
)

const (
	msgAlreadySubmitted   = "This form has already been submitted."
	msgSubmitted          = "Form submitted successfully."
	msgSubmittedInReview  = "Form submitted successfully. Awaiting approval."
	msgNotOwner           = "You do not have permission to modify this submission."
	msgCannotCreateSubmit = "You are not assigned to submit this form."
)

// Submission manages drafts and submissions of form templates.
type Submission struct {
	persistence persistence.Persistence
	assignments *Assignment
	rules       *SubmissionRule
	engine      *Engine
	events      notifier
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

func NewSubmission(
	persistence persistence.Persistence,
	assignments *Assignment,
	rules *SubmissionRule,
	engine *Engine,
	publisher eventbus.EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Submission {
	if logger == nil {
		logger = slog.Default()
	}

	return &Submission{
		persistence: persistence,
		assignments: assignments,
		rules:       rules,
		engine:      engine,
		events:      notifier{publisher: publisher, logger: logger},
		metrics:     m,
		logger:      logger.With("service", "submissions"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// InvalidResponsesError carries the per-field errors of a rejected submit.
type InvalidResponsesError struct {
	Validation *ResponseValidation
}

func (e *InvalidResponsesError) Error() string {
	return fmt.Sprintf("%s: %d invalid field(s)", ErrInvalidResponses, e.Validation.InvalidFields)
}

func (e *InvalidResponsesError) Unwrap() error {
	return ErrInvalidResponses
}

func (s *Submission) Get(ctx context.Context, id string) (*models.Submission, error) {
	submission, err := s.persistence.SubmissionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	if submission == nil {
		return nil, ErrSubmissionNotFound
	}

	return submission, nil
}

// List returns the submissions matching filter, newest first.
func (s *Submission) List(ctx context.Context, filter persistence.SubmissionFilter) ([]*models.Submission, error) {
	submissions, err := s.persistence.SubmissionRepository().Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	return submissions, nil
}

// Responses returns the typed response values of a submission keyed by item ID.
func (s *Submission) Responses(ctx context.Context, id string) (map[string]any, error) {
	submission, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	values := make(map[string]any, len(submission.Responses))
	for _, response := range submission.Responses {
		if value := ResponseValue(response); value != nil {
			values[response.ItemID] = value
		}
	}

	return values, nil
}

// DraftRequest is one save of a form in progress. Values are raw field values keyed by item ID.
type DraftRequest struct {
	SubmissionID    string
	TemplateID      string
	TenantID        string
	ReportingPeriod *time.Time
	Values          map[string]string
	CurrentSection  int
}

// SaveDraft stores the values of a form in progress. Without a SubmissionID the user's Draft for the
// same template, tenant and period is reused, or a new one is created.
func (s *Submission) SaveDraft(ctx context.Context, userID string, req DraftRequest) (*models.Submission, error) {
	submission, template, err := s.draftFor(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	now := s.now()

	for itemID, raw := range req.Values {
		_, item := template.FindItem(itemID)
		if item == nil {
			continue
		}

		response := submission.Response(itemID)
		if response == nil {
			response = &models.Response{ItemID: itemID, CreatedDate: now}
			submission.Responses = append(submission.Responses, response)
		} else {
			response.ModifiedDate = &now
		}

		SetResponseValue(response, item.DataType, raw)
		applyOptionScore(response, item, raw)
	}

	submission.CurrentSection = req.CurrentSection
	submission.LastSavedDate = &now
	submission.ModifiedBy = userID
	submission.ModifiedDate = &now

	err = s.persistence.SubmissionRepository().Save(ctx, submission)
	if err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	s.logger.DebugContext(ctx, "Saved draft", "submission_id", submission.ID, "responses", len(req.Values))

	return submission, nil
}

func (s *Submission) draftFor(ctx context.Context, userID string, req DraftRequest) (*models.Submission, *models.FormTemplate, error) {
	if req.SubmissionID != "" {
		submission, err := s.owned(ctx, "SaveDraft", req.SubmissionID, userID)
		if err != nil {
			return nil, nil, err
		}

		template, err := s.template(ctx, submission.TemplateID)
		if err != nil {
			return nil, nil, err
		}

		return submission, template, nil
	}

	template, err := s.template(ctx, req.TemplateID)
	if err != nil {
		return nil, nil, err
	}

	existing, err := s.existingDraft(ctx, userID, req)
	if err != nil {
		return nil, nil, err
	}

	if existing != nil {
		return existing, template, nil
	}

	if template.PublishStatus != models.PublishStatusPublished {
		return nil, nil, newConflictError("SaveDraft", "only published templates accept submissions", ErrTemplateNotPublished)
	}

	allowed, err := s.assignments.CanUserCreateSubmission(ctx, template.ID, userID)
	if err != nil {
		return nil, nil, err
	}

	if !allowed {
		return nil, nil, newForbiddenError("SaveDraft", msgCannotCreateSubmit, ErrCannotSubmitFor)
	}

	now := s.now()
	period := now
	if req.ReportingPeriod != nil {
		period = *req.ReportingPeriod
	}

	submission := &models.Submission{
		TemplateID:      template.ID,
		TenantID:        req.TenantID,
		ReportingYear:   period.Year(),
		ReportingMonth:  int(period.Month()),
		ReportingPeriod: req.ReportingPeriod,
		SnapshotDate:    &now,
		Status:          models.SubmissionDraft,
		SubmittedBy:     userID,
		CreatedBy:       userID,
		CreatedDate:     now,
	}

	s.logger.InfoContext(ctx, "Created draft", "template_id", template.ID, "user_id", userID)

	return submission, template, nil
}

func (s *Submission) existingDraft(ctx context.Context, userID string, req DraftRequest) (*models.Submission, error) {
	status := models.SubmissionDraft

	drafts, err := s.persistence.SubmissionRepository().Find(ctx, persistence.SubmissionFilter{
		TemplateID:  req.TemplateID,
		SubmittedBy: userID,
		Status:      &status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find drafts: %w", err)
	}

	for _, draft := range drafts {
		if draft.TenantID == req.TenantID && samePeriod(draft.ReportingPeriod, req.ReportingPeriod) {
			return draft, nil
		}
	}

	return nil, nil
}

func samePeriod(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.Equal(*b)
}

// SubmitResult is the outcome of a successful submit.
type SubmitResult struct {
	Submission *models.Submission      `json:"submission"`
	Status     models.SubmissionStatus `json:"status"`
	Message    string                  `json:"message"`
	Timing     *SubmissionTiming       `json:"timing,omitempty"`
}

// Submit validates a Draft and moves it to Submitted, or to InApproval when the template runs a workflow.
func (s *Submission) Submit(ctx context.Context, id, userID string) (*SubmitResult, error) {
	submission, err := s.owned(ctx, "Submit", id, userID)
	if err != nil {
		return nil, err
	}

	template, err := s.template(ctx, submission.TemplateID)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(submission.Responses))
	for _, item := range template.Items() {
		values[item.ID] = ResponseString(submission.Response(item.ID), item.DataType)
	}

	validation := ValidateResponses(template, values)
	if !validation.IsValid {
		return nil, &InvalidResponsesError{Validation: validation}
	}

	now := s.now()

	timing, err := s.rules.ValidateSubmissionTiming(ctx, template.ID, now)
	if err != nil {
		return nil, err
	}

	if !timing.CanSubmit {
		return nil, NewValidationError("Submit", "SUBMISSION_TOO_LATE", timing.Message, ErrSubmissionTiming)
	}

	inApproval := template.RequiresApproval && template.WorkflowID != ""

	submission.Status = models.SubmissionSubmitted
	message := msgSubmitted

	if inApproval {
		submission.Status = models.SubmissionInApproval
		message = msgSubmittedInReview
	}

	submission.SubmittedDate = &now
	submission.ModifiedBy = userID
	submission.ModifiedDate = &now

	err = s.persistence.SubmissionRepository().Save(ctx, submission)
	if err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	if inApproval {
		_, err = s.engine.Initialize(ctx, submission.ID)
		if err != nil {
			return nil, s.revertSubmit(ctx, submission, fmt.Errorf("failed to start workflow: %w", err))
		}
	}

	s.logger.InfoContext(ctx, "Submitted form",
		"submission_id", submission.ID, "template_id", template.ID, "status", submission.Status)
	s.metrics.SubmissionStatus(string(submission.Status))
	s.events.publish(ctx, submission.ID, events.SubmissionSubmitted{
		BaseEvent:    events.NewBaseEvent(events.SubmissionSubmittedEvent, userID),
		SubmissionID: submission.ID,
		TemplateID:   template.ID,
		TenantID:     submission.TenantID,
		Status:       string(submission.Status),
	})

	return &SubmitResult{
		Submission: submission,
		Status:     submission.Status,
		Message:    message,
		Timing:     timing,
	}, nil
}

// revertSubmit puts a submission whose workflow could not start back to Draft and drops any progress
// created so far, so the submit can be retried. It returns cause joined with any cleanup failure.
func (s *Submission) revertSubmit(ctx context.Context, submission *models.Submission, cause error) error {
	s.logger.ErrorContext(ctx, "Reverting submit", "submission_id", submission.ID, "error", cause)

	errs := []error{cause}

	err := s.persistence.ProgressRepository().DeleteBySubmission(ctx, submission.ID)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to delete workflow progress: %w", err))
	}

	submission.Status = models.SubmissionDraft
	submission.SubmittedDate = nil

	err = s.persistence.SubmissionRepository().Save(ctx, submission)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to revert submission: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks the stored responses of a submission without submitting it.
func (s *Submission) Validate(ctx context.Context, id string) (*ResponseValidation, error) {
	submission, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	template, err := s.template(ctx, submission.TemplateID)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(submission.Responses))
	for _, item := range template.Items() {
		values[item.ID] = ResponseString(submission.Response(item.ID), item.DataType)
	}

	return ValidateResponses(template, values), nil
}

// DeleteDraft removes a Draft owned by the user.
func (s *Submission) DeleteDraft(ctx context.Context, id, userID string) error {
	submission, err := s.owned(ctx, "DeleteDraft", id, userID)
	if err != nil {
		return err
	}

	err = s.persistence.SubmissionRepository().Delete(ctx, submission.ID)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}

	return nil
}

// owned loads a Draft and checks that userID owns it.
func (s *Submission) owned(ctx context.Context, op, id, userID string) (*models.Submission, error) {
	submission, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if submission.SubmittedBy != userID {
		return nil, newForbiddenError(op, msgNotOwner, ErrNotOwner)
	}

	if submission.Status != models.SubmissionDraft {
		return nil, newConflictError(op, msgAlreadySubmitted, ErrAlreadySubmitted)
	}

	return submission, nil
}

func (s *Submission) template(ctx context.Context, id string) (*models.FormTemplate, error) {
	template, err := s.persistence.TemplateRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if template == nil {
		return nil, ErrTemplateNotFound
	}

	return template, nil
}
