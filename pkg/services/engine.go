package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/formreport/pkg/eventbus"
	"github.com/dukex/formreport/pkg/events"
	"github.com/dukex/formreport/pkg/metrics"
	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/persistence"
)

const (
	escalationReason  = "Auto-escalated due to overdue"
	autoApproveReason = "Auto-approved based on condition"
)

// WorkflowStatus summarizes the progress records of one submission.
type WorkflowStatus string

const (
	WorkflowNotStarted WorkflowStatus = "NotStarted"
	WorkflowPending    WorkflowStatus = "Pending"
	WorkflowInProgress WorkflowStatus = "InProgress"
	WorkflowCompleted  WorkflowStatus = "Completed"
	WorkflowRejected   WorkflowStatus = "Rejected"
)

// Engine drives submissions through the steps of their template's workflow.
type Engine struct {
	persistence persistence.Persistence
	directory   *Directory
	events      notifier
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

func NewEngine(persistence persistence.Persistence, directory *Directory, publisher eventbus.EventPublisher, m *metrics.Metrics, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		persistence: persistence,
		directory:   directory,
		events:      notifier{publisher: publisher, logger: logger},
		metrics:     m,
		logger:      logger.With("service", "workflow_engine"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// run is one submission together with its template, workflow and progress records.
type run struct {
	submission *models.Submission
	template   *models.FormTemplate
	workflow   *models.Workflow
	progress   []*models.StepProgress
}

func (r *run) step(progress *models.StepProgress) *models.WorkflowStep {
	return r.workflow.Step(progress.StepID)
}

func (r *run) find(progressID string) *models.StepProgress {
	for _, progress := range r.progress {
		if progress.ID == progressID {
			return progress
		}
	}

	return nil
}

// currentOrder is the lowest order still waiting for an actor, or the highest order when none is.
func (r *run) currentOrder() int {
	return currentOrder(r.progress)
}

func (r *run) dependenciesMet(step *models.WorkflowStep) bool {
	for _, dependency := range step.DependsOnStepIDs {
		for _, progress := range r.progress {
			if progress.StepID == dependency && !progress.Status.IsDone() {
				return false
			}
		}
	}

	return true
}

func (r *run) mandatoryDone() bool {
	for _, progress := range r.progress {
		step := r.step(progress)
		if step != nil && step.IsMandatory && !progress.Status.IsDone() {
			return false
		}
	}

	return true
}

// previousActor returns who reviewed the closest step ordered before order. Among steps of the same
// order the latest review wins; steps finished without a reviewer are passed over.
func (r *run) previousActor(order int) string {
	var previous *models.StepProgress

	for _, progress := range r.progress {
		if progress.StepOrder >= order || progress.ReviewedBy == "" {
			continue
		}

		if previous == nil || progress.StepOrder > previous.StepOrder ||
			(progress.StepOrder == previous.StepOrder && reviewedAfter(progress, previous)) {
			previous = progress
		}
	}

	if previous == nil {
		return ""
	}

	return previous.ReviewedBy
}

func reviewedAfter(a, b *models.StepProgress) bool {
	if a.ReviewedDate == nil {
		return false
	}

	return b.ReviewedDate == nil || a.ReviewedDate.After(*b.ReviewedDate)
}

func (r *run) resolveAssignee(step *models.WorkflowStep) string {
	switch step.AssigneeType {
	case models.AssigneeUser:
		return step.ApproverUserID
	case models.AssigneeSubmitter:
		if r.submission.SubmittedBy != "" {
			return r.submission.SubmittedBy
		}

		return r.submission.CreatedBy
	case models.AssigneePreviousActor:
		return r.previousActor(step.StepOrder)
	case models.AssigneeFieldValue:
		response := r.submission.Response(step.AssigneeFieldID)
		if response != nil && response.TextValue != nil {
			return strings.TrimSpace(*response.TextValue)
		}

		return ""
	default:
		return ""
	}
}

// activate starts the clock on a step.
func (r *run) activate(progress *models.StepProgress, step *models.WorkflowStep, now time.Time) {
	progress.AssignedDate = &now

	if step.DueDays > 0 {
		due := now.AddDate(0, 0, step.DueDays)
		progress.DueDate = &due
	}

	if progress.AssignedTo == "" {
		progress.AssignedTo = r.resolveAssignee(step)
	}
}

// responseValue finds the numeric answer of the item whose name or code is field.
func (r *run) responseValue(field string) (float64, bool) {
	for _, response := range r.submission.Responses {
		_, item := r.template.FindItem(response.ItemID)
		if item == nil || !(strings.EqualFold(item.ItemName, field) || strings.EqualFold(item.ItemCode, field)) {
			continue
		}

		if response.NumericValue != nil {
			return *response.NumericValue, true
		}

		if response.TextValue != nil {
			value, err := strconv.ParseFloat(strings.TrimSpace(*response.TextValue), 64)
			if err == nil {
				return value, true
			}
		}

		return 0, false
	}

	return 0, false
}

func (e *Engine) loadRun(ctx context.Context, submissionID string) (*run, error) {
	submission, err := e.persistence.SubmissionRepository().GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	if submission == nil {
		return nil, ErrSubmissionNotFound
	}

	template, err := e.persistence.TemplateRepository().GetByID(ctx, submission.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if template == nil {
		return nil, ErrTemplateNotFound
	}

	if template.WorkflowID == "" {
		return nil, newConflictError("LoadWorkflow",
			fmt.Sprintf("template %s has no workflow configured", template.ID), ErrTemplateNoWorkflow)
	}

	workflow, err := e.persistence.WorkflowRepository().GetByID(ctx, template.WorkflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	if workflow == nil {
		return nil, ErrWorkflowNotFound
	}

	workflow.SortSteps()

	progress, err := e.persistence.ProgressRepository().GetBySubmission(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow progress: %w", err)
	}

	return &run{submission: submission, template: template, workflow: workflow, progress: progress}, nil
}

// loadProgress returns the run, the progress record and its step.
func (e *Engine) loadProgress(ctx context.Context, progressID string) (*run, *models.StepProgress, *models.WorkflowStep, error) {
	stored, err := e.persistence.ProgressRepository().GetByID(ctx, progressID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get workflow progress: %w", err)
	}

	if stored == nil {
		return nil, nil, nil, ErrProgressNotFound
	}

	r, err := e.loadRun(ctx, stored.SubmissionID)
	if err != nil {
		return nil, nil, nil, err
	}

	progress := r.find(progressID)
	if progress == nil {
		return nil, nil, nil, ErrProgressNotFound
	}

	step := r.step(progress)
	if step == nil {
		return nil, nil, nil, ErrStepNotFound
	}

	return r, progress, step, nil
}

// Initialize creates the progress records of a submission. Existing progress is returned unchanged.
func (e *Engine) Initialize(ctx context.Context, submissionID string) ([]*models.StepProgress, error) {
	r, err := e.loadRun(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	if len(r.progress) > 0 {
		e.logger.WarnContext(ctx, "Workflow progress already exists", "submission_id", submissionID)

		return r.progress, nil
	}

	now := e.now()

	for _, step := range r.workflow.Steps {
		progress := &models.StepProgress{
			ID:           newUUID(),
			SubmissionID: submissionID,
			StepID:       step.ID,
			StepOrder:    step.StepOrder,
			Status:       models.ProgressPending,
			ActionID:     step.ActionID,
			TargetType:   step.TargetType,
			TargetID:     step.TargetID,
			AssignedTo:   r.resolveAssignee(step),
		}

		if step.StepOrder == r.workflow.Steps[0].StepOrder {
			r.activate(progress, step, now)
		}

		err = e.saveProgress(ctx, progress)
		if err != nil {
			return nil, err
		}

		r.progress = append(r.progress, progress)
	}

	e.logger.InfoContext(ctx, "Initialized workflow",
		"submission_id", submissionID, "workflow_id", r.workflow.ID, "steps", len(r.progress))

	return r.progress, nil
}

// WorkflowProgress is the state of a submission's workflow as seen by one user.
type WorkflowProgress struct {
	SubmissionID     string                 `json:"submission_id"`
	WorkflowID       string                 `json:"workflow_id"`
	WorkflowName     string                 `json:"workflow_name"`
	Status           WorkflowStatus         `json:"status"`
	TotalSteps       int                    `json:"total_steps"`
	CompletedSteps   int                    `json:"completed_steps"`
	CurrentStepOrder int                    `json:"current_step_order"`
	CurrentSteps     []*models.StepProgress `json:"current_steps"`
	Steps            []*models.StepProgress `json:"steps"`
	CanUserAct       bool                   `json:"can_user_act"`
}

func (e *Engine) Progress(ctx context.Context, submissionID, userID string) (*WorkflowProgress, error) {
	r, err := e.loadRun(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	result := &WorkflowProgress{
		SubmissionID:     submissionID,
		WorkflowID:       r.workflow.ID,
		WorkflowName:     r.workflow.WorkflowName,
		Status:           statusOf(r.progress),
		TotalSteps:       len(r.progress),
		CurrentStepOrder: r.currentOrder(),
		CurrentSteps:     currentSteps(r.progress),
		Steps:            r.progress,
	}

	for _, progress := range r.progress {
		if progress.Status == models.ProgressCompleted || progress.Status == models.ProgressApproved {
			result.CompletedSteps++
		}
	}

	for _, progress := range result.CurrentSteps {
		canAct, err := e.canAct(ctx, progress, r.step(progress), userID)
		if err != nil {
			return nil, err
		}

		if canAct {
			result.CanUserAct = true

			break
		}
	}

	return result, nil
}

// CanUserActOnStep reports whether the user may complete, reject or delegate the step.
func (e *Engine) CanUserActOnStep(ctx context.Context, progressID, userID string) (bool, error) {
	_, progress, step, err := e.loadProgress(ctx, progressID)
	if err != nil {
		return false, err
	}

	return e.canAct(ctx, progress, step, userID)
}

// CanUserActOnSection reports whether a current step covering the section is the user's to act on.
func (e *Engine) CanUserActOnSection(ctx context.Context, submissionID, sectionID, userID string) (bool, error) {
	return e.canActOnTarget(ctx, submissionID, userID, models.TargetSection, sectionID)
}

// CanUserActOnField reports whether a current step covering the item is the user's to act on.
func (e *Engine) CanUserActOnField(ctx context.Context, submissionID, itemID, userID string) (bool, error) {
	return e.canActOnTarget(ctx, submissionID, userID, models.TargetField, itemID)
}

func (e *Engine) canActOnTarget(ctx context.Context, submissionID, userID string, targetType models.TargetType, targetID string) (bool, error) {
	r, err := e.loadRun(ctx, submissionID)
	if err != nil {
		return false, err
	}

	for _, progress := range currentSteps(r.progress) {
		covers := progress.TargetType == "" || progress.TargetType == models.TargetSubmission ||
			(progress.TargetType == targetType && progress.TargetID == targetID)
		if !covers {
			continue
		}

		canAct, err := e.canAct(ctx, progress, r.step(progress), userID)
		if err != nil {
			return false, err
		}

		if canAct {
			return true, nil
		}
	}

	return false, nil
}

func (e *Engine) canAct(ctx context.Context, progress *models.StepProgress, step *models.WorkflowStep, userID string) (bool, error) {
	if !progress.Status.IsOpen() || userID == "" {
		return false, nil
	}

	if progress.AssignedTo == userID || progress.DelegatedTo == userID {
		return true, nil
	}

	if step == nil {
		return false, nil
	}

	switch {
	case step.AssigneeType == models.AssigneeRole && step.ApproverRoleID != "":
		return e.directory.HasRole(ctx, userID, step.ApproverRoleID)
	case step.AssigneeType == models.AssigneeDepartment && step.AssigneeDepartmentID != "":
		user, err := e.persistence.DirectoryRepository().UserByID(ctx, userID)
		if err != nil {
			return false, fmt.Errorf("failed to get user: %w", err)
		}

		return user != nil && user.DepartmentID == step.AssigneeDepartmentID, nil
	default:
		return false, nil
	}
}

// StepCompletion carries what the actor submits when completing a step.
type StepCompletion struct {
	Comments      string
	SignatureType string
	SignatureData string
	SignatureIP   string
}

// Complete finishes a step of the current stage, activates the next stage and approves the
// submission once every mandatory step is done.
func (e *Engine) Complete(ctx context.Context, progressID, userID string, completion StepCompletion) (*models.StepProgress, error) {
	r, progress, step, err := e.loadProgress(ctx, progressID)
	if err != nil {
		return nil, err
	}

	canAct, err := e.canAct(ctx, progress, step, userID)
	if err != nil {
		return nil, err
	}

	if !canAct {
		return nil, newForbiddenError("CompleteStep", "user is not authorized to complete this step", ErrForbidden)
	}

	if progress.StepOrder != r.currentOrder() {
		return nil, newConflictError("CompleteStep", "step is not part of the current stage", ErrStepNotActionable)
	}

	if !r.dependenciesMet(step) {
		return nil, newConflictError("CompleteStep", "step dependencies are not met", ErrDependenciesNotMet)
	}

	action, err := e.action(ctx, progress.ActionID)
	if err != nil {
		return nil, err
	}

	if action != nil && action.RequiresComment && strings.TrimSpace(completion.Comments) == "" {
		return nil, NewValidationError("CompleteStep", "COMMENT_REQUIRED",
			fmt.Sprintf("%s requires a comment", action.ActionName), ErrCommentRequired)
	}

	now := e.now()
	actionCode := string(models.ProgressCompleted)
	progress.Status = models.ProgressCompleted

	if action != nil {
		actionCode = action.ActionCode
		if action.ActionCode == models.ActionApprove {
			progress.Status = models.ProgressApproved
		}
	}

	progress.ReviewedBy = userID
	progress.ReviewedDate = &now
	progress.Comments = completion.Comments

	if action != nil && action.RequiresSignature && completion.SignatureData != "" {
		progress.SignatureType = completion.SignatureType
		progress.SignatureData = completion.SignatureData
		progress.SignatureIP = completion.SignatureIP
		progress.SignatureTimestamp = &now
	}

	err = e.saveProgress(ctx, progress)
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Completed workflow step",
		"submission_id", progress.SubmissionID, "step_id", progress.StepID, "user_id", userID)
	e.metrics.WorkflowAction(actionCode)
	e.events.publish(ctx, progress.SubmissionID, events.WorkflowStepCompleted{
		BaseEvent:  events.NewBaseEvent(events.WorkflowStepCompletedEvent, userID),
		StepEvent:  stepEvent(progress),
		ActionCode: actionCode,
		Status:     string(progress.Status),
	})

	err = e.advance(ctx, r, progress, userID, now)
	if err != nil {
		return nil, err
	}

	return progress, nil
}

// advance activates the current stage once the stage of done is finished, and approves the submission
// when the workflow is finished. The current stage is the lowest order with open steps, so gaps in the
// step orders are skipped.
func (e *Engine) advance(ctx context.Context, r *run, done *models.StepProgress, actorID string, now time.Time) error {
	order := r.currentOrder()

	for _, progress := range r.progress {
		if progress.StepOrder != order || !progress.Status.IsOpen() || progress.AssignedDate != nil {
			continue
		}

		step := r.step(progress)
		if step == nil || !r.dependenciesMet(step) {
			continue
		}

		r.activate(progress, step, now)

		err := e.saveProgress(ctx, progress)
		if err != nil {
			return err
		}

		e.logger.DebugContext(ctx, "Activated workflow step",
			"submission_id", progress.SubmissionID, "step_id", progress.StepID, "after_step_id", done.StepID)
	}

	if !r.mandatoryDone() || r.submission.Status == models.SubmissionApproved {
		return nil
	}

	r.submission.Status = models.SubmissionApproved
	r.submission.ReviewedBy = actorID
	r.submission.ReviewedDate = &now

	err := e.persistence.SubmissionRepository().Save(ctx, r.submission)
	if err != nil {
		return fmt.Errorf("failed to save submission: %w", err)
	}

	e.logger.InfoContext(ctx, "Workflow completed", "submission_id", r.submission.ID)
	e.metrics.SubmissionStatus(string(models.SubmissionApproved))
	e.events.publish(ctx, r.submission.ID, events.SubmissionApproved{
		BaseEvent:    events.NewBaseEvent(events.SubmissionApprovedEvent, actorID),
		SubmissionID: r.submission.ID,
		TemplateID:   r.submission.TemplateID,
		ApprovedBy:   actorID,
	})

	return nil
}

// Reject rejects the step and with it the whole submission.
func (e *Engine) Reject(ctx context.Context, progressID, userID, reason string) (*models.StepProgress, error) {
	r, progress, step, err := e.loadProgress(ctx, progressID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(reason) == "" {
		return nil, NewValidationError("RejectStep", "COMMENT_REQUIRED", "a rejection reason is required", ErrCommentRequired)
	}

	canAct, err := e.canAct(ctx, progress, step, userID)
	if err != nil {
		return nil, err
	}

	if !canAct {
		return nil, newForbiddenError("RejectStep", "user is not authorized to reject this step", ErrForbidden)
	}

	now := e.now()
	progress.Status = models.ProgressRejected
	progress.ReviewedBy = userID
	progress.ReviewedDate = &now
	progress.Comments = reason

	err = e.saveProgress(ctx, progress)
	if err != nil {
		return nil, err
	}

	r.submission.Status = models.SubmissionRejected
	r.submission.ApprovalComments = reason
	r.submission.ReviewedBy = userID
	r.submission.ReviewedDate = &now

	err = e.persistence.SubmissionRepository().Save(ctx, r.submission)
	if err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	e.logger.InfoContext(ctx, "Rejected workflow step",
		"submission_id", progress.SubmissionID, "step_id", progress.StepID, "user_id", userID)
	e.metrics.WorkflowAction(models.ActionReject)
	e.metrics.SubmissionStatus(string(models.SubmissionRejected))
	e.events.publish(ctx, progress.SubmissionID, events.WorkflowStepRejected{
		BaseEvent: events.NewBaseEvent(events.WorkflowStepRejectedEvent, userID),
		StepEvent: stepEvent(progress),
		Reason:    reason,
	})

	return progress, nil
}

// Delegate hands the step over to another user.
func (e *Engine) Delegate(ctx context.Context, progressID, fromUserID, toUserID, reason string) (*models.StepProgress, error) {
	_, progress, step, err := e.loadProgress(ctx, progressID)
	if err != nil {
		return nil, err
	}

	action, err := e.action(ctx, progress.ActionID)
	if err != nil {
		return nil, err
	}

	if action != nil && !action.AllowDelegate {
		return nil, newConflictError("DelegateStep", "this step cannot be delegated", ErrDelegationNotAllowed)
	}

	canAct, err := e.canAct(ctx, progress, step, fromUserID)
	if err != nil {
		return nil, err
	}

	if !canAct {
		return nil, newForbiddenError("DelegateStep", "user is not authorized to delegate this step", ErrForbidden)
	}

	_, err = e.directory.User(ctx, toUserID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	progress.DelegatedBy = fromUserID
	progress.DelegatedTo = toUserID
	progress.DelegatedDate = &now
	progress.DelegationReason = reason
	progress.AssignedTo = toUserID

	err = e.saveProgress(ctx, progress)
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Delegated workflow step",
		"step_id", progress.StepID, "from_user_id", fromUserID, "to_user_id", toUserID)
	e.metrics.WorkflowAction("Delegate")
	e.events.publish(ctx, progress.SubmissionID, events.WorkflowStepDelegated{
		BaseEvent:   events.NewBaseEvent(events.WorkflowStepDelegatedEvent, fromUserID),
		StepEvent:   stepEvent(progress),
		DelegatedBy: fromUserID,
		DelegatedTo: toUserID,
		Reason:      reason,
	})

	return progress, nil
}

// PendingAction is an open step waiting for a user.
type PendingAction struct {
	ProgressID        string            `json:"progress_id"`
	SubmissionID      string            `json:"submission_id"`
	TemplateID        string            `json:"template_id"`
	TemplateName      string            `json:"template_name"`
	TemplateCode      string            `json:"template_code"`
	StepID            string            `json:"step_id"`
	StepName          string            `json:"step_name"`
	StepOrder         int               `json:"step_order"`
	ActionCode        string            `json:"action_code,omitempty"`
	ActionName        string            `json:"action_name,omitempty"`
	RequiresSignature bool              `json:"requires_signature"`
	TargetType        models.TargetType `json:"target_type"`
	SubmittedBy       string            `json:"submitted_by,omitempty"`
	SubmittedDate     time.Time         `json:"submitted_date"`
	DueDate           *time.Time        `json:"due_date,omitempty"`
	IsOverdue         bool              `json:"is_overdue"`
	IsDelegated       bool              `json:"is_delegated"`
	DelegatedBy       string            `json:"delegated_by,omitempty"`
}

// PendingActions lists the current-stage steps assigned or delegated to the user, or waiting on one of
// their roles. Items with a due date come first, earliest first.
func (e *Engine) PendingActions(ctx context.Context, userID string) ([]*PendingAction, error) {
	user, err := e.persistence.DirectoryRepository().UserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		return []*PendingAction{}, nil
	}

	actions, err := e.actionsByID(ctx)
	if err != nil {
		return nil, err
	}

	now := e.now()
	pending := make([]*PendingAction, 0)

	err = e.forEachOpen(ctx, func(r *run, progress *models.StepProgress, step *models.WorkflowStep) error {
		if progress.StepOrder != r.currentOrder() {
			return nil
		}

		mine := progress.AssignedTo == userID || progress.DelegatedTo == userID ||
			(step.AssigneeType == models.AssigneeRole && user.HasRole(step.ApproverRoleID))
		if !mine {
			return nil
		}

		targetType := progress.TargetType
		if targetType == "" {
			targetType = models.TargetSubmission
		}

		item := &PendingAction{
			ProgressID:    progress.ID,
			SubmissionID:  progress.SubmissionID,
			TemplateID:    r.template.ID,
			TemplateName:  r.template.TemplateName,
			TemplateCode:  r.template.TemplateCode,
			StepID:        step.ID,
			StepName:      step.StepName,
			StepOrder:     progress.StepOrder,
			TargetType:    targetType,
			SubmittedBy:   r.submission.SubmittedBy,
			SubmittedDate: r.submission.EffectiveDate(),
			DueDate:       progress.DueDate,
			IsOverdue:     progress.DueDate != nil && progress.DueDate.Before(now),
			IsDelegated:   progress.DelegatedTo == userID,
			DelegatedBy:   progress.DelegatedBy,
		}

		if action, ok := actions[progress.ActionID]; ok {
			item.ActionCode = action.ActionCode
			item.ActionName = action.ActionName
			item.RequiresSignature = action.RequiresSignature
		}

		pending = append(pending, item)

		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(pending, func(a, b *PendingAction) int {
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		default:
			return a.DueDate.Compare(*b.DueDate)
		}
	})

	return pending, nil
}

func (e *Engine) PendingActionCount(ctx context.Context, userID string) (int, error) {
	pending, err := e.PendingActions(ctx, userID)
	if err != nil {
		return 0, err
	}

	return len(pending), nil
}

// CurrentSteps returns the open steps of the current stage.
func (e *Engine) CurrentSteps(ctx context.Context, submissionID string) ([]*models.StepProgress, error) {
	progress, err := e.persistence.ProgressRepository().GetBySubmission(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow progress: %w", err)
	}

	return currentSteps(progress), nil
}

func (e *Engine) Status(ctx context.Context, submissionID string) (WorkflowStatus, error) {
	progress, err := e.persistence.ProgressRepository().GetBySubmission(ctx, submissionID)
	if err != nil {
		return "", fmt.Errorf("failed to get workflow progress: %w", err)
	}

	return statusOf(progress), nil
}

// ProcessEscalations reassigns overdue steps to the first active user holding the step's escalation role.
func (e *Engine) ProcessEscalations(ctx context.Context, now time.Time) (int, error) {
	escalated := 0

	err := e.forEachOpen(ctx, func(_ *run, progress *models.StepProgress, step *models.WorkflowStep) error {
		if progress.DueDate == nil || !progress.DueDate.Before(now) || progress.EscalatedTo != "" || step.EscalationRoleID == "" {
			return nil
		}

		user, err := e.directory.FirstActiveUserInRole(ctx, step.EscalationRoleID)
		if err != nil {
			return err
		}

		if user == nil {
			e.logger.WarnContext(ctx, "No active user for escalation role",
				"step_id", step.ID, "role_id", step.EscalationRoleID)

			return nil
		}

		progress.DelegatedBy = progress.AssignedTo
		progress.DelegatedTo = user.ID
		progress.DelegatedDate = &now
		progress.DelegationReason = escalationReason
		progress.AssignedTo = user.ID
		progress.EscalatedTo = user.ID
		progress.EscalatedDate = &now

		err = e.saveProgress(ctx, progress)
		if err != nil {
			return err
		}

		escalated++

		e.logger.InfoContext(ctx, "Escalated overdue workflow step", "step_id", step.ID, "user_id", user.ID)
		e.events.publish(ctx, progress.SubmissionID, events.WorkflowStepEscalated{
			BaseEvent:        events.NewBaseEvent(events.WorkflowStepEscalatedEvent, ""),
			StepEvent:        stepEvent(progress),
			EscalatedTo:      user.ID,
			EscalationRoleID: step.EscalationRoleID,
			DueDate:          progress.DueDate,
		})

		return nil
	})

	return escalated, err
}

// ProcessAutoApprovals approves open steps whose auto-approve condition holds for the submitted answers.
func (e *Engine) ProcessAutoApprovals(ctx context.Context, now time.Time) (int, error) {
	approved := 0

	err := e.forEachOpen(ctx, func(r *run, progress *models.StepProgress, step *models.WorkflowStep) error {
		if !progress.Status.IsOpen() || step.AutoApproveCondition == "" {
			return nil
		}

		condition, err := ParseAutoApproveCondition(step.AutoApproveCondition)
		if err != nil {
			e.logger.WarnContext(ctx, "Skipping invalid auto-approve condition", "step_id", step.ID, "error", err)

			return nil
		}

		if condition == nil {
			return nil
		}

		value, ok := r.responseValue(condition.Field)
		if !ok || !condition.Holds(value) {
			return nil
		}

		progress.Status = models.ProgressApproved
		progress.ReviewedDate = &now
		progress.Comments = autoApproveReason

		err = e.saveProgress(ctx, progress)
		if err != nil {
			return err
		}

		approved++

		e.logger.InfoContext(ctx, "Auto-approved workflow step", "submission_id", progress.SubmissionID, "step_id", step.ID)
		e.metrics.WorkflowAction("AutoApprove")
		e.events.publish(ctx, progress.SubmissionID, events.WorkflowStepCompleted{
			BaseEvent:  events.NewBaseEvent(events.WorkflowStepCompletedEvent, ""),
			StepEvent:  stepEvent(progress),
			ActionCode: models.ActionApprove,
			Status:     string(progress.Status),
		})

		return e.advance(ctx, r, progress, "", now)
	})

	return approved, err
}

// forEachOpen visits every open progress record with its run and step. Records whose submission,
// template or workflow is gone are skipped.
func (e *Engine) forEachOpen(ctx context.Context, visit func(*run, *models.StepProgress, *models.WorkflowStep) error) error {
	open, err := e.persistence.ProgressRepository().GetOpen(ctx)
	if err != nil {
		return fmt.Errorf("failed to list open workflow progress: %w", err)
	}

	runs := make(map[string]*run)

	for _, stored := range open {
		r, ok := runs[stored.SubmissionID]
		if !ok {
			r, err = e.loadRun(ctx, stored.SubmissionID)
			if IsNotFoundError(err) || errors.Is(err, ErrTemplateNoWorkflow) {
				e.logger.DebugContext(ctx, "Skipping orphaned workflow progress", "progress_id", stored.ID, "error", err)

				continue
			}

			if err != nil {
				return err
			}

			runs[stored.SubmissionID] = r
		}

		progress := r.find(stored.ID)
		if progress == nil || !progress.Status.IsOpen() {
			continue
		}

		step := r.step(progress)
		if step == nil {
			continue
		}

		err = visit(r, progress, step)
		if err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) action(ctx context.Context, actionID string) (*models.WorkflowAction, error) {
	action, err := e.persistence.WorkflowActionRepository().GetByID(ctx, actionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow action: %w", err)
	}

	return action, nil
}

func (e *Engine) actionsByID(ctx context.Context) (map[string]*models.WorkflowAction, error) {
	actions, err := e.persistence.WorkflowActionRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow actions: %w", err)
	}

	byID := make(map[string]*models.WorkflowAction, len(actions))
	for _, action := range actions {
		byID[action.ID] = action
	}

	return byID, nil
}

func (e *Engine) saveProgress(ctx context.Context, progress *models.StepProgress) error {
	err := e.persistence.ProgressRepository().Save(ctx, progress)
	if err != nil {
		return fmt.Errorf("failed to save workflow progress: %w", err)
	}

	return nil
}

func currentOrder(progress []*models.StepProgress) int {
	lowestOpen, highest := 0, 0
	found := false

	for _, p := range progress {
		highest = max(highest, p.StepOrder)

		if p.Status.IsOpen() && (!found || p.StepOrder < lowestOpen) {
			lowestOpen = p.StepOrder
			found = true
		}
	}

	if found {
		return lowestOpen
	}

	return highest
}

func currentSteps(progress []*models.StepProgress) []*models.StepProgress {
	order := currentOrder(progress)
	current := make([]*models.StepProgress, 0)

	for _, p := range progress {
		if p.StepOrder == order && p.Status.IsOpen() {
			current = append(current, p)
		}
	}

	return current
}

func statusOf(progress []*models.StepProgress) WorkflowStatus {
	if len(progress) == 0 {
		return WorkflowNotStarted
	}

	if slices.ContainsFunc(progress, func(p *models.StepProgress) bool { return p.Status == models.ProgressRejected }) {
		return WorkflowRejected
	}

	if !slices.ContainsFunc(progress, func(p *models.StepProgress) bool { return !p.Status.IsDone() }) {
		return WorkflowCompleted
	}

	if slices.ContainsFunc(progress, func(p *models.StepProgress) bool { return p.Status == models.ProgressInProgress }) {
		return WorkflowInProgress
	}

	return WorkflowPending
}

func stepEvent(progress *models.StepProgress) events.StepEvent {
	return events.StepEvent{
		SubmissionID: progress.SubmissionID,
		ProgressID:   progress.ID,
		StepID:       progress.StepID,
		StepOrder:    progress.StepOrder,
	}
}
