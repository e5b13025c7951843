package services

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/persistence"
)

// DeleteMode tells whether Delete deactivated or removed a workflow.
type DeleteMode string

const (
	DeleteSoft DeleteMode = "soft"
	DeleteHard DeleteMode = "hard"
)

var assigneeTypes = []models.AssigneeType{
	models.AssigneeRole,
	models.AssigneeUser,
	models.AssigneeDepartment,
	models.AssigneeSubmitter,
	models.AssigneePreviousActor,
	models.AssigneeFieldValue,
}

type Workflow struct {
	persistence persistence.Persistence
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(persistence persistence.Persistence) *Workflow {
	return &Workflow{
		persistence: persistence,
	}
}

// List returns the workflows, most recently modified first. A nil isActive returns every workflow.
func (w *Workflow) List(ctx context.Context, isActive *bool) ([]*models.Workflow, error) {
	workflows, err := w.persistence.WorkflowRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	if isActive != nil {
		workflows = slices.DeleteFunc(workflows, func(workflow *models.Workflow) bool {
			return workflow.IsActive != *isActive
		})
	}

	slices.SortStableFunc(workflows, func(a, b *models.Workflow) int {
		return lastModified(b).Compare(lastModified(a))
	})

	for _, workflow := range workflows {
		workflow.SortSteps()
	}

	return workflows, nil
}

// Get retrieves a workflow by its ID with its steps in order.
func (w *Workflow) Get(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	if workflow == nil {
		return nil, ErrWorkflowNotFound
	}

	workflow.SortSteps()

	return workflow, nil
}

// Create adds a new active workflow. Steps without an order are numbered in the order given.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow, userID string) (*models.Workflow, error) {
	workflow.WorkflowName = strings.TrimSpace(workflow.WorkflowName)
	if workflow.WorkflowName == "" {
		return nil, NewValidationError("CreateWorkflow", "NAME_REQUIRED", "workflow name is required", ErrNameRequired)
	}

	for index, step := range workflow.Steps {
		if step.StepOrder <= 0 {
			step.StepOrder = index + 1
		}

		err := w.prepareStep(ctx, "CreateWorkflow", step)
		if err != nil {
			return nil, err
		}

		step.ID = newUUID()
	}

	workflow.ID = newUUID()
	workflow.IsActive = true
	workflow.CreatedBy = userID
	workflow.ModifiedBy = userID
	workflow.CreatedAt = w.now()
	workflow.UpdatedAt = workflow.CreatedAt
	workflow.SortSteps()

	return w.save(ctx, workflow)
}

// WorkflowUpdate holds the fields of a partial workflow update. Nil fields are left untouched.
type WorkflowUpdate struct {
	WorkflowName *string
	Description  *string
	IsActive     *bool
}

// Update modifies an existing workflow by its ID.
func (w *Workflow) Update(ctx context.Context, id string, update WorkflowUpdate, userID string) (*models.Workflow, error) {
	workflow, err := w.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.WorkflowName != nil && strings.TrimSpace(*update.WorkflowName) != "" {
		workflow.WorkflowName = strings.TrimSpace(*update.WorkflowName)
	}

	setIfPresent(&workflow.Description, update.Description)
	setIfPresent(&workflow.IsActive, update.IsActive)
	workflow.ModifiedBy = userID

	return w.save(ctx, workflow)
}

// Delete deactivates a workflow that templates still reference and removes it otherwise.
func (w *Workflow) Delete(ctx context.Context, id string, userID string) (DeleteMode, error) {
	workflow, err := w.Get(ctx, id)
	if err != nil {
		return "", err
	}

	inUse, err := w.inUse(ctx, id)
	if err != nil {
		return "", err
	}

	if inUse {
		workflow.IsActive = false
		workflow.ModifiedBy = userID

		_, err = w.save(ctx, workflow)
		if err != nil {
			return "", err
		}

		return DeleteSoft, nil
	}

	err = w.persistence.WorkflowRepository().Delete(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to delete workflow: %w", err)
	}

	return DeleteHard, nil
}

// CanDelete reports whether no template references the workflow.
func (w *Workflow) CanDelete(ctx context.Context, id string) (bool, error) {
	_, err := w.Get(ctx, id)
	if err != nil {
		return false, err
	}

	inUse, err := w.inUse(ctx, id)
	if err != nil {
		return false, err
	}

	return !inUse, nil
}

// AddStep appends a step. Without an order it goes after the current last step.
func (w *Workflow) AddStep(ctx context.Context, workflowID string, step *models.WorkflowStep, userID string) (*models.WorkflowStep, error) {
	workflow, err := w.Get(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if step.StepOrder <= 0 {
		step.StepOrder = workflow.MaxStepOrder() + 1
	}

	err = w.prepareStep(ctx, "AddStep", step)
	if err != nil {
		return nil, err
	}

	step.ID = newUUID()
	step.WorkflowID = workflowID
	workflow.Steps = append(workflow.Steps, step)
	workflow.ModifiedBy = userID
	workflow.SortSteps()

	_, err = w.save(ctx, workflow)
	if err != nil {
		return nil, err
	}

	return step, nil
}

// StepUpdate holds the fields of a partial step update. Nil fields are left untouched.
type StepUpdate struct {
	StepOrder            *int
	StepName             *string
	ActionID             *string
	TargetType           *models.TargetType
	TargetID             *string
	AssigneeType         *models.AssigneeType
	ApproverRoleID       *string
	ApproverUserID       *string
	AssigneeDepartmentID *string
	AssigneeFieldID      *string
	IsMandatory          *bool
	IsParallel           *bool
	DueDays              *int
	EscalationRoleID     *string
	ConditionLogic       *string
	AutoApproveCondition *string
	DependsOnStepIDs     []string
}

func (w *Workflow) UpdateStep(ctx context.Context, workflowID, stepID string, update StepUpdate, userID string) (*models.WorkflowStep, error) {
	workflow, err := w.Get(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	step := workflow.Step(stepID)
	if step == nil {
		return nil, ErrStepNotFound
	}

	if update.StepName != nil && strings.TrimSpace(*update.StepName) != "" {
		step.StepName = strings.TrimSpace(*update.StepName)
	}

	setIfPresent(&step.StepOrder, update.StepOrder)
	setIfPresent(&step.ActionID, update.ActionID)
	setIfPresent(&step.TargetType, update.TargetType)
	setIfPresent(&step.TargetID, update.TargetID)
	setIfPresent(&step.AssigneeType, update.AssigneeType)
	setIfPresent(&step.ApproverRoleID, update.ApproverRoleID)
	setIfPresent(&step.ApproverUserID, update.ApproverUserID)
	setIfPresent(&step.AssigneeDepartmentID, update.AssigneeDepartmentID)
	setIfPresent(&step.AssigneeFieldID, update.AssigneeFieldID)
	setIfPresent(&step.IsMandatory, update.IsMandatory)
	setIfPresent(&step.IsParallel, update.IsParallel)
	setIfPresent(&step.DueDays, update.DueDays)
	setIfPresent(&step.EscalationRoleID, update.EscalationRoleID)
	setIfPresent(&step.ConditionLogic, update.ConditionLogic)
	setIfPresent(&step.AutoApproveCondition, update.AutoApproveCondition)

	if update.DependsOnStepIDs != nil {
		step.DependsOnStepIDs = slices.Clone(update.DependsOnStepIDs)
	}

	err = w.prepareStep(ctx, "UpdateStep", step)
	if err != nil {
		return nil, err
	}

	workflow.ModifiedBy = userID
	workflow.SortSteps()

	_, err = w.save(ctx, workflow)
	if err != nil {
		return nil, err
	}

	return step, nil
}

// DeleteStep removes a step that no submission has progress on.
func (w *Workflow) DeleteStep(ctx context.Context, workflowID, stepID, userID string) error {
	workflow, err := w.Get(ctx, workflowID)
	if err != nil {
		return err
	}

	if workflow.Step(stepID) == nil {
		return ErrStepNotFound
	}

	count, err := w.persistence.ProgressRepository().CountByStep(ctx, stepID)
	if err != nil {
		return fmt.Errorf("failed to count step progress: %w", err)
	}

	if count > 0 {
		return newConflictError("DeleteStep",
			fmt.Sprintf("step has %d progress record(s)", count), ErrStepInUse)
	}

	workflow.Steps = slices.DeleteFunc(workflow.Steps, func(step *models.WorkflowStep) bool {
		return step.ID == stepID
	})

	for _, step := range workflow.Steps {
		step.DependsOnStepIDs = slices.DeleteFunc(step.DependsOnStepIDs, func(id string) bool { return id == stepID })
	}

	compactStepOrders(workflow.Steps)
	workflow.ModifiedBy = userID

	_, err = w.save(ctx, workflow)

	return err
}

// compactStepOrders renumbers the distinct step orders to 1..n. Parallel steps keep sharing an order.
func compactStepOrders(steps []*models.WorkflowStep) {
	orders := make([]int, 0, len(steps))
	for _, step := range steps {
		orders = append(orders, step.StepOrder)
	}

	slices.Sort(orders)
	orders = slices.Compact(orders)

	for _, step := range steps {
		index, _ := slices.BinarySearch(orders, step.StepOrder)
		step.StepOrder = index + 1
	}
}

// StepOrder moves one step to a new position.
type StepOrder struct {
	StepID   string `json:"step_id"`
	NewOrder int    `json:"new_order"`
}

// ReorderSteps applies the new orders. Unknown step IDs are ignored.
func (w *Workflow) ReorderSteps(ctx context.Context, workflowID string, orders []StepOrder, userID string) (*models.Workflow, error) {
	workflow, err := w.Get(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	for _, order := range orders {
		if step := workflow.Step(order.StepID); step != nil {
			step.StepOrder = order.NewOrder
		}
	}

	workflow.ModifiedBy = userID
	workflow.SortSteps()

	return w.save(ctx, workflow)
}

// ValidationResult lists the problems found in a workflow. Warnings do not make it invalid.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (r *ValidationResult) addError(format string, args ...any) {
	r.IsValid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks the step structure of a workflow.
func (w *Workflow) Validate(ctx context.Context, id string) (*ValidationResult, error) {
	workflow, err := w.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return ValidateSteps(workflow.Steps), nil
}

// ValidateSteps checks step orders, dependencies and assignee configuration.
func ValidateSteps(steps []*models.WorkflowStep) *ValidationResult {
	result := &ValidationResult{IsValid: true, Errors: make([]string, 0), Warnings: make([]string, 0)}

	if len(steps) == 0 {
		result.addError("Workflow must have at least one step")
	}

	byOrder := make(map[int][]*models.WorkflowStep)
	for _, step := range steps {
		byOrder[step.StepOrder] = append(byOrder[step.StepOrder], step)
	}

	duplicates := make([]string, 0)

	for _, order := range slices.Sorted(maps.Keys(byOrder)) {
		group := byOrder[order]
		allParallel := !slices.ContainsFunc(group, func(step *models.WorkflowStep) bool { return !step.IsParallel })

		if len(group) > 1 && !allParallel {
			duplicates = append(duplicates, strconv.Itoa(order))
		}
	}

	if len(duplicates) > 0 {
		result.addError("Duplicate step orders found (non-parallel): %s", strings.Join(duplicates, ", "))
	}

	known := make(map[string]bool, len(steps))
	for _, step := range steps {
		known[step.ID] = true
	}

	for _, step := range steps {
		missing := make([]string, 0)

		for _, dependency := range step.DependsOnStepIDs {
			if !known[dependency] {
				missing = append(missing, dependency)
			}
		}

		if len(missing) > 0 {
			result.addWarning("Step %s references non-existent dependencies: %s", step.StepName, strings.Join(missing, ", "))
		}

		if slices.Contains(step.DependsOnStepIDs, step.ID) {
			result.addError("Step %s cannot depend on itself", step.StepName)
		}
	}

	cyclic := dependencyCycles(steps)
	if len(cyclic) > 0 {
		result.addError("Circular step dependencies found: %s", strings.Join(cyclic, ", "))
	}

	for _, step := range steps {
		if !slices.Contains(assigneeTypes, step.AssigneeType) {
			result.addError("Step %s has unknown assignee type '%s'", step.StepName, step.AssigneeType)

			continue
		}

		if !hasAssignee(step) {
			result.addWarning("Step %s has no assignee configured for type '%s'", step.StepName, step.AssigneeType)
		}
	}

	return result
}

// dependencyCycles returns the names of the steps that close a dependency cycle of two or more steps.
// Self dependencies are reported separately.
func dependencyCycles(steps []*models.WorkflowStep) []string {
	const (
		unvisited = iota
		visiting
		visited
	)

	byID := make(map[string]*models.WorkflowStep, len(steps))
	for _, step := range steps {
		byID[step.ID] = step
	}

	state := make(map[string]int, len(steps))
	cyclic := make([]string, 0)

	var visit func(step *models.WorkflowStep)
	visit = func(step *models.WorkflowStep) {
		state[step.ID] = visiting

		for _, id := range step.DependsOnStepIDs {
			dependency, ok := byID[id]
			if !ok || id == step.ID {
				continue
			}

			switch state[id] {
			case visiting:
				cyclic = append(cyclic, step.StepName)
			case unvisited:
				visit(dependency)
			}
		}

		state[step.ID] = visited
	}

	for _, step := range steps {
		if state[step.ID] == unvisited {
			visit(step)
		}
	}

	return cyclic
}

func hasAssignee(step *models.WorkflowStep) bool {
	switch step.AssigneeType {
	case models.AssigneeRole:
		return step.ApproverRoleID != ""
	case models.AssigneeUser:
		return step.ApproverUserID != ""
	case models.AssigneeDepartment:
		return step.AssigneeDepartmentID != ""
	case models.AssigneeFieldValue:
		return step.AssigneeFieldID != ""
	case models.AssigneeSubmitter, models.AssigneePreviousActor:
		return true
	default:
		return false
	}
}

// Clone copies a workflow and its steps under a new name. Step dependencies are not carried over.
func (w *Workflow) Clone(ctx context.Context, id, newName, userID string) (*models.Workflow, error) {
	source, err := w.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(newName) == "" {
		return nil, NewValidationError("CloneWorkflow", "NAME_REQUIRED", "workflow name is required", ErrNameRequired)
	}

	clone := &models.Workflow{
		ID:           newUUID(),
		WorkflowName: strings.TrimSpace(newName),
		Description:  source.Description,
		IsActive:     true,
		CreatedBy:    userID,
		ModifiedBy:   userID,
		CreatedAt:    w.now(),
		Steps:        make([]*models.WorkflowStep, 0, len(source.Steps)),
	}
	clone.UpdatedAt = clone.CreatedAt

	for _, step := range source.Steps {
		copied := *step
		copied.ID = newUUID()
		copied.WorkflowID = clone.ID
		copied.DependsOnStepIDs = nil
		clone.Steps = append(clone.Steps, &copied)
	}

	return w.save(ctx, clone)
}

// ListActions returns the active workflow actions by display order.
func (w *Workflow) ListActions(ctx context.Context) ([]*models.WorkflowAction, error) {
	actions, err := w.persistence.WorkflowActionRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow actions: %w", err)
	}

	actions = slices.DeleteFunc(actions, func(action *models.WorkflowAction) bool {
		return !action.IsActive
	})

	slices.SortStableFunc(actions, func(a, b *models.WorkflowAction) int {
		return a.DisplayOrder - b.DisplayOrder
	})

	return actions, nil
}

// prepareStep checks the step's name, action and conditions.
func (w *Workflow) prepareStep(ctx context.Context, op string, step *models.WorkflowStep) error {
	step.StepName = strings.TrimSpace(step.StepName)
	if step.StepName == "" {
		return NewValidationError(op, "STEP_NAME_REQUIRED", "step name is required", ErrNameRequired)
	}

	action, err := w.persistence.WorkflowActionRepository().GetByID(ctx, step.ActionID)
	if err != nil {
		return fmt.Errorf("failed to get workflow action: %w", err)
	}

	if action == nil {
		return NewValidationError(op, "INVALID_ACTION",
			fmt.Sprintf("unknown workflow action '%s'", step.ActionID), ErrInvalidRequest)
	}

	if step.TargetType == "" {
		step.TargetType = models.TargetSubmission
	}

	if step.AssigneeType == "" {
		step.AssigneeType = models.AssigneeRole
	}

	err = ValidateStepCondition(step.ConditionLogic)
	if err != nil {
		return err
	}

	return ValidateAutoApproveCondition(step.AutoApproveCondition)
}

func (w *Workflow) inUse(ctx context.Context, id string) (bool, error) {
	templates, err := w.persistence.TemplateRepository().GetAll(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list templates: %w", err)
	}

	return slices.ContainsFunc(templates, func(template *models.FormTemplate) bool {
		return template.WorkflowID == id
	}), nil
}

func (w *Workflow) save(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	err := w.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	return workflow, nil
}

func (w *Workflow) now() time.Time {
	return time.Now().UTC()
}

func lastModified(workflow *models.Workflow) time.Time {
	if workflow.UpdatedAt.IsZero() {
		return workflow.CreatedAt
	}

	return workflow.UpdatedAt
}
