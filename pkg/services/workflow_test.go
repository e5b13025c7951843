package services

import (
	"testing"

	"github.com/dukex/formreport/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewSteps() []*models.WorkflowStep {
	return []*models.WorkflowStep{
		{StepName: "Manager review", ActionID: "action-review", AssigneeType: models.AssigneeRole, ApproverRoleID: "manager", IsMandatory: true},
		{StepName: "Director approval", ActionID: "action-approve", AssigneeType: models.AssigneeRole, ApproverRoleID: "director", IsMandatory: true},
	}
}

func createTestWorkflow(t *testing.T, s *Services, steps []*models.WorkflowStep) *models.Workflow {
	t.Helper()

	workflow, err := s.Workflows.Create(t.Context(), &models.Workflow{WorkflowName: "Two level approval", Steps: steps}, "admin")
	require.NoError(t, err)

	return workflow
}

func TestWorkflow_Create(t *testing.T) {
	s, _ := newTestServices(t)

	workflow := createTestWorkflow(t, s, reviewSteps())

	assert.NotEmpty(t, workflow.ID)
	assert.True(t, workflow.IsActive)
	assert.Equal(t, "admin", workflow.CreatedBy)
	require.Len(t, workflow.Steps, 2)
	assert.Equal(t, 1, workflow.Steps[0].StepOrder)
	assert.Equal(t, 2, workflow.Steps[1].StepOrder)
	assert.Equal(t, models.TargetSubmission, workflow.Steps[0].TargetType)

	fetched, err := s.Workflows.Get(t.Context(), workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.Steps[0].ID, fetched.Steps[0].ID)
	assert.Equal(t, workflow.ID, fetched.Steps[0].WorkflowID)
}

func TestWorkflow_CreateValidation(t *testing.T) {
	s, _ := newTestServices(t)

	tests := []struct {
		name     string
		workflow *models.Workflow
		wantErr  error
	}{
		{
			name:     "missing name",
			workflow: &models.Workflow{WorkflowName: "  "},
			wantErr:  ErrNameRequired,
		},
		{
			name: "unknown action",
			workflow: &models.Workflow{WorkflowName: "Broken", Steps: []*models.WorkflowStep{
				{StepName: "Sign", ActionID: "action-dance", AssigneeType: models.AssigneeSubmitter},
			}},
			wantErr: ErrInvalidRequest,
		},
		{
			name: "invalid auto approve condition",
			workflow: &models.Workflow{WorkflowName: "Broken", Steps: []*models.WorkflowStep{
				{
					StepName: "Check", ActionID: "action-approve", AssigneeType: models.AssigneeSubmitter,
					AutoApproveCondition: `{"field":"Total","operator":"~","value":1}`,
				},
			}},
			wantErr: ErrInvalidCondition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Workflows.Create(t.Context(), tt.workflow, "admin")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWorkflow_UpdateAndList(t *testing.T) {
	s, _ := newTestServices(t)
	ctx := t.Context()

	first := createTestWorkflow(t, s, reviewSteps())
	second := createTestWorkflow(t, s, reviewSteps())

	inactive := false
	name := "Renamed"
	updated, err := s.Workflows.Update(ctx, first.ID, WorkflowUpdate{WorkflowName: &name, IsActive: &inactive}, "editor")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.WorkflowName)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "editor", updated.ModifiedBy)

	all, err := s.Workflows.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)

	active := true
	onlyActive, err := s.Workflows.List(ctx, &active)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, second.ID, onlyActive[0].ID)

	_, err = s.Workflows.Update(ctx, "missing", WorkflowUpdate{}, "editor")
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestWorkflow_StepManagement(t *testing.T) {
	s, p := newTestServices(t)
	ctx := t.Context()
	workflow := createTestWorkflow(t, s, reviewSteps())

	added, err := s.Workflows.AddStep(ctx, workflow.ID, &models.WorkflowStep{
		StepName:     "Sign off",
		ActionID:     "action-sign",
		AssigneeType: models.AssigneeSubmitter,
	}, "admin")
	require.NoError(t, err)
	assert.Equal(t, 3, added.StepOrder)

	dueDays := 5
	updated, err := s.Workflows.UpdateStep(ctx, workflow.ID, added.ID, StepUpdate{DueDays: &dueDays}, "admin")
	require.NoError(t, err)
	assert.Equal(t, 5, updated.DueDays)
	assert.Equal(t, "Sign off", updated.StepName)

	reordered, err := s.Workflows.ReorderSteps(ctx, workflow.ID, []StepOrder{
		{StepID: added.ID, NewOrder: 1},
		{StepID: workflow.Steps[0].ID, NewOrder: 2},
		{StepID: workflow.Steps[1].ID, NewOrder: 3},
		{StepID: "missing", NewOrder: 9},
	}, "admin")
	require.NoError(t, err)
	assert.Equal(t, added.ID, reordered.Steps[0].ID)

	require.NoError(t, p.ProgressRepository().Save(ctx, &models.StepProgress{
		SubmissionID: "sub-1",
		StepID:       workflow.Steps[0].ID,
		StepOrder:    2,
		Status:       models.ProgressPending,
	}))

	err = s.Workflows.DeleteStep(ctx, workflow.ID, workflow.Steps[0].ID, "admin")
	require.ErrorIs(t, err, ErrStepInUse)

	require.NoError(t, s.Workflows.DeleteStep(ctx, workflow.ID, added.ID, "admin"))

	err = s.Workflows.DeleteStep(ctx, workflow.ID, added.ID, "admin")
	require.ErrorIs(t, err, ErrStepNotFound)

	fetched, err := s.Workflows.Get(ctx, workflow.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Steps, 2)
	assert.Equal(t, 1, fetched.Steps[0].StepOrder, "orders are renumbered after a delete")
	assert.Equal(t, 2, fetched.Steps[1].StepOrder)
}

func TestWorkflow_DeleteStepRenumbers(t *testing.T) {
	s, _ := newTestServices(t)
	ctx := t.Context()

	workflow := createTestWorkflow(t, s, []*models.WorkflowStep{
		{StepName: "Review", ActionID: "action-review", AssigneeType: models.AssigneeSubmitter, StepOrder: 1},
		{StepName: "Finance", ActionID: "action-review", AssigneeType: models.AssigneeSubmitter, StepOrder: 2, IsParallel: true},
		{StepName: "Legal", ActionID: "action-review", AssigneeType: models.AssigneeSubmitter, StepOrder: 2, IsParallel: true},
		{StepName: "Sign off", ActionID: "action-review", AssigneeType: models.AssigneeSubmitter, StepOrder: 3},
	})

	review, finance, signOff := workflow.Steps[0], workflow.Steps[1], workflow.Steps[3]

	_, err := s.Workflows.UpdateStep(ctx, workflow.ID, signOff.ID, StepUpdate{DependsOnStepIDs: []string{review.ID}}, "admin")
	require.NoError(t, err)

	require.NoError(t, s.Workflows.DeleteStep(ctx, workflow.ID, review.ID, "admin"))

	fetched, err := s.Workflows.Get(ctx, workflow.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Steps, 3)

	orders := make(map[string]int, len(fetched.Steps))
	for _, step := range fetched.Steps {
		orders[step.StepName] = step.StepOrder
	}

	assert.Equal(t, map[string]int{"Finance": 1, "Legal": 1, "Sign off": 2}, orders)
	assert.Empty(t, fetched.Step(signOff.ID).DependsOnStepIDs)
	assert.Equal(t, 1, fetched.Step(finance.ID).StepOrder)
}

func TestValidateSteps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		steps        []*models.WorkflowStep
		wantValid    bool
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name:       "no steps",
			steps:      nil,
			wantValid:  false,
			wantErrors: []string{"Workflow must have at least one step"},
		},
		{
			name: "valid",
			steps: []*models.WorkflowStep{
				{ID: "s1", StepName: "Review", StepOrder: 1, AssigneeType: models.AssigneeRole, ApproverRoleID: "manager"},
				{ID: "s2", StepName: "Sign", StepOrder: 2, AssigneeType: models.AssigneeSubmitter, DependsOnStepIDs: []string{"s1"}},
			},
			wantValid: true,
		},
		{
			name: "parallel steps share an order",
			steps: []*models.WorkflowStep{
				{ID: "s1", StepName: "Finance", StepOrder: 1, IsParallel: true, AssigneeType: models.AssigneePreviousActor},
				{ID: "s2", StepName: "Legal", StepOrder: 1, IsParallel: true, AssigneeType: models.AssigneePreviousActor},
			},
			wantValid: true,
		},
		{
			name: "duplicate orders",
			steps: []*models.WorkflowStep{
				{ID: "s1", StepName: "A", StepOrder: 2, AssigneeType: models.AssigneeSubmitter},
				{ID: "s2", StepName: "B", StepOrder: 2, AssigneeType: models.AssigneeSubmitter},
				{ID: "s3", StepName: "C", StepOrder: 1, AssigneeType: models.AssigneeSubmitter},
				{ID: "s4", StepName: "D", StepOrder: 1, IsParallel: true, AssigneeType: models.AssigneeSubmitter},
			},
			wantValid:  false,
			wantErrors: []string{"Duplicate step orders found (non-parallel): 1, 2"},
		},
		{
			name: "dependencies",
			steps: []*models.WorkflowStep{
				{ID: "s1", StepName: "Loop", StepOrder: 1, AssigneeType: models.AssigneeSubmitter, DependsOnStepIDs: []string{"s1", "ghost"}},
			},
			wantValid:    false,
			wantErrors:   []string{"Step Loop cannot depend on itself"},
			wantWarnings: []string{"Step Loop references non-existent dependencies: ghost"},
		},
		{
			name: "circular dependencies",
			steps: []*models.WorkflowStep{
				{ID: "s1", StepName: "A", StepOrder: 1, AssigneeType: models.AssigneeSubmitter, DependsOnStepIDs: []string{"s2"}},
				{ID: "s2", StepName: "B", StepOrder: 2, AssigneeType: models.AssigneeSubmitter, DependsOnStepIDs: []string{"s1"}},
				{ID: "s3", StepName: "C", StepOrder: 3, AssigneeType: models.AssigneeSubmitter, DependsOnStepIDs: []string{"s1"}},
			},
			wantValid:  false,
			wantErrors: []string{"Circular step dependencies found: B"},
		},
		{
			name: "assignees",
			steps: []*models.WorkflowStep{
				{ID: "s1", StepName: "Review", StepOrder: 1, AssigneeType: models.AssigneeRole},
				{ID: "s2", StepName: "Mystery", StepOrder: 2, AssigneeType: "Oracle"},
			},
			wantValid:    false,
			wantErrors:   []string{"Step Mystery has unknown assignee type 'Oracle'"},
			wantWarnings: []string{"Step Review has no assignee configured for type 'Role'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := ValidateSteps(tt.steps)
			assert.Equal(t, tt.wantValid, result.IsValid)

			if tt.wantErrors == nil {
				assert.Empty(t, result.Errors)
			} else {
				assert.Equal(t, tt.wantErrors, result.Errors)
			}

			if tt.wantWarnings == nil {
				assert.Empty(t, result.Warnings)
			} else {
				assert.Equal(t, tt.wantWarnings, result.Warnings)
			}
		})
	}
}

func TestWorkflow_DeleteSoftAndHard(t *testing.T) {
	s, _ := newTestServices(t)
	ctx := t.Context()

	used := createTestWorkflow(t, s, reviewSteps())
	unused := createTestWorkflow(t, s, reviewSteps())

	template := createTestTemplate(t, s, "Approved Report")
	_, err := s.Templates.Update(ctx, template.ID, TemplateUpdate{WorkflowID: &used.ID}, "admin")
	require.NoError(t, err)

	canDelete, err := s.Workflows.CanDelete(ctx, used.ID)
	require.NoError(t, err)
	assert.False(t, canDelete)

	mode, err := s.Workflows.Delete(ctx, used.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, DeleteSoft, mode)

	deactivated, err := s.Workflows.Get(ctx, used.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	mode, err = s.Workflows.Delete(ctx, unused.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, DeleteHard, mode)

	_, err = s.Workflows.Get(ctx, unused.ID)
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestWorkflow_Clone(t *testing.T) {
	s, _ := newTestServices(t)
	ctx := t.Context()

	source := createTestWorkflow(t, s, reviewSteps())
	dependsOn := []string{source.Steps[0].ID}
	_, err := s.Workflows.UpdateStep(ctx, source.ID, source.Steps[1].ID, StepUpdate{DependsOnStepIDs: dependsOn}, "admin")
	require.NoError(t, err)

	inactive := false
	_, err = s.Workflows.Update(ctx, source.ID, WorkflowUpdate{IsActive: &inactive}, "admin")
	require.NoError(t, err)

	clone, err := s.Workflows.Clone(ctx, source.ID, "Copy", "cloner")
	require.NoError(t, err)
	assert.NotEqual(t, source.ID, clone.ID)
	assert.Equal(t, "Copy", clone.WorkflowName)
	assert.True(t, clone.IsActive)
	require.Len(t, clone.Steps, 2)
	assert.NotEqual(t, source.Steps[0].ID, clone.Steps[0].ID)
	assert.Equal(t, "Director approval", clone.Steps[1].StepName)
	assert.Empty(t, clone.Steps[1].DependsOnStepIDs)

	_, err = s.Workflows.Clone(ctx, source.ID, " ", "cloner")
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestWorkflow_ListActions(t *testing.T) {
	s, _ := newTestServices(t)

	actions, err := s.Workflows.ListActions(t.Context())
	require.NoError(t, err)
	require.Len(t, actions, 6)
	assert.Equal(t, models.ActionFill, actions[0].ActionCode)
	assert.Equal(t, models.ActionVerify, actions[5].ActionCode)
}
