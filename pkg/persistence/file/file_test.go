package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPersistence(t *testing.T) {
	// Test with regular path
	p := NewPersistence("/tmp/test")
	fp := p.(*Persistence)
	assert.Equal(t, "/tmp/test", fp.root)

	// Test with file:// prefix
	p = NewPersistence("file:///tmp/test")
	fp = p.(*Persistence)
	assert.Equal(t, "/tmp/test", fp.root)
}

func TestPersistence_HealthCheck(t *testing.T) {
	p := NewPersistence(t.TempDir())
	require.NoError(t, p.HealthCheck(t.Context()))
	require.NoError(t, p.Close(t.Context()))

	missing := NewPersistence(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, missing.HealthCheck(t.Context()), os.ErrNotExist)
}

func TestWorkflowRepository_SaveAssignsIDs(t *testing.T) {
	testDir := t.TempDir()
	repo := NewPersistence(testDir).WorkflowRepository()

	workflow := &models.Workflow{
		WorkflowName: "Monthly approval",
		IsActive:     true,
		Steps: []*models.WorkflowStep{
			{StepOrder: 2, StepName: "Approve", ActionID: "action-approve", AssigneeType: models.AssigneeRole, ApproverRoleID: "manager"},
			{StepOrder: 1, StepName: "Review", ActionID: "action-review", AssigneeType: models.AssigneeSubmitter},
		},
	}

	require.NoError(t, repo.Save(t.Context(), workflow))
	assert.NotEmpty(t, workflow.ID)
	assert.FileExists(t, filepath.Join(testDir, "workflows", workflow.ID+".json"))

	loaded, err := repo.GetByID(t.Context(), workflow.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Steps, 2)
	assert.Equal(t, "Review", loaded.Steps[0].StepName)
	assert.Equal(t, workflow.ID, loaded.Steps[1].WorkflowID)
	assert.NotEmpty(t, loaded.Steps[1].ID)

	require.NoError(t, repo.Delete(t.Context(), workflow.ID))

	missing, err := repo.GetByID(t.Context(), workflow.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWorkflowActionRepository_DefaultCatalogue(t *testing.T) {
	repo := NewPersistence(t.TempDir()).WorkflowActionRepository()

	actions, err := repo.GetAll(t.Context())
	require.NoError(t, err)
	assert.Len(t, actions, 6)

	custom := &models.WorkflowAction{ActionCode: "Acknowledge", ActionName: "Acknowledge", DisplayOrder: 7, IsActive: true}
	require.NoError(t, repo.Save(t.Context(), custom))

	actions, err = repo.GetAll(t.Context())
	require.NoError(t, err)
	assert.Len(t, actions, 7)

	approve, err := repo.GetByID(t.Context(), "action-approve")
	require.NoError(t, err)
	require.NotNil(t, approve)
	assert.Equal(t, models.ActionApprove, approve.ActionCode)
}

func TestTemplateRepository_ListTemplates(t *testing.T) {
	repo := NewPersistence(t.TempDir()).TemplateRepository()

	names := []string{"Alpha Report", "Beta Report", "Gamma Survey"}
	for _, name := range names {
		template := &models.FormTemplate{
			CategoryID:    "cat-1",
			TemplateName:  name,
			TemplateCode:  "TPL_" + name[:4],
			TemplateType:  models.TemplateTypeMonthly,
			PublishStatus: models.PublishStatusDraft,
		}
		require.NoError(t, repo.Save(t.Context(), template))
		time.Sleep(2 * time.Millisecond)
	}

	published := models.PublishStatusPublished

	tests := []struct {
		name      string
		opts      persistence.ListTemplatesOptions
		wantNames []string
		wantTotal int64
		wantNext  bool
		wantErr   bool
	}{
		{
			name:      "sorted by name ascending with page",
			opts:      persistence.ListTemplatesOptions{SortBy: "name", SortOrder: "asc", Limit: 2},
			wantNames: []string{"Alpha Report", "Beta Report"},
			wantTotal: 3,
			wantNext:  true,
		},
		{
			name:      "offset past the end",
			opts:      persistence.ListTemplatesOptions{Offset: 10},
			wantNames: []string{},
			wantTotal: 3,
		},
		{
			name:      "search matches name case-insensitively",
			opts:      persistence.ListTemplatesOptions{Search: "report", SortBy: "name", SortOrder: "desc"},
			wantNames: []string{"Beta Report", "Alpha Report"},
			wantTotal: 2,
		},
		{
			name:      "status filter",
			opts:      persistence.ListTemplatesOptions{PublishStatus: &published},
			wantNames: []string{},
			wantTotal: 0,
		},
		{
			name:    "invalid sort field",
			opts:    persistence.ListTemplatesOptions{SortBy: "owner"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := repo.ListTemplates(t.Context(), tt.opts)
			if tt.wantErr {
				assert.True(t, persistence.IsInvalidSortField(err))

				return
			}

			require.NoError(t, err)

			gotNames := make([]string, 0, len(result.Templates))
			for _, template := range result.Templates {
				gotNames = append(gotNames, template.TemplateName)
			}

			assert.Equal(t, tt.wantNames, gotNames)
			assert.Equal(t, tt.wantTotal, result.TotalCount)
			assert.Equal(t, tt.wantNext, result.HasNextPage)
		})
	}

	byCode, err := repo.GetByCode(t.Context(), "tpl_beta")
	require.NoError(t, err)
	require.NotNil(t, byCode)
	assert.Equal(t, "Beta Report", byCode.TemplateName)
}

func TestProgressRepository_OpenAndBySubmission(t *testing.T) {
	repo := NewPersistence(t.TempDir()).ProgressRepository()

	records := []*models.StepProgress{
		{SubmissionID: "sub-1", StepID: "step-2", StepOrder: 2, Status: models.ProgressPending},
		{SubmissionID: "sub-1", StepID: "step-1", StepOrder: 1, Status: models.ProgressApproved},
		{SubmissionID: "sub-2", StepID: "step-1", StepOrder: 1, Status: models.ProgressInProgress},
	}
	for _, record := range records {
		require.NoError(t, repo.Save(t.Context(), record))
	}

	bySubmission, err := repo.GetBySubmission(t.Context(), "sub-1")
	require.NoError(t, err)
	require.Len(t, bySubmission, 2)
	assert.Equal(t, 1, bySubmission[0].StepOrder)
	assert.Equal(t, 2, bySubmission[1].StepOrder)

	open, err := repo.GetOpen(t.Context())
	require.NoError(t, err)
	assert.Len(t, open, 2)

	count, err := repo.CountByStep(t.Context(), "step-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repo.DeleteBySubmission(t.Context(), "sub-1"))

	bySubmission, err = repo.GetBySubmission(t.Context(), "sub-1")
	require.NoError(t, err)
	assert.Empty(t, bySubmission)
}

func TestSubmissionRepository_Find(t *testing.T) {
	repo := NewPersistence(t.TempDir()).SubmissionRepository()

	text := "42"
	first := &models.Submission{TemplateID: "tpl-1", TenantID: "tenant-1", Status: models.SubmissionDraft, CreatedBy: "user-1",
		Responses: []*models.Response{{ItemID: "item-1", TextValue: &text}}}
	second := &models.Submission{TemplateID: "tpl-2", TenantID: "tenant-1", Status: models.SubmissionSubmitted, SubmittedBy: "user-2"}

	require.NoError(t, repo.Save(t.Context(), first))
	require.NoError(t, repo.Save(t.Context(), second))
	assert.NotEmpty(t, first.Responses[0].ID)

	found, err := repo.Find(t.Context(), persistence.SubmissionFilter{TemplateID: "tpl-1"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, first.ID, found[0].ID)
	require.Len(t, found[0].Responses, 1)
	assert.Equal(t, "42", *found[0].Responses[0].TextValue)

	all, err := repo.Find(t.Context(), persistence.SubmissionFilter{TenantID: "tenant-1"})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDirectoryRepository_UsersSortedByName(t *testing.T) {
	repo := NewPersistence(t.TempDir()).DirectoryRepository()

	require.NoError(t, repo.SaveUser(t.Context(), &models.User{Name: "Zoe", IsActive: true}))
	require.NoError(t, repo.SaveUser(t.Context(), &models.User{Name: "Adam", IsActive: true, RoleIDs: []string{"manager"}}))
	require.NoError(t, repo.SaveTenant(t.Context(), &models.Tenant{ID: "tenant-1", Name: "North", Type: "Branch"}))

	users, err := repo.Users(t.Context())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Adam", users[0].Name)
	assert.True(t, users[0].HasRole("manager"))

	tenant, err := repo.TenantByID(t.Context(), "tenant-1")
	require.NoError(t, err)
	require.NotNil(t, tenant)
	assert.Equal(t, "Branch", tenant.Type)
}
