package postgresql

import (
	"errors"
	"log/slog"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

func newMockPersistence(t *testing.T) (*Persistence, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return newPersistence(db, testLogger), mock
}

var templateRowColumns = []string{
	"id", "category_id", "template_name", "template_code", "description", "template_type", "version", "is_active",
	"requires_approval", "workflow_id", "publish_status", "published_date", "published_by", "archived_date",
	"archived_by", "archived_reason", "submission_mode", "allow_anonymous_access", "sections", "created_by",
	"created_at", "modified_by", "updated_at",
}

func addTemplateRow(rows *sqlmock.Rows, id, name, code, sections string) *sqlmock.Rows {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	return rows.AddRow(id, "cat-1", name, code, "", "Monthly", 1, true,
		true, "", "Draft", nil, "", nil,
		"", "", "Individual", false, sections, "admin",
		now, "", now)
}

func TestCategoryRepository_GetByIDNotFound(t *testing.T) {
	p, mock := newMockPersistence(t)

	mock.ExpectQuery("SELECT .+ FROM categories").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	category, err := p.CategoryRepository().GetByID(t.Context(), "missing")
	require.NoError(t, err)
	assert.Nil(t, category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_SaveGeneratesID(t *testing.T) {
	p, mock := newMockPersistence(t)

	mock.ExpectExec("INSERT INTO categories").WillReturnResult(sqlmock.NewResult(1, 1))

	category := &models.Category{Name: "Finance", IsActive: true}
	require.NoError(t, p.CategoryRepository().Save(t.Context(), category))

	assert.NotEmpty(t, category.ID)
	assert.False(t, category.CreatedAt.IsZero())
	assert.Equal(t, category.CreatedAt, category.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepository_GetByIDDecodesSections(t *testing.T) {
	p, mock := newMockPersistence(t)

	sections := `[{"id":"sec-1","name":"General","display_order":1,"weight":1,"items":[{"id":"item-1","item_name":"Revenue","data_type":"Number","version":1,"is_active":true,"weight":2}]}]`
	rows := addTemplateRow(sqlmock.NewRows(templateRowColumns), "tpl-1", "Monthly report", "TPL_MON", sections)

	mock.ExpectQuery("SELECT .+ FROM form_templates\\s+WHERE id = \\$1").
		WithArgs("tpl-1").
		WillReturnRows(rows)

	template, err := p.TemplateRepository().GetByID(t.Context(), "tpl-1")
	require.NoError(t, err)
	require.NotNil(t, template)

	assert.Equal(t, models.TemplateTypeMonthly, template.TemplateType)
	assert.Nil(t, template.PublishedDate)
	require.Len(t, template.Sections, 1)
	require.Len(t, template.Sections[0].Items, 1)
	assert.Equal(t, "Revenue", template.Sections[0].Items[0].ItemName)
	assert.Equal(t, 2.0, template.Sections[0].Items[0].Weight)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepository_ListTemplates(t *testing.T) {
	p, mock := newMockPersistence(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM form_templates WHERE category_id = $1 AND (template_name ILIKE $2 OR template_code ILIKE $2)")).
		WithArgs("cat-1", "%report%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	rows := sqlmock.NewRows(templateRowColumns)
	addTemplateRow(rows, "tpl-1", "Alpha report", "TPL_A", "[]")
	addTemplateRow(rows, "tpl-2", "Beta report", "TPL_B", "[]")

	mock.ExpectQuery("ORDER BY template_name ASC\\s+LIMIT 2 OFFSET 0").
		WithArgs("cat-1", "%report%").
		WillReturnRows(rows)

	result, err := p.TemplateRepository().ListTemplates(t.Context(), persistence.ListTemplatesOptions{
		CategoryID: "cat-1",
		Search:     "report",
		SortBy:     "name",
		SortOrder:  "asc",
		Limit:      2,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), result.TotalCount)
	assert.True(t, result.HasNextPage)
	require.Len(t, result.Templates, 2)
	assert.Equal(t, "Alpha report", result.Templates[0].TemplateName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepository_ListTemplatesInvalidSort(t *testing.T) {
	p, mock := newMockPersistence(t)

	_, err := p.TemplateRepository().ListTemplates(t.Context(), persistence.ListTemplatesOptions{SortBy: "owner; DROP TABLE"})
	require.Error(t, err)
	assert.True(t, persistence.IsInvalidSortField(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkflowRepository_SaveReplacesSteps(t *testing.T) {
	p, mock := newMockPersistence(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO workflows").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM workflow_steps WHERE workflow_id = $1")).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO workflow_steps").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO workflow_steps").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	workflow := &models.Workflow{
		WorkflowName: "Two step approval",
		IsActive:     true,
		Steps: []*models.WorkflowStep{
			{StepOrder: 1, StepName: "Review", ActionID: "action-review", AssigneeType: models.AssigneeSubmitter},
			{StepOrder: 2, StepName: "Approve", ActionID: "action-approve", AssigneeType: models.AssigneeRole, ApproverRoleID: "manager"},
		},
	}

	require.NoError(t, p.WorkflowRepository().Save(t.Context(), workflow))

	assert.NotEmpty(t, workflow.ID)
	for _, step := range workflow.Steps {
		assert.NotEmpty(t, step.ID)
		assert.Equal(t, workflow.ID, step.WorkflowID)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkflowRepository_SaveRollsBackOnStepFailure(t *testing.T) {
	p, mock := newMockPersistence(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO workflows").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM workflow_steps").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO workflow_steps").WillReturnError(errors.New("foreign key violation"))
	mock.ExpectRollback()

	workflow := &models.Workflow{
		WorkflowName: "Broken",
		Steps:        []*models.WorkflowStep{{StepOrder: 1, StepName: "Unknown", ActionID: "action-missing", AssigneeType: models.AssigneeUser}},
	}

	err := p.WorkflowRepository().Save(t.Context(), workflow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "foreign key violation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepository_CountByStep(t *testing.T) {
	p, mock := newMockPersistence(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM workflow_progress WHERE step_id = $1")).
		WithArgs("step-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := p.ProgressRepository().CountByStep(t.Context(), "step-1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepository_FindBuildsFilter(t *testing.T) {
	p, mock := newMockPersistence(t)

	status := models.SubmissionApproved
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE template_id = $1 AND status = $2 AND COALESCE(submitted_date, created_date) >= $3")).
		WithArgs("tpl-1", "Approved", from).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	submissions, err := p.SubmissionRepository().Find(t.Context(), persistence.SubmissionFilter{
		TemplateID: "tpl-1",
		Status:     &status,
		From:       &from,
	})
	require.NoError(t, err)
	assert.Empty(t, submissions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectoryRepository_UserByIDScansArrays(t *testing.T) {
	p, mock := newMockPersistence(t)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id = \\$1").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "tenant_id", "department_id", "role_ids", "group_ids", "is_active"}).
			AddRow("user-1", "Ana", "ana@example.com", "tenant-1", "dept-1", "{manager,auditor}", "{}", true))

	user, err := p.DirectoryRepository().UserByID(t.Context(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, []string{"manager", "auditor"}, user.RoleIDs)
	assert.Empty(t, user.GroupIDs)
	assert.True(t, user.HasRole("auditor"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
