package services

import (
	"strings"
	"testing"

	"github.com/dukex/formreport/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{name: "", want: "TPL_UNNAMED"},
		{name: "   ", want: "TPL_UNNAMED"},
		{name: "Monthly Sales Report", want: "TPL_MONTHLY_SALES_REPORT"},
		{name: "  --Safety & Health--  ", want: "TPL_SAFETY_HEALTH"},
		{name: "q3 2024 (final)", want: "TPL_Q3_2024_FINAL"},
		{name: strings.Repeat("A", 46) + " B", want: "TPL_" + strings.Repeat("A", 46)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := GenerateCode(tt.name)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), 50)
		})
	}
}

func TestIsValidCodeFormat(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidCodeFormat("TPL_SALES_2024"))
	assert.False(t, IsValidCodeFormat("TPL_sales"))
	assert.False(t, IsValidCodeFormat("SALES"))
	assert.False(t, IsValidCodeFormat("TPL_"))
	assert.False(t, IsValidCodeFormat("TPL_"+strings.Repeat("X", 47)))
}

func TestTemplate_GenerateUniqueCode(t *testing.T) {
	s, _ := newTestServices(t)
	first := createTestTemplate(t, s, "Sales Report")
	assert.Equal(t, "TPL_SALES_REPORT", first.TemplateCode)

	second := createTestTemplate(t, s, "Sales Report")
	assert.Equal(t, "TPL_SALES_REPORT_2", second.TemplateCode)

	code, err := s.Templates.GenerateUniqueCode(t.Context(), "Sales Report", first.ID)
	require.NoError(t, err)
	assert.Equal(t, "TPL_SALES_REPORT", code)

	_, err = s.Templates.GenerateUniqueCode(t.Context(), " ", "")
	assert.True(t, IsValidationError(err))
}

func TestTemplate_Create(t *testing.T) {
	s, _ := newTestServices(t)
	category := createTestCategory(t, s)

	tests := []struct {
		name    string
		input   *models.FormTemplate
		check   func(t *testing.T, err error)
		created func(t *testing.T, template *models.FormTemplate)
	}{
		{
			name:  "defaults applied",
			input: &models.FormTemplate{CategoryID: category.ID, TemplateName: "Daily Log", TemplateType: models.TemplateTypeDaily},
			created: func(t *testing.T, template *models.FormTemplate) {
				assert.Equal(t, models.PublishStatusDraft, template.PublishStatus)
				assert.Equal(t, 1, template.Version)
				assert.Equal(t, models.SubmissionModeIndividual, template.SubmissionMode)
				assert.Equal(t, "TPL_DAILY_LOG", template.TemplateCode)
				assert.NotEmpty(t, template.ID)
			},
		},
		{
			name:  "missing category",
			input: &models.FormTemplate{CategoryID: "nope", TemplateName: "X", TemplateType: models.TemplateTypeDaily},
			check: func(t *testing.T, err error) { assert.True(t, IsNotFoundError(err)) },
		},
		{
			name:  "missing workflow",
			input: &models.FormTemplate{CategoryID: category.ID, TemplateName: "X", TemplateType: models.TemplateTypeDaily, WorkflowID: "nope"},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrWorkflowNotFound) },
		},
		{
			name:  "invalid code",
			input: &models.FormTemplate{CategoryID: category.ID, TemplateName: "X", TemplateType: models.TemplateTypeDaily, TemplateCode: "bad"},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrInvalidTemplateCode) },
		},
		{
			name:  "duplicate code",
			input: &models.FormTemplate{CategoryID: category.ID, TemplateName: "Y", TemplateType: models.TemplateTypeDaily, TemplateCode: "TPL_DAILY_LOG"},
			check: func(t *testing.T, err error) { assert.True(t, IsConflictError(err)) },
		},
		{
			name:  "invalid type",
			input: &models.FormTemplate{CategoryID: category.ID, TemplateName: "Z", TemplateType: "Hourly"},
			check: func(t *testing.T, err error) { assert.True(t, IsValidationError(err)) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			template, err := s.Templates.Create(t.Context(), tt.input, "admin")
			if tt.check != nil {
				require.Error(t, err)
				tt.check(t, err)

				return
			}

			require.NoError(t, err)
			tt.created(t, template)
		})
	}
}

func TestTemplate_Lifecycle(t *testing.T) {
	s, _ := newTestServices(t)
	template := createTestTemplate(t, s, "Incident Report")

	_, err := s.Templates.Publish(t.Context(), template.ID, "admin")
	assert.ErrorIs(t, err, ErrTemplateIncomplete)

	badLogic := testSections()
	badLogic[0].Items[0].ConditionalLogic = `{"action":"explode"}`
	_, err = s.Templates.UpdateStructure(t.Context(), template.ID, badLogic, "admin")
	assert.ErrorIs(t, err, ErrInvalidCondition)

	structured, err := s.Templates.UpdateStructure(t.Context(), template.ID, testSections(), "admin")
	require.NoError(t, err)
	require.Len(t, structured.Sections, 1)
	assert.NotEmpty(t, structured.Sections[0].ID)
	assert.InDelta(t, 1.0, structured.Sections[0].Weight, 0)
	assert.Equal(t, 2, structured.Sections[0].Items[1].DisplayOrder)

	published, err := s.Templates.Publish(t.Context(), template.ID, "publisher")
	require.NoError(t, err)
	assert.Equal(t, models.PublishStatusPublished, published.PublishStatus)
	assert.Equal(t, "publisher", published.PublishedBy)
	assert.NotNil(t, published.PublishedDate)

	name := "Renamed"
	_, err = s.Templates.Update(t.Context(), template.ID, TemplateUpdate{TemplateName: &name}, "admin")
	assert.ErrorIs(t, err, ErrTemplateNotDraft)

	err = s.Templates.Delete(t.Context(), template.ID)
	assert.ErrorIs(t, err, ErrTemplateNotDraft)

	archived, err := s.Templates.Archive(t.Context(), template.ID, "admin", " replaced ")
	require.NoError(t, err)
	assert.Equal(t, models.PublishStatusArchived, archived.PublishStatus)
	assert.Equal(t, "replaced", archived.ArchivedReason)

	_, err = s.Templates.Archive(t.Context(), template.ID, "admin", "again")
	assert.ErrorIs(t, err, ErrTemplateNotPublished)
}

func TestTemplate_UpdatePartial(t *testing.T) {
	s, _ := newTestServices(t)
	template := createTestTemplate(t, s, "Weekly Check")

	description := "Checks performed every week"
	anonymous := true

	updated, err := s.Templates.Update(t.Context(), template.ID, TemplateUpdate{
		Description:          &description,
		AllowAnonymousAccess: &anonymous,
	}, "editor")
	require.NoError(t, err)
	assert.Equal(t, "Weekly Check", updated.TemplateName)
	assert.Equal(t, description, updated.Description)
	assert.True(t, updated.AllowAnonymousAccess)
	assert.Equal(t, "editor", updated.ModifiedBy)
}

func TestTemplate_DeleteDraft(t *testing.T) {
	s, p := newTestServices(t)
	template := createTestTemplate(t, s, "Draft Only")

	require.NoError(t, p.SubmissionRepository().Save(t.Context(), &models.Submission{TemplateID: template.ID, Status: models.SubmissionDraft}))
	assert.ErrorIs(t, s.Templates.Delete(t.Context(), template.ID), ErrTemplateHasSubmissions)

	other := createTestTemplate(t, s, "Disposable")
	_, err := s.Assignments.Create(t.Context(), &models.Assignment{TemplateID: other.ID, AssignmentType: models.AssignmentAll}, "admin")
	require.NoError(t, err)

	require.NoError(t, s.Templates.Delete(t.Context(), other.ID))

	_, err = s.Templates.Get(t.Context(), other.ID)
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	assignments, err := p.AssignmentRepository().GetByTemplate(t.Context(), other.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestAnalyzeProgress(t *testing.T) {
	t.Parallel()

	complete := []*models.Section{{Name: "A", Items: []*models.Item{{ItemName: "x"}}}}

	tests := []struct {
		name        string
		template    *models.FormTemplate
		wantCurrent int
		wantPercent int
		wantStatus  []BuilderStepStatus
	}{
		{
			name:        "nothing done",
			template:    &models.FormTemplate{},
			wantCurrent: 1,
			wantPercent: 0,
			wantStatus:  []BuilderStepStatus{BuilderStepActive, BuilderStepPending, BuilderStepPending},
		},
		{
			name:        "setup done",
			template:    &models.FormTemplate{TemplateName: "n", TemplateCode: "TPL_N", CategoryID: "c", TemplateType: models.TemplateTypeDaily},
			wantCurrent: 2,
			wantPercent: 33,
			wantStatus:  []BuilderStepStatus{BuilderStepCompleted, BuilderStepActive, BuilderStepPending},
		},
		{
			name: "built",
			template: &models.FormTemplate{TemplateName: "n", TemplateCode: "TPL_N", CategoryID: "c",
				TemplateType: models.TemplateTypeDaily, Sections: complete},
			wantCurrent: 3,
			wantPercent: 66,
			wantStatus:  []BuilderStepStatus{BuilderStepCompleted, BuilderStepCompleted, BuilderStepActive},
		},
		{
			name: "published",
			template: &models.FormTemplate{TemplateName: "n", TemplateCode: "TPL_N", CategoryID: "c",
				TemplateType: models.TemplateTypeDaily, Sections: complete, PublishStatus: models.PublishStatusPublished},
			wantCurrent: 3,
			wantPercent: 100,
			wantStatus:  []BuilderStepStatus{BuilderStepCompleted, BuilderStepCompleted, BuilderStepCompleted},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			progress := AnalyzeProgress(tt.template)
			assert.Equal(t, tt.wantCurrent, progress.CurrentStep)
			assert.Equal(t, tt.wantPercent, progress.CompletionPercent)

			statuses := make([]BuilderStepStatus, 0, len(progress.Steps))
			for _, step := range progress.Steps {
				statuses = append(statuses, step.Status)
			}

			assert.Equal(t, tt.wantStatus, statuses)
		})
	}
}

func TestTemplate_CreateNewVersion(t *testing.T) {
	s, p := newTestServices(t)
	template := createTestTemplate(t, s, "Quarterly Review")

	_, err := s.Templates.CreateNewVersion(t.Context(), template.ID, "admin")
	assert.ErrorIs(t, err, ErrTemplateNotPublished)

	sections := testSections()
	sections[0].Items[0].Options = []*models.Option{{Value: "1", Label: "One", IsActive: true}}
	sections[0].Items[0].Validations = []*models.ItemValidation{{ValidationType: "integer", IsActive: true}}
	_, err = s.Templates.UpdateStructure(t.Context(), template.ID, sections, "admin")
	require.NoError(t, err)

	_, err = s.Assignments.Create(t.Context(), &models.Assignment{TemplateID: template.ID, AssignmentType: models.AssignmentRole, RoleID: "manager"}, "admin")
	require.NoError(t, err)

	published, err := s.Templates.Publish(t.Context(), template.ID, "admin")
	require.NoError(t, err)

	next, err := s.Templates.CreateNewVersion(t.Context(), published.ID, "editor")
	require.NoError(t, err)
	assert.NotEqual(t, published.ID, next.ID)
	assert.Equal(t, 2, next.Version)
	assert.Equal(t, models.PublishStatusDraft, next.PublishStatus)
	assert.Equal(t, "TPL_QUARTERLY_REVIEW_V2", next.TemplateCode)
	require.Len(t, next.Sections, 1)
	assert.NotEqual(t, published.Sections[0].ID, next.Sections[0].ID)
	assert.NotEqual(t, published.Sections[0].Items[0].ID, next.Sections[0].Items[0].ID)
	require.Len(t, next.Sections[0].Items[0].Options, 1)
	assert.NotEqual(t, published.Sections[0].Items[0].Options[0].ID, next.Sections[0].Items[0].Options[0].ID)
	require.Len(t, next.Sections[0].Items[0].Validations, 1)

	assignments, err := p.AssignmentRepository().GetByTemplate(t.Context(), next.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "Copied from v1", assignments[0].Notes)
	assert.Equal(t, "manager", assignments[0].RoleID)
}

func TestTemplate_List(t *testing.T) {
	s, _ := newTestServices(t)
	createTestTemplate(t, s, "Alpha")
	createTestTemplate(t, s, "Beta")

	result, err := s.Templates.List(t.Context(), ListTemplatesRequest{SortBy: "name", SortOrder: "asc", Limit: 500})
	require.NoError(t, err)
	require.Len(t, result.Templates, 2)
	assert.Equal(t, "Alpha", result.Templates[0].TemplateName)
	assert.EqualValues(t, 2, result.TotalCount)

	_, err = s.Templates.List(t.Context(), ListTemplatesRequest{SortBy: "owner"})
	assert.ErrorIs(t, err, ErrInvalidSortField)
	assert.True(t, IsValidationError(err))

	_, err = s.Templates.List(t.Context(), ListTemplatesRequest{SortOrder: "sideways"})
	assert.ErrorIs(t, err, ErrInvalidSortOrder)
}
