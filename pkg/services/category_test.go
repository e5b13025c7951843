package services

import (
	"testing"

	"github.com/dukex/formreport/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory_CRUD(t *testing.T) {
	s, _ := newTestServices(t)
	ctx := t.Context()

	_, err := s.Categories.Create(ctx, &models.Category{Name: "  "})
	assert.ErrorIs(t, err, ErrNameRequired)

	finance, err := s.Categories.Create(ctx, &models.Category{Name: "Finance", Code: "FIN", DisplayOrder: 2, IsActive: true})
	require.NoError(t, err)

	safety, err := s.Categories.Create(ctx, &models.Category{Name: "Safety", DisplayOrder: 1, IsActive: true})
	require.NoError(t, err)

	_, err = s.Categories.Create(ctx, &models.Category{Name: "Archive", DisplayOrder: 1})
	require.NoError(t, err)

	_, err = s.Categories.Create(ctx, &models.Category{Name: "Other", Code: "fin"})
	assert.ErrorIs(t, err, ErrDuplicateCode)

	active, err := s.Categories.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Safety", active[0].Name)

	all, err := s.Categories.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Archive", all[0].Name)

	list, err := s.Categories.SelectList(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.SelectItem{{Value: safety.ID, Text: "Safety"}, {Value: finance.ID, Text: "Finance"}}, list)

	isActive, err := s.Categories.IsActive(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, isActive)

	name, err := s.Categories.NameOf(ctx, finance.ID)
	require.NoError(t, err)
	assert.Equal(t, "Finance", name)

	updated, err := s.Categories.Update(ctx, finance.ID, &models.Category{Name: "Finance & Budget", Code: "FIN", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, finance.CreatedAt, updated.CreatedAt)

	_, err = s.Templates.Create(ctx, &models.FormTemplate{CategoryID: safety.ID, TemplateName: "Audit", TemplateType: models.TemplateTypeMonthly}, "admin")
	require.NoError(t, err)

	assert.ErrorIs(t, s.Categories.Delete(ctx, safety.ID), ErrCategoryInUse)
	require.NoError(t, s.Categories.Delete(ctx, finance.ID))
	assert.ErrorIs(t, s.Categories.Delete(ctx, finance.ID), ErrCategoryNotFound)
}
