package services

import (
	"log/slog"
	"os"
	"testing"

	"github.com/dukex/formreport/pkg/mocks"
	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/persistence"
	"github.com/dukex/formreport/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestServices(t *testing.T) (*Services, persistence.Persistence) {
	t.Helper()

	p := file.NewPersistence(t.TempDir())

	return New(p, nil, nil, testLogger), p
}

// newTestServicesWithBus wires a mock bus that accepts every publish.
func newTestServicesWithBus(t *testing.T) (*Services, *mocks.MockEventBus) {
	t.Helper()

	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	return New(file.NewPersistence(t.TempDir()), bus, nil, testLogger), bus
}

func saveTestUsers(t *testing.T, s *Services, users ...*models.User) {
	t.Helper()

	for _, user := range users {
		_, err := s.Directory.SaveUser(t.Context(), user)
		require.NoError(t, err)
	}
}

func createTestCategory(t *testing.T, s *Services) *models.Category {
	t.Helper()

	category, err := s.Categories.Create(t.Context(), &models.Category{Name: "Operations", IsActive: true})
	require.NoError(t, err)

	return category
}

func createTestTemplate(t *testing.T, s *Services, name string) *models.FormTemplate {
	t.Helper()

	category := createTestCategory(t, s)

	template, err := s.Templates.Create(t.Context(), &models.FormTemplate{
		CategoryID:       category.ID,
		TemplateName:     name,
		TemplateType:     models.TemplateTypeMonthly,
		RequiresApproval: true,
	}, "admin")
	require.NoError(t, err)

	return template
}

func testSections() []*models.Section {
	return []*models.Section{
		{
			Name: "General",
			Items: []*models.Item{
				{ItemName: "Headcount", ItemCode: "HEADCOUNT", DataType: "number", IsRequired: true},
				{ItemName: "Comments", DataType: "textarea"},
			},
		},
	}
}

func createPublishedTemplate(t *testing.T, s *Services, name string) *models.FormTemplate {
	t.Helper()

	template := createTestTemplate(t, s, name)

	_, err := s.Templates.UpdateStructure(t.Context(), template.ID, testSections(), "admin")
	require.NoError(t, err)

	published, err := s.Templates.Publish(t.Context(), template.ID, "admin")
	require.NoError(t, err)

	return published
}

func TestServices_HealthCheck(t *testing.T) {
	s, _ := newTestServices(t)

	message, healthy := s.HealthCheck(t.Context())
	assert.True(t, healthy)
	assert.Equal(t, "Persistence layer is healthy", message)

	broken := New(file.NewPersistence("/nonexistent/formreport"), nil, nil, testLogger)
	_, healthy = broken.HealthCheck(t.Context())
	assert.False(t, healthy)
}
