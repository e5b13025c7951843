//go:build integration

package web_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/persistence/postgresql"
	"github.com/dukex/formreport/pkg/services"
	"github.com/dukex/formreport/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestSubmissionFlow_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("formreport_web"),
		postgres.WithUsername("formreport"),
		postgres.WithPassword("formreport"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	databaseURL, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	p, err := postgresql.NewPersistence(ctx, testLogger, databaseURL)
	require.NoError(t, err)

	defer func() { _ = p.Close(context.Background()) }()

	app, svc := newTestApp(t, p)

	message, healthy := svc.HealthCheck(ctx)
	require.True(t, healthy, message)

	saveUser(t, app, "u-ann")

	template := publishTemplate(t, app)
	headcount := template.Sections[0].Items[0].ID

	status, body := call(t, app, http.MethodPost, "/api/v1/submissions/draft", "u-ann", web.SaveDraftRequest{
		TemplateID: template.ID,
		Values:     map[string]string{headcount: "7"},
	})
	require.Equal(t, http.StatusOK, status, string(body))

	saved := decodeBody[struct {
		SubmissionID string `json:"submission_id"`
	}](t, body)

	status, body = call(t, app, http.MethodPost, "/api/v1/submissions/"+saved.SubmissionID+"/submit", "u-ann", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, models.SubmissionSubmitted, decodeBody[services.SubmitResult](t, body).Status)

	status, body = call(t, app, http.MethodGet, "/api/v1/submissions/"+saved.SubmissionID+"/responses", "u-ann", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), "7")
}
