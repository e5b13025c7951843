package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukex/formreport/pkg/metrics"
	"github.com/dukex/formreport/pkg/persistence/file"
	"github.com/dukex/formreport/pkg/web"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T, jwtSecret string) *fiber.App {
	t.Helper()

	api := NewAPI(
		slog.Default(),
		file.NewPersistence(t.TempDir()),
		nil,
		metrics.New(),
		jwtSecret,
	)

	return api.App()
}

func get(t *testing.T, app *fiber.App, path string, headers map[string]string) (int, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestAPI_RootEndpoint(t *testing.T) {
	app := setupTestApp(t, "")

	status, body := get(t, app, "/", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Form Report API", body)
}

func TestAPI_Probes(t *testing.T) {
	app := setupTestApp(t, "")

	for _, path := range []string{"/livez", "/readyz"} {
		status, body := get(t, app, path, nil)
		assert.Equal(t, http.StatusOK, status, path)
		assert.Equal(t, "OK", body, path)
	}

	status, body := get(t, app, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "healthy")
}

func TestAPI_Metrics(t *testing.T) {
	app := setupTestApp(t, "")

	status, body := get(t, app, "/metrics", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "go_goroutines")
}

func TestAPI_HeaderIdentity(t *testing.T) {
	app := setupTestApp(t, "")

	status, _ := get(t, app, "/api/v1/categories", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := get(t, app, "/api/v1/categories", map[string]string{web.UserIDHeader: "admin"})
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", body)
}

func TestAPI_BearerIdentity(t *testing.T) {
	const secret = "api-secret"

	app := setupTestApp(t, secret)

	status, _ := get(t, app, "/api/v1/categories", map[string]string{web.UserIDHeader: "admin"})
	assert.Equal(t, http.StatusUnauthorized, status)

	token, err := web.SignToken(secret, web.Identity{UserID: "admin"}, time.Minute)
	require.NoError(t, err)

	status, _ = get(t, app, "/api/v1/categories", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, status)
}
