package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/user-service/internal/api/http"
	"github.com/spec-kit/user-service/internal/api/http/handlers"
	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/events"
	"github.com/spec-kit/user-service/internal/observability"
	"github.com/spec-kit/user-service/internal/persistence"
	"github.com/spec-kit/user-service/internal/repository"
	"github.com/spec-kit/user-service/internal/service"
)

func newTestApp() *fiber.App {
	cfg := config.Config{
		Security: config.SecurityConfig{BcryptCost: 4},
		Pagination: config.PaginationConfig{
			DefaultPageSize: 10,
			MaxPageSize:     100,
			ExportMax:       10000,
		},
	}

	userService := service.NewUserService(cfg, service.UserDependencies{
		UserRepo:   repository.NewMemoryUserRepository(),
		Dispatcher: events.NewInMemoryDispatcher(),
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler("user-service-test", "test", &persistence.Postgres{}, &persistence.Redis{}),
		Users:  handlers.NewUsersHandler(userService),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func createUserPayload(username, email string) map[string]any {
	return map[string]any{
		"username":         username,
		"email":            email,
		"password":         "Str0ng!Pass",
		"confirm_password": "Str0ng!Pass",
	}
}

func TestCreateUser_Endpoint(t *testing.T) {
	app := newTestApp()

	status, body := doJSON(t, app, http.MethodPost, "/users", createUserPayload("alice", "alice@x.com"))
	require.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "active", body["status"])
	assert.NotContains(t, body, "password_hash")
}

func TestCreateUser_ValidationFailure(t *testing.T) {
	app := newTestApp()

	status, body := doJSON(t, app, http.MethodPost, "/users", createUserPayload("alice", "not-an-email"))
	require.Equal(t, http.StatusUnprocessableEntity, status)

	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_FAILED", errBody["code"])
	details, ok := errBody["details"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "email")
}

func TestCreateUser_Duplicate(t *testing.T) {
	app := newTestApp()

	status, _ := doJSON(t, app, http.MethodPost, "/users", createUserPayload("alice", "alice@x.com"))
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, app, http.MethodPost, "/users", createUserPayload("alice", "other@x.com"))
	require.Equal(t, http.StatusConflict, status)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "CONFLICT", errBody["code"])
}

func TestUserLifecycle_Endpoints(t *testing.T) {
	app := newTestApp()

	status, created := doJSON(t, app, http.MethodPost, "/users", createUserPayload("alice", "alice@x.com"))
	require.Equal(t, http.StatusCreated, status)
	id := created["id"].(string)

	status, fetched := doJSON(t, app, http.MethodGet, "/users/"+id, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", fetched["username"])

	status, updated := doJSON(t, app, http.MethodPut, "/users/"+id, map[string]any{"bio": "hello"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hello", updated["bio"])

	status, suspended := doJSON(t, app, http.MethodPatch, "/users/"+id+"/status", map[string]any{"status": "suspended"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "suspended", suspended["status"])

	status, deleted := doJSON(t, app, http.MethodDelete, "/users/"+id, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User marked as deleted", deleted["message"])

	status, _ = doJSON(t, app, http.MethodGet, "/users/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, tombstone := doJSON(t, app, http.MethodGet, "/users/"+id+"?include_deleted=true", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "deleted", tombstone["status"])

	status, body := doJSON(t, app, http.MethodDelete, "/users/"+id, nil)
	require.Equal(t, http.StatusBadRequest, status)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "ALREADY_DELETED", errBody["code"])
}

func TestChangeStatus_DeletedRejected(t *testing.T) {
	app := newTestApp()

	status, created := doJSON(t, app, http.MethodPost, "/users", createUserPayload("alice", "alice@x.com"))
	require.Equal(t, http.StatusCreated, status)
	id := created["id"].(string)

	status, body := doJSON(t, app, http.MethodPatch, "/users/"+id+"/status", map[string]any{"status": "deleted"})
	require.Equal(t, http.StatusBadRequest, status)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "INVALID_TRANSITION", errBody["code"])
}

func TestListUsers_Pagination(t *testing.T) {
	app := newTestApp()

	for i := 0; i < 15; i++ {
		status, _ := doJSON(t, app, http.MethodPost, "/users", createUserPayload(
			fmt.Sprintf("user%02d", i),
			fmt.Sprintf("user%02d@x.com", i),
		))
		require.Equal(t, http.StatusCreated, status)
	}

	status, body := doJSON(t, app, http.MethodGet, "/users?skip=0&limit=10", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(10), body["count"])

	status, body = doJSON(t, app, http.MethodGet, "/users?skip=10&limit=10", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(5), body["count"])
}

func TestStatsAndLookupEndpoints(t *testing.T) {
	app := newTestApp()

	status, _ := doJSON(t, app, http.MethodPost, "/users", createUserPayload("alice", "alice@x.com"))
	require.Equal(t, http.StatusCreated, status)

	status, stats := doJSON(t, app, http.MethodGet, "/users/stats/summary", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), stats["total_users"])
	assert.Equal(t, float64(1), stats["active_users"])

	status, byName := doJSON(t, app, http.MethodGet, "/users/username/alice", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", byName["username"])

	status, byEmail := doJSON(t, app, http.MethodGet, "/users/email/alice%40x.com", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice@x.com", byEmail["email"])

	status, _ = doJSON(t, app, http.MethodGet, "/users/username/nobody", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestExportEndpoint(t *testing.T) {
	app := newTestApp()

	for i := 0; i < 3; i++ {
		status, _ := doJSON(t, app, http.MethodPost, "/users", createUserPayload(
			fmt.Sprintf("user%d", i),
			fmt.Sprintf("user%d@x.com", i),
		))
		require.Equal(t, http.StatusCreated, status)
	}

	req := httptest.NewRequest(http.MethodGet, "/users/export/json", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var exported []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&exported))
	assert.Len(t, exported, 3)
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp()

	status, body := doJSON(t, app, http.MethodGet, "/system/health/live", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	// No store behind the test app: readiness must fail, liveness must not.
	status, body = doJSON(t, app, http.MethodGet, "/system/health/ready", nil)
	require.Equal(t, http.StatusServiceUnavailable, status)

	// Dependency failures are reported with fixed strings, never raw driver
	// error text.
	errBody := body["error"].(map[string]any)
	details := errBody["details"].(map[string]any)
	assert.Equal(t, "unreachable", details["postgres"])
	assert.Equal(t, "degraded", details["redis"])
}
