package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projektcopilot/backend/pkg/config"
	"github.com/projektcopilot/backend/pkg/database"
	"github.com/projektcopilot/backend/pkg/logger"
)

func newTestServer(t *testing.T) (*Engine, *httptest.Server) {
	t.Helper()
	ctx := context.Background()

	cfg := &config.Config{
		Server:   config.ServerConfig{Host: "127.0.0.1", Port: 8000},
		Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db")},
		CORS:     config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		Logging:  config.LoggingConfig{Level: "error"},
	}

	db, err := database.New(ctx, database.SQLiteConfig{Path: cfg.Database.Path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logger.New(ServiceName, Version)
	log.DisableConsoleOutput()

	eng := NewEngine(cfg, db, log)
	require.NoError(t, eng.Store().EnsureSchema(ctx))

	ts := httptest.NewServer(NewServer(eng).Router())
	t.Cleanup(ts.Close)
	return eng, ts
}

func doRequest(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 && data[0] == '{' {
		require.NoError(t, json.Unmarshal(data, &decoded))
	}
	return resp, decoded
}

func doListRequest(t *testing.T, url string) (*http.Response, []map[string]any) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestRootEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := doRequest(t, "GET", ts.URL+"/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, Version, body["version"])
	assert.Equal(t, "/health", body["health"])
}

func TestHealthEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := doRequest(t, "GET", ts.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, Version, body["version"])
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	// Label sets only materialize after an observed request.
	doRequest(t, "GET", ts.URL+"/", nil)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "copilot_http_requests_total")
}

func TestProjectCRUD(t *testing.T) {
	_, ts := newTestServer(t)
	base := ts.URL + "/api/v1/projects"

	resp, created := doRequest(t, "POST", base, map[string]any{
		"project_code": "PRJ-001",
		"project_name": "S/4HANA Finance",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := int64(created["id"].(float64))
	assert.Equal(t, "planning", created["status"])

	t.Run("get", func(t *testing.T) {
		resp, body := doRequest(t, "GET", fmt.Sprintf("%s/%d", base, id), nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "S/4HANA Finance", body["project_name"])
	})

	t.Run("list", func(t *testing.T) {
		resp, records := doListRequest(t, base)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, records, 1)
	})

	t.Run("list filtered by id", func(t *testing.T) {
		_, records := doListRequest(t, fmt.Sprintf("%s?project_id=%d", base, id))
		assert.Len(t, records, 1)

		_, records = doListRequest(t, base+"?project_id=999")
		assert.Len(t, records, 0)
	})

	t.Run("partial update", func(t *testing.T) {
		resp, body := doRequest(t, "PUT", fmt.Sprintf("%s/%d", base, id), map[string]any{
			"status": "active",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "active", body["status"])
		assert.Equal(t, "S/4HANA Finance", body["project_name"])
	})

	t.Run("delete", func(t *testing.T) {
		resp, body := doRequest(t, "DELETE", fmt.Sprintf("%s/%d", base, id), nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, fmt.Sprintf("Project %d deleted", id), body["message"])

		resp, body = doRequest(t, "GET", fmt.Sprintf("%s/%d", base, id), nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Project not found", body["message"])
		assert.Equal(t, "error", body["status"])
	})
}

func TestCreateValidation(t *testing.T) {
	_, ts := newTestServer(t)
	base := ts.URL + "/api/v1/projects"

	t.Run("missing required field", func(t *testing.T) {
		resp, body := doRequest(t, "POST", base, map[string]any{"customer_name": "Acme"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "project_name is required", body["message"])
	})

	t.Run("empty required field", func(t *testing.T) {
		resp, _ := doRequest(t, "POST", base, map[string]any{"project_name": ""})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(base, "application/json", strings.NewReader("{not json"))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestInvalidItemID(t *testing.T) {
	_, ts := newTestServer(t)

	resp, _ := doRequest(t, "GET", ts.URL+"/api/v1/projects/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRequirementConversionFlow(t *testing.T) {
	_, ts := newTestServer(t)
	api := ts.URL + "/api/v1"

	_, req := doRequest(t, "POST", api+"/requirements", map[string]any{
		"title":          "Custom ATP check",
		"classification": "Gap",
		"priority":       "high",
		"project_id":     1,
	})
	reqID := int64(req["id"].(float64))

	resp, body := doRequest(t, "POST", fmt.Sprintf("%s/requirements/%d/convert", api, reqID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Converted successfully", body["message"])
	assert.Equal(t, "wricef", body["conversion_type"])
	itemID := int64(body["created_item_id"].(float64))

	t.Run("wricef item exists", func(t *testing.T) {
		resp, item := doRequest(t, "GET", fmt.Sprintf("%s/wricef-items/%d", api, itemID), nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Custom ATP check", item["title"])
		assert.Equal(t, "identified", item["status"])
	})

	t.Run("second conversion rejected", func(t *testing.T) {
		resp, body := doRequest(t, "POST", fmt.Sprintf("%s/requirements/%d/convert", api, reqID), nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Already converted", body["message"])
	})

	t.Run("convert wricef item to test", func(t *testing.T) {
		resp, body := doRequest(t, "POST", fmt.Sprintf("%s/wricef-items/%d/convert-to-test", api, itemID), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Test case created", body["message"])
		testID := int64(body["test_id"].(float64))

		resp, test := doRequest(t, "GET", fmt.Sprintf("%s/tests/%d", api, testID), nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Unit Test: Custom ATP check", test["title"])
	})
}

func TestConversionErrorResponses(t *testing.T) {
	_, ts := newTestServer(t)
	api := ts.URL + "/api/v1"

	t.Run("missing requirement", func(t *testing.T) {
		resp, body := doRequest(t, "POST", api+"/requirements/42/convert", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Requirement not found", body["message"])
	})

	t.Run("invalid classification", func(t *testing.T) {
		_, req := doRequest(t, "POST", api+"/requirements", map[string]any{
			"title":          "Unclassified",
			"classification": "Undecided",
		})
		reqID := int64(req["id"].(float64))

		resp, body := doRequest(t, "POST", fmt.Sprintf("%s/requirements/%d/convert", api, reqID), nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid classification: Undecided", body["message"])
	})
}

func TestDashboardStats(t *testing.T) {
	_, ts := newTestServer(t)
	api := ts.URL + "/api/v1"

	doRequest(t, "POST", api+"/projects", map[string]any{"project_name": "Alpha"})
	doRequest(t, "POST", api+"/requirements", map[string]any{
		"title": "R1", "project_id": 1, "classification": "Gap",
	})
	doRequest(t, "POST", api+"/requirements", map[string]any{
		"title": "R2", "project_id": 1, "classification": "Fit",
	})

	resp, body := doRequest(t, "GET", api+"/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["projects"])
	assert.Equal(t, float64(2), body["requirements"])
	assert.Equal(t, float64(1), body["open_gaps"])

	t.Run("scoped to project", func(t *testing.T) {
		resp, body := doRequest(t, "GET", api+"/dashboard/stats?project_id=99", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, float64(1), body["projects"])
		assert.Equal(t, float64(0), body["requirements"])
	})

	t.Run("invalid project_id", func(t *testing.T) {
		resp, _ := doRequest(t, "GET", api+"/dashboard/stats?project_id=abc", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSessionSubResources(t *testing.T) {
	_, ts := newTestServer(t)
	api := ts.URL + "/api/v1"

	_, session := doRequest(t, "POST", api+"/sessions", map[string]any{
		"session_name": "FI workshop",
		"project_id":   1,
	})
	sessionID := int64(session["id"].(float64))

	resp, question := doRequest(t, "POST", fmt.Sprintf("%s/sessions/%d/questions", api, sessionID), map[string]any{
		"question_text": "Which company codes?",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(sessionID), question["session_id"])
	questionID := int64(question["id"].(float64))

	t.Run("path session id wins over body", func(t *testing.T) {
		_, q := doRequest(t, "POST", fmt.Sprintf("%s/sessions/%d/questions", api, sessionID), map[string]any{
			"question_text": "Fiscal year variant?",
			"session_id":    999,
		})
		assert.Equal(t, float64(sessionID), q["session_id"])
	})

	t.Run("list scoped to session", func(t *testing.T) {
		_, records := doListRequest(t, fmt.Sprintf("%s/sessions/%d/questions", api, sessionID))
		assert.Len(t, records, 2)

		_, records = doListRequest(t, api+"/sessions/999/questions")
		assert.Len(t, records, 0)
	})

	t.Run("flat update and delete", func(t *testing.T) {
		resp, updated := doRequest(t, "PUT", fmt.Sprintf("%s/questions/%d", api, questionID), map[string]any{
			"status":      "answered",
			"answer_text": "1000 and 2000",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "answered", updated["status"])

		resp, _ = doRequest(t, "DELETE", fmt.Sprintf("%s/questions/%d", api, questionID), nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = doRequest(t, "DELETE", fmt.Sprintf("%s/questions/%d", api, questionID), nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/projects", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))

	t.Run("disallowed origin gets no header", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/projects", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://evil.example")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
	})
}

func TestEngineMetricsCounters(t *testing.T) {
	eng, ts := newTestServer(t)

	doRequest(t, "GET", ts.URL+"/api/v1/projects/9999", nil)
	doListRequest(t, ts.URL+"/api/v1/projects")

	metrics := eng.GetMetrics()
	assert.Equal(t, int64(2), metrics["requests_processed"])
	assert.Equal(t, int64(0), metrics["ongoing_operations"])
}
