package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/mharte/caseflow/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	cfg := config.Default()
	cfg.Database.Filename = filepath.Join(t.TempDir(), "cms.db")
	cfg.Log.Level = "error"

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.gate.DB().Close() })

	return a
}

func do(t *testing.T, a *App, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	return rec
}

func TestApp_HealthEndpoint(t *testing.T) {
	a := newTestApp(t)

	rec := do(t, a, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status       string            `json:"status"`
		Dependencies map[string]string `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "none", resp.Dependencies["database"])
}

func TestApp_AddAndListCustomFields(t *testing.T) {
	a := newTestApp(t)

	rec := do(t, a, http.MethodPost, "/admin/testcase_custom_fields", map[string]any{
		"field_name":              "Severity",
		"system_name":             "severity",
		"field_type":              "String",
		"enabled":                 true,
		"applies_to_all_projects": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":1}`, rec.Body.String())

	// A second add with the same field name is a duplicate.
	rec = do(t, a, http.MethodPost, "/admin/testcase_custom_fields", map[string]any{
		"field_name":              "Severity",
		"system_name":             "severity2",
		"field_type":              "String",
		"enabled":                 true,
		"applies_to_all_projects": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":0,"error":"Duplicate field_name"}`, rec.Body.String())

	rec = do(t, a, http.MethodGet, "/admin/testcase_custom_fields", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		CustomFields []struct {
			SystemName string `json:"system_name"`
			Position   int    `json:"position"`
		} `json:"custom_fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))

	// Three seeded system fields plus the new one, contiguous positions.
	require.Len(t, list.CustomFields, 4)
	for i, f := range list.CustomFields {
		assert.Equal(t, i+1, f.Position)
	}
	assert.Equal(t, "severity", list.CustomFields[3].SystemName)
}

func TestApp_MoveCustomField(t *testing.T) {
	a := newTestApp(t)

	// Swap the seeded Status (position 2) with References (position 1).
	rec := do(t, a, http.MethodPatch, "/admin/testcase_custom_fields/2/move/up", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":1}`, rec.Body.String())

	// Moving the new first field up again is rejected without error.
	rec = do(t, a, http.MethodPatch, "/admin/testcase_custom_fields/2/move/up", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":0,"error":"Invalid field or move operation"}`, rec.Body.String())

	rec = do(t, a, http.MethodPatch, "/admin/testcase_custom_fields/2/move/sideways", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApp_MaintenanceRefusesWrites(t *testing.T) {
	a := newTestApp(t)

	rec := do(t, a, http.MethodPost, "/admin/maintenance/enter", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, a, http.MethodPost, "/admin/testcase_custom_fields", map[string]any{
		"field_name":              "Severity",
		"system_name":             "severity",
		"field_type":              "String",
		"enabled":                 true,
		"applies_to_all_projects": true,
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":0,"error":"Internal error"}`, rec.Body.String())

	rec = do(t, a, http.MethodGet, "/health", nil)
	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "critical", resp.Status)

	rec = do(t, a, http.MethodPost, "/admin/maintenance/exit", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, a, http.MethodPost, "/admin/testcase_custom_fields", map[string]any{
		"field_name":              "Severity",
		"system_name":             "severity",
		"field_type":              "String",
		"enabled":                 true,
		"applies_to_all_projects": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":1}`, rec.Body.String())
}
