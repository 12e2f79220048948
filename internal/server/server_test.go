package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/store"
)

type stubStarter struct {
	started []string
}

func (s *stubStarter) Start(_ context.Context, taskID string) <-chan struct{} {
	s.started = append(s.started, taskID)
	done := make(chan struct{})
	close(done)
	return done
}

func newTestServer(t *testing.T) (*Server, store.Store, *stubStarter) {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Port: 0, AllowedOrigins: []string{"*"}},
	}
	st := store.NewMemoryStore()
	starter := &stubStarter{}
	return New(cfg, st, starter), st, starter
}

func TestSubmitCriteria_Accepted(t *testing.T) {
	srv, st, starter := newTestServer(t)

	body := `{"sicCodesArray":["62020"],"phoneNumber":"+447700900000"}`
	req := httptest.NewRequest(http.MethodPost, "/api/submit_criteria", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	taskID := resp["task_id"]
	require.NotEmpty(t, taskID)

	task, ok := st.Get(taskID)
	require.True(t, ok)
	assert.Equal(t, model.TaskStatusPending, task.Status)
	assert.Equal(t, []string{"62020"}, task.Criteria.SICCodes)
	assert.Equal(t, "+447700900000", task.Phone)

	assert.Equal(t, []string{taskID}, starter.started)
}

func TestSubmitCriteria_MissingPhone(t *testing.T) {
	srv, _, starter := newTestServer(t)

	body := `{"sicCodesArray":["62020"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/submit_criteria", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "required")
	assert.Empty(t, starter.started)
}

func TestSubmitCriteria_MalformedBody(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/submit_criteria", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitCriteria_InvalidYearEndMode(t *testing.T) {
	srv, _, _ := newTestServer(t)

	body := `{"sicCodesArray":["62020"],"phoneNumber":"+447700900000","budgetEndDateSearchType":"weekly"}`
	req := httptest.NewRequest(http.MethodPost, "/api/submit_criteria", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLeads_NotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/get_leads/nope", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLeads_ReturnsTask(t *testing.T) {
	srv, st, _ := newTestServer(t)

	require.NoError(t, st.Create(&model.Task{
		ID:     "task-1",
		Status: model.TaskStatusLeadsFound,
		Results: []model.Lead{
			{CompanyName: "ACME LIMITED", Email: "jane@acme.co.uk"},
		},
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/get_leads/task-1", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var task model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.Equal(t, model.TaskStatusLeadsFound, task.Status)
	require.Len(t, task.Results, 1)
	assert.Equal(t, "jane@acme.co.uk", task.Results[0].Email)
}

func TestExportLeads_ConflictBeforeCompletion(t *testing.T) {
	srv, st, _ := newTestServer(t)

	require.NoError(t, st.Create(&model.Task{ID: "task-1", Status: model.TaskStatusSearching}))

	req := httptest.NewRequest(http.MethodGet, "/api/get_leads/task-1/export", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestExportLeads_Workbook(t *testing.T) {
	srv, st, _ := newTestServer(t)

	require.NoError(t, st.Create(&model.Task{
		ID:     "task-1",
		Status: model.TaskStatusLeadsFound,
		Results: []model.Lead{
			{CompanyName: "ACME LIMITED", PersonName: "SMITH, Jane", Email: "jane@acme.co.uk"},
		},
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/get_leads/task-1/export", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "task-1")

	f, err := xlsx.OpenBinary(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	require.Len(t, f.Sheets[0].Rows, 2)
	assert.Equal(t, "jane@acme.co.uk", f.Sheets[0].Rows[1].Cells[4].String())
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
