package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"recall-be/internal/bootstrap"
	"recall-be/internal/config"
	"recall-be/internal/dto"
	"recall-be/internal/entity"
	"recall-be/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubThreadBackend fakes the remote thread service the dashboard persists
// memory to.
type stubThreadBackend struct {
	server   *httptest.Server
	failing  atomic.Bool
	askCount atomic.Int64
}

func newStubThreadBackend() *stubThreadBackend {
	stub := &stubThreadBackend{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/projects", func(w http.ResponseWriter, r *http.Request) {
		if stub.failing.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":     true,
			"thread": map[string]string{"thread_id": "thread-integration-1"},
		})
	})
	mux.HandleFunc("/api/ask", func(w http.ResponseWriter, r *http.Request) {
		if stub.failing.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		stub.askCount.Add(1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":       true,
			"threadId": "thread-integration-1",
			"message":  map[string]string{"content": "Stored as institutional memory."},
		})
	})
	stub.server = httptest.NewServer(mux)
	return stub
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, wantStatus int, out interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, wantStatus, resp.StatusCode, "%s %s", method, path)

	if out == nil {
		return
	}
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.True(t, env.Success)
	require.NoError(t, json.Unmarshal(env.Data, out))
}

// fetchJSON is the non-fatal variant used inside polling closures, where
// failing the test from another goroutine is not allowed.
func fetchJSON(app *fiber.App, path string, out interface{}) bool {
	req := httptest.NewRequest("GET", path, nil)
	resp, err := app.Test(req, 5000)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		return false
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return false
	}
	return json.Unmarshal(env.Data, out) == nil
}

func TestExtractionFlow(t *testing.T) {
	stub := newStubThreadBackend()
	defer stub.server.Close()

	cfg := &config.Config{
		App: config.AppConfig{
			Port:               "0",
			Environment:        "development",
			LogFilePath:        filepath.Join(t.TempDir(), "app.log"),
			FeedLogFilePath:    filepath.Join(t.TempDir(), "feed.log"),
			CorsAllowedOrigins: "http://localhost:5173",
			DecisionSavedTopic: "DECISION_SAVED",
		},
		Thread: config.ThreadConfig{
			BaseURL: stub.server.URL,
			Timeout: 2 * time.Second,
		},
		Analysis: config.AnalysisConfig{
			StageDelay:        2 * time.Millisecond,
			FinalizeDelay:     1 * time.Millisecond,
			HighlightDuration: 50 * time.Millisecond,
		},
	}

	container := bootstrap.NewContainer(cfg)
	defer container.WorkspaceService.Shutdown()
	require.NoError(t, container.ConsumerService.Consume(context.Background()))

	app := server.New(cfg, container).GetApp()

	// 1. Create a project, which opens a remote thread.
	var created dto.CreateProjectResponse
	doJSON(t, app, "POST", "/api/workspace/v1/projects",
		map[string]string{"name": "Platform Redesign"}, fiber.StatusCreated, &created)
	assert.Equal(t, "thread-integration-1", created.ThreadId)

	base := fmt.Sprintf("/api/extraction/v1/projects/%s", created.Id)

	// 2. Open a session, stage a document, run the analysis.
	var status dto.SessionStatusResponse
	doJSON(t, app, "POST", base+"/session", nil, fiber.StatusCreated, &status)
	assert.Equal(t, entity.PhaseIdle, status.Phase)

	doJSON(t, app, "POST", base+"/session/file",
		map[string]string{"file_name": "spec.pdf", "document_type": "RFC"}, fiber.StatusOK, &status)
	assert.Equal(t, entity.PhaseUploading, status.Phase)

	doJSON(t, app, "POST", base+"/session/analyze", nil, fiber.StatusAccepted, &status)
	assert.Equal(t, entity.PhaseAnalyzing, status.Phase)

	require.Eventually(t, func() bool {
		return fetchJSON(app, base+"/session", &status) && status.Phase == entity.PhaseReviewing
	}, 2*time.Second, 2*time.Millisecond)
	require.Len(t, status.Candidates, 3)

	// 3. Confirm the high-confidence candidate.
	var target *dto.CandidateResponse
	for _, c := range status.Candidates {
		if c.Confidence == 92 {
			target = c
		}
	}
	require.NotNil(t, target)

	var action dto.DecisionActionResponse
	doJSON(t, app, "POST", base+"/session/decisions/"+target.Id+"/confirm", nil, fiber.StatusOK, &action)
	assert.Equal(t, entity.DispositionSaved, action.Disposition)
	assert.Equal(t, int64(1), stub.askCount.Load())

	// 4. The confirmation lands in the ledger and timeline via the consumer.
	projectPath := "/api/workspace/v1/projects/" + created.Id.String()
	var project dto.ShowProjectResponse
	require.Eventually(t, func() bool {
		return fetchJSON(app, projectPath, &project) && len(project.Decisions) == 4
	}, 2*time.Second, 2*time.Millisecond)

	merged := project.Decisions[0]
	assert.Equal(t, target.Id, merged.Id)
	assert.Equal(t, []string{"From Document", "spec"}, merged.Tags)
	assert.Equal(t, entity.EventTypeDecision, project.Timeline[0].Type)
	assert.Equal(t, target.Title, project.Timeline[0].Description)
	assert.Equal(t, target.Id, project.RecentDecisionId)

	// 5. Highlight expires on its own. Decode into a fresh struct: the field
	// is omitempty, so an absent key would leave a stale value in `project`.
	require.Eventually(t, func() bool {
		var fresh dto.ShowProjectResponse
		return fetchJSON(app, projectPath, &fresh) && fresh.RecentDecisionId == ""
	}, 2*time.Second, 5*time.Millisecond)

	// 6. Backend outage: confirm fails but stays retryable, others untouched.
	stub.failing.Store(true)
	next := status.Candidates[1]
	doJSON(t, app, "POST", base+"/session/decisions/"+next.Id+"/confirm", nil, fiber.StatusOK, &action)
	assert.Equal(t, entity.DispositionFailed, action.Disposition)
	assert.NotEmpty(t, action.ErrorMessage)

	doJSON(t, app, "GET", base+"/session", nil, fiber.StatusOK, &status)
	assert.NotEmpty(t, status.ErrorMessage)

	// 7. Recovery: the retry saves and the dedup guarantee holds end to end.
	stub.failing.Store(false)
	doJSON(t, app, "POST", base+"/session/decisions/"+next.Id+"/confirm", nil, fiber.StatusOK, &action)
	assert.Equal(t, entity.DispositionSaved, action.Disposition)

	require.Eventually(t, func() bool {
		return fetchJSON(app, projectPath, &project) && len(project.Decisions) == 5
	}, 2*time.Second, 2*time.Millisecond)

	// A stray duplicate confirm does not change the ledger.
	doJSON(t, app, "POST", base+"/session/decisions/"+next.Id+"/confirm", nil, fiber.StatusOK, &action)
	time.Sleep(20 * time.Millisecond)
	doJSON(t, app, "GET", projectPath, nil, fiber.StatusOK, &project)
	assert.Len(t, project.Decisions, 5)
}

func TestCreateProjectSurfacesBackendOutage(t *testing.T) {
	stub := newStubThreadBackend()
	defer stub.server.Close()
	stub.failing.Store(true)

	cfg := &config.Config{
		App: config.AppConfig{
			Port:               "0",
			Environment:        "development",
			LogFilePath:        filepath.Join(t.TempDir(), "app.log"),
			FeedLogFilePath:    filepath.Join(t.TempDir(), "feed.log"),
			CorsAllowedOrigins: "http://localhost:5173",
			DecisionSavedTopic: "DECISION_SAVED",
		},
		Thread: config.ThreadConfig{BaseURL: stub.server.URL, Timeout: time.Second},
		Analysis: config.AnalysisConfig{
			StageDelay:        time.Millisecond,
			FinalizeDelay:     time.Millisecond,
			HighlightDuration: time.Millisecond,
		},
	}

	container := bootstrap.NewContainer(cfg)
	defer container.WorkspaceService.Shutdown()
	app := server.New(cfg, container).GetApp()

	req := httptest.NewRequest("POST", "/api/workspace/v1/projects",
		bytes.NewReader([]byte(`{"name":"Doomed"}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}
