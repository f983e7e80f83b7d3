package thread

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recall-be/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateThread(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/projects", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":     true,
			"thread": map[string]string{"thread_id": "thread-42"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	threadId, err := client.CreateThread(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "thread-42", threadId)
}

func TestCreateThreadNonSuccessStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "server error", status: http.StatusInternalServerError},
		{name: "not found", status: http.StatusNotFound},
		{name: "bad gateway", status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := NewClient(srv.URL, time.Second)
			_, err := client.CreateThread(context.Background())
			assert.True(t, apperror.IsKind(err, apperror.KindBackendUnavailable))
		})
	}
}

func TestCreateThreadMissingThreadId(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"ok": true})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.CreateThread(context.Background())
	assert.True(t, apperror.IsKind(err, apperror.KindBackendUnavailable))
}

func TestAsk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ask", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req map[string]string
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "thread-42", req["thread_id"])
		assert.Equal(t, "Save this as institutional memory.", req["content"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":       true,
			"threadId": "thread-42",
			"message":  map[string]string{"content": "Noted."},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	reply, err := client.Ask(context.Background(), "thread-42", "Save this as institutional memory.")
	require.NoError(t, err)
	assert.Equal(t, "Noted.", reply)
}

func TestAskNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Ask(context.Background(), "thread-42", "anything")
	assert.True(t, apperror.IsKind(err, apperror.KindBackendUnavailable))
}

func TestAskUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Closed on purpose

	client := NewClient(srv.URL, 200*time.Millisecond)
	_, err := client.Ask(context.Background(), "thread-42", "anything")
	assert.True(t, apperror.IsKind(err, apperror.KindBackendUnavailable))
}
