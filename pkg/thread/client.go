package thread

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"recall-be/internal/pkg/apperror"
)

// IThreadClient is the gateway to the remote thread service. Stateless,
// single-shot, no retry policy of its own: callers decide what a failure
// means for them.
type IThreadClient interface {
	// CreateThread opens a new server-side conversational context and
	// returns its opaque id.
	CreateThread(ctx context.Context) (string, error)

	// Ask submits an instruction to an existing thread. Any success
	// response means the instruction was durably recorded; there is no
	// separate acknowledgment channel.
	Ask(ctx context.Context, threadId string, content string) (string, error)
}

type Client struct {
	BaseURL string
	Client  *http.Client
}

var _ IThreadClient = &Client{}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type createThreadResponse struct {
	Ok     bool `json:"ok"`
	Thread struct {
		ThreadId string `json:"thread_id"`
	} `json:"thread"`
}

type askRequest struct {
	ThreadId string `json:"thread_id"`
	Content  string `json:"content"`
}

type askResponse struct {
	Ok       bool   `json:"ok"`
	ThreadId string `json:"threadId"`
	Message  struct {
		Content string `json:"content"`
	} `json:"message"`
}

// --- Interface Implementation ---

func (c *Client) CreateThread(ctx context.Context) (string, error) {
	body, err := c.post(ctx, "/api/projects", nil)
	if err != nil {
		return "", err
	}

	var res createThreadResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("unmarshal create thread response: %w", err)
	}
	if res.Thread.ThreadId == "" {
		return "", apperror.NewBackendUnavailable("Thread backend returned no thread id", nil)
	}

	return res.Thread.ThreadId, nil
}

func (c *Client) Ask(ctx context.Context, threadId string, content string) (string, error) {
	payload, err := json.Marshal(askRequest{ThreadId: threadId, Content: content})
	if err != nil {
		return "", fmt.Errorf("marshal ask request: %w", err)
	}

	body, err := c.post(ctx, "/api/ask", payload)
	if err != nil {
		return "", err
	}

	var res askResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("unmarshal ask response: %w", err)
	}

	return res.Message.Content, nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, apperror.NewBackendUnavailable("Thread backend unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// Failure is any non-2xx status.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperror.NewBackendUnavailable(
			fmt.Sprintf("Thread backend error: status %d", resp.StatusCode),
			fmt.Errorf("%s: %s", path, string(body)),
		)
	}

	return body, nil
}
