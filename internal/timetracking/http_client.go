package timetracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "focussync/internal/errors"
	"focussync/internal/model"
	"focussync/internal/service"
)

// HTTPClient talks to the backend's JSON API with a bearer token.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

type errorEnvelope struct {
	Error struct {
		Code    string      `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details"`
	} `json:"error"`
}

type logEnvelope struct {
	Log *model.TimeTrackingLog `json:"log"`
}

type statsEnvelope struct {
	Stats *model.TimeTrackingStats `json:"stats"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewHTTPClient(baseURL, token string, client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
	}
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) (*service.AuthResult, error) {
	var result service.AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", credentials{Email: email, Password: password}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	var result service.AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", credentials{Email: email, Password: password}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Me returns the account the token belongs to.
func (c *HTTPClient) Me(ctx context.Context) (*model.User, error) {
	var envelope struct {
		User *model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.User == nil {
		return nil, apperrors.Internal("user missing from response")
	}
	return envelope.User, nil
}

func (c *HTTPClient) Start(ctx context.Context, params model.TimeTrackingStart) (*model.TimeTrackingLog, error) {
	return c.logCall(ctx, http.MethodPost, "/api/time-tracking/start", params)
}

func (c *HTTPClient) Stop(ctx context.Context) (*model.TimeTrackingLog, error) {
	return c.logCall(ctx, http.MethodPost, "/api/time-tracking/stop", nil)
}

func (c *HTTPClient) Pause(ctx context.Context) (*model.TimeTrackingLog, error) {
	return c.logCall(ctx, http.MethodPost, "/api/time-tracking/pause", nil)
}

func (c *HTTPClient) Resume(ctx context.Context) (*model.TimeTrackingLog, error) {
	return c.logCall(ctx, http.MethodPost, "/api/time-tracking/resume", nil)
}

func (c *HTTPClient) Cancel(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/time-tracking/cancel", nil, nil)
}

func (c *HTTPClient) GetActive(ctx context.Context) (*model.TimeTrackingLog, error) {
	return c.logCall(ctx, http.MethodGet, "/api/time-tracking/active", nil)
}

func (c *HTTPClient) GetStats(ctx context.Context) (*model.TimeTrackingStats, error) {
	var envelope statsEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/time-tracking/stats", nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Stats == nil {
		return nil, apperrors.Internal("stats missing from response")
	}
	return envelope.Stats, nil
}

// History lists the most recent logs, newest first.
func (c *HTTPClient) History(ctx context.Context, limit int) ([]model.TimeTrackingLog, error) {
	var envelope struct {
		Logs []model.TimeTrackingLog `json:"logs"`
	}
	path := fmt.Sprintf("/api/time-tracking/history?limit=%d", limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Logs, nil
}

func (c *HTTPClient) logCall(ctx context.Context, method, path string, body interface{}) (*model.TimeTrackingLog, error) {
	var envelope logEnvelope
	if err := c.do(ctx, method, path, body, &envelope); err != nil {
		return nil, err
	}
	return envelope.Log, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.Internal(fmt.Sprintf("encode request: %v", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.Internal(fmt.Sprintf("create request: %v", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return apperrors.Unavailable(fmt.Sprintf("time tracking request failed: %v", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Unavailable(fmt.Sprintf("read response: %v", err))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return apperrors.Internal(fmt.Sprintf("decode response: %v", err))
	}
	return nil
}

func decodeError(status int, body []byte) *apperrors.APIError {
	var envelope errorEnvelope
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Code != "" {
		apiErr := apperrors.New(status, envelope.Error.Code, envelope.Error.Message)
		apiErr.Details = envelope.Error.Details
		return apiErr
	}
	message := strings.TrimSpace(string(body))
	if message == "" {
		message = http.StatusText(status)
	}
	return apperrors.New(status, "http_error", message)
}
