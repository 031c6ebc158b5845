// Package dashboard renders the staff complaint log and navbar over the
// complaint API.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
)

// API is the subset of the complaint API the log view needs.
type API interface {
	ListComplaints(ctx context.Context) ([]models.Complaint, error)
	UpdateStatus(ctx context.Context, id string, status models.Status) (*models.Complaint, error)
}

// Client talks to the complaint API over HTTP. Requests are not retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an API client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ListComplaints fetches GET /complaintslogs/all
func (c *Client) ListComplaints(ctx context.Context) ([]models.Complaint, error) {
	var out []models.Complaint
	if err := c.doJSON(ctx, http.MethodGet, "/complaintslogs/all", nil, &out, "list complaints"); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus sends PUT /complaintslogs/{id}
func (c *Client) UpdateStatus(ctx context.Context, id string, status models.Status) (*models.Complaint, error) {
	var out models.Complaint
	path := "/complaintslogs/" + url.PathEscape(id)
	if err := c.doJSON(ctx, http.MethodPut, path, models.StatusUpdate{Status: string(status)}, &out, "update status"); err != nil {
		return nil, err
	}
	return &out, nil
}

// APIError is a non-2xx reply from the complaint API.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Operation, e.StatusCode, e.Message)
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any, operation string) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", operation, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return apiError(operation, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func apiError(operation string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	var body struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &APIError{Operation: operation, StatusCode: resp.StatusCode, Message: msg}
}
