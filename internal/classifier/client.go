// Package classifier talks to the image classification service that infers a
// complaint's category and auto-description from its evidence photo.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/resilience"
	"go.uber.org/zap"
)

const (
	uploadPath = "/upload-image"
	operation  = "classify"
)

// Client posts images to <baseURL>/upload-image as multipart field "file".
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
	logger     *zap.SugaredLogger
}

// New creates a classification client. executor may be nil.
func New(baseURL string, timeout time.Duration, executor *resilience.Executor, logger *zap.SugaredLogger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
		logger:     logger,
	}
}

// Classify sends file to the classification service. Any transport failure,
// non-2xx status or undecodable body is reported as ErrClassification.
func (c *Client) Classify(ctx context.Context, file models.Upload) (*models.Classification, error) {
	var out *models.Classification
	call := func(ctx context.Context) (err error) {
		out, err = c.post(ctx, file)
		return err
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, operation, call, countsAgainstBreaker)
	} else {
		err = call(ctx)
	}
	if err != nil {
		if c.executor != nil && resilience.IsCircuitOpen(err) {
			c.logger.Warnw("Classification skipped, circuit open",
				"filename", file.Filename, "breaker", c.executor.State(operation))
		} else {
			c.logger.Errorw("Classification failed", "filename", file.Filename, "error", err)
		}
		return nil, models.WrapError(models.ErrClassification, operation, err)
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, file models.Upload) (*models.Classification, error) {
	body, contentType, err := encodeFile(file)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, formatHTTPError(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", operation, err)
	}

	var cls models.Classification
	if err := json.Unmarshal(raw, &cls); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", operation, err)
	}
	if err := json.Unmarshal(raw, &cls.Raw); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", operation, err)
	}
	return &cls, nil
}

func encodeFile(file models.Upload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Filename))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// HTTPStatusError is a non-2xx reply from the classification service.
type HTTPStatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s status: %s", operation, e.Status)
	}
	return fmt.Sprintf("%s status: %s: %s", operation, e.Status, e.Body)
}

func formatHTTPError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &HTTPStatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(body)),
	}
}
