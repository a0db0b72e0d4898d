package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/me/rtsched/pkg/model"
)

const apiPrefix = "/api/v1"

// Client talks to the task-set registry of an rtsched server. Every call
// carries a fresh X-Request-ID so its log lines match the server's.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient creates a registry client for the server at baseURL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Logger:     logger,
	}
}

// envelope is the server's response wrapper.
type envelope struct {
	Status     string            `json:"status"`
	RequestID  string            `json:"request_id"`
	Data       json.RawMessage   `json:"data"`
	Pagination *model.Pagination `json:"pagination"`
	Error      *model.APIError   `json:"error"`
}

// registration is the body of a task-set upload.
type registration struct {
	Name   string `json:"name,omitempty"`
	Source string `json:"source"`
	Format string `json:"format,omitempty"`
}

// RegisterTaskSet uploads source. created is false when the server already
// held a task set with the same content and returned that one instead.
func (c *Client) RegisterTaskSet(ctx context.Context, name, source, format string) (rec *model.TaskSetRecord, created bool, err error) {
	rec = &model.TaskSetRecord{}
	status, _, err := c.call(ctx, http.MethodPost, "/tasksets/", nil,
		registration{Name: name, Source: source, Format: format}, rec)
	if err != nil {
		return nil, false, err
	}
	return rec, status == http.StatusCreated, nil
}

// ListTaskSets returns one page of registered task sets, newest first.
func (c *Client) ListTaskSets(ctx context.Context, opts model.ListOptions) ([]model.TaskSetRecord, *model.Pagination, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(opts.Limit))
	q.Set("offset", strconv.Itoa(opts.Offset))
	if opts.Name != "" {
		q.Set("name", opts.Name)
	}
	var sets []model.TaskSetRecord
	_, env, err := c.call(ctx, http.MethodGet, "/tasksets/", q, nil, &sets)
	if err != nil {
		return nil, nil, err
	}
	return sets, env.Pagination, nil
}

// GetTaskSet fetches one task set by ID.
func (c *Client) GetTaskSet(ctx context.Context, id string) (*model.TaskSetRecord, error) {
	var rec model.TaskSetRecord
	if _, _, err := c.call(ctx, http.MethodGet, "/tasksets/"+url.PathEscape(id), nil, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteTaskSet removes a task set by ID.
func (c *Client) DeleteTaskSet(ctx context.Context, id string) error {
	_, _, err := c.call(ctx, http.MethodDelete, "/tasksets/"+url.PathEscape(id), nil, nil, nil)
	return err
}

// AnalyzeTaskSet runs discipline d on a stored task set and decodes the
// report into out. frameSize applies to cyclic analysis; 0 packs every
// candidate.
func (c *Client) AnalyzeTaskSet(ctx context.Context, id string, d model.Discipline, frameSize int64, out any) error {
	q := url.Values{}
	q.Set("discipline", string(d))
	if frameSize > 0 {
		q.Set("frame_size", strconv.FormatInt(frameSize, 10))
	}
	_, _, err := c.call(ctx, http.MethodPost, "/tasksets/"+url.PathEscape(id)+"/analyze", q, nil, out)
	return err
}

// call performs one API request and decodes the envelope's data into out
// when out is non-nil. An error envelope comes back as its *model.APIError.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, in, out any) (int, *envelope, error) {
	u := c.BaseURL + apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := "cli_" + uuid.New().String()[:8]
	req.Header.Set("X-Request-ID", reqID)

	log := c.Logger.With("request_id", reqID)
	log.Debug("HTTP request", "method", method, "url", u)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	log.Debug("HTTP response", "status", resp.StatusCode, "bytes", len(respBody))

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("server at %s answered %d without an API envelope: %w", c.BaseURL, resp.StatusCode, err)
	}
	if env.Status == "error" && env.Error != nil {
		return resp.StatusCode, &env, env.Error
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return resp.StatusCode, &env, fmt.Errorf("parse response: %w", err)
		}
	}
	return resp.StatusCode, &env, nil
}
