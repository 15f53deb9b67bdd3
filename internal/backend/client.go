// Package backend implements the HTTP client for the SlideSpeaker job API:
// task and progress reads with a bounded retry budget, plus the cancel,
// retry, delete, and run mutations, which are never retried automatically.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"slidespeaker/internal/tasks"
)

const (
	defaultHTTPTimeout    = 15 * time.Second
	defaultRetryBaseDelay = 500 * time.Millisecond
	defaultRetryMaxDelay  = 5 * time.Second
	// defaultRetryAttempts is the total budget for reads: one attempt plus
	// two retries. 4xx responses never consume a retry.
	defaultRetryAttempts = 3

	defaultListLimit   = 20
	defaultSearchLimit = 20
)

// Config captures the runtime settings required to talk to the job backend.
type Config struct {
	BaseURL        string
	APIToken       string
	TimeoutSeconds int
}

// Client talks to the job backend. Safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the total read attempt budget.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a backend client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			APIToken:       strings.TrimSpace(cfg.APIToken),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// TaskList is a paged task collection from the list and search endpoints.
type TaskList struct {
	Tasks  []tasks.Raw `json:"tasks"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// MutationResult is the backend's acknowledgement of a mutation.
type MutationResult struct {
	Message string `json:"message"`
	Step    string `json:"step,omitempty"`
	Status  string `json:"status,omitempty"`
	TaskID  string `json:"task_id,omitempty"`
}

// RunParams configures a run submission for an uploaded file.
type RunParams struct {
	VoiceLanguage      string `json:"voice_language,omitempty"`
	SubtitleLanguage   string `json:"subtitle_language,omitempty"`
	TranscriptLanguage string `json:"transcript_language,omitempty"`
	VoiceID            string `json:"voice_id,omitempty"`
	VideoResolution    string `json:"video_resolution,omitempty"`
	GenerateVideo      *bool  `json:"generate_video,omitempty"`
	GeneratePodcast    *bool  `json:"generate_podcast,omitempty"`
	GenerateSubtitles  *bool  `json:"generate_subtitles,omitempty"`
}

type runRequest struct {
	RunParams
	// ClientReference lets the backend de-duplicate a resubmitted run.
	ClientReference string `json:"client_reference"`
}

// GetTask fetches the full task record.
func (c *Client) GetTask(ctx context.Context, taskID string) (tasks.Raw, error) {
	var payload tasks.Raw
	err := c.getJSON(ctx, "get task", "/api/tasks/"+url.PathEscape(taskID), &payload)
	return payload, err
}

// GetProgress fetches the task's progress payload.
func (c *Client) GetProgress(ctx context.Context, taskID string) (tasks.Raw, error) {
	var payload tasks.Raw
	err := c.getJSON(ctx, "get progress", "/api/tasks/"+url.PathEscape(taskID)+"/progress", &payload)
	return payload, err
}

// ListTasks fetches one page of the task list. Non-positive limit uses the
// backend default page size.
func (c *Client) ListTasks(ctx context.Context, limit, offset int) (TaskList, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	query := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
	var list TaskList
	err := c.getJSON(ctx, "list tasks", "/api/tasks?"+query.Encode(), &list)
	return list, err
}

// SearchTasks runs a task search.
func (c *Client) SearchTasks(ctx context.Context, q string, limit int) (TaskList, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return TaskList{}, fmt.Errorf("search tasks: query required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	query := url.Values{
		"query": {q},
		"limit": {strconv.Itoa(limit)},
	}
	var list TaskList
	err := c.getJSON(ctx, "search tasks", "/api/tasks/search?"+query.Encode(), &list)
	return list, err
}

// CancelTask asks the backend to cancel a running task.
func (c *Client) CancelTask(ctx context.Context, taskID string) (MutationResult, error) {
	var result MutationResult
	err := c.mutateJSON(ctx, "cancel task", http.MethodPost,
		"/api/tasks/"+url.PathEscape(taskID)+"/cancel", nil, &result)
	return result, err
}

// RetryTask restarts a failed task, from the named step when step is
// non-empty.
func (c *Client) RetryTask(ctx context.Context, taskID, step string) (MutationResult, error) {
	body := map[string]string{}
	if step = strings.TrimSpace(step); step != "" {
		body["step"] = step
	}
	var result MutationResult
	err := c.mutateJSON(ctx, "retry task", http.MethodPost,
		"/api/tasks/"+url.PathEscape(taskID)+"/retry", body, &result)
	return result, err
}

// DeleteTask removes a task and its artifacts.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.mutateJSON(ctx, "delete task", http.MethodDelete,
		"/api/tasks/"+url.PathEscape(taskID)+"/delete", nil, nil)
}

// RunFile submits a processing run for an uploaded file. A fresh client
// reference id is attached to every submission.
func (c *Client) RunFile(ctx context.Context, uploadID string, params RunParams) (MutationResult, error) {
	request := runRequest{RunParams: params, ClientReference: uuid.NewString()}
	var result MutationResult
	err := c.mutateJSON(ctx, "run file", http.MethodPost,
		"/api/files/"+url.PathEscape(uploadID)+"/run", request, &result)
	return result, err
}

// Health verifies the backend answers at all.
func (c *Client) Health(ctx context.Context) error {
	var payload map[string]any
	return c.getJSON(ctx, "health", "/api/health", &payload)
}

// getJSON performs a read with the retry budget. 4xx responses return
// immediately; timeouts, network failures, and 5xx responses retry with
// exponential backoff until the budget runs out.
func (c *Client) getJSON(ctx context.Context, op, path string, target any) error {
	attempts := c.retryAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.doOnce(ctx, http.MethodGet, path, nil, target)
		if err == nil {
			return nil
		}
		lastErr = err
		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return classify(op, err, false)
		}
		if err := c.sleep(ctx, delay); err != nil {
			return classify(op, err, false)
		}
	}
	return classify(op, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr), false)
}

// mutateJSON performs a mutation exactly once.
func (c *Client) mutateJSON(ctx context.Context, op, method, path string, body, target any) error {
	if err := c.doOnce(ctx, method, path, body, target); err != nil {
		return classify(op, err, true)
	}
	return nil
}

func (c *Client) doOnce(ctx context.Context, method, path string, body, target any) error {
	if c.cfg.BaseURL == "" {
		return errors.New("base url required")
	}
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http error (timeout=%s): %w", c.timeoutDuration(), err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return &statusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}
	if target == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) timeoutDuration() time.Duration {
	if c == nil || c.httpClient == nil || c.httpClient.Timeout <= 0 {
		return defaultHTTPTimeout
	}
	return c.httpClient.Timeout
}

func (c *Client) retryAttempts() int {
	if c == nil || c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || ctx == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *statusError
	if errors.As(err, &statusErr) {
		// 4xx is non-transient; only server failures and timeouts retry.
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			return c.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.backoffDelay(attempt), true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return c.backoffDelay(attempt), true
	}
	return 0, false
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.retryBaseDelay
	maxDelay := c.retryMaxDelay
	if base <= 0 {
		return 0
	}
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			return maxDelay
		}
		delay *= 2
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
