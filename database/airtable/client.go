// File: database/airtable/client.go
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"fieldservice/utils"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.airtable.com/v0"

// ErrNotFound is returned when the API answers 404 for a record or table.
var ErrNotFound = errors.New("airtable: not found")

// APIError is a non-retryable response from the API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("airtable: status %d", e.StatusCode)
	}
	return fmt.Sprintf("airtable: status %d: %s: %s", e.StatusCode, e.Type, e.Message)
}

// Record is one row of a table.
type Record struct {
	ID          string                 `json:"id,omitempty"`
	CreatedTime string                 `json:"createdTime,omitempty"`
	Fields      map[string]interface{} `json:"fields"`
}

// Config configures a Client. Zero values fall back to sane defaults.
type Config struct {
	BaseURL string
	BaseID  string
	Token   string
	Timeout time.Duration // per attempt
	Retries int
}

// Client talks to one Airtable base.
type Client struct {
	http    *http.Client
	baseURL string
	baseID  string
	token   string
	timeout time.Duration
	retries uint64
	logger  *zap.Logger

	// initialBackoff is shortened by tests.
	initialBackoff time.Duration
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:           &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		baseURL:        cfg.BaseURL,
		baseID:         cfg.BaseID,
		token:          cfg.Token,
		timeout:        cfg.Timeout,
		retries:        uint64(cfg.Retries),
		logger:         logger,
		initialBackoff: time.Second,
	}
}

// ListParams mirrors the list-records query options we use.
type ListParams struct {
	Formula  string
	Fields   []string
	SortBy   string
	SortDesc bool
	PageSize int
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	if p.Formula != "" {
		v.Set("filterByFormula", p.Formula)
	}
	for _, f := range p.Fields {
		v.Add("fields[]", f)
	}
	if p.SortBy != "" {
		v.Set("sort[0][field]", p.SortBy)
		dir := "asc"
		if p.SortDesc {
			dir = "desc"
		}
		v.Set("sort[0][direction]", dir)
	}
	if p.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(p.PageSize))
	}
	return v
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

// List fetches every page of a table that matches params.
func (c *Client) List(ctx context.Context, table string, params ListParams) ([]Record, error) {
	var all []Record
	query := params.values()
	for {
		var page listResponse
		if err := c.do(ctx, http.MethodGet, table, "", query, nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Records...)
		if page.Offset == "" {
			return all, nil
		}
		query.Set("offset", page.Offset)
	}
}

// Get fetches one record by id.
func (c *Client) Get(ctx context.Context, table, id string) (*Record, error) {
	var rec Record
	if err := c.do(ctx, http.MethodGet, table, id, nil, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create inserts one record and returns it with its new id.
func (c *Client) Create(ctx context.Context, table string, fields map[string]interface{}) (*Record, error) {
	var rec Record
	if err := c.do(ctx, http.MethodPost, table, "", nil, Record{Fields: fields}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update patches the given fields of one record; other fields are left untouched.
func (c *Client) Update(ctx context.Context, table, id string, fields map[string]interface{}) (*Record, error) {
	var rec Record
	if err := c.do(ctx, http.MethodPatch, table, id, nil, Record{Fields: fields}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes one record.
func (c *Client) Delete(ctx context.Context, table, id string) error {
	return c.do(ctx, http.MethodDelete, table, id, nil, nil, nil)
}

// Ping lists a single record of table to check credentials and reachability.
func (c *Client) Ping(ctx context.Context, table string) error {
	var page listResponse
	return c.do(ctx, http.MethodGet, table, "", url.Values{"pageSize": {"1"}}, nil, &page)
}

func (c *Client) endpoint(table, id string, query url.Values) string {
	u := c.baseURL + "/" + url.PathEscape(c.baseID) + "/" + url.PathEscape(table)
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do runs one API call with per-attempt timeout and exponential backoff.
// Network errors, 429 and 5xx are retried; any other status is final.
func (c *Client) do(ctx context.Context, method, table, id string, query url.Values, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("airtable: encode body: %w", err)
		}
	}
	target := c.endpoint(table, id, query)
	logger := c.logger.With(zap.String("method", method), zap.String("table", table))

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.initialBackoff
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, c.retries), ctx)

	attempt := 0
	start := time.Now()
	err := backoff.Retry(func() error {
		attempt++
		err := c.attempt(ctx, method, target, payload, out)
		if err != nil && !isPermanent(err) {
			logger.Warn("airtable request failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		}
		return err
	}, policy)

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	utils.ObserveUpstream(table, method, outcome(err), time.Since(start))
	return err
}

func (c *Client) attempt(ctx context.Context, method, target string, payload []byte, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return backoff.Permanent(ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return decodeAPIError(resp)
	case resp.StatusCode >= 400:
		return backoff.Permanent(decodeAPIError(resp))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("airtable: decode response: %w", err))
	}
	return nil
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &envelope) != nil || len(envelope.Error) == 0 {
		return apiErr
	}
	// error is either {"type","message"} or a bare string such as "NOT_FOUND".
	var detail struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if json.Unmarshal(envelope.Error, &detail) == nil {
		apiErr.Type, apiErr.Message = detail.Type, detail.Message
	} else {
		_ = json.Unmarshal(envelope.Error, &apiErr.Type)
	}
	return apiErr
}

func isPermanent(err error) bool {
	var perm *backoff.PermanentError
	return errors.As(err, &perm)
}

func outcome(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.As(err, &apiErr):
		return strconv.Itoa(apiErr.StatusCode)
	default:
		return "error"
	}
}
