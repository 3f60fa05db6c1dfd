package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/evadocs/internal/common"
	"github.com/dmitrijs2005/evadocs/internal/logging"
)

const (
	defaultConvertTimeout = 60 * time.Second
	maxErrorText          = 200
	maxErrorBody          = 64 << 10
)

// HTTPClient talks to the EVA backend over REST. The zero value is not
// usable; construct it with NewHTTPClient.
type HTTPClient struct {
	baseURL        string
	tokens         TokenSource
	convertTimeout time.Duration
	logger         logging.Logger

	mu   sync.Mutex
	http *http.Client
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client. Wipe swaps in a copy
// with a fresh Jar.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithConvertTimeout bounds conversion and upload requests.
func WithConvertTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.convertTimeout = d
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

func NewHTTPClient(baseURL string, tokens TokenSource, opts ...Option) (*HTTPClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("empty base url")
	}
	c := &HTTPClient{
		baseURL:        strings.TrimRight(baseURL, "/"),
		tokens:         tokens,
		convertTimeout: defaultConvertTimeout,
		logger:         logging.Discard(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.http.Jar = jar
	}
	return c, nil
}

// Wipe drops every cookie the backend has set for this process.
func (c *HTTPClient) Wipe(ctx context.Context) error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	c.mu.Lock()
	hc := *c.http
	hc.Jar = jar
	c.http = &hc
	c.mu.Unlock()
	c.logger.Debug(ctx, "cookie jar reset")
	return nil
}

func (c *HTTPClient) Close() error {
	c.client().CloseIdleConnections()
	return nil
}

func (c *HTTPClient) client() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.http
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func (c *HTTPClient) authorize(ctx context.Context, req *http.Request) error {
	if c.tokens == nil {
		return common.ErrNotAuthenticated
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return common.ErrNotAuthenticated
	}
	req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	return nil
}

// do sends req and maps failures: transport errors to ErrUnavailable and
// non-2xx statuses to *APIError (a 401 wraps ErrUnauthorized). On success
// the caller owns resp.Body.
func (c *HTTPClient) do(req *http.Request) (*http.Response, error) {
	hc := c.client()

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Debug(req.Context(), "request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	c.logger.Debug(req.Context(), "request", "method", req.Method, "path", req.URL.Path,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode == http.StatusUnauthorized {
		// Message stays empty unless the backend explained the rejection.
		return nil, &APIError{Status: resp.StatusCode, Message: bodyDetail(body), Err: ErrUnauthorized}
	}
	return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
}

// errorMessage picks the most useful text out of an error body: the JSON
// "detail" or "error" field, else the raw text, else the status line.
func errorMessage(status int, body []byte) string {
	if msg := bodyDetail(body); msg != "" {
		return msg
	}
	return fmt.Sprintf("Error %d: %s", status, http.StatusText(status))
}

// bodyDetail returns the JSON "detail" or "error" field, or the trimmed
// raw text of a non-JSON body. Empty when the body says nothing.
func bodyDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
		Error  json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := rawMessage(payload.Detail); msg != "" {
			return msg
		}
		return rawMessage(payload.Error)
	}
	return truncate(strings.TrimSpace(string(body)), maxErrorText)
}

// rawMessage renders a detail/error field. Validation errors arrive as a
// list of {"msg": ...} objects.
func rawMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return string(raw)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func decodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

type formFile struct {
	field string
	name  string
	r     io.Reader
}

// multipartBody builds a multipart/form-data payload with plain fields
// written before files.
func multipartBody(fields map[string]string, files ...formFile) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.r); err != nil {
			return nil, "", fmt.Errorf("read %s: %w", f.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// timeoutError reports ErrTimeout when the conversion deadline fired while
// the caller's own context was still alive.
func timeoutError(parent, bounded context.Context, err error) error {
	if errors.Is(bounded.Err(), context.DeadlineExceeded) && parent.Err() == nil {
		return ErrTimeout
	}
	return err
}
