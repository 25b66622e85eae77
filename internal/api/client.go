// Package api implements the shared API client: it holds the base URL, the
// bearer credential and the debug flag, and issues every request the stores
// make. Token changes are visible to all subsequent requests because the
// current token is read under lock on each call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"storefront/config"
	domainerrors "storefront/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// defaultEndpoints maps logical endpoint keys to their default paths.
// Deployments that rename paths override individual keys via config.
var defaultEndpoints = map[string]string{
	"login":         "/auth/login",
	"logout":        "/users/logout",
	"verify2fa":     "/auth/verify_2fa",
	"resend2fa":     "/auth/resend_2fa",
	"activate":      "/auth/activate",
	"passwordReset": "/auth/password/reset",
	"users":         "/users",
	"me":            "/users/me",
	"products":      "/products",
	"orders":        "/orders",
	"myOrders":      "/orders/me",
	"payments":      "/payments",
	"cartShow":      "/cart/show",
	"cartAdd":       "/cart/add",
	"cartUpdate":    "/cart/update",
	"cartRevoke":    "/cart/revoke",
	"cartClear":     "/cart/clear",
}

// Params holds dependencies for the Client, injected by Fx.
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// Client is the request-issuing capability shared by all stores.
type Client struct {
	mu        sync.RWMutex
	baseURL   string
	token     string
	debug     bool
	endpoints map[string]string

	defaultBaseURL string
	defaultDebug   bool

	onUnauthorized func()
	onRateLimited  func(message string)

	httpClient *http.Client
	logger     *slog.Logger
}

// New is the constructor for Client.
func New(params Params) *Client {
	return &Client{
		baseURL:        strings.TrimRight(params.Config.API.BaseURL, "/"),
		debug:          params.Config.Env.Debug,
		endpoints:      params.Config.API.Endpoints,
		defaultBaseURL: strings.TrimRight(params.Config.API.BaseURL, "/"),
		defaultDebug:   params.Config.Env.Debug,
		httpClient: &http.Client{
			Timeout: params.Config.API.Timeout,
		},
		logger: params.Logger,
	}
}

// SetToken installs the bearer credential used by all subsequent requests.
// An empty token clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ClearToken removes the bearer credential.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the currently installed bearer credential, if any.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.token
}

// SetDebugMode toggles request/response logging.
func (c *Client) SetDebugMode(debug bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debug = debug
}

// SetBaseURL points the client at a different API root.
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// ResetConfig restores the base URL and debug flag the client was built with
// and clears the token.
func (c *Client) ResetConfig() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = c.defaultBaseURL
	c.debug = c.defaultDebug
	c.token = ""
}

// OnUnauthorized registers the hook invoked when the API answers 401. The
// client itself takes no corrective action.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// OnRateLimited registers the hook invoked when the API answers 429, with a
// user-displayable message.
func (c *Client) OnRateLimited(fn func(message string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRateLimited = fn
}

// Endpoint resolves a logical endpoint key to its configured path.
func (c *Client) Endpoint(key string) (string, error) {
	c.mu.RLock()
	override, ok := c.endpoints[key]
	c.mu.RUnlock()
	if ok && override != "" {
		return override, nil
	}

	path, ok := defaultEndpoints[key]
	if !ok {
		return "", domainerrors.ErrEndpointNotFound.WrapMessage(key)
	}

	return path, nil
}

// Get issues a GET request and unmarshals the response body into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) (string, error) {
	return c.do(ctx, http.MethodGet, path, query, "", nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) (string, error) {
	reader, err := encodeJSON(body)
	if err != nil {
		return "", err
	}

	return c.do(ctx, http.MethodPost, path, nil, contentTypeJSON, reader, out)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) (string, error) {
	reader, err := encodeJSON(body)
	if err != nil {
		return "", err
	}

	return c.do(ctx, http.MethodPatch, path, nil, contentTypeJSON, reader, out)
}

// Delete issues a DELETE request. Some endpoints (cart revoke) expect a JSON
// body on DELETE; body may be nil.
func (c *Client) Delete(ctx context.Context, path string, body, out any) (string, error) {
	reader, err := encodeJSON(body)
	if err != nil {
		return "", err
	}
	contentType := ""
	if reader != nil {
		contentType = contentTypeJSON
	}

	return c.do(ctx, http.MethodDelete, path, nil, contentType, reader, out)
}

// FileField is one file part of a multipart upload.
type FileField struct {
	Field    string
	Filename string
	Content  io.Reader
}

// PostMultipart issues a POST with a multipart form (product create). The
// Content-Type carries the boundary chosen by the multipart writer.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, files []FileField, out any) (string, error) {
	contentType, reader, err := encodeMultipart(fields, files)
	if err != nil {
		return "", err
	}

	return c.do(ctx, http.MethodPost, path, nil, contentType, reader, out)
}

// PatchMultipart issues a PATCH with a multipart form (product update).
func (c *Client) PatchMultipart(ctx context.Context, path string, fields map[string]string, files []FileField, out any) (string, error) {
	contentType, reader, err := encodeMultipart(fields, files)
	if err != nil {
		return "", err
	}

	return c.do(ctx, http.MethodPatch, path, nil, contentType, reader, out)
}

const contentTypeJSON = "application/json"

func encodeJSON(body any) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return bytes.NewReader(data), nil
}

func encodeMultipart(fields map[string]string, files []FileField) (string, io.Reader, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for field, value := range fields {
		if err := writer.WriteField(field, value); err != nil {
			return "", nil, errors.WithStack(err)
		}
	}
	for _, file := range files {
		part, err := writer.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return "", nil, errors.WithStack(err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return "", nil, errors.WithStack(err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", nil, errors.WithStack(err)
	}

	return writer.FormDataContentType(), &buf, nil
}

// envelope is the slice of the response body common to every endpoint.
type envelope struct {
	Message string                 `json:"message"`
	Errors  domainerrors.ErrorList `json:"errors"`
}

// do issues a single request. On 2xx it unmarshals the whole response body
// into out (stores declare the `data` nesting they expect) and returns the
// envelope message. On error responses it returns a normalized APIError and
// fires the 401/429 hooks.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader, out any) (string, error) {
	c.mu.RLock()
	baseURL := c.baseURL
	token := c.token
	debug := c.debug
	onUnauthorized := c.onUnauthorized
	onRateLimited := c.onRateLimited
	c.mu.RUnlock()

	fullURL := baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return "", errors.WithStack(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-Id", uuid.New().String())

	start := time.Now()
	if debug {
		c.logger.Debug("API request",
			slog.String("method", method),
			slog.String("url", fullURL),
		)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "%s %s failed", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read response body")
	}

	if debug {
		c.logger.Debug("API response",
			slog.String("method", method),
			slog.String("url", fullURL),
			slog.Int("status", resp.StatusCode),
			slog.Duration("elapsed", time.Since(start)),
		)
	}

	var env envelope
	if len(raw) > 0 {
		// Tolerate non-JSON error bodies; the status code still decides.
		_ = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := domainerrors.NewAPIError(resp.StatusCode, env.Errors)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			if onUnauthorized != nil {
				onUnauthorized()
			}
		case http.StatusTooManyRequests:
			if onRateLimited != nil {
				onRateLimited(domainerrors.ErrRateLimited.Message())
			}
		}

		return env.Message, apiErr
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return env.Message, errors.Wrapf(err, "failed to decode %s %s response", method, path)
		}
	}

	return env.Message, nil
}
