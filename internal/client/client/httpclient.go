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
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/scanpilot/internal/client/models"
	"github.com/dmitrijs2005/scanpilot/internal/common"
	"github.com/dmitrijs2005/scanpilot/internal/logging"
)

const (
	// RequestIDHeader carries a per-request id for correlating client and
	// server logs.
	RequestIDHeader = "X-Request-ID"

	authPathPrefix = "/api/auth/"
	maxBodyBytes   = 16 << 20

	defaultFailureMessage = "Request failed"
)

type HTTPClient struct {
	baseURL        string
	http           *http.Client
	store          TokenStore
	limiter        *rate.Limiter
	log            logging.Logger
	onUnauthorized func(ctx context.Context)
	newRequestID   func() string
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client (timeouts, transport).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithRequestTimeout bounds every single request. Zero keeps no limit.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.http.Timeout = d }
}

// WithRateLimit throttles outbound calls to rps per second with the given
// burst. rps <= 0 disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// WithUnauthorizedHandler registers the callback fired whenever the session
// is gone: no valid token for a protected call, or a 401 from the server.
// It may be called from any goroutine.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *HTTPClient) { c.onUnauthorized = fn }
}

func NewHTTPClient(baseURL string, store TokenStore, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         &http.Client{},
		store:        store,
		log:          logging.Discard(),
		newRequestID: uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	if err := c.store.Logout(ctx); err != nil {
		return nil, fmt.Errorf("clear session: %w", err)
	}

	var u models.User
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login drops any existing session before the call so an old token can
// never be mixed with a new one, then stores the returned token.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	if err := c.store.Logout(ctx); err != nil {
		return nil, fmt.Errorf("clear session: %w", err)
	}

	var tr models.TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", models.LoginRequest{Email: email, Password: password}, &tr)
	if err != nil {
		var re *RequestError
		if errors.As(err, &re) && re.Status >= 400 && re.Status < 500 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, re.Message)
		}
		return nil, err
	}

	if tr.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access token received", ErrRequestFailed)
	}
	if err := c.store.SetToken(ctx, tr.AccessToken); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}
	return &tr, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.store.Logout(ctx)
}

func (c *HTTPClient) GetProfile(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/profile", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	if req.Password != "" {
		if err := validatePassword(req.Password); err != nil {
			return nil, err
		}
	}

	var u models.User
	if err := c.doJSON(ctx, http.MethodPut, "/api/users/profile", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UploadFile sends content as the "file" part of a multipart form.
func (c *HTTPClient) UploadFile(ctx context.Context, filename string, content io.Reader) (*models.Upload, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}

	var u models.Upload
	if err := c.do(ctx, http.MethodPost, "/api/uploads/", &buf, mw.FormDataContentType(), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) ListUploads(ctx context.Context) ([]models.Upload, error) {
	var out []models.Upload
	if err := c.doJSON(ctx, http.MethodGet, "/api/uploads/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetUpload(ctx context.Context, id string) (*models.Upload, error) {
	var u models.Upload
	if err := c.doJSON(ctx, http.MethodGet, "/api/uploads/"+url.PathEscape(id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) ProcessUpload(ctx context.Context, req models.ProcessFileRequest) (*models.FileProcessingResponse, error) {
	var out models.FileProcessingResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/uploads/process", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteUpload(ctx context.Context, id string) error {
	var out models.MessageResponse
	return c.doJSON(ctx, http.MethodDelete, "/api/uploads/"+url.PathEscape(id), nil, &out)
}

func (c *HTTPClient) ProcessDocument(ctx context.Context, req models.ProcessRequest) (*models.AnalysisResult, error) {
	if strings.TrimSpace(req.Text) == "" && req.UploadID == "" {
		return nil, fmt.Errorf("%w: text or upload id is required", ErrValidation)
	}

	var out models.AnalysisResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/results/process", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListResults(ctx context.Context) ([]models.AnalysisResult, error) {
	var out []models.AnalysisResult
	if err := c.doJSON(ctx, http.MethodGet, "/api/results/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetResult(ctx context.Context, id string) (*models.AnalysisResult, error) {
	var out models.AnalysisResult
	if err := c.doJSON(ctx, http.MethodGet, "/api/results/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	if in == nil {
		return c.do(ctx, method, endpoint, nil, "", out)
	}
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, method, endpoint, bytes.NewReader(b), "application/json", out)
}

// do is the single request path: token check, limiter, send, map errors,
// decode.
func (c *HTTPClient) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string, out any) error {
	protected := !strings.HasPrefix(endpoint, authPathPrefix)

	// a finished ctx is the caller leaving, not a lost session
	if err := ctx.Err(); err != nil {
		return err
	}

	token, ok, err := c.store.GetValidToken(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn(ctx, "reading session failed", "path", endpoint, "error", err)
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	if protected && !ok {
		c.unauthorized(ctx)
		return ErrUnauthenticated
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrNetwork, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	reqID := c.newRequestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if protected {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.log.With("request_id", reqID, "method", method, "path", endpoint)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn(ctx, "request failed", "error", err)
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	log.Debug(ctx, "request done", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized && protected {
		if err := c.store.Logout(ctx); err != nil {
			log.Warn(ctx, "clearing session failed", "error", err)
		}
		log.Info(ctx, "server rejected session")
		c.unauthorized(ctx)
		return ErrUnauthorized
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestError{Status: resp.StatusCode, Message: serverMessage(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrRequestFailed, err)
	}
	return nil
}

func (c *HTTPClient) unauthorized(ctx context.Context) {
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
}

// serverMessage extracts the backend's "detail" field: either a plain
// string or a list of validation errors with "msg" entries.
func serverMessage(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return defaultFailureMessage
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil && s != "" {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
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

	return defaultFailureMessage
}

func validatePassword(p string) error {
	if utf8.RuneCountInString(p) < common.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, common.MinPasswordLength)
	}
	return nil
}
