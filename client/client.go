package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomrental/landlordauth/api"
	"github.com/roomrental/landlordauth/storage"
)

// Landlord API endpoints.
const (
	pathLogin   = "/landlord/login"
	pathProfile = "/landlord/profile"
	pathLogout  = "/landlord/logout"
)

const (
	// DefaultTimeout bounds each individual request attempt.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 3

	// DefaultRetryBaseDelay is the backoff before the first retry; it
	// doubles on every subsequent attempt.
	DefaultRetryBaseDelay = time.Second

	// DefaultRetryMaxJitter caps the random slack added to each delay.
	DefaultRetryMaxJitter = time.Second

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 1 << 20
)

// Connection pooling shared across all clients in the process.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
	Timeout: DefaultTimeout,
}

// Config configures a Client. BaseURL and Store are required; everything
// else has defaults.
type Config struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client

	// MaxRetries counts retries after the first attempt; 0 selects
	// DefaultMaxRetries and -1 disables retries.
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxJitter time.Duration

	Store  *storage.Store
	Logger *zap.Logger

	// OnRetry fires once per scheduled retry, OnRetryExhausted once per
	// call that fails every attempt. Both are optional; the root manager
	// wires them to its metrics.
	OnRetry          func(op string, attempt int, delay time.Duration)
	OnRetryExhausted func(op string)
}

// Client performs authenticated and unauthenticated calls against the
// landlord backend. It exclusively owns the in-memory bearer token.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	store     *storage.Store
	logger    *zap.Logger

	mu    sync.Mutex
	token string

	maxRetries int
	baseDelay  time.Duration
	maxJitter  time.Duration

	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(max time.Duration) time.Duration

	onRetry          func(op string, attempt int, delay time.Duration)
	onRetryExhausted func(op string)
}

// New validates cfg and builds a Client. The client holds no token until
// Login or InitializeFromStorage provides one.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("client: base URL required")
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("client: invalid base URL %q", cfg.BaseURL)
	}
	if cfg.Store == nil {
		return nil, errors.New("client: storage store required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = sharedHTTPClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	} else if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}
	baseDelay := cfg.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = DefaultRetryBaseDelay
	}
	maxJitter := cfg.RetryMaxJitter
	if maxJitter < 0 {
		maxJitter = 0
	}

	return &Client{
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:        cfg.UserAgent,
		http:             httpClient,
		store:            cfg.Store,
		logger:           logger,
		maxRetries:       maxRetries,
		baseDelay:        baseDelay,
		maxJitter:        maxJitter,
		sleep:            sleepContext,
		jitter:           randomJitter,
		onRetry:          cfg.OnRetry,
		onRetryExhausted: cfg.OnRetryExhausted,
	}, nil
}

// Authenticated reports whether an in-memory token is held.
func (c *Client) Authenticated() bool {
	return c.Token() != ""
}

// Token returns the current in-memory bearer token, or "" when logged out.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// InitializeFromStorage restores the bearer token from the persisted
// session. It never contacts the network; a missing or corrupt record
// reports false and leaves the client logged out.
func (c *Client) InitializeFromStorage(ctx context.Context) bool {
	sess, ok := c.store.AuthSession(ctx)
	if !ok {
		return false
	}
	c.setToken(sess.Token)
	return true
}

// Login authenticates against the backend. On success the token is held in
// memory and both the session and the profile are persisted before the call
// returns. On failure no state is mutated; invalid-credential rejections
// satisfy errors.Is(err, api.ErrInvalidCredentials).
func (c *Client) Login(ctx context.Context, creds api.Credentials) (*api.Session, error) {
	if creds.DeviceName == "" {
		creds.DeviceName = "go-client-" + uuid.NewString()
	}

	var env *api.Envelope
	err := c.withRetry(ctx, "login", func() error {
		var err error
		env, err = c.do(ctx, http.MethodPost, pathLogin, creds, false)
		return err
	})
	if err != nil {
		if api.KindOf(err) == api.KindAuth {
			return nil, invalidCredentials(errorMessage(err))
		}
		return nil, err
	}

	if !env.Success || len(env.Data) == 0 {
		msg := env.Message
		if msg == "" {
			msg = "login failed"
		}
		if (&api.Error{Message: msg}).Kind() == api.KindAuth {
			return nil, invalidCredentials(msg)
		}
		return nil, &api.Error{Status: http.StatusOK, Message: msg}
	}

	var sess api.Session
	if err := json.Unmarshal(env.Data, &sess); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if sess.Token == "" {
		return nil, &api.Error{Status: http.StatusOK, Message: "login response missing token"}
	}

	c.setToken(sess.Token)
	c.store.SetAuthSession(ctx, &sess)
	c.store.SetUserProfile(ctx, &sess.User)

	c.logger.Info("login succeeded", zap.String("email", creds.Email))
	return &sess, nil
}

// GetProfile fetches the live profile. It requires a token and fails fast
// with api.ErrNotAuthenticated otherwise. A 401/403 response clears the
// token and both persisted records (implicit logout) and surfaces
// api.ErrSessionExpired; any other failure leaves stored state untouched so
// callers can fall back to the cached profile.
func (c *Client) GetProfile(ctx context.Context) (*api.User, error) {
	if !c.Authenticated() {
		return nil, api.ErrNotAuthenticated
	}

	var env *api.Envelope
	err := c.withRetry(ctx, "profile", func() error {
		var err error
		env, err = c.do(ctx, http.MethodGet, pathProfile, nil, true)
		return err
	})
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) &&
			(apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
			c.teardown(ctx)
			c.logger.Warn("backend rejected session, local session cleared",
				zap.Int("status", apiErr.Status))
			return nil, fmt.Errorf("%s: %w", apiErr.Message, api.ErrSessionExpired)
		}
		return nil, err
	}

	if !env.Success || len(env.Data) == 0 {
		msg := env.Message
		if msg == "" {
			msg = "profile fetch failed"
		}
		return nil, &api.Error{Status: http.StatusOK, Message: msg}
	}

	var user api.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return nil, fmt.Errorf("decode profile response: %w", err)
	}

	c.store.SetUserProfile(ctx, &user)
	return &user, nil
}

// Logout invalidates the session server-side when a token is held, then
// unconditionally clears the token and both persisted records. Network
// failure during the server call is logged and swallowed: local logout
// always succeeds, and calling Logout twice is harmless.
func (c *Client) Logout(ctx context.Context) {
	if c.Authenticated() {
		err := c.withRetry(ctx, "logout", func() error {
			_, err := c.do(ctx, http.MethodPost, pathLogout, nil, true)
			return err
		})
		if err != nil {
			c.logger.Warn("server-side logout failed, clearing local session anyway",
				zap.Error(err))
		}
	}
	c.teardown(ctx)
}

func (c *Client) teardown(ctx context.Context) {
	c.setToken("")
	c.store.RemoveAuthSession(ctx)
	c.store.RemoveUserProfile(ctx)
}

func (c *Client) do(ctx context.Context, method, path string, body any, authed bool) (*api.Envelope, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.Token())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env api.Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if msg == "" {
			msg = "request failed"
		}
		return nil, &api.Error{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	return &env, nil
}

// invalidCredentials preserves the backend message while keeping the
// sentinel matchable through errors.Is.
func invalidCredentials(msg string) error {
	if msg == "" || strings.EqualFold(msg, api.ErrInvalidCredentials.Error()) {
		return api.ErrInvalidCredentials
	}
	return fmt.Errorf("%s: %w", msg, api.ErrInvalidCredentials)
}

func errorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
