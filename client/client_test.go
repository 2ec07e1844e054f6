package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/roomrental/landlordauth/api"
	"github.com/roomrental/landlordauth/storage"
)

func testSessionPayload() string {
	return `{
		"success": true,
		"message": "Login successful",
		"data": {
			"user": {
				"id": 7,
				"name": "Sok Dara",
				"email": "dara@example.com",
				"roles": ["landlord"],
				"properties_count": 3,
				"tenants_count": 12,
				"active_contracts": 9,
				"total_revenue": 45200.5,
				"created_at": "2025-01-15T08:30:00Z"
			},
			"token": "tok-abc"
		}
	}`
}

func testProfilePayload() string {
	return `{
		"success": true,
		"message": "",
		"data": {
			"id": 7,
			"name": "Sok Dara",
			"email": "dara@example.com",
			"roles": ["landlord"],
			"properties_count": 4,
			"tenants_count": 12,
			"active_contracts": 10,
			"total_revenue": 47100.0,
			"created_at": "2025-01-15T08:30:00Z"
		}
	}`
}

// newTestClient builds a client against url with immediate, deterministic
// retries: the injected sleep records each delay instead of waiting and
// jitter is pinned to zero.
func newTestClient(t *testing.T, url string, maxRetries int) (*Client, *storage.Store, *[]time.Duration) {
	t.Helper()

	store := storage.NewStore(storage.NewMemory(), "", nil)
	c, err := New(Config{
		BaseURL:    url,
		Store:      store,
		MaxRetries: maxRetries,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	delays := &[]time.Duration{}
	c.sleep = func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	c.jitter = func(time.Duration) time.Duration { return 0 }
	return c, store, delays
}

func TestLoginSuccessPersistsBeforeReturn(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/landlord/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")

		var creds api.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Errorf("decode credentials: %v", err)
		}
		if creds.Email != "dara@example.com" || creds.Password != "secret" {
			t.Errorf("credentials not forwarded: %+v", creds)
		}
		if creds.DeviceName == "" {
			t.Error("device name must be defaulted when empty")
		}
		fmt.Fprint(w, testSessionPayload())
	}))
	defer srv.Close()

	c, store, _ := newTestClient(t, srv.URL, DefaultMaxRetries)

	sess, err := c.Login(context.Background(), api.Credentials{
		Email:    "dara@example.com",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("login must not carry a bearer token, got %q", gotAuth)
	}
	if sess.Token != "tok-abc" || sess.User.ID != 7 {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if !c.Authenticated() || c.Token() != "tok-abc" {
		t.Fatal("token must be held after login")
	}

	stored, ok := store.AuthSession(context.Background())
	if !ok || stored.Token != "tok-abc" {
		t.Fatal("session must be persisted before Login returns")
	}
	if _, ok := store.UserProfile(context.Background()); !ok {
		t.Fatal("profile must be persisted before Login returns")
	}
}

func TestLoginRejectionIsInvalidCredentials(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"success":false,"message":"Invalid credentials"}`)
	}))
	defer srv.Close()

	c, store, _ := newTestClient(t, srv.URL, DefaultMaxRetries)

	_, err := c.Login(context.Background(), api.Credentials{Email: "a@b.c", Password: "wrong"})
	if !errors.Is(err, api.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
	if n := attempts.Load(); n != 1 {
		t.Fatalf("credential rejection must not be retried, got %d attempts", n)
	}
	if c.Authenticated() {
		t.Fatal("no token may be held after a rejected login")
	}
	if _, ok := store.AuthSession(context.Background()); ok {
		t.Fatal("nothing may be persisted after a rejected login")
	}
}

func TestLoginEnvelopeFailureOnSuccessStatus(t *testing.T) {
	var attempts atomic.Int64
	message := "Invalid credentials provided."
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		fmt.Fprintf(w, `{"success":false,"message":%q}`, message)
	}))
	defer srv.Close()

	c, _, _ := newTestClient(t, srv.URL, DefaultMaxRetries)

	_, err := c.Login(context.Background(), api.Credentials{Email: "a@b.c", Password: "w"})
	if !errors.Is(err, api.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
	// The backend's own wording stays visible to callers.
	if got := err.Error(); got != message+": "+api.ErrInvalidCredentials.Error() {
		t.Fatalf("backend message lost: %q", got)
	}
	if n := attempts.Load(); n != 1 {
		t.Fatalf("envelope rejection on HTTP 200 must not be retried, got %d attempts", n)
	}

	// A non-credential envelope failure surfaces as a plain request error.
	message = "Service briefly unavailable"
	_, err = c.Login(context.Background(), api.Credentials{Email: "a@b.c", Password: "w"})
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Message != message {
		t.Fatalf("want *api.Error with backend message, got %v", err)
	}
}

func TestLoginResponseMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"message":"ok","data":{"user":{"id":1},"token":""}}`)
	}))
	defer srv.Close()

	c, _, _ := newTestClient(t, srv.URL, DefaultMaxRetries)

	if _, err := c.Login(context.Background(), api.Credentials{Email: "a@b.c", Password: "p"}); err == nil {
		t.Fatal("tokenless login response must fail")
	}
	if c.Authenticated() {
		t.Fatal("no token may be held")
	}
}

func TestGetProfileRequiresToken(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c, _, _ := newTestClient(t, srv.URL, DefaultMaxRetries)

	if _, err := c.GetProfile(context.Background()); !errors.Is(err, api.ErrNotAuthenticated) {
		t.Fatalf("want ErrNotAuthenticated, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatal("unauthenticated profile fetch must not touch the network")
	}
}

func TestGetProfileImplicitLogout(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"success":false,"message":"Unauthenticated."}`)
	}))
	defer srv.Close()

	c, store, _ := newTestClient(t, srv.URL, DefaultMaxRetries)
	ctx := context.Background()

	store.SetAuthSession(ctx, &api.Session{User: api.User{ID: 7}, Token: "stale"})
	store.SetUserProfile(ctx, &api.User{ID: 7})
	if !c.InitializeFromStorage(ctx) {
		t.Fatal("restore should succeed")
	}

	_, err := c.GetProfile(ctx)
	if !errors.Is(err, api.ErrSessionExpired) {
		t.Fatalf("want ErrSessionExpired, got %v", err)
	}
	if n := attempts.Load(); n != 1 {
		t.Fatalf("rejected session must not be retried, got %d attempts", n)
	}
	if c.Authenticated() {
		t.Fatal("token must be dropped on implicit logout")
	}
	if _, ok := store.AuthSession(ctx); ok {
		t.Fatal("session record must be cleared on implicit logout")
	}
	if _, ok := store.UserProfile(ctx); ok {
		t.Fatal("profile record must be cleared on implicit logout")
	}
}

func TestGetProfileTransientFailureKeepsLocalState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, store, _ := newTestClient(t, srv.URL, -1)
	ctx := context.Background()

	store.SetAuthSession(ctx, &api.Session{User: api.User{ID: 7}, Token: "tok"})
	store.SetUserProfile(ctx, &api.User{ID: 7, Name: "cached"})
	c.InitializeFromStorage(ctx)

	if _, err := c.GetProfile(ctx); err == nil {
		t.Fatal("expected failure")
	}
	if !c.Authenticated() {
		t.Fatal("transient failure must not drop the token")
	}
	if _, ok := store.UserProfile(ctx); !ok {
		t.Fatal("transient failure must leave the cached profile in place")
	}
}

func TestGetProfileRefreshesCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("missing bearer token, got %q", got)
		}
		fmt.Fprint(w, testProfilePayload())
	}))
	defer srv.Close()

	c, store, _ := newTestClient(t, srv.URL, DefaultMaxRetries)
	ctx := context.Background()

	store.SetAuthSession(ctx, &api.Session{User: api.User{ID: 7}, Token: "tok"})
	c.InitializeFromStorage(ctx)

	user, err := c.GetProfile(ctx)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if user.PropertiesCount != 4 {
		t.Fatalf("live profile not decoded: %+v", user)
	}

	cached, ok := store.UserProfile(ctx)
	if !ok || cached.PropertiesCount != 4 {
		t.Fatal("live profile must overwrite the cache")
	}
}

func TestLogoutClearsLocalStateDespiteServerFailure(t *testing.T) {
	var logoutHits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logoutHits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, store, _ := newTestClient(t, srv.URL, -1)
	ctx := context.Background()

	store.SetAuthSession(ctx, &api.Session{User: api.User{ID: 7}, Token: "tok"})
	c.InitializeFromStorage(ctx)

	c.Logout(ctx)
	if c.Authenticated() {
		t.Fatal("logout must always clear the token")
	}
	if _, ok := store.AuthSession(ctx); ok {
		t.Fatal("logout must always clear the session record")
	}

	// Second logout has no token, so the server is not contacted again.
	before := logoutHits.Load()
	c.Logout(ctx)
	if logoutHits.Load() != before {
		t.Fatal("logout without a token must skip the server call")
	}
}

func TestInitializeFromStorage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c, store, _ := newTestClient(t, srv.URL, DefaultMaxRetries)
	ctx := context.Background()

	if c.InitializeFromStorage(ctx) {
		t.Fatal("restore from empty storage must report false")
	}
	if c.Authenticated() {
		t.Fatal("no token may be held after a failed restore")
	}

	store.SetAuthSession(ctx, &api.Session{User: api.User{ID: 7}, Token: "tok"})
	if !c.InitializeFromStorage(ctx) {
		t.Fatal("restore should succeed")
	}
	if c.Token() != "tok" {
		t.Fatalf("restored token mismatch: %q", c.Token())
	}
}

func TestNewValidation(t *testing.T) {
	store := storage.NewStore(storage.NewMemory(), "", nil)

	if _, err := New(Config{Store: store}); err == nil {
		t.Fatal("empty base URL must be rejected")
	}
	if _, err := New(Config{BaseURL: "not a url", Store: store}); err == nil {
		t.Fatal("unparseable base URL must be rejected")
	}
	if _, err := New(Config{BaseURL: "example.com/api"}); err == nil {
		t.Fatal("scheme-less base URL must be rejected")
	}
	if _, err := New(Config{BaseURL: "https://example.com/api"}); err == nil {
		t.Fatal("missing store must be rejected")
	}
	if _, err := New(Config{BaseURL: "https://example.com/api", Store: store}); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
