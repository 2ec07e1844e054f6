package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/roomrental/landlordauth/api"
)

func newTestStore(t *testing.T) (*Store, *Memory) {
	t.Helper()

	backend := NewMemory()
	return NewStore(backend, "", nil), backend
}

func testUser() *api.User {
	phone := "+85512345678"
	return &api.User{
		ID:              7,
		Name:            "Sok Dara",
		Email:           "dara@example.com",
		Phone:           &phone,
		Roles:           []string{"landlord"},
		PropertiesCount: 3,
		TenantsCount:    12,
		ActiveContracts: 9,
		TotalRevenue:    45200.50,
		CreatedAt:       "2025-01-15T08:30:00Z",
	}
}

func TestAuthSessionRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, ok := store.AuthSession(ctx); ok {
		t.Fatal("expected no session in empty store")
	}

	sess := &api.Session{User: *testUser(), Token: "tok-abc"}
	store.SetAuthSession(ctx, sess)

	got, ok := store.AuthSession(ctx)
	if !ok {
		t.Fatal("expected session after SetAuthSession")
	}
	if got.Token != "tok-abc" {
		t.Fatalf("token mismatch: %q", got.Token)
	}
	if got.User.Email != sess.User.Email || got.User.TotalRevenue != sess.User.TotalRevenue {
		t.Fatalf("user did not round-trip: %+v", got.User)
	}
	if got.User.Phone == nil || *got.User.Phone != *sess.User.Phone {
		t.Fatal("phone did not round-trip")
	}
}

func TestUserProfileRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.SetUserProfile(ctx, testUser())

	got, ok := store.UserProfile(ctx)
	if !ok {
		t.Fatal("expected profile after SetUserProfile")
	}
	if got.ID != 7 || got.Name != "Sok Dara" {
		t.Fatalf("profile mismatch: %+v", got)
	}

	store.RemoveUserProfile(ctx)
	if _, ok := store.UserProfile(ctx); ok {
		t.Fatal("expected profile removed")
	}
}

func TestCorruptSessionRecordClearedOnRead(t *testing.T) {
	store, backend := newTestStore(t)
	ctx := context.Background()

	if err := backend.Set(ctx, DefaultPrefix+keySession, "{not-json"); err != nil {
		t.Fatalf("seed corrupt record: %v", err)
	}

	if _, ok := store.AuthSession(ctx); ok {
		t.Fatal("corrupt record must read as absent")
	}
	if _, err := backend.Get(ctx, DefaultPrefix+keySession); !errors.Is(err, ErrNotFound) {
		t.Fatalf("corrupt record must be cleared, got err=%v", err)
	}
}

func TestSessionWithoutTokenCleared(t *testing.T) {
	store, backend := newTestStore(t)
	ctx := context.Background()

	if err := backend.Set(ctx, DefaultPrefix+keySession, `{"user":{"id":1},"token":""}`); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	if _, ok := store.AuthSession(ctx); ok {
		t.Fatal("tokenless record must read as absent")
	}
}

func TestLanguageAndThemeValidation(t *testing.T) {
	store, backend := newTestStore(t)
	ctx := context.Background()

	store.SetLanguage(ctx, LanguageKhmer)
	if lang, ok := store.Language(ctx); !ok || lang != LanguageKhmer {
		t.Fatalf("expected km, got %q ok=%v", lang, ok)
	}

	store.SetLanguage(ctx, Language("fr"))
	if lang, _ := store.Language(ctx); lang != LanguageKhmer {
		t.Fatalf("invalid language must not overwrite, got %q", lang)
	}

	// An unknown value persisted by an older build reads as absent.
	if err := backend.Set(ctx, DefaultPrefix+keyTheme, "sepia"); err != nil {
		t.Fatalf("seed theme: %v", err)
	}
	if _, ok := store.Theme(ctx); ok {
		t.Fatal("unknown theme must read as absent")
	}

	store.SetTheme(ctx, ThemeDark)
	if theme, ok := store.Theme(ctx); !ok || theme != ThemeDark {
		t.Fatalf("expected dark, got %q ok=%v", theme, ok)
	}
}

func TestClearAllPreservesPreferences(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.SetLanguage(ctx, LanguageEnglish)
	store.SetTheme(ctx, ThemeSystem)
	store.SetAuthSession(ctx, &api.Session{User: *testUser(), Token: "tok"})
	store.SetUserProfile(ctx, testUser())

	store.ClearAll(ctx)

	if _, ok := store.AuthSession(ctx); ok {
		t.Fatal("session must be cleared")
	}
	if _, ok := store.UserProfile(ctx); ok {
		t.Fatal("profile must be cleared")
	}
	if _, ok := store.Language(ctx); !ok {
		t.Fatal("language must survive ClearAll")
	}
	if _, ok := store.Theme(ctx); !ok {
		t.Fatal("theme must survive ClearAll")
	}
}

type failingBackend struct {
	err error
}

func (f failingBackend) Get(context.Context, string) (string, error) { return "", f.err }
func (f failingBackend) Set(context.Context, string, string) error   { return f.err }
func (f failingBackend) Delete(context.Context, string) error        { return f.err }

func TestBackendFailuresAbsorbed(t *testing.T) {
	store := NewStore(failingBackend{err: errors.New("disk on fire")}, "", nil)
	ctx := context.Background()

	// None of these may panic or surface the backend error.
	store.SetAuthSession(ctx, &api.Session{User: *testUser(), Token: "tok"})
	if _, ok := store.AuthSession(ctx); ok {
		t.Fatal("read failure must report absence")
	}
	store.SetUserProfile(ctx, testUser())
	if _, ok := store.UserProfile(ctx); ok {
		t.Fatal("read failure must report absence")
	}
	store.ClearAll(ctx)
}
