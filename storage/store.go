package storage

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/roomrental/landlordauth/api"
)

// DefaultPrefix namespaces every key written by the Store.
const DefaultPrefix = "landlord:"

const (
	keyLanguage = "language_preference"
	keyTheme    = "theme_preference"
	keySession  = "auth_session"
	keyProfile  = "user_profile"
)

// Store is the typed persistence surface for the session core. Every
// operation is best-effort: backend failures are logged and absorbed here,
// never surfaced to callers.
type Store struct {
	backend Backend
	prefix  string
	logger  *zap.Logger
}

// NewStore wraps backend with the typed surface. A nil logger disables
// logging; an empty prefix falls back to DefaultPrefix.
func NewStore(backend Backend, prefix string, logger *zap.Logger) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend: backend,
		prefix:  prefix,
		logger:  logger,
	}
}

func (s *Store) get(ctx context.Context, name string) (string, bool) {
	value, err := s.backend.Get(ctx, s.prefix+name)
	if err != nil {
		if err != ErrNotFound {
			s.logger.Warn("storage read failed",
				zap.String("key", name),
				zap.Error(err))
		}
		return "", false
	}
	return value, true
}

func (s *Store) set(ctx context.Context, name, value string) {
	if err := s.backend.Set(ctx, s.prefix+name, value); err != nil {
		s.logger.Warn("storage write failed",
			zap.String("key", name),
			zap.Error(err))
	}
}

func (s *Store) remove(ctx context.Context, name string) {
	if err := s.backend.Delete(ctx, s.prefix+name); err != nil && err != ErrNotFound {
		s.logger.Warn("storage delete failed",
			zap.String("key", name),
			zap.Error(err))
	}
}

// Language returns the persisted language preference. Unknown or unreadable
// values count as absent.
func (s *Store) Language(ctx context.Context) (Language, bool) {
	raw, ok := s.get(ctx, keyLanguage)
	if !ok {
		return "", false
	}
	lang := Language(raw)
	if !lang.Valid() {
		s.logger.Warn("discarding unknown language preference", zap.String("value", raw))
		return "", false
	}
	return lang, true
}

// SetLanguage persists the language preference. Invalid values are dropped.
func (s *Store) SetLanguage(ctx context.Context, lang Language) {
	if !lang.Valid() {
		s.logger.Warn("refusing to persist unknown language", zap.String("value", string(lang)))
		return
	}
	s.set(ctx, keyLanguage, string(lang))
}

// RemoveLanguage deletes the language preference.
func (s *Store) RemoveLanguage(ctx context.Context) {
	s.remove(ctx, keyLanguage)
}

// Theme returns the persisted theme preference. Unknown or unreadable
// values count as absent.
func (s *Store) Theme(ctx context.Context) (ThemeMode, bool) {
	raw, ok := s.get(ctx, keyTheme)
	if !ok {
		return "", false
	}
	theme := ThemeMode(raw)
	if !theme.Valid() {
		s.logger.Warn("discarding unknown theme preference", zap.String("value", raw))
		return "", false
	}
	return theme, true
}

// SetTheme persists the theme preference. Invalid values are dropped.
func (s *Store) SetTheme(ctx context.Context, theme ThemeMode) {
	if !theme.Valid() {
		s.logger.Warn("refusing to persist unknown theme", zap.String("value", string(theme)))
		return
	}
	s.set(ctx, keyTheme, string(theme))
}

// RemoveTheme deletes the theme preference.
func (s *Store) RemoveTheme(ctx context.Context) {
	s.remove(ctx, keyTheme)
}

// AuthSession returns the persisted session, if any. A corrupt record is
// cleared and reported as absent so a bad blob cannot wedge cold start.
func (s *Store) AuthSession(ctx context.Context) (*api.Session, bool) {
	raw, ok := s.get(ctx, keySession)
	if !ok {
		return nil, false
	}
	var sess api.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		s.logger.Warn("clearing corrupt auth session record", zap.Error(err))
		s.remove(ctx, keySession)
		return nil, false
	}
	if sess.Token == "" {
		s.logger.Warn("clearing auth session record without token")
		s.remove(ctx, keySession)
		return nil, false
	}
	return &sess, true
}

// SetAuthSession persists the session as JSON.
func (s *Store) SetAuthSession(ctx context.Context, sess *api.Session) {
	if sess == nil {
		return
	}
	data, err := json.Marshal(sess)
	if err != nil {
		s.logger.Warn("encoding auth session failed", zap.Error(err))
		return
	}
	s.set(ctx, keySession, string(data))
}

// RemoveAuthSession deletes the persisted session.
func (s *Store) RemoveAuthSession(ctx context.Context) {
	s.remove(ctx, keySession)
}

// UserProfile returns the cached profile, if any. A corrupt record is
// cleared and reported as absent.
func (s *Store) UserProfile(ctx context.Context) (*api.User, bool) {
	raw, ok := s.get(ctx, keyProfile)
	if !ok {
		return nil, false
	}
	var user api.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("clearing corrupt user profile record", zap.Error(err))
		s.remove(ctx, keyProfile)
		return nil, false
	}
	return &user, true
}

// SetUserProfile caches the profile as JSON.
func (s *Store) SetUserProfile(ctx context.Context, user *api.User) {
	if user == nil {
		return
	}
	data, err := json.Marshal(user)
	if err != nil {
		s.logger.Warn("encoding user profile failed", zap.Error(err))
		return
	}
	s.set(ctx, keyProfile, string(data))
}

// RemoveUserProfile deletes the cached profile.
func (s *Store) RemoveUserProfile(ctx context.Context) {
	s.remove(ctx, keyProfile)
}

// ClearAll removes the auth session and cached profile. Language and theme
// survive: they belong to the device, not the identity.
func (s *Store) ClearAll(ctx context.Context) {
	s.remove(ctx, keySession)
	s.remove(ctx, keyProfile)
}
