package landlordauth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/roomrental/landlordauth/api"
	"github.com/roomrental/landlordauth/client"
	"github.com/roomrental/landlordauth/storage"
)

// State is the UI-observable auth state snapshot.
//
// Authenticated is true only after a successful login or session
// restoration. Loading is true from construction until Initialize
// completes, and never again afterwards; login and logout progress is the
// caller's concern. User may be non-nil while stale: a profile without a
// live confirmation is trusted for display only, never for authorization
// decisions.
type State struct {
	Authenticated bool
	User          *api.User
	Loading       bool
}

// Manager is the process-wide source of truth for auth state. It
// orchestrates cold-start restoration and exposes Login, Logout, and
// RefreshUser to the presentation layer.
//
// Each exposed operation is one unit of work; the manager does not queue or
// serialize overlapping calls. State is internally locked so snapshots are
// safe from any goroutine.
type Manager struct {
	config  Config
	client  *client.Client
	store   *storage.Store
	logger  *zap.Logger
	metrics *Metrics
	audit   *auditDispatcher

	mu            sync.Mutex
	authenticated bool
	user          *api.User
	loading       bool
}

// State returns a snapshot of the current auth state. The User copy is the
// caller's to keep.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := State{
		Authenticated: m.authenticated,
		Loading:       m.loading,
	}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	return s
}

// Client exposes the underlying session client, mainly for advanced
// integrations that need the raw token.
func (m *Manager) Client() *client.Client {
	return m.client
}

// Store exposes the persistence layer, which also holds the language and
// theme preferences.
func (m *Manager) Store() *storage.Store {
	return m.store
}

// Initialize performs cold-start restoration: restore the persisted
// session, surface the cached profile immediately, then attempt a live
// refresh. A live-refresh failure does not revert the restored state;
// stale-but-authenticated is accepted and reconciled lazily. Without a
// usable persisted session the store is wiped (preferences survive) and
// the manager settles into the unauthenticated state.
//
// Loading is true exactly until Initialize returns.
func (m *Manager) Initialize(ctx context.Context) {
	m.mu.Lock()
	m.loading = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}()

	if !m.client.InitializeFromStorage(ctx) {
		m.store.ClearAll(ctx)
		m.setUnauthenticated()
		m.metricInc(MetricSessionRestoreMiss)
		m.emit(ctx, AuditEvent{EventType: EventSessionRestore, Success: false})
		m.logger.Info("no persisted session, starting unauthenticated")
		return
	}

	m.mu.Lock()
	m.authenticated = true
	m.mu.Unlock()
	m.metricInc(MetricSessionRestored)
	m.emit(ctx, AuditEvent{EventType: EventSessionRestore, Success: true})
	m.logger.Info("session restored from storage")

	// Cached profile first: the UI gets something to show even when the
	// refresh below loses the race against a dead network.
	if cached, ok := m.store.UserProfile(ctx); ok {
		m.setUser(cached)
	}

	m.refreshProfile(ctx)
}

// Login authenticates and, on success, flips the state to authenticated
// with the returned user. A post-login profile refresh keeps the displayed
// record current; its failure never undoes the successful login. A nil
// error means success; rejected credentials satisfy
// errors.Is(err, ErrInvalidCredentials).
func (m *Manager) Login(ctx context.Context, creds api.Credentials) error {
	start := time.Now()
	sess, err := m.client.Login(ctx, creds)
	m.metricObserve(MetricLoginLatency, time.Since(start))

	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			m.metricInc(MetricLoginInvalidCredentials)
		} else {
			m.metricInc(MetricLoginFailure)
		}
		m.emit(ctx, AuditEvent{
			EventType: EventLogin,
			Email:     creds.Email,
			Success:   false,
			Error:     err.Error(),
		})
		return err
	}

	m.metricInc(MetricLoginSuccess)
	m.mu.Lock()
	m.authenticated = true
	u := sess.User
	m.user = &u
	m.mu.Unlock()
	m.emit(ctx, AuditEvent{
		EventType: EventLogin,
		Email:     creds.Email,
		UserID:    strconv.Itoa(sess.User.ID),
		Success:   true,
	})

	m.refreshProfile(ctx)
	return nil
}

// Logout tears the session down. The transition to unauthenticated happens
// regardless of whether the server-side invalidation call succeeds.
func (m *Manager) Logout(ctx context.Context) {
	userID := ""
	m.mu.Lock()
	if m.user != nil {
		userID = strconv.Itoa(m.user.ID)
	}
	m.mu.Unlock()

	m.client.Logout(ctx)
	m.setUnauthenticated()
	m.metricInc(MetricLogout)
	m.emit(ctx, AuditEvent{EventType: EventLogout, UserID: userID, Success: true})
}

// RefreshUser fetches the live profile, falling back to the cached copy on
// failure. Only the total absence of both leaves User nil. When the
// backend rejects the token the manager reflects the implicit logout into
// the observable state immediately.
func (m *Manager) RefreshUser(ctx context.Context) {
	m.refreshProfile(ctx)
}

// Close flushes and stops the audit dispatcher. The manager must not be
// used afterwards.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	m.audit.Close()
}

// MetricsSnapshot copies the current counters for the exporters under
// metrics/export.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.Snapshot()
}

// AuditDropped reports events lost to dispatcher backpressure.
func (m *Manager) AuditDropped() uint64 {
	if m == nil {
		return 0
	}
	return m.audit.Dropped()
}

func (m *Manager) refreshProfile(ctx context.Context) {
	user, err := m.client.GetProfile(ctx)
	if err == nil {
		m.metricInc(MetricProfileRefreshSuccess)
		m.setUser(user)
		return
	}

	m.metricInc(MetricProfileRefreshFailure)
	m.logger.Warn("profile refresh failed", zap.Error(err))

	if errors.Is(err, ErrSessionExpired) {
		// The client has already cleared the token and both persisted
		// records; flip the observable state to match rather than leaving
		// a stale authenticated flag until the next check.
		m.setUnauthenticated()
		m.metricInc(MetricImplicitLogout)
		m.emit(ctx, AuditEvent{
			EventType: EventImplicitLogout,
			Success:   true,
			Error:     err.Error(),
		})
		return
	}

	if cached, ok := m.store.UserProfile(ctx); ok {
		m.setUser(cached)
	}
}

func (m *Manager) setUser(user *api.User) {
	m.mu.Lock()
	m.user = user
	m.mu.Unlock()
}

func (m *Manager) setUnauthenticated() {
	m.mu.Lock()
	m.authenticated = false
	m.user = nil
	m.mu.Unlock()
}

func (m *Manager) metricInc(id MetricID) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.Inc(id)
}

func (m *Manager) metricObserve(id MetricID, d time.Duration) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.Observe(id, d)
}

func (m *Manager) emit(ctx context.Context, event AuditEvent) {
	if m == nil || m.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	m.audit.Emit(ctx, event)
}
