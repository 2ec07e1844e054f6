package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotAuthenticated is returned by authenticated operations invoked while
// no token is held. It fails fast: no network call, no retry.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrInvalidCredentials is returned when the backend rejects a login. It is
// never retried and callers may present it with a differentiated message.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrSessionExpired is returned when an authenticated request comes back
// 401/403; the client has already torn the local session down (implicit
// logout) by the time callers observe it.
var ErrSessionExpired = errors.New("session expired")

// Kind classifies a request failure for retry decisions.
type Kind uint8

const (
	// KindAuth covers 401 responses and credential failures. Never retried;
	// encountered mid-session it triggers local session teardown.
	KindAuth Kind = iota
	// KindClient covers structural 4xx failures (except 408/429) that will
	// not succeed on retry.
	KindClient
	// KindTransient covers transport failures, 5xx, 408, and 429. Retried
	// with exponential backoff up to the configured limit.
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindClient:
		return "client"
	default:
		return "transient"
	}
}

// Error is a structured request failure. Status 0 means the request never
// produced an HTTP response (transport failure); otherwise Status carries
// the HTTP status code and Message the backend's envelope message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// Kind maps the failure onto the retry taxonomy.
func (e *Error) Kind() Kind {
	switch {
	case e.Status == http.StatusUnauthorized:
		return KindAuth
	case authFlavored(e.Message):
		return KindAuth
	case e.Status == http.StatusRequestTimeout, e.Status == http.StatusTooManyRequests:
		return KindTransient
	case e.Status >= 500 || e.Status == 0:
		return KindTransient
	case e.Status >= 400:
		return KindClient
	}
	return KindClient
}

// KindOf classifies any error the client can produce. Errors that are not
// an *Error (raw transport failures, context cancellation) default to
// transient unless their message indicates an authentication failure.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind()
	}
	if errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrSessionExpired) {
		return KindAuth
	}
	if err != nil && authFlavored(err.Error()) {
		return KindAuth
	}
	return KindTransient
}

func authFlavored(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "authentication") || strings.Contains(m, "invalid credentials")
}
