package landlordauth

import (
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/roomrental/landlordauth/client"
	"github.com/roomrental/landlordauth/storage"
)

// Builder assembles a Manager. Construction is allocation-only until Build;
// no I/O happens before the first Manager operation.
type Builder struct {
	config     Config
	httpClient *http.Client
	backend    storage.Backend
	logger     *zap.Logger
	auditSink  AuditSink

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithBaseURL overrides the backend location.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.API.BaseURL = baseURL
	return b
}

// WithHTTPClient supplies a custom HTTP client; when set, API.Timeout is
// ignored in favor of the client's own timeout.
func (b *Builder) WithHTTPClient(hc *http.Client) *Builder {
	b.httpClient = hc
	return b
}

// WithBackend supplies the persistence backend. Without one, state lives in
// memory only and does not survive the process.
func (b *Builder) WithBackend(backend storage.Backend) *Builder {
	b.backend = backend
	return b
}

// WithRedis persists sessions through an existing Redis client.
func (b *Builder) WithRedis(rdb redis.UniversalClient) *Builder {
	b.backend = storage.NewRedis(rdb)
	return b
}

// WithFile persists sessions in a JSON document at path, the closest
// equivalent to the mobile app's device storage.
func (b *Builder) WithFile(path string) *Builder {
	b.backend = storage.NewFile(path)
	return b
}

// WithLogger sets the structured logger shared by every component.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink receives auth lifecycle events when audit is enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles counter metrics.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the login latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the Manager together. A
// Builder can be used once.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	backend := b.backend
	if backend == nil {
		backend = storage.NewMemory()
	}
	store := storage.NewStore(backend, cfg.Storage.Prefix, logger)

	metrics := NewMetrics(cfg.Metrics)

	httpClient := b.httpClient
	if httpClient == nil && cfg.API.Timeout > 0 && cfg.API.Timeout != client.DefaultTimeout {
		httpClient = &http.Client{Timeout: cfg.API.Timeout}
	}

	cl, err := client.New(client.Config{
		BaseURL:        cfg.API.BaseURL,
		UserAgent:      cfg.API.UserAgent,
		HTTPClient:     httpClient,
		MaxRetries:     cfg.Retry.MaxRetries,
		RetryBaseDelay: cfg.Retry.BaseDelay,
		RetryMaxJitter: cfg.Retry.MaxJitter,
		Store:          store,
		Logger:         logger,
		OnRetry: func(_ string, _ int, _ time.Duration) {
			metrics.Inc(MetricRetryAttempt)
		},
		OnRetryExhausted: func(_ string) {
			metrics.Inc(MetricRetryExhausted)
		},
	})
	if err != nil {
		return nil, err
	}

	return &Manager{
		config:  cfg,
		client:  cl,
		store:   store,
		logger:  logger,
		metrics: metrics,
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		loading: true,
	}, nil
}
