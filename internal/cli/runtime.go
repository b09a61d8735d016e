package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/sketchtrail"
	"github.com/aretw0/sketchtrail/internal/adapters/file"
	"github.com/aretw0/sketchtrail/internal/config"
	"github.com/aretw0/sketchtrail/internal/logging"
	"github.com/aretw0/sketchtrail/pkg/adapters/memory"
	"github.com/aretw0/sketchtrail/pkg/adapters/redis"
	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/aretw0/sketchtrail/pkg/observability"
	"github.com/aretw0/sketchtrail/pkg/persistence/middleware"
	"github.com/aretw0/sketchtrail/pkg/ports"
	"github.com/aretw0/sketchtrail/pkg/provenance"
	"github.com/aretw0/sketchtrail/pkg/session"
	"github.com/aretw0/sketchtrail/pkg/sketch"
)

// Runtime bundles everything a command needs to serve sessions.
type Runtime struct {
	Config  config.Config
	Logger  *slog.Logger
	Service *sketchtrail.Service
	Metrics *observability.Metrics
	// Gatherer exposes Metrics for the /metrics route.
	Gatherer prometheus.Gatherer

	closers []func() error
}

// NewRuntime opens the configured store and builds the session service on it.
func NewRuntime(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	rt := &Runtime{Config: cfg, Logger: logger}

	store, locker, err := rt.openStore()
	if err != nil {
		return nil, err
	}

	store, err = wrapStore(store, cfg.Store)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	rt.Metrics = metrics
	rt.Gatherer = reg

	managerOpts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(locker))
	}
	manager := session.NewManager(store, managerOpts...)

	sessionOpts := append(cfg.SessionOptions(),
		sketchtrail.WithLogger(logger),
		sketchtrail.WithLifecycleHooks(observability.Combine(
			observability.LoggingHooks(logger),
			metrics.Hooks(),
		)),
	)
	rt.Service = sketchtrail.NewService(manager, sessionOpts...)
	return rt, nil
}

func (rt *Runtime) openStore() (ports.GraphStore, ports.DistributedLocker, error) {
	sc := rt.Config.Store
	switch sc.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil, nil
	case config.BackendFile, "":
		return file.New(sc.Path), nil, nil
	case config.BackendRedis:
		store := redis.New(sc.Redis.Addr, sc.Redis.Password, sc.Redis.DB,
			redis.WithPrefix(sc.Redis.Prefix),
			redis.WithTTL(sc.Redis.TTL),
		)
		rt.closers = append(rt.closers, store.Close)
		rt.Logger.Debug("using redis store", "addr", sc.Redis.Addr, "prefix", store.Prefix())
		return store, redis.NewLocker(store.Client(), store.Prefix()), nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", sc.Backend)
	}
}

// wrapStore applies validation and, when a key is configured, encryption at rest.
func wrapStore(store ports.GraphStore, sc config.StoreConfig) (ports.GraphStore, error) {
	reg, _, err := sketch.NewRegistry()
	if err != nil {
		return nil, err
	}
	if err := provenance.RegisterNavigation(reg); err != nil {
		return nil, err
	}

	mws := []middleware.Middleware{middleware.NewValidationMiddleware[domain.DrawingState](reg)}
	if sc.EncryptionKey != "" {
		key, err := middleware.ParseKey(sc.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("invalid encryption key: %w", err)
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	return middleware.Chain(store, mws...), nil
}

// Close releases backend connections.
func (rt *Runtime) Close() error {
	var errs []error
	for _, c := range rt.closers {
		errs = append(errs, c())
	}
	rt.closers = nil
	return errors.Join(errs...)
}
