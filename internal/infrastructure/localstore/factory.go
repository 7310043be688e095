package localstore

import (
	"fmt"

	"github.com/erp/pos/internal/domain/shared"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// Driver names accepted by the factory
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
)

// Factory creates durable stores based on configuration
type Factory struct {
	cfg                   shared.DurableStoreConfig
	redis                 RedisConfig
	logger                *zap.Logger
	gormLogger            gormlogger.Interface
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithGormLogger sets the statement logger of the SQLite driver
func WithGormLogger(l gormlogger.Interface) FactoryOption {
	return func(f *Factory) {
		f.gormLogger = l
	}
}

// WithRedis sets the Redis connection used by the redis driver
func WithRedis(cfg RedisConfig) FactoryOption {
	return func(f *Factory) {
		f.redis = cfg
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory store
// when the configured medium cannot be opened. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg shared.DurableStoreConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		cfg:                   cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// open creates the store for the configured driver without fallback
func (f *Factory) open() (shared.DurableStore, error) {
	switch f.cfg.Driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverRedis:
		return NewRedisStore(f.redis, f.cfg.Namespace)
	case DriverSQLite:
		return OpenSQLiteStore(f.cfg.Path, f.cfg.Namespace, f.gormLogger)
	case DriverBolt:
		return OpenBoltStore(f.cfg.Path, f.cfg.Namespace)
	default:
		return nil, fmt.Errorf("unknown durable store driver %q", f.cfg.Driver)
	}
}

// CreateStore opens the configured store. When that fails and fallback is
// allowed, an in-memory store is returned and crash recovery is degraded.
func (f *Factory) CreateStore() (shared.DurableStore, error) {
	store, err := f.open()
	if err == nil {
		f.logger.Info("using durable store",
			zap.String("driver", f.cfg.Driver),
			zap.String("path", f.cfg.Path),
		)
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("durable store %q unavailable: %w", f.cfg.Driver, err)
	}

	f.logger.Warn("durable store unavailable, falling back to in-memory store. "+
		"Unsaved carts will not survive a restart.",
		zap.String("driver", f.cfg.Driver),
		zap.Error(err),
	)
	return NewMemoryStore(), nil
}

func prefixFor(namespace string) string {
	if namespace == "" {
		return ""
	}
	return namespace + ":"
}
