package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erp/pos/internal/domain/checkout"
	"github.com/erp/pos/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultRecoveryInterval is how often the in-progress cart is snapshotted
const DefaultRecoveryInterval = 2 * time.Second

// CartSource returns a private copy of the current cart
type CartSource func() *checkout.Cart

// RecoveryManager keeps a crash-recovery snapshot of the in-progress cart in
// a durable local store. It assumes a single writer per key.
type RecoveryManager struct {
	store    shared.DurableStore
	key      string
	interval time.Duration
	source   CartSource
	clock    func() time.Time
	metrics  Metrics
	logger   *zap.Logger

	// mu serializes ticks with Discard so a tick that read a cart before it
	// was cleared cannot write after the snapshot was removed
	mu      sync.Mutex
	written bool

	// stale is set while a requested discard has not reached the store
	stale atomic.Bool
}

// RecoveryOption configures a RecoveryManager
type RecoveryOption func(*RecoveryManager)

// WithRecoveryInterval sets the snapshot interval
func WithRecoveryInterval(d time.Duration) RecoveryOption {
	return func(m *RecoveryManager) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithRecoveryKey sets the store key of the snapshot
func WithRecoveryKey(key string) RecoveryOption {
	return func(m *RecoveryManager) {
		if key != "" {
			m.key = key
		}
	}
}

// WithRecoveryClock overrides the snapshot timestamp source
func WithRecoveryClock(clock func() time.Time) RecoveryOption {
	return func(m *RecoveryManager) {
		m.clock = clock
	}
}

// WithRecoveryLogger sets the logger
func WithRecoveryLogger(logger *zap.Logger) RecoveryOption {
	return func(m *RecoveryManager) {
		m.logger = logger
	}
}

// WithRecoveryMetrics sets the metrics sink
func WithRecoveryMetrics(metrics Metrics) RecoveryOption {
	return func(m *RecoveryManager) {
		if metrics != nil {
			m.metrics = metrics
		}
	}
}

// NewRecoveryManager creates a recovery manager that snapshots whatever source returns
func NewRecoveryManager(store shared.DurableStore, source CartSource, opts ...RecoveryOption) *RecoveryManager {
	m := &RecoveryManager{
		store:    store,
		key:      "pos:checkout:recovery",
		interval: DefaultRecoveryInterval,
		source:   source,
		clock:    time.Now,
		metrics:  nopMetrics{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Key returns the store key of the snapshot
func (m *RecoveryManager) Key() string {
	return m.key
}

// Run ticks until ctx is done
func (m *RecoveryManager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Debug("recovery loop started", zap.Duration("interval", m.interval))
	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("recovery loop stopped")
			return
		case <-ticker.C:
			if err := m.Tick(ctx); err != nil && ctx.Err() == nil {
				m.logger.Warn("recovery snapshot failed", zap.Error(err))
			}
		}
	}
}

// Tick writes the current cart, or removes a stale snapshot once the cart is empty
func (m *RecoveryManager) Tick(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart := m.source()
	if cart == nil || cart.IsEmpty() {
		if !m.written && !m.stale.Load() {
			return nil
		}
		if err := m.store.Delete(ctx, m.key); err != nil {
			return fmt.Errorf("delete stale snapshot: %w", err)
		}
		m.written = false
		m.stale.Store(false)
		return nil
	}

	data, err := checkout.NewRecoverySnapshot(cart, m.clock()).Marshal()
	if err != nil {
		m.metrics.SnapshotWritten(ctx, false)
		return err
	}
	if err := m.store.Set(ctx, m.key, data); err != nil {
		m.metrics.SnapshotWritten(ctx, false)
		return fmt.Errorf("write snapshot: %w", err)
	}
	m.written = true
	m.stale.Store(false)
	m.metrics.SnapshotWritten(ctx, true)
	return nil
}

// Pending returns the snapshot left by a previous run, or nil when there is none
func (m *RecoveryManager) Pending(ctx context.Context) (*checkout.RecoverySnapshot, error) {
	data, err := m.store.Get(ctx, m.key)
	if errors.Is(err, shared.ErrStoreKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	snapshot, err := checkout.UnmarshalRecoverySnapshot(data)
	if err != nil {
		// unreadable snapshots cannot be offered; drop them
		m.logger.Warn("discarding corrupt recovery snapshot", zap.Error(err))
		_ = m.store.Delete(ctx, m.key)
		return nil, nil
	}
	if len(snapshot.Lines) == 0 {
		return nil, nil
	}
	return &snapshot, nil
}

// Resolve answers the recovery prompt. Accepting returns the restored cart.
// The snapshot is deleted either way.
func (m *RecoveryManager) Resolve(ctx context.Context, accept bool) (*checkout.Cart, error) {
	snapshot, err := m.Pending(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, checkout.ErrNoSnapshot
	}

	var (
		cart       *checkout.Cart
		restoreErr error
	)
	if accept {
		cart, restoreErr = snapshot.Restore()
	}
	if err := m.Discard(ctx); err != nil {
		return nil, err
	}
	if restoreErr != nil {
		return nil, fmt.Errorf("restore snapshot: %w", restoreErr)
	}

	m.logger.Info("recovery snapshot resolved",
		zap.Bool("accepted", accept),
		zap.Int("lines", len(snapshot.Lines)),
		zap.Time("taken_at", snapshot.Timestamp),
	)
	return cart, nil
}

// Discard removes the snapshot
func (m *RecoveryManager) Discard(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Delete(ctx, m.key); err != nil {
		m.stale.Store(true)
		return fmt.Errorf("discard snapshot: %w", err)
	}
	m.written = false
	m.stale.Store(false)
	return nil
}

// Stale reports whether a discarded snapshot is still in the store. The next
// tick with an empty cart retries the delete.
func (m *RecoveryManager) Stale() bool {
	return m.stale.Load()
}
