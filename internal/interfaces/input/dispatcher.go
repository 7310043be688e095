package input

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults for the barcode sub-state machine
const (
	DefaultScanGap          = 100 * time.Millisecond
	DefaultScanIdleTimeout  = 100 * time.Millisecond
	DefaultMinBarcodeLength = 4
	DefaultSearchDebounce   = 300 * time.Millisecond

	// maxScanLength caps a burst that never ends in Enter
	maxScanLength = 128
)

var (
	// ErrDispatcherClosed is returned for events dispatched after Close
	ErrDispatcherClosed = errors.New("input dispatcher closed")
)

// HandlerFunc runs one intent
type HandlerFunc func(ctx context.Context) error

// Handlers is the capability set the dispatcher drives. Intents without a
// handler are ignored.
type Handlers struct {
	Intents map[Intent]HandlerFunc
	// Barcode is called once per flushed scan
	Barcode func(ctx context.Context, code string) error
	// Search receives the search field's text after the debounce delay
	Search func(ctx context.Context, query string)
}

// Outcome describes what one key event did
type Outcome struct {
	Intent     Intent `json:"intent,omitempty"`
	Barcode    string `json:"barcode,omitempty"`
	Buffered   bool   `json:"buffered,omitempty"`
	Suppressed bool   `json:"suppressed,omitempty"`
	Searching  bool   `json:"searching,omitempty"`
}

// Handled reports whether the event triggered an action
func (o Outcome) Handled() bool {
	return o.Intent != "" || o.Barcode != ""
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithKeymap replaces the default keymap
func WithKeymap(km Keymap) Option {
	return func(d *Dispatcher) {
		if km != nil {
			d.keymap = km
		}
	}
}

// WithScanGap sets the maximum gap between keystrokes of one scanner burst
func WithScanGap(gap time.Duration) Option {
	return func(d *Dispatcher) {
		if gap > 0 {
			d.scanGap = gap
		}
	}
}

// WithScanIdleTimeout sets how long a partial scan survives without input,
// measured between event timestamps
func WithScanIdleTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.idleTimeout = timeout
		}
	}
}

// WithMinBarcodeLength sets the shortest buffer Enter will flush
func WithMinBarcodeLength(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.minLength = n
		}
	}
}

// WithSearchDebounce sets the search-as-you-type delay
func WithSearchDebounce(delay time.Duration) Option {
	return func(d *Dispatcher) {
		if delay > 0 {
			d.debounceDelay = delay
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithClock overrides the time used for events without a timestamp
func WithClock(clock func() time.Time) Option {
	return func(d *Dispatcher) {
		d.clock = clock
	}
}

// Dispatcher routes key events to handlers and aggregates scanner bursts
type Dispatcher struct {
	handlers      Handlers
	keymap        Keymap
	scanGap       time.Duration
	idleTimeout   time.Duration
	minLength     int
	debounceDelay time.Duration
	logger        *zap.Logger
	clock         func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	search *Debouncer

	mu        sync.Mutex
	buffer    []byte
	lastKeyAt time.Time
	closed    bool
}

// NewDispatcher creates a Dispatcher
func NewDispatcher(handlers Handlers, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		handlers:      handlers,
		keymap:        DefaultKeymap(),
		scanGap:       DefaultScanGap,
		idleTimeout:   DefaultScanIdleTimeout,
		minLength:     DefaultMinBarcodeLength,
		debounceDelay: DefaultSearchDebounce,
		logger:        zap.NewNop(),
		clock:         time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.search = NewDebouncer(d.debounceDelay)
	return d
}

// Keymap returns the active keymap
func (d *Dispatcher) Keymap() Keymap {
	return d.keymap
}

// Dispatch handles one key event synchronously. Callers feeding several
// sources must serialize them so one burst is never interleaved with another.
func (d *Dispatcher) Dispatch(ctx context.Context, ev KeyEvent) (Outcome, error) {
	if ev.At.IsZero() {
		ev.At = d.clock()
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return Outcome{}, ErrDispatcherClosed
	}

	if ev.IsEnter() && !ev.HasCommandModifier() && ev.Focus.acceptsScan() {
		code, ok := d.flushLocked(ev)
		d.mu.Unlock()
		if ok {
			// the scanner typed into the search field too
			d.search.Cancel()
			return d.runBarcode(ctx, code)
		}
		return d.route(ctx, ev)
	}

	if digit, ok := ev.Digit(); ok && ev.Focus.acceptsScan() {
		d.bufferLocked(digit, ev.At)
		d.mu.Unlock()
		return Outcome{Buffered: true, Searching: d.maybeSearch(ev)}, nil
	}

	// any other key breaks a burst
	d.resetLocked()
	d.mu.Unlock()

	outcome, err := d.route(ctx, ev)
	if !outcome.Handled() && !outcome.Suppressed {
		outcome.Searching = d.maybeSearch(ev)
	}
	return outcome, err
}

// route fires the intent bound to the event's chord, honoring focus policy
func (d *Dispatcher) route(ctx context.Context, ev KeyEvent) (Outcome, error) {
	intent, ok := d.keymap.Lookup(ChordOf(ev))
	if !ok {
		return Outcome{}, nil
	}
	if !ev.HasCommandModifier() && ev.Focus.IsFreeText() {
		return Outcome{Suppressed: true}, nil
	}

	handler := d.handlers.Intents[intent]
	if handler == nil {
		return Outcome{Intent: intent}, nil
	}
	d.logger.Debug("intent", zap.String("intent", intent.String()))
	if err := handler(ctx); err != nil {
		return Outcome{Intent: intent}, fmt.Errorf("%s: %w", intent, err)
	}
	return Outcome{Intent: intent}, nil
}

func (d *Dispatcher) runBarcode(ctx context.Context, code string) (Outcome, error) {
	outcome := Outcome{Barcode: code}
	if d.handlers.Barcode == nil {
		return outcome, nil
	}
	d.logger.Debug("barcode scanned", zap.String("code", code))
	if err := d.handlers.Barcode(ctx, code); err != nil {
		return outcome, fmt.Errorf("barcode %s: %w", code, err)
	}
	return outcome, nil
}

// maybeSearch schedules search-as-you-type for edits of the search field
func (d *Dispatcher) maybeSearch(ev KeyEvent) bool {
	if ev.Focus != FocusSearch || d.handlers.Search == nil || ev.HasCommandModifier() {
		return false
	}
	query := strings.TrimSpace(ev.Value)
	ctx := d.ctx
	search := d.handlers.Search
	return d.search.Trigger(func() {
		search(ctx, query)
	})
}

// bufferLocked appends a digit, restarting the burst after a slow keystroke.
// Gaps are measured on event timestamps only, so delivery latency between
// batches never splits or expires a burst.
func (d *Dispatcher) bufferLocked(digit byte, at time.Time) {
	if len(d.buffer) > 0 && d.staleLocked(at) {
		d.buffer = d.buffer[:0]
	}
	if len(d.buffer) >= maxScanLength {
		d.buffer = d.buffer[:0]
	}
	d.buffer = append(d.buffer, digit)
	d.lastKeyAt = at
}

// staleLocked reports whether a key at the given time no longer continues the burst
func (d *Dispatcher) staleLocked(at time.Time) bool {
	gap := at.Sub(d.lastKeyAt)
	return gap >= d.scanGap || gap >= d.idleTimeout
}

// flushLocked takes the buffer as a barcode when it is a complete burst
func (d *Dispatcher) flushLocked(enter KeyEvent) (string, bool) {
	defer d.resetLocked()
	if len(d.buffer) < d.minLength || len(d.buffer) < 2 {
		return "", false
	}
	if enter.At.Sub(d.lastKeyAt) >= d.idleTimeout {
		return "", false
	}
	return string(d.buffer), true
}

func (d *Dispatcher) resetLocked() {
	d.buffer = d.buffer[:0]
}

// Close releases timers and rejects further events
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.resetLocked()
	d.mu.Unlock()

	d.search.Stop()
	d.cancel()
}
