package reschedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/javiermolinar/clashmap/internal/conflict"
	"github.com/javiermolinar/clashmap/internal/grid"
	"github.com/javiermolinar/clashmap/internal/logging"
	"github.com/javiermolinar/clashmap/internal/normalize"
	"github.com/javiermolinar/clashmap/internal/record"
	"github.com/javiermolinar/clashmap/internal/source"
	"github.com/javiermolinar/clashmap/internal/window"
)

// DefaultTimeout bounds a single store update.
const DefaultTimeout = 10 * time.Second

// Coordinator owns the working record set and applies moves to it and to
// the store. Moves of the same record are serialized; moves of different
// records run concurrently.
type Coordinator struct {
	store   source.Store
	adapter *normalize.Adapter
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.RWMutex
	records map[record.Key]record.ScheduleRecord
	gen     uint64 // bumped by Replace

	locksMu sync.Mutex
	locks   map[record.Key]*sync.Mutex
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithTimeout bounds each store update.
func WithTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = logging.OrNop(l) }
}

// WithClock injects the source of "now".
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCoordinator creates a Coordinator over recs.
func NewCoordinator(store source.Store, adapter *normalize.Adapter, recs []record.ScheduleRecord, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:   store,
		adapter: adapter,
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
		now:     time.Now,
		locks:   make(map[record.Key]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Replace(recs)
	return c
}

// Replace swaps the working set, typically after a fresh fetch. Record
// locks survive the swap, so moves still in flight keep serializing with
// later moves of the same record.
func (c *Coordinator) Replace(recs []record.ScheduleRecord) {
	m := make(map[record.Key]record.ScheduleRecord, len(recs))
	for _, r := range recs {
		m[r.Key()] = r
	}
	c.mu.Lock()
	c.records = m
	c.gen++
	c.mu.Unlock()
}

// Snapshot returns a copy of the working set sorted by start.
func (c *Coordinator) Snapshot() []record.ScheduleRecord {
	c.mu.RLock()
	out := make([]record.ScheduleRecord, 0, len(c.records))
	for _, r := range c.records {
		out = append(out, r)
	}
	c.mu.RUnlock()
	normalize.SortByStart(out)
	return out
}

// Get returns the record with the given key.
func (c *Coordinator) Get(key record.Key) (record.ScheduleRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.records[key]
	return r, ok
}

func (c *Coordinator) lockFor(key record.Key) *sync.Mutex {
	c.locksMu.Lock()
	defer c.locksMu.Unlock()
	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	return l
}

// Move sets the interval of a record. The working set is updated first and
// restored if the store update fails, in which case the returned error
// wraps ErrPersistenceFailure and the store error.
func (c *Coordinator) Move(ctx context.Context, key record.Key, iv record.Interval) (record.ScheduleRecord, error) {
	if err := iv.Validate(); err != nil {
		return record.ScheduleRecord{}, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}

	lock := c.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	c.mu.Lock()
	prev, ok := c.records[key]
	if !ok {
		c.mu.Unlock()
		return record.ScheduleRecord{}, fmt.Errorf("%w: %s", ErrRecordNotFound, key)
	}
	updated := prev
	updated.Interval = iv
	updated.Adjusted = true
	c.records[key] = updated
	gen := c.gen
	c.mu.Unlock()

	if err := c.persist(ctx, key, iv); err != nil {
		// A Replace during the update already holds the store's view.
		c.mu.Lock()
		if c.gen == gen {
			c.records[key] = prev
		}
		c.mu.Unlock()

		c.logger.Error("reschedule failed, rolled back",
			zap.String("record", key.String()),
			zap.String("kind", ErrorKind(err)),
			zap.Error(err),
		)
		return prev, fmt.Errorf("%w: %s: %w", ErrPersistenceFailure, key, err)
	}

	c.logger.Info("record moved",
		zap.String("record", key.String()),
		zap.Time("from", prev.Interval.Start),
		zap.Time("to", iv.Start),
	)
	return updated, nil
}

func (c *Coordinator) persist(ctx context.Context, key record.Key, iv record.Interval) error {
	fields, err := c.adapter.Fields(key.Source, iv)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	_, err = c.store.Update(ctx, key.Source, key.ID, fields)
	return err
}

// MoveToSlot moves a record to the start of a grid slot, keeping its
// duration. Slots in the past or outside the window are rejected with
// ErrInvalidTarget before anything is changed.
func (c *Coordinator) MoveToSlot(ctx context.Context, key record.Key, slot grid.TimeSlot, win window.Window) (record.ScheduleRecord, error) {
	rec, ok := c.Get(key)
	if !ok {
		return record.ScheduleRecord{}, fmt.Errorf("%w: %s", ErrRecordNotFound, key)
	}
	iv, err := TargetInterval(rec, slot, win, c.now())
	if err != nil {
		return rec, err
	}
	return c.Move(ctx, key, iv)
}

// MoveToStart moves a record to begin at start, keeping its duration.
func (c *Coordinator) MoveToStart(ctx context.Context, key record.Key, start time.Time) (record.ScheduleRecord, error) {
	rec, ok := c.Get(key)
	if !ok {
		return record.ScheduleRecord{}, fmt.Errorf("%w: %s", ErrRecordNotFound, key)
	}
	iv, err := TargetAt(rec, start, c.now())
	if err != nil {
		return rec, err
	}
	return c.Move(ctx, key, iv)
}

// Plan computes the auto-adjust moves for the conflicts inside win without
// applying them.
func (c *Coordinator) Plan(win window.Window, strategy Strategy) []Move {
	recs := c.Snapshot()
	res := conflict.Detect(recs, win)
	return PlanAutoAdjust(recs, res.Groups, strategy)
}

// AutoAdjust plans and applies the auto-adjust moves in order. It stops at
// the first failure and returns the moves applied so far.
func (c *Coordinator) AutoAdjust(ctx context.Context, win window.Window, strategy Strategy) ([]Move, error) {
	return c.Apply(ctx, c.Plan(win, strategy))
}

// Apply performs planned moves in order, stopping at the first failure.
func (c *Coordinator) Apply(ctx context.Context, moves []Move) ([]Move, error) {
	applied := make([]Move, 0, len(moves))
	for _, m := range moves {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		if _, err := c.Move(ctx, m.Key, m.To); err != nil {
			return applied, err
		}
		applied = append(applied, m)
	}
	return applied, nil
}
