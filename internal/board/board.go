// Package board runs the full read pipeline: load every source, normalize,
// scope to the window, detect conflicts and lay records out on the grid.
package board

import (
	"context"
	"fmt"
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

// Board is one computed view of the schedule.
type Board struct {
	Window  window.Window
	Now     time.Time
	All     []record.ScheduleRecord // every normalized record
	Records []record.ScheduleRecord // records intersecting the window
	Result  conflict.Result
	Cells   []grid.Cell
	Report  normalize.Report
	Overdue []record.ScheduleRecord
}

// Dropped returns the number of raw records that could not be normalized.
func (b *Board) Dropped() int {
	return b.Report.DroppedTotal()
}

// Filter returns the windowed records of one source, or all of them when src
// is empty.
func (b *Board) Filter(src record.SourceType) []record.ScheduleRecord {
	if src == "" {
		return b.Records
	}
	var out []record.ScheduleRecord
	for _, r := range b.Records {
		if r.Source == src {
			out = append(out, r)
		}
	}
	return out
}

// Builder assembles boards from a store.
type Builder struct {
	Store   source.Store
	Adapter *normalize.Adapter
	Mapper  grid.Mapper
	Logger  *zap.Logger
}

// Build fetches and computes a board for win at now.
func (b Builder) Build(ctx context.Context, win window.Window, now time.Time) (*Board, error) {
	logger := logging.OrNop(b.Logger)
	adapter := b.Adapter
	if adapter == nil {
		adapter = normalize.New(normalize.WithLocation(win.Location), normalize.WithLogger(logger))
	}

	began := time.Now()
	set, err := source.LoadAll(ctx, b.Store)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	logger.Debug("records loaded",
		zap.Int("count", set.Len()),
		zap.Duration("elapsed", time.Since(began)),
	)

	all, report := adapter.NormalizeAll(set.All())
	return Compute(all, report, win, now, b.Mapper), nil
}

// Compute derives a board from already normalized records.
func Compute(all []record.ScheduleRecord, report normalize.Report, win window.Window, now time.Time, mapper grid.Mapper) *Board {
	scoped := win.Scope(all)
	res := conflict.Detect(scoped, win)

	var overdue []record.ScheduleRecord
	for _, r := range all {
		if r.EffectiveStatus(now) == record.StatusOverdue {
			overdue = append(overdue, r)
		}
	}

	return &Board{
		Window:  win,
		Now:     now,
		All:     all,
		Records: scoped,
		Result:  res,
		Cells:   mapper.Layout(scoped, win, res.Conflicting),
		Report:  report,
		Overdue: overdue,
	}
}
