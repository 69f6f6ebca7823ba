// Package source defines the contract with the external record stores that own
// schedule persistence, one per source type.
package source

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/javiermolinar/clashmap/internal/record"
)

// ErrNotFound is returned when a record id does not exist in its source.
var ErrNotFound = errors.New("record not found")

// Fields is a partial update keyed by the source's native field names.
type Fields map[string]any

// Store is the record-source collaborator.
type Store interface {
	// FetchAll returns every raw record of the given source.
	FetchAll(ctx context.Context, src record.SourceType) ([]Raw, error)

	// Update applies a partial update to one record and returns the stored result.
	// Returns ErrNotFound if the id does not exist in that source.
	Update(ctx context.Context, src record.SourceType, id string, fields Fields) (Raw, error)

	// Close releases any resources held by the store.
	Close() error
}

// LoadAll fetches the given sources concurrently (all four when none are given).
// It returns only once every fetch has resolved; the first failure cancels the
// rest and no partial set is returned.
func LoadAll(ctx context.Context, store Store, sources ...record.SourceType) (Set, error) {
	if len(sources) == 0 {
		sources = record.AllSources()
	}

	var (
		mu  sync.Mutex
		set Set
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		g.Go(func() error {
			raws, err := store.FetchAll(gctx, src)
			if err != nil {
				return fmt.Errorf("fetching %s records: %w", src, err)
			}
			mu.Lock()
			set.add(raws)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Set{}, err
	}
	return set, nil
}
