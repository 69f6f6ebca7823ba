package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/javiermolinar/clashmap/internal/record"
)

// Memory is an in-process Store. It backs dry runs and tests.
type Memory struct {
	mu  sync.Mutex
	set Set

	// UpdateErr, when set, is returned by every Update call.
	UpdateErr error
	// UpdateDelay holds each Update for the given duration or until ctx is done.
	UpdateDelay time.Duration

	updates int
}

// NewMemory creates a Memory store seeded with the given set.
func NewMemory(set Set) *Memory {
	return &Memory{set: set}
}

// FetchAll returns the raw records of one source.
func (m *Memory) FetchAll(ctx context.Context, src record.SourceType) ([]Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Raw
	for _, r := range m.set.All() {
		if r.SourceType() == src {
			out = append(out, r)
		}
	}
	return out, nil
}

// Update applies fields to the record identified by src and id.
func (m *Memory) Update(ctx context.Context, src record.SourceType, id string, fields Fields) (Raw, error) {
	if m.UpdateDelay > 0 {
		select {
		case <-time.After(m.UpdateDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++

	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}

	switch src {
	case record.SourcePersonal:
		for i := range m.set.Personal {
			if m.set.Personal[i].ID == id {
				applyTiming(&m.set.Personal[i].Date, &m.set.Personal[i].Time, &m.set.Personal[i].DurationMinutes, fields)
				return m.set.Personal[i], nil
			}
		}
	case record.SourceDepartment:
		for i := range m.set.Department {
			if m.set.Department[i].ID == id {
				applyTiming(&m.set.Department[i].Date, &m.set.Department[i].Time, &m.set.Department[i].DurationMinutes, fields)
				return m.set.Department[i], nil
			}
		}
	case record.SourceProject:
		for i := range m.set.Project {
			if m.set.Project[i].ID == id {
				setString(&m.set.Project[i].EndDate, fields, "end_date")
				setString(&m.set.Project[i].Time, fields, "time")
				return m.set.Project[i], nil
			}
		}
	case record.SourceCompany:
		for i := range m.set.Company {
			if m.set.Company[i].ScheduleID == id {
				setString(&m.set.Company[i].StartTime, fields, "start_time")
				setString(&m.set.Company[i].EndTime, fields, "end_time")
				return m.set.Company[i], nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, src, id)
}

// Updates returns how many Update calls reached the store.
func (m *Memory) Updates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updates
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

func applyTiming(date, tm *string, duration *int, fields Fields) {
	setString(date, fields, "date")
	setString(tm, fields, "time")
	if v, ok := fields["duration_minutes"].(int); ok {
		*duration = v
	}
}

func setString(dst *string, fields Fields, key string) {
	if v, ok := fields[key].(string); ok {
		*dst = v
	}
}
