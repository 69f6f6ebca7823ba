// Package record defines the canonical schedule record the engine operates on.
package record

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors.
var (
	ErrEmptyInterval     = errors.New("interval start must be before end")
	ErrInvalidSourceType = errors.New("source type must be personal, department, project or company")
	ErrInvalidPriority   = errors.New("priority must be high, medium or low")
)

// SourceType identifies which external collaborator owns a record.
type SourceType string

const (
	SourcePersonal   SourceType = "personal"
	SourceDepartment SourceType = "department"
	SourceProject    SourceType = "project"
	SourceCompany    SourceType = "company"
)

// AllSources returns every source type in display order.
func AllSources() []SourceType {
	return []SourceType{SourcePersonal, SourceDepartment, SourceProject, SourceCompany}
}

// Valid returns true if the source type is one of the known variants.
func (s SourceType) Valid() bool {
	switch s {
	case SourcePersonal, SourceDepartment, SourceProject, SourceCompany:
		return true
	default:
		return false
	}
}

// ParseSourceType converts a string to a SourceType.
func ParseSourceType(s string) (SourceType, error) {
	st := SourceType(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSourceType, s)
	}
	return st, nil
}

// Priority is advisory and never affects overlap semantics.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities, higher is more important.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ParsePriority converts a string to a Priority.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return Priority(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
}

// DefaultPriority returns the priority assigned to records of a source
// that do not carry one.
func DefaultPriority(s SourceType) Priority {
	switch s {
	case SourceProject, SourceCompany:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// Status represents the completion state of a record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	// StatusOverdue is derived, never stored.
	StatusOverdue Status = "overdue"
)

// Key identifies a record across sources. IDs are only unique within a source.
type Key struct {
	Source SourceType
	ID     string
}

// String returns "source/id".
func (k Key) String() string {
	return string(k.Source) + "/" + k.ID
}

// Less orders keys by source then id.
func (k Key) Less(other Key) bool {
	if k.Source != other.Source {
		return k.Source < other.Source
	}
	return k.ID < other.ID
}

// ScheduleRecord is a transient read-model of a schedule entry. The backing
// store stays the authority; copies are rebuilt on every fetch.
type ScheduleRecord struct {
	ID          string
	Source      SourceType
	Title       string
	Description string
	Interval    Interval
	Priority    Priority
	Status      Status
	Assignee    string
	Project     string
	Adjusted    bool // moved by a reschedule in this session
}

// Key returns the cross-source identity of the record.
func (r ScheduleRecord) Key() Key {
	return Key{Source: r.Source, ID: r.ID}
}

// Duration returns the length of the record's interval.
func (r ScheduleRecord) Duration() time.Duration {
	return r.Interval.Duration()
}

// IsCompleted returns true if the stored status is completed.
func (r ScheduleRecord) IsCompleted() bool {
	return r.Status == StatusCompleted
}

// EffectiveStatus returns the display status at the given instant.
// A pending record whose interval has ended is overdue.
func (r ScheduleRecord) EffectiveStatus(now time.Time) Status {
	status := r.Status
	if status == "" {
		status = StatusPending
	}
	if status == StatusPending && r.Interval.End.Before(now) {
		return StatusOverdue
	}
	return status
}

// Overlaps returns true if the two records' intervals overlap.
func (r ScheduleRecord) Overlaps(other ScheduleRecord) bool {
	return r.Interval.Overlaps(other.Interval)
}

// Validate checks the record invariants.
func (r ScheduleRecord) Validate() error {
	if !r.Source.Valid() {
		return ErrInvalidSourceType
	}
	return r.Interval.Validate()
}
