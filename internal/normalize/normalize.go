// Package normalize converts source-native raw records into the canonical
// ScheduleRecord and maps intervals back into source fields for persistence.
package normalize

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/javiermolinar/clashmap/internal/dateutil"
	"github.com/javiermolinar/clashmap/internal/logging"
	"github.com/javiermolinar/clashmap/internal/record"
	"github.com/javiermolinar/clashmap/internal/source"
)

// ErrMalformedRecord is returned when a raw record lacks usable temporal fields.
var ErrMalformedRecord = errors.New("malformed record")

const (
	// DefaultDuration applies to personal and department records without a duration.
	DefaultDuration = 60 * time.Minute
	// ProjectLeadTime is the implicit span before a project deadline.
	ProjectLeadTime = 60 * time.Minute

	untitled = "(untitled)"
)

// localLayout is accepted for company instants that carry no zone offset.
const localLayout = "2006-01-02T15:04:05"

// Adapter normalizes raw records. The zero value is not usable; use New.
type Adapter struct {
	loc             *time.Location
	defaultDuration time.Duration
	logger          *zap.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLocation sets the zone used for date+time fields.
func WithLocation(loc *time.Location) Option {
	return func(a *Adapter) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithDefaultDuration overrides the duration for records that carry none.
func WithDefaultDuration(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.defaultDuration = d
		}
	}
}

// WithLogger sets the logger used to report dropped records.
func WithLogger(l *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logging.OrNop(l)
	}
}

// New creates an Adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		loc:             time.Local,
		defaultDuration: DefaultDuration,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Location returns the zone used for date+time fields.
func (a *Adapter) Location() *time.Location {
	return a.loc
}

// Report describes the outcome of a batch normalization.
type Report struct {
	Total   int
	Dropped map[record.SourceType]int
}

// DroppedTotal returns the number of dropped records across sources.
func (r Report) DroppedTotal() int {
	n := 0
	for _, c := range r.Dropped {
		n += c
	}
	return n
}

// Normalize converts one raw record.
// Returns ErrMalformedRecord if the temporal fields are missing or unusable.
func (a *Adapter) Normalize(raw source.Raw) (record.ScheduleRecord, error) {
	var (
		rec record.ScheduleRecord
		err error
	)

	switch r := raw.(type) {
	case source.PersonalRaw:
		rec, err = a.fromStartAndDuration(r.Date, r.Time, r.DurationMinutes)
		rec.ID, rec.Title, rec.Description = r.ID, r.Title, r.Description
		rec.Status = parseStatus(r.Status)
		rec.Assignee = "personal"
	case source.DepartmentRaw:
		rec, err = a.fromStartAndDuration(r.Date, r.Time, r.DurationMinutes)
		rec.ID, rec.Title, rec.Description = r.ID, r.Title, r.Description
		rec.Status = parseStatus(r.Status)
		rec.Assignee, rec.Project = r.Assignee, r.DepartmentName
	case source.ProjectRaw:
		rec, err = a.fromDeadline(r.EndDate, r.Time)
		rec.ID, rec.Title, rec.Description = r.ID, r.ProjectName, r.ProjectDescription
		rec.Status = parseStatus(r.Status)
		rec.Project = r.ProjectName
	case source.CompanyRaw:
		rec, err = a.fromInstants(r.StartTime, r.EndTime)
		rec.ID, rec.Title, rec.Description = r.ScheduleID, r.Title, r.Description
		rec.Status = parseStatus(r.Status)
		rec.Assignee = r.Organizer
	default:
		return record.ScheduleRecord{}, fmt.Errorf("%w: unsupported raw type %T", ErrMalformedRecord, raw)
	}

	if err != nil {
		return record.ScheduleRecord{}, fmt.Errorf("%w: %s/%s: %v", ErrMalformedRecord, raw.SourceType(), raw.RawID(), err)
	}
	if rec.ID == "" {
		return record.ScheduleRecord{}, fmt.Errorf("%w: %s record without id", ErrMalformedRecord, raw.SourceType())
	}

	rec.Source = raw.SourceType()
	rec.Priority = record.DefaultPriority(rec.Source)
	if strings.TrimSpace(rec.Title) == "" {
		rec.Title = untitled
	}
	return rec, nil
}

// NormalizeAll converts a batch, dropping malformed records.
// Every drop is logged and counted in the report. The result is sorted by
// start, then by key.
func (a *Adapter) NormalizeAll(raws []source.Raw) ([]record.ScheduleRecord, Report) {
	report := Report{Total: len(raws), Dropped: make(map[record.SourceType]int)}
	out := make([]record.ScheduleRecord, 0, len(raws))

	for _, raw := range raws {
		rec, err := a.Normalize(raw)
		if err != nil {
			report.Dropped[raw.SourceType()]++
			a.logger.Warn("dropping malformed record",
				zap.String("source", string(raw.SourceType())),
				zap.String("id", raw.RawID()),
				zap.Error(err),
			)
			continue
		}
		out = append(out, rec)
	}

	SortByStart(out)
	return out, report
}

// SortByStart orders records by start, then by key for determinism.
func SortByStart(recs []record.ScheduleRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if !a.Interval.Start.Equal(b.Interval.Start) {
			return a.Interval.Start.Before(b.Interval.Start)
		}
		return a.Key().Less(b.Key())
	})
}

// Fields maps an interval back into the native fields of a source.
func (a *Adapter) Fields(src record.SourceType, iv record.Interval) (source.Fields, error) {
	if err := iv.Validate(); err != nil {
		return nil, err
	}

	start := iv.Start.In(a.loc)
	end := iv.End.In(a.loc)

	switch src {
	case record.SourcePersonal, record.SourceDepartment:
		return source.Fields{
			"date":             start.Format(dateutil.DateLayout),
			"time":             start.Format(dateutil.ClockLayout),
			"duration_minutes": int(iv.Duration() / time.Minute),
		}, nil
	case record.SourceProject:
		return source.Fields{
			"end_date": end.Format(dateutil.DateLayout),
			"time":     end.Format(dateutil.ClockLayout),
		}, nil
	case record.SourceCompany:
		return source.Fields{
			"start_time": iv.Start.Format(time.RFC3339),
			"end_time":   iv.End.Format(time.RFC3339),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", record.ErrInvalidSourceType, src)
	}
}

func (a *Adapter) fromStartAndDuration(date, clock string, minutes int) (record.ScheduleRecord, error) {
	start, err := dateutil.Combine(date, clock, a.loc)
	if err != nil {
		return record.ScheduleRecord{}, err
	}
	d := time.Duration(minutes) * time.Minute
	if d <= 0 {
		d = a.defaultDuration
	}
	return record.ScheduleRecord{Interval: record.Interval{Start: start, End: start.Add(d)}}, nil
}

func (a *Adapter) fromDeadline(endDate, clock string) (record.ScheduleRecord, error) {
	end, err := dateutil.Combine(endDate, clock, a.loc)
	if err != nil {
		return record.ScheduleRecord{}, err
	}
	return record.ScheduleRecord{Interval: record.Interval{Start: end.Add(-ProjectLeadTime), End: end}}, nil
}

func (a *Adapter) fromInstants(startStr, endStr string) (record.ScheduleRecord, error) {
	start, err := a.parseInstant(startStr)
	if err != nil {
		return record.ScheduleRecord{}, fmt.Errorf("start: %w", err)
	}
	end, err := a.parseInstant(endStr)
	if err != nil {
		return record.ScheduleRecord{}, fmt.Errorf("end: %w", err)
	}
	iv, err := record.NewInterval(start, end)
	if err != nil {
		return record.ScheduleRecord{}, err
	}
	return record.ScheduleRecord{Interval: iv}, nil
}

func (a *Adapter) parseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("missing instant")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(localLayout, s, a.loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized instant %q", s)
}

func parseStatus(s string) record.Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "completed", "done", "완료":
		return record.StatusCompleted
	default:
		return record.StatusPending
	}
}
