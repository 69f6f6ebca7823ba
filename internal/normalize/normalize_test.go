package normalize

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/javiermolinar/clashmap/internal/record"
	"github.com/javiermolinar/clashmap/internal/source"
)

func newTestAdapter() *Adapter {
	return New(WithLocation(time.UTC))
}

func TestNormalize_Personal(t *testing.T) {
	a := newTestAdapter()

	rec, err := a.Normalize(source.PersonalRaw{
		ID: "p1", Title: "Dentist", Date: "2025-03-10", Time: "09:30", DurationMinutes: 45, Status: "pending",
	})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	wantStart := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	if !rec.Interval.Start.Equal(wantStart) {
		t.Errorf("start: got %v, want %v", rec.Interval.Start, wantStart)
	}
	if rec.Duration() != 45*time.Minute {
		t.Errorf("duration: got %v, want 45m", rec.Duration())
	}
	if rec.Source != record.SourcePersonal {
		t.Errorf("source: got %s, want personal", rec.Source)
	}
	if rec.Priority != record.PriorityMedium {
		t.Errorf("priority: got %s, want medium", rec.Priority)
	}
	if rec.Status != record.StatusPending {
		t.Errorf("status: got %s, want pending", rec.Status)
	}
}

func TestNormalize_DefaultDuration(t *testing.T) {
	a := newTestAdapter()

	rec, err := a.Normalize(source.DepartmentRaw{
		ID: "d1", Title: "Sprint review", Date: "2025-03-10", Time: "14:00",
		Assignee: "Kim", DepartmentName: "Platform",
	})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if rec.Duration() != DefaultDuration {
		t.Errorf("duration: got %v, want %v", rec.Duration(), DefaultDuration)
	}
	if rec.Assignee != "Kim" || rec.Project != "Platform" {
		t.Errorf("unexpected assignee/project: %q/%q", rec.Assignee, rec.Project)
	}

	custom := New(WithLocation(time.UTC), WithDefaultDuration(30*time.Minute))
	rec, err = custom.Normalize(source.PersonalRaw{ID: "p", Date: "2025-03-10", Time: "14:00"})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if rec.Duration() != 30*time.Minute {
		t.Errorf("custom default duration: got %v, want 30m", rec.Duration())
	}
}

func TestNormalize_ProjectIsEndAnchored(t *testing.T) {
	a := newTestAdapter()

	rec, err := a.Normalize(source.ProjectRaw{
		ID: "r1", ProjectName: "Launch", EndDate: "2025-03-14", Time: "18:00", Status: "완료",
	})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	wantEnd := time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)
	if !rec.Interval.End.Equal(wantEnd) {
		t.Errorf("end: got %v, want %v", rec.Interval.End, wantEnd)
	}
	if !rec.Interval.Start.Equal(wantEnd.Add(-time.Hour)) {
		t.Errorf("start: got %v, want one hour before deadline", rec.Interval.Start)
	}
	if rec.Title != "Launch" || rec.Project != "Launch" {
		t.Errorf("title/project: got %q/%q", rec.Title, rec.Project)
	}
	if rec.Status != record.StatusCompleted {
		t.Errorf("status: got %s, want completed", rec.Status)
	}
	if rec.Priority != record.PriorityHigh {
		t.Errorf("priority: got %s, want high", rec.Priority)
	}
}

func TestNormalize_Company(t *testing.T) {
	a := newTestAdapter()

	rec, err := a.Normalize(source.CompanyRaw{
		ScheduleID: "c1", Title: "All hands",
		StartTime: "2025-03-12T10:00:00+09:00", EndTime: "2025-03-12T11:30:00+09:00",
		Organizer: "CEO",
	})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if rec.ID != "c1" {
		t.Errorf("id: got %q, want c1", rec.ID)
	}
	if rec.Duration() != 90*time.Minute {
		t.Errorf("duration: got %v, want 90m", rec.Duration())
	}
	if want := time.Date(2025, 3, 12, 1, 0, 0, 0, time.UTC); !rec.Interval.Start.Equal(want) {
		t.Errorf("start: got %v, want %v", rec.Interval.Start, want)
	}

	rec, err = a.Normalize(source.CompanyRaw{
		ScheduleID: "c2", StartTime: "2025-03-12T10:00:00", EndTime: "2025-03-12T11:00:00",
	})
	if err != nil {
		t.Fatalf("zone-less instants should parse in the adapter location: %v", err)
	}
	if rec.Title != "(untitled)" {
		t.Errorf("empty title should fall back, got %q", rec.Title)
	}
}

func TestNormalize_Malformed(t *testing.T) {
	a := newTestAdapter()

	tests := []struct {
		name string
		raw  source.Raw
	}{
		{name: "personal missing date", raw: source.PersonalRaw{ID: "p", Time: "09:00"}},
		{name: "personal missing time", raw: source.PersonalRaw{ID: "p", Date: "2025-03-10"}},
		{name: "department bad date", raw: source.DepartmentRaw{ID: "d", Date: "10/03/2025", Time: "09:00"}},
		{name: "project missing time", raw: source.ProjectRaw{ID: "r", EndDate: "2025-03-10"}},
		{name: "company missing end", raw: source.CompanyRaw{ScheduleID: "c", StartTime: "2025-03-12T10:00:00Z"}},
		{name: "company inverted", raw: source.CompanyRaw{ScheduleID: "c", StartTime: "2025-03-12T11:00:00Z", EndTime: "2025-03-12T10:00:00Z"}},
		{name: "company degenerate", raw: source.CompanyRaw{ScheduleID: "c", StartTime: "2025-03-12T10:00:00Z", EndTime: "2025-03-12T10:00:00Z"}},
		{name: "missing id", raw: source.PersonalRaw{Date: "2025-03-10", Time: "09:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Normalize(tt.raw); !errors.Is(err, ErrMalformedRecord) {
				t.Errorf("expected ErrMalformedRecord, got %v", err)
			}
		})
	}
}

func TestNormalizeAll_DropsAndCounts(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	a := New(WithLocation(time.UTC), WithLogger(zap.New(core)))

	raws := []source.Raw{
		source.PersonalRaw{ID: "p1", Title: "Later", Date: "2025-03-10", Time: "15:00"},
		source.PersonalRaw{ID: "p2", Title: "Broken", Date: "", Time: "09:00"},
		source.CompanyRaw{ScheduleID: "c1", Title: "Earlier", StartTime: "2025-03-10T09:00:00Z", EndTime: "2025-03-10T10:00:00Z"},
		source.CompanyRaw{ScheduleID: "c2", Title: "Broken", StartTime: "nope", EndTime: "2025-03-10T10:00:00Z"},
		source.ProjectRaw{ID: "r1", ProjectName: "Broken"},
	}

	recs, report := a.NormalizeAll(raws)

	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].ID != "c1" || recs[1].ID != "p1" {
		t.Errorf("expected records sorted by start, got %s then %s", recs[0].ID, recs[1].ID)
	}
	if report.Total != 5 {
		t.Errorf("report total: got %d, want 5", report.Total)
	}
	if report.DroppedTotal() != 3 {
		t.Errorf("dropped total: got %d, want 3", report.DroppedTotal())
	}
	if report.Dropped[record.SourceCompany] != 1 || report.Dropped[record.SourcePersonal] != 1 || report.Dropped[record.SourceProject] != 1 {
		t.Errorf("unexpected per-source drops: %v", report.Dropped)
	}
	if logs.Len() != 3 {
		t.Errorf("expected 3 warnings logged, got %d", logs.Len())
	}
	for _, entry := range logs.All() {
		if entry.Message != "dropping malformed record" {
			t.Errorf("unexpected log message %q", entry.Message)
		}
	}
}

func TestFields_RoundTripsThroughNormalize(t *testing.T) {
	a := newTestAdapter()
	iv := record.Interval{
		Start: time.Date(2025, 3, 11, 13, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 11, 14, 30, 0, 0, time.UTC),
	}

	fields, err := a.Fields(record.SourcePersonal, iv)
	if err != nil {
		t.Fatalf("Fields failed: %v", err)
	}
	if fields["date"] != "2025-03-11" || fields["time"] != "13:00" || fields["duration_minutes"] != 90 {
		t.Errorf("unexpected personal fields: %v", fields)
	}

	fields, err = a.Fields(record.SourceProject, iv)
	if err != nil {
		t.Fatalf("Fields failed: %v", err)
	}
	if fields["end_date"] != "2025-03-11" || fields["time"] != "14:30" {
		t.Errorf("project fields must carry the deadline: %v", fields)
	}

	fields, err = a.Fields(record.SourceCompany, iv)
	if err != nil {
		t.Fatalf("Fields failed: %v", err)
	}
	rec, err := a.Normalize(source.CompanyRaw{
		ScheduleID: "c", StartTime: fields["start_time"].(string), EndTime: fields["end_time"].(string),
	})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if !rec.Interval.Equal(iv) {
		t.Errorf("company round trip: got %v, want %v", rec.Interval, iv)
	}

	if _, err := a.Fields("team", iv); !errors.Is(err, record.ErrInvalidSourceType) {
		t.Errorf("expected ErrInvalidSourceType, got %v", err)
	}
	if _, err := a.Fields(record.SourcePersonal, record.Interval{Start: iv.End, End: iv.Start}); !errors.Is(err, record.ErrEmptyInterval) {
		t.Errorf("expected ErrEmptyInterval, got %v", err)
	}
}
