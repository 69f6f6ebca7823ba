package ui

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/clashmap/internal/config"
	"github.com/javiermolinar/clashmap/internal/db"
	"github.com/javiermolinar/clashmap/internal/record"
	"github.com/javiermolinar/clashmap/internal/reschedule"
	"github.com/javiermolinar/clashmap/internal/source"
)

// Monday morning, before the first visible hour.
var testNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

const fixtureYAML = `personal:
  - id: p1
    title: Standup
    date: "2025-03-10"
    time: "10:00"
    durationMinutes: 60
department:
  - id: d1
    title: Sprint review
    date: "2025-03-10"
    time: "10:30"
    durationMinutes: 60
    assignee: Kim
    department_name: Platform
project:
  - id: r1
    project_name: Launch
    endDate: "2025-03-12"
    time: "18:00"
  - project_name: Broken
company:
  - schedule_id: c1
    title: All hands
    start_time: "2025-03-11T09:00:00Z"
    end_time: "2025-03-11T10:00:00Z"
`

type testEnv struct {
	t     *testing.T
	dir   string
	store *db.SQLite
	cfg   *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Window.Timezone = "UTC"
	cfg.Storage.DBPath = filepath.Join(dir, "clashmap.db")

	store, err := db.New(cfg.Storage.DBPath)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return &testEnv{t: t, dir: dir, store: store, cfg: cfg}
}

// run executes one command on a fresh App so flag values never leak
// between invocations.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	app := NewApp(e.cfg,
		WithStore(e.store),
		WithClock(func() time.Time { return testNow }),
		WithConfigPath(filepath.Join(e.dir, "config.toml")),
	)
	if args == nil {
		args = []string{}
	}
	var out bytes.Buffer
	app.root.SetOut(&out)
	app.root.SetErr(&out)
	app.root.SetArgs(args)
	err := app.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("%v failed: %v\noutput:\n%s", args, err, out)
	}
	return out
}

func (e *testEnv) importFixture() {
	e.t.Helper()
	path := filepath.Join(e.dir, "schedules.yaml")
	if err := os.WriteFile(path, []byte(fixtureYAML), 0o644); err != nil {
		e.t.Fatalf("writing fixture: %v", err)
	}
	out := e.mustRun("import", path)
	if !strings.Contains(out, "Imported 5 records") {
		e.t.Fatalf("unexpected import output:\n%s", out)
	}
	if !strings.Contains(out, "1 record had no id") {
		e.t.Errorf("expected generated id notice, got:\n%s", out)
	}
}

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("version")
	assertContains(t, out, "clashmap dev (commit: none)")
}

func TestListCmd(t *testing.T) {
	env := newTestEnv(t)
	env.importFixture()

	out := env.mustRun("list")
	assertContains(t, out,
		"=== Mon 2025-03-10 ===",
		"Standup",
		"Sprint review",
		"All hands",
		"⚠ 1 clash",
		"1 record skipped",
	)

	out = env.mustRun("list", "--type", "company")
	assertContains(t, out, "All hands")
	if strings.Contains(out, "Standup") {
		t.Errorf("--type=company should hide personal records:\n%s", out)
	}

	if _, err := env.run("list", "--type", "team"); !errors.Is(err, record.ErrInvalidSourceType) {
		t.Errorf("expected ErrInvalidSourceType, got %v", err)
	}
}

func TestConflictsCmd(t *testing.T) {
	env := newTestEnv(t)
	env.importFixture()

	out := env.mustRun("conflicts")
	assertContains(t, out,
		"Conflict 1 (2 records, 2025-03-10 10:00-11:30)",
		"personal   p1",
		"department d1",
		"1 conflict group across 2 records",
	)
}

func TestGridCmd(t *testing.T) {
	env := newTestEnv(t)
	env.importFixture()

	out := env.mustRun("grid", "--no-color")
	assertContains(t, out, "Mon 03/10", "09:00", "18:00", "conflict group")
	if strings.Contains(out, "19:00") {
		t.Errorf("hour_end is exclusive, 19:00 row should not be drawn:\n%s", out)
	}
}

func TestMoveCmd(t *testing.T) {
	env := newTestEnv(t)
	env.importFixture()

	out := env.mustRun("move", "department", "d1", "--date", "2025-03-10", "--hour", "13")
	assertContains(t, out, "Moved department/d1: 2025-03-10 10:30-11:30 → 2025-03-10 13:00-14:00")

	raw, err := env.store.Get(context.Background(), record.SourceDepartment, "d1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if dep := raw.(source.DepartmentRaw); dep.Date != "2025-03-10" || dep.Time != "13:00" || dep.DurationMinutes != 60 {
		t.Errorf("store not updated: %+v", dep)
	}

	out = env.mustRun("conflicts")
	assertContains(t, out, "No conflicts in the visible window.")
}

func TestMoveCmd_OffGridMinute(t *testing.T) {
	env := newTestEnv(t)
	env.importFixture()

	out := env.mustRun("move", "personal", "p1", "--date", "tomorrow", "--hour", "20", "--minute", "15")
	assertContains(t, out, "→ 2025-03-11 20:15-21:15")
}

func TestMoveCmd_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.importFixture()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "past target", args: []string{"move", "personal", "p1", "--hour", "7"}, wantErr: reschedule.ErrInvalidTarget},
		{name: "bad hour", args: []string{"move", "personal", "p1", "--hour", "24"}, wantErr: reschedule.ErrInvalidTarget},
		{name: "unknown id", args: []string{"move", "personal", "nope", "--hour", "12"}, wantErr: reschedule.ErrRecordNotFound},
		{name: "unknown source", args: []string{"move", "team", "p1", "--hour", "12"}, wantErr: record.ErrInvalidSourceType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.run(tt.args...); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	raw, err := env.store.Get(context.Background(), record.SourcePersonal, "p1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p := raw.(source.PersonalRaw); p.Time != "10:00" {
		t.Errorf("rejected moves must not touch the store, got time %s", p.Time)
	}
}

func TestAdjustCmd(t *testing.T) {
	env := newTestEnv(t)
	env.importFixture()

	out := env.mustRun("adjust")
	assertContains(t, out, "Planned 1 move", "department/d1", "--apply")

	raw, err := env.store.Get(context.Background(), record.SourceDepartment, "d1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if raw.(source.DepartmentRaw).Time != "10:30" {
		t.Fatal("planning must not write to the store")
	}

	out = env.mustRun("adjust", "--apply")
	assertContains(t, out, "Applied 1 move.")

	// Latest end is the project deadline at 18:00 on the 12th, plus the one hour gap.
	raw, err = env.store.Get(context.Background(), record.SourceDepartment, "d1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if dep := raw.(source.DepartmentRaw); dep.Date != "2025-03-12" || dep.Time != "19:00" {
		t.Errorf("unexpected adjusted record: %+v", dep)
	}

	out = env.mustRun("adjust")
	assertContains(t, out, "Nothing to adjust.")
}

func TestAdjustCmd_EarliestStrategy(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Reschedule.Strategy = config.StrategyEarliest
	env.importFixture()

	out := env.mustRun("adjust", "--apply")
	assertContains(t, out, "Applied 1 move.")

	// First hour-aligned gap that keeps an hour away from the morning clash.
	raw, err := env.store.Get(context.Background(), record.SourceDepartment, "d1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if dep := raw.(source.DepartmentRaw); dep.Date != "2025-03-10" || dep.Time != "12:30" {
		t.Errorf("unexpected adjusted record: %+v", dep)
	}
}

func TestSummaryCmd(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("summary")
	assertContains(t, out, "WINDOW: Mon Mar 10 - Sun Mar 23, 2025", "No records in the visible window.")

	env.importFixture()
	out = env.mustRun("summary")
	assertContains(t, out,
		"Booked: 4h  |  Records: 4",
		"1 clashing",
		"50%",
		"1 conflict group, 30m overlapping",
		"Busiest day: Mon 2025-03-10 (2h)",
		"1 record skipped",
	)
}

func TestWatchCmd_Once(t *testing.T) {
	env := newTestEnv(t)
	env.importFixture()

	out := env.mustRun("watch", "--once")
	assertContains(t, out, "1 conflict group, 2 records clashing, 0 records overdue, 1 record skipped")
}

func TestWatcherPrintsOnlyChanges(t *testing.T) {
	env := newTestEnv(t)
	env.importFixture()

	var out bytes.Buffer
	app := NewApp(env.cfg, WithStore(env.store), WithClock(func() time.Time { return testNow }))
	w := &watcher{app: app, out: &out}

	ctx := context.Background()
	for range 3 {
		if err := w.tick(ctx); err != nil {
			t.Fatalf("tick failed: %v", err)
		}
	}
	if n := strings.Count(out.String(), "\n"); n != 1 {
		t.Errorf("expected one line for an unchanged picture, got %d:\n%s", n, out.String())
	}
}

func TestRootRendersGrid(t *testing.T) {
	env := newTestEnv(t)
	env.importFixture()

	out := env.mustRun()
	assertContains(t, out, "Mon 03/10", "10:00")
}
