// Package db provides the SQLite record store. It holds the raw records of
// all four schedule sources in their native shapes.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/clashmap/internal/record"
	"github.com/javiermolinar/clashmap/internal/source"
)

// ErrUnknownField is returned when an update names a field the source does not have.
var ErrUnknownField = errors.New("unknown field")

// SQLite implements source.Store using SQLite.
type SQLite struct {
	db *sql.DB
}

// New creates a new SQLite store and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite allows a single writer; queue writers in the pool instead of
	// failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// table describes how one source is stored.
type table struct {
	name    string
	idCol   string
	columns []string          // select order, id first
	fields  map[string]string // updatable field -> column
}

var tables = map[record.SourceType]table{
	record.SourcePersonal: {
		name:    "personal_schedules",
		idCol:   "id",
		columns: []string{"id", "title", "description", "date", "time", "duration_minutes", "status"},
		fields:  map[string]string{"date": "date", "time": "time", "duration_minutes": "duration_minutes", "status": "status"},
	},
	record.SourceDepartment: {
		name:    "department_schedules",
		idCol:   "id",
		columns: []string{"id", "title", "description", "date", "time", "duration_minutes", "status", "assignee", "department_name"},
		fields:  map[string]string{"date": "date", "time": "time", "duration_minutes": "duration_minutes", "status": "status"},
	},
	record.SourceProject: {
		name:    "project_schedules",
		idCol:   "id",
		columns: []string{"id", "project_name", "project_description", "end_date", "time", "status"},
		fields:  map[string]string{"end_date": "end_date", "time": "time", "status": "status"},
	},
	record.SourceCompany: {
		name:    "company_schedules",
		idCol:   "schedule_id",
		columns: []string{"schedule_id", "title", "description", "start_time", "end_time", "organizer", "status"},
		fields:  map[string]string{"start_time": "start_time", "end_time": "end_time", "status": "status"},
	},
}

func tableFor(src record.SourceType) (table, error) {
	t, ok := tables[src]
	if !ok {
		return table{}, fmt.Errorf("%w: %q", record.ErrInvalidSourceType, src)
	}
	return t, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRaw(src record.SourceType, sc scanner) (source.Raw, error) {
	switch src {
	case record.SourcePersonal:
		var r source.PersonalRaw
		err := sc.Scan(&r.ID, &r.Title, &r.Description, &r.Date, &r.Time, &r.DurationMinutes, &r.Status)
		return r, err
	case record.SourceDepartment:
		var r source.DepartmentRaw
		err := sc.Scan(&r.ID, &r.Title, &r.Description, &r.Date, &r.Time, &r.DurationMinutes, &r.Status,
			&r.Assignee, &r.DepartmentName)
		return r, err
	case record.SourceProject:
		var r source.ProjectRaw
		err := sc.Scan(&r.ID, &r.ProjectName, &r.ProjectDescription, &r.EndDate, &r.Time, &r.Status)
		return r, err
	case record.SourceCompany:
		var r source.CompanyRaw
		err := sc.Scan(&r.ScheduleID, &r.Title, &r.Description, &r.StartTime, &r.EndTime, &r.Organizer, &r.Status)
		return r, err
	default:
		return nil, fmt.Errorf("%w: %q", record.ErrInvalidSourceType, src)
	}
}

// FetchAll returns every raw record of one source.
func (s *SQLite) FetchAll(ctx context.Context, src record.SourceType) ([]source.Raw, error) {
	t, err := tableFor(src)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s`, strings.Join(t.columns, ", "), t.name, t.idCol)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying %s records: %w", src, err)
	}
	defer func() { _ = rows.Close() }()

	var out []source.Raw
	for rows.Next() {
		r, err := scanRaw(src, rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s record: %w", src, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s records: %w", src, err)
	}

	return out, nil
}

// Get returns one raw record.
// Returns source.ErrNotFound if no record has the id.
func (s *SQLite) Get(ctx context.Context, src record.SourceType, id string) (source.Raw, error) {
	t, err := tableFor(src)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`, strings.Join(t.columns, ", "), t.name, t.idCol)
	r, err := scanRaw(src, s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", source.ErrNotFound, src, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying %s record: %w", src, err)
	}
	return r, nil
}

// Update sets the given fields on one record and returns the stored result.
// Returns source.ErrNotFound if no record has the id and ErrUnknownField if
// a field does not belong to the source.
func (s *SQLite) Update(ctx context.Context, src record.SourceType, id string, fields source.Fields) (source.Raw, error) {
	t, err := tableFor(src)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return s.Get(ctx, src, id)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		if _, ok := t.fields[name]; !ok {
			return nil, fmt.Errorf("%w: %s has no field %q", ErrUnknownField, src, name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names)+1)
	args := make([]any, 0, len(names)+1)
	for _, name := range names {
		sets = append(sets, t.fields[name]+" = ?")
		args = append(args, fields[name])
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = ?`, t.name, strings.Join(sets, ", "), t.idCol)
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating %s record: %w", src, err)
	}

	if err := checkUpdated(result, src, id); err != nil {
		return nil, err
	}

	return s.Get(ctx, src, id)
}

func checkUpdated(result sql.Result, src record.SourceType, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating %s record %s: %w", src, id, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s/%s", source.ErrNotFound, src, id)
	}
	return nil
}

// Import inserts or replaces every record of the set in a single
// transaction and returns how many were written.
func (s *SQLite) Import(ctx context.Context, set source.Set) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	n := 0
	for _, raw := range set.All() {
		src := raw.SourceType()
		t, err := tableFor(src)
		if err != nil {
			return 0, err
		}
		if raw.RawID() == "" {
			return 0, fmt.Errorf("importing %s record: missing id", src)
		}

		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.columns)), ", ")
		query := fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s) VALUES (%s)`,
			t.name, strings.Join(t.columns, ", "), placeholders)

		if _, err := tx.ExecContext(ctx, query, values(raw)...); err != nil {
			return 0, fmt.Errorf("importing %s/%s: %w", src, raw.RawID(), err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	return n, nil
}

func values(raw source.Raw) []any {
	switch r := raw.(type) {
	case source.PersonalRaw:
		return []any{r.ID, r.Title, r.Description, r.Date, r.Time, r.DurationMinutes, statusOrPending(r.Status)}
	case source.DepartmentRaw:
		return []any{r.ID, r.Title, r.Description, r.Date, r.Time, r.DurationMinutes, statusOrPending(r.Status),
			r.Assignee, r.DepartmentName}
	case source.ProjectRaw:
		return []any{r.ID, r.ProjectName, r.ProjectDescription, r.EndDate, r.Time, statusOrPending(r.Status)}
	case source.CompanyRaw:
		return []any{r.ScheduleID, r.Title, r.Description, r.StartTime, r.EndTime, r.Organizer, statusOrPending(r.Status)}
	default:
		return nil
	}
}

func statusOrPending(s string) string {
	if strings.TrimSpace(s) == "" {
		return string(record.StatusPending)
	}
	return s
}

// Counts returns the number of stored records per source.
func (s *SQLite) Counts(ctx context.Context) (map[record.SourceType]int, error) {
	out := make(map[record.SourceType]int, len(tables))
	for _, src := range record.AllSources() {
		var n int
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, tables[src].name)
		if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
			return nil, fmt.Errorf("counting %s records: %w", src, err)
		}
		out[src] = n
	}
	return out, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}
