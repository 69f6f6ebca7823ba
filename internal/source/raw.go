package source

import "github.com/javiermolinar/clashmap/internal/record"

// Raw is a record in its source-native shape.
type Raw interface {
	SourceType() record.SourceType
	RawID() string
}

// PersonalRaw is a personal schedule: a start date and time plus a duration.
type PersonalRaw struct {
	ID              string `json:"id" yaml:"id"`
	Title           string `json:"title" yaml:"title"`
	Description     string `json:"description" yaml:"description"`
	Date            string `json:"date" yaml:"date"` // "YYYY-MM-DD"
	Time            string `json:"time" yaml:"time"` // "HH:MM"
	DurationMinutes int    `json:"durationMinutes" yaml:"durationMinutes"`
	Status          string `json:"status" yaml:"status"`
}

func (PersonalRaw) SourceType() record.SourceType { return record.SourcePersonal }
func (r PersonalRaw) RawID() string               { return r.ID }

// DepartmentRaw is a department schedule. Same timing fields as personal.
type DepartmentRaw struct {
	ID              string `json:"id" yaml:"id"`
	Title           string `json:"title" yaml:"title"`
	Description     string `json:"description" yaml:"description"`
	Date            string `json:"date" yaml:"date"`
	Time            string `json:"time" yaml:"time"`
	DurationMinutes int    `json:"durationMinutes" yaml:"durationMinutes"`
	Status          string `json:"status" yaml:"status"`
	Assignee        string `json:"assignee" yaml:"assignee"`
	DepartmentName  string `json:"department_name" yaml:"department_name"`
}

func (DepartmentRaw) SourceType() record.SourceType { return record.SourceDepartment }
func (r DepartmentRaw) RawID() string               { return r.ID }

// ProjectRaw is a project deadline. It is anchored at its end.
type ProjectRaw struct {
	ID                 string `json:"id" yaml:"id"`
	ProjectName        string `json:"project_name" yaml:"project_name"`
	ProjectDescription string `json:"project_description" yaml:"project_description"`
	EndDate            string `json:"endDate" yaml:"endDate"`
	Time               string `json:"time" yaml:"time"`
	Status             string `json:"status" yaml:"status"`
}

func (ProjectRaw) SourceType() record.SourceType { return record.SourceProject }
func (r ProjectRaw) RawID() string               { return r.ID }

// CompanyRaw is a company-wide event with absolute start and end instants.
type CompanyRaw struct {
	ScheduleID  string `json:"schedule_id" yaml:"schedule_id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	StartTime   string `json:"start_time" yaml:"start_time"` // RFC3339
	EndTime     string `json:"end_time" yaml:"end_time"`     // RFC3339
	Organizer   string `json:"organizer" yaml:"organizer"`
	Status      string `json:"status" yaml:"status"`
}

func (CompanyRaw) SourceType() record.SourceType { return record.SourceCompany }
func (r CompanyRaw) RawID() string               { return r.ScheduleID }

// Set holds raw records from all four sources.
type Set struct {
	Personal   []PersonalRaw   `json:"personal" yaml:"personal"`
	Department []DepartmentRaw `json:"department" yaml:"department"`
	Project    []ProjectRaw    `json:"project" yaml:"project"`
	Company    []CompanyRaw    `json:"company" yaml:"company"`
}

// All flattens the set into a single slice in source order.
func (s Set) All() []Raw {
	out := make([]Raw, 0, s.Len())
	for _, r := range s.Personal {
		out = append(out, r)
	}
	for _, r := range s.Department {
		out = append(out, r)
	}
	for _, r := range s.Project {
		out = append(out, r)
	}
	for _, r := range s.Company {
		out = append(out, r)
	}
	return out
}

// Len returns the total number of raw records.
func (s Set) Len() int {
	return len(s.Personal) + len(s.Department) + len(s.Project) + len(s.Company)
}

// add appends raw records to the slice matching their concrete type.
func (s *Set) add(raws []Raw) {
	for _, r := range raws {
		switch v := r.(type) {
		case PersonalRaw:
			s.Personal = append(s.Personal, v)
		case DepartmentRaw:
			s.Department = append(s.Department, v)
		case ProjectRaw:
			s.Project = append(s.Project, v)
		case CompanyRaw:
			s.Company = append(s.Company, v)
		}
	}
}
