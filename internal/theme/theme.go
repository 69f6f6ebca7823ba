// Package theme provides colour themes for the terminal grid and lists.
package theme

import (
	"embed"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/clashmap/internal/record"
)

//go:embed embedded/*.toml
var embeddedThemes embed.FS

// DefaultName is used when no theme, or an unknown one, is requested.
const DefaultName = "mocha"

// Theme holds the hex colours of one theme.
type Theme struct {
	Name        string `toml:"name"`
	Bg          string `toml:"bg"`           // Base background
	BgHighlight string `toml:"bg_highlight"` // Empty grid cells, header rows
	BgSelection string `toml:"bg_selection"` // Today column
	Fg          string `toml:"fg"`           // Primary foreground
	FgMuted     string `toml:"fg_muted"`     // Completed and past records
	Accent      string `toml:"accent"`       // Titles, borders
	Conflict    string `toml:"conflict"`     // Conflicting records
	Warning     string `toml:"warning"`      // Overdue records, dropped counts

	Personal   string `toml:"personal"`
	Department string `toml:"department"`
	Project    string `toml:"project"`
	Company    string `toml:"company"`
}

// Load loads a theme by name from embedded files.
// Falls back to DefaultName if the theme is not found.
func Load(name string) (*Theme, error) {
	if name == "" {
		name = DefaultName
	}
	name = strings.ToLower(name)

	data, err := embeddedThemes.ReadFile("embedded/" + name + ".toml")
	if err != nil {
		if name != DefaultName {
			return Load(DefaultName)
		}
		return nil, fmt.Errorf("loading theme %q: %w", name, err)
	}

	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	t.applyDefaults()

	return &t, nil
}

// SourceColor returns the hex colour of a source.
func (t *Theme) SourceColor(src record.SourceType) string {
	switch src {
	case record.SourcePersonal:
		return t.Personal
	case record.SourceDepartment:
		return t.Department
	case record.SourceProject:
		return t.Project
	case record.SourceCompany:
		return t.Company
	default:
		return t.Fg
	}
}

func (t *Theme) applyDefaults() {
	t.BgHighlight = coalesce(t.BgHighlight, t.Bg)
	t.BgSelection = coalesce(t.BgSelection, t.BgHighlight)
	t.FgMuted = coalesce(t.FgMuted, t.Fg)
	t.Accent = coalesce(t.Accent, t.Fg)
	t.Conflict = coalesce(t.Conflict, t.Warning, t.Accent)
	t.Warning = coalesce(t.Warning, t.Conflict)
	t.Personal = coalesce(t.Personal, t.Accent)
	t.Department = coalesce(t.Department, t.Accent)
	t.Project = coalesce(t.Project, t.Accent)
	t.Company = coalesce(t.Company, t.Accent)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Available returns a list of available theme names.
func Available() []string {
	return []string{"mocha", "macchiato", "frappe", "latte", "light"}
}

// IsAvailable reports whether a theme name is available.
func IsAvailable(name string) bool {
	name = strings.ToLower(name)
	for _, themeName := range Available() {
		if themeName == name {
			return true
		}
	}
	return false
}
