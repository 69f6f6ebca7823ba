package theme

import (
	"testing"

	"github.com/javiermolinar/clashmap/internal/record"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		themeName string
		wantName  string
	}{
		{name: "load mocha theme", themeName: "mocha", wantName: "mocha"},
		{name: "load macchiato theme", themeName: "macchiato", wantName: "macchiato"},
		{name: "load frappe theme", themeName: "frappe", wantName: "frappe"},
		{name: "load latte theme", themeName: "latte", wantName: "latte"},
		{name: "load light theme", themeName: "light", wantName: "light"},
		{name: "case insensitive", themeName: "Latte", wantName: "latte"},
		{name: "empty name defaults to mocha", themeName: "", wantName: "mocha"},
		{name: "invalid theme falls back to mocha", themeName: "nonexistent", wantName: "mocha"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, err := Load(tt.themeName)
			if err != nil {
				t.Fatalf("Load(%q) error: %v", tt.themeName, err)
			}
			if th.Name != tt.wantName {
				t.Errorf("Load(%q).Name = %q, want %q", tt.themeName, th.Name, tt.wantName)
			}
			for _, src := range record.AllSources() {
				if th.SourceColor(src) == "" {
					t.Errorf("%s: missing colour for %s", th.Name, src)
				}
			}
			if th.Conflict == "" || th.Warning == "" {
				t.Errorf("%s: missing conflict or warning colour", th.Name)
			}
		})
	}
}

func TestAvailable(t *testing.T) {
	for _, name := range Available() {
		if !IsAvailable(name) {
			t.Errorf("IsAvailable(%q) = false", name)
		}
		th, err := Load(name)
		if err != nil || th.Name != name {
			t.Errorf("theme %q listed but not embedded", name)
		}
	}
	if IsAvailable("solarized") {
		t.Error("IsAvailable should reject unknown themes")
	}
}

func TestApplyDefaults(t *testing.T) {
	th := &Theme{Bg: "#000000", Fg: "#ffffff", Accent: "#123456"}
	th.applyDefaults()

	if th.Personal != "#123456" || th.Company != "#123456" {
		t.Errorf("source colours should fall back to accent: %+v", th)
	}
	if th.Conflict != "#123456" {
		t.Errorf("conflict should fall back to accent, got %q", th.Conflict)
	}
	if th.BgHighlight != "#000000" {
		t.Errorf("highlight should fall back to bg, got %q", th.BgHighlight)
	}
}
