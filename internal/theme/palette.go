package theme

import (
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/clashmap/internal/record"
)

// Palette holds lipgloss colours derived from a Theme.
type Palette struct {
	Bg          lipgloss.Color
	BgHighlight lipgloss.Color
	BgSelection lipgloss.Color
	Fg          lipgloss.Color
	FgMuted     lipgloss.Color
	Accent      lipgloss.Color
	Conflict    lipgloss.Color
	Warning     lipgloss.Color

	ConflictBg     lipgloss.Color
	TextOnConflict lipgloss.Color

	source       map[record.SourceType]lipgloss.Color
	sourceBg     map[record.SourceType]lipgloss.Color
	textOnSource map[record.SourceType]lipgloss.Color
}

// NewPalette derives a Palette from the provided Theme.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load(DefaultName)
	}
	light := isLightTheme(t.Bg)

	p := &Palette{
		Bg:          lipgloss.Color(t.Bg),
		BgHighlight: lipgloss.Color(t.BgHighlight),
		BgSelection: lipgloss.Color(t.BgSelection),
		Fg:          lipgloss.Color(t.Fg),
		FgMuted:     lipgloss.Color(t.FgMuted),
		Accent:      lipgloss.Color(t.Accent),
		Conflict:    lipgloss.Color(t.Conflict),
		Warning:     lipgloss.Color(t.Warning),

		ConflictBg:     lipgloss.Color(cellBg(t.Conflict, t.Bg, light)),
		TextOnConflict: lipgloss.Color(chooseTextColor(cellBg(t.Conflict, t.Bg, light), t.Bg, t.Fg)),

		source:       make(map[record.SourceType]lipgloss.Color),
		sourceBg:     make(map[record.SourceType]lipgloss.Color),
		textOnSource: make(map[record.SourceType]lipgloss.Color),
	}

	for _, src := range record.AllSources() {
		fg := t.SourceColor(src)
		bg := cellBg(fg, t.Bg, light)
		p.source[src] = lipgloss.Color(fg)
		p.sourceBg[src] = lipgloss.Color(bg)
		p.textOnSource[src] = lipgloss.Color(chooseTextColor(bg, t.Bg, t.Fg))
	}

	return p
}

// Source returns the foreground colour of a source.
func (p *Palette) Source(src record.SourceType) lipgloss.Color {
	if c, ok := p.source[src]; ok {
		return c
	}
	return p.Fg
}

// SourceBg returns the cell background of a source.
func (p *Palette) SourceBg(src record.SourceType) lipgloss.Color {
	if c, ok := p.sourceBg[src]; ok {
		return c
	}
	return p.BgHighlight
}

// TextOnSource returns a readable text colour over SourceBg.
func (p *Palette) TextOnSource(src record.SourceType) lipgloss.Color {
	if c, ok := p.textOnSource[src]; ok {
		return c
	}
	return p.Fg
}

type rgb struct{ r, g, b int }

func parseRGB(hex string) (rgb, bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return rgb{}, false
	}
	return rgb{parseHex(hex[1:3]), parseHex(hex[3:5]), parseHex(hex[5:7])}, true
}

func (c rgb) hex() string {
	const digits = "0123456789abcdef"
	clampByte := func(v int) int { return max(0, min(255, v)) }
	r, g, b := clampByte(c.r), clampByte(c.g), clampByte(c.b)
	return string([]byte{'#',
		digits[r>>4], digits[r&0xf],
		digits[g>>4], digits[g&0xf],
		digits[b>>4], digits[b&0xf],
	})
}

func parseHex(s string) int {
	v := 0
	for i := 0; i < len(s); i++ {
		v *= 16
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			v += int(c - '0')
		case c >= 'a' && c <= 'f':
			v += int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v += int(c-'A') + 10
		}
	}
	return v
}

func isLightTheme(bg string) bool {
	return relativeLuminance(bg) > 0.55
}

// cellBg tones an accent down to a block background: blended into the
// background on light themes, darkened with a floor on dark ones.
func cellBg(accent, bg string, light bool) string {
	if light {
		return blendColors(accent, bg, 0.75)
	}
	return darkenColor(accent, 0.5, 40)
}

func darkenColor(hex string, factor float64, floor int) string {
	c, ok := parseRGB(hex)
	if !ok {
		return hex
	}
	scale := func(v int) int { return max(floor, int(float64(v)*factor)) }
	return rgb{scale(c.r), scale(c.g), scale(c.b)}.hex()
}

func blendColors(a, b string, ratio float64) string {
	ca, okA := parseRGB(a)
	cb, okB := parseRGB(b)
	if !okA || !okB {
		return a
	}
	ratio = math.Max(0, math.Min(1, ratio))
	mix := func(x, y int) int { return int(float64(x)*(1-ratio) + float64(y)*ratio) }
	return rgb{mix(ca.r, cb.r), mix(ca.g, cb.g), mix(ca.b, cb.b)}.hex()
}

func chooseTextColor(bg, lightText, darkText string) string {
	if contrastRatio(bg, lightText) >= contrastRatio(bg, darkText) {
		return lightText
	}
	return darkText
}

func contrastRatio(a, b string) float64 {
	l1, l2 := relativeLuminance(a), relativeLuminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

func relativeLuminance(hex string) float64 {
	c, ok := parseRGB(hex)
	if !ok {
		return 0
	}
	return 0.2126*srgbToLinear(c.r) + 0.7152*srgbToLinear(c.g) + 0.0722*srgbToLinear(c.b)
}

func srgbToLinear(c int) float64 {
	v := float64(c) / 255.0
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}
