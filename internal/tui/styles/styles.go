// Package styles holds the colors and lipgloss styles shared by the console
// report and the interactive rule menu.
package styles

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/zxg-sec/blfilter/internal/config"
)

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on both black and dark surfaces
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray
	BlueColor      = lipgloss.Color("#60A5FA") // Blue
	PinkColor      = lipgloss.Color("#F472B6") // Pink
	OrangeColor    = lipgloss.Color("#FB923C") // Orange

	// Convenience styles for colors
	Primary   = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning   = lipgloss.NewStyle().Foreground(WarningColor)
	Error     = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted     = lipgloss.NewStyle().Foreground(MutedColor)
	Text      = lipgloss.NewStyle().Foreground(TextColor)

	// Base styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	// Menu entries
	MenuKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(WarningColor)

	MenuItem = lipgloss.NewStyle().
			Foreground(WarningColor)

	// Rule list
	RuleIndex = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(5).
			Align(lipgloss.Right).
			MarginRight(1)

	// Prompt line above the text input
	Prompt = lipgloss.NewStyle().
		Foreground(BlueColor).
		Bold(true)

	// Help bar
	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)

	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(SecondaryColor)

	// Error message
	ErrorMsg = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// Success message
	SuccessMsg = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)

	// Warning message
	WarningMsg = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)
)

// KindColor returns the color used for a rule kind name.
func KindColor(kind string) lipgloss.Color {
	switch kind {
	case "ipv4":
		return BlueColor
	case "ipv4-wildcard":
		return PrimaryColor
	case "cidr":
		return SecondaryColor
	case "domain":
		return PinkColor
	case "domain-wildcard":
		return OrangeColor
	default:
		return MutedColor
	}
}

// NewRenderer returns a lipgloss renderer for w honouring a report.color
// mode. "auto" detects the profile from w and the environment, "always"
// forces true color and "never" strips all color.
func NewRenderer(w io.Writer, mode string) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case config.ColorAlways:
		r.SetColorProfile(termenv.TrueColor)
	case config.ColorNever:
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

// Sheet is the set of styles used by the console report, bound to one
// renderer so color detection follows the report's writer.
type Sheet struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Count   lipgloss.Style
	Rule    lipgloss.Style
	Hits    lipgloss.Style
	Index   lipgloss.Style
	Text    lipgloss.Style
	Path    lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
}

// NewSheet builds the report styles on r.
func NewSheet(r *lipgloss.Renderer) *Sheet {
	return &Sheet{
		Title:   r.NewStyle().Bold(true).Foreground(PrimaryColor),
		Label:   r.NewStyle().Foreground(TextColor),
		Count:   r.NewStyle().Bold(true).Foreground(WarningColor),
		Rule:    r.NewStyle().Foreground(ErrorColor),
		Hits:    r.NewStyle().Foreground(MutedColor),
		Index:   r.NewStyle().Foreground(MutedColor),
		Text:    r.NewStyle().Foreground(BlueColor),
		Path:    r.NewStyle().Bold(true).Foreground(PrimaryColor),
		Warning: r.NewStyle().Foreground(WarningColor),
		Muted:   r.NewStyle().Foreground(MutedColor),
	}
}
