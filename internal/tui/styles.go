package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme represents a color scheme for the application
type Theme struct {
	Name string

	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	Primary lipgloss.Color
	Accent  lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
}

// TokyoNight is the default color theme
var TokyoNight = Theme{
	Name: "Tokyo Night",

	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),

	Primary: lipgloss.Color("#7aa2f7"),
	Accent:  lipgloss.Color("#7dcfff"),

	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),

	Border:      lipgloss.Color("#3b4261"),
	BorderFocus: lipgloss.Color("#7aa2f7"),
	Selection:   lipgloss.Color("#33467c"),
}

// Styles holds the pre-computed styles for the UI
type Styles struct {
	Title       lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style
	ListDone     lipgloss.Style
	Priority     lipgloss.Style
	Child        lipgloss.Style

	SectionHeader lipgloss.Style
	DayHeader     lipgloss.Style

	Tag       lipgloss.Style
	Help      lipgloss.Style
	ErrorText lipgloss.Style
	Status    lipgloss.Style

	FormBox   lipgloss.Style
	FormLabel lipgloss.Style
}

// NewStyles builds the style set from a theme
func NewStyles(t Theme) *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			Padding(0, 1),
		TabActive: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			Underline(true).
			Padding(0, 1),
		TabInactive: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(0, 1),

		ListItem: lipgloss.NewStyle().
			Foreground(t.Foreground),
		ListSelected: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Background(t.Selection).
			Bold(true),
		ListDone: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Strikethrough(true),
		Priority: lipgloss.NewStyle().
			Foreground(t.Warning).
			Bold(true),
		Child: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		SectionHeader: lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true).
			MarginTop(1),
		DayHeader: lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true).
			MarginTop(1),

		Tag: lipgloss.NewStyle().
			Foreground(t.Accent),
		Help: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),
		ErrorText: lipgloss.NewStyle().
			Foreground(t.Error),
		Status: lipgloss.NewStyle().
			Foreground(t.Success),

		FormBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(1, 2),
		FormLabel: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),
	}
}
