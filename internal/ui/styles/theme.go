package styles

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Palette is a named set of colors the styles are built from
type Palette struct {
	Name string

	Background lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color

	Primary lipgloss.Color
	Accent  lipgloss.Color
	Badge   lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Border    lipgloss.Color
	Focus     lipgloss.Color
	Selection lipgloss.Color
}

// DefaultTheme is used when the configuration names none
const DefaultTheme = "tokyo-night"

var themes = map[string]Palette{
	"tokyo-night": {
		Name:       "Tokyo Night",
		Background: lipgloss.Color("#1a1b26"),
		Text:       lipgloss.Color("#c0caf5"),
		Muted:      lipgloss.Color("#565f89"),
		Primary:    lipgloss.Color("#7aa2f7"),
		Accent:     lipgloss.Color("#7dcfff"),
		Badge:      lipgloss.Color("#bb9af7"),
		Success:    lipgloss.Color("#9ece6a"),
		Warning:    lipgloss.Color("#e0af68"),
		Error:      lipgloss.Color("#f7768e"),
		Border:     lipgloss.Color("#3b4261"),
		Focus:      lipgloss.Color("#7aa2f7"),
		Selection:  lipgloss.Color("#33467c"),
	},
	"paper": {
		Name:       "Paper",
		Background: lipgloss.Color("#fafafa"),
		Text:       lipgloss.Color("#383a42"),
		Muted:      lipgloss.Color("#a0a1a7"),
		Primary:    lipgloss.Color("#4078f2"),
		Accent:     lipgloss.Color("#0184bc"),
		Badge:      lipgloss.Color("#a626a4"),
		Success:    lipgloss.Color("#50a14f"),
		Warning:    lipgloss.Color("#c18401"),
		Error:      lipgloss.Color("#e45649"),
		Border:     lipgloss.Color("#d3d3d3"),
		Focus:      lipgloss.Color("#4078f2"),
		Selection:  lipgloss.Color("#e5e5e6"),
	},
}

// Current holds the active palette
var Current = themes[DefaultTheme]

// Lookup returns the palette registered under name
func Lookup(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

// ThemeNames lists the registered theme names in order
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Use makes the named palette current. Unknown names keep the current one.
func Use(name string) bool {
	p, ok := themes[name]
	if ok {
		Current = p
	}
	return ok
}

// MaxWidth caps the content width on wide terminals
const MaxWidth = 80

// ContentWidth returns min(terminalWidth, MaxWidth)
func ContentWidth(terminalWidth int) int {
	return min(terminalWidth, MaxWidth)
}

// CenterView centers content horizontally when the terminal is wider than MaxWidth
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Center, lipgloss.Top, content)
}

// Styles holds the styles the views render with
type Styles struct {
	Title      lipgloss.Style
	TitleMuted lipgloss.Style
	FormLabel  lipgloss.Style

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style

	// FilterBar also frames popups
	FilterBar lipgloss.Style

	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonPrimary lipgloss.Style

	Badge        lipgloss.Style
	TaskPriority lipgloss.Style
	TaskDone     lipgloss.Style

	Overdue  lipgloss.Style
	DueToday lipgloss.Style
	Repeat   lipgloss.Style

	Flash      lipgloss.Style
	FlashError lipgloss.Style

	Input        lipgloss.Style
	InputFocused lipgloss.Style

	Help    lipgloss.Style
	HelpKey lipgloss.Style
}

// NewStyles builds styles from the current palette
func NewStyles() *Styles {
	p := Current
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	boxed := func(border lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border)
	}

	return &Styles{
		Title:      fg(p.Primary).Bold(true),
		TitleMuted: fg(p.Muted),
		FormLabel:  fg(p.Text).Bold(true),

		ListItem:     fg(p.Text).Padding(0, 2),
		ListSelected: fg(p.Primary).Background(p.Selection).Padding(0, 2).Bold(true),

		FilterBar: boxed(p.Border).Padding(0, 1),

		Button:        boxed(p.Border).Foreground(p.Text).Padding(0, 2),
		ButtonFocused: boxed(p.Focus).Foreground(p.Primary).Padding(0, 2).Bold(true),
		ButtonPrimary: fg(p.Background).Background(p.Primary).Padding(0, 2).Bold(true),

		Badge:        fg(p.Badge).Bold(true),
		TaskPriority: fg(p.Warning).Bold(true),
		TaskDone:     fg(p.Muted).Strikethrough(true),

		Overdue:  fg(p.Error).Bold(true),
		DueToday: fg(p.Warning),
		Repeat:   fg(p.Accent),

		Flash:      fg(p.Success).Padding(0, 2),
		FlashError: fg(p.Error).Padding(0, 2),

		Input:        boxed(p.Border).Foreground(p.Text).Padding(0, 1),
		InputFocused: boxed(p.Focus).Foreground(p.Text).Padding(0, 1),

		Help:    fg(p.Muted).Padding(1, 2),
		HelpKey: fg(p.Primary).Bold(true),
	}
}
