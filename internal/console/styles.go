package console

import "github.com/charmbracelet/lipgloss"

var (
	rose   = lipgloss.Color("#e11d48")
	gold   = lipgloss.Color("#ca8a04")
	green  = lipgloss.Color("#16a34a")
	muted  = lipgloss.Color("#71717a")
	border = lipgloss.Color("#3f3f46")
)

type styles struct {
	Header    lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Title     lipgloss.Style
	Muted     lipgloss.Style
	Selected  lipgloss.Style
	Pending   lipgloss.Style
	Approved  lipgloss.Style
	Featured  lipgloss.Style
	Error     lipgloss.Style
	Status    lipgloss.Style
	Box       lipgloss.Style
}

func newStyles() styles {
	return styles{
		Header: lipgloss.NewStyle().
			Background(rose).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),
		Tab: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 2),
		ActiveTab: lipgloss.NewStyle().
			Foreground(rose).
			Padding(0, 2).
			Bold(true).
			Underline(true),
		Title: lipgloss.NewStyle().
			Foreground(rose).
			Bold(true).
			MarginBottom(1),
		Muted: lipgloss.NewStyle().
			Foreground(muted),
		Selected: lipgloss.NewStyle().
			Foreground(rose).
			Bold(true),
		Pending: lipgloss.NewStyle().
			Foreground(muted).
			Italic(true),
		Approved: lipgloss.NewStyle().
			Foreground(green),
		Featured: lipgloss.NewStyle().
			Foreground(gold).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(rose).
			Bold(true),
		Status: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 2),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(1, 2),
	}
}
