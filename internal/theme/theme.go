package theme

import "github.com/charmbracelet/lipgloss"

// KindColors colors carets and messages by diagnostic kind.
type KindColors struct {
	Scan    lipgloss.Color
	Parse   lipgloss.Color
	Runtime lipgloss.Color
	Type    lipgloss.Color
}

type Theme struct {
	Gutter  lipgloss.Style
	Source  lipgloss.Style
	Caret   lipgloss.Style
	Message lipgloss.Style
	Prompt  lipgloss.Style
	Input   lipgloss.Style
	Output  lipgloss.Style
	Hint    lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Frame   lipgloss.Style
	Header  lipgloss.Style
	Kinds   KindColors
	Syntax  string
}

func DefaultTheme() Theme {
	accent := lipgloss.Color("#7D56F4")

	return Theme{
		Gutter:  lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6A86")),
		Source:  lipgloss.NewStyle().Foreground(lipgloss.Color("#E6E1FF")),
		Caret:   lipgloss.NewStyle().Bold(true),
		Message: lipgloss.NewStyle().Bold(true),
		Prompt:  lipgloss.NewStyle().Foreground(accent).Bold(true),
		Input:   lipgloss.NewStyle().Foreground(lipgloss.Color("#EAEAEA")),
		Output:  lipgloss.NewStyle().Foreground(lipgloss.Color("#D1CFF6")),
		Hint:    lipgloss.NewStyle().Foreground(lipgloss.Color("#5E5A72")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6E6E")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#6EF17E")),
		Frame: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#403B59")),
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1A1020")).
			Background(lipgloss.Color("#FBC859")).
			Bold(true).
			Padding(0, 1),
		Kinds: KindColors{
			Scan:    lipgloss.Color("#FF8B39"),
			Parse:   lipgloss.Color("#FFD46A"),
			Runtime: lipgloss.Color("#FF6E6E"),
			Type:    lipgloss.Color("#F38BA8"),
		},
		Syntax: "monokai",
	}
}

// MonoTheme keeps emphasis but drops every color.
func MonoTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Gutter:  plain.Faint(true),
		Source:  plain,
		Caret:   plain.Bold(true),
		Message: plain.Bold(true),
		Prompt:  plain.Bold(true),
		Input:   plain,
		Output:  plain,
		Hint:    plain.Faint(true),
		Error:   plain.Bold(true),
		Success: plain,
		Frame:   plain.BorderStyle(lipgloss.NormalBorder()),
		Header:  plain.Bold(true).Reverse(true).Padding(0, 1),
		Syntax:  "bw",
	}
}
