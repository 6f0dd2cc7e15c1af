package tui

import "github.com/charmbracelet/lipgloss"

// Color palette - clean, high-contrast scheme for the console.
var (
	Accent       = lipgloss.Color("#00D4FF") // Cyan
	AccentBright = lipgloss.Color("#7DF9FF")
	AccentDim    = lipgloss.Color("#0E7490")

	Green = lipgloss.Color("#10B981")
	Red   = lipgloss.Color("#EF4444")
	Amber = lipgloss.Color("#F59E0B")
	Blue  = lipgloss.Color("#3B82F6")

	Text      = lipgloss.Color("#E5E7EB")
	TextMuted = lipgloss.Color("#9CA3AF")
	TextDim   = lipgloss.Color("#6B7280")

	Border    = lipgloss.Color("#4B5563")
	BorderDim = lipgloss.Color("#374151")

	BgSurface  = lipgloss.Color("#1F2937")
	BgSelected = lipgloss.Color("#2D3748")
)

var (
	// TitleStyle is the per-view title style.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Accent)

	// SubtitleStyle for secondary headings next to the title.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	// SectionStyle for labeled sub-sections inside a view.
	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentBright)

	// CursorStyle for the selection cursor.
	CursorStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	// HelpStyle for the key-hint footer line.
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextDim)

	// HelpKeyStyle for keyboard shortcut keys inside help lines.
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	// CardBorder wraps metric cards.
	CardBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderDim).
			Padding(0, 1)

	// PanelBorder wraps the main content pane.
	PanelBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Padding(0, 1)

	// SidebarBorder wraps the navigation sidebar.
	SidebarBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1)

	// TableHeaderStyle for tabular listings.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Accent)

	// InputLabelStyle for form field labels.
	InputLabelStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	// FocusedLabelStyle for the focused form field label.
	FocusedLabelStyle = lipgloss.NewStyle().
				Foreground(Accent).
				Bold(true)
)

// Status badges for pipeline states.
var (
	badgeDone = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(Green).
			Bold(true).
			Padding(0, 1)

	badgeFailed = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(Red).
			Bold(true).
			Padding(0, 1)

	badgeReview = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(Amber).
			Bold(true).
			Padding(0, 1)

	badgeProcessing = lipgloss.NewStyle().
			Foreground(Text).
			Background(BgSurface).
			Padding(0, 1)
)

// Helper functions for dynamic styling.

// Success returns success-colored text.
func Success(text string) string {
	return lipgloss.NewStyle().Foreground(Green).Render(text)
}

// ErrorText returns error-colored text.
func ErrorText(text string) string {
	return lipgloss.NewStyle().Foreground(Red).Render(text)
}

// Muted returns muted text.
func Muted(text string) string {
	return lipgloss.NewStyle().Foreground(TextMuted).Render(text)
}

// Dim returns dimmed text.
func Dim(text string) string {
	return lipgloss.NewStyle().Foreground(TextDim).Render(text)
}

// Primary returns accent-colored text.
func Primary(text string) string {
	return lipgloss.NewStyle().Foreground(Accent).Render(text)
}
