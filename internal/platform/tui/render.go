package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/flagquest/internal/catalog"
	"github.com/vovakirdan/flagquest/internal/economy"
	"github.com/vovakirdan/flagquest/internal/progress"
)

// DefaultFPS is the redraw rate of the question screen.
const DefaultFPS = 20

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	coinStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	heartStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	starStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	lockedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	messageStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("214"))
)

// centerText centers text within given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}

// starsString renders earned stars out of the per-level maximum.
func starsString(n int) string {
	n = progress.ClampStars(n)
	return starStyle.Render(strings.Repeat("★", n)) +
		dimStyle.Render(strings.Repeat("☆", progress.MaxStarsPerLevel-n))
}

// heartsString renders the lives bar.
func heartsString(h economy.Hearts) string {
	full := max(min(h.Current, h.Max), 0)
	return heartStyle.Render(strings.Repeat("♥", full)) +
		dimStyle.Render(strings.Repeat("♡", max(h.Max-full, 0)))
}

// mistakesString renders the mistakes left in a run.
func mistakesString(mistakes, limit int) string {
	left := max(limit-mistakes, 0)
	return badStyle.Render(strings.Repeat("✗", min(mistakes, limit))) +
		dimStyle.Render(strings.Repeat("·", left))
}

// flagEmoji turns a two-letter country code into its regional-indicator
// pair. Other codes are shown upper-cased.
func flagEmoji(code string) string {
	code = strings.ToUpper(code)
	if len(code) != 2 || code[0] < 'A' || code[0] > 'Z' || code[1] < 'A' || code[1] > 'Z' {
		return code
	}
	const base = 0x1F1E6
	return string([]rune{base + rune(code[0]-'A'), base + rune(code[1]-'A')})
}

// flagClues describes a flag without naming it.
func flagClues(f catalog.Flag) string {
	var parts []string
	if len(f.Colors) > 0 {
		parts = append(parts, "colors: "+strings.Join(f.Colors, ", "))
	}
	if f.Region != "" {
		parts = append(parts, "region: "+f.Region)
	}
	return strings.Join(parts, "  •  ")
}

// formatCountdown renders remaining question time.
func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%4.1fs", d.Seconds())
}

// timerBar renders a proportional countdown bar.
func timerBar(remaining, total time.Duration, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := int(float64(width) * float64(remaining) / float64(total))
	filled = max(min(filled, width), 0)
	style := goodStyle
	if remaining < total/3 {
		style = badStyle
	}
	return style.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
}

// hintsString renders the hint inventory next to the keys that use it.
func hintsString(h economy.Hints, keys QuizKeyMap) string {
	bindings := map[economy.HintKind]string{
		economy.HintRemoveTwo: keys.RemoveTwo.Help().Key,
		economy.HintAutoPass:  keys.AutoPass.Help().Key,
		economy.HintPause:     keys.Pause.Help().Key,
	}
	parts := make([]string, 0, len(economy.HintKinds()))
	for _, kind := range economy.HintKinds() {
		parts = append(parts, fmt.Sprintf("[%s] %s ×%d", bindings[kind], kind.Title(), h.Count(kind)))
	}
	return strings.Join(parts, "   ")
}
