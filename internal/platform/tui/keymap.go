package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/flagquest/internal/economy"
)

// QuizKeyMap defines the key bindings for the question screen.
type QuizKeyMap struct {
	Answers   []key.Binding // One per option slot, in display order
	RemoveTwo key.Binding
	AutoPass  key.Binding
	Pause     key.Binding
	Back      key.Binding
	Quit      key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k QuizKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.RemoveTwo, k.AutoPass, k.Pause, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k QuizKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		k.Answers,
		{k.RemoveTwo, k.AutoPass, k.Pause},
		{k.Back, k.Quit},
	}
}

// DefaultQuizKeyMap returns default key bindings.
func DefaultQuizKeyMap() QuizKeyMap {
	return QuizKeyMap{
		Answers: []key.Binding{
			key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "option 1")),
			key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "option 2")),
			key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "option 3")),
			key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "option 4")),
		},
		RemoveTwo: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove two"),
		),
		AutoPass: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "auto pass"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause timer"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "give up"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// AnswerSlot returns the option index a key selects, or -1.
func (k QuizKeyMap) AnswerSlot(msg tea.KeyMsg) int {
	for i, b := range k.Answers {
		if key.Matches(msg, b) {
			return i
		}
	}
	return -1
}

// HintFor returns the hint a key triggers.
func (k QuizKeyMap) HintFor(msg tea.KeyMsg) (economy.HintKind, bool) {
	switch {
	case key.Matches(msg, k.RemoveTwo):
		return economy.HintRemoveTwo, true
	case key.Matches(msg, k.AutoPass):
		return economy.HintAutoPass, true
	case key.Matches(msg, k.Pause):
		return economy.HintPause, true
	}
	return "", false
}

// MenuKeyMap defines the key bindings for the level picker.
type MenuKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Select key.Binding
	Mode   key.Binding
	Scores key.Binding
	Spin   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k MenuKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Mode, k.Scores, k.Spin, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k MenuKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Select, k.Mode, k.Scores, k.Spin},
		{k.Quit},
	}
}

// DefaultMenuKeyMap returns default key bindings.
func DefaultMenuKeyMap() MenuKeyMap {
	return MenuKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "w"),
			key.WithHelp("up/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "s"),
			key.WithHelp("down/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left/h", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right/l", "right"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "play"),
		),
		Mode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "switch mode"),
		),
		Scores: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "scores"),
		),
		Spin: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "daily spin"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
