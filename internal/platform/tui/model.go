package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/flagquest/internal/economy"
	"github.com/vovakirdan/flagquest/internal/reconcile"
	"github.com/vovakirdan/flagquest/internal/run"
	"github.com/vovakirdan/flagquest/internal/session"
)

// QuizModel is the Bubble Tea model for one play session.
type QuizModel struct {
	ctx   context.Context
	sess  *session.Session
	fps   int
	keys  QuizKeyMap
	help  help.Model
	snap  run.Snapshot
	hints economy.Hints

	width   int
	height  int
	message string
	summary *session.Summary

	quitting   bool
	backToMenu bool
}

// NewQuizModel creates a question screen for a started session.
func NewQuizModel(ctx context.Context, sess *session.Session, rec *reconcile.Reconciler, fps, width, height int) QuizModel {
	m := QuizModel{
		ctx:    ctx,
		sess:   sess,
		fps:    fps,
		keys:   DefaultQuizKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.help.Width = width
	id := sess.Identity()
	m.hints = rec.Hints(id)
	if !rec.HintPopupSeen(id) {
		m.message = "Hints: " + hintsString(m.hints, m.keys)
		rec.MarkHintPopupSeen(id)
	}
	m.sync()
	return m
}

// Init starts the session clock and the redraw loop.
func (m QuizModel) Init() tea.Cmd {
	m.sess.StartCountdown(m.ctx, nil)
	return tickCmd(m.fps)
}

// Update handles messages.
func (m QuizModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		m.sync()
		if m.summary != nil {
			return m, nil
		}
		return m, tickCmd(m.fps)
	}
	return m, nil
}

// sync copies the session state into the model.
func (m *QuizModel) sync() {
	m.snap = m.sess.Snapshot()
	if sum, ok := m.sess.Summary(); ok {
		m.summary = &sum
	}
}

// handleKey processes keyboard input.
func (m QuizModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.sess.Abandon(m.ctx)
		m.quitting = true
		return m, tea.Quit
	}

	if m.summary != nil {
		if key.Matches(msg, m.keys.Back) || msg.String() == "enter" || msg.String() == " " {
			m.backToMenu = true
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Back) {
		if !m.sess.Abandon(m.ctx) {
			// Nothing answered yet: leaving is free.
			m.backToMenu = true
			return m, nil
		}
		m.sync()
		return m, nil
	}

	if slot := m.keys.AnswerSlot(msg); slot >= 0 {
		m.answer(slot)
		m.sync()
		return m, nil
	}

	if kind, ok := m.keys.HintFor(msg); ok {
		m.useHint(kind)
		m.sync()
	}
	return m, nil
}

func (m *QuizModel) answer(slot int) {
	opts := m.snap.Question.Options
	if slot >= len(opts) {
		return
	}
	res, err := m.sess.Answer(m.ctx, opts[slot])
	switch {
	case errors.Is(err, run.ErrInputLocked), errors.Is(err, run.ErrNotPlaying):
		return
	case errors.Is(err, run.ErrAlreadyTried):
		m.message = "Already tried that one"
	case errors.Is(err, run.ErrUnknownAnswer):
		m.message = "That option was removed"
	case err != nil:
		m.message = err.Error()
	case res.Correct && res.Points > 0:
		m.message = fmt.Sprintf("Correct! +%d", res.Points)
	case res.Correct:
		m.message = "Correct!"
	default:
		m.message = "Wrong!"
	}
}

func (m *QuizModel) useHint(kind economy.HintKind) {
	out, err := m.sess.UseHint(m.ctx, kind)
	switch {
	case errors.Is(err, economy.ErrNoHint):
		m.message = fmt.Sprintf("No %s hints left", kind.Title())
		return
	case errors.Is(err, run.ErrHintUnavailable):
		m.message = fmt.Sprintf("%s is not available now", kind.Title())
		return
	case errors.Is(err, run.ErrInputLocked), errors.Is(err, run.ErrNotPlaying):
		return
	case err != nil:
		m.message = err.Error()
		return
	}
	m.hints = out.Hints
	m.message = kind.Title() + " used"
}

// View renders the question or the summary.
func (m QuizModel) View() string {
	if m.quitting {
		return ""
	}
	if m.summary != nil {
		return m.renderSummary(*m.summary)
	}
	return m.renderQuestion()
}

func (m QuizModel) renderQuestion() string {
	s := m.snap
	var b strings.Builder

	header := fmt.Sprintf("Level %d  •  %s  •  Question %d/%d", s.LevelID, s.Mode.Title(), min(s.Index+1, s.Total), s.Total)
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render(header), m.width))
	b.WriteString("\n\n")

	status := "Mistakes " + mistakesString(s.Mistakes, run.MaxMistakes)
	if s.Mode.Timed() {
		status += fmt.Sprintf("   Score %d", s.Score)
	}
	b.WriteString(centerText(status, m.width))
	b.WriteString("\n")

	if s.Mode.Timed() {
		timer := timerBar(s.Remaining, m.sess.Run().Timing().Question, 30) + " " + formatCountdown(s.Remaining)
		if s.Paused {
			timer += "  " + messageStyle.Render("PAUSED")
		}
		b.WriteString(centerText(timer, m.width))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	flag := s.Question.Correct
	card := titleStyle.Render(flagEmoji(flag.Code))
	if clues := flagClues(flag); clues != "" {
		card += "\n" + dimStyle.Render(clues)
	}
	for _, line := range strings.Split(panelStyle.Render(card), "\n") {
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	wrong := toSet(s.WrongShown)
	removed := toSet(s.Removed)
	for i, opt := range s.Question.Options {
		line := fmt.Sprintf("%d. %s", i+1, opt)
		switch {
		case removed[opt]:
			line = lockedStyle.Render(fmt.Sprintf("%d. ─", i+1))
		case wrong[opt]:
			line = badStyle.Strikethrough(true).Render(line)
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.message != "" {
		b.WriteString(centerText(messageStyle.Render(m.message), m.width))
		b.WriteString("\n")
	}
	b.WriteString(centerText(dimStyle.Render(hintsString(m.hints, m.keys)), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(helpStyle.Render(m.help.View(m.keys)), m.width))
	b.WriteString("\n")
	return b.String()
}

func (m QuizModel) renderSummary(sum session.Summary) string {
	var b strings.Builder

	title := "LEVEL COMPLETE"
	style := goodStyle
	if sum.Outcome != run.Completed {
		title = "LEVEL FAILED"
		style = badStyle
	}
	b.WriteString("\n")
	b.WriteString(centerText(style.Bold(true).Render(title), m.width))
	b.WriteString("\n\n")

	lines := []string{
		fmt.Sprintf("Level %d  •  %s", sum.LevelID, sum.Mode.Title()),
		"Stars " + starsString(sum.Stars) + "   Best " + starsString(sum.BestStars),
		fmt.Sprintf("Mistakes %d", sum.Mistakes),
	}
	if sum.Mode.Timed() {
		lines = append(lines, fmt.Sprintf("Score %d", sum.Score))
	}
	if sum.FirstClear {
		lines = append(lines, goodStyle.Render("First clear!"))
	}
	if sum.Reward > 0 {
		lines = append(lines, coinStyle.Render(fmt.Sprintf("+%d coins (balance %d)", sum.Reward, sum.Coins)))
	}
	if sum.HeartLost {
		lines = append(lines, heartStyle.Render("-1 heart"))
	}
	if sum.Submitted {
		lines = append(lines, dimStyle.Render("Result submitted to the leaderboard"))
	}
	for _, line := range strings.Split(panelStyle.Render(strings.Join(lines, "\n")), "\n") {
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(helpStyle.Render("enter: back to levels  •  q: quit"), m.width))
	b.WriteString("\n")
	return b.String()
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, it := range items {
		out[it] = true
	}
	return out
}

// IsQuitting returns true if user requested to quit entirely.
func (m QuizModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m QuizModel) BackToMenu() bool {
	return m.backToMenu
}
