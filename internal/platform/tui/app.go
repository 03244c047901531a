package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/flagquest/internal/levels"
	"github.com/vovakirdan/flagquest/internal/progress"
	"github.com/vovakirdan/flagquest/internal/reconcile"
	"github.com/vovakirdan/flagquest/internal/session"
)

// AppOptions configures the top-level model.
type AppOptions struct {
	Service  *session.Service
	Board    Leaderboard // Optional; the scoreboard shows an empty table without it
	Identity reconcile.Identity
	Mode     progress.Mode
	FPS      int
	Seed     int64
	Width    int
	Height   int
}

type screen int

const (
	screenMenu screen = iota
	screenQuiz
	screenScores
)

// activeSession remembers the session in play so it can be abandoned when
// the program exits underneath it.
type activeSession struct {
	mu   sync.Mutex
	sess *session.Session
}

func (a *activeSession) set(s *session.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sess = s
}

// close abandons the session in play, if any.
func (a *activeSession) close(ctx context.Context) {
	a.mu.Lock()
	s := a.sess
	a.sess = nil
	a.mu.Unlock()
	if s != nil {
		s.Close(ctx)
	}
}

// AppModel manages the full flow: menu -> quiz -> menu, plus the scoreboard.
// It is the top-level model for both local and SSH play.
type AppModel struct {
	ctx    context.Context
	opts   AppOptions
	rng    levels.Rand
	active *activeSession

	screen   screen
	menu     MenuModel
	quiz     *QuizModel
	scores   *ScoreboardModel
	quitting bool
}

// NewAppModel creates the top-level model.
func NewAppModel(ctx context.Context, opts AppOptions) AppModel {
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	rng := levels.NewRand(opts.Seed)
	return AppModel{
		ctx:    ctx,
		opts:   opts,
		rng:    rng,
		active: &activeSession{},
		menu:   NewMenuModel(ctx, opts.Service, opts.Identity, opts.Mode, rng, opts.Width, opts.Height),
	}
}

// Init initializes the app.
func (m AppModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Close abandons any session still in play. Call it after the program exits.
func (m AppModel) Close(ctx context.Context) {
	m.active.close(ctx)
}

// Update handles messages for the current screen.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.opts.Width = wsm.Width
		m.opts.Height = wsm.Height
	}

	switch m.screen {
	case screenQuiz:
		return m.updateQuiz(msg)
	case screenScores:
		return m.updateScores(msg)
	default:
		return m.updateMenu(msg)
	}
}

// updateMenu handles updates when in menu mode.
func (m AppModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.menu.WantsScoreboard() {
		ids := make([]int, 0, len(m.opts.Service.Levels()))
		for _, def := range m.opts.Service.Levels() {
			ids = append(ids, def.ID)
		}
		start := 1
		if len(m.menu.items) > 0 {
			start = m.menu.items[m.menu.cursor].ID
		}
		sb := NewScoreboardModel(m.ctx, m.opts.Board, ids, start, m.opts.Identity.UserID, m.opts.Width, m.opts.Height)
		m.scores = &sb
		m.screen = screenScores
		m.menu.openScoreboard = false
		return m, sb.Init()
	}

	if level := m.menu.Selected(); level > 0 {
		m.menu.selected = 0
		sess, err := m.opts.Service.Start(m.ctx, m.opts.Identity, level, m.menu.Mode())
		if err != nil {
			m.menu.message = err.Error()
			return m, nil
		}
		m.active.set(sess)
		quiz := NewQuizModel(m.ctx, sess, m.opts.Service.Reconciler(), m.opts.FPS, m.opts.Width, m.opts.Height)
		m.quiz = &quiz
		m.screen = screenQuiz
		return m, quiz.Init()
	}

	return m, cmd
}

// updateQuiz handles updates when a session is in play.
func (m AppModel) updateQuiz(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.quiz.Update(msg)
	if quizModel, ok := newModel.(QuizModel); ok {
		m.quiz = &quizModel
	}

	if m.quiz.IsQuitting() {
		m.active.close(m.ctx)
		m.quitting = true
		return m, tea.Quit
	}

	if m.quiz.BackToMenu() {
		m.active.close(m.ctx)
		m.quiz = nil
		m.backToMenu()
		return m, m.menu.Init()
	}

	return m, cmd
}

// updateScores handles updates when the scoreboard is open.
func (m AppModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.scores.Update(msg)
	if sb, ok := newModel.(ScoreboardModel); ok {
		m.scores = &sb
	}

	if m.scores.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.scores.GoingBack() {
		m.scores = nil
		m.backToMenu()
		return m, m.menu.Init()
	}

	return m, cmd
}

// backToMenu rebuilds the menu so it shows fresh progress, keeping the mode
// and cursor.
func (m *AppModel) backToMenu() {
	cursor := m.menu.cursor
	m.menu = NewMenuModel(m.ctx, m.opts.Service, m.opts.Identity, m.menu.Mode(), m.rng, m.opts.Width, m.opts.Height)
	if cursor < len(m.menu.items) && m.menu.items[cursor].Unlocked {
		m.menu.cursor = cursor
	}
	m.screen = screenMenu
}

// View renders the current view.
func (m AppModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenQuiz:
		return m.quiz.View()
	case screenScores:
		return m.scores.View()
	default:
		return m.menu.View()
	}
}

// Run starts the Bubble Tea program on the local terminal and abandons any
// unfinished session when it exits.
func Run(ctx context.Context, opts AppOptions) error {
	model := NewAppModel(ctx, opts)
	defer model.Close(context.WithoutCancel(ctx))

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}
