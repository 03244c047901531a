package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/flagquest/internal/economy"
	"github.com/vovakirdan/flagquest/internal/levels"
	"github.com/vovakirdan/flagquest/internal/progress"
	"github.com/vovakirdan/flagquest/internal/reconcile"
	"github.com/vovakirdan/flagquest/internal/session"
)

// MenuModel is the Bubble Tea model for the level picker.
type MenuModel struct {
	ctx   context.Context
	svc   *session.Service
	id    reconcile.Identity
	rng   levels.Rand
	mode  progress.Mode
	items []session.LevelStatus

	coins  int
	hearts economy.Hearts

	cursor  int
	width   int
	height  int
	keys    MenuKeyMap
	help    help.Model
	message string

	quitting       bool
	selected       int  // Level id chosen by the player, 0 if none
	openScoreboard bool // True if user pressed Tab for scoreboard
}

// NewMenuModel creates a new menu model positioned on the highest unlocked level.
func NewMenuModel(ctx context.Context, svc *session.Service, id reconcile.Identity, mode progress.Mode, rng levels.Rand, width, height int) MenuModel {
	m := MenuModel{
		ctx:    ctx,
		svc:    svc,
		id:     id,
		rng:    rng,
		mode:   mode,
		width:  width,
		height: height,
		keys:   DefaultMenuKeyMap(),
		help:   help.New(),
	}
	m.refresh()
	for i, it := range m.items {
		if it.Unlocked {
			m.cursor = i
		}
	}
	return m
}

// refresh reloads levels and wallet state.
func (m *MenuModel) refresh() {
	rec := m.svc.Reconciler()
	m.items = m.svc.Overview(m.ctx, m.id, m.mode)
	m.coins = rec.Coins(m.ctx, m.id)
	m.hearts = rec.Hearts(m.id)
	if m.cursor >= len(m.items) {
		m.cursor = max(len(m.items)-1, 0)
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	row := progress.BatchSize

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Left):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Right):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Up):
		if m.cursor-row >= 0 {
			m.cursor -= row
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor+row < len(m.items) {
			m.cursor += row
		}

	case key.Matches(msg, m.keys.Mode):
		m.mode = nextMode(m.mode)
		m.refresh()

	case key.Matches(msg, m.keys.Spin):
		res, err := m.svc.Reconciler().DailySpin(m.ctx, m.id, m.rng)
		switch {
		case errors.Is(err, reconcile.ErrSpinNotReady):
			m.message = fmt.Sprintf("Next spin at %s", res.NextAt.Format("Jan 02 15:04"))
		case err != nil:
			m.message = err.Error()
		default:
			m.message = fmt.Sprintf("Daily spin: +%d coins", res.Prize)
			m.coins = res.Balance
		}

	case key.Matches(msg, m.keys.Scores):
		m.openScoreboard = true

	case key.Matches(msg, m.keys.Select):
		m.selectCurrent()
	}

	return m, nil
}

func (m *MenuModel) selectCurrent() {
	if len(m.items) == 0 {
		return
	}
	it := m.items[m.cursor]
	if !it.Unlocked {
		req := it.Requirement
		m.message = fmt.Sprintf("Levels %d-%d need %d more stars",
			req.FirstLevel, req.LastLevel, req.Needed)
		return
	}
	if m.hearts.Current <= 0 {
		m.message = fmt.Sprintf("No hearts left, next one in %s",
			m.svc.Reconciler().NextHeartIn(m.id).Round(time.Second))
		return
	}
	m.selected = it.ID
}

func nextMode(mode progress.Mode) progress.Mode {
	modes := progress.Modes()
	for i, md := range modes {
		if md == mode {
			return modes[(i+1)%len(modes)]
		}
	}
	return modes[0]
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("  F L A G Q U E S T  "), m.width))
	b.WriteString("\n\n")

	status := fmt.Sprintf("%s   %s   %s",
		titleStyle.Render(m.mode.Title()),
		coinStyle.Render(fmt.Sprintf("◉ %d", m.coins)),
		heartsString(m.hearts))
	b.WriteString(centerText(status, m.width))
	b.WriteString("\n\n")

	b.WriteString(m.renderGrid())
	b.WriteString("\n")

	if m.message != "" {
		b.WriteString(centerText(messageStyle.Render(m.message), m.width))
		b.WriteString("\n")
	} else if len(m.items) > 0 && !m.items[m.cursor].Unlocked {
		req := m.items[m.cursor].Requirement
		line := fmt.Sprintf("Levels %d-%d unlock at %d stars (%d to go)", req.FirstLevel, req.LastLevel, req.Required, req.Needed)
		b.WriteString(centerText(dimStyle.Render(line), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(helpStyle.Render(m.help.View(m.keys)), m.width))
	b.WriteString("\n")

	return b.String()
}

// renderGrid lays out one row per unlock batch.
func (m MenuModel) renderGrid() string {
	var rows []string
	for start := 0; start < len(m.items); start += progress.BatchSize {
		end := min(start+progress.BatchSize, len(m.items))
		cells := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cells = append(cells, m.renderCell(i))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	grid := lipgloss.JoinVertical(lipgloss.Left, rows...)

	var b strings.Builder
	for _, line := range strings.Split(grid, "\n") {
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}
	return b.String()
}

func (m MenuModel) renderCell(i int) string {
	it := m.items[i]
	label := fmt.Sprintf("%2d ", it.ID)
	var body string
	if it.Unlocked {
		body = label + starsString(it.Stars)
	} else {
		body = lockedStyle.Render(label + "  ⌂  ")
	}
	cell := lipgloss.NewStyle().Padding(0, 1)
	if i == m.cursor {
		return cell.Inherit(cursorStyle).Render(body)
	}
	return cell.Render(body)
}

// Selected returns the chosen level id, or 0 if none selected.
func (m MenuModel) Selected() int {
	return m.selected
}

// Mode returns the mode currently shown.
func (m MenuModel) Mode() progress.Mode {
	return m.mode
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested scoreboard.
func (m MenuModel) WantsScoreboard() bool {
	return m.openScoreboard
}
