// Package tui provides the Bubble Tea key drill.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typer/internal/generator"
	"github.com/verte-zerg/typer/internal/judge"
	"github.com/verte-zerg/typer/internal/layout"
	"github.com/verte-zerg/typer/internal/model"
	"github.com/verte-zerg/typer/internal/session"
	statsPkg "github.com/verte-zerg/typer/internal/stats"
)

const (
	frameInterval = 16 * time.Millisecond
	// Terminals report no key release, so one is synthesized after echoHold.
	echoHold = 120 * time.Millisecond
	leadIn   = 2 * time.Second
)

// Store is the persistence the drill needs.
type Store interface {
	InsertSession(ctx context.Context, stats model.SessionStats, chars []model.CharStats) (int64, error)
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
	GetWeakChars(ctx context.Context, window int, layout string) ([]model.CharAggregate, error)
}

type frameMsg time.Time

// releaseMsg ends the press numbered seq. A newer press of the same key
// makes it stale.
type releaseMsg struct {
	key layout.RawKey
	seq uint64
}

type keyMap struct {
	Quit    key.Binding
	Restart key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Restart, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
		Restart: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "restart"),
		),
	}
}

// Model implements the Bubble Tea drill UI.
type Model struct {
	config            model.Config
	store             Store
	gen               *generator.Generator
	resolver          layout.Resolver
	logger            *slog.Logger
	weakSet           map[rune]struct{}
	weakNoticePrinted bool
	now               func() time.Time

	width  int
	height int

	session   *session.Session
	startedAt time.Time
	saved     bool

	held     map[layout.RawKey]uint64
	pressSeq uint64

	keys keyMap
	help help.Model

	lastHPM float64
	lastAcc float64
	hasLast bool

	allHPM      float64
	allAcc      float64
	allHits     int
	allMisses   int
	allDuration int64
}

var (
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	nextStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	echoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.Color("#483D8B")).Bold(true)
	hitStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	missStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	markerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a drill model.
func NewModel(cfg model.Config, st Store, gen *generator.Generator, logger *slog.Logger, weakSet map[rune]struct{}, weakNoticePrinted bool) *Model {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	primary, err := layout.ParseLayout(cfg.Layout)
	if err != nil {
		logger.Warn("unknown layout, using latin", "layout", cfg.Layout)
	}
	m := &Model{
		config:            cfg,
		store:             st,
		gen:               gen,
		resolver:          layout.Resolver{Primary: primary},
		logger:            logger,
		weakSet:           weakSet,
		weakNoticePrinted: weakNoticePrinted,
		now:               time.Now,
		keys:              defaultKeyMap(),
		help:              help.New(),
	}
	if cfg.FocusWeak {
		gen.WithWeakChars(weakSet, cfg.WeakFactor)
	}
	m.resetSession()
	m.loadFooterStats()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.frame()
}

func (m *Model) frame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m *Model) elapsed(t time.Time) time.Duration {
	return t.Sub(m.startedAt)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case frameMsg:
		m.session.Tick(m.elapsed(time.Time(msg)))
		if m.session.Done() && !m.saved {
			m.finishSession()
			m.saved = true
		}
		if m.session.Settled() {
			m.resetSession()
		}
		return m, m.frame()
	case releaseMsg:
		if m.held[msg.key] != msg.seq {
			return m, nil
		}
		delete(m.held, msg.key)
		m.session.KeyUp(msg.key)
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Restart):
			m.resetSession()
			return m, nil
		}
		switch msg.Type {
		case tea.KeySpace:
			return m, m.handleRunes([]rune{' '})
		case tea.KeyRunes:
			return m, m.handleRunes(msg.Runes)
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

func (m *Model) handleRunes(runes []rune) tea.Cmd {
	now := m.elapsed(m.now())
	cmds := make([]tea.Cmd, 0, len(runes))
	for _, r := range runes {
		k := m.resolver.KeyFor(r)
		m.session.KeyDown(k, now)
		m.pressSeq++
		m.held[k] = m.pressSeq
		release := releaseMsg{key: k, seq: m.pressSeq}
		cmds = append(cmds, tea.Tick(echoHold, func(time.Time) tea.Msg {
			return release
		}))
	}
	return tea.Batch(cmds...)
}

// View implements tea.Model.
func (m *Model) View() string {
	width := m.width
	if width == 0 {
		width = 60
	}
	laneWidth := max(int(float64(width)*0.70), 10)
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderLane(laneWidth, m.session.Now()),
		m.renderJudgement(),
	)
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter() + "  " + m.help.View(m.keys)
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderJudgement() string {
	last, ok := m.session.Last()
	if !ok {
		return pendingStyle.Render(fmt.Sprintf("%d keys, get ready", m.session.Remaining()))
	}
	if last.Result.Hit() {
		return hitStyle.Render(fmt.Sprintf("PERFECT %s %+dms", last.Target.Upper(), last.Offset.Milliseconds()))
	}
	if label, ok := layout.Latin.Rune(last.Key); ok {
		return missStyle.Render(fmt.Sprintf("MISS %s (key %s)", last.Target.Upper(), strings.ToUpper(string(label))))
	}
	return missStyle.Render(fmt.Sprintf("MISS %s", last.Target.Upper()))
}

func (m *Model) renderFooter() string {
	hits, misses := m.session.Counts()
	segments := []string{fmt.Sprintf("Left %d · Hits %d · Misses %d", m.session.Remaining(), hits, misses)}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f HPM · %.1f%%", m.lastHPM, m.lastAcc*100))
	}
	segments = append(segments, fmt.Sprintf("All-time %.1f HPM · %.1f%%", m.allHPM, m.allAcc*100))
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	sessions, err := m.store.ListSessions(context.Background(), model.StatsConfig{Layout: m.resolver.Primary.String()})
	if err != nil {
		m.logger.Warn("failed to load session stats", "err", err)
		return
	}
	if len(sessions) == 0 {
		return
	}
	last := sessions[len(sessions)-1]
	m.lastHPM, m.lastAcc = statsPkg.SessionMetrics(last.Hits, last.Misses, last.DurationMs)
	m.hasLast = true

	for _, s := range sessions {
		m.allHits += s.Hits
		m.allMisses += s.Misses
		m.allDuration += s.DurationMs
	}
	m.recomputeAllTime()
}

func (m *Model) recomputeAllTime() {
	m.allHPM, m.allAcc = statsPkg.SessionMetrics(m.allHits, m.allMisses, m.allDuration)
}

func (m *Model) resetSession() {
	times := session.Schedule(m.config.Objects, leadIn, m.config.Interval)
	m.session = session.New(m.gen, times,
		session.WithWindow(m.config.Window),
		session.WithPreempt(m.config.Preempt),
		session.WithLogger(m.logger),
	)
	m.startedAt = m.now()
	m.saved = false
	m.held = map[layout.RawKey]uint64{}
}

func (m *Model) finishSession() {
	endedAt := m.now()
	// The lead-in before the first key accepts input is not play time.
	activeAt := m.startedAt.Add(m.session.ActiveFrom())
	hits, misses := m.session.Counts()
	window := m.config.Window
	if window <= 0 {
		window = judge.DefaultWindow
	}
	stats := model.SessionStats{
		StartedAt:  activeAt,
		EndedAt:    endedAt,
		Layout:     m.resolver.Primary.String(),
		Objects:    len(m.session.Objects()),
		IntervalMs: m.config.Interval.Milliseconds(),
		WindowMs:   window.Milliseconds(),
		Hits:       hits,
		Misses:     misses,
		DurationMs: endedAt.Sub(activeAt).Milliseconds(),
	}
	if m.store != nil {
		if _, err := m.store.InsertSession(context.Background(), stats, m.session.CharStats()); err != nil {
			m.logger.Error("failed to save session", "err", err)
		}
	}
	m.lastHPM, m.lastAcc = statsPkg.SessionMetrics(stats.Hits, stats.Misses, stats.DurationMs)
	m.hasLast = true
	m.allHits += stats.Hits
	m.allMisses += stats.Misses
	m.allDuration += stats.DurationMs
	m.recomputeAllTime()

	if m.config.FocusWeak {
		m.refreshWeakSet()
	}
}

func (m *Model) refreshWeakSet() {
	if m.store == nil {
		return
	}
	aggs, err := m.store.GetWeakChars(context.Background(), m.config.WeakWindow, m.resolver.Primary.String())
	if err != nil {
		m.logger.Warn("failed to load weak chars", "err", err)
		return
	}
	if len(aggs) == 0 {
		if !m.weakNoticePrinted {
			m.logger.Info("no stats available for weak-char focus yet; using uniform targets")
			m.weakNoticePrinted = true
		}
		m.weakSet = map[rune]struct{}{}
	} else {
		m.weakSet = statsPkg.SelectWeakChars(aggs, m.config.WeakTop)
	}
	m.gen.WithWeakChars(m.weakSet, m.config.WeakFactor)
}
