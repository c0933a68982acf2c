// Package tui is the terminal rendition of the screening dashboard: one
// panel per rule with keyboard sliders, the shape line and the filtered
// table.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/turtacn/druglike/internal/application/screening"
	"github.com/turtacn/druglike/internal/domain/molecule"
)

// Screener is the part of the screening service the dashboard needs.
type Screener interface {
	Rules() []*screening.Rule
	Screen(ctx context.Context, name screening.RuleName, overrides screening.Cutoffs) (*screening.View, error)
}

const (
	barWidth       = 24
	tableHeight    = 8
	maxColumnWidth = 28
)

type panel struct {
	rule    *screening.Rule
	cutoffs screening.Cutoffs
	focus   int
	seq     int
	loading bool
	view    *screening.View
	err     error
	table   table.Model
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	ctx      context.Context
	svc      Screener
	keys     KeyMap
	help     help.Model
	theme    Theme
	panels   []*panel
	active   int
	width    int
	height   int
	showHelp bool
}

// Option configures a Model.
type Option func(*Model)

// WithTheme overrides the default theme.
func WithTheme(t Theme) Option {
	return func(m *Model) { m.theme = t }
}

// WithKeyMap overrides the default key bindings.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) { m.keys = k }
}

// WithCutoffs seeds a panel with user cutoffs instead of the rule defaults.
// Unknown rules are ignored.
func WithCutoffs(name screening.RuleName, c screening.Cutoffs) Option {
	return func(m *Model) {
		for _, p := range m.panels {
			if p.rule.Name != name {
				continue
			}
			for k, v := range c {
				if p.rule.Uses(k) {
					p.cutoffs[k] = v
				}
			}
		}
	}
}

// NewModel builds a dashboard with one panel per rule of svc.
func NewModel(ctx context.Context, svc Screener, opts ...Option) *Model {
	m := &Model{
		ctx:   ctx,
		svc:   svc,
		keys:  DefaultKeyMap(),
		help:  help.New(),
		theme: DefaultTheme,
	}
	for _, r := range svc.Rules() {
		m.panels = append(m.panels, newPanel(r))
	}
	for _, opt := range opts {
		opt(m)
	}
	if len(m.panels) > 0 {
		m.panels[0].table.Focus()
	}
	return m
}

func newPanel(r *screening.Rule) *panel {
	cols := make([]table.Column, 0, len(r.Kinds)+1)
	for _, c := range r.GridColumns() {
		if c == screening.ColumnImage {
			continue
		}
		cols = append(cols, table.Column{Title: c, Width: len(c) + 2})
	}
	return &panel{
		rule:    r,
		cutoffs: r.Defaults.Clone(),
		table: table.New(
			table.WithColumns(cols),
			table.WithHeight(tableHeight),
			table.WithFocused(false),
		),
	}
}

// Init screens every panel.
func (m *Model) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.panels))
	for i := range m.panels {
		cmds = append(cmds, m.screen(i))
	}
	return tea.Batch(cmds...)
}

// screen re-runs the filter for panel i with its current cutoffs.
func (m *Model) screen(i int) tea.Cmd {
	p := m.panels[i]
	p.seq++
	p.loading = true
	seq, name, cutoffs := p.seq, p.rule.Name, p.cutoffs.Clone()
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		v, err := svc.Screen(ctx, name, cutoffs)
		return viewLoadedMsg{panel: i, seq: seq, view: v, err: err}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case viewLoadedMsg:
		m.applyView(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) applyView(msg viewLoadedMsg) {
	if msg.panel < 0 || msg.panel >= len(m.panels) {
		return
	}
	p := m.panels[msg.panel]
	if msg.seq != p.seq {
		return
	}
	p.loading = false
	p.err = msg.err
	if msg.err != nil {
		return
	}
	p.view = msg.view
	grid := screening.BuildGrid(msg.view, "")

	cols := p.table.Columns()
	rows := make([]table.Row, 0, len(grid.Cells))
	for _, cell := range grid.Cells {
		for j, v := range cell.Values {
			if j < len(cols) && len(v)+2 > cols[j].Width {
				cols[j].Width = min(len(v)+2, maxColumnWidth)
			}
		}
		rows = append(rows, table.Row(cell.Values))
	}
	p.table.SetRows(nil)
	p.table.SetColumns(cols)
	p.table.SetRows(rows)
	p.table.GotoTop()
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	}
	if len(m.panels) == 0 {
		return m, nil
	}
	if m.failed() {
		if key.Matches(msg, m.keys.Retry) {
			return m, m.Init()
		}
		return m, tea.Quit
	}
	p := m.panels[m.active]

	switch {
	case key.Matches(msg, m.keys.NextPanel):
		m.focusPanel((m.active + 1) % len(m.panels))
	case key.Matches(msg, m.keys.PrevPanel):
		m.focusPanel((m.active - 1 + len(m.panels)) % len(m.panels))
	case key.Matches(msg, m.keys.Up):
		p.focus = (p.focus - 1 + len(p.rule.Kinds)) % len(p.rule.Kinds)
	case key.Matches(msg, m.keys.Down):
		p.focus = (p.focus + 1) % len(p.rule.Kinds)
	case key.Matches(msg, m.keys.Decrease):
		return m, m.adjust(-1)
	case key.Matches(msg, m.keys.Increase):
		return m, m.adjust(1)
	case key.Matches(msg, m.keys.Reset):
		p.cutoffs = p.rule.Defaults.Clone()
		return m, m.screen(m.active)
	case key.Matches(msg, m.keys.Retry):
		return m, m.Init()
	case key.Matches(msg, m.keys.PageUp):
		p.table.MoveUp(tableHeight)
	case key.Matches(msg, m.keys.PageDown):
		p.table.MoveDown(tableHeight)
	}
	return m, nil
}

// failed reports whether no panel has ever loaded and at least one load
// failed.  In that state any key but retry quits.
func (m *Model) failed() bool {
	anyErr := false
	for _, p := range m.panels {
		if p.view != nil {
			return false
		}
		if p.err != nil {
			anyErr = true
		}
	}
	return anyErr
}

func (m *Model) focusPanel(i int) {
	m.panels[m.active].table.Blur()
	m.active = i
	m.panels[m.active].table.Focus()
}

// adjust moves the focused slider of the active panel by dir steps, clamped
// to its range.  Only the active panel is re-screened.
func (m *Model) adjust(dir float64) tea.Cmd {
	p := m.panels[m.active]
	k := p.rule.Kinds[p.focus]
	rng := screening.Ranges[k]
	next := math.Max(rng.Min, math.Min(rng.Max, p.cutoffs[k]+dir*rng.Step))
	if next == p.cutoffs[k] {
		return nil
	}
	p.cutoffs[k] = next
	return m.screen(m.active)
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Drug-likeness screening"))
	b.WriteString("\n\n")
	if len(m.panels) == 0 {
		b.WriteString(m.theme.Muted.Render("no rules configured"))
		b.WriteString("\n")
	}
	for i, p := range m.panels {
		style := m.theme.Panel
		if i == m.active {
			style = m.theme.ActivePanel
		}
		b.WriteString(style.Render(m.renderPanel(p, i == m.active)))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderPanel(p *panel, active bool) string {
	var b strings.Builder
	b.WriteString(m.theme.Subtitle.Render(p.rule.Title))
	b.WriteString("\n")
	b.WriteString(m.theme.Muted.Render(p.rule.Description))
	b.WriteString("\n\n")

	for i, k := range p.rule.Kinds {
		line := m.renderSlider(k, p.cutoffs[k])
		if active && i == p.focus {
			line = m.theme.ActiveRow.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case p.err != nil:
		b.WriteString(m.theme.Error.Render(errorLine(p.err)))
		b.WriteString("\n")
		b.WriteString(m.theme.Muted.Render("press R to retry or any other key to quit"))
	case p.view == nil:
		b.WriteString(m.theme.Muted.Render("loading dataset..."))
	default:
		shape := "Shape: " + p.view.ShapeString()
		if p.loading {
			shape += " (updating)"
		}
		b.WriteString(m.theme.Shape.Render(shape))
		b.WriteString("\n")
		b.WriteString(p.table.View())
	}
	return b.String()
}

func (m *Model) renderSlider(k molecule.Kind, v float64) string {
	rng := screening.Ranges[k]
	filled := 0
	if span := rng.Max - rng.Min; span > 0 {
		filled = int(math.Round((v - rng.Min) / span * barWidth))
	}
	filled = max(0, min(barWidth, filled))
	bar := m.theme.BarFull.Render(strings.Repeat("█", filled)) +
		m.theme.BarEmpty.Render(strings.Repeat("░", barWidth-filled))
	label := lipgloss.NewStyle().Width(18).Render(screening.Labels[k])
	return fmt.Sprintf("%s %s < %g", label, bar, v)
}

func errorLine(err error) string {
	return "Error: " + err.Error()
}
