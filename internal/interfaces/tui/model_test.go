package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/druglike/internal/application/screening"
	"github.com/turtacn/druglike/internal/domain/compound"
	"github.com/turtacn/druglike/internal/domain/molecule"
	"github.com/turtacn/druglike/pkg/errors"
)

type staticSource struct {
	ds  *compound.Dataset
	err error
}

func (s *staticSource) Name() string { return "static" }

func (s *staticSource) Fetch(context.Context) (*compound.Dataset, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ds.Clone(), nil
}

func testDataset() *compound.Dataset {
	rows := [][2]string{
		{"ethanol", "CCO"},
		{"aspirin", "CC(=O)Oc1ccccc1C(=O)O"},
		{"benzene", "c1ccccc1"},
		{"paracetamol", "CC(=O)Nc1ccc(O)cc1"},
		{"ibuprofen", "CC(C)Cc1ccc(cc1)C(C)C(=O)O"},
	}
	records := make([]compound.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, compound.Record{
			Name:   r[0],
			SMILES: r[1],
			Fields: map[string]string{compound.ColumnName: r[0], compound.ColumnSMILES: r[1]},
		})
	}
	return compound.New([]string{compound.ColumnName, compound.ColumnSMILES}, records)
}

func newService(src screening.Source) *screening.Service {
	cache := screening.NewDatasetCache(src, nil, nil)
	return screening.NewService(cache, screening.NewAnnotator(molecule.NewEngine()), nil, nil)
}

// countingScreener records which rules were screened.
type countingScreener struct {
	*screening.Service
	mu    sync.Mutex
	calls map[screening.RuleName]int
}

func (c *countingScreener) Screen(ctx context.Context, name screening.RuleName, o screening.Cutoffs) (*screening.View, error) {
	c.mu.Lock()
	if c.calls == nil {
		c.calls = map[screening.RuleName]int{}
	}
	c.calls[name]++
	c.mu.Unlock()
	return c.Service.Screen(ctx, name, o)
}

// drain runs cmd and feeds every resulting message back into m.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			drain(t, m, c)
		}
	case nil:
	default:
		_, next := m.Update(msg)
		drain(t, m, next)
	}
}

func press(t *testing.T, m *Model, k tea.KeyMsg) {
	t.Helper()
	_, cmd := m.Update(k)
	drain(t, m, cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadedModel(t *testing.T, svc Screener, opts ...Option) *Model {
	t.Helper()
	m := NewModel(context.Background(), svc, opts...)
	drain(t, m, m.Init())
	return m
}

func TestModel_InitLoadsEveryPanel(t *testing.T) {
	m := loadedModel(t, newService(&staticSource{ds: testDataset()}))

	require.Len(t, m.panels, 2)
	for _, p := range m.panels {
		require.NotNil(t, p.view, p.rule.Name)
		assert.False(t, p.loading)
		assert.NoError(t, p.err)
	}
	assert.Equal(t, "(5, 7)", m.panels[0].view.ShapeString())
	assert.Equal(t, "(3, 7)", m.panels[1].view.ShapeString())

	out := m.View()
	assert.Contains(t, out, "Shape: (5, 7)")
	assert.Contains(t, out, "Shape: (3, 7)")
	assert.Contains(t, out, "Lipinski")
}

func TestModel_TableOmitsImageColumn(t *testing.T) {
	m := loadedModel(t, newService(&staticSource{ds: testDataset()}))

	p := m.panels[1]
	cols := p.table.Columns()
	require.Len(t, cols, 6)
	assert.Equal(t, screening.ColumnDisplayName, cols[0].Title)
	assert.Equal(t, string(molecule.KindRotatableBonds), cols[5].Title)

	rows := p.table.Rows()
	require.Len(t, rows, 3)
	names := []string{rows[0][0], rows[1][0], rows[2][0]}
	assert.Equal(t, []string{"ethanol", "benzene", "paracetamol"}, names)
}

func TestModel_SliderOnlyRescreensActivePanel(t *testing.T) {
	svc := &countingScreener{Service: newService(&staticSource{ds: testDataset()})}
	m := loadedModel(t, svc)
	require.Equal(t, 1, svc.calls[screening.RuleFive])
	require.Equal(t, 1, svc.calls[screening.RuleThree])

	ro3Before := m.panels[1].view

	// MW step is 10, so 40 presses move 500 to 100.
	for i := 0; i < 40; i++ {
		press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	}

	p := m.panels[0]
	assert.Equal(t, 100.0, p.cutoffs[molecule.KindMolWt])
	assert.Equal(t, "(2, 7)", p.view.ShapeString())
	assert.Equal(t, 41, svc.calls[screening.RuleFive])
	assert.Equal(t, 1, svc.calls[screening.RuleThree])
	assert.Same(t, ro3Before, m.panels[1].view)
}

func TestModel_SliderClampsToRange(t *testing.T) {
	m := loadedModel(t, newService(&staticSource{ds: testDataset()}))

	// HBD ranges over [0, 15].
	press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	for i := 0; i < 20; i++ {
		press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	}
	assert.Equal(t, 15.0, m.panels[0].cutoffs[molecule.KindHBondDonors])

	for i := 0; i < 30; i++ {
		press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	}
	assert.Equal(t, 0.0, m.panels[0].cutoffs[molecule.KindHBondDonors])
	assert.Equal(t, "(0, 7)", m.panels[0].view.ShapeString())
}

func TestModel_TabMovesFocus(t *testing.T) {
	m := loadedModel(t, newService(&staticSource{ds: testDataset()}))

	press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, m.active)
	press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 310.0, m.panels[1].cutoffs[molecule.KindMolWt])
	assert.Equal(t, 500.0, m.panels[0].cutoffs[molecule.KindMolWt])

	press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, m.active)
	press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 1, m.active)
}

func TestModel_ResetRestoresDefaults(t *testing.T) {
	m := loadedModel(t, newService(&staticSource{ds: testDataset()}))

	press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	require.Equal(t, 490.0, m.panels[0].cutoffs[molecule.KindMolWt])

	press(t, m, runes("r"))
	assert.Equal(t, screening.RuleOfFive().Defaults, m.panels[0].cutoffs)
}

func TestModel_WithCutoffsSeedsPanel(t *testing.T) {
	m := loadedModel(t, newService(&staticSource{ds: testDataset()}),
		WithCutoffs(screening.RuleFive, screening.Cutoffs{
			molecule.KindMolWt:          100,
			molecule.KindRotatableBonds: 1,
		}))

	assert.Equal(t, 100.0, m.panels[0].cutoffs[molecule.KindMolWt])
	_, ok := m.panels[0].cutoffs[molecule.KindRotatableBonds]
	assert.False(t, ok)
	assert.Equal(t, "(2, 7)", m.panels[0].view.ShapeString())
}

func TestModel_StaleResultIsDropped(t *testing.T) {
	m := loadedModel(t, newService(&staticSource{ds: testDataset()}))
	current := m.panels[0].view

	m.Update(viewLoadedMsg{panel: 0, seq: m.panels[0].seq - 1, err: errors.New(errors.ErrCodeInternal, "late")})
	assert.NoError(t, m.panels[0].err)
	assert.Same(t, current, m.panels[0].view)
}

func TestModel_LoadErrorAndRetry(t *testing.T) {
	src := &staticSource{err: errors.New(errors.ErrCodeDatasetFetchFailed, "dataset unreachable")}
	m := loadedModel(t, newService(src))

	for _, p := range m.panels {
		require.Error(t, p.err)
		assert.Nil(t, p.view)
	}
	out := m.View()
	assert.Contains(t, out, "Error:")
	assert.Contains(t, out, "dataset unreachable")
	assert.Contains(t, out, "press R to retry")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	src.err = nil
	src.ds = testDataset()
	press(t, m, runes("R"))
	for _, p := range m.panels {
		assert.NoError(t, p.err)
		assert.NotNil(t, p.view)
	}
}

func TestModel_QuitAndHelp(t *testing.T) {
	m := loadedModel(t, newService(&staticSource{ds: testDataset()}))

	_, cmd := m.Update(runes("?"))
	assert.Nil(t, cmd)
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "raise cutoff")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestRenderSlider(t *testing.T) {
	m := NewModel(context.Background(), newService(&staticSource{ds: testDataset()}))
	line := m.renderSlider(molecule.KindMolWt, 500)
	assert.Contains(t, line, "Molecular weight")
	assert.Contains(t, line, "< 500")
	assert.Equal(t, 12, strings.Count(line, "█"))
}
