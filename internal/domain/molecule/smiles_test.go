package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/druglike/pkg/errors"
)

func TestParse_Ethanol(t *testing.T) {
	g, err := Parse("CCO")
	require.NoError(t, err)
	require.Len(t, g.Atoms, 3)
	require.Len(t, g.Bonds, 2)

	assert.Equal(t, 3, g.Atoms[0].HCount)
	assert.Equal(t, 2, g.Atoms[1].HCount)
	assert.Equal(t, 1, g.Atoms[2].HCount)
	assert.Equal(t, 2, g.Atoms[2].Valence)
	for _, b := range g.Bonds {
		assert.Equal(t, BondSingle, b.Order)
		assert.False(t, b.InRing)
	}
}

func TestParse_BranchesAndBondOrders(t *testing.T) {
	g, err := Parse("CC(=O)C#N")
	require.NoError(t, err)
	require.Len(t, g.Atoms, 5)

	assert.Equal(t, BondDouble, g.bondBetween(1, 2).Order)
	assert.Equal(t, BondSingle, g.bondBetween(1, 3).Order)
	assert.Equal(t, BondTriple, g.bondBetween(3, 4).Order)
	assert.Equal(t, 0, g.Atoms[1].HCount)
	assert.Equal(t, 0, g.Atoms[4].HCount)
}

func TestParse_RingClosures(t *testing.T) {
	g, err := Parse("C1CCCCC1CC")
	require.NoError(t, err)

	inRing := 0
	for _, b := range g.Bonds {
		if b.InRing {
			inRing++
		}
	}
	assert.Equal(t, 6, inRing)
	assert.Len(t, g.Bonds, 8)
}

func TestParse_PercentRingClosure(t *testing.T) {
	g, err := Parse("C%10CC%10")
	require.NoError(t, err)
	assert.Len(t, g.Bonds, 3)
	for _, b := range g.Bonds {
		assert.True(t, b.InRing)
	}
}

func TestParse_RingBondOrderOnEitherSide(t *testing.T) {
	g, err := Parse("C=1CCCCC1")
	require.NoError(t, err)
	assert.Equal(t, BondDouble, g.bondBetween(0, 5).Order)

	g, err = Parse("C1CCCCC=1")
	require.NoError(t, err)
	assert.Equal(t, BondDouble, g.bondBetween(0, 5).Order)
}

func TestParse_BracketAtoms(t *testing.T) {
	tests := []struct {
		smiles  string
		number  int
		isotope int
		charge  int
		hcount  int
	}{
		{"[NH4+]", 7, 0, 1, 4},
		{"[O-]", 8, 0, -1, 0},
		{"[13CH4]", 6, 13, 0, 4},
		{"[Fe+++]", 26, 0, 3, 0},
		{"[Cu+2]", 29, 0, 2, 0},
		{"[C@@H](F)(Cl)Br", 6, 0, 0, 1},
		{"[NH3+:7]", 7, 0, 1, 3},
		{"[Na+]", 11, 0, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			g, err := Parse(tt.smiles)
			require.NoError(t, err)
			a := g.Atoms[0]
			assert.Equal(t, tt.number, a.Number())
			assert.Equal(t, tt.isotope, a.Isotope)
			assert.Equal(t, tt.charge, a.Charge)
			assert.Equal(t, tt.hcount, a.HCount)
		})
	}
}

func TestParse_ExplicitHydrogensAreFolded(t *testing.T) {
	g, err := Parse("[H]C([H])([H])[H]")
	require.NoError(t, err)
	require.Len(t, g.Atoms, 1)
	assert.Equal(t, 4, g.Atoms[0].HCount)
	assert.Empty(t, g.Bonds)
}

func TestParse_IsotopicHydrogenIsKept(t *testing.T) {
	g, err := Parse("[2H]C")
	require.NoError(t, err)
	require.Len(t, g.Atoms, 2)
	assert.True(t, g.Atoms[0].IsHydrogen())
	assert.Equal(t, 3, g.Atoms[1].HCount)
	assert.Equal(t, 1, g.HeavyAtomCount())
}

func TestParse_AromaticHydrogens(t *testing.T) {
	g, err := Parse("c1ccncc1")
	require.NoError(t, err)
	for _, a := range g.Atoms {
		assert.True(t, a.Aromatic)
		if a.Number() == 6 {
			assert.Equal(t, 1, a.HCount)
			assert.Equal(t, 4, a.Valence)
		} else {
			assert.Equal(t, 0, a.HCount)
			assert.Equal(t, 3, a.Valence)
		}
	}
	for _, b := range g.Bonds {
		assert.Equal(t, BondAromatic, b.Order)
	}
}

func TestParse_SaturatedAromaticHeteroatomsGetNoHydrogen(t *testing.T) {
	tests := []struct {
		name   string
		smiles string
	}{
		{"N-methylpyrrole", "Cn1cccc1"},
		{"thiophene", "c1ccsc1"},
		{"thiazole", "c1cscn1"},
		{"N-methylindole", "Cn1ccc2ccccc21"},
		{"caffeine", "Cn1cnc2c1c(=O)n(C)c(=O)n2C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Parse(tt.smiles)
			require.NoError(t, err)
			for _, a := range g.Atoms {
				if a.Aromatic && a.Number() != 6 {
					assert.Equal(t, 0, a.HCount, "%s atom %d", a.Element.Symbol, a.Index)
				}
			}
		})
	}

	g, err := Parse("c1cc[nH]c1")
	require.NoError(t, err)
	assert.Equal(t, 1, g.Atoms[3].HCount)
}

func TestParse_NonRingAromaticLinkIsSingle(t *testing.T) {
	g, err := Parse("c1ccccc1c1ccccc1")
	require.NoError(t, err)
	link := g.bondBetween(5, 6)
	require.NotNil(t, link)
	assert.Equal(t, BondSingle, link.Order)
	assert.False(t, link.InRing)
}

func TestParse_DisconnectedFragments(t *testing.T) {
	g, err := Parse("CC(=O)[O-].[Na+]")
	require.NoError(t, err)
	assert.Len(t, g.Atoms, 5)
	assert.Len(t, g.Bonds, 3)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		smiles string
		code   errors.ErrorCode
	}{
		{"", errors.ErrCodeMoleculeInvalidSMILES},
		{"   ", errors.ErrCodeMoleculeInvalidSMILES},
		{"C1CC", errors.ErrCodeUnclosedRing},
		{"C(C", errors.ErrCodeMoleculeInvalidSMILES},
		{"CC)", errors.ErrCodeMoleculeInvalidSMILES},
		{"C=", errors.ErrCodeMoleculeInvalidSMILES},
		{"[Xx]", errors.ErrCodeUnknownElement},
		{"[CH4", errors.ErrCodeMoleculeInvalidSMILES},
		{"CQ", errors.ErrCodeMoleculeInvalidSMILES},
		{"C%1C", errors.ErrCodeMoleculeInvalidSMILES},
		{"C11", errors.ErrCodeMoleculeInvalidSMILES},
		{"(C)", errors.ErrCodeMoleculeInvalidSMILES},
		{"C=1CC-1", errors.ErrCodeMoleculeInvalidSMILES},
	}
	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			g, err := Parse(tt.smiles)
			require.Error(t, err)
			assert.Nil(t, g)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
		})
	}
}
