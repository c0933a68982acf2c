// Package molecule is the cheminformatics engine: a SMILES parser that
// builds a hydrogen-suppressed molecular graph and the five descriptors the
// screening pipeline filters on.  Descriptor definitions follow the
// conventions of RDKit so that values line up with published tables.
package molecule

import (
	"math"
)

// Kind names one descriptor.  The string values double as column headers.
type Kind string

const (
	KindMolWt          Kind = "MW"
	KindLogP           Kind = "LogP"
	KindHBondDonors    Kind = "NumHDonors"
	KindHBondAcceptors Kind = "NumHAcceptors"
	KindRotatableBonds Kind = "NumRotatableBonds"
)

// Kinds lists every descriptor in the fixed order used for columns and for
// the threshold filter.
var Kinds = []Kind{KindMolWt, KindLogP, KindHBondDonors, KindHBondAcceptors, KindRotatableBonds}

// Descriptors holds the five computed values of one molecule.  A molecule
// that failed to parse carries NaN in every field.
type Descriptors struct {
	MolWt          float64 `json:"MW"`
	LogP           float64 `json:"LogP"`
	HBondDonors    float64 `json:"NumHDonors"`
	HBondAcceptors float64 `json:"NumHAcceptors"`
	RotatableBonds float64 `json:"NumRotatableBonds"`
}

// Missing returns the descriptor set recorded for an unparseable molecule.
func Missing() Descriptors {
	nan := math.NaN()
	return Descriptors{MolWt: nan, LogP: nan, HBondDonors: nan, HBondAcceptors: nan, RotatableBonds: nan}
}

// Get returns the value for kind k and whether k is known.
func (d Descriptors) Get(k Kind) (float64, bool) {
	switch k {
	case KindMolWt:
		return d.MolWt, true
	case KindLogP:
		return d.LogP, true
	case KindHBondDonors:
		return d.HBondDonors, true
	case KindHBondAcceptors:
		return d.HBondAcceptors, true
	case KindRotatableBonds:
		return d.RotatableBonds, true
	}
	return math.NaN(), false
}

// IsMissing reports whether the set stands for a parse failure.
func (d Descriptors) IsMissing() bool {
	return math.IsNaN(d.MolWt)
}

// Engine is the cheminformatics boundary used by the annotator.  Parse
// yields a graph or an error; each compute method is a pure function of the
// graph.
type Engine interface {
	Parse(smiles string) (*Graph, error)
	ExactMolWt(g *Graph) float64
	MolLogP(g *Graph) float64
	NumHDonors(g *Graph) int
	NumHAcceptors(g *Graph) int
	NumRotatableBonds(g *Graph) int
}

type engine struct{}

// NewEngine returns the built-in engine.
func NewEngine() Engine { return engine{} }

func (engine) Parse(smiles string) (*Graph, error) { return Parse(smiles) }
func (engine) ExactMolWt(g *Graph) float64         { return ExactMolWt(g) }
func (engine) MolLogP(g *Graph) float64            { return MolLogP(g) }
func (engine) NumHDonors(g *Graph) int             { return NumHDonors(g) }
func (engine) NumHAcceptors(g *Graph) int          { return NumHAcceptors(g) }
func (engine) NumRotatableBonds(g *Graph) int      { return NumRotatableBonds(g) }

// Describe parses smiles once and computes all five descriptors.  On a
// parse failure it returns Missing() together with the error.
func Describe(e Engine, smiles string) (Descriptors, error) {
	g, err := e.Parse(smiles)
	if err != nil {
		return Missing(), err
	}
	return Descriptors{
		MolWt:          e.ExactMolWt(g),
		LogP:           e.MolLogP(g),
		HBondDonors:    float64(e.NumHDonors(g)),
		HBondAcceptors: float64(e.NumHAcceptors(g)),
		RotatableBonds: float64(e.NumRotatableBonds(g)),
	}, nil
}

// ExactMolWt is the monoisotopic mass including hydrogens, corrected by one
// electron mass per unit of formal charge.
func ExactMolWt(g *Graph) float64 {
	mass := 0.0
	for _, a := range g.Atoms {
		if a.Isotope > 0 {
			mass += IsotopeMass(a.Element.Number, a.Isotope)
		} else {
			mass += a.Element.MonoMass
		}
		mass += float64(a.HCount) * hydrogenMass
		mass -= float64(a.Charge) * electronMass
	}
	return mass
}
