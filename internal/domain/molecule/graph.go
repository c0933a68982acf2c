package molecule

// BondOrder is the multiplicity of a bond.  Aromatic bonds are kept distinct
// from single and double bonds once aromaticity has been perceived.
type BondOrder int

const (
	BondSingle BondOrder = iota + 1
	BondDouble
	BondTriple
	BondQuadruple
	BondAromatic
)

// valenceContrib is the bond's contribution to an atom's valence.  Aromatic
// bonds count as one here; the missing half is restored when the atom's
// valence is derived (see assignValence).
func (o BondOrder) valenceContrib() int {
	switch o {
	case BondDouble:
		return 2
	case BondTriple:
		return 3
	case BondQuadruple:
		return 4
	default:
		return 1
	}
}

// Atom is a heavy atom of a molecular graph, or an explicit hydrogen that
// carries an isotope label.  Plain hydrogens are folded into HCount.
type Atom struct {
	Index    int
	Element  *Element
	Isotope  int
	Charge   int
	Aromatic bool

	// HCount is the number of attached hydrogens that are not themselves
	// atoms of the graph (implicit or bracket-declared).
	HCount int

	// Valence is the total valence including hydrogens, computed on the
	// Kekulé form.
	Valence int

	bonds []int
}

// Number is the atomic number.
func (a *Atom) Number() int { return a.Element.Number }

// IsHydrogen reports whether a is an explicit hydrogen atom.
func (a *Atom) IsHydrogen() bool { return a.Element.Number == 1 }

// Bond joins two atoms.
type Bond struct {
	Index int
	Begin int
	End   int
	Order BondOrder

	// InRing is set for bonds that lie on at least one cycle.
	InRing bool

	implicit bool
}

// Other returns the atom at the far end of b from atom i.
func (b *Bond) Other(i int) int {
	if b.Begin == i {
		return b.End
	}
	return b.Begin
}

// Graph is a parsed molecule.  It is immutable once returned by Parse.
type Graph struct {
	SMILES string
	Atoms  []*Atom
	Bonds  []*Bond
}

// bondsOf returns the bonds attached to atom i.
func (g *Graph) bondsOf(i int) []*Bond {
	idx := g.Atoms[i].bonds
	out := make([]*Bond, len(idx))
	for k, b := range idx {
		out[k] = g.Bonds[b]
	}
	return out
}

// neighbors returns the indices of atoms bonded to atom i.
func (g *Graph) neighbors(i int) []int {
	idx := g.Atoms[i].bonds
	out := make([]int, len(idx))
	for k, b := range idx {
		out[k] = g.Bonds[b].Other(i)
	}
	return out
}

// bondBetween returns the bond joining i and j, or nil.
func (g *Graph) bondBetween(i, j int) *Bond {
	for _, b := range g.Atoms[i].bonds {
		if g.Bonds[b].Other(i) == j {
			return g.Bonds[b]
		}
	}
	return nil
}

// totalH counts implicit hydrogens plus explicit hydrogen neighbours.
func (g *Graph) totalH(i int) int {
	n := g.Atoms[i].HCount
	for _, j := range g.neighbors(i) {
		if g.Atoms[j].IsHydrogen() {
			n++
		}
	}
	return n
}

// heavyDegree counts non-hydrogen neighbours.
func (g *Graph) heavyDegree(i int) int {
	n := 0
	for _, j := range g.neighbors(i) {
		if !g.Atoms[j].IsHydrogen() {
			n++
		}
	}
	return n
}

// degree counts explicit neighbours, hydrogens included.
func (g *Graph) degree(i int) int {
	return len(g.Atoms[i].bonds)
}

// connectivity is the SMARTS X primitive: every neighbour, implicit
// hydrogens included.
func (g *Graph) connectivity(i int) int {
	return len(g.Atoms[i].bonds) + g.Atoms[i].HCount
}

// hasBondOrder reports whether atom i has at least one bond of order o.
func (g *Graph) hasBondOrder(i int, o BondOrder) bool {
	for _, b := range g.Atoms[i].bonds {
		if g.Bonds[b].Order == o {
			return true
		}
	}
	return false
}

// HeavyAtomCount is the number of non-hydrogen atoms.
func (g *Graph) HeavyAtomCount() int {
	n := 0
	for _, a := range g.Atoms {
		if !a.IsHydrogen() {
			n++
		}
	}
	return n
}

func (g *Graph) addAtom(a *Atom) int {
	a.Index = len(g.Atoms)
	g.Atoms = append(g.Atoms, a)
	return a.Index
}

func (g *Graph) addBond(i, j int, order BondOrder) *Bond {
	b := &Bond{Index: len(g.Bonds), Begin: i, End: j, Order: order}
	g.Bonds = append(g.Bonds, b)
	g.Atoms[i].bonds = append(g.Atoms[i].bonds, b.Index)
	g.Atoms[j].bonds = append(g.Atoms[j].bonds, b.Index)
	return b
}
