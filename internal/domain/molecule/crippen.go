package molecule

// Wildman-Crippen atom contributions to LogP.  Atoms are typed in table
// order and the first matching rule wins, so the order of the checks in the
// typing functions below is significant.
var crippenLogP = map[string]float64{
	"C1": 0.1441, "C2": 0.0, "C3": -0.2035, "C4": -0.2051, "C5": -0.2783,
	"C6": 0.1551, "C7": 0.0017, "C8": 0.08452, "C9": -0.1444, "C10": -0.0516,
	"C11": 0.1193, "C12": -0.0967, "C13": -0.5443, "C14": 0.0, "C15": 0.245,
	"C16": 0.198, "C17": 0.0, "C18": 0.1581, "C19": 0.2955, "C20": 0.2713,
	"C21": 0.136, "C22": 0.4619, "C23": 0.5437, "C24": 0.1893, "C25": -0.8186,
	"C26": 0.264, "C27": 0.2148, "CS": 0.08129,

	"H1": 0.123, "H2": -0.2677, "H3": 0.2142, "H4": 0.298, "HS": 0.1125,

	"N1": -1.019, "N2": -0.7096, "N3": -1.027, "N4": -0.5188, "N5": 0.08387,
	"N6": 0.1836, "N7": -0.3187, "N8": -0.4458, "N9": 0.01508, "N10": -1.95,
	"N11": -0.3239, "N12": -1.119, "N13": -0.3396, "N14": 0.2887, "NS": -0.4806,

	"O1": 0.1552, "O2": -0.2893, "O3": -0.0684, "O4": -0.4195, "O5": 0.0335,
	"O6": -0.3339, "O7": -1.189, "O8": 0.1788, "O9": -0.1526, "O10": 0.1129,
	"O11": 0.4833, "O12": -1.326, "OS": -0.1188,

	"F": 0.4202, "Cl": 0.6895, "Br": 0.8456, "I": 0.8857, "Hal": -2.996,
	"P": 0.8612, "S1": 0.6482, "S2": -0.0024, "S3": 0.6237,
	"Me1": -0.3808, "Me2": -0.0025,
}

// CrippenTypes returns the Crippen atom type of every atom in g, followed by
// one entry per implicit hydrogen (in atom order).  It is exported for
// diagnostics; MolLogP is the usual entry point.
func CrippenTypes(g *Graph) []string {
	var out []string
	for i, a := range g.Atoms {
		if a.IsHydrogen() {
			parent := -1
			if nb := g.neighbors(i); len(nb) > 0 {
				parent = nb[0]
			}
			out = append(out, hydrogenType(g, parent, i))
			continue
		}
		out = append(out, heavyType(g, i))
	}
	for i, a := range g.Atoms {
		for k := 0; k < a.HCount; k++ {
			out = append(out, hydrogenType(g, i, -1))
		}
	}
	return out
}

// MolLogP sums the Crippen contributions of all atoms, hydrogens included.
func MolLogP(g *Graph) float64 {
	sum := 0.0
	for _, t := range CrippenTypes(g) {
		sum += crippenLogP[t]
	}
	return sum
}

func heavyType(g *Graph, i int) string {
	a := g.Atoms[i]
	switch a.Number() {
	case 6:
		return carbonType(g, i)
	case 7:
		return nitrogenType(g, i)
	case 8:
		return oxygenType(g, i)
	case 16:
		switch {
		case a.Aromatic:
			return "S3"
		case a.Charge == 0:
			return "S1"
		default:
			return "S2"
		}
	case 15:
		return "P"
	case 9, 17, 35, 53:
		if a.Charge != 0 {
			return "Hal"
		}
		return a.Element.Symbol
	case 3, 11, 19, 37, 55:
		return "Me1"
	case 0:
		return ""
	default:
		return "Me2"
	}
}

// neighbour views used by the typing rules

type nbr struct {
	idx   int
	atom  *Atom
	order BondOrder
}

func heavyNeighbors(g *Graph, i int) []nbr {
	var out []nbr
	for _, b := range g.bondsOf(i) {
		j := b.Other(i)
		if g.Atoms[j].IsHydrogen() {
			continue
		}
		out = append(out, nbr{idx: j, atom: g.Atoms[j], order: b.Order})
	}
	return out
}

func count(ns []nbr, pred func(nbr) bool) int {
	n := 0
	for _, x := range ns {
		if pred(x) {
			n++
		}
	}
	return n
}

func some(ns []nbr, pred func(nbr) bool) bool { return count(ns, pred) > 0 }

func aliphatic(x nbr) bool { return !x.atom.Aromatic }
func aromatic(x nbr) bool  { return x.atom.Aromatic }

func isElem(x nbr, z ...int) bool {
	for _, n := range z {
		if x.atom.Number() == n {
			return true
		}
	}
	return false
}

func aliphaticC(x nbr) bool { return aliphatic(x) && isElem(x, 6) }

// crippenHetero matches [N,O,P,S,F,Cl,Br,I]: aliphatic heteroatoms.
func crippenHetero(x nbr) bool {
	return aliphatic(x) && isElem(x, 7, 8, 15, 16, 9, 17, 35, 53)
}

func carbonType(g *Graph, i int) string {
	a := g.Atoms[i]
	h := g.totalH(i)
	x := g.connectivity(i)
	ns := heavyNeighbors(g, i)

	if a.Aromatic {
		return aromaticCarbonType(h, ns)
	}

	nAliphC := count(ns, aliphaticC)
	nAliph := count(ns, aliphatic)
	hasHetero := some(ns, crippenHetero)
	hasArom := some(ns, aromatic)
	doubleToAliphC := some(ns, func(n nbr) bool { return n.order == BondDouble && aliphaticC(n) })

	switch {
	case h == 4,
		h == 3 && nAliphC >= 1,
		h == 2 && nAliphC >= 2:
		return "C1"
	case h == 1 && nAliphC >= 3,
		h == 0 && nAliphC >= 4:
		return "C2"
	case h == 3 && hasHetero,
		h == 2 && x == 4 && hasHetero && nAliph >= 2:
		return "C3"
	case h == 1 && x == 4 && hasHetero && nAliph >= 3,
		h == 0 && x == 4 && hasHetero && nAliph >= 4:
		return "C4"
	case some(ns, func(n nbr) bool { return n.order == BondDouble && aliphatic(n) && !isElem(n, 6) }):
		return "C5"
	case doubleToAliphC && (h == 2 ||
		h == 1 && nAliph >= 2 ||
		h == 0 && nAliph >= 3 ||
		count(ns, func(n nbr) bool { return n.order == BondDouble && aliphaticC(n) }) >= 2):
		return "C6"
	case x == 2 && some(ns, func(n nbr) bool { return n.order == BondTriple && aliphatic(n) }):
		return "C7"
	case h == 3 && some(ns, func(n nbr) bool { return aromatic(n) && isElem(n, 6) }):
		return "C8"
	case h == 3 && hasArom:
		return "C9"
	case h == 2 && x == 4 && hasArom:
		return "C10"
	case h == 1 && x == 4 && hasArom:
		return "C11"
	case h == 0 && x == 4 && hasArom:
		return "C12"
	case doubleToAliphC && hasArom && nAliph >= 2,
		doubleToAliphC && some(ns, func(n nbr) bool { return aromatic(n) && isElem(n, 6) }) && count(ns, aromatic) >= 2,
		doubleToAliphC && h == 1 && hasArom,
		some(ns, func(n nbr) bool { return n.order == BondDouble && aromatic(n) && isElem(n, 6) }):
		return "C26"
	case x == 4 && some(ns, func(n nbr) bool {
		return aliphatic(n) && !isElem(n, 6, 7, 8, 15, 16, 9, 17, 35, 53, 1)
	}):
		return "C27"
	}
	return "CS"
}

func aromaticCarbonType(h int, ns []nbr) string {
	aromBonds := count(ns, func(n nbr) bool { return n.order == BondAromatic && aromatic(n) })
	single := func(pred func(nbr) bool) bool {
		return some(ns, func(n nbr) bool { return n.order == BondSingle && pred(n) })
	}

	switch {
	case h == 0 && single(func(n nbr) bool {
		return aliphatic(n) && !isElem(n, 6, 7, 8, 16, 9, 17, 35, 53, 1)
	}):
		return "C13"
	case some(ns, func(n nbr) bool { return isElem(n, 9) }):
		return "C14"
	case some(ns, func(n nbr) bool { return isElem(n, 17) }):
		return "C15"
	case some(ns, func(n nbr) bool { return isElem(n, 35) }):
		return "C16"
	case some(ns, func(n nbr) bool { return isElem(n, 53) }):
		return "C17"
	case h == 1:
		return "C18"
	case aromBonds >= 3:
		return "C19"
	}
	if aromBonds >= 2 {
		switch {
		case single(aromatic):
			return "C20"
		case single(aliphaticC):
			return "C21"
		case single(func(n nbr) bool { return aliphatic(n) && isElem(n, 7) }):
			return "C22"
		case single(func(n nbr) bool { return aliphatic(n) && isElem(n, 8) }):
			return "C23"
		case single(func(n nbr) bool { return aliphatic(n) && isElem(n, 16) }):
			return "C24"
		case some(ns, func(n nbr) bool { return n.order == BondDouble && aliphatic(n) && isElem(n, 6, 7, 8) }):
			return "C25"
		}
	}
	return "CS"
}

func nitrogenType(g *Graph, i int) string {
	a := g.Atoms[i]
	h := g.totalH(i)
	c := a.Charge
	ns := heavyNeighbors(g, i)

	if a.Aromatic {
		switch {
		case c == 0:
			return "N11"
		case c > 0:
			return "N12"
		}
		return "NS"
	}

	nAliph := count(ns, aliphatic)
	nArom := count(ns, aromatic)
	hasDouble := some(ns, func(n nbr) bool { return n.order == BondDouble })

	if c == 0 {
		switch {
		case h == 2 && nAliph >= 1:
			return "N1"
		case h == 1 && nAliph >= 2:
			return "N2"
		case h == 2 && nArom >= 1:
			return "N3"
		case h == 1 && nArom >= 1 && len(ns) >= 2:
			return "N4"
		case h == 1 && hasDouble:
			return "N5"
		case hasDouble && len(ns) >= 2:
			return "N6"
		case nAliph >= 3:
			return "N7"
		case nArom >= 1 && nAliph >= 1 && len(ns) >= 3,
			nArom >= 3:
			return "N8"
		case some(ns, func(n nbr) bool { return n.order == BondTriple && aliphatic(n) }):
			return "N9"
		}
		return "NS"
	}

	if c > 0 && h >= 1 && h <= 3 {
		return "N10"
	}
	doubleTo := func(pred func(nbr) bool) bool {
		return some(ns, func(n nbr) bool { return n.order == BondDouble && pred(n) })
	}
	switch {
	case c > 0 && h == 0 && nAliph >= 4,
		c > 0 && h == 0 && doubleTo(aliphatic) && nAliph >= 2 && len(ns) >= 3,
		c > 0 && h == 0 && doubleTo(func(n nbr) bool { return isElem(n, 6) }) && doubleTo(func(n nbr) bool { return isElem(n, 7) }),
		c > 0 && some(ns, func(n nbr) bool { return n.order == BondTriple && aliphatic(n) }),
		c < 0,
		c > 0 && doubleTo(func(n nbr) bool { return isElem(n, 7) && n.atom.Charge < 0 }):
		return "N13"
	case c > 0:
		return "N14"
	}
	return "NS"
}

func oxygenType(g *Graph, i int) string {
	a := g.Atoms[i]
	h := g.totalH(i)
	x := g.connectivity(i)
	ns := heavyNeighbors(g, i)

	if a.Aromatic {
		return "O1"
	}
	if h == 1 || h == 2 {
		return "O2"
	}
	nAliph := count(ns, aliphatic)
	nArom := count(ns, aromatic)
	switch {
	case nAliph >= 2:
		return "O3"
	case nArom >= 1 && len(ns) >= 2:
		return "O4"
	case some(ns, func(n nbr) bool { return n.order == BondDouble && isElem(n, 7, 8) }),
		x == 1 && a.Charge < 0 && some(ns, func(n nbr) bool { return isElem(n, 7) }):
		return "O5"
	case x == 1 && a.Charge < 0 && some(ns, func(n nbr) bool { return isElem(n, 16) }):
		return "O6"
	case a.Charge < 0 && some(ns, func(n nbr) bool {
		return aliphaticC(n) && doubleBondedTo(g, n.idx, i, func(o *Atom) bool {
			return o.Number() == 8 && !o.Aromatic
		})
	}):
		return "O12"
	case x == 1 && a.Charge < 0:
		return "O7"
	}

	var carbonyl *nbr
	for k := range ns {
		if ns[k].order == BondDouble {
			carbonyl = &ns[k]
			break
		}
	}
	if carbonyl == nil {
		return "OS"
	}
	if carbonyl.atom.Aromatic && carbonyl.atom.Number() == 6 {
		return "O8"
	}
	if !aliphaticC(*carbonyl) {
		return "OS"
	}

	k := carbonyl.idx
	kh := g.totalH(k)
	others := heavyNeighbors(g, k)
	var rest []nbr
	for _, o := range others {
		if o.idx != i {
			rest = append(rest, o)
		}
	}
	nC := count(rest, aliphaticC)
	switch {
	case kh == 1 && nC >= 1,
		nC >= 2,
		nC >= 1 && count(rest, aliphatic) >= 2,
		kh == 1 && some(rest, func(n nbr) bool { return aliphatic(n) && isElem(n, 7) }),
		kh == 1 && some(rest, func(n nbr) bool { return aliphatic(n) && isElem(n, 8) }),
		kh == 2,
		g.connectivity(k) == 2 && some(rest, func(n nbr) bool { return n.order == BondDouble && aliphatic(n) && isElem(n, 8) }):
		return "O9"
	case kh == 1 && some(rest, func(n nbr) bool { return aromatic(n) && isElem(n, 6) }),
		some(rest, func(n nbr) bool { return isElem(n, 6) }) && count(rest, aromatic) >= 1 && len(rest) >= 2,
		some(rest, func(n nbr) bool { return aromatic(n) && isElem(n, 6) }) && count(rest, aliphatic) >= 1:
		return "O10"
	case count(rest, func(n nbr) bool { return !isElem(n, 6) }) >= 2:
		return "O11"
	}
	return "OS"
}

// doubleBondedTo reports whether atom k has a double bond to an atom other
// than skip that satisfies pred.
func doubleBondedTo(g *Graph, k, skip int, pred func(*Atom) bool) bool {
	for _, b := range g.bondsOf(k) {
		j := b.Other(k)
		if j == skip || b.Order != BondDouble {
			continue
		}
		if pred(g.Atoms[j]) {
			return true
		}
	}
	return false
}

// hydrogenType types a hydrogen attached to parent.  self is the index of
// the hydrogen when it is an explicit atom of the graph, or -1.
func hydrogenType(g *Graph, parent, self int) string {
	if parent < 0 {
		return "HS"
	}
	p := g.Atoms[parent]
	switch p.Number() {
	case 6, 1:
		return "H1"
	case 7:
		return "H3"
	case 8:
	default:
		return "H2"
	}

	// Hydrogen on oxygen: classify by what else the oxygen carries.
	var others []nbr
	for _, b := range g.bondsOf(parent) {
		j := b.Other(parent)
		if j == self {
			continue
		}
		others = append(others, nbr{idx: j, atom: g.Atoms[j], order: b.Order})
	}
	moreH := p.HCount
	if self < 0 {
		moreH--
	}
	if moreH > 0 {
		return "H2"
	}
	switch {
	case some(others, func(n nbr) bool { return aliphaticC(n) && g.connectivity(n.idx) == 4 }),
		some(others, func(n nbr) bool { return aromatic(n) && isElem(n, 6) }),
		some(others, func(n nbr) bool { return !isElem(n, 6, 7, 8, 16) }):
		return "H2"
	case some(others, func(n nbr) bool { return isElem(n, 7) }):
		return "H3"
	case some(others, func(n nbr) bool {
		return aliphaticC(n) && doubleBondedTo(g, n.idx, parent, func(o *Atom) bool {
			switch o.Number() {
			case 6, 7:
				return true
			case 8, 16:
				return !o.Aromatic
			}
			return false
		})
	}),
		some(others, func(n nbr) bool { return aliphatic(n) && isElem(n, 8, 16) }):
		return "H4"
	}
	return "HS"
}
