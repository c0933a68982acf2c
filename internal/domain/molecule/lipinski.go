package molecule

// NumHDonors counts Lipinski hydrogen-bond donors:
//
//	[$([N;!H0;v3]),$([N;!H0;+1;v4]),$([O,S;H1;+0]),$([n;H1;+0])]
func NumHDonors(g *Graph) int {
	n := 0
	for i, a := range g.Atoms {
		if isHDonor(g, i, a) {
			n++
		}
	}
	return n
}

func isHDonor(g *Graph, i int, a *Atom) bool {
	h := g.totalH(i)
	switch a.Number() {
	case 7:
		if a.Aromatic {
			return h == 1 && a.Charge == 0
		}
		return h > 0 && (a.Valence == 3 || a.Charge == 1 && a.Valence == 4)
	case 8, 16:
		return !a.Aromatic && h == 1 && a.Charge == 0
	}
	return false
}

// NumHAcceptors counts Lipinski hydrogen-bond acceptors:
//
//	[$([O,S;H1;v2]-[!$(*=[O,N,P,S])]),$([O,S;H0;v2]),$([O,S;-]),
//	 $([N;v3;!$(N-*=!@[O,N,P,S])]),$([nH0,o,s;+0]),$([F])]
func NumHAcceptors(g *Graph) int {
	n := 0
	for i, a := range g.Atoms {
		if isHAcceptor(g, i, a) {
			n++
		}
	}
	return n
}

func isHAcceptor(g *Graph, i int, a *Atom) bool {
	h := g.totalH(i)
	switch a.Number() {
	case 9:
		return true
	case 8, 16:
		if a.Aromatic {
			return a.Charge == 0
		}
		switch {
		case h == 1 && a.Valence == 2:
			for _, b := range g.bondsOf(i) {
				if b.Order == BondSingle && !doubleBondedTo(g, b.Other(i), i, isONPS) {
					return true
				}
			}
		case h == 0 && a.Valence == 2:
			return true
		}
		return a.Charge < 0
	case 7:
		if a.Aromatic {
			return h == 0 && a.Charge == 0
		}
		if a.Valence != 3 {
			return false
		}
		for _, b := range g.bondsOf(i) {
			if b.Order != BondSingle {
				continue
			}
			if nonRingDoubleTo(g, b.Other(i), isONPS) {
				return false
			}
		}
		return true
	}
	return false
}

// isONPS matches the aliphatic SMARTS set [O,N,P,S].
func isONPS(a *Atom) bool {
	if a.Aromatic {
		return false
	}
	switch a.Number() {
	case 7, 8, 15, 16:
		return true
	}
	return false
}

func nonRingDoubleTo(g *Graph, k int, pred func(*Atom) bool) bool {
	for _, b := range g.bondsOf(k) {
		if b.Order == BondDouble && !b.InRing && pred(g.Atoms[b.Other(k)]) {
			return true
		}
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Rotatable bonds
// ─────────────────────────────────────────────────────────────────────────────

// NumRotatableBonds counts single, non-ring bonds between two non-terminal
// atoms, using the strict definition: bonds touching triple-bonded atoms,
// CX3 trihalomethyl and t-butyl groups, amide-like C(=X)-Y and amidinium
// C-N bonds are not counted.
func NumRotatableBonds(g *Graph) int {
	n := 0
	for _, b := range g.Bonds {
		if b.InRing || (b.Order != BondSingle && b.Order != BondAromatic) {
			continue
		}
		if rotatableEnd(g, b.Begin, true) && rotatableEnd(g, b.End, false) ||
			rotatableEnd(g, b.End, true) && rotatableEnd(g, b.Begin, false) {
			n++
		}
	}
	return n
}

// rotatableEnd checks the atom-level conditions for one end of a candidate
// bond.  The amide and amidinium exclusions apply to one end only, so a
// bond qualifies when either orientation passes.
func rotatableEnd(g *Graph, i int, strict bool) bool {
	if g.hasBondOrder(i, BondTriple) || g.degree(i) == 1 {
		return false
	}
	if isTrihalomethyl(g, i) || isTertButyl(g, i) {
		return false
	}
	if !strict {
		return true
	}
	return !isAmideCarbon(g, i) && !isAmideHetero(g, i) &&
		!isAmidiniumCarbon(g, i) && !isAmidiniumNitrogen(g, i)
}

func aliphaticCarbon(a *Atom) bool { return a.Number() == 6 && !a.Aromatic }

func isTrihalomethyl(g *Graph, i int) bool {
	if !aliphaticCarbon(g.Atoms[i]) {
		return false
	}
	for _, z := range []int{9, 17, 35} {
		n := 0
		for _, j := range g.neighbors(i) {
			if g.Atoms[j].Number() == z {
				n++
			}
		}
		if n >= 3 {
			return true
		}
	}
	return false
}

func isTertButyl(g *Graph, i int) bool {
	if !aliphaticCarbon(g.Atoms[i]) {
		return false
	}
	n := 0
	for _, j := range g.neighbors(i) {
		if aliphaticCarbon(g.Atoms[j]) && g.totalH(j) == 3 {
			n++
		}
	}
	return n >= 3
}

// amideCarbon matches [CD3](=[N,O,S]).
func amideCarbon(g *Graph, i int) bool {
	a := g.Atoms[i]
	if !aliphaticCarbon(a) || g.degree(i) != 3 {
		return false
	}
	return doubleBondedTo(g, i, -1, func(o *Atom) bool {
		if o.Aromatic {
			return false
		}
		switch o.Number() {
		case 7, 8, 16:
			return true
		}
		return false
	})
}

// amideHetero matches [#7,O,S!D1].
func amideHetero(g *Graph, i int) bool {
	a := g.Atoms[i]
	switch {
	case a.Number() == 7:
		return true
	case a.Number() == 8 && !a.Aromatic:
		return true
	case a.Number() == 16 && !a.Aromatic:
		return g.degree(i) != 1
	}
	return false
}

// nonRingSingleTo reports whether i has a non-ring single bond to an atom
// satisfying pred.
func nonRingSingleTo(g *Graph, i int, pred func(int) bool) bool {
	for _, b := range g.bondsOf(i) {
		if b.Order == BondSingle && !b.InRing && pred(b.Other(i)) {
			return true
		}
	}
	return false
}

func isAmideCarbon(g *Graph, i int) bool {
	return amideCarbon(g, i) && nonRingSingleTo(g, i, func(j int) bool { return amideHetero(g, j) })
}

func isAmideHetero(g *Graph, i int) bool {
	return amideHetero(g, i) && nonRingSingleTo(g, i, func(j int) bool { return amideCarbon(g, j) })
}

// amidiniumCarbon matches [CD3](=[N+]).
func amidiniumCarbon(g *Graph, i int) bool {
	if !aliphaticCarbon(g.Atoms[i]) || g.degree(i) != 3 {
		return false
	}
	return doubleBondedTo(g, i, -1, func(o *Atom) bool {
		return o.Number() == 7 && !o.Aromatic && o.Charge == 1
	})
}

func nonTerminalN(g *Graph, j int) bool {
	return g.Atoms[j].Number() == 7 && g.degree(j) != 1
}

func isAmidiniumCarbon(g *Graph, i int) bool {
	return amidiniumCarbon(g, i) && nonRingSingleTo(g, i, func(j int) bool { return nonTerminalN(g, j) })
}

func isAmidiniumNitrogen(g *Graph, i int) bool {
	return nonTerminalN(g, i) && nonRingSingleTo(g, i, func(j int) bool { return amidiniumCarbon(g, j) })
}
