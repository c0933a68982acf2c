package molecule

import "sort"

// perceiveRings flags every bond that lies on a cycle.  A bond is a ring
// bond exactly when it is not a bridge of the graph.
func perceiveRings(g *Graph) {
	n := len(g.Atoms)
	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}
	timer := 0

	var visit func(u, parentBond int)
	visit = func(u, parentBond int) {
		disc[u] = timer
		low[u] = timer
		timer++
		for _, bi := range g.Atoms[u].bonds {
			if bi == parentBond {
				continue
			}
			v := g.Bonds[bi].Other(u)
			if disc[v] < 0 {
				visit(v, bi)
				if low[v] < low[u] {
					low[u] = low[v]
				}
				if low[v] <= disc[u] {
					g.Bonds[bi].InRing = true
				}
				continue
			}
			if disc[v] < low[u] {
				low[u] = disc[v]
			}
			g.Bonds[bi].InRing = true
		}
	}
	for i := 0; i < n; i++ {
		if disc[i] < 0 {
			visit(i, -1)
		}
	}
}

// inRing reports whether atom i has at least one ring bond.
func (g *Graph) inRing(i int) bool {
	for _, b := range g.Atoms[i].bonds {
		if g.Bonds[b].InRing {
			return true
		}
	}
	return false
}

// ring is a cycle given as an ordered list of atoms; consecutive atoms
// (and the last with the first) are bonded.
type ring struct {
	atoms []int
	bonds []int
}

// smallCycles returns, for every ring bond, the smallest cycle through it.
// The set is a superset of an SSSR and is what aromaticity perception
// iterates over.
func smallCycles(g *Graph) []ring {
	seen := make(map[string]bool)
	var out []ring
	for _, b := range g.Bonds {
		if !b.InRing {
			continue
		}
		path := shortestRingPath(g, b.Begin, b.End, b.Index)
		if path == nil {
			continue
		}
		key := cycleKey(path)
		if seen[key] {
			continue
		}
		seen[key] = true
		r := ring{atoms: path}
		for k := range path {
			nb := g.bondBetween(path[k], path[(k+1)%len(path)])
			r.bonds = append(r.bonds, nb.Index)
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i].atoms) < len(out[j].atoms) })
	return out
}

// shortestRingPath runs a BFS over ring bonds from src to dst that does not
// use the excluded bond.  The returned path starts at src and ends at dst.
func shortestRingPath(g *Graph, src, dst, excluded int) []int {
	prev := make([]int, len(g.Atoms))
	for i := range prev {
		prev[i] = -2
	}
	prev[src] = -1
	queue := []int{src}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		if u == dst {
			break
		}
		for _, bi := range g.Atoms[u].bonds {
			b := g.Bonds[bi]
			if bi == excluded || !b.InRing {
				continue
			}
			v := b.Other(u)
			if prev[v] != -2 {
				continue
			}
			prev[v] = u
			queue = append(queue, v)
		}
	}
	if prev[dst] == -2 {
		return nil
	}
	var rev []int
	for v := dst; v != -1; v = prev[v] {
		rev = append(rev, v)
	}
	path := make([]int, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path
}

func cycleKey(atoms []int) string {
	sorted := append([]int(nil), atoms...)
	sort.Ints(sorted)
	key := make([]byte, 0, len(sorted)*3)
	for _, a := range sorted {
		key = append(key, byte(a>>8), byte(a), ',')
	}
	return string(key)
}

// resolveImplicitAromaticBonds demotes unwritten bonds between two aromatic
// atoms to single bonds when they do not lie on a ring, as in biphenyl
// written without an explicit '-'.
func resolveImplicitAromaticBonds(g *Graph) {
	for _, b := range g.Bonds {
		if b.implicit && !b.InRing {
			b.Order = BondSingle
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Aromaticity
// ─────────────────────────────────────────────────────────────────────────────

const maxAromaticRingSize = 24

// perceiveAromaticity marks rings written in Kekulé form as aromatic when
// they satisfy the 4n+2 rule, first ring by ring and then over pairs of
// rings fused on one bond.  Atoms written in aromatic notation are trusted
// as given.
func perceiveAromaticity(g *Graph) {
	cycles := smallCycles(g)
	if len(cycles) == 0 {
		return
	}

	aromatic := make([]bool, len(cycles))
	for ci, r := range cycles {
		if allAromatic(g, r.atoms) {
			aromatic[ci] = true
			continue
		}
		if len(r.atoms) > maxAromaticRingSize {
			continue
		}
		if huckel(g, r.atoms) {
			aromatic[ci] = true
			markAromatic(g, r)
		}
	}

	for i := range cycles {
		for j := i + 1; j < len(cycles); j++ {
			if aromatic[i] && aromatic[j] {
				continue
			}
			shared := sharedAtoms(cycles[i].atoms, cycles[j].atoms)
			if shared != 2 {
				continue
			}
			union := unionAtoms(cycles[i].atoms, cycles[j].atoms)
			if huckel(g, union) {
				aromatic[i], aromatic[j] = true, true
				markAromatic(g, cycles[i])
				markAromatic(g, cycles[j])
			}
		}
	}
}

func allAromatic(g *Graph, atoms []int) bool {
	for _, a := range atoms {
		if !g.Atoms[a].Aromatic {
			return false
		}
	}
	return true
}

func markAromatic(g *Graph, r ring) {
	for _, a := range r.atoms {
		g.Atoms[a].Aromatic = true
	}
	for _, b := range r.bonds {
		g.Bonds[b].Order = BondAromatic
	}
}

// huckel sums the pi electrons donated by each atom and applies the 4n+2
// rule.  Any atom that cannot take part in a conjugated ring disqualifies
// the whole set.
func huckel(g *Graph, atoms []int) bool {
	total := 0
	for _, a := range atoms {
		e, ok := piElectrons(g, a)
		if !ok {
			return false
		}
		total += e
	}
	return total >= 2 && (total-2)%4 == 0
}

func piElectrons(g *Graph, i int) (int, bool) {
	a := g.Atoms[i]
	conn := g.degree(i) + a.HCount

	if a.Aromatic {
		switch a.Number() {
		case 6:
			if a.Charge < 0 {
				return 2, true
			}
			if g.hasBondOrder(i, BondDouble) && !hasRingDouble(g, i) {
				return 0, true
			}
			return 1, true
		case 5:
			return 0, true
		case 7, 15, 33:
			if conn == 3 && a.Charge == 0 {
				return 2, true
			}
			return 1, true
		default:
			return 2, true
		}
	}

	if g.hasBondOrder(i, BondTriple) {
		return 0, false
	}
	doubles := 0
	exo := -1
	for _, b := range g.bondsOf(i) {
		if b.Order != BondDouble {
			continue
		}
		doubles++
		if !b.InRing {
			exo = b.Other(i)
		}
	}
	switch {
	case doubles > 1:
		return 0, false
	case doubles == 1 && exo < 0:
		return 1, true
	case doubles == 1:
		// An exocyclic double bond to a more electronegative atom leaves
		// the ring atom with an empty p orbital.
		switch g.Atoms[exo].Number() {
		case 7, 8, 16:
			if a.Number() == 6 {
				return 0, true
			}
		}
		return 0, false
	}

	switch a.Number() {
	case 6:
		if a.Charge == -1 && conn == 3 {
			return 2, true
		}
		if a.Charge == 1 && conn == 3 {
			return 0, true
		}
	case 7, 15, 33:
		if a.Charge == 0 && conn == 3 {
			return 2, true
		}
		if a.Charge == -1 && conn == 2 {
			return 2, true
		}
	case 8, 16, 34, 52:
		if a.Charge == 0 && conn == 2 {
			return 2, true
		}
	case 5:
		if a.Charge == 0 && conn == 3 {
			return 0, true
		}
	}
	return 0, false
}

func hasRingDouble(g *Graph, i int) bool {
	for _, b := range g.bondsOf(i) {
		if b.Order == BondDouble && b.InRing {
			return true
		}
	}
	return false
}

func sharedAtoms(a, b []int) int {
	set := make(map[int]bool, len(a))
	for _, x := range a {
		set[x] = true
	}
	n := 0
	for _, y := range b {
		if set[y] {
			n++
		}
	}
	return n
}

func unionAtoms(a, b []int) []int {
	set := make(map[int]bool, len(a)+len(b))
	out := make([]int, 0, len(a)+len(b))
	for _, x := range append(append([]int(nil), a...), b...) {
		if !set[x] {
			set[x] = true
			out = append(out, x)
		}
	}
	return out
}
