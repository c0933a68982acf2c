package molecule

import (
	"fmt"
	"strings"

	"github.com/turtacn/druglike/pkg/errors"
)

// rawAtom and rawBond are the parser's intermediate records.  Explicit
// hydrogens are still atoms at this stage.
type rawAtom struct {
	elem     *Element
	isotope  int
	charge   int
	hcount   int
	aromatic bool
	bracket  bool
}

type rawBond struct {
	a, b     int
	order    BondOrder
	implicit bool
}

type ringOpen struct {
	atom  int
	order BondOrder
	set   bool
}

type smilesParser struct {
	src   string
	pos   int
	atoms []rawAtom
	bonds []rawBond
	rings map[int]ringOpen
}

// Parse turns a SMILES string into a molecular graph with hydrogens
// assigned, ring bonds flagged and aromaticity perceived.
func Parse(smiles string) (*Graph, error) {
	s := strings.TrimSpace(smiles)
	if s == "" {
		return nil, errors.New(errors.ErrCodeMoleculeInvalidSMILES, "empty SMILES")
	}
	p := &smilesParser{src: s, rings: make(map[int]ringOpen)}
	if err := p.run(); err != nil {
		return nil, err
	}
	g := p.build()
	g.SMILES = s
	perceiveRings(g)
	resolveImplicitAromaticBonds(g)
	perceiveAromaticity(g)
	return g, nil
}

func (p *smilesParser) fail(code errors.ErrorCode, msg string) error {
	return errors.New(code, msg).WithDetail(fmt.Sprintf("smiles=%q pos=%d", p.src, p.pos))
}

func (p *smilesParser) run() error {
	prev := -1
	var stack []int
	var pending BondOrder
	pendingSet := false

	for p.pos < len(p.src) {
		ch := p.src[p.pos]
		switch {
		case ch == '(':
			if prev < 0 {
				return p.fail(errors.ErrCodeMoleculeInvalidSMILES, "branch opened before any atom")
			}
			stack = append(stack, prev)
			p.pos++

		case ch == ')':
			if len(stack) == 0 {
				return p.fail(errors.ErrCodeMoleculeInvalidSMILES, "unbalanced ')'")
			}
			if pendingSet {
				return p.fail(errors.ErrCodeMoleculeInvalidSMILES, "bond symbol before ')'")
			}
			prev = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			p.pos++

		case ch == '-' || ch == '/' || ch == '\\':
			pending, pendingSet = BondSingle, true
			p.pos++
		case ch == '=':
			pending, pendingSet = BondDouble, true
			p.pos++
		case ch == '#':
			pending, pendingSet = BondTriple, true
			p.pos++
		case ch == '$':
			pending, pendingSet = BondQuadruple, true
			p.pos++
		case ch == ':':
			pending, pendingSet = BondAromatic, true
			p.pos++

		case ch == '.':
			if pendingSet {
				return p.fail(errors.ErrCodeMoleculeInvalidSMILES, "bond symbol before '.'")
			}
			prev = -1
			p.pos++

		case ch == '%' || (ch >= '0' && ch <= '9'):
			if prev < 0 {
				return p.fail(errors.ErrCodeMoleculeInvalidSMILES, "ring bond before any atom")
			}
			num, err := p.ringNumber()
			if err != nil {
				return err
			}
			if err := p.ringClosure(prev, num, pending, pendingSet); err != nil {
				return err
			}
			pendingSet = false

		default:
			atom, err := p.atom()
			if err != nil {
				return err
			}
			idx := len(p.atoms)
			p.atoms = append(p.atoms, atom)
			if prev >= 0 {
				p.link(prev, idx, pending, pendingSet)
			} else if pendingSet {
				return p.fail(errors.ErrCodeMoleculeInvalidSMILES, "bond symbol without a preceding atom")
			}
			pendingSet = false
			prev = idx
		}
	}

	if pendingSet {
		return p.fail(errors.ErrCodeMoleculeInvalidSMILES, "trailing bond symbol")
	}
	if len(stack) > 0 {
		return p.fail(errors.ErrCodeMoleculeInvalidSMILES, "unbalanced '('")
	}
	if len(p.rings) > 0 {
		first := -1
		for num := range p.rings {
			if first < 0 || num < first {
				first = num
			}
		}
		return p.fail(errors.ErrCodeUnclosedRing, fmt.Sprintf("ring bond %d is never closed", first))
	}
	if len(p.atoms) == 0 {
		return p.fail(errors.ErrCodeMoleculeInvalidSMILES, "no atoms")
	}
	return nil
}

func (p *smilesParser) link(a, b int, order BondOrder, explicit bool) {
	if explicit {
		p.bonds = append(p.bonds, rawBond{a: a, b: b, order: order})
		return
	}
	p.bonds = append(p.bonds, p.defaultBond(a, b))
}

// defaultBond is the bond implied when no symbol is written: aromatic
// between two aromatic atoms (demoted to single later when not in a ring),
// single otherwise.
func (p *smilesParser) defaultBond(a, b int) rawBond {
	if p.atoms[a].aromatic && p.atoms[b].aromatic {
		return rawBond{a: a, b: b, order: BondAromatic, implicit: true}
	}
	return rawBond{a: a, b: b, order: BondSingle}
}

func (p *smilesParser) ringNumber() (int, error) {
	if p.src[p.pos] != '%' {
		n := int(p.src[p.pos] - '0')
		p.pos++
		return n, nil
	}
	if p.pos+2 >= len(p.src) || !isDigit(p.src[p.pos+1]) || !isDigit(p.src[p.pos+2]) {
		return 0, p.fail(errors.ErrCodeMoleculeInvalidSMILES, "'%' must be followed by two digits")
	}
	n := int(p.src[p.pos+1]-'0')*10 + int(p.src[p.pos+2]-'0')
	p.pos += 3
	return n, nil
}

func (p *smilesParser) ringClosure(atom, num int, order BondOrder, explicit bool) error {
	open, ok := p.rings[num]
	if !ok {
		p.rings[num] = ringOpen{atom: atom, order: order, set: explicit}
		return nil
	}
	delete(p.rings, num)
	if open.atom == atom {
		return p.fail(errors.ErrCodeMoleculeInvalidSMILES, "ring bond to self")
	}
	for _, b := range p.bonds {
		if (b.a == open.atom && b.b == atom) || (b.a == atom && b.b == open.atom) {
			return p.fail(errors.ErrCodeMoleculeInvalidSMILES, "duplicate bond via ring closure")
		}
	}
	switch {
	case open.set && explicit && open.order != order:
		return p.fail(errors.ErrCodeMoleculeInvalidSMILES, "conflicting ring bond orders")
	case open.set:
		p.link(open.atom, atom, open.order, true)
	default:
		p.link(open.atom, atom, order, explicit)
	}
	return nil
}

func (p *smilesParser) atom() (rawAtom, error) {
	ch := p.src[p.pos]
	if ch == '[' {
		return p.bracketAtom()
	}
	if ch == '*' {
		p.pos++
		return rawAtom{elem: LookupElement("*")}, nil
	}
	// Organic subset: two-letter symbols first.
	if strings.HasPrefix(p.src[p.pos:], "Cl") || strings.HasPrefix(p.src[p.pos:], "Br") {
		sym := p.src[p.pos : p.pos+2]
		p.pos += 2
		return rawAtom{elem: LookupElement(sym)}, nil
	}
	switch ch {
	case 'B', 'C', 'N', 'O', 'P', 'S', 'F', 'I':
		p.pos++
		return rawAtom{elem: LookupElement(string(ch))}, nil
	case 'b', 'c', 'n', 'o', 'p', 's':
		p.pos++
		return rawAtom{elem: LookupElement(strings.ToUpper(string(ch))), aromatic: true}, nil
	}
	return rawAtom{}, p.fail(errors.ErrCodeMoleculeInvalidSMILES, fmt.Sprintf("unexpected character %q", ch))
}

var aromaticBracketSymbols = map[string]string{
	"se": "Se", "as": "As", "te": "Te",
	"b": "B", "c": "C", "n": "N", "o": "O", "p": "P", "s": "S",
}

func (p *smilesParser) bracketAtom() (rawAtom, error) {
	end := strings.IndexByte(p.src[p.pos:], ']')
	if end < 0 {
		return rawAtom{}, p.fail(errors.ErrCodeMoleculeInvalidSMILES, "unclosed '['")
	}
	body := p.src[p.pos+1 : p.pos+end]
	start := p.pos
	p.pos += end + 1

	a := rawAtom{bracket: true}
	i := 0
	for i < len(body) && isDigit(body[i]) {
		a.isotope = a.isotope*10 + int(body[i]-'0')
		i++
	}

	var sym string
	switch {
	case i < len(body) && body[i] == '*':
		sym = "*"
		i++
	case i+1 < len(body) && aromaticBracketSymbols[body[i:i+2]] != "":
		sym = aromaticBracketSymbols[body[i:i+2]]
		a.aromatic = true
		i += 2
	case i < len(body) && aromaticBracketSymbols[body[i:i+1]] != "":
		sym = aromaticBracketSymbols[body[i:i+1]]
		a.aromatic = true
		i++
	case i+1 < len(body) && isUpper(body[i]) && isLower(body[i+1]) && LookupElement(body[i:i+2]) != nil:
		sym = body[i : i+2]
		i += 2
	case i < len(body) && isUpper(body[i]):
		sym = body[i : i+1]
		i++
	default:
		p.pos = start
		return rawAtom{}, p.fail(errors.ErrCodeMoleculeInvalidSMILES, fmt.Sprintf("bad bracket atom [%s]", body))
	}
	a.elem = LookupElement(sym)
	if a.elem == nil {
		p.pos = start
		return rawAtom{}, p.fail(errors.ErrCodeUnknownElement, fmt.Sprintf("unknown element %q", sym))
	}

	// chirality
	if i < len(body) && body[i] == '@' {
		i++
		if i < len(body) && body[i] == '@' {
			i++
		}
		for _, class := range []string{"TH", "AL", "SP", "TB", "OH"} {
			if strings.HasPrefix(body[i:], class) {
				i += 2
				for i < len(body) && isDigit(body[i]) {
					i++
				}
				break
			}
		}
	}

	// hydrogen count
	if i < len(body) && body[i] == 'H' {
		i++
		a.hcount = 1
		if i < len(body) && isDigit(body[i]) {
			a.hcount = int(body[i] - '0')
			i++
		}
	}

	// charge
	if i < len(body) && (body[i] == '+' || body[i] == '-') {
		sign := 1
		if body[i] == '-' {
			sign = -1
		}
		c := body[i]
		i++
		n := 1
		if i < len(body) && isDigit(body[i]) {
			n = 0
			for i < len(body) && isDigit(body[i]) {
				n = n*10 + int(body[i]-'0')
				i++
			}
		} else {
			for i < len(body) && body[i] == c {
				n++
				i++
			}
		}
		a.charge = sign * n
	}

	// atom class
	if i < len(body) && body[i] == ':' {
		i++
		for i < len(body) && isDigit(body[i]) {
			i++
		}
	}

	if i != len(body) {
		p.pos = start
		return rawAtom{}, p.fail(errors.ErrCodeMoleculeInvalidSMILES, fmt.Sprintf("bad bracket atom [%s]", body))
	}
	return a, nil
}

// build converts the raw records into a Graph, folding unlabelled explicit
// hydrogens into their heavy neighbour and assigning implicit hydrogens and
// valences.
func (p *smilesParser) build() *Graph {
	adj := make([][]int, len(p.atoms))
	for bi, b := range p.bonds {
		adj[b.a] = append(adj[b.a], bi)
		adj[b.b] = append(adj[b.b], bi)
	}

	folded := make([]bool, len(p.atoms))
	for i, a := range p.atoms {
		if a.elem.Number != 1 || a.isotope != 0 || a.charge != 0 || a.hcount != 0 || len(adj[i]) != 1 {
			continue
		}
		b := p.bonds[adj[i][0]]
		other := b.a
		if other == i {
			other = b.b
		}
		if p.atoms[other].elem.Number == 1 || b.order != BondSingle {
			continue
		}
		folded[i] = true
		p.atoms[other].hcount++
	}

	g := &Graph{}
	remap := make([]int, len(p.atoms))
	for i, a := range p.atoms {
		if folded[i] {
			remap[i] = -1
			continue
		}
		remap[i] = g.addAtom(&Atom{
			Element:  a.elem,
			Isotope:  a.isotope,
			Charge:   a.charge,
			Aromatic: a.aromatic,
			HCount:   a.hcount,
		})
	}
	for _, b := range p.bonds {
		if remap[b.a] < 0 || remap[b.b] < 0 {
			continue
		}
		nb := g.addBond(remap[b.a], remap[b.b], b.order)
		nb.implicit = b.implicit
	}

	// Bracket atoms declare their hydrogens; organic-subset atoms get the
	// implicit ones.  Folded hydrogens have already been added above.
	gi := 0
	for i, a := range p.atoms {
		if folded[i] {
			continue
		}
		atom := g.Atoms[gi]
		gi++
		if !a.bracket {
			atom.HCount += implicitHydrogens(g, atom)
		}
		atom.Valence = assignValence(g, atom)
	}
	return g
}

func bondSum(g *Graph, a *Atom) int {
	sum := 0
	for _, b := range g.bondsOf(a.Index) {
		sum += b.Order.valenceContrib()
	}
	return sum
}

// implicitHydrogens fills an organic-subset atom up to its lowest allowed
// valence.  An aromatic atom reserves one unit for its share of the
// delocalised double bond and never moves to a higher valence: a pyrrole
// type nitrogen carrying H must be written [nH].
func implicitHydrogens(g *Graph, a *Atom) int {
	vals := a.Element.Valences
	if len(vals) == 0 {
		return 0
	}
	used := bondSum(g, a) + a.HCount
	if a.Aromatic {
		used++
		if used >= vals[0] {
			return 0
		}
		return vals[0] - used
	}
	for _, v := range vals {
		if v >= used {
			return v - used
		}
	}
	return 0
}

// assignValence derives the total valence on the Kekulé form.  For atoms
// written in aromatic notation the Kekulé bond orders are unknown, so the
// valence is the lowest charge-adjusted valence that accommodates the
// single-counted bonds and hydrogens.
func assignValence(g *Graph, a *Atom) int {
	used := bondSum(g, a) + a.HCount
	if !a.Aromatic {
		return used
	}
	for _, v := range valencesFor(a.Element, a.Charge) {
		if v >= used {
			return v
		}
	}
	return used
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
