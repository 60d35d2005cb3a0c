package molecule

import (
	"github.com/turtacn/odorscape/pkg/errors"
)

// smilesParser turns a SMILES string into an unsanitized Molecule.
type smilesParser struct {
	s   string
	pos int
	mol *Molecule

	prev    int      // atom the next atom bonds to, -1 at a component start
	pending BondType // bond written before the next atom, 0 if none
	branch  []int
	rings   map[int]openRing
}

type openRing struct {
	atom int
	bond BondType
	pos  int
}

func parseSMILES(s string) (*Molecule, error) {
	p := &smilesParser{s: s, mol: &Molecule{SMILES: s}, prev: -1, rings: make(map[int]openRing)}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.mol, nil
}

func (p *smilesParser) fail(msg string) error {
	return errors.New(errors.CodeMoleculeInvalidSMILES, msg).WithDetailf("%q at position %d", p.s, p.pos)
}

func (p *smilesParser) parse() error {
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 || p.pending != 0 {
				return p.fail("branch must follow an atom")
			}
			if p.pos+1 < len(p.s) && p.s[p.pos+1] == ')' {
				return p.fail("empty branch")
			}
			p.branch = append(p.branch, p.prev)
			p.pos++

		case c == ')':
			if len(p.branch) == 0 {
				return p.fail("unbalanced parenthesis")
			}
			if p.pending != 0 {
				return p.fail("bond without a following atom")
			}
			p.prev = p.branch[len(p.branch)-1]
			p.branch = p.branch[:len(p.branch)-1]
			p.pos++

		case isBondChar(c):
			if p.pending != 0 {
				return p.fail("consecutive bond symbols")
			}
			if p.prev < 0 {
				return p.fail("bond without a preceding atom")
			}
			p.pending = bondFromChar(c)
			p.pos++

		case c == '.':
			if p.pending != 0 || p.prev < 0 {
				return p.fail("misplaced component separator")
			}
			if len(p.branch) > 0 {
				return p.fail("component separator inside a branch")
			}
			p.prev = -1
			p.pos++

		case c >= '0' && c <= '9', c == '%':
			if err := p.ringClosure(); err != nil {
				return err
			}

		case c == '[':
			a, err := p.bracketAtom()
			if err != nil {
				return err
			}
			if err := p.connect(a); err != nil {
				return err
			}

		default:
			a, err := p.organicAtom()
			if err != nil {
				return err
			}
			if err := p.connect(a); err != nil {
				return err
			}
		}
	}

	switch {
	case p.pending != 0:
		return p.fail("trailing bond")
	case len(p.branch) > 0:
		return p.fail("unclosed branch")
	case len(p.rings) > 0:
		for _, r := range p.rings {
			p.pos = r.pos
			break
		}
		return p.fail("unclosed ring")
	case len(p.mol.Atoms) == 0:
		return p.fail("no atoms")
	}
	return nil
}

func isBondChar(c byte) bool {
	switch c {
	case '-', '=', '#', '$', ':', '/', '\\':
		return true
	}
	return false
}

func bondFromChar(c byte) BondType {
	switch c {
	case '=':
		return BondDouble
	case '#':
		return BondTriple
	case '$':
		return BondQuadruple
	case ':':
		return BondAromatic
	default:
		return BondSingle
	}
}

// implicitBond is the bond between two atoms joined without a bond symbol.
func (p *smilesParser) implicitBond(a, b int) BondType {
	if p.mol.Atoms[a].Aromatic && p.mol.Atoms[b].Aromatic {
		return BondAromatic
	}
	return BondSingle
}

func (p *smilesParser) connect(atom Atom) error {
	idx := p.mol.addAtom(atom)
	if p.prev >= 0 {
		bt := p.pending
		if bt == 0 {
			bt = p.implicitBond(p.prev, idx)
		}
		p.mol.addBond(p.prev, idx, bt)
	} else if p.pending != 0 {
		return p.fail("bond without a preceding atom")
	}
	p.pending = 0
	p.prev = idx
	return nil
}

func (p *smilesParser) ringClosure() error {
	if p.prev < 0 {
		return p.fail("ring closure without a preceding atom")
	}
	start := p.pos
	var num int
	if p.s[p.pos] == '%' {
		if p.pos+2 >= len(p.s) || !isDigit(p.s[p.pos+1]) || !isDigit(p.s[p.pos+2]) {
			return p.fail("malformed %nn ring closure")
		}
		num = int(p.s[p.pos+1]-'0')*10 + int(p.s[p.pos+2]-'0')
		p.pos += 3
	} else {
		num = int(p.s[p.pos] - '0')
		p.pos++
	}

	open, ok := p.rings[num]
	if !ok {
		p.rings[num] = openRing{atom: p.prev, bond: p.pending, pos: start}
		p.pending = 0
		return nil
	}
	delete(p.rings, num)

	if open.atom == p.prev {
		return p.fail("ring closure to the same atom")
	}
	if p.mol.bondBetween(open.atom, p.prev) >= 0 {
		return p.fail("ring closure duplicates an existing bond")
	}
	bt := open.bond
	switch {
	case bt == 0:
		bt = p.pending
	case p.pending != 0 && p.pending != bt:
		return p.fail("conflicting ring closure bond types")
	}
	if bt == 0 {
		bt = p.implicitBond(open.atom, p.prev)
	}
	p.mol.addBond(open.atom, p.prev, bt)
	p.pending = 0
	return nil
}

func (p *smilesParser) organicAtom() (Atom, error) {
	s := p.s[p.pos:]
	if s[0] == '*' {
		p.pos++
		return Atom{Number: 0}, nil
	}
	for _, sym := range []string{"Cl", "Br"} {
		if len(s) >= 2 && s[:2] == sym {
			p.pos += 2
			e, _ := LookupElement(sym)
			return Atom{Number: e.Number}, nil
		}
	}
	switch s[0] {
	case 'B', 'C', 'N', 'O', 'P', 'S', 'F', 'I':
		e, _ := LookupElement(s[:1])
		p.pos++
		return Atom{Number: e.Number}, nil
	case 'b', 'c', 'n', 'o', 'p', 's':
		e, _ := LookupElement(aromaticSymbols[s[:1]])
		p.pos++
		return Atom{Number: e.Number, Aromatic: true}, nil
	}
	return Atom{}, p.fail("unexpected character")
}

func (p *smilesParser) bracketAtom() (Atom, error) {
	p.pos++ // '['
	var a Atom
	a.Bracket = true

	a.Isotope = p.readInt(0)

	// Element symbol.
	s := p.s[p.pos:]
	switch {
	case len(s) == 0:
		return a, p.fail("unterminated bracket atom")
	case s[0] == '*':
		p.pos++
	case isUpper(s[0]):
		sym := s[:1]
		if len(s) >= 2 && isLower(s[1]) {
			if _, ok := LookupElement(s[:2]); ok {
				sym = s[:2]
			}
		}
		e, ok := LookupElement(sym)
		if !ok {
			return a, p.fail("unknown element " + sym)
		}
		a.Number = e.Number
		p.pos += len(sym)
	case isLower(s[0]):
		sym := ""
		if len(s) >= 2 {
			if _, ok := aromaticSymbols[s[:2]]; ok {
				sym = s[:2]
			}
		}
		if sym == "" {
			if _, ok := aromaticSymbols[s[:1]]; ok {
				sym = s[:1]
			}
		}
		if sym == "" {
			return a, p.fail("unknown aromatic element")
		}
		e, _ := LookupElement(aromaticSymbols[sym])
		a.Number = e.Number
		a.Aromatic = true
		p.pos += len(sym)
	default:
		return a, p.fail("missing element symbol")
	}

	// Chirality is accepted and ignored.
	if p.peek() == '@' {
		p.pos++
		if p.peek() == '@' {
			p.pos++
		} else {
			for _, tag := range []string{"TH", "AL", "SP", "TB", "OH"} {
				if len(p.s) >= p.pos+2 && p.s[p.pos:p.pos+2] == tag {
					p.pos += 2
					p.readInt(0)
					break
				}
			}
		}
	}

	if p.peek() == 'H' {
		p.pos++
		a.Hydrogens = p.readInt(1)
	}

	if c := p.peek(); c == '+' || c == '-' {
		sign := 1
		if c == '-' {
			sign = -1
		}
		p.pos++
		if isDigit(p.peek()) {
			a.Charge = sign * p.readInt(0)
		} else {
			n := 1
			for p.peek() == c {
				n++
				p.pos++
			}
			a.Charge = sign * n
		}
	}

	if p.peek() == ':' {
		p.pos++
		if !isDigit(p.peek()) {
			return a, p.fail("malformed atom class")
		}
		p.readInt(0)
	}

	if p.peek() != ']' {
		return a, p.fail("malformed bracket atom")
	}
	p.pos++
	return a, nil
}

func (p *smilesParser) peek() byte {
	if p.pos < len(p.s) {
		return p.s[p.pos]
	}
	return 0
}

// readInt consumes a run of digits, returning def when there are none.
func (p *smilesParser) readInt(def int) int {
	start := p.pos
	v := 0
	for p.pos < len(p.s) && isDigit(p.s[p.pos]) {
		v = v*10 + int(p.s[p.pos]-'0')
		p.pos++
	}
	if p.pos == start {
		return def
	}
	return v
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
