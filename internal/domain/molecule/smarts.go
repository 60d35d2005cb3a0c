package molecule

import (
	"strings"

	"github.com/turtacn/odorscape/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Compiled pattern
// ─────────────────────────────────────────────────────────────────────────────

type atomPred func(m *Molecule, i int) bool

type bondPred func(m *Molecule, b int) bool

type patternBond struct {
	a, b int
	pred bondPred
}

// Pattern is a compiled SMARTS query.  It is immutable and safe for
// concurrent use.
type Pattern struct {
	SMARTS string

	atoms []atomPred
	bonds []patternBond
	adj   [][]neighbor

	// order is the DFS visiting order of pattern atoms; parent[k] is the
	// already-visited pattern atom order[k] is reached from, or -1.
	order  []int
	parent []int
}

// CompileSMARTS parses a SMARTS string.  Supported atom primitives are
// *, a, A, #n, element symbols, D, X, H, h, R, r, v, x, charges, isotopes and
// recursive $(...) expressions, combined with !, &, ',' and ;.  Chirality is
// accepted and ignored.
func CompileSMARTS(smarts string) (*Pattern, error) {
	smarts = strings.TrimSpace(smarts)
	if smarts == "" {
		return nil, errors.New(errors.CodeSubstructureQueryInvalid, "empty SMARTS pattern")
	}
	p := &smartsParser{s: smarts, pat: &Pattern{SMARTS: smarts}, prev: -1, rings: make(map[int]openSmartsRing)}
	if err := p.parse(); err != nil {
		return nil, err
	}
	p.pat.plan()
	return p.pat, nil
}

// MustCompileSMARTS is like CompileSMARTS but panics on error.  Intended for
// package-level pattern tables.
func MustCompileSMARTS(smarts string) *Pattern {
	pat, err := CompileSMARTS(smarts)
	if err != nil {
		panic(err)
	}
	return pat
}

// NumAtoms returns the number of pattern atoms.
func (pt *Pattern) NumAtoms() int { return len(pt.atoms) }

func (pt *Pattern) addAtom(pred atomPred) int {
	pt.atoms = append(pt.atoms, pred)
	pt.adj = append(pt.adj, nil)
	return len(pt.atoms) - 1
}

func (pt *Pattern) addBond(a, b int, pred bondPred) {
	pt.bonds = append(pt.bonds, patternBond{a: a, b: b, pred: pred})
	idx := len(pt.bonds) - 1
	pt.adj[a] = append(pt.adj[a], neighbor{atom: b, bond: idx})
	pt.adj[b] = append(pt.adj[b], neighbor{atom: a, bond: idx})
}

func (pt *Pattern) plan() {
	n := len(pt.atoms)
	visited := make([]bool, n)
	pt.order = make([]int, 0, n)
	pt.parent = make([]int, 0, n)
	for root := 0; root < n; root++ {
		if visited[root] {
			continue
		}
		type item struct{ atom, from int }
		stack := []item{{root, -1}}
		for len(stack) > 0 {
			it := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[it.atom] {
				continue
			}
			visited[it.atom] = true
			pt.order = append(pt.order, it.atom)
			pt.parent = append(pt.parent, it.from)
			for k := len(pt.adj[it.atom]) - 1; k >= 0; k-- {
				if nb := pt.adj[it.atom][k]; !visited[nb.atom] {
					stack = append(stack, item{nb.atom, it.atom})
				}
			}
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Parser
// ─────────────────────────────────────────────────────────────────────────────

type smartsParser struct {
	s   string
	pos int
	pat *Pattern

	prev    int
	pending bondPred
	branch  []int
	rings   map[int]openSmartsRing
}

type openSmartsRing struct {
	atom int
	bond bondPred
}

func (p *smartsParser) fail(msg string) error {
	return errors.New(errors.CodeSubstructureQueryInvalid, msg).WithDetailf("%q at position %d", p.s, p.pos)
}

func (p *smartsParser) peek() byte {
	if p.pos < len(p.s) {
		return p.s[p.pos]
	}
	return 0
}

func (p *smartsParser) parse() error {
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 || p.pending != nil {
				return p.fail("branch must follow an atom")
			}
			p.branch = append(p.branch, p.prev)
			p.pos++

		case c == ')':
			if len(p.branch) == 0 {
				return p.fail("unbalanced parenthesis")
			}
			if p.pending != nil {
				return p.fail("bond without a following atom")
			}
			p.prev = p.branch[len(p.branch)-1]
			p.branch = p.branch[:len(p.branch)-1]
			p.pos++

		case c == '.':
			if p.pending != nil || p.prev < 0 {
				return p.fail("misplaced component separator")
			}
			p.prev = -1
			p.pos++

		case isSmartsBondChar(c):
			if p.prev < 0 {
				return p.fail("bond without a preceding atom")
			}
			if p.pending != nil {
				return p.fail("consecutive bond expressions")
			}
			pred, err := p.bondExpr()
			if err != nil {
				return err
			}
			p.pending = pred

		case isDigit(c) || c == '%':
			if err := p.ringClosure(); err != nil {
				return err
			}

		case c == '[':
			pred, err := p.bracketAtom()
			if err != nil {
				return err
			}
			p.connect(pred)

		default:
			pred, err := p.bareAtom()
			if err != nil {
				return err
			}
			p.connect(pred)
		}
	}

	switch {
	case p.pending != nil:
		return p.fail("trailing bond")
	case len(p.branch) > 0:
		return p.fail("unclosed branch")
	case len(p.rings) > 0:
		return p.fail("unclosed ring")
	case len(p.pat.atoms) == 0:
		return p.fail("no atoms")
	}
	return nil
}

func (p *smartsParser) connect(pred atomPred) {
	idx := p.pat.addAtom(pred)
	if p.prev >= 0 {
		bp := p.pending
		if bp == nil {
			bp = defaultBond
		}
		p.pat.addBond(p.prev, idx, bp)
	}
	p.pending = nil
	p.prev = idx
}

func (p *smartsParser) ringClosure() error {
	if p.prev < 0 {
		return p.fail("ring closure without a preceding atom")
	}
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
		p.rings[num] = openSmartsRing{atom: p.prev, bond: p.pending}
		p.pending = nil
		return nil
	}
	delete(p.rings, num)
	if open.atom == p.prev {
		return p.fail("ring closure to the same atom")
	}
	bp := open.bond
	if bp == nil {
		bp = p.pending
	}
	if bp == nil {
		bp = defaultBond
	}
	p.pat.addBond(open.atom, p.prev, bp)
	p.pending = nil
	return nil
}

// bareAtom parses an atom written outside brackets.
func (p *smartsParser) bareAtom() (atomPred, error) {
	s := p.s[p.pos:]
	switch s[0] {
	case '*':
		p.pos++
		return anyAtom, nil
	case 'a':
		p.pos++
		return isAromaticAtom, nil
	case 'A':
		p.pos++
		return isAliphaticAtom, nil
	}
	for _, sym := range []string{"Cl", "Br"} {
		if strings.HasPrefix(s, sym) {
			p.pos += 2
			e, _ := LookupElement(sym)
			return elementPred(e.Number, false), nil
		}
	}
	switch s[0] {
	case 'B', 'C', 'N', 'O', 'P', 'S', 'F', 'I':
		e, _ := LookupElement(s[:1])
		p.pos++
		return elementPred(e.Number, false), nil
	case 'b', 'c', 'n', 'o', 'p', 's':
		e, _ := LookupElement(aromaticSymbols[s[:1]])
		p.pos++
		return elementPred(e.Number, true), nil
	}
	return nil, p.fail("unexpected character")
}

func (p *smartsParser) bracketAtom() (atomPred, error) {
	p.pos++ // '['
	end := p.matchingBracket()
	if end < 0 {
		return nil, p.fail("unterminated bracket atom")
	}
	// [H], [2H], [H+] denote the hydrogen element, not a hydrogen count.
	body := strings.TrimLeft(p.s[p.pos:end], "0123456789")
	if body == "H" || body == "H+" || body == "H-" {
		iso := p.readInt(0)
		p.pos++ // 'H'
		preds := []atomPred{elementPred(1, false)}
		if iso > 0 {
			preds = append(preds, isotopePred(iso))
		}
		if p.peek() == '+' || p.peek() == '-' {
			preds = append(preds, chargePred(p.readCharge()))
		}
		p.pos = end + 1
		return andAtoms(preds...), nil
	}

	ap := &atomExprParser{p: p, end: end}
	pred, err := ap.low()
	if err != nil {
		return nil, err
	}
	if p.pos != end {
		return nil, p.fail("malformed bracket atom")
	}
	p.pos++
	return pred, nil
}

// matchingBracket returns the index of the ']' closing the bracket that
// starts at p.pos, skipping brackets nested in recursive expressions.
func (p *smartsParser) matchingBracket() int {
	depth := 0
	for i := p.pos; i < len(p.s); i++ {
		switch p.s[i] {
		case '[':
			depth++
		case ']':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

func (p *smartsParser) readInt(def int) int {
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

// readCharge consumes +, ++, +n, -, --, -n.
func (p *smartsParser) readCharge() int {
	c := p.peek()
	sign := 1
	if c == '-' {
		sign = -1
	}
	p.pos++
	if isDigit(p.peek()) {
		return sign * p.readInt(0)
	}
	n := 1
	for p.peek() == c {
		n++
		p.pos++
	}
	return sign * n
}

// ─────────────────────────────────────────────────────────────────────────────
// Atom expressions
// ─────────────────────────────────────────────────────────────────────────────

// atomExprParser handles precedence inside brackets: ';' binds loosest, then
// ',', then '&' or juxtaposition, then '!'.
type atomExprParser struct {
	p   *smartsParser
	end int
}

func (ap *atomExprParser) at(c byte) bool {
	return ap.p.pos < ap.end && ap.p.s[ap.p.pos] == c
}

func (ap *atomExprParser) low() (atomPred, error) {
	x, err := ap.or()
	if err != nil {
		return nil, err
	}
	for ap.at(';') {
		ap.p.pos++
		y, err := ap.or()
		if err != nil {
			return nil, err
		}
		x = andAtoms(x, y)
	}
	return x, nil
}

func (ap *atomExprParser) or() (atomPred, error) {
	x, err := ap.high()
	if err != nil {
		return nil, err
	}
	for ap.at(',') {
		ap.p.pos++
		y, err := ap.high()
		if err != nil {
			return nil, err
		}
		x = orAtoms(x, y)
	}
	return x, nil
}

func (ap *atomExprParser) high() (atomPred, error) {
	x, err := ap.not()
	if err != nil {
		return nil, err
	}
	for ap.p.pos < ap.end {
		c := ap.p.s[ap.p.pos]
		if c == ';' || c == ',' {
			break
		}
		if c == '&' {
			ap.p.pos++
		}
		y, err := ap.not()
		if err != nil {
			return nil, err
		}
		x = andAtoms(x, y)
	}
	return x, nil
}

func (ap *atomExprParser) not() (atomPred, error) {
	if ap.at('!') {
		ap.p.pos++
		x, err := ap.not()
		if err != nil {
			return nil, err
		}
		return func(m *Molecule, i int) bool { return !x(m, i) }, nil
	}
	return ap.primitive()
}

func (ap *atomExprParser) primitive() (atomPred, error) {
	p := ap.p
	if p.pos >= ap.end {
		return nil, p.fail("missing atom primitive")
	}
	c := p.s[p.pos]
	if isUpper(c) && p.pos+1 < ap.end && isLower(p.s[p.pos+1]) {
		if e, ok := LookupElement(p.s[p.pos : p.pos+2]); ok {
			p.pos += 2
			return elementPred(e.Number, false), nil
		}
	}
	switch {
	case isDigit(c):
		return isotopePred(p.readInt(0)), nil
	case c == '*':
		p.pos++
		return anyAtom, nil
	case c == 'a':
		p.pos++
		return isAromaticAtom, nil
	case c == 'A':
		p.pos++
		return isAliphaticAtom, nil
	case c == '#':
		p.pos++
		if !isDigit(p.peek()) {
			return nil, p.fail("# must be followed by an atomic number")
		}
		z := p.readInt(0)
		return func(m *Molecule, i int) bool { return m.Atoms[i].Number == z }, nil
	case c == '$':
		return ap.recursive()
	case c == '+' || c == '-':
		return chargePred(p.readCharge()), nil
	case c == '@':
		for p.peek() == '@' || p.peek() == '?' {
			p.pos++
		}
		return anyAtom, nil
	case c == 'D':
		p.pos++
		n := p.readInt(1)
		return func(m *Molecule, i int) bool { return len(m.adj[i]) == n }, nil
	case c == 'X':
		p.pos++
		n := p.readInt(1)
		return func(m *Molecule, i int) bool { return len(m.adj[i])+m.Atoms[i].Hydrogens == n }, nil
	case c == 'H':
		p.pos++
		n := p.readInt(1)
		return func(m *Molecule, i int) bool { return m.Atoms[i].Hydrogens == n }, nil
	case c == 'h':
		p.pos++
		if !isDigit(p.peek()) {
			return func(m *Molecule, i int) bool { return m.Atoms[i].Hydrogens > 0 }, nil
		}
		n := p.readInt(0)
		return func(m *Molecule, i int) bool { return m.Atoms[i].Hydrogens == n }, nil
	case c == 'R':
		p.pos++
		if !isDigit(p.peek()) {
			return inRingAtom, nil
		}
		n := p.readInt(0)
		return func(m *Molecule, i int) bool { return len(m.atomRings[i]) == n }, nil
	case c == 'r':
		p.pos++
		if !isDigit(p.peek()) {
			return inRingAtom, nil
		}
		n := p.readInt(0)
		return func(m *Molecule, i int) bool {
			for _, ri := range m.atomRings[i] {
				if len(m.rings[ri]) == n {
					return true
				}
			}
			return false
		}, nil
	case c == 'v':
		p.pos++
		n := p.readInt(1)
		return func(m *Molecule, i int) bool { return m.bondSum(i, true)+m.Atoms[i].Hydrogens == n }, nil
	case c == 'x':
		p.pos++
		if !isDigit(p.peek()) {
			return func(m *Molecule, i int) bool { return m.ringBondCount(i) > 0 }, nil
		}
		n := p.readInt(0)
		return func(m *Molecule, i int) bool { return m.ringBondCount(i) == n }, nil
	case isUpper(c):
		sym := p.s[p.pos : p.pos+1]
		e, ok := LookupElement(sym)
		if !ok {
			return nil, p.fail("unknown element " + sym)
		}
		p.pos += len(sym)
		return elementPred(e.Number, false), nil
	case isLower(c):
		sym := ""
		if p.pos+1 < ap.end {
			if _, ok := aromaticSymbols[p.s[p.pos:p.pos+2]]; ok {
				sym = p.s[p.pos : p.pos+2]
			}
		}
		if sym == "" {
			if _, ok := aromaticSymbols[p.s[p.pos:p.pos+1]]; ok {
				sym = p.s[p.pos : p.pos+1]
			}
		}
		if sym == "" {
			return nil, p.fail("unknown aromatic element")
		}
		e, _ := LookupElement(aromaticSymbols[sym])
		p.pos += len(sym)
		return elementPred(e.Number, true), nil
	}
	return nil, p.fail("unsupported atom primitive")
}

// recursive parses $(...) into a predicate anchored on the first atom of the
// inner pattern.
func (ap *atomExprParser) recursive() (atomPred, error) {
	p := ap.p
	if p.pos+1 >= ap.end || p.s[p.pos+1] != '(' {
		return nil, p.fail("$ must be followed by (")
	}
	start := p.pos + 2
	depth := 1
	i := start
	for ; i < ap.end && depth > 0; i++ {
		switch p.s[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	if depth != 0 {
		return nil, p.fail("unclosed recursive expression")
	}
	inner, err := CompileSMARTS(p.s[start : i-1])
	if err != nil {
		return nil, err
	}
	p.pos = i
	return func(m *Molecule, a int) bool { return inner.matchAt(m, a) }, nil
}

func anyAtom(*Molecule, int) bool { return true }

func isAromaticAtom(m *Molecule, i int) bool { return m.Atoms[i].Aromatic }

func isAliphaticAtom(m *Molecule, i int) bool { return !m.Atoms[i].Aromatic }

func inRingAtom(m *Molecule, i int) bool { return m.Atoms[i].InRing }

func elementPred(z int, aromatic bool) atomPred {
	return func(m *Molecule, i int) bool {
		a := &m.Atoms[i]
		return a.Number == z && a.Aromatic == aromatic
	}
}

func isotopePred(iso int) atomPred {
	return func(m *Molecule, i int) bool { return m.Atoms[i].Isotope == iso }
}

func chargePred(q int) atomPred {
	return func(m *Molecule, i int) bool { return m.Atoms[i].Charge == q }
}

func andAtoms(preds ...atomPred) atomPred {
	if len(preds) == 1 {
		return preds[0]
	}
	return func(m *Molecule, i int) bool {
		for _, f := range preds {
			if !f(m, i) {
				return false
			}
		}
		return true
	}
}

func orAtoms(x, y atomPred) atomPred {
	return func(m *Molecule, i int) bool { return x(m, i) || y(m, i) }
}

func (m *Molecule) ringBondCount(i int) int {
	n := 0
	for _, nb := range m.adj[i] {
		if m.Bonds[nb.bond].InRing {
			n++
		}
	}
	return n
}

// ─────────────────────────────────────────────────────────────────────────────
// Bond expressions
// ─────────────────────────────────────────────────────────────────────────────

func isSmartsBondChar(c byte) bool {
	switch c {
	case '-', '=', '#', ':', '~', '@', '/', '\\', '!':
		return true
	}
	return false
}

// defaultBond is the bond implied between two adjacent atoms: single or
// aromatic.
func defaultBond(m *Molecule, b int) bool {
	t := m.Bonds[b].Type
	return t == BondSingle || t == BondAromatic
}

// bondExpr parses a bond expression with the same operator precedence as
// atom expressions.
func (p *smartsParser) bondExpr() (bondPred, error) {
	start := p.pos
	end := p.pos
	for end < len(p.s) && (isSmartsBondChar(p.s[end]) || p.s[end] == '&' || p.s[end] == ',' || p.s[end] == ';') {
		end++
	}
	bp := &bondExprParser{p: p, end: end}
	pred, err := bp.low()
	if err != nil {
		return nil, err
	}
	if p.pos != end {
		p.pos = start
		return nil, p.fail("malformed bond expression")
	}
	return pred, nil
}

type bondExprParser struct {
	p   *smartsParser
	end int
}

func (bp *bondExprParser) at(c byte) bool {
	return bp.p.pos < bp.end && bp.p.s[bp.p.pos] == c
}

func (bp *bondExprParser) low() (bondPred, error) {
	x, err := bp.or()
	if err != nil {
		return nil, err
	}
	for bp.at(';') {
		bp.p.pos++
		y, err := bp.or()
		if err != nil {
			return nil, err
		}
		x = andBonds(x, y)
	}
	return x, nil
}

func (bp *bondExprParser) or() (bondPred, error) {
	x, err := bp.high()
	if err != nil {
		return nil, err
	}
	for bp.at(',') {
		bp.p.pos++
		y, err := bp.high()
		if err != nil {
			return nil, err
		}
		xx, yy := x, y
		x = func(m *Molecule, b int) bool { return xx(m, b) || yy(m, b) }
	}
	return x, nil
}

func (bp *bondExprParser) high() (bondPred, error) {
	x, err := bp.not()
	if err != nil {
		return nil, err
	}
	for bp.p.pos < bp.end {
		c := bp.p.s[bp.p.pos]
		if c == ';' || c == ',' {
			break
		}
		if c == '&' {
			bp.p.pos++
		}
		y, err := bp.not()
		if err != nil {
			return nil, err
		}
		x = andBonds(x, y)
	}
	return x, nil
}

func (bp *bondExprParser) not() (bondPred, error) {
	if bp.at('!') {
		bp.p.pos++
		x, err := bp.not()
		if err != nil {
			return nil, err
		}
		return func(m *Molecule, b int) bool { return !x(m, b) }, nil
	}
	if bp.p.pos >= bp.end {
		return nil, bp.p.fail("missing bond primitive")
	}
	c := bp.p.s[bp.p.pos]
	bp.p.pos++
	switch c {
	case '-', '/', '\\':
		return bondTypePred(BondSingle), nil
	case '=':
		return bondTypePred(BondDouble), nil
	case '#':
		return bondTypePred(BondTriple), nil
	case ':':
		return bondTypePred(BondAromatic), nil
	case '~':
		return func(*Molecule, int) bool { return true }, nil
	case '@':
		return func(m *Molecule, b int) bool { return m.Bonds[b].InRing }, nil
	}
	bp.p.pos--
	return nil, bp.p.fail("unsupported bond primitive")
}

func bondTypePred(t BondType) bondPred {
	return func(m *Molecule, b int) bool { return m.Bonds[b].Type == t }
}

func andBonds(x, y bondPred) bondPred {
	return func(m *Molecule, b int) bool { return x(m, b) && y(m, b) }
}
