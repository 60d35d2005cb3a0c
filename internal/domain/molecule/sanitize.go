package molecule

import (
	"fmt"
	"sort"

	"github.com/turtacn/odorscape/pkg/errors"
)

// sanitize validates and completes a freshly parsed molecule: hydrogens are
// folded, rings perceived, aromatic systems kekulized, implicit hydrogens
// assigned, valences checked and aromaticity perceived.
func (m *Molecule) sanitize() error {
	m.foldHydrogens()
	m.perceiveRings()

	for i := range m.Atoms {
		if m.Atoms[i].Aromatic && !m.Atoms[i].InRing {
			return errors.Newf(errors.CodeMoleculeSanitizationFailed, "non-ring atom %d marked aromatic", i)
		}
	}
	for i := range m.Bonds {
		b := &m.Bonds[i]
		if b.Type != BondAromatic {
			continue
		}
		if !b.InRing {
			// Implicit bond between two aromatic rings, as in biphenyl.
			b.Type = BondSingle
			continue
		}
		if !m.Atoms[b.Begin].Aromatic || !m.Atoms[b.End].Aromatic {
			return errors.Newf(errors.CodeMoleculeSanitizationFailed, "aromatic bond %d joins a non-aromatic atom", i)
		}
	}

	if err := m.kekulize(); err != nil {
		return err
	}
	if err := m.assignHydrogens(); err != nil {
		return err
	}
	m.perceiveAromaticity()
	return nil
}

// foldHydrogens removes neutral, singly-bonded hydrogen atoms and records
// them as hydrogen counts on their heavy neighbour.
func (m *Molecule) foldHydrogens() {
	remove := make([]bool, len(m.Atoms))
	folded := false
	for i := range m.Atoms {
		a := &m.Atoms[i]
		if a.Number != 1 || a.Charge != 0 || a.Isotope != 0 || a.Hydrogens != 0 || len(m.adj[i]) != 1 {
			continue
		}
		nb := m.adj[i][0]
		if m.Atoms[nb.atom].Number == 1 || m.Bonds[nb.bond].Type != BondSingle {
			continue
		}
		remove[i] = true
		folded = true
		heavy := &m.Atoms[nb.atom]
		if heavy.Bracket {
			heavy.Hydrogens++
		} else {
			heavy.explicitH++
		}
	}
	if !folded {
		return
	}

	newIdx := make([]int, len(m.Atoms))
	atoms := m.Atoms[:0:0]
	for i, a := range m.Atoms {
		if remove[i] {
			newIdx[i] = -1
			continue
		}
		newIdx[i] = len(atoms)
		atoms = append(atoms, a)
	}
	bonds := m.Bonds[:0:0]
	for _, b := range m.Bonds {
		if remove[b.Begin] || remove[b.End] {
			continue
		}
		b.Begin, b.End = newIdx[b.Begin], newIdx[b.End]
		bonds = append(bonds, b)
	}
	m.Atoms, m.Bonds = atoms, bonds
	m.rebuildAdjacency()
}

// fixedHydrogens is the hydrogen count known before implicit assignment.
func (a *Atom) fixedHydrogens() int {
	if a.Bracket {
		return a.Hydrogens
	}
	return a.explicitH
}

// bondSum is the valence used by atom i's bonds, counting aromatic bonds as
// single until kekulization has run.
func (m *Molecule) bondSum(i int, kekulized bool) int {
	s := 0
	for _, nb := range m.adj[i] {
		b := &m.Bonds[nb.bond]
		if kekulized {
			s += b.Kekule
		} else {
			s += b.Type.order()
		}
	}
	return s
}

// smallestValenceAtLeast returns the smallest allowed valence ≥ s.
func smallestValenceAtLeast(vals []int, s int) (int, bool) {
	for _, v := range vals {
		if v >= s {
			return v, true
		}
	}
	return 0, false
}

// needsPiBond reports whether aromatic atom i must take a double bond in the
// Kekulé structure.
func (m *Molecule) needsPiBond(i int) bool {
	a := &m.Atoms[i]
	vals, ok := allowedValences(a.Number, a.Charge)
	if !ok {
		return false
	}
	s := m.bondSum(i, false) + a.fixedHydrogens()
	v, ok := smallestValenceAtLeast(vals, s)
	return ok && v > s
}

// kekulize assigns alternating single and double bonds to aromatic bonds so
// that every aromatic atom needing a pi bond receives exactly one.
func (m *Molecule) kekulize() error {
	pi := make([]bool, len(m.Atoms))
	var piAtoms []int
	for i := range m.Atoms {
		if m.Atoms[i].Aromatic && m.needsPiBond(i) {
			pi[i] = true
			piAtoms = append(piAtoms, i)
		}
	}

	match := make([]int, len(m.Atoms))
	for i := range match {
		match[i] = -1
	}
	if len(piAtoms) > 0 {
		if len(piAtoms)%2 != 0 || !m.matchPi(pi, match, piAtoms) {
			return errors.New(errors.CodeMoleculeSanitizationFailed, "cannot kekulize aromatic system")
		}
	}

	for i := range m.Bonds {
		b := &m.Bonds[i]
		if b.Type != BondAromatic {
			b.Kekule = b.Type.order()
			continue
		}
		if match[b.Begin] == b.End {
			b.Kekule = 2
		} else {
			b.Kekule = 1
		}
	}
	return nil
}

// matchPi finds a perfect matching of pi atoms over aromatic bonds by
// backtracking, always extending the most constrained atom first.
func (m *Molecule) matchPi(pi []bool, match []int, piAtoms []int) bool {
	best, bestOpts := -1, 1<<30
	for _, a := range piAtoms {
		if match[a] >= 0 {
			continue
		}
		opts := 0
		for _, nb := range m.adj[a] {
			if pi[nb.atom] && match[nb.atom] < 0 && m.Bonds[nb.bond].Type == BondAromatic {
				opts++
			}
		}
		if opts < bestOpts {
			best, bestOpts = a, opts
		}
	}
	if best < 0 {
		return true
	}
	if bestOpts == 0 {
		return false
	}
	for _, nb := range m.adj[best] {
		if !pi[nb.atom] || match[nb.atom] >= 0 || m.Bonds[nb.bond].Type != BondAromatic {
			continue
		}
		match[best], match[nb.atom] = nb.atom, best
		if m.matchPi(pi, match, piAtoms) {
			return true
		}
		match[best], match[nb.atom] = -1, -1
	}
	return false
}

// assignHydrogens sets implicit hydrogens on organic-subset atoms and checks
// every atom's valence against its allowed list.
func (m *Molecule) assignHydrogens() error {
	for i := range m.Atoms {
		a := &m.Atoms[i]
		vals, ok := allowedValences(a.Number, a.Charge)
		s := m.bondSum(i, true)
		if a.Bracket {
			if ok && s+a.Hydrogens > vals[len(vals)-1] {
				return m.valenceError(i, s+a.Hydrogens)
			}
			continue
		}
		total := s + a.explicitH
		if !ok {
			a.Hydrogens = a.explicitH
			continue
		}
		v, found := smallestValenceAtLeast(vals, total)
		if !found {
			return m.valenceError(i, total)
		}
		a.Hydrogens = a.explicitH + v - total
	}
	return nil
}

func (m *Molecule) valenceError(i, valence int) error {
	return errors.New(errors.CodeMoleculeSanitizationFailed, "explicit valence exceeds the allowed maximum").
		WithDetail(fmt.Sprintf("atom %d (%s) valence %d", i, m.Atoms[i].Symbol(), valence))
}

// ─────────────────────────────────────────────────────────────────────────────
// Aromaticity
// ─────────────────────────────────────────────────────────────────────────────

const (
	minAromaticRing = 5
	maxAromaticRing = 7
	maxEnvelope     = 12
)

// piElectrons returns the electrons atom i donates to a ring, using the
// Kekulé structure.  ok is false for atoms that break conjugation.
func (m *Molecule) piElectrons(i int) (n int, ok bool) {
	a := &m.Atoms[i]
	doubles, partnerBond := 0, -1
	for _, nb := range m.adj[i] {
		switch m.Bonds[nb.bond].Kekule {
		case 2:
			doubles++
			partnerBond = nb.bond
		case 3:
			return 0, false
		}
	}
	switch {
	case doubles > 1:
		return 0, false
	case doubles == 1:
		b := &m.Bonds[partnerBond]
		if b.InRing {
			return 1, true
		}
		switch m.Atoms[b.Other(i)].Number {
		case 7, 8, 16:
			return 0, true
		}
		return 0, false
	}

	conn := len(m.adj[i]) + a.Hydrogens
	switch a.Number {
	case 7, 15, 33:
		if (a.Charge == 0 && conn == 3) || (a.Charge == -1 && conn == 2) {
			return 2, true
		}
	case 8, 16, 34, 52:
		if a.Charge == 0 && conn == 2 {
			return 2, true
		}
	case 6:
		if a.Charge == -1 {
			return 2, true
		}
		if a.Charge == 1 {
			return 0, true
		}
	case 5:
		if a.Charge == 0 && conn == 3 {
			return 0, true
		}
	}
	return 0, false
}

func (m *Molecule) huckel(atoms []int) bool {
	total := 0
	for _, a := range atoms {
		n, ok := m.piElectrons(a)
		if !ok {
			return false
		}
		total += n
	}
	return total%4 == 2
}

// perceiveAromaticity marks 4n+2 rings, and fused ring pairs whose shared
// envelope is 4n+2, as aromatic.  Atoms written aromatic stay aromatic.
func (m *Molecule) perceiveAromaticity() {
	mark := func(ring []int) {
		for _, a := range ring {
			m.Atoms[a].Aromatic = true
		}
		for _, b := range m.ringBonds(ring) {
			m.Bonds[b].Type = BondAromatic
		}
	}

	var candidates [][]int
	for _, r := range m.rings {
		if len(r) >= minAromaticRing && len(r) <= maxAromaticRing {
			candidates = append(candidates, r)
		}
	}
	aromatic := make([]bool, len(candidates))
	for i, r := range candidates {
		if m.huckel(r) {
			aromatic[i] = true
		}
	}
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			if aromatic[i] && aromatic[j] {
				continue
			}
			union := unionAtoms(candidates[i], candidates[j])
			if len(union) > maxEnvelope || len(union) == len(candidates[i])+len(candidates[j]) {
				continue
			}
			if m.huckel(union) {
				aromatic[i], aromatic[j] = true, true
			}
		}
	}
	for i, r := range candidates {
		if aromatic[i] {
			mark(r)
		}
	}
}

func unionAtoms(a, b []int) []int {
	set := make(map[int]bool, len(a)+len(b))
	for _, x := range a {
		set[x] = true
	}
	for _, x := range b {
		set[x] = true
	}
	out := make([]int, 0, len(set))
	for x := range set {
		out = append(out, x)
	}
	sort.Ints(out)
	return out
}
