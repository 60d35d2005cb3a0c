package molecule

// Matches implements SubstructureMatcher: it reports whether m contains at
// least one injective mapping of the pattern's atoms that satisfies every
// atom and bond predicate.
func (pt *Pattern) Matches(m *Molecule) bool {
	if m == nil || len(pt.atoms) == 0 || len(pt.atoms) > len(m.Atoms) {
		return false
	}
	return pt.search(m, -1)
}

// matchAt reports whether the pattern matches with its first atom mapped to
// molecule atom anchor.
func (pt *Pattern) matchAt(m *Molecule, anchor int) bool {
	if len(pt.atoms) > len(m.Atoms) {
		return false
	}
	return pt.search(m, anchor)
}

// CountMatches returns the number of distinct molecule atoms that can play
// the role of the pattern's first atom.
func (pt *Pattern) CountMatches(m *Molecule) int {
	if m == nil {
		return 0
	}
	n := 0
	for i := range m.Atoms {
		if pt.matchAt(m, i) {
			n++
		}
	}
	return n
}

type matchState struct {
	pt      *Pattern
	m       *Molecule
	mapping []int // pattern atom -> molecule atom
	used    []bool
	anchor  int
}

func (pt *Pattern) search(m *Molecule, anchor int) bool {
	st := &matchState{
		pt:      pt,
		m:       m,
		mapping: make([]int, len(pt.atoms)),
		used:    make([]bool, len(m.Atoms)),
		anchor:  anchor,
	}
	for i := range st.mapping {
		st.mapping[i] = -1
	}
	return st.extend(0)
}

func (st *matchState) extend(depth int) bool {
	pt := st.pt
	if depth == len(pt.order) {
		return true
	}
	qa := pt.order[depth]

	try := func(cand int) bool {
		if st.used[cand] || !pt.atoms[qa](st.m, cand) || !st.bondsAgree(qa, cand) {
			return false
		}
		st.mapping[qa], st.used[cand] = cand, true
		if st.extend(depth + 1) {
			return true
		}
		st.mapping[qa], st.used[cand] = -1, false
		return false
	}

	switch {
	case depth == 0 && st.anchor >= 0:
		return try(st.anchor)
	case pt.parent[depth] >= 0:
		for _, nb := range st.m.adj[st.mapping[pt.parent[depth]]] {
			if try(nb.atom) {
				return true
			}
		}
		return false
	default:
		for cand := range st.m.Atoms {
			if try(cand) {
				return true
			}
		}
		return false
	}
}

// bondsAgree checks every pattern bond from qa to an already-mapped pattern
// atom against the corresponding molecule bond.
func (st *matchState) bondsAgree(qa, cand int) bool {
	for _, nb := range st.pt.adj[qa] {
		other := st.mapping[nb.atom]
		if other < 0 {
			continue
		}
		mb := st.m.bondBetween(cand, other)
		if mb < 0 || !st.pt.bonds[nb.bond].pred(st.m, mb) {
			return false
		}
	}
	return true
}
