package molecule

import (
	"sort"
)

// perceiveRings marks ring atoms and bonds and collects a small ring set:
// for every ring bond, the shortest cycle through it.  For ordinary fused and
// bridged systems this equals the SSSR; for cage compounds it may contain
// extra rings.
func (m *Molecule) perceiveRings() {
	for i := range m.Atoms {
		m.Atoms[i].InRing = false
	}
	for i := range m.Bonds {
		m.Bonds[i].InRing = false
	}
	m.rings = nil

	bridges := m.findBridges()
	for i := range m.Bonds {
		if !bridges[i] {
			b := &m.Bonds[i]
			b.InRing = true
			m.Atoms[b.Begin].InRing = true
			m.Atoms[b.End].InRing = true
		}
	}

	seen := make(map[string]bool)
	for i := range m.Bonds {
		if !m.Bonds[i].InRing {
			continue
		}
		cycle := m.shortestCycleThrough(i)
		if cycle == nil {
			continue
		}
		key := cycleKey(cycle)
		if seen[key] {
			continue
		}
		seen[key] = true
		m.rings = append(m.rings, cycle)
	}
	sort.SliceStable(m.rings, func(a, b int) bool { return len(m.rings[a]) < len(m.rings[b]) })

	m.atomRings = make([][]int, len(m.Atoms))
	for ri, r := range m.rings {
		for _, a := range r {
			m.atomRings[a] = append(m.atomRings[a], ri)
		}
	}
}

// findBridges returns, per bond, whether removing it disconnects the graph
// (Tarjan's low-link).
func (m *Molecule) findBridges() []bool {
	n := len(m.Atoms)
	bridges := make([]bool, len(m.Bonds))
	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}
	timer := 0

	type frame struct {
		atom, parentBond, next int
	}
	for root := 0; root < n; root++ {
		if disc[root] >= 0 {
			continue
		}
		stack := []frame{{atom: root, parentBond: -1}}
		disc[root], low[root] = timer, timer
		timer++
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(m.adj[top.atom]) {
				nb := m.adj[top.atom][top.next]
				top.next++
				if nb.bond == top.parentBond {
					continue
				}
				if disc[nb.atom] < 0 {
					disc[nb.atom], low[nb.atom] = timer, timer
					timer++
					stack = append(stack, frame{atom: nb.atom, parentBond: nb.bond})
				} else if disc[nb.atom] < low[top.atom] {
					low[top.atom] = disc[nb.atom]
				}
				continue
			}
			done := *top
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				parent := stack[len(stack)-1].atom
				if low[done.atom] < low[parent] {
					low[parent] = low[done.atom]
				}
				if low[done.atom] > disc[parent] {
					bridges[done.parentBond] = true
				}
			}
		}
	}
	return bridges
}

// shortestCycleThrough returns the atoms of the shortest cycle containing
// bond bi, in path order, using a BFS that skips bi itself.
func (m *Molecule) shortestCycleThrough(bi int) []int {
	src, dst := m.Bonds[bi].Begin, m.Bonds[bi].End
	prev := make([]int, len(m.Atoms))
	for i := range prev {
		prev[i] = -2
	}
	prev[src] = -1
	queue := []int{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == dst {
			break
		}
		for _, nb := range m.adj[cur] {
			if nb.bond == bi || !m.Bonds[nb.bond].InRing || prev[nb.atom] != -2 {
				continue
			}
			prev[nb.atom] = cur
			queue = append(queue, nb.atom)
		}
	}
	if prev[dst] == -2 {
		return nil
	}
	var path []int
	for a := dst; a != -1; a = prev[a] {
		path = append(path, a)
	}
	return path
}

func cycleKey(cycle []int) string {
	sorted := append([]int(nil), cycle...)
	sort.Ints(sorted)
	key := make([]byte, 0, len(sorted)*3)
	for _, a := range sorted {
		key = append(key, byte(a>>8), byte(a), ',')
	}
	return string(key)
}

// ringBonds returns the bond indices closing the atom cycle.
func (m *Molecule) ringBonds(cycle []int) []int {
	out := make([]int, 0, len(cycle))
	for i, a := range cycle {
		b := cycle[(i+1)%len(cycle)]
		if bi := m.bondBetween(a, b); bi >= 0 {
			out = append(out, bi)
		}
	}
	return out
}
