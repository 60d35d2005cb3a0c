package molecule

const hydrogenMass = 1.008

func (m *Molecule) computeProperties() MolecularProperties {
	var p MolecularProperties
	for i := range m.Atoms {
		a := &m.Atoms[i]
		if a.Number > 1 {
			p.HeavyAtoms++
		}
		if isHeteroatom(a.Number) {
			p.Heteroatoms++
		}
		if a.Aromatic {
			p.AromaticAtoms++
		}
	}
	p.MolecularWeight = m.MolecularWeight()
	p.LogP = m.crippenLogP()
	p.Rings = len(m.rings)
	return p
}

// MolecularWeight is the average molecular weight including hydrogens.
// Isotope-labelled atoms use their mass number.
func (m *Molecule) MolecularWeight() float64 {
	w := 0.0
	for i := range m.Atoms {
		a := &m.Atoms[i]
		switch {
		case a.Isotope > 0:
			w += float64(a.Isotope)
		default:
			if e, ok := ElementByNumber(a.Number); ok {
				w += e.Mass
			}
		}
		w += float64(a.Hydrogens) * hydrogenMass
	}
	return w
}

// HeavyAtomCount is the number of non-hydrogen atoms.
func (m *Molecule) HeavyAtomCount() int { return m.Properties.HeavyAtoms }

// HeteroatomCount is the number of atoms other than carbon and hydrogen.
func (m *Molecule) HeteroatomCount() int { return m.Properties.Heteroatoms }
