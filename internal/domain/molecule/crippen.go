package molecule

// Atomic logP contributions after Wildman and Crippen (J. Chem. Inf. Comput.
// Sci. 1999).  Atom types follow the published SMARTS definitions in their
// listed order, first match wins.  Metals, boron and silicon are not typed
// and contribute nothing; for the organic subset the sum matches the full
// scheme.
const (
	crC1  = 0.1441  // CH4, CH3R, CH2R2
	crC2  = 0.0     // CHR3, CR4
	crC3  = -0.2035 // CH3X, CH2RX
	crC4  = -0.2051 // CHR2X, CR3X
	crC5  = -0.2783 // C=heteroatom
	crC6  = 0.1551  // C=C aliphatic
	crC7  = 0.0017  // C#X
	crC8  = 0.08452 // CH3 on aromatic c
	crC9  = -0.1444 // CH3 on aromatic heteroatom
	crC10 = -0.0516 // CH2 on aromatic
	crC11 = 0.1193  // CH on aromatic
	crC12 = -0.0967 // C on aromatic
	crC13 = -0.5443 // aromatic c-X, X not C N O S or halogen
	crC14 = 0.0     // aromatic c-F
	crC15 = 0.2450  // aromatic c-Cl
	crC16 = 0.1980  // aromatic c-Br
	crC17 = 0.0     // aromatic c-I
	crC18 = 0.1581  // aromatic cH
	crC19 = 0.2955  // aromatic bridgehead
	crC20 = 0.2713  // aromatic c-aromatic
	crC21 = 0.1360  // aromatic c-C
	crC22 = 0.4619  // aromatic c-N
	crC23 = 0.5437  // aromatic c-O
	crC24 = 0.1893  // aromatic c-S
	crC25 = -0.8186 // aromatic c=C, c=N, c=O
	crC26 = 0.2640  // C=C on aromatic
	crC27 = 0.2148  // CX4 on an untyped heteroatom
	crCS  = 0.08129

	crH1 = 0.1230  // hydrocarbon
	crH2 = -0.2677 // alcohol
	crH3 = 0.2142  // amine
	crH4 = 0.2980  // acid
	crHS = 0.1125

	crN1  = -1.0190 // primary amine
	crN2  = -0.7096 // secondary amine
	crN3  = -1.0270 // primary aromatic amine
	crN4  = -0.5188 // secondary aromatic amine
	crN5  = 0.08387 // imine NH
	crN6  = 0.1836  // substituted imine
	crN7  = -0.3187 // tertiary amine
	crN8  = -0.4458 // tertiary aromatic amine
	crN9  = 0.01508 // nitrile
	crN10 = -1.950  // protonated amine
	crN11 = -0.3239 // aromatic n
	crN12 = -1.119  // charged aromatic n
	crN13 = -0.3396 // quaternary N, nitro N
	crN14 = 0.2887  // other ionized N
	crNS  = -0.4806

	crO1  = 0.1552  // aromatic o
	crO2  = -0.2893 // alcohol
	crO3  = -0.0684 // aliphatic ether
	crO4  = -0.4195 // aromatic ether
	crO5  = 0.0335  // oxide on N, nitro O
	crO6  = -0.3339 // oxide on S
	crO7  = -1.189  // other oxide
	crO8  = 0.1788  // aromatic carbonyl
	crO9  = -0.1526 // aliphatic carbonyl
	crO10 = 0.1129  // carbonyl on aromatic
	crO11 = 0.4833  // carbonyl between heteroatoms
	crO12 = -1.326  // carboxylate
	crOS  = -0.1188

	crS1 = 0.6482  // neutral S
	crS2 = -0.0024 // charged S
	crS3 = 0.6237  // aromatic s

	crF      = 0.4202
	crCl     = 0.6895
	crBr     = 0.8456
	crI      = 0.8857
	crHalide = -2.996
	crP      = 0.8612
)

func isHalogen(z int) bool { return z == 9 || z == 17 || z == 35 || z == 53 }

func isHeteroatom(z int) bool { return z > 1 && z != 6 }

// isCrippenHetero is the [N,O,P,S,F,Cl,Br,I] set of the carbon types.
func isCrippenHetero(z int) bool {
	switch z {
	case 7, 8, 15, 16, 9, 17, 35, 53:
		return true
	}
	return false
}

func (m *Molecule) crippenLogP() float64 {
	total := 0.0
	for i := range m.Atoms {
		total += m.crippenAtom(i) + float64(m.Atoms[i].Hydrogens)*m.crippenHydrogen(i)
	}
	return total
}

// crippenHydrogen types the implicit hydrogens of heavy atom i.
func (m *Molecule) crippenHydrogen(i int) float64 {
	switch m.Atoms[i].Number {
	case 1, 6:
		return crH1
	case 7:
		return crH3
	case 8:
		return m.crippenHydroxylHydrogen(i)
	}
	return crH2
}

func (m *Molecule) crippenHydroxylHydrogen(i int) float64 {
	nbrs := m.adj[i]
	if len(nbrs) == 0 {
		return crH2
	}
	for _, nb := range nbrs {
		o := &m.Atoms[nb.atom]
		switch {
		case o.Number == 6 && o.Aromatic:
			return crH2
		case o.Number == 6 && m.totalDegree(nb.atom) == 4:
			return crH2
		case o.Number != 6 && o.Number != 7 && o.Number != 8 && o.Number != 16:
			return crH2
		}
	}
	for _, nb := range nbrs {
		if m.Atoms[nb.atom].Number == 7 {
			return crH3
		}
	}
	for _, nb := range nbrs {
		switch m.Atoms[nb.atom].Number {
		case 8, 16:
			return crH4
		case 6:
			for _, nb2 := range m.adj[nb.atom] {
				if nb2.atom == i || m.Bonds[nb2.bond].Kekule != 2 {
					continue
				}
				switch m.Atoms[nb2.atom].Number {
				case 6, 7, 8, 16:
					return crH4
				}
			}
		}
	}
	return crHS
}

// totalDegree is the X primitive: explicit neighbours plus hydrogens.
func (m *Molecule) totalDegree(i int) int { return len(m.adj[i]) + m.Atoms[i].Hydrogens }

func (m *Molecule) crippenAtom(i int) float64 {
	a := &m.Atoms[i]
	switch a.Number {
	case 6:
		if a.Aromatic {
			return m.crippenAromaticCarbon(i)
		}
		return m.crippenAliphaticCarbon(i)
	case 7:
		return m.crippenNitrogen(i)
	case 8:
		return m.crippenOxygen(i)
	case 16:
		switch {
		case a.Aromatic:
			return crS3
		case a.Charge == 0:
			return crS1
		}
		return crS2
	case 9, 17, 35, 53:
		if a.Charge < 0 {
			return crHalide
		}
		switch a.Number {
		case 9:
			return crF
		case 17:
			return crCl
		case 35:
			return crBr
		}
		return crI
	case 15:
		return crP
	}
	return 0
}

func (m *Molecule) crippenAromaticCarbon(i int) float64 {
	a := &m.Atoms[i]
	ringNbrs := 0
	exo, exoBond := -1, -1
	for _, nb := range m.adj[i] {
		if m.Bonds[nb.bond].Type == BondAromatic {
			ringNbrs++
			continue
		}
		exo, exoBond = nb.atom, nb.bond
	}
	if exo >= 0 {
		z := m.Atoms[exo].Number
		single := m.Bonds[exoBond].Kekule == 1
		switch {
		case a.Hydrogens == 0 && single && !m.Atoms[exo].Aromatic && z != 1 &&
			z != 6 && z != 7 && z != 8 && z != 16 && !isHalogen(z):
			return crC13
		case z == 9:
			return crC14
		case z == 17:
			return crC15
		case z == 35:
			return crC16
		case z == 53:
			return crC17
		}
	}
	if a.Hydrogens > 0 {
		return crC18
	}
	if ringNbrs >= 3 {
		return crC19
	}
	if ringNbrs == 2 && exo >= 0 {
		other := &m.Atoms[exo]
		switch m.Bonds[exoBond].Kekule {
		case 1:
			switch {
			case other.Aromatic:
				return crC20
			case other.Number == 6:
				return crC21
			case other.Number == 7:
				return crC22
			case other.Number == 8:
				return crC23
			case other.Number == 16:
				return crC24
			}
		case 2:
			switch other.Number {
			case 6, 7, 8:
				return crC25
			}
		}
	}
	return crCS
}

func (m *Molecule) crippenAliphaticCarbon(i int) float64 {
	h := m.Atoms[i].Hydrogens
	var singleC, singleHetero, singleAromatic, singleOther, heavy int
	doubleHetero, doubleC, doubleAromatic, triple := false, false, false, false
	for _, nb := range m.adj[i] {
		other := &m.Atoms[nb.atom]
		if other.Number == 1 {
			continue
		}
		heavy++
		switch m.Bonds[nb.bond].Kekule {
		case 3:
			triple = true
		case 2:
			switch {
			case other.Aromatic:
				doubleAromatic = true
			case other.Number == 6:
				doubleC = true
			default:
				doubleHetero = true
			}
		default:
			switch {
			case other.Aromatic:
				singleAromatic++
			case other.Number == 6:
				singleC++
			case isCrippenHetero(other.Number):
				singleHetero++
			default:
				singleOther++
			}
		}
	}
	x := heavy + h
	aliphatic := singleC + singleHetero + singleOther
	sp3 := !triple && !doubleC && !doubleHetero && !doubleAromatic

	switch {
	case sp3 && h == 4:
		return crC1
	case sp3 && singleC == heavy && ((h == 3 && heavy == 1) || (h == 2 && heavy == 2)):
		return crC1
	case sp3 && singleC == heavy && ((h == 1 && heavy == 3) || (h == 0 && heavy == 4)):
		return crC2
	case sp3 && h == 3 && singleHetero == 1:
		return crC3
	case sp3 && x == 4 && singleHetero >= 1 && singleAromatic == 0 && h == 2 && aliphatic == 2:
		return crC3
	case sp3 && x == 4 && singleHetero >= 1 && singleAromatic == 0 && h <= 1 && aliphatic == 4-h:
		return crC4
	case doubleHetero:
		return crC5
	case doubleC && singleAromatic == 0:
		return crC6
	case triple && x == 2:
		return crC7
	case sp3 && h == 3 && singleAromatic == 1:
		if m.hasAromaticCarbonNeighbor(i) {
			return crC8
		}
		return crC9
	case sp3 && x == 4 && singleAromatic > 0:
		switch h {
		case 2:
			return crC10
		case 1:
			return crC11
		}
		return crC12
	case doubleC || doubleAromatic:
		return crC26
	case sp3 && x == 4 && singleOther > 0:
		return crC27
	}
	return crCS
}

func (m *Molecule) hasAromaticCarbonNeighbor(i int) bool {
	for _, nb := range m.adj[i] {
		if o := &m.Atoms[nb.atom]; o.Aromatic && o.Number == 6 {
			return true
		}
	}
	return false
}

func (m *Molecule) crippenNitrogen(i int) float64 {
	a := &m.Atoms[i]
	if a.Aromatic {
		switch {
		case a.Charge == 0:
			return crN11
		case a.Charge > 0:
			return crN12
		}
		return crNS
	}

	var heavy, aromatic, doubles, doubleAliphatic, triples int
	for _, nb := range m.adj[i] {
		other := &m.Atoms[nb.atom]
		if other.Number == 1 {
			continue
		}
		heavy++
		switch m.Bonds[nb.bond].Kekule {
		case 3:
			triples++
		case 2:
			doubles++
			if !other.Aromatic {
				doubleAliphatic++
			}
		default:
			if other.Aromatic {
				aromatic++
			}
		}
	}

	switch {
	case a.Charge < 0:
		return crN14
	case a.Charge > 0:
		switch {
		case a.Hydrogens > 0:
			return crN10
		case heavy == 4 && doubles == 0 && triples == 0 && aromatic == 0:
			return crN13
		case doubleAliphatic >= 1 && heavy == 3:
			return crN13
		case doubles == 2 && heavy == 2:
			return crN13
		case triples > 0:
			return crN14
		}
		return crNS
	}

	switch {
	case a.Hydrogens == 2 && heavy == 1 && doubles == 0 && triples == 0:
		if aromatic == 1 {
			return crN3
		}
		return crN1
	case a.Hydrogens == 1 && heavy == 2 && doubles == 0:
		if aromatic > 0 {
			return crN4
		}
		return crN2
	case a.Hydrogens == 1 && doubles == 1:
		return crN5
	case a.Hydrogens == 0 && doubles == 1 && heavy == 2:
		return crN6
	case a.Hydrogens == 0 && heavy == 3 && doubles == 0:
		if aromatic > 0 {
			return crN8
		}
		return crN7
	case triples == 1 && heavy == 1:
		return crN9
	}
	return crNS
}

func (m *Molecule) crippenOxygen(i int) float64 {
	a := &m.Atoms[i]
	if a.Aromatic {
		return crO1
	}
	if a.Hydrogens > 0 {
		return crO2
	}

	var heavy, aromatic int
	double := -1
	for _, nb := range m.adj[i] {
		other := &m.Atoms[nb.atom]
		if other.Number == 1 {
			continue
		}
		heavy++
		if m.Bonds[nb.bond].Kekule == 2 {
			double = nb.atom
		} else if other.Aromatic {
			aromatic++
		}
	}

	switch {
	case heavy == 2 && double < 0:
		if aromatic > 0 {
			return crO4
		}
		return crO3
	case double >= 0:
		return m.crippenCarbonylOxygen(i, double)
	case a.Charge < 0 && heavy == 1:
		nb := m.adj[i][0].atom
		switch m.Atoms[nb].Number {
		case 7:
			return crO5
		case 16:
			return crO6
		case 6:
			if m.isCarboxylCarbon(nb) {
				return crO12
			}
		}
		return crO7
	}
	return crOS
}

func (m *Molecule) isCarboxylCarbon(c int) bool {
	for _, nb := range m.adj[c] {
		if m.Atoms[nb.atom].Number == 8 && m.Bonds[nb.bond].Kekule == 2 {
			return true
		}
	}
	return false
}

// crippenCarbonylOxygen types oxygen i double-bonded to atom partner.
func (m *Molecule) crippenCarbonylOxygen(i, partner int) float64 {
	p := &m.Atoms[partner]
	switch {
	case p.Number == 7 || p.Number == 8:
		return crO5
	case p.Number != 6:
		return crOS
	case p.Aromatic:
		return crO8
	}

	var others []int
	for _, nb := range m.adj[partner] {
		if nb.atom == i || m.Atoms[nb.atom].Number == 1 {
			continue
		}
		if m.Bonds[nb.bond].Kekule != 1 {
			// O=C=O and ketenes
			return crO9
		}
		others = append(others, nb.atom)
	}

	var carbons, aromatic int
	for _, o := range others {
		if m.Atoms[o].Number == 6 {
			carbons++
		}
		if m.Atoms[o].Aromatic {
			aromatic++
		}
	}
	switch {
	case len(others) == 0:
		return crO9
	case aromatic > 0 && carbons > 0:
		return crO10
	case aromatic > 0:
		if len(others) == 2 {
			return crO11
		}
		return crOS
	case carbons > 0:
		return crO9
	case len(others) == 1:
		switch m.Atoms[others[0]].Number {
		case 7, 8:
			return crO9
		}
		return crOS
	}
	return crO11
}
