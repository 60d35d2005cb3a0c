// Package molecule provides the molecular graph model used by odorscape:
// SMILES parsing and sanitization, descriptors, circular fingerprints,
// Tanimoto similarity and SMARTS substructure matching.  A Molecule is built
// once by NewMolecule and never mutated afterwards.
package molecule

import (
	"strings"

	"github.com/turtacn/odorscape/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Graph primitives
// ─────────────────────────────────────────────────────────────────────────────

// BondType is the bond order as written or perceived.
type BondType uint8

const (
	BondSingle    BondType = 1
	BondDouble    BondType = 2
	BondTriple    BondType = 3
	BondQuadruple BondType = 4
	BondAromatic  BondType = 12
)

func (b BondType) String() string {
	switch b {
	case BondSingle:
		return "single"
	case BondDouble:
		return "double"
	case BondTriple:
		return "triple"
	case BondQuadruple:
		return "quadruple"
	case BondAromatic:
		return "aromatic"
	default:
		return "unknown"
	}
}

// order is the integer bond order for non-aromatic types.
func (b BondType) order() int {
	if b == BondAromatic {
		return 1
	}
	return int(b)
}

// Atom is a vertex of the molecular graph.
type Atom struct {
	Number   int // atomic number, 0 for the * dummy atom
	Charge   int
	Isotope  int
	Aromatic bool

	// Bracket is true for atoms written in [] form; their hydrogen count is
	// explicit and never inferred.
	Bracket bool
	// Hydrogens is the total attached hydrogen count (explicit + implicit)
	// after sanitization.
	Hydrogens int

	InRing bool

	// explicitH counts hydrogen atoms written as graph atoms and folded into
	// an organic-subset atom.
	explicitH int
}

// Symbol returns the element symbol.
func (a *Atom) Symbol() string {
	if e, ok := ElementByNumber(a.Number); ok {
		return e.Symbol
	}
	return "?"
}

// Bond is an edge of the molecular graph.
type Bond struct {
	Begin, End int
	Type       BondType
	// Kekule is the localized order (1, 2 or 3) after kekulization.
	Kekule int
	InRing bool
}

// Other returns the bond endpoint opposite to atom i.
func (b *Bond) Other(i int) int {
	if b.Begin == i {
		return b.End
	}
	return b.Begin
}

type neighbor struct {
	atom, bond int
}

// ─────────────────────────────────────────────────────────────────────────────
// Value Objects
// ─────────────────────────────────────────────────────────────────────────────

// MolecularProperties holds computed descriptors for a molecule.
type MolecularProperties struct {
	MolecularWeight float64 `json:"molecular_weight"`
	LogP            float64 `json:"log_p"`
	HeavyAtoms      int     `json:"heavy_atoms"`
	Heteroatoms     int     `json:"heteroatoms"`
	AromaticAtoms   int     `json:"aromatic_atoms"`
	Rings           int     `json:"rings"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Molecule
// ─────────────────────────────────────────────────────────────────────────────

// Molecule is a sanitized molecular graph with hydrogens folded into their
// heavy atoms.
type Molecule struct {
	SMILES string

	Atoms []Atom
	Bonds []Bond

	adj       [][]neighbor
	rings     [][]int // atom indices of each perceived ring
	atomRings [][]int // ring indices per atom

	Properties MolecularProperties
}

// NewMolecule parses and sanitizes smiles.  Text after the first whitespace
// is treated as a name and ignored.
func NewMolecule(smiles string) (*Molecule, error) {
	smiles = strings.TrimSpace(smiles)
	if i := strings.IndexAny(smiles, " \t\r\n"); i >= 0 {
		smiles = smiles[:i]
	}
	if smiles == "" {
		return nil, errors.InvalidParam("SMILES string cannot be empty")
	}

	m, err := parseSMILES(smiles)
	if err != nil {
		return nil, err
	}
	if err := m.sanitize(); err != nil {
		return nil, errors.Wrap(err, errors.CodeMoleculeSanitizationFailed, "sanitization failed").WithDetail(smiles)
	}
	m.Properties = m.computeProperties()
	return m, nil
}

// NumAtoms returns the number of graph atoms.
func (m *Molecule) NumAtoms() int { return len(m.Atoms) }

// Degree returns the number of graph neighbours of atom i.
func (m *Molecule) Degree(i int) int { return len(m.adj[i]) }

// Rings returns the perceived rings as atom-index lists.  The slice is shared
// and must not be modified.
func (m *Molecule) Rings() [][]int { return m.rings }

func (m *Molecule) addAtom(a Atom) int {
	m.Atoms = append(m.Atoms, a)
	m.adj = append(m.adj, nil)
	return len(m.Atoms) - 1
}

func (m *Molecule) addBond(a, b int, t BondType) int {
	m.Bonds = append(m.Bonds, Bond{Begin: a, End: b, Type: t})
	idx := len(m.Bonds) - 1
	m.adj[a] = append(m.adj[a], neighbor{atom: b, bond: idx})
	m.adj[b] = append(m.adj[b], neighbor{atom: a, bond: idx})
	return idx
}

// bondBetween returns the bond index joining a and b, or -1.
func (m *Molecule) bondBetween(a, b int) int {
	for _, nb := range m.adj[a] {
		if nb.atom == b {
			return nb.bond
		}
	}
	return -1
}

// rebuildAdjacency recomputes adj from Bonds.
func (m *Molecule) rebuildAdjacency() {
	m.adj = make([][]neighbor, len(m.Atoms))
	for i, b := range m.Bonds {
		m.adj[b.Begin] = append(m.adj[b.Begin], neighbor{atom: b.End, bond: i})
		m.adj[b.End] = append(m.adj[b.End], neighbor{atom: b.Begin, bond: i})
	}
}
