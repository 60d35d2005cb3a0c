package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/odorscape/pkg/errors"
)

func TestNewMolecule_Valid(t *testing.T) {
	tests := []struct {
		name     string
		smiles   string
		atoms    int
		bonds    int
		rings    int
		aromatic int
	}{
		{"ethanol", "CCO", 3, 2, 0, 0},
		{"benzene", "c1ccccc1", 6, 6, 1, 6},
		{"kekule_benzene", "C1=CC=CC=C1", 6, 6, 1, 6},
		{"pyridine", "c1ccncc1", 6, 6, 1, 6},
		{"pyrrole", "c1cc[nH]c1", 5, 5, 1, 5},
		{"furan", "c1ccoc1", 5, 5, 1, 5},
		{"naphthalene", "c1ccc2ccccc2c1", 10, 11, 2, 10},
		{"biphenyl", "c1ccc(cc1)c1ccccc1", 12, 13, 2, 12},
		{"cyclohexene", "C1=CCCCC1", 6, 6, 1, 0},
		{"acetic_acid", "CC(=O)O", 4, 3, 0, 0},
		{"hydrogen_cyanide", "C#N", 2, 1, 0, 0},
		{"tetramethylammonium", "C[N+](C)(C)C", 5, 4, 0, 0},
		{"salt", "[Na+].[Cl-]", 2, 0, 0, 0},
		{"explicit_hydrogens", "[H]C([H])([H])[H]", 1, 0, 0, 0},
		{"percent_ring", "C%10CC%10", 3, 3, 1, 0},
		{"trailing_name", "CCO ethanol", 3, 2, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMolecule(tt.smiles)
			require.NoError(t, err)
			assert.Equal(t, tt.atoms, m.NumAtoms())
			assert.Len(t, m.Bonds, tt.bonds)
			assert.Len(t, m.Rings(), tt.rings)
			assert.Equal(t, tt.aromatic, m.Properties.AromaticAtoms)
		})
	}
}

func TestNewMolecule_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		smiles string
		code   errors.ErrorCode
	}{
		{"empty", "   ", errors.CodeInvalidParam},
		{"unclosed_branch", "C(C", errors.CodeMoleculeInvalidSMILES},
		{"unbalanced_paren", "CC)C", errors.CodeMoleculeInvalidSMILES},
		{"unclosed_ring", "C1CC", errors.CodeMoleculeInvalidSMILES},
		{"trailing_bond", "CC=", errors.CodeMoleculeInvalidSMILES},
		{"unknown_symbol", "CXC", errors.CodeMoleculeInvalidSMILES},
		{"unterminated_bracket", "C[Xe", errors.CodeMoleculeInvalidSMILES},
		{"self_ring", "C11", errors.CodeMoleculeInvalidSMILES},
		{"odd_aromatic_ring", "c1cccc1", errors.CodeMoleculeSanitizationFailed},
		{"pentavalent_carbon", "C(C)(C)(C)(C)C", errors.CodeMoleculeSanitizationFailed},
		{"hypervalent_oxygen", "O(C)(C)C", errors.CodeMoleculeSanitizationFailed},
		{"acyclic_aromatic", "c", errors.CodeMoleculeSanitizationFailed},
		{"bracket_overvalent", "[CH5]", errors.CodeMoleculeSanitizationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMolecule(tt.smiles)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestNewMolecule_ImplicitHydrogens(t *testing.T) {
	m, err := NewMolecule("CC(=O)O")
	require.NoError(t, err)
	got := make([]int, m.NumAtoms())
	for i, a := range m.Atoms {
		got[i] = a.Hydrogens
	}
	assert.Equal(t, []int{3, 0, 0, 1}, got)

	m, err = NewMolecule("c1cc[nH]c1")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Atoms[3].Hydrogens)
	assert.Equal(t, 1, m.Atoms[0].Hydrogens)
}

func TestNewMolecule_Kekulization(t *testing.T) {
	m, err := NewMolecule("c1ccccc1")
	require.NoError(t, err)
	doubles := 0
	for _, b := range m.Bonds {
		assert.Equal(t, BondAromatic, b.Type)
		if b.Kekule == 2 {
			doubles++
		}
	}
	assert.Equal(t, 3, doubles)

	for i := range m.Atoms {
		perAtom := 0
		for _, nb := range m.adj[i] {
			if m.Bonds[nb.bond].Kekule == 2 {
				perAtom++
			}
		}
		assert.Equal(t, 1, perAtom, "atom %d", i)
	}
}

func TestNewMolecule_RingMembership(t *testing.T) {
	m, err := NewMolecule("CC1CCCCC1")
	require.NoError(t, err)
	assert.False(t, m.Atoms[0].InRing)
	for i := 1; i < m.NumAtoms(); i++ {
		assert.True(t, m.Atoms[i].InRing)
	}
	require.Len(t, m.Rings(), 1)
	assert.Len(t, m.Rings()[0], 6)
	assert.Equal(t, 3, m.Degree(1))
}

func TestBondType_String(t *testing.T) {
	assert.Equal(t, "single", BondSingle.String())
	assert.Equal(t, "aromatic", BondAromatic.String())
	assert.Equal(t, "unknown", BondType(9).String())
}
