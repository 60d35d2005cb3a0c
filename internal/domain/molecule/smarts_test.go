package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/odorscape/pkg/errors"
)

func mustMolecule(t *testing.T, smiles string) *Molecule {
	t.Helper()
	m, err := NewMolecule(smiles)
	require.NoError(t, err, smiles)
	return m
}

func TestPattern_Matches(t *testing.T) {
	tests := []struct {
		name    string
		smarts  string
		smiles  string
		matches bool
	}{
		{"any_atom", "*", "O", true},
		{"carbon_present", "[#6]", "CCO", true},
		{"carbon_absent", "[#6]", "[Na+].[Cl-]", false},
		{"aromatic_benzene", "a", "c1ccccc1", true},
		{"aromatic_cyclohexane", "a", "C1CCCCC1", false},
		{"aromatic_perceived", "a", "C1=CC=CC=C1", true},
		{"alcohol_ethanol", "[CX4][OX2H]", "CCO", true},
		{"alcohol_phenol", "[CX4][OX2H]", "Oc1ccccc1", false},
		{"alcohol_acid", "[CX4][OX2H]", "CC(=O)O", false},
		{"aldehyde_acetaldehyde", "[CX3H1](=O)[#6]", "CC=O", true},
		{"aldehyde_acetone", "[CX3H1](=O)[#6]", "CC(=O)C", false},
		{"aldehyde_formaldehyde", "[CX3H1](=O)[#6]", "C=O", false},
		{"ketone_acetone", "[#6][CX3](=O)[#6]", "CC(=O)C", true},
		{"ketone_acetaldehyde", "[#6][CX3](=O)[#6]", "CC=O", false},
		{"acid_acetic", "[CX3](=O)[OX2H1]", "CC(=O)O", true},
		{"acid_ester", "[CX3](=O)[OX2H1]", "CCOC(C)=O", false},
		{"ester_ethyl_acetate", "[#6][CX3](=O)[OX2H0][#6]", "CCOC(C)=O", true},
		{"ester_acetic", "[#6][CX3](=O)[OX2H0][#6]", "CC(=O)O", false},
		{"nitrogen_pyridine", "[#7]", "c1ccncc1", true},
		{"sulfur_thiophene", "[#16]", "c1ccsc1", true},
		{"sulfur_absent", "[#16]", "c1ccoc1", false},
		{"halogen_dichloromethane", "[F,Cl,Br,I]", "ClCCl", true},
		{"halogen_absent", "[F,Cl,Br,I]", "CCO", false},
		{"not_carbon", "[!#6]", "CCO", true},
		{"not_carbon_alkane", "[!#6]", "CCC", false},
		{"double_bond", "C=O", "CC(=O)C", true},
		{"single_bond_only", "C-O", "CC(=O)C", false},
		{"any_bond", "C~O", "CC(=O)C", true},
		{"aromatic_bond", "c:c", "c1ccccc1", true},
		{"default_bond_aromatic", "cc", "c1ccccc1", true},
		{"ring_bond", "C@C", "C1CCCCC1", true},
		{"ring_bond_chain", "C@C", "CCCCCC", false},
		{"not_ring_bond", "C!@C", "CC1CCCCC1", true},
		{"ring_atom", "[R]", "C1CCC1", true},
		{"ring_atom_chain", "[R]", "CCCC", false},
		{"ring_size_six", "[r6]", "C1CCCCC1", true},
		{"ring_size_five", "[r5]", "C1CCCCC1", false},
		{"ring_closure", "C1CCCCC1", "CC1CCCCC1", true},
		{"ring_closure_chain", "C1CCCCC1", "CCCCCCC", false},
		{"degree", "[CD3]", "CC(C)C", true},
		{"degree_absent", "[CD3]", "CCCC", false},
		{"charge", "[N+]", "C[N+](C)(C)C", true},
		{"charge_absent", "[N+]", "CN", false},
		{"negative_charge", "[O-]", "C[O-]", true},
		{"hydrogen_count", "[CH3]", "CC", true},
		{"low_precedence_and", "[C,N;H2]", "CN", true},
		{"low_precedence_and_miss", "[C,N;H2]", "CN(C)C", false},
		{"recursive_carbonyl", "[C;$(C=O)]", "CC(=O)C", true},
		{"recursive_carbonyl_miss", "[C;$(C=O)]", "CCO", false},
		{"recursive_not", "[O;!$(O[#1,C]=*)]", "CCO", true},
		{"isotope", "[13C]", "[13CH4]", true},
		{"isotope_miss", "[13C]", "C", false},
		{"two_letter_element", "[Na]", "[Na+].[Cl-]", true},
		{"disconnected", "C.O", "CC(=O)C", true},
		{"disconnected_needs_two_atoms", "O.O", "CC(=O)C", false},
		{"pattern_too_large", "CCCC", "CC", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pat, err := CompileSMARTS(tt.smarts)
			require.NoError(t, err)
			assert.Equal(t, tt.matches, pat.Matches(mustMolecule(t, tt.smiles)))
		})
	}
}

func TestPattern_Injective(t *testing.T) {
	pat := MustCompileSMARTS("[OX2H].[OX2H]")
	assert.False(t, pat.Matches(mustMolecule(t, "CCO")))
	assert.True(t, pat.Matches(mustMolecule(t, "OCCO")))
}

func TestPattern_CountMatches(t *testing.T) {
	pat := MustCompileSMARTS("[OX2H]")
	assert.Equal(t, 2, pat.CountMatches(mustMolecule(t, "OCCO")))
	assert.Equal(t, 0, pat.CountMatches(mustMolecule(t, "CCC")))
	assert.Equal(t, 0, pat.CountMatches(nil))
}

func TestPattern_NilMolecule(t *testing.T) {
	assert.False(t, MustCompileSMARTS("*").Matches(nil))
}

func TestCompileSMARTS_Invalid(t *testing.T) {
	for _, s := range []string{
		"",
		"C(",
		"C)",
		"[C",
		"[Qq]",
		"C1CC",
		"C=",
		"=C",
		"[#]",
		"[C;$(C]",
		"[C&]",
		"Cz",
	} {
		t.Run(s, func(t *testing.T) {
			_, err := CompileSMARTS(s)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeSubstructureQueryInvalid))
		})
	}
}

func TestMustCompileSMARTS_Panics(t *testing.T) {
	assert.Panics(t, func() { MustCompileSMARTS("[C") })
}

func TestPattern_NumAtoms(t *testing.T) {
	assert.Equal(t, 5, MustCompileSMARTS("[#6][CX3](=O)[OX2H0][#6]").NumAtoms())
}
