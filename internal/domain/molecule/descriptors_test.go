package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptors(t *testing.T) {
	tests := []struct {
		smiles      string
		mw          float64
		heavy       int
		heteroatoms int
	}{
		{"CCO", 46.069, 3, 1},
		{"c1ccccc1", 78.114, 6, 0},
		{"O", 18.015, 1, 1},
		{"c1ccncc1", 79.102, 6, 1},
		{"ClCCl", 84.933, 3, 2},
		{"[H]C([H])([H])[H]", 16.043, 1, 0},
		{"[13CH4]", 17.032, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			m, err := NewMolecule(tt.smiles)
			require.NoError(t, err)
			assert.InDelta(t, tt.mw, m.Properties.MolecularWeight, 1e-3)
			assert.InDelta(t, tt.mw, m.MolecularWeight(), 1e-3)
			assert.Equal(t, tt.heavy, m.HeavyAtomCount())
			assert.Equal(t, tt.heteroatoms, m.HeteroatomCount())
		})
	}
}

func TestCrippenLogP(t *testing.T) {
	tests := []struct {
		smiles string
		logP   float64
	}{
		{"CCO", -0.0014},
		{"c1ccccc1", 1.6866},
		{"Oc1ccccc1", 1.3922},
		{"CC(=O)O", 0.0909},
		{"Cn1cnc2c1c(=O)n(C)c(=O)n2C", -1.0293},
		// five cH, c-N, nitro N and two nitro O
		{"O=[N+]([O-])c1ccccc1", 5*(0.1581+0.1230) + 0.4619 - 0.3396 + 2*0.0335},
		{"Cc1ccccc1", 0.08452 + 3*0.1230 + 0.1360 + 5*(0.1581+0.1230)},
		{"CCN", 0.1441 + 3*0.1230 - 0.2035 + 2*0.1230 - 1.0190 + 2*0.2142},
		{"Clc1ccccc1", 0.6895 + 0.2450 + 5*(0.1581+0.1230)},
	}
	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			m, err := NewMolecule(tt.smiles)
			require.NoError(t, err)
			assert.InDelta(t, tt.logP, m.Properties.LogP, 1e-4)
		})
	}
}

func TestCrippenLogP_NitroAndCarbonylTypes(t *testing.T) {
	nitrobenzene, err := NewMolecule("O=[N+]([O-])c1ccccc1")
	require.NoError(t, err)
	benzene, err := NewMolecule("c1ccccc1")
	require.NoError(t, err)
	// A nitro group keeps the ring lipophilic.
	assert.Greater(t, nitrobenzene.Properties.LogP, 1.5)
	assert.Less(t, nitrobenzene.Properties.LogP, benzene.Properties.LogP)

	caffeine, err := NewMolecule("Cn1cnc2c1c(=O)n(C)c(=O)n2C")
	require.NoError(t, err)
	assert.Negative(t, caffeine.Properties.LogP)
}

func TestCrippenLogP_Ordering(t *testing.T) {
	hexane, err := NewMolecule("CCCCCC")
	require.NoError(t, err)
	ethanol, err := NewMolecule("CCO")
	require.NoError(t, err)
	assert.Greater(t, hexane.Properties.LogP, ethanol.Properties.LogP)
}
