package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/odorscape/pkg/errors"
)

func TestFingerprint_Bits(t *testing.T) {
	fp := NewFingerprint(130)
	assert.Len(t, fp.Words, 3)

	fp.SetBit(0)
	fp.SetBit(64)
	fp.SetBit(129)
	fp.SetBit(129)
	fp.SetBit(130) // out of range
	fp.SetBit(-1)

	assert.Equal(t, 3, fp.NumOnBits)
	assert.True(t, fp.GetBit(64))
	assert.False(t, fp.GetBit(65))
	assert.False(t, fp.GetBit(500))
	assert.Equal(t, []int{0, 64, 129}, fp.OnBits())
}

func TestFingerprint_BinaryEncoding(t *testing.T) {
	fp, err := CalculateMorganFingerprint("CC(=O)Oc1ccccc1C(=O)O", 2, 2048)
	require.NoError(t, err)

	data, err := fp.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, data, 8+8*32)

	var back Fingerprint
	require.NoError(t, back.UnmarshalBinary(data))
	assert.Equal(t, fp.Length, back.Length)
	assert.Equal(t, fp.NumOnBits, back.NumOnBits)
	assert.Equal(t, fp.OnBits(), back.OnBits())
	assert.InDelta(t, 1.0, Tanimoto(fp, &back), 1e-12)

	err = back.UnmarshalBinary(data[:12])
	assert.True(t, errors.IsCode(err, errors.CodeFingerprintGenerationFailed))
	err = back.UnmarshalBinary(data[:16])
	assert.True(t, errors.IsCode(err, errors.CodeFingerprintGenerationFailed))
}

func TestNewMorganCalculator(t *testing.T) {
	_, err := NewMorganCalculator(FingerprintCalcOptions{Radius: -1, Bits: 2048})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	_, err = NewMorganCalculator(FingerprintCalcOptions{Radius: 2, Bits: 0})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	calc, err := NewMorganCalculator(DefaultFingerprintCalcOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, calc.Radius)
	assert.Equal(t, 2048, calc.Bits)
}

func TestMorganCalculator_Calculate(t *testing.T) {
	calc, err := NewMorganCalculator(DefaultFingerprintCalcOptions())
	require.NoError(t, err)

	_, err = calc.Calculate(nil)
	assert.True(t, errors.IsCode(err, errors.CodeFingerprintGenerationFailed))

	m, err := NewMolecule("c1ccccc1O")
	require.NoError(t, err)
	fp1, err := calc.Calculate(m)
	require.NoError(t, err)
	fp2, err := calc.Calculate(m)
	require.NoError(t, err)

	assert.Equal(t, 2048, fp1.Length)
	assert.Positive(t, fp1.NumOnBits)
	assert.Equal(t, fp1.Words, fp2.Words)
	assert.Len(t, fp1.OnBits(), fp1.NumOnBits)
}

func TestMorganFingerprint_AtomOrderInvariant(t *testing.T) {
	pairs := [][2]string{
		{"CCO", "OCC"},
		{"c1ccccc1O", "Oc1ccccc1"},
		{"CC(=O)OCC", "CCOC(C)=O"},
	}
	for _, p := range pairs {
		t.Run(p[0], func(t *testing.T) {
			a, err := CalculateMorganFingerprint(p[0], 2, 2048)
			require.NoError(t, err)
			b, err := CalculateMorganFingerprint(p[1], 2, 2048)
			require.NoError(t, err)
			assert.Equal(t, a.Words, b.Words)
		})
	}
}

func TestMorganFingerprint_RadiusGrowsBits(t *testing.T) {
	r0, err := CalculateMorganFingerprint("CCCCO", 0, 2048)
	require.NoError(t, err)
	r2, err := CalculateMorganFingerprint("CCCCO", 2, 2048)
	require.NoError(t, err)
	assert.Greater(t, r2.NumOnBits, r0.NumOnBits)
	for _, b := range r0.OnBits() {
		assert.True(t, r2.GetBit(b))
	}
}

func TestCalculateMorganFingerprint_InvalidSMILES(t *testing.T) {
	_, err := CalculateMorganFingerprint("C1CC", 2, 2048)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeFingerprintGenerationFailed))
}

func TestTanimoto(t *testing.T) {
	phenol, err := CalculateMorganFingerprint("Oc1ccccc1", 2, 2048)
	require.NoError(t, err)
	cresol, err := CalculateMorganFingerprint("Cc1ccc(O)cc1", 2, 2048)
	require.NoError(t, err)
	hexane, err := CalculateMorganFingerprint("CCCCCC", 2, 2048)
	require.NoError(t, err)

	assert.Equal(t, 1.0, Tanimoto(phenol, phenol))
	near := Tanimoto(phenol, cresol)
	far := Tanimoto(phenol, hexane)
	assert.Greater(t, near, 0.0)
	assert.Less(t, near, 1.0)
	assert.Less(t, far, near)
	assert.Equal(t, near, Tanimoto(cresol, phenol))

	assert.Equal(t, 0.0, Tanimoto(NewFingerprint(64), NewFingerprint(64)))
}

func TestTanimotoCalculator(t *testing.T) {
	calc := &TanimotoCalculator{}
	assert.Equal(t, MetricTanimoto, calc.Metric())
	assert.Equal(t, "tanimoto", calc.Metric().String())

	_, err := calc.Calculate(nil, NewFingerprint(8))
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	_, err = calc.Calculate(NewFingerprint(8), NewFingerprint(16))
	assert.True(t, errors.IsCode(err, errors.CodeValidation))

	a := NewFingerprint(8)
	a.SetBit(1)
	a.SetBit(2)
	b := NewFingerprint(8)
	b.SetBit(2)
	b.SetBit(3)
	sim, err := calc.Calculate(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, sim, 1e-12)
}
