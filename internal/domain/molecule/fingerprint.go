package molecule

import (
	"encoding/binary"
	"math/bits"
	"sort"

	"github.com/turtacn/odorscape/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fingerprint Structure
// ─────────────────────────────────────────────────────────────────────────────

// Fingerprint is a fixed-length bit vector.  Bit i lives in word i/64 at
// position i%64.
type Fingerprint struct {
	Words     []uint64 `json:"words"`
	Length    int      `json:"length"`
	NumOnBits int      `json:"num_on_bits"`
}

// NewFingerprint returns an all-zero fingerprint of length bits.
func NewFingerprint(length int) *Fingerprint {
	return &Fingerprint{Words: make([]uint64, (length+63)/64), Length: length}
}

// GetBit returns true if the bit at the given index is set.
func (fp *Fingerprint) GetBit(index int) bool {
	if index < 0 || index >= fp.Length {
		return false
	}
	return fp.Words[index/64]&(1<<uint(index%64)) != 0
}

// SetBit sets the bit at the given index to 1.
func (fp *Fingerprint) SetBit(index int) {
	if index < 0 || index >= fp.Length {
		return
	}
	w := &fp.Words[index/64]
	mask := uint64(1) << uint(index%64)
	if *w&mask == 0 {
		*w |= mask
		fp.NumOnBits++
	}
}

// OnBits returns the indices of set bits in ascending order.
func (fp *Fingerprint) OnBits() []int {
	out := make([]int, 0, fp.NumOnBits)
	for wi, w := range fp.Words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, wi*64+b)
			w &= w - 1
		}
	}
	return out
}

// MarshalBinary encodes the fingerprint as its bit length followed by the
// words, all little-endian.
func (fp *Fingerprint) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 8+8*len(fp.Words))
	binary.LittleEndian.PutUint64(buf, uint64(fp.Length))
	for i, w := range fp.Words {
		binary.LittleEndian.PutUint64(buf[8+i*8:], w)
	}
	return buf, nil
}

// UnmarshalBinary decodes the MarshalBinary form.
func (fp *Fingerprint) UnmarshalBinary(data []byte) error {
	if len(data) < 8 || len(data)%8 != 0 {
		return errors.Newf(errors.CodeFingerprintGenerationFailed, "fingerprint encoding has %d bytes", len(data))
	}
	length := int(binary.LittleEndian.Uint64(data))
	words := (len(data) - 8) / 8
	if length < 0 || (length+63)/64 != words {
		return errors.Newf(errors.CodeFingerprintGenerationFailed, "fingerprint length %d does not fit %d words", length, words)
	}
	fp.Length = length
	fp.Words = make([]uint64, words)
	fp.NumOnBits = 0
	for i := range fp.Words {
		w := binary.LittleEndian.Uint64(data[8+i*8:])
		fp.Words[i] = w
		fp.NumOnBits += bits.OnesCount64(w)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Morgan (Circular) Fingerprint
// ─────────────────────────────────────────────────────────────────────────────

// MorganCalculator computes extended-connectivity fingerprints folded to a
// fixed length.  Atom invariants are atomic number, heavy degree, total
// hydrogens, formal charge, isotope shift and ring membership; each iteration
// hashes an atom's invariant with its sorted (bond type, neighbour invariant)
// pairs.  Environments covering a bond set already seen are dropped.
type MorganCalculator struct {
	Radius int
	Bits   int
}

// NewMorganCalculator validates opts and returns a calculator.
func NewMorganCalculator(opts FingerprintCalcOptions) (*MorganCalculator, error) {
	if opts.Radius < 0 {
		return nil, errors.Newf(errors.CodeInvalidParam, "morgan radius must be ≥ 0, got %d", opts.Radius)
	}
	if opts.Bits <= 0 {
		return nil, errors.Newf(errors.CodeInvalidParam, "fingerprint length must be > 0, got %d", opts.Bits)
	}
	return &MorganCalculator{Radius: opts.Radius, Bits: opts.Bits}, nil
}

// Calculate implements FingerprintCalculator.
func (c *MorganCalculator) Calculate(m *Molecule) (*Fingerprint, error) {
	if m == nil {
		return nil, errors.New(errors.CodeFingerprintGenerationFailed, "nil molecule")
	}
	fp := NewFingerprint(c.Bits)
	n := len(m.Atoms)
	if n == 0 {
		return fp, nil
	}

	inv := make([]uint32, n)
	for i := range m.Atoms {
		inv[i] = m.atomInvariant(i)
		fp.SetBit(int(inv[i] % uint32(c.Bits)))
	}

	words := (len(m.Bonds) + 63) / 64
	nbhd := make([][]uint64, n)
	for i := range nbhd {
		nbhd[i] = make([]uint64, words)
	}
	seen := make(map[string]bool)

	type env struct {
		key  string
		inv  uint32
		atom int
	}
	for layer := 1; layer <= c.Radius; layer++ {
		next := make([]uint32, n)
		nextNbhd := make([][]uint64, n)
		envs := make([]env, 0, n)
		for i := range m.Atoms {
			nextNbhd[i] = append([]uint64(nil), nbhd[i]...)
			if len(m.adj[i]) == 0 {
				next[i] = inv[i]
				continue
			}
			pairs := make([]uint64, 0, len(m.adj[i]))
			for _, nb := range m.adj[i] {
				pairs = append(pairs, uint64(m.Bonds[nb.bond].Type)<<32|uint64(inv[nb.atom]))
				nextNbhd[i][nb.bond/64] |= 1 << uint(nb.bond%64)
				for w, v := range nbhd[nb.atom] {
					nextNbhd[i][w] |= v
				}
			}
			sort.Slice(pairs, func(a, b int) bool { return pairs[a] < pairs[b] })

			h := uint32(layer - 1)
			h = hashCombine(h, inv[i])
			for _, p := range pairs {
				h = hashCombine(h, hashCombine(uint32(p>>32), uint32(p)))
			}
			next[i] = h
			envs = append(envs, env{key: bondSetKey(nextNbhd[i]), inv: h, atom: i})
		}

		sort.Slice(envs, func(a, b int) bool {
			if envs[a].key != envs[b].key {
				return envs[a].key < envs[b].key
			}
			if envs[a].inv != envs[b].inv {
				return envs[a].inv < envs[b].inv
			}
			return envs[a].atom < envs[b].atom
		})
		for _, e := range envs {
			if seen[e.key] {
				continue
			}
			seen[e.key] = true
			fp.SetBit(int(e.inv % uint32(c.Bits)))
		}
		inv, nbhd = next, nextNbhd
	}
	return fp, nil
}

// CalculateMorganFingerprint parses smiles and returns its Morgan fingerprint.
func CalculateMorganFingerprint(smiles string, radius, nBits int) (*Fingerprint, error) {
	calc, err := NewMorganCalculator(FingerprintCalcOptions{Radius: radius, Bits: nBits})
	if err != nil {
		return nil, err
	}
	m, err := NewMolecule(smiles)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeFingerprintGenerationFailed, "cannot fingerprint invalid molecule")
	}
	return calc.Calculate(m)
}

func (m *Molecule) atomInvariant(i int) uint32 {
	a := &m.Atoms[i]
	delta := 0
	if a.Isotope > 0 {
		if e, ok := ElementByNumber(a.Number); ok {
			delta = a.Isotope - int(e.Mass+0.5)
		}
	}
	ring := 0
	if a.InRing {
		ring = 1
	}
	h := uint32(0)
	for _, v := range []int{a.Number, len(m.adj[i]), a.Hydrogens, a.Charge, delta, ring} {
		h = hashCombine(h, uint32(int32(v)))
	}
	return h
}

// hashCombine mixes v into seed.
func hashCombine(seed, v uint32) uint32 {
	return seed ^ (v + 0x9e3779b9 + (seed << 6) + (seed >> 2))
}

func bondSetKey(set []uint64) string {
	buf := make([]byte, 8*len(set))
	for i, w := range set {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	return string(buf)
}
