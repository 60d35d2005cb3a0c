package molecule

// Element is the periodic-table data needed for valence and weight.
type Element struct {
	Number int
	Symbol string
	Mass   float64 // standard atomic weight
	// Valences lists the allowed total valences of the neutral atom in
	// ascending order.  nil means the element is not valence-checked.
	Valences []int
}

var elements = []Element{
	{0, "*", 0, nil},
	{1, "H", 1.008, []int{1}},
	{2, "He", 4.003, []int{0}},
	{3, "Li", 6.94, []int{1}},
	{4, "Be", 9.012, []int{2}},
	{5, "B", 10.81, []int{3}},
	{6, "C", 12.011, []int{4}},
	{7, "N", 14.007, []int{3}},
	{8, "O", 15.999, []int{2}},
	{9, "F", 18.998, []int{1}},
	{10, "Ne", 20.180, []int{0}},
	{11, "Na", 22.990, []int{1}},
	{12, "Mg", 24.305, []int{2}},
	{13, "Al", 26.982, []int{3}},
	{14, "Si", 28.085, []int{4}},
	{15, "P", 30.974, []int{3, 5, 7}},
	{16, "S", 32.067, []int{2, 4, 6}},
	{17, "Cl", 35.453, []int{1}},
	{18, "Ar", 39.948, []int{0}},
	{19, "K", 39.098, []int{1}},
	{20, "Ca", 40.078, []int{2}},
	{22, "Ti", 47.867, nil},
	{24, "Cr", 51.996, nil},
	{25, "Mn", 54.938, nil},
	{26, "Fe", 55.845, nil},
	{27, "Co", 58.933, nil},
	{28, "Ni", 58.693, nil},
	{29, "Cu", 63.546, nil},
	{30, "Zn", 65.38, nil},
	{31, "Ga", 69.723, []int{3}},
	{32, "Ge", 72.630, []int{4}},
	{33, "As", 74.922, []int{3, 5, 7}},
	{34, "Se", 78.971, []int{2, 4, 6}},
	{35, "Br", 79.904, []int{1}},
	{36, "Kr", 83.798, []int{0}},
	{37, "Rb", 85.468, []int{1}},
	{38, "Sr", 87.62, []int{2}},
	{47, "Ag", 107.868, nil},
	{48, "Cd", 112.414, nil},
	{50, "Sn", 118.711, []int{2, 4}},
	{51, "Sb", 121.760, []int{3, 5, 7}},
	{52, "Te", 127.60, []int{2, 4, 6}},
	{53, "I", 126.904, []int{1, 3, 5}},
	{54, "Xe", 131.293, []int{0, 2, 4, 6}},
	{55, "Cs", 132.905, []int{1}},
	{56, "Ba", 137.327, []int{2}},
	{78, "Pt", 195.084, nil},
	{79, "Au", 196.967, nil},
	{80, "Hg", 200.592, nil},
	{82, "Pb", 207.2, nil},
}

var (
	elementBySymbol = make(map[string]*Element, len(elements))
	elementByNumber = make(map[int]*Element, len(elements))
)

func init() {
	for i := range elements {
		e := &elements[i]
		elementBySymbol[e.Symbol] = e
		elementByNumber[e.Number] = e
	}
}

// LookupElement returns the element with the given symbol.
func LookupElement(symbol string) (*Element, bool) {
	e, ok := elementBySymbol[symbol]
	return e, ok
}

// ElementByNumber returns the element with atomic number z.
func ElementByNumber(z int) (*Element, bool) {
	e, ok := elementByNumber[z]
	return e, ok
}

// allowedValences returns the valences of an atom with atomic number z and
// formal charge q, using the isoelectronic neutral element (N+ behaves as C,
// O- as F).  ok is false when the atom is not valence-checked.
func allowedValences(z, q int) (vals []int, ok bool) {
	if z == 0 {
		return nil, false
	}
	e, found := elementByNumber[z-q]
	if !found || e.Valences == nil {
		return nil, false
	}
	return e.Valences, true
}

// aromaticSymbols are the lowercase element symbols allowed for aromatic atoms.
var aromaticSymbols = map[string]string{
	"b": "B", "c": "C", "n": "N", "o": "O", "p": "P", "s": "S",
	"se": "Se", "as": "As", "te": "Te", "si": "Si", "ge": "Ge",
}
