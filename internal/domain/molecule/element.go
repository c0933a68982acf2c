package molecule

// Element describes one chemical element as far as descriptor calculation
// needs it.
type Element struct {
	Symbol string
	Number int

	// MonoMass is the mass of the most abundant isotope in Daltons.
	MonoMass float64

	// Valences lists the allowed neutral valences in ascending order.  Empty
	// for elements outside the SMILES organic subset where no implicit
	// hydrogens are ever added.
	Valences []int
}

const (
	hydrogenMass = 1.00782503207
	electronMass = 0.00054857990946
)

var elements = []Element{
	{"*", 0, 0, nil},
	{"H", 1, hydrogenMass, []int{1}},
	{"He", 2, 4.00260325415, nil},
	{"Li", 3, 7.016004548, nil},
	{"Be", 4, 9.012182201, nil},
	{"B", 5, 11.009305406, []int{3}},
	{"C", 6, 12.0, []int{4}},
	{"N", 7, 14.00307400478, []int{3, 5}},
	{"O", 8, 15.99491461956, []int{2}},
	{"F", 9, 18.99840322, []int{1}},
	{"Ne", 10, 19.9924401754, nil},
	{"Na", 11, 22.98976928, nil},
	{"Mg", 12, 23.985041699, nil},
	{"Al", 13, 26.981538627, nil},
	{"Si", 14, 27.9769265327, []int{4}},
	{"P", 15, 30.97376151, []int{3, 5}},
	{"S", 16, 31.97207069, []int{2, 4, 6}},
	{"Cl", 17, 34.96885271, []int{1}},
	{"Ar", 18, 39.9623831225, nil},
	{"K", 19, 38.96370668, nil},
	{"Ca", 20, 39.96259098, nil},
	{"Sc", 21, 44.9559119, nil},
	{"Ti", 22, 47.9479463, nil},
	{"V", 23, 50.9439595, nil},
	{"Cr", 24, 51.9405075, nil},
	{"Mn", 25, 54.9380451, nil},
	{"Fe", 26, 55.9349375, nil},
	{"Co", 27, 58.933195, nil},
	{"Ni", 28, 57.9353429, nil},
	{"Cu", 29, 62.9295975, nil},
	{"Zn", 30, 63.9291422, nil},
	{"Ga", 31, 68.9255736, nil},
	{"Ge", 32, 73.9211778, nil},
	{"As", 33, 74.9215965, []int{3, 5}},
	{"Se", 34, 79.9165213, []int{2, 4, 6}},
	{"Br", 35, 78.9183371, []int{1}},
	{"Kr", 36, 83.911507, nil},
	{"Rb", 37, 84.911789738, nil},
	{"Sr", 38, 87.9056121, nil},
	{"Y", 39, 88.9058483, nil},
	{"Zr", 40, 89.9047044, nil},
	{"Nb", 41, 92.9063781, nil},
	{"Mo", 42, 97.9054082, nil},
	{"Tc", 43, 97.907216, nil},
	{"Ru", 44, 101.9043493, nil},
	{"Rh", 45, 102.905504, nil},
	{"Pd", 46, 105.903486, nil},
	{"Ag", 47, 106.905097, nil},
	{"Cd", 48, 113.9033585, nil},
	{"In", 49, 114.903878, nil},
	{"Sn", 50, 119.9021947, nil},
	{"Sb", 51, 120.9038157, nil},
	{"Te", 52, 129.9062244, []int{2, 4, 6}},
	{"I", 53, 126.904473, []int{1}},
	{"Xe", 54, 131.9041535, nil},
	{"Cs", 55, 132.905451933, nil},
	{"Ba", 56, 137.9052472, nil},
	{"La", 57, 138.9063533, nil},
	{"Ce", 58, 139.9054387, nil},
	{"Sm", 62, 151.9197324, nil},
	{"Eu", 63, 152.9212303, nil},
	{"Gd", 64, 157.9241039, nil},
	{"Lu", 71, 174.9407718, nil},
	{"Hf", 72, 179.94655, nil},
	{"Ta", 73, 180.9479958, nil},
	{"W", 74, 183.9509312, nil},
	{"Re", 75, 186.9557531, nil},
	{"Os", 76, 191.9614807, nil},
	{"Ir", 77, 192.9629264, nil},
	{"Pt", 78, 194.9647911, nil},
	{"Au", 79, 196.9665687, nil},
	{"Hg", 80, 201.970643, nil},
	{"Tl", 81, 204.9744275, nil},
	{"Pb", 82, 207.9766521, nil},
	{"Bi", 83, 208.9803987, nil},
	{"Ra", 88, 226.0254098, nil},
	{"Th", 90, 232.0380553, nil},
	{"U", 92, 238.0507882, nil},
}

// isotopeMasses holds exact masses of isotopes that show up as explicit
// labels in drug SMILES.  Unlisted isotopes fall back to the mass number.
var isotopeMasses = map[[2]int]float64{
	{1, 2}:   2.01410177785,
	{1, 3}:   3.01604927767,
	{6, 11}:  11.0114336,
	{6, 13}:  13.0033548378,
	{6, 14}:  14.003241989,
	{7, 15}:  15.0001088982,
	{8, 17}:  16.9991317,
	{8, 18}:  17.999161,
	{9, 18}:  18.000938,
	{15, 32}: 31.97390727,
	{16, 34}: 33.96786690,
	{16, 35}: 34.96903216,
	{17, 36}: 35.96830698,
	{17, 37}: 36.96590259,
	{24, 51}: 50.9447674,
	{26, 59}: 58.9348755,
	{27, 57}: 56.9362914,
	{27, 58}: 57.9357528,
	{27, 60}: 59.9338171,
	{31, 67}: 66.9282017,
	{34, 75}: 74.9225234,
	{35, 81}: 80.9162906,
	{37, 82}: 81.9182086,
	{38, 89}: 88.9074507,
	{43, 99}: 98.9062547,
	{49, 111}: 110.9051085,
	{53, 123}: 122.905589,
	{53, 124}: 123.9062099,
	{53, 125}: 124.9046302,
	{53, 131}: 130.9061246,
	{54, 133}: 132.9059107,
	{62, 153}: 152.9220974,
	{81, 201}: 200.970819,
}

var elementBySymbol = func() map[string]*Element {
	m := make(map[string]*Element, len(elements))
	for i := range elements {
		m[elements[i].Symbol] = &elements[i]
	}
	return m
}()

// LookupElement returns the element with the given symbol, or nil.
func LookupElement(symbol string) *Element {
	return elementBySymbol[symbol]
}

// IsotopeMass returns the exact mass of isotope a of element z.
func IsotopeMass(z, a int) float64 {
	if m, ok := isotopeMasses[[2]int{z, a}]; ok {
		return m
	}
	return float64(a)
}

// valencesFor returns the allowed valences of e after adjusting for a formal
// charge.  Cations of N/P/As take the valences of the group-14 element, O/S
// cations those of group 15, and so on.
func valencesFor(e *Element, charge int) []int {
	if e == nil || len(e.Valences) == 0 {
		return nil
	}
	if charge == 0 {
		return e.Valences
	}
	switch e.Number {
	case 5: // B
		if charge == -1 {
			return []int{4}
		}
	case 6: // C
		if charge == 1 || charge == -1 {
			return []int{3}
		}
	case 7, 15, 33: // N P As
		if charge == 1 {
			return []int{4}
		}
		if charge == -1 {
			return []int{2}
		}
	case 8, 16, 34, 52: // O S Se Te
		if charge == 1 {
			if e.Number == 8 {
				return []int{3}
			}
			return []int{3, 5}
		}
		if charge == -1 {
			if e.Number == 8 {
				return []int{1}
			}
			return []int{1, 3, 5}
		}
	case 9, 17, 35, 53: // halogens
		if charge == -1 {
			return []int{0}
		}
		if charge == 1 {
			return []int{2}
		}
	}
	return nil
}
