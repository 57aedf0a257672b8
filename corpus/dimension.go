package corpus

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mensura/unitex/unitex"
)

// DimVector is an integer exponent per base dimension. The text form
// concatenates label and exponent per nonzero axis, exponent one
// omitted: force is "T-2LM", a price per mass is "M-1C". Label order in
// the text form is insignificant on input and fixed on output.
//
// The axes follow the SI base dimensions plus one axis for chemical
// species and one for currency.
type DimVector struct {
	Time        int // T
	Length      int // L
	Mass        int // M
	Current     int // I
	Temperature int // Θ
	Amount      int // N
	Luminosity  int // J
	Chemical    int // Ch
	Currency    int // C
}

type dimAxis struct {
	label string
	get   func(*DimVector) *int
}

// dimLabels lists the axes in canonical print order. "Ch" is matched
// before "C" when parsing.
var dimLabels = []dimAxis{
	{"T", func(v *DimVector) *int { return &v.Time }},
	{"L", func(v *DimVector) *int { return &v.Length }},
	{"M", func(v *DimVector) *int { return &v.Mass }},
	{"I", func(v *DimVector) *int { return &v.Current }},
	{"Θ", func(v *DimVector) *int { return &v.Temperature }},
	{"N", func(v *DimVector) *int { return &v.Amount }},
	{"J", func(v *DimVector) *int { return &v.Luminosity }},
	{"Ch", func(v *DimVector) *int { return &v.Chemical }},
	{"C", func(v *DimVector) *int { return &v.Currency }},
}

// ParseDimVector reads the text form. Labels may come in any order; a
// repeated label adds its exponents. The empty string is the
// dimensionless vector.
func ParseDimVector(s string) (DimVector, error) {
	var v DimVector
	rest := s
	for rest != "" {
		axis := matchLabel(rest)
		if axis == nil {
			return DimVector{}, fmt.Errorf("dimension vector %q: unknown label at %q", s, rest)
		}
		rest = rest[len(axis.label):]

		exp := 1
		if n := exponentLen(rest); n > 0 {
			parsed, err := strconv.Atoi(rest[:n])
			if err != nil {
				return DimVector{}, fmt.Errorf("dimension vector %q: bad exponent %q", s, rest[:n])
			}
			exp = parsed
			rest = rest[n:]
		}
		*axis.get(&v) += exp
	}
	return v, nil
}

// matchLabel finds the axis whose label starts s, longest label first.
func matchLabel(s string) *dimAxis {
	best := -1
	for i := range dimLabels {
		l := dimLabels[i].label
		if strings.HasPrefix(s, l) {
			if best < 0 || len(l) > len(dimLabels[best].label) {
				best = i
			}
		}
	}
	if best < 0 {
		return nil
	}
	return &dimLabels[best]
}

// exponentLen returns how many leading bytes of s form a signed integer,
// zero when s does not start with one. A bare sign counts as zero.
func exponentLen(s string) int {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return 0
	}
	return i
}

// String renders the canonical text form: fixed label order, zero axes
// and unit exponents omitted. The dimensionless vector is "".
func (v DimVector) String() string {
	var b strings.Builder
	for _, axis := range dimLabels {
		exp := *axis.get(&v)
		if exp == 0 {
			continue
		}
		b.WriteString(axis.label)
		if exp != 1 {
			b.WriteString(strconv.Itoa(exp))
		}
	}
	return b.String()
}

// Equal reports whether both vectors agree on every axis.
func (v DimVector) Equal(other DimVector) bool {
	return v == other
}

// IsDimensionless reports whether every axis is zero.
func (v DimVector) IsDimensionless() bool {
	return v == DimVector{}
}

// addScaled adds k times w to v.
func (v *DimVector) addScaled(w DimVector, k int) {
	for _, axis := range dimLabels {
		*axis.get(v) += *axis.get(&w) * k
	}
}

// ============================================================
// Dimension oracle
// ============================================================

// DimOf computes the dimension vector of a canonical form as the
// exponent-weighted sum over its atoms. Unit atoms look up the mapping
// by symbol, chemical and currency atoms land on their own axes, and
// user atoms have no dimension. Exponents must be integers; dimension
// vectors cannot carry fractional axes.
//
// The engine itself never computes dimensions. This is oracle support
// for conformance suites.
func DimOf(cf *unitex.CanonicalForm, mapping map[string]DimVector) (DimVector, error) {
	var sum DimVector
	for _, atom := range cf.Atoms() {
		exp := cf.Exponent(atom)
		if !exp.IsInt() {
			return DimVector{}, fmt.Errorf("dimension of %s: exponent %s is not an integer", atom, exp.RatString())
		}
		if !exp.Num().IsInt64() {
			return DimVector{}, fmt.Errorf("dimension of %s: exponent out of range", atom)
		}
		k := int(exp.Num().Int64())

		var w DimVector
		switch atom.Kind {
		case unitex.AtomUnit:
			var ok bool
			w, ok = mapping[atom.Symbol]
			if !ok {
				return DimVector{}, fmt.Errorf("no dimension mapping for unit %q", atom.Symbol)
			}
		case unitex.AtomChemical:
			w = DimVector{Chemical: 1}
		case unitex.AtomCurrency:
			w = DimVector{Currency: 1}
		default:
			return DimVector{}, fmt.Errorf("user mark %q has no dimension", atom.Symbol)
		}
		sum.addScaled(w, k)
	}
	return sum, nil
}

// SIDimensions returns the dimension mapping for every unit in the
// default table. Logarithmic ratio units and angles map to the
// dimensionless vector.
func SIDimensions() map[string]DimVector {
	return map[string]DimVector{
		// Base units.
		"kg":  {Mass: 1},
		"g":   {Mass: 1},
		"m":   {Length: 1},
		"s":   {Time: 1},
		"A":   {Current: 1},
		"K":   {Temperature: 1},
		"mol": {Amount: 1},
		"cd":  {Luminosity: 1},
		// Coherent derived units.
		"Hz":  {Time: -1},
		"N":   {Mass: 1, Length: 1, Time: -2},
		"Pa":  {Mass: 1, Length: -1, Time: -2},
		"J":   {Mass: 1, Length: 2, Time: -2},
		"W":   {Mass: 1, Length: 2, Time: -3},
		"C":   {Time: 1, Current: 1},
		"V":   {Mass: 1, Length: 2, Time: -3, Current: -1},
		"F":   {Mass: -1, Length: -2, Time: 4, Current: 2},
		"S":   {Mass: -1, Length: -2, Time: 3, Current: 2},
		"Wb":  {Mass: 1, Length: 2, Time: -2, Current: -1},
		"T":   {Mass: 1, Time: -2, Current: -1},
		"H":   {Mass: 1, Length: 2, Time: -2, Current: -2},
		"lm":  {Luminosity: 1},
		"lx":  {Luminosity: 1, Length: -2},
		"Bq":  {Time: -1},
		"Gy":  {Length: 2, Time: -2},
		"Sv":  {Length: 2, Time: -2},
		"kat": {Amount: 1, Time: -1},
		"rad": {},
		"sr":  {},
		"ohm": {Mass: 1, Length: 2, Time: -3, Current: -2},
		// Accepted non-SI units.
		"L":   {Length: 3},
		"l":   {Length: 3},
		"t":   {Mass: 1},
		"min": {Time: 1},
		"h":   {Time: 1},
		"d":   {Time: 1},
		"eV":  {Mass: 1, Length: 2, Time: -2},
		"Da":  {Mass: 1},
		"au":  {Length: 1},
		"u":   {Mass: 1},
		"ha":  {Length: 2},
		"bar": {Mass: 1, Length: -1, Time: -2},
		"Np":  {},
		"B":   {},
	}
}
