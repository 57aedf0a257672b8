package unitex

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCanon(t *testing.T, input string) *CanonicalForm {
	t.Helper()
	cf, err := Canonicalize(mustParse(t, input))
	require.NoError(t, err, "canonicalize %q", input)
	return cf
}

func unitAtom(symbol string) Atom { return Atom{Kind: AtomUnit, Symbol: symbol} }

func TestCanonicalize_Coefficients(t *testing.T) {
	tests := []struct {
		input string
		num   int64
		den   int64
	}{
		{"1", 1, 1},
		{"2 3", 6, 1},
		{"km", 1000, 1},
		{"Mkg", 1000000, 1},
		{"dam", 10, 1},
		{"mm^2", 1, 1000000},
		{"2^3", 8, 1},
		{"2^-2", 1, 4},
		{"1/4", 1, 4},
		{"m/(2 s)", 1, 2},
		{"2 4/8", 1, 1},
		{"-3 m", -3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cf := mustCanon(t, tt.input)
			want := big.NewRat(tt.num, tt.den)
			assert.Zero(t, cf.Coefficient().Cmp(want), "coefficient %s, want %s", cf.Coefficient(), want)
		})
	}
}

// Coefficients are exact rationals, not floats: a tenth times two
// tenths is exactly one fiftieth.
func TestCanonicalize_Exactness(t *testing.T) {
	cf := mustCanon(t, "0.1 0.2")
	assert.Zero(t, cf.Coefficient().Cmp(big.NewRat(1, 50)))
	assert.True(t, cf.IsDimensionless())
}

func TestCanonicalize_Exponents(t *testing.T) {
	cf := mustCanon(t, "9.81 m/s^2")
	assert.Zero(t, cf.Coefficient().Cmp(big.NewRat(981, 100)))
	assert.Zero(t, cf.Exponent(unitAtom("m")).Cmp(big.NewRat(1, 1)))
	assert.Zero(t, cf.Exponent(unitAtom("s")).Cmp(big.NewRat(-2, 1)))
	assert.Nil(t, cf.Exponent(unitAtom("kg")))

	cf = mustCanon(t, "1/s")
	assert.Zero(t, cf.Coefficient().Cmp(big.NewRat(1, 1)))
	assert.Zero(t, cf.Exponent(unitAtom("s")).Cmp(big.NewRat(-1, 1)))

	cf = mustCanon(t, "m^1.5 m^0.5")
	assert.Zero(t, cf.Exponent(unitAtom("m")).Cmp(big.NewRat(2, 1)))
}

func TestCanonicalize_ZeroExponentsDrop(t *testing.T) {
	for _, input := range []string{"m/m", "m^0", "m m^-1", "s^2/(s s)"} {
		t.Run(input, func(t *testing.T) {
			cf := mustCanon(t, input)
			assert.True(t, cf.IsDimensionless(), "%q should cancel out", input)
			assert.Empty(t, cf.Atoms())
		})
	}

	cf := mustCanon(t, "m s/m")
	assert.Equal(t, []Atom{unitAtom("s")}, cf.Atoms())
}

func TestCanonicalize_Equivalences(t *testing.T) {
	pairs := [][2]string{
		{"W/(m K)", "W m^-1 K^-1"},
		{"W/(m K)", "W/(K m)"},
		{"1/s", "s^-1"},
		{"km", "1000 m"},
		{"kW/(m K)", "1000 W m^-1 K^-1"},
		{"Mkg", "1000000 kg"},
		{"9.81 m/s^2", "9.81 m s^-2"},
		{"{chem: CO2}/kg", "{chem: CO2} kg^-1"},
		{"m^2", "m m"},
		{"2e3", "2000"},
	}

	table := DefaultTable()
	for _, pair := range pairs {
		t.Run(pair[0]+" = "+pair[1], func(t *testing.T) {
			eq, err := Equivalent(table, pair[0], pair[1])
			require.NoError(t, err)
			assert.True(t, eq)
		})
	}
}

func TestCanonicalize_Distinctions(t *testing.T) {
	pairs := [][2]string{
		// Namespaces never mix.
		{"{chem: CO2}", "{CO2}"},
		{"{currency: USD}", "{USD}"},
		// Grams and kilograms are distinct atoms; no conversion here.
		{"kg", "1000 g"},
		{"m/s", "m s"},
		{"2", "3"},
	}

	table := DefaultTable()
	for _, pair := range pairs {
		t.Run(pair[0]+" != "+pair[1], func(t *testing.T) {
			eq, err := Equivalent(table, pair[0], pair[1])
			require.NoError(t, err)
			assert.False(t, eq)
		})
	}
}

func TestCanonicalize_MarkAtoms(t *testing.T) {
	cf := mustCanon(t, "{chem: CO2} {currency: USD}^-1 {note}")
	assert.Equal(t, []Atom{
		{Kind: AtomChemical, Symbol: "CO2"},
		{Kind: AtomCurrency, Symbol: "USD"},
		{Kind: AtomUser, Symbol: "note"},
	}, cf.Atoms())

	cf = mustCanon(t, "{chem: CO2}^2/{chem: CO2}")
	assert.Zero(t, cf.Exponent(Atom{Kind: AtomChemical, Symbol: "CO2"}).Cmp(big.NewRat(1, 1)))
}

func TestCanonicalize_FractionalPowers(t *testing.T) {
	// Powers of ten-smooth bases that land on exact floats stay exact.
	cf := mustCanon(t, "100^0.5")
	assert.Zero(t, cf.Coefficient().Cmp(big.NewRat(10, 1)))

	cf = mustCanon(t, "4^0.5")
	assert.Zero(t, cf.Coefficient().Cmp(big.NewRat(2, 1)))

	// Irrational results go through float64.
	cf = mustCanon(t, "10^0.5")
	f, _ := cf.Coefficient().Float64()
	assert.InDelta(t, 3.1622776601683795, f, 1e-12)

	// A prefix under a fractional exponent folds the same way.
	cf = mustCanon(t, "km^0.5")
	f, _ = cf.Coefficient().Float64()
	assert.InDelta(t, 31.622776601683793, f, 1e-9)
	assert.Zero(t, cf.Exponent(unitAtom("m")).Cmp(big.NewRat(1, 2)))
}

func TestCanonicalize_Errors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"m/0", ErrDivisionByZero},
		{"0^-1", ErrDivisionByZero},
		{"-1^0.5", ErrNoRealPower},
		{"2^1e6", ErrOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Canonicalize(mustParse(t, tt.input))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

// Canonicalization is a fixed point: rebuilding an expression from a
// form and reducing it again changes nothing.
func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{
		"9.81 m/s^2",
		"W/(m K)",
		"Mkg",
		"{chem: CO2}/kg",
		"1/s",
		"2e3 {currency: USD}/(MW h)",
		"m^1.5",
		"42",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			cf := mustCanon(t, input)
			again, err := Canonicalize(cf.Expression())
			require.NoError(t, err)
			assert.True(t, cf.Equal(again), "canonical form drifted:\n first %s\nsecond %s", cf, again)
		})
	}
}

func TestCanonicalForm_String(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1/s", "s^-1"},
		{"km", "1000 m"},
		{"kg m/s^2", "kg m s^-2"},
		{"m/m", "1"},
		{"2 4/8", "1"},
		{"9.81 m s^-2", "9.81 m s^-2"},
		{"{chem: CO2}/kg", "kg^-1 {chem: CO2}"},
		{"0.5 s", "0.5 s"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, mustCanon(t, tt.input).String())
		})
	}
}

func TestEquivalent_Errors(t *testing.T) {
	table := DefaultTable()

	_, err := Equivalent(table, "kg", "Wh")
	require.Error(t, err)
	var unrec *UnrecognizedUnitError
	assert.ErrorAs(t, err, &unrec)
	assert.Contains(t, err.Error(), "second expression")

	_, err = Equivalent(table, "W/m/K", "kg")
	assert.Contains(t, err.Error(), "first expression")
}
