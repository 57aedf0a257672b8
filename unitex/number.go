package unitex

import (
	"math/big"
	"strconv"
	"strings"
)

// Number lexemes follow -?digits(.digits*)?([eE]-?digits)?. There is no
// '+' anywhere in the grammar; parsers and formatters both enforce that.

// maxNumberExp bounds the scientific exponent of a lexeme. Anything
// beyond it is rejected rather than materialized as a huge integer.
const maxNumberExp = 1 << 16

// parseDecimal converts a number lexeme to an exact rational. The offset
// is the lexeme's position in the original input and is carried into the
// error when the lexeme does not fit the grammar.
func parseDecimal(lexeme string, offset int) (*big.Rat, error) {
	malformed := func() (*big.Rat, error) {
		return nil, &MalformedNumberError{Offset: offset, Lexeme: lexeme}
	}

	s := lexeme
	i := 0
	neg := false
	if i < len(s) && s[i] == '-' {
		neg = true
		i++
	}

	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start {
		return malformed()
	}
	digits := []byte(s[start:i])

	// Fractional digits shift the decimal exponent down by their count.
	scale := 0
	if i < len(s) && s[i] == '.' {
		i++
		fracStart := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		digits = append(digits, s[fracStart:i]...)
		scale = i - fracStart
	}

	exp := 0
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		expNeg := false
		if i < len(s) && s[i] == '-' {
			expNeg = true
			i++
		}
		expStart := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == expStart {
			return malformed()
		}
		v, err := strconv.Atoi(s[expStart:i])
		if err != nil || v > maxNumberExp {
			return malformed()
		}
		if expNeg {
			v = -v
		}
		exp = v
	}
	if i != len(s) {
		return malformed()
	}

	coef := new(big.Int)
	if _, ok := coef.SetString(string(digits), 10); !ok {
		return malformed()
	}
	if neg {
		coef.Neg(coef)
	}

	r := new(big.Rat).SetInt(coef)
	pow := exp - scale
	if pow > 0 {
		r.Mul(r, new(big.Rat).SetInt(pow10(pow)))
	} else if pow < 0 {
		r.Quo(r, new(big.Rat).SetInt(pow10(-pow)))
	}
	return r, nil
}

// formatPlain renders a rational as a plain decimal. The result is exact
// whenever the value terminates in base 10; otherwise it is the shortest
// decimal that round-trips through float64.
func formatPlain(r *big.Rat) string {
	if digits, scale, ok := decimalDigits(r); ok {
		return plainFromDigits(r.Sign() < 0, digits, scale)
	}
	f, _ := r.Float64()
	return normalizeExponent(strconv.FormatFloat(f, 'g', -1, 64))
}

// formatScientific renders a rational in normalized scientific notation
// (one leading digit, lowercase 'e', no '+'), e.g. "1.23e3", "5e-1".
func formatScientific(r *big.Rat) string {
	digits, scale, ok := decimalDigits(r)
	if !ok {
		f, _ := r.Float64()
		return normalizeExponent(strconv.FormatFloat(f, 'e', -1, 64))
	}
	if digits == "0" {
		return "0e0"
	}
	sign := ""
	if r.Sign() < 0 {
		sign = "-"
	}
	mantissa := strings.TrimRight(digits[1:], "0")
	exp := len(digits) - 1 - scale
	if mantissa == "" {
		return sign + digits[:1] + "e" + strconv.Itoa(exp)
	}
	return sign + digits[:1] + "." + mantissa + "e" + strconv.Itoa(exp)
}

// ============================================================
// Decimal helpers
// ============================================================

// decimalDigits decomposes |r| into digits * 10^-scale when r terminates
// in base 10, i.e. when its reduced denominator has only the prime
// factors 2 and 5. The digit string has no sign and no leading zeros.
func decimalDigits(r *big.Rat) (digits string, scale int, ok bool) {
	num := new(big.Int).Abs(r.Num())
	if num.Sign() == 0 {
		return "0", 0, true
	}
	den := new(big.Int).Set(r.Denom())

	two := big.NewInt(2)
	five := big.NewInt(5)
	rem := new(big.Int)
	twos, fives := 0, 0
	for {
		q, m := new(big.Int).QuoRem(den, two, rem)
		if m.Sign() != 0 {
			break
		}
		den = q
		twos++
	}
	for {
		q, m := new(big.Int).QuoRem(den, five, rem)
		if m.Sign() != 0 {
			break
		}
		den = q
		fives++
	}
	if den.Cmp(big.NewInt(1)) != 0 {
		return "", 0, false
	}

	scale = twos
	if fives > scale {
		scale = fives
	}
	// num * 10^scale / (2^twos * 5^fives) is integral by construction.
	scaled := new(big.Int).Mul(num, pow10(scale))
	scaled.Quo(scaled, r.Denom())
	return scaled.String(), scale, true
}

// plainFromDigits inserts the decimal point into an unsigned digit string
// whose value is digits * 10^-scale.
func plainFromDigits(neg bool, digits string, scale int) string {
	var b strings.Builder
	if neg && digits != "0" {
		b.WriteByte('-')
	}
	switch {
	case scale == 0:
		b.WriteString(digits)
	case len(digits) > scale:
		cut := len(digits) - scale
		b.WriteString(digits[:cut])
		b.WriteByte('.')
		b.WriteString(digits[cut:])
	default:
		b.WriteString("0.")
		for i := len(digits); i < scale; i++ {
			b.WriteByte('0')
		}
		b.WriteString(digits)
	}
	return b.String()
}

// normalizeExponent rewrites strconv's exponent spelling ("1e+05",
// "3e-07") into the grammar's ("1e5", "3e-7").
func normalizeExponent(s string) string {
	idx := strings.IndexAny(s, "eE")
	if idx < 0 {
		return s
	}
	mantissa, exp := s[:idx], s[idx+1:]
	neg := false
	switch {
	case strings.HasPrefix(exp, "+"):
		exp = exp[1:]
	case strings.HasPrefix(exp, "-"):
		neg = true
		exp = exp[1:]
	}
	exp = strings.TrimLeft(exp, "0")
	if exp == "" {
		exp = "0"
		neg = false
	}
	if neg {
		return mantissa + "e-" + exp
	}
	return mantissa + "e" + exp
}

// pow10 returns 10^n for n >= 0.
func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
