package unitex

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"
)

// Canonicalization errors
var (
	ErrDivisionByZero = errors.New("unitex: division by zero")
	ErrNoRealPower    = errors.New("unitex: no real power")
	ErrOverflow       = errors.New("unitex: exponent overflow")
)

// CanonicalForm is the value of an expression reduced to a single
// coefficient and one exponent per atom. Two expressions mean the same
// thing exactly when their canonical forms are equal. Atoms with a zero
// net exponent are absent from the map.
type CanonicalForm struct {
	coeff *big.Rat
	exps  map[Atom]*big.Rat
}

// Canonicalize reduces an expression tree. Numerator terms multiply
// into the form, the denominator divides it, prefix chains fold into the
// coefficient as powers of ten, and per-atom exponents are summed.
// Integer exponents stay exact; non-integer exponents are applied
// through float64 and fail only when no finite real result exists.
func Canonicalize(e *Expression) (*CanonicalForm, error) {
	return canonExpression(e)
}

// Equivalent parses both inputs against the table and compares their
// canonical forms.
func Equivalent(table *DefinitionsTable, a, b string) (bool, error) {
	ea, err := Parse(table, a)
	if err != nil {
		return false, fmt.Errorf("first expression: %w", err)
	}
	eb, err := Parse(table, b)
	if err != nil {
		return false, fmt.Errorf("second expression: %w", err)
	}
	ca, err := Canonicalize(ea)
	if err != nil {
		return false, fmt.Errorf("first expression: %w", err)
	}
	cb, err := Canonicalize(eb)
	if err != nil {
		return false, fmt.Errorf("second expression: %w", err)
	}
	return ca.Equal(cb), nil
}

// Coefficient returns the numeric coefficient.
func (cf *CanonicalForm) Coefficient() *big.Rat {
	return new(big.Rat).Set(cf.coeff)
}

// Exponent returns the exponent of the atom, nil when the atom does not
// occur.
func (cf *CanonicalForm) Exponent(a Atom) *big.Rat {
	p, ok := cf.exps[a]
	if !ok {
		return nil
	}
	return new(big.Rat).Set(p)
}

// Exponents returns a copy of the atom exponent map.
func (cf *CanonicalForm) Exponents() map[Atom]*big.Rat {
	out := make(map[Atom]*big.Rat, len(cf.exps))
	for a, p := range cf.exps {
		out[a] = new(big.Rat).Set(p)
	}
	return out
}

// Atoms returns the occurring atoms sorted by kind, then symbol.
func (cf *CanonicalForm) Atoms() []Atom {
	atoms := make([]Atom, 0, len(cf.exps))
	for a := range cf.exps {
		atoms = append(atoms, a)
	}
	sort.Slice(atoms, func(i, j int) bool {
		if atoms[i].Kind != atoms[j].Kind {
			return atoms[i].Kind < atoms[j].Kind
		}
		return atoms[i].Symbol < atoms[j].Symbol
	})
	return atoms
}

// IsDimensionless reports whether no atom carries a nonzero exponent.
func (cf *CanonicalForm) IsDimensionless() bool {
	return len(cf.exps) == 0
}

// Equal reports whether both forms have the same coefficient and the
// same atom exponents.
func (cf *CanonicalForm) Equal(other *CanonicalForm) bool {
	if cf.coeff.Cmp(other.coeff) != 0 || len(cf.exps) != len(other.exps) {
		return false
	}
	for a, p := range cf.exps {
		q, ok := other.exps[a]
		if !ok || p.Cmp(q) != 0 {
			return false
		}
	}
	return true
}

// Expression rebuilds a flat tree: the coefficient when it is not one,
// then one factor per atom in Atoms order, exponents spelled out except
// when they are one. Canonicalizing the result gives back an equal form,
// so canonicalization is a fixed point.
func (cf *CanonicalForm) Expression() *Expression {
	one := big.NewRat(1, 1)
	var items []Term

	if cf.coeff.Cmp(one) != 0 || len(cf.exps) == 0 {
		items = append(items, Num(cf.coeff))
	}
	for _, a := range cf.Atoms() {
		var f *Factor
		switch a.Kind {
		case AtomUnit:
			f = UnitFactor(Unit{Symbol: a.Symbol})
		case AtomChemical:
			f = ChemicalMark(a.Symbol)
		case AtomCurrency:
			f = CurrencyMark(a.Symbol)
		default:
			f = UserMark(a.Symbol)
		}
		if p := cf.exps[a]; p.Cmp(one) != 0 {
			f = f.WithExponent(p)
		}
		items = append(items, f)
	}
	return Expr(items...)
}

// String renders the canonical text form.
func (cf *CanonicalForm) String() string {
	return Generate(cf.Expression())
}

// ============================================================
// Reduction
// ============================================================

func newCanonicalForm() *CanonicalForm {
	return &CanonicalForm{
		coeff: big.NewRat(1, 1),
		exps:  make(map[Atom]*big.Rat),
	}
}

func canonExpression(e *Expression) (*CanonicalForm, error) {
	cf := newCanonicalForm()
	for _, item := range e.items {
		part, err := canonTerm(item)
		if err != nil {
			return nil, err
		}
		cf.mul(part)
	}
	if e.den != nil {
		part, err := canonTerm(e.den)
		if err != nil {
			return nil, err
		}
		if err := cf.div(part); err != nil {
			return nil, err
		}
	}
	return cf, nil
}

func canonTerm(t Term) (*CanonicalForm, error) {
	switch n := t.(type) {
	case *Factor:
		return canonFactor(n)
	case *Expression:
		return canonExpression(n)
	}
	return nil, fmt.Errorf("unitex: unknown term %T", t)
}

func canonFactor(f *Factor) (*CanonicalForm, error) {
	cf := newCanonicalForm()

	exp := f.exp
	if exp == nil {
		exp = big.NewRat(1, 1)
	}

	switch f.kind {
	case FactorNumber:
		v, err := powRat(f.num, exp)
		if err != nil {
			return nil, err
		}
		cf.coeff.Mul(cf.coeff, v)

	case FactorUnit:
		scale := 0
		for _, p := range f.prefixes {
			scale += p.Scale
		}
		if scale != 0 {
			// 10^(scale * exp)
			se := new(big.Rat).Mul(big.NewRat(int64(scale), 1), exp)
			v, err := powRat(big.NewRat(10, 1), se)
			if err != nil {
				return nil, err
			}
			cf.coeff.Mul(cf.coeff, v)
		}
		cf.addExp(Atom{Kind: AtomUnit, Symbol: f.unit.Symbol}, exp)

	case FactorMark:
		cf.addExp(Atom{Kind: markAtomKind(f.mark), Symbol: f.payload}, exp)
	}
	return cf, nil
}

func markAtomKind(k MarkKind) AtomKind {
	switch k {
	case MarkChemical:
		return AtomChemical
	case MarkCurrency:
		return AtomCurrency
	default:
		return AtomUser
	}
}

func (cf *CanonicalForm) mul(other *CanonicalForm) {
	cf.coeff.Mul(cf.coeff, other.coeff)
	for a, p := range other.exps {
		cf.addExp(a, p)
	}
}

func (cf *CanonicalForm) div(other *CanonicalForm) error {
	if other.coeff.Sign() == 0 {
		return ErrDivisionByZero
	}
	cf.coeff.Quo(cf.coeff, other.coeff)
	neg := new(big.Rat)
	for a, p := range other.exps {
		cf.addExp(a, neg.Neg(p))
	}
	return nil
}

// addExp adds p to the atom's exponent, dropping the atom when the sum
// reaches zero.
func (cf *CanonicalForm) addExp(a Atom, p *big.Rat) {
	if cur, ok := cf.exps[a]; ok {
		cur.Add(cur, p)
		if cur.Sign() == 0 {
			delete(cf.exps, a)
		}
		return
	}
	if p.Sign() != 0 {
		cf.exps[a] = new(big.Rat).Set(p)
	}
}

// ============================================================
// Rational powers
// ============================================================

// maxPowBits bounds the size of an exact power's operands. Inputs within
// reason never get close; the bound stops pathological exponents from
// materializing gigabyte integers.
const maxPowBits = 1 << 26

// powRat computes base**exp. Integer exponents are computed exactly.
// Non-integer exponents go through float64: a negative base then has no
// real power, and zero cannot be raised to a negative power. The zeroth
// power is one, 0**0 included.
func powRat(base, exp *big.Rat) (*big.Rat, error) {
	if exp.Sign() == 0 {
		return big.NewRat(1, 1), nil
	}

	if exp.IsInt() {
		n := exp.Num()
		if n.BitLen() > 16 {
			return nil, ErrOverflow
		}
		k := n.Int64()
		neg := k < 0
		if neg {
			if base.Sign() == 0 {
				return nil, ErrDivisionByZero
			}
			k = -k
		}
		if (base.Num().BitLen()+base.Denom().BitLen())*int(k) > maxPowBits {
			return nil, ErrOverflow
		}
		e := big.NewInt(k)
		num := new(big.Int).Exp(new(big.Int).Abs(base.Num()), e, nil)
		den := new(big.Int).Exp(base.Denom(), e, nil)
		if base.Num().Sign() < 0 && k%2 == 1 {
			num.Neg(num)
		}
		if neg {
			return new(big.Rat).SetFrac(den, num), nil
		}
		return new(big.Rat).SetFrac(num, den), nil
	}

	bf, _ := base.Float64()
	ef, _ := exp.Float64()
	switch {
	case bf < 0:
		return nil, ErrNoRealPower
	case bf == 0 && ef < 0:
		return nil, ErrDivisionByZero
	case bf == 0:
		return new(big.Rat), nil
	}
	v := math.Pow(bf, ef)
	if math.IsNaN(v) {
		return nil, ErrNoRealPower
	}
	if math.IsInf(v, 0) {
		return nil, ErrOverflow
	}
	return new(big.Rat).SetFloat64(v), nil
}
