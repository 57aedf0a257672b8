package unitex

import (
	"math/big"
)

// Term is a node of the parsed tree: either a *Factor leaf or a nested
// *Expression. Offsets are byte positions in the source text; nodes built
// directly rather than parsed carry offset zero.
type Term interface {
	Offset() int
	term()
}

// ============================================================
// Factors
// ============================================================

// FactorKind selects which leaf variant a Factor holds.
type FactorKind int

const (
	FactorNumber FactorKind = iota
	FactorUnit
	FactorMark
)

func (k FactorKind) String() string {
	switch k {
	case FactorNumber:
		return "number"
	case FactorUnit:
		return "unit"
	case FactorMark:
		return "mark"
	}
	return "invalid"
}

// MarkKind classifies brace-delimited marks.
type MarkKind int

const (
	MarkChemical MarkKind = iota
	MarkCurrency
	MarkUser
)

func (k MarkKind) String() string {
	switch k {
	case MarkChemical:
		return "chem"
	case MarkCurrency:
		return "currency"
	case MarkUser:
		return "user"
	}
	return "invalid"
}

// Factor is a leaf of the tree: a number, a prefixed unit, or a mark,
// each with an optional exponent. Exactly one variant is populated; Kind
// tells which. Factors are immutable once built.
type Factor struct {
	kind     FactorKind
	num      *big.Rat
	lexeme   string
	prefixes []Prefix
	unit     Unit
	mark     MarkKind
	payload  string
	exp      *big.Rat
	expLex   string
	offset   int
}

// Num builds a number factor from an exact rational.
func Num(value *big.Rat) *Factor {
	return &Factor{kind: FactorNumber, num: new(big.Rat).Set(value)}
}

// NumFromString builds a number factor from a number lexeme, keeping the
// original spelling for re-emission.
func NumFromString(lexeme string) (*Factor, error) {
	v, err := parseDecimal(lexeme, 0)
	if err != nil {
		return nil, err
	}
	return &Factor{kind: FactorNumber, num: v, lexeme: lexeme}, nil
}

// UnitFactor builds a bare unit factor.
func UnitFactor(u Unit) *Factor {
	return &Factor{kind: FactorUnit, unit: u}
}

// PrefixedUnit builds a unit factor carrying a prefix chain, outermost
// first. The chain scales the unit by ten to the sum of the prefix
// scales; an empty chain is the same as UnitFactor.
func PrefixedUnit(prefixes []Prefix, u Unit) *Factor {
	f := &Factor{kind: FactorUnit, unit: u}
	if len(prefixes) > 0 {
		f.prefixes = make([]Prefix, len(prefixes))
		copy(f.prefixes, prefixes)
	}
	return f
}

// ChemicalMark builds a {chem: …} mark factor.
func ChemicalMark(formula string) *Factor {
	return &Factor{kind: FactorMark, mark: MarkChemical, payload: formula}
}

// CurrencyMark builds a {currency: …} mark factor.
func CurrencyMark(code string) *Factor {
	return &Factor{kind: FactorMark, mark: MarkCurrency, payload: code}
}

// UserMark builds an uninterpreted mark factor. The payload is the whole
// brace content, spacing included.
func UserMark(payload string) *Factor {
	return &Factor{kind: FactorMark, mark: MarkUser, payload: payload}
}

// WithExponent returns a copy of the factor with the exponent set.
func (f *Factor) WithExponent(exp *big.Rat) *Factor {
	g := *f
	g.exp = new(big.Rat).Set(exp)
	g.expLex = ""
	return &g
}

// Kind reports which variant the factor holds.
func (f *Factor) Kind() FactorKind { return f.kind }

// Number returns the numeric value of a number factor, nil otherwise.
func (f *Factor) Number() *big.Rat {
	if f.num == nil {
		return nil
	}
	return new(big.Rat).Set(f.num)
}

// NumberLexeme returns the original spelling of a number factor, "" when
// the factor was built from a value rather than parsed.
func (f *Factor) NumberLexeme() string { return f.lexeme }

// Prefixes returns the prefix chain of a unit factor, outermost first.
func (f *Factor) Prefixes() []Prefix {
	if len(f.prefixes) == 0 {
		return nil
	}
	out := make([]Prefix, len(f.prefixes))
	copy(out, f.prefixes)
	return out
}

// Unit returns the unit of a unit factor.
func (f *Factor) Unit() Unit { return f.unit }

// Mark returns the mark classification of a mark factor.
func (f *Factor) Mark() MarkKind { return f.mark }

// Payload returns the mark payload: the formula, the currency code, or
// the raw brace content for user marks.
func (f *Factor) Payload() string { return f.payload }

// Exponent returns the explicit exponent, nil when absent. An absent
// exponent means one.
func (f *Factor) Exponent() *big.Rat {
	if f.exp == nil {
		return nil
	}
	return new(big.Rat).Set(f.exp)
}

// Offset returns the factor's byte position in the source text.
func (f *Factor) Offset() int { return f.offset }

func (f *Factor) String() string { return Polish(f) }

// ============================================================
// Expressions
// ============================================================

// Expression is a product of terms with at most one denominator. The
// denominator, when present, is a single factor or one parenthesized
// expression; the grammar admits nothing after it.
type Expression struct {
	items  []Term
	den    Term
	offset int
}

// Expr builds an expression multiplying the given terms.
func Expr(items ...Term) *Expression {
	e := &Expression{}
	if len(items) > 0 {
		e.items = make([]Term, len(items))
		copy(e.items, items)
	}
	return e
}

// Over returns a copy of the expression with the denominator set.
func (e *Expression) Over(den Term) *Expression {
	out := *e
	out.den = den
	return &out
}

// Items returns the numerator terms in source order.
func (e *Expression) Items() []Term {
	if len(e.items) == 0 {
		return nil
	}
	out := make([]Term, len(e.items))
	copy(out, e.items)
	return out
}

// Denominator returns the denominator term, nil when the expression has
// none.
func (e *Expression) Denominator() Term { return e.den }

// Offset returns the expression's byte position in the source text.
func (e *Expression) Offset() int { return e.offset }

func (e *Expression) String() string { return Polish(e) }

func (*Factor) term()     {}
func (*Expression) term() {}

// ============================================================
// Atoms
// ============================================================

// AtomKind separates the namespaces canonical forms keep apart. The
// declaration order is the sort order of canonical output.
type AtomKind int

const (
	AtomUnit AtomKind = iota
	AtomChemical
	AtomCurrency
	AtomUser
)

func (k AtomKind) String() string {
	switch k {
	case AtomUnit:
		return "unit"
	case AtomChemical:
		return "chem"
	case AtomCurrency:
		return "currency"
	case AtomUser:
		return "user"
	}
	return "invalid"
}

// Atom is the identity a canonical form keys exponents by: a unit symbol,
// a chemical formula, a currency code, or a user payload, each in its own
// namespace. Atoms are the surface embedding applications map onto their
// native unit systems.
type Atom struct {
	Kind   AtomKind
	Symbol string
}

func (a Atom) String() string {
	if a.Kind == AtomUnit {
		return a.Symbol
	}
	return a.Kind.String() + ":" + a.Symbol
}
