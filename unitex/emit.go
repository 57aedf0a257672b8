package unitex

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NumberFormat selects how number factors are spelled.
type NumberFormat uint8

const (
	// NumberAsWritten keeps the parsed lexeme when there is one and
	// falls back to plain decimal.
	NumberAsWritten NumberFormat = iota
	// NumberPlain always renders plain decimals ("1000", "0.125").
	NumberPlain
	// NumberScientific always renders normalized scientific ("1e3").
	NumberScientific
)

// SpacingMode selects how factors are separated.
type SpacingMode uint8

const (
	// SpacingCanonical puts a single space between numerator items.
	SpacingCanonical SpacingMode = iota
	// SpacingMinimal drops every space whose absence provably does not
	// change the token stream.
	SpacingMinimal
)

// GenerateOptions configures the generator. The zero value is the
// canonical output: caret exponents, numbers as written, spaced factors.
type GenerateOptions struct {
	// LegacyExponents glues integral exponents straight onto unit
	// symbols ("m2", "s-1"). Exponents that are not integral, or that
	// sit on numbers or marks, keep the caret form.
	LegacyExponents bool

	// NumberFormat applies to number factors. Exponents always keep
	// their written spelling, or plain decimal when built from values.
	NumberFormat NumberFormat

	// Spacing selects canonical or minimal spacing.
	Spacing SpacingMode
}

// Generate renders a tree as canonical text.
func Generate(t Term) string {
	return GenerateWithOptions(t, GenerateOptions{})
}

// GenerateWithOptions renders a tree. Rendering never fails on a
// well-formed tree, and the output tokenizes back, under the same
// options, to an expression with the same canonical form. Spellings are
// not preserved: "1.50" may come back as "1.5".
func GenerateWithOptions(t Term, opts GenerateOptions) string {
	g := &generator{opts: opts}
	switch n := t.(type) {
	case *Factor:
		g.writeFactor(n)
	case *Expression:
		g.writeExpression(n, false)
	}
	return g.sb.String()
}

type generator struct {
	sb   strings.Builder
	opts GenerateOptions
}

// writeExpression renders items, the denominator, and the surrounding
// parentheses when the expression is nested inside another one.
func (g *generator) writeExpression(e *Expression, grouped bool) {
	if grouped {
		g.sb.WriteByte('(')
	}
	prev := ""
	for i, item := range e.items {
		s := g.renderTerm(item)
		if i > 0 && g.needSpace(prev, s) {
			g.sb.WriteByte(' ')
		}
		g.sb.WriteString(s)
		prev = s
	}
	if e.den != nil {
		g.sb.WriteByte('/')
		g.sb.WriteString(g.renderTerm(e.den))
	}
	if grouped {
		g.sb.WriteByte(')')
	}
}

// renderTerm renders a term on its own. A nested expression keeps its
// parentheses; a denominator that is a single factor stays bare.
func (g *generator) renderTerm(t Term) string {
	sub := &generator{opts: g.opts}
	switch n := t.(type) {
	case *Factor:
		sub.writeFactor(n)
	case *Expression:
		sub.writeExpression(n, true)
	}
	return sub.sb.String()
}

func (g *generator) writeFactor(f *Factor) {
	switch f.kind {
	case FactorNumber:
		g.writeNumber(f)
	case FactorUnit:
		for _, p := range f.prefixes {
			g.sb.WriteString(p.Symbol)
		}
		g.sb.WriteString(f.unit.Symbol)
	case FactorMark:
		g.writeMark(f)
	}

	if f.exp == nil {
		return
	}
	if g.opts.LegacyExponents && f.kind == FactorUnit && f.exp.IsInt() {
		g.sb.WriteString(f.exp.Num().String())
		return
	}
	g.sb.WriteByte('^')
	if f.expLex != "" {
		g.sb.WriteString(f.expLex)
	} else {
		g.sb.WriteString(formatPlain(f.exp))
	}
}

func (g *generator) writeNumber(f *Factor) {
	switch g.opts.NumberFormat {
	case NumberPlain:
		g.sb.WriteString(formatPlain(f.num))
	case NumberScientific:
		g.sb.WriteString(formatScientific(f.num))
	default:
		if f.lexeme != "" {
			g.sb.WriteString(f.lexeme)
		} else {
			g.sb.WriteString(formatPlain(f.num))
		}
	}
}

func (g *generator) writeMark(f *Factor) {
	g.sb.WriteByte('{')
	switch f.mark {
	case MarkChemical:
		g.sb.WriteString("chem: ")
		g.sb.WriteString(f.payload)
	case MarkCurrency:
		g.sb.WriteString("currency: ")
		g.sb.WriteString(f.payload)
	default:
		g.sb.WriteString(f.payload)
	}
	g.sb.WriteByte('}')
}

// needSpace decides whether a space must separate two renderings. In
// minimal mode the space is kept only when dropping it could change
// tokenization: letter runs would fuse, digit runs would fuse, a digit
// before 'e' could grow a scientific tail, and in legacy mode a digit
// or sign after a unit symbol would read as its exponent.
func (g *generator) needSpace(prev, next string) bool {
	if g.opts.Spacing == SpacingCanonical {
		return true
	}
	if prev == "" || next == "" {
		return false
	}
	p, _ := utf8.DecodeLastRuneInString(prev)
	n, _ := utf8.DecodeRuneInString(next)
	digit := func(r rune) bool { return r >= '0' && r <= '9' }

	if unicode.IsLetter(p) && unicode.IsLetter(n) {
		return true
	}
	if (digit(p) || p == '.') && (digit(n) || n == 'e' || n == 'E') {
		return true
	}
	if g.opts.LegacyExponents && unicode.IsLetter(p) && (digit(n) || n == '-') {
		return true
	}
	return false
}
