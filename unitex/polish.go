package unitex

import "strings"

// Polish renders a tree in prefix form for fixtures and debugging:
//
//	(* a b ...)        product of two or more terms
//	(/ num den)        expression with a denominator
//	(^ base exp)       factor with an explicit exponent
//	(pfx P ... unit)   prefixed unit, prefixes outermost first
//	(mark kind body)   mark factor
//
// Bare numbers and bare units render as their lexemes, and a product of
// one term collapses to that term. The output mirrors structure, not
// meaning: "W/(m K)" and "W m^-1 K^-1" render differently.
func Polish(t Term) string {
	var b strings.Builder
	writePolish(&b, t)
	return b.String()
}

func writePolish(b *strings.Builder, t Term) {
	switch n := t.(type) {
	case *Factor:
		writePolishFactor(b, n)
	case *Expression:
		writePolishExpression(b, n)
	}
}

func writePolishExpression(b *strings.Builder, e *Expression) {
	if e.den != nil {
		b.WriteString("(/ ")
		writePolishItems(b, e.items)
		b.WriteByte(' ')
		writePolish(b, e.den)
		b.WriteByte(')')
		return
	}
	writePolishItems(b, e.items)
}

func writePolishItems(b *strings.Builder, items []Term) {
	if len(items) == 1 {
		writePolish(b, items[0])
		return
	}
	b.WriteString("(*")
	for _, item := range items {
		b.WriteByte(' ')
		writePolish(b, item)
	}
	b.WriteByte(')')
}

func writePolishFactor(b *strings.Builder, f *Factor) {
	if f.exp != nil {
		b.WriteString("(^ ")
		writePolishBase(b, f)
		b.WriteByte(' ')
		if f.expLex != "" {
			b.WriteString(f.expLex)
		} else {
			b.WriteString(formatPlain(f.exp))
		}
		b.WriteByte(')')
		return
	}
	writePolishBase(b, f)
}

func writePolishBase(b *strings.Builder, f *Factor) {
	switch f.kind {
	case FactorNumber:
		if f.lexeme != "" {
			b.WriteString(f.lexeme)
		} else {
			b.WriteString(formatPlain(f.num))
		}
	case FactorUnit:
		if len(f.prefixes) == 0 {
			b.WriteString(f.unit.Symbol)
			return
		}
		b.WriteString("(pfx")
		for _, p := range f.prefixes {
			b.WriteByte(' ')
			b.WriteString(p.Symbol)
		}
		b.WriteByte(' ')
		b.WriteString(f.unit.Symbol)
		b.WriteByte(')')
	case FactorMark:
		b.WriteString("(mark ")
		b.WriteString(f.mark.String())
		b.WriteByte(' ')
		b.WriteString(f.payload)
		b.WriteByte(')')
	}
}
