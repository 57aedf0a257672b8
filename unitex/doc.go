// Package unitex encodes and decodes unit-of-measure expressions such as
// "9.81 m/s^2", "MeV", "{chem: CO2}/kg", or a megawatt-hour price
// written as "50 {currency: USD}/(MW h)".
//
// # Syntax
//
// An expression is a product of factors with at most one division:
//
//	Factor:       9.81   kPa   m^2   s-1(*)   {chem: CO2}   {anything}
//	Product:      9.81 m
//	Quotient:     m/s^2   W/(m K)
//
// (*) with legacy exponents enabled.
//
// Factors are numbers, prefixed unit symbols, or brace marks, each with
// an optional rational exponent. Nothing may follow a denominator, so
// "W/m/K" and "W/m K" are errors while "W/(m K)" is not. Whitespace
// between factors is optional wherever the split is unambiguous.
//
// # Symbol resolution
//
// Letter runs are resolved against a DefinitionsTable whose list order
// is the priority order. An exact unit match always wins ("kg" is
// kilograms, never kilo-grams); otherwise the run is split into a prefix
// chain and a unit, preferring earlier table entries ("Mkg" is
// megakilograms because kg is listed before g). DefaultTable ships the
// SI catalog; LoadDefinitions reads a JSON catalog with the same
// priority semantics.
//
// # Canonical forms
//
// Canonicalize reduces a tree to a coefficient and one exponent per
// atom, with exact rational arithmetic for integer exponents. Two inputs
// mean the same thing exactly when their canonical forms are Equal:
//
//	W/(m K)  ≡  W m^-1 K^-1
//	1/s      ≡  s^-1
//
// Generate renders trees back to text, configurable between canonical
// and minimal spacing, caret and legacy exponents, and number styles.
//
// # Concurrency
//
// Everything operates on immutable inputs. A DefinitionsTable never
// changes after construction and may back any number of concurrent
// tokenizers and parsers.
package unitex
