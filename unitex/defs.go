package unitex

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode"
)

// Prefix is a decimal scaling prefix: Symbol "k" with Scale 3 means 10^3.
type Prefix struct {
	Symbol string
	Scale  int
}

// Unit is an opaque measurement symbol. The table attaches no semantics
// beyond its identity and its position in the priority order.
type Unit struct {
	Symbol string
}

// DefinitionsTable holds the prefixes, units, and currency codes an input
// may use. List order doubles as ambiguity-resolution priority: when two
// readings of a letter run are possible, the earlier entry wins.
//
// A table is immutable after construction and safe for concurrent use.
type DefinitionsTable struct {
	prefixes   []Prefix
	units      []Unit
	currencies []string

	prefixIndex map[string]int
	unitIndex   map[string]int
	currencySet map[string]struct{}
}

// NewDefinitionsTable builds a table from ordered catalogs. A duplicate
// symbol within one catalog, an empty or non-letter prefix or unit
// symbol, or a currency code that is not three ASCII capitals is a
// *DefinitionsError, and no table is returned. The same symbol may appear
// in different catalogs ("m" can be both milli and metre).
func NewDefinitionsTable(prefixes []Prefix, units []Unit, currencies []string) (*DefinitionsTable, error) {
	t := &DefinitionsTable{
		prefixes:    make([]Prefix, len(prefixes)),
		units:       make([]Unit, len(units)),
		currencies:  make([]string, len(currencies)),
		prefixIndex: make(map[string]int, len(prefixes)),
		unitIndex:   make(map[string]int, len(units)),
		currencySet: make(map[string]struct{}, len(currencies)),
	}
	copy(t.prefixes, prefixes)
	copy(t.units, units)
	copy(t.currencies, currencies)

	for i, p := range t.prefixes {
		if !isLetterRun(p.Symbol) {
			return nil, &DefinitionsError{Offset: -1, Message: fmt.Sprintf("prefix symbol %q is not a letter sequence", p.Symbol)}
		}
		if _, dup := t.prefixIndex[p.Symbol]; dup {
			return nil, &DefinitionsError{Offset: -1, Message: fmt.Sprintf("duplicate prefix symbol %q", p.Symbol)}
		}
		t.prefixIndex[p.Symbol] = i
	}
	for i, u := range t.units {
		if !isLetterRun(u.Symbol) {
			return nil, &DefinitionsError{Offset: -1, Message: fmt.Sprintf("unit symbol %q is not a letter sequence", u.Symbol)}
		}
		if _, dup := t.unitIndex[u.Symbol]; dup {
			return nil, &DefinitionsError{Offset: -1, Message: fmt.Sprintf("duplicate unit symbol %q", u.Symbol)}
		}
		t.unitIndex[u.Symbol] = i
	}
	for _, c := range t.currencies {
		if !isCurrencyShaped(c) {
			return nil, &DefinitionsError{Offset: -1, Message: fmt.Sprintf("currency code %q is not three ASCII capitals", c)}
		}
		if _, dup := t.currencySet[c]; dup {
			return nil, &DefinitionsError{Offset: -1, Message: fmt.Sprintf("duplicate currency code %q", c)}
		}
		t.currencySet[c] = struct{}{}
	}
	return t, nil
}

// LookupUnit returns the unit with the exact symbol, if listed.
func (t *DefinitionsTable) LookupUnit(symbol string) (Unit, bool) {
	i, ok := t.unitIndex[symbol]
	if !ok {
		return Unit{}, false
	}
	return t.units[i], true
}

// LookupPrefix returns the prefix with the exact symbol, if listed.
func (t *DefinitionsTable) LookupPrefix(symbol string) (Prefix, bool) {
	i, ok := t.prefixIndex[symbol]
	if !ok {
		return Prefix{}, false
	}
	return t.prefixes[i], true
}

// IsCurrencyCode reports whether the code is listed.
func (t *DefinitionsTable) IsCurrencyCode(code string) bool {
	_, ok := t.currencySet[code]
	return ok
}

// MatchPrefix returns the first prefix in table order whose symbol begins
// the string s. Table order, not length, breaks ties: a table listing "d"
// before "da" resolves "dam" through "d".
func (t *DefinitionsTable) MatchPrefix(s string) (Prefix, bool) {
	for _, p := range t.prefixes {
		if strings.HasPrefix(s, p.Symbol) {
			return p, true
		}
	}
	return Prefix{}, false
}

// Prefixes returns the prefix catalog in priority order.
func (t *DefinitionsTable) Prefixes() []Prefix {
	out := make([]Prefix, len(t.prefixes))
	copy(out, t.prefixes)
	return out
}

// Units returns the unit catalog in priority order.
func (t *DefinitionsTable) Units() []Unit {
	out := make([]Unit, len(t.units))
	copy(out, t.units)
	return out
}

// Currencies returns the listed currency codes.
func (t *DefinitionsTable) Currencies() []string {
	out := make([]string, len(t.currencies))
	copy(out, t.currencies)
	return out
}

// ============================================================
// JSON loading
// ============================================================

// The wire document mirrors the catalogs. Array order is priority order
// and is preserved verbatim. Unknown fields belong to the surrounding
// schema and are ignored here.
type definitionsDoc struct {
	Prefixes   []prefixDef `json:"prefixes"`
	Units      []unitDef   `json:"units"`
	Currencies []string    `json:"currencies"`
}

type prefixDef struct {
	Symbol string `json:"symbol"`
	Scale  int    `json:"scale"`
}

type unitDef struct {
	Symbol string `json:"symbol"`
}

// ParseDefinitions builds a table from a JSON definitions document.
func ParseDefinitions(data []byte) (*DefinitionsTable, error) {
	var doc definitionsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse definitions: %w", err)
	}
	prefixes := make([]Prefix, len(doc.Prefixes))
	for i, p := range doc.Prefixes {
		prefixes[i] = Prefix{Symbol: p.Symbol, Scale: p.Scale}
	}
	units := make([]Unit, len(doc.Units))
	for i, u := range doc.Units {
		units[i] = Unit{Symbol: u.Symbol}
	}
	return NewDefinitionsTable(prefixes, units, doc.Currencies)
}

// LoadDefinitions builds a table from a JSON definitions stream.
func LoadDefinitions(r io.Reader) (*DefinitionsTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}
	return ParseDefinitions(data)
}

// ============================================================
// Default catalog
// ============================================================

var (
	defaultOnce  sync.Once
	defaultTable *DefinitionsTable
)

// DefaultTable returns the compiled-in catalog: the SI prefixes, the SI
// base and derived units plus the accepted non-SI units, and a set of
// common ISO 4217 currency codes. The same immutable table is returned
// on every call.
//
// Ordering notes baked into the catalog: "kg" is listed before "g" so
// that kilograms resolve as one unit, "da" before "d" so that "dam" reads
// as decametres, and coherent derived units before the accepted non-SI
// ones so that "mrad" reads as milliradians rather than through "d".
func DefaultTable() *DefinitionsTable {
	defaultOnce.Do(func() {
		t, err := NewDefinitionsTable(defaultPrefixes, defaultUnits, defaultCurrencies)
		if err != nil {
			panic("unitex: default table: " + err.Error())
		}
		defaultTable = t
	})
	return defaultTable
}

var defaultPrefixes = []Prefix{
	{"Q", 30}, {"R", 27}, {"Y", 24}, {"Z", 21}, {"E", 18}, {"P", 15},
	{"T", 12}, {"G", 9}, {"M", 6}, {"k", 3}, {"h", 2}, {"da", 1},
	{"d", -1}, {"c", -2}, {"m", -3}, {"µ", -6}, {"n", -9}, {"p", -12},
	{"f", -15}, {"a", -18}, {"z", -21}, {"y", -24}, {"r", -27}, {"q", -30},
}

var defaultUnits = []Unit{
	// Base units. kg precedes g.
	{"kg"}, {"g"}, {"m"}, {"s"}, {"A"}, {"K"}, {"mol"}, {"cd"},
	// Coherent derived units. "ohm" stands in for the omega sign, which
	// has no Latin-1 spelling.
	{"Hz"}, {"N"}, {"Pa"}, {"J"}, {"W"}, {"C"}, {"V"}, {"F"}, {"S"},
	{"Wb"}, {"T"}, {"H"}, {"lm"}, {"lx"}, {"Bq"}, {"Gy"}, {"Sv"},
	{"kat"}, {"rad"}, {"sr"}, {"ohm"},
	// Accepted non-SI units. au precedes u so astronomical units do not
	// split into atto-u.
	{"L"}, {"l"}, {"t"}, {"min"}, {"h"}, {"d"}, {"eV"}, {"Da"},
	{"au"}, {"u"}, {"ha"}, {"bar"}, {"Np"}, {"B"},
}

var defaultCurrencies = []string{
	"USD", "EUR", "GBP", "JPY", "CHF", "CAD", "AUD", "NZD", "CNY",
	"HKD", "SGD", "SEK", "NOK", "DKK", "PLN", "CZK", "HUF", "ISK",
	"KRW", "INR", "BRL", "MXN", "ZAR", "RUB", "TRY",
}

// ============================================================
// Symbol shape checks
// ============================================================

// isLetterRun reports whether s is one or more Unicode letters.
func isLetterRun(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// isCurrencyShaped reports whether s looks like an ISO 4217 code: exactly
// three ASCII capital letters.
func isCurrencyShaped(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
