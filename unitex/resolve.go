package unitex

import "strings"

// Symbol resolution maps a letter run onto a prefix chain and a unit.
// The rules, in order:
//
//  1. If the whole run is a listed unit, that unit wins outright. "kg"
//     is kilograms whenever kg is listed, never kilo applied to grams.
//
//  2. Otherwise the units are scanned in table order for one whose
//     symbol ends the run and whose remaining head splits completely
//     into prefixes. The first unit for which the split succeeds wins,
//     so "Mkg" resolves through kg (listed early) rather than g.
//
//  3. With no such unit, the run is unrecognized.
//
// The head split is greedy left to right with no backtracking: at each
// step the first prefix in table order that begins the remaining head is
// taken. A dead end fails the whole split for that unit; the scan then
// moves on to the next candidate unit, which is how "MeV" recovers
// through eV after V leaves an indivisible "Me" behind.

// resolveSymbol resolves a letter run at the given input offset.
func resolveSymbol(table *DefinitionsTable, letters string, offset int) ([]Prefix, Unit, error) {
	if unit, ok := table.LookupUnit(letters); ok {
		return nil, unit, nil
	}

	for _, unit := range table.units {
		if len(unit.Symbol) >= len(letters) || !strings.HasSuffix(letters, unit.Symbol) {
			continue
		}
		head := letters[:len(letters)-len(unit.Symbol)]
		if prefixes, ok := decomposePrefixes(table, head); ok {
			return prefixes, unit, nil
		}
	}

	return nil, Unit{}, &UnrecognizedUnitError{Offset: offset, Symbol: letters}
}

// decomposePrefixes splits head into a run of listed prefixes, greedily
// taking the first table-order match at every step.
func decomposePrefixes(table *DefinitionsTable, head string) ([]Prefix, bool) {
	var prefixes []Prefix
	for head != "" {
		p, ok := table.MatchPrefix(head)
		if !ok {
			return nil, false
		}
		prefixes = append(prefixes, p)
		head = head[len(p.Symbol):]
	}
	return prefixes, true
}
