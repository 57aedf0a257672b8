package unitex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTokenize(t *testing.T, table *DefinitionsTable, input string, opts TokenizerOptions) []Token {
	t.Helper()
	tokens, err := NewTokenizerWithOptions(table, input, opts).Tokenize()
	require.NoError(t, err, "tokenize %q", input)
	return tokens
}

func tokenTypes(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func TestTokenizer_BasicSequences(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenType
	}{
		{"", []TokenType{TokenEOF}},
		{"   \t\n", []TokenType{TokenEOF}},
		{"9.81", []TokenType{TokenNumber, TokenEOF}},
		{"-3", []TokenType{TokenNumber, TokenEOF}},
		{"m", []TokenType{TokenUnit, TokenEOF}},
		{"9.81 m", []TokenType{TokenNumber, TokenUnit, TokenEOF}},
		{"9.81m", []TokenType{TokenNumber, TokenUnit, TokenEOF}},
		{"m/s", []TokenType{TokenUnit, TokenSlash, TokenUnit, TokenEOF}},
		{"W/(m K)", []TokenType{TokenUnit, TokenSlash, TokenLParen, TokenUnit, TokenUnit, TokenRParen, TokenEOF}},
		{"{chem: CO2}", []TokenType{TokenMark, TokenEOF}},
		{"2 {x} kg", []TokenType{TokenNumber, TokenMark, TokenUnit, TokenEOF}},
	}

	table := DefaultTable()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := mustTokenize(t, table, tt.input, TokenizerOptions{})
			assert.Equal(t, tt.expected, tokenTypes(tokens))
		})
	}
}

func TestTokenizer_Offsets(t *testing.T) {
	tokens := mustTokenize(t, DefaultTable(), "kg  m/{x}", TokenizerOptions{})
	offsets := make([]int, len(tokens))
	for i, tok := range tokens {
		offsets[i] = tok.Offset
	}
	assert.Equal(t, []int{0, 4, 5, 6, 9}, offsets)
}

// Number scanning is maximal munch: the exponent tail is taken only when
// it is actually there. "1e+5" is the number 1, the letter run "e", and
// then a stray '+'.
func TestTokenizer_NumberMunch(t *testing.T) {
	table, err := NewDefinitionsTable(nil, []Unit{{"e"}, {"m"}, {"em"}}, nil)
	require.NoError(t, err)

	tokens := mustTokenize(t, table, "1e5", TokenizerOptions{})
	require.Equal(t, []TokenType{TokenNumber, TokenEOF}, tokenTypes(tokens))
	assert.Equal(t, "1e5", tokens[0].Text)

	tokens = mustTokenize(t, table, "1e-5", TokenizerOptions{})
	assert.Equal(t, "1e-5", tokens[0].Text)

	_, err = NewTokenizer(table, "1e+5").Tokenize()
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
	assert.Equal(t, 2, syn.Offset)

	tokens = mustTokenize(t, table, "1e", TokenizerOptions{})
	require.Equal(t, []TokenType{TokenNumber, TokenUnit, TokenEOF}, tokenTypes(tokens))
	assert.Equal(t, "1", tokens[0].Text)
	assert.Equal(t, "e", tokens[1].Text)

	tokens = mustTokenize(t, table, "1em", TokenizerOptions{})
	require.Equal(t, []TokenType{TokenNumber, TokenUnit, TokenEOF}, tokenTypes(tokens))
	assert.Equal(t, "em", tokens[1].Text)
}

func TestTokenizer_UnitResolution(t *testing.T) {
	tokens := mustTokenize(t, DefaultTable(), "Mkg", TokenizerOptions{})
	require.Equal(t, []TokenType{TokenUnit, TokenEOF}, tokenTypes(tokens))
	assert.Equal(t, "Mkg", tokens[0].Text)
	assert.Equal(t, []string{"M"}, prefixSymbols(tokens[0].Prefixes))
	assert.Equal(t, "kg", tokens[0].Unit.Symbol)

	_, err := NewTokenizer(DefaultTable(), "3 Wh").Tokenize()
	var unrec *UnrecognizedUnitError
	require.ErrorAs(t, err, &unrec)
	assert.Equal(t, "Wh", unrec.Symbol)
	assert.Equal(t, 2, unrec.Offset)
}

func TestTokenizer_Marks(t *testing.T) {
	tests := []struct {
		input   string
		mark    MarkKind
		payload string
	}{
		{"{chem: CO2}", MarkChemical, "CO2"},
		{"{chem:CO2}", MarkChemical, "CO2"},
		{"{ chem: H2O }", MarkChemical, "H2O"},
		{"{currency: USD}", MarkCurrency, "USD"},
		{"{currency:EUR}", MarkCurrency, "EUR"},

		// A currency tag without an ISO-shaped code is user territory.
		{"{currency: usd}", MarkUser, "currency: usd"},
		{"{currency: USDX}", MarkUser, "currency: USDX"},

		// An empty chem tag cannot be a formula.
		{"{chem: }", MarkUser, "chem: "},

		// Anything else is a user mark with the content kept verbatim.
		{"{price per ton}", MarkUser, "price per ton"},
		{"{ spaced }", MarkUser, " spaced "},
		{"{a{b}c}", MarkUser, "a{b}c"},
		{"{}", MarkUser, ""},
	}

	table := DefaultTable()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := mustTokenize(t, table, tt.input, TokenizerOptions{})
			require.Equal(t, []TokenType{TokenMark, TokenEOF}, tokenTypes(tokens))
			assert.Equal(t, tt.mark, tokens[0].Mark)
			assert.Equal(t, tt.payload, tokens[0].Payload)
			assert.Equal(t, tt.input, tokens[0].Text)
		})
	}
}

func TestTokenizer_MarkErrors(t *testing.T) {
	_, err := NewTokenizer(DefaultTable(), "kg {currency: XXX}").Tokenize()
	var defs *DefinitionsError
	require.ErrorAs(t, err, &defs)
	assert.Equal(t, 3, defs.Offset)

	_, err = NewTokenizer(DefaultTable(), "{chem: CO2").Tokenize()
	var unterm *UnterminatedMarkError
	require.ErrorAs(t, err, &unterm)
	assert.Equal(t, 0, unterm.Offset)

	_, err = NewTokenizer(DefaultTable(), "{a{b}").Tokenize()
	require.ErrorAs(t, err, &unterm)
}

func TestTokenizer_CaretExponents(t *testing.T) {
	tests := []struct {
		input string
		exp   string
	}{
		{"m^2", "2"},
		{"m^-1", "-1"},
		{"m^1.5", "1.5"},
		{"m^-0.5", "-0.5"},
		{"m^2e1", "2e1"},
		{"2^3", "3"},
		{"{chem: CO2}^2", "2"},
	}

	table := DefaultTable()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := mustTokenize(t, table, tt.input, TokenizerOptions{})
			require.Len(t, tokens, 2)
			assert.Equal(t, tt.exp, tokens[0].Exp)
		})
	}
}

func TestTokenizer_ExponentErrors(t *testing.T) {
	table := DefaultTable()

	_, err := NewTokenizer(table, "m^").Tokenize()
	var malformed *MalformedNumberError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 2, malformed.Offset)

	_, err = NewTokenizer(table, "m^x").Tokenize()
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "x", malformed.Lexeme)

	_, err = NewTokenizer(table, "m^-").Tokenize()
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "-", malformed.Lexeme)

	// One exponent per factor.
	_, err = NewTokenizer(table, "m^2^3").Tokenize()
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
	assert.Equal(t, 3, syn.Offset)
}

func TestTokenizer_LegacyExponents(t *testing.T) {
	table := DefaultTable()
	legacy := TokenizerOptions{LegacyExponents: true}

	tokens := mustTokenize(t, table, "m2 s-1", legacy)
	require.Equal(t, []TokenType{TokenUnit, TokenUnit, TokenEOF}, tokenTypes(tokens))
	assert.Equal(t, "2", tokens[0].Exp)
	assert.Equal(t, "-1", tokens[1].Exp)

	// The caret form keeps working alongside.
	tokens = mustTokenize(t, table, "m^2 s-1", legacy)
	assert.Equal(t, "2", tokens[0].Exp)
	assert.Equal(t, "-1", tokens[1].Exp)

	// Marks and numbers never take a glued exponent.
	tokens = mustTokenize(t, table, "{x}2", legacy)
	require.Equal(t, []TokenType{TokenMark, TokenNumber, TokenEOF}, tokenTypes(tokens))
	assert.Empty(t, tokens[0].Exp)

	// Off by default: a glued digit run is a separate number factor.
	tokens = mustTokenize(t, table, "m2", TokenizerOptions{})
	require.Equal(t, []TokenType{TokenUnit, TokenNumber, TokenEOF}, tokenTypes(tokens))
	assert.Empty(t, tokens[0].Exp)

	// A detached sign never becomes an exponent either way.
	tokens = mustTokenize(t, table, "m -1", legacy)
	require.Equal(t, []TokenType{TokenUnit, TokenNumber, TokenEOF}, tokenTypes(tokens))
	assert.Empty(t, tokens[0].Exp)
}

func TestTokenizer_StrayCharacters(t *testing.T) {
	table := DefaultTable()

	for _, input := range []string{"+", ".", "}", "m + s", "^2"} {
		t.Run(input, func(t *testing.T) {
			_, err := NewTokenizer(table, input).Tokenize()
			var syn *SyntaxError
			require.ErrorAs(t, err, &syn)
		})
	}

	// A lone minus starts a number and fails as one.
	_, err := NewTokenizer(table, "-").Tokenize()
	var malformed *MalformedNumberError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 0, malformed.Offset)

	_, err = NewTokenizer(table, "kg -x").Tokenize()
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 3, malformed.Offset)
	assert.Equal(t, "-", malformed.Lexeme)
}
