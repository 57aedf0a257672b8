package unitex

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType represents the type of a tokenizer token.
type TokenType uint8

const (
	TokenEOF TokenType = iota

	// Factors
	TokenNumber // 1.5, -3, 2e8
	TokenUnit   // m, kg, µs (prefixes already resolved)
	TokenMark   // {chem: CO2}, {currency: USD}, {anything}

	// Structural
	TokenSlash  // /
	TokenLParen // (
	TokenRParen // )
)

// String returns the token type name.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenNumber:
		return "NUMBER"
	case TokenUnit:
		return "UNIT"
	case TokenMark:
		return "MARK"
	case TokenSlash:
		return "/"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	default:
		return "UNKNOWN"
	}
}

// Token represents one tokenizer token. Factor tokens may carry an
// exponent lexeme scanned together with them; Exp is "" when absent.
type Token struct {
	Type   TokenType
	Text   string // raw lexeme, braces included for marks
	Offset int    // byte position in the input

	// TokenUnit
	Prefixes []Prefix
	Unit     Unit

	// TokenMark
	Mark    MarkKind
	Payload string

	// Exponent, any factor token
	Exp       string
	ExpOffset int
}

// String returns a debug representation of the token.
func (t Token) String() string {
	s := t.Type.String()
	switch t.Type {
	case TokenNumber, TokenUnit:
		s = fmt.Sprintf("%s(%q)", t.Type, t.Text)
	case TokenMark:
		s = fmt.Sprintf("%s(%s:%q)", t.Type, t.Mark, t.Payload)
	}
	if t.Exp != "" {
		s += "^" + t.Exp
	}
	return s
}

// TokenizerOptions adjusts the accepted surface syntax.
type TokenizerOptions struct {
	// LegacyExponents additionally reads a sign and digit run glued
	// directly onto a unit symbol as its exponent ("m2", "s-1"). The
	// caret form stays available either way.
	LegacyExponents bool
}

// Tokenizer splits an input string into tokens against a definitions
// table. It is a pure function of the input, the table, and the options;
// whitespace between tokens is insignificant, whitespace inside a factor
// never occurs.
type Tokenizer struct {
	table *DefinitionsTable
	opts  TokenizerOptions
	input string
	pos   int
}

// NewTokenizer creates a tokenizer with default options.
func NewTokenizer(table *DefinitionsTable, input string) *Tokenizer {
	return NewTokenizerWithOptions(table, input, TokenizerOptions{})
}

// NewTokenizerWithOptions creates a tokenizer with the given options.
func NewTokenizerWithOptions(table *DefinitionsTable, input string, opts TokenizerOptions) *Tokenizer {
	return &Tokenizer{table: table, opts: opts, input: input}
}

// Tokenize returns all tokens up to and including EOF. On error it
// returns the tokens scanned so far alongside the error.
func (z *Tokenizer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := z.Next()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

// Next scans and returns the next token.
func (z *Tokenizer) Next() (Token, error) {
	z.skipWhitespace()

	if z.pos >= len(z.input) {
		return Token{Type: TokenEOF, Offset: z.pos}, nil
	}

	start := z.pos
	ch := z.peek()

	switch ch {
	case '/':
		z.pos++
		return Token{Type: TokenSlash, Text: "/", Offset: start}, nil
	case '(':
		z.pos++
		return Token{Type: TokenLParen, Text: "(", Offset: start}, nil
	case ')':
		z.pos++
		return Token{Type: TokenRParen, Text: ")", Offset: start}, nil
	case '{':
		return z.scanMark()
	}

	// A minus sign always starts a number; a bad one is a malformed
	// number, not a stray character.
	if ch == '-' || isDigit(ch) {
		return z.scanNumber()
	}

	r, _ := utf8.DecodeRuneInString(z.input[z.pos:])
	if unicode.IsLetter(r) {
		return z.scanSymbol()
	}

	return Token{}, &SyntaxError{Offset: start, Message: fmt.Sprintf("unexpected character %q", r)}
}

// ============================================================
// Scanners
// ============================================================

// scanNumber scans a number factor and any caret exponent after it.
func (z *Tokenizer) scanNumber() (Token, error) {
	start := z.pos
	lexeme, err := z.scanNumberLexeme()
	if err != nil {
		return Token{}, err
	}
	tok := Token{Type: TokenNumber, Text: lexeme, Offset: start}
	if err := z.attachExponent(&tok, false); err != nil {
		return Token{}, err
	}
	return tok, nil
}

// scanNumberLexeme consumes the longest run satisfying the number
// grammar: -?digits(.digits*)?([eE]-?digits)?. The 'e' is taken only
// when digits actually follow it, so "1e+5" yields just "1".
func (z *Tokenizer) scanNumberLexeme() (string, error) {
	start := z.pos

	if z.peek() == '-' {
		z.pos++
	}
	digitStart := z.pos
	for isDigit(z.peek()) {
		z.pos++
	}
	if z.pos == digitStart {
		return "", z.malformedAt(start)
	}

	if z.peek() == '.' {
		z.pos++
		for isDigit(z.peek()) {
			z.pos++
		}
	}

	if c := z.peek(); c == 'e' || c == 'E' {
		j := z.pos + 1
		if j < len(z.input) && z.input[j] == '-' {
			j++
		}
		if j < len(z.input) && isDigit(z.input[j]) {
			z.pos = j + 1
			for isDigit(z.peek()) {
				z.pos++
			}
		}
	}

	return z.input[start:z.pos], nil
}

// scanSymbol scans a letter run, resolves it against the table, and
// attaches any exponent.
func (z *Tokenizer) scanSymbol() (Token, error) {
	start := z.pos
	for z.pos < len(z.input) {
		r, size := utf8.DecodeRuneInString(z.input[z.pos:])
		if !unicode.IsLetter(r) {
			break
		}
		z.pos += size
	}
	letters := z.input[start:z.pos]

	prefixes, unit, err := resolveSymbol(z.table, letters, start)
	if err != nil {
		return Token{}, err
	}

	tok := Token{
		Type:     TokenUnit,
		Text:     letters,
		Offset:   start,
		Prefixes: prefixes,
		Unit:     unit,
	}
	if err := z.attachExponent(&tok, true); err != nil {
		return Token{}, err
	}
	return tok, nil
}

// scanMark scans a brace mark, classifies it, and attaches any caret
// exponent. Braces nest; the mark runs to the matching close brace.
func (z *Tokenizer) scanMark() (Token, error) {
	start := z.pos
	z.pos++ // consume {

	depth := 1
	contentStart := z.pos
	for z.pos < len(z.input) {
		switch z.input[z.pos] {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			break
		}
		z.pos++
	}
	if depth != 0 {
		return Token{}, &UnterminatedMarkError{Offset: start}
	}
	content := z.input[contentStart:z.pos]
	z.pos++ // consume }

	tok := Token{
		Type:   TokenMark,
		Text:   z.input[start:z.pos],
		Offset: start,
	}

	kind, payload, err := classifyMark(z.table, content, start)
	if err != nil {
		return Token{}, err
	}
	tok.Mark, tok.Payload = kind, payload

	if err := z.attachExponent(&tok, false); err != nil {
		return Token{}, err
	}
	return tok, nil
}

// classifyMark decides what a brace payload denotes. Chemical wins over
// currency wins over user; a currency tag with an ISO-shaped code that is
// not listed is an error, never a user mark.
func classifyMark(table *DefinitionsTable, content string, offset int) (MarkKind, string, error) {
	trimmed := strings.TrimSpace(content)

	if rest, ok := strings.CutPrefix(trimmed, "chem:"); ok {
		formula := strings.TrimSpace(rest)
		if formula != "" {
			return MarkChemical, formula, nil
		}
		return MarkUser, content, nil
	}

	if rest, ok := strings.CutPrefix(trimmed, "currency:"); ok {
		code := strings.TrimSpace(rest)
		if isCurrencyShaped(code) {
			if !table.IsCurrencyCode(code) {
				return 0, "", &DefinitionsError{Offset: offset, Message: fmt.Sprintf("currency code %q is not listed", code)}
			}
			return MarkCurrency, code, nil
		}
		return MarkUser, content, nil
	}

	return MarkUser, content, nil
}

// attachExponent reads an exponent glued to the factor just scanned:
// a caret followed by a number, or, for unit symbols in legacy mode, a
// bare sign and digit run.
func (z *Tokenizer) attachExponent(tok *Token, allowLegacy bool) error {
	if z.peek() == '^' {
		z.pos++
		expStart := z.pos
		lexeme, err := z.scanNumberLexeme()
		if err != nil {
			return err
		}
		tok.Exp, tok.ExpOffset = lexeme, expStart
		return nil
	}

	if allowLegacy && z.opts.LegacyExponents {
		next := z.peek()
		legacy := isDigit(next) ||
			(next == '-' && z.pos+1 < len(z.input) && isDigit(z.input[z.pos+1]))
		if legacy {
			expStart := z.pos
			if next == '-' {
				z.pos++
			}
			for isDigit(z.peek()) {
				z.pos++
			}
			tok.Exp = z.input[expStart:z.pos]
			tok.ExpOffset = expStart
		}
	}
	return nil
}

// ============================================================
// Helper methods
// ============================================================

func (z *Tokenizer) peek() byte {
	if z.pos >= len(z.input) {
		return 0
	}
	return z.input[z.pos]
}

func (z *Tokenizer) skipWhitespace() {
	for z.pos < len(z.input) {
		switch z.input[z.pos] {
		case ' ', '\t', '\n', '\r':
			z.pos++
		default:
			return
		}
	}
}

// malformedAt builds the error for a failed number scan starting at
// start. When nothing was consumed the offending rune itself is quoted.
func (z *Tokenizer) malformedAt(start int) error {
	lexeme := z.input[start:z.pos]
	if lexeme == "" && z.pos < len(z.input) {
		_, size := utf8.DecodeRuneInString(z.input[z.pos:])
		lexeme = z.input[z.pos : z.pos+size]
	}
	return &MalformedNumberError{Offset: start, Lexeme: lexeme}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// ============================================================
// Token streams
// ============================================================

// TokenStream provides lookahead over a token slice.
type TokenStream struct {
	tokens []Token
	pos    int
}

// NewTokenStream creates a token stream from tokens.
func NewTokenStream(tokens []Token) *TokenStream {
	return &TokenStream{tokens: tokens}
}

// Peek returns the current token without advancing.
func (ts *TokenStream) Peek() Token {
	if ts.pos >= len(ts.tokens) {
		return Token{Type: TokenEOF}
	}
	return ts.tokens[ts.pos]
}

// Advance moves to the next token and returns the current one.
func (ts *TokenStream) Advance() Token {
	tok := ts.Peek()
	if ts.pos < len(ts.tokens) {
		ts.pos++
	}
	return tok
}

// Match advances and reports true if the current token has the type.
func (ts *TokenStream) Match(typ TokenType) bool {
	if ts.Peek().Type == typ {
		ts.Advance()
		return true
	}
	return false
}

// AtEnd reports whether the stream is exhausted.
func (ts *TokenStream) AtEnd() bool {
	return ts.Peek().Type == TokenEOF
}
