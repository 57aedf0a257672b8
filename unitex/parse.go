package unitex

import "fmt"

// The grammar, one token of lookahead:
//
//	Expression  := (Factor | '(' Expression ')')+ ('/' Denominator)?
//	Denominator := Factor | '(' Expression ')'
//
// A denominator ends its expression: the only tokens allowed after it
// are ')' and end of input. Parentheses open a fresh expression, so a
// group inside a numerator may carry its own division.

// ParseOptions configures the parser behavior.
type ParseOptions struct {
	// LegacyExponents is passed through to the tokenizer.
	LegacyExponents bool
}

// Parse parses input into an expression tree with default options.
func Parse(table *DefinitionsTable, input string) (*Expression, error) {
	return ParseWithOptions(table, input, ParseOptions{})
}

// ParseWithOptions parses input into an expression tree. The tree
// reflects the written structure; nothing is merged or evaluated. On
// error no tree is returned.
func ParseWithOptions(table *DefinitionsTable, input string, opts ParseOptions) (*Expression, error) {
	z := NewTokenizerWithOptions(table, input, TokenizerOptions{
		LegacyExponents: opts.LegacyExponents,
	})
	tokens, err := z.Tokenize()
	if err != nil {
		return nil, err
	}

	p := &parser{stream: NewTokenStream(tokens)}
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if tok := p.stream.Peek(); tok.Type != TokenEOF {
		if tok.Type == TokenRParen {
			return nil, &SyntaxError{Offset: tok.Offset, Message: "unmatched ')'"}
		}
		return nil, &SyntaxError{Offset: tok.Offset, Message: fmt.Sprintf("unexpected %s", tok.Type)}
	}
	return e, nil
}

type parser struct {
	stream *TokenStream
}

// parseExpression parses a factor sequence and an optional denominator.
func (p *parser) parseExpression() (*Expression, error) {
	e := &Expression{offset: p.stream.Peek().Offset}

items:
	for {
		tok := p.stream.Peek()
		switch tok.Type {
		case TokenNumber, TokenUnit, TokenMark:
			p.stream.Advance()
			f, err := p.factorFromToken(tok)
			if err != nil {
				return nil, err
			}
			e.items = append(e.items, f)
		case TokenLParen:
			p.stream.Advance()
			inner, err := p.parseGroup()
			if err != nil {
				return nil, err
			}
			e.items = append(e.items, inner)
		default:
			break items
		}
	}
	if len(e.items) == 0 {
		return nil, &SyntaxError{Offset: p.stream.Peek().Offset, Message: "expected a factor"}
	}

	if p.stream.Match(TokenSlash) {
		den, err := p.parseDenominator()
		if err != nil {
			return nil, err
		}
		e.den = den

		switch next := p.stream.Peek(); next.Type {
		case TokenRParen, TokenEOF:
		case TokenSlash:
			return nil, &SyntaxError{Offset: next.Offset, Message: "second division after a denominator"}
		default:
			return nil, &SyntaxError{Offset: next.Offset, Message: "nothing may follow a denominator"}
		}
	}
	return e, nil
}

// parseGroup parses the remainder of a parenthesized expression, the '('
// already consumed.
func (p *parser) parseGroup() (*Expression, error) {
	inner, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.stream.Match(TokenRParen) {
		return nil, &SyntaxError{Offset: p.stream.Peek().Offset, Message: "expected ')'"}
	}
	return inner, nil
}

// parseDenominator parses the single term after '/'.
func (p *parser) parseDenominator() (Term, error) {
	tok := p.stream.Peek()
	switch tok.Type {
	case TokenNumber, TokenUnit, TokenMark:
		p.stream.Advance()
		return p.factorFromToken(tok)
	case TokenLParen:
		p.stream.Advance()
		return p.parseGroup()
	default:
		return nil, &SyntaxError{Offset: tok.Offset, Message: "expected a denominator"}
	}
}

// factorFromToken converts a factor token, turning its lexemes into
// exact values.
func (p *parser) factorFromToken(tok Token) (*Factor, error) {
	f := &Factor{offset: tok.Offset}
	switch tok.Type {
	case TokenNumber:
		value, err := parseDecimal(tok.Text, tok.Offset)
		if err != nil {
			return nil, err
		}
		f.kind = FactorNumber
		f.num = value
		f.lexeme = tok.Text
	case TokenUnit:
		f.kind = FactorUnit
		f.prefixes = tok.Prefixes
		f.unit = tok.Unit
	case TokenMark:
		f.kind = FactorMark
		f.mark = tok.Mark
		f.payload = tok.Payload
	}
	if tok.Exp != "" {
		exp, err := parseDecimal(tok.Exp, tok.ExpOffset)
		if err != nil {
			return nil, err
		}
		f.exp = exp
		f.expLex = tok.Exp
	}
	return f, nil
}
