package symbolic

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Parse reads an infix algebraic expression and returns its symbolic form.
//
// The grammar covers the fixed objective syntax: decimal literals,
// identifiers (variables such as x_0, or function names followed by a
// parenthesized argument), the operators + - * / ^ (with ** as an alias
// for ^), unary minus, and parentheses.
func Parse(text string) (Expr, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, fmt.Errorf("parse: unexpected %q at offset %d", p.peek().text, p.peek().pos)
	}
	return e.Simplify(), nil
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(text string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(text) {
		ch := rune(text[i])
		switch {
		case unicode.IsSpace(ch):
			i++
		case ch >= '0' && ch <= '9' || ch == '.':
			start := i
			seenDot := false
			for i < len(text) && (text[i] >= '0' && text[i] <= '9' || text[i] == '.') {
				if text[i] == '.' {
					if seenDot {
						return nil, fmt.Errorf("parse: malformed number at offset %d", start)
					}
					seenDot = true
				}
				i++
			}
			toks = append(toks, token{kind: tokNumber, text: text[start:i], pos: start})
		case unicode.IsLetter(ch) || ch == '_':
			start := i
			for i < len(text) && (unicode.IsLetter(rune(text[i])) || unicode.IsDigit(rune(text[i])) || text[i] == '_') {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: text[start:i], pos: start})
		case ch == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case ch == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case ch == '*':
			if i+1 < len(text) && text[i+1] == '*' {
				toks = append(toks, token{kind: tokOp, text: "^", pos: i})
				i += 2
			} else {
				toks = append(toks, token{kind: tokOp, text: "*", pos: i})
				i++
			}
		case strings.ContainsRune("+-/^", ch):
			toks = append(toks, token{kind: tokOp, text: string(ch), pos: i})
			i++
		default:
			return nil, fmt.Errorf("parse: unexpected character %q at offset %d", ch, i)
		}
	}
	return toks, nil
}

type parser struct {
	toks []token
	idx  int
}

func (p *parser) done() bool { return p.idx >= len(p.toks) }

func (p *parser) peek() token {
	if p.done() {
		return token{kind: tokOp, text: "<eof>", pos: -1}
	}
	return p.toks[p.idx]
}

func (p *parser) takeOp(ops ...string) (string, bool) {
	if p.done() || p.toks[p.idx].kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if p.toks[p.idx].text == op {
			p.idx++
			return op, true
		}
	}
	return "", false
}

// parseSum  := parseTerm (("+" | "-") parseTerm)*
func (p *parser) parseSum() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.takeOp("+", "-")
		if !ok {
			return left, nil
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			right = mul{factors: []Expr{num{v: -1}, right}}
		}
		left = add{terms: []Expr{left, right}}
	}
}

// parseTerm := parseUnary (("*" | "/") parseUnary)*
func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.takeOp("*", "/")
		if !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op == "/" {
			right = pow{base: right, exp: num{v: -1}}
		}
		left = mul{factors: []Expr{left, right}}
	}
}

// parseUnary := ("-" | "+") parseUnary | parsePower
func (p *parser) parseUnary() (Expr, error) {
	if op, ok := p.takeOp("-", "+"); ok {
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			return mul{factors: []Expr{num{v: -1}, e}}, nil
		}
		return e, nil
	}
	return p.parsePower()
}

// parsePower := parseAtom ("^" parseUnary)?   (right-associative)
func (p *parser) parsePower() (Expr, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if _, ok := p.takeOp("^"); ok {
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return pow{base: base, exp: exp}, nil
	}
	return base, nil
}

// parseAtom := number | ident | ident "(" sum ")" | "(" sum ")"
func (p *parser) parseAtom() (Expr, error) {
	if p.done() {
		return nil, fmt.Errorf("parse: unexpected end of expression")
	}
	tok := p.toks[p.idx]
	switch tok.kind {
	case tokNumber:
		p.idx++
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, fmt.Errorf("parse: bad number %q at offset %d", tok.text, tok.pos)
		}
		return num{v: v}, nil

	case tokIdent:
		p.idx++
		if !p.done() && p.toks[p.idx].kind == tokLParen {
			if _, known := numericFuncs[tok.text]; !known {
				return nil, fmt.Errorf("parse: unknown function %q at offset %d", tok.text, tok.pos)
			}
			p.idx++ // consume "("
			arg, err := p.parseSum()
			if err != nil {
				return nil, err
			}
			if p.done() || p.toks[p.idx].kind != tokRParen {
				return nil, fmt.Errorf("parse: missing ) for %s( at offset %d", tok.text, tok.pos)
			}
			p.idx++
			return call{fn: tok.text, arg: arg}, nil
		}
		return sym{name: tok.text}, nil

	case tokLParen:
		p.idx++
		e, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.done() || p.toks[p.idx].kind != tokRParen {
			return nil, fmt.Errorf("parse: missing ) at offset %d", tok.pos)
		}
		p.idx++
		return e, nil
	}
	return nil, fmt.Errorf("parse: unexpected %q at offset %d", tok.text, tok.pos)
}
