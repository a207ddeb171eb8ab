package parser

import (
	"github.com/tremor-rt/tremor/ast"
	"github.com/tremor-rt/tremor/lexer"
)

// parseMatch parses `match subject of case P => E … default => E end`.
// First-match-wins, default is mandatory (spec.md §4.C).
func (p *Parser) parseMatch() (ast.Expr, error) {
	start := p.advance().Span // match
	subject, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KwOf, "of"); err != nil {
		return nil, err
	}
	m := &ast.Match{At: at(start), Subject: subject}
	for p.at(lexer.KwCase) {
		p.advance()
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		var guard ast.Expr
		if p.at(lexer.KwWhen) {
			p.advance()
			guard, err = p.parseOr()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(lexer.Arrow, "=>"); err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		m.Cases = append(m.Cases, ast.MatchCase{Pattern: pat, Guard: guard, Body: body})
	}
	if _, err := p.expect(lexer.KwDefault, "default"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Arrow, "=>"); err != nil {
		return nil, err
	}
	def, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	m.Default = def
	if _, err := p.expect(lexer.KwEnd, "end"); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *Parser) parsePattern() (ast.Pattern, error) {
	start := p.cur().Span
	switch {
	case p.at(lexer.Percent):
		p.advance()
		if p.at(lexer.Tilde) {
			p.advance()
			return p.parseArrayPattern(true)
		}
		if p.at(lexer.LBracket) {
			return p.parseArrayPattern(false)
		}
		return p.parseRecordPattern()
	case p.at(lexer.LBrace):
		return p.parseRecordPattern()
	case p.at(lexer.LBracket):
		return p.parseArrayPattern(false)
	case p.at(lexer.Tilde):
		p.advance()
		return p.parseArrayPattern(true)
	case p.at(lexer.Ident):
		tok := p.advance()
		if tok.Text == "_" {
			return &ast.WildcardPattern{At: at(start)}, nil
		}
		return &ast.BindPattern{At: at(start), Name: tok.Text}, nil
	default:
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		return &ast.LiteralPattern{At: at(start), Value: e}, nil
	}
}

// parseRecordPattern parses `%{k == v, k > n, present k, absent k}`.
// The leading `%` is optional in this grammar; a bare `{...}` pattern
// is accepted the same way, distinguished from a record literal by
// appearing only in pattern position.
func (p *Parser) parseRecordPattern() (ast.Pattern, error) {
	start := p.advance().Span // {
	rp := &ast.RecordPattern{At: at(start)}
	for !p.at(lexer.RBrace) {
		if p.at(lexer.KwPresent) {
			p.advance()
			key, err := p.expect(lexer.Ident, "field name")
			if err != nil {
				return nil, err
			}
			rp.Fields = append(rp.Fields, ast.RecordPatternField{Key: key.Text, Op: "present"})
		} else if p.at(lexer.KwAbsent) {
			p.advance()
			key, err := p.expect(lexer.Ident, "field name")
			if err != nil {
				return nil, err
			}
			rp.Fields = append(rp.Fields, ast.RecordPatternField{Key: key.Text, Op: "absent"})
		} else {
			key, err := p.expect(lexer.Ident, "field name")
			if err != nil {
				return nil, err
			}
			if opStr, ok := cmpOps[p.cur().Kind]; ok {
				p.advance()
				val, err := p.parseOr()
				if err != nil {
					return nil, err
				}
				rp.Fields = append(rp.Fields, ast.RecordPatternField{Key: key.Text, Op: opStr, Value: val})
			} else {
				if _, err := p.expect(lexer.Colon, ":"); err != nil {
					return nil, err
				}
				nested, err := p.parsePattern()
				if err != nil {
					return nil, err
				}
				rp.Fields = append(rp.Fields, ast.RecordPatternField{Key: key.Text, Nested: nested})
			}
		}
		if p.at(lexer.Comma) {
			p.advance()
		}
	}
	p.advance()
	return rp, nil
}

func (p *Parser) parseArrayPattern(prefix bool) (ast.Pattern, error) {
	start := p.advance().Span // [
	ap := &ast.ArrayPattern{At: at(start), Prefix: prefix}
	for !p.at(lexer.RBracket) {
		item, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		ap.Items = append(ap.Items, item)
		if p.at(lexer.Comma) {
			p.advance()
		}
	}
	p.advance()
	return ap, nil
}

// parseFor parses `for arr of case (i,x) => expr end`.
func (p *Parser) parseFor() (ast.Expr, error) {
	start := p.advance().Span // for
	iterable, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KwOf, "of"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KwCase, "case"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen, "("); err != nil {
		return nil, err
	}
	key, err := p.expect(lexer.Ident, "key binding")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Comma, ","); err != nil {
		return nil, err
	}
	val, err := p.expect(lexer.Ident, "value binding")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen, ")"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Arrow, "=>"); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KwEnd, "end"); err != nil {
		return nil, err
	}
	return &ast.For{At: at(start), Iterable: iterable, KeyName: key.Text, ValName: val.Text, Body: body}, nil
}
