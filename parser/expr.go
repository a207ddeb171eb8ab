package parser

import (
	"strings"

	"github.com/tremor-rt/tremor/ast"
	"github.com/tremor-rt/tremor/lexer"
)

func (p *Parser) parseExpr() (ast.Expr, error) {
	switch {
	case p.at(lexer.KwLet):
		return p.parseLet()
	case p.at(lexer.KwMatch):
		return p.parseMatch()
	case p.at(lexer.KwFor):
		return p.parseFor()
	case p.at(lexer.KwEmit):
		return p.parseEmit()
	case p.at(lexer.KwDrop):
		start := p.advance().Span
		return &ast.Drop{At: at(start)}, nil
	}
	return p.parseOr()
}

func (p *Parser) parseLet() (ast.Expr, error) {
	start := p.advance().Span // let
	target, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Assign, "="); err != nil {
		return nil, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Let{At: at(start), Target: target, Value: val}, nil
}

func (p *Parser) parseEmit() (ast.Expr, error) {
	start := p.advance().Span // emit
	e := &ast.Emit{At: at(start)}
	if p.at(lexer.Arrow) || p.at(lexer.EOF) || p.at(lexer.Semi) || p.at(lexer.KwEnd) ||
		p.at(lexer.KwCase) || p.at(lexer.KwDefault) {
		// bare `emit` or `emit => "port"` with implicit current event
	} else {
		val, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		e.Value = val
	}
	if p.at(lexer.Arrow) {
		p.advance()
		port, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		e.Port = port
	}
	return e, nil
}

func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.Or) {
		start := p.advance().Span
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{At: at(start), Op: "or", X: left, Y: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.And) {
		start := p.advance().Span
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{At: at(start), Op: "and", X: left, Y: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (ast.Expr, error) {
	if p.at(lexer.Not) {
		start := p.advance().Span
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{At: at(start), Op: "not", X: x}, nil
	}
	return p.parseCmp()
}

var cmpOps = map[lexer.Kind]string{
	lexer.Eq: "==", lexer.Ne: "!=", lexer.Lt: "<", lexer.Le: "<=",
	lexer.Gt: ">", lexer.Ge: ">=",
}

func (p *Parser) parseCmp() (ast.Expr, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	if op, ok := cmpOps[p.cur().Kind]; ok {
		start := p.advance().Span
		right, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{At: at(start), Op: op, X: left, Y: right}, nil
	}
	return left, nil
}

func (p *Parser) parseAdd() (ast.Expr, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.Plus) || p.at(lexer.Minus) {
		op := "+"
		if p.at(lexer.Minus) {
			op = "-"
		}
		start := p.advance().Span
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{At: at(start), Op: op, X: left, Y: right}
	}
	return left, nil
}

func (p *Parser) parseMul() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.Star) || p.at(lexer.Slash) || p.at(lexer.Percent) {
		op := map[lexer.Kind]string{lexer.Star: "*", lexer.Slash: "/", lexer.Percent: "%"}[p.cur().Kind]
		start := p.advance().Span
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{At: at(start), Op: op, X: left, Y: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.at(lexer.Minus) {
		start := p.advance().Span
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{At: at(start), Op: "-", X: x}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	prim, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	path, isPath := prim.(*ast.Path)
	for {
		switch {
		case p.at(lexer.Dot) && isPath:
			p.advance()
			field, err := p.expect(lexer.Ident, "field name")
			if err != nil {
				return nil, err
			}
			path.Segments = append(path.Segments, ast.PathSegment{Field: field.Text})
		case p.at(lexer.LBracket) && isPath:
			p.advance()
			idx, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBracket, "]"); err != nil {
				return nil, err
			}
			path.Segments = append(path.Segments, ast.PathSegment{Index: idx})
		default:
			return prim, nil
		}
	}
}

func (p *Parser) parsePath() (*ast.Path, error) {
	start := p.cur().Span
	tok, err := p.expect(lexer.Ident, "identifier")
	if err != nil {
		return nil, err
	}
	path := &ast.Path{At: at(start), Base: tok.Text}
	for {
		switch {
		case p.at(lexer.Dot):
			p.advance()
			field, err := p.expect(lexer.Ident, "field name")
			if err != nil {
				return nil, err
			}
			path.Segments = append(path.Segments, ast.PathSegment{Field: field.Text})
		case p.at(lexer.LBracket):
			p.advance()
			idx, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBracket, "]"); err != nil {
				return nil, err
			}
			path.Segments = append(path.Segments, ast.PathSegment{Index: idx})
		default:
			return path, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	start := p.cur().Span
	switch {
	case p.at(lexer.KwNull):
		p.advance()
		return &ast.NullLit{At: at(start)}, nil
	case p.at(lexer.KwTrue):
		p.advance()
		return &ast.BoolLit{At: at(start), Value: true}, nil
	case p.at(lexer.KwFalse):
		p.advance()
		return &ast.BoolLit{At: at(start), Value: false}, nil
	case p.at(lexer.Int):
		tok := p.advance()
		v, err := parseIntLit(tok.Text)
		if err != nil {
			return nil, &SyntaxError{Span: tok.Span, Msg: "invalid integer literal"}
		}
		return &ast.IntLit{At: at(start), Value: v}, nil
	case p.at(lexer.Float):
		tok := p.advance()
		v, err := parseFloatLit(tok.Text)
		if err != nil {
			return nil, &SyntaxError{Span: tok.Span, Msg: "invalid float literal"}
		}
		return &ast.FloatLit{At: at(start), Value: v}, nil
	case p.at(lexer.String):
		return p.parseStringLit()
	case p.at(lexer.Binary):
		return p.parseBinaryLit()
	case p.at(lexer.LBrace):
		return p.parseRecordLit()
	case p.at(lexer.LBracket):
		return p.parseArrayLit()
	case p.at(lexer.LParen):
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen, ")"); err != nil {
			return nil, err
		}
		return e, nil
	case p.at(lexer.Ident) || p.at(lexer.KwGroup) || p.at(lexer.KwWindow):
		// `group` and `window` are keywords in trickle but also the
		// result bindings a windowed select's projection reads.
		return p.parseIdentLed()
	}
	return nil, p.errf("unexpected token")
}

// parseIdentLed handles identifiers that may lead a module::call,
// a user-defined function call, or a path expression.
func (p *Parser) parseIdentLed() (ast.Expr, error) {
	start := p.cur().Span
	first := p.advance().Text
	if p.at(lexer.DColon) {
		var parts []string
		parts = append(parts, first)
		for p.at(lexer.DColon) {
			p.advance()
			tok, err := p.expect(lexer.Ident, "module segment")
			if err != nil {
				return nil, err
			}
			parts = append(parts, tok.Text)
		}
		name := parts[len(parts)-1]
		module := strings.Join(parts[:len(parts)-1], "::")
		args, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		return &ast.Call{At: at(start), Module: module, Name: name, Args: args}, nil
	}
	if p.at(lexer.LParen) {
		args, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		return &ast.Call{At: at(start), Name: first, Args: args}, nil
	}
	path := &ast.Path{At: at(start), Base: first}
	for {
		switch {
		case p.at(lexer.Dot):
			p.advance()
			field, err := p.expect(lexer.Ident, "field name")
			if err != nil {
				return nil, err
			}
			path.Segments = append(path.Segments, ast.PathSegment{Field: field.Text})
		case p.at(lexer.LBracket):
			p.advance()
			idx, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBracket, "]"); err != nil {
				return nil, err
			}
			path.Segments = append(path.Segments, ast.PathSegment{Index: idx})
		default:
			return path, nil
		}
	}
}

func (p *Parser) parseCallArgs() ([]ast.Expr, error) {
	if _, err := p.expect(lexer.LParen, "("); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.at(lexer.RParen) {
		a, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.at(lexer.Comma) {
			p.advance()
		}
	}
	p.advance()
	return args, nil
}

func (p *Parser) parseArrayLit() (ast.Expr, error) {
	start := p.advance().Span // [
	lit := &ast.ArrayLit{At: at(start)}
	for !p.at(lexer.RBracket) {
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		lit.Items = append(lit.Items, e)
		if p.at(lexer.Comma) {
			p.advance()
		}
	}
	p.advance()
	return lit, nil
}

func (p *Parser) parseRecordLit() (ast.Expr, error) {
	start := p.advance().Span // {
	lit := &ast.RecordLit{At: at(start)}
	for !p.at(lexer.RBrace) {
		keyTok, err := p.expect(lexer.String, "record key")
		if err != nil {
			return nil, err
		}
		key, err := stringLitFromToken(keyTok)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Colon, ":"); err != nil {
			return nil, err
		}
		val, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		lit.Fields = append(lit.Fields, ast.RecordField{Key: key, Value: val})
		if p.at(lexer.Comma) {
			p.advance()
		}
	}
	p.advance()
	return lit, nil
}

func stringLitFromToken(tok lexer.Token) (ast.Expr, error) {
	return &ast.StringLit{At: at(tok.Span), Parts: []ast.StringPart{{Literal: tok.Text}}}, nil
}

// parseStringLit splits `{…}`/`{{`/`}}` interpolation markers out of
// the raw token text into literal and embedded-expression parts.
func (p *Parser) parseStringLit() (ast.Expr, error) {
	tok := p.advance()
	raw := tok.Text
	lit := &ast.StringLit{At: at(tok.Span)}
	var litBuf strings.Builder
	i := 0
	for i < len(raw) {
		c := raw[i]
		if c == '{' && i+1 < len(raw) && raw[i+1] == '{' {
			litBuf.WriteByte('{')
			i += 2
			continue
		}
		if c == '}' && i+1 < len(raw) && raw[i+1] == '}' {
			litBuf.WriteByte('}')
			i += 2
			continue
		}
		if c == '{' {
			if litBuf.Len() > 0 {
				lit.Parts = append(lit.Parts, ast.StringPart{Literal: litBuf.String()})
				litBuf.Reset()
			}
			j := i + 1
			depth := 1
			for j < len(raw) && depth > 0 {
				if raw[j] == '{' {
					depth++
				} else if raw[j] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				j++
			}
			inner := raw[i+1 : j]
			sub, err := newParser(tok.Span.File, inner)
			if err != nil {
				return nil, err
			}
			e, err := sub.parseOr()
			if err != nil {
				return nil, err
			}
			lit.Parts = append(lit.Parts, ast.StringPart{Expr: e})
			i = j + 1
			continue
		}
		litBuf.WriteByte(c)
		i++
	}
	if litBuf.Len() > 0 || len(lit.Parts) == 0 {
		lit.Parts = append(lit.Parts, ast.StringPart{Literal: litBuf.String()})
	}
	return lit, nil
}

func (p *Parser) parseBinaryLit() (ast.Expr, error) {
	tok := p.advance()
	lit := &ast.BinaryLit{At: at(tok.Span)}
	parts := strings.Split(tok.Text, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		width := 0
		valueText := part
		if idx := strings.Index(part, ":"); idx >= 0 {
			valueText = strings.TrimSpace(part[:idx])
			w, err := parseIntLit(strings.TrimSpace(part[idx+1:]))
			if err != nil {
				return nil, &SyntaxError{Span: tok.Span, Msg: "invalid bit width in binary literal"}
			}
			width = int(w)
		}
		sub, err := newParser(tok.Span.File, valueText)
		if err != nil {
			return nil, err
		}
		e, err := sub.parseOr()
		if err != nil {
			return nil, err
		}
		lit.Segments = append(lit.Segments, ast.BinarySegment{Value: e, Width: width})
	}
	return lit, nil
}
