package parser

import (
	"github.com/tremor-rt/tremor/ast"
	"github.com/tremor-rt/tremor/lexer"
)

// ParseQuery parses a whole `.trickle` compilation unit (spec.md
// §4.B/§4.F): define/create statements and select…from…into links.
func ParseQuery(file, src string) (*ast.Query, error) {
	p, err := newParser(file, src)
	if err != nil {
		return nil, err
	}
	q, err := p.parseQuery()
	if err == nil && !p.at(lexer.EOF) {
		return nil, p.errf("unexpected token in query")
	}
	return q, err
}

// parseQuery parses statements up to EOF or, for a nested
// `define query … { … }` body, up to the closing `}`.
func (p *Parser) parseQuery() (*ast.Query, error) {
	start := p.cur().Span
	q := &ast.Query{At: at(start)}
	for !p.at(lexer.EOF) && !p.at(lexer.RBrace) {
		switch {
		case p.at(lexer.KwUse):
			p.advance()
			use, err := p.parseModulePath()
			if err != nil {
				return nil, err
			}
			q.Uses = append(q.Uses, use)
		case p.at(lexer.KwDefine):
			stmt, err := p.parseDefine()
			if err != nil {
				return nil, err
			}
			q.Stmts = append(q.Stmts, stmt)
		case p.at(lexer.KwCreate):
			stmt, err := p.parseCreate()
			if err != nil {
				return nil, err
			}
			q.Stmts = append(q.Stmts, stmt)
		case p.at(lexer.KwSelect):
			stmt, err := p.parseSelect()
			if err != nil {
				return nil, err
			}
			q.Stmts = append(q.Stmts, stmt)
		case p.at(lexer.KwStream):
			p.advance()
			name, err := p.expect(lexer.Ident, "stream name")
			if err != nil {
				return nil, err
			}
			q.Stmts = append(q.Stmts, &ast.Stream{At: at(name.Span), Name: name.Text})
		default:
			if p.at(lexer.Semi) {
				p.advance()
				continue
			}
			return nil, p.errf("unexpected token in query")
		}
		if p.at(lexer.Semi) {
			p.advance()
		}
	}
	return q, nil
}

func (p *Parser) parseDefine() (ast.Stmt, error) {
	start := p.advance().Span // define
	switch {
	case p.at(lexer.KwWindow):
		p.advance()
		name, err := p.expect(lexer.Ident, "window name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.KwTumbling, "tumbling"); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.KwWindow, "window"); err != nil {
			return nil, err
		}
		with, err := p.parseWithClause()
		if err != nil {
			return nil, err
		}
		return &ast.DefineWindow{At: at(start), Name: name.Text, With: with}, nil
	case p.at(lexer.KwScript):
		p.advance()
		name, err := p.expect(lexer.Ident, "script name")
		if err != nil {
			return nil, err
		}
		with, err := p.parseWithClause()
		if err != nil {
			return nil, err
		}
		sc, err := p.parseEmbeddedScript()
		if err != nil {
			return nil, err
		}
		return &ast.DefineOperator{At: at(start), Kind: "script", Name: name.Text, With: with, ScriptBody: sc}, nil
	case p.at(lexer.KwOperator):
		p.advance()
		name, err := p.expect(lexer.Ident, "operator name")
		if err != nil {
			return nil, err
		}
		with, err := p.parseWithClause()
		if err != nil {
			return nil, err
		}
		return &ast.DefineOperator{At: at(start), Kind: "operator", Name: name.Text, With: with}, nil
	case p.at(lexer.KwQuery):
		p.advance()
		name, err := p.expect(lexer.Ident, "query name")
		if err != nil {
			return nil, err
		}
		with, err := p.parseWithClause()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.LBrace, "{"); err != nil {
			return nil, err
		}
		nested, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBrace, "}"); err != nil {
			return nil, err
		}
		return &ast.DefineOperator{At: at(start), Kind: "query", Name: name.Text, With: with, QueryBody: nested}, nil
	}
	return nil, p.errf("expected window, script, operator, or query after define")
}

// parseEmbeddedScript parses a `script … end`-delimited body used by
// `define script` inside trickle sources.
func (p *Parser) parseEmbeddedScript() (*ast.Script, error) {
	start := p.cur().Span
	sc := &ast.Script{At: at(start)}
	for !p.at(lexer.KwEnd) {
		switch {
		case p.at(lexer.KwUse):
			p.advance()
			use, err := p.parseModulePath()
			if err != nil {
				return nil, err
			}
			sc.Uses = append(sc.Uses, use)
		case p.at(lexer.KwFn):
			fn, err := p.parseFnDef()
			if err != nil {
				return nil, err
			}
			sc.Fns = append(sc.Fns, fn)
		case p.at(lexer.Semi):
			p.advance()
		default:
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			sc.Body = append(sc.Body, e)
		}
	}
	p.advance() // end
	return sc, nil
}

func (p *Parser) parseWithClause() ([]ast.WithArg, error) {
	if !p.at(lexer.KwWith) {
		return nil, nil
	}
	p.advance()
	var args []ast.WithArg
	for {
		name, err := p.expect(lexer.Ident, "argument name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Assign, "="); err != nil {
			return nil, err
		}
		val, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, ast.WithArg{Name: name.Text, Value: val})
		if p.at(lexer.Comma) {
			p.advance()
			continue
		}
		break
	}
	return args, nil
}

func (p *Parser) parseCreate() (ast.Stmt, error) {
	start := p.advance().Span // create
	// `create <kind> <defname>` or `create <kind> <as-name> from <defname>`
	if p.at(lexer.KwWindow) || p.at(lexer.KwScript) || p.at(lexer.KwOperator) || p.at(lexer.KwQuery) {
		p.advance()
	}
	first, err := p.expect(lexer.Ident, "operator instance name")
	if err != nil {
		return nil, err
	}
	c := &ast.CreateOperator{At: at(start), As: first.Text, DefName: first.Text}
	if p.at(lexer.KwFrom) {
		p.advance()
		def, err := p.expect(lexer.Ident, "definition name")
		if err != nil {
			return nil, err
		}
		c.DefName = def.Text
	}
	with, err := p.parseWithClause()
	if err != nil {
		return nil, err
	}
	c.With = with
	return c, nil
}

func (p *Parser) parsePortRef() (ast.PortRef, error) {
	name, err := p.expect(lexer.Ident, "stream or operator name")
	if err != nil {
		return ast.PortRef{}, err
	}
	ref := ast.PortRef{Name: name.Text}
	if p.at(lexer.Slash) {
		p.advance()
		port, err := p.expect(lexer.Ident, "port name")
		if err != nil {
			return ast.PortRef{}, err
		}
		ref.Port = port.Text
	}
	return ref, nil
}

// parseSelect parses `select F from A[w1,w2] [where W] [group by
// G,…] [having H] into B`.
func (p *Parser) parseSelect() (*ast.Select, error) {
	start := p.advance().Span // select
	fields, err := p.parseSelectFields()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KwFrom, "from"); err != nil {
		return nil, err
	}
	from, err := p.parsePortRef()
	if err != nil {
		return nil, err
	}
	sel := &ast.Select{At: at(start), Fields: fields, From: from}
	if p.at(lexer.LBracket) {
		p.advance()
		for !p.at(lexer.RBracket) {
			w, err := p.expect(lexer.Ident, "window name")
			if err != nil {
				return nil, err
			}
			sel.Windows = append(sel.Windows, w.Text)
			if p.at(lexer.Comma) {
				p.advance()
			}
		}
		p.advance()
	}
	if p.at(lexer.KwWhere) {
		p.advance()
		w, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		sel.Where = w
	}
	if p.at(lexer.KwGroup) {
		p.advance()
		if _, err := p.expect(lexer.KwBy, "by"); err != nil {
			return nil, err
		}
		for {
			g, err := p.parseGroupExpr()
			if err != nil {
				return nil, err
			}
			sel.GroupBy = append(sel.GroupBy, g)
			if p.at(lexer.Comma) {
				p.advance()
				continue
			}
			break
		}
	}
	if p.at(lexer.KwHaving) {
		p.advance()
		h, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		sel.Having = h
	}
	if _, err := p.expect(lexer.KwInto, "into"); err != nil {
		return nil, err
	}
	into, err := p.parsePortRef()
	if err != nil {
		return nil, err
	}
	sel.Into = into
	return sel, nil
}

// parseGroupExpr parses either a bare expression or `set(e1, e2, …)`
// (composite key, spec.md §4.E), represented as an ArrayLit.
func (p *Parser) parseGroupExpr() (ast.Expr, error) {
	if p.at(lexer.KwSet) {
		start := p.advance().Span
		if _, err := p.expect(lexer.LParen, "("); err != nil {
			return nil, err
		}
		lit := &ast.ArrayLit{At: at(start)}
		for !p.at(lexer.RParen) {
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
	return p.parseOr()
}

// parseSelectFields parses the projection: either a full record
// literal or a single expression (commonly `event`).
func (p *Parser) parseSelectFields() (ast.Expr, error) {
	if p.at(lexer.LBrace) {
		return p.parseRecordLit()
	}
	return p.parseOr()
}
