// Package parser implements a hand-written recursive-descent parser
// producing ast.* nodes for both tremor-script and trickle sources
// (spec.md §4.B).
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tremor-rt/tremor/ast"
	"github.com/tremor-rt/tremor/lexer"
)

// SyntaxError is a parse failure with a source span, formatted by the
// reporter package into a hygienic diagnostic.
type SyntaxError struct {
	Span lexer.Span
	Msg  string
}

func (e *SyntaxError) Error() string { return e.Msg }

type Parser struct {
	file string
	toks []lexer.Token
	pos  int
}

func newParser(file, src string) (*Parser, error) {
	toks, err := lexer.New(file, src).Tokenize()
	if err != nil {
		return nil, err
	}
	return &Parser{file: file, toks: toks}, nil
}

func (p *Parser) cur() lexer.Token     { return p.toks[p.pos] }
func (p *Parser) at(k lexer.Kind) bool { return p.cur().Kind == k }

func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k lexer.Kind, what string) (lexer.Token, error) {
	if !p.at(k) {
		return lexer.Token{}, p.errf("expected %s", what)
	}
	return p.advance(), nil
}

func (p *Parser) errf(format string, args ...interface{}) error {
	return &SyntaxError{Span: p.cur().Span, Msg: fmt.Sprintf(format, args...)}
}

func at(s lexer.Span) ast.At { return ast.At{S: s} }

// ParseScript parses a whole `.tremor` compilation unit.
func ParseScript(file, src string) (*ast.Script, error) {
	p, err := newParser(file, src)
	if err != nil {
		return nil, err
	}
	return p.parseScript()
}

func (p *Parser) parseScript() (*ast.Script, error) {
	start := p.cur().Span
	sc := &ast.Script{At: at(start)}
	for !p.at(lexer.EOF) {
		switch {
		case p.at(lexer.KwUse):
			p.advance()
			use, err := p.parseModulePath()
			if err != nil {
				return nil, err
			}
			sc.Uses = append(sc.Uses, use)
		case p.at(lexer.KwIntrinsic):
			if _, err := p.parseIntrinsicDecl(); err != nil {
				return nil, err
			}
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
	return sc, nil
}

func (p *Parser) parseModulePath() (string, error) {
	var parts []string
	tok, err := p.expect(lexer.Ident, "module path")
	if err != nil {
		return "", err
	}
	parts = append(parts, tok.Text)
	for p.at(lexer.DColon) {
		p.advance()
		tok, err := p.expect(lexer.Ident, "module path segment")
		if err != nil {
			return "", err
		}
		parts = append(parts, tok.Text)
	}
	return strings.Join(parts, "::"), nil
}

func (p *Parser) parseIntrinsicDecl() (*ast.IntrinsicDecl, error) {
	start := p.cur().Span
	p.advance() // intrinsic
	if _, err := p.expect(lexer.KwFn, "fn"); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.Ident, "function name")
	if err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KwAs, "as"); err != nil {
		return nil, err
	}
	path, err := p.parseModulePath()
	if err != nil {
		return nil, err
	}
	idx := strings.LastIndex(path, "::")
	module, fn := path, ""
	if idx >= 0 {
		module, fn = path[:idx], path[idx+2:]
	}
	return &ast.IntrinsicDecl{At: at(start), Name: name.Text, Params: params, Module: module, ModuleName: fn}, nil
}

func (p *Parser) parseParamList() ([]string, error) {
	if _, err := p.expect(lexer.LParen, "("); err != nil {
		return nil, err
	}
	var params []string
	for !p.at(lexer.RParen) {
		tok, err := p.expect(lexer.Ident, "parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, tok.Text)
		if p.at(lexer.Comma) {
			p.advance()
		}
	}
	p.advance()
	return params, nil
}

func (p *Parser) parseFnDef() (*ast.FnDef, error) {
	start := p.cur().Span
	p.advance() // fn
	name, err := p.expect(lexer.Ident, "function name")
	if err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KwWith, "with"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockUntilEnd()
	if err != nil {
		return nil, err
	}
	return &ast.FnDef{At: at(start), Name: name.Text, Params: params, Body: body}, nil
}

func (p *Parser) parseBlockUntilEnd() (ast.Expr, error) {
	start := p.cur().Span
	var stmts []ast.Expr
	for !p.at(lexer.KwEnd) {
		if p.at(lexer.Semi) {
			p.advance()
			continue
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, e)
	}
	p.advance() // end
	if len(stmts) == 1 {
		return stmts[0], nil
	}
	return &ast.Block{At: at(start), Stmts: stmts}, nil
}

func parseIntLit(text string) (int64, error)     { return strconv.ParseInt(text, 10, 64) }
func parseFloatLit(text string) (float64, error) { return strconv.ParseFloat(text, 64) }
