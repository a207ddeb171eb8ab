package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tremor-rt/tremor/lexer"
	"github.com/tremor-rt/tremor/parser"
	"github.com/tremor-rt/tremor/query"
	"github.com/tremor-rt/tremor/reporter"
)

func newDbgCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dbg {dot,ast,lex,src} FILE",
		Short: "inspect a compiler intermediate representation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDbg(args[0], args[1])
		},
	}
	return cmd
}

func runDbg(mode, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch mode {
	case "src":
		fmt.Print(string(src))
		return nil
	case "lex":
		return dbgLex(path, string(src))
	case "ast":
		return dbgAST(path, string(src))
	case "dot":
		return dbgDot(path, string(src))
	}
	return fmt.Errorf("unknown dbg mode %q (want dot, ast, lex, or src)", mode)
}

func dbgLex(path, src string) error {
	toks, err := lexer.New(path, src).Tokenize()
	if err != nil {
		fmt.Fprintln(os.Stderr, reporter.Format(err, src, reporter.IsColorTerminal(os.Stderr.Fd())))
		return fmt.Errorf("lex failed")
	}
	for _, t := range toks {
		fmt.Printf("%-4d:%-3d %-12v %q\n", t.Span.Line, t.Span.Col, t.Kind, t.Text)
	}
	return nil
}

func dbgAST(path, src string) error {
	if strings.HasSuffix(path, ".trickle") {
		q, err := parser.ParseQuery(path, src)
		if err != nil {
			fmt.Fprintln(os.Stderr, reporter.Format(err, src, reporter.IsColorTerminal(os.Stderr.Fd())))
			return fmt.Errorf("parse failed")
		}
		return printJSON(q)
	}
	s, err := parser.ParseScript(path, src)
	if err != nil {
		fmt.Fprintln(os.Stderr, reporter.Format(err, src, reporter.IsColorTerminal(os.Stderr.Fd())))
		return fmt.Errorf("parse failed")
	}
	return printJSON(s)
}

func dbgDot(path, src string) error {
	q, err := parser.ParseQuery(path, src)
	if err != nil {
		fmt.Fprintln(os.Stderr, reporter.Format(err, src, reporter.IsColorTerminal(os.Stderr.Fd())))
		return fmt.Errorf("parse failed")
	}
	g, err := query.Compile(q)
	if err != nil {
		fmt.Fprintln(os.Stderr, reporter.Format(err, src, reporter.IsColorTerminal(os.Stderr.Fd())))
		return fmt.Errorf("compile failed")
	}
	fmt.Println(graphDot(g))
	return nil
}

func graphDot(g *query.Graph) string {
	var b strings.Builder
	b.WriteString("digraph tremor {\n")
	b.WriteString("  in [shape=doublecircle];\n  out [shape=doublecircle];\n  err [shape=doublecircle];\n")
	for _, n := range g.Nodes {
		b.WriteString(fmt.Sprintf("  %q [shape=box, label=%q];\n", n.Name, fmt.Sprintf("%s\\n(%s)", n.Name, kindLabel(n.Kind))))
	}
	for _, e := range g.Edges {
		from := e.From.Name
		if e.From.Port != "" {
			from = fmt.Sprintf("%s:%s", e.From.Name, e.From.Port)
		}
		b.WriteString(fmt.Sprintf("  %q -> %q;\n", from, e.To.Name))
	}
	b.WriteString("}\n")
	return b.String()
}

func kindLabel(k query.NodeKind) string {
	switch k {
	case query.KindStream:
		return "stream"
	case query.KindSelect:
		return "select"
	case query.KindScript:
		return "script"
	case query.KindOperator:
		return "operator"
	}
	return "?"
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
