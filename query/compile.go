// Package query compiles a parsed trickle ast.Query into an operator
// DAG: an arena of named nodes plus a port-to-port edge list, with
// nested `define query` inlined and `with` arguments bound at create
// time (spec.md §4.F).
package query

import (
	"fmt"

	"github.com/tremor-rt/tremor/ast"
	"github.com/tremor-rt/tremor/errs"
	"github.com/tremor-rt/tremor/value"
	"github.com/tremor-rt/tremor/window"
)

// NodeKind identifies what kind of operator a Node instantiates.
type NodeKind int

const (
	KindStream NodeKind = iota
	KindSelect
	KindScript
	KindOperator
)

// AggCall is one `aggr::module::name(field-expr)` call found in a
// select's projection, in source order.
type AggCall struct {
	Spec  window.AggSpec
	Field ast.Expr
}

// SelectSpec holds everything a compiled `select` node needs at
// runtime: its field list, predicates, and tilt-frame window configs.
type SelectSpec struct {
	Fields    []ast.RecordField
	Where     ast.Expr
	GroupBy   []ast.Expr
	Having    ast.Expr
	Windows   []*window.Config
	AggCalls  []AggCall
}

// Node is one operator instance in the compiled graph.
type Node struct {
	Name       string
	Kind       NodeKind
	Select     *SelectSpec
	ScriptBody *ast.Script
	With       map[string]value.Value
}

// Edge connects one node's output port to another's input port. Name
// "in"/"out"/"err" with no Node entry refer to the pipeline's
// reserved boundary ports.
type Edge struct {
	From ast.PortRef
	To   ast.PortRef
}

// Graph is the compiled, ready-to-run operator DAG.
type Graph struct {
	Nodes []*Node
	ByName map[string]*Node
	Edges  []Edge
	Order  []string // topological order of Nodes by Name
}

type compiler struct {
	windowDefs map[string]*ast.DefineWindow
	opDefs     map[string]*ast.DefineOperator
	g          *Graph
	anon       int
}

// Compile builds a Graph from q, rejecting duplicate operator names,
// unknown window references, and cyclic wiring.
func Compile(q *ast.Query) (*Graph, error) {
	c := &compiler{
		windowDefs: map[string]*ast.DefineWindow{},
		opDefs:     map[string]*ast.DefineOperator{},
		g:          &Graph{ByName: map[string]*Node{}},
	}
	for _, stmt := range q.Stmts {
		if err := c.compileStmt(stmt); err != nil {
			return nil, err
		}
	}
	if err := c.toposort(); err != nil {
		return nil, err
	}
	return c.g, nil
}

func (c *compiler) addNode(n *Node) error {
	if _, dup := c.g.ByName[n.Name]; dup {
		return errs.Compile.New(fmt.Sprintf("duplicate operator name `%s`", n.Name))
	}
	c.g.Nodes = append(c.g.Nodes, n)
	c.g.ByName[n.Name] = n
	return nil
}

func (c *compiler) compileStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.DefineWindow:
		if _, dup := c.windowDefs[s.Name]; dup {
			return errs.Compile.New(fmt.Sprintf("duplicate window definition `%s`", s.Name))
		}
		c.windowDefs[s.Name] = s
		return nil
	case *ast.DefineOperator:
		if _, dup := c.opDefs[s.Name]; dup {
			return errs.Compile.New(fmt.Sprintf("duplicate operator definition `%s`", s.Name))
		}
		c.opDefs[s.Name] = s
		return nil
	case *ast.CreateOperator:
		return c.compileCreate(s)
	case *ast.Stream:
		return c.addNode(&Node{Name: s.Name, Kind: KindStream})
	case *ast.Select:
		return c.compileSelect(s)
	}
	return errs.Compile.New(fmt.Sprintf("unhandled query statement %T", stmt))
}

func (c *compiler) compileCreate(s *ast.CreateOperator) error {
	def, ok := c.opDefs[s.DefName]
	if !ok {
		return errs.Compile.New(fmt.Sprintf("no such operator definition `%s`", s.DefName))
	}
	with := mergeWith(def.With, s.With)
	switch def.Kind {
	case "script":
		return c.addNode(&Node{Name: s.As, Kind: KindScript, ScriptBody: def.ScriptBody, With: with})
	case "query":
		return c.inlineQuery(s.As, def.QueryBody, with)
	default:
		return c.addNode(&Node{Name: s.As, Kind: KindOperator, With: with})
	}
}

// inlineQuery inlines a nested `define query`'s statements into the
// enclosing graph, namespacing every contained operator name under
// prefix to avoid collisions (spec.md §4.F "nested define query").
func (c *compiler) inlineQuery(prefix string, nested *ast.Query, with map[string]value.Value) error {
	if nested == nil {
		return errs.Compile.New(fmt.Sprintf("operator `%s` has no embedded query body", prefix))
	}
	for _, stmt := range nested.Stmts {
		renamed, err := c.renameStmt(stmt, prefix)
		if err != nil {
			return err
		}
		if err := c.compileStmt(renamed); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) renameStmt(stmt ast.Stmt, prefix string) (ast.Stmt, error) {
	ns := func(name string) string { return prefix + "::" + name }
	switch s := stmt.(type) {
	case *ast.Stream:
		cp := *s
		cp.Name = ns(s.Name)
		return &cp, nil
	case *ast.Select:
		cp := *s
		cp.Name = ns(orAnon(s.Name, &c.anon))
		cp.From = ast.PortRef{Name: ns(s.From.Name), Port: s.From.Port}
		cp.Into = ast.PortRef{Name: ns(s.Into.Name), Port: s.Into.Port}
		return &cp, nil
	case *ast.CreateOperator:
		cp := *s
		cp.As = ns(s.As)
		return &cp, nil
	case *ast.DefineWindow, *ast.DefineOperator:
		return s, nil
	}
	return stmt, fmt.Errorf("cannot inline statement %T", stmt)
}

func orAnon(name string, counter *int) string {
	if name != "" {
		return name
	}
	*counter++
	return fmt.Sprintf("select_%d", *counter)
}

// mergeWith resolves a define's default `with` args overridden by a
// create's own, to constant Values. `with` arguments are always
// literals in this grammar (spec.md §4.F); anything else is silently
// skipped and left for the operator to default.
func mergeWith(base, override []ast.WithArg) map[string]value.Value {
	out := map[string]value.Value{}
	for _, w := range base {
		if v, ok := literalValue(w.Value); ok {
			out[w.Name] = v
		}
	}
	for _, w := range override {
		if v, ok := literalValue(w.Value); ok {
			out[w.Name] = v
		}
	}
	return out
}

func literalValue(e ast.Expr) (value.Value, bool) {
	switch n := e.(type) {
	case *ast.NullLit:
		return value.Null{}, true
	case *ast.BoolLit:
		return value.Bool(n.Value), true
	case *ast.IntLit:
		return value.Int(n.Value), true
	case *ast.FloatLit:
		return value.Float(n.Value), true
	case *ast.StringLit:
		if len(n.Parts) == 1 && n.Parts[0].Expr == nil {
			return value.Str(n.Parts[0].Literal), true
		}
	case *ast.ArrayLit:
		arr := &value.Array{}
		for _, item := range n.Items {
			v, ok := literalValue(item)
			if !ok {
				return nil, false
			}
			arr.Items = append(arr.Items, v)
		}
		return arr, true
	case *ast.RecordLit:
		rec := value.NewRecord()
		for _, f := range n.Fields {
			kv, ok := literalValue(f.Key)
			if !ok {
				return nil, false
			}
			k, ok := kv.(value.Str)
			if !ok {
				return nil, false
			}
			vv, ok := literalValue(f.Value)
			if !ok {
				return nil, false
			}
			rec.Set(string(k), vv)
		}
		return rec, true
	}
	return nil, false
}

func (c *compiler) compileSelect(s *ast.Select) error {
	name := orAnon(s.Name, &c.anon)
	spec := &SelectSpec{Where: s.Where, GroupBy: s.GroupBy, Having: s.Having}
	if rl, ok := s.Fields.(*ast.RecordLit); ok {
		spec.Fields = rl.Fields
		for _, f := range rl.Fields {
			collectAggCalls(f.Value, spec)
		}
	} else if s.Fields != nil {
		collectAggCalls(s.Fields, spec)
	}
	for _, wname := range s.Windows {
		wd, ok := c.windowDefs[wname]
		if !ok {
			return errs.Compile.New(fmt.Sprintf("no such window definition `%s`", wname))
		}
		cfg, err := buildWindowConfig(wd)
		if err != nil {
			return err
		}
		spec.Windows = append(spec.Windows, cfg)
	}
	if err := c.addNode(&Node{Name: name, Kind: KindSelect, Select: spec}); err != nil {
		return err
	}
	c.g.Edges = append(c.g.Edges, Edge{From: s.From, To: ast.PortRef{Name: name}})
	c.g.Edges = append(c.g.Edges, Edge{From: ast.PortRef{Name: name}, To: s.Into})
	return nil
}

func collectAggCalls(e ast.Expr, spec *SelectSpec) {
	call, ok := e.(*ast.Call)
	if !ok {
		return
	}
	if call.Module != "" && len(call.Module) > 6 && call.Module[:6] == "aggr::" {
		mod := call.Module[6:]
		spec.AggCalls = append(spec.AggCalls, AggCall{Spec: window.AggSpec{Module: mod, Name: call.Name}, Field: firstArgOr(call)})
	}
}

func firstArgOr(call *ast.Call) ast.Expr {
	if len(call.Args) > 0 {
		return call.Args[0]
	}
	return nil
}

// buildWindowConfig evaluates a define-window's `with` clause against
// constant literals (size/interval/max_groups/emit_empty are always
// compile-time constants in this grammar).
func buildWindowConfig(wd *ast.DefineWindow) (*window.Config, error) {
	cfg := &window.Config{Name: wd.Name}
	for _, w := range wd.With {
		switch w.Name {
		case "size":
			n, err := literalInt(w.Value)
			if err != nil {
				return nil, err
			}
			cfg.SizeN = n
		case "interval":
			n, err := literalInt(w.Value)
			if err != nil {
				return nil, err
			}
			cfg.IntervalNs = n
		case "max_groups":
			n, err := literalInt(w.Value)
			if err != nil {
				return nil, err
			}
			cfg.MaxGroups = int(n)
		case "emit_empty":
			b, ok := w.Value.(*ast.BoolLit)
			if !ok {
				return nil, errs.Compile.New("emit_empty must be a boolean literal")
			}
			cfg.EmitEmpty = b.Value
		}
	}
	if cfg.SizeN == 0 && cfg.IntervalNs == 0 {
		return nil, errs.Compile.New(fmt.Sprintf("window `%s` needs a size or interval", wd.Name))
	}
	return cfg, nil
}

func literalInt(e ast.Expr) (int64, error) {
	switch n := e.(type) {
	case *ast.IntLit:
		return n.Value, nil
	case *ast.FloatLit:
		return int64(n.Value), nil
	}
	return 0, errs.Compile.New("expected an integer literal")
}

// toposort orders Nodes by dependency (edges), detecting cycles
// (spec.md §4.F: "compiled ahead of time ... a cycle is a Compile
// error").
func (c *compiler) toposort() error {
	adj := map[string][]string{}
	for _, e := range c.g.Edges {
		if _, ok := c.g.ByName[e.From.Name]; !ok {
			continue // reserved in/out boundary port
		}
		if _, ok := c.g.ByName[e.To.Name]; !ok {
			continue
		}
		adj[e.From.Name] = append(adj[e.From.Name], e.To.Name)
	}
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	var order []string
	var visit func(name string) error
	visit = func(name string) error {
		switch color[name] {
		case black:
			return nil
		case gray:
			return errs.Compile.New(fmt.Sprintf("cycle detected in query graph at `%s`", name))
		}
		color[name] = gray
		for _, next := range adj[name] {
			if err := visit(next); err != nil {
				return err
			}
		}
		color[name] = black
		order = append([]string{name}, order...)
		return nil
	}
	for _, n := range c.g.Nodes {
		if color[n.Name] == white {
			if err := visit(n.Name); err != nil {
				return err
			}
		}
	}
	c.g.Order = order
	return nil
}
