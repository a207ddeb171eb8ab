// Package ast defines the syntax tree shared by tremor-script and
// trickle sources. Every node carries a lexer.Span for hygienic
// diagnostics (spec.md §4.B).
package ast

import "github.com/tremor-rt/tremor/lexer"

// Node is implemented by every AST node.
type Node interface {
	Span() lexer.Span
}

// At embeds into every node to supply its source span; other packages
// construct nodes as e.g. ast.IntLit{At: ast.At{S: span}, Value: 1}.
type At struct{ S lexer.Span }

func (a At) Span() lexer.Span { return a.S }

// ---- Expressions ----

type Expr interface {
	Node
	exprNode()
}

func (At) exprNode() {}

type NullLit struct{ At }
type BoolLit struct {
	At
	Value bool
}
type IntLit struct {
	At
	Value int64
}
type FloatLit struct {
	At
	Value float64
}

// StringLit is either a plain literal (len(Parts)==1, a single literal StringPart)
// or an interpolated string made of literal and expression parts.
type StringLit struct {
	At
	Parts []StringPart
}

type StringPart struct {
	Literal string
	Expr    Expr // nil when this part is a literal chunk
}

type BinaryLit struct {
	At
	Segments []BinarySegment
}

type BinarySegment struct {
	Value Expr
	Width int // bit width; 0 means unspecified/default
}

// Path is a slot access: Base names the envelope slot (event, state,
// meta, args, or a local binding); Segments descend into it.
type Path struct {
	At
	Base     string
	Segments []PathSegment
}

type PathSegment struct {
	Field string // non-empty for a record field
	Index Expr   // non-nil for an array index (may be dynamic)
}

type ArrayLit struct {
	At
	Items []Expr
}

type RecordField struct {
	Key   Expr // string literal or computed key
	Value Expr
}

type RecordLit struct {
	At
	Fields []RecordField
}

type UnaryExpr struct {
	At
	Op string
	X  Expr
}

type BinaryExpr struct {
	At
	Op   string
	X, Y Expr
}

// Call is either an intrinsic (Module != "") or user-defined function
// invocation.
type Call struct {
	At
	Module string
	Name   string
	Args   []Expr
}

type Let struct {
	At
	Target *Path
	Value  Expr
}

// Match evaluates Subject against Cases top-to-bottom; first match
// wins (spec.md §4.C). Default is mandatory.
type Match struct {
	At
	Subject Expr
	Cases   []MatchCase
	Default Expr
}

type MatchCase struct {
	Pattern Pattern
	Guard   Expr // optional `when` guard; nil if absent
	Body    Expr
}

type Pattern interface {
	Node
	patternNode()
}

func (At) patternNode() {}

type LiteralPattern struct {
	At
	Value Expr
}

// BindPattern captures the subject (or a sub-part) under Name.
type BindPattern struct {
	At
	Name string
}

type WildcardPattern struct{ At }

type RecordPatternField struct {
	Key    string
	Op     string // "==", "!=", "<", "<=", ">", ">=", "present", "absent", or "" for nested pattern
	Value  Expr
	Nested Pattern
}

type RecordPattern struct {
	At
	Fields []RecordPatternField
}

type ArrayPattern struct {
	At
	Items  []Pattern
	Prefix bool // true when `~` prefix-match was used
}

// For lazily maps Iterable via case (k,v) => Body end.
type For struct {
	At
	Iterable Expr
	KeyName  string
	ValName  string
	Body     Expr
}

type FnDef struct {
	At
	Name   string
	Params []string
	Body   Expr
}

type IntrinsicDecl struct {
	At
	Name       string
	Params     []string
	Module     string
	ModuleName string
}

type Emit struct {
	At
	Value Expr // nil means "current event"
	Port  Expr // nil means "out"
}

type Drop struct{ At }

// Block is a sequence of let/expression statements; the value of the
// last statement is the block's value unless an Emit/Drop short
// circuits (spec.md §9 design note).
type Block struct {
	At
	Stmts []Expr
}

// Script is a whole `.tremor` compilation unit.
type Script struct {
	At
	Uses []string
	Fns  []*FnDef
	Body []Expr
}
