// Package lexer tokenizes tremor-script and trickle source text into a
// flat stream of spans-tagged tokens shared by both grammars.
package lexer

// Kind identifies a token's lexical class.
type Kind int

const (
	EOF Kind = iota
	Ident
	Int
	Float
	String
	Binary

	// Punctuation / operators
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Colon
	Semi
	Dot
	Arrow    // =>
	FatComma // ~ (prefix-match marker reuses Tilde)
	Tilde
	Assign // =
	Plus
	Minus
	Star
	Slash
	Percent
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	And
	Or
	Not
	DColon // ::

	// Keywords (script)
	KwNull
	KwTrue
	KwFalse
	KwLet
	KwMatch
	KwOf
	KwCase
	KwDefault
	KwEnd
	KwFor
	KwFn
	KwWith
	KwIntrinsic
	KwAs
	KwEmit
	KwDrop
	KwUse
	KwPresent
	KwAbsent
	KwWhen

	// Keywords (trickle)
	KwDefine
	KwCreate
	KwSelect
	KwFrom
	KwInto
	KwWhere
	KwHaving
	KwGroup
	KwBy
	KwWindow
	KwTumbling
	KwSet
	KwOperator
	KwScript
	KwQuery
	KwStream

	Illegal
)

// Token is one lexical unit with its source span.
type Token struct {
	Kind Kind
	Text string
	Span Span
}

// Span locates a token (or AST node) in source for hygienic
// diagnostics: file, byte offset, line, column, and length.
type Span struct {
	File   string
	Offset int
	Line   int
	Col    int
	Length int
}

var keywords = map[string]Kind{
	"null": KwNull, "true": KwTrue, "false": KwFalse,
	"let": KwLet, "match": KwMatch, "of": KwOf, "case": KwCase,
	"default": KwDefault, "end": KwEnd, "for": KwFor, "fn": KwFn,
	"with": KwWith, "intrinsic": KwIntrinsic, "as": KwAs,
	"emit": KwEmit, "drop": KwDrop, "use": KwUse,
	"present": KwPresent, "absent": KwAbsent, "when": KwWhen,
	"define": KwDefine, "create": KwCreate, "select": KwSelect,
	"from": KwFrom, "into": KwInto, "where": KwWhere,
	"having": KwHaving, "group": KwGroup, "by": KwBy,
	"window": KwWindow, "tumbling": KwTumbling, "set": KwSet,
	"operator": KwOperator, "script": KwScript, "query": KwQuery,
	"stream": KwStream,
	"and":    And, "or": Or, "not": Not,
}
