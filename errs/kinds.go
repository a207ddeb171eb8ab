// Package errs declares the error kinds from spec.md §7 as
// gopkg.in/src-d/go-errors.v1 Kinds, exactly the pattern the teacher
// uses for auth.ErrNotAuthorized/auth.ErrNoPermission in its auth
// package: a package-level *errors.Kind constructed with NewKind, then
// instantiated with .New(...) at the failure site so the kind survives
// wrapping and can be matched with Kind.Is.
package errs

import "gopkg.in/src-d/go-errors.v1"

var (
	Parse     = errors.NewKind("parse error: %s")
	Compile   = errors.NewKind("compile error: %s")
	Type      = errors.NewKind("type error: %s")
	BadAccess = errors.NewKind("bad access: %s")
	Arith     = errors.NewKind("arithmetic error: %s")
	Recursion = errors.NewKind("recursion error: %s")
	Window    = errors.NewKind("window error: %s")
	Resource  = errors.NewKind("resource error: %s")
	Internal  = errors.NewKind("internal error: %s")
)

// Spanned pairs a Kind-rooted error with the source span it occurred
// at, so reporter.Format can print the hygienic multi-line block from
// spec.md §4.H/§8 scenario 4.
type Spanned struct {
	Err  error
	File string
	Line int
	Col  int
}

func (s *Spanned) Error() string { return s.Err.Error() }
func (s *Spanned) Unwrap() error { return s.Err }

// At wraps err (normally produced by one of the Kinds above) with its
// originating span.
func At(err error, file string, line, col int) error {
	return &Spanned{Err: err, File: file, Line: line, Col: col}
}
