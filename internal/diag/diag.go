// Package diag implements the compiler's error model: every fallible
// operation returns a Kind-tagged error carrying a static, human
// readable message and the source position it fired at. There is no
// local recovery; the first error aborts the pipeline (§7).
package diag

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/acd1034/tryrustc/internal/token"
)

// Category groups error kinds for reporting and for tests that only
// care which phase failed.
type Category string

const (
	Lex     Category = "lex"
	Parse   Category = "parse"
	Scope   Category = "scope"
	Type    Category = "type"
	Control Category = "control"
)

// Error is a single compiler diagnostic: a category, a static message,
// and the position it was raised at (when available; some errors, like
// a missing function definition discovered only at module-finalization
// time, have no single source position).
type Error struct {
	Category Category
	Message  string
	Pos      token.Position
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Category, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// New builds an Error tagged with pos.
func New(cat Category, pos token.Position, format string, args ...interface{}) error {
	return &Error{Category: cat, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// Wrap attaches cat/pos context to an underlying error (e.g. one
// produced by the external lexer) without discarding its chain, so
// `errors.Cause` still recovers the original failure for debug builds.
func Wrap(err error, cat Category, pos token.Position) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(&Error{Category: cat, Message: err.Error(), Pos: pos}, "compile")
}

// Report writes err to stderr in the CLI's user-visible format: the
// static message and file:line tag, colored the way an interactive
// terminal expects errors to read.
func Report(err error) {
	color.New(color.FgRed, color.Bold).Fprint(errorWriter, "error: ")
	fmt.Fprintln(errorWriter, err.Error())
}

// errorWriter is a seam tests can swap to capture Report's output.
var errorWriter = color.Error
