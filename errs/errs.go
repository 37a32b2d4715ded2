// Package errs defines the tagged error taxonomy used across the engine
// and the batch-level accumulation policy described for statement
// execution: one statement's failure never stops the rest of a batch.
package errs

import (
	"fmt"

	"go.uber.org/multierr"
)

// Kind tags an Error with the taxonomy spec.md §7 names. It exists so
// callers can branch on failure category without string-matching
// messages.
type Kind int

const (
	// Other is the zero value so a forgotten Kind still reads as
	// "unclassified" instead of silently claiming to be IO.
	Other Kind = iota
	IO
	Format
	Required
	UnsupportedOperation
	Syntax
)

func (k Kind) String() string {
	switch k {
	case IO:
		return "IOError"
	case Format:
		return "FormatError"
	case Required:
		return "Error"
	case UnsupportedOperation:
		return "UnsupportedOPError"
	case Syntax:
		return "Error"
	default:
		return "Other"
	}
}

// Error is a single tagged failure. It wraps an inner cause so
// errors.Is/errors.As keep working through the taxonomy.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case Required, Syntax:
		// User-facing rendering per spec.md §7: `Error: <message>`.
		return fmt.Sprintf("Error: %s", e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func newf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// IOErrorf builds a storage open/read/write failure.
func IOErrorf(format string, args ...any) *Error { return newf(IO, format, args...) }

// FormatErrorf builds an output-rendering failure (should be
// effectively unreachable against an in-memory table).
func FormatErrorf(format string, args ...any) *Error { return newf(Format, format, args...) }

// Requiredf builds a user-facing data error: missing NOT NULL value,
// duplicate unique key, and the like.
func Requiredf(format string, args ...any) *Error { return newf(Required, format, args...) }

// Unsupportedf builds an error for a syntactically valid statement
// whose semantics the core does not implement.
func Unsupportedf(format string, args ...any) *Error { return newf(UnsupportedOperation, format, args...) }

// Otherf builds a schema/type/evaluator error (table/column not
// found, type mismatch, unparseable literal, incomparable ORDER BY
// values).
func Otherf(format string, args ...any) *Error { return newf(Other, format, args...) }

// Syntaxf builds a parse failure. Per spec.md §7 it is surfaced with
// the same "Error: " rendering as Required, but keeps a distinct Kind
// so callers can still detect it came from parsing.
func Syntaxf(format string, args ...any) *Error { return newf(Syntax, format, args...) }

// DuplicateEntry renders the fixed duplicate-unique-key message.
func DuplicateEntry(value string) *Error {
	return Requiredf("Duplicate entry '%s' for key 'PRIMARY'", value)
}

// MissingDefault renders the fixed NOT-NULL-violation message.
func MissingDefault(column string) *Error {
	return Requiredf("Field '%s' doesn't have a default value", column)
}

// NoResults is the fixed line appended when a batch produces zero
// result tables.
const NoResults = "There are no results to be displayed."

// Batch accumulates per-statement errors across one execute() call.
// A failing statement never stops the remaining statements in the
// batch; Batch is the multi-error value returned once the batch ends.
type Batch struct {
	err error
}

// Add folds one statement's error into the batch. A nil err is a
// no-op, matching multierr.Append's contract.
func (b *Batch) Add(err error) {
	b.err = multierr.Append(b.err, err)
}

// Failed reports whether any statement in the batch errored.
func (b *Batch) Failed() bool { return b.err != nil }

// Render joins every accumulated error's message with a newline, the
// batch-failure rendering spec.md §7 calls for.
func (b *Batch) Render() string {
	errorsList := multierr.Errors(b.err)
	out := ""
	for i, e := range errorsList {
		if i > 0 {
			out += "\n"
		}
		out += e.Error()
	}
	return out
}
