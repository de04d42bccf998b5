// Package diag implements the error-kind taxonomy the walker and
// validator raise (type/name/definition/annotation/option/internal),
// plus the non-fatal warning channel flushed by the driver/CLI.
//
// Error wrapping follows golang.org/x/xerrors' frame-capturing
// Errorf/Wrap, the same idiom golang-tools/internal/lsp/cache uses for
// its own error values. Warnings are logged with
// github.com/hashicorp/go-hclog for structured, leveled output -- the
// ambient logging answer adopted from hashicorp/nomad, since go/ssa
// itself has no application-level logger (it's a library).
package diag

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/xerrors"
)

// Code classifies the kind of error the middle end surfaces.
type Code int

const (
	TypeError Code = iota
	NameError
	DefinitionError
	AnnotationError
	OptionError
	InternalError
)

func (c Code) String() string {
	switch c {
	case TypeError:
		return "type error"
	case NameError:
		return "name error"
	case DefinitionError:
		return "definition error"
	case AnnotationError:
		return "annotation error"
	case OptionError:
		return "option error"
	case InternalError:
		return "internal error"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// Error is the single error type the walker and validator raise,
// carrying a Code, the source line from the offending dfast.Tree, and
// a frame-capturing wrapped cause.
type Error struct {
	Code Code
	Line int
	err  error
}

// Errorf builds a new *Error with a formatted message, capturing a
// stack frame the way xerrors.Errorf does.
func Errorf(code Code, line int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Line: line, err: xerrors.Errorf(format, args...)}
}

// Wrap attaches code/line context to an existing error without
// discarding it -- %w-style wrapping, so errors.Is/As still see
// through to cause.
func Wrap(code Code, line int, cause error, msg string) *Error {
	return &Error{Code: code, Line: line, err: xerrors.Errorf("%s: %w", msg, cause)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Code, e.err)
}

func (e *Error) Unwrap() error { return e.err }

// IsInternal reports whether err is an InternalError-coded *Error --
// these are raised as fatal, never recoverable.
func IsInternal(err error) bool {
	var e *Error
	if xerrors.As(err, &e) {
		return e.Code == InternalError
	}
	return false
}

// Warning is a non-fatal diagnostic: deprecated-function use, or a
// constant assertion provably failing at compile time.
type Warning struct {
	Line    int
	Message string
}

// Logger wraps an hclog.Logger for the warning/diagnostic channel the
// driver/CLI flushes at the end of a compilation run.
type Logger struct {
	hclog.Logger
}

// NewLogger constructs a leveled, named logger for diag output.
func NewLogger(name string) *Logger {
	return &Logger{Logger: hclog.New(&hclog.LoggerOptions{Name: name, Level: hclog.Info})}
}

// FlushWarnings logs each warning at Warn level.
func (l *Logger) FlushWarnings(warnings []Warning) {
	for _, w := range warnings {
		l.Warn(w.Message, "line", w.Line)
	}
}
