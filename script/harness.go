package script

import (
	"fmt"

	"github.com/dop251/goja"
)

// Reserved global names the harness uses to talk to the user script.
// The prefix makes accidental collision with operator scripts unlikely.
const (
	recordVar = "$__tabrep_record"
	errorsVar = "$__tabrep_errors"
	outputVar = "$__tabrep_out"
)

// helperSource is prepended to every user script. The split keeps
// trailing empty fields: "a\tb\t".split("\t") is ["a","b",""].
const helperSource = `
function tsvToArray(line) { return String(line).split("\t"); }
function arrayToTsv(fields) { return fields.join("\t"); }
`

// Compiled is an immutable compiled harness+script unit. It is produced
// once at processor construction and reused for every evaluation; a
// goja.Program is safe for concurrent read-only use, so one Compiled may
// back many workers.
type Compiled struct {
	prog *goja.Program
}

// CompilationError reports that the harness+user source failed to
// compile. It carries the engine diagnostic and is fatal to processor
// construction.
type CompilationError struct {
	Diagnostic string
	Err        error
}

// Error implements the error interface.
func (e *CompilationError) Error() string {
	return fmt.Sprintf("script compilation failed: %s", e.Diagnostic)
}

// Unwrap returns the underlying engine error.
func (e *CompilationError) Unwrap() error {
	return e.Err
}

// Compile wraps the user source in the harness and compiles it once.
//
// The assembled program is, in order: the tab helpers, the verbatim user
// source, a declaration binding the reserved output variable to the
// result of calling process with the reserved inputs, and a trailing
// null so the program's completion value is never the script result.
//
// The user source is not validated beyond what the engine's parser
// enforces. A script that never defines process still compiles; the
// missing entry point surfaces as a per-record evaluation fault.
func Compile(source string) (*Compiled, error) {
	full := helperSource +
		"\n" + source + "\n" +
		"var " + outputVar + " = process(" + recordVar + ", " + errorsVar + ");\n" +
		"null;\n"

	prog, err := goja.Compile("repair_script", full, false)
	if err != nil {
		return nil, &CompilationError{Diagnostic: err.Error(), Err: err}
	}

	return &Compiled{prog: prog}, nil
}
