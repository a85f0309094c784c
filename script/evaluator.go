package script

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dop251/goja"
)

// Evaluator runs a compiled repair script against individual records.
//
// Each call to Evaluate builds a fresh goja runtime, so no script-visible
// state survives from one record to the next. The Evaluator itself holds
// no per-record state and is safe for concurrent use; concurrent callers
// each get their own runtime around the shared Compiled unit.
type Evaluator struct {
	logger  *slog.Logger
	timeout time.Duration
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithTimeout bounds a single evaluation. A script still running when the
// timeout fires is interrupted and the record is discarded. Zero means no
// bound, which matches the default: scripts are trusted and usually tiny.
func WithTimeout(d time.Duration) EvaluatorOption {
	return func(e *Evaluator) {
		e.timeout = d
	}
}

// NewEvaluator creates an Evaluator logging evaluation faults through the
// given logger.
func NewEvaluator(logger *slog.Logger, opts ...EvaluatorOption) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Evaluator{logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs the compiled script once against a record and its
// validation errors.
//
// The returned bool reports whether the script produced a repair: true
// means record carries the corrected line, false means discard. Every
// fault path (script throws, missing process function, interrupt, output
// not a string) downgrades to discard for that record; faults never
// propagate to the caller and never invalidate the compiled unit.
//
// The errors slice order is visible to the script as-is.
func (e *Evaluator) Evaluate(compiled *Compiled, record string, errs []string) (string, bool) {
	// Fresh runtime per record keeps evaluations fully isolated.
	vm := goja.New()

	vm.Set(recordVar, record)
	vm.Set(errorsVar, errorsArray(vm, errs))

	if e.timeout > 0 {
		timer := time.AfterFunc(e.timeout, func() {
			vm.Interrupt("evaluation timed out")
		})
		defer timer.Stop()
	}

	if err := e.run(vm, compiled); err != nil {
		e.logger.Warn("repair script evaluation failed",
			"error", err,
			"record_len", len(record),
			"error_count", len(errs))
		return "", false
	}

	out := vm.Get(outputVar)
	if out == nil || goja.IsUndefined(out) || goja.IsNull(out) {
		return "", false
	}

	repaired, ok := out.Export().(string)
	if !ok {
		e.logger.Warn("repair script returned non-string output",
			"output_type", fmt.Sprintf("%T", out.Export()))
		return "", false
	}

	return repaired, true
}

// run executes the compiled program, converting engine panics into errors
// so a misbehaving script cannot take down the worker.
func (e *Evaluator) run(vm *goja.Runtime, compiled *Compiled) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script engine panic: %v", r)
		}
	}()

	_, err = vm.RunProgram(compiled.prog)
	return err
}

// errorsArray builds a real JavaScript array from the error strings so
// the user script gets Array.prototype methods, not a wrapped Go slice.
func errorsArray(vm *goja.Runtime, errs []string) *goja.Object {
	vals := make([]interface{}, len(errs))
	for i, s := range errs {
		vals[i] = s
	}
	return vm.NewArray(vals...)
}
