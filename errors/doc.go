// Package errors provides standardized error handling patterns for TabStreams components.
//
// # Overview
//
// The errors package implements a three-class error classification system for
// stream processing: Transient (temporary, retryable), Invalid (bad input,
// non-retryable), and Fatal (unrecoverable, stop processing).
//
// This classification enables components to make informed decisions about
// retries, graceful degradation, and failure recovery without hardcoded error
// string matching. It integrates with Go's standard error handling patterns,
// supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Component", "Method", "action")  // For retryable errors
//	errors.WrapInvalid(err, "Component", "Method", "action")    // For validation errors
//	errors.WrapFatal(err, "Component", "Method", "action")      // For unrecoverable errors
//
// The generic Wrap() function applies the format without changing the
// original error's classification.
//
// # Fault boundaries in the repair pipeline
//
// The two fault classes of the repair pipeline map directly onto this system:
//
//   - Script compilation faults are Fatal (ErrScriptCompile): a processor
//     must not be constructed around a script that does not compile, and
//     there is no pass-through fallback.
//   - Per-record evaluation faults are recovered locally by the evaluator and
//     never become errors on the processing path at all; they are logged and
//     downgraded to a discard decision.
//
// # Classification checks
//
//	if errors.IsTransient(err) {
//	    // retry with backoff
//	} else if errors.IsFatal(err) {
//	    // stop processing, escalate to operator
//	}
//
// Context errors (context.DeadlineExceeded, context.Canceled) are classified
// as Transient, enabling consistent handling of context-based timeouts.
package errors
