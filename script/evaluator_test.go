package script

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvaluator(opts ...EvaluatorOption) *Evaluator {
	return NewEvaluator(slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
}

func mustCompile(t *testing.T, source string) *Compiled {
	t.Helper()
	compiled, err := Compile(source)
	require.NoError(t, err)
	return compiled
}

func TestEvaluateRepairsRecord(t *testing.T) {
	compiled := mustCompile(t, `
		function process(r, e) {
			var f = tsvToArray(r);
			f[1] = "FIXED";
			return arrayToTsv(f);
		}
	`)

	repaired, ok := testEvaluator().Evaluate(compiled, "a\tb\t", []string{"bad field count"})
	require.True(t, ok)
	assert.Equal(t, "a\tFIXED\t", repaired, "trailing empty field preserved")
}

func TestEvaluateDiscardOnNoReturn(t *testing.T) {
	compiled := mustCompile(t, `function process(r, e) { return; }`)

	repaired, ok := testEvaluator().Evaluate(compiled, "x\ty", nil)
	assert.False(t, ok)
	assert.Empty(t, repaired)
}

func TestEvaluateAlwaysReturningScriptNeverDiscards(t *testing.T) {
	compiled := mustCompile(t, `function process(r, e) { return r; }`)
	evaluator := testEvaluator()

	for _, record := range []string{"", "a", "a\tb", "a\tb\t", "\t\t\t"} {
		repaired, ok := evaluator.Evaluate(compiled, record, []string{"e1"})
		require.True(t, ok, "record %q", record)
		assert.Equal(t, record, repaired)
	}
}

func TestEvaluateErrorsVisibleInOrder(t *testing.T) {
	compiled := mustCompile(t, `
		function process(r, e) {
			return e.length + ":" + e.join("|");
		}
	`)

	repaired, ok := testEvaluator().Evaluate(compiled, "rec",
		[]string{"first", "second", "third"})
	require.True(t, ok)
	assert.Equal(t, "3:first|second|third", repaired)
}

func TestEvaluateEmptyErrors(t *testing.T) {
	compiled := mustCompile(t, `function process(r, e) { return "" + e.length; }`)

	repaired, ok := testEvaluator().Evaluate(compiled, "rec", []string{})
	require.True(t, ok)
	assert.Equal(t, "0", repaired)
}

func TestEvaluateScriptThrowDiscardsWithoutCrashing(t *testing.T) {
	compiled := mustCompile(t, `
		function process(r, e) {
			if (r === "bad") { throw new Error("boom"); }
			return r;
		}
	`)
	evaluator := testEvaluator()

	_, ok := evaluator.Evaluate(compiled, "bad", nil)
	assert.False(t, ok)

	// Subsequent evaluations against the same compiled unit still work.
	repaired, ok := evaluator.Evaluate(compiled, "good", nil)
	require.True(t, ok)
	assert.Equal(t, "good", repaired)
}

func TestEvaluateMissingProcessDiscards(t *testing.T) {
	compiled := mustCompile(t, `var unrelated = 1;`)

	_, ok := testEvaluator().Evaluate(compiled, "rec", nil)
	assert.False(t, ok)
}

func TestEvaluateNonStringOutputDiscards(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"number", `function process(r, e) { return 42; }`},
		{"boolean", `function process(r, e) { return true; }`},
		{"object", `function process(r, e) { return {a: 1}; }`},
		{"array", `function process(r, e) { return tsvToArray(r); }`},
		{"null", `function process(r, e) { return null; }`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			compiled := mustCompile(t, test.source)
			repaired, ok := testEvaluator().Evaluate(compiled, "a\tb", nil)
			assert.False(t, ok)
			assert.Empty(t, repaired)
		})
	}
}

func TestEvaluateEmptyStringIsRepair(t *testing.T) {
	compiled := mustCompile(t, `function process(r, e) { return ""; }`)

	repaired, ok := testEvaluator().Evaluate(compiled, "a\tb", nil)
	require.True(t, ok, "empty string is a value, not a discard")
	assert.Equal(t, "", repaired)
}

func TestEvaluateStateDoesNotLeakBetweenCalls(t *testing.T) {
	compiled := mustCompile(t, `
		function process(r, e) {
			var marker = (typeof leaked === "undefined") ? "clean" : "dirty";
			leaked = "set";
			return marker;
		}
	`)
	evaluator := testEvaluator()

	first, ok := evaluator.Evaluate(compiled, "r1", nil)
	require.True(t, ok)
	assert.Equal(t, "clean", first)

	second, ok := evaluator.Evaluate(compiled, "r2", nil)
	require.True(t, ok)
	assert.Equal(t, "clean", second, "global set in first call must not survive")
}

func TestEvaluateOutputVarDoesNotLeak(t *testing.T) {
	// A script peeking at the reserved output variable sees nothing from
	// a prior evaluation.
	compiled := mustCompile(t, `
		function process(r, e) {
			return (typeof $__tabrep_out === "undefined") ? "unset" : "leaked";
		}
	`)
	evaluator := testEvaluator()

	first, ok := evaluator.Evaluate(compiled, "r1", nil)
	require.True(t, ok)
	assert.Equal(t, "unset", first)

	second, ok := evaluator.Evaluate(compiled, "r2", nil)
	require.True(t, ok)
	assert.Equal(t, "unset", second)
}

func TestEvaluateHelpersRoundTrip(t *testing.T) {
	compiled := mustCompile(t, `
		function process(r, e) {
			return arrayToTsv(tsvToArray(r));
		}
	`)
	evaluator := testEvaluator()

	for _, record := range []string{
		"a\tb\tc",
		"a\t\tc",
		"a\tb\t",
		"a\t\t",
		"\t",
		"single-field",
		"",
	} {
		repaired, ok := evaluator.Evaluate(compiled, record, nil)
		require.True(t, ok, "record %q", record)
		assert.Equal(t, record, repaired, "record %q", record)
	}
}

func TestEvaluateTimeoutInterruptsRunawayScript(t *testing.T) {
	compiled := mustCompile(t, `function process(r, e) { while (true) {} }`)
	evaluator := testEvaluator(WithTimeout(50 * time.Millisecond))

	start := time.Now()
	_, ok := evaluator.Evaluate(compiled, "rec", nil)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestEvaluateConcurrentSharedCompiledUnit(t *testing.T) {
	compiled := mustCompile(t, `
		function process(r, e) {
			var f = tsvToArray(r);
			return arrayToTsv(f.reverse());
		}
	`)
	evaluator := testEvaluator()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				repaired, ok := evaluator.Evaluate(compiled, "a\tb\tc", nil)
				if !ok || repaired != "c\tb\ta" {
					t.Errorf("got %q ok=%v", repaired, ok)
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
