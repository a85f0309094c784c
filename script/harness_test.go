package script

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileValidScript(t *testing.T) {
	compiled, err := Compile(`function process(r, e) { return r; }`)
	require.NoError(t, err)
	require.NotNil(t, compiled)
}

func TestCompileSyntaxError(t *testing.T) {
	compiled, err := Compile(`function process(r, e) { return r; `)
	require.Error(t, err)
	assert.Nil(t, compiled)

	var compErr *CompilationError
	require.True(t, errors.As(err, &compErr))
	assert.NotEmpty(t, compErr.Diagnostic)
	assert.NotNil(t, compErr.Unwrap())
}

func TestCompileWithoutProcessFunction(t *testing.T) {
	// Missing entry point is a runtime fault per record, not a compile error.
	compiled, err := Compile(`var unrelated = 1;`)
	require.NoError(t, err)
	require.NotNil(t, compiled)
}

func TestCompileEmptySource(t *testing.T) {
	compiled, err := Compile("")
	require.NoError(t, err)
	require.NotNil(t, compiled)
}
