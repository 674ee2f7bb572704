package preproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIfdefBasic(t *testing.T) {
	e := New(nil, nil, nil)
	e.Define("FOO", "")
	assert.True(t, e.EvalIfdef("FOO", false))
	assert.False(t, e.EvalIfdef("BAR", false))
	assert.True(t, e.EvalIfdef("BAR", true))
}

func TestIfDisjunctionOfDefines(t *testing.T) {
	e := New(Defines{"PLATFORM_WINDOWS": ""}, nil, nil)
	assert.True(t, e.EvalIf("PLATFORM_WINDOWS || PLATFORM_LINUX"))
	assert.False(t, e.EvalIf("PLATFORM_MAC || PLATFORM_LINUX"))
}

func TestIfLiterals(t *testing.T) {
	e := New(nil, nil, nil)
	assert.True(t, e.EvalIf("true"))
	assert.False(t, e.EvalIf("false"))
	assert.True(t, e.EvalIf("1"))
	assert.False(t, e.EvalIf("0"))
}

func TestIfComplexExpressionDegradesToFalse(t *testing.T) {
	e := New(nil, nil, nil)
	assert.False(t, e.EvalIf("!defined(FOO)"))
	assert.False(t, e.EvalIf("(FOO && BAR)"))
	assert.False(t, e.EvalIf("FOO == 1"))
}

func TestPrecedenceLocalOverridesExternal(t *testing.T) {
	e := New(Defines{"FOO": "0"}, nil, nil)
	e.Define("FOO", "1")
	assert.True(t, e.EvalIf("FOO"))
}
