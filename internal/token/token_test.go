package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, src string) []Token {
	t.Helper()
	tz := New("test.h", []byte(src))
	var toks []Token
	for {
		tok, err := tz.Next(false)
		require.NoError(t, err)
		if tok.Type == EOF {
			break
		}
		toks = append(toks, tok)
	}
	return toks
}

func TestTokenizeIdentifiersAndPunct(t *testing.T) {
	toks := collect(t, "API_CLASS() class FLAX_API Foo : public Base {};")
	require.NotEmpty(t, toks)
	assert.Equal(t, Identifier, toks[0].Type)
	assert.Equal(t, "API_CLASS", toks[0].Text)
	assert.Equal(t, Punct, toks[1].Type)
	assert.Equal(t, "(", toks[1].Text)
}

func TestTokenizeScopeResolution(t *testing.T) {
	toks := collect(t, "Flax::String")
	require.Len(t, toks, 3)
	assert.Equal(t, "Flax", toks[0].Text)
	assert.Equal(t, "::", toks[1].Text)
	assert.Equal(t, "String", toks[2].Text)
}

func TestTokenizeStringLiteralWithEscape(t *testing.T) {
	toks := collect(t, `name="Hello \"World\""`)
	var str Token
	for _, tk := range toks {
		if tk.Type == String {
			str = tk
		}
	}
	require.Equal(t, String, str.Type)
	assert.Equal(t, `Hello "World"`, Unquote(str.Text))
}

func TestTokenizeLineNumbers(t *testing.T) {
	toks := collect(t, "int x;\nint y;\n")
	var line2 []Token
	for _, tk := range toks {
		if tk.Line == 2 {
			line2 = append(line2, tk)
		}
	}
	require.NotEmpty(t, line2)
	assert.Equal(t, "int", line2[0].Text)
}

func TestUnterminatedBlockCommentIsFatal(t *testing.T) {
	tz := New("bad.h", []byte("/* unterminated"))
	_, err := tz.Next(false)
	require.Error(t, err)
}

func TestMalformedStringIsFatal(t *testing.T) {
	tz := New("bad.h", []byte(`"unterminated`))
	_, err := tz.Next(false)
	require.Error(t, err)
}

func TestRewindReplaysToken(t *testing.T) {
	tz := New("t.h", []byte("foo bar"))
	first, err := tz.Next(false)
	require.NoError(t, err)
	assert.Equal(t, "foo", first.Text)

	tz.Rewind()
	again, err := tz.Next(false)
	require.NoError(t, err)
	assert.Equal(t, "foo", again.Text)

	second, err := tz.Next(false)
	require.NoError(t, err)
	assert.Equal(t, "bar", second.Text)
}

func TestPeekDoesNotConsume(t *testing.T) {
	tz := New("t.h", []byte("alpha beta"))
	peeked, err := tz.Peek(false)
	require.NoError(t, err)
	assert.Equal(t, "alpha", peeked.Text)

	next, err := tz.Next(false)
	require.NoError(t, err)
	assert.Equal(t, "alpha", next.Text)
}

func TestSkipUntilCapturesElidedText(t *testing.T) {
	tz := New("t.h", []byte("foo bar ) rest"))
	elided, err := tz.SkipUntil(Punct, ")", true)
	require.NoError(t, err)
	assert.Contains(t, elided, "foo")
	assert.Contains(t, elided, "bar")

	next, err := tz.Next(false)
	require.NoError(t, err)
	assert.Equal(t, "rest", next.Text)
}

func TestWhitespaceAndNewlineTriviaIncludable(t *testing.T) {
	tz := New("t.h", []byte("a \nb"))
	var types []Type
	for {
		tok, err := tz.Next(true)
		require.NoError(t, err)
		if tok.Type == EOF {
			break
		}
		types = append(types, tok.Type)
	}
	assert.Contains(t, types, Whitespace)
	assert.Contains(t, types, Newline)
}
