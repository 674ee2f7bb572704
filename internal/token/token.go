// Package token implements the generator's lightweight C++ tokenizer:
// it turns a header's bytes into a stream of typed tokens carrying line
// numbers, with one token of rewind and a handful of parser-facing helpers
// (peek, skip-until, expect).
package token

import (
	"fmt"

	"github.com/flaxengine/bindgen/internal/bgerr"
)

// Type identifies the lexical category of a Token.
type Type int

const (
	EOF Type = iota
	Identifier
	Number
	String
	LineComment
	BlockComment
	Hash // preprocessor marker '#'
	Newline
	Whitespace
	Punct // single-character or '::' punctuation
)

func (t Type) String() string {
	switch t {
	case EOF:
		return "EOF"
	case Identifier:
		return "Identifier"
	case Number:
		return "Number"
	case String:
		return "String"
	case LineComment:
		return "LineComment"
	case BlockComment:
		return "BlockComment"
	case Hash:
		return "Hash"
	case Newline:
		return "Newline"
	case Whitespace:
		return "Whitespace"
	case Punct:
		return "Punct"
	default:
		return "Unknown"
	}
}

// Token is one lexeme: its type, exact source text, and 1-based line number.
type Token struct {
	Type Type
	Text string
	Line int
}

// twoCharPuncts is tried before falling back to single-character punctuation.
var twoCharPuncts = []string{"::"}

// singleCharPuncts is the recognized punctuation set.
const singleCharPuncts = "(){}[],;:<>&*=-+|"

// Tokenizer produces tokens from raw header bytes, supporting one token of
// rewind without re-reading the source.
type Tokenizer struct {
	file string
	src  []byte
	pos  int
	line int

	// prev holds the most recently produced token so Rewind can replay it
	// without re-scanning.
	prev    *Token
	prevPos int
	prevLine int

	rewound bool
}

// New creates a Tokenizer over src, attributing tokens to file in errors.
func New(file string, src []byte) *Tokenizer {
	return &Tokenizer{file: file, src: src, line: 1}
}

func (tz *Tokenizer) errf(format string, args ...any) error {
	return bgerr.New(bgerr.KindSyntax, tz.file, tz.line, format, args...)
}

func (tz *Tokenizer) peekByte() (byte, bool) {
	if tz.pos >= len(tz.src) {
		return 0, false
	}
	return tz.src[tz.pos], true
}

func (tz *Tokenizer) at(off int) (byte, bool) {
	if tz.pos+off >= len(tz.src) {
		return 0, false
	}
	return tz.src[tz.pos+off], true
}

// Next produces the next token, skipping Whitespace and Newline unless
// includeTrivia requests them (the parser needs newlines to terminate
// preprocessor directives).
func (tz *Tokenizer) Next(includeTrivia bool) (Token, error) {
	if tz.rewound {
		tz.rewound = false
		if tz.prev != nil {
			return *tz.prev, nil
		}
	}
	for {
		tok, err := tz.lex()
		if err != nil {
			return Token{}, err
		}
		if !includeTrivia && (tok.Type == Whitespace || tok.Type == Newline) {
			continue
		}
		tz.remember(tok)
		return tok, nil
	}
}

func (tz *Tokenizer) remember(tok Token) {
	cp := tok
	tz.prev = &cp
}

// Rewind un-consumes the single most recently returned token, so the next
// call to Next returns it again. Only depth 1 is supported, matching the
// parser's needs.
func (tz *Tokenizer) Rewind() {
	tz.rewound = true
}

// CurrentLineHint returns the tokenizer's current source line, for error
// messages raised between two token reads (e.g. in a parser helper that
// hasn't yet consumed its next token).
func (tz *Tokenizer) CurrentLineHint() int {
	return tz.line
}

// Peek returns the next token without consuming it.
func (tz *Tokenizer) Peek(includeTrivia bool) (Token, error) {
	tok, err := tz.Next(includeTrivia)
	if err != nil {
		return Token{}, err
	}
	tz.Rewind()
	return tok, nil
}

// Expect consumes the next token and errors unless it matches typ (and,
// when text != "", unless its text also matches).
func (tz *Tokenizer) Expect(typ Type, text string) (Token, error) {
	tok, err := tz.Next(false)
	if err != nil {
		return Token{}, err
	}
	if tok.Type != typ || (text != "" && tok.Text != text) {
		want := typ.String()
		if text != "" {
			want = fmt.Sprintf("%q", text)
		}
		return Token{}, tz.errf("expected %s, got %q", want, tok.Text)
	}
	return tok, nil
}

// SkipUntil advances the tokenizer discarding tokens until one with the
// given type and (optional) text is found, returning the elided text when
// capture is true. The terminating token is consumed.
func (tz *Tokenizer) SkipUntil(typ Type, text string, capture bool) (string, error) {
	var elided []byte
	for {
		tok, err := tz.Next(true)
		if err != nil {
			return "", err
		}
		if tok.Type == EOF {
			return "", tz.errf("unexpected end of file while skipping to %s", typ)
		}
		if tok.Type == typ && (text == "" || tok.Text == text) {
			return string(elided), nil
		}
		if capture {
			elided = append(elided, tok.Text...)
		}
	}
}

func (tz *Tokenizer) lex() (Token, error) {
	if tz.pos >= len(tz.src) {
		return Token{Type: EOF, Line: tz.line}, nil
	}
	b := tz.src[tz.pos]
	line := tz.line

	switch {
	case b == '\n':
		tz.pos++
		tz.line++
		return Token{Type: Newline, Text: "\n", Line: line}, nil
	case b == ' ' || b == '\t' || b == '\r':
		start := tz.pos
		for tz.pos < len(tz.src) {
			c := tz.src[tz.pos]
			if c != ' ' && c != '\t' && c != '\r' {
				break
			}
			tz.pos++
		}
		return Token{Type: Whitespace, Text: string(tz.src[start:tz.pos]), Line: line}, nil
	case b == '/' && tz.peek2() == '/':
		start := tz.pos
		for tz.pos < len(tz.src) && tz.src[tz.pos] != '\n' {
			tz.pos++
		}
		return Token{Type: LineComment, Text: string(tz.src[start:tz.pos]), Line: line}, nil
	case b == '/' && tz.peek2() == '*':
		start := tz.pos
		tz.pos += 2
		closed := false
		for tz.pos < len(tz.src) {
			if tz.src[tz.pos] == '\n' {
				tz.line++
			}
			if tz.src[tz.pos] == '*' && tz.pos+1 < len(tz.src) && tz.src[tz.pos+1] == '/' {
				tz.pos += 2
				closed = true
				break
			}
			tz.pos++
		}
		if !closed {
			return Token{}, bgerr.Wrap(bgerr.KindSyntax, tz.file, line, bgerr.ErrUnterminatedComment)
		}
		return Token{Type: BlockComment, Text: string(tz.src[start:tz.pos]), Line: line}, nil
	case b == '"':
		return tz.lexString(line)
	case b == '#':
		tz.pos++
		return Token{Type: Hash, Text: "#", Line: line}, nil
	case isIdentStart(b):
		start := tz.pos
		for tz.pos < len(tz.src) && isIdentCont(tz.src[tz.pos]) {
			tz.pos++
		}
		return Token{Type: Identifier, Text: string(tz.src[start:tz.pos]), Line: line}, nil
	case isDigit(b):
		start := tz.pos
		for tz.pos < len(tz.src) && (isDigit(tz.src[tz.pos]) || tz.src[tz.pos] == '.' || tz.src[tz.pos] == 'x' ||
			tz.src[tz.pos] == 'X' || isHexDigit(tz.src[tz.pos]) || tz.src[tz.pos] == 'f' || tz.src[tz.pos] == 'F' ||
			tz.src[tz.pos] == 'u' || tz.src[tz.pos] == 'U' || tz.src[tz.pos] == 'l' || tz.src[tz.pos] == 'L') {
			tz.pos++
		}
		return Token{Type: Number, Text: string(tz.src[start:tz.pos]), Line: line}, nil
	default:
		for _, p := range twoCharPuncts {
			if tz.matchAhead(p) {
				tz.pos += len(p)
				return Token{Type: Punct, Text: p, Line: line}, nil
			}
		}
		if indexByte(singleCharPuncts, b) {
			tz.pos++
			return Token{Type: Punct, Text: string(b), Line: line}, nil
		}
		// Unrecognized byte: treat as a single-character punctuation so the
		// parser can decide whether it cares (e.g. '~', '%').
		tz.pos++
		return Token{Type: Punct, Text: string(b), Line: line}, nil
	}
}

func (tz *Tokenizer) lexString(line int) (Token, error) {
	start := tz.pos
	tz.pos++ // opening quote
	for {
		if tz.pos >= len(tz.src) {
			return Token{}, bgerr.Wrap(bgerr.KindSyntax, tz.file, line, bgerr.ErrMalformedString)
		}
		c := tz.src[tz.pos]
		if c == '\\' {
			tz.pos += 2
			continue
		}
		if c == '\n' {
			return Token{}, bgerr.Wrap(bgerr.KindSyntax, tz.file, line, bgerr.ErrMalformedString)
		}
		tz.pos++
		if c == '"' {
			break
		}
	}
	return Token{Type: String, Text: string(tz.src[start:tz.pos]), Line: line}, nil
}

func (tz *Tokenizer) peek2() byte {
	b, ok := tz.at(1)
	if !ok {
		return 0
	}
	return b
}

func (tz *Tokenizer) matchAhead(s string) bool {
	if tz.pos+len(s) > len(tz.src) {
		return false
	}
	return string(tz.src[tz.pos:tz.pos+len(s)]) == s
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func indexByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

// Unquote strips the surrounding double quotes and resolves \" escapes from
// a String token's raw text.
func Unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	inner := raw[1 : len(raw)-1]
	out := make([]byte, 0, len(inner))
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) && inner[i+1] == '"' {
			out = append(out, '"')
			i++
			continue
		}
		out = append(out, inner[i])
	}
	return string(out)
}
