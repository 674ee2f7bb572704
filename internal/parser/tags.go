package parser

import (
	"strings"

	"github.com/flaxengine/bindgen/internal/bgerr"
	"github.com/flaxengine/bindgen/internal/token"
)

// tagEntry is one "tag[=value]" pair from an API_* parameter list, with the
// optional "*" / "<...>" suffix already appended to Value.
type tagEntry struct {
	Key   string
	Value string
}

// tagList preserves declaration order while offering map-style lookup; the
// parser dispatch uses order only for readability, correctness never
// depends on it.
type tagList struct {
	entries []tagEntry
}

func (t *tagList) has(key string) bool {
	_, ok := t.get(key)
	return ok
}

func (t *tagList) get(key string) (string, bool) {
	key = strings.ToLower(key)
	for _, e := range t.entries {
		if strings.ToLower(e.Key) == key {
			return e.Value, true
		}
	}
	return "", false
}

func (t *tagList) add(key, value string) {
	t.entries = append(t.entries, tagEntry{Key: key, Value: value})
}

// parseTagList parses "(tag[=value], ...)". The opening "("
// must already be the next token.
func (p *Parser) parseTagList() (*tagList, error) {
	if _, err := p.tz.Expect(token.Punct, "("); err != nil {
		return nil, err
	}
	tags := &tagList{}
	for {
		tok, err := p.tz.Peek(false)
		if err != nil {
			return nil, err
		}
		if tok.Type == token.Punct && tok.Text == ")" {
			p.tz.Next(false)
			return tags, nil
		}
		key, value, err := p.parseOneTag()
		if err != nil {
			return nil, err
		}
		tags.add(key, value)

		sep, err := p.tz.Next(false)
		if err != nil {
			return nil, err
		}
		if sep.Type == token.Punct && sep.Text == ")" {
			return tags, nil
		}
		if sep.Type != token.Punct || sep.Text != "," {
			return nil, p.errf("expected ',' or ')' in tag list, got %q", sep.Text)
		}
	}
}

func (p *Parser) parseOneTag() (string, string, error) {
	keyTok, err := p.tz.Next(false)
	if err != nil {
		return "", "", err
	}
	if keyTok.Type != token.Identifier {
		return "", "", p.errf("expected tag name, got %q", keyTok.Text)
	}
	key := keyTok.Text

	eq, err := p.tz.Peek(false)
	if err != nil {
		return "", "", err
	}
	if eq.Type != token.Punct || eq.Text != "=" {
		return key, "", nil
	}
	p.tz.Next(false) // consume '='

	valTok, err := p.tz.Next(false)
	if err != nil {
		return "", "", err
	}
	var value string
	switch valTok.Type {
	case token.String:
		value = token.Unquote(valTok.Text)
	case token.Identifier, token.Number:
		value = valTok.Text
	default:
		return "", "", p.errf("expected tag value, got %q", valTok.Text)
	}

	// Optional trailing '*' or '<...>' suffix appended to the value.
	suffix, err := p.tz.Peek(false)
	if err != nil {
		return "", "", err
	}
	if suffix.Type == token.Punct && suffix.Text == "*" {
		p.tz.Next(false)
		value += "*"
	} else if suffix.Type == token.Punct && suffix.Text == "<" {
		p.tz.Next(false)
		value += "<"
		depth := 1
		for depth > 0 {
			t, err := p.tz.Next(false)
			if err != nil {
				return "", "", err
			}
			if t.Type == token.EOF {
				return "", "", bgerr.New(bgerr.KindSyntax, p.file.Path, t.Line, "unterminated generic suffix in tag value")
			}
			if t.Type == token.Punct && t.Text == "<" {
				depth++
			}
			if t.Type == token.Punct && t.Text == ">" {
				depth--
			}
			value += t.Text
		}
	}
	return key, value, nil
}
