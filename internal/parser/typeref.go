package parser

import (
	"github.com/flaxengine/bindgen/internal/model"
	"github.com/flaxengine/bindgen/internal/token"
)

// parseTypeRef parses a C++ type spelling: an optional leading "const", a
// (possibly "::"-qualified) identifier, optional "<...>" generic arguments,
// and trailing "&", "&&" or "*" qualifiers.
func (p *Parser) parseTypeRef() (*model.TypeRef, error) {
	ref := &model.TypeRef{}

	tok, err := p.tz.Peek(false)
	if err != nil {
		return nil, err
	}
	if tok.Type == token.Identifier && tok.Text == "const" {
		p.tz.Next(false)
		ref.IsConst = true
	}

	name, err := p.parseQualifiedName()
	if err != nil {
		return nil, err
	}
	if canon, ok := canonicalSpellings[name]; ok {
		name = canon
	}
	ref.Name = name

	next, err := p.tz.Peek(false)
	if err != nil {
		return nil, err
	}
	if next.Type == token.Punct && next.Text == "<" {
		p.tz.Next(false)
		args, err := p.parseGenericArgs()
		if err != nil {
			return nil, err
		}
		ref.Generic = args
	}

	for {
		tok, err := p.tz.Peek(false)
		if err != nil {
			return nil, err
		}
		if tok.Type != token.Punct {
			break
		}
		switch tok.Text {
		case "&":
			p.tz.Next(false)
			nxt, _ := p.tz.Peek(false)
			if nxt.Type == token.Punct && nxt.Text == "&" {
				p.tz.Next(false)
				ref.IsMoveRef = true
			} else {
				ref.IsRef = true
			}
			continue
		case "*":
			p.tz.Next(false)
			ref.IsPtr = true
			continue
		}
		break
	}

	return ref, nil
}

// parseQualifiedName parses an identifier, optionally "::"-qualified,
// skipping a leading export macro token that ends in "_API".
func (p *Parser) parseQualifiedName() (string, error) {
	tok, err := p.tz.Next(false)
	if err != nil {
		return "", err
	}
	if tok.Type != token.Identifier {
		return "", p.errf("expected type name, got %q", tok.Text)
	}
	if isExportMacro(tok.Text) {
		tok, err = p.tz.Next(false)
		if err != nil {
			return "", err
		}
	}
	name := tok.Text
	for {
		colon, err := p.tz.Peek(false)
		if err != nil {
			return "", err
		}
		if colon.Type != token.Punct || colon.Text != "::" {
			break
		}
		p.tz.Next(false)
		seg, err := p.tz.Next(false)
		if err != nil {
			return "", err
		}
		name += "::" + seg.Text
	}
	return name, nil
}

// canonicalSpellings maps common C++ aliases onto the in-build
// primitive spellings so the rest of the pipeline sees one name per type.
var canonicalSpellings = map[string]string{
	"int":      "int32",
	"signed":   "int32",
	"unsigned": "uint32",
	"uint":     "uint32",
	"short":    "int16",
	"ushort":   "uint16",
	"wchar_t":  "Char",
}

func isExportMacro(name string) bool {
	return len(name) > 4 && name[len(name)-4:] == "_API"
}

// parseGenericArgs parses a comma-separated list of TypeRefs up to the
// matching '>' (already consumed the opening '<').
func (p *Parser) parseGenericArgs() ([]*model.TypeRef, error) {
	var args []*model.TypeRef
	for {
		arg, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		tok, err := p.tz.Next(false)
		if err != nil {
			return nil, err
		}
		if tok.Type == token.Punct && tok.Text == ">" {
			return args, nil
		}
		if tok.Type != token.Punct || tok.Text != "," {
			return nil, p.errf("expected ',' or '>' in generic argument list, got %q", tok.Text)
		}
	}
}
