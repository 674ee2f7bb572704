package parser

import (
	"strconv"
	"strings"

	"github.com/flaxengine/bindgen/internal/bgerr"
	"github.com/flaxengine/bindgen/internal/model"
	"github.com/flaxengine/bindgen/internal/token"
)

// inheritEntry is one ": access Base" inheritance-list member, parsed
// before it is known whether Base resolves to a class or an interface.
type inheritEntry struct {
	access model.Access
	ref    *model.TypeRef
}

// parseClassLike handles API_CLASS/API_STRUCT/API_INTERFACE — they share
// comment/tag/keyword/name/inheritance/brace structure.
func (p *Parser) parseClassLike(line int, kind model.Kind) error {
	comment := p.takeComment()
	tags, err := p.parseTagList()
	if err != nil {
		return err
	}

	kwTok, err := p.tz.Next(false)
	if err != nil {
		return err
	}
	if kwTok.Type != token.Identifier || (kwTok.Text != "class" && kwTok.Text != "struct") {
		return p.errf("expected 'class' or 'struct' keyword, got %q", kwTok.Text)
	}

	name, err := p.parseQualifiedName()
	if err != nil {
		return err
	}

	entries, err := p.parseInheritanceList()
	if err != nil {
		return err
	}

	if _, err := p.tz.Expect(token.Punct, "{"); err != nil {
		return err
	}

	base := model.Base{
		Name:       name,
		NativeName: name,
		Namespace:  "",
		Comment:    comment,
		Attributes: attributesOf(tags),
		Tags:       tagsToMap(tags),
	}
	autoSer := p.pendingAutoSerialization
	p.pendingAutoSerialization = false

	var node model.Node
	switch kind {
	case model.KindClass:
		c := &model.Class{Base: base}
		applyClassTags(c, tags)
		c.IsAutoSerialization = autoSer
		if len(entries) > 0 {
			c.BaseType = entries[0].ref
			c.BaseAccess = entries[0].access
			for _, e := range entries[1:] {
				c.Interfaces = append(c.Interfaces, e.ref)
				c.InterfaceAccesses = append(c.InterfaceAccesses, e.access)
			}
		}
		node = c
	case model.KindStruct:
		s := &model.Struct{Base: base}
		applyStructTags(s, tags)
		s.IsAutoSerialization = autoSer
		if len(entries) > 0 {
			s.BaseType = entries[0].ref
			for _, e := range entries[1:] {
				s.Interfaces = append(s.Interfaces, e.ref)
				s.InterfaceAccesses = append(s.InterfaceAccesses, e.access)
			}
		}
		node = s
	case model.KindInterface:
		if len(entries) > 0 {
			return bgerr.New(bgerr.KindSemantic, p.file.Path, line, "interface %q may not declare a base class", name)
		}
		i := &model.Interface{Base: base}
		node = i
	}

	model.AddChild(p.currentContainer(), node)
	p.pushScope(node)
	p.braceDepth++
	p.access = defaultAccessFor(kind)
	return nil
}

func defaultAccessFor(kind model.Kind) model.Access {
	if kind == model.KindStruct {
		return model.AccessPublic
	}
	return model.AccessPrivate
}

func (p *Parser) parseInheritanceList() ([]inheritEntry, error) {
	tok, err := p.tz.Peek(false)
	if err != nil {
		return nil, err
	}
	if tok.Type != token.Punct || tok.Text != ":" {
		return nil, nil
	}
	p.tz.Next(false)

	var entries []inheritEntry
	for {
		acc := model.AccessPrivate
		nt, err := p.tz.Peek(false)
		if err != nil {
			return nil, err
		}
		if nt.Type == token.Identifier {
			switch nt.Text {
			case "public":
				acc = model.AccessPublic
				p.tz.Next(false)
			case "protected":
				acc = model.AccessProtected
				p.tz.Next(false)
			case "private":
				acc = model.AccessPrivate
				p.tz.Next(false)
			case "virtual":
				p.tz.Next(false)
			}
		}
		ref, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		entries = append(entries, inheritEntry{access: acc, ref: ref})

		sep, err := p.tz.Peek(false)
		if err != nil {
			return nil, err
		}
		if sep.Type == token.Punct && sep.Text == "," {
			p.tz.Next(false)
			continue
		}
		break
	}
	return entries, nil
}

func attributesOf(tags *tagList) string {
	v, _ := tags.get("attributes")
	return v
}

func tagsToMap(tags *tagList) map[string]string {
	m := map[string]string{}
	for _, e := range tags.entries {
		m[strings.ToLower(e.Key)] = e.Value
	}
	return m
}

func applyCommonBase(b *model.Base, tags *tagList) {
	if v, ok := tags.get("name"); ok {
		b.Name = v
	}
	if v, ok := tags.get("namespace"); ok {
		b.Namespace = v
	}
	if v, ok := tags.get("attributes"); ok {
		b.Attributes = v
	}
}

func applyClassTags(c *model.Class, tags *tagList) {
	applyCommonBase(&c.Base, tags)
	c.IsStatic = tags.has("static")
	c.IsSealed = tags.has("sealed")
	c.IsAbstract = tags.has("abstract")
	c.NoSpawn = tags.has("nospawn")
	c.NoConstructor = tags.has("noconstructor")
	c.IsTemplate = tags.has("template")
}

func applyStructTags(s *model.Struct, tags *tagList) {
	applyCommonBase(&s.Base, tags)
	s.ForceNoPod = tags.has("forcenopod")
	s.NoDefault = tags.has("nodefault")
	s.IsTemplate = tags.has("template")
}

// parseEnum handles API_ENUM: optional
// underlying type, then braced entries with optional explicit values.
func (p *Parser) parseEnum(line int) error {
	comment := p.takeComment()
	tags, err := p.parseTagList()
	if err != nil {
		return err
	}

	kwTok, err := p.tz.Next(false)
	if err != nil {
		return err
	}
	if kwTok.Type != token.Identifier || kwTok.Text != "enum" {
		return p.errf("expected 'enum' keyword, got %q", kwTok.Text)
	}
	if nt, err := p.tz.Peek(false); err == nil && nt.Type == token.Identifier && nt.Text == "class" {
		p.tz.Next(false)
	}

	name, err := p.parseQualifiedName()
	if err != nil {
		return err
	}

	var underlying *model.TypeRef
	if nt, err := p.tz.Peek(false); err == nil && nt.Type == token.Punct && nt.Text == ":" {
		p.tz.Next(false)
		underlying, err = p.parseTypeRef()
		if err != nil {
			return err
		}
	}

	if _, err := p.tz.Expect(token.Punct, "{"); err != nil {
		return err
	}

	entries, err := p.parseEnumEntries()
	if err != nil {
		return err
	}
	if nt, err := p.tz.Peek(false); err == nil && nt.Type == token.Punct && nt.Text == ";" {
		p.tz.Next(false)
	}

	e := &model.Enum{
		Base: model.Base{
			Name:       name,
			NativeName: name,
			Comment:    comment,
			Attributes: attributesOf(tags),
			Tags:       tagsToMap(tags),
		},
		Underlying: underlying,
		Entries:    entries,
	}
	applyCommonBase(&e.Base, tags)
	model.AddChild(p.currentContainer(), e)
	return nil
}

func (p *Parser) parseEnumEntries() ([]model.EnumEntry, error) {
	var entries []model.EnumEntry
	var pending []string
	for {
		tok, err := p.tz.Next(true)
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case token.Punct:
			if tok.Text == "}" {
				annotateEnumMax(entries)
				return entries, nil
			}
			if tok.Text == "," {
				pending = nil
				continue
			}
		case token.LineComment, token.BlockComment:
			pending = append(pending, commentLine(tok))
			continue
		case token.Newline, token.Whitespace:
			continue
		case token.Identifier:
			entry := model.EnumEntry{Name: tok.Text, Comment: normalizeComment(pending)}
			pending = nil
			nt, err := p.tz.Peek(false)
			if err != nil {
				return nil, err
			}
			if nt.Type == token.Punct && nt.Text == "=" {
				p.tz.Next(false)
				val, err := p.readEnumValueExpr()
				if err != nil {
					return nil, err
				}
				entry.Value = val
				entry.HasValue = true
			}
			entries = append(entries, entry)
			continue
		case token.EOF:
			return nil, bgerr.New(bgerr.KindSyntax, p.file.Path, tok.Line, "unexpected end of file inside enum body")
		}
	}
}

// readEnumValueExpr reads a raw constant expression up to the next ',' or
// '}' at depth 0, keeping its text verbatim as the entry's value.
func (p *Parser) readEnumValueExpr() (string, error) {
	var b strings.Builder
	depth := 0
	for {
		tok, err := p.tz.Peek(false)
		if err != nil {
			return "", err
		}
		if tok.Type == token.Punct && depth == 0 && (tok.Text == "," || tok.Text == "}") {
			return strings.TrimSpace(b.String()), nil
		}
		p.tz.Next(false)
		if tok.Type == token.Punct && tok.Text == "(" {
			depth++
		}
		if tok.Type == token.Punct && tok.Text == ")" {
			depth--
		}
		b.WriteString(tok.Text)
		b.WriteByte(' ')
	}
}

// annotateEnumMax gives the conventional trailing "count of items" entry
// (commonly named MAX) an automatic "count of items" comment, when
// it carries no explicit value and no comment of its own.
func annotateEnumMax(entries []model.EnumEntry) {
	if len(entries) == 0 {
		return
	}
	last := &entries[len(entries)-1]
	if last.HasValue || len(last.Comment) > 0 {
		return
	}
	upper := strings.ToUpper(last.Name)
	if upper == "MAX" || strings.HasSuffix(upper, "_MAX") || strings.HasSuffix(upper, "COUNT") {
		last.Comment = []string{"/// <summary>", "/// The total count of items in the enum.", "/// </summary>"}
	}
}

// parseTypedef handles API_TYPEDEF: "typedef Target Name;" or
// "using Name = Target;".
func (p *Parser) parseTypedef(line int) error {
	comment := p.takeComment()
	tags, err := p.parseTagList()
	if err != nil {
		return err
	}

	kwTok, err := p.tz.Next(false)
	if err != nil {
		return err
	}

	var name string
	var target *model.TypeRef
	switch kwTok.Text {
	case "typedef":
		target, err = p.parseTypeRef()
		if err != nil {
			return err
		}
		nameTok, err := p.tz.Next(false)
		if err != nil {
			return err
		}
		name = nameTok.Text
	case "using":
		nameTok, err := p.tz.Next(false)
		if err != nil {
			return err
		}
		name = nameTok.Text
		if _, err := p.tz.Expect(token.Punct, "="); err != nil {
			return err
		}
		target, err = p.parseTypeRef()
		if err != nil {
			return err
		}
	default:
		return p.errf("expected 'typedef' or 'using', got %q", kwTok.Text)
	}

	if _, err := p.tz.Expect(token.Punct, ";"); err != nil {
		return err
	}

	td := &model.Typedef{
		Base: model.Base{
			Name:       name,
			NativeName: name,
			Comment:    comment,
			Attributes: attributesOf(tags),
			Tags:       tagsToMap(tags),
		},
		Target:  target,
		IsAlias: tags.has("alias"),
	}
	applyCommonBase(&td.Base, tags)
	model.AddChild(p.currentContainer(), td)
	return nil
}

// parseInjectCode handles API_INJECT_CODE(lang=..., code="text").
func (p *Parser) parseInjectCode(line int) error {
	p.takeComment()
	tags, err := p.parseTagList()
	if err != nil {
		return err
	}
	if nt, err := p.tz.Peek(false); err == nil && nt.Type == token.Punct && nt.Text == ";" {
		p.tz.Next(false)
	}

	lang, _ := tags.get("lang")
	text, _ := tags.get("code")

	ic := &model.InjectCode{
		Base: model.Base{Name: "InjectCode" + strconv.Itoa(line), Tags: tagsToMap(tags)},
		Lang: lang,
		Text: text,
	}
	model.AddChild(p.currentContainer(), ic)
	return nil
}
