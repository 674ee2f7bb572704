package parser

import (
	"strconv"
	"strings"

	"github.com/flaxengine/bindgen/internal/bgerr"
	"github.com/flaxengine/bindgen/internal/model"
	"github.com/flaxengine/bindgen/internal/token"
)

var commaOrSemicolon = map[string]bool{",": true, ";": true}
var semicolonOnly = map[string]bool{";": true}
var commaOrCloseParen = map[string]bool{",": true, ")": true}

// parseField handles API_FIELD: a type, a
// name, and an optional default value, fixed-array size, or bit-field size.
func (p *Parser) parseField(line int) error {
	comment := p.takeComment()
	tags, err := p.parseTagList()
	if err != nil {
		return err
	}

	typ, err := p.parseTypeRef()
	if err != nil {
		return err
	}
	nameTok, err := p.tz.Next(false)
	if err != nil {
		return err
	}

	f := &model.Field{
		Base: model.Base{
			Name:       nameTok.Text,
			NativeName: nameTok.Text,
			Comment:    comment,
			Attributes: attributesOf(tags),
			Tags:       tagsToMap(tags),
		},
		Type:   typ,
		Access: p.access,
	}
	applyCommonBase(&f.Base, tags)
	f.IsStatic = tags.has("static")
	f.IsConstexpr = tags.has("constexpr")
	f.IsReadOnly = tags.has("readonly")
	f.NoArray = tags.has("noarray")
	f.IsHidden = tags.has("hidden")

	nt, err := p.tz.Peek(false)
	if err != nil {
		return err
	}
	if nt.Type == token.Punct && nt.Text == "[" {
		p.tz.Next(false)
		sizeTok, err := p.tz.Next(false)
		if err != nil {
			return err
		}
		if sizeTok.Type == token.Number {
			n, _ := strconv.Atoi(sizeTok.Text)
			typ.IsArray = true
			typ.ArraySize = n
		} else {
			typ.IsArray = true
		}
		if _, err := p.tz.Expect(token.Punct, "]"); err != nil {
			return err
		}
		nt, err = p.tz.Peek(false)
		if err != nil {
			return err
		}
	}
	if nt.Type == token.Punct && nt.Text == ":" {
		p.tz.Next(false)
		sizeTok, err := p.tz.Next(false)
		if err != nil {
			return err
		}
		n, _ := strconv.Atoi(sizeTok.Text)
		if n > 1 {
			return bgerr.New(bgerr.KindSemantic, p.file.Path, line,
				"bit-field %q wider than 1 bit is not supported", f.Name)
		}
		typ.IsBitField = true
		typ.BitSize = n
		f.BitSize = n
		nt, err = p.tz.Peek(false)
		if err != nil {
			return err
		}
	}
	if nt.Type == token.Punct && nt.Text == "=" {
		p.tz.Next(false)
		val, err := p.readExprUntil(semicolonOnly)
		if err != nil {
			return err
		}
		f.DefaultValue = val
		f.HasDefault = true
	}
	if _, err := p.tz.Expect(token.Punct, ";"); err != nil {
		return err
	}

	if v, ok := tags.get("defaultvalue"); ok {
		f.DefaultValue = v
		f.HasDefault = true
	}

	switch c := p.currentContainer().(type) {
	case *model.Class:
		c.Fields = append(c.Fields, f)
	case *model.Struct:
		c.Fields = append(c.Fields, f)
	case *model.Interface:
		c.Fields = append(c.Fields, f)
	default:
		return p.errf("API_FIELD outside of a class/struct/interface body")
	}
	return nil
}

// parseFunction handles API_FUNCTION and, via parseProperty, API_PROPERTY.
// It reads a return type, name, parameter list, trailing
// const/override and either a ';' or a skipped body.
func (p *Parser) parseFunction(line int) error {
	fn, err := p.parseFunctionCommon()
	if err != nil {
		return err
	}
	switch c := p.currentContainer().(type) {
	case *model.Class:
		c.Functions = append(c.Functions, fn)
		model.AssignUniqueNames(c.Functions)
	case *model.Struct:
		c.Functions = append(c.Functions, fn)
		model.AssignUniqueNames(c.Functions)
	case *model.Interface:
		c.Functions = append(c.Functions, fn)
		model.AssignUniqueNames(c.Functions)
	default:
		return p.errf("API_FUNCTION outside of a class/struct/interface body")
	}
	return nil
}

// parseProperty handles API_PROPERTY: it parses exactly as a function, then
// merges the result into the enclosing class's Properties by the Get*/Set*
// naming convention; the full cross-check of getter/setter
// agreement happens later in the semantic analyzer.
func (p *Parser) parseProperty(line int) error {
	fn, err := p.parseFunctionCommon()
	if err != nil {
		return err
	}
	fn.SetTag("property", "1")

	class, ok := p.currentContainer().(*model.Class)
	if !ok {
		// Struct/interface properties degrade to plain functions; only
		// classes host merged Property nodes.
		switch c := p.currentContainer().(type) {
		case *model.Struct:
			c.Functions = append(c.Functions, fn)
		case *model.Interface:
			c.Functions = append(c.Functions, fn)
		}
		return nil
	}

	propName, isGetter := propertyAccessorName(fn)
	for _, prop := range class.Properties {
		if prop.Info().Name == propName {
			attachAccessor(prop, fn, isGetter)
			return nil
		}
	}
	prop := &model.Property{
		Base: model.Base{Name: propName, Comment: fn.Info().Comment},
	}
	attachAccessor(prop, fn, isGetter)
	if isGetter {
		prop.Type = fn.ReturnType
	} else if len(fn.Parameters) > 0 {
		prop.Type = fn.Parameters[0].Type
	}
	class.Properties = append(class.Properties, prop)
	return nil
}

func attachAccessor(prop *model.Property, fn *model.Function, isGetter bool) {
	if isGetter {
		prop.Getter = fn
		if prop.Type == nil {
			prop.Type = fn.ReturnType
		}
	} else {
		prop.Setter = fn
		if prop.Type == nil && len(fn.Parameters) > 0 {
			prop.Type = fn.Parameters[0].Type
		}
		prop.Info().Comment = rewriteGetterToGetOrSet(prop.Info().Comment)
	}
}

// propertyAccessorName derives the merged property name and accessor kind
// from a Get*/Set*-named function.
func propertyAccessorName(fn *model.Function) (string, bool) {
	name := fn.Info().Name
	switch {
	case strings.HasPrefix(name, "Get") && len(name) > 3:
		return strings.TrimPrefix(name, "Get"), true
	case strings.HasPrefix(name, "Set") && len(name) > 3:
		return strings.TrimPrefix(name, "Set"), false
	default:
		return name, len(fn.Parameters) == 0
	}
}

func (p *Parser) parseFunctionCommon() (*model.Function, error) {
	comment := p.takeComment()
	tags, err := p.parseTagList()
	if err != nil {
		return nil, err
	}

	isVirtual := false
	if nt, err := p.tz.Peek(false); err == nil && nt.Type == token.Identifier && nt.Text == "virtual" {
		p.tz.Next(false)
		isVirtual = true
	}
	if nt, err := p.tz.Peek(false); err == nil && nt.Type == token.Identifier && nt.Text == "static" {
		p.tz.Next(false)
	}

	retType, err := p.parseTypeRef()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.tz.Next(false)
	if err != nil {
		return nil, err
	}

	if _, err := p.tz.Expect(token.Punct, "("); err != nil {
		return nil, err
	}
	params, err := p.parseParameterList()
	if err != nil {
		return nil, err
	}

	isConst := false
	for {
		nt, err := p.tz.Peek(false)
		if err != nil {
			return nil, err
		}
		if nt.Type == token.Identifier && nt.Text == "const" {
			p.tz.Next(false)
			isConst = true
			continue
		}
		if nt.Type == token.Identifier && (nt.Text == "override" || nt.Text == "final") {
			p.tz.Next(false)
			isVirtual = true
			continue
		}
		break
	}

	nt, err := p.tz.Next(false)
	if err != nil {
		return nil, err
	}
	switch {
	case nt.Type == token.Punct && nt.Text == ";":
		// declaration only
	case nt.Type == token.Punct && nt.Text == "=":
		// "= 0" (pure virtual), "= default", "= delete"
		if _, err := p.tz.Next(false); err != nil {
			return nil, err
		}
		isVirtual = true
		if _, err := p.tz.Expect(token.Punct, ";"); err != nil {
			return nil, err
		}
	case nt.Type == token.Punct && nt.Text == "{":
		if err := p.skipBalancedBraces(); err != nil {
			return nil, err
		}
	default:
		return nil, p.errf("expected ';', '=' or function body, got %q", nt.Text)
	}

	fn := &model.Function{
		Base: model.Base{
			Name:       nameTok.Text,
			NativeName: nameTok.Text,
			Comment:    comment,
			Attributes: attributesOf(tags),
			Tags:       tagsToMap(tags),
		},
		ReturnType: retType,
		Parameters: params,
		IsVirtual:  isVirtual,
		IsConst:    isConst,
		Access:     p.access,
	}
	applyCommonBase(&fn.Base, tags)
	fn.NoProxy = tags.has("noproxy")
	fn.IsHidden = tags.has("hidden")
	fn.IsStatic = tags.has("static")
	fn.IsDeprecatedFn = fn.Info().IsDeprecated
	return fn, nil
}

// skipBalancedBraces consumes an inline function body "{ ... }" the parser
// does not model, tolerating nested braces and string/comment tokens.
func (p *Parser) skipBalancedBraces() error {
	depth := 1
	for depth > 0 {
		tok, err := p.tz.Next(true)
		if err != nil {
			return err
		}
		if tok.Type == token.EOF {
			return bgerr.Wrap(bgerr.KindSyntax, p.file.Path, tok.Line, bgerr.ErrMismatchedBrace)
		}
		if tok.Type == token.Punct && tok.Text == "{" {
			depth++
		}
		if tok.Type == token.Punct && tok.Text == "}" {
			depth--
		}
	}
	return nil
}

// parseParameterList parses a function's parameters up to (and consuming)
// the closing ')'. Each parameter may be preceded by "API_PARAM(tags...)".
func (p *Parser) parseParameterList() ([]*model.Parameter, error) {
	var params []*model.Parameter
	for {
		nt, err := p.tz.Peek(false)
		if err != nil {
			return nil, err
		}
		if nt.Type == token.Punct && nt.Text == ")" {
			p.tz.Next(false)
			return params, nil
		}

		var paramTags *tagList
		if nt.Type == token.Identifier && nt.Text == "API_PARAM" {
			p.tz.Next(false)
			paramTags, err = p.parseTagList()
			if err != nil {
				return nil, err
			}
		}

		typ, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}

		param := &model.Parameter{Base: model.Base{}, Type: typ}

		nameTok, err := p.tz.Peek(false)
		if err != nil {
			return nil, err
		}
		if nameTok.Type == token.Identifier {
			p.tz.Next(false)
			param.Info().Name = nameTok.Text
		}

		if dt, err := p.tz.Peek(false); err == nil && dt.Type == token.Punct && dt.Text == "=" {
			p.tz.Next(false)
			val, err := p.readExprUntil(commaOrCloseParen)
			if err != nil {
				return nil, err
			}
			param.DefaultValue = val
			param.HasDefault = true
		}

		if paramTags != nil {
			applyParamTags(param, paramTags)
		}
		params = append(params, param)

		sep, err := p.tz.Next(false)
		if err != nil {
			return nil, err
		}
		if sep.Type == token.Punct && sep.Text == ")" {
			return params, nil
		}
		if sep.Type != token.Punct || sep.Text != "," {
			return nil, p.errf("expected ',' or ')' in parameter list, got %q", sep.Text)
		}
	}
}

func applyParamTags(param *model.Parameter, tags *tagList) {
	if tags.has("ref") {
		param.Decoration |= model.ParamRef
	}
	if tags.has("in") {
		param.Decoration |= model.ParamIn
	}
	if tags.has("out") {
		param.Decoration |= model.ParamOut
	}
	if tags.has("this") {
		param.Decoration |= model.ParamThis
	}
	if tags.has("params") {
		param.Decoration |= model.ParamParams
	}
	if v, ok := tags.get("defaultvalue"); ok {
		param.DefaultValue = v
		param.HasDefault = true
	}
	if v, ok := tags.get("attributes"); ok {
		param.Info().Attributes = v
	}
}

// parseEvent handles API_EVENT: the
// delegate signature must be a bare "Action" or a "Delegate<T1, ...>"; any
// other spelling is a SemanticError.
func (p *Parser) parseEvent(line int) error {
	comment := p.takeComment()
	tags, err := p.parseTagList()
	if err != nil {
		return err
	}

	delegate, err := p.parseTypeRef()
	if err != nil {
		return err
	}
	nameTok, err := p.tz.Next(false)
	if err != nil {
		return err
	}
	if _, err := p.tz.Expect(token.Punct, ";"); err != nil {
		return err
	}

	ev := &model.Event{
		Base: model.Base{
			Name:       nameTok.Text,
			NativeName: nameTok.Text,
			Comment:    comment,
			Attributes: attributesOf(tags),
			Tags:       tagsToMap(tags),
		},
		IsStatic: tags.has("static"),
		Access:   p.access,
	}
	applyCommonBase(&ev.Base, tags)

	switch delegate.Name {
	case "Action":
		if len(delegate.Generic) > 0 {
			return bgerr.New(bgerr.KindSemantic, p.file.Path, line,
				"event %q: Action takes no generic arguments", ev.Name)
		}
		ev.DelegateKind = model.DelegateAction
	case "Delegate":
		ev.DelegateKind = model.DelegateGeneric
		ev.GenericArgs = delegate.Generic
	default:
		return bgerr.New(bgerr.KindSemantic, p.file.Path, line,
			"event %q must be declared as Action or Delegate<...>, got %q", ev.Name, delegate.Name)
	}

	switch c := p.currentContainer().(type) {
	case *model.Class:
		c.Events = append(c.Events, ev)
	case *model.Interface:
		c.Events = append(c.Events, ev)
	default:
		return p.errf("API_EVENT outside of a class/interface body")
	}
	return nil
}
