package semantic

import (
	"strings"

	"github.com/flaxengine/bindgen/internal/bgerr"
	"github.com/flaxengine/bindgen/internal/model"
)

// compatiblePairs is the whitelist of type pairs a property's getter and
// setter are allowed to disagree on: "String<->StringView,
// Array<T><->Span<T>".
var compatiblePairs = [][2]string{
	{"String", "StringView"},
	{"StringAnsi", "StringAnsiView"},
	{"Array", "Span"},
}

func isCompatiblePair(a, b *model.TypeRef) bool {
	if a == nil || b == nil {
		return false
	}
	for _, pair := range compatiblePairs {
		if (a.Name == pair[0] && b.Name == pair[1]) || (a.Name == pair[1] && b.Name == pair[0]) {
			return true
		}
	}
	return false
}

// validateProperties enforces property sanity: static agreement
// between getter/setter, type agreement modulo the compatible-pair
// whitelist, and a setter that actually takes a value parameter.
func (s *state) validateProperties(module *model.Module) error {
	var firstErr error
	walkTypes(module, func(n model.Node) {
		if firstErr != nil {
			return
		}
		c, ok := n.(*model.Class)
		if !ok {
			return
		}
		for _, p := range c.Properties {
			if err := validateOneProperty(p, c.Name); err != nil {
				firstErr = err
				return
			}
		}
	})
	return firstErr
}

func validateOneProperty(p *model.Property, className string) error {
	if p.Getter == nil && p.Setter == nil {
		return bgerr.New(bgerr.KindSemantic, "", 0,
			"property %q on class %q has neither a getter nor a setter", p.Name, className)
	}
	if p.Setter != nil && len(p.Setter.Parameters) == 0 {
		return bgerr.New(bgerr.KindSemantic, p.Setter.File, p.Setter.Line,
			"setter %q for property %q has no value parameter", p.Setter.Name, p.Name)
	}
	if p.Getter != nil && p.Setter != nil {
		if p.Getter.IsStatic != p.Setter.IsStatic {
			return bgerr.New(bgerr.KindSemantic, p.Setter.File, p.Setter.Line,
				"property %q: getter and setter disagree on static-ness", p.Name)
		}
		getType := p.Getter.ReturnType
		setType := p.Setter.Parameters[0].Type
		if !getType.Equal(setType) && !isCompatiblePair(getType, setType) {
			return bgerr.New(bgerr.KindSemantic, p.Setter.File, p.Setter.Line,
				"property %q: getter type %q and setter type %q are not compatible",
				p.Name, getType.String(), setType.String())
		}
	}
	rewriteGetOrSetComment(p)
	return nil
}

// rewriteGetOrSetComment re-applies the "Gets ..." -> "Gets or sets
// ..." documentation rewrite here too, covering properties the analyzer
// itself assembles or re-touches (the parser already does this for the
// common case at merge time).
func rewriteGetOrSetComment(p *model.Property) {
	if p.Setter == nil || len(p.Comment) == 0 {
		return
	}
	for i, line := range p.Comment {
		trimmed := strings.TrimSpace(strings.TrimPrefix(line, "///"))
		if strings.HasPrefix(trimmed, "Gets or sets") {
			return
		}
		if strings.HasPrefix(trimmed, "Gets ") {
			p.Comment[i] = "/// Gets or sets " + strings.TrimPrefix(trimmed, "Gets ")
			return
		}
	}
}
