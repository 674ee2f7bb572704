package emitter

import (
	"strings"

	"github.com/flaxengine/bindgen/internal/model"
)

// passedByPointer reports whether a value of type t crosses the marshalling
// boundary by pointer rather than by value.
func (g *Generator) passedByPointer(t *model.TypeRef, scope model.Node) bool {
	if t == nil {
		return false
	}
	if t.IsPtr {
		return false
	}
	switch t.Name {
	case "String", "StringView", "StringAnsi", "StringAnsiView",
		"Array", "Span", "Dictionary", "HashSet", "BitArray", "BytesContainer",
		"Variant", "VariantType", "Handle",
		"ScriptingObjectReference", "AssetReference", "WeakAssetReference":
		return false
	}
	resolved, ok := g.build.Resolve(t, scope)
	if !ok {
		return false
	}
	_, isStruct := resolved.(*model.Struct)
	return isStruct
}

// cppParamType renders t as a C++ parameter spelling for the ABI wrapper,
// taking the by-pointer ABI rule into account.
func (g *Generator) cppParamType(t *model.TypeRef, scope model.Node) string {
	base := cppTypeName(t)
	if t != nil && t.IsConst {
		base = "const " + base
	}
	if g.passedByPointer(t, scope) {
		return base + "*"
	}
	if t != nil && (t.IsRef || t.IsMoveRef) {
		return base + "&"
	}
	return base
}

// cppTypeName renders the base spelling of t, following generic arguments
// through angle-bracket instantiation syntax.
func cppTypeName(t *model.TypeRef) string {
	if t == nil {
		return "void"
	}
	name := t.Name
	if len(t.Generic) > 0 {
		parts := make([]string, len(t.Generic))
		for i, g := range t.Generic {
			parts[i] = cppTypeName(g)
		}
		name += "<" + strings.Join(parts, ", ") + ">"
	}
	if t.IsPtr {
		name += "*"
	}
	return name
}

// internalCallName is the registration contract: every wrapper appears as
// "{FullNameManaged}::Internal_{UniqueName}".
func internalCallName(owner model.Node, uniqueName string) string {
	return model.FullName(owner) + "::Internal_" + uniqueName
}

// nativeTypeName is the C++ spelling of a model type: the source-level
// NativeName when the declaration carried one (name= tag renames only the
// managed side), the plain name otherwise.
func nativeTypeName(n model.Node) string {
	b := n.Info()
	if b.NativeName != "" {
		return b.NativeName
	}
	return b.Name
}

// emitFunctionWrapper emits the static ABI wrapper for one method and
// records its internal-call name on the glue descriptor.
func (g *Generator) emitFunctionWrapper(owner model.Node, fn *model.Function) {
	byRefReturn := g.passedByPointer(fn.ReturnType, owner) && fn.ReturnType != nil && fn.ReturnType.Name != ""
	returnsByRef := byRefReturn
	wrapperReturn := cppTypeName(fn.ReturnType)
	if returnsByRef {
		wrapperReturn = "void"
	}
	if fn.Glue == nil {
		fn.Glue = &model.GlueDescriptor{}
	}
	fn.Glue.InternalCallName = internalCallName(owner, fn.UniqueName)
	fn.Glue.ReturnsByRef = returnsByRef

	var args []string
	if !fn.IsStatic {
		args = append(args, nativeTypeName(owner)+"* instance")
	}
	var fwd []string
	for _, p := range fn.Parameters {
		args = append(args, g.cppParamType(p.Type, owner)+" "+p.Name)
		fwd = append(fwd, g.forwardParam(p, owner))
	}
	if returnsByRef {
		args = append(args, cppTypeName(fn.ReturnType)+"* resultOut")
	}

	g.Printf("static %s Internal_%s(%s)\n{\n", wrapperReturn, fn.UniqueName, strings.Join(args, ", "))
	recv := nativeTypeName(owner) + "::"
	if !fn.IsStatic {
		recv = "instance->"
	}
	// Synthesized field accessors have no native method behind them; the
	// wrapper reads or writes the field itself.
	if fieldName, isFieldShim := fn.Tag("field"); isFieldShim {
		switch {
		case returnsByRef:
			g.Printf("    *resultOut = %s%s;\n", recv, fieldName)
		case len(fn.Parameters) > 0:
			g.Printf("    %s%s = %s;\n", recv, fieldName, fwd[0])
		default:
			g.Printf("    return %s%s;\n", recv, fieldName)
		}
		g.Printf("}\n\n")
		return
	}
	call := fn.Name + "(" + strings.Join(fwd, ", ") + ")"
	switch {
	case returnsByRef:
		g.Printf("    *resultOut = %s%s;\n", recv, call)
	case fn.ReturnType == nil || fn.ReturnType.Name == "void":
		g.Printf("    %s%s;\n", recv, call)
	default:
		g.Printf("    return %s%s;\n", recv, call)
	}
	g.Printf("}\n\n")
}

// forwardParam renders how the wrapper forwards one parameter to the native
// call: values the ABI hands over by pointer are dereferenced back.
func (g *Generator) forwardParam(p *model.Parameter, scope model.Node) string {
	if g.passedByPointer(p.Type, scope) {
		return "*" + p.Name
	}
	if p.Decoration.IsByRef() && p.Type != nil && !p.Type.IsPtr {
		return "*" + p.Name
	}
	return p.Name
}

