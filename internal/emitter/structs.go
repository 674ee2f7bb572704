package emitter

import (
	"github.com/flaxengine/bindgen/internal/model"
)

// emitStruct renders the glue block for one value type: wrapper
// namespace with internal calls for its functions and field accessors, the
// non-POD conversion helper set when the struct cannot be copied bitwise,
// the type initializer and auto-serialization bodies.
func (g *Generator) emitStruct(st *model.Struct) error {
	if st.IsTemplate {
		return nil
	}
	g.requireDeclaringHeader(st)

	name := nativeTypeName(st)
	helper := name + "Internal"
	fns := exposedFunctions(st.Functions, nil)

	g.Printf("// %s\n\n", model.FullName(st))

	if !st.IsPod {
		if err := g.emitNonPodConverters(st); err != nil {
			return err
		}
	}

	g.Printf("namespace %s\n{\n\n", helper)
	for _, fn := range fns {
		if err := g.emitNonPodDependencies(fn, st); err != nil {
			return err
		}
		g.emitFunctionWrapper(st, fn)
	}
	g.emitRuntimeInit(st, fns, nil)
	g.Printf("}\n\n")

	g.Printf("ScriptingTypeInitializer %s::TypeInitializer(\n", name)
	g.Printf("    GetBinaryModule%s(),\n", g.module.Name)
	g.Printf("    StringAnsiView(\"%s\"),\n", model.FullName(st))
	g.Printf("    sizeof(%s),\n", name)
	g.Printf("    &%s::InitRuntime);\n\n", helper)

	if st.IsAutoSerialization {
		g.emitSerialization(name, st.BaseType != nil, st.SerializeMembers)
	}
	return nil
}

// emitNonPodConverters renders the non-POD helper quartet for one
// struct: the Managed mirror layout, the native-to-managed and
// managed-to-native converters, and the boxing adapter. Each set is
// emitted at most once per output file; nested non-POD struct fields emit
// their own set first so the mirror can reference it.
func (g *Generator) emitNonPodConverters(st *model.Struct) error {
	if g.nonPodSeen[st] {
		return nil
	}
	g.nonPodSeen[st] = true
	g.requireDeclaringHeader(st)

	// Dependencies before dependents: a field of another non-POD struct
	// type needs that struct's mirror declared first.
	for _, f := range st.Fields {
		if f.IsStatic || f.Type == nil {
			continue
		}
		if node, ok := g.build.Resolve(f.Type, st); ok {
			if inner, isStruct := node.(*model.Struct); isStruct && !inner.IsPod && inner != st {
				if err := g.emitNonPodConverters(inner); err != nil {
					return err
				}
			}
		}
	}

	name := nativeTypeName(st)

	g.Printf("struct %sManaged\n{\n", name)
	for _, f := range st.Fields {
		if f.IsStatic {
			continue
		}
		g.Printf("    %s %s;\n", g.managedMirrorType(f.Type, st), f.Name)
	}
	g.Printf("};\n\n")

	g.Printf("%sManaged ToManaged(const %s& value)\n{\n", name, name)
	g.Printf("    %sManaged result;\n", name)
	for _, f := range st.Fields {
		if f.IsStatic {
			continue
		}
		g.emitFieldToManaged(f, st)
	}
	g.Printf("    return result;\n}\n\n")

	g.Printf("%s ToNative(const %sManaged& value)\n{\n", name, name)
	g.Printf("    %s result;\n", name)
	for _, f := range st.Fields {
		if f.IsStatic {
			continue
		}
		g.emitFieldToNative(f, st)
	}
	g.Printf("    return result;\n}\n\n")

	g.Printf("MObject* Box(const %s& value)\n{\n", name)
	g.Printf("    return MUtils::Box(ToManaged(value), %s::TypeInitializer.GetType().ManagedClass);\n", name)
	g.Printf("}\n\n")
	return nil
}

// managedMirrorType is the field spelling inside a Managed mirror struct:
// blittable types keep their native spelling, everything else degrades to
// the managed runtime handle that represents it on the other side.
func (g *Generator) managedMirrorType(t *model.TypeRef, scope model.Node) string {
	if t == nil {
		return "void*"
	}
	if t.IsArray {
		return "MonoArray*"
	}
	switch t.Name {
	case "String", "StringView", "StringAnsi", "StringAnsiView":
		return "MonoString*"
	case "Array", "Span", "BitArray", "BytesContainer":
		return "MonoArray*"
	case "Dictionary", "HashSet", "Variant", "VariantType", "Function",
		"ScriptingObjectReference", "AssetReference", "WeakAssetReference",
		"SoftAssetReference", "SoftObjectReference":
		return "MonoObject*"
	}
	if model.IsBuiltinName(t.Name) {
		return t.Name
	}
	if t.IsPtr {
		return "MonoObject*"
	}
	if node, ok := g.build.Resolve(t, scope); ok {
		switch n := node.(type) {
		case *model.Enum:
			return nativeTypeName(n)
		case *model.Struct:
			if n.IsPod {
				return nativeTypeName(n)
			}
			return nativeTypeName(n) + "Managed"
		case *model.Class, *model.Interface:
			return "MonoObject*"
		case *model.LangType:
			return n.Name
		}
	}
	return t.Name
}

// emitFieldToManaged writes the one-field conversion statement of the
// native-to-managed converter.
func (g *Generator) emitFieldToManaged(f *model.Field, scope model.Node) {
	src := "value." + f.Name
	dst := "result." + f.Name
	t := f.Type
	if t != nil && t.IsArray {
		g.Printf("    %s = MUtils::ToArray(Span<const %s>(%s, %d));\n", dst, cppTypeName(stripArray(t)), src, t.ArraySize)
		return
	}
	g.Printf("    %s = %s;\n", dst, g.toManagedExpr(t, src, scope))
}

func (g *Generator) toManagedExpr(t *model.TypeRef, expr string, scope model.Node) string {
	if t == nil {
		return expr
	}
	switch t.Name {
	case "String", "StringView", "StringAnsi", "StringAnsiView":
		return "MUtils::ToString(" + expr + ")"
	case "Array", "Span", "BitArray", "BytesContainer":
		return "MUtils::ToArray(" + expr + ")"
	case "Dictionary", "HashSet", "Variant", "VariantType", "Function",
		"ScriptingObjectReference", "AssetReference", "WeakAssetReference",
		"SoftAssetReference", "SoftObjectReference":
		return "MUtils::Box(" + expr + ")"
	}
	if model.IsBuiltinName(t.Name) {
		return expr
	}
	if t.IsPtr {
		return "ScriptingObject::ToManaged((ScriptingObject*)" + expr + ")"
	}
	if node, ok := g.build.Resolve(t, scope); ok {
		if st, isStruct := node.(*model.Struct); isStruct && !st.IsPod {
			return "ToManaged(" + expr + ")"
		}
	}
	return expr
}

// emitFieldToNative writes the one-field conversion statement of the
// managed-to-native converter.
func (g *Generator) emitFieldToNative(f *model.Field, scope model.Node) {
	src := "value." + f.Name
	dst := "result." + f.Name
	t := f.Type
	if t != nil && t.IsArray {
		g.Printf("    MUtils::ToNativeArray(%s, %s, %d);\n", dst, src, t.ArraySize)
		return
	}
	g.Printf("    %s = %s;\n", dst, g.toNativeExpr(t, src, scope))
}

func (g *Generator) toNativeExpr(t *model.TypeRef, expr string, scope model.Node) string {
	if t == nil {
		return expr
	}
	switch t.Name {
	case "String", "StringView", "StringAnsi", "StringAnsiView":
		return "MUtils::ToString(" + expr + ")"
	case "Array", "Span", "BitArray", "BytesContainer":
		elem := "byte"
		if len(t.Generic) > 0 {
			elem = cppTypeName(t.Generic[0])
		}
		return "MUtils::ToArray<" + elem + ">(" + expr + ")"
	case "Dictionary", "HashSet", "Variant", "VariantType", "Function",
		"ScriptingObjectReference", "AssetReference", "WeakAssetReference",
		"SoftAssetReference", "SoftObjectReference":
		return "MUtils::Unbox<" + cppTypeName(t) + ">(" + expr + ")"
	}
	if model.IsBuiltinName(t.Name) {
		return expr
	}
	if t.IsPtr {
		base := *t
		base.IsPtr = false
		return "(" + cppTypeName(&base) + "*)ScriptingObject::ToNative(" + expr + ")"
	}
	if node, ok := g.build.Resolve(t, scope); ok {
		if st, isStruct := node.(*model.Struct); isStruct && !st.IsPod {
			return "ToNative(" + expr + ")"
		}
	}
	return expr
}

func stripArray(t *model.TypeRef) *model.TypeRef {
	out := *t
	out.IsArray = false
	out.ArraySize = 0
	return &out
}
