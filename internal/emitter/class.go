package emitter

import (
	"github.com/flaxengine/bindgen/internal/model"
)

// exposedFunctions returns the functions of c that cross the boundary, in
// emission order: declared functions and synthesized field accessors (both
// already in Functions, in source order), then merged property accessors.
// Hidden and noProxy members never leave the native side.
func exposedFunctions(fns []*model.Function, props []*model.Property) []*model.Function {
	var out []*model.Function
	for _, fn := range fns {
		if fn.IsHidden || fn.NoProxy {
			continue
		}
		out = append(out, fn)
	}
	for _, p := range props {
		if p.Getter != nil && !p.Getter.IsHidden && !p.Getter.NoProxy {
			out = append(out, p.Getter)
		}
		if p.Setter != nil && !p.Setter.IsHidden && !p.Setter.NoProxy {
			out = append(out, p.Setter)
		}
	}
	return out
}

// requireDeclaringHeader records the header that declares n in the include
// set, walking up to the owning File node.
func (g *Generator) requireDeclaringHeader(n model.Node) {
	for cur := n; cur != nil; cur = cur.Info().Parent {
		if f, ok := cur.(*model.File); ok {
			g.require(f.Path)
			return
		}
	}
}

// emitClass renders the complete glue block for one class: the
// wrapper namespace with internal-call wrappers, event bridges and virtual
// trampolines, the runtime-init registration block, the type initializer,
// and the auto-serialization bodies when requested.
func (g *Generator) emitClass(c *model.Class) error {
	if c.IsTemplate {
		// Templates are never emitted; their typedef instantiations are
		// emitted in place of them.
		return nil
	}
	g.requireDeclaringHeader(c)

	name := nativeTypeName(c)
	helper := name + "Internal"
	fns := exposedFunctions(c.Functions, c.Properties)

	g.Printf("// %s\n\n", model.FullName(c))
	g.Printf("namespace %s\n{\n\n", helper)

	for _, fn := range fns {
		if err := g.emitNonPodDependencies(fn, c); err != nil {
			return err
		}
		g.emitFunctionWrapper(c, fn)
	}
	for _, e := range c.Events {
		g.emitEventBridge(c, e)
	}
	if !c.IsSealed {
		for i, fn := range c.VirtualFunctions() {
			g.emitVirtualTrampoline(c, fn, c.ScriptVTableOffset+i)
		}
	}

	g.emitRuntimeInit(c, fns, c.Events)
	g.Printf("}\n\n")

	g.emitClassInitializer(c, helper, len(c.VirtualFunctions()) > 0)

	if c.IsAutoSerialization {
		g.emitSerialization(name, c.ResolvedBase != nil, c.SerializeMembers)
	}
	return nil
}

// emitRuntimeInit renders the runtime-init block: every wrapper is
// registered as an internal call under FullNameManaged::Internal_UniqueName,
// every event under its Bind entry point.
func (g *Generator) emitRuntimeInit(owner model.Node, fns []*model.Function, events []*model.Event) {
	g.Printf("static void InitRuntime()\n{\n")
	for _, fn := range fns {
		g.Printf("    ADD_INTERNAL_CALL(\"%s\", &Internal_%s);\n",
			internalCallName(owner, fn.UniqueName), fn.UniqueName)
	}
	for _, e := range events {
		g.Printf("    ADD_INTERNAL_CALL(\"%s\", &Internal_%s_Bind);\n",
			internalCallName(owner, e.Name+"_Bind"), e.Name)
	}
	g.Printf("}\n\n")
}

// emitClassInitializer renders the static type-initializer object:
// managed full name, native size, runtime-init callback, spawn/constructor/
// destructor callbacks, base-type initializer pointer and the interface
// implementation table.
func (g *Generator) emitClassInitializer(c *model.Class, helper string, hasVTable bool) {
	name := nativeTypeName(c)

	if len(c.Interfaces) > 0 {
		g.Printf("static const ScriptingType::InterfaceImplementation %s_Interfaces[] = {\n", name)
		for _, ifaceRef := range c.Interfaces {
			ifaceName := ifaceRef.Name
			if node, ok := g.build.Resolve(ifaceRef, c.Info().Parent); ok {
				g.requireDeclaringHeader(node)
				ifaceName = nativeTypeName(node)
			}
			// Offset of the interface sub-object inside the class, computed
			// from a non-null dummy pointer so the cast is resolved at
			// compile time without an instance.
			g.Printf("    { &%s::TypeInitializer, (int16)((intptr)(void*)(%s*)(%s*)1 - 1) },\n",
				ifaceName, ifaceName, name)
		}
		g.Printf("    { nullptr, 0 },\n")
		g.Printf("};\n\n")
	}

	spawn := "&" + name + "::Spawn"
	if c.NoSpawn || c.IsStatic || c.IsAbstract {
		spawn = "nullptr"
	}
	ctor := "&ScriptingObjectsFactory::Create<" + name + ">"
	if c.NoConstructor || c.IsStatic || c.IsAbstract {
		ctor = "nullptr"
	}

	base := "nullptr"
	if c.ResolvedBase != nil && !c.IsBaseTypeHidden {
		base = "&" + nativeTypeName(c.ResolvedBase) + "::TypeInitializer"
	}
	interfaces := "nullptr"
	if len(c.Interfaces) > 0 {
		interfaces = name + "_Interfaces"
	}
	size := "sizeof(" + name + ")"
	if c.IsStatic {
		size = "0"
	}

	g.Printf("ScriptingTypeInitializer %s::TypeInitializer(\n", name)
	g.Printf("    GetBinaryModule%s(),\n", g.module.Name)
	g.Printf("    StringAnsiView(\"%s\"),\n", model.FullName(c))
	g.Printf("    %s,\n", size)
	g.Printf("    &%s::InitRuntime,\n", helper)
	g.Printf("    %s,\n", spawn)
	g.Printf("    %s,\n", ctor)
	g.Printf("    %s,\n", base)
	g.Printf("    %s);\n\n", interfaces)

	if hasVTable && !c.IsSealed {
		g.Printf("// Script vtable: offset %d, size %d\n\n", c.ScriptVTableOffset, c.ScriptVTableSize)
	}
}

// emitSerialization renders the auto-serialization pair walking the
// ordered member list recorded by the semantic analyzer.
func (g *Generator) emitSerialization(name string, hasBase bool, members []model.SerializeMember) {
	g.require("Engine/Serialization/Serialization.h")

	g.Printf("void %s::Serialize(SerializeStream& stream, const void* otherObj)\n{\n", name)
	if hasBase {
		g.Printf("    Base::Serialize(stream, otherObj);\n")
	}
	g.Printf("    SERIALIZE_GET_OTHER_OBJ(%s);\n", name)
	for _, m := range members {
		switch {
		case m.Field != nil:
			g.Printf("    SERIALIZE(%s);\n", m.Field.Name)
		case m.Property != nil && m.Property.Getter != nil:
			g.Printf("    SERIALIZE_MEMBER(%s, %s());\n", m.Property.Name, m.Property.Getter.Name)
		}
	}
	g.Printf("}\n\n")

	g.Printf("void %s::Deserialize(DeserializeStream& stream, ISerializeModifier* modifier)\n{\n", name)
	if hasBase {
		g.Printf("    Base::Deserialize(stream, modifier);\n")
	}
	for _, m := range members {
		switch {
		case m.Field != nil:
			g.Printf("    DESERIALIZE(%s);\n", m.Field.Name)
		case m.Property != nil && m.Property.Setter != nil && m.Property.Getter != nil:
			g.Printf("    {\n")
			g.Printf("        %s value = %s();\n", cppTypeName(m.Property.Type), m.Property.Getter.Name)
			g.Printf("        DESERIALIZE_MEMBER(%s, value);\n", m.Property.Name)
			g.Printf("        %s(value);\n", m.Property.Setter.Name)
			g.Printf("    }\n")
		}
	}
	g.Printf("}\n\n")
}

// emitNonPodDependencies walks a function signature for struct types that
// need a Managed mirror and conversion helpers, emitting each required set once, before its first use.
func (g *Generator) emitNonPodDependencies(fn *model.Function, scope model.Node) error {
	check := func(t *model.TypeRef) error {
		if t == nil {
			return nil
		}
		node, ok := g.build.Resolve(t, scope)
		if !ok {
			return nil
		}
		st, isStruct := node.(*model.Struct)
		if !isStruct || st.IsPod || g.nonPodSeen[st] {
			return nil
		}
		return g.emitNonPodConverters(st)
	}
	if err := check(fn.ReturnType); err != nil {
		return err
	}
	for _, p := range fn.Parameters {
		if err := check(p.Type); err != nil {
			return err
		}
	}
	return nil
}
