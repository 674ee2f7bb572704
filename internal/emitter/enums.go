package emitter

import (
	"github.com/flaxengine/bindgen/internal/model"
)

// nativeQualifiedName renders the C++ spelling of n including enclosing
// types ("Outer::Inner") — needed for enums declared inside a class,
// struct or interface body.
func nativeQualifiedName(n model.Node) string {
	name := nativeTypeName(n)
	for p := n.Info().Parent; p != nil; p = p.Info().Parent {
		switch p.(type) {
		case *model.Class, *model.Struct, *model.Interface:
			name = nativeTypeName(p) + "::" + name
		default:
			return name
		}
	}
	return name
}

// emitEnum renders the item table and type initializer for one enum.
// Enums carry no wrappers of their own — they are POD value types —
// but the managed side needs the name/value table to mirror them.
func (g *Generator) emitEnum(e *model.Enum) {
	g.requireDeclaringHeader(e)

	name := nativeTypeName(e)
	qualified := nativeQualifiedName(e)

	g.Printf("// %s\n\n", model.FullName(e))
	g.Printf("static const ScriptingEnum::Item %s_Items[] = {\n", name)
	for _, entry := range e.Entries {
		g.Printf("    { \"%s\", (uint64)%s::%s },\n", entry.Name, qualified, entry.Name)
	}
	g.Printf("    { nullptr, 0 },\n")
	g.Printf("};\n\n")

	g.Printf("ScriptingTypeInitializer %s_TypeInitializer(\n", name)
	g.Printf("    GetBinaryModule%s(),\n", g.module.Name)
	g.Printf("    StringAnsiView(\"%s\"),\n", model.FullName(e))
	g.Printf("    sizeof(%s),\n", qualified)
	g.Printf("    %s_Items);\n\n", name)
}
