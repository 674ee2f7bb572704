package emitter

import (
	"github.com/flaxengine/bindgen/internal/model"
)

// emitInterface renders the glue block for one interface: internal-call
// wrappers for its functions (an interface's functions define a virtual
// table of their own), a runtime-init block and a type initializer so
// implementing classes can reference it from their interface tables.
func (g *Generator) emitInterface(i *model.Interface) {
	g.requireDeclaringHeader(i)

	name := nativeTypeName(i)
	helper := name + "Internal"
	fns := exposedFunctions(i.Functions, nil)

	g.Printf("// %s\n\n", model.FullName(i))
	g.Printf("namespace %s\n{\n\n", helper)
	for _, fn := range fns {
		g.emitFunctionWrapper(i, fn)
	}
	for _, e := range i.Events {
		g.emitEventBridge(i, e)
	}
	g.emitRuntimeInit(i, fns, i.Events)
	g.Printf("}\n\n")

	g.Printf("ScriptingTypeInitializer %s::TypeInitializer(\n", name)
	g.Printf("    GetBinaryModule%s(),\n", g.module.Name)
	g.Printf("    StringAnsiView(\"%s\"),\n", model.FullName(i))
	g.Printf("    &%s::InitRuntime);\n\n", helper)
}
