package emitter

import (
	"strings"

	"github.com/flaxengine/bindgen/internal/model"
)

// emitEventBridge renders the event machinery for one event: an
// invoker that marshals the delegate arguments into the managed runtime, a
// bind/unbind entry point that attaches the invoker to the native delegate,
// and the parallel generic scripting-event pair driven through Variant.
func (g *Generator) emitEventBridge(owner model.Node, e *model.Event) {
	g.require("Engine/Scripting/ScriptingEvents.h")
	name := nativeTypeName(owner)
	args := e.GenericArgs

	var sig []string
	for i, t := range args {
		sig = append(sig, g.cppParamType(t, owner)+" arg"+itoa(i))
	}

	g.Printf("static void %s_Invoke(%s* instance%s)\n{\n", e.Name, name, prefixed(sig))
	if len(args) > 0 {
		g.Printf("    MObject* params[%d];\n", len(args))
		for i, t := range args {
			g.Printf("    params[%d] = %s;\n", i, g.boxExpr(t, "arg"+itoa(i), owner))
		}
		g.Printf("    ScriptingEvents::Invoke(instance, %s::TypeInitializer, StringAnsiView(\"%s\"), Span<MObject*>(params, %d));\n",
			name, e.Name, len(args))
	} else {
		g.Printf("    ScriptingEvents::Invoke(instance, %s::TypeInitializer, StringAnsiView(\"%s\"), Span<MObject*>(nullptr, 0));\n",
			name, e.Name)
	}
	g.Printf("}\n\n")

	receiver := "instance->"
	if e.IsStatic {
		receiver = name + "::"
	}
	g.Printf("static void Internal_%s_Bind(%s* instance, bool bind)\n{\n", e.Name, name)
	g.Printf("    if (bind)\n")
	g.Printf("        %s%s.Bind(&%s_Invoke, instance);\n", receiver, e.Name, e.Name)
	g.Printf("    else\n")
	g.Printf("        %s%s.Unbind(&%s_Invoke, instance);\n", receiver, e.Name, e.Name)
	g.Printf("}\n\n")

	// Generic scripting-event pair: the same delegate surfaced through the
	// Variant-based ScriptingEvents table for non-C# consumers.
	g.Printf("static void %s_ScriptingInvoke(%s* instance%s)\n{\n", e.Name, name, prefixed(sig))
	if len(args) > 0 {
		g.Printf("    Variant params[%d];\n", len(args))
		for i := range args {
			g.Printf("    params[%d] = Variant(arg%d);\n", i, i)
		}
		g.Printf("    ScriptingEvents::Event(instance, %s::TypeInitializer, StringAnsiView(\"%s\"), Span<Variant>(params, %d));\n",
			name, e.Name, len(args))
	} else {
		g.Printf("    ScriptingEvents::Event(instance, %s::TypeInitializer, StringAnsiView(\"%s\"), Span<Variant>(nullptr, 0));\n",
			name, e.Name)
	}
	g.Printf("}\n\n")

	g.Printf("static void %s_ScriptingBind(%s* instance, bool bind)\n{\n", e.Name, name)
	g.Printf("    if (bind)\n")
	g.Printf("        %s%s.Bind(&%s_ScriptingInvoke, instance);\n", receiver, e.Name, e.Name)
	g.Printf("    else\n")
	g.Printf("        %s%s.Unbind(&%s_ScriptingInvoke, instance);\n", receiver, e.Name, e.Name)
	g.Printf("}\n\n")
}

func prefixed(sig []string) string {
	if len(sig) == 0 {
		return ""
	}
	return ", " + strings.Join(sig, ", ")
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// boxExpr renders the native-to-managed boxing of one value for the event
// invoker's parameter array.
func (g *Generator) boxExpr(t *model.TypeRef, expr string, scope model.Node) string {
	if t == nil {
		return "nullptr"
	}
	switch t.Name {
	case "String", "StringView", "StringAnsi", "StringAnsiView":
		return "MUtils::ToString(" + expr + ")"
	case "Array", "Span", "BitArray":
		return "(MObject*)MUtils::ToArray(" + expr + ")"
	}
	if t.IsPtr {
		if node, ok := g.build.Resolve(t, scope); ok {
			if _, isClass := node.(*model.Class); isClass {
				return "ScriptingObject::ToManaged((ScriptingObject*)" + expr + ")"
			}
		}
	}
	if node, ok := g.build.Resolve(t, scope); ok {
		if st, isStruct := node.(*model.Struct); isStruct && !st.IsPod {
			return "MUtils::Box(ToManaged(" + expr + "), " + nativeTypeName(st) + "::TypeInitializer.GetType().ManagedClass)"
		}
	}
	return "MUtils::Box(" + expr + ")"
}
