package emitter

import (
	"strings"

	"github.com/flaxengine/bindgen/internal/model"
)

// emitVirtualTrampoline renders the virtual-dispatch wrapper for one
// virtual function: a native override that looks up the managed override in
// the class's script-vtable slot and invokes it, guarded by a thread-local
// re-entrancy flag so an override that calls back into the base class hits
// the native implementation instead of recursing forever.
func (g *Generator) emitVirtualTrampoline(c *model.Class, fn *model.Function, slot int) {
	g.require("Engine/Scripting/ManagedCLR/MMethod.h")
	g.require("Engine/Debug/DebugLog.h")
	name := nativeTypeName(c)
	ret := cppTypeName(fn.ReturnType)
	isVoid := fn.ReturnType == nil || fn.ReturnType.Name == "void"

	var sig []string
	var fwd []string
	for _, p := range fn.Parameters {
		sig = append(sig, g.cppParamType(p.Type, c)+" "+p.Name)
		fwd = append(fwd, p.Name)
	}
	nativeCall := name + "::" + fn.Name + "(" + strings.Join(fwd, ", ") + ")"

	g.Printf("static %s %s_ManagedWrapper(%s* instance%s)\n{\n", ret, fn.UniqueName, name, prefixed(sig))
	g.Printf("    static THREADLOCAL bool reentrant = false;\n")
	g.Printf("    if (reentrant)\n")
	if isVoid {
		g.Printf("    {\n        instance->%s;\n        return;\n    }\n", nativeCall)
	} else {
		g.Printf("        return instance->%s;\n", nativeCall)
	}
	g.Printf("    MMethod* method = (MMethod*)instance->GetType().Script.ScriptVTable[%d];\n", slot)
	g.Printf("    if (method == nullptr)\n")
	if isVoid {
		g.Printf("    {\n        reentrant = true;\n        instance->%s;\n        reentrant = false;\n        return;\n    }\n", nativeCall)
	} else {
		g.Printf("    {\n        reentrant = true;\n        const %s result = instance->%s;\n        reentrant = false;\n        return result;\n    }\n", ret, nativeCall)
	}
	if len(fn.Parameters) > 0 {
		g.Printf("    void* params[%d];\n", len(fn.Parameters))
		for i, p := range fn.Parameters {
			g.Printf("    params[%d] = %s;\n", i, trampolineParam(p))
		}
	}
	g.Printf("    MObject* exception = nullptr;\n")
	paramsArg := "nullptr"
	if len(fn.Parameters) > 0 {
		paramsArg = "params"
	}
	g.Printf("    reentrant = true;\n")
	if isVoid {
		g.Printf("    method->Invoke(instance->GetOrCreateManagedInstance(), %s, &exception);\n", paramsArg)
	} else {
		g.Printf("    MObject* result = method->Invoke(instance->GetOrCreateManagedInstance(), %s, &exception);\n", paramsArg)
	}
	g.Printf("    reentrant = false;\n")
	g.Printf("    if (exception)\n")
	g.Printf("        DebugLog::LogException(exception);\n")
	if !isVoid {
		g.Printf("    return MUtils::Unbox<%s>(result);\n", ret)
	}
	g.Printf("}\n\n")
}

// trampolineParam renders the address the managed invoke receives for one
// native argument: value types go in by address, pointers as-is.
func trampolineParam(p *model.Parameter) string {
	if p.Type != nil && p.Type.IsPtr {
		return p.Name
	}
	return "(void*)&" + p.Name
}
