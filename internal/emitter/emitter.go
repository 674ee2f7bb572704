// Package emitter implements the native glue code generator (C8): for each
// module it walks the resolved model in source order and produces a single
// native source with method wrappers, non-POD conversion helpers, event
// bridges, virtual-dispatch trampolines, a runtime-init block, a type
// initializer and auto-serialization bodies.
//
// The generator accumulates output in a bytes.Buffer through a Printf
// helper rather than text/template — the bulk of the emitted text is C++
// fragments assembled from model state, not a fixed skeleton with a few
// substitutions.
package emitter

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/flaxengine/bindgen/internal/bgerr"
	"github.com/flaxengine/bindgen/internal/model"
	"github.com/flaxengine/bindgen/internal/resolver"
)

// Generator holds the state of one module's emission pass.
type Generator struct {
	Buf      bytes.Buffer
	build    *resolver.Build
	module   *model.Module
	includes map[string]bool

	// nonPodSeen avoids emitting the same Managed mirror/converter set twice
	// when a struct is referenced from more than one call site.
	nonPodSeen map[*model.Struct]bool
}

// Printf appends a formatted fragment to the accumulated output.
func (g *Generator) Printf(format string, args ...any) {
	fmt.Fprintf(&g.Buf, format, args...)
}

// require records that generated-path must #include the given header,
// tracked so the final output lists the minimum header set in sorted order.
func (g *Generator) require(header string) {
	g.includes[header] = true
}

// Emit renders the complete native glue source for module.
// Traversal order is depth-first left-to-right over File/type children,
// exactly as they appear in the model — the emitter never reorders
// sibling nodes, so regenerating from an unchanged model byte-for-byte
// reproduces the previous output.
func Emit(build *resolver.Build, module *model.Module) ([]byte, error) {
	g := &Generator{
		build:      build,
		module:     module,
		includes:   map[string]bool{},
		nonPodSeen: map[*model.Struct]bool{},
	}

	for _, child := range module.Children {
		file, ok := child.(*model.File)
		if !ok {
			continue
		}
		for _, t := range file.Children {
			if err := g.emitType(t); err != nil {
				return nil, bgerr.Wrap(bgerr.KindIO, file.Path, 0, err)
			}
		}
	}

	var out bytes.Buffer
	out.WriteString("// This code was automatically generated.\n")
	out.WriteString("// Changes to this file will be lost if the code is regenerated.\n\n")
	g.require("Engine/Scripting/ScriptingType.h")
	g.require("Engine/Scripting/ManagedCLR/MUtils.h")
	for _, h := range g.sortedIncludes() {
		out.WriteString("#include \"" + h + "\"\n")
	}
	out.WriteByte('\n')
	out.Write(g.Buf.Bytes())
	return out.Bytes(), nil
}

func (g *Generator) sortedIncludes() []string {
	out := make([]string, 0, len(g.includes))
	for h := range g.includes {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// emitType dispatches on node kind, mirroring the traversal the semantic
// analyzer uses, but limited to the variants that
// produce glue: Class, Struct, Interface, Enum, InjectCode. Typedef and
// LangType contribute nothing of their own.
func (g *Generator) emitType(n model.Node) error {
	switch t := n.(type) {
	case *model.Class:
		if err := g.emitClass(t); err != nil || t.IsTemplate {
			return err
		}
	case *model.Struct:
		if err := g.emitStruct(t); err != nil || t.IsTemplate {
			return err
		}
	case *model.Interface:
		g.emitInterface(t)
	case *model.Enum:
		g.emitEnum(t)
	case *model.InjectCode:
		g.emitInjectCode(t)
	case *model.Typedef:
		// A specialization typedef stands for a first-class type; emit the
		// synthesized clone in the typedef's place. Aliases add nothing.
		if !t.IsAlias && t.Resolved != nil {
			return g.emitType(t.Resolved)
		}
	}
	for _, c := range n.Info().Children {
		if err := g.emitType(c); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) emitInjectCode(ic *model.InjectCode) {
	if ic.Lang != "" && ic.Lang != "cpp" && ic.Lang != "c++" {
		return
	}
	g.Printf("%s\n", ic.Text)
}
