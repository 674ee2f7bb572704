// Package semantic implements the semantic analyzer: it walks a
// parsed module, resolves base/interface references, computes the derived
// properties the data model reserves for it (scripting-object
// ancestry, POD-ness, script-vtable layout, auto-serialization lists,
// synthesized field accessors) and enforces the remaining invariants that
// only make sense once the whole module is in hand.
package semantic

import (
	"github.com/flaxengine/bindgen/internal/bgerr"
	"github.com/flaxengine/bindgen/internal/model"
	"github.com/flaxengine/bindgen/internal/resolver"
)

// scriptingObjectRoots seeds the ancestry ascent: a class inheriting
// (transitively) from one of these is a scripting object.
var scriptingObjectRoots = map[string]bool{
	"ScriptingObject": true,
	"Asset":           true,
	"Actor":           true,
}

// state carries the per-module working set the analyzer's passes share:
// memoized ascent results and cycle detection for isScriptingObject/isPod.
type state struct {
	build *resolver.Build

	scriptingObject map[*model.Class]bool
	scriptingVisit  map[*model.Class]bool
	pod             map[*model.Struct]bool
	podVisit        map[*model.Struct]bool
}

// Analyze runs every analysis pass over module in dependency order:
// resolve, then ancestry/POD (which depend on resolution), then the
// accessor/property/vtable/serialization passes that depend on those.
// Returns the first fatal error encountered.
func Analyze(module *model.Module, build *resolver.Build) error {
	s := &state{
		build:           build,
		scriptingObject: map[*model.Class]bool{},
		scriptingVisit:  map[*model.Class]bool{},
		pod:             map[*model.Struct]bool{},
		podVisit:        map[*model.Struct]bool{},
	}

	if err := s.resolveTypedefs(module); err != nil {
		return err
	}
	if err := s.resolveInheritance(module); err != nil {
		return err
	}
	if err := s.computeAncestryAndPod(module); err != nil {
		return err
	}
	if err := s.synthesizeAccessors(module); err != nil {
		return err
	}
	if err := s.validateProperties(module); err != nil {
		return err
	}
	s.computeVTables(module)
	s.computeAutoSerialization(module)
	if err := s.validate(module); err != nil {
		return err
	}
	return nil
}

// walkTypes calls fn for every Class/Struct/Enum/Interface/Typedef node in
// module, depth-first left-to-right.
func walkTypes(n model.Node, fn func(model.Node)) {
	for _, c := range n.Info().Children {
		switch c.(type) {
		case *model.Class, *model.Struct, *model.Enum, *model.Interface, *model.Typedef:
			fn(c)
		}
		walkTypes(c, fn)
	}
}

func (s *state) resolveTypedefs(module *model.Module) error {
	var firstErr error
	walkTypes(module, func(n model.Node) {
		if firstErr != nil {
			return
		}
		td, ok := n.(*model.Typedef)
		if !ok {
			return
		}
		if err := s.build.ResolveTypedef(td, n.Info().Parent); err != nil {
			firstErr = err
		}
	})
	return firstErr
}

// resolveInheritance resolves BaseType/Interfaces TypeRefs for every class
// and struct, then reclassifies inherited entries by what they actually
// resolve to: the parser assigns position 0 to BaseType and the rest to
// Interfaces, but "interfaces must never appear as base class of
// another interface" and a class's BaseType must itself resolve to a
// Class — so a class declared as ": public ISomething" with no true base
// class is reclassified here rather than left with a bogus BaseType.
func (s *state) resolveInheritance(module *model.Module) error {
	var firstErr error
	walkTypes(module, func(n model.Node) {
		if firstErr != nil {
			return
		}
		switch c := n.(type) {
		case *model.Class:
			if err := s.reclassifyClassInheritance(c); err != nil {
				firstErr = err
			}
		case *model.Struct:
			// Structs may implement interfaces but never have a resolved
			// base pointer used for POD ascent beyond the struct chain
			// itself; BaseType, if present, must resolve to another
			// struct.
			if c.BaseType != nil {
				if _, ok := s.build.Resolve(c.BaseType, n.Info().Parent); !ok {
					firstErr = bgerr.New(bgerr.KindResolution, c.File, c.Line,
						"cannot resolve base type %q of struct %q", c.BaseType.String(), c.Name)
				}
			}
		}
	})
	return firstErr
}

type inheritedEntry struct {
	ref    *model.TypeRef
	access model.Access
}

func (s *state) reclassifyClassInheritance(c *model.Class) error {
	var entries []inheritedEntry
	if c.BaseType != nil {
		entries = append(entries, inheritedEntry{ref: c.BaseType, access: c.BaseAccess})
	}
	for i, ref := range c.Interfaces {
		acc := model.AccessPrivate
		if i < len(c.InterfaceAccesses) {
			acc = c.InterfaceAccesses[i]
		}
		entries = append(entries, inheritedEntry{ref: ref, access: acc})
	}
	if len(entries) == 0 {
		return nil
	}

	var newBase *model.TypeRef
	var newBaseAccess model.Access
	var newInterfaces []*model.TypeRef
	var newAccesses []model.Access
	for _, e := range entries {
		node, ok := s.build.Resolve(e.ref, c.Info().Parent)
		if !ok {
			return bgerr.New(bgerr.KindResolution, c.File, c.Line,
				"cannot resolve base/interface %q of class %q", e.ref.String(), c.Name)
		}
		if _, isIface := node.(*model.Interface); isIface {
			newInterfaces = append(newInterfaces, e.ref)
			newAccesses = append(newAccesses, e.access)
			continue
		}
		if _, isClass := node.(*model.Class); isClass {
			if newBase != nil {
				return bgerr.New(bgerr.KindSemantic, c.File, c.Line,
					"class %q declares more than one base class", c.Name)
			}
			newBase = e.ref
			newBaseAccess = e.access
			c.ResolvedBase = node
			continue
		}
		return bgerr.New(bgerr.KindSemantic, c.File, c.Line,
			"class %q inherits from %q, which is neither a class nor an interface", c.Name, e.ref.String())
	}
	c.BaseType = newBase
	c.BaseAccess = newBaseAccess
	c.Interfaces = newInterfaces
	c.InterfaceAccesses = newAccesses
	if newBase == nil {
		c.ResolvedBase = nil
	}
	return nil
}
