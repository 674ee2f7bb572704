// Package resolver implements the type resolver: given a TypeRef
// and a calling scope, it locates the matching model.Node across in-build
// primitives, nested lexical scope, and the full set of modules parsed in
// the current build, inflating typedef instantiations along the way.
package resolver

import (
	"strings"
	"sync"

	"github.com/flaxengine/bindgen/internal/bgerr"
	"github.com/flaxengine/bindgen/internal/model"
)

// Build is the cross-module resolution context: every module parsed in the
// current generator invocation, plus the in-build primitives and the
// per-build memoized type cache.
type Build struct {
	Modules  []*model.Module
	Builtins map[string]*model.LangType

	mu        sync.Mutex
	memo      map[string]model.Node
	inProgress map[string]bool // typedef names currently being specialized
}

// NewBuild creates a Build over the given modules, seeding the fixed
// in-build primitive set.
func NewBuild(modules []*model.Module) *Build {
	return &Build{
		Modules:    modules,
		Builtins:   model.NewBuiltins(),
		memo:       map[string]model.Node{},
		inProgress: map[string]bool{},
	}
}

// AddModule registers an additional module (e.g. one loaded from cache) so
// later resolutions can see its types.
func (b *Build) AddModule(m *model.Module) {
	b.Modules = append(b.Modules, m)
}

// Resolve implements the lookup order for ref as used from scope.
// Returns (node, true) on success, (nil, false) when nothing matches — not
// finding a type is not itself an error; callers turn a failed resolution
// of a *required* reference into a bgerr.KindResolution error with their own
// context (the field/parameter/base class being resolved).
func (b *Build) Resolve(ref *model.TypeRef, scope model.Node) (model.Node, bool) {
	if ref == nil {
		return nil, false
	}
	key := memoKey(ref, scope)
	b.mu.Lock()
	if n, ok := b.memo[key]; ok {
		b.mu.Unlock()
		return n, true
	}
	b.mu.Unlock()

	node, ok := b.resolveUncached(ref, scope)
	if ok {
		b.mu.Lock()
		b.memo[key] = node
		b.mu.Unlock()
	}
	return node, ok
}

func (b *Build) resolveUncached(ref *model.TypeRef, scope model.Node) (model.Node, bool) {
	// Step 1: in-build primitives, including pointer-as-IntPtr (a bare
	// pointer with no named pointee resolves to the IntPtr-sized void*).
	if ref.IsPtr && ref.Name == "void" {
		if lt, ok := b.Builtins["void*"]; ok {
			return lt, true
		}
	}
	if lt, ok := b.Builtins[ref.Name]; ok {
		return lt, true
	}

	// Nested-name resolution: "A::B::C" is resolved segment by segment,
	// each segment looked up as a nested type of the
	// previous one, the first segment looked up as usual.
	if strings.Contains(ref.Name, "::") {
		if n, ok := b.resolveQualified(ref, scope); ok {
			return n, true
		}
	} else {
		// Step 2: module-scoped and parent-chain nested lookup.
		if n, ok := b.resolveInScope(ref.Name, scope); ok {
			return n, true
		}
		// Step 3: global scan across all parsed modules.
		if n, ok := b.resolveGlobal(ref.Name); ok {
			return n, true
		}
	}

	// Template instantiation: prefer a typedef that instantiates the named
	// template with these exact generic arguments.
	if len(ref.Generic) > 0 {
		if td, ok := b.findTypedefInstantiation(ref); ok {
			if td.Resolved != nil {
				return td.Resolved, true
			}
		}
	}

	// Reference-removal retry: drop the ref qualifier and look again.
	if ref.IsRef {
		stripped := *ref
		stripped.IsRef = false
		return b.resolveUncached(&stripped, scope)
	}

	return nil, false
}

// resolveInScope performs the recursive ancestor-scope scan:
// starting at scope, check its own children (for a nested type declared
// inside a class/struct/interface) then walk up the parent chain doing the
// same, matching by Name.
func (b *Build) resolveInScope(name string, scope model.Node) (model.Node, bool) {
	for cur := scope; cur != nil; cur = cur.Info().Parent {
		if n, ok := findChildByName(cur, name); ok {
			return n, true
		}
		if base := cur.Info(); base.Name == name {
			// A reference to the enclosing type itself (e.g. a self-typed
			// field or return type) resolves to that type.
			return cur, true
		}
	}
	return nil, false
}

func findChildByName(n model.Node, name string) (model.Node, bool) {
	for _, c := range n.Info().Children {
		if c.Info().Name == name {
			return c, true
		}
		if hasTypeChildren(c) {
			if nested, ok := findChildByName(c, name); ok {
				return nested, true
			}
		}
	}
	return nil, false
}

// hasTypeChildren reports whether n's children can themselves contain named
// sub-types worth recursing into (classes/structs/interfaces/files/modules
// — not members, which are leaves for name-resolution purposes).
func hasTypeChildren(n model.Node) bool {
	switch n.(type) {
	case *model.Module, *model.File, *model.Class, *model.Struct, *model.Interface:
		return true
	default:
		return false
	}
}

// resolveGlobal scans every module in the build for a top-level type named
// name.
func (b *Build) resolveGlobal(name string) (model.Node, bool) {
	for _, m := range b.Modules {
		if n, ok := findChildByName(m, name); ok {
			return n, true
		}
	}
	return nil, false
}

// resolveQualified splits a "::"-separated spelling and resolves segment by
// segment, each subsequent segment looked up among the previous segment's
// children.
func (b *Build) resolveQualified(ref *model.TypeRef, scope model.Node) (model.Node, bool) {
	segments := strings.Split(ref.Name, "::")
	first, rest := segments[0], segments[1:]

	cur, ok := b.resolveInScope(first, scope)
	if !ok {
		cur, ok = b.resolveGlobal(first)
	}
	if !ok {
		return nil, false
	}
	for _, seg := range rest {
		next, ok := findDirectChild(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func findDirectChild(n model.Node, name string) (model.Node, bool) {
	for _, c := range n.Info().Children {
		if c.Info().Name == name {
			return c, true
		}
	}
	return nil, false
}

// findTypedefInstantiation looks for a Typedef, anywhere in the build, whose
// Target names the same template with the same generic arguments as ref.
func (b *Build) findTypedefInstantiation(ref *model.TypeRef) (*model.Typedef, bool) {
	for _, m := range b.Modules {
		if td, ok := findTypedefIn(m, ref); ok {
			return td, true
		}
	}
	return nil, false
}

func findTypedefIn(n model.Node, ref *model.TypeRef) (*model.Typedef, bool) {
	for _, c := range n.Info().Children {
		if td, ok := c.(*model.Typedef); ok && td.Target != nil && td.Target.Equal(ref) {
			return td, true
		}
		if hasTypeChildren(c) {
			if td, ok := findTypedefIn(c, ref); ok {
				return td, true
			}
		}
	}
	return nil, false
}

func memoKey(ref *model.TypeRef, scope model.Node) string {
	var scopeName string
	if scope != nil {
		scopeName = scope.Info().Name
	}
	return scopeName + "#" + ref.String()
}

// ResolveTypedef performs the typedef-resolution step for one
// Typedef node: in alias mode it simply resolves Target and records the
// result; in specialization mode it clones the named template and
// substitutes its generic parameters with Target's generic arguments.
// The thread-local "Current" marker of the
// original design is replaced with an explicit in-progress set threaded
// through the Build so concurrent
// typedef resolution across workers never shares mutable state.
func (b *Build) ResolveTypedef(td *model.Typedef, scope model.Node) error {
	if td.Target == nil {
		return bgerr.New(bgerr.KindResolution, td.Info().File, td.Info().Line,
			"typedef %q has no target type", td.Info().Name)
	}

	b.mu.Lock()
	if b.inProgress[td.Info().Name] {
		b.mu.Unlock()
		return bgerr.New(bgerr.KindResolution, td.Info().File, td.Info().Line,
			"typedef %q recursively references itself during resolution", td.Info().Name)
	}
	b.inProgress[td.Info().Name] = true
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		delete(b.inProgress, td.Info().Name)
		b.mu.Unlock()
	}()

	target, ok := b.Resolve(td.Target, scope)
	if !ok {
		return bgerr.New(bgerr.KindResolution, td.Info().File, td.Info().Line,
			"cannot resolve typedef %q target %q", td.Info().Name, td.Target.String())
	}

	if td.IsAlias || len(td.Target.Generic) == 0 {
		td.Resolved = target
		return nil
	}

	specialized, err := specialize(target, td.Target.Generic, td.Info().Name, td.Info().File, td.Info().Line)
	if err != nil {
		return err
	}
	td.Resolved = specialized
	return nil
}

// templatePlaceholders is the fixed, positional placeholder-name convention
// this generator assumes template authors use (T, T0, T1, ...) since the
// data model records a template's IsTemplate flag but not a declared
// generic-parameter name list. This mirrors the engine's own convention of
// a single-letter or T<N> placeholder and is recorded as a DESIGN.md
// decision rather than left to guesswork at emission time.
func templatePlaceholders(n int) []string {
	if n == 1 {
		return []string{"T"}
	}
	names := make([]string, n)
	for i := range names {
		names[i] = "T" + itoa(i)
	}
	return names
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
