package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAncestorsTerminatesAtModule(t *testing.T) {
	mod := &Module{Base: Base{Name: "Core"}}
	file := &File{Base: Base{Name: "foo.h"}, Path: "foo.h"}
	AddChild(mod, file)
	class := &Class{Base: Base{Name: "Foo"}}
	AddChild(file, class)
	field := &Field{Base: Base{Name: "X"}}
	AddChild(class, field)

	chain := Ancestors(field)
	require.Len(t, chain, 4)
	assert.Equal(t, field, chain[0])
	assert.Equal(t, class, chain[1])
	assert.Equal(t, file, chain[2])
	assert.Equal(t, mod, chain[3])
}

func TestAddChildPropagatesFileNamespace(t *testing.T) {
	file := &File{Base: Base{Name: "foo.h", Namespace: "Flax"}, Path: "foo.h"}
	class := &Class{Base: Base{Name: "Foo"}}
	AddChild(file, class)
	assert.Equal(t, "Flax", class.Info().Namespace)

	other := &Class{Base: Base{Name: "Bar", Namespace: "Other"}}
	AddChild(file, other)
	assert.Equal(t, "Other", other.Info().Namespace)
}

func TestFullNameNestedPlusSeparator(t *testing.T) {
	file := &File{Base: Base{Name: "foo.h", Namespace: "Flax"}, Path: "foo.h"}
	outer := &Class{Base: Base{Name: "Outer"}}
	AddChild(file, outer)
	inner := &Class{Base: Base{Name: "Inner"}}
	AddChild(outer, inner)

	assert.Equal(t, "Flax.Outer", FullName(outer))
	assert.Equal(t, "Flax.Outer+Inner", FullName(inner))
}

func TestTypeRefEqual(t *testing.T) {
	a := &TypeRef{Name: "Array", Generic: []*TypeRef{{Name: "float"}}}
	b := &TypeRef{Name: "Array", Generic: []*TypeRef{{Name: "float"}}}
	c := &TypeRef{Name: "Array", Generic: []*TypeRef{{Name: "int32"}}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestAssignUniqueNamesDisambiguates(t *testing.T) {
	fns := []*Function{
		{Base: Base{Name: "Send"}},
		{Base: Base{Name: "Send"}},
		{Base: Base{Name: "Other"}},
	}
	AssignUniqueNames(fns)

	assert.Equal(t, "Send", fns[0].UniqueName)
	assert.Equal(t, "Send1", fns[1].UniqueName)
	assert.Equal(t, "Other", fns[2].UniqueName)

	seen := map[string]bool{}
	for _, fn := range fns {
		assert.False(t, seen[fn.UniqueName], "duplicate uniqueName %s", fn.UniqueName)
		seen[fn.UniqueName] = true
	}
}

func TestIsStructuralPrimitive(t *testing.T) {
	assert.True(t, IsStructuralPrimitive("String"))
	assert.True(t, IsStructuralPrimitive("Array"))
	assert.False(t, IsStructuralPrimitive("int32"))
	assert.False(t, IsStructuralPrimitive("MyClass"))
}
