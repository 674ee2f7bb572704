package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flaxengine/bindgen/internal/model"
)

func TestResolveBuiltin(t *testing.T) {
	b := NewBuild(nil)
	n, ok := b.Resolve(&model.TypeRef{Name: "int32"}, nil)
	require.True(t, ok)
	assert.Equal(t, model.KindLangType, n.Kind())
}

func TestResolveNestedScope(t *testing.T) {
	module := &model.Module{Base: model.Base{Name: "Engine"}}
	file := &model.File{Base: model.Base{Name: "foo.h"}}
	model.AddChild(module, file)

	outer := &model.Class{Base: model.Base{Name: "Outer"}}
	model.AddChild(file, outer)
	inner := &model.Struct{Base: model.Base{Name: "Inner"}}
	model.AddChild(outer, inner)

	field := &model.Field{Base: model.Base{Name: "x"}}
	model.AddChild(inner, field)

	b := NewBuild([]*model.Module{module})
	n, ok := b.resolveInScope("Inner", inner)
	require.True(t, ok)
	assert.Equal(t, "Inner", n.Info().Name)
}

func TestResolveGlobalAcrossModules(t *testing.T) {
	m1 := &model.Module{Base: model.Base{Name: "A"}}
	f1 := &model.File{Base: model.Base{Name: "a.h"}}
	model.AddChild(m1, f1)
	cls := &model.Class{Base: model.Base{Name: "Actor"}}
	model.AddChild(f1, cls)

	m2 := &model.Module{Base: model.Base{Name: "B"}}
	f2 := &model.File{Base: model.Base{Name: "b.h"}}
	model.AddChild(m2, f2)

	b := NewBuild([]*model.Module{m1, m2})
	n, ok := b.Resolve(&model.TypeRef{Name: "Actor"}, f2)
	require.True(t, ok)
	assert.Same(t, cls, n)
}

func TestResolveQualifiedName(t *testing.T) {
	module := &model.Module{Base: model.Base{Name: "Engine"}}
	file := &model.File{Base: model.Base{Name: "foo.h"}}
	model.AddChild(module, file)
	outer := &model.Class{Base: model.Base{Name: "Outer"}}
	model.AddChild(file, outer)
	inner := &model.Enum{Base: model.Base{Name: "Mode"}}
	model.AddChild(outer, inner)

	b := NewBuild([]*model.Module{module})
	n, ok := b.Resolve(&model.TypeRef{Name: "Outer::Mode"}, file)
	require.True(t, ok)
	assert.Same(t, inner, n)
}

func TestResolveReferenceRemovalRetry(t *testing.T) {
	module := &model.Module{Base: model.Base{Name: "Engine"}}
	file := &model.File{Base: model.Base{Name: "foo.h"}}
	model.AddChild(module, file)
	cls := &model.Class{Base: model.Base{Name: "Foo"}}
	model.AddChild(file, cls)

	b := NewBuild([]*model.Module{module})
	n, ok := b.Resolve(&model.TypeRef{Name: "Foo", IsRef: true}, file)
	require.True(t, ok)
	assert.Same(t, cls, n)
}

func TestResolveMemoizes(t *testing.T) {
	b := NewBuild(nil)
	ref := &model.TypeRef{Name: "float"}
	n1, ok1 := b.Resolve(ref, nil)
	n2, ok2 := b.Resolve(ref, nil)
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Same(t, n1, n2)
}

func TestResolveUnknownFails(t *testing.T) {
	b := NewBuild(nil)
	_, ok := b.Resolve(&model.TypeRef{Name: "Nonexistent"}, nil)
	assert.False(t, ok)
}

func TestResolveTypedefAlias(t *testing.T) {
	module := &model.Module{Base: model.Base{Name: "Engine"}}
	file := &model.File{Base: model.Base{Name: "foo.h"}}
	model.AddChild(module, file)
	cls := &model.Class{Base: model.Base{Name: "Actor"}}
	model.AddChild(file, cls)

	td := &model.Typedef{
		Base:    model.Base{Name: "ActorAlias"},
		Target:  &model.TypeRef{Name: "Actor"},
		IsAlias: true,
	}
	model.AddChild(file, td)

	b := NewBuild([]*model.Module{module})
	require.NoError(t, b.ResolveTypedef(td, file))
	assert.Same(t, cls, td.Resolved)
}

func TestResolveTypedefSpecialization(t *testing.T) {
	module := &model.Module{Base: model.Base{Name: "Engine"}}
	file := &model.File{Base: model.Base{Name: "foo.h"}}
	model.AddChild(module, file)

	template := &model.Struct{
		Base:       model.Base{Name: "Vector3Base"},
		IsTemplate: true,
		Fields: []*model.Field{
			{Base: model.Base{Name: "X"}, Type: &model.TypeRef{Name: "T"}},
		},
	}
	model.AddChild(file, template)

	td := &model.Typedef{
		Base:   model.Base{Name: "Float3"},
		Target: &model.TypeRef{Name: "Vector3Base", Generic: []*model.TypeRef{{Name: "float"}}},
	}
	model.AddChild(file, td)

	b := NewBuild([]*model.Module{module})
	require.NoError(t, b.ResolveTypedef(td, file))
	require.NotNil(t, td.Resolved)
	spec, ok := td.Resolved.(*model.Struct)
	require.True(t, ok)
	assert.Equal(t, "Float3", spec.Name)
	assert.False(t, spec.IsTemplate)
	assert.Equal(t, "float", spec.Fields[0].Type.Name)
}

func TestResolveTypedefRecursionGuard(t *testing.T) {
	module := &model.Module{Base: model.Base{Name: "Engine"}}
	file := &model.File{Base: model.Base{Name: "foo.h"}}
	model.AddChild(module, file)

	td := &model.Typedef{
		Base:   model.Base{Name: "Self"},
		Target: &model.TypeRef{Name: "Self"},
	}
	model.AddChild(file, td)

	b := NewBuild([]*model.Module{module})
	b.inProgress["Self"] = true
	err := b.ResolveTypedef(td, file)
	require.Error(t, err)
}
