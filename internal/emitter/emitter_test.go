package emitter

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flaxengine/bindgen/internal/model"
	"github.com/flaxengine/bindgen/internal/parser"
	"github.com/flaxengine/bindgen/internal/preproc"
	"github.com/flaxengine/bindgen/internal/resolver"
	"github.com/flaxengine/bindgen/internal/semantic"
)

// emitSrc runs the full parse -> analyze -> emit pipeline over one header.
func emitSrc(t *testing.T, src string) (string, *model.Module, *resolver.Build) {
	t.Helper()
	mod := &model.Module{Base: model.Base{Name: "Core"}, ID: "Core"}
	pre := preproc.New(nil, nil, nil)
	_, err := parser.ParseFile("Test.h", []byte(src), mod, pre, parser.UnknownTagHooks{})
	require.NoError(t, err)
	build := resolver.NewBuild([]*model.Module{mod})
	require.NoError(t, semantic.Analyze(mod, build))
	out, err := Emit(build, mod)
	require.NoError(t, err)
	return string(out), mod, build
}

func TestEmitClassInternalCall(t *testing.T) {
	src := `API_CLASS() class FLAX_API ScriptingObject
{
};

API_CLASS() class FLAX_API Foo : public ScriptingObject
{
API_FUNCTION() int Bar(float x);
};`
	out, _, _ := emitSrc(t, src)
	assert.Contains(t, out, "static int32 Internal_Bar(Foo* instance, float x)")
	assert.Contains(t, out, "return instance->Bar(x);")
	assert.Contains(t, out, `ADD_INTERNAL_CALL("Foo::Internal_Bar", &Internal_Bar);`)
	assert.Contains(t, out, "ScriptingTypeInitializer Foo::TypeInitializer(")
	assert.Contains(t, out, `StringAnsiView("Foo")`)
	assert.Contains(t, out, "&ScriptingObject::TypeInitializer")
}

func TestEmitNonPodStructMirrorAndConverters(t *testing.T) {
	src := `API_STRUCT() struct FLAX_API V
{
API_FIELD() float X;
API_FIELD() String Name;
};`
	out, mod, _ := emitSrc(t, src)
	st := mod.Children[0].Info().Children[0].(*model.Struct)
	require.False(t, st.IsPod)

	assert.Contains(t, out, "struct VManaged\n{\n    float X;\n    MonoString* Name;\n};")
	assert.Contains(t, out, "VManaged ToManaged(const V& value)")
	assert.Contains(t, out, "V ToNative(const VManaged& value)")
	assert.Contains(t, out, "result.Name = MUtils::ToString(value.Name);")
	assert.Contains(t, out, "MObject* Box(const V& value)")
}

func TestEmitPodStructHasNoMirror(t *testing.T) {
	src := `API_STRUCT() struct FLAX_API Pair
{
API_FIELD() int32 A;
API_FIELD() float B;
};`
	out, mod, _ := emitSrc(t, src)
	st := mod.Children[0].Info().Children[0].(*model.Struct)
	require.True(t, st.IsPod)
	assert.NotContains(t, out, "PairManaged")
}

func TestEmitEnumItemTable(t *testing.T) {
	src := `API_ENUM() enum class E : uint8
{
A,
B = 1 << 2,
MAX
};`
	out, _, _ := emitSrc(t, src)
	assert.Contains(t, out, "static const ScriptingEnum::Item E_Items[] = {")
	assert.Contains(t, out, `{ "A", (uint64)E::A },`)
	assert.Contains(t, out, `{ "MAX", (uint64)E::MAX },`)
	assert.Contains(t, out, "sizeof(E)")
}

func TestEmitFieldAccessorWrappers(t *testing.T) {
	src := `API_CLASS() class FLAX_API ScriptingObject
{
};

API_CLASS() class FLAX_API Actor : public ScriptingObject
{
public:
API_FIELD() float Health;
};`
	out, _, _ := emitSrc(t, src)
	assert.Contains(t, out, "static float Internal_GetHealth(Actor* instance)")
	assert.Contains(t, out, "return instance->Health;")
	assert.Contains(t, out, "static void Internal_SetHealth(Actor* instance, float value)")
	assert.Contains(t, out, "instance->Health = value;")
	assert.Contains(t, out, `ADD_INTERNAL_CALL("Actor::Internal_GetHealth", &Internal_GetHealth);`)
}

func TestEmitEventBridge(t *testing.T) {
	src := `API_CLASS() class FLAX_API ScriptingObject
{
};

API_CLASS() class FLAX_API Foo : public ScriptingObject
{
API_EVENT() Delegate<float> OnChanged;
};`
	out, _, _ := emitSrc(t, src)
	assert.Contains(t, out, "static void OnChanged_Invoke(Foo* instance, float arg0)")
	assert.Contains(t, out, "static void Internal_OnChanged_Bind(Foo* instance, bool bind)")
	assert.Contains(t, out, "instance->OnChanged.Bind(&OnChanged_Invoke, instance);")
	assert.Contains(t, out, "static void OnChanged_ScriptingInvoke(Foo* instance, float arg0)")
	assert.Contains(t, out, `ADD_INTERNAL_CALL("Foo::Internal_OnChanged_Bind", &Internal_OnChanged_Bind);`)
}

func TestEmitVirtualTrampoline(t *testing.T) {
	src := `API_CLASS() class FLAX_API ScriptingObject
{
};

API_CLASS() class FLAX_API Actor : public ScriptingObject
{
API_FUNCTION() virtual void Update(float dt);
};`
	out, mod, _ := emitSrc(t, src)
	actor := mod.Children[0].Info().Children[1].(*model.Class)
	require.Len(t, actor.VirtualFunctions(), 1)

	assert.Contains(t, out, "static void Update_ManagedWrapper(Actor* instance, float dt)")
	assert.Contains(t, out, "static THREADLOCAL bool reentrant = false;")
	assert.Contains(t, out, "instance->Actor::Update(dt);")
	assert.Contains(t, out, "ScriptVTable[0]")
}

func TestEmitStructParamPassedByPointer(t *testing.T) {
	src := `API_STRUCT() struct FLAX_API Pair
{
API_FIELD() int32 A;
API_FIELD() int32 B;
};

API_CLASS() class FLAX_API ScriptingObject
{
};

API_CLASS() class FLAX_API Math : public ScriptingObject
{
API_FUNCTION() int Sum(Pair p);
API_FUNCTION() Pair Make(int a);
};`
	out, _, _ := emitSrc(t, src)
	// Struct input crosses by pointer, struct return becomes a trailing
	// out-pointer with a void wrapper.
	assert.Contains(t, out, "static int32 Internal_Sum(Math* instance, Pair* p)")
	assert.Contains(t, out, "return instance->Sum(*p);")
	assert.Contains(t, out, "static void Internal_Make(Math* instance, int32 a, Pair* resultOut)")
	assert.Contains(t, out, "*resultOut = instance->Make(a);")
}

func TestEmitIsIdempotent(t *testing.T) {
	src := `API_CLASS() class FLAX_API ScriptingObject
{
};

API_STRUCT() struct FLAX_API V
{
API_FIELD() float X;
API_FIELD() String Name;
};

API_CLASS() class FLAX_API Foo : public ScriptingObject
{
public:
API_FIELD() float Health;
API_FUNCTION() virtual int Bar(float x);
API_FUNCTION() V Describe();
API_EVENT() Action OnReset;
};`
	mod := &model.Module{Base: model.Base{Name: "Core"}, ID: "Core"}
	pre := preproc.New(nil, nil, nil)
	_, err := parser.ParseFile("Test.h", []byte(src), mod, pre, parser.UnknownTagHooks{})
	require.NoError(t, err)
	build := resolver.NewBuild([]*model.Module{mod})
	require.NoError(t, semantic.Analyze(mod, build))

	first, err := Emit(build, mod)
	require.NoError(t, err)
	second, err := Emit(build, mod)
	require.NoError(t, err)

	if string(first) != string(second) {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(first)),
			B:        difflib.SplitLines(string(second)),
			FromFile: "first",
			ToFile:   "second",
			Context:  3,
		})
		t.Fatalf("emitter output not idempotent:\n%s", diff)
	}
}

func TestEmitIncludesAreSortedAndDeduplicated(t *testing.T) {
	src := `API_CLASS() class FLAX_API ScriptingObject
{
};

API_CLASS() class FLAX_API Foo : public ScriptingObject
{
API_FUNCTION() int Bar();
};`
	out, _, _ := emitSrc(t, src)
	first := strings.Index(out, `#include "Engine/Scripting/ManagedCLR/MUtils.h"`)
	second := strings.Index(out, `#include "Engine/Scripting/ScriptingType.h"`)
	third := strings.Index(out, `#include "Test.h"`)
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	require.GreaterOrEqual(t, third, 0)
	assert.Less(t, first, second)
	assert.Less(t, second, third)
}
