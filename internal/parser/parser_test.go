package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flaxengine/bindgen/internal/model"
	"github.com/flaxengine/bindgen/internal/preproc"
)

func parseSrc(t *testing.T, src string) (*model.Module, *model.File) {
	t.Helper()
	mod := &model.Module{Base: model.Base{Name: "Core"}}
	pre := preproc.New(nil, nil, nil)
	file, err := ParseFile("Foo.h", []byte(src), mod, pre, UnknownTagHooks{})
	require.NoError(t, err)
	return mod, file
}

func TestParseSimpleClassWithFunction(t *testing.T) {
	src := `API_CLASS() class FLAX_API Foo : public ScriptingObject
{
API_FUNCTION() int Bar(float x);
};`
	_, file := parseSrc(t, src)
	require.Len(t, file.Children, 1)
	class, ok := file.Children[0].(*model.Class)
	require.True(t, ok)
	assert.Equal(t, "Foo", class.Name)
	require.NotNil(t, class.BaseType)
	assert.Equal(t, "ScriptingObject", class.BaseType.Name)
	require.Len(t, class.Functions, 1)
	fn := class.Functions[0]
	assert.Equal(t, "Bar", fn.Name)
	assert.Equal(t, "Bar", fn.UniqueName)
	assert.Equal(t, "int32", fn.ReturnType.Name)
	require.Len(t, fn.Parameters, 1)
	assert.Equal(t, "x", fn.Parameters[0].Info().Name)
	assert.Equal(t, "float", fn.Parameters[0].Type.Name)
}

func TestParseInheritanceAccessPerEntry(t *testing.T) {
	src := `API_CLASS() class FLAX_API Foo : public Base, public IFirst, private ISecond
{
};`
	_, file := parseSrc(t, src)
	class := file.Children[0].(*model.Class)
	require.NotNil(t, class.BaseType)
	assert.Equal(t, model.AccessPublic, class.BaseAccess)
	require.Len(t, class.Interfaces, 2)
	require.Len(t, class.InterfaceAccesses, 2)
	assert.Equal(t, model.AccessPublic, class.InterfaceAccesses[0])
	assert.Equal(t, model.AccessPrivate, class.InterfaceAccesses[1])
}

func TestParseStructFieldsNonPodString(t *testing.T) {
	src := `API_STRUCT() struct FLAX_API V
{
API_FIELD() float X;
API_FIELD() String Name;
};`
	_, file := parseSrc(t, src)
	s := file.Children[0].(*model.Struct)
	require.Len(t, s.Fields, 2)
	assert.Equal(t, "X", s.Fields[0].Name)
	assert.Equal(t, "float", s.Fields[0].Type.Name)
	assert.Equal(t, "Name", s.Fields[1].Name)
	assert.Equal(t, "String", s.Fields[1].Type.Name)
}

func TestParseEnumWithAutoCommentOnMax(t *testing.T) {
	src := `API_ENUM() enum class E : uint8
{
A,
B = 1 << 2,
MAX
};`
	_, file := parseSrc(t, src)
	e := file.Children[0].(*model.Enum)
	require.Len(t, e.Entries, 3)
	assert.Equal(t, "A", e.Entries[0].Name)
	assert.False(t, e.Entries[0].HasValue)
	assert.Equal(t, "B", e.Entries[1].Name)
	assert.True(t, e.Entries[1].HasValue)
	assert.Equal(t, "MAX", e.Entries[2].Name)
	assert.NotEmpty(t, e.Entries[2].Comment)
	require.NotNil(t, e.Underlying)
	assert.Equal(t, "uint8", e.Underlying.Name)
}

func TestParsePropertyMergesGetterSetter(t *testing.T) {
	src := `API_CLASS() class FLAX_API Foo
{
/// Gets count.
API_PROPERTY() int GetCount() const;
API_PROPERTY() void SetCount(int value);
};`
	_, file := parseSrc(t, src)
	class := file.Children[0].(*model.Class)
	require.Len(t, class.Properties, 1)
	prop := class.Properties[0]
	assert.Equal(t, "Count", prop.Info().Name)
	require.NotNil(t, prop.Getter)
	require.NotNil(t, prop.Setter)
	assert.Equal(t, "int32", prop.Type.Name)
	found := false
	for _, line := range prop.Info().Comment {
		if line == "/// Gets or sets count." {
			found = true
		}
	}
	assert.True(t, found, "expected rewritten comment, got %v", prop.Info().Comment)
}

func TestParseDuplicateFunctionNamesGetUniqueNames(t *testing.T) {
	src := `API_CLASS() class FLAX_API Foo
{
API_FUNCTION() void Send(int x);
API_FUNCTION() void Send(float x);
};`
	_, file := parseSrc(t, src)
	class := file.Children[0].(*model.Class)
	require.Len(t, class.Functions, 2)
	assert.Equal(t, "Send", class.Functions[0].UniqueName)
	assert.Equal(t, "Send1", class.Functions[1].UniqueName)
}

func TestParseEventRequiresDelegateType(t *testing.T) {
	src := `API_CLASS() class FLAX_API Foo
{
API_EVENT() Action Changed;
API_EVENT() Delegate<int32, float> Updated;
};`
	_, file := parseSrc(t, src)
	class := file.Children[0].(*model.Class)
	require.Len(t, class.Events, 2)
	assert.Equal(t, model.DelegateAction, class.Events[0].DelegateKind)
	assert.Equal(t, model.DelegateGeneric, class.Events[1].DelegateKind)
	require.Len(t, class.Events[1].GenericArgs, 2)
}

func TestParseEventRejectsNonDelegateType(t *testing.T) {
	src := `API_CLASS() class FLAX_API Foo
{
API_EVENT() int BadEvent;
};`
	mod := &model.Module{Base: model.Base{Name: "Core"}}
	pre := preproc.New(nil, nil, nil)
	_, err := ParseFile("Foo.h", []byte(src), mod, pre, UnknownTagHooks{})
	require.Error(t, err)
}

func TestParseMismatchedBraceIsFatal(t *testing.T) {
	src := `API_CLASS() class FLAX_API Foo
{
API_FUNCTION() void Bar();
`
	mod := &model.Module{Base: model.Base{Name: "Core"}}
	pre := preproc.New(nil, nil, nil)
	_, err := ParseFile("Foo.h", []byte(src), mod, pre, UnknownTagHooks{})
	require.Error(t, err)
}

func TestParsePreprocessorSkipsInactiveBranch(t *testing.T) {
	src := `API_CLASS() class FLAX_API Foo
{
#if PLATFORM_WINDOWS
API_FUNCTION() void WindowsOnly();
#else
API_FUNCTION() void OtherPlatform();
#endif
};`
	mod := &model.Module{Base: model.Base{Name: "Core"}}
	pre := preproc.New(nil, nil, nil)
	file, err := ParseFile("Foo.h", []byte(src), mod, pre, UnknownTagHooks{})
	require.NoError(t, err)
	class := file.Children[0].(*model.Class)
	require.Len(t, class.Functions, 1)
	assert.Equal(t, "OtherPlatform", class.Functions[0].Name)
}

func TestParseBitFieldWiderThanOneRejected(t *testing.T) {
	src := `API_STRUCT() struct FLAX_API V
{
API_FIELD() int32 Flags : 2;
};`
	mod := &model.Module{Base: model.Base{Name: "Core"}}
	pre := preproc.New(nil, nil, nil)
	_, err := ParseFile("Foo.h", []byte(src), mod, pre, UnknownTagHooks{})
	require.Error(t, err)
}

func TestParseTypedefAlias(t *testing.T) {
	src := `API_TYPEDEF(alias) typedef Vector3Base<float> Float3;`
	_, file := parseSrc(t, src)
	td := file.Children[0].(*model.Typedef)
	assert.Equal(t, "Float3", td.Name)
	assert.True(t, td.IsAlias)
	assert.Equal(t, "Vector3Base", td.Target.Name)
	require.Len(t, td.Target.Generic, 1)
	assert.Equal(t, "float", td.Target.Generic[0].Name)
}
