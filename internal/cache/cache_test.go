package cache

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flaxengine/bindgen/internal/model"
)

func sampleModule() *model.Module {
	m := &model.Module{Base: model.Base{Name: "Engine"}, ID: "core", FilePath: "Core.module"}
	f := &model.File{Base: model.Base{Name: "Actor.h"}, Path: "Actor.h"}
	model.AddChild(m, f)

	base := &model.Class{
		Base:     model.Base{Name: "ScriptingObject"},
		IsSealed: false,
	}
	model.AddChild(f, base)

	derived := &model.Class{
		Base:       model.Base{Name: "Actor"},
		BaseType:          &model.TypeRef{Name: "ScriptingObject"},
		Interfaces:        []*model.TypeRef{{Name: "ISerializable"}},
		InterfaceAccesses: []model.Access{model.AccessPublic},
		IsScriptingObject: true,
		Fields: []*model.Field{
			{
				Base:   model.Base{Name: "Health"},
				Type:   &model.TypeRef{Name: "float"},
				Access: model.AccessPublic,
				Getter: &model.Function{Base: model.Base{Name: "GetHealth"}, ReturnType: &model.TypeRef{Name: "float"}},
				Setter: &model.Function{
					Base:       model.Base{Name: "SetHealth"},
					ReturnType: &model.TypeRef{Name: "void"},
					Parameters: []*model.Parameter{{Base: model.Base{Name: "value"}, Type: &model.TypeRef{Name: "float"}}},
				},
			},
		},
		Functions: []*model.Function{
			{
				Base:       model.Base{Name: "Damage"},
				ReturnType: &model.TypeRef{Name: "void"},
				IsVirtual:  true,
				UniqueName: "Damage",
				Parameters: []*model.Parameter{
					{Base: model.Base{Name: "amount"}, Type: &model.TypeRef{Name: "float"}, Decoration: model.ParamIn},
				},
				Glue: &model.GlueDescriptor{InternalCallName: "Actor_Damage", ReturnsByRef: false},
			},
		},
		Events: []*model.Event{
			{Base: model.Base{Name: "OnDeath"}, DelegateKind: model.DelegateAction},
		},
	}
	model.AddChild(f, derived)

	st := &model.Struct{
		Base: model.Base{Name: "Vector3"},
		Fields: []*model.Field{
			{Base: model.Base{Name: "X"}, Type: &model.TypeRef{Name: "float"}, Access: model.AccessPublic},
			{Base: model.Base{Name: "Y"}, Type: &model.TypeRef{Name: "float"}, Access: model.AccessPublic},
			{Base: model.Base{Name: "Z"}, Type: &model.TypeRef{Name: "float"}, Access: model.AccessPublic},
		},
		IsPod: true,
	}
	model.AddChild(f, st)

	en := &model.Enum{
		Base:    model.Base{Name: "State"},
		Entries: []model.EnumEntry{{Name: "Idle"}, {Name: "Active", Value: "1", HasValue: true}},
	}
	model.AddChild(f, en)

	return m
}

func sampleKey() Key {
	return Key{
		IntermediateFolder: "/build/intermediate",
		Platform:           "Windows",
		Architecture:       "x64",
		Configuration:      "Development",
		PublicDefines:      []string{"FLAX_EDITOR"},
		PrivateDefines:     []string{"CORE_BUILD"},
		CompileEnvDefines:  []string{"NDEBUG"},
		Headers: []HeaderEntry{
			{Path: "Actor.h", ModTime: 100},
		},
		GeneratorModTime: 42,
	}
}

// toString renders enough of a node tree to compare two trees by value; it
// checks that a snapshot round-trip preserves the whole model shape
// since the model package defines no canonical stringer of its own.
func toString(n model.Node) string {
	var buf bytes.Buffer
	dump(&buf, n, 0)
	return buf.String()
}

func dump(buf *bytes.Buffer, n model.Node, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteByte(' ')
	}
	buf.WriteString(string(n.Kind()))
	buf.WriteByte(':')
	buf.WriteString(n.Info().Name)
	buf.WriteByte('\n')
	for _, c := range n.Info().Children {
		dump(buf, c, depth+1)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := sampleModule()
	key := sampleKey()

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, key, m))

	result := Load(bytes.NewReader(buf.Bytes()), key)
	require.True(t, result.Hit, "reason: %s", result.Reason)
	require.NotNil(t, result.Module)

	assert.Equal(t, toString(m), toString(result.Module))

	derived := result.Module.Children[0].Info().Children[1].(*model.Class)
	assert.True(t, derived.IsScriptingObject)
	require.Len(t, derived.Interfaces, 1)
	assert.Equal(t, "ISerializable", derived.Interfaces[0].Name)
	require.Len(t, derived.InterfaceAccesses, 1)
	assert.Equal(t, model.AccessPublic, derived.InterfaceAccesses[0])
	require.NotNil(t, derived.Fields[0].Getter)
	assert.Equal(t, "GetHealth", derived.Fields[0].Getter.Name)
	require.NotNil(t, derived.Functions[0].Glue)
	assert.Equal(t, "Actor_Damage", derived.Functions[0].Glue.InternalCallName)
	assert.Equal(t, model.ParamIn, derived.Functions[0].Parameters[0].Decoration)
}

func TestLoadDetectsKeyMismatchOnHeaderModTime(t *testing.T) {
	m := sampleModule()
	key := sampleKey()

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, key, m))

	changed := key
	changed.Headers = []HeaderEntry{{Path: "Actor.h", ModTime: 999}}

	result := Load(bytes.NewReader(buf.Bytes()), changed)
	assert.False(t, result.Hit)
	assert.NotEmpty(t, result.Reason)
}

func TestLoadDetectsFormatVersionMismatch(t *testing.T) {
	m := sampleModule()
	key := sampleKey()

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, key, m))
	raw := buf.Bytes()
	raw[0]++ // corrupt the leading version int32's low byte

	result := Load(bytes.NewReader(raw), key)
	assert.False(t, result.Hit)
}

func TestLoadTruncatedFileIsCorruptionNotPanic(t *testing.T) {
	m := sampleModule()
	key := sampleKey()

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, key, m))
	truncated := buf.Bytes()[:len(buf.Bytes())/2]

	result := Load(bytes.NewReader(truncated), key)
	assert.False(t, result.Hit)
	assert.NotEmpty(t, result.Reason)
}

func TestKeyEqualRejectsDefineSetChange(t *testing.T) {
	a := sampleKey()
	b := sampleKey()
	b.PublicDefines = append(b.PublicDefines, "EXTRA")
	assert.False(t, a.Equal(b))
}

func TestSaveFileLoadFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/Engine.bgcache"

	m := sampleModule()
	key := sampleKey()
	require.NoError(t, SaveFile(path, key, m))

	result := LoadFile(path, key)
	require.True(t, result.Hit, "reason: %s", result.Reason)
	assert.Equal(t, toString(m), toString(result.Module))

	missResult := LoadFile(dir+"/missing.bgcache", key)
	assert.False(t, missResult.Hit)
}
