// Package model holds the in-memory typed entities the parser,
// resolver and semantic analyzer of the generator operate on:
// the Module/File/Class/Struct/Enum/Interface/Typedef/InjectCode/LangType
// forest of the reflection model, plus the TypeRef value type shared by
// fields, properties, function signatures and parameters.
package model

import "strings"

// TypeRef is a reference to another type as spelled at a use site: a base
// identifier plus qualifier flags and a generic argument list.
// Two TypeRefs are equal iff every scalar field matches and every generic
// argument compares equal recursively.
type TypeRef struct {
	Name       string
	IsConst    bool
	IsRef      bool
	IsMoveRef  bool
	IsPtr      bool
	IsArray    bool
	IsBitField bool
	ArraySize  int
	BitSize    int
	Generic    []*TypeRef
}

// Equal reports whether t and other denote the same type reference.
func (t *TypeRef) Equal(other *TypeRef) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Name != other.Name ||
		t.IsConst != other.IsConst ||
		t.IsRef != other.IsRef ||
		t.IsMoveRef != other.IsMoveRef ||
		t.IsPtr != other.IsPtr ||
		t.IsArray != other.IsArray ||
		t.IsBitField != other.IsBitField ||
		t.ArraySize != other.ArraySize ||
		t.BitSize != other.BitSize ||
		len(t.Generic) != len(other.Generic) {
		return false
	}
	for i, g := range t.Generic {
		if !g.Equal(other.Generic[i]) {
			return false
		}
	}
	return true
}

// structuralPrimitives is the list of container/string types recognized
// by spelling alone rather than by resolving to a user API type. It is also
// the set the POD rule treats as non-POD by default.
var structuralPrimitives = map[string]bool{
	"String": true, "StringView": true, "StringAnsi": true, "StringAnsiView": true,
	"Array": true, "Span": true, "Dictionary": true, "HashSet": true,
	"BitArray": true, "BytesContainer": true, "Variant": true, "VariantType": true,
	"ScriptingObjectReference": true, "AssetReference": true, "WeakAssetReference": true,
	"SoftAssetReference": true, "SoftObjectReference": true, "Function": true,
	"ScriptingTypeHandle": true,
}

// IsStructuralPrimitive reports whether name is one of the types
// recognized structurally by spelling.
func IsStructuralPrimitive(name string) bool {
	return structuralPrimitives[baseName(name)]
}

// baseName strips a trailing "::"-qualification so structural-primitive
// detection still works when the spelling is qualified, e.g. "Flax::String".
func baseName(name string) string {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return name[i+2:]
	}
	return name
}

// String renders the TypeRef approximately as written in source, for error
// messages and emitter diagnostics.
func (t *TypeRef) String() string {
	var b strings.Builder
	if t.IsConst {
		b.WriteString("const ")
	}
	b.WriteString(t.Name)
	if len(t.Generic) > 0 {
		b.WriteByte('<')
		for i, g := range t.Generic {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(g.String())
		}
		b.WriteByte('>')
	}
	if t.IsRef {
		b.WriteByte('&')
	}
	if t.IsMoveRef {
		b.WriteString("&&")
	}
	if t.IsPtr {
		b.WriteByte('*')
	}
	if t.IsArray {
		if t.ArraySize > 0 {
			b.WriteString("[")
			b.WriteString(itoa(t.ArraySize))
			b.WriteString("]")
		} else {
			b.WriteString("[]")
		}
	}
	if t.IsBitField {
		b.WriteString(":")
		b.WriteString(itoa(t.BitSize))
	}
	return b.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
