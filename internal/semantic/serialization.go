package semantic

import (
	"github.com/flaxengine/bindgen/internal/model"
	"github.com/flaxengine/bindgen/internal/resolver"
)

// Relink restores the derived state a cache snapshot stores by name only
//: resolved
// base-class pointers and the auto-serialization member lists. Everything
// else derived (POD flags, vtable layout, unique names, accessors) is
// persisted in the snapshot itself.
func Relink(module *model.Module, build *resolver.Build) {
	walkTypes(module, func(n model.Node) {
		switch c := n.(type) {
		case *model.Class:
			if c.BaseType != nil {
				if node, ok := build.Resolve(c.BaseType, c.Info().Parent); ok {
					c.ResolvedBase = node
				}
			}
			if c.IsAutoSerialization {
				c.SerializeMembers = collectSerializable(c.Fields, c.Properties)
			}
		case *model.Struct:
			if c.IsAutoSerialization {
				c.SerializeMembers = collectSerializable(c.Fields, nil)
			}
		}
	})
}

// computeAutoSerialization enumerates
// serializable fields and property pairs (non-static, public or explicitly
// tagged Serialize, never NoSerialize/NonSerialized) and record the ordered
// list for the emitter on the owning Class/Struct.
func (s *state) computeAutoSerialization(module *model.Module) {
	walkTypes(module, func(n model.Node) {
		switch c := n.(type) {
		case *model.Class:
			if c.IsAutoSerialization {
				c.SerializeMembers = collectSerializable(c.Fields, c.Properties)
			}
		case *model.Struct:
			if c.IsAutoSerialization {
				c.SerializeMembers = collectSerializable(c.Fields, nil)
			}
		}
	})
}

func collectSerializable(fields []*model.Field, props []*model.Property) []model.SerializeMember {
	var out []model.SerializeMember
	for _, f := range fields {
		if f.IsStatic {
			continue
		}
		if f.HasTag("noserialize") || f.HasTag("nonserialized") {
			continue
		}
		if f.Access != model.AccessPublic && !f.HasTag("serialize") {
			continue
		}
		out = append(out, model.SerializeMember{Field: f})
	}
	for _, p := range props {
		if p.Getter != nil && p.Getter.IsStatic {
			continue
		}
		if p.Getter != nil && (p.Getter.HasTag("noserialize") || p.Getter.HasTag("nonserialized")) {
			continue
		}
		out = append(out, model.SerializeMember{Property: p})
	}
	return out
}
