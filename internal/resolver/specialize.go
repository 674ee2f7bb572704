package resolver

import (
	"github.com/flaxengine/bindgen/internal/bgerr"
	"github.com/flaxengine/bindgen/internal/model"
)

// specialize clones template (a Class or Struct with IsTemplate set) and
// substitutes its placeholder generic parameters with args, producing the
// first-class type a Typedef instantiation stands for. Only Class and Struct templates are supported;
// anything else is a ResolutionError, matching the Non-goals' rejection of
// non-trivial template metaprogramming.
func specialize(template model.Node, args []*model.TypeRef, typedefName, file string, line int) (model.Node, error) {
	placeholders := templatePlaceholders(len(args))
	subst := make(map[string]*model.TypeRef, len(placeholders))
	for i, p := range placeholders {
		subst[p] = args[i]
	}

	switch t := template.(type) {
	case *model.Struct:
		if !t.IsTemplate {
			return nil, bgerr.New(bgerr.KindResolution, file, line,
				"typedef %q specializes %q, which is not a template", typedefName, t.Name)
		}
		clone := *t
		clone.Name = typedefName
		clone.NativeName = typedefName
		clone.IsTemplate = false
		clone.Fields = substituteFields(t.Fields, subst)
		clone.Functions = substituteFunctions(t.Functions, subst)
		return &clone, nil
	case *model.Class:
		if !t.IsTemplate {
			return nil, bgerr.New(bgerr.KindResolution, file, line,
				"typedef %q specializes %q, which is not a template", typedefName, t.Name)
		}
		clone := *t
		clone.Name = typedefName
		clone.NativeName = typedefName
		clone.IsTemplate = false
		clone.Fields = substituteFields(t.Fields, subst)
		clone.Functions = substituteFunctions(t.Functions, subst)
		return &clone, nil
	default:
		return nil, bgerr.New(bgerr.KindResolution, file, line,
			"typedef %q names %q, which is not a template class or struct", typedefName, template.Info().Name)
	}
}

func substituteFields(fields []*model.Field, subst map[string]*model.TypeRef) []*model.Field {
	out := make([]*model.Field, len(fields))
	for i, f := range fields {
		clone := *f
		clone.Type = substituteTypeRef(f.Type, subst)
		out[i] = &clone
	}
	return out
}

func substituteFunctions(fns []*model.Function, subst map[string]*model.TypeRef) []*model.Function {
	out := make([]*model.Function, len(fns))
	for i, fn := range fns {
		clone := *fn
		clone.ReturnType = substituteTypeRef(fn.ReturnType, subst)
		clone.Parameters = make([]*model.Parameter, len(fn.Parameters))
		for j, p := range fn.Parameters {
			pc := *p
			pc.Type = substituteTypeRef(p.Type, subst)
			clone.Parameters[j] = &pc
		}
		out[i] = &clone
	}
	return out
}

// substituteTypeRef replaces ref (recursively, through generic arguments)
// with its mapped concrete type when ref's bare name is a template
// placeholder, preserving every qualifier flag.
func substituteTypeRef(ref *model.TypeRef, subst map[string]*model.TypeRef) *model.TypeRef {
	if ref == nil {
		return nil
	}
	if repl, ok := subst[ref.Name]; ok {
		out := *repl
		out.IsConst = out.IsConst || ref.IsConst
		out.IsRef = ref.IsRef
		out.IsMoveRef = ref.IsMoveRef
		out.IsPtr = ref.IsPtr || out.IsPtr
		out.IsArray = ref.IsArray
		out.ArraySize = ref.ArraySize
		return &out
	}
	if len(ref.Generic) == 0 {
		return ref
	}
	clone := *ref
	clone.Generic = make([]*model.TypeRef, len(ref.Generic))
	for i, g := range ref.Generic {
		clone.Generic[i] = substituteTypeRef(g, subst)
	}
	return &clone
}
