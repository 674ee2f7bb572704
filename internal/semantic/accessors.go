package semantic

import (
	"github.com/flaxengine/bindgen/internal/bgerr"
	"github.com/flaxengine/bindgen/internal/model"
)

// synthesizeAccessors generates field accessor shims: for
// each non-private, non-hidden field, generate a Getter (const, non-virtual)
// and, unless read-only, a Setter taking "value"; the synthesized functions
// then participate in unique-name disambiguation alongside the container's
// declared functions.
func (s *state) synthesizeAccessors(module *model.Module) error {
	var firstErr error
	walkTypes(module, func(n model.Node) {
		if firstErr != nil {
			return
		}
		switch c := n.(type) {
		case *model.Class:
			if err := synthesizeForFields(c.Fields, &c.Functions); err != nil {
				firstErr = err
				return
			}
			// Property accessors live on the merged Property nodes rather
			// than in Functions, but they still register internal calls and
			// so compete for the same unique-name pool.
			all := append([]*model.Function(nil), c.Functions...)
			for _, p := range c.Properties {
				if p.Getter != nil {
					all = append(all, p.Getter)
				}
				if p.Setter != nil {
					all = append(all, p.Setter)
				}
			}
			model.AssignUniqueNames(all)
		case *model.Struct:
			if err := synthesizeForFields(c.Fields, &c.Functions); err != nil {
				firstErr = err
				return
			}
			model.AssignUniqueNames(c.Functions)
		case *model.Interface:
			if err := synthesizeForFields(c.Fields, &c.Functions); err != nil {
				firstErr = err
				return
			}
			model.AssignUniqueNames(c.Functions)
		}
	})
	return firstErr
}

func synthesizeForFields(fields []*model.Field, functions *[]*model.Function) error {
	for _, f := range fields {
		if f.Access == model.AccessPrivate || f.IsHidden {
			continue
		}
		getter := &model.Function{
			Base: model.Base{
				Name:      "Get" + f.Name,
				Comment:   f.Comment,
				Namespace: f.Namespace,
			},
			ReturnType: f.Type,
			IsConst:    true,
			IsStatic:   f.IsStatic,
			Access:     f.Access,
		}
		getter.SetTag("field", f.Name)
		f.Getter = getter
		*functions = append(*functions, getter)

		if f.IsReadOnly || f.IsConstexpr {
			continue
		}
		// A fixed-size C-array field surfaces as a managed array, and
		// writing one back through a setter is unsupported; require the
		// field to be read-only instead of guessing at copy semantics.
		if f.Type != nil && f.Type.IsArray {
			return bgerr.New(bgerr.KindSemantic, f.File, f.Line,
				"field %q: setters for fixed-size array fields are not supported; mark the field readonly", f.Name)
		}
		setter := &model.Function{
			Base: model.Base{
				Name:      "Set" + f.Name,
				Namespace: f.Namespace,
			},
			ReturnType: &model.TypeRef{Name: "void"},
			Parameters: []*model.Parameter{
				{Base: model.Base{Name: "value"}, Type: f.Type},
			},
			IsStatic: f.IsStatic,
			Access:   f.Access,
		}
		setter.SetTag("field", f.Name)
		f.Setter = setter
		*functions = append(*functions, setter)
	}
	return nil
}
