package semantic

import (
	"github.com/flaxengine/bindgen/internal/bgerr"
	"github.com/flaxengine/bindgen/internal/model"
)

// computeAncestryAndPod assigns Class.IsScriptingObject and Struct.IsPod
// across the whole module.
func (s *state) computeAncestryAndPod(module *model.Module) error {
	var firstErr error
	walkTypes(module, func(n model.Node) {
		if firstErr != nil {
			return
		}
		switch t := n.(type) {
		case *model.Class:
			if _, err := s.isScriptingObject(t); err != nil {
				firstErr = err
			}
		case *model.Struct:
			if _, err := s.isPod(t); err != nil {
				firstErr = err
			}
		}
	})
	return firstErr
}

// isScriptingObject computes the ancestry ascent with cycle detection: "seeded
// true for a fixed set of root names ... then propagated through base
// classes".
func (s *state) isScriptingObject(c *model.Class) (bool, error) {
	if v, ok := s.scriptingObject[c]; ok {
		return v, nil
	}
	if s.scriptingVisit[c] {
		return false, bgerr.New(bgerr.KindSemantic, c.File, c.Line,
			"cycle detected in base-class chain of %q", c.Name)
	}
	s.scriptingVisit[c] = true
	defer delete(s.scriptingVisit, c)

	result := scriptingObjectRoots[c.Name]
	if !result && c.ResolvedBase != nil {
		if base, ok := c.ResolvedBase.(*model.Class); ok {
			baseResult, err := s.isScriptingObject(base)
			if err != nil {
				return false, err
			}
			result = baseResult
		}
	}
	c.IsScriptingObject = result
	s.scriptingObject[c] = result
	return result, nil
}

// isPod computes the POD rule for struct t, with cycle detection
// across the base-struct chain.
func (s *state) isPod(t *model.Struct) (bool, error) {
	if v, ok := s.pod[t]; ok {
		return v, nil
	}
	if s.podVisit[t] {
		return false, bgerr.New(bgerr.KindSemantic, t.File, t.Line,
			"cycle detected in base-struct chain of %q", t.Name)
	}
	s.podVisit[t] = true
	defer delete(s.podVisit, t)

	result := s.computeStructPod(t)
	t.IsPod = result
	s.pod[t] = result
	return result, nil
}

func (s *state) computeStructPod(t *model.Struct) bool {
	if t.ForceNoPod || t.IsTemplate || len(t.Interfaces) > 0 {
		return false
	}
	if t.BaseType != nil {
		baseNode, ok := s.build.Resolve(t.BaseType, t.Info().Parent)
		if !ok {
			return false
		}
		baseStruct, ok := baseNode.(*model.Struct)
		if !ok {
			return false
		}
		basePod, err := s.isPod(baseStruct)
		if err != nil || !basePod {
			return false
		}
	}
	for _, f := range t.Fields {
		if f.IsStatic {
			continue
		}
		if !s.isFieldPod(f, t) {
			return false
		}
	}
	return true
}

// isFieldPod refines the rule for fields: "the field is POD iff its
// type is POD and not an implicit managed array".
func (s *state) isFieldPod(f *model.Field, scope model.Node) bool {
	if f.Type.IsArray && !f.NoArray {
		return false
	}
	return s.isTypeRefPod(f.Type, scope)
}

// isTypeRefPod implements the POD rule proper for any TypeRef (fields,
// parameters, return types all share it).
func (s *state) isTypeRefPod(t *model.TypeRef, scope model.Node) bool {
	if node, ok := s.build.Resolve(t, scope); ok {
		switch n := node.(type) {
		case *model.Struct:
			pod, err := s.isPod(n)
			return err == nil && pod
		case *model.Enum, *model.LangType:
			return true
		case *model.Class, *model.Interface:
			return false
		default:
			return false
		}
	}
	if t.IsPtr || t.IsRef {
		return true
	}
	return !model.IsStructuralPrimitive(t.Name)
}
