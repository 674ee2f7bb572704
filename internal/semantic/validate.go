package semantic

import (
	"github.com/flaxengine/bindgen/internal/bgerr"
	"github.com/flaxengine/bindgen/internal/model"
)

// validate enforces the remaining model invariants that aren't naturally
// part of another pass: unique function names actually distinct and
// prefix-preserving, no HashSet output parameters, and enums never hosting
// sub-types. Event delegate types are checked by the parser only.
func (s *state) validate(module *model.Module) error {
	var firstErr error
	walkTypes(module, func(n model.Node) {
		if firstErr != nil {
			return
		}
		switch t := n.(type) {
		case *model.Class:
			firstErr = checkFunctions(t.Functions, t.Name)
		case *model.Struct:
			firstErr = checkFunctions(t.Functions, t.Name)
		case *model.Interface:
			firstErr = checkFunctions(t.Functions, t.Name)
		case *model.Enum:
			if len(t.Info().Children) > 0 {
				firstErr = bgerr.New(bgerr.KindSemantic, t.File, t.Line,
					"enum %q may not declare sub-types", t.Name)
			}
		}
	})
	return firstErr
}

func checkFunctions(fns []*model.Function, containerName string) error {
	if err := checkUniqueNames(fns, containerName); err != nil {
		return err
	}
	return checkParameters(fns, containerName)
}

// checkParameters rejects parameter shapes the marshalling layer has no
// conversion for, rather than emitting glue that guesses one: a HashSet
// flowing back out through an out-parameter is the known case.
func checkParameters(fns []*model.Function, containerName string) error {
	for _, fn := range fns {
		for _, p := range fn.Parameters {
			if p.Type == nil {
				continue
			}
			if p.Decoration.IsByRefOut() && p.Type.Name == "HashSet" {
				return bgerr.New(bgerr.KindSemantic, fn.File, fn.Line,
					"function %q in %q: output parameter conversion for HashSet is not supported",
					fn.Name, containerName)
			}
		}
	}
	return nil
}

func checkUniqueNames(fns []*model.Function, containerName string) error {
	seen := map[string]bool{}
	for _, fn := range fns {
		if fn.UniqueName == "" {
			return bgerr.New(bgerr.KindSemantic, fn.File, fn.Line,
				"function %q in %q was never assigned a unique name", fn.Name, containerName)
		}
		if seen[fn.UniqueName] {
			return bgerr.New(bgerr.KindSemantic, fn.File, fn.Line,
				"duplicate unique name %q in %q", fn.UniqueName, containerName)
		}
		seen[fn.UniqueName] = true
		if len(fn.UniqueName) < len(fn.Name) || fn.UniqueName[:len(fn.Name)] != fn.Name {
			return bgerr.New(bgerr.KindSemantic, fn.File, fn.Line,
				"unique name %q of function %q does not begin with its original name", fn.UniqueName, fn.Name)
		}
	}
	return nil
}
