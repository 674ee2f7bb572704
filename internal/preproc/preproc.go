// Package preproc implements the minimal preprocessor evaluator: a
// local #define map layered over three externally supplied definition sets,
// and a deliberately weak #if/#ifdef evaluator that only understands a
// disjunction of literal-or-substituted-1 tokens, degrading everything else
// to false rather than raising.
package preproc

import "strings"

// Defines is one named set of preprocessor symbols; a symbol present in the
// set is considered defined. A non-empty value means "#define NAME VALUE".
type Defines map[string]string

// Evaluator resolves #define/#ifdef/#if against a local define map plus the
// public, private and compile-environment definition sets.
type Evaluator struct {
	Local   Defines
	Public  Defines
	Private Defines
	CompileEnv Defines
}

// FromList builds a Defines set from "NAME" / "NAME=VALUE" entries, the
// form the build environment hands definition sets over in.
func FromList(entries []string) Defines {
	out := make(Defines, len(entries))
	for _, e := range entries {
		if i := strings.IndexByte(e, '='); i >= 0 {
			out[e[:i]] = e[i+1:]
		} else if e != "" {
			out[e] = "1"
		}
	}
	return out
}

// New creates an Evaluator with the three external sets; Local starts empty
// and accumulates #define directives encountered while parsing a file.
func New(public, private, compileEnv Defines) *Evaluator {
	if public == nil {
		public = Defines{}
	}
	if private == nil {
		private = Defines{}
	}
	if compileEnv == nil {
		compileEnv = Defines{}
	}
	return &Evaluator{Local: Defines{}, Public: public, Private: private, CompileEnv: compileEnv}
}

// Define records a local "#define NAME VALUE" directive.
func (e *Evaluator) Define(name, value string) {
	e.Local[name] = value
}

// IsDefined reports whether name is defined in any of the four sets,
// searching local first, matching precedence "most specific wins".
func (e *Evaluator) IsDefined(name string) bool {
	if _, ok := e.Local[name]; ok {
		return true
	}
	if _, ok := e.Public[name]; ok {
		return true
	}
	if _, ok := e.Private[name]; ok {
		return true
	}
	if _, ok := e.CompileEnv[name]; ok {
		return true
	}
	return false
}

// Value returns the substitution value for name (empty string if defined
// with no value, or undefined).
func (e *Evaluator) Value(name string) (string, bool) {
	if v, ok := e.Local[name]; ok {
		return v, true
	}
	if v, ok := e.Public[name]; ok {
		return v, true
	}
	if v, ok := e.Private[name]; ok {
		return v, true
	}
	if v, ok := e.CompileEnv[name]; ok {
		return v, true
	}
	return "", false
}

// EvalIfdef evaluates "#ifdef NAME" (or, with negate, "#ifndef NAME").
func (e *Evaluator) EvalIfdef(name string, negate bool) bool {
	defined := e.IsDefined(name)
	if negate {
		return !defined
	}
	return defined
}

// EvalIf evaluates a "#if" condition string using a deliberately small model:
// substitute identifiers from the define maps to "1" when defined (or their
// literal value when it only contains 0/1), treat the literals true/false as
// 1/0, collapse "||" to a single "|" disjunction, and accept only a
// disjunction of literal-or-substituted-1 tokens. Anything shaped
// differently (parentheses, &&, comparisons, !defined(...), arithmetic)
// degrades to false, never raising an error.
func (e *Evaluator) EvalIf(cond string) bool {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return false
	}
	// Reject anything containing constructs outside the minimal grammar.
	for _, bad := range []string{"(", ")", "&&", "!", "==", "!=", "<", ">", "+", "-", "*", "/"} {
		if strings.Contains(cond, bad) {
			return false
		}
	}
	cond = strings.ReplaceAll(cond, "||", "|")
	terms := strings.Split(cond, "|")
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if e.termIsTrue(term) {
			return true
		}
	}
	return false
}

func (e *Evaluator) termIsTrue(term string) bool {
	switch term {
	case "1", "true":
		return true
	case "0", "false", "":
		return false
	}
	if v, ok := e.Value(term); ok {
		switch strings.TrimSpace(v) {
		case "", "1", "true":
			return true
		default:
			return false
		}
	}
	return false
}
