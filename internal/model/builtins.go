package model

// builtinSizes is the table of recognized in-build primitive spellings,
// with native sizes used by the emitter's type-initializer.
var builtinSizes = map[string]int{
	"void": 0, "bool": 1, "byte": 1,
	"int8": 1, "int16": 2, "int32": 4, "int64": 8,
	"uint8": 1, "uint16": 2, "uint32": 4, "uint64": 8,
	"float": 4, "double": 8,
	"Char": 2, "char": 1,
	"void*": 8,
}

// NewBuiltins constructs the fixed set of in-build LangType nodes the
// resolver consults first, keyed by spelling.
func NewBuiltins() map[string]*LangType {
	out := make(map[string]*LangType, len(builtinSizes))
	for name, size := range builtinSizes {
		out[name] = &LangType{
			Base:       Base{Name: name},
			NativeSize: size,
		}
	}
	return out
}

// IsBuiltinName reports whether name is one of the in-build primitive spellings.
func IsBuiltinName(name string) bool {
	_, ok := builtinSizes[name]
	return ok
}

// AssignUniqueNames disambiguates function names within a single container
// (class/struct/interface) by suffixing a monotonically increasing integer,
// so that every uniqueName begins with
// the function's original name and all are pairwise distinct.
func AssignUniqueNames(fns []*Function) {
	seen := map[string]int{}
	for _, fn := range fns {
		n := fn.Name
		count := seen[n]
		if count == 0 {
			fn.UniqueName = n
		} else {
			fn.UniqueName = n + itoa(count)
		}
		seen[n] = count + 1
	}
}
