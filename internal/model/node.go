package model

import "sync"

// Kind discriminates the tagged union of node variants. It doubles as the cache's per-node write
// discriminator.
type Kind string

const (
	KindModule     Kind = "Module"
	KindFile       Kind = "File"
	KindClass      Kind = "Class"
	KindStruct     Kind = "Struct"
	KindEnum       Kind = "Enum"
	KindInterface  Kind = "Interface"
	KindTypedef    Kind = "Typedef"
	KindInjectCode Kind = "InjectCode"
	KindLangType   Kind = "LangType"
	KindField      Kind = "Field"
	KindProperty   Kind = "Property"
	KindFunction   Kind = "Function"
	KindParameter  Kind = "Parameter"
	KindEvent      Kind = "Event"
)

// Access mirrors the C++ access-modifier tracked by the parser's scope stack
// and recorded on class base-inheritance.
type Access int

const (
	AccessPublic Access = iota
	AccessProtected
	AccessPrivate
	AccessInternal
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	case AccessInternal:
		return "internal"
	default:
		return "public"
	}
}

// Node is the shared surface every entity in the forest satisfies: a name,
// parent link, children list and tag map. Variant-specific payload
// lives on the concrete type; "virtual-class" behaviors are a capability
// of Class/Interface rather than a field every Node carries.
type Node interface {
	Info() *Base
	Kind() Kind
}

// Base is the common state every node variant embeds: "a name, an optional
// native (source-level) name, an optional namespace, an optional
// documentation-comment block ... free-form attribute text, optional
// deprecation message, a tag mapping ... and an ordered list of child
// nodes". The parent link is not stored on disk; it is recovered on
// deserialization.
type Base struct {
	Name       string
	NativeName string
	Namespace  string
	Comment    []string
	Attributes string
	Deprecated string
	IsDeprecated bool
	Tags       map[string]string
	Children   []Node
	Parent     Node

	File string // source file this node was declared in, for diagnostics
	Line int    // source line, for diagnostics
}

func (b *Base) Tag(key string) (string, bool) {
	if b.Tags == nil {
		return "", false
	}
	v, ok := b.Tags[key]
	return v, ok
}

func (b *Base) SetTag(key, value string) {
	if b.Tags == nil {
		b.Tags = map[string]string{}
	}
	b.Tags[key] = value
}

func (b *Base) HasTag(key string) bool {
	_, ok := b.Tag(key)
	return ok
}

// FullName renders the managed full name: "." between
// namespace and type, "+" between nested types.
func FullName(n Node) string {
	b := n.Info()
	var parents []string
	for p := b.Parent; p != nil; p = p.Info().Parent {
		switch p.(type) {
		case *Class, *Struct, *Interface:
			parents = append([]string{p.Info().Name}, parents...)
		default:
		}
	}
	name := b.Name
	if len(parents) > 0 {
		name = joinPlus(parents) + "+" + name
	}
	if b.Namespace != "" {
		return b.Namespace + "." + name
	}
	return name
}

func joinPlus(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += "+" + p
	}
	return out
}

// Ancestors walks the parent chain of n, including n itself first, ending at
// the Module or File root.
func Ancestors(n Node) []Node {
	var chain []Node
	for cur := n; cur != nil; cur = cur.Info().Parent {
		chain = append(chain, cur)
		switch cur.(type) {
		case *Module:
			return chain
		}
	}
	return chain
}

// AddChild appends child to parent's children list, wires the parent link,
// and propagates the file's namespace to children that declare none ("A
// File's namespace is assigned to every child that declares none).
// Appends to a Module are serialized through its mutex so per-header
// parser workers can attach File nodes concurrently.
func AddChild(parent, child Node) {
	if m, ok := parent.(*Module); ok {
		m.mu.Lock()
		defer m.mu.Unlock()
	}
	pb := parent.Info()
	cb := child.Info()
	cb.Parent = parent
	if cb.Namespace == "" {
		if f, ok := findFile(parent); ok {
			cb.Namespace = f.Info().Namespace
		}
	}
	pb.Children = append(pb.Children, child)
}

func findFile(n Node) (Node, bool) {
	for cur := n; cur != nil; cur = cur.Info().Parent {
		if f, ok := cur.(*File); ok {
			return f, true
		}
	}
	return nil, false
}

// --- Module -----------------------------------------------------------

// Module is the binary module descriptor: identifier, file path, and build
// flags forwarded by the external build environment. Children are Files.
type Module struct {
	Base
	ID         string
	FilePath   string
	BuildFlags map[string]string

	mu sync.Mutex
}

func (m *Module) Kind() Kind  { return KindModule }
func (m *Module) Info() *Base { return &m.Base }

// --- File ---------------------------------------------------------------

// File is a single header path; children are top-level type definitions.
// Files within a Module are sorted by path to keep output deterministic.
type File struct {
	Base
	Path string
}

func (f *File) Kind() Kind  { return KindFile }
func (f *File) Info() *Base { return &f.Base }

// --- Class ----------------------------------------------------------------

// Class is a mutable virtual/scripting object. Derived fields
// (IsScriptingObject, IsBaseTypeHidden, ScriptVTableSize, ScriptVTableOffset)
// are computed by the semantic analyzer, never by the parser.
type Class struct {
	Base

	BaseType   *TypeRef
	Interfaces []*TypeRef
	// InterfaceAccesses holds the inheritance access of each Interfaces
	// entry, index for index. Only publicly implemented interfaces
	// contribute to the script-vtable.
	InterfaceAccesses []Access
	BaseAccess        Access

	IsStatic           bool
	IsSealed           bool
	IsAbstract         bool
	NoSpawn            bool
	NoConstructor      bool
	IsAutoSerialization bool
	IsTemplate         bool

	Fields     []*Field
	Properties []*Property
	Functions  []*Function
	Events     []*Event

	// Derived by the semantic analyzer.
	IsScriptingObject   bool
	IsBaseTypeHidden    bool
	ScriptVTableSize    int
	ScriptVTableOffset  int

	// ResolvedBase is filled in by the resolver during init.
	ResolvedBase Node

	// SerializeMembers is the ordered auto-serialization list computed by
	// the semantic analyzer when IsAutoSerialization is set.
	SerializeMembers []SerializeMember
}

func (c *Class) Kind() Kind  { return KindClass }
func (c *Class) Info() *Base { return &c.Base }

// VirtualFunctions returns the functions declared directly on c that
// participate in the script-vtable.
func (c *Class) VirtualFunctions() []*Function {
	var out []*Function
	for _, fn := range c.Functions {
		if fn.IsVirtual {
			out = append(out, fn)
		}
	}
	return out
}

// --- Struct ---------------------------------------------------------------

// Struct is a value type. IsPod is derived by the semantic analyzer
// from the POD rule.
type Struct struct {
	Base

	Fields    []*Field
	Functions []*Function

	IsAutoSerialization bool
	ForceNoPod          bool
	NoDefault           bool
	IsTemplate          bool

	// Derived by the semantic analyzer.
	IsPod bool

	Interfaces        []*TypeRef
	InterfaceAccesses []Access
	BaseType          *TypeRef

	// SerializeMembers is the ordered auto-serialization list computed by
	// the semantic analyzer when IsAutoSerialization is set.
	SerializeMembers []SerializeMember
}

// SerializeMember is one entry in the ordered auto-serialization list the
// emitter walks to build Serialize/Deserialize
// bodies: either a Field or a Property, never both for the same name.
type SerializeMember struct {
	Field    *Field
	Property *Property
}

func (s *Struct) Kind() Kind  { return KindStruct }
func (s *Struct) Info() *Base { return &s.Base }

// --- Enum -------------------------------------------------------------

// EnumEntry is one enumerator: name, optional literal/expression text,
// its own comment and attributes.
type EnumEntry struct {
	Name       string
	Value      string // raw expression text, empty if implicit
	HasValue   bool
	Comment    []string
	Attributes string
}

// Enum is always a POD value type and can never host sub-types.
type Enum struct {
	Base

	Underlying *TypeRef // optional; defaults to int32 when nil
	Entries    []EnumEntry
}

func (e *Enum) Kind() Kind  { return KindEnum }
func (e *Enum) Info() *Base { return &e.Base }

// --- Interface --------------------------------------------------------

// Interface is like a Class but may not have base classes; its functions
// define a virtual table of its own.
type Interface struct {
	Base

	Fields    []*Field
	Functions []*Function
	Events    []*Event

	ScriptVTableSize int // derived; an interface's own vtable is its function count
}

func (i *Interface) Kind() Kind  { return KindInterface }
func (i *Interface) Info() *Base { return &i.Base }

// --- Typedef ------------------------------------------------------------

// Typedef is an alias or template instantiation. After resolution it
// either aliases an existing node (IsAlias, Resolved points at it) or clones
// and specializes a template (Resolved points at the synthesized clone).
type Typedef struct {
	Base

	Target  *TypeRef
	IsAlias bool

	Resolved Node
}

func (t *Typedef) Kind() Kind  { return KindTypedef }
func (t *Typedef) Info() *Base { return &t.Base }

// --- InjectCode -----------------------------------------------------------

// InjectCode is an inert text payload with a language tag, emitted verbatim
// where allowed.
type InjectCode struct {
	Base

	Lang string
	Text string
}

func (i *InjectCode) Kind() Kind  { return KindInjectCode }
func (i *InjectCode) Info() *Base { return &i.Base }

// --- LangType -----------------------------------------------------------

// LangType is a built-in scalar: value type, POD, cannot have children.
type LangType struct {
	Base

	// NativeSize is the sizeof() in bytes of the primitive, used by the
	// emitter's type-initializer.
	NativeSize int
}

func (l *LangType) Kind() Kind  { return KindLangType }
func (l *LangType) Info() *Base { return &l.Base }
