package model

// Field is a data member. Getter/Setter are synthesized by the
// semantic analyzer after the field has been parsed, unless the
// field is private or hidden.
type Field struct {
	Base

	Type *TypeRef

	IsStatic   bool
	IsConstexpr bool
	IsReadOnly bool
	NoArray    bool
	IsHidden   bool
	Access     Access

	DefaultValue string
	HasDefault   bool

	// Bit-field width; only 0 or 1 is accepted.
	BitSize int

	Getter *Function
	Setter *Function
}

func (f *Field) Kind() Kind  { return KindField }
func (f *Field) Info() *Base { return &f.Base }

// Property merges a Getter and Setter Function under one exported name.
// The getter/setter types must match except for the compatible
// pairs (String<->StringView, Array<T><->Span<T>).
type Property struct {
	Base

	Type   *TypeRef
	Getter *Function
	Setter *Function
}

func (p *Property) Kind() Kind  { return KindProperty }
func (p *Property) Info() *Base { return &p.Base }

// IsReadOnly reports whether the property has no setter.
func (p *Property) IsReadOnly() bool { return p.Setter == nil }

// GlueDescriptor carries emitter-facing bookkeeping assigned while building
// the native glue: the internal-call name and whether a by-reference
// ABI conversion is required on return.
type GlueDescriptor struct {
	InternalCallName string
	ReturnsByRef     bool
}

// Function is a method, synthesized accessor, or free-standing API function.
// UniqueName is assigned during validation to keep overloads
// distinct within a container.
type Function struct {
	Base

	ReturnType *TypeRef
	Parameters []*Parameter

	IsVirtual    bool
	IsConst      bool
	NoProxy      bool
	IsHidden     bool
	IsStatic     bool
	IsDeprecatedFn bool
	Access       Access

	UniqueName string

	Glue *GlueDescriptor
}

func (fn *Function) Kind() Kind  { return KindFunction }
func (fn *Function) Info() *Base { return &fn.Base }

// ParamDecoration packs the orthogonal Ref/In/Out/This/Params flags into a
// bitset.
type ParamDecoration uint8

const (
	ParamRef ParamDecoration = 1 << iota
	ParamIn
	ParamOut
	ParamThis
	ParamParams
)

func (d ParamDecoration) Has(flag ParamDecoration) bool { return d&flag != 0 }

// IsByRef reports whether the parameter is passed by reference in either
// direction.
func (d ParamDecoration) IsByRef() bool { return d.Has(ParamRef) || d.Has(ParamIn) || d.Has(ParamOut) }

// IsByRefIn reports an in-only by-reference parameter.
func (d ParamDecoration) IsByRefIn() bool { return d.Has(ParamIn) && !d.Has(ParamOut) }

// IsByRefOut reports an out-only by-reference parameter.
func (d ParamDecoration) IsByRefOut() bool { return d.Has(ParamOut) && !d.Has(ParamIn) }

// Parameter is one function argument.
type Parameter struct {
	Base

	Type         *TypeRef
	DefaultValue string
	HasDefault   bool
	Decoration   ParamDecoration
}

func (p *Parameter) Kind() Kind  { return KindParameter }
func (p *Parameter) Info() *Base { return &p.Base }

// EventDelegateKind distinguishes a parameterless Action from a
// Delegate<T1,...,Tn>.
type EventDelegateKind int

const (
	DelegateAction EventDelegateKind = iota
	DelegateGeneric
)

// Event is a scripting-runtime event: its delegate signature is the
// generic argument list, possibly empty for a plain Action.
type Event struct {
	Base

	DelegateKind EventDelegateKind
	GenericArgs  []*TypeRef

	IsStatic bool
	Access   Access
}

func (e *Event) Kind() Kind  { return KindEvent }
func (e *Event) Info() *Base { return &e.Base }
