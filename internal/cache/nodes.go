package cache

import (
	"fmt"

	"github.com/flaxengine/bindgen/internal/model"
)

// writeBase writes the fields every node variant shares. The parent link is intentionally never written — it is
// recovered on load by the caller that links each node under its parent.
func (w *writer) writeBase(b *model.Base) {
	w.String(b.Name)
	w.String(b.NativeName)
	w.String(b.Namespace)
	w.StringSlice(b.Comment)
	w.String(b.Attributes)
	w.OptString(b.Deprecated, b.IsDeprecated)
	w.StringMap(b.Tags)
	w.String(b.File)
	w.Int32(int32(b.Line))
}

func (r *reader) readBase() model.Base {
	var b model.Base
	b.Name = r.String()
	b.NativeName = r.String()
	b.Namespace = r.String()
	b.Comment = r.StringSlice()
	b.Attributes = r.String()
	b.Deprecated, b.IsDeprecated = r.OptString()
	b.Tags = r.StringMap()
	b.File = r.String()
	b.Line = int(r.Int32())
	return b
}

// writeNode writes n's discriminator, its variant-specific payload, then
// its children recursively.
func (w *writer) writeNode(n model.Node) {
	w.String(string(n.Kind()))
	switch t := n.(type) {
	case *model.Module:
		w.writeBase(&t.Base)
		w.String(t.ID)
		w.String(t.FilePath)
		w.StringMap(t.BuildFlags)
	case *model.File:
		w.writeBase(&t.Base)
		w.String(t.Path)
	case *model.Class:
		w.writeBase(&t.Base)
		w.writeTypeRef(t.BaseType)
		w.Int32(int32(len(t.Interfaces)))
		for i, ref := range t.Interfaces {
			w.writeTypeRef(ref)
			acc := model.AccessPrivate
			if i < len(t.InterfaceAccesses) {
				acc = t.InterfaceAccesses[i]
			}
			w.Int32(int32(acc))
		}
		w.Int32(int32(t.BaseAccess))
		w.Bool(t.IsStatic)
		w.Bool(t.IsSealed)
		w.Bool(t.IsAbstract)
		w.Bool(t.NoSpawn)
		w.Bool(t.NoConstructor)
		w.Bool(t.IsAutoSerialization)
		w.Bool(t.IsTemplate)
		w.Bool(t.IsScriptingObject)
		w.Bool(t.IsBaseTypeHidden)
		w.Int32(int32(t.ScriptVTableSize))
		w.Int32(int32(t.ScriptVTableOffset))
		w.writeFields(t.Fields)
		w.writeProperties(t.Properties)
		w.writeFunctions(t.Functions)
		w.writeEvents(t.Events)
	case *model.Struct:
		w.writeBase(&t.Base)
		w.writeTypeRef(t.BaseType)
		w.Int32(int32(len(t.Interfaces)))
		for i, ref := range t.Interfaces {
			w.writeTypeRef(ref)
			acc := model.AccessPrivate
			if i < len(t.InterfaceAccesses) {
				acc = t.InterfaceAccesses[i]
			}
			w.Int32(int32(acc))
		}
		w.Bool(t.IsAutoSerialization)
		w.Bool(t.ForceNoPod)
		w.Bool(t.NoDefault)
		w.Bool(t.IsTemplate)
		w.Bool(t.IsPod)
		w.writeFields(t.Fields)
		w.writeFunctions(t.Functions)
	case *model.Enum:
		w.writeBase(&t.Base)
		w.writeTypeRef(t.Underlying)
		w.Int32(int32(len(t.Entries)))
		for _, e := range t.Entries {
			w.String(e.Name)
			w.OptString(e.Value, e.HasValue)
			w.StringSlice(e.Comment)
			w.String(e.Attributes)
		}
	case *model.Interface:
		w.writeBase(&t.Base)
		w.Int32(int32(t.ScriptVTableSize))
		w.writeFields(t.Fields)
		w.writeFunctions(t.Functions)
		w.writeEvents(t.Events)
	case *model.Typedef:
		w.writeBase(&t.Base)
		w.writeTypeRef(t.Target)
		w.Bool(t.IsAlias)
	case *model.InjectCode:
		w.writeBase(&t.Base)
		w.String(t.Lang)
		w.String(t.Text)
	case *model.LangType:
		w.writeBase(&t.Base)
		w.Int32(int32(t.NativeSize))
	default:
		w.fail(fmt.Errorf("cache: unknown node kind %T", n))
		return
	}
	children := n.Info().Children
	w.Int32(int32(len(children)))
	for _, c := range children {
		w.writeNode(c)
	}
}

func (w *writer) writeFields(fields []*model.Field) {
	w.Int32(int32(len(fields)))
	for _, f := range fields {
		w.writeBase(&f.Base)
		w.writeTypeRef(f.Type)
		w.Bool(f.IsStatic)
		w.Bool(f.IsConstexpr)
		w.Bool(f.IsReadOnly)
		w.Bool(f.NoArray)
		w.Bool(f.IsHidden)
		w.Int32(int32(f.Access))
		w.OptString(f.DefaultValue, f.HasDefault)
		w.Int32(int32(f.BitSize))
		w.writeOptFunction(f.Getter)
		w.writeOptFunction(f.Setter)
	}
}

func (w *writer) writeProperties(props []*model.Property) {
	w.Int32(int32(len(props)))
	for _, p := range props {
		w.writeBase(&p.Base)
		w.writeTypeRef(p.Type)
		w.writeOptFunction(p.Getter)
		w.writeOptFunction(p.Setter)
	}
}

func (w *writer) writeOptFunction(fn *model.Function) {
	if fn == nil {
		w.Bool(false)
		return
	}
	w.Bool(true)
	w.writeFunction(fn)
}

func (w *writer) writeFunction(fn *model.Function) {
	w.writeBase(&fn.Base)
	w.writeTypeRef(fn.ReturnType)
	w.Int32(int32(len(fn.Parameters)))
	for _, p := range fn.Parameters {
		w.writeBase(&p.Base)
		w.writeTypeRef(p.Type)
		w.OptString(p.DefaultValue, p.HasDefault)
		w.Int32(int32(p.Decoration))
	}
	w.Bool(fn.IsVirtual)
	w.Bool(fn.IsConst)
	w.Bool(fn.NoProxy)
	w.Bool(fn.IsHidden)
	w.Bool(fn.IsStatic)
	w.Bool(fn.IsDeprecatedFn)
	w.Int32(int32(fn.Access))
	w.String(fn.UniqueName)
	if fn.Glue == nil {
		w.Bool(false)
	} else {
		w.Bool(true)
		w.String(fn.Glue.InternalCallName)
		w.Bool(fn.Glue.ReturnsByRef)
	}
}

func (w *writer) writeFunctions(fns []*model.Function) {
	w.Int32(int32(len(fns)))
	for _, fn := range fns {
		w.writeFunction(fn)
	}
}

func (w *writer) writeEvents(events []*model.Event) {
	w.Int32(int32(len(events)))
	for _, e := range events {
		w.writeBase(&e.Base)
		w.Int32(int32(e.DelegateKind))
		w.Int32(int32(len(e.GenericArgs)))
		for _, g := range e.GenericArgs {
			w.writeTypeRef(g)
		}
		w.Bool(e.IsStatic)
		w.Int32(int32(e.Access))
	}
}

// readNode reads one node (discriminator + payload + children), returning
// an error for any unknown discriminator.
func (r *reader) readNode() (model.Node, error) {
	kindStr := r.String()
	if r.err != nil {
		return nil, errCorrupt(r.err)
	}
	kind := model.Kind(kindStr)

	var node model.Node
	switch kind {
	case model.KindModule:
		m := &model.Module{Base: r.readBase()}
		m.ID = r.String()
		m.FilePath = r.String()
		m.BuildFlags = r.StringMap()
		node = m
	case model.KindFile:
		f := &model.File{Base: r.readBase()}
		f.Path = r.String()
		node = f
	case model.KindClass:
		c := &model.Class{Base: r.readBase()}
		c.BaseType = r.readTypeRef()
		n := r.Int32()
		c.Interfaces = make([]*model.TypeRef, n)
		c.InterfaceAccesses = make([]model.Access, n)
		for i := range c.Interfaces {
			c.Interfaces[i] = r.readTypeRef()
			c.InterfaceAccesses[i] = model.Access(r.Int32())
		}
		c.BaseAccess = model.Access(r.Int32())
		c.IsStatic = r.Bool()
		c.IsSealed = r.Bool()
		c.IsAbstract = r.Bool()
		c.NoSpawn = r.Bool()
		c.NoConstructor = r.Bool()
		c.IsAutoSerialization = r.Bool()
		c.IsTemplate = r.Bool()
		c.IsScriptingObject = r.Bool()
		c.IsBaseTypeHidden = r.Bool()
		c.ScriptVTableSize = int(r.Int32())
		c.ScriptVTableOffset = int(r.Int32())
		c.Fields = r.readFields()
		c.Properties = r.readProperties()
		c.Functions = r.readFunctions()
		c.Events = r.readEvents()
		node = c
	case model.KindStruct:
		s := &model.Struct{Base: r.readBase()}
		s.BaseType = r.readTypeRef()
		n := r.Int32()
		s.Interfaces = make([]*model.TypeRef, n)
		s.InterfaceAccesses = make([]model.Access, n)
		for i := range s.Interfaces {
			s.Interfaces[i] = r.readTypeRef()
			s.InterfaceAccesses[i] = model.Access(r.Int32())
		}
		s.IsAutoSerialization = r.Bool()
		s.ForceNoPod = r.Bool()
		s.NoDefault = r.Bool()
		s.IsTemplate = r.Bool()
		s.IsPod = r.Bool()
		s.Fields = r.readFields()
		s.Functions = r.readFunctions()
		node = s
	case model.KindEnum:
		e := &model.Enum{Base: r.readBase()}
		e.Underlying = r.readTypeRef()
		n := r.Int32()
		e.Entries = make([]model.EnumEntry, n)
		for i := range e.Entries {
			e.Entries[i].Name = r.String()
			e.Entries[i].Value, e.Entries[i].HasValue = r.OptString()
			e.Entries[i].Comment = r.StringSlice()
			e.Entries[i].Attributes = r.String()
		}
		node = e
	case model.KindInterface:
		i := &model.Interface{Base: r.readBase()}
		i.ScriptVTableSize = int(r.Int32())
		i.Fields = r.readFields()
		i.Functions = r.readFunctions()
		i.Events = r.readEvents()
		node = i
	case model.KindTypedef:
		td := &model.Typedef{Base: r.readBase()}
		td.Target = r.readTypeRef()
		td.IsAlias = r.Bool()
		node = td
	case model.KindInjectCode:
		ic := &model.InjectCode{Base: r.readBase()}
		ic.Lang = r.String()
		ic.Text = r.String()
		node = ic
	case model.KindLangType:
		lt := &model.LangType{Base: r.readBase()}
		lt.NativeSize = int(r.Int32())
		node = lt
	default:
		return nil, bgerrUnknownKind(kindStr)
	}
	if r.err != nil {
		return nil, errCorrupt(r.err)
	}

	n := r.Int32()
	for i := int32(0); i < n && r.err == nil; i++ {
		child, err := r.readNode()
		if err != nil {
			return nil, err
		}
		linkChild(node, child)
	}
	return node, errCorrupt(r.err)
}

func (r *reader) readFields() []*model.Field {
	n := r.Int32()
	if r.err != nil || n == 0 {
		return nil
	}
	out := make([]*model.Field, n)
	for i := range out {
		f := &model.Field{Base: r.readBase()}
		f.Type = r.readTypeRef()
		f.IsStatic = r.Bool()
		f.IsConstexpr = r.Bool()
		f.IsReadOnly = r.Bool()
		f.NoArray = r.Bool()
		f.IsHidden = r.Bool()
		f.Access = model.Access(r.Int32())
		f.DefaultValue, f.HasDefault = r.OptString()
		f.BitSize = int(r.Int32())
		f.Getter = r.readOptFunction()
		f.Setter = r.readOptFunction()
		out[i] = f
	}
	return out
}

func (r *reader) readProperties() []*model.Property {
	n := r.Int32()
	if r.err != nil || n == 0 {
		return nil
	}
	out := make([]*model.Property, n)
	for i := range out {
		p := &model.Property{Base: r.readBase()}
		p.Type = r.readTypeRef()
		p.Getter = r.readOptFunction()
		p.Setter = r.readOptFunction()
		out[i] = p
	}
	return out
}

func (r *reader) readOptFunction() *model.Function {
	if !r.Bool() {
		return nil
	}
	return r.readFunction()
}

func (r *reader) readFunction() *model.Function {
	fn := &model.Function{Base: r.readBase()}
	fn.ReturnType = r.readTypeRef()
	n := r.Int32()
	fn.Parameters = make([]*model.Parameter, n)
	for i := range fn.Parameters {
		p := &model.Parameter{Base: r.readBase()}
		p.Type = r.readTypeRef()
		p.DefaultValue, p.HasDefault = r.OptString()
		p.Decoration = model.ParamDecoration(r.Int32())
		fn.Parameters[i] = p
	}
	fn.IsVirtual = r.Bool()
	fn.IsConst = r.Bool()
	fn.NoProxy = r.Bool()
	fn.IsHidden = r.Bool()
	fn.IsStatic = r.Bool()
	fn.IsDeprecatedFn = r.Bool()
	fn.Access = model.Access(r.Int32())
	fn.UniqueName = r.String()
	if r.Bool() {
		fn.Glue = &model.GlueDescriptor{
			InternalCallName: r.String(),
			ReturnsByRef:     r.Bool(),
		}
	}
	return fn
}

func (r *reader) readFunctions() []*model.Function {
	n := r.Int32()
	if r.err != nil || n == 0 {
		return nil
	}
	out := make([]*model.Function, n)
	for i := range out {
		out[i] = r.readFunction()
	}
	return out
}

func (r *reader) readEvents() []*model.Event {
	n := r.Int32()
	if r.err != nil || n == 0 {
		return nil
	}
	out := make([]*model.Event, n)
	for i := range out {
		e := &model.Event{Base: r.readBase()}
		e.DelegateKind = model.EventDelegateKind(r.Int32())
		gn := r.Int32()
		e.GenericArgs = make([]*model.TypeRef, gn)
		for j := range e.GenericArgs {
			e.GenericArgs[j] = r.readTypeRef()
		}
		e.IsStatic = r.Bool()
		e.Access = model.Access(r.Int32())
		out[i] = e
	}
	return out
}

// linkChild restores the parent pointer on load without repeating the
// parser-time namespace-inheritance side effect of model.AddChild — a
// cache-loaded node already carries its resolved namespace verbatim.
func linkChild(parent, child model.Node) {
	child.Info().Parent = parent
	parent.Info().Children = append(parent.Info().Children, child)
}

func bgerrUnknownKind(kind string) error {
	return fmt.Errorf("cache: unknown node discriminator %q", kind)
}
