package cache

import "github.com/flaxengine/bindgen/internal/model"

func (w *writer) writeTypeRef(t *model.TypeRef) {
	if t == nil {
		w.Bool(false)
		return
	}
	w.Bool(true)
	w.String(t.Name)
	w.Bool(t.IsConst)
	w.Bool(t.IsRef)
	w.Bool(t.IsMoveRef)
	w.Bool(t.IsPtr)
	w.Bool(t.IsArray)
	w.Bool(t.IsBitField)
	w.Int32(int32(t.ArraySize))
	w.Int32(int32(t.BitSize))
	w.Int32(int32(len(t.Generic)))
	for _, g := range t.Generic {
		w.writeTypeRef(g)
	}
}

func (r *reader) readTypeRef() *model.TypeRef {
	if !r.Bool() {
		return nil
	}
	t := &model.TypeRef{}
	t.Name = r.String()
	t.IsConst = r.Bool()
	t.IsRef = r.Bool()
	t.IsMoveRef = r.Bool()
	t.IsPtr = r.Bool()
	t.IsArray = r.Bool()
	t.IsBitField = r.Bool()
	t.ArraySize = int(r.Int32())
	t.BitSize = int(r.Int32())
	n := r.Int32()
	if r.err != nil {
		return t
	}
	t.Generic = make([]*model.TypeRef, n)
	for i := range t.Generic {
		t.Generic[i] = r.readTypeRef()
	}
	return t
}
