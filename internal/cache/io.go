// Package cache implements the per-module binary cache: a versioned
// snapshot of a single Module keyed by the build inputs that can change its
// output, with a write protocol (version, keys, module subtree) and a load
// protocol that treats any key mismatch — including a header modified after
// the snapshot — as a miss rather than an error.
package cache

import (
	"encoding/binary"
	"io"

	"github.com/flaxengine/bindgen/internal/bgerr"
)

// FormatVersion is the monotonic cache format version. Bump it whenever
// the node write protocol changes shape.
const FormatVersion int32 = 2

// writer accumulates a cache snapshot's bytes, tracking the first error so
// call sites can chain writes without checking every call (mirroring the
// errgroup-free style the rest of this codebase uses for simple sequential
// I/O).
type writer struct {
	w   io.Writer
	err error
}

func newWriter(w io.Writer) *writer { return &writer{w: w} }

func (w *writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *writer) Int32(v int32) {
	if w.err != nil {
		return
	}
	w.fail(binary.Write(w.w, binary.LittleEndian, v))
}

func (w *writer) Int64(v int64) {
	if w.err != nil {
		return
	}
	w.fail(binary.Write(w.w, binary.LittleEndian, v))
}

func (w *writer) Bool(v bool) {
	var b byte
	if v {
		b = 1
	}
	if w.err != nil {
		return
	}
	_, err := w.w.Write([]byte{b})
	w.fail(err)
}

// String writes a validity byte followed by a length-prefixed UTF-8 string
// when present, so optional strings and lists share one wire shape.
func (w *writer) String(s string) {
	w.Bool(true)
	w.rawString(s)
}

// OptString writes the validity byte as false and skips the payload when !ok.
func (w *writer) OptString(s string, ok bool) {
	w.Bool(ok)
	if ok {
		w.rawString(s)
	}
}

func (w *writer) rawString(s string) {
	if w.err != nil {
		return
	}
	w.Int32(int32(len(s)))
	if w.err != nil {
		return
	}
	_, err := io.WriteString(w.w, s)
	w.fail(err)
}

func (w *writer) StringSlice(ss []string) {
	w.Int32(int32(len(ss)))
	for _, s := range ss {
		w.rawString(s)
	}
}

func (w *writer) StringMap(m map[string]string) {
	w.Int32(int32(len(m)))
	for k, v := range m {
		w.rawString(k)
		w.rawString(v)
	}
}

// reader is the mirror-image cursor for the load path; once err is set
// every subsequent read is a no-op so a caller can unconditionally read a
// whole record and check err once at the end.
type reader struct {
	r   io.Reader
	err error
}

func newReader(r io.Reader) *reader { return &reader{r: r} }

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *reader) Int32() int32 {
	if r.err != nil {
		return 0
	}
	var v int32
	r.fail(binary.Read(r.r, binary.LittleEndian, &v))
	return v
}

func (r *reader) Int64() int64 {
	if r.err != nil {
		return 0
	}
	var v int64
	r.fail(binary.Read(r.r, binary.LittleEndian, &v))
	return v
}

func (r *reader) Bool() bool {
	if r.err != nil {
		return false
	}
	var b [1]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		r.fail(err)
		return false
	}
	return b[0] != 0
}

func (r *reader) String() string {
	if !r.Bool() {
		return ""
	}
	return r.rawString()
}

// OptString returns the string and whether it was present.
func (r *reader) OptString() (string, bool) {
	ok := r.Bool()
	if !ok {
		return "", false
	}
	return r.rawString(), true
}

func (r *reader) rawString() string {
	if r.err != nil {
		return ""
	}
	n := r.Int32()
	if r.err != nil || n < 0 {
		return ""
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		r.fail(err)
		return ""
	}
	return string(buf)
}

func (r *reader) StringSlice() []string {
	n := r.Int32()
	if r.err != nil || n < 0 {
		return nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = r.rawString()
	}
	return out
}

func (r *reader) StringMap() map[string]string {
	n := r.Int32()
	if r.err != nil || n < 0 {
		return nil
	}
	out := make(map[string]string, n)
	for i := int32(0); i < n; i++ {
		k := r.rawString()
		v := r.rawString()
		out[k] = v
	}
	return out
}

// errCorrupt wraps any low-level read failure as a CacheCorruption error,
// treated identically to CacheMiss by the caller.
func errCorrupt(err error) error {
	if err == nil {
		return nil
	}
	return bgerr.Wrap(bgerr.KindCacheCorrupt, "", 0, err)
}
