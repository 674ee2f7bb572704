package cache

// HeaderEntry is one tracked source header and the timestamp it had when
// the snapshot was written.
type HeaderEntry struct {
	Path    string
	ModTime int64
}

// Key is everything a cache snapshot is keyed by: the build
// environment, the three preprocessor definition sets, the ordered header
// list with timestamps, and the generator binary's own last-write time.
type Key struct {
	IntermediateFolder string
	Platform           string
	Architecture       string
	Configuration      string

	PublicDefines  []string
	PrivateDefines []string
	CompileEnvDefines []string

	Headers []HeaderEntry

	GeneratorModTime int64
}

// Equal reports whether k and other are the same cache key — every field
// must match exactly; a header whose recorded timestamp differs (even if
// only because it was touched after the snapshot) counts as a mismatch.
func (k Key) Equal(other Key) bool {
	if k.IntermediateFolder != other.IntermediateFolder ||
		k.Platform != other.Platform ||
		k.Architecture != other.Architecture ||
		k.Configuration != other.Configuration ||
		k.GeneratorModTime != other.GeneratorModTime {
		return false
	}
	if !stringsEqual(k.PublicDefines, other.PublicDefines) ||
		!stringsEqual(k.PrivateDefines, other.PrivateDefines) ||
		!stringsEqual(k.CompileEnvDefines, other.CompileEnvDefines) {
		return false
	}
	if len(k.Headers) != len(other.Headers) {
		return false
	}
	for i, h := range k.Headers {
		if h != other.Headers[i] {
			return false
		}
	}
	return true
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (w *writer) writeKey(k Key) {
	w.String(k.IntermediateFolder)
	w.String(k.Platform)
	w.String(k.Architecture)
	w.String(k.Configuration)
	w.StringSlice(k.PublicDefines)
	w.StringSlice(k.PrivateDefines)
	w.StringSlice(k.CompileEnvDefines)
	w.Int32(int32(len(k.Headers)))
	for _, h := range k.Headers {
		w.String(h.Path)
		w.Int64(h.ModTime)
	}
	w.Int64(k.GeneratorModTime)
}

func (r *reader) readKey() Key {
	var k Key
	k.IntermediateFolder = r.String()
	k.Platform = r.String()
	k.Architecture = r.String()
	k.Configuration = r.String()
	k.PublicDefines = r.StringSlice()
	k.PrivateDefines = r.StringSlice()
	k.CompileEnvDefines = r.StringSlice()
	n := r.Int32()
	if n > 0 {
		k.Headers = make([]HeaderEntry, n)
		for i := range k.Headers {
			k.Headers[i].Path = r.String()
			k.Headers[i].ModTime = r.Int64()
		}
	}
	k.GeneratorModTime = r.Int64()
	return k
}
