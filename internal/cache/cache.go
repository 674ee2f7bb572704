package cache

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/flaxengine/bindgen/internal/bgerr"
	"github.com/flaxengine/bindgen/internal/model"
)

// Save writes a complete snapshot of module to w: format version, key, then
// the module's node subtree. The module itself must
// be the root written — File is its only child kind.
func Save(w io.Writer, key Key, module *model.Module) error {
	wr := newWriter(w)
	wr.Int32(FormatVersion)
	wr.writeKey(key)
	wr.writeNode(module)
	if wr.err != nil {
		return bgerr.Wrap(bgerr.KindIO, module.FilePath, 0, wr.err)
	}
	return nil
}

// SaveFile writes a snapshot to path atomically: to a temp file in the same
// directory, then renamed into place, so a crash mid-write never leaves a
// corrupt file behind (a truncated write is otherwise indistinguishable from
// corruption on the next load, and corruption means a full reparse).
func SaveFile(path string, key Key, module *model.Module) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return bgerr.Wrap(bgerr.KindIO, path, 0, err)
	}
	if err := Save(f, key, module); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return bgerr.Wrap(bgerr.KindIO, path, 0, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return bgerr.Wrap(bgerr.KindIO, path, 0, err)
	}
	return nil
}

// Result is the outcome of a Load attempt: either a
// usable Module on a hit, or a reason it was a miss. A corrupt cache file is
// reported exactly like a stale one — both mean "reparse from source".
type Result struct {
	Module *model.Module
	Hit    bool
	Reason string // set when Hit is false; empty means "no cache file yet"
}

// Load reads a cache snapshot from r and compares its embedded key against
// want. Any mismatch — format version, any Key field, including a header
// whose recorded mtime no longer matches — is reported as a miss rather
// than an error; a stale key simply forces a reparse.
func Load(r io.Reader, want Key) Result {
	rd := newReader(r)
	version := rd.Int32()
	if rd.err != nil {
		return Result{Reason: "cache unreadable: " + rd.err.Error()}
	}
	if version != FormatVersion {
		return Result{Reason: fmt.Sprintf("cache format version mismatch: have %d want %d", version, FormatVersion)}
	}
	got := rd.readKey()
	if rd.err != nil {
		return Result{Reason: "cache key unreadable: " + rd.err.Error()}
	}
	if !got.Equal(want) {
		return Result{Reason: "cache key mismatch"}
	}

	node, err := rd.readNode()
	if err != nil {
		return Result{Reason: "cache body corrupt: " + err.Error()}
	}
	module, ok := node.(*model.Module)
	if !ok {
		return Result{Reason: fmt.Sprintf("cache root was %T, expected Module", node)}
	}
	return Result{Module: module, Hit: true}
}

// LoadFile is Load against a path on disk. A missing file is a plain miss,
// not an error: the very first build for a module has no cache yet.
func LoadFile(path string, want Key) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Reason: "no cache file"}
		}
		return Result{Reason: "cache read error: " + err.Error()}
	}
	return Load(bytes.NewReader(data), want)
}

// Peek reads just the format version and Key of a cache file without
// decoding its node body, for the "cache stats" CLI surface that reports
// per-module key metadata without paying the cost of a full parse.
func Peek(path string) (Key, error) {
	f, err := os.Open(path)
	if err != nil {
		return Key{}, err
	}
	defer f.Close()
	rd := newReader(f)
	version := rd.Int32()
	if rd.err != nil {
		return Key{}, rd.err
	}
	if version != FormatVersion {
		return Key{}, fmt.Errorf("cache format version mismatch: have %d want %d", version, FormatVersion)
	}
	k := rd.readKey()
	if rd.err != nil {
		return Key{}, rd.err
	}
	return k, nil
}
