// Package bgerr defines the uniform error vocabulary used across the
// generator: a fixed set of error kinds, each carrying enough context to
// produce an editor-clickable "{file}({line}): {message}" line.
package bgerr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error categories the generator reports.
type Kind string

const (
	KindSyntax      Kind = "SyntaxError"
	KindUnknownTag  Kind = "UnknownTag"
	KindResolution  Kind = "ResolutionError"
	KindSemantic    Kind = "SemanticError"
	KindCacheMiss   Kind = "CacheMiss"
	KindCacheCorrupt Kind = "CacheCorruption"
	KindIO          Kind = "IOError"
)

// Sentinel errors for programmatic checks with errors.Is.
var (
	ErrCacheMiss      = errors.New("cache miss")
	ErrCacheCorrupt   = errors.New("cache corrupted")
	ErrMismatchedBrace = errors.New("mismatched brace")
	ErrUnterminatedComment = errors.New("unterminated multi-line comment")
	ErrMalformedString = errors.New("malformed string literal")
)

// Error is the uniform error payload. File/Line are optional: CacheMiss and
// CacheCorruption are not tied to a source location.
type Error struct {
	Kind    Kind
	File    string
	Line    int
	Message string
	Cause   error
}

// New creates a located error (file+line known — the common parser/resolver case).
func New(kind Kind, file string, line int, format string, args ...any) *Error {
	return &Error{Kind: kind, File: file, Line: line, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and location to an underlying error, preserving it for
// errors.Unwrap / errors.Is.
func Wrap(kind Kind, file string, line int, cause error) *Error {
	return &Error{Kind: kind, File: file, Line: line, Message: cause.Error(), Cause: cause}
}

// Error renders "{file}({line}): {message}" when a location is known,
// otherwise just the message, so editors can click through to the source.
func (e *Error) Error() string {
	if e.File == "" {
		return e.Message
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s(%d): %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Fatal reports whether an error kind aborts the owning module (everything
// except UnknownTag, which is warning-level, and CacheMiss/CacheCorruption,
// which just trigger a reparse).
func (k Kind) Fatal() bool {
	switch k {
	case KindUnknownTag, KindCacheMiss, KindCacheCorrupt:
		return false
	default:
		return true
	}
}
