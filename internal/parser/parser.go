// Package parser implements the tag-driven header parser: it drives the
// tokenizer (internal/token) over one header, populating a model.File by
// recognizing API_CLASS/STRUCT/ENUM/INTERFACE/FIELD/PROPERTY/FUNCTION/
// EVENT/TYPEDEF/PARAM/INJECT_CODE constructs, tracking brace scope and
// access modifiers between them, and delegating #if/#ifdef/#define handling
// to internal/preproc.
package parser

import (
	"path/filepath"
	"strings"

	"github.com/flaxengine/bindgen/internal/bgerr"
	"github.com/flaxengine/bindgen/internal/model"
	"github.com/flaxengine/bindgen/internal/preproc"
	"github.com/flaxengine/bindgen/internal/token"
)

// scopeEntry tracks one pushed container alongside the raw brace depth at
// which its own opening '{' was consumed, so the generic brace counter in
// the main loop knows when the matching '}' closes it.
type scopeEntry struct {
	node  model.Node
	depth int
}

// Parser owns everything a single header's parse needs: the current File
// node, the tokenizer, the scope stack, the current access level, and the
// preprocessor define map.
type Parser struct {
	file   *model.File
	module *model.Module
	tz     *token.Tokenizer
	pre    *preproc.Evaluator

	scope      []scopeEntry
	braceDepth int
	access     model.Access

	pendingComment []string
	hooks          UnknownTagHooks

	// pendingAutoSerialization records a bare API_AUTO_SERIALIZATION marker
	// seen before the next class/struct keyword.
	pendingAutoSerialization bool
}

// UnknownTagHooks lets callers opt in to extension points for otherwise-
// ignored tag names.
type UnknownTagHooks struct {
	OnUnknownTag func(tagName string, file string, line int)
}

// ParseFile tokenizes and parses one header into a model.File, attached as
// a child of module. pre supplies the preprocessor define context; it is
// typically fresh per file (local defines don't leak across headers) but
// shares the public/private/compile-env sets.
func ParseFile(path string, src []byte, module *model.Module, pre *preproc.Evaluator, hooks UnknownTagHooks) (*model.File, error) {
	file := &model.File{Base: model.Base{Name: filepath.Base(path)}, Path: path}
	model.AddChild(module, file)

	p := &Parser{
		file:   file,
		module: module,
		tz:     token.New(path, src),
		pre:    pre,
		access: model.AccessPrivate,
		hooks:  hooks,
	}
	p.scope = []scopeEntry{{node: file, depth: 0}}

	if err := p.run(); err != nil {
		return nil, err
	}
	return file, nil
}

func (p *Parser) errf(format string, args ...any) error {
	line := p.tz.CurrentLineHint()
	return bgerr.New(bgerr.KindSyntax, p.file.Path, line, format, args...)
}

func (p *Parser) currentContainer() model.Node {
	return p.scope[len(p.scope)-1].node
}

func (p *Parser) pushScope(n model.Node) {
	p.scope = append(p.scope, scopeEntry{node: n, depth: p.braceDepth})
}

func (p *Parser) run() error {
	for {
		tok, err := p.tz.Next(true)
		if err != nil {
			return err
		}
		switch tok.Type {
		case token.EOF:
			if len(p.scope) != 1 {
				return bgerr.Wrap(bgerr.KindSyntax, p.file.Path, tok.Line, bgerr.ErrMismatchedBrace)
			}
			return nil
		case token.LineComment, token.BlockComment:
			p.pendingComment = append(p.pendingComment, commentLine(tok))
		case token.Newline, token.Whitespace:
			// comment blocks may span consecutive commented lines; blank
			// non-comment content is handled below when another token type
			// arrives.
		case token.Hash:
			if err := p.handleDirective(); err != nil {
				return err
			}
		case token.Punct:
			switch tok.Text {
			case "{":
				p.braceDepth++
			case "}":
				if p.braceDepth == 0 {
					return bgerr.Wrap(bgerr.KindSyntax, p.file.Path, tok.Line, bgerr.ErrMismatchedBrace)
				}
				p.braceDepth--
				if len(p.scope) > 1 && p.scope[len(p.scope)-1].depth == p.braceDepth {
					p.scope = p.scope[:len(p.scope)-1]
					p.access = model.AccessPrivate
					// consume an optional trailing ';' after class/struct bodies
					if nt, err := p.tz.Peek(false); err == nil && nt.Type == token.Punct && nt.Text == ";" {
						p.tz.Next(false)
					}
				}
			}
			p.pendingComment = nil
		case token.Identifier:
			if handled, err := p.handleAccessLabel(tok.Text); handled {
				if err != nil {
					return err
				}
				continue
			}
			if strings.HasPrefix(tok.Text, "API_") {
				if err := p.dispatch(tok.Text, tok.Line); err != nil {
					return err
				}
				continue
			}
			p.pendingComment = nil
		default:
			p.pendingComment = nil
		}
	}
}

// readExprUntil reads raw source text (joined with single spaces) up to —
// but not consuming — a top-level (depth-0) punctuation token whose text is
// in stops. Used for field and parameter default-value expressions, which
// the parser stores verbatim rather than evaluating.
func (p *Parser) readExprUntil(stops map[string]bool) (string, error) {
	var b strings.Builder
	depth := 0
	for {
		tok, err := p.tz.Peek(false)
		if err != nil {
			return "", err
		}
		if tok.Type == token.Punct && depth == 0 && stops[tok.Text] {
			return strings.TrimSpace(b.String()), nil
		}
		p.tz.Next(false)
		if tok.Type == token.Punct && (tok.Text == "(" || tok.Text == "<") {
			depth++
		}
		if tok.Type == token.Punct && (tok.Text == ")" || tok.Text == ">") {
			depth--
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Text)
	}
}

func commentLine(tok token.Token) string {
	text := tok.Text
	if tok.Type == token.BlockComment {
		text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	}
	return text
}

func (p *Parser) handleAccessLabel(name string) (bool, error) {
	var lvl model.Access
	switch name {
	case "public":
		lvl = model.AccessPublic
	case "protected":
		lvl = model.AccessProtected
	case "private":
		lvl = model.AccessPrivate
	case "internal":
		lvl = model.AccessInternal
	default:
		return false, nil
	}
	nt, err := p.tz.Peek(false)
	if err != nil {
		return false, err
	}
	if nt.Type != token.Punct || nt.Text != ":" {
		return false, nil
	}
	p.tz.Next(false)
	p.access = lvl
	p.pendingComment = nil
	return true, nil
}

// takeComment consumes and resets the pending comment block, normalizing it
// before handing it to the construct being declared.
func (p *Parser) takeComment() []string {
	c := normalizeComment(p.pendingComment)
	p.pendingComment = nil
	return c
}

func (p *Parser) dispatch(tag string, line int) error {
	switch tag {
	case "API_CLASS":
		return p.parseClassLike(line, model.KindClass)
	case "API_STRUCT":
		return p.parseClassLike(line, model.KindStruct)
	case "API_INTERFACE":
		return p.parseClassLike(line, model.KindInterface)
	case "API_ENUM":
		return p.parseEnum(line)
	case "API_FIELD":
		return p.parseField(line)
	case "API_PROPERTY":
		return p.parseProperty(line)
	case "API_FUNCTION":
		return p.parseFunction(line)
	case "API_EVENT":
		return p.parseEvent(line)
	case "API_TYPEDEF":
		return p.parseTypedef(line)
	case "API_INJECT_CODE":
		return p.parseInjectCode(line)
	case "API_AUTO_SERIALIZATION":
		// A bare marker tag applied to the enclosing class/struct; the next
		// "class/struct" keyword is handled by parseClassLike, which checks
		// for a pending auto-serialization marker.
		p.pendingAutoSerialization = true
		return nil
	default:
		if p.hooks.OnUnknownTag != nil {
			p.hooks.OnUnknownTag(tag, p.file.Path, line)
		}
		return nil
	}
}
