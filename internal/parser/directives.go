package parser

import (
	"strings"

	"github.com/flaxengine/bindgen/internal/token"
)

// handleDirective processes one preprocessor line following a '#' marker
//: #define records a mapping; #if/#ifdef/#ifndef evaluate a
// condition and skip the inactive branch; #else, reached at the end of a
// taken branch, skips the alternate branch through its #endif; #endif is a
// no-op.
func (p *Parser) handleDirective() error {
	name, err := p.readDirectiveName()
	if err != nil {
		return err
	}
	switch name {
	case "define":
		defName, err := p.readDirectiveName()
		if err != nil {
			return err
		}
		value, err := p.consumeRestOfLine()
		if err != nil {
			return err
		}
		p.pre.Define(defName, value)
	case "if":
		cond, err := p.consumeRestOfLine()
		if err != nil {
			return err
		}
		if !p.pre.EvalIf(cond) {
			if _, err := p.skipBalanced(true); err != nil {
				return err
			}
		}
	case "ifdef":
		sym, err := p.readDirectiveName()
		if err != nil {
			return err
		}
		if _, err := p.consumeRestOfLine(); err != nil {
			return err
		}
		if !p.pre.EvalIfdef(sym, false) {
			if _, err := p.skipBalanced(true); err != nil {
				return err
			}
		}
	case "ifndef":
		sym, err := p.readDirectiveName()
		if err != nil {
			return err
		}
		if _, err := p.consumeRestOfLine(); err != nil {
			return err
		}
		if !p.pre.EvalIfdef(sym, true) {
			if _, err := p.skipBalanced(true); err != nil {
				return err
			}
		}
	case "else":
		// Reached while parsing the taken branch of an enclosing #if: the
		// alternate branch must be discarded up to the matching #endif.
		if _, err := p.skipBalanced(false); err != nil {
			return err
		}
	case "endif":
		// No-op: the taken branch continues; any skip already consumed the
		// #endif that belonged to an untaken branch.
	default:
		if _, err := p.consumeRestOfLine(); err != nil {
			return err
		}
	}
	return nil
}

// readDirectiveName reads the identifier immediately following a '#' (or,
// recursively, following another directive keyword), skipping intervening
// whitespace but not crossing a newline.
func (p *Parser) readDirectiveName() (string, error) {
	for {
		tok, err := p.tz.Next(true)
		if err != nil {
			return "", err
		}
		switch tok.Type {
		case token.Whitespace:
			continue
		case token.Identifier:
			return tok.Text, nil
		case token.Newline, token.EOF:
			return "", nil
		default:
			return "", nil
		}
	}
}

// consumeRestOfLine discards (and returns, space-joined) every token up to
// the next Newline or EOF, used for #define values and #if conditions.
func (p *Parser) consumeRestOfLine() (string, error) {
	var parts []string
	for {
		tok, err := p.tz.Next(true)
		if err != nil {
			return "", err
		}
		if tok.Type == token.Newline || tok.Type == token.EOF {
			return strings.TrimSpace(strings.Join(parts, " ")), nil
		}
		if tok.Type == token.Whitespace {
			continue
		}
		parts = append(parts, tok.Text)
	}
}

// skipBalanced discards tokens until a depth-0 "#endif" (consumed,
// returning false) or, when stopAtElse, a depth-0 "#else" (consumed,
// returning true so the caller resumes normal parsing of that branch).
// Nested #if/#ifdef/#ifndef increase depth so their own #else/#endif don't
// prematurely match.
func (p *Parser) skipBalanced(stopAtElse bool) (foundElse bool, err error) {
	depth := 0
	for {
		tok, err := p.tz.Next(true)
		if err != nil {
			return false, err
		}
		if tok.Type == token.EOF {
			return false, nil
		}
		if tok.Type != token.Hash {
			continue
		}
		name, err := p.readDirectiveName()
		if err != nil {
			return false, err
		}
		switch name {
		case "if", "ifdef", "ifndef":
			depth++
			if _, err := p.consumeRestOfLine(); err != nil {
				return false, err
			}
		case "else":
			if depth == 0 {
				if stopAtElse {
					return true, nil
				}
				continue
			}
		case "endif":
			if depth == 0 {
				return false, nil
			}
			depth--
		default:
			if _, err := p.consumeRestOfLine(); err != nil {
				return false, err
			}
		}
	}
}
