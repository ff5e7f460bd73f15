// Package parser is the grammar recognizer (C3). It is a hand-written
// recursive-descent parser, in the panic/recover error-propagation style
// used by the teacher grammar's own spec parser: a syntax error panics
// with a *SyntaxError carrying a column range, which ParseLine recovers
// and returns as a plain error.
//
// ParseLine consumes the token stream produced by scanner.Scan for one
// already-delimited line and reduces it to one of: a prompt, an
// out-of-band record, or a result record. GDB/MI emits exactly one
// record per physical line, so a Line is the unit of reduction here;
// the driver package is what accumulates a sequence of Lines into a
// complete gdbwire.Output.
package parser

import (
	"fmt"

	"github.com/Lockdog88/gdbwire"
	"github.com/Lockdog88/gdbwire/scanner"
)

// SyntaxError is a grammar-level parse failure: a token appeared where
// the grammar in spec §4.2 did not allow it, or a result class
// identifier failed classification. (An unknown async class is not an
// error; it maps to gdbwire.AsyncClassUnsupported.)
type SyntaxError struct {
	Message     string
	Col, EndCol int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("col %d: %s", e.Col, e.Message)
}

func raise(col, endCol int, format string, args ...any) {
	panic(&SyntaxError{Message: fmt.Sprintf(format, args...), Col: col, EndCol: endCol})
}

// LineKind tags the result of parsing one line.
type LineKind int

const (
	LinePrompt LineKind = iota
	LineOOB
	LineResult
)

// Line is the reduction of one physical GDB/MI line.
type Line struct {
	Kind   LineKind
	OOB    *gdbwire.OOBRecord
	Result *gdbwire.ResultRecord
}

type parser struct {
	toks []scanner.Token
	pos  int
}

// ParseLine parses the tokens of one complete line, as produced by
// scanner.Scan, into a Line. It never returns a *SyntaxError wrapped in
// anything else; callers (the driver package) can type-assert the
// returned error to *SyntaxError to recover column information.
func ParseLine(toks []scanner.Token) (line *Line, err error) {
	defer func() {
		if r := recover(); r != nil {
			synErr, ok := r.(*SyntaxError)
			if !ok {
				panic(r)
			}
			err = synErr
		}
	}()

	p := &parser{toks: toks}
	return p.parseLine(), nil
}

func (p *parser) cur() scanner.Token {
	return p.toks[p.pos]
}

func (p *parser) advance() scanner.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(k scanner.Kind) scanner.Token {
	t := p.cur()
	if t.Kind != k {
		raise(t.Col, t.EndCol, "expected %s, found %s", k, t.Kind)
	}
	return p.advance()
}

func (p *parser) parseLine() *Line {
	if p.cur().Kind == scanner.KindPrompt {
		return &Line{Kind: LinePrompt}
	}

	tok := p.parseOptionalToken()

	switch p.cur().Kind {
	case scanner.KindCaret:
		p.advance()
		rr := p.parseResultRecord(tok)
		return &Line{Kind: LineResult, Result: rr}
	case scanner.KindStar:
		p.advance()
		ar := p.parseAsyncRecord(tok, gdbwire.AsyncExec)
		return &Line{Kind: LineOOB, OOB: &gdbwire.OOBRecord{Kind: gdbwire.OOBAsync, Async: ar}}
	case scanner.KindPlus:
		p.advance()
		ar := p.parseAsyncRecord(tok, gdbwire.AsyncStatus)
		return &Line{Kind: LineOOB, OOB: &gdbwire.OOBRecord{Kind: gdbwire.OOBAsync, Async: ar}}
	case scanner.KindEquals:
		p.advance()
		ar := p.parseAsyncRecord(tok, gdbwire.AsyncNotify)
		return &Line{Kind: LineOOB, OOB: &gdbwire.OOBRecord{Kind: gdbwire.OOBAsync, Async: ar}}
	case scanner.KindTilde:
		p.advance()
		sr := p.parseStreamRecord(gdbwire.StreamConsole)
		return &Line{Kind: LineOOB, OOB: &gdbwire.OOBRecord{Kind: gdbwire.OOBStream, Stream: sr}}
	case scanner.KindAt:
		p.advance()
		sr := p.parseStreamRecord(gdbwire.StreamTarget)
		return &Line{Kind: LineOOB, OOB: &gdbwire.OOBRecord{Kind: gdbwire.OOBStream, Stream: sr}}
	case scanner.KindAmp:
		p.advance()
		sr := p.parseStreamRecord(gdbwire.StreamLog)
		return &Line{Kind: LineOOB, OOB: &gdbwire.OOBRecord{Kind: gdbwire.OOBStream, Stream: sr}}
	default:
		t := p.cur()
		raise(t.Col, t.EndCol, "expected a record prefix ('^','*','+','=','~','@','&'), found %s", t.Kind)
		return nil // unreachable
	}
}

// parseOptionalToken consumes a leading integer token, if present,
// representing the token field that precedes a record's prefix
// character with no intervening whitespace.
func (p *parser) parseOptionalToken() gdbwire.Token {
	if p.cur().Kind != scanner.KindInteger {
		return gdbwire.NoToken
	}
	t := p.advance()
	tok, err := gdbwire.NewToken(t.Text)
	if err != nil {
		raise(t.Col, t.EndCol, "invalid token %q: %v", t.Text, err)
	}
	return tok
}

func (p *parser) parseResultRecord(tok gdbwire.Token) *gdbwire.ResultRecord {
	ct := p.expect(scanner.KindIdent)
	class, ok := gdbwire.ParseResultClass(ct.Text)
	if !ok {
		raise(ct.Col, ct.EndCol, "unrecognized result class %q", ct.Text)
	}
	results := p.parseResultTail()
	p.expect(scanner.KindEOL)
	return &gdbwire.ResultRecord{Token: tok, Class: class, Results: results}
}

func (p *parser) parseAsyncRecord(tok gdbwire.Token, kind gdbwire.AsyncRecordKind) *gdbwire.AsyncRecord {
	ct := p.expect(scanner.KindIdent)
	class := gdbwire.ParseAsyncClass(ct.Text)
	results := p.parseResultTail()
	p.expect(scanner.KindEOL)
	return &gdbwire.AsyncRecord{Token: tok, Kind: kind, Class: class, RawName: ct.Text, Results: results}
}

func (p *parser) parseStreamRecord(kind gdbwire.StreamRecordKind) *gdbwire.StreamRecord {
	s := p.expect(scanner.KindCString)
	p.expect(scanner.KindEOL)
	return &gdbwire.StreamRecord{Kind: kind, Text: s.Text}
}

// parseResultTail parses the ( ',' result )* that may follow a class
// identifier.
func (p *parser) parseResultTail() []*gdbwire.Result {
	var results []*gdbwire.Result
	for p.cur().Kind == scanner.KindComma {
		p.advance()
		results = append(results, p.parseResult(true))
	}
	return results
}

// parseResult parses `variable '=' value | value`. requireVariable
// forces the "variable=" form (used for record-level results and tuple
// entries, per the invariant that tuple children always carry a key);
// list entries may omit it.
func (p *parser) parseResult(requireVariable bool) *gdbwire.Result {
	if p.cur().Kind == scanner.KindIdent && p.peekIsEquals() {
		name := p.advance().Text
		p.advance() // '='
		v := p.parseValue()
		v.Variable = name
		return v
	}
	if requireVariable {
		t := p.cur()
		raise(t.Col, t.EndCol, "expected a named result (\"variable=value\"), found %s", t.Kind)
	}
	return p.parseValue()
}

func (p *parser) peekIsEquals() bool {
	if p.pos+1 >= len(p.toks) {
		return false
	}
	return p.toks[p.pos+1].Kind == scanner.KindEquals
}

func (p *parser) parseValue() *gdbwire.Result {
	switch p.cur().Kind {
	case scanner.KindCString:
		t := p.advance()
		return &gdbwire.Result{Kind: gdbwire.ResultCString, CString: t.Text}
	case scanner.KindLBrace:
		return p.parseTuple()
	case scanner.KindLBracket:
		return p.parseList()
	default:
		t := p.cur()
		raise(t.Col, t.EndCol, "expected a value (string, '{', or '['), found %s", t.Kind)
		return nil // unreachable
	}
}

func (p *parser) parseTuple() *gdbwire.Result {
	p.expect(scanner.KindLBrace)
	var children []*gdbwire.Result
	if p.cur().Kind != scanner.KindRBrace {
		children = append(children, p.parseResult(true))
		for p.cur().Kind == scanner.KindComma {
			p.advance()
			children = append(children, p.parseResult(true))
		}
	}
	p.expect(scanner.KindRBrace)
	return &gdbwire.Result{Kind: gdbwire.ResultTuple, Children: children}
}

func (p *parser) parseList() *gdbwire.Result {
	p.expect(scanner.KindLBracket)
	var children []*gdbwire.Result
	if p.cur().Kind != scanner.KindRBracket {
		children = append(children, p.parseResult(false))
		for p.cur().Kind == scanner.KindComma {
			p.advance()
			children = append(children, p.parseResult(false))
		}
	}
	p.expect(scanner.KindRBracket)
	return &gdbwire.Result{Kind: gdbwire.ResultList, Children: children}
}
