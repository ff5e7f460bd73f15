// Package driver is the incremental driver (C4). It owns a line buffer
// across Push calls, delimits complete lines at newline boundaries,
// feeds each line through the scanner and parser packages, recovers from
// malformed lines by resynchronizing at the next newline, and delivers
// completed output commands and prompts to the host through callbacks.
//
// A Driver is single-threaded and cooperative: Push runs to completion,
// invoking zero or more callbacks inline, and never blocks or retains a
// reference to the caller's slice. A Driver is not safe for concurrent
// use by multiple goroutines; distinct Drivers share no state.
package driver

import (
	"bytes"
	"fmt"

	"github.com/Lockdog88/gdbwire"
	"github.com/Lockdog88/gdbwire/milog"
	"github.com/Lockdog88/gdbwire/parser"
	"github.com/Lockdog88/gdbwire/scanner"
)

// ParseError is delivered through Callbacks.ParseError for a line the
// scanner or parser could not recognize. It carries everything spec
// §6.3 requires: the offending line, the token at or near the error
// cursor, and a 1-based start/end column.
type ParseError struct {
	Line             string
	Near             string
	StartCol, EndCol int

	// Err is non-nil only for the line-too-long failure mode, in which
	// case it is gdbwire.ErrLineTooLong. It is nil for an ordinary lex
	// or syntax error.
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error at col %d: %v: %s", e.StartCol, e.Err, e.Line)
	}
	return fmt.Sprintf("parse error at col %d: near %q: %s", e.StartCol, e.Near, e.Line)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Callbacks bundles the low-level event sinks a host installs on a
// Driver. Any field may be left nil; the corresponding events are then
// silently dropped, matching spec §6.1's "create" contract.
type Callbacks struct {
	// Output fires once per completed output command, just before the
	// prompt that terminates it.
	Output func(*gdbwire.Output)

	// Prompt fires for every "(gdb)" line, including standalone ones
	// that terminate no accumulated records.
	Prompt func(text string)

	// ParseError fires once per line that failed to scan or parse. The
	// in-progress output command, if any, is discarded.
	ParseError func(*ParseError)
}

// State is the driver's small internal state machine, exposed read-only
// for diagnostics and tests.
type State int

const (
	// Idle: no records have been accumulated since the last prompt (or
	// since the driver was created).
	Idle State = iota
	// Accumulating: one or more out-of-band or result records have been
	// parsed since the last prompt.
	Accumulating
)

func (s State) String() string {
	if s == Accumulating {
		return "accumulating"
	}
	return "idle"
}

// Option configures a Driver at construction time.
type Option func(*Driver)

// WithLogger attaches a diagnostic sink. Without this option the driver
// logs nothing (milog.NopSink).
func WithLogger(sink *milog.Sink) Option {
	return func(d *Driver) { d.log = sink }
}

// WithMaxLineLength bounds how many bytes the driver will buffer while
// waiting for a newline. A value of 0 (the default) means unbounded,
// matching the original gdbwire, which has no such limit. When the
// bound is exceeded before a newline arrives, the buffered bytes are
// discarded and a single parse error is reported once the next newline
// is found; parsing then resumes normally at the line after.
func WithMaxLineLength(n int) Option {
	return func(d *Driver) { d.maxLineLength = n }
}

// Driver is the incremental push-driven parser described by spec §4.3.
type Driver struct {
	cb  Callbacks
	log *milog.Sink

	buf           []byte
	maxLineLength int
	overflowing   bool

	state    State
	building gdbwire.Output
}

// New allocates a Driver with the given callbacks installed.
func New(cb Callbacks, opts ...Option) *Driver {
	d := &Driver{cb: cb, log: milog.NopSink()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Push appends bytes to the internal line buffer and processes every
// complete line now contained in it. Incomplete bytes remain buffered
// for the next call, including a single byte at a time. Push never
// returns an error for malformed GDB/MI input, malformed lines are
// reported through Callbacks.ParseError; an error return is reserved for
// conditions the caller must treat as fatal (there are currently none in
// this pure-Go implementation, but the signature matches spec §6.1's
// push contract so a future bounded-resource failure can be added
// without an API break).
func (d *Driver) Push(p []byte) error {
	d.buf = append(d.buf, p...)

	for {
		idx := bytes.IndexByte(d.buf, '\n')
		if idx < 0 {
			d.checkOverflow()
			return nil
		}

		raw := d.buf[:idx]
		d.buf = append([]byte(nil), d.buf[idx+1:]...)

		// A line delivered whole, newline included, can still exceed
		// MaxLineLength; checking only the no-newline-yet path would make
		// the reported events depend on how the caller chunked the
		// stream, breaking push-fragmentation invariance.
		tooLong := d.overflowing || (d.maxLineLength > 0 && len(raw) > d.maxLineLength)
		if tooLong {
			d.overflowing = false
			d.log.Errorf("discarding oversized line (%d bytes buffered)", len(raw))
			d.reportLineTooLong(string(trimCR(raw)))
			d.discardAccumulating()
			continue
		}

		d.processLine(trimCR(raw))
	}
}

// checkOverflow marks the pending line as overflowing once the buffer
// exceeds MaxLineLength, while still watching for the newline that will
// let processing resume. Once the buffer grows beyond twice MaxLineLength
// it is truncated to its most recent MaxLineLength bytes, so memory stays
// bounded no matter how the caller chunks later writes.
func (d *Driver) checkOverflow() {
	if d.maxLineLength <= 0 || len(d.buf) <= d.maxLineLength {
		return
	}
	d.overflowing = true
	if len(d.buf) > d.maxLineLength*2 {
		d.buf = append([]byte(nil), d.buf[len(d.buf)-d.maxLineLength:]...)
	}
}

// Close signals end-of-stream. If the driver is Accumulating with no
// terminating prompt, the partial output command is discarded silently
// (spec §4.3's finalization rule: this is a normal way for a debugger to
// exit, not a parse error). Any bytes still buffered without a trailing
// newline are likewise discarded without comment.
func (d *Driver) Close() {
	d.discardAccumulating()
	d.buf = nil
	d.overflowing = false
}

// State reports the driver's current accumulation state.
func (d *Driver) State() State {
	return d.state
}

func (d *Driver) processLine(line []byte) {
	toks, err := scanner.Scan(line)
	if err != nil {
		lexErr, _ := err.(*scanner.LexError)
		if lexErr != nil {
			d.log.Warnf("lexical error: %v", lexErr)
			d.reportError(string(line), nearText(line, lexErr.Col, lexErr.EndCol), lexErr.Col, lexErr.EndCol)
		} else {
			d.reportError(string(line), "", 1, 1)
		}
		d.discardAccumulating()
		return
	}

	ln, err := parser.ParseLine(toks)
	if err != nil {
		synErr, _ := err.(*parser.SyntaxError)
		if synErr != nil {
			d.log.Warnf("syntax error: %v", synErr)
			d.reportError(string(line), nearText(line, synErr.Col, synErr.EndCol), synErr.Col, synErr.EndCol)
		} else {
			d.reportError(string(line), "", 1, 1)
		}
		d.discardAccumulating()
		return
	}

	d.log.Debugf("parsed line: %q", string(line))

	switch ln.Kind {
	case parser.LinePrompt:
		d.finishOutput()
		if d.cb.Prompt != nil {
			d.cb.Prompt(string(line))
		}
	case parser.LineOOB:
		d.building.OOBRecords = append(d.building.OOBRecords, ln.OOB)
		d.state = Accumulating
	case parser.LineResult:
		d.building.Result = ln.Result
		d.state = Accumulating
	}
}

// finishOutput delivers the accumulated output command, if any, and
// resets accumulation state ahead of the prompt that always follows it.
func (d *Driver) finishOutput() {
	if d.state != Accumulating {
		return
	}
	out := d.building
	d.building = gdbwire.Output{}
	d.state = Idle
	if d.cb.Output != nil {
		d.cb.Output(&out)
	}
}

func (d *Driver) discardAccumulating() {
	d.building = gdbwire.Output{}
	d.state = Idle
}

func (d *Driver) reportError(line, near string, start, end int) {
	d.report(&ParseError{
		Line:     line,
		Near:     near,
		StartCol: start,
		EndCol:   end,
	})
}

func (d *Driver) reportLineTooLong(line string) {
	d.report(&ParseError{
		Line:     line,
		StartCol: 1,
		EndCol:   1,
		Err:      gdbwire.ErrLineTooLong,
	})
}

func (d *Driver) report(e *ParseError) {
	if d.cb.ParseError == nil {
		return
	}
	d.cb.ParseError(e)
}

func trimCR(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		return line[:n-1]
	}
	return line
}

func nearText(line []byte, start, end int) string {
	if start < 1 {
		start = 1
	}
	s := start - 1
	e := end - 1
	if s >= len(line) {
		return ""
	}
	if e > len(line) {
		e = len(line)
	}
	if e < s {
		e = s
	}
	return string(line[s:e])
}
