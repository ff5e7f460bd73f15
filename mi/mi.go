// Package mi is the high-level façade (C5): a convenience layer that
// owns a driver.Driver and an installed bundle of five categorized
// callbacks, decomposing each parsed gdbwire.Output into the stream,
// async, and result events a host actually wants to react to.
//
// The façade guarantees callback ordering matches byte-stream order: all
// out-of-band records for a command precede its result record, which
// precedes the prompt that terminates it.
package mi

import (
	"github.com/Lockdog88/gdbwire"
	"github.com/Lockdog88/gdbwire/driver"
	"github.com/Lockdog88/gdbwire/milog"
)

// Callbacks bundles the five host-visible event sinks. Any field left
// nil silently drops the corresponding event, matching the low-level
// driver.Callbacks contract.
type Callbacks struct {
	// StreamRecord fires once per stream record, as it arrives.
	StreamRecord func(*gdbwire.StreamRecord)

	// AsyncRecord fires once per async record, as it arrives.
	AsyncRecord func(*gdbwire.AsyncRecord)

	// ResultRecord fires once per result record, just before the prompt
	// that terminates the command it belongs to.
	ResultRecord func(*gdbwire.ResultRecord)

	// Prompt fires on each "(gdb) " line, including standalone ones.
	Prompt func(text string)

	// ParseError fires on each line that failed to scan or parse.
	ParseError func(*driver.ParseError)
}

// Option configures a Parser at construction time.
type Option func(*Parser)

// WithLogger attaches a diagnostic sink to the underlying driver.
func WithLogger(sink *milog.Sink) Option {
	return func(p *Parser) { p.logOpt = driver.WithLogger(sink) }
}

// WithMaxLineLength bounds the underlying driver's line buffer; see
// driver.WithMaxLineLength.
func WithMaxLineLength(n int) Option {
	return func(p *Parser) { p.maxLineOpt = driver.WithMaxLineLength(n) }
}

// Parser is the façade described by spec §4.4.
type Parser struct {
	cb         Callbacks
	d          *driver.Driver
	logOpt     driver.Option
	maxLineOpt driver.Option
}

// New allocates a Parser with the given callback bundle installed.
func New(cb Callbacks, opts ...Option) *Parser {
	p := &Parser{cb: cb}
	for _, opt := range opts {
		opt(p)
	}

	var dopts []driver.Option
	if p.logOpt != nil {
		dopts = append(dopts, p.logOpt)
	}
	if p.maxLineOpt != nil {
		dopts = append(dopts, p.maxLineOpt)
	}

	p.d = driver.New(driver.Callbacks{
		Output:     p.handleOutput,
		Prompt:     p.handlePrompt,
		ParseError: p.handleParseError,
	}, dopts...)

	return p
}

// Push feeds bytes to the underlying driver; see driver.Driver.Push.
func (p *Parser) Push(data []byte) error {
	return p.d.Push(data)
}

// Close signals end-of-stream to the underlying driver.
func (p *Parser) Close() {
	p.d.Close()
}

func (p *Parser) handleOutput(out *gdbwire.Output) {
	for _, oob := range out.OOBRecords {
		switch oob.Kind {
		case gdbwire.OOBAsync:
			if p.cb.AsyncRecord != nil {
				p.cb.AsyncRecord(oob.Async)
			}
		case gdbwire.OOBStream:
			if p.cb.StreamRecord != nil {
				p.cb.StreamRecord(oob.Stream)
			}
		}
	}
	if out.Result != nil && p.cb.ResultRecord != nil {
		p.cb.ResultRecord(out.Result)
	}
}

func (p *Parser) handlePrompt(text string) {
	if p.cb.Prompt != nil {
		p.cb.Prompt(text)
	}
}

func (p *Parser) handleParseError(e *driver.ParseError) {
	if p.cb.ParseError != nil {
		p.cb.ParseError(e)
	}
}
