package parser

import (
	"testing"

	"github.com/Lockdog88/gdbwire"
	"github.com/Lockdog88/gdbwire/scanner"
)

func parseLine(t *testing.T, line string) *Line {
	t.Helper()
	toks, err := scanner.Scan([]byte(line))
	if err != nil {
		t.Fatalf("%q: scan error: %v", line, err)
	}
	ln, err := ParseLine(toks)
	if err != nil {
		t.Fatalf("%q: parse error: %v", line, err)
	}
	return ln
}

func TestParsePrompt(t *testing.T) {
	ln := parseLine(t, "(gdb) ")
	if ln.Kind != LinePrompt {
		t.Fatalf("got %v, want LinePrompt", ln.Kind)
	}
}

func TestParseStreamRecord(t *testing.T) {
	ln := parseLine(t, `~"Hello World console output"`)
	if ln.Kind != LineOOB || ln.OOB.Kind != gdbwire.OOBStream {
		t.Fatalf("unexpected line: %+v", ln)
	}
	sr := ln.OOB.Stream
	if sr.Kind != gdbwire.StreamConsole || sr.Text != "Hello World console output" {
		t.Fatalf("unexpected stream record: %+v", sr)
	}
}

func TestParseAsyncRunning(t *testing.T) {
	ln := parseLine(t, `*running,thread-id="all"`)
	if ln.Kind != LineOOB || ln.OOB.Kind != gdbwire.OOBAsync {
		t.Fatalf("unexpected line: %+v", ln)
	}
	ar := ln.OOB.Async
	if ar.Kind != gdbwire.AsyncExec || ar.Class != gdbwire.AsyncClassRunning {
		t.Fatalf("unexpected async record: %+v", ar)
	}
	if len(ar.Results) != 1 || ar.Results[0].Variable != "thread-id" || ar.Results[0].CString != "all" {
		t.Fatalf("unexpected results: %+v", ar.Results)
	}
}

func TestParseNotifyWithNestedTuple(t *testing.T) {
	ln := parseLine(t, `=breakpoint-created,bkpt={number="2",type="breakpoint",line="9"}`)
	ar := ln.OOB.Async
	if ar.Kind != gdbwire.AsyncNotify || ar.Class != gdbwire.AsyncClassBreakpointCreated {
		t.Fatalf("unexpected async record: %+v", ar)
	}
	if len(ar.Results) != 1 || ar.Results[0].Variable != "bkpt" || ar.Results[0].Kind != gdbwire.ResultTuple {
		t.Fatalf("unexpected results: %+v", ar.Results)
	}
	children := ar.Results[0].Children
	want := map[string]string{"number": "2", "type": "breakpoint", "line": "9"}
	if len(children) != len(want) {
		t.Fatalf("unexpected children: %+v", children)
	}
	for _, c := range children {
		if c.Kind != gdbwire.ResultCString || want[c.Variable] != c.CString {
			t.Fatalf("unexpected child: %+v", c)
		}
	}
}

func TestParseUnknownAsyncClassIsUnsupported(t *testing.T) {
	ln := parseLine(t, `=never-heard-of-this,foo="bar"`)
	ar := ln.OOB.Async
	if ar.Class != gdbwire.AsyncClassUnsupported {
		t.Fatalf("got %v, want AsyncClassUnsupported", ar.Class)
	}
	if ar.RawName != "never-heard-of-this" {
		t.Fatalf("got RawName %q", ar.RawName)
	}
}

func TestParseResultWithToken(t *testing.T) {
	ln := parseLine(t, `512^error,msg="Undefined command: \"null\".  Try \"help\"."`)
	if ln.Kind != LineResult {
		t.Fatalf("unexpected line: %+v", ln)
	}
	rr := ln.Result
	if !rr.Token.Present || rr.Token.Value != 512 {
		t.Fatalf("unexpected token: %+v", rr.Token)
	}
	if rr.Class != gdbwire.ResultClassError {
		t.Fatalf("got class %v, want error", rr.Class)
	}
	if len(rr.Results) != 1 || rr.Results[0].CString != `Undefined command: "null".  Try "help".` {
		t.Fatalf("unexpected results: %+v", rr.Results)
	}
}

func TestParseEmptyTupleAndList(t *testing.T) {
	ln := parseLine(t, `^done,a={},b=[]`)
	if len(ln.Result.Results) != 2 {
		t.Fatalf("unexpected results: %+v", ln.Result.Results)
	}
	a, b := ln.Result.Results[0], ln.Result.Results[1]
	if a.Kind != gdbwire.ResultTuple || len(a.Children) != 0 {
		t.Fatalf("unexpected a: %+v", a)
	}
	if b.Kind != gdbwire.ResultList || len(b.Children) != 0 {
		t.Fatalf("unexpected b: %+v", b)
	}
}

func TestParseListWithKeylessEntries(t *testing.T) {
	ln := parseLine(t, `^done,frames=[{level="0"},{level="1"}]`)
	frames := ln.Result.Results[0]
	if frames.Kind != gdbwire.ResultList || len(frames.Children) != 2 {
		t.Fatalf("unexpected frames: %+v", frames)
	}
	for _, f := range frames.Children {
		if f.Variable != "" || f.Kind != gdbwire.ResultTuple {
			t.Fatalf("unexpected list entry: %+v", f)
		}
	}
}

func TestParseResultRecordWithNoResults(t *testing.T) {
	ln := parseLine(t, `^running`)
	if ln.Result.Class != gdbwire.ResultClassRunning || len(ln.Result.Results) != 0 {
		t.Fatalf("unexpected result record: %+v", ln.Result)
	}
}

func TestParseUnknownResultClassIsAnError(t *testing.T) {
	toks, err := scanner.Scan([]byte(`^bogus`))
	if err != nil {
		t.Fatalf("unexpected scan error: %v", err)
	}
	_, err = ParseLine(toks)
	if err == nil {
		t.Fatal("expected a syntax error for an unrecognized result class")
	}
	if _, ok := err.(*SyntaxError); !ok {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
}

func TestParseKeylessEntryInTupleIsAnError(t *testing.T) {
	toks, err := scanner.Scan([]byte(`^done,a={"bare"}`))
	if err != nil {
		t.Fatalf("unexpected scan error: %v", err)
	}
	_, err = ParseLine(toks)
	if err == nil {
		t.Fatal("expected a syntax error for a keyless tuple entry")
	}
}
