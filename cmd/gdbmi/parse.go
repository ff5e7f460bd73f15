package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Lockdog88/gdbwire"
	"github.com/Lockdog88/gdbwire/driver"
	"github.com/Lockdog88/gdbwire/mi"
	"github.com/Lockdog88/gdbwire/milog"
)

var parseFlags = struct {
	source    *string
	format    *string
	chunkSize *int
	logPath   *string
}{}

const (
	outputFormatText = "text"
	outputFormatTree = "tree"
	outputFormatJSON = "json"
)

func init() {
	cmd := &cobra.Command{
		Use:     "parse [grammar-irrelevant, reads a GDB/MI transcript]",
		Short:   "Parse a GDB/MI output transcript",
		Example: `  gdb --interpreter=mi prog 2>&1 | gdbmi parse`,
		Args:    cobra.NoArgs,
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "transcript file path (default stdin)")
	parseFlags.format = cmd.Flags().StringP("format", "f", outputFormatText, "output format: one of text|tree|json")
	parseFlags.chunkSize = cmd.Flags().Int("chunk-size", 4096, "bytes pushed to the parser per read; lower it to rehearse push-fragmentation")
	parseFlags.logPath = cmd.Flags().String("log-file", "", "optional diagnostic log file (debug level)")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	switch *parseFlags.format {
	case outputFormatText, outputFormatTree, outputFormatJSON:
	default:
		return fmt.Errorf("invalid output format: %v", *parseFlags.format)
	}
	if *parseFlags.chunkSize <= 0 {
		return fmt.Errorf("--chunk-size must be positive")
	}

	src := os.Stdin
	if *parseFlags.source != "" {
		f, err := os.Open(*parseFlags.source)
		if err != nil {
			return fmt.Errorf("cannot open the source file %s: %w", *parseFlags.source, err)
		}
		defer f.Close()
		src = f
	}

	var opts []mi.Option
	if *parseFlags.logPath != "" {
		sink, err := milog.Open(*parseFlags.logPath, milog.LevelDebug)
		if err != nil {
			return fmt.Errorf("cannot open the log file %s: %w", *parseFlags.logPath, err)
		}
		defer sink.Close()
		opts = append(opts, mi.WithLogger(sink))
	}

	w := &eventWriter{out: cmd.OutOrStdout(), format: *parseFlags.format}
	p := mi.New(mi.Callbacks{
		StreamRecord: w.stream,
		AsyncRecord:  w.async,
		ResultRecord: w.result,
		Prompt:       w.prompt,
		ParseError:   w.parseError,
	}, opts...)

	buf := make([]byte, *parseFlags.chunkSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if pushErr := p.Push(buf[:n]); pushErr != nil {
				return pushErr
			}
		}
		if err == io.EOF {
			p.Close()
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// eventWriter renders façade events in one of three formats. It is a CLI
// concern only: the parser core never formats its own output.
type eventWriter struct {
	out    io.Writer
	format string
}

func (w *eventWriter) emitJSON(kind string, v any) {
	b, _ := json.Marshal(struct {
		Kind string `json:"kind"`
		Data any    `json:"data"`
	}{kind, v})
	fmt.Fprintln(w.out, string(b))
}

func (w *eventWriter) stream(r *gdbwire.StreamRecord) {
	switch w.format {
	case outputFormatJSON:
		w.emitJSON("stream", r)
	case outputFormatTree:
		fmt.Fprintf(w.out, "stream(%s)\n  %q\n", r.Kind, r.Text)
	default:
		fmt.Fprintf(w.out, "stream %s: %s\n", r.Kind, r.Text)
	}
}

func (w *eventWriter) async(r *gdbwire.AsyncRecord) {
	switch w.format {
	case outputFormatJSON:
		w.emitJSON("async", r)
	case outputFormatTree:
		fmt.Fprintf(w.out, "async(%s %s)\n", r.Kind, r.Class)
		printResults(w.out, "  ", r.Results)
	default:
		fmt.Fprintf(w.out, "async %s class=%s results=%d\n", r.Kind, r.Class, len(r.Results))
	}
}

func (w *eventWriter) result(r *gdbwire.ResultRecord) {
	switch w.format {
	case outputFormatJSON:
		w.emitJSON("result", r)
	case outputFormatTree:
		fmt.Fprintf(w.out, "result(class=%s token=%s)\n", r.Class, r.Token.Text)
		printResults(w.out, "  ", r.Results)
	default:
		fmt.Fprintf(w.out, "result class=%s token=%q results=%d\n", r.Class, r.Token.Text, len(r.Results))
	}
}

func (w *eventWriter) prompt(text string) {
	switch w.format {
	case outputFormatJSON:
		w.emitJSON("prompt", text)
	default:
		fmt.Fprintf(w.out, "prompt %q\n", text)
	}
}

func (w *eventWriter) parseError(e *driver.ParseError) {
	switch w.format {
	case outputFormatJSON:
		w.emitJSON("parse_error", e)
	default:
		fmt.Fprintln(w.out, e.Error())
	}
}

func printResults(out io.Writer, indent string, results []*gdbwire.Result) {
	for i, r := range results {
		printResult(out, indent, r, i == len(results)-1)
	}
}

func printResult(out io.Writer, indent string, r *gdbwire.Result, last bool) {
	branch := "├─ "
	childIndent := indent + "│  "
	if last {
		branch = "└─ "
		childIndent = indent + "   "
	}

	switch r.Kind {
	case gdbwire.ResultCString:
		fmt.Fprintf(out, "%s%s%s = %q\n", indent, branch, r.Variable, r.CString)
	case gdbwire.ResultTuple, gdbwire.ResultList:
		fmt.Fprintf(out, "%s%s%s %s\n", indent, branch, r.Variable, r.Kind)
		printResults(out, childIndent, r.Children)
	}
}
