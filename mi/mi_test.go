package mi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lockdog88/gdbwire"
	"github.com/Lockdog88/gdbwire/driver"
)

func TestFacadeFanOutOrdering(t *testing.T) {
	var order []string

	p := New(Callbacks{
		StreamRecord: func(*gdbwire.StreamRecord) { order = append(order, "stream") },
		AsyncRecord:  func(*gdbwire.AsyncRecord) { order = append(order, "async") },
		ResultRecord: func(*gdbwire.ResultRecord) { order = append(order, "result") },
		Prompt:       func(string) { order = append(order, "prompt") },
	})

	require.NoError(t, p.Push([]byte("~\"console\"\n=thread-created,id=\"1\"\n^done\n(gdb) \n")))

	assert.Equal(t, []string{"stream", "async", "result", "prompt"}, order)
}

func TestFacadeParseError(t *testing.T) {
	var errs []*driver.ParseError
	p := New(Callbacks{
		ParseError: func(e *driver.ParseError) { errs = append(errs, e) },
	})
	require.NoError(t, p.Push([]byte("^bogus\n(gdb) \n")))
	require.Len(t, errs, 1)
	assert.NotEmpty(t, errs[0].Line)
}

func TestFacadeNilCallbacksAreSilentlyDropped(t *testing.T) {
	p := New(Callbacks{})
	assert.NoError(t, p.Push([]byte("~\"x\"\n^done\n(gdb) \n")))
}
