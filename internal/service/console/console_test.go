package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestConsole_List numbers items in the given order.
func TestConsole_List(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	c := New(strings.NewReader(""), &out)
	c.List("Possible causes:", "first", "second")

	require.Equal(t, "Possible causes:\n  1. first\n  2. second\n", out.String())
}

// TestConsole_Acknowledge waits for a line and accepts closed input.
func TestConsole_Acknowledge(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	c := New(strings.NewReader("\n"), &out)
	require.NoError(t, c.Acknowledge())
	require.Contains(t, out.String(), AcknowledgePrompt)

	c = New(strings.NewReader(""), &out)
	require.NoError(t, c.Acknowledge())
}

// TestConsole_Prefixes marks confirmations and failures.
func TestConsole_Prefixes(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	c := New(strings.NewReader(""), &out)
	c.Success("Python %s found", "3.12")
	c.Failure("install failed")

	require.Equal(t, "[OK] Python 3.12 found\n[ERROR] install failed\n", out.String())
}
