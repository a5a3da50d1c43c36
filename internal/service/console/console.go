package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// AcknowledgePrompt is shown before a binary exits so the console stays readable.
const AcknowledgePrompt = "Press Enter to exit..."

// Console prints operator-facing messages and waits for acknowledgment.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// New returns a console over the given streams.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Std returns a console over the process stdin and stdout.
func Std() *Console {
	return New(os.Stdin, os.Stdout)
}

// Printf writes a formatted line.
func (c *Console) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format+"\n", args...)
}

// Success prints a confirmation line.
func (c *Console) Success(format string, args ...any) {
	c.Printf("[OK] "+format, args...)
}

// Failure prints an error headline.
func (c *Console) Failure(format string, args ...any) {
	c.Printf("[ERROR] "+format, args...)
}

// List prints numbered items under a heading.
func (c *Console) List(heading string, items ...string) {
	c.Printf("%s", heading)

	for i, item := range items {
		c.Printf("  %d. %s", i+1, item)
	}
}

// Acknowledge blocks until the operator presses Enter or input is closed.
func (c *Console) Acknowledge() error {
	c.Printf("")
	_, _ = fmt.Fprint(c.out, AcknowledgePrompt)

	_, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read acknowledgment: %w", err)
	}

	return nil
}
