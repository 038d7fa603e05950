// Package format pretty-prints the editable document through an external
// XML formatter process. Formatting is presentation only: a missing or
// failing formatter never affects what gets pushed.
package format

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Formatter pretty-prints an XML document.
type Formatter interface {
	Format(ctx context.Context, doc string) (string, error)
}

// DefaultCommand parses the input as XML, emits XML, indents, and does not
// line-wrap.
var DefaultCommand = []string{"xmllint", "--format", "-"}

// Command pipes the document through an external process on stdin/stdout.
type Command struct {
	path string
	args []string
}

// NewCommand builds a Command formatter from argv. Empty argv selects
// DefaultCommand.
func NewCommand(argv []string) *Command {
	if len(argv) == 0 {
		argv = DefaultCommand
	}
	return &Command{path: argv[0], args: argv[1:]}
}

// Format runs the formatter process and returns its stdout. The input
// document is never modified on failure.
func (c *Command) Format(ctx context.Context, doc string) (string, error) {
	cmd := exec.CommandContext(ctx, c.path, c.args...)
	cmd.Stdin = strings.NewReader(doc)
	cmd.Env = append(os.Environ(), "XMLLINT_INDENT=  ")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("format: %s: %s", c.path, msg)
	}

	return stdout.String(), nil
}
