// Package console reads operator commands from the terminal that started
// the daemon.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/marmos91/linexfer/internal/logger"
	"github.com/marmos91/linexfer/pkg/shutdown"
)

// QuitCommand is the only line the console acts on.
const QuitCommand = "quit"

// Console turns operator input into a shutdown request.
type Console struct {
	in  io.Reader
	out io.Writer
	sig *shutdown.Signal
}

// New creates a Console reading lines from in and writing feedback to out.
func New(in io.Reader, out io.Writer, sig *shutdown.Signal) *Console {
	return &Console{in: in, out: out, sig: sig}
}

// Run reads lines until "quit", end of input, or a read error. On "quit"
// it triggers the shutdown signal and returns nil. Any other non-blank line
// is answered with "Unknown command: <line>".
func (c *Console) Run() error {
	sc := bufio.NewScanner(c.in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			continue
		case QuitCommand:
			fmt.Fprintln(c.out, "Shutting down server...")
			logger.Info("Shutdown requested from console")
			c.sig.Trigger("console")
			return nil
		default:
			fmt.Fprintf(c.out, "Unknown command: %s\n", line)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read console: %w", err)
	}
	logger.Debug("Console input closed")
	return nil
}
