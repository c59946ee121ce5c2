package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rshade/adminboard/internal/tui"
)

// isInteractiveInput reports whether stdin can answer prompts.
//
//nolint:gochecknoglobals // Test seam for TTY detection.
var isInteractiveInput = tui.IsInputTTY

// PromptResult contains the result of a user prompt interaction.
type PromptResult struct {
	// Accepted is true if the user accepted the prompt (typed "y" or "yes")
	Accepted bool
	// Cancelled is true if reading the answer failed
	Cancelled bool
	// NonInteractive is true if no terminal was available to ask
	NonInteractive bool
}

// Confirm asks question on writer and reads a yes/no answer from reader.
// It returns immediately with NonInteractive set when stdin is not a
// terminal.
//
// The prompt defaults to "No" when the user presses Enter without input.
// Valid inputs: "y", "Y", "yes", "Yes", "YES" for acceptance; anything else declines.
func Confirm(writer io.Writer, reader io.Reader, question string) PromptResult {
	if !isInteractiveInput() {
		return PromptResult{NonInteractive: true}
	}

	_, _ = fmt.Fprintf(writer, "? %s [y/N] ", question)

	scanner := bufio.NewScanner(reader)
	if !scanner.Scan() {
		// EOF or error - treat as cancelled
		if scanner.Err() != nil {
			return PromptResult{Cancelled: true}
		}
		// EOF without error - treat as decline (user pressed Ctrl+D)
		return PromptResult{}
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return PromptResult{Accepted: true}
	default:
		return PromptResult{}
	}
}
