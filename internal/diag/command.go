// Package diag implements host diagnostics and maintenance actions by thin
// calls into OS APIs and utilities.
package diag

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// commandTimeout bounds every external command; a stuck utility is reported
// as a failure instead of stalling the caller.
const commandTimeout = 30 * time.Second

// runCommand executes one utility and returns its combined trimmed output.
func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	text := strings.TrimSpace(string(out))
	if ctx.Err() == context.DeadlineExceeded {
		return text, fmt.Errorf("%s timed out after %s", name, commandTimeout)
	}
	if err != nil {
		if text != "" {
			return text, fmt.Errorf("%s failed: %s", name, text)
		}
		return "", fmt.Errorf("%s failed: %w", name, err)
	}
	return text, nil
}

// CommandResult pairs a command line with what it printed.
type CommandResult struct {
	Command string `json:"command"`
	Output  string `json:"output"`
}
