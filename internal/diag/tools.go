package diag

import (
	"context"
	"fmt"
	"runtime"
)

// FlushDNS clears the OS DNS resolver cache.
func FlushDNS(ctx context.Context) (*CommandResult, error) {
	var name string
	var args []string
	switch runtime.GOOS {
	case "windows":
		name, args = "ipconfig", []string{"/flushdns"}
	case "darwin":
		name, args = "dscacheutil", []string{"-flushcache"}
	default:
		// systemd-resolved hosts; other Linux setups have no cache to flush.
		name, args = "resolvectl", []string{"flush-caches"}
	}
	out, err := runCommand(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	return &CommandResult{Command: name, Output: out}, nil
}

// NetworkReset runs the platform's network stack reset commands and returns
// every command's output. A partial failure still reports the commands that
// ran.
func NetworkReset(ctx context.Context) ([]CommandResult, error) {
	type cmd struct {
		name string
		args []string
	}
	var cmds []cmd
	switch runtime.GOOS {
	case "windows":
		cmds = []cmd{
			{"ipconfig", []string{"/flushdns"}},
			{"netsh", []string{"winsock", "reset"}},
			{"netsh", []string{"int", "ip", "reset"}},
		}
	case "darwin":
		cmds = []cmd{
			{"dscacheutil", []string{"-flushcache"}},
			{"killall", []string{"-HUP", "mDNSResponder"}},
		}
	default:
		cmds = []cmd{
			{"resolvectl", []string{"flush-caches"}},
		}
	}

	results := make([]CommandResult, 0, len(cmds))
	var firstErr error
	for _, c := range cmds {
		out, err := runCommand(ctx, c.name, c.args...)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", c.name, err)
		}
		results = append(results, CommandResult{Command: c.name, Output: out})
	}
	return results, firstErr
}
