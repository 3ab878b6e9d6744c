// Package bridge shells out to the device-side helper executables that
// stand in for the platform mail, SMS, and notification services. Each
// collaborator is a thin wrapper around one configured command.
package bridge

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

const commandTimeout = 30 * time.Second

// run executes the helper with the given arguments, feeding stdin when
// non-empty, and returns its stdout.
func run(ctx context.Context, path string, stdin string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != "" {
		cmd.Stdin = bytes.NewBufferString(stdin)
	}

	slog.Debug("Executing bridge command", "command", cmd.String())
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("bridge command failed: %w, stderr: %s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}
