package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// DefaultAssistantTimeout bounds a single assistant invocation. If the
// assistant hangs the attempt fails fast and the caller's retry policy takes
// over.
const DefaultAssistantTimeout = 2 * time.Minute

// ErrAssistantCommand is returned when the assistant CLI fails or times out.
var ErrAssistantCommand = errors.New("assistant command failed")

// AssistantAdapter abstracts the external documentation-generating assistant.
// The adapter is opaque to the domain: it takes a prompt, lets the assistant
// edit files in workDir, and returns the assistant's raw output.
type AssistantAdapter interface {
	UpdateFile(ctx context.Context, workDir, prompt string) (string, error)
}

// LocalAssistantAdapter runs the assistant CLI via os/exec in print mode with
// the Edit and Read tools enabled.
type LocalAssistantAdapter struct {
	command string
	timeout time.Duration
}

// NewLocalAssistantAdapter constructs a LocalAssistantAdapter for the given
// CLI command.
func NewLocalAssistantAdapter(command string, timeout time.Duration) *LocalAssistantAdapter {
	if timeout <= 0 {
		timeout = DefaultAssistantTimeout
	}

	return &LocalAssistantAdapter{command: command, timeout: timeout}
}

// UpdateFile invokes the assistant CLI with the given prompt.
func (a *LocalAssistantAdapter) UpdateFile(ctx context.Context, workDir, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, a.command,
		"-p", prompt,
		"--output-format", "json",
		"--allowedTools", "Edit", "Read",
	)
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	output := stdout.String() + stderr.String()

	if ctx.Err() != nil {
		return output, fmt.Errorf("%w: %s timed out after %s", ErrAssistantCommand, a.command, a.timeout)
	}

	if err != nil {
		return output, fmt.Errorf("%w: %s: %v", ErrAssistantCommand, a.command, err)
	}

	return output, nil
}
