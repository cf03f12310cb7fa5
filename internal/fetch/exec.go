package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"matchvault/internal/services"
)

// Executor runs the download binary and returns its combined output. The
// default implementation shells out; tests substitute a scripted one.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (string, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	text := output.String()
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			return text, services.Wrap(services.ErrTimeout, "fetch", "run", fmt.Sprintf("%s timed out", binary), ctxErr)
		}
		detail := lastOutputLine(text)
		if detail == "" {
			detail = err.Error()
		}
		return text, services.Wrap(services.ErrExternalTool, "fetch", "run", fmt.Sprintf("%s failed: %s", binary, detail), err)
	}
	return text, nil
}

func lastOutputLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
