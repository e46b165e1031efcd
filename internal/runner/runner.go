// Package runner executes test and build commands supplied as opaque shell
// strings.
package runner

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/indaco/relkit/internal/core"
	"github.com/indaco/relkit/internal/logging"
)

// ShellRunner runs commands through the platform shell. Output is forwarded
// as it is produced; no timeout is applied.
type ShellRunner struct {
	execCommand func(ctx context.Context, name string, arg ...string) *exec.Cmd
}

// NewShellRunner returns a runner using sh -c (cmd /C on Windows).
func NewShellRunner() *ShellRunner {
	return &ShellRunner{execCommand: exec.CommandContext}
}

var _ core.CommandRunner = (*ShellRunner)(nil)

// Run executes command in dir. A non-zero exit status is returned as an
// error naming the command.
func (r *ShellRunner) Run(ctx context.Context, dir, command string, stdout, stderr io.Writer) error {
	shell, flag := "sh", "-c"
	if runtime.GOOS == "windows" {
		shell, flag = "cmd", "/C"
	}

	cmd := r.execCommand(ctx, shell, flag, command)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	logging.G(ctx).WithField("dir", dir).Debugf("running %q", command)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %q failed: %w", command, err)
	}
	return nil
}
