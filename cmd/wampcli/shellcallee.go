package main

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/wampio/gowamp-client/internal/wampmsg"
)

// shellCallee adapts a shell command into a wampclient.InvocationHandler:
// every INVOCATION runs the command fresh and YIELDs its trimmed stdout,
// or fails the call with the command's stderr on a non-zero exit. It is
// a toy callee for exercising a router's dealer role by hand, not a
// general-purpose tool runner — there is no allow/deny list because the
// command is the one the operator typed on this CLI's own command line.
type shellCallee struct {
	command string
	timeout time.Duration
}

func newShellCallee(command string) *shellCallee {
	return &shellCallee{command: command, timeout: 30 * time.Second}
}

func (s *shellCallee) invoke(ctx context.Context, args wampmsg.List, kwargs wampmsg.Dict) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", s.command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("command timed out after %s", s.timeout)
		}
		return nil, fmt.Errorf("%s: %s", err, stderr.String())
	}

	return strings.TrimSpace(stdout.String()), nil
}
