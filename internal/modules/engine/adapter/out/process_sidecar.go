package out

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"veil/internal/modules/engine/domain"
	engineout "veil/internal/modules/engine/port/out"
)

const defaultCallTimeout = 120 * time.Second

// ProcessSidecar invokes the engine binary once per call: command name as the
// sole positional argument, request document on stdin, response document on
// stdout, diagnostics on stderr. Every call builds its own exec.Cmd and
// buffers; nothing is shared, so concurrent calls need no locking.
type ProcessSidecar struct {
	binaryPath  string
	callTimeout time.Duration
}

func NewProcessSidecar(binaryPath string) engineout.Sidecar {
	return &ProcessSidecar{binaryPath: binaryPath, callTimeout: defaultCallTimeout}
}

func NewProcessSidecarWithTimeout(binaryPath string, callTimeout time.Duration) engineout.Sidecar {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &ProcessSidecar{binaryPath: binaryPath, callTimeout: callTimeout}
}

func (s *ProcessSidecar) Execute(ctx context.Context, command domain.Command, payload map[string]any) (domain.Envelope, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		// Never reaches the worker; the process is not started.
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	cmd := exec.CommandContext(callCtx, s.binaryPath, string(command))
	cmd.Stdin = bytes.NewReader(raw)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil {
		switch {
		case errors.Is(callCtx.Err(), context.DeadlineExceeded):
			return nil, fmt.Errorf("%w: %s after %s", domain.ErrEngineTimeout, command, s.callTimeout)
		case errors.Is(callCtx.Err(), context.Canceled):
			return nil, fmt.Errorf("%w: %s", domain.ErrCancelled, command)
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			// Non-zero exit fails the call; stdout is discarded on this path.
			return nil, fmt.Errorf("%w: %s", domain.ErrEngineFailure, strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStartFailed, runErr)
	}

	envelope := domain.Envelope{}
	if err := json.Unmarshal(stdout.Bytes(), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v; raw=%s", domain.ErrInvalidOutput, err, strings.TrimSpace(stdout.String()))
	}
	if text, found := envelope.ErrorText(); found {
		// Exit status zero is not sufficient; the embedded indicator wins.
		return nil, fmt.Errorf("%w: %s", domain.ErrEngineFailure, text)
	}
	return envelope, nil
}

func (s *ProcessSidecar) callContext(parent context.Context) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, s.callTimeout)
}
