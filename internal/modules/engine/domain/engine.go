package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Command names one engine worker operation. The shell only ever sends names
// from this set; an unknown name is the worker's problem to reject.
type Command string

const (
	CommandAnalyzeText         Command = "analyze_text"
	CommandAnalyzeFile         Command = "analyze_file"
	CommandAnalyzeBatch        Command = "analyze_batch"
	CommandSupportedExtensions Command = "get_supported_extensions"
)

func (c Command) Validate() error {
	if c == "" {
		return fmt.Errorf("engine command is required")
	}
	return nil
}

var (
	ErrInvalidPayload = errors.New("engine payload could not be encoded")
	ErrStartFailed    = errors.New("engine process failed to start")
	ErrEngineFailure  = errors.New("engine reported failure")
	ErrInvalidOutput  = errors.New("engine output is not a valid document")
	ErrDecodeFailure  = errors.New("engine response did not match expected shape")
	ErrEngineTimeout  = errors.New("engine call timed out")
	ErrCancelled      = errors.New("engine call cancelled")
)

// Envelope is the single structured document a worker writes to stdout per
// invocation. A success payload and a worker-reported error share this shape;
// the error indicator field wins even when the process exits zero.
type Envelope map[string]any

const errorField = "error"

// ErrorText returns the embedded error indicator as text. A null indicator
// counts as absent; any other value fails the call.
func (e Envelope) ErrorText() (string, bool) {
	value, ok := e[errorField]
	if !ok || value == nil {
		return "", false
	}
	if text, ok := value.(string); ok {
		return text, true
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value), true
	}
	return string(raw), true
}
