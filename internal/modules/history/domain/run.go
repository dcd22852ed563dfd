package domain

import (
	"fmt"
	"time"
)

type RunStatus string

const (
	RunStatusOK    RunStatus = "ok"
	RunStatusError RunStatus = "error"
)

func (s RunStatus) Validate() error {
	switch s {
	case RunStatusOK, RunStatusError:
		return nil
	default:
		return fmt.Errorf("unknown run status: %s", s)
	}
}

// RunRecord is one entry in the local run index. RunID comes from the engine
// worker and is empty when the call failed before a run was created; ID is
// minted by the shell and is always present.
type RunRecord struct {
	ID            string
	RunID         string
	Command       string
	PresetID      string
	Status        RunStatus
	Error         string
	FindingsCount int
	Summary       map[string]int
	RunFolder     string
	OutputPath    string
	Language      string
	StartedAt     time.Time
	FinishedAt    time.Time
}

func (r RunRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("run record id is required")
	}
	if r.Command == "" {
		return fmt.Errorf("run record command is required")
	}
	if err := r.Status.Validate(); err != nil {
		return err
	}
	if r.Status == RunStatusError && r.Error == "" {
		return fmt.Errorf("failed run record needs error text")
	}
	return nil
}
