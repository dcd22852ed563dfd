package dto

import "time"

type AppendInput struct {
	RunID         string
	Command       string
	PresetID      string
	Status        string
	Error         string
	FindingsCount int
	Summary       map[string]int
	RunFolder     string
	OutputPath    string
	Language      string
	StartedAt     time.Time
	FinishedAt    time.Time
}

type RunOutput struct {
	ID            string
	RunID         string
	Command       string
	PresetID      string
	Status        string
	Error         string
	FindingsCount int
	Summary       map[string]int
	RunFolder     string
	OutputPath    string
	Language      string
	StartedAt     time.Time
	FinishedAt    time.Time
}
