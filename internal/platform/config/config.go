package config

import (
	"fmt"
	"path/filepath"
	"runtime"
)

type Config struct {
	WorkspacePath string
	DBPath        string
	PresetsPath   string
	EnginePath    string
}

func New(workspacePath string) (Config, error) {
	if workspacePath == "" {
		return Config{}, fmt.Errorf("workspace path is required")
	}
	return Config{
		WorkspacePath: workspacePath,
		DBPath:        filepath.Join(workspacePath, ".veil", "veil.db"),
		PresetsPath:   filepath.Join(workspacePath, ".veil", "presets.yaml"),
		EnginePath:    filepath.Join(workspacePath, "engine", engineBinaryName()),
	}, nil
}

func engineBinaryName() string {
	if runtime.GOOS == "windows" {
		return "veil-engine.exe"
	}
	return "veil-engine"
}
