package out

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"veil/internal/modules/preset/domain"
	presetout "veil/internal/modules/preset/port/out"

	"gopkg.in/yaml.v3"
)

// YAMLStore reads the preset library from a single YAML file. A missing file
// yields the builtin defaults so a fresh workspace is immediately usable.
type YAMLStore struct {
	path string
}

func NewYAMLStore(path string) presetout.Store {
	return &YAMLStore{path: path}
}

type presetFile struct {
	Presets []domain.Preset `yaml:"presets"`
}

func (s *YAMLStore) Load(_ context.Context) ([]domain.Preset, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPresets(), nil
		}
		return nil, fmt.Errorf("read preset store: %w", err)
	}
	var file presetFile
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode presets: %w", err)
	}
	return file.Presets, nil
}

// DefaultPresets are shipped with the shell; a workspace presets.yaml
// replaces them wholesale rather than merging.
func DefaultPresets() []domain.Preset {
	return []domain.Preset{
		{
			ID:                "standard",
			Name:              "Standard",
			Layer:             1,
			MinimumConfidence: 60,
			UncertaintyPolicy: domain.UncertaintyMask,
			PseudonymStyle:    domain.PseudonymNeutral,
			LanguageMode:      domain.LanguageAuto,
			EntitiesEnabled: map[string]bool{
				"PERSON": true, "EMAIL": true, "PHONE": true, "ADDRESS": true, "IBAN": true,
			},
		},
		{
			ID:                "strict",
			Name:              "Strict",
			Layer:             3,
			MinimumConfidence: 40,
			UncertaintyPolicy: domain.UncertaintyRedact,
			PseudonymStyle:    domain.PseudonymNeutral,
			LanguageMode:      domain.LanguageAuto,
			EntitiesEnabled: map[string]bool{
				"PERSON": true, "EMAIL": true, "PHONE": true, "ADDRESS": true, "IBAN": true, "DATE": true, "ORG": true,
			},
		},
	}
}
