package domain

import "fmt"

type UncertaintyPolicy string

const (
	UncertaintyMask        UncertaintyPolicy = "mask"
	UncertaintyRedact      UncertaintyPolicy = "redact"
	UncertaintyLeaveIntact UncertaintyPolicy = "leave_intact"
	UncertaintyFlagOnly    UncertaintyPolicy = "flag_only"
)

func (p UncertaintyPolicy) Validate() error {
	switch p {
	case UncertaintyMask, UncertaintyRedact, UncertaintyLeaveIntact, UncertaintyFlagOnly:
		return nil
	default:
		return fmt.Errorf("unknown uncertainty policy: %s", p)
	}
}

type PseudonymStyle string

const (
	PseudonymNeutral   PseudonymStyle = "neutral"
	PseudonymRealistic PseudonymStyle = "realistic"
)

func (s PseudonymStyle) Validate() error {
	switch s {
	case PseudonymNeutral, PseudonymRealistic:
		return nil
	default:
		return fmt.Errorf("unknown pseudonym style: %s", s)
	}
}

type LanguageMode string

const (
	LanguageAuto  LanguageMode = "auto"
	LanguageFixed LanguageMode = "fixed"
)

func (m LanguageMode) Validate() error {
	switch m {
	case LanguageAuto, LanguageFixed:
		return nil
	default:
		return fmt.Errorf("unknown language mode: %s", m)
	}
}

// Preset is a detection/redaction configuration bundle. The shell validates
// its shape only; the engine worker interprets the semantics.
type Preset struct {
	ID                string            `yaml:"id"`
	Name              string            `yaml:"name"`
	Layer             int               `yaml:"layer"`
	MinimumConfidence int               `yaml:"minimum_confidence"`
	UncertaintyPolicy UncertaintyPolicy `yaml:"uncertainty_policy"`
	PseudonymStyle    PseudonymStyle    `yaml:"pseudonym_style"`
	LanguageMode      LanguageMode      `yaml:"language_mode"`
	Language          string            `yaml:"language,omitempty"`
	EntitiesEnabled   map[string]bool   `yaml:"entities_enabled"`
}

func (p Preset) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("preset id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("preset name is required")
	}
	if p.Layer < 1 || p.Layer > 3 {
		return fmt.Errorf("preset layer must be 1..3, got %d", p.Layer)
	}
	if p.MinimumConfidence < 0 || p.MinimumConfidence > 100 {
		return fmt.Errorf("minimum confidence must be 0..100, got %d", p.MinimumConfidence)
	}
	if err := p.UncertaintyPolicy.Validate(); err != nil {
		return err
	}
	if err := p.PseudonymStyle.Validate(); err != nil {
		return err
	}
	if err := p.LanguageMode.Validate(); err != nil {
		return err
	}
	if p.LanguageMode == LanguageFixed && p.Language == "" {
		return fmt.Errorf("fixed language mode requires a language")
	}
	if len(p.EntitiesEnabled) == 0 {
		return fmt.Errorf("preset needs at least one entity category")
	}
	return nil
}
