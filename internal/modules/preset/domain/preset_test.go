package domain

import (
	"strings"
	"testing"
)

func validPreset() Preset {
	return Preset{
		ID:                "standard",
		Name:              "Standard",
		Layer:             1,
		MinimumConfidence: 60,
		UncertaintyPolicy: UncertaintyMask,
		PseudonymStyle:    PseudonymNeutral,
		LanguageMode:      LanguageAuto,
		EntitiesEnabled:   map[string]bool{"PERSON": true},
	}
}

func TestPresetValidate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		mutate  func(*Preset)
		wantErr string
	}{
		{"valid", func(*Preset) {}, ""},
		{"missing id", func(p *Preset) { p.ID = "" }, "id is required"},
		{"missing name", func(p *Preset) { p.Name = "" }, "name is required"},
		{"layer too low", func(p *Preset) { p.Layer = 0 }, "layer must be 1..3"},
		{"layer too high", func(p *Preset) { p.Layer = 4 }, "layer must be 1..3"},
		{"confidence negative", func(p *Preset) { p.MinimumConfidence = -1 }, "must be 0..100"},
		{"confidence over 100", func(p *Preset) { p.MinimumConfidence = 101 }, "must be 0..100"},
		{"bad uncertainty policy", func(p *Preset) { p.UncertaintyPolicy = "shrug" }, "unknown uncertainty policy"},
		{"bad pseudonym style", func(p *Preset) { p.PseudonymStyle = "funny" }, "unknown pseudonym style"},
		{"bad language mode", func(p *Preset) { p.LanguageMode = "guess" }, "unknown language mode"},
		{"fixed mode without language", func(p *Preset) { p.LanguageMode = LanguageFixed }, "requires a language"},
		{"no entities", func(p *Preset) { p.EntitiesEnabled = nil }, "at least one entity"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			preset := validPreset()
			tc.mutate(&preset)
			err := preset.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error = %v, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestFixedModeWithLanguage(t *testing.T) {
	t.Parallel()
	preset := validPreset()
	preset.LanguageMode = LanguageFixed
	preset.Language = "de"
	if err := preset.Validate(); err != nil {
		t.Fatalf("fixed+language rejected: %v", err)
	}
}
