package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"veil/internal/modules/engine/domain"
	"veil/internal/modules/engine/dto"
)

type fakeSidecar struct {
	lastCommand domain.Command
	lastPayload map[string]any
	envelope    domain.Envelope
	err         error
	calls       int
}

func (f *fakeSidecar) Execute(_ context.Context, command domain.Command, payload map[string]any) (domain.Envelope, error) {
	f.calls++
	f.lastCommand = command
	f.lastPayload = payload
	return f.envelope, f.err
}

func testPreset() dto.Preset {
	return dto.Preset{
		PresetID:          "standard",
		Name:              "Standard",
		Layer:             1,
		MinimumConfidence: 60,
		UncertaintyPolicy: "mask",
		PseudonymStyle:    "neutral",
		LanguageMode:      "auto",
		EntitiesEnabled:   map[string]bool{"PERSON": true, "EMAIL": false},
	}
}

func TestAnalyzeTextBuildsWirePayload(t *testing.T) {
	t.Parallel()
	sidecar := &fakeSidecar{envelope: domain.Envelope{
		"run_id":         "r-1",
		"run_folder":     "/runs/r-1",
		"redacted_text":  "[PERSON_1] called",
		"summary":        map[string]any{"PERSON": float64(1)},
		"findings_count": float64(1),
		"language":       "de",
	}}
	svc := NewEngineService(sidecar, "unused")

	out, err := svc.AnalyzeText(context.Background(), dto.AnalyzeTextInput{
		Text:      "Herr Muster called",
		Preset:    testPreset(),
		ModelPath: "/models/ner",
	})
	if err != nil {
		t.Fatalf("analyze text: %v", err)
	}

	if sidecar.lastCommand != domain.CommandAnalyzeText {
		t.Fatalf("command = %s", sidecar.lastCommand)
	}
	if sidecar.lastPayload["text"] != "Herr Muster called" {
		t.Fatalf("text = %v", sidecar.lastPayload["text"])
	}
	if sidecar.lastPayload["model_path"] != "/models/ner" {
		t.Fatalf("model_path = %v", sidecar.lastPayload["model_path"])
	}
	preset, ok := sidecar.lastPayload["preset"].(map[string]any)
	if !ok {
		t.Fatalf("preset not a document: %v", sidecar.lastPayload["preset"])
	}
	if preset["preset_id"] != "standard" || preset["uncertainty_policy"] != "mask" {
		t.Fatalf("preset fields lost: %v", preset)
	}
	// language_mode auto: the key must be present and null, not omitted.
	if v, ok := preset["language"]; !ok || v != nil {
		t.Fatalf("language = %v (present=%t)", v, ok)
	}

	if out.RunID != "r-1" || out.RedactedText != "[PERSON_1] called" || out.Language != "de" {
		t.Fatalf("decoded output = %+v", out)
	}
	if out.Summary["PERSON"] != 1 {
		t.Fatalf("summary = %v", out.Summary)
	}
}

func TestAnalyzeTextOmitsEmptyModelPath(t *testing.T) {
	t.Parallel()
	sidecar := &fakeSidecar{envelope: domain.Envelope{"run_id": "r-1"}}
	svc := NewEngineService(sidecar, "unused")

	if _, err := svc.AnalyzeText(context.Background(), dto.AnalyzeTextInput{Text: "x", Preset: testPreset()}); err != nil {
		t.Fatalf("analyze text: %v", err)
	}
	if _, ok := sidecar.lastPayload["model_path"]; ok {
		t.Fatal("model_path must be omitted when unset")
	}
}

func TestAnalyzeTextRejectsEmptyInput(t *testing.T) {
	t.Parallel()
	sidecar := &fakeSidecar{}
	svc := NewEngineService(sidecar, "unused")

	if _, err := svc.AnalyzeText(context.Background(), dto.AnalyzeTextInput{Text: "   "}); err == nil {
		t.Fatal("blank text must be rejected")
	}
	if sidecar.calls != 0 {
		t.Fatal("sidecar must not run for invalid input")
	}
}

func TestAnalyzeTextPropagatesSidecarError(t *testing.T) {
	t.Parallel()
	sidecar := &fakeSidecar{err: domain.ErrEngineFailure}
	svc := NewEngineService(sidecar, "unused")

	_, err := svc.AnalyzeText(context.Background(), dto.AnalyzeTextInput{Text: "x", Preset: testPreset()})
	if !errors.Is(err, domain.ErrEngineFailure) {
		t.Fatalf("want ErrEngineFailure, got %v", err)
	}
}

func TestAnalyzeTextStrictDecode(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		envelope domain.Envelope
	}{
		{"unknown field", domain.Envelope{"run_id": "r-1", "surprise": true}},
		{"missing run_id", domain.Envelope{"redacted_text": "x"}},
		{"wrong type", domain.Envelope{"run_id": "r-1", "findings_count": "three"}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := NewEngineService(&fakeSidecar{envelope: tc.envelope}, "unused")
			_, err := svc.AnalyzeText(context.Background(), dto.AnalyzeTextInput{Text: "x", Preset: testPreset()})
			if !errors.Is(err, domain.ErrDecodeFailure) {
				t.Fatalf("want ErrDecodeFailure, got %v", err)
			}
		})
	}
}

func TestAnalyzeFilePayload(t *testing.T) {
	t.Parallel()
	sidecar := &fakeSidecar{envelope: domain.Envelope{
		"run_id":      "r-2",
		"output_path": "/runs/r-2/a_anonymized.txt",
	}}
	svc := NewEngineService(sidecar, "unused")

	out, err := svc.AnalyzeFile(context.Background(), dto.AnalyzeFileInput{InputPath: "/docs/a.txt", Preset: testPreset()})
	if err != nil {
		t.Fatalf("analyze file: %v", err)
	}
	if sidecar.lastCommand != domain.CommandAnalyzeFile {
		t.Fatalf("command = %s", sidecar.lastCommand)
	}
	if sidecar.lastPayload["input_path"] != "/docs/a.txt" {
		t.Fatalf("input_path = %v", sidecar.lastPayload["input_path"])
	}
	if out.OutputPath != "/runs/r-2/a_anonymized.txt" {
		t.Fatalf("output_path = %v", out.OutputPath)
	}
}

func TestAnalyzeBatchPayload(t *testing.T) {
	t.Parallel()
	sidecar := &fakeSidecar{envelope: domain.Envelope{
		"run_id":           "r-3",
		"processed_files":  float64(2),
		"skipped_files":    float64(1),
		"total_files_seen": float64(4),
	}}
	svc := NewEngineService(sidecar, "unused")

	out, err := svc.AnalyzeBatch(context.Background(), dto.AnalyzeBatchInput{
		InputFolder: "/docs",
		Preset:      testPreset(),
		Recursive:   true,
		MaxFiles:    10,
	})
	if err != nil {
		t.Fatalf("analyze batch: %v", err)
	}
	if sidecar.lastCommand != domain.CommandAnalyzeBatch {
		t.Fatalf("command = %s", sidecar.lastCommand)
	}
	if sidecar.lastPayload["input_folder"] != "/docs" || sidecar.lastPayload["recursive"] != true {
		t.Fatalf("payload = %v", sidecar.lastPayload)
	}
	if sidecar.lastPayload["max_files"] != 10 {
		t.Fatalf("max_files = %v", sidecar.lastPayload["max_files"])
	}
	if out.ProcessedFiles != 2 || out.SkippedFiles != 1 || out.TotalFilesSeen != 4 {
		t.Fatalf("decoded output = %+v", out)
	}
}

func TestAnalyzeBatchOmitsZeroMaxFiles(t *testing.T) {
	t.Parallel()
	sidecar := &fakeSidecar{envelope: domain.Envelope{"run_id": "r-3"}}
	svc := NewEngineService(sidecar, "unused")

	if _, err := svc.AnalyzeBatch(context.Background(), dto.AnalyzeBatchInput{InputFolder: "/docs", Preset: testPreset()}); err != nil {
		t.Fatalf("analyze batch: %v", err)
	}
	if _, ok := sidecar.lastPayload["max_files"]; ok {
		t.Fatal("max_files must be omitted when zero")
	}
	if sidecar.lastPayload["recursive"] != false {
		t.Fatal("recursive must always be present")
	}
}

func TestSupportedExtensionsPreservesOrder(t *testing.T) {
	t.Parallel()
	sidecar := &fakeSidecar{envelope: domain.Envelope{
		"extensions": []any{"txt", "pdf", "docx"},
	}}
	svc := NewEngineService(sidecar, "unused")

	out, err := svc.SupportedExtensions(context.Background())
	if err != nil {
		t.Fatalf("extensions: %v", err)
	}
	if sidecar.lastCommand != domain.CommandSupportedExtensions {
		t.Fatalf("command = %s", sidecar.lastCommand)
	}
	if len(sidecar.lastPayload) != 0 {
		t.Fatalf("payload must be empty, got %v", sidecar.lastPayload)
	}
	if want := []string{"txt", "pdf", "docx"}; !reflect.DeepEqual(out.Extensions, want) {
		t.Fatalf("extensions = %v, want %v", out.Extensions, want)
	}
}

func TestDoctorMissingBinary(t *testing.T) {
	t.Parallel()
	svc := NewEngineService(&fakeSidecar{}, filepath.Join(t.TempDir(), "missing"))

	out, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor must report, not fail: %v", err)
	}
	if out.BinaryReachable || out.ContractOK {
		t.Fatalf("doctor = %+v", out)
	}
	if out.Error == "" {
		t.Fatal("doctor must explain the failing check")
	}
}

func TestDoctorHealthy(t *testing.T) {
	t.Parallel()
	binary := filepath.Join(t.TempDir(), "engine")
	if err := os.WriteFile(binary, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	sidecar := &fakeSidecar{envelope: domain.Envelope{"extensions": []any{"txt"}}}
	svc := NewEngineService(sidecar, binary)

	out, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if !out.BinaryReachable || !out.ContractOK {
		t.Fatalf("doctor = %+v", out)
	}
	if want := []string{"txt"}; !reflect.DeepEqual(out.Extensions, want) {
		t.Fatalf("extensions = %v", out.Extensions)
	}
}

func TestDoctorBrokenContract(t *testing.T) {
	t.Parallel()
	binary := filepath.Join(t.TempDir(), "engine")
	if err := os.WriteFile(binary, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	sidecar := &fakeSidecar{err: domain.ErrInvalidOutput}
	svc := NewEngineService(sidecar, binary)

	out, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if !out.BinaryReachable || out.ContractOK {
		t.Fatalf("doctor = %+v", out)
	}
}
