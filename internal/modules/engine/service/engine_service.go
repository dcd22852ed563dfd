package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"veil/internal/modules/engine/domain"
	"veil/internal/modules/engine/dto"
	engineout "veil/internal/modules/engine/port/out"
)

// EngineService is the command router: it maps typed shell operations onto
// generic sidecar invocations and decodes each success document back into the
// operation's typed result. Payload construction is total for known commands;
// the field names below are the wire contract with the worker.
type EngineService struct {
	sidecar    engineout.Sidecar
	enginePath string
}

func NewEngineService(sidecar engineout.Sidecar, enginePath string) *EngineService {
	return &EngineService{sidecar: sidecar, enginePath: enginePath}
}

func (s *EngineService) AnalyzeText(ctx context.Context, input dto.AnalyzeTextInput) (dto.AnalyzeTextOutput, error) {
	if strings.TrimSpace(input.Text) == "" {
		return dto.AnalyzeTextOutput{}, fmt.Errorf("text is required")
	}
	preset, err := toDocument(input.Preset)
	if err != nil {
		return dto.AnalyzeTextOutput{}, err
	}
	payload := map[string]any{
		"text":   input.Text,
		"preset": preset,
	}
	if input.ModelPath != "" {
		payload["model_path"] = input.ModelPath
	}
	envelope, err := s.sidecar.Execute(ctx, domain.CommandAnalyzeText, payload)
	if err != nil {
		return dto.AnalyzeTextOutput{}, err
	}
	var out dto.AnalyzeTextOutput
	if err := decodeEnvelope(envelope, &out); err != nil {
		return dto.AnalyzeTextOutput{}, err
	}
	if out.RunID == "" {
		return dto.AnalyzeTextOutput{}, decodeFailure(envelope, "missing run_id")
	}
	return out, nil
}

func (s *EngineService) AnalyzeFile(ctx context.Context, input dto.AnalyzeFileInput) (dto.AnalyzeFileOutput, error) {
	if strings.TrimSpace(input.InputPath) == "" {
		return dto.AnalyzeFileOutput{}, fmt.Errorf("input path is required")
	}
	preset, err := toDocument(input.Preset)
	if err != nil {
		return dto.AnalyzeFileOutput{}, err
	}
	payload := map[string]any{
		"input_path": input.InputPath,
		"preset":     preset,
	}
	envelope, err := s.sidecar.Execute(ctx, domain.CommandAnalyzeFile, payload)
	if err != nil {
		return dto.AnalyzeFileOutput{}, err
	}
	var out dto.AnalyzeFileOutput
	if err := decodeEnvelope(envelope, &out); err != nil {
		return dto.AnalyzeFileOutput{}, err
	}
	if out.RunID == "" {
		return dto.AnalyzeFileOutput{}, decodeFailure(envelope, "missing run_id")
	}
	return out, nil
}

func (s *EngineService) AnalyzeBatch(ctx context.Context, input dto.AnalyzeBatchInput) (dto.AnalyzeBatchOutput, error) {
	if strings.TrimSpace(input.InputFolder) == "" {
		return dto.AnalyzeBatchOutput{}, fmt.Errorf("input folder is required")
	}
	preset, err := toDocument(input.Preset)
	if err != nil {
		return dto.AnalyzeBatchOutput{}, err
	}
	payload := map[string]any{
		"input_folder": input.InputFolder,
		"preset":       preset,
		"recursive":    input.Recursive,
	}
	if input.MaxFiles > 0 {
		payload["max_files"] = input.MaxFiles
	}
	envelope, err := s.sidecar.Execute(ctx, domain.CommandAnalyzeBatch, payload)
	if err != nil {
		return dto.AnalyzeBatchOutput{}, err
	}
	var out dto.AnalyzeBatchOutput
	if err := decodeEnvelope(envelope, &out); err != nil {
		return dto.AnalyzeBatchOutput{}, err
	}
	if out.RunID == "" {
		return dto.AnalyzeBatchOutput{}, decodeFailure(envelope, "missing run_id")
	}
	return out, nil
}

func (s *EngineService) SupportedExtensions(ctx context.Context) (dto.ExtensionsOutput, error) {
	envelope, err := s.sidecar.Execute(ctx, domain.CommandSupportedExtensions, map[string]any{})
	if err != nil {
		return dto.ExtensionsOutput{}, err
	}
	var out dto.ExtensionsOutput
	if err := decodeEnvelope(envelope, &out); err != nil {
		return dto.ExtensionsOutput{}, err
	}
	return out, nil
}

func (s *EngineService) Doctor(ctx context.Context) (dto.DoctorOutput, error) {
	result := dto.DoctorOutput{}
	if _, err := os.Stat(s.enginePath); err != nil {
		result.Error = fmt.Sprintf("engine binary does not exist: %s", s.enginePath)
		return result, nil
	}
	result.BinaryReachable = true
	extensions, err := s.SupportedExtensions(ctx)
	if err != nil {
		result.Error = err.Error()
		return result, nil
	}
	result.ContractOK = true
	result.Extensions = extensions.Extensions
	return result, nil
}

// toDocument flattens a typed value into a generic payload document. This
// should not fail for well-formed inputs; a failure is a contract violation.
func toDocument(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	return doc, nil
}

// decodeEnvelope decodes a success document into the command's typed result.
// Unknown fields are a decode failure, not ignored data.
func decodeEnvelope(envelope domain.Envelope, target any) error {
	raw, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDecodeFailure, err)
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: %v; document=%s", domain.ErrDecodeFailure, err, raw)
	}
	return nil
}

func decodeFailure(envelope domain.Envelope, reason string) error {
	raw, _ := json.Marshal(envelope)
	return fmt.Errorf("%w: %s; document=%s", domain.ErrDecodeFailure, reason, raw)
}
