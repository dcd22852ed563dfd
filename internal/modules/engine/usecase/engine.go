package usecase

import (
	"context"
	"time"

	"veil/internal/modules/engine/domain"
	"veil/internal/modules/engine/dto"
	enginein "veil/internal/modules/engine/port/in"
	"veil/internal/modules/engine/service"
	historydto "veil/internal/modules/history/dto"
	historyin "veil/internal/modules/history/port/in"
	"veil/internal/platform/clock"
)

// Interactor runs engine operations and records every analyze call — success
// or failure — in the run history. Recording is best effort; a history write
// failure never fails the analysis itself.
type Interactor struct {
	svc     *service.EngineService
	clk     clock.Clock
	history historyin.Usecase
}

func NewInteractor(svc *service.EngineService, clk clock.Clock, history historyin.Usecase) enginein.Usecase {
	return &Interactor{svc: svc, clk: clk, history: history}
}

func (i *Interactor) AnalyzeText(ctx context.Context, input dto.AnalyzeTextInput) (dto.AnalyzeTextOutput, error) {
	started := i.clk.Now()
	out, err := i.svc.AnalyzeText(ctx, input)
	i.record(ctx, domain.CommandAnalyzeText, input.Preset.PresetID, started, historydto.AppendInput{
		RunID:         out.RunID,
		FindingsCount: out.FindingsCount,
		Summary:       out.Summary,
		RunFolder:     out.RunFolder,
		Language:      out.Language,
	}, err)
	if err != nil {
		return dto.AnalyzeTextOutput{}, err
	}
	return out, nil
}

func (i *Interactor) AnalyzeFile(ctx context.Context, input dto.AnalyzeFileInput) (dto.AnalyzeFileOutput, error) {
	started := i.clk.Now()
	out, err := i.svc.AnalyzeFile(ctx, input)
	i.record(ctx, domain.CommandAnalyzeFile, input.Preset.PresetID, started, historydto.AppendInput{
		RunID:         out.RunID,
		FindingsCount: out.FindingsCount,
		Summary:       out.Summary,
		RunFolder:     out.RunFolder,
		OutputPath:    out.OutputPath,
	}, err)
	if err != nil {
		return dto.AnalyzeFileOutput{}, err
	}
	return out, nil
}

func (i *Interactor) AnalyzeBatch(ctx context.Context, input dto.AnalyzeBatchInput) (dto.AnalyzeBatchOutput, error) {
	started := i.clk.Now()
	out, err := i.svc.AnalyzeBatch(ctx, input)
	i.record(ctx, domain.CommandAnalyzeBatch, input.Preset.PresetID, started, historydto.AppendInput{
		RunID:     out.RunID,
		Summary:   out.Summary,
		RunFolder: out.RunFolder,
	}, err)
	if err != nil {
		return dto.AnalyzeBatchOutput{}, err
	}
	return out, nil
}

func (i *Interactor) SupportedExtensions(ctx context.Context) (dto.ExtensionsOutput, error) {
	return i.svc.SupportedExtensions(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) (dto.DoctorOutput, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) record(ctx context.Context, command domain.Command, presetID string, started time.Time, entry historydto.AppendInput, opErr error) {
	if i.history == nil {
		return
	}
	entry.Command = string(command)
	entry.PresetID = presetID
	entry.StartedAt = started
	entry.FinishedAt = i.clk.Now()
	if opErr != nil {
		entry.Status = "error"
		entry.Error = opErr.Error()
	} else {
		entry.Status = "ok"
	}
	_, _ = i.history.Append(ctx, entry)
}
