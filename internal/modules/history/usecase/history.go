package usecase

import (
	"context"

	"veil/internal/modules/history/domain"
	"veil/internal/modules/history/dto"
	historyin "veil/internal/modules/history/port/in"
	"veil/internal/modules/history/service"
)

type Interactor struct {
	svc *service.HistoryService
}

func NewInteractor(svc *service.HistoryService) historyin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Append(ctx context.Context, input dto.AppendInput) (dto.RunOutput, error) {
	record, err := i.svc.Append(ctx, input)
	if err != nil {
		return dto.RunOutput{}, err
	}
	return toOutput(record), nil
}

func (i *Interactor) List(ctx context.Context, limit int) ([]dto.RunOutput, error) {
	records, err := i.svc.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RunOutput, 0, len(records))
	for _, record := range records {
		out = append(out, toOutput(record))
	}
	return out, nil
}

func (i *Interactor) Get(ctx context.Context, id string) (dto.RunOutput, error) {
	record, err := i.svc.Get(ctx, id)
	if err != nil {
		return dto.RunOutput{}, err
	}
	return toOutput(record), nil
}

func toOutput(record domain.RunRecord) dto.RunOutput {
	return dto.RunOutput{
		ID:            record.ID,
		RunID:         record.RunID,
		Command:       record.Command,
		PresetID:      record.PresetID,
		Status:        string(record.Status),
		Error:         record.Error,
		FindingsCount: record.FindingsCount,
		Summary:       record.Summary,
		RunFolder:     record.RunFolder,
		OutputPath:    record.OutputPath,
		Language:      record.Language,
		StartedAt:     record.StartedAt,
		FinishedAt:    record.FinishedAt,
	}
}
