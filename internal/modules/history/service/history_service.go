package service

import (
	"context"

	"veil/internal/modules/history/domain"
	"veil/internal/modules/history/dto"
	historyout "veil/internal/modules/history/port/out"
	"veil/internal/platform/clock"
	"veil/internal/platform/id"
)

const defaultListLimit = 50

type HistoryService struct {
	clk   clock.Clock
	ids   id.Generator
	store historyout.RunStore
}

func NewHistoryService(clk clock.Clock, ids id.Generator, store historyout.RunStore) *HistoryService {
	return &HistoryService{clk: clk, ids: ids, store: store}
}

func (s *HistoryService) Append(ctx context.Context, input dto.AppendInput) (domain.RunRecord, error) {
	record := domain.RunRecord{
		ID:            s.ids.New(),
		RunID:         input.RunID,
		Command:       input.Command,
		PresetID:      input.PresetID,
		Status:        domain.RunStatus(input.Status),
		Error:         input.Error,
		FindingsCount: input.FindingsCount,
		Summary:       input.Summary,
		RunFolder:     input.RunFolder,
		OutputPath:    input.OutputPath,
		Language:      input.Language,
		StartedAt:     input.StartedAt,
		FinishedAt:    input.FinishedAt,
	}
	if record.StartedAt.IsZero() {
		record.StartedAt = s.clk.Now()
	}
	if record.FinishedAt.IsZero() {
		record.FinishedAt = s.clk.Now()
	}
	if err := record.Validate(); err != nil {
		return domain.RunRecord{}, err
	}
	if err := s.store.Append(ctx, record); err != nil {
		return domain.RunRecord{}, err
	}
	return record, nil
}

func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.store.List(ctx, limit)
}

func (s *HistoryService) Get(ctx context.Context, recordID string) (domain.RunRecord, error) {
	return s.store.Get(ctx, recordID)
}
