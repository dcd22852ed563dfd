package usecase

import (
	"context"

	"veil/internal/modules/preset/domain"
	"veil/internal/modules/preset/dto"
	presetin "veil/internal/modules/preset/port/in"
	"veil/internal/modules/preset/service"
)

type Interactor struct {
	svc *service.PresetService
}

func NewInteractor(svc *service.PresetService) presetin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.PresetOutput, error) {
	presets, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PresetOutput, 0, len(presets))
	for _, preset := range presets {
		out = append(out, toOutput(preset))
	}
	return out, nil
}

func (i *Interactor) Get(ctx context.Context, id string) (dto.PresetOutput, error) {
	preset, err := i.svc.Get(ctx, id)
	if err != nil {
		return dto.PresetOutput{}, err
	}
	return toOutput(preset), nil
}

func toOutput(preset domain.Preset) dto.PresetOutput {
	return dto.PresetOutput{
		ID:                preset.ID,
		Name:              preset.Name,
		Layer:             preset.Layer,
		MinimumConfidence: preset.MinimumConfidence,
		UncertaintyPolicy: string(preset.UncertaintyPolicy),
		PseudonymStyle:    string(preset.PseudonymStyle),
		LanguageMode:      string(preset.LanguageMode),
		Language:          preset.Language,
		EntitiesEnabled:   preset.EntitiesEnabled,
	}
}
