package service

import (
	"context"
	"fmt"

	"veil/internal/modules/preset/domain"
	presetout "veil/internal/modules/preset/port/out"
	apperrors "veil/internal/platform/errors"
)

type PresetService struct {
	store presetout.Store
}

func NewPresetService(store presetout.Store) *PresetService {
	return &PresetService{store: store}
}

func (s *PresetService) List(ctx context.Context) ([]domain.Preset, error) {
	return s.loadValidated(ctx)
}

func (s *PresetService) Get(ctx context.Context, id string) (domain.Preset, error) {
	presets, err := s.loadValidated(ctx)
	if err != nil {
		return domain.Preset{}, err
	}
	for _, preset := range presets {
		if preset.ID == id {
			return preset, nil
		}
	}
	return domain.Preset{}, fmt.Errorf("%w: preset %q", apperrors.ErrNotFound, id)
}

func (s *PresetService) loadValidated(ctx context.Context) ([]domain.Preset, error) {
	presets, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	for _, preset := range presets {
		if err := preset.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[preset.ID]; ok {
			return nil, fmt.Errorf("duplicate preset id: %s", preset.ID)
		}
		seen[preset.ID] = struct{}{}
	}
	return presets, nil
}
