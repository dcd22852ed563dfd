package in

import (
	"context"

	"veil/internal/modules/preset/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.PresetOutput, error)
	Get(ctx context.Context, id string) (dto.PresetOutput, error)
}
