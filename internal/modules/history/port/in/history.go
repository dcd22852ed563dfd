package in

import (
	"context"

	"veil/internal/modules/history/dto"
)

type Usecase interface {
	Append(ctx context.Context, input dto.AppendInput) (dto.RunOutput, error)
	List(ctx context.Context, limit int) ([]dto.RunOutput, error)
	Get(ctx context.Context, id string) (dto.RunOutput, error)
}
