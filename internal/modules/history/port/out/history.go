package out

import (
	"context"

	"veil/internal/modules/history/domain"
)

type RunStore interface {
	Append(ctx context.Context, record domain.RunRecord) error
	List(ctx context.Context, limit int) ([]domain.RunRecord, error)
	Get(ctx context.Context, id string) (domain.RunRecord, error)
}
