package out

import (
	"context"

	"veil/internal/modules/preset/domain"
)

type Store interface {
	Load(ctx context.Context) ([]domain.Preset, error)
}
