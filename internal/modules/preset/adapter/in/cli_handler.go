package in

import (
	"context"

	"veil/internal/modules/preset/dto"
	presetin "veil/internal/modules/preset/port/in"
)

type CLIHandler struct {
	usecase presetin.Usecase
}

func NewCLIHandler(usecase presetin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.PresetOutput, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Get(ctx context.Context, id string) (dto.PresetOutput, error) {
	return h.usecase.Get(ctx, id)
}
