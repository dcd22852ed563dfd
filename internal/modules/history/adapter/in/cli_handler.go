package in

import (
	"context"

	"veil/internal/modules/history/dto"
	historyin "veil/internal/modules/history/port/in"
)

type CLIHandler struct {
	usecase historyin.Usecase
}

func NewCLIHandler(usecase historyin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context, limit int) ([]dto.RunOutput, error) {
	return h.usecase.List(ctx, limit)
}

func (h CLIHandler) Get(ctx context.Context, id string) (dto.RunOutput, error) {
	return h.usecase.Get(ctx, id)
}
