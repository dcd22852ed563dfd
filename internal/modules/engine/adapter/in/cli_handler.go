package in

import (
	"context"

	"veil/internal/modules/engine/dto"
	enginein "veil/internal/modules/engine/port/in"
)

type CLIHandler struct {
	usecase enginein.Usecase
}

func NewCLIHandler(usecase enginein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) AnalyzeText(ctx context.Context, input dto.AnalyzeTextInput) (dto.AnalyzeTextOutput, error) {
	return h.usecase.AnalyzeText(ctx, input)
}

func (h CLIHandler) AnalyzeFile(ctx context.Context, input dto.AnalyzeFileInput) (dto.AnalyzeFileOutput, error) {
	return h.usecase.AnalyzeFile(ctx, input)
}

func (h CLIHandler) AnalyzeBatch(ctx context.Context, input dto.AnalyzeBatchInput) (dto.AnalyzeBatchOutput, error) {
	return h.usecase.AnalyzeBatch(ctx, input)
}

func (h CLIHandler) SupportedExtensions(ctx context.Context) (dto.ExtensionsOutput, error) {
	return h.usecase.SupportedExtensions(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) (dto.DoctorOutput, error) {
	return h.usecase.Doctor(ctx)
}
