package in

import (
	"context"

	"veil/internal/modules/engine/dto"
)

type Usecase interface {
	AnalyzeText(ctx context.Context, input dto.AnalyzeTextInput) (dto.AnalyzeTextOutput, error)
	AnalyzeFile(ctx context.Context, input dto.AnalyzeFileInput) (dto.AnalyzeFileOutput, error)
	AnalyzeBatch(ctx context.Context, input dto.AnalyzeBatchInput) (dto.AnalyzeBatchOutput, error)
	SupportedExtensions(ctx context.Context) (dto.ExtensionsOutput, error)
	Doctor(ctx context.Context) (dto.DoctorOutput, error)
}
