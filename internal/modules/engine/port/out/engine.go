package out

import (
	"context"

	"veil/internal/modules/engine/domain"
)

// Sidecar executes exactly one worker process invocation per call: write the
// payload document to the worker, collect its output document, classify
// failure. Implementations hold no state shared between concurrent calls.
type Sidecar interface {
	Execute(ctx context.Context, command domain.Command, payload map[string]any) (domain.Envelope, error)
}
