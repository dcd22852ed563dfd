package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"veil/internal/modules/engine/domain"
	"veil/internal/modules/engine/dto"
	"veil/internal/modules/engine/service"
	historydto "veil/internal/modules/history/dto"
)

type fakeSidecar struct {
	envelope domain.Envelope
	err      error
}

func (f *fakeSidecar) Execute(context.Context, domain.Command, map[string]any) (domain.Envelope, error) {
	return f.envelope, f.err
}

type fakeHistory struct {
	entries []historydto.AppendInput
	err     error
}

func (f *fakeHistory) Append(_ context.Context, input historydto.AppendInput) (historydto.RunOutput, error) {
	f.entries = append(f.entries, input)
	return historydto.RunOutput{}, f.err
}

func (f *fakeHistory) List(context.Context, int) ([]historydto.RunOutput, error) {
	return nil, nil
}

func (f *fakeHistory) Get(context.Context, string) (historydto.RunOutput, error) {
	return historydto.RunOutput{}, errors.New("not implemented")
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func newInteractor(sidecar *fakeSidecar, history *fakeHistory) *Interactor {
	svc := service.NewEngineService(sidecar, "unused")
	clk := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewInteractor(svc, clk, history).(*Interactor)
}

func TestAnalyzeTextRecordsSuccess(t *testing.T) {
	t.Parallel()
	sidecar := &fakeSidecar{envelope: domain.Envelope{
		"run_id":         "r-1",
		"run_folder":     "/runs/r-1",
		"redacted_text":  "x",
		"findings_count": float64(2),
		"summary":        map[string]any{"PERSON": float64(2)},
		"language":       "de",
	}}
	history := &fakeHistory{}
	interactor := newInteractor(sidecar, history)

	out, err := interactor.AnalyzeText(context.Background(), dto.AnalyzeTextInput{
		Text:   "hello",
		Preset: dto.Preset{PresetID: "standard"},
	})
	if err != nil {
		t.Fatalf("analyze text: %v", err)
	}
	if out.RunID != "r-1" {
		t.Fatalf("run id = %s", out.RunID)
	}

	if len(history.entries) != 1 {
		t.Fatalf("history entries = %d", len(history.entries))
	}
	entry := history.entries[0]
	if entry.Status != "ok" || entry.Error != "" {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.Command != "analyze_text" || entry.PresetID != "standard" {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.RunID != "r-1" || entry.FindingsCount != 2 || entry.Language != "de" {
		t.Fatalf("entry = %+v", entry)
	}
	if !entry.FinishedAt.After(entry.StartedAt) {
		t.Fatalf("timestamps not ordered: %v / %v", entry.StartedAt, entry.FinishedAt)
	}
}

func TestAnalyzeTextRecordsFailure(t *testing.T) {
	t.Parallel()
	sidecar := &fakeSidecar{err: domain.ErrEngineFailure}
	history := &fakeHistory{}
	interactor := newInteractor(sidecar, history)

	_, err := interactor.AnalyzeText(context.Background(), dto.AnalyzeTextInput{
		Text:   "hello",
		Preset: dto.Preset{PresetID: "strict"},
	})
	if !errors.Is(err, domain.ErrEngineFailure) {
		t.Fatalf("want ErrEngineFailure, got %v", err)
	}

	if len(history.entries) != 1 {
		t.Fatalf("history entries = %d", len(history.entries))
	}
	entry := history.entries[0]
	if entry.Status != "error" || entry.Error == "" {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.PresetID != "strict" {
		t.Fatalf("entry = %+v", entry)
	}
}

func TestHistoryWriteFailureDoesNotFailAnalyze(t *testing.T) {
	t.Parallel()
	sidecar := &fakeSidecar{envelope: domain.Envelope{"run_id": "r-1"}}
	history := &fakeHistory{err: errors.New("disk full")}
	interactor := newInteractor(sidecar, history)

	if _, err := interactor.AnalyzeText(context.Background(), dto.AnalyzeTextInput{Text: "x"}); err != nil {
		t.Fatalf("history failure leaked: %v", err)
	}
}

func TestNilHistoryIsTolerated(t *testing.T) {
	t.Parallel()
	sidecar := &fakeSidecar{envelope: domain.Envelope{"run_id": "r-1"}}
	svc := service.NewEngineService(sidecar, "unused")
	interactor := NewInteractor(svc, &fakeClock{now: time.Now()}, nil)

	if _, err := interactor.AnalyzeText(context.Background(), dto.AnalyzeTextInput{Text: "x"}); err != nil {
		t.Fatalf("analyze text: %v", err)
	}
}

func TestAnalyzeBatchRecordsRun(t *testing.T) {
	t.Parallel()
	sidecar := &fakeSidecar{envelope: domain.Envelope{
		"run_id":          "r-9",
		"processed_files": float64(3),
	}}
	history := &fakeHistory{}
	interactor := newInteractor(sidecar, history)

	if _, err := interactor.AnalyzeBatch(context.Background(), dto.AnalyzeBatchInput{InputFolder: "/docs"}); err != nil {
		t.Fatalf("analyze batch: %v", err)
	}
	if len(history.entries) != 1 || history.entries[0].Command != "analyze_batch" {
		t.Fatalf("entries = %+v", history.entries)
	}
}

func TestSupportedExtensionsNotRecorded(t *testing.T) {
	t.Parallel()
	sidecar := &fakeSidecar{envelope: domain.Envelope{"extensions": []any{"txt"}}}
	history := &fakeHistory{}
	interactor := newInteractor(sidecar, history)

	if _, err := interactor.SupportedExtensions(context.Background()); err != nil {
		t.Fatalf("extensions: %v", err)
	}
	if len(history.entries) != 0 {
		t.Fatal("introspection calls must not create run records")
	}
}
