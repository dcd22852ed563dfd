package bootstrap

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	engineinadapter "veil/internal/modules/engine/adapter/in"
	engineoutadapter "veil/internal/modules/engine/adapter/out"
	engineservice "veil/internal/modules/engine/service"
	engineusecase "veil/internal/modules/engine/usecase"
	historyinadapter "veil/internal/modules/history/adapter/in"
	historyoutadapter "veil/internal/modules/history/adapter/out"
	historyservice "veil/internal/modules/history/service"
	historyusecase "veil/internal/modules/history/usecase"
	presetinadapter "veil/internal/modules/preset/adapter/in"
	presetoutadapter "veil/internal/modules/preset/adapter/out"
	presetservice "veil/internal/modules/preset/service"
	presetusecase "veil/internal/modules/preset/usecase"
	"veil/internal/platform/clock"
	"veil/internal/platform/config"
	"veil/internal/platform/id"
	uiapp "veil/internal/ui/app"
)

type App struct {
	EngineCLI  engineinadapter.CLIHandler
	PresetCLI  presetinadapter.CLIHandler
	HistoryCLI historyinadapter.CLIHandler
}

func New(cfg config.Config) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.RandomHex{}

	runStore, err := historyoutadapter.NewSQLiteRunStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new run store: %w", err)
	}
	historyUC := historyusecase.NewInteractor(historyservice.NewHistoryService(clk, ids, runStore))

	presetUC := presetusecase.NewInteractor(presetservice.NewPresetService(
		presetoutadapter.NewYAMLStore(cfg.PresetsPath),
	))

	engineUC := engineusecase.NewInteractor(
		engineservice.NewEngineService(engineoutadapter.NewProcessSidecar(cfg.EnginePath), cfg.EnginePath),
		clk,
		historyUC,
	)

	return &App{
		EngineCLI:  engineinadapter.NewCLIHandler(engineUC),
		PresetCLI:  presetinadapter.NewCLIHandler(presetUC),
		HistoryCLI: historyinadapter.NewCLIHandler(historyUC),
	}, nil
}

func RunTUI(workspacePath string, app *App) error {
	model := uiapp.NewModel(workspacePath, app.EngineCLI, app.PresetCLI, app.HistoryCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
