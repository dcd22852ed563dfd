package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"veil/internal/bootstrap"
	enginedto "veil/internal/modules/engine/dto"
	presetdto "veil/internal/modules/preset/dto"
	"veil/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var workspacePath, enginePath string

	root := &cobra.Command{
		Use:           "veil",
		Short:         "Terminal anonymization shell",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&workspacePath, "workspace", ".", "workspace path")
	root.PersistentFlags().StringVar(&enginePath, "engine", "", "engine binary path (overrides workspace default)")

	root.AddCommand(newTUICmd(&workspacePath, &enginePath))
	root.AddCommand(newAnalyzeCmd(&workspacePath, &enginePath))
	root.AddCommand(newExtensionsCmd(&workspacePath, &enginePath))
	root.AddCommand(newEngineCmd(&workspacePath, &enginePath))
	root.AddCommand(newPresetCmd(&workspacePath, &enginePath))
	root.AddCommand(newRunsCmd(&workspacePath, &enginePath))
	return root
}

func loadApp(workspacePath, enginePath string) (*bootstrap.App, error) {
	cfg, err := config.New(workspacePath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(enginePath) != "" {
		cfg.EnginePath = enginePath
	}
	return bootstrap.New(cfg)
}

func newTUICmd(workspacePath, enginePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run veil terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(*workspacePath, *enginePath)
			if err != nil {
				return err
			}
			return bootstrap.RunTUI(*workspacePath, app)
		},
	}
}

func newAnalyzeCmd(workspacePath, enginePath *string) *cobra.Command {
	analyze := &cobra.Command{Use: "analyze", Short: "Run anonymization through the engine"}

	var presetID, modelPath string

	textCmd := &cobra.Command{
		Use:   "text <text>",
		Short: "Anonymize a piece of text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*workspacePath, *enginePath)
			if err != nil {
				return err
			}
			preset, err := app.PresetCLI.Get(cmd.Context(), presetID)
			if err != nil {
				return err
			}
			out, err := app.EngineCLI.AnalyzeText(cmd.Context(), enginedto.AnalyzeTextInput{
				Text:      args[0],
				Preset:    toWirePreset(preset),
				ModelPath: modelPath,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "run=%s language=%s findings=%d folder=%s\n", out.RunID, out.Language, out.FindingsCount, out.RunFolder)
			printSummary(cmd, out.Summary)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.RedactedText)
			return nil
		},
	}
	textCmd.Flags().StringVar(&presetID, "preset", "standard", "preset id")
	textCmd.Flags().StringVar(&modelPath, "model-path", "", "optional model path for layer 2")

	var filePresetID string
	fileCmd := &cobra.Command{
		Use:   "file <path>",
		Short: "Anonymize a single file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*workspacePath, *enginePath)
			if err != nil {
				return err
			}
			preset, err := app.PresetCLI.Get(cmd.Context(), filePresetID)
			if err != nil {
				return err
			}
			out, err := app.EngineCLI.AnalyzeFile(cmd.Context(), enginedto.AnalyzeFileInput{
				InputPath: args[0],
				Preset:    toWirePreset(preset),
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "run=%s findings=%d output=%s\n", out.RunID, out.FindingsCount, out.OutputPath)
			printSummary(cmd, out.Summary)
			return nil
		},
	}
	fileCmd.Flags().StringVar(&filePresetID, "preset", "standard", "preset id")

	var batchPresetID string
	var recursive bool
	var maxFiles int
	batchCmd := &cobra.Command{
		Use:   "batch <folder>",
		Short: "Anonymize all supported files in a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*workspacePath, *enginePath)
			if err != nil {
				return err
			}
			preset, err := app.PresetCLI.Get(cmd.Context(), batchPresetID)
			if err != nil {
				return err
			}
			out, err := app.EngineCLI.AnalyzeBatch(cmd.Context(), enginedto.AnalyzeBatchInput{
				InputFolder: args[0],
				Preset:      toWirePreset(preset),
				Recursive:   recursive,
				MaxFiles:    maxFiles,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "run=%s processed=%d skipped=%d seen=%d folder=%s\n",
				out.RunID, out.ProcessedFiles, out.SkippedFiles, out.TotalFilesSeen, out.OutputFolder)
			printSummary(cmd, out.Summary)
			return nil
		},
	}
	batchCmd.Flags().StringVar(&batchPresetID, "preset", "standard", "preset id")
	batchCmd.Flags().BoolVar(&recursive, "recursive", true, "descend into subfolders")
	batchCmd.Flags().IntVar(&maxFiles, "max-files", 0, "limit processed files (0 = no limit)")

	analyze.AddCommand(textCmd, fileCmd, batchCmd)
	return analyze
}

func newExtensionsCmd(workspacePath, enginePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "extensions",
		Short: "List file extensions the engine supports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workspacePath, *enginePath)
			if err != nil {
				return err
			}
			out, err := app.EngineCLI.SupportedExtensions(cmd.Context())
			if err != nil {
				return err
			}
			for _, ext := range out.Extensions {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), ext)
			}
			return nil
		},
	}
}

func newEngineCmd(workspacePath, enginePath *string) *cobra.Command {
	engine := &cobra.Command{Use: "engine", Short: "Engine sidecar operations"}
	engine.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Check the engine binary and wire contract",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workspacePath, *enginePath)
			if err != nil {
				return err
			}
			out, err := app.EngineCLI.Doctor(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "binary=%t contract=%t", out.BinaryReachable, out.ContractOK)
			if len(out.Extensions) > 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), " extensions=%s", strings.Join(out.Extensions, ","))
			}
			if out.Error != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", out.Error)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			if !out.BinaryReachable || !out.ContractOK {
				return fmt.Errorf("engine doctor found failing checks")
			}
			return nil
		},
	})
	return engine
}

func newPresetCmd(workspacePath, enginePath *string) *cobra.Command {
	preset := &cobra.Command{Use: "preset", Short: "Preset library commands"}

	preset.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available presets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workspacePath, *enginePath)
			if err != nil {
				return err
			}
			presets, err := app.PresetCLI.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(presets) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no presets")
				return nil
			}
			for _, p := range presets {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tlayer=%d confidence>=%d\n", p.ID, p.Name, p.Layer, p.MinimumConfidence)
			}
			return nil
		},
	})

	var presetID string
	show := &cobra.Command{
		Use:   "show --id <id>",
		Short: "Show preset details",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(presetID) == "" {
				return fmt.Errorf("--id is required")
			}
			app, err := loadApp(*workspacePath, *enginePath)
			if err != nil {
				return err
			}
			p, err := app.PresetCLI.Get(cmd.Context(), presetID)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "id: %s\nname: %s\nlayer: %d\nmin_confidence: %d\nuncertainty: %s\npseudonyms: %s\nlanguage: %s\n",
				p.ID, p.Name, p.Layer, p.MinimumConfidence, p.UncertaintyPolicy, p.PseudonymStyle, languageLabel(p))
			names := make([]string, 0, len(p.EntitiesEnabled))
			for name := range p.EntitiesEnabled {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s=%t\n", name, p.EntitiesEnabled[name])
			}
			return nil
		},
	}
	show.Flags().StringVar(&presetID, "id", "", "preset id")
	preset.AddCommand(show)
	return preset
}

func newRunsCmd(workspacePath, enginePath *string) *cobra.Command {
	runs := &cobra.Command{Use: "runs", Short: "Run history commands"}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workspacePath, *enginePath)
			if err != nil {
				return err
			}
			records, err := app.HistoryCLI.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
				return nil
			}
			for _, r := range records {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\tfindings=%d\n",
					r.ID, r.StartedAt.Format(time.RFC3339), r.Command, r.Status, r.FindingsCount)
			}
			return nil
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "maximum records to show")
	runs.AddCommand(list)

	var recordID string
	show := &cobra.Command{
		Use:   "show --id <id>",
		Short: "Show one run record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(recordID) == "" {
				return fmt.Errorf("--id is required")
			}
			app, err := loadApp(*workspacePath, *enginePath)
			if err != nil {
				return err
			}
			r, err := app.HistoryCLI.Get(cmd.Context(), recordID)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "id: %s\nrun_id: %s\ncommand: %s\npreset: %s\nstatus: %s\nfindings: %d\nstarted: %s\nfinished: %s\n",
				r.ID, r.RunID, r.Command, r.PresetID, r.Status, r.FindingsCount,
				r.StartedAt.Format(time.RFC3339), r.FinishedAt.Format(time.RFC3339))
			if r.RunFolder != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "folder: %s\n", r.RunFolder)
			}
			if r.OutputPath != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "output: %s\n", r.OutputPath)
			}
			if r.Language != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "language: %s\n", r.Language)
			}
			if r.Error != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "error: %s\n", r.Error)
			}
			printSummary(cmd, r.Summary)
			return nil
		},
	}
	show.Flags().StringVar(&recordID, "id", "", "record id or run id")
	runs.AddCommand(show)
	return runs
}

func toWirePreset(p presetdto.PresetOutput) enginedto.Preset {
	var language *string
	if p.Language != "" {
		language = &p.Language
	}
	return enginedto.Preset{
		PresetID:          p.ID,
		Name:              p.Name,
		Layer:             p.Layer,
		MinimumConfidence: p.MinimumConfidence,
		UncertaintyPolicy: p.UncertaintyPolicy,
		PseudonymStyle:    p.PseudonymStyle,
		LanguageMode:      p.LanguageMode,
		Language:          language,
		EntitiesEnabled:   p.EntitiesEnabled,
	}
}

func languageLabel(p presetdto.PresetOutput) string {
	if p.LanguageMode == "fixed" {
		return "fixed:" + p.Language
	}
	return p.LanguageMode
}

func printSummary(cmd *cobra.Command, summary map[string]int) {
	if len(summary) == 0 {
		return
	}
	names := make([]string, 0, len(summary))
	for name := range summary {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d\n", name, summary[name])
	}
}
