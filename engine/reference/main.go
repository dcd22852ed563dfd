// Command reference is a self-contained anonymization worker that speaks the
// veil engine wire protocol: command name as the sole argument, one JSON
// payload on stdin, one JSON document on stdout. It implements rule-based
// detection only (layer 1) and exists so the shell can be exercised without
// shipping a model.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

type preset struct {
	PresetID          string          `json:"preset_id"`
	Name              string          `json:"name"`
	Layer             int             `json:"layer"`
	MinimumConfidence int             `json:"minimum_confidence"`
	UncertaintyPolicy string          `json:"uncertainty_policy"`
	PseudonymStyle    string          `json:"pseudonym_style"`
	LanguageMode      string          `json:"language_mode"`
	Language          *string         `json:"language"`
	EntitiesEnabled   map[string]bool `json:"entities_enabled"`
}

type payload struct {
	Text        string  `json:"text"`
	Preset      preset  `json:"preset"`
	ModelPath   string  `json:"model_path"`
	InputPath   string  `json:"input_path"`
	InputFolder string  `json:"input_folder"`
	Recursive   bool    `json:"recursive"`
	MaxFiles    float64 `json:"max_files"`
}

var supportedExtensions = []string{".csv", ".md", ".txt"}

func main() {
	if len(os.Args) < 2 {
		fatal("missing command argument")
	}
	command := os.Args[1]

	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		fatal("read stdin: " + err.Error())
	}
	var in payload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &in); err != nil {
			emit(map[string]any{"error": "invalid payload: " + err.Error()})
			return
		}
	}

	switch command {
	case "analyze_text":
		emit(analyzeText(in))
	case "analyze_file":
		emit(analyzeFile(in))
	case "analyze_batch":
		emit(analyzeBatch(in))
	case "get_supported_extensions":
		emit(map[string]any{"extensions": supportedExtensions})
	default:
		emit(map[string]any{"error": "unknown command: " + command})
	}
}

func emit(doc map[string]any) {
	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(doc); err != nil {
		fatal("encode output: " + err.Error())
	}
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

// ─── detection ───────────────────────────────────────────────────────────────

type detector struct {
	entity     string
	confidence int
	pattern    *regexp.Regexp
}

var detectors = []detector{
	{"EMAIL", 95, regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)},
	{"PHONE", 80, regexp.MustCompile(`\+?\d[\d\s/()-]{7,}\d`)},
	{"IBAN", 95, regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{11,30}\b`)},
	{"DATE", 70, regexp.MustCompile(`\b\d{1,2}[./]\d{1,2}[./]\d{2,4}\b`)},
	{"PERSON", 55, regexp.MustCompile(`\b(?:Herr|Frau|Dr\.|Prof\.|Mr\.|Mrs\.|Ms\.)\s+[A-ZÄÖÜ][a-zäöüß]+(?:\s+[A-ZÄÖÜ][a-zäöüß]+)?`)},
}

type redaction struct {
	text    string
	summary map[string]int
	count   int
}

func redact(text string, p preset) redaction {
	summary := map[string]int{}
	count := 0
	counters := map[string]int{}

	for _, d := range detectors {
		if !p.EntitiesEnabled[d.entity] {
			continue
		}
		if d.confidence < p.MinimumConfidence {
			// Below the preset floor the finding is uncertain. flag_only and
			// leave_intact keep the original text; mask and redact replace it.
			if p.UncertaintyPolicy == "flag_only" || p.UncertaintyPolicy == "leave_intact" {
				continue
			}
		}
		entity := d.entity
		text = d.pattern.ReplaceAllStringFunc(text, func(string) string {
			counters[entity]++
			summary[entity]++
			count++
			return token(entity, counters[entity], p.PseudonymStyle)
		})
	}
	return redaction{text: text, summary: summary, count: count}
}

func token(entity string, n int, style string) string {
	if style == "realistic" {
		return pseudonym(entity, n)
	}
	return fmt.Sprintf("[%s_%d]", entity, n)
}

var realisticNames = []string{"Alex Weber", "Kim Fischer", "Sam Vogel", "Chris Brandt"}

func pseudonym(entity string, n int) string {
	switch entity {
	case "PERSON":
		return realisticNames[(n-1)%len(realisticNames)]
	case "EMAIL":
		return fmt.Sprintf("person%d@example.org", n)
	case "PHONE":
		return fmt.Sprintf("+49 30 000%04d", n)
	default:
		return fmt.Sprintf("[%s_%d]", entity, n)
	}
}

var germanHints = []string{" der ", " die ", " das ", " und ", " ist ", " nicht ", " eine ", " mit "}

func detectLanguage(text string, p preset) string {
	if p.LanguageMode == "fixed" && p.Language != nil {
		return *p.Language
	}
	padded := " " + strings.ToLower(text) + " "
	hits := 0
	for _, hint := range germanHints {
		hits += strings.Count(padded, hint)
	}
	if hits >= 2 {
		return "de"
	}
	return "en"
}

// ─── run folders ─────────────────────────────────────────────────────────────

func newRunID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		fatal("run id: " + err.Error())
	}
	return hex.EncodeToString(buf)
}

func runsRoot() string {
	if dir := os.Getenv("VEIL_RUNS_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "veil-runs")
	}
	return filepath.Join(home, ".veil", "runs")
}

func newRunFolder(runID string) (string, error) {
	folder := filepath.Join(runsRoot(), runID)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", err
	}
	return folder, nil
}

func writeReport(folder string, report map[string]any) error {
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(folder, "report.json"), raw, 0o644)
}

// ─── commands ────────────────────────────────────────────────────────────────

func analyzeText(in payload) map[string]any {
	if in.Text == "" {
		return map[string]any{"error": "text must not be empty"}
	}
	runID := newRunID()
	folder, err := newRunFolder(runID)
	if err != nil {
		return map[string]any{"error": "create run folder: " + err.Error()}
	}

	res := redact(in.Text, in.Preset)
	language := detectLanguage(in.Text, in.Preset)
	if err := writeReport(folder, map[string]any{
		"run_id":   runID,
		"command":  "analyze_text",
		"preset":   in.Preset.PresetID,
		"summary":  res.summary,
		"language": language,
	}); err != nil {
		return map[string]any{"error": "write report: " + err.Error()}
	}

	return map[string]any{
		"run_id":         runID,
		"run_folder":     folder,
		"redacted_text":  res.text,
		"summary":        res.summary,
		"findings_count": res.count,
		"language":       language,
	}
}

func analyzeFile(in payload) map[string]any {
	if in.InputPath == "" {
		return map[string]any{"error": "input_path must not be empty"}
	}
	if !supported(in.InputPath) {
		return map[string]any{"error": "unsupported file type: " + filepath.Ext(in.InputPath)}
	}
	raw, err := os.ReadFile(in.InputPath)
	if err != nil {
		return map[string]any{"error": "read input: " + err.Error()}
	}

	runID := newRunID()
	folder, err := newRunFolder(runID)
	if err != nil {
		return map[string]any{"error": "create run folder: " + err.Error()}
	}

	res := redact(string(raw), in.Preset)
	outputPath := filepath.Join(folder, anonymizedName(in.InputPath))
	if err := os.WriteFile(outputPath, []byte(res.text), 0o644); err != nil {
		return map[string]any{"error": "write output: " + err.Error()}
	}
	if err := writeReport(folder, map[string]any{
		"run_id":  runID,
		"command": "analyze_file",
		"input":   in.InputPath,
		"summary": res.summary,
	}); err != nil {
		return map[string]any{"error": "write report: " + err.Error()}
	}

	return map[string]any{
		"run_id":         runID,
		"run_folder":     folder,
		"output_path":    outputPath,
		"summary":        res.summary,
		"findings_count": res.count,
	}
}

func analyzeBatch(in payload) map[string]any {
	if in.InputFolder == "" {
		return map[string]any{"error": "input_folder must not be empty"}
	}
	info, err := os.Stat(in.InputFolder)
	if err != nil || !info.IsDir() {
		return map[string]any{"error": "input_folder is not a directory: " + in.InputFolder}
	}

	runID := newRunID()
	folder, err := newRunFolder(runID)
	if err != nil {
		return map[string]any{"error": "create run folder: " + err.Error()}
	}
	outputFolder := filepath.Join(folder, "output")
	if err := os.MkdirAll(outputFolder, 0o755); err != nil {
		return map[string]any{"error": "create output folder: " + err.Error()}
	}

	files, seen, err := collectFiles(in.InputFolder, in.Recursive, int(in.MaxFiles))
	if err != nil {
		return map[string]any{"error": "scan folder: " + err.Error()}
	}

	summary := map[string]int{}
	processed, skipped := 0, 0
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			skipped++
			continue
		}
		res := redact(string(raw), in.Preset)
		if err := os.WriteFile(filepath.Join(outputFolder, anonymizedName(path)), []byte(res.text), 0o644); err != nil {
			skipped++
			continue
		}
		for entity, n := range res.summary {
			summary[entity] += n
		}
		processed++
	}

	if err := writeReport(folder, map[string]any{
		"run_id":  runID,
		"command": "analyze_batch",
		"input":   in.InputFolder,
		"summary": summary,
	}); err != nil {
		return map[string]any{"error": "write report: " + err.Error()}
	}

	return map[string]any{
		"run_id":           runID,
		"run_folder":       folder,
		"processed_files":  processed,
		"skipped_files":    skipped,
		"total_files_seen": seen,
		"summary":          summary,
		"output_folder":    outputFolder,
	}
}

// ─── file helpers ────────────────────────────────────────────────────────────

func supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range supportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

func anonymizedName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_anonymized" + ext
}

// collectFiles returns the supported files to process plus the total number of
// files seen. maxFiles 0 means no limit; the limit caps processing, not the
// seen count.
func collectFiles(root string, recursive bool, maxFiles int) ([]string, int, error) {
	var files []string
	seen := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if !recursive && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		seen++
		if !supported(path) {
			return nil
		}
		if maxFiles > 0 && len(files) >= maxFiles {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Strings(files)
	return files, seen, nil
}
