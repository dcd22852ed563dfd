package dto

// Preset is the wire shape forwarded verbatim inside analyze payloads. Field
// names and nesting are the contract with the engine worker; Language must
// serialize as null when unset, so it stays a pointer.
type Preset struct {
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

type AnalyzeTextInput struct {
	Text      string
	Preset    Preset
	ModelPath string
}

type AnalyzeTextOutput struct {
	RunID         string         `json:"run_id"`
	RunFolder     string         `json:"run_folder"`
	RedactedText  string         `json:"redacted_text"`
	Summary       map[string]int `json:"summary"`
	FindingsCount int            `json:"findings_count"`
	Language      string         `json:"language"`
}

type AnalyzeFileInput struct {
	InputPath string
	Preset    Preset
}

type AnalyzeFileOutput struct {
	RunID         string         `json:"run_id"`
	RunFolder     string         `json:"run_folder"`
	OutputPath    string         `json:"output_path"`
	Summary       map[string]int `json:"summary"`
	FindingsCount int            `json:"findings_count"`
}

type AnalyzeBatchInput struct {
	InputFolder string
	Preset      Preset
	Recursive   bool
	MaxFiles    int
}

type AnalyzeBatchOutput struct {
	RunID          string         `json:"run_id"`
	RunFolder      string         `json:"run_folder"`
	ProcessedFiles int            `json:"processed_files"`
	SkippedFiles   int            `json:"skipped_files"`
	TotalFilesSeen int            `json:"total_files_seen"`
	Summary        map[string]int `json:"summary"`
	OutputFolder   string         `json:"output_folder"`
}

type ExtensionsOutput struct {
	Extensions []string `json:"extensions"`
}

type DoctorOutput struct {
	BinaryReachable bool
	ContractOK      bool
	Extensions      []string
	Error           string
}
