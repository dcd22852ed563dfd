package dto

type PresetOutput struct {
	ID                string
	Name              string
	Layer             int
	MinimumConfidence int
	UncertaintyPolicy string
	PseudonymStyle    string
	LanguageMode      string
	Language          string
	EntitiesEnabled   map[string]bool
}
