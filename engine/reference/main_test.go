package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func rulePreset() preset {
	return preset{
		PresetID:          "standard",
		Layer:             1,
		MinimumConfidence: 60,
		UncertaintyPolicy: "mask",
		PseudonymStyle:    "neutral",
		LanguageMode:      "auto",
		EntitiesEnabled:   map[string]bool{"PERSON": true, "EMAIL": true, "PHONE": true, "IBAN": true, "DATE": true},
	}
}

func TestRedactReplacesEnabledEntities(t *testing.T) {
	t.Parallel()
	res := redact("Frau Muster schrieb an max@example.com", rulePreset())
	if strings.Contains(res.text, "Muster") || strings.Contains(res.text, "max@example.com") {
		t.Fatalf("pii survived: %q", res.text)
	}
	if !strings.Contains(res.text, "[PERSON_1]") || !strings.Contains(res.text, "[EMAIL_1]") {
		t.Fatalf("tokens missing: %q", res.text)
	}
	if res.summary["PERSON"] != 1 || res.summary["EMAIL"] != 1 {
		t.Fatalf("summary = %v", res.summary)
	}
	if res.count != 2 {
		t.Fatalf("count = %d", res.count)
	}
}

func TestRedactSkipsDisabledEntities(t *testing.T) {
	t.Parallel()
	p := rulePreset()
	p.EntitiesEnabled["EMAIL"] = false
	res := redact("mail max@example.com", p)
	if !strings.Contains(res.text, "max@example.com") {
		t.Fatalf("disabled entity redacted: %q", res.text)
	}
}

func TestRedactUncertaintyPolicies(t *testing.T) {
	t.Parallel()
	// PERSON confidence 55 is below the floor of 60.
	p := rulePreset()
	p.UncertaintyPolicy = "leave_intact"
	res := redact("Herr Muster ruft an", p)
	if !strings.Contains(res.text, "Herr Muster") {
		t.Fatalf("uncertain finding replaced under leave_intact: %q", res.text)
	}

	p.UncertaintyPolicy = "mask"
	res = redact("Herr Muster ruft an", p)
	if strings.Contains(res.text, "Muster") {
		t.Fatalf("uncertain finding kept under mask: %q", res.text)
	}
}

func TestRealisticPseudonyms(t *testing.T) {
	t.Parallel()
	p := rulePreset()
	p.PseudonymStyle = "realistic"
	res := redact("mail max@example.com", p)
	if !strings.Contains(res.text, "person1@example.org") {
		t.Fatalf("text = %q", res.text)
	}
}

func TestDetectLanguage(t *testing.T) {
	t.Parallel()
	p := rulePreset()
	if got := detectLanguage("das ist nicht der Bericht und die Akte", p); got != "de" {
		t.Fatalf("language = %s", got)
	}
	if got := detectLanguage("this report contains findings", p); got != "en" {
		t.Fatalf("language = %s", got)
	}

	fixed := "fr"
	p.LanguageMode = "fixed"
	p.Language = &fixed
	if got := detectLanguage("anything", p); got != "fr" {
		t.Fatalf("language = %s", got)
	}
}

func TestCollectFiles(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{"a.txt", "b.png", filepath.Join("sub", "c.md")} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	files, seen, err := collectFiles(root, true, 0)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if seen != 3 {
		t.Fatalf("seen = %d", seen)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v", files)
	}

	files, seen, err = collectFiles(root, false, 0)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if seen != 2 || len(files) != 1 {
		t.Fatalf("non-recursive: seen=%d files=%v", seen, files)
	}

	files, _, err = collectFiles(root, true, 1)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("limit ignored: %v", files)
	}
}

func TestAnonymizedName(t *testing.T) {
	t.Parallel()
	if got := anonymizedName("/docs/report.txt"); got != "report_anonymized.txt" {
		t.Fatalf("name = %s", got)
	}
}
