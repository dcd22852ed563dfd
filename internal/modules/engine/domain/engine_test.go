package domain

import "testing"

func TestEnvelopeErrorText(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name      string
		envelope  Envelope
		wantFound bool
		wantText  string
	}{
		{"no indicator", Envelope{"run_id": "r-1"}, false, ""},
		{"null indicator", Envelope{"run_id": "r-1", "error": nil}, false, ""},
		{"string indicator", Envelope{"error": "model not found"}, true, "model not found"},
		{"empty string indicator", Envelope{"error": ""}, true, ""},
		{"object indicator", Envelope{"error": map[string]any{"code": 17}}, true, `{"code":17}`},
		{"numeric indicator", Envelope{"error": float64(3)}, true, "3"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			text, found := tc.envelope.ErrorText()
			if found != tc.wantFound {
				t.Fatalf("found = %t, want %t", found, tc.wantFound)
			}
			if text != tc.wantText {
				t.Fatalf("text = %q, want %q", text, tc.wantText)
			}
		})
	}
}

func TestCommandValidate(t *testing.T) {
	t.Parallel()
	if err := CommandAnalyzeText.Validate(); err != nil {
		t.Fatalf("known command rejected: %v", err)
	}
	if err := Command("").Validate(); err == nil {
		t.Fatal("empty command accepted")
	}
}
