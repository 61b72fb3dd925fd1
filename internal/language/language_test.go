package language

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToISO2(t *testing.T) {
	tests := map[string]string{
		"en":                    "en",
		"EN":                    "en",
		"eng":                   "en",
		"fre":                   "fr",
		"fra":                   "fr",
		"ger":                   "de",
		"chi":                   "zh",
		"dut":                   "nl",
		"French":                "fr",
		"GERMAN":                "de",
		"farsi":                 "fa",
		"pt-BR":                 "pb",
		"pt_br":                 "pb",
		"zh-CN":                 "zh",
		"en_US":                 "en",
		"iw":                    "he",
		"xy":                    "xy",
		"xyz":                   "",
		"":                      "",
		" ":                     "",
		"brazillian_portuguese": "pb",
	}
	for input, want := range tests {
		if got := ToISO2(input); got != want {
			t.Errorf("ToISO2(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestToISO3(t *testing.T) {
	tests := map[string]string{
		"en":    "eng",
		"fr":    "fra",
		"fre":   "fra",
		"pt-br": "pob",
		"zh":    "zho",
		"xyz":   "xyz",
		"xy":    "und",
		"":      "und",
	}
	for input, want := range tests {
		if got := ToISO3(input); got != want {
			t.Errorf("ToISO3(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"en":      "English",
		"spa":     "Spanish",
		"ger":     "German",
		"pb":      "Portuguese (BR)",
		"english": "English",
		"":        "Unknown",
		"xyz":     "XYZ",
	}
	for input, want := range tests {
		if got := DisplayName(input); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"nil", nil, nil},
		{"blank entries", []string{" ", ""}, nil},
		{"mixed forms dedupe", []string{"en", "eng", "English", "fr", "fra"}, []string{"en", "fr"}},
		{"regional", []string{"pt-BR", "pt", "zh_TW"}, []string{"pb", "pt", "zh"}},
		{"unknown kept", []string{"EN", "Klingon"}, []string{"en", "klingon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, NormalizeList(tt.input)); diff != "" {
				t.Fatalf("NormalizeList mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFromName(t *testing.T) {
	tests := map[string]string{
		"English":               "en",
		"EN":                    "en",
		"Farsi/Persian":         "fa",
		"BRAZILLIAN_PORTUGUESE": "pb",
		"Big 5 code":            "zh",
		"thai":                  "th",
		"klingon":               "",
		"":                      "",
	}
	for input, want := range tests {
		if got := FromName(input); got != want {
			t.Errorf("FromName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestLookup(t *testing.T) {
	lang, ok := Lookup("ces")
	if !ok {
		t.Fatal("expected ces to resolve")
	}
	if diff := cmp.Diff(Language{Code: "cs", Alpha3: "ces", Alpha3B: "cze", Name: "Czech", Aliases: []string{"czech"}}, lang); diff != "" {
		t.Fatalf("Lookup mismatch (-want +got):\n%s", diff)
	}
	if _, ok := Lookup("tlh"); ok {
		t.Fatal("expected unknown code to miss")
	}
}

func TestOptionsCoversTable(t *testing.T) {
	opts := Options()
	if len(opts) != len(table) {
		t.Fatalf("Options() returned %d entries, want %d", len(opts), len(table))
	}
	if opts[0] != (Option{Code: "en", Name: "English"}) {
		t.Fatalf("unexpected first option: %+v", opts[0])
	}
}
