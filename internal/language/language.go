package language

import (
	"strings"
	"sync"
)

// index resolves every code, alias and name in table to its entry.
var index = sync.OnceValue(func() map[string]*Language {
	m := make(map[string]*Language, len(table)*4)
	for i := range table {
		lang := &table[i]
		keys := append([]string{lang.Code, lang.Alpha3, lang.Alpha3B, strings.ToLower(lang.Name)}, lang.Aliases...)
		for _, key := range keys {
			if key == "" {
				continue
			}
			if _, taken := m[key]; !taken {
				m[key] = lang
			}
		}
	}
	return m
})

// canonical lower-cases value, folds "_" to " ", and maps region tags such as
// "pt-BR" or "zh_CN" onto their base language unless the table lists the tag.
func canonical(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	if _, ok := index()[value]; ok {
		return value
	}
	if base, region, ok := strings.Cut(strings.ReplaceAll(value, "_", "-"), "-"); ok && len(base) == 2 && len(region) <= 4 {
		if _, known := index()[base+"-"+region]; known {
			return base + "-" + region
		}
		return base
	}
	return strings.ReplaceAll(value, "_", " ")
}

// Lookup finds the table entry for a code, alias, or English name.
func Lookup(value string) (Language, bool) {
	key := canonical(value)
	if key == "" {
		return Language{}, false
	}
	lang, ok := index()[key]
	if !ok {
		return Language{}, false
	}
	return *lang, true
}

// ToISO2 converts a recognized code or name to its two-letter form. Unknown
// two-letter input passes through; anything else unknown yields "".
func ToISO2(code string) string {
	if lang, ok := Lookup(code); ok {
		return lang.Code
	}
	if key := canonical(code); len(key) == 2 {
		return key
	}
	return ""
}

// ToISO3 converts a recognized code to ISO 639-2/T. Unknown three-letter input
// passes through; anything else unknown yields "und".
func ToISO3(code string) string {
	if lang, ok := Lookup(code); ok {
		return lang.Alpha3
	}
	if key := canonical(code); len(key) == 3 {
		return key
	}
	return "und"
}

// DisplayName never returns "": unknown codes come back upper-cased and empty
// input is "Unknown".
func DisplayName(code string) string {
	if lang, ok := Lookup(code); ok {
		return lang.Name
	}
	if trimmed := strings.TrimSpace(code); trimmed != "" {
		return strings.ToUpper(trimmed)
	}
	return "Unknown"
}

// NormalizeList maps each entry to its two-letter code, dropping blanks and
// duplicates while keeping order. Unknown entries are kept lower-cased.
func NormalizeList(codes []string) []string {
	var out []string
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		normalized := ToISO2(code)
		if normalized == "" {
			normalized = strings.ToLower(strings.TrimSpace(code))
		}
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, normalized)
	}
	return out
}

// FromName maps a provider label ("English", "EN", "BRAZILLIAN_PORTUGUESE")
// to a table code. Unknown labels yield "".
func FromName(name string) string {
	if lang, ok := Lookup(name); ok {
		return lang.Code
	}
	return ""
}

// Option is a selectable language exposed to API and CLI clients.
type Option struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// Options lists every table entry in table order.
func Options() []Option {
	out := make([]Option, 0, len(table))
	for _, lang := range table {
		out = append(out, Option{Code: lang.Code, Name: lang.Name})
	}
	return out
}
