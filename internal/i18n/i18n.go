// Package i18n loads the embedded locale catalogues used for UI strings,
// localized report field names, and chart labels.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"time"
)

//go:embed locales/*.json
var localeFS embed.FS

// Locale holds the translations for one language.
type Locale struct {
	Code        string            `json:"-"`
	UI          map[string]string `json:"ui"`
	MonthsShort []string          `json:"months_short"`
}

// UIString returns the UI translation for key, or fallback when the
// catalogue lacks it.
func (l Locale) UIString(key, fallback string) string {
	if v, ok := l.UI[key]; ok && v != "" {
		return v
	}
	return fallback
}

// MonthShort returns the localized short month name. Months outside 1..12
// or missing catalogue entries fall back to the English abbreviation.
func (l Locale) MonthShort(m time.Month) string {
	idx := int(m) - 1
	if idx >= 0 && idx < len(l.MonthsShort) && l.MonthsShort[idx] != "" {
		return l.MonthsShort[idx]
	}
	return m.String()[:3]
}

// Bundle is the set of all embedded locales plus the default fallback.
type Bundle struct {
	locales     map[string]Locale
	defaultLang string
}

// Load parses every embedded locale file. The default language must be one
// of them.
func Load(defaultLang string) (*Bundle, error) {
	entries, err := fs.Glob(localeFS, "locales/*.json")
	if err != nil {
		return nil, fmt.Errorf("listing locales: %w", err)
	}

	locales := make(map[string]Locale, len(entries))
	for _, path := range entries {
		data, err := localeFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading locale %s: %w", path, err)
		}

		var loc Locale
		if err := json.Unmarshal(data, &loc); err != nil {
			return nil, fmt.Errorf("parsing locale %s: %w", path, err)
		}

		code := strings.TrimSuffix(strings.TrimPrefix(path, "locales/"), ".json")
		loc.Code = code
		locales[code] = loc
	}

	if _, ok := locales[defaultLang]; !ok {
		return nil, fmt.Errorf("default language %q has no locale file", defaultLang)
	}

	return &Bundle{locales: locales, defaultLang: defaultLang}, nil
}

// Has reports whether a locale file exists for lang.
func (b *Bundle) Has(lang string) bool {
	_, ok := b.locales[lang]
	return ok
}

// Lookup returns the locale for lang, falling back to the default language
// when the requested one is unavailable.
func (b *Bundle) Lookup(lang string) Locale {
	if loc, ok := b.locales[lang]; ok {
		return loc
	}
	return b.locales[b.defaultLang]
}

// Languages returns the codes of all loaded locales.
func (b *Bundle) Languages() []string {
	codes := make([]string, 0, len(b.locales))
	for code := range b.locales {
		codes = append(codes, code)
	}
	return codes
}
