package dashboard

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLang is used when a label is missing from the requested catalog.
const DefaultLang = "en"

//go:embed locales/*.yaml
var localeFS embed.FS

type catalog struct {
	Name   string            `yaml:"name"`
	Labels map[string]string `yaml:"labels"`
}

// Language is a selectable UI language.
type Language struct {
	Code string
	Name string
}

// Translator resolves UI labels with an English fallback.
type Translator struct {
	catalogs map[string]catalog
}

// LoadTranslator parses every embedded locale catalog.
func LoadTranslator() (*Translator, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	t := &Translator{catalogs: make(map[string]catalog, len(entries))}
	for _, e := range entries {
		raw, err := localeFS.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", e.Name(), err)
		}
		var c catalog
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", e.Name(), err)
		}
		t.catalogs[strings.TrimSuffix(e.Name(), path.Ext(e.Name()))] = c
	}
	if _, ok := t.catalogs[DefaultLang]; !ok {
		return nil, fmt.Errorf("missing %s locale", DefaultLang)
	}
	return t, nil
}

// Supports reports whether lang has a catalog.
func (t *Translator) Supports(lang string) bool {
	_, ok := t.catalogs[lang]
	return ok
}

// T returns the label for key in lang, falling back to English and then
// to the key itself.
func (t *Translator) T(lang, key string) string {
	if c, ok := t.catalogs[lang]; ok {
		if v, ok := c.Labels[key]; ok {
			return v
		}
	}
	if v, ok := t.catalogs[DefaultLang].Labels[key]; ok {
		return v
	}
	return key
}

// Languages lists the available languages, English first.
func (t *Translator) Languages() []Language {
	out := make([]Language, 0, len(t.catalogs))
	for code, c := range t.catalogs {
		out = append(out, Language{Code: code, Name: c.Name})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code == DefaultLang {
			return true
		}
		if out[j].Code == DefaultLang {
			return false
		}
		return out[i].Code < out[j].Code
	})
	return out
}
