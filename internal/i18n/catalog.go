// Package i18n keeps console text and formatted values in the operator's
// selected language.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Language is a catalog code such as "zh" or "en".
type Language string

const (
	Chinese Language = "zh"
	English Language = "en"

	DefaultLanguage = Chinese
)

// Catalog maps language to message key to display text.
type Catalog map[Language]map[string]string

//go:embed locales/*.yaml
var localeFS embed.FS

// LoadCatalog parses the embedded locale files. The file name (without
// extension) is the language code.
func LoadCatalog() (Catalog, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("reading locales: %w", err)
	}

	cat := make(Catalog, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".yaml" {
			continue
		}

		data, err := localeFS.ReadFile("locales/" + name)
		if err != nil {
			return nil, fmt.Errorf("reading locale %s: %w", name, err)
		}

		messages := map[string]string{}
		if err := yaml.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("parsing locale %s: %w", name, err)
		}
		cat[Language(strings.TrimSuffix(name, ".yaml"))] = messages
	}

	if _, ok := cat[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("locale %q missing from catalog", DefaultLanguage)
	}
	return cat, nil
}

// Languages returns the catalog's languages, default language first.
func (c Catalog) Languages() []Language {
	langs := make([]Language, 0, len(c))
	for lang := range c {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool {
		if langs[i] == DefaultLanguage || langs[j] == DefaultLanguage {
			return langs[i] == DefaultLanguage
		}
		return langs[i] < langs[j]
	})
	return langs
}

// MissingKeys returns, per language, the keys that some other language defines
// but this one does not.
func (c Catalog) MissingKeys() map[Language][]string {
	all := map[string]bool{}
	for _, messages := range c {
		for key := range messages {
			all[key] = true
		}
	}

	missing := map[Language][]string{}
	for lang, messages := range c {
		for key := range all {
			if _, ok := messages[key]; !ok {
				missing[lang] = append(missing[lang], key)
			}
		}
		sort.Strings(missing[lang])
	}
	for lang, keys := range missing {
		if len(keys) == 0 {
			delete(missing, lang)
		}
	}
	return missing
}
