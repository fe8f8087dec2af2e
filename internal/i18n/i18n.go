// Package i18n resolves UI strings from YAML catalogs embedded in the binary.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const FallbackLocale = "en"

//go:embed locales/*.yaml
var localeFS embed.FS

// Catalog is a flattened set of dotted keys for one locale, backed by the
// fallback locale for keys it does not define.
type Catalog struct {
	locale   string
	strings  map[string]string
	fallback map[string]string
}

// Load returns the catalog for locale. Unknown locales fall back to English
// without error; a broken embedded catalog is an error.
func Load(locale string) (*Catalog, error) {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if locale == "" {
		locale = FallbackLocale
	}

	fallback, err := readLocale(FallbackLocale)
	if err != nil {
		return nil, err
	}
	c := &Catalog{locale: FallbackLocale, strings: fallback, fallback: fallback}
	if locale == FallbackLocale {
		return c, nil
	}

	own, err := readLocale(locale)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	c.locale = locale
	c.strings = own
	return c, nil
}

// Locales lists the embedded locale codes.
func Locales() []string {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") {
			out = append(out, strings.TrimSuffix(name, ".yaml"))
		}
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) Locale() string {
	return c.locale
}

// T returns the string for a dotted key. Missing keys return the key itself.
func (c *Catalog) T(key string) string {
	if c == nil {
		return key
	}
	if v, ok := c.strings[key]; ok {
		return v
	}
	if v, ok := c.fallback[key]; ok {
		return v
	}
	return key
}

// Scope returns a translator that prefixes every key with ns + ".".
func (c *Catalog) Scope(ns string) Scoped {
	return Scoped{catalog: c, prefix: ns + "."}
}

type Scoped struct {
	catalog *Catalog
	prefix  string
}

func (s Scoped) T(key string) string {
	full := s.prefix + key
	v := s.catalog.T(full)
	if v == full {
		return key
	}
	return v
}

func readLocale(locale string) (map[string]string, error) {
	b, err := localeFS.ReadFile("locales/" + locale + ".yaml")
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(b, &tree); err != nil {
		return nil, fmt.Errorf("parse locale %s: %w", locale, err)
	}
	out := map[string]string{}
	flatten("", tree, out)
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch typed := v.(type) {
		case map[string]any:
			flatten(key, typed, out)
		case string:
			out[key] = typed
		case nil:
		default:
			out[key] = fmt.Sprint(typed)
		}
	}
}
