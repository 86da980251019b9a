// Package translation provides the user-facing labels, overridable per
// language by XML files of the form <strings><string Field="Key">text</string></strings>.
package translation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

// FallbackLanguage is loaded when the requested language has no file.
const FallbackLanguage = "en"

// PropertyPrefix and PropertySuffix wrap a key to form its property name.
const (
	PropertyPrefix = "#IMDb.Translation."
	PropertySuffix = ".Label"
)

var placeholderExpr = regexp.MustCompile(`\$\{([^\}]+)\}`)

// Publisher receives translated labels.
type Publisher interface {
	Set(name, value string)
}

// Catalog maps keys to text in the active language.
type Catalog struct {
	mu       sync.RWMutex
	language string
	strings  map[Key]string
	logger   zerolog.Logger
}

// New creates a catalog holding the English defaults.
func New(logger *zerolog.Logger) *Catalog {
	return &Catalog{
		language: FallbackLanguage,
		strings:  copyDefaults(),
		logger:   logger.With().Str("component", "translation").Logger(),
	}
}

func copyDefaults() map[Key]string {
	out := make(map[Key]string, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	return out
}

// Keys returns every known key in sorted order.
func Keys() []Key {
	keys := make([]Key, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Candidates lists the file names tried for lang: the canonical tag, its base
// language, then the fallback.
func Candidates(lang string) []string {
	var out []string
	add := func(name string) {
		for _, existing := range out {
			if existing == name {
				return
			}
		}
		out = append(out, name)
	}

	if tag, err := language.Parse(strings.TrimSpace(lang)); err == nil {
		add(tag.String())
		if base, conf := tag.Base(); conf != language.No {
			add(base.String())
		}
	}
	add(FallbackLanguage)
	return out
}

// Load replaces the catalog with the defaults overridden by the first
// readable language file in dir. It returns the language that was loaded, or
// an empty string when only the defaults are in use.
func (c *Catalog) Load(dir, lang string) string {
	c.logger.Info().Str("language", lang).Msg("Using language")

	for _, candidate := range Candidates(lang) {
		path := filepath.Join(dir, candidate+".xml")
		translated, err := readFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				c.logger.Warn().Str("path", path).Msg("Cannot find translation file")
			} else {
				c.logger.Error().Err(err).Str("path", path).Msg("Error in translation file")
			}
			continue
		}

		table := copyDefaults()
		for key := range table {
			text, ok := translated[string(key)]
			if !ok {
				c.logger.Debug().Str("key", string(key)).Msg("Translation not found, using English default")
				continue
			}
			table[key] = text
		}

		c.mu.Lock()
		c.language = candidate
		c.strings = table
		c.mu.Unlock()

		c.logger.Info().Str("language", candidate).Int("strings", len(translated)).Msg("Loaded translations")
		return candidate
	}

	c.mu.Lock()
	c.language = ""
	c.strings = copyDefaults()
	c.mu.Unlock()
	return ""
}

func readFile(path string) (map[string]string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%s: no root element", path)
	}

	out := make(map[string]string)
	for _, el := range root.ChildElements() {
		field := el.SelectAttrValue("Field", "")
		if field == "" {
			continue
		}
		out[field] = el.Text()
	}
	return out, nil
}

// Language returns the loaded language, or an empty string for the defaults.
func (c *Catalog) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.language
}

// Get returns the text of key, or the key itself when it is unknown.
func (c *Catalog) Get(key Key) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if text, ok := c.strings[key]; ok {
		return text
	}
	return string(key)
}

// Format returns the text of key with {0}, {1}, ... replaced by args.
func (c *Catalog) Format(key Key, args ...interface{}) string {
	return format(c.Get(key), args)
}

// Default formats the English text of key.
func Default(key Key, args ...interface{}) string {
	text, ok := defaults[key]
	if !ok {
		text = string(key)
	}
	return format(text, args)
}

func format(text string, args []interface{}) string {
	if len(args) == 0 {
		return text
	}
	pairs := make([]string, 0, len(args)*2)
	for i, arg := range args {
		pairs = append(pairs, "{"+strconv.Itoa(i)+"}", fmt.Sprint(arg))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Parse replaces every ${Key} in input with its translation.
func (c *Catalog) Parse(input string) string {
	return placeholderExpr.ReplaceAllStringFunc(input, func(match string) string {
		name := placeholderExpr.FindStringSubmatch(match)[1]
		return c.Get(Key(name))
	})
}

// All returns a copy of the active table keyed by name.
func (c *Catalog) All() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.strings))
	for k, v := range c.strings {
		out[string(k)] = v
	}
	return out
}

// Publish sets a #IMDb.Translation.<Key>.Label property for every key.
func (c *Catalog) Publish(p Publisher) {
	for name, text := range c.All() {
		p.Set(PropertyPrefix+name+PropertySuffix, text)
	}
}
