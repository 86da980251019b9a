// Package replacements loads the core and custom rename databases.
package replacements

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"
)

// SentinelID marks the template row shipped in every rename database.
const SentinelID = "tt0000000"

// Replacement maps an IMDb id to a normalized title and sort key.
type Replacement struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	SortBy string `json:"sortBy" yaml:"sort_by"`
}

func (r Replacement) String() string {
	return r.Title + " [" + r.ID + "]"
}

// Loader caches the parsed core and custom sets. The two sets are never
// merged in the cache; Lookup and Merged combine them on demand.
type Loader struct {
	coreFile   string
	customFile string
	logger     zerolog.Logger

	mu        sync.Mutex
	core      []Replacement
	custom    []Replacement
	version   string
	published time.Time
}

func NewLoader(coreFile, customFile string, logger *zerolog.Logger) *Loader {
	return &Loader{
		coreFile:   coreFile,
		customFile: customFile,
		logger:     logger.With().Str("component", "replacements").Logger(),
	}
}

// CoreFile returns the path of the distributable database.
func (l *Loader) CoreFile() string {
	return l.coreFile
}

// GetAll returns the cached set, loading it from disk on first use. It returns
// nil when the file is absent or cannot be parsed, which callers must not
// confuse with an empty database.
func (l *Loader) GetAll(custom bool) []Replacement {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !custom && l.core != nil {
		return l.core
	}
	if custom && l.custom != nil {
		return l.custom
	}

	file := l.coreFile
	if custom {
		file = l.customFile
	}

	if _, err := os.Stat(file); err != nil {
		return nil
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromFile(file); err != nil {
		l.logger.Error().Err(err).Str("file", file).Msg("Error reading replacements file")
		return nil
	}

	if !custom {
		l.readDetails(doc)
	}

	list := parseRenames(doc)
	if custom {
		l.custom = list
	} else {
		l.core = list
	}
	return list
}

// ClearCache drops one cached set so the next GetAll re-reads it from disk.
func (l *Loader) ClearCache(custom bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if custom {
		l.custom = nil
	} else {
		l.core = nil
	}
}

// Version returns the core database version as major.minor.point, empty until parsed.
func (l *Loader) Version() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version
}

// Published returns the core database publish date, zero until parsed.
func (l *Loader) Published() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.published
}

// Lookup finds the rule for imdbID, preferring the custom set.
func (l *Loader) Lookup(imdbID string) (Replacement, bool) {
	for _, custom := range []bool{true, false} {
		for _, r := range l.GetAll(custom) {
			if r.ID == imdbID {
				return r, true
			}
		}
	}
	return Replacement{}, false
}

// Merged returns both sets combined, custom entries overriding core entries
// with the same id. The result is a fresh slice.
func (l *Loader) Merged() []Replacement {
	custom := l.GetAll(true)
	core := l.GetAll(false)

	seen := make(map[string]struct{}, len(custom))
	out := make([]Replacement, 0, len(custom)+len(core))
	for _, r := range custom {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	for _, r := range core {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

// readDetails updates version and published from the header. Unparseable
// values are logged and leave the previous value in place.
func (l *Loader) readDetails(doc *etree.Document) {
	if el := doc.FindElement("/imdbplus/details/published"); el != nil {
		year, errY := strconv.Atoi(el.SelectAttrValue("year", ""))
		month, errM := strconv.Atoi(el.SelectAttrValue("month", ""))
		day, errD := strconv.Atoi(el.SelectAttrValue("day", ""))
		switch {
		case errY != nil || errM != nil || errD != nil:
			l.logger.Error().Msg("Error parsing published date from replacements database")
		case month < 1 || month > 12 || day < 1 || day > 31:
			l.logger.Error().Int("month", month).Int("day", day).Msg("Error parsing published date from replacements database")
		default:
			l.published = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
		}
	}

	if el := doc.FindElement("/imdbplus/details/version"); el != nil {
		major := el.SelectAttr("major")
		minor := el.SelectAttr("minor")
		point := el.SelectAttr("point")
		if major == nil || minor == nil || point == nil {
			l.logger.Error().Msg("Error parsing version from replacements database")
		} else {
			l.version = major.Value + "." + minor.Value + "." + point.Value
		}
	}
}

func parseRenames(doc *etree.Document) []Replacement {
	renames := doc.FindElements("/imdbplus/rename")

	list := make([]Replacement, 0, len(renames))
	for _, el := range renames {
		var r Replacement
		for _, attr := range el.Attr {
			switch attr.Key {
			case "id":
				r.ID = attr.Value
			case "title":
				r.Title = attr.Value
			case "sortby":
				r.SortBy = attr.Value
			}
		}
		if r.ID == SentinelID {
			continue
		}
		list = append(list, r)
	}
	return list
}
