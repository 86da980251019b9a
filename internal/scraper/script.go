package scraper

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// ErrMalformed is returned for documents that are not ScriptableScraper scripts.
var ErrMalformed = errors.New("malformed scraper script")

// Details is the header block of a ScriptableScraper document.
type Details struct {
	ScriptID    int       `json:"scriptId"`
	Name        string    `json:"name"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	Types       []string  `json:"types"`
	Version     Version   `json:"version"`
	Published   time.Time `json:"published"`
}

// ParseScript reads the details block of a scraper script.
func ParseScript(contents string) (*Details, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(contents); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	details := doc.FindElement("/ScriptableScraper/details")
	if details == nil {
		return nil, fmt.Errorf("%w: missing details", ErrMalformed)
	}

	d := &Details{
		Name:        childText(details, "name"),
		Author:      childText(details, "author"),
		Description: childText(details, "description"),
		Language:    childText(details, "language"),
	}
	if d.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrMalformed)
	}

	id, err := strconv.Atoi(childText(details, "id"))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id", ErrMalformed)
	}
	d.ScriptID = id

	if t := childText(details, "type"); t != "" {
		d.Types = strings.Split(t, "|")
	}

	v := details.SelectElement("version")
	if v == nil {
		return nil, fmt.Errorf("%w: missing version", ErrMalformed)
	}
	d.Version, err = ParseVersion(v.SelectAttrValue("major", "") + "." + v.SelectAttrValue("minor", "") + "." + v.SelectAttrValue("point", ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	p := details.SelectElement("published")
	if p == nil {
		return nil, fmt.Errorf("%w: missing published date", ErrMalformed)
	}
	year, errY := strconv.Atoi(p.SelectAttrValue("year", ""))
	month, errM := strconv.Atoi(p.SelectAttrValue("month", ""))
	day, errD := strconv.Atoi(p.SelectAttrValue("day", ""))
	if errY != nil || errM != nil || errD != nil || month < 1 || month > 12 || day < 1 || day > 31 {
		return nil, fmt.Errorf("%w: invalid published date", ErrMalformed)
	}
	d.Published = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

	return d, nil
}

func childText(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}
