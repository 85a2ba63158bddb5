// Package holiday loads the non-working days on which leave cannot be requested.
package holiday

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/golang-sql/civil"
	"gopkg.in/yaml.v3"
)

// Calendar maps dates to holiday names. The zero value is an empty calendar.
type Calendar struct {
	days map[civil.Date]string
}

type fileFormat struct {
	Holidays []struct {
		Date string `yaml:"date"`
		Name string `yaml:"name"`
	} `yaml:"holidays"`
}

// Load reads a YAML calendar from path. An empty path yields an empty calendar.
func Load(path string) (*Calendar, error) {
	if path == "" {
		return &Calendar{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open holiday calendar: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a calendar of the form
//
//	holidays:
//	  - date: 2025-01-26
//	    name: Republic Day
func Parse(r io.Reader) (*Calendar, error) {
	var doc fileFormat
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode holiday calendar: %w", err)
	}

	c := &Calendar{days: make(map[civil.Date]string, len(doc.Holidays))}
	for i, h := range doc.Holidays {
		d, err := civil.ParseDate(h.Date)
		if err != nil {
			return nil, fmt.Errorf("holiday %d: invalid date %q: %w", i, h.Date, err)
		}
		if h.Name == "" {
			return nil, fmt.Errorf("holiday %d (%s): name is required", i, h.Date)
		}
		if prev, dup := c.days[d]; dup {
			return nil, fmt.Errorf("holiday %d: %s already listed as %q", i, d, prev)
		}
		c.days[d] = h.Name
	}
	return c, nil
}

// New builds a calendar from an in-memory table.
func New(days map[civil.Date]string) *Calendar {
	c := &Calendar{days: make(map[civil.Date]string, len(days))}
	for d, name := range days {
		c.days[d] = name
	}
	return c
}

// IsHoliday returns the holiday name for d, if any.
func (c *Calendar) IsHoliday(d civil.Date) (string, bool) {
	if c == nil {
		return "", false
	}
	name, ok := c.days[d]
	return name, ok
}

func (c *Calendar) Len() int {
	if c == nil {
		return 0
	}
	return len(c.days)
}
