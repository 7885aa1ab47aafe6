// Package catalog holds the static channel and template tables the prompt
// form offers. The tables are embedded YAML decoded once at startup and never
// mutated afterwards; every accessor hands out copies.
package catalog

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// ChannelStyle is a publishing surface with a fixed tone profile.
type ChannelStyle struct {
	ID              string   `yaml:"id" json:"id"`
	Name            string   `yaml:"name" json:"name"`
	Description     string   `yaml:"description" json:"description"`
	Characteristics []string `yaml:"characteristics" json:"characteristics"`
}

// TemplateStyle is a narrative pattern applied to course content.
type TemplateStyle struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Structure   string `yaml:"structure" json:"structure"`
}

// EventTemplate is a narrative pattern applied to event content.
// It has the same shape as TemplateStyle but lives in its own table.
type EventTemplate = TemplateStyle

// Catalog is one complete set of channels and templates.
type Catalog struct {
	Channels        []ChannelStyle  `yaml:"channels"`
	CourseTemplates []TemplateStyle `yaml:"course_templates"`
	EventTemplates  []EventTemplate `yaml:"event_templates"`
}

var builtin = mustParse(catalogYAML)

func mustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded catalog is invalid: %v", err))
	}
	return c
}

// Parse decodes a YAML catalog and checks that every entry carries all of its
// required fields and that ids are unique within each table.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	seen := make(map[string]bool, len(c.Channels))
	for i, ch := range c.Channels {
		if strings.TrimSpace(ch.ID) == "" || ch.Name == "" || ch.Description == "" {
			return fmt.Errorf("channels[%d]: id, name and description are required", i)
		}
		if len(ch.Characteristics) == 0 {
			return fmt.Errorf("channels[%d] %q: at least one characteristic is required", i, ch.ID)
		}
		if seen[ch.ID] {
			return fmt.Errorf("channels[%d]: duplicate id %q", i, ch.ID)
		}
		seen[ch.ID] = true
	}
	if err := validateTemplates("course_templates", c.CourseTemplates); err != nil {
		return err
	}
	return validateTemplates("event_templates", c.EventTemplates)
}

func validateTemplates(table string, templates []TemplateStyle) error {
	seen := make(map[string]bool, len(templates))
	for i, t := range templates {
		if strings.TrimSpace(t.ID) == "" || t.Name == "" || t.Description == "" || t.Structure == "" {
			return fmt.Errorf("%s[%d]: id, name, description and structure are required", table, i)
		}
		if seen[t.ID] {
			return fmt.Errorf("%s[%d]: duplicate id %q", table, i, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// Default returns the embedded catalog.
func Default() *Catalog {
	return builtin
}

// AllChannels returns a copy of the channel table in catalog order.
func (c *Catalog) AllChannels() []ChannelStyle {
	out := make([]ChannelStyle, len(c.Channels))
	for i, ch := range c.Channels {
		out[i] = ch.clone()
	}
	return out
}

// AllCourseTemplates returns a copy of the course template table.
func (c *Catalog) AllCourseTemplates() []TemplateStyle {
	return slices.Clone(c.CourseTemplates)
}

// AllEventTemplates returns a copy of the event template table.
func (c *Catalog) AllEventTemplates() []EventTemplate {
	return slices.Clone(c.EventTemplates)
}

// Channel looks up a channel by id.
func (c *Catalog) Channel(id string) (ChannelStyle, bool) {
	for _, ch := range c.Channels {
		if ch.ID == id {
			return ch.clone(), true
		}
	}
	return ChannelStyle{}, false
}

// CourseTemplate looks up a course template by id.
func (c *Catalog) CourseTemplate(id string) (TemplateStyle, bool) {
	return findTemplate(c.CourseTemplates, id)
}

// EventTemplate looks up an event template by id.
func (c *Catalog) EventTemplate(id string) (EventTemplate, bool) {
	return findTemplate(c.EventTemplates, id)
}

func findTemplate(templates []TemplateStyle, id string) (TemplateStyle, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return TemplateStyle{}, false
}

// SearchChannels filters channels by a free-text query, best match first.
// A blank query returns every channel in catalog order.
func (c *Catalog) SearchChannels(query string) []ChannelStyle {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.AllChannels()
	}

	searchStrings := make([]string, len(c.Channels))
	for i, ch := range c.Channels {
		searchStrings[i] = strings.ToLower(ch.Name + " " + ch.Description + " " + ch.ID)
	}

	matches := fuzzy.Find(strings.ToLower(query), searchStrings)
	results := make([]ChannelStyle, 0, len(matches))
	for _, m := range matches {
		results = append(results, c.Channels[m.Index].clone())
	}
	return results
}

func (ch ChannelStyle) clone() ChannelStyle {
	ch.Characteristics = slices.Clone(ch.Characteristics)
	return ch
}

// Channels returns the built-in channel table.
func Channels() []ChannelStyle { return builtin.AllChannels() }

// CourseTemplates returns the built-in course template table.
func CourseTemplates() []TemplateStyle { return builtin.AllCourseTemplates() }

// EventTemplates returns the built-in event template table.
func EventTemplates() []EventTemplate { return builtin.AllEventTemplates() }

// FindChannel looks up a built-in channel by id.
func FindChannel(id string) (ChannelStyle, bool) { return builtin.Channel(id) }

// FindCourseTemplate looks up a built-in course template by id.
func FindCourseTemplate(id string) (TemplateStyle, bool) { return builtin.CourseTemplate(id) }

// FindEventTemplate looks up a built-in event template by id.
func FindEventTemplate(id string) (EventTemplate, bool) { return builtin.EventTemplate(id) }
