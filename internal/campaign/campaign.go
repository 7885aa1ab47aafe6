// Package campaign defines the data a marketer fills in for one course or
// event, the options that shape the generated prompt, and the bundles that are
// handed to the composer or saved as snapshots.
package campaign

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cusc/copywriter/internal/catalog"
)

// Kind is the content domain of a form or snapshot.
type Kind string

const (
	KindCourse Kind = "course"
	KindEvent  Kind = "event"
)

// ParseKind validates a kind string.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindCourse, KindEvent:
		return k, nil
	}
	return "", fmt.Errorf("type must be one of: course, event")
}

// ContentLength selects the word budget of the generated copy.
type ContentLength string

const (
	LengthShort    ContentLength = "short"
	LengthMedium   ContentLength = "medium"
	LengthDetailed ContentLength = "detailed"
)

// ParseContentLength validates a content length string. Empty means medium.
func ParseContentLength(s string) (ContentLength, error) {
	switch l := ContentLength(strings.ToLower(strings.TrimSpace(s))); l {
	case "":
		return LengthMedium, nil
	case LengthShort, LengthMedium, LengthDetailed:
		return l, nil
	}
	return "", fmt.Errorf("content length must be one of: short, medium, detailed")
}

// LearningMode is how a course is delivered.
type LearningMode string

const (
	ModeOnline  LearningMode = "online"
	ModeOffline LearningMode = "offline"
	ModeHybrid  LearningMode = "hybrid"
)

// ParseLearningMode validates a learning mode string. Empty means online.
func ParseLearningMode(s string) (LearningMode, error) {
	switch m := LearningMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeOnline, nil
	case ModeOnline, ModeOffline, ModeHybrid:
		return m, nil
	}
	return "", fmt.Errorf("learning mode must be one of: online, offline, hybrid")
}

// ExtraOptions are the auxiliary switches shown under the form.
type ExtraOptions struct {
	ContentLength ContentLength `json:"contentLength"`
	WithEmojis    bool          `json:"withEmojis"`
	UrgencyToggle bool          `json:"urgencyToggle"`
}

// DefaultOptions returns {medium, emojis on, urgency off}.
func DefaultOptions() ExtraOptions {
	return ExtraOptions{
		ContentLength: LengthMedium,
		WithEmojis:    true,
		UrgencyToggle: false,
	}
}

// CourseInfo is the course form.
type CourseInfo struct {
	CourseName       string       `json:"courseName"`
	StartDate        string       `json:"startDate"`
	Duration         string       `json:"duration"`
	LearningMode     LearningMode `json:"learningMode"`
	KeyHighlights    []string     `json:"keyHighlights"`
	RegistrationLink string       `json:"registrationLink"`
	RelatedHashtags  []string     `json:"relatedHashtags"`
}

// Filtered returns a copy with blank highlights and hashtags removed.
func (c CourseInfo) Filtered() CourseInfo {
	c.KeyHighlights = FilterBlank(c.KeyHighlights)
	c.RelatedHashtags = FilterBlank(c.RelatedHashtags)
	return c
}

// EventInfo is the event form.
type EventInfo struct {
	Name             string   `json:"name"`
	Time             string   `json:"time"`
	Location         string   `json:"location"`
	Highlights       []string `json:"highlights"`
	Audience         string   `json:"audience"`
	Offers           []string `json:"offers"`
	RegistrationLink string   `json:"registrationLink"`
}

// Filtered returns a copy with blank highlights and offers removed.
func (e EventInfo) Filtered() EventInfo {
	e.Highlights = FilterBlank(e.Highlights)
	e.Offers = FilterBlank(e.Offers)
	return e
}

// PromptConfig is the composer input for a course.
type PromptConfig struct {
	CourseInfo    CourseInfo            `json:"courseInfo"`
	ChannelStyle  catalog.ChannelStyle  `json:"channelStyle"`
	TemplateStyle catalog.TemplateStyle `json:"templateStyle"`
	ExtraOptions  ExtraOptions          `json:"extraOptions"`
}

// NewPromptConfig builds a course configuration from form state, filtering
// blank list entries on the way in.
func NewPromptConfig(info CourseInfo, channel catalog.ChannelStyle, template catalog.TemplateStyle, opts ExtraOptions) PromptConfig {
	return PromptConfig{
		CourseInfo:    info.Filtered(),
		ChannelStyle:  channel,
		TemplateStyle: template,
		ExtraOptions:  opts,
	}
}

// EventPromptConfig is the composer input for an event.
type EventPromptConfig struct {
	EventInfo     EventInfo             `json:"eventInfo"`
	ChannelStyle  catalog.ChannelStyle  `json:"channelStyle"`
	TemplateStyle catalog.EventTemplate `json:"templateStyle"`
	ExtraOptions  ExtraOptions          `json:"extraOptions"`
}

// NewEventPromptConfig builds an event configuration from form state.
func NewEventPromptConfig(info EventInfo, channel catalog.ChannelStyle, template catalog.EventTemplate, opts ExtraOptions) EventPromptConfig {
	return EventPromptConfig{
		EventInfo:     info.Filtered(),
		ChannelStyle:  channel,
		TemplateStyle: template,
		ExtraOptions:  opts,
	}
}

// FilterBlank drops empty and whitespace-only entries, keeping order.
// The result never shares a backing array with the input.
func FilterBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// NewCourseInfo returns an empty course form with one blank row in each list,
// the way the form opens.
func NewCourseInfo() CourseInfo {
	return CourseInfo{
		LearningMode:    ModeOnline,
		KeyHighlights:   []string{""},
		RelatedHashtags: []string{""},
	}
}

// NewEventInfo returns an empty event form.
func NewEventInfo() EventInfo {
	return EventInfo{
		Highlights: []string{""},
		Offers:     []string{""},
	}
}

// clone copies the list fields so edits to the result never reach the source.
func (c CourseInfo) clone() CourseInfo {
	c.KeyHighlights = slices.Clone(c.KeyHighlights)
	c.RelatedHashtags = slices.Clone(c.RelatedHashtags)
	return c
}

func (e EventInfo) clone() EventInfo {
	e.Highlights = slices.Clone(e.Highlights)
	e.Offers = slices.Clone(e.Offers)
	return e
}
