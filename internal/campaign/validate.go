package campaign

import (
	"strings"

	"github.com/cusc/copywriter/internal/catalog"
	"github.com/cusc/copywriter/internal/errors"
)

// ValidateCourse runs the checks the course form makes before it asks for a
// prompt. The composer itself accepts anything, so surfaces call this first.
// Missing fields are reported in form order.
func ValidateCourse(info CourseInfo, channel *catalog.ChannelStyle, template *catalog.TemplateStyle) error {
	var missing []string
	if blank(info.CourseName) {
		missing = append(missing, "courseName")
	}
	if info.StartDate == "" {
		missing = append(missing, "startDate")
	}
	if blank(info.Duration) {
		missing = append(missing, "duration")
	}
	if blank(info.RegistrationLink) {
		missing = append(missing, "registrationLink")
	}
	if channel == nil {
		missing = append(missing, "channel")
	}
	if template == nil {
		missing = append(missing, "template")
	}
	if len(missing) > 0 {
		return errors.NewIncompleteInput(missing)
	}
	return nil
}

// ValidateEvent runs the event form checks. The registration link is optional
// for events.
func ValidateEvent(info EventInfo, channel *catalog.ChannelStyle, template *catalog.EventTemplate) error {
	var missing []string
	if blank(info.Name) {
		missing = append(missing, "name")
	}
	if info.Time == "" {
		missing = append(missing, "time")
	}
	if blank(info.Location) {
		missing = append(missing, "location")
	}
	if blank(info.Audience) {
		missing = append(missing, "audience")
	}
	if channel == nil {
		missing = append(missing, "channel")
	}
	if template == nil {
		missing = append(missing, "template")
	}
	if len(missing) > 0 {
		return errors.NewIncompleteInput(missing)
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
