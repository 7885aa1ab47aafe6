package ops

import (
	"encoding/json"
	"strings"

	"github.com/cusc/copywriter/internal/campaign"
	"github.com/cusc/copywriter/internal/errors"
	"github.com/cusc/copywriter/internal/snapshot"
)

// SaveCourseInput contains the course form to save. Channel and template may
// be empty; the form is saved as-is, without validation.
type SaveCourseInput struct {
	CourseInfo campaign.CourseInfo
	ChannelID  string
	TemplateID string
	Options    campaign.ExtraOptions
}

// SaveEventInput contains the event form to save.
type SaveEventInput struct {
	EventInfo  campaign.EventInfo
	ChannelID  string
	TemplateID string
	Options    campaign.ExtraOptions
}

// SaveInput saves an arbitrary payload.
type SaveInput struct {
	Title string
	Type  string
	Data  json.RawMessage
}

// SaveOutput contains the stored snapshot.
type SaveOutput struct {
	snapshot.Item
	Replaced bool `json:"replaced"`
}

// SaveCourse stores the course form, titled after the trimmed course name.
func SaveCourse(store *snapshot.Store, input SaveCourseInput) (*SaveOutput, error) {
	title := strings.TrimSpace(input.CourseInfo.CourseName)
	if title == "" {
		return nil, errors.NewInvalidRequest("course name is required to save")
	}
	channel, err := resolveChannel(input.ChannelID)
	if err != nil {
		return nil, err
	}
	template, err := resolveCourseTemplate(input.TemplateID)
	if err != nil {
		return nil, err
	}
	opts, err := normalizeOptions(input.Options)
	if err != nil {
		return nil, err
	}

	data, err := marshalPayload(campaign.NewCompleteCourseData(input.CourseInfo, channel, template, opts))
	if err != nil {
		return nil, err
	}
	return add(store, title, campaign.KindCourse, data)
}

// SaveEvent stores the event form, titled after the trimmed event name.
func SaveEvent(store *snapshot.Store, input SaveEventInput) (*SaveOutput, error) {
	title := strings.TrimSpace(input.EventInfo.Name)
	if title == "" {
		return nil, errors.NewInvalidRequest("event name is required to save")
	}
	channel, err := resolveChannel(input.ChannelID)
	if err != nil {
		return nil, err
	}
	template, err := resolveEventTemplate(input.TemplateID)
	if err != nil {
		return nil, err
	}
	opts, err := normalizeOptions(input.Options)
	if err != nil {
		return nil, err
	}

	data, err := marshalPayload(campaign.NewCompleteEventData(input.EventInfo, channel, template, opts))
	if err != nil {
		return nil, err
	}
	return add(store, title, campaign.KindEvent, data)
}

// Save stores a raw payload under title and type.
func Save(store *snapshot.Store, input SaveInput) (*SaveOutput, error) {
	kind, err := campaign.ParseKind(input.Type)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	if len(input.Data) > 0 && !json.Valid(input.Data) {
		return nil, errors.NewInvalidRequest("data must be valid JSON")
	}
	return add(store, strings.TrimSpace(input.Title), kind, input.Data)
}

func add(store *snapshot.Store, title string, kind campaign.Kind, data json.RawMessage) (*SaveOutput, error) {
	item, replaced, err := store.Upsert(title, kind, data)
	if err != nil {
		return nil, err
	}
	return &SaveOutput{Item: item, Replaced: replaced}, nil
}
