package ops

import (
	"unicode/utf8"

	"github.com/cusc/copywriter/internal/campaign"
	"github.com/cusc/copywriter/internal/prompt"
	"github.com/cusc/copywriter/internal/snapshot"
)

// GenerateCourseInput contains parameters for the GenerateCourse operation.
type GenerateCourseInput struct {
	CourseInfo campaign.CourseInfo
	ChannelID  string
	TemplateID string
	Options    campaign.ExtraOptions
	Save       bool // also save the form as a snapshot titled after the course name
}

// GenerateEventInput contains parameters for the GenerateEvent operation.
type GenerateEventInput struct {
	EventInfo  campaign.EventInfo
	ChannelID  string
	TemplateID string
	Options    campaign.ExtraOptions
	Save       bool
}

// GenerateOutput contains the composed prompt.
type GenerateOutput struct {
	Prompt     string         `json:"prompt"`
	Type       campaign.Kind  `json:"type"`
	ChannelID  string         `json:"channel_id"`
	TemplateID string         `json:"template_id"`
	Chars      int            `json:"chars"`
	Saved      *snapshot.Item `json:"saved,omitempty"`
}

// GenerateCourse validates the course form and composes its prompt.
// store is only used when input.Save is set.
func GenerateCourse(store *snapshot.Store, input GenerateCourseInput) (*GenerateOutput, error) {
	info, err := normalizeCourse(input.CourseInfo)
	if err != nil {
		return nil, err
	}
	opts, err := normalizeOptions(input.Options)
	if err != nil {
		return nil, err
	}
	channel, err := resolveChannel(input.ChannelID)
	if err != nil {
		return nil, err
	}
	template, err := resolveCourseTemplate(input.TemplateID)
	if err != nil {
		return nil, err
	}

	if err := campaign.ValidateCourse(info, channel, template); err != nil {
		return nil, err
	}

	text := prompt.ComposeCourse(campaign.NewPromptConfig(info, *channel, *template, opts))
	out := &GenerateOutput{
		Prompt:     text,
		Type:       campaign.KindCourse,
		ChannelID:  channel.ID,
		TemplateID: template.ID,
		Chars:      utf8.RuneCountInString(text),
	}

	if input.Save && store != nil {
		saved, err := SaveCourse(store, SaveCourseInput{
			CourseInfo: info,
			ChannelID:  channel.ID,
			TemplateID: template.ID,
			Options:    opts,
		})
		if err != nil {
			return nil, err
		}
		out.Saved = &saved.Item
	}
	return out, nil
}

// GenerateEvent validates the event form and composes its prompt.
func GenerateEvent(store *snapshot.Store, input GenerateEventInput) (*GenerateOutput, error) {
	opts, err := normalizeOptions(input.Options)
	if err != nil {
		return nil, err
	}
	channel, err := resolveChannel(input.ChannelID)
	if err != nil {
		return nil, err
	}
	template, err := resolveEventTemplate(input.TemplateID)
	if err != nil {
		return nil, err
	}

	if err := campaign.ValidateEvent(input.EventInfo, channel, template); err != nil {
		return nil, err
	}

	text := prompt.ComposeEvent(campaign.NewEventPromptConfig(input.EventInfo, *channel, *template, opts))
	out := &GenerateOutput{
		Prompt:     text,
		Type:       campaign.KindEvent,
		ChannelID:  channel.ID,
		TemplateID: template.ID,
		Chars:      utf8.RuneCountInString(text),
	}

	if input.Save && store != nil {
		saved, err := SaveEvent(store, SaveEventInput{
			EventInfo:  input.EventInfo,
			ChannelID:  channel.ID,
			TemplateID: template.ID,
			Options:    opts,
		})
		if err != nil {
			return nil, err
		}
		out.Saved = &saved.Item
	}
	return out, nil
}
