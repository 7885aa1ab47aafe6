package campaign

import (
	"encoding/json"

	"github.com/cusc/copywriter/internal/catalog"
)

// CompleteCourseData is the payload saved for a course snapshot: the whole
// form, including the picked channel, template and options.
type CompleteCourseData struct {
	CourseInfo       CourseInfo             `json:"courseInfo"`
	SelectedChannel  *catalog.ChannelStyle  `json:"selectedChannel"`
	SelectedTemplate *catalog.TemplateStyle `json:"selectedTemplate"`
	ExtraOptions     ExtraOptions           `json:"extraOptions"`
}

// CompleteEventData is the payload saved for an event snapshot.
type CompleteEventData struct {
	EventInfo        EventInfo              `json:"eventInfo"`
	SelectedChannel  *catalog.ChannelStyle  `json:"selectedChannel"`
	SelectedTemplate *catalog.EventTemplate `json:"selectedTemplate"`
	ExtraOptions     ExtraOptions           `json:"extraOptions"`
}

// NewCompleteCourseData bundles the course form for saving. List fields are
// copied but not filtered: a snapshot keeps the form exactly as it was.
func NewCompleteCourseData(info CourseInfo, channel *catalog.ChannelStyle, template *catalog.TemplateStyle, opts ExtraOptions) CompleteCourseData {
	return CompleteCourseData{
		CourseInfo:       info.clone(),
		SelectedChannel:  channel,
		SelectedTemplate: template,
		ExtraOptions:     opts,
	}
}

// NewCompleteEventData bundles the event form for saving.
func NewCompleteEventData(info EventInfo, channel *catalog.ChannelStyle, template *catalog.EventTemplate, opts ExtraOptions) CompleteEventData {
	return CompleteEventData{
		EventInfo:        info.clone(),
		SelectedChannel:  channel,
		SelectedTemplate: template,
		ExtraOptions:     opts,
	}
}

// DecodeCourseData reads a course snapshot payload. Older snapshots stored
// only the bare CourseInfo; those come back with legacy=true, no channel or
// template, and default options.
func DecodeCourseData(raw json.RawMessage) (data CompleteCourseData, legacy bool, err error) {
	fields, err := payloadFields(raw)
	if err != nil {
		return CompleteCourseData{}, false, err
	}

	data.ExtraOptions = DefaultOptions()
	if _, ok := fields["courseInfo"]; !ok {
		if len(raw) == 0 {
			return data, true, nil
		}
		if err := json.Unmarshal(raw, &data.CourseInfo); err != nil {
			return CompleteCourseData{}, false, err
		}
		return data, true, nil
	}

	if err := json.Unmarshal(raw, &data); err != nil {
		return CompleteCourseData{}, false, err
	}
	if !hasValue(fields, "extraOptions") {
		data.ExtraOptions = DefaultOptions()
	}
	return data, false, nil
}

// DecodeEventData reads an event snapshot payload, accepting the legacy
// EventInfo-only layout as DecodeCourseData does.
func DecodeEventData(raw json.RawMessage) (data CompleteEventData, legacy bool, err error) {
	fields, err := payloadFields(raw)
	if err != nil {
		return CompleteEventData{}, false, err
	}

	data.ExtraOptions = DefaultOptions()
	if _, ok := fields["eventInfo"]; !ok {
		if len(raw) == 0 {
			return data, true, nil
		}
		if err := json.Unmarshal(raw, &data.EventInfo); err != nil {
			return CompleteEventData{}, false, err
		}
		return data, true, nil
	}

	if err := json.Unmarshal(raw, &data); err != nil {
		return CompleteEventData{}, false, err
	}
	if !hasValue(fields, "extraOptions") {
		data.ExtraOptions = DefaultOptions()
	}
	return data, false, nil
}

func payloadFields(raw json.RawMessage) (map[string]json.RawMessage, error) {
	if len(raw) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	return fields, nil
}

func hasValue(fields map[string]json.RawMessage, key string) bool {
	v, ok := fields[key]
	return ok && string(v) != "null"
}
