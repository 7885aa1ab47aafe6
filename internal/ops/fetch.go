package ops

import (
	"github.com/cusc/copywriter/internal/campaign"
	"github.com/cusc/copywriter/internal/errors"
	"github.com/cusc/copywriter/internal/snapshot"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID    string
	Type  string
	Title string
}

// FetchOutput contains a snapshot and its decoded form.
// Exactly one of Course / Event is set.
type FetchOutput struct {
	snapshot.Item
	Course *campaign.CompleteCourseData `json:"course,omitempty"`
	Event  *campaign.CompleteEventData  `json:"event,omitempty"`
	Legacy bool                         `json:"legacy"`
}

// Fetch retrieves a snapshot by id or by type and title.
func Fetch(store *snapshot.Store, input FetchInput) (*FetchOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Type, input.Title)
	if err != nil {
		return nil, err
	}
	item, err := resolve(store, addr)
	if err != nil {
		return nil, err
	}
	return decodeItem(item)
}

func decodeItem(item snapshot.Item) (*FetchOutput, error) {
	out := &FetchOutput{Item: item}
	switch item.Type {
	case campaign.KindCourse:
		data, legacy, err := campaign.DecodeCourseData(item.Data)
		if err != nil {
			return nil, errors.NewInvalidRequest("snapshot payload is not a course form: " + err.Error())
		}
		out.Course, out.Legacy = &data, legacy
	case campaign.KindEvent:
		data, legacy, err := campaign.DecodeEventData(item.Data)
		if err != nil {
			return nil, errors.NewInvalidRequest("snapshot payload is not an event form: " + err.Error())
		}
		out.Event, out.Legacy = &data, legacy
	}
	return out, nil
}
