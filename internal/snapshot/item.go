package snapshot

import (
	"encoding/json"
	"strings"

	"github.com/cusc/copywriter/internal/campaign"
)

// Storage keys and schema marker written next to the item array.
const (
	DataKey    = "marketing-generator-items"
	VersionKey = "marketing-generator-version"
	Version    = "1.0"
)

// TimeLayout is the createdAt format: ISO-8601, millisecond precision, UTC.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Item is a saved snapshot of a course or event form.
// Data is opaque to the store; see campaign.DecodeCourseData / DecodeEventData.
type Item struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	CreatedAt string          `json:"createdAt"`
	Type      campaign.Kind   `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Valid reports whether the item can be kept after load or import.
func (it Item) Valid() bool {
	return it.ID != "" &&
		it.Title != "" &&
		it.CreatedAt != "" &&
		(it.Type == campaign.KindCourse || it.Type == campaign.KindEvent)
}

// Patch is a partial update. Nil / empty fields are left untouched.
type Patch struct {
	Title *string
	Data  json.RawMessage
}

func (it Item) clone() Item {
	if it.Data != nil {
		it.Data = append(json.RawMessage(nil), it.Data...)
	}
	return it
}

// dedupKey identifies an item for title+type de-duplication.
func dedupKey(title string, kind campaign.Kind) string {
	return string(kind) + "\x00" + strings.ToLower(strings.TrimSpace(title))
}

// decodeItems parses a persisted or imported array and drops invalid entries.
// Entries that don't decode as an item object are dropped too; a payload that
// isn't a JSON array is an error.
func decodeItems(raw []byte) (valid []Item, dropped int, err error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, 0, errNotArray
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, 0, err
	}

	valid = make([]Item, 0, len(elems))
	for _, elem := range elems {
		var it Item
		if err := json.Unmarshal(elem, &it); err != nil || !it.Valid() {
			dropped++
			continue
		}
		valid = append(valid, it)
	}
	return valid, dropped, nil
}

// encodeItems always yields a JSON array, never null.
func encodeItems(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(items)
}
