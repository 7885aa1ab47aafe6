// Package ops holds the use-cases shared by the CLI, the web UI and the MCP
// server. Each operation takes an input struct and returns an output struct
// with JSON tags, or an *errors.AppError.
package ops

import (
	"encoding/json"
	"strings"

	"github.com/cusc/copywriter/internal/campaign"
	"github.com/cusc/copywriter/internal/catalog"
	"github.com/cusc/copywriter/internal/errors"
	"github.com/cusc/copywriter/internal/snapshot"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Address identifies a snapshot either by id or by (type, title).
type Address struct {
	ByID  bool
	ID    string
	Type  campaign.Kind
	Title string
}

// ValidateAddress validates addressing parameters and returns a normalized Address.
// Rules:
// - Must specify exactly one addressing mode: id OR (type + title)
// - id together with title → INVALID_REQUEST
// - title without a valid type → INVALID_REQUEST
func ValidateAddress(id, kind, title string) (*Address, error) {
	id = strings.TrimSpace(id)
	title = strings.TrimSpace(title)

	if id != "" && title != "" {
		return nil, errors.NewInvalidRequest("specify either id or title, not both")
	}
	if id == "" && title == "" {
		return nil, errors.NewInvalidRequest("must specify either id or title")
	}
	if id != "" {
		return &Address{ByID: true, ID: id}, nil
	}

	k, err := campaign.ParseKind(kind)
	if err != nil {
		return nil, errors.NewInvalidRequest("addressing by title requires " + err.Error())
	}
	return &Address{Type: k, Title: title}, nil
}

// resolve looks up the snapshot an address points at.
func resolve(store *snapshot.Store, addr *Address) (snapshot.Item, error) {
	if addr.ByID {
		item, ok := store.Get(addr.ID)
		if !ok {
			return snapshot.Item{}, errors.NewNotFound("snapshot", addr.ID)
		}
		return item, nil
	}
	item, ok := store.Find(addr.Title, addr.Type)
	if !ok {
		return snapshot.Item{}, errors.NewNotFound("snapshot", string(addr.Type)+"/"+addr.Title)
	}
	return item, nil
}

// Summary is a snapshot without its payload.
type Summary struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Type      campaign.Kind `json:"type"`
	CreatedAt string        `json:"createdAt"`
}

func summarize(item snapshot.Item) Summary {
	return Summary{ID: item.ID, Title: item.Title, Type: item.Type, CreatedAt: item.CreatedAt}
}

// resolveChannel maps an id to a catalog entry. An empty id resolves to nil so
// validation can report it as missing.
func resolveChannel(id string) (*catalog.ChannelStyle, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	ch, ok := catalog.FindChannel(id)
	if !ok {
		return nil, errors.NewInvalidRequest("unknown channel: " + id)
	}
	return &ch, nil
}

func resolveCourseTemplate(id string) (*catalog.TemplateStyle, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	t, ok := catalog.FindCourseTemplate(id)
	if !ok {
		return nil, errors.NewInvalidRequest("unknown course template: " + id)
	}
	return &t, nil
}

func resolveEventTemplate(id string) (*catalog.EventTemplate, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	t, ok := catalog.FindEventTemplate(id)
	if !ok {
		return nil, errors.NewInvalidRequest("unknown event template: " + id)
	}
	return &t, nil
}

func marshalPayload(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return data, nil
}

func normalizeOptions(opts campaign.ExtraOptions) (campaign.ExtraOptions, error) {
	length, err := campaign.ParseContentLength(string(opts.ContentLength))
	if err != nil {
		return opts, errors.NewInvalidRequest(err.Error())
	}
	opts.ContentLength = length
	return opts, nil
}

func normalizeCourse(info campaign.CourseInfo) (campaign.CourseInfo, error) {
	mode, err := campaign.ParseLearningMode(string(info.LearningMode))
	if err != nil {
		return info, errors.NewInvalidRequest(err.Error())
	}
	info.LearningMode = mode
	return info, nil
}
