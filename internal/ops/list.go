package ops

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/cusc/copywriter/internal/campaign"
	"github.com/cusc/copywriter/internal/errors"
	"github.com/cusc/copywriter/internal/snapshot"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Type   string // optional: course or event
	Query  string // optional fuzzy match on title
	Limit  int    // default: 20, max: 100
	Offset int    // default: 0
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []Summary  `json:"items"`
	Pagination Pagination `json:"pagination"`
	Sort       string     `json:"sort"`
}

// List retrieves snapshot summaries, newest first, with pagination.
// With a query, items are ranked by fuzzy match score instead.
func List(store *snapshot.Store, input ListInput) (*ListOutput, error) {
	var items []snapshot.Item
	if t := strings.TrimSpace(input.Type); t != "" {
		kind, err := campaign.ParseKind(t)
		if err != nil {
			return nil, errors.NewInvalidRequest(err.Error())
		}
		items = store.ListByType(kind)
	} else {
		items = store.Items()
	}

	sort := "created_desc"
	if q := strings.TrimSpace(input.Query); q != "" {
		items = matchTitles(items, q)
		sort = "match_score"
	}

	// Apply limit defaults and bounds
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := max(input.Offset, 0)

	total := len(items)
	start := min(offset, total)
	end := min(start+limit, total)

	summaries := make([]Summary, 0, end-start)
	for _, it := range items[start:end] {
		summaries = append(summaries, summarize(it))
	}

	return &ListOutput{
		Items: summaries,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: end < total,
			Total:   total,
		},
		Sort: sort,
	}, nil
}

type titleSource []snapshot.Item

func (s titleSource) String(i int) string { return strings.ToLower(s[i].Title) }
func (s titleSource) Len() int            { return len(s) }

func matchTitles(items []snapshot.Item, query string) []snapshot.Item {
	matches := fuzzy.FindFrom(strings.ToLower(query), titleSource(items))
	out := make([]snapshot.Item, 0, len(matches))
	for _, m := range matches {
		out = append(out, items[m.Index])
	}
	return out
}
