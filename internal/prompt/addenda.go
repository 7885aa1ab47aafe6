package prompt

import (
	"slices"

	"github.com/cusc/copywriter/internal/campaign"
)

// Channel-specific requirements appended after the hashtag block. A channel
// id with no entry gets no block at all.
var courseAddenda = map[string][]string{
	"main-fanpage": {
		"Include CUSC contact hotline in the post",
		"Maintain professional and authoritative tone",
		"Provide comprehensive course information",
	},
	"community-group": {
		"Encourage questions and comments",
		"Use conversational and friendly language",
		"Create content that sparks community discussion",
	},
	"zalo-oa": {
		"Create a compelling headline",
		"Include strong, immediate call-to-action",
		"Keep format mobile-friendly and scannable",
	},
	"email-marketing": {
		"Start with personalized greeting",
		"Use email-appropriate format with subject line suggestion",
		"Include clear next steps for recipients",
	},
}

var eventAddenda = map[string][]string{
	"main-fanpage": {
		"Include CUSC contact hotline in the post",
		"Maintain professional and authoritative tone",
		"Provide comprehensive event information",
	},
	"community-group": {
		"Encourage questions and comments about the event",
		"Use conversational and friendly language",
		"Create content that sparks community discussion",
	},
	"zalo-oa":         courseAddenda["zalo-oa"],
	"email-marketing": courseAddenda["email-marketing"],
}

// Addenda returns the extra requirements a channel adds for the given kind,
// or nil when the channel has none.
func Addenda(kind campaign.Kind, channelID string) []string {
	table := courseAddenda
	if kind == campaign.KindEvent {
		table = eventAddenda
	}
	return slices.Clone(table[channelID])
}
