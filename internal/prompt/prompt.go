// Package prompt turns a campaign configuration into the instruction text a
// marketer pastes into a text generator.
//
// Composition is a pure function of its input: the same configuration always
// yields the same bytes, nothing is validated, and nothing is mutated. Course
// and event prompts share one composer driven by an entity description.
package prompt

import (
	"strings"

	"github.com/cusc/copywriter/internal/campaign"
	"github.com/cusc/copywriter/internal/catalog"
)

// The persona line keeps its trailing space; generated prompts are compared
// byte for byte with ones produced by the browser tool.
const preamble = `You are an expert marketing copywriter for CUSC (Trung tâm Công nghệ Phần mềm Đại học Cần Thơ). 

STRICT REQUIREMENTS:
- Always use the exact organization name: "Trung tâm Công nghệ Phần mềm Đại học Cần Thơ (CUSC)"
- Never abbreviate, misspell, or alter this name
- Always end with hashtags including #CUSC
- Ensure perfect spelling and grammar throughout
- Follow the specified tone and format exactly`

// OrganizationTag opens every hashtag list.
const OrganizationTag = "#CUSC"

var lengthInstructions = map[campaign.ContentLength]string{
	campaign.LengthShort:    "Keep the content concise (50-100 words)",
	campaign.LengthMedium:   "Create medium-length content (100-200 words)",
	campaign.LengthDetailed: "Develop detailed content (200-300 words)",
}

const (
	emojisOn  = "EMOJIS: Include relevant emojis to make the content more engaging"
	emojisOff = "EMOJIS: Do not use emojis in this content"
	urgency   = "URGENCY: Emphasize limited seats or registration deadline to create urgency"
)

// field is one "- Label: value" line of the details block.
type field struct {
	label string
	value string
}

// list is an optional "- Label:" sub-block with one bullet per item.
type list struct {
	label string
	items []string
}

// entity describes how one content domain fills the variable parts of the
// prompt grammar.
type entity struct {
	header   string
	fields   []field
	lists    []list
	hashtags string
	addenda  map[string][]string
	closing  string
}

// ComposeCourse builds the prompt for a course.
func ComposeCourse(cfg campaign.PromptConfig) string {
	info := cfg.CourseInfo
	return compose(entity{
		header: "COURSE DETAILS",
		fields: []field{
			{"Course Name", info.CourseName},
			{"Start Date", info.StartDate},
			{"Duration", info.Duration},
			{"Learning Mode", string(info.LearningMode)},
			{"Registration Link", info.RegistrationLink},
		},
		lists: []list{
			{"Key Highlights", info.KeyHighlights},
		},
		hashtags: "Always end the post with these hashtags: " + CourseHashtags(info.RelatedHashtags),
		addenda:  courseAddenda,
		closing:  "Now create the marketing content following all the above requirements.",
	}, cfg.ChannelStyle, cfg.TemplateStyle, cfg.ExtraOptions)
}

// ComposeEvent builds the prompt for an event. Unlike courses, events carry no
// hashtags of their own, so the hashtag block is a generic instruction.
func ComposeEvent(cfg campaign.EventPromptConfig) string {
	info := cfg.EventInfo
	return compose(entity{
		header: "EVENT DETAILS",
		fields: []field{
			{"Event Name", info.Name},
			{"Date & Time", info.Time},
			{"Location", info.Location},
			{"Target Audience", info.Audience},
			{"Registration Link", info.RegistrationLink},
		},
		lists: []list{
			{"Key Highlights/Agenda", info.Highlights},
			{"Special Offers/Benefits", info.Offers},
		},
		hashtags: "Always end the post with hashtags including " + OrganizationTag + " and relevant event hashtags",
		addenda:  eventAddenda,
		closing:  "Now create the event marketing content following all the above requirements.",
	}, cfg.ChannelStyle, cfg.TemplateStyle, cfg.ExtraOptions)
}

// CourseHashtags renders the organization tag followed by the course's own
// tags, space separated, in the order given.
func CourseHashtags(tags []string) string {
	all := make([]string, 0, len(tags)+1)
	all = append(all, OrganizationTag)
	all = append(all, tags...)
	return strings.Join(all, " ")
}

func compose(e entity, channel catalog.ChannelStyle, template catalog.TemplateStyle, opts campaign.ExtraOptions) string {
	blocks := []string{
		preamble,
		detailsBlock(e),
		channelBlock(channel),
		templateBlock(template),
		optionsBlock(opts),
		"HASHTAGS REQUIREMENT:\n" + e.hashtags,
	}
	if extra, ok := e.addenda[channel.ID]; ok {
		blocks = append(blocks, addendaBlock(extra))
	}
	blocks = append(blocks, e.closing)
	return strings.Join(blocks, "\n\n")
}

func detailsBlock(e entity) string {
	var sb strings.Builder
	sb.WriteString(e.header)
	sb.WriteString(":")
	for _, f := range e.fields {
		sb.WriteString("\n- ")
		sb.WriteString(f.label)
		sb.WriteString(": ")
		sb.WriteString(f.value)
	}
	for _, l := range e.lists {
		if len(l.items) == 0 {
			continue
		}
		sb.WriteString("\n- ")
		sb.WriteString(l.label)
		sb.WriteString(":")
		for _, item := range l.items {
			sb.WriteString("\n  • ")
			sb.WriteString(item)
		}
	}
	return sb.String()
}

func channelBlock(ch catalog.ChannelStyle) string {
	lines := make([]string, len(ch.Characteristics))
	for i, c := range ch.Characteristics {
		lines[i] = "- " + c
	}
	return "CHANNEL STYLE - " + strings.ToUpper(ch.Name) + ":\n" + strings.Join(lines, "\n")
}

func templateBlock(t catalog.TemplateStyle) string {
	return "TEMPLATE STYLE - " + strings.ToUpper(t.Name) + ":\n" +
		t.Description + "\n" +
		"Structure: " + t.Structure
}

// optionsBlock holds length, emoji and urgency directives on consecutive lines.
func optionsBlock(opts campaign.ExtraOptions) string {
	lines := []string{"CONTENT LENGTH: " + lengthInstructions[opts.ContentLength]}
	if opts.WithEmojis {
		lines = append(lines, emojisOn)
	} else {
		lines = append(lines, emojisOff)
	}
	if opts.UrgencyToggle {
		lines = append(lines, urgency)
	}
	return strings.Join(lines, "\n")
}

func addendaBlock(extra []string) string {
	lines := make([]string, len(extra))
	for i, a := range extra {
		lines[i] = "- " + a
	}
	return "ADDITIONAL REQUIREMENTS:\n" + strings.Join(lines, "\n")
}
