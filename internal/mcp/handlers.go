package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cusc/copywriter/internal/campaign"
	"github.com/cusc/copywriter/internal/catalog"
	"github.com/cusc/copywriter/internal/config"
	"github.com/cusc/copywriter/internal/errors"
	"github.com/cusc/copywriter/internal/ops"
	"github.com/cusc/copywriter/internal/snapshot"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store *snapshot.Store
	cfg   *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store *snapshot.Store, cfg *config.Config) *Handlers {
	return &Handlers{store: store, cfg: cfg}
}

// Request types for each tool

// OptionFields are the picker and option arguments shared by both prompt tools.
type OptionFields struct {
	ChannelID     string `json:"channel_id"`
	TemplateID    string `json:"template_id"`
	ContentLength string `json:"content_length,omitempty"`
	WithEmojis    *bool  `json:"with_emojis,omitempty"`
	Urgency       bool   `json:"urgency,omitempty"`
	Save          bool   `json:"save,omitempty"`
}

func (o OptionFields) options() campaign.ExtraOptions {
	opts := campaign.DefaultOptions()
	opts.ContentLength = campaign.ContentLength(o.ContentLength)
	if o.WithEmojis != nil {
		opts.WithEmojis = *o.WithEmojis
	}
	opts.UrgencyToggle = o.Urgency
	return opts
}

// PromptCourseRequest represents the arguments for prompt_course.
type PromptCourseRequest struct {
	OptionFields
	CourseName       string   `json:"course_name"`
	StartDate        string   `json:"start_date"`
	Duration         string   `json:"duration"`
	LearningMode     string   `json:"learning_mode,omitempty"`
	KeyHighlights    []string `json:"key_highlights,omitempty"`
	RegistrationLink string   `json:"registration_link"`
	RelatedHashtags  []string `json:"related_hashtags,omitempty"`
}

// PromptEventRequest represents the arguments for prompt_event.
type PromptEventRequest struct {
	OptionFields
	Name             string   `json:"name"`
	Time             string   `json:"time"`
	Location         string   `json:"location"`
	Audience         string   `json:"audience"`
	Highlights       []string `json:"highlights,omitempty"`
	Offers           []string `json:"offers,omitempty"`
	RegistrationLink string   `json:"registration_link,omitempty"`
}

// CatalogListRequest represents the arguments for catalog_list.
type CatalogListRequest struct {
	Section string `json:"section,omitempty"`
	Query   string `json:"query,omitempty"`
}

// SaveRequest represents the arguments for snapshot_save.
type SaveRequest struct {
	Type  string          `json:"type"`
	Title string          `json:"title"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ListRequest represents the arguments for snapshot_list.
type ListRequest struct {
	Type   string `json:"type,omitempty"`
	Query  string `json:"query,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// AddressRequest identifies a snapshot by id or by type and title.
type AddressRequest struct {
	ID    string `json:"id,omitempty"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

// RenameRequest represents the arguments for snapshot_rename.
type RenameRequest struct {
	AddressRequest
	NewTitle string `json:"new_title"`
}

// CatalogListOutput is the result of catalog_list.
type CatalogListOutput struct {
	Channels        []catalog.ChannelStyle  `json:"channels,omitempty"`
	CourseTemplates []catalog.TemplateStyle `json:"course_templates,omitempty"`
	EventTemplates  []catalog.EventTemplate `json:"event_templates,omitempty"`
}

// Handler implementations

// HandlePromptCourse handles the prompt_course tool call.
func (h *Handlers) HandlePromptCourse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PromptCourseRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.GenerateCourse(h.store, ops.GenerateCourseInput{
		CourseInfo: campaign.CourseInfo{
			CourseName:       input.CourseName,
			StartDate:        input.StartDate,
			Duration:         input.Duration,
			LearningMode:     campaign.LearningMode(input.LearningMode),
			KeyHighlights:    input.KeyHighlights,
			RegistrationLink: input.RegistrationLink,
			RelatedHashtags:  input.RelatedHashtags,
		},
		ChannelID:  input.ChannelID,
		TemplateID: input.TemplateID,
		Options:    input.options(),
		Save:       input.Save,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandlePromptEvent handles the prompt_event tool call.
func (h *Handlers) HandlePromptEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PromptEventRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.GenerateEvent(h.store, ops.GenerateEventInput{
		EventInfo: campaign.EventInfo{
			Name:             input.Name,
			Time:             input.Time,
			Location:         input.Location,
			Highlights:       input.Highlights,
			Audience:         input.Audience,
			Offers:           input.Offers,
			RegistrationLink: input.RegistrationLink,
		},
		ChannelID:  input.ChannelID,
		TemplateID: input.TemplateID,
		Options:    input.options(),
		Save:       input.Save,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCatalogList handles the catalog_list tool call.
func (h *Handlers) HandleCatalogList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CatalogListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	cat := catalog.Default()
	var out CatalogListOutput
	switch input.Section {
	case "":
		out.Channels = cat.SearchChannels(input.Query)
		out.CourseTemplates = cat.AllCourseTemplates()
		out.EventTemplates = cat.AllEventTemplates()
	case "channels":
		out.Channels = cat.SearchChannels(input.Query)
	case "course_templates":
		out.CourseTemplates = cat.AllCourseTemplates()
	case "event_templates":
		out.EventTemplates = cat.AllEventTemplates()
	default:
		return errorResult(errors.NewInvalidRequest("section must be one of: channels, course_templates, event_templates")), nil
	}
	return successResult(out)
}

// HandleSave handles the snapshot_save tool call.
func (h *Handlers) HandleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Save(h.store, ops.SaveInput{
		Title: input.Title,
		Type:  input.Type,
		Data:  input.Data,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleList handles the snapshot_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(h.store, ops.ListInput{
		Type:   input.Type,
		Query:  input.Query,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFetch handles the snapshot_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddressRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Fetch(h.store, ops.FetchInput{
		ID:    input.ID,
		Type:  input.Type,
		Title: input.Title,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRename handles the snapshot_rename tool call.
func (h *Handlers) HandleRename(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RenameRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Rename(h.store, ops.RenameInput{
		ID:       input.ID,
		Type:     input.Type,
		Title:    input.Title,
		NewTitle: input.NewTitle,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDelete handles the snapshot_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddressRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(h.store, ops.DeleteInput{
		ID:    input.ID,
		Type:  input.Type,
		Title: input.Title,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	appErr := errors.As(err)
	errorObj := map[string]any{
		"code":    appErr.Code,
		"message": appErr.Message,
		"status":  appErr.Status,
	}
	if appErr.Code == errors.ErrInternal {
		errorObj["message"] = "an internal error occurred"
	} else if appErr.Details != nil {
		errorObj["details"] = appErr.Details
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
