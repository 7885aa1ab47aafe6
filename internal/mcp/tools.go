package mcp

import "github.com/mark3labs/mcp-go/mcp"

var optionParams = []mcp.ToolOption{
	mcp.WithString("channel_id", mcp.Required(),
		mcp.Description("Channel id from catalog_list (e.g. main-fanpage, zalo-oa)")),
	mcp.WithString("template_id", mcp.Required(),
		mcp.Description("Template id from catalog_list for this domain")),
	mcp.WithString("content_length",
		mcp.Enum("short", "medium", "detailed"),
		mcp.Description("Word budget of the generated copy (default medium)")),
	mcp.WithBoolean("with_emojis", mcp.Description("Ask for emojis (default true)")),
	mcp.WithBoolean("urgency", mcp.Description("Ask for an urgency call to action")),
	mcp.WithBoolean("save", mcp.Description("Also save the form as a snapshot titled after its name")),
}

func withOptions(opts ...mcp.ToolOption) []mcp.ToolOption {
	return append(opts, optionParams...)
}

var promptCourseToolDef = mcp.NewTool("prompt_course", withOptions(
	mcp.WithDescription("Compose a marketing prompt for a course. Returns the prompt text to paste into a text generator."),
	mcp.WithString("course_name", mcp.Required(), mcp.Description("Course name")),
	mcp.WithString("start_date", mcp.Required(), mcp.Description("Start date, YYYY-MM-DD")),
	mcp.WithString("duration", mcp.Required(), mcp.Description("Duration, free text (e.g. 3 months)")),
	mcp.WithString("learning_mode", mcp.Enum("online", "offline", "hybrid"), mcp.Description("Delivery mode (default online)")),
	mcp.WithArray("key_highlights", mcp.WithStringItems(), mcp.Description("Selling points; blanks are dropped")),
	mcp.WithString("registration_link", mcp.Required(), mcp.Description("Registration URL")),
	mcp.WithArray("related_hashtags", mcp.WithStringItems(), mcp.Description("Hashtags; blanks are dropped")),
)...)

var promptEventToolDef = mcp.NewTool("prompt_event", withOptions(
	mcp.WithDescription("Compose a marketing prompt for an event. Returns the prompt text to paste into a text generator."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Event name")),
	mcp.WithString("time", mcp.Required(), mcp.Description("When the event takes place")),
	mcp.WithString("location", mcp.Required(), mcp.Description("Where the event takes place")),
	mcp.WithString("audience", mcp.Required(), mcp.Description("Who the event is for")),
	mcp.WithArray("highlights", mcp.WithStringItems(), mcp.Description("Event highlights; blanks are dropped")),
	mcp.WithArray("offers", mcp.WithStringItems(), mcp.Description("Special offers; blanks are dropped")),
	mcp.WithString("registration_link", mcp.Description("Registration URL (optional for events)")),
)...)

var catalogListToolDef = mcp.NewTool("catalog_list",
	mcp.WithDescription("List channels and writing templates. Use the ids with prompt_course / prompt_event."),
	mcp.WithString("section",
		mcp.Enum("channels", "course_templates", "event_templates"),
		mcp.Description("Only return one section (default all)")),
	mcp.WithString("query", mcp.Description("Fuzzy filter for channels")),
)

var saveToolDef = mcp.NewTool("snapshot_save",
	mcp.WithDescription("Save a form payload as a snapshot. A snapshot with the same title and type is replaced in place."),
	mcp.WithString("type", mcp.Required(), mcp.Enum("course", "event"), mcp.Description("Snapshot type")),
	mcp.WithString("title", mcp.Required(), mcp.Description("Snapshot title")),
	mcp.WithObject("data", mcp.Description("Form payload (courseInfo/eventInfo, selectedChannel, selectedTemplate, extraOptions)")),
)

var listToolDef = mcp.NewTool("snapshot_list",
	mcp.WithDescription("List saved snapshots, newest first, without payloads."),
	mcp.WithString("type", mcp.Enum("course", "event"), mcp.Description("Filter by type")),
	mcp.WithString("query", mcp.Description("Fuzzy match on title")),
	mcp.WithNumber("limit", mcp.Description("Max items (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Pagination offset")),
)

var fetchToolDef = mcp.NewTool("snapshot_fetch",
	mcp.WithDescription("Fetch a snapshot with its decoded form. Address by id, or by type and title."),
	mcp.WithString("id", mcp.Description("Snapshot id")),
	mcp.WithString("type", mcp.Enum("course", "event"), mcp.Description("Snapshot type (with title)")),
	mcp.WithString("title", mcp.Description("Snapshot title (with type)")),
)

var renameToolDef = mcp.NewTool("snapshot_rename",
	mcp.WithDescription("Rename a snapshot. Address by id, or by type and title."),
	mcp.WithString("id", mcp.Description("Snapshot id")),
	mcp.WithString("type", mcp.Enum("course", "event"), mcp.Description("Snapshot type (with title)")),
	mcp.WithString("title", mcp.Description("Current title (with type)")),
	mcp.WithString("new_title", mcp.Required(), mcp.Description("New title")),
)

var deleteToolDef = mcp.NewTool("snapshot_delete",
	mcp.WithDescription("Delete a snapshot. Address by id, or by type and title."),
	mcp.WithString("id", mcp.Description("Snapshot id")),
	mcp.WithString("type", mcp.Enum("course", "event"), mcp.Description("Snapshot type (with title)")),
	mcp.WithString("title", mcp.Description("Snapshot title (with type)")),
)
