package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/cusc/copywriter/internal/campaign"
	"github.com/cusc/copywriter/internal/catalog"
	"github.com/cusc/copywriter/internal/errors"
	"github.com/cusc/copywriter/internal/ops"
	"github.com/cusc/copywriter/internal/snapshot"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active tab: "courses" or "events"
	User    string
	Notice  *Notice
}

// Notice is a transient message shown in the toast area.
type Notice struct {
	Kind    string // "success" or "error"
	Message string
}

// Sidebar lists saved snapshots next to the form.
type Sidebar struct {
	Courses []ops.Summary
	Events  []ops.Summary
}

// FormPageData is shared by the course and event pages.
type FormPageData struct {
	PageData
	Sidebar    Sidebar
	Channels   []catalog.ChannelStyle
	Templates  []catalog.TemplateStyle
	ChannelID  string
	TemplateID string
	Options    campaign.ExtraOptions
	Prompt     string
	PromptHTML template.HTML
	Chars      int
}

// CoursePageData is the template data for the course form.
type CoursePageData struct {
	FormPageData
	Course campaign.CourseInfo
}

// EventPageData is the template data for the event form.
type EventPageData struct {
	FormPageData
	Event campaign.EventInfo
}

// LoginPageData is the template data for the login page.
type LoginPageData struct {
	PageData
	Username string
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	logger    *slog.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, logger *slog.Logger) (*Renderer, error) {
	funcMap := template.FuncMap{
		"formatTime":  formatTime,
		"formatChars": formatChars,
		"selected":    func(a, b string) bool { return a == b },
		"withBlank":   withBlank,
		"dict":        dict,
	}

	layoutTmpl, err := template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := map[string]string{
		"login":  "login.html",
		"course": "course.html",
		"event":  "event.html",
		"error":  "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t, err := layoutTmpl.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, file, "partials.html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		templates[name] = t
	}

	return &Renderer{templates: templates, version: version, logger: logger}, nil
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// For htmx requests, only the "content" block is rendered to avoid duplicating the layout.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.logger.Error("template not found", "name", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	block := "layout"
	if req != nil && req.Header.Get("HX-Request") == "true" {
		block = "content"
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		r.logger.Error("template execution failed", "name", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	appErr := errors.As(err)
	status := appErr.Status
	message := appErr.Message
	if status >= 500 {
		r.logger.Error("request failed", "path", req.URL.Path, "error", err)
	}

	if wantsJSON(req) {
		renderJSON(w, status, map[string]any{
			"error": map[string]any{
				"code":    string(appErr.Code),
				"message": message,
				"status":  status,
				"details": appErr.Details,
			},
		})
		return
	}

	if req.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `<div class="toast toast-error" role="alert">%s</div>`, template.HTMLEscapeString(message))
		return
	}

	r.renderPageStatus(w, req, status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Lỗi %d", status),
			Version: r.version,
			Notice:  &Notice{Kind: "error", Message: message},
		},
		StatusCode: status,
		Message:    message,
	})
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json")
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts markdown text to HTML using goldmark.
// Raw HTML in the input is escaped by goldmark's default renderer.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// formatTime renders a snapshot createdAt as "2006-01-02 15:04" UTC.
// Unparseable values are shown as-is.
func formatTime(createdAt string) string {
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return createdAt
	}
	return t.UTC().Format("2006-01-02 15:04")
}

// formatChars formats an integer with comma thousands separators.
func formatChars(n int) string {
	if n < 0 {
		return "-" + formatChars(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// withBlank returns items with one trailing empty row so the form always
// offers an input for the next entry.
func withBlank(items []string) []string {
	out := make([]string, 0, len(items)+1)
	out = append(out, items...)
	if len(out) == 0 || strings.TrimSpace(out[len(out)-1]) != "" {
		out = append(out, "")
	}
	return out
}

// dict builds a map from alternating key/value arguments for partials.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

func summaries(items []snapshot.Item) []ops.Summary {
	out := make([]ops.Summary, 0, len(items))
	for _, it := range items {
		out = append(out, ops.Summary{ID: it.ID, Title: it.Title, Type: it.Type, CreatedAt: it.CreatedAt})
	}
	return out
}
