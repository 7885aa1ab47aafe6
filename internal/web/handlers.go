package web

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cusc/copywriter/internal/auth"
	"github.com/cusc/copywriter/internal/campaign"
	"github.com/cusc/copywriter/internal/catalog"
	"github.com/cusc/copywriter/internal/clipboard"
	"github.com/cusc/copywriter/internal/config"
	"github.com/cusc/copywriter/internal/errors"
	"github.com/cusc/copywriter/internal/ops"
	"github.com/cusc/copywriter/internal/snapshot"
)

// SessionCookie names the browser session cookie.
const SessionCookie = "copywriter_session"

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	store    *snapshot.Store
	gate     *auth.Gate
	sessions *auth.Sessions
	cfg      *config.Config
	baseDir  string
	logger   *slog.Logger
	renderer *Renderer

	mu         sync.Mutex
	selections map[string]*snapshot.Selection
}

type session struct {
	token string
	user  auth.User
}

type sessionKey struct{}

func sessionFrom(r *http.Request) session {
	s, _ := r.Context().Value(sessionKey{}).(session)
	return s
}

// requireSession rejects requests without a live session. Page loads are
// redirected to the login form; everything else gets 401.
func (h *Handlers) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if c, err := r.Cookie(SessionCookie); err == nil {
			token = c.Value
		}
		user, ok := h.sessions.Lookup(token)
		if !ok {
			if r.Method == http.MethodGet && !wantsJSON(r) {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			h.renderer.renderError(w, r, errors.NewUnauthorized("login required"))
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, session{token: token, user: user})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// selection returns the per-session form selection.
func (h *Handlers) selection(token string) *snapshot.Selection {
	h.mu.Lock()
	defer h.mu.Unlock()
	sel, ok := h.selections[token]
	if !ok {
		sel = snapshot.NewSelection()
		h.selections[token] = sel
	}
	return sel
}

func (h *Handlers) dropSelection(token string) {
	h.mu.Lock()
	delete(h.selections, token)
	h.mu.Unlock()
}

// HandleLoginPage handles GET /login.
func (h *Handlers) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, ok := h.sessions.Lookup(c.Value); ok {
			http.Redirect(w, r, "/courses", http.StatusFound)
			return
		}
	}
	h.renderer.renderPage(w, r, "login", LoginPageData{
		PageData: PageData{Title: "Đăng nhập", Version: h.renderer.version},
	})
}

// HandleLogin handles POST /login.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	if !h.gate.Verify(username, password) {
		h.logger.Info("web login rejected", "user", username)
		if wantsJSON(r) {
			h.renderer.renderError(w, r, errors.NewUnauthorized("invalid username or password"))
			return
		}
		h.renderer.renderPageStatus(w, r, http.StatusUnauthorized, "login", LoginPageData{
			PageData: PageData{
				Title:   "Đăng nhập",
				Version: h.renderer.version,
				Notice:  &Notice{Kind: "error", Message: msgBadLogin},
			},
			Username: username,
		})
		return
	}

	user := auth.User{Username: username}
	token := h.sessions.Create(user)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	h.logger.Info("web login", "user", username)

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"username": username})
		return
	}
	http.Redirect(w, r, "/courses", http.StatusSeeOther)
}

// HandleLogout handles POST /logout.
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		h.sessions.Revoke(c.Value)
		h.dropSelection(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// HandleCoursePage handles GET /courses, optionally reloading ?load=<id>.
func (h *Handlers) HandleCoursePage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	data := h.coursePage(sess, campaign.NewCourseInfo(), "", "", campaign.DefaultOptions())
	data.Notice = queryNotice(r)

	if id := r.URL.Query().Get("load"); id != "" {
		sel := h.selection(sess.token)
		item, ok := h.store.Get(id)
		if !ok {
			h.renderer.renderError(w, r, errors.NewNotFound("snapshot", id))
			return
		}
		sel.Load(item)
		if sel.Tab() != snapshot.TabCourses {
			http.Redirect(w, r, "/events?load="+id, http.StatusFound)
			return
		}
		saved, err := sel.CourseData()
		sel.Clear()
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("snapshot payload is not a course form"))
			return
		}
		data = h.coursePage(sess, saved.CourseInfo, channelID(saved.SelectedChannel), templateID(saved.SelectedTemplate), saved.ExtraOptions)
		data.Notice = loadedNotice(item.Title)
	}

	h.renderer.renderPage(w, r, "course", data)
}

// HandleEventPage handles GET /events, optionally reloading ?load=<id>.
func (h *Handlers) HandleEventPage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	data := h.eventPage(sess, campaign.NewEventInfo(), "", "", campaign.DefaultOptions())
	data.Notice = queryNotice(r)

	if id := r.URL.Query().Get("load"); id != "" {
		sel := h.selection(sess.token)
		item, ok := h.store.Get(id)
		if !ok {
			h.renderer.renderError(w, r, errors.NewNotFound("snapshot", id))
			return
		}
		sel.Load(item)
		if sel.Tab() != snapshot.TabEvents {
			http.Redirect(w, r, "/courses?load="+id, http.StatusFound)
			return
		}
		saved, err := sel.EventData()
		sel.Clear()
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("snapshot payload is not an event form"))
			return
		}
		data = h.eventPage(sess, saved.EventInfo, channelID(saved.SelectedChannel), templateID(saved.SelectedTemplate), saved.ExtraOptions)
		data.Notice = loadedNotice(item.Title)
	}

	h.renderer.renderPage(w, r, "event", data)
}

// HandleGenerateCourse handles POST /courses/generate.
func (h *Handlers) HandleGenerateCourse(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	info, channel, template, opts := parseCourseForm(r)

	out, err := ops.GenerateCourse(h.store, ops.GenerateCourseInput{
		CourseInfo: info,
		ChannelID:  channel,
		TemplateID: template,
		Options:    opts,
		Save:       parseBool(r.PostFormValue("save")),
	})
	if wantsJSON(r) {
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, out)
		return
	}

	data := h.coursePage(sessionFrom(r), info, channel, template, opts)
	if err != nil {
		data.Notice = generateNotice(campaign.KindCourse, err)
		h.renderer.renderPageStatus(w, r, errors.As(err).Status, "course", data)
		return
	}
	h.fillPrompt(&data.FormPageData, out)
	h.renderer.renderPage(w, r, "course", data)
}

// HandleGenerateEvent handles POST /events/generate.
func (h *Handlers) HandleGenerateEvent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	info, channel, template, opts := parseEventForm(r)

	out, err := ops.GenerateEvent(h.store, ops.GenerateEventInput{
		EventInfo:  info,
		ChannelID:  channel,
		TemplateID: template,
		Options:    opts,
		Save:       parseBool(r.PostFormValue("save")),
	})
	if wantsJSON(r) {
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, out)
		return
	}

	data := h.eventPage(sessionFrom(r), info, channel, template, opts)
	if err != nil {
		data.Notice = generateNotice(campaign.KindEvent, err)
		h.renderer.renderPageStatus(w, r, errors.As(err).Status, "event", data)
		return
	}
	h.fillPrompt(&data.FormPageData, out)
	h.renderer.renderPage(w, r, "event", data)
}

// HandleSaveSnapshot handles POST /snapshots: saves the submitted form.
func (h *Handlers) HandleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	kind, err := campaign.ParseKind(r.PostFormValue("type"))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest(err.Error()))
		return
	}

	var (
		out  *ops.SaveOutput
		page string
		data any
	)
	sess := sessionFrom(r)
	switch kind {
	case campaign.KindCourse:
		info, channel, template, opts := parseCourseForm(r)
		out, err = ops.SaveCourse(h.store, ops.SaveCourseInput{CourseInfo: info, ChannelID: channel, TemplateID: template, Options: opts})
		p := h.coursePage(sess, info, channel, template, opts)
		p.Notice = saveNotice(out, err, msgCourseNameReq)
		page, data = "course", p
	case campaign.KindEvent:
		info, channel, template, opts := parseEventForm(r)
		out, err = ops.SaveEvent(h.store, ops.SaveEventInput{EventInfo: info, ChannelID: channel, TemplateID: template, Options: opts})
		p := h.eventPage(sess, info, channel, template, opts)
		p.Notice = saveNotice(out, err, msgEventNameReq)
		page, data = "event", p
	}

	if wantsJSON(r) {
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, out)
		return
	}
	status := http.StatusOK
	if err != nil {
		status = errors.As(err).Status
	}
	h.renderer.renderPageStatus(w, r, status, page, data)
}

func saveNotice(out *ops.SaveOutput, err error, nameRequired string) *Notice {
	switch {
	case err == nil:
		return savedNotice(out.Title)
	case errors.Is(err, errors.ErrInvalidRequest) && strings.Contains(err.Error(), "name is required"):
		return &Notice{Kind: "error", Message: nameRequired}
	case errors.Is(err, errors.ErrInvalidRequest):
		return &Notice{Kind: "error", Message: errors.Summary(err)}
	default:
		return &Notice{Kind: "error", Message: msgSaveFailed}
	}
}

// HandleCopy handles POST /clipboard: copies the prompt on the host clipboard.
func (h *Handlers) HandleCopy(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	text := r.PostFormValue("prompt")
	if text == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("prompt is required"))
		return
	}

	err := clipboard.Copy(text)
	if err != nil {
		h.logger.Warn("clipboard copy failed", "error", err)
	}
	if wantsJSON(r) {
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, map[string]any{"copied": true})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		w.WriteHeader(errors.As(err).Status)
		_, _ = w.Write([]byte(`<div class="toast toast-error" role="alert">` + msgCopyFailed + `</div>`))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="toast toast-success" role="status">` + msgCopied + `</div>`))
}

// HandleListSnapshots handles GET /snapshots (JSON).
func (h *Handlers) HandleListSnapshots(w http.ResponseWriter, r *http.Request) {
	out, err := ops.List(h.store, ops.ListInput{
		Type:   r.URL.Query().Get("type"),
		Query:  r.URL.Query().Get("q"),
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleExport handles GET /snapshots/export: downloads all snapshots.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	payload, _, err := h.store.Export()
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInternal(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ops.BackupFileName(time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// HandleImport handles POST /snapshots/import (multipart field "file").
func (h *Handlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, ops.MaxImportBytes+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid upload"))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("file is required"))
		return
	}
	defer file.Close()

	out, err := ops.ImportReader(h.store, file)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	http.Redirect(w, r, "/courses?notice=imported", http.StatusSeeOther)
}

// HandleRename handles POST /snapshots/{id}/rename.
func (h *Handlers) HandleRename(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	item, err := ops.Rename(h.store, ops.RenameInput{ID: r.PathValue("id"), NewTitle: r.PostFormValue("title")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, item)
		return
	}
	http.Redirect(w, r, tabPath(item.Type)+"?notice=renamed", http.StatusSeeOther)
}

// HandleDelete handles DELETE /snapshots/{id} and its form fallback.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	item, ok := h.store.Get(id)
	if !ok {
		h.renderer.renderError(w, r, errors.NewNotFound("snapshot", id))
		return
	}
	result, err := ops.Delete(h.store, ops.DeleteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	target := tabPath(item.Type) + "?notice=deleted"
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// HandleCatalog handles GET /api/catalog; ?q= filters channels.
func (h *Handlers) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{
		"channels":        catalog.Default().SearchChannels(r.URL.Query().Get("q")),
		"courseTemplates": catalog.CourseTemplates(),
		"eventTemplates":  catalog.EventTemplates(),
	})
}

func (h *Handlers) sidebar() Sidebar {
	return Sidebar{
		Courses: summaries(h.store.ListByType(campaign.KindCourse)),
		Events:  summaries(h.store.ListByType(campaign.KindEvent)),
	}
}

func (h *Handlers) formPage(sess session, nav, title, channel, template string, opts campaign.ExtraOptions, templates []catalog.TemplateStyle) FormPageData {
	if opts.ContentLength == "" {
		opts.ContentLength = campaign.LengthMedium
	}
	return FormPageData{
		PageData: PageData{
			Title:   title,
			Version: h.renderer.version,
			Nav:     nav,
			User:    sess.user.Username,
		},
		Sidebar:    h.sidebar(),
		Channels:   catalog.Channels(),
		Templates:  templates,
		ChannelID:  channel,
		TemplateID: template,
		Options:    opts,
	}
}

func (h *Handlers) coursePage(sess session, info campaign.CourseInfo, channel, template string, opts campaign.ExtraOptions) CoursePageData {
	if info.LearningMode == "" {
		info.LearningMode = campaign.ModeOnline
	}
	return CoursePageData{
		FormPageData: h.formPage(sess, string(snapshot.TabCourses), "Khóa học", channel, template, opts, catalog.CourseTemplates()),
		Course:       info,
	}
}

func (h *Handlers) eventPage(sess session, info campaign.EventInfo, channel, template string, opts campaign.ExtraOptions) EventPageData {
	return EventPageData{
		FormPageData: h.formPage(sess, string(snapshot.TabEvents), "Sự kiện", channel, template, opts, catalog.EventTemplates()),
		Event:        info,
	}
}

func (h *Handlers) fillPrompt(data *FormPageData, out *ops.GenerateOutput) {
	data.Prompt = out.Prompt
	data.PromptHTML = renderMarkdown(out.Prompt)
	data.Chars = out.Chars
	data.Notice = &Notice{Kind: "success", Message: msgGenerated}
	if out.Saved != nil {
		data.Notice = savedNotice(out.Saved.Title)
		data.Sidebar = h.sidebar()
	}
}

func parseCourseForm(r *http.Request) (campaign.CourseInfo, string, string, campaign.ExtraOptions) {
	info := campaign.CourseInfo{
		CourseName:       r.PostFormValue("courseName"),
		StartDate:        r.PostFormValue("startDate"),
		Duration:         r.PostFormValue("duration"),
		LearningMode:     campaign.LearningMode(r.PostFormValue("learningMode")),
		KeyHighlights:    r.PostForm["keyHighlights"],
		RegistrationLink: r.PostFormValue("registrationLink"),
		RelatedHashtags:  r.PostForm["relatedHashtags"],
	}
	return info, r.PostFormValue("channel"), r.PostFormValue("template"), parseOptions(r)
}

func parseEventForm(r *http.Request) (campaign.EventInfo, string, string, campaign.ExtraOptions) {
	info := campaign.EventInfo{
		Name:             r.PostFormValue("name"),
		Time:             r.PostFormValue("time"),
		Location:         r.PostFormValue("location"),
		Highlights:       r.PostForm["highlights"],
		Audience:         r.PostFormValue("audience"),
		Offers:           r.PostForm["offers"],
		RegistrationLink: r.PostFormValue("registrationLink"),
	}
	return info, r.PostFormValue("channel"), r.PostFormValue("template"), parseOptions(r)
}

func parseOptions(r *http.Request) campaign.ExtraOptions {
	return campaign.ExtraOptions{
		ContentLength: campaign.ContentLength(r.PostFormValue("contentLength")),
		WithEmojis:    parseBool(r.PostFormValue("withEmojis")),
		UrgencyToggle: parseBool(r.PostFormValue("urgencyToggle")),
	}
}

func queryNotice(r *http.Request) *Notice {
	if msg, ok := redirectNotices[r.URL.Query().Get("notice")]; ok {
		return &Notice{Kind: "success", Message: msg}
	}
	return nil
}

func tabPath(kind campaign.Kind) string {
	return "/" + string(snapshot.TabFor(kind))
}

func channelID(ch *catalog.ChannelStyle) string {
	if ch == nil {
		return ""
	}
	return ch.ID
}

func templateID(t *catalog.TemplateStyle) string {
	if t == nil {
		return ""
	}
	return t.ID
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBool accepts the values HTML checkboxes and JSON-ish clients send.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
