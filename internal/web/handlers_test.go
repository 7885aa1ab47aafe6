package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cusc/copywriter/internal/auth"
	"github.com/cusc/copywriter/internal/campaign"
	"github.com/cusc/copywriter/internal/config"
	"github.com/cusc/copywriter/internal/ops"
	"github.com/cusc/copywriter/internal/snapshot"
)

type testServer struct {
	handler  http.Handler
	store    *snapshot.Store
	sessions *auth.Sessions
	cookie   *http.Cookie
}

func setupTest(t *testing.T) *testServer {
	t.Helper()
	store := snapshot.New(t.Context(), nil)
	sessions := auth.NewSessions()
	handler, err := NewHandler(Deps{
		Store:    store,
		Gate:     auth.New(t.Context(), nil, nil, nil),
		Sessions: sessions,
		Config:   config.DefaultConfig(),
		BaseDir:  t.TempDir(),
		Version:  "test",
	})
	require.NoError(t, err)

	token := sessions.Create(auth.User{Username: "thanh"})
	return &testServer{
		handler:  handler,
		store:    store,
		sessions: sessions,
		cookie:   &http.Cookie{Name: SessionCookie, Value: token},
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func courseForm() url.Values {
	return url.Values{
		"courseName":       {"Python Basics"},
		"startDate":        {"2024-01-15"},
		"duration":         {"3 months"},
		"learningMode":     {"online"},
		"keyHighlights":    {"Expert instructors", ""},
		"registrationLink": {"https://x.test/reg"},
		"relatedHashtags":  {"#Python"},
		"channel":          {"main-fanpage"},
		"template":         {"aida"},
		"contentLength":    {"medium"},
		"withEmojis":       {"true"},
	}
}

func seedCourse(t *testing.T, s *testServer, name string) snapshot.Item {
	t.Helper()
	info := campaign.NewCourseInfo()
	info.CourseName = name
	out, err := ops.SaveCourse(s.store, ops.SaveCourseInput{
		CourseInfo: info,
		ChannelID:  "zalo-oa",
		Options:    campaign.DefaultOptions(),
	})
	require.NoError(t, err)
	return out.Item
}

// --- sessions ---

func TestRequireSession_RedirectsPageLoads(t *testing.T) {
	s := setupTest(t)
	s.cookie = nil

	rec := s.do(httptest.NewRequest(http.MethodGet, "/courses", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequireSession_RejectsAPICalls(t *testing.T) {
	s := setupTest(t)
	s.cookie = nil

	req := httptest.NewRequest(http.MethodGet, "/snapshots", nil)
	req.Header.Set("Accept", "application/json")
	rec := s.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}

func TestHandleLogin_Success(t *testing.T) {
	s := setupTest(t)
	s.cookie = nil

	rec := s.do(postForm("/login", url.Values{"username": {"thanh"}, "password": {"thanh123"}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/courses", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	user, ok := s.sessions.Lookup(cookies[0].Value)
	require.True(t, ok)
	assert.Equal(t, "thanh", user.Username)
}

func TestHandleLogin_BadPassword(t *testing.T) {
	s := setupTest(t)
	s.cookie = nil

	rec := s.do(postForm("/login", url.Values{"username": {"thanh"}, "password": {"nope"}}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), msgBadLogin)
	assert.Empty(t, rec.Result().Cookies())
}

func TestHandleLogout_RevokesSession(t *testing.T) {
	s := setupTest(t)

	rec := s.do(httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	_, ok := s.sessions.Lookup(s.cookie.Value)
	assert.False(t, ok)
}

func TestSecurityHeaders(t *testing.T) {
	s := setupTest(t)
	rec := s.do(httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")
}

// --- pages ---

func TestHandleCoursePage_Default(t *testing.T) {
	s := setupTest(t)
	seedCourse(t, s, "Go Fundamentals")

	rec := s.do(httptest.NewRequest(http.MethodGet, "/courses", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, "Go Fundamentals")
	assert.Contains(t, body, "Fanpage Chính")
}

func TestHandleCoursePage_HtmxReturnsContentOnly(t *testing.T) {
	s := setupTest(t)

	req := httptest.NewRequest(http.MethodGet, "/courses", nil)
	req.Header.Set("HX-Request", "true")
	rec := s.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, rec.Body.String(), `name="courseName"`)
}

func TestHandleCoursePage_LoadSnapshot(t *testing.T) {
	s := setupTest(t)
	item := seedCourse(t, s, "Data Science 101")

	rec := s.do(httptest.NewRequest(http.MethodGet, "/courses?load="+item.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="Data Science 101"`)
	assert.Contains(t, body, `<option value="zalo-oa" selected>`)
	assert.Contains(t, body, "Đã tải dữ liệu")
}

func TestHandleCoursePage_LoadEventRedirects(t *testing.T) {
	s := setupTest(t)
	out, err := ops.SaveEvent(s.store, ops.SaveEventInput{EventInfo: campaign.EventInfo{Name: "Tech Day"}})
	require.NoError(t, err)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/courses?load="+out.ID, nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/events?load="+out.ID, rec.Header().Get("Location"))

	rec = s.do(httptest.NewRequest(http.MethodGet, "/events?load="+out.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Tech Day"`)
}

func TestHandleCoursePage_LoadMissing(t *testing.T) {
	s := setupTest(t)
	rec := s.do(httptest.NewRequest(http.MethodGet, "/courses?load=nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleEventPage_Notice(t *testing.T) {
	s := setupTest(t)
	rec := s.do(httptest.NewRequest(http.MethodGet, "/events?notice=deleted", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), redirectNotices["deleted"])
}

// --- generate ---

func TestHandleGenerateCourse_HTML(t *testing.T) {
	s := setupTest(t)

	rec := s.do(postForm("/courses/generate", courseForm()))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, msgGenerated)
	assert.Contains(t, body, "prompt-preview")
	assert.Contains(t, body, "Python Basics")
	assert.Equal(t, 0, s.store.Len())
}

func TestHandleGenerateCourse_JSON(t *testing.T) {
	s := setupTest(t)

	req := postForm("/courses/generate", courseForm())
	req.Header.Set("Accept", "application/json")
	rec := s.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out ops.GenerateOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, campaign.KindCourse, out.Type)
	assert.Equal(t, "main-fanpage", out.ChannelID)
	assert.Contains(t, out.Prompt, "Python Basics")
	assert.Equal(t, len([]rune(out.Prompt)), out.Chars)
}

func TestHandleGenerateCourse_MissingName(t *testing.T) {
	s := setupTest(t)
	form := courseForm()
	form.Set("courseName", "  ")

	rec := s.do(postForm("/courses/generate", form))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Vui lòng nhập tên khóa học!")
}

func TestHandleGenerateCourse_SaveFlag(t *testing.T) {
	s := setupTest(t)
	form := courseForm()
	form.Set("save", "true")

	rec := s.do(postForm("/courses/generate", form))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, s.store.Len())
}

func TestHandleGenerateEvent_JSON(t *testing.T) {
	s := setupTest(t)
	form := url.Values{
		"name":       {"Tech Day"},
		"time":       {"2024-05-01 08:00"},
		"location":   {"CUSC Hall"},
		"highlights": {"Keynote"},
		"audience":   {"Students"},
		"offers":     {"Free lunch"},
		"channel":    {"community-group"},
		"template":   {"excitement"},
	}
	req := postForm("/events/generate", form)
	req.Header.Set("Accept", "application/json")
	rec := s.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out ops.GenerateOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, campaign.KindEvent, out.Type)
	assert.Contains(t, out.Prompt, "Tech Day")
}

// --- snapshots ---

func TestHandleSaveSnapshot_Course(t *testing.T) {
	s := setupTest(t)
	form := courseForm()
	form.Set("type", "course")

	rec := s.do(postForm("/snapshots", form))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Đã lưu")

	item, ok := s.store.Find("Python Basics", campaign.KindCourse)
	require.True(t, ok)
	saved, legacy, err := campaign.DecodeCourseData(item.Data)
	require.NoError(t, err)
	assert.False(t, legacy)
	assert.Equal(t, "aida", saved.SelectedTemplate.ID)
}

func TestHandleSaveSnapshot_BlankName(t *testing.T) {
	s := setupTest(t)
	form := url.Values{"type": {"event"}, "name": {" "}}

	rec := s.do(postForm("/snapshots", form))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), msgEventNameReq)
	assert.Equal(t, 0, s.store.Len())
}

func TestHandleSaveSnapshot_BadType(t *testing.T) {
	s := setupTest(t)
	req := postForm("/snapshots", url.Values{"type": {"webinar"}})
	req.Header.Set("Accept", "application/json")

	rec := s.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListSnapshots(t *testing.T) {
	s := setupTest(t)
	seedCourse(t, s, "First")
	seedCourse(t, s, "Second")

	rec := s.do(httptest.NewRequest(http.MethodGet, "/snapshots?type=course&limit=bad", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out ops.ListOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Items, 2)
	assert.Equal(t, "Second", out.Items[0].Title)
}

func TestHandleRename(t *testing.T) {
	s := setupTest(t)
	item := seedCourse(t, s, "Old")

	rec := s.do(postForm("/snapshots/"+item.ID+"/rename", url.Values{"title": {"  New  "}}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/courses?notice=renamed", rec.Header().Get("Location"))

	got, ok := s.store.Get(item.ID)
	require.True(t, ok)
	assert.Equal(t, "New", got.Title)
}

func TestHandleDelete_Htmx(t *testing.T) {
	s := setupTest(t)
	item := seedCourse(t, s, "Doomed")

	req := httptest.NewRequest(http.MethodDelete, "/snapshots/"+item.ID, nil)
	req.Header.Set("HX-Request", "true")
	rec := s.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/courses?notice=deleted", rec.Header().Get("HX-Redirect"))
	assert.Equal(t, 0, s.store.Len())
}

func TestHandleDelete_FormFallback(t *testing.T) {
	s := setupTest(t)
	item := seedCourse(t, s, "Doomed")

	rec := s.do(httptest.NewRequest(http.MethodPost, "/snapshots/"+item.ID+"/delete", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 0, s.store.Len())
}

func TestHandleDelete_NotFound(t *testing.T) {
	s := setupTest(t)
	req := httptest.NewRequest(http.MethodDelete, "/snapshots/missing", nil)
	req.Header.Set("Accept", "application/json")
	rec := s.do(req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleExportImport(t *testing.T) {
	s := setupTest(t)
	seedCourse(t, s, "Backup Me")

	rec := s.do(httptest.NewRequest(http.MethodGet, "/snapshots/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "marketing-generator-backup-")
	payload := rec.Body.Bytes()

	other := setupTest(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "backup.json")
	require.NoError(t, err)
	_, err = fw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/snapshots/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec = other.do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/courses?notice=imported", rec.Header().Get("Location"))

	_, ok := other.store.Find("Backup Me", campaign.KindCourse)
	assert.True(t, ok)
}

func TestHandleImport_NotArray(t *testing.T) {
	s := setupTest(t)
	seedCourse(t, s, "Keep")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "bad.json")
	require.NoError(t, err)
	_, _ = fw.Write([]byte(`{"not":"an array"}`))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/snapshots/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	rec := s.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, s.store.Len())
}

func TestHandleCopy_EmptyPrompt(t *testing.T) {
	s := setupTest(t)
	req := postForm("/clipboard", url.Values{})
	req.Header.Set("Accept", "application/json")
	rec := s.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCatalog(t *testing.T) {
	s := setupTest(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/catalog?q=zalo", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Channels        []map[string]any `json:"channels"`
		CourseTemplates []map[string]any `json:"courseTemplates"`
		EventTemplates  []map[string]any `json:"eventTemplates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	ids := make([]any, 0, len(out.Channels))
	for _, ch := range out.Channels {
		ids = append(ids, ch["id"])
	}
	assert.Contains(t, ids, "zalo-oa")
	assert.Len(t, out.CourseTemplates, 10)
	assert.Len(t, out.EventTemplates, 4)
}

// --- helpers ---

func TestParseBool(t *testing.T) {
	for in, want := range map[string]bool{"on": true, "true": true, "1": true, "": false, "off": false, "no": false} {
		assert.Equal(t, want, parseBool(in), in)
	}
}

func TestFormatChars(t *testing.T) {
	assert.Equal(t, "0", formatChars(0))
	assert.Equal(t, "999", formatChars(999))
	assert.Equal(t, "1,234", formatChars(1234))
	assert.Equal(t, "-1,234,567", formatChars(-1234567))
}

func TestWithBlank(t *testing.T) {
	assert.Equal(t, []string{""}, withBlank(nil))
	assert.Equal(t, []string{"a", ""}, withBlank([]string{"a"}))
	assert.Equal(t, []string{"a", ""}, withBlank([]string{"a", ""}))
}
