package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cusc/copywriter/internal/auth"
	"github.com/cusc/copywriter/internal/campaign"
	"github.com/cusc/copywriter/internal/config"
	"github.com/cusc/copywriter/internal/db"
	"github.com/cusc/copywriter/internal/ops"
	"github.com/cusc/copywriter/internal/snapshot"
)

// setupTestEnv opens a temporary data directory and logs in as thanh.
func setupTestEnv(t *testing.T) *appEnv {
	t.Helper()
	env := newTestEnv(t)
	_, err := env.gate.Login(t.Context(), "thanh", "thanh123")
	require.NoError(t, err)
	return env
}

func newTestEnv(t *testing.T) *appEnv {
	t.Helper()
	baseDir := t.TempDir()
	database, err := db.Init(baseDir)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true // Allow temp dirs in tests

	storage := db.NewStorage(database)
	return &appEnv{
		store:   snapshot.New(t.Context(), storage),
		gate:    auth.New(t.Context(), storage, nil, nil),
		cfg:     cfg,
		baseDir: baseDir,
		logger:  discardLogger(),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// runCLI runs the app and returns what it printed.
func runCLI(t *testing.T, env *appEnv, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	defer func() { stdout = old }()

	err := newCLIApp(env).Run(append([]string{"copywriter"}, args...))
	return buf.String(), err
}

var pythonBasicsArgs = []string{
	"course",
	"--name=Python Basics",
	"--start-date=2024-01-15",
	"--duration=3 months",
	"--mode=online",
	"--highlight=Expert instructors",
	"--highlight=Hands-on, project based",
	"--link=https://x.test/reg",
	"--hashtag=#Python",
	"--channel=main-fanpage",
	"--template=aida",
}

func TestCLICourse(t *testing.T) {
	env := setupTestEnv(t)

	out, err := runCLI(t, env, pythonBasicsArgs...)
	require.NoError(t, err)
	assert.Contains(t, out, "Python Basics")
	assert.Contains(t, out, "  • Hands-on, project based\n")
	assert.Equal(t, 0, env.store.Len())
}

func TestCLICourse_JSONAndSave(t *testing.T) {
	env := setupTestEnv(t)

	out, err := runCLI(t, env, append(pythonBasicsArgs, "--json", "--save")...)
	require.NoError(t, err)

	var output ops.GenerateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &output))
	assert.Equal(t, campaign.KindCourse, output.Type)
	assert.Equal(t, "aida", output.TemplateID)
	require.NotNil(t, output.Saved)
	assert.Equal(t, "Python Basics", output.Saved.Title)

	_, ok := env.store.Find("python basics", campaign.KindCourse)
	assert.True(t, ok)
}

func TestCLICourse_Incomplete(t *testing.T) {
	env := setupTestEnv(t)

	_, err := runCLI(t, env, "course", "--name=Python Basics")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[INCOMPLETE_INPUT]")
}

func TestCLICourse_RequiresLogin(t *testing.T) {
	env := newTestEnv(t)

	_, err := runCLI(t, env, pythonBasicsArgs...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[UNAUTHORIZED]")
}

func TestCLIEvent(t *testing.T) {
	env := setupTestEnv(t)

	out, err := runCLI(t, env,
		"event",
		"--name=Tech Day",
		"--time=2024-05-01 08:00",
		"--location=CUSC Hall",
		"--audience=Students",
		"--highlight=Keynote",
		"--offer=Free lunch",
		"--channel=community-group",
		"--template=excitement",
		"--no-emojis",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Tech Day")
	assert.Contains(t, out, "Free lunch")
}

func TestCLICatalog(t *testing.T) {
	env := setupTestEnv(t)

	out, err := runCLI(t, env, "catalog", "--json")
	require.NoError(t, err)
	var payload map[string][]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Len(t, payload["channels"], 4)
	assert.Len(t, payload["course_templates"], 10)
	assert.Len(t, payload["event_templates"], 4)

	out, err = runCLI(t, env, "catalog", "--section=channels")
	require.NoError(t, err)
	assert.Contains(t, out, "zalo-oa")
	assert.NotContains(t, out, "Course templates")

	_, err = runCLI(t, env, "catalog", "--section=webinars")
	require.Error(t, err)
}

func TestCLISavedLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	_, err := runCLI(t, env, append(pythonBasicsArgs, "--save")...)
	require.NoError(t, err)

	out, err := runCLI(t, env, "saved", "list", "--type=course")
	require.NoError(t, err)
	var list ops.ListOutput
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list.Items, 1)
	id := list.Items[0].ID

	out, err = runCLI(t, env, "saved", "show", "--type=course", "--title=Python Basics")
	require.NoError(t, err)
	var fetched ops.FetchOutput
	require.NoError(t, json.Unmarshal([]byte(out), &fetched))
	assert.Equal(t, id, fetched.ID)
	require.NotNil(t, fetched.Course)
	assert.Equal(t, "3 months", fetched.Course.CourseInfo.Duration)

	out, err = runCLI(t, env, "saved", "rename", id, "--to=Python Advanced")
	require.NoError(t, err)
	assert.Contains(t, out, "Python Advanced")

	_, err = runCLI(t, env, "saved", "delete", id)
	require.NoError(t, err)
	assert.Equal(t, 0, env.store.Len())

	_, err = runCLI(t, env, "saved", "show", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[NOT_FOUND]")
}

func TestCLISavedRename_ArgumentForms(t *testing.T) {
	env := setupTestEnv(t)

	_, err := runCLI(t, env, append(pythonBasicsArgs, "--save")...)
	require.NoError(t, err)
	items := env.store.Items()
	require.Len(t, items, 1)
	id := items[0].ID

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"flag before id", []string{"--to=First Title", id}, "First Title"},
		{"flag after id", []string{id, "--to=Second Title"}, "Second Title"},
		{"separate flag value after id", []string{id, "--to", "Third Title"}, "Third Title"},
		{"positional title", []string{id, "Fourth Title"}, "Fourth Title"},
		{"address by title", []string{"--type=course", "--title=Fourth Title", "Fifth Title"}, "Fifth Title"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := runCLI(t, env, append([]string{"saved", "rename"}, tc.args...)...)
			require.NoError(t, err)
			assert.Contains(t, out, tc.want)

			item, ok := env.store.Get(id)
			require.True(t, ok)
			assert.Equal(t, tc.want, item.Title)
		})
	}

	_, err = runCLI(t, env, "saved", "rename", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[INVALID_REQUEST]")
}

func TestTrailingFlag(t *testing.T) {
	rest, value := trailingFlag([]string{"01ABC", "--to=New", "extra"}, "to")
	assert.Equal(t, []string{"01ABC", "extra"}, rest)
	assert.Equal(t, "New", value)

	rest, value = trailingFlag([]string{"01ABC", "-to", "Other"}, "to")
	assert.Equal(t, []string{"01ABC"}, rest)
	assert.Equal(t, "Other", value)

	rest, value = trailingFlag([]string{"01ABC"}, "to")
	assert.Equal(t, []string{"01ABC"}, rest)
	assert.Empty(t, value)
}

func TestCLISavedExportImport(t *testing.T) {
	env := setupTestEnv(t)
	_, err := runCLI(t, env, append(pythonBasicsArgs, "--save")...)
	require.NoError(t, err)

	exportPath := filepath.Join(t.TempDir(), "backup.json")
	out, err := runCLI(t, env, "saved", "export", "--path="+exportPath)
	require.NoError(t, err)
	var exported ops.ExportOutput
	require.NoError(t, json.Unmarshal([]byte(out), &exported))
	assert.Equal(t, 1, exported.Count)
	assert.Equal(t, exportPath, exported.Path)

	other := setupTestEnv(t)
	out, err = runCLI(t, other, "saved", "import", "--path="+exportPath)
	require.NoError(t, err)
	var imported ops.ImportOutput
	require.NoError(t, json.Unmarshal([]byte(out), &imported))
	assert.Equal(t, 1, imported.Imported)
	_, ok := other.store.Find("Python Basics", campaign.KindCourse)
	assert.True(t, ok)
}

func TestCLISavedClear(t *testing.T) {
	env := setupTestEnv(t)
	_, err := runCLI(t, env, append(pythonBasicsArgs, "--save")...)
	require.NoError(t, err)

	_, err = runCLI(t, env, "saved", "clear")
	require.Error(t, err)
	assert.Equal(t, 1, env.store.Len())

	_, err = runCLI(t, env, "saved", "clear", "--yes")
	require.NoError(t, err)
	assert.Equal(t, 0, env.store.Len())
}

func TestCLILoginLogout(t *testing.T) {
	env := newTestEnv(t)

	_, err := runCLI(t, env, "login", "--username=thanh", "--password=wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[UNAUTHORIZED]")

	out, err := runCLI(t, env, "login", "--username=xuan", "--password=muipun123")
	require.NoError(t, err)
	assert.Contains(t, out, `"username": "xuan"`)

	out, err = runCLI(t, env, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, `"authenticated": true`)

	_, err = runCLI(t, env, "logout")
	require.NoError(t, err)
	out, err = runCLI(t, env, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, `"authenticated": false`)
}

func TestCLIHelpWithoutEnv(t *testing.T) {
	_, err := runCLI(t, nil, "--version")
	require.NoError(t, err)
	_, err = runCLI(t, nil, "--help")
	require.NoError(t, err)
}

func TestIsHelpOrVersion(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"copywriter"}, false},
		{[]string{"copywriter", "--help"}, true},
		{[]string{"copywriter", "-h"}, true},
		{[]string{"copywriter", "help"}, true},
		{[]string{"copywriter", "--version"}, true},
		{[]string{"copywriter", "-v"}, true},
		{[]string{"copywriter", "course"}, false},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			assert.Equal(t, tt.want, isHelpOrVersion(tt.args))
		})
	}
}

func TestOutputError(t *testing.T) {
	err := outputError(os.ErrPermission)
	assert.True(t, strings.HasPrefix(err.Error(), "[INTERNAL] "))
}
