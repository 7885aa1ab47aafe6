package ops

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cusc/copywriter/internal/campaign"
	"github.com/cusc/copywriter/internal/errors"
)

func TestSaveCourse_KeepsFormUnfiltered(t *testing.T) {
	store := newStore(t)
	info := pythonBasicsInfo()
	info.CourseName = "  Python Basics  "

	out, err := SaveCourse(store, SaveCourseInput{CourseInfo: info, ChannelID: "main-fanpage"})
	require.NoError(t, err)
	assert.Equal(t, "Python Basics", out.Title)
	assert.False(t, out.Replaced)

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out.Data, &payload))
	assert.Contains(t, payload, "courseInfo")
	assert.JSONEq(t, "null", string(payload["selectedTemplate"]))

	fetched, err := Fetch(store, FetchInput{ID: out.ID})
	require.NoError(t, err)
	require.NotNil(t, fetched.Course)
	assert.False(t, fetched.Legacy)
	assert.Equal(t, []string{"Expert instructors", "  "}, fetched.Course.CourseInfo.KeyHighlights)
	assert.Equal(t, "main-fanpage", fetched.Course.SelectedChannel.ID)
	assert.Nil(t, fetched.Course.SelectedTemplate)
}

func TestSaveCourse_Deduplicates(t *testing.T) {
	store := newStore(t)
	first, err := SaveCourse(store, SaveCourseInput{CourseInfo: pythonBasicsInfo()})
	require.NoError(t, err)

	info := pythonBasicsInfo()
	info.CourseName = "python basics"
	info.Duration = "6 months"
	second, err := SaveCourse(store, SaveCourseInput{CourseInfo: info})
	require.NoError(t, err)

	assert.True(t, second.Replaced)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, 1, store.Len())

	fetched, err := Fetch(store, FetchInput{ID: first.ID})
	require.NoError(t, err)
	assert.Equal(t, "6 months", fetched.Course.CourseInfo.Duration)
}

func TestSaveCourse_RequiresName(t *testing.T) {
	info := pythonBasicsInfo()
	info.CourseName = "   "
	_, err := SaveCourse(newStore(t), SaveCourseInput{CourseInfo: info})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestSaveEvent(t *testing.T) {
	store := newStore(t)
	out, err := SaveEvent(store, SaveEventInput{EventInfo: techDayInfo(), TemplateID: "benefit-driven"})
	require.NoError(t, err)
	assert.Equal(t, campaign.KindEvent, out.Type)

	_, err = SaveEvent(store, SaveEventInput{EventInfo: techDayInfo(), TemplateID: "aida"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestSave_Raw(t *testing.T) {
	store := newStore(t)
	out, err := Save(store, SaveInput{Title: "Legacy", Type: "course", Data: json.RawMessage(`{"courseName":"Legacy"}`)})
	require.NoError(t, err)

	fetched, err := Fetch(store, FetchInput{ID: out.ID})
	require.NoError(t, err)
	assert.True(t, fetched.Legacy)
	assert.Equal(t, "Legacy", fetched.Course.CourseInfo.CourseName)

	_, err = Save(store, SaveInput{Title: "x", Type: "course", Data: json.RawMessage(`{nope`)})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Save(store, SaveInput{Title: "x", Type: "webinar"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}
