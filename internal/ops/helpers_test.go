package ops

import (
	"testing"

	"github.com/cusc/copywriter/internal/campaign"
	"github.com/cusc/copywriter/internal/snapshot"
)

func newStore(t *testing.T) *snapshot.Store {
	t.Helper()
	return snapshot.New(t.Context(), nil)
}

func pythonBasicsInfo() campaign.CourseInfo {
	return campaign.CourseInfo{
		CourseName:       "Python Basics",
		StartDate:        "2024-01-15",
		Duration:         "3 months",
		LearningMode:     campaign.ModeOnline,
		KeyHighlights:    []string{"Expert instructors", "  "},
		RegistrationLink: "https://x.test/reg",
		RelatedHashtags:  []string{"#Python", ""},
	}
}

func techDayInfo() campaign.EventInfo {
	return campaign.EventInfo{
		Name:       "Tech Day",
		Time:       "2024-05-01 08:00",
		Location:   "CUSC Hall",
		Highlights: []string{"Keynote", ""},
		Audience:   "Students",
		Offers:     []string{"Free lunch"},
	}
}
