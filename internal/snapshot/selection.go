package snapshot

import (
	"fmt"
	"sync"

	"github.com/cusc/copywriter/internal/campaign"
)

// Tab is the active form.
type Tab string

const (
	TabCourses Tab = "courses"
	TabEvents  Tab = "events"
)

// ParseTab validates a tab name.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(s); t {
	case TabCourses, TabEvents:
		return t, nil
	}
	return "", fmt.Errorf("tab must be one of: courses, events")
}

// TabFor returns the tab that edits items of kind.
func TabFor(kind campaign.Kind) Tab {
	if kind == campaign.KindEvent {
		return TabEvents
	}
	return TabCourses
}

// Selection is the snapshot currently loaded into a form, plus the active tab.
type Selection struct {
	mu   sync.Mutex
	item *Item
	tab  Tab
	subs observers
}

// NewSelection starts on the courses tab with nothing selected.
func NewSelection() *Selection {
	return &Selection{tab: TabCourses}
}

// Load selects item and switches to the tab for its type.
func (s *Selection) Load(item Item) {
	s.mu.Lock()
	it := item.clone()
	s.item = &it
	s.tab = TabFor(item.Type)
	s.mu.Unlock()
	s.subs.notify()
}

// Clear drops the selected item. The tab is unchanged.
func (s *Selection) Clear() {
	s.mu.Lock()
	s.item = nil
	s.mu.Unlock()
	s.subs.notify()
}

// SetTab switches the active tab.
func (s *Selection) SetTab(tab Tab) {
	s.mu.Lock()
	s.tab = tab
	s.mu.Unlock()
	s.subs.notify()
}

// Tab returns the active tab.
func (s *Selection) Tab() Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tab
}

// Selected returns the selected item, if any.
func (s *Selection) Selected() (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.item == nil {
		return Item{}, false
	}
	return s.item.clone(), true
}

// CourseData decodes the selected item's payload. It returns nil when no
// course is selected.
func (s *Selection) CourseData() (*campaign.CompleteCourseData, error) {
	it, ok := s.Selected()
	if !ok || it.Type != campaign.KindCourse {
		return nil, nil
	}
	data, _, err := campaign.DecodeCourseData(it.Data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// EventData decodes the selected item's payload. It returns nil when no
// event is selected.
func (s *Selection) EventData() (*campaign.CompleteEventData, error) {
	it, ok := s.Selected()
	if !ok || it.Type != campaign.KindEvent {
		return nil, nil
	}
	data, _, err := campaign.DecodeEventData(it.Data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// Subscribe registers fn to run after every change.
func (s *Selection) Subscribe(fn func()) (unsubscribe func()) {
	return s.subs.add(fn)
}
