package snapshot

import (
	"context"
	"crypto/rand"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cusc/copywriter/internal/campaign"
	"github.com/cusc/copywriter/internal/errors"
)

var errNotArray = stderrors.New("snapshot payload is not a JSON array")

// Backend is synchronous durable key/value storage.
// *db.Storage satisfies it.
type Backend interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// batchBackend is implemented by backends that can write several keys atomically.
type batchBackend interface {
	SetItems(ctx context.Context, items map[string]string) error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the createdAt time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store owns the saved snapshot list. In-memory state is authoritative;
// mutations mark it dirty and writes happen in Flush or the Run loop.
type Store struct {
	mu      sync.Mutex
	items   []Item
	dirty   bool
	backend Backend
	entropy io.Reader
	now     func() time.Time
	logger  *slog.Logger
	subs    observers

	// writeMu serializes snapshot-and-write so writes land in mutation order.
	writeMu sync.Mutex
	signal  chan struct{}
}

// New creates a store and loads persisted items from backend.
// A nil backend, or one that fails on read, leaves the store memory-only.
func New(ctx context.Context, backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
		logger:  slog.Default(),
		signal:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.backend == nil {
		s.logger.Warn("snapshot storage unavailable, keeping snapshots in memory only")
		return s
	}
	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	version, hasVersion, err := s.backend.GetItem(ctx, VersionKey)
	if err != nil {
		s.logger.Warn("snapshot storage read failed, keeping snapshots in memory only", "error", err)
		s.backend = nil
		return
	}
	raw, hasData, err := s.backend.GetItem(ctx, DataKey)
	if err != nil {
		s.logger.Warn("snapshot storage read failed, keeping snapshots in memory only", "error", err)
		s.backend = nil
		return
	}

	if hasData {
		items, dropped, err := decodeItems([]byte(raw))
		if err != nil {
			s.logger.Error("discarding unreadable snapshot data", "error", err)
			items = nil
		}
		if dropped > 0 {
			s.logger.Warn("dropped invalid snapshots", "count", dropped)
		}
		s.items = items
		s.logger.Debug("loaded snapshots", "count", len(items))
	}

	if !hasVersion {
		if err := s.backend.SetItem(ctx, VersionKey, Version); err != nil {
			s.logger.Warn("writing snapshot schema version failed", "error", err)
		}
	} else if version != Version {
		s.logger.Debug("snapshot schema version differs", "stored", version, "current", Version)
	}
}

// Persistent reports whether the store has a working backend.
func (s *Store) Persistent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend != nil
}

// Add saves a snapshot. An existing item with the same trimmed, case-insensitive
// title and the same type is overwritten in place, keeping its id and createdAt.
// New items are prepended.
func (s *Store) Add(title string, kind campaign.Kind, data json.RawMessage) (Item, error) {
	item, _, err := s.Upsert(title, kind, data)
	return item, err
}

// Upsert is Add that also reports whether an existing item was overwritten.
// The lookup and the write happen under one lock.
func (s *Store) Upsert(title string, kind campaign.Kind, data json.RawMessage) (Item, bool, error) {
	if strings.TrimSpace(title) == "" {
		return Item{}, false, errors.NewInvalidRequest("title is required")
	}
	kind, err := campaign.ParseKind(string(kind))
	if err != nil {
		return Item{}, false, errors.NewInvalidRequest(err.Error())
	}

	s.mu.Lock()
	key := dedupKey(title, kind)
	for i := range s.items {
		if dedupKey(s.items[i].Title, s.items[i].Type) == key {
			s.items[i].Title = title
			s.items[i].Data = cloneRaw(data)
			out := s.items[i].clone()
			s.markDirtyLocked()
			s.mu.Unlock()
			s.logger.Debug("snapshot exists, updated in place", "id", out.ID, "title", title)
			s.subs.notify()
			return out, true, nil
		}
	}

	now := s.now()
	id, err := ulid.New(ulid.Timestamp(now), s.entropy)
	if err != nil {
		s.mu.Unlock()
		return Item{}, false, errors.NewInternal(err)
	}
	item := Item{
		ID:        id.String(),
		Title:     title,
		CreatedAt: now.UTC().Format(TimeLayout),
		Type:      kind,
		Data:      cloneRaw(data),
	}
	s.items = append([]Item{item}, s.items...)
	s.markDirtyLocked()
	s.mu.Unlock()

	s.logger.Debug("snapshot added", "id", item.ID, "title", title)
	s.subs.notify()
	return item.clone(), false, nil
}

// Update applies a partial update to the item with id.
func (s *Store) Update(id string, patch Patch) (Item, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return Item{}, errors.NewInvalidRequest("title must not be empty")
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return Item{}, errors.NewNotFound("snapshot", id)
	}
	if patch.Title != nil {
		s.items[i].Title = *patch.Title
	}
	if patch.Data != nil {
		s.items[i].Data = cloneRaw(patch.Data)
	}
	out := s.items[i].clone()
	s.markDirtyLocked()
	s.mu.Unlock()

	s.subs.notify()
	return out, nil
}

// Delete removes the item with id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return errors.NewNotFound("snapshot", id)
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	s.markDirtyLocked()
	s.mu.Unlock()

	s.subs.notify()
	return nil
}

// Get returns a copy of the item with id.
func (s *Store) Get(id string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return Item{}, false
	}
	return s.items[i].clone(), true
}

// Find returns the item that a save with title and kind would overwrite.
func (s *Store) Find(title string, kind campaign.Kind) (Item, bool) {
	key := dedupKey(title, kind)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if dedupKey(it.Title, it.Type) == key {
			return it.clone(), true
		}
	}
	return Item{}, false
}

// Items returns a copy of all items, newest first.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// ListByType returns items of one kind, preserving order.
func (s *Store) ListByType(kind campaign.Kind) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		if it.Type == kind {
			out = append(out, it.clone())
		}
	}
	return out
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Clear removes every item and deletes the persisted data key.
func (s *Store) Clear(ctx context.Context) {
	s.writeMu.Lock()
	s.mu.Lock()
	s.items = nil
	s.dirty = false
	backend := s.backend
	s.mu.Unlock()

	if backend != nil {
		if err := backend.RemoveItem(ctx, DataKey); err != nil {
			s.logger.Warn("removing persisted snapshots failed", "error", err)
		}
	}
	s.writeMu.Unlock()

	s.logger.Debug("cleared all snapshots")
	s.subs.notify()
}

// Export returns all items as an indented JSON array, along with the number
// of items in that array.
func (s *Store) Export() ([]byte, int, error) {
	items := s.Items()
	if items == nil {
		items = []Item{}
	}
	payload, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, 0, err
	}
	return payload, len(items), nil
}

// Import replaces all items with the valid entries of a JSON array.
// Malformed JSON leaves the store untouched.
func (s *Store) Import(raw []byte) (int, error) {
	items, dropped, err := decodeItems(raw)
	if err != nil {
		return 0, errors.NewInvalidRequest("import payload must be a JSON array of snapshots: " + err.Error())
	}
	if dropped > 0 {
		s.logger.Warn("import skipped invalid snapshots", "count", dropped)
	}

	s.mu.Lock()
	s.items = items
	s.markDirtyLocked()
	s.mu.Unlock()

	s.subs.notify()
	return len(items), nil
}

// Subscribe registers fn to run after every mutation.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	return s.subs.add(fn)
}

func (s *Store) indexLocked(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) markDirtyLocked() {
	s.dirty = true
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.clone()
	}
	return out
}
