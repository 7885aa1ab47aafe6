// Package auth is the local login gate. It is a convenience gate for a
// single-user tool, not a security boundary.
package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/cusc/copywriter/internal/config"
	"github.com/cusc/copywriter/internal/errors"
)

// StorageKey is where the authenticated state is persisted.
const StorageKey = "auth-storage"

// persistVersion is the envelope version written next to the state.
const persistVersion = 0

var builtinUsers = []config.User{
	{Username: "thanh", Password: "thanh123"},
	{Username: "xuan", Password: "muipun123"},
}

// Backend is synchronous durable key/value storage.
type Backend interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// User is the authenticated identity.
type User struct {
	Username string `json:"username"`
}

type state struct {
	User            *User `json:"user"`
	IsAuthenticated bool  `json:"isAuthenticated"`
}

type envelope struct {
	State   state `json:"state"`
	Version int   `json:"version"`
}

// Gate checks credentials against a fixed allow-list and remembers the
// logged-in user across runs.
type Gate struct {
	mu      sync.Mutex
	users   map[string]string
	backend Backend
	logger  *slog.Logger
	state   state
}

// New builds a gate over the built-in accounts plus extra, and restores any
// persisted login from backend. backend may be nil.
func New(ctx context.Context, backend Backend, extra []config.User, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gate{
		users:   make(map[string]string, len(builtinUsers)+len(extra)),
		backend: backend,
		logger:  logger,
	}
	for _, u := range append(append([]config.User{}, builtinUsers...), extra...) {
		if name := strings.TrimSpace(u.Username); name != "" {
			g.users[name] = u.Password
		}
	}
	g.restore(ctx)
	return g
}

func (g *Gate) restore(ctx context.Context) {
	if g.backend == nil {
		return
	}
	raw, ok, err := g.backend.GetItem(ctx, StorageKey)
	if err != nil {
		g.logger.Warn("reading auth state failed", "error", err)
		return
	}
	if !ok {
		return
	}
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		g.logger.Warn("discarding unreadable auth state", "error", err)
		return
	}
	// A persisted user that is no longer allowed is not restored.
	if env.State.User != nil {
		if _, known := g.users[env.State.User.Username]; !known {
			return
		}
	}
	g.state = env.State
}

// Verify reports whether the credentials match an allowed account.
// It does not change the gate's state.
func (g *Gate) Verify(username, password string) bool {
	want, ok := g.users[username]
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(want)) == 1
}

// Login authenticates and persists the logged-in user.
func (g *Gate) Login(ctx context.Context, username, password string) (User, error) {
	if !g.Verify(username, password) {
		return User{}, errors.NewUnauthorized("invalid username or password")
	}

	user := User{Username: username}
	g.mu.Lock()
	g.state = state{User: &user, IsAuthenticated: true}
	g.mu.Unlock()

	g.persist(ctx, envelope{State: state{User: &user, IsAuthenticated: true}, Version: persistVersion})
	g.logger.Info("logged in", "user", username)
	return user, nil
}

// Logout forgets the logged-in user and removes the persisted record.
func (g *Gate) Logout(ctx context.Context) {
	g.mu.Lock()
	g.state = state{}
	g.mu.Unlock()

	if g.backend != nil {
		if err := g.backend.RemoveItem(ctx, StorageKey); err != nil {
			g.logger.Warn("removing auth state failed", "error", err)
		}
	}
}

// Current returns the logged-in user.
func (g *Gate) Current() (User, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.state.IsAuthenticated || g.state.User == nil {
		return User{}, false
	}
	return *g.state.User, true
}

// CheckAuth reports whether someone is logged in.
func (g *Gate) CheckAuth() bool {
	_, ok := g.Current()
	return ok
}

// Require returns UNAUTHORIZED unless someone is logged in.
func (g *Gate) Require() (User, error) {
	user, ok := g.Current()
	if !ok {
		return User{}, errors.NewUnauthorized("login required: run `copywriter login`")
	}
	return user, nil
}

func (g *Gate) persist(ctx context.Context, env envelope) {
	if g.backend == nil {
		return
	}
	data, err := json.Marshal(env)
	if err != nil {
		g.logger.Warn("encoding auth state failed", "error", err)
		return
	}
	if err := g.backend.SetItem(ctx, StorageKey, string(data)); err != nil {
		g.logger.Warn("saving auth state failed", "error", err)
	}
}
