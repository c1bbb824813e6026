// Package workspace maintains the registry of tracked workspaces: the
// durable list of registered roots plus the in-memory snapshot cache the UI
// reads. All contract parsing goes through the contract package; all
// persistence goes through the Store interface.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"sidekick/internal/clock"
	"sidekick/internal/contract"
)

// Store persists workspace configs across restarts.
type Store interface {
	Save(cfg Config) error
	Delete(workspaceID string) (bool, error)
	Get(workspaceID string) (*Config, error)
	GetByRootPath(rootPath string) (*Config, error)
	List() ([]Config, error)
}

// Watcher owns filesystem watches for registered workspaces. Exactly one
// watch exists per workspace; Remove tears it down before the registry
// entry is deleted.
type Watcher interface {
	Watch(workspaceID, rootPath string) error
	Unwatch(workspaceID string)
}

// UpdateFunc receives every new snapshot (push channel to the presentation
// layer and the event bridge).
type UpdateFunc func(State)

// StatusFunc receives the freshly loaded agent status after each refresh,
// before the update is pushed. The transition detector hangs off this hook.
type StatusFunc func(workspaceID, displayName string, status *contract.AgentStatus)

// Registry mediates all workspace add/remove/refresh operations.
type Registry struct {
	log         zerolog.Logger
	clk         clock.Clock
	store       Store
	contractDir string

	watcher  Watcher
	onUpdate UpdateFunc
	onStatus StatusFunc

	mu     sync.RWMutex
	states map[string]*State
	order  []string

	// refreshes serializes Refresh per workspace id: a refresh requested
	// while one is already in flight is absorbed by it instead of
	// interleaving file reads.
	refreshes singleflight.Group
}

// NewRegistry creates a registry backed by the given store. Watcher and
// hooks are wired separately before Init.
func NewRegistry(log zerolog.Logger, clk clock.Clock, st Store, contractDir string) *Registry {
	return &Registry{
		log:         log,
		clk:         clk,
		store:       st,
		contractDir: contractDir,
		states:      make(map[string]*State),
	}
}

// SetWatcher connects the filesystem watcher.
func (r *Registry) SetWatcher(w Watcher) {
	r.watcher = w
}

// SetHooks connects the push-update and status-transition hooks.
func (r *Registry) SetHooks(onUpdate UpdateFunc, onStatus StatusFunc) {
	r.onUpdate = onUpdate
	r.onStatus = onStatus
}

// Init loads all persisted configs and eagerly computes an initial snapshot
// for each. Watches are not started here; call WatchAll once the watcher is
// ready.
func (r *Registry) Init() error {
	configs, err := r.store.List()
	if err != nil {
		return fmt.Errorf("failed to load persisted workspaces: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cfg := range configs {
		state := r.loadState(cfg)
		r.states[cfg.WorkspaceID] = &state
		r.order = append(r.order, cfg.WorkspaceID)
	}
	r.log.Info().Int("workspaces", len(configs)).Msg("workspace registry initialized")
	return nil
}

// WatchAll starts a watch for every registered workspace. Watch failures
// are logged and leave that workspace without live updates; they never
// abort startup.
func (r *Registry) WatchAll() {
	if r.watcher == nil {
		return
	}
	for _, state := range r.List() {
		if err := r.watcher.Watch(state.Config.WorkspaceID, state.Config.RootPath); err != nil {
			r.log.Warn().Err(err).
				Str("workspace", state.Config.WorkspaceID).
				Msg("failed to watch workspace")
		}
	}
}

// List returns snapshots for all known workspaces in registration order.
func (r *Registry) List() []State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	states := make([]State, 0, len(r.order))
	for _, id := range r.order {
		if s, ok := r.states[id]; ok {
			states = append(states, *s)
		}
	}
	return states
}

// Get returns the cached snapshot for a workspace id.
func (r *Registry) Get(workspaceID string) (State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.states[workspaceID]
	if !ok {
		return State{}, false
	}
	return *s, true
}

// Add registers a workspace by root path. Registering an already-known path
// is idempotent and returns the existing snapshot. The workspace adopts the
// id persisted in the companion directory's project.json, creating that
// record on first registration.
func (r *Registry) Add(rootPath string) (*State, error) {
	rootPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("invalid workspace path: %w", err)
	}
	info, err := os.Stat(rootPath)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("workspace path does not exist: %s", rootPath)
	}

	if existing, err := r.store.GetByRootPath(rootPath); err == nil && existing != nil {
		if state, ok := r.Get(existing.WorkspaceID); ok {
			return &state, nil
		}
	}

	companionDir := filepath.Join(rootPath, r.contractDir)
	project, err := contract.EnsureProjectFile(r.log, r.clk, companionDir, filepath.Base(rootPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize companion directory: %w", err)
	}

	cfg := Config{
		WorkspaceID: project.WorkspaceID,
		DisplayName: project.ProjectName,
		RootPath:    rootPath,
		IconColor:   contract.RandomColor(),
		LastSeen:    r.now(),
	}
	if err := r.store.Save(cfg); err != nil {
		return nil, fmt.Errorf("failed to persist workspace: %w", err)
	}

	state := r.loadState(cfg)
	r.mu.Lock()
	r.states[cfg.WorkspaceID] = &state
	r.order = append(r.order, cfg.WorkspaceID)
	r.mu.Unlock()

	if r.watcher != nil {
		if err := r.watcher.Watch(cfg.WorkspaceID, rootPath); err != nil {
			r.log.Warn().Err(err).Str("workspace", cfg.WorkspaceID).Msg("failed to watch workspace")
		}
	}

	r.log.Info().Str("workspace", cfg.WorkspaceID).Str("root", rootPath).Msg("workspace added")
	r.emitUpdate(state)

	return &state, nil
}

// Remove deregisters a workspace: watch teardown first, then the persisted
// entry, then the cache. Returns false if the id is unknown.
func (r *Registry) Remove(workspaceID string) bool {
	if _, ok := r.Get(workspaceID); !ok {
		return false
	}

	if r.watcher != nil {
		r.watcher.Unwatch(workspaceID)
	}

	if _, err := r.store.Delete(workspaceID); err != nil {
		r.log.Error().Err(err).Str("workspace", workspaceID).Msg("failed to delete persisted workspace")
	}

	r.mu.Lock()
	delete(r.states, workspaceID)
	for i, id := range r.order {
		if id == workspaceID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.log.Info().Str("workspace", workspaceID).Msg("workspace removed")
	return true
}

// Refresh re-parses a workspace's companion directory and replaces its
// snapshot. Safe to call redundantly; at most one refresh runs per
// workspace at a time, and concurrent requests share the in-flight one.
func (r *Registry) Refresh(workspaceID string) {
	r.refreshes.Do(workspaceID, func() (any, error) {
		r.refresh(workspaceID)
		return nil, nil
	})
}

func (r *Registry) refresh(workspaceID string) {
	r.mu.RLock()
	current, ok := r.states[workspaceID]
	if !ok {
		r.mu.RUnlock()
		// Workspace was removed (or the app is shutting down) while a
		// refresh was pending.
		return
	}
	cfg := current.Config
	r.mu.RUnlock()

	cfg.LastSeen = r.now()
	state := r.loadState(cfg)

	if err := r.store.Save(cfg); err != nil {
		r.log.Error().Err(err).Str("workspace", workspaceID).Msg("failed to persist lastSeen")
	}

	r.mu.Lock()
	r.states[workspaceID] = &state
	r.mu.Unlock()

	if r.onStatus != nil {
		r.onStatus(workspaceID, cfg.DisplayName, state.Status)
	}
	r.emitUpdate(state)
}

// Log returns the raw agent log Markdown for a workspace, or nil if the
// workspace is unknown or the log file is absent.
func (r *Registry) Log(workspaceID string) *string {
	state, ok := r.Get(workspaceID)
	if !ok {
		return nil
	}
	parsed := contract.ParseDir(r.log, filepath.Join(state.Config.RootPath, r.contractDir))
	return parsed.Log
}

// loadState composes the full snapshot for a config. Missing artifacts get
// defaults; the connectivity flag reports whether the companion directory
// exists at all.
func (r *Registry) loadState(cfg Config) State {
	companionDir := filepath.Join(cfg.RootPath, r.contractDir)
	parsed := contract.ParseDir(r.log, companionDir)

	_, err := os.Stat(companionDir)
	isConnected := err == nil

	status := parsed.Status
	if status == nil {
		status = contract.DefaultStatus(cfg.WorkspaceID, r.now())
	}
	handshake := parsed.Handshake
	if handshake == nil {
		handshake = contract.DefaultHandshake(cfg.WorkspaceID)
	}

	return State{
		Config:      cfg,
		Project:     parsed.Project,
		Status:      status,
		Handshake:   handshake,
		Question:    parsed.Question,
		IsConnected: isConnected,
	}
}

func (r *Registry) emitUpdate(state State) {
	if r.onUpdate != nil {
		r.onUpdate(state)
	}
}

func (r *Registry) now() string {
	return r.clk.Now().UTC().Format(time.RFC3339)
}
