package main

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	wailsrt "github.com/wailsapp/wails/v2/pkg/runtime"

	"sidekick/internal/bridge"
	"sidekick/internal/clock"
	"sidekick/internal/config"
	"sidekick/internal/logging"
	"sidekick/internal/notify"
	"sidekick/internal/settings"
	"sidekick/internal/store"
	"sidekick/internal/watcher"
	"sidekick/internal/workspace"
)

// App struct holds the application state
type App struct {
	ctx      context.Context
	log      zerolog.Logger
	clock    clock.Clock
	cfg      *config.Config
	settings *settings.Manager
	store    *store.WorkspaceStore
	registry *workspace.Registry
	watcher  *watcher.Watcher
	detector *notify.Detector
	bridge   *bridge.Bridge

	attentionMu sync.Mutex
	attention   bool
}

// NewApp creates a new App application struct
func NewApp() *App {
	return &App{}
}

// =============================================================================
// STARTUP - Single Initialization Chain
// =============================================================================

// startup is called when the app starts. The context is saved so we can
// call the runtime methods.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.clock = clock.System{}

	// Step 1: Config, logging, settings
	a.initConfigAndLogging()

	// Step 2: Durable store + registry with eager initial snapshots
	a.initRegistry()

	// Step 3: File watcher, then watch every registered workspace
	a.initWatcher()

	// Step 4: Event bridge for external subscribers
	a.initBridge()

	// Step 5: Emit initial state to frontend
	a.emitInitialState()

	a.log.Info().Msg("sidekick initialized")
}

func (a *App) initConfigAndLogging() {
	configDir, err := config.HomeDir()
	if err != nil {
		// Without a home directory we still run, just unconfigured and
		// with console-only logging.
		configDir = "."
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		cfg = config.Default()
	}
	a.cfg = cfg

	a.log = logging.New(configDir, cfg.LogLevel)
	a.settings = settings.NewManager(configDir)
}

func (a *App) initRegistry() {
	configDir, err := config.HomeDir()
	if err != nil {
		configDir = "."
	}

	st, err := store.Open(filepath.Join(configDir, "sidekick.db"))
	if err != nil {
		a.log.Error().Err(err).Msg("failed to open workspace store")
		return
	}
	a.store = st

	a.detector = notify.NewDetector(a.log, &eventNotifier{app: a})

	a.registry = workspace.NewRegistry(a.log, a.clock, st, a.cfg.ContractDir)
	a.registry.SetHooks(a.onWorkspaceUpdated, a.detector.Observe)

	if err := a.registry.Init(); err != nil {
		a.log.Error().Err(err).Msg("failed to initialize workspace registry")
	}
}

func (a *App) initWatcher() {
	if a.registry == nil {
		return
	}

	w, err := watcher.New(a.log, a.cfg.ContractDir, a.cfg.Debounce(), a.registry.Refresh)
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to initialize file watcher")
		return
	}
	a.watcher = w
	a.registry.SetWatcher(w)
	a.registry.WatchAll()
}

func (a *App) initBridge() {
	if !a.cfg.Bridge.Enabled {
		return
	}
	a.bridge = bridge.New(a.log, a.cfg.Bridge.Port)
	a.bridge.Start()
}

func (a *App) emitInitialState() {
	if a.registry == nil {
		return
	}
	for _, state := range a.registry.List() {
		wailsrt.EventsEmit(a.ctx, "workspace-updated", state)
	}
}

// shutdown is called when the app is closing
func (a *App) shutdown(ctx context.Context) {
	if a.bridge != nil {
		a.bridge.Stop()
	}
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}

// =============================================================================
// EVENT PLUMBING
// =============================================================================

// onWorkspaceUpdated pushes a fresh snapshot to the frontend and the bridge.
func (a *App) onWorkspaceUpdated(state workspace.State) {
	wailsrt.EventsEmit(a.ctx, "workspace-updated", state)
	if a.bridge != nil {
		a.bridge.Broadcast("workspace-updated", state)
	}
}

// setAttention flips the attention indicator (tray badge on the frontend).
func (a *App) setAttention(on bool) {
	a.attentionMu.Lock()
	changed := a.attention != on
	a.attention = on
	a.attentionMu.Unlock()

	if changed {
		wailsrt.EventsEmit(a.ctx, "attention-changed", on)
	}
}

// eventNotifier delivers transition alerts as runtime events the frontend
// turns into desktop notifications. Honors the notifications setting.
type eventNotifier struct {
	app *App
}

func (n *eventNotifier) Notify(workspaceID, displayName, body string) {
	if !n.app.settings.NotificationsEnabled() {
		return
	}
	n.app.setAttention(true)
	wailsrt.EventsEmit(n.app.ctx, "notification", map[string]any{
		"workspaceId": workspaceID,
		"title":       "Sidekick: " + displayName,
		"body":        body,
	})
	if n.app.bridge != nil {
		n.app.bridge.Broadcast("notification", map[string]any{
			"workspaceId": workspaceID,
			"title":       displayName,
			"body":        body,
		})
	}
}
