// Package settings persists user preferences in the Sidekick home
// directory. Engine tunables live in the config package; this is only the
// small set of toggles the UI edits.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// SettingsFile is the preferences file inside the Sidekick home directory.
const SettingsFile = "settings.json"

// Settings holds user preferences.
type Settings struct {
	Theme                string `json:"theme"`                // "dark", "light", "system"
	NotificationsEnabled bool   `json:"notificationsEnabled"` // desktop alerts on agent transitions
	LaunchAtLogin        bool   `json:"launchAtLogin"`
}

// Manager handles settings persistence.
type Manager struct {
	configPath string
	settings   *Settings
	mu         sync.RWMutex
}

// NewManager creates a settings manager rooted at configPath and loads any
// existing settings file. A missing or corrupt file yields defaults.
func NewManager(configPath string) *Manager {
	m := &Manager{
		configPath: configPath,
		settings:   defaultSettings(),
	}
	m.load()
	return m
}

func defaultSettings() *Settings {
	return &Settings{
		Theme:                "system",
		NotificationsEnabled: true,
	}
}

func (m *Manager) load() {
	raw, err := os.ReadFile(filepath.Join(m.configPath, SettingsFile))
	if err != nil {
		return
	}
	var s Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return
	}
	m.settings = &s
}

// Get returns a copy of the current settings.
func (m *Manager) Get() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.settings
}

// Update replaces the settings and persists them.
func (m *Manager) Update(s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = &s

	raw, err := json.MarshalIndent(m.settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(m.configPath, SettingsFile), raw, 0644)
}

// NotificationsEnabled reports whether transition alerts should be shown.
func (m *Manager) NotificationsEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings.NotificationsEnabled
}
