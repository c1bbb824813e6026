package main

import (
	"fmt"

	"sidekick/internal/settings"
)

// =============================================================================
// SETTINGS METHODS (Bound to frontend)
// =============================================================================

// GetSettings returns the current user preferences.
func (a *App) GetSettings() settings.Settings {
	if a.settings == nil {
		return settings.Settings{}
	}
	return a.settings.Get()
}

// UpdateSettings replaces and persists the user preferences.
func (a *App) UpdateSettings(s settings.Settings) error {
	if a.settings == nil {
		return fmt.Errorf("settings manager not initialized")
	}
	return a.settings.Update(s)
}
