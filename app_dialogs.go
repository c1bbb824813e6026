package main

import (
	wailsrt "github.com/wailsapp/wails/v2/pkg/runtime"
)

// =============================================================================
// DIALOG WRAPPERS (Go-only runtime functions exposed to frontend)
// =============================================================================

// SelectWorkspaceFolder opens a directory picker for adding a workspace.
// Returns an empty string if the user cancels.
func (a *App) SelectWorkspaceFolder() (string, error) {
	return wailsrt.OpenDirectoryDialog(a.ctx, wailsrt.OpenDialogOptions{
		Title: "Select Workspace",
	})
}

// OpenFolder reveals a workspace root in the system file manager.
func (a *App) OpenFolder(rootPath string) {
	wailsrt.BrowserOpenURL(a.ctx, "file://"+rootPath)
}

// ConfirmDialog shows a confirmation dialog (used before removing a
// workspace).
func (a *App) ConfirmDialog(title, message string) (bool, error) {
	result, err := wailsrt.MessageDialog(a.ctx, wailsrt.MessageDialogOptions{
		Type:    wailsrt.QuestionDialog,
		Title:   title,
		Message: message,
	})
	return result == "Yes", err
}
