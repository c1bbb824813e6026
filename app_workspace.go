package main

import (
	"fmt"
	"path/filepath"

	wailsrt "github.com/wailsapp/wails/v2/pkg/runtime"

	"sidekick/internal/contract"
	"sidekick/internal/workspace"
)

// =============================================================================
// WORKSPACE METHODS (Bound to frontend)
// =============================================================================

// GetWorkspaces returns snapshots for all registered workspaces in
// registration order.
func (a *App) GetWorkspaces() []workspace.State {
	if a.registry == nil {
		return []workspace.State{}
	}
	return a.registry.List()
}

// GetWorkspaceState returns the cached snapshot for one workspace, or nil
// if the id is unknown.
func (a *App) GetWorkspaceState(workspaceID string) *workspace.State {
	if a.registry == nil {
		return nil
	}
	state, ok := a.registry.Get(workspaceID)
	if !ok {
		return nil
	}
	return &state
}

// AddWorkspace registers a project directory. Adding an already-registered
// path returns the existing workspace.
func (a *App) AddWorkspace(rootPath string) (*workspace.State, error) {
	if a.registry == nil {
		return nil, fmt.Errorf("registry not initialized")
	}
	return a.registry.Add(rootPath)
}

// RemoveWorkspace deregisters a workspace. Returns false if unknown.
func (a *App) RemoveWorkspace(workspaceID string) bool {
	if a.registry == nil {
		return false
	}
	removed := a.registry.Remove(workspaceID)
	if removed && a.detector != nil {
		a.detector.Forget(workspaceID)
	}
	return removed
}

// RefreshWorkspace forces a re-read of a workspace's companion directory.
func (a *App) RefreshWorkspace(workspaceID string) {
	if a.registry != nil {
		a.registry.Refresh(workspaceID)
	}
}

// SubmitResponse commits the user's answer to the agent's pending question.
// When questionID is empty it is extracted from the current question text.
func (a *App) SubmitResponse(workspaceID, questionID, response string) bool {
	if a.registry == nil {
		return false
	}
	state, ok := a.registry.Get(workspaceID)
	if !ok {
		return false
	}

	companionDir := filepath.Join(state.Config.RootPath, a.cfg.ContractDir)
	projectName := state.Config.DisplayName
	if state.Project != nil && state.Project.ProjectName != "" {
		projectName = state.Project.ProjectName
	}

	if questionID == "" {
		questionID = contract.ExtractQuestionID(state.Question)
	}

	return contract.WriteUserResponse(a.log, a.clock, companionDir, projectName, questionID, response)
}

// GetWorkspaceLog returns the raw agent log Markdown for a workspace.
func (a *App) GetWorkspaceLog(workspaceID string) *string {
	if a.registry == nil {
		return nil
	}
	return a.registry.Log(workspaceID)
}

// FocusWorkspace asks the presentation layer to bring a workspace to the
// foreground (e.g. after a notification click) and clears the attention
// indicator.
func (a *App) FocusWorkspace(workspaceID string) {
	a.setAttention(false)
	wailsrt.EventsEmit(a.ctx, "workspace-focus", workspaceID)
	wailsrt.WindowShow(a.ctx)
}

// ClearAttention clears the attention indicator without focusing anything.
func (a *App) ClearAttention() {
	a.setAttention(false)
}
