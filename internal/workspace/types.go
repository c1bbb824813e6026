package workspace

import "sidekick/internal/contract"

// Config is the registry metadata for a workspace. The workspaceId is
// adopted from the companion directory's project.json, never regenerated.
type Config struct {
	WorkspaceID string `json:"workspaceId"`
	DisplayName string `json:"displayName"`
	RootPath    string `json:"rootPath"`
	IconColor   string `json:"iconColor"`
	LastSeen    string `json:"lastSeen"`
}

// State is the composed, UI-facing snapshot for one workspace. It is
// replaced wholesale on every reload, never mutated field by field.
type State struct {
	Config      Config                  `json:"config"`
	Project     *contract.ProjectConfig `json:"project"`
	Status      *contract.AgentStatus   `json:"status"`
	Handshake   *contract.Handshake     `json:"handshake"`
	Question    *string                 `json:"question"`
	IsConnected bool                    `json:"isConnected"`
}
