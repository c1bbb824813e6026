// Package contract reads and writes the files exchanged with an external
// coding agent through a workspace's companion directory. The agent writes
// status, handshake and question files; Sidekick writes the project record
// once and the user's response on demand.
package contract

// DirName is the well-known companion directory inside a workspace root.
// The external agent writes its contract files here.
const DirName = ".cursor_companion"

// Contract file names inside the companion directory.
const (
	ProjectFile   = "project.json"
	StatusFile    = "agent-status.json"
	HandshakeFile = "handshake.json"
	QuestionsFile = "agent-questions.md"
	LogFile       = "agent-log.md"
	ResponseFile  = "user-response.md"
)

// AgentState is the agent's self-reported operating state.
type AgentState string

const (
	StateIdle           AgentState = "idle"
	StateThinking       AgentState = "thinking"
	StateEditing        AgentState = "editing"
	StateTesting        AgentState = "testing"
	StateWaitingForUser AgentState = "waiting_for_user"
	StateDone           AgentState = "done"
	StateError          AgentState = "error"
)

// QuestionState tracks the lifecycle of a pending question.
type QuestionState string

const (
	QuestionNone         QuestionState = "none"
	QuestionAsked        QuestionState = "asked"
	QuestionAcknowledged QuestionState = "acknowledged"
	QuestionAnswered     QuestionState = "answered"
	QuestionConsumed     QuestionState = "consumed"
)

// ProjectConfig is the project record written once into the companion
// directory on registration. The workspaceId inside it is the source of
// truth for the workspace's identity.
type ProjectConfig struct {
	WorkspaceID string `json:"workspaceId"`
	ProjectName string `json:"projectName"`
	RepoSlug    string `json:"repoSlug,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// AgentProgress is an optional step counter inside AgentStatus.
type AgentProgress struct {
	CurrentStep int    `json:"currentStep"`
	TotalSteps  int    `json:"totalSteps"`
	StepLabel   string `json:"stepLabel"`
}

// AgentStatus is the agent's self-reported status. Produced entirely by the
// external agent; Sidekick only reads it.
type AgentStatus struct {
	WorkspaceID string         `json:"workspaceId"`
	State       AgentState     `json:"state"`
	TaskTitle   string         `json:"taskTitle"`
	Summary     string         `json:"summary"`
	Progress    *AgentProgress `json:"progress"`
	LastUpdated string         `json:"lastUpdated"`
	ActiveFiles []string       `json:"activeFiles"`
	LastError   *string        `json:"lastError"`
}

// Handshake coordinates a single pending question between agent and user.
// The agent drives every transition except "answered", which Sidekick writes.
type Handshake struct {
	WorkspaceID             string        `json:"workspaceId"`
	QuestionID              string        `json:"questionId"`
	QuestionState           QuestionState `json:"questionState"`
	LastQuestionUpdated     string        `json:"lastQuestionUpdated"`
	LastUserResponseUpdated string        `json:"lastUserResponseUpdated"`
}

// DefaultStatus returns the status used when agent-status.json is absent.
// A missing file is the normal "agent has never run" state, not an error.
func DefaultStatus(workspaceID, lastUpdated string) *AgentStatus {
	return &AgentStatus{
		WorkspaceID: workspaceID,
		State:       StateIdle,
		ActiveFiles: []string{},
		LastUpdated: lastUpdated,
	}
}

// DefaultHandshake returns the handshake used when handshake.json is absent.
func DefaultHandshake(workspaceID string) *Handshake {
	return &Handshake{
		WorkspaceID:   workspaceID,
		QuestionState: QuestionNone,
	}
}
