package contract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sidekick/internal/clock"
)

// Parsed is the structural snapshot of a companion directory. Each field is
// nil when its file is absent or malformed; one bad artifact never affects
// the others.
type Parsed struct {
	Project   *ProjectConfig
	Status    *AgentStatus
	Handshake *Handshake
	Question  *string
	Log       *string
}

// ParseDir reads whatever contract files are present in dir. A missing
// directory is the normal "not yet connected" state and yields an empty
// snapshot with no error. Malformed files are logged and treated as absent.
func ParseDir(log zerolog.Logger, dir string) Parsed {
	var result Parsed

	if _, err := os.Stat(dir); err != nil {
		return result
	}

	result.Project = parseJSONFile[ProjectConfig](log, filepath.Join(dir, ProjectFile))
	result.Status = parseJSONFile[AgentStatus](log, filepath.Join(dir, StatusFile))
	result.Handshake = parseJSONFile[Handshake](log, filepath.Join(dir, HandshakeFile))
	result.Question = readTextFile(log, filepath.Join(dir, QuestionsFile))
	result.Log = readTextFile(log, filepath.Join(dir, LogFile))

	return result
}

// parseJSONFile reads and unmarshals a single JSON artifact. Returns nil if
// the file is absent or does not parse; the caller carries on without it.
func parseJSONFile[T any](log zerolog.Logger, path string) *T {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", path).Msg("failed to read contract file")
		}
		return nil
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Warn().Err(err).Str("file", path).Msg("malformed contract file, treating as absent")
		return nil
	}
	return &v
}

// readTextFile reads a free-form Markdown artifact. Returns nil if absent.
func readTextFile(log zerolog.Logger, path string) *string {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", path).Msg("failed to read contract file")
		}
		return nil
	}
	s := string(raw)
	return &s
}

// EnsureProjectFile makes sure dir contains a project.json, creating the
// directory and a fresh project record if needed. If the file already
// exists it is read back unchanged: the persisted workspaceId is the stable
// identity of the workspace and is never regenerated.
func EnsureProjectFile(log zerolog.Logger, clk clock.Clock, dir, projectName string) (*ProjectConfig, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create companion directory: %w", err)
	}

	path := filepath.Join(dir, ProjectFile)
	if raw, err := os.ReadFile(path); err == nil {
		var existing ProjectConfig
		if err := json.Unmarshal(raw, &existing); err == nil {
			return &existing, nil
		}
		log.Warn().Str("file", path).Msg("existing project.json is malformed, rewriting")
	}

	now := clk.Now().UTC().Format(time.RFC3339)
	project := &ProjectConfig{
		WorkspaceID: uuid.NewString(),
		ProjectName: projectName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	raw, err := json.MarshalIndent(project, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return nil, fmt.Errorf("failed to write project.json: %w", err)
	}

	return project, nil
}

// questionIDPattern matches the question heading the agent writes, e.g.
// "## Question (ID: 42)".
var questionIDPattern = regexp.MustCompile(`(?i)##\s*Question\s*\(ID:\s*([^)]+)\)`)

// ExtractQuestionID pulls the question id out of the question Markdown.
// Returns an empty string when there is no content or no matching heading.
func ExtractQuestionID(question *string) string {
	if question == nil {
		return ""
	}
	m := questionIDPattern.FindStringSubmatch(*question)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
