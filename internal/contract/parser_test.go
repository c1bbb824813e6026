package contract

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sidekick/internal/clock"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestParseDir_MissingDirectory(t *testing.T) {
	parsed := ParseDir(testLogger(), filepath.Join(t.TempDir(), "nope", DirName))

	assert.Nil(t, parsed.Project)
	assert.Nil(t, parsed.Status)
	assert.Nil(t, parsed.Handshake)
	assert.Nil(t, parsed.Question)
	assert.Nil(t, parsed.Log)
}

func TestParseDir_AllArtifacts(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, ProjectFile, `{
		"workspaceId": "ws-1",
		"projectName": "Demo",
		"createdAt": "2026-01-01T00:00:00Z",
		"updatedAt": "2026-01-02T00:00:00Z"
	}`)
	writeFile(t, dir, StatusFile, `{
		"workspaceId": "ws-1",
		"state": "editing",
		"taskTitle": "Add auth",
		"summary": "Editing login handler",
		"progress": {"currentStep": 2, "totalSteps": 5, "stepLabel": "wiring"},
		"lastUpdated": "2026-01-02T00:00:00Z",
		"activeFiles": ["auth.go"],
		"lastError": null
	}`)
	writeFile(t, dir, HandshakeFile, `{
		"workspaceId": "ws-1",
		"questionId": "7",
		"questionState": "asked",
		"lastQuestionUpdated": "2026-01-02T00:00:00Z",
		"lastUserResponseUpdated": ""
	}`)
	writeFile(t, dir, QuestionsFile, "## Question (ID: 7)\n\nWhich option?\n")
	writeFile(t, dir, LogFile, "did things\n")

	parsed := ParseDir(testLogger(), dir)

	require.NotNil(t, parsed.Project)
	assert.Equal(t, "ws-1", parsed.Project.WorkspaceID)
	assert.Equal(t, "Demo", parsed.Project.ProjectName)

	require.NotNil(t, parsed.Status)
	assert.Equal(t, StateEditing, parsed.Status.State)
	require.NotNil(t, parsed.Status.Progress)
	assert.Equal(t, 2, parsed.Status.Progress.CurrentStep)
	assert.Equal(t, []string{"auth.go"}, parsed.Status.ActiveFiles)
	assert.Nil(t, parsed.Status.LastError)

	require.NotNil(t, parsed.Handshake)
	assert.Equal(t, QuestionAsked, parsed.Handshake.QuestionState)
	assert.Equal(t, "7", parsed.Handshake.QuestionID)

	require.NotNil(t, parsed.Question)
	assert.Contains(t, *parsed.Question, "Which option?")
	require.NotNil(t, parsed.Log)
	assert.Equal(t, "did things\n", *parsed.Log)
}

func TestParseDir_MalformedArtifactIsIsolated(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, ProjectFile, `{"workspaceId": "ws-1", "projectName": "Demo"}`)
	writeFile(t, dir, StatusFile, `{"workspaceId": "ws-1", "state": "edit`) // truncated
	writeFile(t, dir, HandshakeFile, `{"workspaceId": "ws-1", "questionState": "none"}`)

	parsed := ParseDir(testLogger(), dir)

	assert.Nil(t, parsed.Status, "malformed status must parse as absent")
	require.NotNil(t, parsed.Project, "other artifacts must be unaffected")
	assert.Equal(t, "ws-1", parsed.Project.WorkspaceID)
	require.NotNil(t, parsed.Handshake)
	assert.Equal(t, QuestionNone, parsed.Handshake.QuestionState)
}

func TestEnsureProjectFile_CreatesDirAndRecord(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DirName)
	clk := clock.Fixed{Time: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	project, err := EnsureProjectFile(testLogger(), clk, dir, "Demo")
	require.NoError(t, err)
	require.NotNil(t, project)

	assert.NotEmpty(t, project.WorkspaceID)
	assert.Equal(t, "Demo", project.ProjectName)
	assert.Equal(t, "2026-03-01T12:00:00Z", project.CreatedAt)
	assert.Equal(t, project.CreatedAt, project.UpdatedAt)

	raw, err := os.ReadFile(filepath.Join(dir, ProjectFile))
	require.NoError(t, err)
	var onDisk ProjectConfig
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.Equal(t, project.WorkspaceID, onDisk.WorkspaceID)
}

func TestEnsureProjectFile_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DirName)

	first, err := EnsureProjectFile(testLogger(), clock.Fixed{Time: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}, dir, "Demo")
	require.NoError(t, err)

	// Second call with a different clock and name must return the original
	// record untouched.
	second, err := EnsureProjectFile(testLogger(), clock.Fixed{Time: time.Date(2027, 6, 1, 12, 0, 0, 0, time.UTC)}, dir, "Renamed")
	require.NoError(t, err)

	assert.Equal(t, first.WorkspaceID, second.WorkspaceID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, "Demo", second.ProjectName)
}

func TestExtractQuestionID(t *testing.T) {
	tests := []struct {
		name     string
		question *string
		want     string
	}{
		{"nil content", nil, ""},
		{"no heading", ptr("just some text"), ""},
		{"simple id", ptr("## Question (ID: 42)\n\nbody"), "42"},
		{"case insensitive", ptr("## QUESTION (id: abc)"), "abc"},
		{"padded id", ptr("## Question (ID:  q-7 )"), "q-7"},
		{"heading mid-document", ptr("intro\n\n## Question (ID: 9)\nbody"), "9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractQuestionID(tt.question))
		})
	}
}

func ptr(s string) *string {
	return &s
}
