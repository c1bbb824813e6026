package contract

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sidekick/internal/clock"
)

func TestWriteUserResponse_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, HandshakeFile, `{
		"workspaceId": "ws-1",
		"questionId": "42",
		"questionState": "asked",
		"lastQuestionUpdated": "2026-03-01T10:00:00Z",
		"lastUserResponseUpdated": ""
	}`)

	clk := clock.Fixed{Time: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	ok := WriteUserResponse(testLogger(), clk, dir, "Demo", "42", "Use option B")
	require.True(t, ok)

	raw, err := os.ReadFile(filepath.Join(dir, ResponseFile))
	require.NoError(t, err)
	assert.Equal(t, "## Response (Project: Demo, Question ID: 42)\n\nUse option B\n", string(raw))

	raw, err = os.ReadFile(filepath.Join(dir, HandshakeFile))
	require.NoError(t, err)
	var handshake map[string]any
	require.NoError(t, json.Unmarshal(raw, &handshake))

	assert.Equal(t, "answered", handshake["questionState"])
	assert.Equal(t, "2026-03-01T12:00:00Z", handshake["lastUserResponseUpdated"])
	// Read-merge-write: fields the agent owns must survive.
	assert.Equal(t, "ws-1", handshake["workspaceId"])
	assert.Equal(t, "42", handshake["questionId"])
	assert.Equal(t, "2026-03-01T10:00:00Z", handshake["lastQuestionUpdated"])
}

func TestWriteUserResponse_NoHandshakeFile(t *testing.T) {
	dir := t.TempDir()

	ok := WriteUserResponse(testLogger(), clock.System{}, dir, "Demo", "", "answer")
	require.True(t, ok)

	raw, err := os.ReadFile(filepath.Join(dir, HandshakeFile))
	require.NoError(t, err)
	var handshake map[string]any
	require.NoError(t, json.Unmarshal(raw, &handshake))
	assert.Equal(t, "answered", handshake["questionState"])
}

func TestWriteUserResponse_MalformedHandshakeStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, HandshakeFile, `{"broken`)

	ok := WriteUserResponse(testLogger(), clock.System{}, dir, "Demo", "7", "answer")
	require.True(t, ok)

	raw, err := os.ReadFile(filepath.Join(dir, HandshakeFile))
	require.NoError(t, err)
	var handshake map[string]any
	require.NoError(t, json.Unmarshal(raw, &handshake))
	assert.Equal(t, "answered", handshake["questionState"])
}

func TestWriteUserResponse_OverwritesPriorResponse(t *testing.T) {
	dir := t.TempDir()

	require.True(t, WriteUserResponse(testLogger(), clock.System{}, dir, "Demo", "1", "first"))
	require.True(t, WriteUserResponse(testLogger(), clock.System{}, dir, "Demo", "2", "second"))

	raw, err := os.ReadFile(filepath.Join(dir, ResponseFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Question ID: 2")
	assert.Contains(t, string(raw), "second")
	assert.NotContains(t, string(raw), "first")
}

func TestWriteUserResponse_MissingDir(t *testing.T) {
	ok := WriteUserResponse(testLogger(), clock.System{}, filepath.Join(t.TempDir(), "gone"), "Demo", "1", "x")
	assert.False(t, ok)
}
