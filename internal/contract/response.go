package contract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"sidekick/internal/clock"
)

// WriteUserResponse commits the user's answer to a pending question. It
// writes user-response.md (overwriting any prior response) and advances the
// handshake to "answered" with a read-merge-write so fields the agent owns
// are preserved. The external agent observes both files through its own
// watching; this is a best-effort boundary, so failures are logged and
// reported as false rather than returned as errors.
func WriteUserResponse(log zerolog.Logger, clk clock.Clock, dir, projectName, questionID, response string) bool {
	content := fmt.Sprintf("## Response (Project: %s, Question ID: %s)\n\n%s\n",
		projectName, questionID, response)

	if err := os.WriteFile(filepath.Join(dir, ResponseFile), []byte(content), 0644); err != nil {
		log.Error().Err(err).Str("dir", dir).Msg("failed to write user response")
		return false
	}

	handshakePath := filepath.Join(dir, HandshakeFile)
	handshake := map[string]any{}
	if raw, err := os.ReadFile(handshakePath); err == nil {
		// Parse errors leave the empty base; answering still proceeds.
		_ = json.Unmarshal(raw, &handshake)
	}

	handshake["questionState"] = string(QuestionAnswered)
	handshake["lastUserResponseUpdated"] = clk.Now().UTC().Format(time.RFC3339)

	raw, err := json.MarshalIndent(handshake, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal handshake")
		return false
	}
	if err := os.WriteFile(handshakePath, raw, 0644); err != nil {
		log.Error().Err(err).Str("dir", dir).Msg("failed to update handshake")
		return false
	}

	return true
}
