package ws

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// CommandType represents the type of an outgoing player command
type CommandType string

// Client → Server command types
const (
	CommandCreate CommandType = "create"
	CommandJoin   CommandType = "join"
	CommandReady  CommandType = "ready"
	CommandStart  CommandType = "start"
	CommandAnswer CommandType = "answer"
)

// PlayerCommand is the outgoing wire envelope: one command per frame
type PlayerCommand struct {
	Type    CommandType `json:"type"`
	Nonce   string      `json:"nonce"`
	Payload interface{} `json:"payload"`
}

// CreatePayload is the payload for a create command
type CreatePayload struct {
	Name          string `json:"name"`
	QuestionCount int    `json:"question_count"`
}

// GamePayload is the payload for the join, ready and start commands
type GamePayload struct {
	GameID string `json:"game_id"`
}

// AnswerPayload is the payload for an answer command
type AnswerPayload struct {
	GameID     string `json:"game_id"`
	Index      int    `json:"index"`
	QuestionID string `json:"question_id"`
}

// NewNonce returns an opaque per-command token: random entropy plus a
// base-36 timestamp. Uniqueness is best effort; the server uses it for
// tracing, not deduplication.
func NewNonce() string {
	return uuid.NewString() + "-" + strconv.FormatInt(time.Now().UnixNano(), 36)
}
