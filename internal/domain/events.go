package domain

import "encoding/json"

// EventType tags a server-pushed event
type EventType string

const (
	EventGameCreate          EventType = "game_create"
	EventGameDestroy         EventType = "game_destroy"
	EventGamePlayerEnter     EventType = "game_player_enter"
	EventGameJoin            EventType = "game_join"
	EventGamePlayerJoin      EventType = "game_player_join"
	EventGamePlayerReady     EventType = "game_player_ready"
	EventGamePlayerLeave     EventType = "game_player_leave"
	EventGameStart           EventType = "game_start"
	EventGameCountdown       EventType = "game_countdown"
	EventGameQuestion        EventType = "game_question"
	EventGamePlayerCorrect   EventType = "game_player_correct"
	EventGamePlayerIncorrect EventType = "game_player_incorrect"
	EventGameEnd             EventType = "game_end"
)

// GameEvent is the decoded envelope of a single server frame. GameID is the
// envelope's "id" field; lobby-list events (game_create, game_destroy) leave
// it empty. Error, when set, carries a server-side failure and the event is
// surfaced to the UI instead of being applied to session state.
type GameEvent struct {
	Type    EventType       `json:"type"`
	GameID  string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// PlayerEnterPayload accompanies game_player_enter: the full roster of the
// game the local player just entered.
type PlayerEnterPayload struct {
	Name          string   `json:"name"`
	Players       []string `json:"players"`
	QuestionCount int      `json:"question_count"`
}

// PlayerPayload accompanies the per-player events (join, ready, leave,
// correct, incorrect).
type PlayerPayload struct {
	Player string `json:"player"`
}

// PlayerEnter decodes the payload of a game_player_enter event.
func (e *GameEvent) PlayerEnter() (PlayerEnterPayload, error) {
	var p PlayerEnterPayload
	err := json.Unmarshal(e.Payload, &p)
	return p, err
}

// Player decodes the player name out of a per-player event payload.
func (e *GameEvent) Player() (string, error) {
	var p PlayerPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return "", err
	}
	return p.Player, nil
}

// Question decodes the payload of a game_question event.
func (e *GameEvent) Question() (Question, error) {
	var q Question
	err := json.Unmarshal(e.Payload, &q)
	return q, err
}
