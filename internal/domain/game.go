package domain

// GameState mirrors the server's view of a lobby game's lifecycle
type GameState string

const (
	GameStateWaiting   GameState = "waiting"
	GameStateCountdown GameState = "countdown"
	GameStateQuestion  GameState = "question"
	GameStateEnded     GameState = "ended"
)

// LobbyGame is a joinable game as listed by the server
type LobbyGame struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	QuestionCount int       `json:"question_count"`
	State         GameState `json:"state"`
	PlayerCount   int       `json:"player_count"`
	Players       []string  `json:"players,omitempty"`
}

// HasPlayer returns true if name is already seated in the game
func (g *LobbyGame) HasPlayer(name string) bool {
	for _, p := range g.Players {
		if p == name {
			return true
		}
	}
	return false
}

// Question is a live trivia question as received from the server
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Seconds int      `json:"seconds"`
}

// Player is a leaderboard row. It is a read-only REST snapshot and not
// part of the live session state.
type Player struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}
