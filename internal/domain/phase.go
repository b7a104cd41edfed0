package domain

// Phase represents the client's position in the session lifecycle
type Phase string

const (
	PhaseNotInGame  Phase = "NOT_IN_GAME" // No active game session
	PhaseLobby      Phase = "LOBBY"       // Browsing the lobby list
	PhaseWaiting    Phase = "WAITING"     // Seated in a game, waiting for players to ready up
	PhaseInQuestion Phase = "IN_QUESTION" // A question is live
	PhaseEnded      Phase = "ENDED"       // Game finished, leaderboard pending
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// InGame returns true while the client is seated in a game session
func (p Phase) InGame() bool {
	return p == PhaseWaiting || p == PhaseInQuestion
}
