package domain

// SessionState is one player's live view of a single game, from entry
// through question rounds to the end of the game. It is a value: the reducer
// never mutates a SessionState in place, it returns a new one.
type SessionState struct {
	Phase           Phase
	Game            *LobbyGame
	CurrentQuestion *Question
	ReadyPlayers    map[string]struct{}
	IsCreator       bool
	PlayerName      string
}

// NewSessionState returns the initial state for a player: no game, no
// question, nobody ready.
func NewSessionState(playerName string) SessionState {
	return SessionState{
		Phase:        PhaseNotInGame,
		ReadyPlayers: make(map[string]struct{}),
		PlayerName:   playerName,
	}
}

// IsReady returns true if the named player has readied up.
func (s SessionState) IsReady(player string) bool {
	_, ok := s.ReadyPlayers[player]
	return ok
}

// ReadyCount returns how many players have readied up.
func (s SessionState) ReadyCount() int {
	return len(s.ReadyPlayers)
}

func cloneReadyPlayers(src map[string]struct{}) map[string]struct{} {
	dst := make(map[string]struct{}, len(src)+1)
	for p := range src {
		dst[p] = struct{}{}
	}
	return dst
}
