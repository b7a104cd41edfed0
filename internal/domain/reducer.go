package domain

// stateEvents is the dispatch table of event tags that drive session state.
// Tags absent from the table leave state untouched: game_create and
// game_destroy only concern the lobby list, game_start and game_countdown
// are informational, and the answer-result events are pure notifications.
var stateEvents = map[EventType]struct{}{
	EventGamePlayerEnter: {},
	EventGamePlayerReady: {},
	EventGamePlayerJoin:  {},
	EventGameQuestion:    {},
	EventGameEnd:         {},
}

// IsStateEvent reports whether the given tag participates in the reducer's
// dispatch table.
func IsStateEvent(t EventType) bool {
	_, ok := stateEvents[t]
	return ok
}

// Reduce applies a single server event to the session state and returns the
// next state. It is pure and total: duplicate or unrecognized events return
// the input unchanged, and no event can make it panic. That makes replays
// after a reconnect safe — at-least-once delivery is the realistic guarantee
// the transport gives us.
func Reduce(state SessionState, event GameEvent) SessionState {
	switch event.Type {
	case EventGamePlayerEnter:
		p, err := event.PlayerEnter()
		if err != nil {
			return state
		}
		players := append([]string(nil), p.Players...)
		return SessionState{
			Phase: PhaseWaiting,
			Game: &LobbyGame{
				ID:            event.GameID,
				Name:          p.Name,
				QuestionCount: p.QuestionCount,
				State:         GameStateWaiting,
				PlayerCount:   len(players),
				Players:       players,
			},
			ReadyPlayers: make(map[string]struct{}),
			// First player in is the one who created the game.
			IsCreator:  len(players) == 1,
			PlayerName: state.PlayerName,
		}

	case EventGamePlayerReady:
		player, err := event.Player()
		if err != nil || player == "" {
			return state
		}
		// Only seated players can be ready: keeps ReadyPlayers a subset of
		// Game.Players no matter what order events arrive in.
		if state.Game == nil || !state.Game.HasPlayer(player) {
			return state
		}
		if state.IsReady(player) {
			return state
		}
		next := state
		next.ReadyPlayers = cloneReadyPlayers(state.ReadyPlayers)
		next.ReadyPlayers[player] = struct{}{}
		return next

	case EventGamePlayerJoin:
		player, err := event.Player()
		if err != nil || player == "" || state.Game == nil {
			return state
		}
		if state.Game.HasPlayer(player) {
			return state
		}
		game := *state.Game
		game.Players = append(append([]string(nil), state.Game.Players...), player)
		game.PlayerCount = len(game.Players)
		next := state
		next.Game = &game
		return next

	case EventGameQuestion:
		q, err := event.Question()
		if err != nil {
			return state
		}
		next := state
		next.Phase = PhaseInQuestion
		next.CurrentQuestion = &q
		return next

	case EventGameEnd:
		return NewSessionState(state.PlayerName)

	default:
		return state
	}
}
