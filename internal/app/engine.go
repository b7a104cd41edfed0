package app

import (
	"log/slog"
	"sync"

	"captrivia/internal/domain"
	"captrivia/internal/transport/ws"
)

// Connection is the transport the engine drives
type Connection interface {
	Send(data []byte) error
	Frames() <-chan []byte
	States() <-chan ws.ConnState
	Close() error
}

// Callbacks are the side-effect hooks the engine fires into the surrounding
// application. Every hook is optional.
type Callbacks struct {
	// OnStateChange fires with the new session state after every reduced
	// event.
	OnStateChange func(domain.SessionState)

	// OnServerError fires when an event carries a server error. Such events
	// never reach the reducer.
	OnServerError func(message string)

	// OnAnswerResult fires when the local player's answer is judged.
	OnAnswerResult func(correct bool)

	// OnConnState fires on every connection state transition.
	OnConnState func(ws.ConnState)

	// RefreshLobby fires when the lobby list went stale (a game was created
	// or destroyed, or the session ended).
	RefreshLobby func()

	// RefreshLeaderboard fires when a game ends, before the session state
	// is reset.
	RefreshLeaderboard func()
}

// Engine keeps the local session state in sync with the server: it decodes
// inbound frames, runs state-affecting events through the reducer, fires
// side-effect callbacks, and encodes outgoing commands. All inbound frames
// are processed on a single goroutine in arrival order.
type Engine struct {
	conn   Connection
	cb     Callbacks
	logger *slog.Logger

	mu    sync.RWMutex
	state domain.SessionState
}

// New creates an engine over an established connection and starts its event
// loop.
func New(conn Connection, playerName string, cb Callbacks, logger *slog.Logger) *Engine {
	e := &Engine{
		conn:   conn,
		cb:     cb,
		logger: logger,
		state:  domain.NewSessionState(playerName),
	}
	go e.loop()
	return e
}

// State returns a snapshot of the current session state.
func (e *Engine) State() domain.SessionState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Close shuts down the connection and resets the session. Idempotent.
func (e *Engine) Close() error {
	err := e.conn.Close()

	e.mu.Lock()
	e.state = domain.NewSessionState(e.state.PlayerName)
	e.mu.Unlock()

	return err
}

// CreateGame asks the server to create a new game.
func (e *Engine) CreateGame(name string, questionCount int) error {
	return e.send(ws.CommandCreate, ws.CreatePayload{Name: name, QuestionCount: questionCount})
}

// JoinGame asks the server to seat the player in a game.
func (e *Engine) JoinGame(gameID string) error {
	return e.send(ws.CommandJoin, ws.GamePayload{GameID: gameID})
}

// ReadyGame marks the player ready. The local state only changes once the
// server echoes game_player_ready.
func (e *Engine) ReadyGame(gameID string) error {
	return e.send(ws.CommandReady, ws.GamePayload{GameID: gameID})
}

// StartGame asks the server to start the game. Only the creator may.
func (e *Engine) StartGame(gameID string) error {
	return e.send(ws.CommandStart, ws.GamePayload{GameID: gameID})
}

// AnswerGame submits an answer to the current question.
func (e *Engine) AnswerGame(gameID string, index int, questionID string) error {
	return e.send(ws.CommandAnswer, ws.AnswerPayload{GameID: gameID, Index: index, QuestionID: questionID})
}

// send encodes and fires a command. Commands are fire-and-forget: success is
// observed through the resulting server event, failure through an error
// event or ErrNotConnected here.
func (e *Engine) send(typ ws.CommandType, payload interface{}) error {
	data, err := ws.EncodeCommand(typ, payload)
	if err != nil {
		return err
	}
	return e.conn.Send(data)
}

func (e *Engine) loop() {
	frames := e.conn.Frames()
	states := e.conn.States()

	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				return
			}
			e.handleFrame(frame)

		case s := <-states:
			e.logger.Debug("connection state changed", "state", s)
			if e.cb.OnConnState != nil {
				e.cb.OnConnState(s)
			}
		}
	}
}

func (e *Engine) handleFrame(frame []byte) {
	event, err := ws.DecodeEvent(frame)
	if err != nil {
		e.logger.Warn("dropping malformed frame", "error", err)
		return
	}
	e.handleEvent(event)
}

func (e *Engine) handleEvent(event domain.GameEvent) {
	// Server errors bypass tag dispatch entirely.
	if event.Error != "" {
		e.logger.Warn("server error", "error", event.Error, "gameID", event.GameID)
		if e.cb.OnServerError != nil {
			e.cb.OnServerError(event.Error)
		}
		return
	}

	switch event.Type {
	case domain.EventGameCreate, domain.EventGameDestroy:
		e.refreshLobby()

	case domain.EventGameEnd:
		// Refresh before the reducer wipes the session below.
		e.refreshLeaderboard()
		e.refreshLobby()

	case domain.EventGamePlayerCorrect, domain.EventGamePlayerIncorrect:
		e.notifyAnswerResult(event)
	}

	if !domain.IsStateEvent(event.Type) {
		return
	}

	e.mu.Lock()
	next := domain.Reduce(e.state, event)
	e.state = next
	e.mu.Unlock()

	e.logger.Debug("session state updated", "event", event.Type, "phase", next.Phase)
	if e.cb.OnStateChange != nil {
		e.cb.OnStateChange(next)
	}
}

// notifyAnswerResult fires the answer callback, but only for the local
// player's own answers.
func (e *Engine) notifyAnswerResult(event domain.GameEvent) {
	player, err := event.Player()
	if err != nil {
		e.logger.Warn("dropping answer event with bad payload", "error", err)
		return
	}

	e.mu.RLock()
	local := e.state.PlayerName
	e.mu.RUnlock()

	if player != local {
		return
	}
	if e.cb.OnAnswerResult != nil {
		e.cb.OnAnswerResult(event.Type == domain.EventGamePlayerCorrect)
	}
}

func (e *Engine) refreshLobby() {
	if e.cb.RefreshLobby != nil {
		e.cb.RefreshLobby()
	}
}

func (e *Engine) refreshLeaderboard() {
	if e.cb.RefreshLeaderboard != nil {
		e.cb.RefreshLeaderboard()
	}
}
