package app

import (
	"encoding/json"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"

	"captrivia/internal/domain"
	"captrivia/internal/transport/ws"
)

// fakeConn is an in-memory Connection for driving the engine in tests.
type fakeConn struct {
	frames chan []byte
	states chan ws.ConnState

	mu     sync.Mutex
	sent   [][]byte
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		frames: make(chan []byte, 16),
		states: make(chan ws.ConnState, 16),
	}
}

func (f *fakeConn) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return domain.ErrNotConnected
	}
	f.sent = append(f.sent, data)
	return nil
}

func (f *fakeConn) Frames() <-chan []byte       { return f.frames }
func (f *fakeConn) States() <-chan ws.ConnState { return f.states }

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.frames)
	}
	return nil
}

func (f *fakeConn) sentCommands(t *testing.T) []ws.PlayerCommand {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	cmds := make([]ws.PlayerCommand, 0, len(f.sent))
	for _, data := range f.sent {
		var cmd ws.PlayerCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			t.Fatalf("sent frame is not a command: %v", err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

// recorder collects engine callbacks so tests can assert on order.
type recorder struct {
	mu     sync.Mutex
	calls  []string
	states []domain.SessionState
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnStateChange: func(s domain.SessionState) {
			r.record("state:"+string(s.Phase), &s)
		},
		OnServerError: func(msg string) { r.record("error:"+msg, nil) },
		OnAnswerResult: func(correct bool) {
			if correct {
				r.record("answer:correct", nil)
			} else {
				r.record("answer:incorrect", nil)
			}
		},
		RefreshLobby:       func() { r.record("refresh:lobby", nil) },
		RefreshLeaderboard: func() { r.record("refresh:leaderboard", nil) },
	}
}

func (r *recorder) record(call string, state *domain.SessionState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	if state != nil {
		r.states = append(r.states, *state)
	}
}

// waitCalls polls until the recorder has seen n calls, then returns them.
func (r *recorder) waitCalls(t *testing.T, n int) []string {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		if len(r.calls) >= n {
			calls := append([]string(nil), r.calls...)
			r.mu.Unlock()
			return calls
		}
		r.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t.Fatalf("timed out waiting for %d callbacks, got %v", n, r.calls)
	return nil
}

func newTestEngine(t *testing.T, player string) (*Engine, *fakeConn, *recorder) {
	t.Helper()
	conn := newFakeConn()
	rec := &recorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := New(conn, player, rec.callbacks(), logger)
	t.Cleanup(func() { engine.Close() })
	return engine, conn, rec
}

func push(t *testing.T, conn *fakeConn, frame string) {
	t.Helper()
	select {
	case conn.frames <- []byte(frame):
	case <-time.After(time.Second):
		t.Fatal("timed out pushing frame")
	}
}

func TestEngine_StateEventReachesReducerAndSubscribers(t *testing.T) {
	_, conn, rec := newTestEngine(t, "p1")

	push(t, conn, `{"type":"game_player_enter","id":"g1","payload":{"name":"quiz","players":["p1"],"question_count":3}}`)
	rec.waitCalls(t, 1)

	if len(rec.states) != 1 {
		t.Fatalf("published states = %d, want 1", len(rec.states))
	}
	state := rec.states[0]
	if state.Phase != domain.PhaseWaiting || !state.IsCreator {
		t.Errorf("state = phase %s creator %v, want WAITING/true", state.Phase, state.IsCreator)
	}
}

func TestEngine_ServerErrorBypassesReducer(t *testing.T) {
	engine, conn, rec := newTestEngine(t, "p1")
	before := engine.State()

	push(t, conn, `{"type":"game_player_enter","error":"game is full"}`)
	calls := rec.waitCalls(t, 1)

	if calls[0] != "error:game is full" {
		t.Errorf("calls = %v, want server-error notification", calls)
	}
	if got := engine.State(); !reflect.DeepEqual(got, before) {
		t.Error("error event mutated session state")
	}
}

func TestEngine_MalformedFrameIsDropped(t *testing.T) {
	engine, conn, rec := newTestEngine(t, "p1")
	before := engine.State()

	push(t, conn, `{not json`)
	// A valid event after the bad frame proves the loop survived it.
	push(t, conn, `{"type":"game_create"}`)
	calls := rec.waitCalls(t, 1)

	if calls[0] != "refresh:lobby" {
		t.Errorf("calls = %v, want only the lobby refresh", calls)
	}
	if got := engine.State(); !reflect.DeepEqual(got, before) {
		t.Error("malformed frame mutated session state")
	}
}

func TestEngine_LobbyEventsTriggerRefresh(t *testing.T) {
	engine, conn, rec := newTestEngine(t, "p1")
	before := engine.State()

	push(t, conn, `{"type":"game_create"}`)
	push(t, conn, `{"type":"game_destroy"}`)
	calls := rec.waitCalls(t, 2)

	want := []string{"refresh:lobby", "refresh:lobby"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
	if got := engine.State(); !reflect.DeepEqual(got, before) {
		t.Error("lobby events mutated session state")
	}
}

func TestEngine_GameEndRefreshesThenResets(t *testing.T) {
	engine, conn, rec := newTestEngine(t, "p1")

	push(t, conn, `{"type":"game_player_enter","id":"g1","payload":{"name":"quiz","players":["p1"]}}`)
	push(t, conn, `{"type":"game_end","id":"g1"}`)
	calls := rec.waitCalls(t, 4)

	want := []string{
		"state:" + string(domain.PhaseWaiting),
		"refresh:leaderboard",
		"refresh:lobby",
		"state:" + string(domain.PhaseNotInGame),
	}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}

	if got := engine.State(); !reflect.DeepEqual(got, domain.NewSessionState("p1")) {
		t.Errorf("state after game_end = %+v, want initial", got)
	}
}

func TestEngine_AnswerResultOnlyForLocalPlayer(t *testing.T) {
	_, conn, rec := newTestEngine(t, "p1")

	push(t, conn, `{"type":"game_player_correct","id":"g1","payload":{"player":"someone-else"}}`)
	push(t, conn, `{"type":"game_player_incorrect","id":"g1","payload":{"player":"p1"}}`)
	calls := rec.waitCalls(t, 1)

	want := []string{"answer:incorrect"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestEngine_CommandsEncodeAndSend(t *testing.T) {
	engine, conn, _ := newTestEngine(t, "p1")

	if err := engine.CreateGame("quiz night", 10); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if err := engine.JoinGame("g1"); err != nil {
		t.Fatalf("JoinGame: %v", err)
	}
	if err := engine.ReadyGame("g1"); err != nil {
		t.Fatalf("ReadyGame: %v", err)
	}
	if err := engine.StartGame("g1"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	if err := engine.AnswerGame("g1", 2, "q7"); err != nil {
		t.Fatalf("AnswerGame: %v", err)
	}

	cmds := conn.sentCommands(t)
	wantTypes := []ws.CommandType{
		ws.CommandCreate, ws.CommandJoin, ws.CommandReady, ws.CommandStart, ws.CommandAnswer,
	}
	if len(cmds) != len(wantTypes) {
		t.Fatalf("sent %d commands, want %d", len(cmds), len(wantTypes))
	}

	nonces := make(map[string]bool)
	for i, cmd := range cmds {
		if cmd.Type != wantTypes[i] {
			t.Errorf("command %d type = %q, want %q", i, cmd.Type, wantTypes[i])
		}
		if cmd.Nonce == "" || nonces[cmd.Nonce] {
			t.Errorf("command %d nonce %q is empty or reused", i, cmd.Nonce)
		}
		nonces[cmd.Nonce] = true
	}
}

func TestEngine_SendWhileDisconnectedFailsFast(t *testing.T) {
	engine, conn, _ := newTestEngine(t, "p1")
	conn.Close()

	if err := engine.ReadyGame("g1"); err != domain.ErrNotConnected {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
}
