package ws

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"captrivia/internal/domain"
)

const (
	// Time allowed to write a message to the server
	writeWait = 10 * time.Second

	// DefaultReconnectDelay is the pause between reconnect attempts
	DefaultReconnectDelay = time.Second

	// Size of the inbound frame channel buffer
	frameBufferSize = 64

	// Size of the state-change channel buffer
	stateBufferSize = 16
)

// Conn owns a single websocket connection to the game server. It dials,
// delivers inbound frames in arrival order, and reconnects after a fixed
// delay on any non-normal closure until Close is called.
type Conn struct {
	wsURL  string
	delay  time.Duration
	logger *slog.Logger

	mu     sync.Mutex
	ws     *websocket.Conn
	state  ConnState
	closed bool

	frames chan []byte
	states chan ConnState
	done   chan struct{}
}

// Dial validates the endpoint, derives the websocket URL and starts the
// connection loop. The returned Conn is live immediately; observe
// States() to learn when it reaches StateConnected. A delay of zero means
// DefaultReconnectDelay.
func Dial(endpoint, playerName string, delay time.Duration, logger *slog.Logger) (*Conn, error) {
	wsURL, err := deriveWSURL(endpoint, playerName)
	if err != nil {
		return nil, err
	}
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}

	c := &Conn{
		wsURL:  wsURL,
		delay:  delay,
		logger: logger,
		state:  StateDisconnected,
		frames: make(chan []byte, frameBufferSize),
		states: make(chan ConnState, stateBufferSize),
		done:   make(chan struct{}),
	}

	go c.run()
	return c, nil
}

// Frames returns the channel of raw inbound frames. It is closed when the
// connection shuts down for good.
func (c *Conn) Frames() <-chan []byte {
	return c.frames
}

// States returns the channel of connection state changes.
func (c *Conn) States() <-chan ConnState {
	return c.states
}

// State returns the current connection state.
func (c *Conn) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Send writes one command frame. It fails fast with ErrNotConnected while
// the connection is down; nothing is queued or retried.
func (c *Conn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateConnected || c.ws == nil {
		return domain.ErrNotConnected
	}

	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Close shuts the connection down with a normal closure and stops any
// pending reconnect. It is idempotent.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	ws := c.ws
	c.ws = nil
	c.mu.Unlock()

	close(c.done)

	if ws != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		ws.Close()
	}

	c.setState(StateDisconnected)
	return nil
}

// run is the connection loop: dial, pump frames, and on abnormal closure
// wait out the delay and dial again.
func (c *Conn) run() {
	defer close(c.frames)

	first := true
	for {
		if first {
			c.setState(StateConnecting)
			first = false
		} else {
			c.setState(StateReconnecting)
		}

		ws, _, err := websocket.DefaultDialer.Dial(c.wsURL, nil)
		if err != nil {
			if c.isClosed() {
				return
			}
			c.logger.Warn("dial failed", "url", c.wsURL, "error", err)
			if !c.waitRetry() {
				return
			}
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			ws.Close()
			return
		}
		c.ws = ws
		c.mu.Unlock()

		c.setState(StateConnected)
		c.logger.Info("connected to server")

		normal := c.readLoop(ws)

		c.mu.Lock()
		if c.ws == ws {
			c.ws = nil
		}
		c.mu.Unlock()
		ws.Close()

		if normal || c.isClosed() {
			c.setState(StateDisconnected)
			return
		}

		c.logger.Info("connection lost, reconnecting", "delay", c.delay)
		if !c.waitRetry() {
			return
		}
	}
}

// readLoop pumps frames until the connection drops. It returns true only
// for a normal closure (close code 1000) or a local Close.
func (c *Conn) readLoop(ws *websocket.Conn) bool {
	for {
		_, frame, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return true
			}
			if c.isClosed() {
				return true
			}
			c.logger.Debug("read failed", "error", err)
			return false
		}

		select {
		case c.frames <- frame:
		case <-c.done:
			return true
		}
	}
}

// waitRetry sleeps out the reconnect delay. It returns false if Close was
// called in the meantime.
func (c *Conn) waitRetry() bool {
	t := time.NewTimer(c.delay)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-c.done:
		return false
	}
}

func (c *Conn) isClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Conn) setState(s ConnState) {
	c.mu.Lock()
	if c.state == s || (c.closed && s != StateDisconnected) {
		c.mu.Unlock()
		return
	}
	c.state = s
	c.mu.Unlock()

	select {
	case c.states <- s:
	default:
		// Subscriber is behind; dropping a transition beats blocking the
		// connection loop.
	}
}

// deriveWSURL turns the HTTP base endpoint into the websocket connect URL,
// e.g. https://host -> wss://host/connect?name=<playerName>.
func deriveWSURL(endpoint, playerName string) (string, error) {
	endpoint = strings.TrimRight(endpoint, "/")

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidEndpoint, err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", domain.ErrInvalidEndpoint, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", domain.ErrInvalidEndpoint)
	}

	u.Path += "/connect"
	q := u.Query()
	q.Set("name", playerName)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
