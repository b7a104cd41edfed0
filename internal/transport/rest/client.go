// Package rest is the read-only HTTP side of the game API, used to hydrate
// the lobby list and the leaderboard. Live state arrives over the websocket.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"captrivia/internal/domain"
)

const requestTimeout = 10 * time.Second

// Client fetches lobby and leaderboard snapshots from the game server
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a REST client for the given base endpoint. A trailing
// slash on the endpoint is stripped.
func NewClient(endpoint string) *Client {
	return &Client{
		baseURL: strings.TrimRight(endpoint, "/"),
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// FetchGames returns the current list of joinable games (GET /games).
func (c *Client) FetchGames(ctx context.Context) ([]domain.LobbyGame, error) {
	var games []domain.LobbyGame
	if err := c.get(ctx, "/games", &games); err != nil {
		return nil, fmt.Errorf("fetch game list: %w", err)
	}
	return games, nil
}

// FetchLeaderboard returns the global leaderboard (GET /leaderboard).
func (c *Client) FetchLeaderboard(ctx context.Context) ([]domain.Player, error) {
	var players []domain.Player
	if err := c.get(ctx, "/leaderboard", &players); err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}
	return players, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
