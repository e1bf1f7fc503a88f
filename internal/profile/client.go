package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/DoyleJ11/typeduel/pkg/types"
)

// Client talks to the player endpoints of the match server. Profile storage
// and rank math live entirely on the server side; this is just the
// request/response call that establishes the player's identity.
type Client struct {
	base string
	http *http.Client
}

func New(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// CreatePlayer registers the username (or fetches the existing profile).
func (c *Client) CreatePlayer(ctx context.Context, username string) (types.Player, error) {
	body, err := json.Marshal(struct {
		Username string `json:"username"`
	}{Username: username})
	if err != nil {
		return types.Player{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/player", bytes.NewReader(body))
	if err != nil {
		return types.Player{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return types.Player{}, fmt.Errorf("create player: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return types.Player{}, fmt.Errorf("create player: unexpected status %d", resp.StatusCode)
	}

	var p types.Player
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return types.Player{}, fmt.Errorf("decode player: %w", err)
	}
	return p, nil
}

// Leaderboard fetches the top-ranked players.
func (c *Client) Leaderboard(ctx context.Context) ([]types.Player, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/leaderboard", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("leaderboard: unexpected status %d", resp.StatusCode)
	}

	var players []types.Player
	if err := json.NewDecoder(resp.Body).Decode(&players); err != nil {
		return nil, fmt.Errorf("decode leaderboard: %w", err)
	}
	return players, nil
}
