package sparring

import (
	"sort"
	"sync"

	"github.com/DoyleJ11/typeduel/pkg/types"
)

// Profiles is the in-memory player store. Durable persistence is deliberately
// out of scope for the practice server; profiles live for the process.
type Profiles struct {
	mu      sync.Mutex
	players map[string]types.Player
}

func NewProfiles() *Profiles {
	return &Profiles{players: make(map[string]types.Player)}
}

// GetOrCreate returns the existing profile or registers a fresh one.
func (p *Profiles) GetOrCreate(username string) types.Player {
	p.mu.Lock()
	defer p.mu.Unlock()

	if player, ok := p.players[username]; ok {
		return player
	}
	player := types.Player{Username: username, Rank: 1000, RankName: RankName(1000)}
	p.players[username] = player
	return player
}

// ApplyResult moves both players' ranks and records the win/loss. The loser
// never drops below the rank floor.
func (p *Profiles) ApplyResult(winner, loser string, winnerDelta, loserDelta int) (types.Player, types.Player) {
	p.mu.Lock()
	defer p.mu.Unlock()

	w := p.getOrCreateLocked(winner)
	w.Rank += winnerDelta
	w.RankName = RankName(w.Rank)
	w.Wins++
	p.players[winner] = w

	l := p.getOrCreateLocked(loser)
	l.Rank += loserDelta
	if l.Rank < RankFloor {
		l.Rank = RankFloor
	}
	l.RankName = RankName(l.Rank)
	l.Losses++
	p.players[loser] = l

	return w, l
}

func (p *Profiles) getOrCreateLocked(username string) types.Player {
	if player, ok := p.players[username]; ok {
		return player
	}
	return types.Player{Username: username, Rank: 1000, RankName: RankName(1000)}
}

// Top returns up to n players by descending rank.
func (p *Profiles) Top(n int) []types.Player {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]types.Player, 0, len(p.players))
	for _, player := range p.players {
		out = append(out, player)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank > out[j].Rank })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
