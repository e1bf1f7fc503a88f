package session

import "time"

// Phase is one discrete stage of a match session's lifecycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseQueued     Phase = "queued"
	PhaseMatchFound Phase = "match_found"
	PhaseCountdown  Phase = "countdown"
	PhaseActive     Phase = "active"
	PhaseEnded      Phase = "ended"
)

// Combatant mirrors the server-authoritative numbers for one side. The
// client never mutates these except by replacing them with the latest
// snapshot.
type Combatant struct {
	HP       int
	Shields  int
	Combo    int
	Accuracy float64
}

const StartHP = 100

func DefaultCombatant() Combatant {
	return Combatant{HP: StartHP, Shields: 0, Combo: 0, Accuracy: 100}
}

// Match holds the pairing data fixed for the duration of one match.
type Match struct {
	ID       string
	Opponent string
	Text     string
	Side     string
}

type Outcome string

const (
	OutcomeVictory Outcome = "victory"
	OutcomeDefeat  Outcome = "defeat"
)

// Result is the immutable terminal snapshot of a finished match.
type Result struct {
	Outcome   Outcome
	Reason    string
	RankDelta int
	NewRank   int
	RankName  string
	Accuracy  float64
	FinalHP   int
}

// State is everything the dispatch function reads and writes. Match,
// CountdownValue, StartAnchor and Result only carry meaning in the phases
// the lifecycle table assigns them to.
type State struct {
	Phase          Phase
	QueueSize      int
	Match          *Match
	CountdownValue int
	StartAnchor    time.Time
	Self           Combatant
	Opponent       Combatant
	TypedText      string
	Result         *Result
}

// NewState is the Idle state a session starts in and returns to on every
// teardown or "play again" reset.
func NewState() State {
	return State{
		Phase:    PhaseIdle,
		Self:     DefaultCombatant(),
		Opponent: DefaultCombatant(),
	}
}
