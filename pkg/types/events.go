package types

// Server -> Client
// queue_joined:
//   queue_size: number
//
// match_found:
//   match_id: string
//   opponent: string
//   text: string
//   your_side: "player1" | "player2"
//
// countdown:
//   count: number
//
// match_started: {}
//
// game_state:
//   player:   { hp, shields, combo, accuracy, typed }
//   opponent: { hp, shields, combo, accuracy, typed }
//
// shield_gained / shield_blocked:
//   shields: number
//
// damage_taken:
//   damage: number
//   hp: number
//
// attack_sent:
//   damage: number
//
// match_ended:
//   result: "victory" | "defeat"
//   reason: "ko" | "time" | "disconnect"
//   rank_change, new_rank: number
//   rank_name: string
//   accuracy: number
//   final_hp: number

// Event type tags as they appear on the wire.
const (
	EvtQueueJoined   = "queue_joined"
	EvtQueueLeft     = "queue_left"
	EvtMatchFound    = "match_found"
	EvtCountdown     = "countdown"
	EvtMatchStarted  = "match_started"
	EvtGameState     = "game_state"
	EvtShieldGained  = "shield_gained"
	EvtShieldBlocked = "shield_blocked"
	EvtDamageTaken   = "damage_taken"
	EvtAttackSent    = "attack_sent"
	EvtMatchEnded    = "match_ended"
)

// ServerEvent is one tagged record pushed by the match server.
type ServerEvent interface {
	EventType() string
}

// CombatantSnapshot is the authoritative full state of one side of a match.
// The server computes every field; clients mirror it wholesale.
type CombatantSnapshot struct {
	HP       int     `json:"hp"`
	Shields  int     `json:"shields"`
	Combo    int     `json:"combo"`
	Accuracy float64 `json:"accuracy"`
	Typed    string  `json:"typed,omitempty"`
}

type QueueJoined struct {
	QueueSize int `json:"queue_size"`
}

type QueueLeft struct{}

type MatchFound struct {
	MatchID  string `json:"match_id"`
	Opponent string `json:"opponent"`
	Text     string `json:"text"`
	YourSide string `json:"your_side"`
}

type Countdown struct {
	Count int `json:"count"`
}

type MatchStarted struct{}

type GameState struct {
	Player   CombatantSnapshot `json:"player"`
	Opponent CombatantSnapshot `json:"opponent"`
}

type ShieldGained struct {
	Shields int `json:"shields"`
}

type ShieldBlocked struct {
	Shields int `json:"shields"`
}

type DamageTaken struct {
	Damage int `json:"damage"`
	HP     int `json:"hp"`
}

type AttackSent struct {
	Damage int `json:"damage"`
}

type MatchEnded struct {
	Result     string  `json:"result"`
	Reason     string  `json:"reason"`
	RankChange int     `json:"rank_change"`
	NewRank    int     `json:"new_rank"`
	RankName   string  `json:"rank_name"`
	Accuracy   float64 `json:"accuracy"`
	FinalHP    int     `json:"final_hp"`
}

func (QueueJoined) EventType() string   { return EvtQueueJoined }
func (QueueLeft) EventType() string     { return EvtQueueLeft }
func (MatchFound) EventType() string    { return EvtMatchFound }
func (Countdown) EventType() string     { return EvtCountdown }
func (MatchStarted) EventType() string  { return EvtMatchStarted }
func (GameState) EventType() string     { return EvtGameState }
func (ShieldGained) EventType() string  { return EvtShieldGained }
func (ShieldBlocked) EventType() string { return EvtShieldBlocked }
func (DamageTaken) EventType() string   { return EvtDamageTaken }
func (AttackSent) EventType() string    { return EvtAttackSent }
func (MatchEnded) EventType() string    { return EvtMatchEnded }
