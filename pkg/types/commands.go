package types

// Client -> Server
// join_queue: {}
//
// leave_queue: {}
//
// keystroke:
//   typed: string (the entire current input buffer, not a delta)

const (
	ActionJoinQueue  = "join_queue"
	ActionLeaveQueue = "leave_queue"
	ActionKeystroke  = "keystroke"
)

type ClientCommand struct {
	Action string `json:"action"`
	Typed  string `json:"typed,omitempty"`
}

// Player is the profile record returned by the player-creation endpoint.
type Player struct {
	Username string `json:"username"`
	Rank     int    `json:"rank"`
	RankName string `json:"rank_name"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}
