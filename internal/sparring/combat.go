package sparring

import (
	"strings"

	"github.com/DoyleJ11/typeduel/pkg/types"
)

const (
	StartHP        = 100
	ComboThreshold = 5
	LongWordLength = 7
	RankFloor      = 800
)

// TextPool feeds practice matches.
var TextPool = []string{
	"The quick brown fox jumps over the lazy dog while carrying a heavy backpack through the forest.",
	"Artificial intelligence systems are transforming how we interact with technology in our daily lives.",
	"Professional gamers practice their skills for hours every day to compete at the highest level.",
	"Mountain climbers face extreme weather conditions and dangerous terrain on their expeditions.",
	"Scientists conduct experiments to discover new knowledge about the natural world and universe.",
	"Musicians spend years mastering their instruments to perform complex compositions flawlessly.",
	"Writers craft stories that transport readers to different worlds and spark imagination.",
	"Engineers design innovative solutions to solve complex technical problems efficiently.",
}

type MatchStatus string

const (
	StatusCountdown MatchStatus = "countdown"
	StatusActive    MatchStatus = "active"
	StatusEnded     MatchStatus = "ended"
)

// PlayerState is the authoritative state of one side of a running match.
type PlayerState struct {
	Username       string
	HP             int
	Shields        int
	Combo          int
	Typed          string
	WordsCompleted int
	Accuracy       float64
	CorrectChars   int
	TotalChars     int
}

func NewPlayerState(username string) PlayerState {
	return PlayerState{Username: username, HP: StartHP, Accuracy: 100}
}

// MatchState holds one match. Players[0] is "player1".
type MatchState struct {
	ID      string
	Text    string
	Players [2]PlayerState
	Status  MatchStatus
}

func NewMatchState(id, text, player1, player2 string) MatchState {
	return MatchState{
		ID:      id,
		Text:    text,
		Players: [2]PlayerState{NewPlayerState(player1), NewPlayerState(player2)},
		Status:  StatusCountdown,
	}
}

func (m MatchState) IndexOf(username string) int {
	for i, p := range m.Players {
		if p.Username == username {
			return i
		}
	}
	return -1
}

// EventTarget routes a cosmetic event to one of the two players.
type EventTarget int

const (
	ToSelf EventTarget = iota
	ToOpponent
)

// Event is one cosmetic protocol event produced by a keystroke, addressed
// relative to the typist.
type Event struct {
	To  EventTarget
	Evt types.ServerEvent
}

// ApplyKeystroke folds one full-buffer keystroke from username into the
// match: accuracy, combo and shield generation for the typist, word
// completion attacks against the opponent. Returns the new state plus the
// cosmetic events to deliver; the caller broadcasts game_state afterwards
// and checks for a KO via HP.
func ApplyKeystroke(m MatchState, username, typed string) (MatchState, []Event) {
	i := m.IndexOf(username)
	if i < 0 || m.Status != StatusActive {
		return m, nil
	}
	j := 1 - i
	self := m.Players[i]
	opp := m.Players[j]

	self.Typed = typed
	self.TotalChars = len(typed)
	self.CorrectChars = countCorrect(m.Text, typed)
	if self.TotalChars > 0 {
		self.Accuracy = float64(self.CorrectChars) / float64(self.TotalChars) * 100
	}

	var events []Event

	// Combo tracks the streak of correct trailing characters; every fifth
	// step of an unbroken streak banks a shield.
	if len(typed) > 0 && len(typed) <= len(m.Text) {
		if typed[len(typed)-1] == m.Text[len(typed)-1] {
			self.Combo++
			if self.Combo >= ComboThreshold && self.Combo%ComboThreshold == 0 {
				self.Shields++
				events = append(events, Event{To: ToSelf, Evt: types.ShieldGained{Shields: self.Shields}})
			}
		} else {
			self.Combo = 0
		}
	}

	// One attack per keystroke at most, on the first newly completed word.
	completed := completedWords(m.Text, typed)
	if completed > self.WordsCompleted {
		damage := 1
		if wordLengthAt(typed, self.WordsCompleted) > LongWordLength {
			damage++
		}

		if opp.Shields > 0 {
			opp.Shields--
			events = append(events, Event{To: ToOpponent, Evt: types.ShieldBlocked{Shields: opp.Shields}})
		} else {
			opp.HP -= damage
			if opp.HP < 0 {
				opp.HP = 0
			}
			events = append(events, Event{To: ToOpponent, Evt: types.DamageTaken{Damage: damage, HP: opp.HP}})
		}
		events = append(events, Event{To: ToSelf, Evt: types.AttackSent{Damage: damage}})

		self.WordsCompleted = completed
	}

	m.Players[i] = self
	m.Players[j] = opp
	return m, events
}

// Snapshot builds the game_state event as seen by the player at index i.
func (m MatchState) Snapshot(i int) types.GameState {
	j := 1 - i
	return types.GameState{
		Player:   toSnapshot(m.Players[i]),
		Opponent: toSnapshot(m.Players[j]),
	}
}

func toSnapshot(p PlayerState) types.CombatantSnapshot {
	return types.CombatantSnapshot{
		HP:       p.HP,
		Shields:  p.Shields,
		Combo:    p.Combo,
		Accuracy: roundTenth(p.Accuracy),
		Typed:    p.Typed,
	}
}

func roundTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

// WinnerOnTime picks the winning index when the clock runs out: higher HP,
// ties broken by accuracy with player2 taking an exact tie.
func WinnerOnTime(m MatchState) int {
	p1, p2 := m.Players[0], m.Players[1]
	switch {
	case p1.HP > p2.HP:
		return 0
	case p2.HP > p1.HP:
		return 1
	case p1.Accuracy > p2.Accuracy:
		return 0
	default:
		return 1
	}
}

// RankChanges returns the rank deltas for a finished match.
func RankChanges(winnerAccuracy float64, disconnect bool) (winner, loser int) {
	winner = 25
	if winnerAccuracy >= 95 {
		winner += 5
	}
	loser = -15
	if disconnect {
		loser = -30
	}
	return winner, loser
}

// RankName maps a numeric rank onto its tier.
func RankName(rank int) string {
	switch {
	case rank < 1200:
		return "Bronze"
	case rank < 1400:
		return "Silver"
	case rank < 1600:
		return "Gold"
	default:
		return "Diamond"
	}
}

func countCorrect(target, typed string) int {
	n := 0
	for i := 0; i < len(typed) && i < len(target); i++ {
		if typed[i] == target[i] {
			n++
		}
	}
	return n
}

func completedWords(target, typed string) int {
	targetWords := strings.Fields(target)
	typedWords := strings.Fields(typed)

	n := 0
	for i, w := range typedWords {
		if i < len(targetWords) && w == targetWords[i] {
			n++
		}
	}
	return n
}

func wordLengthAt(typed string, index int) int {
	words := strings.Fields(typed)
	if index < 0 || index >= len(words) {
		return 0
	}
	return len(words[index])
}
