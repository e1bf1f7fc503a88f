package sound

import "go.uber.org/zap"

// Cue names one of the fixed audio cues the arena plays.
type Cue string

const (
	CueKey     Cue = "key"
	CueAttack  Cue = "attack"
	CueShield  Cue = "shield"
	CueHit     Cue = "hit"
	CueVictory Cue = "victory"
	CueDefeat  Cue = "defeat"
)

// Player is the capability the session uses to trigger audio. Injecting it
// keeps the state machine testable without any audio device.
type Player interface {
	Play(cue Cue)
}

// Nop discards every cue.
type Nop struct{}

func (Nop) Play(Cue) {}

// LogPlayer logs cues instead of playing them; the terminal client uses it
// in place of a real audio backend.
type LogPlayer struct {
	log *zap.Logger
}

func NewLogPlayer(log *zap.Logger) *LogPlayer {
	return &LogPlayer{log: log}
}

func (p *LogPlayer) Play(cue Cue) {
	p.log.Debug("sound cue", zap.String("cue", string(cue)))
}
