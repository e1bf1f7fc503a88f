package session

import (
	"time"

	"github.com/DoyleJ11/typeduel/internal/compare"
	"github.com/DoyleJ11/typeduel/internal/effects"
	"github.com/DoyleJ11/typeduel/internal/sound"
	"github.com/DoyleJ11/typeduel/pkg/types"
)

// Directive is a side effect requested by Apply. The session actor executes
// directives after committing the returned state; Apply itself stays pure.
type Directive interface{ isDirective() }

// SpawnEffect asks for one ephemeral visual cue.
type SpawnEffect struct {
	Kind   effects.Kind
	Target effects.Target
	Value  int
}

// PlaySound asks for one audio cue.
type PlaySound struct{ Cue sound.Cue }

// FocusInput asks the presentation layer to focus the typing input.
type FocusInput struct{}

// SendKeystroke asks the actor to forward the full input buffer upstream.
type SendKeystroke struct{ Typed string }

func (SpawnEffect) isDirective()   {}
func (PlaySound) isDirective()     {}
func (FocusInput) isDirective()    {}
func (SendKeystroke) isDirective() {}

// Apply is the single dispatch function of the state machine: given the
// current state and one inbound server event it returns the next state plus
// the directives to run. Events that are not legal for the current phase
// leave the state untouched, so an out-of-contract peer can never crash or
// corrupt the session.
func Apply(s State, now time.Time, evt types.ServerEvent) (State, []Directive) {
	switch e := evt.(type) {
	case types.QueueJoined:
		if s.Phase != PhaseIdle {
			return s, nil
		}
		s.Phase = PhaseQueued
		s.QueueSize = e.QueueSize
		return s, nil

	case types.QueueLeft:
		if s.Phase != PhaseQueued {
			return s, nil
		}
		s.Phase = PhaseIdle
		s.QueueSize = 0
		return s, nil

	case types.MatchFound:
		if s.Phase != PhaseQueued {
			return s, nil
		}
		s.Phase = PhaseMatchFound
		s.Match = &Match{
			ID:       e.MatchID,
			Opponent: e.Opponent,
			Text:     e.Text,
			Side:     e.YourSide,
		}
		s.TypedText = ""
		s.Self = DefaultCombatant()
		s.Opponent = DefaultCombatant()
		s.Result = nil
		return s, nil

	case types.Countdown:
		if s.Phase != PhaseMatchFound && s.Phase != PhaseCountdown {
			return s, nil
		}
		s.Phase = PhaseCountdown
		s.CountdownValue = e.Count
		return s, nil

	case types.MatchStarted:
		if s.Phase != PhaseCountdown {
			return s, nil
		}
		s.Phase = PhaseActive
		s.CountdownValue = 0
		// Anchor captured exactly once per match; the timer derives the
		// remaining seconds from it instead of counting ticks.
		s.StartAnchor = now
		return s, []Directive{FocusInput{}}

	case types.GameState:
		if s.Phase != PhaseActive {
			return s, nil
		}
		s.Self = fromSnapshot(e.Player)
		s.Opponent = fromSnapshot(e.Opponent)
		return s, nil

	case types.ShieldGained:
		if s.Phase != PhaseActive {
			return s, nil
		}
		return s, []Directive{
			SpawnEffect{Kind: effects.KindShield, Target: effects.TargetPlayer},
			PlaySound{Cue: sound.CueShield},
		}

	case types.ShieldBlocked:
		if s.Phase != PhaseActive {
			return s, nil
		}
		return s, []Directive{
			SpawnEffect{Kind: effects.KindBlock, Target: effects.TargetPlayer},
			PlaySound{Cue: sound.CueShield},
		}

	case types.DamageTaken:
		if s.Phase != PhaseActive {
			return s, nil
		}
		return s, []Directive{
			SpawnEffect{Kind: effects.KindDamage, Target: effects.TargetPlayer, Value: e.Damage},
			PlaySound{Cue: sound.CueHit},
		}

	case types.AttackSent:
		if s.Phase != PhaseActive {
			return s, nil
		}
		return s, []Directive{
			SpawnEffect{Kind: effects.KindProjectile, Target: effects.TargetOpponent, Value: e.Damage},
			PlaySound{Cue: sound.CueAttack},
		}

	case types.MatchEnded:
		// The server ends a match from any stage once a pairing exists; a
		// disconnect forfeit can land while we are still in MatchFound or
		// Countdown. Dropping it would strand the session: the match is gone
		// server-side and no command is valid from those phases.
		switch s.Phase {
		case PhaseMatchFound, PhaseCountdown, PhaseActive:
		default:
			return s, nil
		}
		s.Phase = PhaseEnded
		s.CountdownValue = 0
		outcome := OutcomeDefeat
		cue := sound.CueDefeat
		if e.Result == string(OutcomeVictory) {
			outcome = OutcomeVictory
			cue = sound.CueVictory
		}
		s.Result = &Result{
			Outcome:   outcome,
			Reason:    e.Reason,
			RankDelta: e.RankChange,
			NewRank:   e.NewRank,
			RankName:  e.RankName,
			Accuracy:  e.Accuracy,
			FinalHP:   e.FinalHP,
		}
		return s, []Directive{PlaySound{Cue: cue}}

	default:
		// Forward compatibility: unknown event kinds are ignored.
		return s, nil
	}
}

// ApplyInput folds one edit of the typing buffer into the state. Outside the
// active phase the edit is dropped. The buffer is clamped at the target
// length, and the whole buffer (never a delta) is forwarded upstream so the
// server stays the single source of truth for scoring.
func ApplyInput(s State, typed string) (State, []Directive) {
	if s.Phase != PhaseActive || s.Match == nil {
		return s, nil
	}

	clamped := compare.ClampInput(s.Match.Text, typed)
	if clamped == s.TypedText {
		return s, nil
	}

	grew := len(clamped) > len(s.TypedText)
	s.TypedText = clamped

	dirs := []Directive{SendKeystroke{Typed: clamped}}
	if grew {
		dirs = append(dirs, PlaySound{Cue: sound.CueKey})
	}
	return s, dirs
}

func fromSnapshot(cs types.CombatantSnapshot) Combatant {
	return Combatant{
		HP:       cs.HP,
		Shields:  cs.Shields,
		Combo:    cs.Combo,
		Accuracy: cs.Accuracy,
	}
}
