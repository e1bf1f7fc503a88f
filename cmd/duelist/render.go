package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/DoyleJ11/typeduel/internal/compare"
	"github.com/DoyleJ11/typeduel/internal/session"
)

// renderer turns session views into terminal frames. Views arrive for every
// processed message, including 100ms clock ticks, so identical frames are
// suppressed to keep the scrollback readable.
type renderer struct {
	out  io.Writer
	last string
}

func newRenderer(out io.Writer) *renderer {
	return &renderer{out: out}
}

func (r *renderer) Render(v session.View) {
	frame := buildFrame(v)
	if frame == r.last {
		return
	}
	r.last = frame
	fmt.Fprint(r.out, frame)
}

func buildFrame(v session.View) string {
	var b strings.Builder

	if !v.Connected {
		b.WriteString("-- disconnected --\n")
	}

	switch v.State.Phase {
	case session.PhaseIdle:
		b.WriteString("[idle] /join to find an opponent\n")

	case session.PhaseQueued:
		fmt.Fprintf(&b, "[queued] %d in queue, waiting for an opponent...\n", v.State.QueueSize)

	case session.PhaseMatchFound:
		fmt.Fprintf(&b, "[match found] vs %s\n", v.State.Match.Opponent)

	case session.PhaseCountdown:
		fmt.Fprintf(&b, "[countdown] %d\n", v.State.CountdownValue)

	case session.PhaseActive:
		writeArena(&b, v)

	case session.PhaseEnded:
		writeResult(&b, v)
	}
	return b.String()
}

func writeArena(b *strings.Builder, v session.View) {
	s := v.State
	fmt.Fprintf(b, "[%02ds] you %3dhp %ds %dx %.0f%%  |  %s %3dhp %ds\n",
		v.TimeRemaining,
		s.Self.HP, s.Self.Shields, s.Self.Combo, s.Self.Accuracy,
		s.Match.Opponent, s.Opponent.HP, s.Opponent.Shields)

	for _, fx := range v.Effects {
		fmt.Fprintf(b, "  * %s on %s\n", fx.Kind, fx.Target)
	}

	b.WriteString("  " + s.Match.Text + "\n")
	b.WriteString("  " + markerLine(s.Match.Text, s.TypedText) + "\n")
}

// markerLine draws one marker per target character: '=' correct, 'x' wrong,
// '^' at the cursor.
func markerLine(target, typed string) string {
	states := compare.Classify(target, typed)
	markers := make([]rune, len(states))
	for i, st := range states {
		switch st {
		case compare.Correct:
			markers[i] = '='
		case compare.Incorrect:
			markers[i] = 'x'
		case compare.CursorPending:
			markers[i] = '^'
		default:
			markers[i] = ' '
		}
	}
	return strings.TrimRight(string(markers), " ")
}

func writeResult(b *strings.Builder, v session.View) {
	res := v.State.Result
	if res == nil {
		b.WriteString("[ended]\n")
		return
	}

	banner := "DEFEAT"
	if res.Outcome == session.OutcomeVictory {
		banner = "VICTORY"
	}
	fmt.Fprintf(b, "[%s] by %s  accuracy %.1f%%  hp %d\n",
		banner, res.Reason, res.Accuracy, res.FinalHP)
	fmt.Fprintf(b, "  rank %+d -> %d (%s)   /again to requeue\n",
		res.RankDelta, res.NewRank, res.RankName)
}
