package sparring

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/typeduel/pkg/types"
)

// helper: decode events off an outbox until one of the wanted type shows up,
// with a deadline so tests never hang
func waitEvent(t *testing.T, ch <-chan []byte, tag string, within time.Duration) types.ServerEvent {
	t.Helper()
	deadline := time.After(within)
	for {
		select {
		case payload, ok := <-ch:
			if !ok {
				t.Fatalf("outbox closed while waiting for %s", tag)
			}
			evt, err := types.DecodeServerEvent(payload)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if evt.EventType() == tag {
				return evt
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", tag)
			return nil
		}
	}
}

func startPair(t *testing.T, mm *Matchmaker) (chan []byte, chan []byte, types.MatchFound) {
	t.Helper()

	out1 := make(chan []byte, 32)
	out2 := make(chan []byte, 32)
	mm.Inbox() <- Connect{Username: "alice", ConnID: "alice-1", Outbox: out1}
	mm.Inbox() <- Connect{Username: "bob", ConnID: "bob-1", Outbox: out2}

	mm.Inbox() <- JoinQueue{Username: "alice"}
	mm.Inbox() <- JoinQueue{Username: "bob"}

	waitEvent(t, out1, types.EvtQueueJoined, time.Second)
	found := waitEvent(t, out1, types.EvtMatchFound, time.Second).(types.MatchFound)
	found2 := waitEvent(t, out2, types.EvtMatchFound, time.Second).(types.MatchFound)

	if found.MatchID != found2.MatchID {
		t.Fatalf("players paired into different matches")
	}
	if found.YourSide != "player1" || found2.YourSide != "player2" {
		t.Fatalf("sides: %s / %s", found.YourSide, found2.YourSide)
	}
	if found.Opponent != "bob" || found2.Opponent != "alice" {
		t.Fatalf("opponents: %s / %s", found.Opponent, found2.Opponent)
	}
	return out1, out2, found
}

func TestMatchmaker_FullMatchFlow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mm := NewMatchmaker(ctx, NewProfiles(), zap.NewNop(),
		WithTimings(10*time.Millisecond, 300*time.Millisecond))
	defer func() { mm.Inbox() <- Shutdown{} }()

	out1, out2, found := startPair(t, mm)

	for want := 3; want >= 1; want-- {
		tick := waitEvent(t, out1, types.EvtCountdown, time.Second).(types.Countdown)
		if tick.Count != want {
			t.Fatalf("countdown: got %d, want %d", tick.Count, want)
		}
	}
	waitEvent(t, out1, types.EvtMatchStarted, time.Second)
	waitEvent(t, out2, types.EvtMatchStarted, time.Second)

	// Alice completes the first word of the match text.
	firstWord := found.Text[:wordLengthAt(found.Text, 0)]
	mm.Inbox() <- Keystroke{Username: "alice", Typed: firstWord}

	attack := waitEvent(t, out1, types.EvtAttackSent, time.Second).(types.AttackSent)
	if attack.Damage < 1 {
		t.Fatalf("attack damage: %d", attack.Damage)
	}
	hit := waitEvent(t, out2, types.EvtDamageTaken, time.Second).(types.DamageTaken)
	if hit.HP >= StartHP {
		t.Fatalf("opponent hp after hit: %d", hit.HP)
	}
	snap := waitEvent(t, out2, types.EvtGameState, time.Second).(types.GameState)
	if snap.Player.HP != hit.HP {
		t.Fatalf("snapshot hp %d, damage event hp %d", snap.Player.HP, hit.HP)
	}

	// Nobody reaches a KO, so the deadline decides: equal accuracy means the
	// tie goes to player2.
	ended1 := waitEvent(t, out1, types.EvtMatchEnded, 2*time.Second).(types.MatchEnded)
	ended2 := waitEvent(t, out2, types.EvtMatchEnded, 2*time.Second).(types.MatchEnded)
	if ended1.Reason != "time" || ended2.Reason != "time" {
		t.Fatalf("reasons: %s / %s", ended1.Reason, ended2.Reason)
	}
	if ended1.Result == ended2.Result {
		t.Fatalf("both players got %s", ended1.Result)
	}

	// Winner by HP is alice: she dealt damage and took none.
	if ended1.Result != "victory" {
		t.Fatalf("alice should win on hp, got %s", ended1.Result)
	}
	if ended1.RankChange < 25 || ended2.RankChange != -15 {
		t.Fatalf("rank changes: %d / %d", ended1.RankChange, ended2.RankChange)
	}
	if ended1.NewRank <= 1000 || ended2.NewRank >= 1000 {
		t.Fatalf("new ranks: %d / %d", ended1.NewRank, ended2.NewRank)
	}
}

func TestMatchmaker_DisconnectForfeitsMatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mm := NewMatchmaker(ctx, NewProfiles(), zap.NewNop(),
		WithTimings(5*time.Millisecond, time.Minute))
	defer func() { mm.Inbox() <- Shutdown{} }()

	out1, out2, _ := startPair(t, mm)
	waitEvent(t, out2, types.EvtMatchStarted, time.Second)

	mm.Inbox() <- Disconnect{Username: "alice", ConnID: "alice-1"}

	ended := waitEvent(t, out2, types.EvtMatchEnded, time.Second).(types.MatchEnded)
	if ended.Result != "victory" || ended.Reason != "disconnect" {
		t.Fatalf("forfeit result: %+v", ended)
	}

	// The disconnected side's outbox is closed by the matchmaker.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-out1:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("alice's outbox never closed")
		}
	}
}

func TestMatchmaker_ReconnectSurvivesStaleDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mm := NewMatchmaker(ctx, NewProfiles(), zap.NewNop(),
		WithTimings(5*time.Millisecond, time.Minute))
	defer func() { mm.Inbox() <- Shutdown{} }()

	out1, out2, _ := startPair(t, mm)
	waitEvent(t, out2, types.EvtMatchStarted, time.Second)

	// Alice reconnects; the old connection's teardown arrives afterwards and
	// must not touch the new connection or forfeit the live match.
	out1b := make(chan []byte, 32)
	mm.Inbox() <- Connect{Username: "alice", ConnID: "alice-2", Outbox: out1b}
	mm.Inbox() <- Disconnect{Username: "alice", ConnID: "alice-1"}

	// The replaced outbox is closed by the reconnect.
	deadline := time.After(time.Second)
drain:
	for {
		select {
		case _, ok := <-out1:
			if !ok {
				break drain
			}
		case <-deadline:
			t.Fatalf("replaced outbox never closed")
		}
	}

	// The match is still live: bob's real disconnect forfeits it to alice,
	// delivered on her new connection.
	mm.Inbox() <- Disconnect{Username: "bob", ConnID: "bob-1"}
	ended := waitEvent(t, out1b, types.EvtMatchEnded, time.Second).(types.MatchEnded)
	if ended.Result != "victory" || ended.Reason != "disconnect" {
		t.Fatalf("match after stale disconnect: %+v", ended)
	}
}

func TestMatchmaker_LeaveQueue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mm := NewMatchmaker(ctx, NewProfiles(), zap.NewNop())
	defer func() { mm.Inbox() <- Shutdown{} }()

	out := make(chan []byte, 8)
	mm.Inbox() <- Connect{Username: "alice", ConnID: "alice-1", Outbox: out}
	mm.Inbox() <- JoinQueue{Username: "alice"}
	waitEvent(t, out, types.EvtQueueJoined, time.Second)

	mm.Inbox() <- LeaveQueue{Username: "alice"}
	waitEvent(t, out, types.EvtQueueLeft, time.Second)

	// A second joiner now waits alone instead of getting paired.
	out2 := make(chan []byte, 8)
	mm.Inbox() <- Connect{Username: "bob", ConnID: "bob-1", Outbox: out2}
	mm.Inbox() <- JoinQueue{Username: "bob"}
	joined := waitEvent(t, out2, types.EvtQueueJoined, time.Second).(types.QueueJoined)
	if joined.QueueSize != 1 {
		t.Fatalf("queue size: %d", joined.QueueSize)
	}
}
