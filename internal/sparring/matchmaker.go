package sparring

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/typeduel/pkg/types"
)

type Msg interface{ isMatchmakerMsg() }

// Connect registers a player's outbox. ConnID names the physical connection
// so a stale Disconnect from a replaced connection can be told apart from the
// live one. The matchmaker owns the channel from here on and closes it on
// Disconnect or shutdown.
type Connect struct {
	Username string
	ConnID   string
	Outbox   chan []byte
}

type Disconnect struct {
	Username string
	ConnID   string
}

type JoinQueue struct{ Username string }

type LeaveQueue struct{ Username string }

type Keystroke struct {
	Username string
	Typed    string
}

type Shutdown struct{}

// internal timer messages
type countdownTick struct {
	MatchID string
	Count   int
}

type matchStart struct{ MatchID string }

type matchDeadline struct{ MatchID string }

func (Connect) isMatchmakerMsg()       {}
func (Disconnect) isMatchmakerMsg()    {}
func (JoinQueue) isMatchmakerMsg()     {}
func (LeaveQueue) isMatchmakerMsg()    {}
func (Keystroke) isMatchmakerMsg()     {}
func (Shutdown) isMatchmakerMsg()      {}
func (countdownTick) isMatchmakerMsg() {}
func (matchStart) isMatchmakerMsg()    {}
func (matchDeadline) isMatchmakerMsg() {}

// Matchmaker is the single loop that owns the queue, every running match and
// every client outbox. Timers post back into the inbox so all state changes
// happen on the loop.
type client struct {
	id  string
	out chan []byte
}

type Matchmaker struct {
	inbox    chan Msg
	clients  map[string]client
	queue    []string
	matches  map[string]MatchState
	byPlayer map[string]string
	timers   map[string]*time.Timer
	profiles *Profiles
	log      *zap.Logger

	countdownStep time.Duration
	matchDuration time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

type MatchmakerOption func(*Matchmaker)

// WithTimings shortens the countdown step and match duration, mainly for
// tests.
func WithTimings(countdownStep, matchDuration time.Duration) MatchmakerOption {
	return func(m *Matchmaker) {
		m.countdownStep = countdownStep
		m.matchDuration = matchDuration
	}
}

func NewMatchmaker(parent context.Context, profiles *Profiles, log *zap.Logger, opts ...MatchmakerOption) *Matchmaker {
	ctx, cancel := context.WithCancel(parent)
	m := &Matchmaker{
		inbox:         make(chan Msg, 64),
		clients:       make(map[string]client),
		matches:       make(map[string]MatchState),
		byPlayer:      make(map[string]string),
		timers:        make(map[string]*time.Timer),
		profiles:      profiles,
		log:           log,
		countdownStep: time.Second,
		matchDuration: 60 * time.Second,
		ctx:           ctx,
		cancel:        cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	go m.loop()
	return m
}

func (m *Matchmaker) Inbox() chan<- Msg { return m.inbox }

func (m *Matchmaker) loop() {
	for {
		select {
		case <-m.ctx.Done():
			m.shutdown()
			return

		case raw := <-m.inbox:
			switch msg := raw.(type) {
			case Connect:
				if old, ok := m.clients[msg.Username]; ok {
					close(old.out)
				}
				m.clients[msg.Username] = client{id: msg.ConnID, out: msg.Outbox}

			case Disconnect:
				m.handleDisconnect(msg.Username, msg.ConnID)

			case JoinQueue:
				m.handleJoinQueue(msg.Username)

			case LeaveQueue:
				m.removeFromQueue(msg.Username)
				m.sendTo(msg.Username, types.QueueLeft{})

			case Keystroke:
				m.handleKeystroke(msg.Username, msg.Typed)

			case countdownTick:
				match, ok := m.matches[msg.MatchID]
				if !ok {
					continue
				}
				m.broadcast(match, types.Countdown{Count: msg.Count})
				if msg.Count > 1 {
					m.schedule(msg.MatchID, m.countdownStep, countdownTick{MatchID: msg.MatchID, Count: msg.Count - 1})
				} else {
					m.schedule(msg.MatchID, m.countdownStep, matchStart{MatchID: msg.MatchID})
				}

			case matchStart:
				match, ok := m.matches[msg.MatchID]
				if !ok {
					continue
				}
				match.Status = StatusActive
				m.matches[msg.MatchID] = match
				m.broadcast(match, types.MatchStarted{})
				m.schedule(msg.MatchID, m.matchDuration, matchDeadline{MatchID: msg.MatchID})

			case matchDeadline:
				match, ok := m.matches[msg.MatchID]
				if !ok || match.Status != StatusActive {
					continue
				}
				m.endMatch(match, WinnerOnTime(match), "time")

			case Shutdown:
				m.shutdown()
				return
			}
		}
	}
}

func (m *Matchmaker) handleJoinQueue(username string) {
	if _, inMatch := m.byPlayer[username]; inMatch {
		return
	}
	for _, queued := range m.queue {
		if queued == username {
			return
		}
	}

	m.queue = append(m.queue, username)
	m.sendTo(username, types.QueueJoined{QueueSize: len(m.queue)})

	if len(m.queue) < 2 {
		return
	}

	p1, p2 := m.queue[0], m.queue[1]
	m.queue = m.queue[2:]

	id := uuid.NewString()
	text := TextPool[rand.Intn(len(TextPool))]
	match := NewMatchState(id, text, p1, p2)
	m.matches[id] = match
	m.byPlayer[p1] = id
	m.byPlayer[p2] = id

	m.log.Info("match created",
		zap.String("match_id", id),
		zap.String("player1", p1),
		zap.String("player2", p2))

	m.sendTo(p1, types.MatchFound{MatchID: id, Opponent: p2, Text: text, YourSide: "player1"})
	m.sendTo(p2, types.MatchFound{MatchID: id, Opponent: p1, Text: text, YourSide: "player2"})

	m.schedule(id, 0, countdownTick{MatchID: id, Count: 3})
}

func (m *Matchmaker) handleKeystroke(username, typed string) {
	id, ok := m.byPlayer[username]
	if !ok {
		return
	}
	match, ok := m.matches[id]
	if !ok || match.Status != StatusActive {
		return
	}

	next, events := ApplyKeystroke(match, username, typed)
	m.matches[id] = next

	i := next.IndexOf(username)
	opponent := next.Players[1-i].Username
	for _, ev := range events {
		if ev.To == ToSelf {
			m.sendTo(username, ev.Evt)
		} else {
			m.sendTo(opponent, ev.Evt)
		}
	}

	for idx, p := range next.Players {
		m.sendTo(p.Username, next.Snapshot(idx))
	}

	if next.Players[1-i].HP <= 0 {
		m.endMatch(next, i, "ko")
	}
}

func (m *Matchmaker) handleDisconnect(username, connID string) {
	if c, ok := m.clients[username]; ok && c.id != connID {
		// Teardown of a connection that was already replaced by a
		// reconnect; the live connection and its match stay up.
		return
	}

	m.removeFromQueue(username)
	if c, ok := m.clients[username]; ok {
		close(c.out)
		delete(m.clients, username)
	}

	if id, ok := m.byPlayer[username]; ok {
		if match, live := m.matches[id]; live && match.Status != StatusEnded {
			winner := 1 - match.IndexOf(username)
			m.endMatch(match, winner, "disconnect")
		}
	}
}

func (m *Matchmaker) endMatch(match MatchState, winnerIdx int, reason string) {
	match.Status = StatusEnded

	winner := match.Players[winnerIdx]
	loser := match.Players[1-winnerIdx]
	winnerDelta, loserDelta := RankChanges(winner.Accuracy, reason == "disconnect")
	w, l := m.profiles.ApplyResult(winner.Username, loser.Username, winnerDelta, loserDelta)

	m.sendTo(winner.Username, types.MatchEnded{
		Result: "victory", Reason: reason,
		RankChange: winnerDelta, NewRank: w.Rank, RankName: w.RankName,
		Accuracy: roundTenth(winner.Accuracy), FinalHP: winner.HP,
	})
	m.sendTo(loser.Username, types.MatchEnded{
		Result: "defeat", Reason: reason,
		RankChange: loserDelta, NewRank: l.Rank, RankName: l.RankName,
		Accuracy: roundTenth(loser.Accuracy), FinalHP: loser.HP,
	})

	if t, ok := m.timers[match.ID]; ok {
		t.Stop()
		delete(m.timers, match.ID)
	}
	delete(m.matches, match.ID)
	delete(m.byPlayer, winner.Username)
	delete(m.byPlayer, loser.Username)
}

// schedule replaces the match's pending timer with a new one that posts msg
// back into the inbox. One timer per match is enough: countdown ticks, start
// and deadline are strictly sequential.
func (m *Matchmaker) schedule(matchID string, d time.Duration, msg Msg) {
	if t, ok := m.timers[matchID]; ok {
		t.Stop()
	}
	m.timers[matchID] = time.AfterFunc(d, func() {
		select {
		case m.inbox <- msg:
		case <-m.ctx.Done():
		}
	})
}

func (m *Matchmaker) removeFromQueue(username string) {
	for i, queued := range m.queue {
		if queued == username {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return
		}
	}
}

func (m *Matchmaker) sendTo(username string, evt types.ServerEvent) {
	c, ok := m.clients[username]
	if !ok {
		return
	}
	payload, err := types.EncodeServerEvent(evt)
	if err != nil {
		m.log.Error("encode event", zap.Error(err))
		return
	}
	select {
	case c.out <- payload:
	default:
		// Slow client; drop the connection rather than block the loop.
		close(c.out)
		delete(m.clients, username)
	}
}

func (m *Matchmaker) broadcast(match MatchState, evt types.ServerEvent) {
	for _, p := range match.Players {
		m.sendTo(p.Username, evt)
	}
}

func (m *Matchmaker) shutdown() {
	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
	for username, c := range m.clients {
		close(c.out)
		delete(m.clients, username)
	}
	m.cancel()
}
