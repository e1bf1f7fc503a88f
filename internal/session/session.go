package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/typeduel/internal/effects"
	"github.com/DoyleJ11/typeduel/internal/matchclock"
	"github.com/DoyleJ11/typeduel/internal/sound"
	"github.com/DoyleJ11/typeduel/pkg/types"
)

// Sender is the outbound half of the transport. The session is the sole
// gate on it: commands invalid for the current phase, or attempted while the
// transport is not ready, are silently dropped.
type Sender interface {
	Send(ctx context.Context, cmd types.ClientCommand) error
	Ready() bool
}

// Msg is one unit of input to the session loop. Every external source —
// decoded server events, user actions, clock ticks, transport failures —
// arrives through the same inbox and is processed to completion before the
// next one is handled.
type Msg interface{ isSessionMsg() }

// FromServer carries one decoded protocol event.
type FromServer struct{ Event types.ServerEvent }

// Input carries the user's full typing buffer after an edit.
type Input struct{ Typed string }

// JoinQueue is the user asking to enter matchmaking.
type JoinQueue struct{}

// LeaveQueue is the user backing out of matchmaking.
type LeaveQueue struct{}

// PlayAgain resets a finished session back to Idle.
type PlayAgain struct{}

// Disconnected signals transport loss; the session tears down to Idle.
type Disconnected struct{ Err error }

// GetView asks for a point-in-time view without data races.
type GetView struct{ Reply chan View }

// Shutdown stops the loop and cancels everything pending.
type Shutdown struct{}

type clockTick struct{}

func (FromServer) isSessionMsg()   {}
func (Input) isSessionMsg()        {}
func (JoinQueue) isSessionMsg()    {}
func (LeaveQueue) isSessionMsg()   {}
func (PlayAgain) isSessionMsg()    {}
func (Disconnected) isSessionMsg() {}
func (GetView) isSessionMsg()      {}
func (Shutdown) isSessionMsg()     {}
func (clockTick) isSessionMsg()    {}

// View is what the presentation layer renders. Match and Result are
// immutable once set, so sharing the pointers is safe. Focus stays set until
// the user actually types or the match leaves Active, so a dropped frame
// cannot lose the request.
type View struct {
	State         State
	TimeRemaining int
	Effects       []effects.Effect
	Connected     bool
	Focus         bool
}

// Session owns one connection and one lifecycle worth of match state. All
// fields below are touched only from the loop goroutine.
type Session struct {
	inbox   chan Msg
	updates chan View

	state     State
	conn      Sender
	sounds    sound.Player
	fx        *effects.Registry
	log       *zap.Logger
	connected bool

	clock      matchclock.Clock
	stopClock  context.CancelFunc
	wantsFocus bool

	ctx    context.Context
	cancel context.CancelFunc
}

type Option func(*Session)

func WithLogger(log *zap.Logger) Option {
	return func(s *Session) { s.log = log }
}

func WithSound(p sound.Player) Option {
	return func(s *Session) { s.sounds = p }
}

func WithEffectLifetime(d time.Duration) Option {
	return func(s *Session) { s.fx = effects.NewRegistry(d) }
}

func New(parent context.Context, conn Sender, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		inbox:     make(chan Msg, 64),
		updates:   make(chan View, 8),
		state:     NewState(),
		conn:      conn,
		sounds:    sound.Nop{},
		fx:        nil,
		log:       zap.NewNop(),
		connected: conn != nil,
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fx == nil {
		s.fx = effects.NewRegistry(effects.DefaultLifetime)
	}

	go s.loop()
	return s
}

// Inbox is where the transport and the presentation layer send messages.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Updates emits a fresh View after every processed message. Slow consumers
// miss intermediate frames, never the loop's progress.
func (s *Session) Updates() <-chan View { return s.updates }

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case FromServer:
				s.handleEvent(msg.Event)

			case Input:
				// Input arriving means the typing input has focus.
				s.wantsFocus = false
				next, dirs := ApplyInput(s.state, msg.Typed)
				s.state = next
				s.run(dirs)

			case JoinQueue:
				if s.state.Phase == PhaseIdle {
					s.send(types.ClientCommand{Action: types.ActionJoinQueue})
				}

			case LeaveQueue:
				if s.state.Phase == PhaseQueued {
					s.send(types.ClientCommand{Action: types.ActionLeaveQueue})
				}

			case PlayAgain:
				if s.state.Phase == PhaseEnded {
					s.reset()
				}

			case Disconnected:
				if msg.Err != nil {
					s.log.Warn("transport lost", zap.Error(msg.Err))
				}
				s.connected = false
				s.reset()

			case clockTick:
				// Nothing to mutate: remaining time is derived from the
				// anchor at view time. The tick only refreshes the frame.

			case GetView:
				msg.Reply <- s.view()
				continue

			case Shutdown:
				s.shutdown()
				return
			}

			s.publish()
		}
	}
}

func (s *Session) handleEvent(evt types.ServerEvent) {
	prev := s.state.Phase
	next, dirs := Apply(s.state, time.Now(), evt)
	s.state = next
	s.run(dirs)

	if prev != PhaseActive && next.Phase == PhaseActive {
		s.startClock()
	}
	if prev == PhaseActive && next.Phase != PhaseActive {
		s.haltClock()
		s.wantsFocus = false
	}
}

func (s *Session) run(dirs []Directive) {
	for _, d := range dirs {
		switch dir := d.(type) {
		case SpawnEffect:
			s.fx.Spawn(dir.Kind, dir.Target, dir.Value)
		case PlaySound:
			s.sounds.Play(dir.Cue)
		case FocusInput:
			s.wantsFocus = true
		case SendKeystroke:
			s.send(types.ClientCommand{Action: types.ActionKeystroke, Typed: dir.Typed})
		}
	}
}

// send forwards a command if the transport is up. A send failure counts as
// transport loss; everything else is a silent no-op.
func (s *Session) send(cmd types.ClientCommand) {
	if s.conn == nil || !s.conn.Ready() {
		return
	}
	ctx, cancel := context.WithTimeout(s.ctx, 3*time.Second)
	defer cancel()
	if err := s.conn.Send(ctx, cmd); err != nil {
		s.log.Warn("send failed", zap.String("action", cmd.Action), zap.Error(err))
		s.connected = false
		s.reset()
	}
}

func (s *Session) startClock() {
	s.haltClock()
	s.clock = matchclock.New(s.state.StartAnchor)

	ctx, cancel := context.WithCancel(s.ctx)
	s.stopClock = cancel

	c := s.clock
	go c.Poll(ctx, matchclock.PollInterval, func(time.Duration) {
		select {
		case s.inbox <- clockTick{}:
		default:
		}
	})
}

func (s *Session) haltClock() {
	if s.stopClock != nil {
		s.stopClock()
		s.stopClock = nil
	}
}

// reset discards all match-local state and cancels every pending timer and
// effect expiry. Used for both "play again" and teardown.
func (s *Session) reset() {
	s.haltClock()
	s.fx.Reset()
	s.clock = matchclock.Clock{}
	s.state = NewState()
	s.wantsFocus = false
}

func (s *Session) shutdown() {
	s.haltClock()
	s.fx.Close()
	s.cancel()
	close(s.updates)
}

func (s *Session) view() View {
	v := View{
		State:         s.state,
		TimeRemaining: int(matchclock.MatchDuration / time.Second),
		Effects:       s.fx.Snapshot(),
		Connected:     s.connected,
		Focus:         s.wantsFocus,
	}
	if s.state.Phase == PhaseActive {
		v.TimeRemaining = s.clock.Seconds(time.Now())
	}
	return v
}

func (s *Session) publish() {
	select {
	case s.updates <- s.view():
	default:
		// Consumer is behind; it will catch up on the next frame.
	}
}
