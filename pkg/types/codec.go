package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownEvent = errors.New("unknown event type")

// DecodeServerEvent unmarshals one wire message into its typed event.
// Unrecognized type tags return ErrUnknownEvent so callers can skip them
// without treating the message as fatal.
func DecodeServerEvent(data []byte) (ServerEvent, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	var (
		evt ServerEvent
		err error
	)
	switch env.Type {
	case EvtQueueJoined:
		var e QueueJoined
		err = json.Unmarshal(data, &e)
		evt = e
	case EvtQueueLeft:
		evt = QueueLeft{}
	case EvtMatchFound:
		var e MatchFound
		err = json.Unmarshal(data, &e)
		evt = e
	case EvtCountdown:
		var e Countdown
		err = json.Unmarshal(data, &e)
		evt = e
	case EvtMatchStarted:
		evt = MatchStarted{}
	case EvtGameState:
		var e GameState
		err = json.Unmarshal(data, &e)
		evt = e
	case EvtShieldGained:
		var e ShieldGained
		err = json.Unmarshal(data, &e)
		evt = e
	case EvtShieldBlocked:
		var e ShieldBlocked
		err = json.Unmarshal(data, &e)
		evt = e
	case EvtDamageTaken:
		var e DamageTaken
		err = json.Unmarshal(data, &e)
		evt = e
	case EvtAttackSent:
		var e AttackSent
		err = json.Unmarshal(data, &e)
		evt = e
	case EvtMatchEnded:
		var e MatchEnded
		err = json.Unmarshal(data, &e)
		evt = e
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return evt, nil
}

// EncodeServerEvent marshals a typed event back into its wire form with the
// "type" tag spliced in. Used by the sparring server and by tests.
func EncodeServerEvent(evt ServerEvent) ([]byte, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	fields["type"] = json.RawMessage(fmt.Sprintf("%q", evt.EventType()))
	return json.Marshal(fields)
}
