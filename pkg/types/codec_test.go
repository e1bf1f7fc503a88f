package types

import (
	"errors"
	"testing"
)

func TestDecodeServerEvent_GameState(t *testing.T) {
	raw := []byte(`{"type":"game_state",
		"player":{"hp":90,"shields":1,"combo":4,"accuracy":97.5,"typed":"the"},
		"opponent":{"hp":100,"shields":0,"combo":0,"accuracy":100}}`)

	evt, err := DecodeServerEvent(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	gs, ok := evt.(GameState)
	if !ok {
		t.Fatalf("got %T", evt)
	}
	if gs.Player.HP != 90 || gs.Player.Typed != "the" || gs.Opponent.Accuracy != 100 {
		t.Fatalf("payload: %+v", gs)
	}
}

func TestDecodeServerEvent_MatchFoundOpponentIsAName(t *testing.T) {
	// "opponent" is a username here but a full snapshot in game_state; the
	// per-type decode keeps the two from colliding.
	raw := []byte(`{"type":"match_found","match_id":"m1","opponent":"Bob","text":"the quick fox","your_side":"player1"}`)

	evt, err := DecodeServerEvent(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	mf := evt.(MatchFound)
	if mf.Opponent != "Bob" || mf.YourSide != "player1" {
		t.Fatalf("payload: %+v", mf)
	}
}

func TestDecodeServerEvent_UnknownType(t *testing.T) {
	_, err := DecodeServerEvent([]byte(`{"type":"telemetry_ping","x":1}`))
	if !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("want ErrUnknownEvent, got %v", err)
	}
}

func TestEncodeServerEvent_RoundTrip(t *testing.T) {
	payload, err := EncodeServerEvent(DamageTaken{Damage: 2, HP: 88})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	evt, err := DecodeServerEvent(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	dt := evt.(DamageTaken)
	if dt.Damage != 2 || dt.HP != 88 {
		t.Fatalf("round trip: %+v", dt)
	}
}
