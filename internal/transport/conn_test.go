package transport

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/typeduel/internal/session"
	"github.com/DoyleJ11/typeduel/internal/sparring"
	"github.com/DoyleJ11/typeduel/pkg/types"
)

func recvMsg(t *testing.T, ch <-chan session.Msg, within time.Duration) session.Msg {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(within):
		t.Fatalf("timed out waiting for message")
		return nil // unreachable
	}
}

func TestConn_AgainstSparringServer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	profiles := sparring.NewProfiles()
	mm := sparring.NewMatchmaker(ctx, profiles, zap.NewNop())
	srv := httptest.NewServer(sparring.Routes(mm, profiles, zap.NewNop()))
	defer srv.Close()

	conn, err := Dial(ctx, srv.URL, "alice", zap.NewNop())
	require.NoError(t, err)
	require.True(t, conn.Ready())

	inbox := make(chan session.Msg, 64)
	go func() { _ = conn.ReadPump(ctx, inbox) }()

	require.NoError(t, conn.Send(ctx, types.ClientCommand{Action: types.ActionJoinQueue}))

	msg := recvMsg(t, inbox, 2*time.Second)
	fs, ok := msg.(session.FromServer)
	require.True(t, ok, "got %T", msg)
	joined, ok := fs.Event.(types.QueueJoined)
	require.True(t, ok, "got %T", fs.Event)
	require.Equal(t, 1, joined.QueueSize)

	// Close is idempotent and flips readiness; the pump reports the loss.
	conn.Close()
	conn.Close()
	require.False(t, conn.Ready())

	deadline := time.After(2 * time.Second)
	for {
		select {
		case m := <-inbox:
			if _, ok := m.(session.Disconnected); ok {
				return
			}
		case <-deadline:
			t.Fatalf("pump never reported the disconnect")
		}
	}
}

func TestDial_BadURL(t *testing.T) {
	_, err := Dial(context.Background(), "http://127.0.0.1:1", "alice", zap.NewNop())
	require.Error(t, err)
}
