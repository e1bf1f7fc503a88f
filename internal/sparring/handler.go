package sparring

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/typeduel/pkg/types"
)

// WSHandler upgrades the per-player connection and bridges it onto the
// matchmaker loop.
func WSHandler(mm *Matchmaker, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")
		if username == "" {
			http.Error(w, "missing username", http.StatusBadRequest)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// Local practice server; origin checks are not useful here.
			InsecureSkipVerify: true,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := uuid.NewString()
		log.Info("player connected",
			zap.String("username", username),
			zap.String("conn_id", connID))

		out := make(chan []byte, 32)
		mm.Inbox() <- Connect{Username: username, ConnID: connID, Outbox: out}
		defer func() { mm.Inbox() <- Disconnect{Username: username, ConnID: connID} }()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for payload := range out {
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cmd types.ClientCommand
			if err := json.Unmarshal(data, &cmd); err != nil {
				log.Debug("bad command frame", zap.String("username", username), zap.Error(err))
				continue
			}

			switch cmd.Action {
			case types.ActionJoinQueue:
				mm.Inbox() <- JoinQueue{Username: username}
			case types.ActionLeaveQueue:
				mm.Inbox() <- LeaveQueue{Username: username}
			case types.ActionKeystroke:
				mm.Inbox() <- Keystroke{Username: username, Typed: cmd.Typed}
			default:
				// Unknown actions are ignored, mirroring the client's own
				// forward-compatibility rule.
			}
		}
	}
}
