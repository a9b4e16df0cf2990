package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kealys/nw-war-backend/internal/config"
	"github.com/kealys/nw-war-backend/internal/engine"
	"github.com/kealys/nw-war-backend/internal/registry"
	"github.com/kealys/nw-war-backend/internal/types"
	"github.com/kealys/nw-war-backend/internal/war"
)

// Handler upgrades to a websocket scoped to one war: selection messages in,
// recap snapshots and per-client errors out.
func Handler(reg *registry.Registry, cfg config.Config, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.URL.Query().Get("war"))
		if err != nil {
			http.Error(w, "missing or bad war id", http.StatusBadRequest)
			return
		}

		reply := make(chan *war.War, 1)
		reg.Inbox() <- registry.GetWar{ID: id, Reply: reply}
		wr := <-reply
		if wr == nil {
			http.Error(w, engine.ErrEventNotFound.Error(), http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			log.Warn("ws accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan war.Snapshot, 8)
		clientID := uuid.NewString()

		wr.Inbox() <- war.Join{ClientID: clientID, Outbox: out}
		defer func() { wr.Inbox() <- war.Leave{ClientID: clientID} }()

		log.Info("client joined war",
			zap.Int("war_id", id), zap.String("client_id", clientID))

		// Writer goroutine: pushes every recap snapshot until the war
		// closes the outbox or the connection dies.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				msg := types.ServerMessage{
					Type:    "RecapSnapshot",
					Version: snap.Version,
					Recap:   &snap.Recap,
				}
				payload, _ := json.Marshal(msg)
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

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "bad_request", "bad json")
				continue
			}

			cmd, ok := toCommand(cm)
			if !ok {
				writeError(r.Context(), conn, "bad_request", "unknown message type")
				continue
			}
			// Authorization is a transport concern: assert the flag here,
			// the engine enforces it.
			cmd.Authorized = cfg.IsPrivileged(cmd.UserID)

			errs := make(chan error, 1)
			wr.Inbox() <- war.FromClient{Cmd: cmd, Errs: errs}
			if err := <-errs; err != nil {
				writeError(r.Context(), conn, ErrorCode(err), err.Error())
			}
		}
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, code, msg string) {
	payload, _ := json.Marshal(types.ServerMessage{Type: "Error", Code: code, Error: msg})
	_ = conn.Write(ctx, websocket.MessageText, payload)
}

func toCommand(m types.ClientMessage) (engine.Command, bool) {
	if m.UserID == "" {
		return engine.Command{}, false
	}

	cmd := engine.Command{
		UserID: m.UserID,
		Name:   m.Name,
		Role:   engine.Role(m.Role),
		Weight: engine.Weight(m.Weight),
		Weapon: engine.Weapon(m.Weapon),
		Slot:   m.Slot,
	}

	switch m.Type {
	case "ChooseRole":
		cmd.Type = engine.CmdChooseRole
	case "ChooseWeight":
		cmd.Type = engine.CmdChooseWeight
	case "ChooseWeapon":
		cmd.Type = engine.CmdChooseWeapon
	case "Confirm":
		cmd.Type = engine.CmdConfirm
	case "MarkAbsent":
		cmd.Type = engine.CmdMarkAbsent
	case "Reset":
		cmd.Type = engine.CmdReset
	default:
		return engine.Command{}, false
	}
	return cmd, true
}

// ErrorCode maps engine rejections to stable wire codes clients can branch on.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, engine.ErrEventNotFound):
		return "event_not_found"
	case errors.Is(err, engine.ErrIncompleteSelection):
		return "incomplete_selection"
	case errors.Is(err, engine.ErrDuplicateWeapon):
		return "duplicate_weapon_selection"
	case errors.Is(err, engine.ErrUnauthorized):
		return "unauthorized"
	default:
		return "bad_request"
	}
}
