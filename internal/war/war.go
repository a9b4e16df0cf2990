// Package war runs one actor goroutine per war. The loop is the per-war
// critical section: a command mutates the state and, when it committed
// registration data, the recap is rebuilt and broadcast before the next
// command is looked at. Two users confirming at the same instant therefore
// always end up in the same recap, never overwriting each other.
package war

import (
	"context"

	"github.com/kealys/nw-war-backend/internal/engine"
	"github.com/kealys/nw-war-backend/internal/recap"
)

type Msg interface{ isWarMsg() }

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive recaps
}

func (Join) isWarMsg() {}

type Leave struct{ ClientID string }

func (Leave) isWarMsg() {}

// FromClient carries one engine command. Errs, when non-nil, receives the
// rejection (or nil on success) so the transport can tell that one client
// what to fix.
type FromClient struct {
	Cmd  engine.Command
	Errs chan<- error
}

func (FromClient) isWarMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isWarMsg() {}

type ExportReq struct {
	Reply chan engine.ExportDoc
}

func (ExportReq) isWarMsg() {}

type UnregisteredReq struct {
	Candidates []string
	Reply      chan []string
}

func (UnregisteredReq) isWarMsg() {}

type Shutdown struct{}

func (Shutdown) isWarMsg() {}

// Snapshot is one versioned recap artifact. Version increments only on
// committed changes, so clients can dedupe.
type Snapshot struct {
	Version int
	Recap   recap.SummaryView
}

// View reflects internal state without data races; used by tests and the
// HTTP layer.
type View struct {
	Version    int
	NumClients int
	State      engine.State
}

type War struct {
	inbox   chan Msg
	id      int
	name    string
	state   engine.State
	recap   recap.SummaryView
	version int
	clients map[string]chan Snapshot
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(parent context.Context, id int, name string, tax engine.Taxonomy) *War {
	ctx, cancel := context.WithCancel(parent)

	state := engine.NewState(tax)
	w := &War{
		inbox:   make(chan Msg, 64),
		id:      id,
		name:    name,
		state:   state,
		recap:   recap.Build(id, name, state), // empty recap exists from birth
		version: 0,
		clients: make(map[string]chan Snapshot),
		ctx:     ctx,
		cancel:  cancel,
	}

	go w.loop()
	return w
}

func (w *War) ID() int      { return w.id }
func (w *War) Name() string { return w.name }

// Inbox exposes the actor's channel to the transport layer and tests.
func (w *War) Inbox() chan<- Msg { return w.inbox }

func (w *War) loop() {
	for {
		select {
		case <-w.ctx.Done():
			w.shutdown()
			return

		case m := <-w.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send the current recap immediately.
				w.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- Snapshot{Version: w.version, Recap: w.recap}

			case Leave:
				delete(w.clients, msg.ClientID)

			case FromClient:
				events, newState, err := engine.Apply(w.state, msg.Cmd)
				if msg.Errs != nil {
					msg.Errs <- err
				}
				if err != nil {
					break
				}
				w.state = newState

				// The store mutation is committed at this point; a slow
				// or dead recap consumer can't undo it.
				if len(events) > 0 {
					w.recap = recap.Build(w.id, w.name, w.state)
					w.version++
					w.broadcast(Snapshot{Version: w.version, Recap: w.recap})
				}

			case GetState:
				msg.Reply <- View{
					Version:    w.version,
					NumClients: len(w.clients),
					State:      w.state,
				}

			case ExportReq:
				msg.Reply <- engine.Export(w.id, w.name, w.state)

			case UnregisteredReq:
				msg.Reply <- engine.Unregistered(w.state, msg.Candidates)

			case Shutdown:
				w.shutdown()
				return
			}
		}
	}
}

func (w *War) shutdown() {
	for id, ch := range w.clients {
		close(ch) // no more snapshots
		delete(w.clients, id)
	}
	w.cancel()
}

func (w *War) broadcast(snap Snapshot) {
	for id, ch := range w.clients {
		select {
		case ch <- snap:
			// ok
		default:
			// Client is slow/full - drop them rather than stall the war.
			close(ch)
			delete(w.clients, id)
		}
	}
}
