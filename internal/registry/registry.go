// Package registry owns the set of live wars. Ids are handed out
// sequentially and never reused; an unknown id simply yields nil, which the
// API layer surfaces as war-not-found.
package registry

import (
	"context"
	"fmt"

	"github.com/kealys/nw-war-backend/internal/engine"
	"github.com/kealys/nw-war-backend/internal/war"
)

type Msg interface{ isRegistryMsg() }

type CreateWar struct {
	Name     string // optional; defaulted from the id when empty
	Taxonomy engine.Taxonomy
	Reply    chan *war.War
}

type GetWar struct {
	ID    int
	Reply chan *war.War
}

type RemoveWar struct{ ID int }

type ShutdownRegistry struct{}

func (CreateWar) isRegistryMsg()        {}
func (GetWar) isRegistryMsg()           {}
func (RemoveWar) isRegistryMsg()        {}
func (ShutdownRegistry) isRegistryMsg() {}

type Registry struct {
	inbox  chan Msg
	wars   map[int]*war.War
	nextID int
	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context) *Registry {
	ctx, cancel := context.WithCancel(parent)
	r := &Registry{
		inbox:  make(chan Msg, 64),
		wars:   make(map[int]*war.War),
		nextID: 1,
		ctx:    ctx,
		cancel: cancel,
	}
	go r.loop()
	return r
}

func (r *Registry) Inbox() chan<- Msg { return r.inbox }

func (r *Registry) loop() {
	for {
		select {
		case <-r.ctx.Done():
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case CreateWar:
				id := r.nextID
				r.nextID++

				name := msg.Name
				if name == "" {
					name = fmt.Sprintf("War #%d", id)
				}

				w := war.New(r.ctx, id, name, msg.Taxonomy)
				r.wars[id] = w
				msg.Reply <- w

			case GetWar:
				msg.Reply <- r.wars[msg.ID] // may be nil

			case RemoveWar:
				if w := r.wars[msg.ID]; w != nil {
					w.Inbox() <- war.Shutdown{}
					delete(r.wars, msg.ID)
				}

			case ShutdownRegistry:
				for _, w := range r.wars {
					w.Inbox() <- war.Shutdown{}
				}
				clear(r.wars)
				r.cancel()
			}
		}
	}
}
