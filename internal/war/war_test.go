package war

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kealys/nw-war-backend/internal/engine"
)

// helper: receive one snapshot with a timeout so tests never hang
func recvSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatalf("client outbox closed unexpectedly")
		}
		return snap
	case <-time.After(within):
		t.Fatalf("timed out waiting for snapshot")
		return Snapshot{} // unreachable
	}
}

func recvView(t *testing.T, ch <-chan View, within time.Duration) View {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(within):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

// send pushes one command and waits for the engine's verdict.
func send(t *testing.T, w *War, cmd engine.Command) error {
	t.Helper()
	errs := make(chan error, 1)
	w.Inbox() <- FromClient{Cmd: cmd, Errs: errs}
	select {
	case err := <-errs:
		return err
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for command result")
		return nil // unreachable
	}
}

func signUp(t *testing.T, w *War, userID, name string, role engine.Role) {
	t.Helper()
	cmds := []engine.Command{
		{Type: engine.CmdChooseRole, UserID: userID, Name: name, Role: role},
		{Type: engine.CmdChooseWeight, UserID: userID, Weight: engine.WeightHeavy},
		{Type: engine.CmdChooseWeapon, UserID: userID, Weapon: "SnS", Slot: 1},
		{Type: engine.CmdChooseWeapon, UserID: userID, Weapon: "WH", Slot: 2},
		{Type: engine.CmdConfirm, UserID: userID, Name: name},
	}
	for _, cmd := range cmds {
		if err := send(t, w, cmd); err != nil {
			t.Fatalf("unexpected err on %v: %v", cmd.Type, err)
		}
	}
}

func TestWar_JoinReceivesCurrentRecapImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(ctx, 1, "War #1", engine.DefaultTaxonomy())

	out := make(chan Snapshot, 2)
	w.Inbox() <- Join{ClientID: "c1", Outbox: out}

	first := recvSnapshot(t, out, 100*time.Millisecond)
	if first.Version != 0 {
		t.Fatalf("after join: want version=0, got %d", first.Version)
	}
	if first.Recap.Total != 0 {
		t.Fatalf("after join: want empty recap, got total=%d", first.Recap.Total)
	}
	if len(first.Recap.Sections) != len(engine.DefaultTaxonomy().Roles) {
		t.Fatalf("recap missing sections: %+v", first.Recap.Sections)
	}
}

func TestWar_ConfirmBroadcastsRebuiltRecap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(ctx, 1, "War #1", engine.DefaultTaxonomy())

	out := make(chan Snapshot, 8)
	w.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond) // join snapshot

	signUp(t, w, "u1", "Aria", "Tank")

	// Session steps broadcast nothing; the confirm produces exactly one
	// new version.
	next := recvSnapshot(t, out, 100*time.Millisecond)
	if next.Version != 1 {
		t.Fatalf("after confirm: want version=1, got %d", next.Version)
	}
	if next.Recap.Total != 1 {
		t.Fatalf("after confirm: want total=1, got %d", next.Recap.Total)
	}
	for _, sec := range next.Recap.Sections {
		if sec.Role == "Tank" {
			if sec.Count != 1 || sec.Lines[0] != "Aria (heavy | SnS + WH)" {
				t.Fatalf("unexpected Tank section: %+v", sec)
			}
		}
	}
}

func TestWar_RejectionReportedToSenderOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(ctx, 1, "War #1", engine.DefaultTaxonomy())

	err := send(t, w, engine.Command{Type: engine.CmdConfirm, UserID: "u1", Name: "Aria"})
	if err != engine.ErrIncompleteSelection {
		t.Fatalf("want ErrIncompleteSelection, got %v", err)
	}

	// The rejection must not have bumped the version.
	reply := make(chan View, 1)
	w.Inbox() <- GetState{Reply: reply}
	view := recvView(t, reply, 100*time.Millisecond)
	if view.Version != 0 {
		t.Fatalf("failed confirm must not version the recap, got %d", view.Version)
	}
}

func TestWar_ConcurrentConfirmsAllLand(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(ctx, 1, "War #1", engine.DefaultTaxonomy())

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("u%d", i)
			signUp(t, w, id, "Player "+id, "DPS")
		}(i)
	}
	wg.Wait()

	reply := make(chan View, 1)
	w.Inbox() <- GetState{Reply: reply}
	view := recvView(t, reply, 100*time.Millisecond)

	if got := len(view.State.Buckets["DPS"]); got != n {
		t.Fatalf("want %d DPS registrants, got %d", n, got)
	}
	if got := engine.UniqueTotal(view.State); got != n {
		t.Fatalf("want unique total %d, got %d", n, got)
	}

	// One rebuild after the dust settles reflects every confirm.
	out := make(chan Snapshot, 2)
	w.Inbox() <- Join{ClientID: "late", Outbox: out}
	snap := recvSnapshot(t, out, 100*time.Millisecond)
	if snap.Recap.Total != n {
		t.Fatalf("recap total: want %d, got %d", n, snap.Recap.Total)
	}
}

func TestWar_SlowClientIsDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(ctx, 1, "War #1", engine.DefaultTaxonomy())

	// Unbuffered outbox that nobody reads: the join send would block, so
	// use capacity 1 and let the join snapshot fill it.
	out := make(chan Snapshot, 1)
	w.Inbox() <- Join{ClientID: "c1", Outbox: out}

	signUp(t, w, "u1", "Aria", "Tank")

	reply := make(chan View, 1)
	w.Inbox() <- GetState{Reply: reply}
	view := recvView(t, reply, 100*time.Millisecond)
	if view.NumClients != 0 {
		t.Fatalf("expected slow client to be dropped; NumClients=%d", view.NumClients)
	}
	// The store mutation itself survives the failed delivery.
	if got := engine.UniqueTotal(view.State); got != 1 {
		t.Fatalf("mutation lost with the client; total=%d", got)
	}
}

func TestWar_ExportAndUnregisteredQueries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(ctx, 4, "Friday war", engine.DefaultTaxonomy())
	signUp(t, w, "u1", "Aria", "Tank")

	exportReply := make(chan engine.ExportDoc, 1)
	w.Inbox() <- ExportReq{Reply: exportReply}
	doc := <-exportReply
	if doc.ID != 4 || doc.Name != "Friday war" {
		t.Fatalf("unexpected export header: %+v", doc)
	}
	if len(doc.Registrations["Tank"]) != 1 {
		t.Fatalf("want one Tank in export, got %+v", doc.Registrations["Tank"])
	}

	unregReply := make(chan []string, 1)
	w.Inbox() <- UnregisteredReq{Candidates: []string{"u1", "u2"}, Reply: unregReply}
	missing := <-unregReply
	if len(missing) != 1 || missing[0] != "u2" {
		t.Fatalf("want [u2], got %v", missing)
	}
}

func TestWar_ShutdownClosesClientOutboxes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(ctx, 1, "War #1", engine.DefaultTaxonomy())

	out := make(chan Snapshot, 2)
	w.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	w.Inbox() <- Shutdown{}

	select {
	case _, ok := <-out:
		if ok {
			t.Fatalf("expected closed outbox, got a snapshot")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("outbox not closed after shutdown")
	}
}
