package xdriver

import (
	"testing"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/imagewin/driver/xdriver/wmprotocols"
	"github.com/jmigpin/imagewin/util/uiloop"
)

const (
	atomProtocols    = 100
	atomDeleteWindow = 101
)

// Display without a connection: dead, so disposing never sends requests.
func newOfflineDisplay(t *testing.T, ids ...xproto.Window) *Display {
	t.Helper()
	d := &Display{
		Wmp:  wmprotocols.NewWMPWithAtoms(nil, atomProtocols, atomDeleteWindow),
		loop: uiloop.New(),
		wins: map[xproto.Window]*Window{},
		dead: make(chan struct{}),
	}
	close(d.dead)
	for _, id := range ids {
		d.wins[id] = &Window{
			Window: id,
			d:      d,
			done:   make(chan struct{}),
			mapped: make(chan struct{}),
		}
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func deleteWindowEvent(id xproto.Window) xproto.ClientMessageEvent {
	data := make([]uint32, 5)
	data[0] = atomDeleteWindow
	return xproto.ClientMessageEvent{
		Format: 32,
		Window: id,
		Type:   atomProtocols,
		Data:   xproto.ClientMessageDataUnionData32New(data),
	}
}

func isDone(w *Window) bool {
	select {
	case <-w.Done():
		return true
	default:
		return false
	}
}

func TestHandleEventDeleteWindow(t *testing.T) {
	d := newOfflineDisplay(t, 1, 2)
	w1, w2 := d.wins[1], d.wins[2]

	err := d.loop.Run(func() error {
		d.handleEvent(deleteWindowEvent(1))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !isDone(w1) {
		t.Fatal("window 1 not disposed")
	}
	if isDone(w2) {
		t.Fatal("window 2 disposed")
	}
	_ = d.loop.Run(func() error {
		if _, ok := d.wins[1]; ok {
			t.Error("window 1 still registered")
		}
		if _, ok := d.wins[2]; !ok {
			t.Error("window 2 not registered")
		}
		return nil
	})
}

func TestHandleEventOtherMessage(t *testing.T) {
	d := newOfflineDisplay(t, 1)
	w1 := d.wins[1]

	ev := deleteWindowEvent(1)
	ev.Type = atomProtocols + 10 // not wm_protocols
	_ = d.loop.Run(func() error {
		d.handleEvent(ev)
		d.handleEvent(deleteWindowEvent(3)) // unknown window
		return nil
	})
	if isDone(w1) {
		t.Fatal("window disposed")
	}
}

func TestHandleEventDestroyNotify(t *testing.T) {
	d := newOfflineDisplay(t, 1, 2)
	w1, w2 := d.wins[1], d.wins[2]

	_ = d.loop.Run(func() error {
		d.handleEvent(xproto.DestroyNotifyEvent{Event: 2, Window: 2})
		return nil
	})
	if isDone(w1) || !isDone(w2) {
		t.Fatalf("disposed: %v, %v", isDone(w1), isDone(w2))
	}
}

func TestHandleEventMapNotify(t *testing.T) {
	d := newOfflineDisplay(t, 1)
	w1 := d.wins[1]

	// not mapped yet
	if w1.waitMapped(10 * time.Millisecond) {
		t.Fatal("mapped")
	}

	d.loop.Post(func() {
		d.handleEvent(xproto.MapNotifyEvent{Event: 1, Window: 1})
		d.handleEvent(xproto.MapNotifyEvent{Event: 1, Window: 1}) // remapped
	})
	if !w1.waitMapped(5 * time.Second) {
		t.Fatal("not mapped")
	}
}

func TestCloseDeadDisplay(t *testing.T) {
	d := newOfflineDisplay(t, 1, 2)
	ws := []*Window{d.wins[1], d.wins[2]}

	// must not touch the (closed) connection
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	for i, w := range ws {
		if !isDone(w) {
			t.Fatalf("window %v not disposed", i)
		}
	}
	if err := ws[0].Close(); err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil { // second close is a no-op
		t.Fatal(err)
	}
}
