package wmprotocols

import (
	"log"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
)

// https://tronche.com/gui/x/icccm/sec-4.html#s-4.2.8.1

type WMP struct {
	xu    *xgbutil.XUtil
	atoms struct {
		WM_PROTOCOLS     xproto.Atom
		WM_DELETE_WINDOW xproto.Atom
	}
}

func NewWMP(xu *xgbutil.XUtil) (*WMP, error) {
	a1, err := xprop.Atm(xu, "WM_PROTOCOLS")
	if err != nil {
		return nil, err
	}
	a2, err := xprop.Atm(xu, "WM_DELETE_WINDOW")
	if err != nil {
		return nil, err
	}
	return NewWMPWithAtoms(xu, a1, a2), nil
}

// NewWMPWithAtoms uses already known atom values.
func NewWMPWithAtoms(xu *xgbutil.XUtil, protocols, deleteWindow xproto.Atom) *WMP {
	wmp := &WMP{xu: xu}
	wmp.atoms.WM_PROTOCOLS = protocols
	wmp.atoms.WM_DELETE_WINDOW = deleteWindow
	return wmp
}

// Register asks the window manager to send a client message instead of killing the client when the window is closed.
func (wmp *WMP) Register(win xproto.Window) error {
	return icccm.WmProtocolsSet(wmp.xu, win, []string{"WM_DELETE_WINDOW"})
}

func (wmp *WMP) OnClientMessageDeleteWindow(ev *xproto.ClientMessageEvent) (deleteWindow bool) {
	if ev.Type != wmp.atoms.WM_PROTOCOLS {
		return false
	}
	if ev.Format != 32 {
		log.Printf("ev format not 32: %+v", ev)
		return false
	}
	// first data item holds the protocol atom
	data := ev.Data.Data32
	return len(data) > 0 && xproto.Atom(data[0]) == wmp.atoms.WM_DELETE_WINDOW
}
