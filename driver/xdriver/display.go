package xdriver

import (
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/jmigpin/imagewin/driver"
	"github.com/jmigpin/imagewin/driver/xdriver/wimage"
	"github.com/jmigpin/imagewin/driver/xdriver/wmprotocols"
	"github.com/jmigpin/imagewin/util/uiloop"
	"github.com/pkg/errors"
)

// Max wait for the window manager to map a new window.
var mapTimeout = 3 * time.Second

// Display is a connection to an x server shared by all the windows created with it.
type Display struct {
	Conn   *xgb.Conn
	XU     *xgbutil.XUtil
	Screen *xproto.ScreenInfo
	GCtx   xproto.Gcontext
	Wmp    *wmprotocols.WMP

	wopt *wimage.Options
	loop *uiloop.Loop

	// only accessed in the ui loop
	wins map[xproto.Window]*Window

	closeOnce sync.Once
	dead      chan struct{}
}

func NewDisplay() (*Display, error) {
	display := os.Getenv("DISPLAY")
	if display == "" {
		switch runtime.GOOS {
		case "windows":
			display = "127.0.0.1:0.0"
		default:
			return nil, errors.Wrap(driver.ErrEnvironmentUnavailable, "DISPLAY not set")
		}
	}

	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, errors.Wrapf(driver.ErrEnvironmentUnavailable, "x conn: %v", err)
	}

	d := &Display{
		Conn: conn,
		wins: map[xproto.Window]*Window{},
		dead: make(chan struct{}),
	}
	if err := d.initialize(); err != nil {
		conn.Close()
		return nil, errors.Wrapf(driver.ErrEnvironmentUnavailable, "x init: %v", err)
	}

	d.loop = uiloop.New()
	go d.eventLoop()

	return d, nil
}

func (d *Display) initialize() error {
	// early init (xgb extensions map)
	wimage.Init(d.Conn)

	si := xproto.Setup(d.Conn)
	d.Screen = si.DefaultScreen(d.Conn)
	if err := checkVisual(si, d.Screen); err != nil {
		return err
	}

	xu, err := xgbutil.NewConnXgb(d.Conn)
	if err != nil {
		return err
	}
	d.XU = xu

	// graphical context
	gCtx, err := xproto.NewGcontextId(d.Conn)
	if err != nil {
		return err
	}
	d.GCtx = gCtx
	gmask := uint32(0)
	gvalues := []uint32{}
	c2 := xproto.CreateGCChecked(d.Conn, d.GCtx, xproto.Drawable(d.Screen.Root), gmask, gvalues)
	if err := c2.Check(); err != nil {
		return err
	}

	wmp, err := wmprotocols.NewWMP(xu)
	if err != nil {
		return err
	}
	d.Wmp = wmp

	d.wopt = &wimage.Options{
		Conn:     d.Conn,
		Drawable: xproto.Drawable(d.Screen.Root),
		Depth:    d.Screen.RootDepth,
		GCtx:     d.GCtx,
	}
	return nil
}

// Images are uploaded as 32 bit bgra pixels.
func checkVisual(si *xproto.SetupInfo, screen *xproto.ScreenInfo) error {
	if si.ImageByteOrder != xproto.ImageOrderLSBFirst {
		return errors.New("unsupported image byte order")
	}
	depth := screen.RootDepth
	if depth != 24 && depth != 32 {
		return errors.Errorf("unsupported root depth: %v", depth)
	}
	bppOk := false
	for _, f := range si.PixmapFormats {
		if f.Depth == depth && f.BitsPerPixel == 32 {
			bppOk = true
		}
	}
	if !bppOk {
		return errors.Errorf("no 32 bits per pixel format for depth %v", depth)
	}
	for _, di := range screen.AllowedDepths {
		for _, vi := range di.Visuals {
			if vi.VisualId == screen.RootVisual && vi.Class != xproto.VisualClassTrueColor {
				return errors.Errorf("root visual is not truecolor: class %v", vi.Class)
			}
		}
	}
	return nil
}

//----------

func (d *Display) NewWindow(opt *driver.WindowOptions) (driver.Window, error) {
	var win *Window
	err := d.loop.Run(func() error {
		if d.Dead() {
			return errors.Wrap(driver.ErrEnvironmentUnavailable, "x conn closed")
		}
		w, err := newWindow(d, opt)
		if err != nil {
			return err
		}
		d.wins[w.Window] = w
		win = w
		return nil
	})
	if err == uiloop.ErrStopped {
		return nil, errors.Wrap(driver.ErrEnvironmentUnavailable, "display closed")
	}
	if err != nil {
		return nil, err
	}
	win.waitMapped(mapTimeout)
	return win, nil
}

// Close destroys all windows and closes the connection. A lost connection is not touched: xgb already closed it.
func (d *Display) Close() error {
	d.closeOnce.Do(func() {
		dead := false
		_ = d.loop.Run(func() error {
			dead = d.Dead()
			for _, w := range d.wins {
				w.dispose(!dead)
			}
			if !dead {
				// round trip to have the destroy requests processed
				_, _ = xproto.GetInputFocus(d.Conn).Reply()
			}
			return nil
		})
		if !dead {
			d.Conn.Close()
		}
		d.loop.Stop()
	})
	return nil
}

// Dead reports whether the connection to the x server was lost.
func (d *Display) Dead() bool {
	select {
	case <-d.dead:
		return true
	default:
		return false
	}
}

//----------

func (d *Display) eventLoop() {
	for {
		ev, xerr := d.Conn.WaitForEvent()
		if ev == nil && xerr == nil {
			d.loop.Post(d.connClosed)
			return
		}
		ok := d.loop.Post(func() {
			if xerr != nil {
				log.Printf("x error: %v", xerr)
			}
			if ev != nil {
				d.handleEvent(ev)
			}
		})
		if !ok {
			return
		}
	}
}

func (d *Display) handleEvent(ev xgb.Event) {
	switch t := ev.(type) {
	case xproto.ClientMessageEvent:
		if w, ok := d.wins[t.Window]; ok {
			if d.Wmp.OnClientMessageDeleteWindow(&t) {
				w.dispose(true)
			}
		}
	case xproto.DestroyNotifyEvent: // destroyed by someone else
		if w, ok := d.wins[t.Window]; ok {
			w.dispose(false)
		}
	case xproto.MapNotifyEvent: // viewable (reparenting window managers map it later)
		if w, ok := d.wins[t.Window]; ok {
			w.onMapped()
		}
	case xproto.ConfigureNotifyEvent,
		xproto.UnmapNotifyEvent,
		xproto.ReparentNotifyEvent,
		xproto.GravityNotifyEvent:
		// window structure, nothing to do: the server paints the background pixmap
	default:
		log.Printf("unhandled event: %#v", ev)
	}
}

func (d *Display) connClosed() {
	if d.Dead() {
		return
	}
	close(d.dead)
	for _, w := range d.wins {
		w.dispose(false)
	}
}
