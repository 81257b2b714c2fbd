package xdriver

import (
	"image"
	"log"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/jmigpin/imagewin/driver"
	"github.com/jmigpin/imagewin/driver/xdriver/wimage"
	"github.com/jmigpin/imagewin/util/uiloop"
	"github.com/pkg/errors"
)

type Window struct {
	Window xproto.Window

	d     *Display
	title string
	done  chan struct{}

	mapped     chan struct{}
	mappedOnce sync.Once
}

// Runs in the ui loop.
func newWindow(d *Display, opt *driver.WindowOptions) (*Window, error) {
	r := opt.Image.Bounds()
	w, h := r.Dx(), r.Dy()
	if w > driver.MaxImageSize || h > driver.MaxImageSize {
		return nil, errors.Wrapf(driver.ErrInvalidArgument, "image size %vx%v exceeds %v", w, h, driver.MaxImageSize)
	}

	pix, err := wimage.NewPixmap(d.wopt, opt.Image)
	if err != nil {
		return nil, errors.Wrap(driver.ErrEnvironmentUnavailable, err.Error())
	}
	// the window keeps its own reference to the background pixmap
	defer func() { _ = pix.Close() }()

	window, err := xproto.NewWindowId(d.Conn)
	if err != nil {
		return nil, errors.Wrap(driver.ErrEnvironmentUnavailable, err.Error())
	}

	// mask/values order is defined by the protocol
	mask := uint32(xproto.CwBackPixmap | xproto.CwEventMask)
	values := []uint32{
		uint32(pix.Id),
		xproto.EventMaskStructureNotify,
	}
	c1 := xproto.CreateWindowChecked(
		d.Conn,
		d.Screen.RootDepth,
		window,
		d.Screen.Root,
		0, 0, uint16(w), uint16(h),
		0, // border width
		xproto.WindowClassInputOutput,
		d.Screen.RootVisual,
		mask, values)
	if err := c1.Check(); err != nil {
		return nil, errors.Wrapf(driver.ErrEnvironmentUnavailable, "create window: %v", err)
	}

	win := &Window{
		Window: window,
		d:      d,
		title:  opt.Title,
		done:   make(chan struct{}),
		mapped: make(chan struct{}),
	}
	if err := win.setupProperties(w, h); err != nil {
		_ = xproto.DestroyWindow(d.Conn, window)
		return nil, errors.Wrapf(driver.ErrEnvironmentUnavailable, "window properties: %v", err)
	}

	if err := xproto.MapWindowChecked(d.Conn, window).Check(); err != nil {
		_ = xproto.DestroyWindow(d.Conn, window)
		return nil, errors.Wrapf(driver.ErrEnvironmentUnavailable, "map window: %v", err)
	}
	return win, nil
}

func (win *Window) setupProperties(w, h int) error {
	xu := win.d.XU
	if err := icccm.WmNameSet(xu, win.Window, win.title); err != nil {
		return err
	}
	if err := ewmh.WmNameSet(xu, win.Window, win.title); err != nil {
		return err
	}
	class := &icccm.WmClass{Instance: "imagewin", Class: "Imagewin"}
	if err := icccm.WmClassSet(xu, win.Window, class); err != nil {
		return err
	}
	// fixed size: the window manager only adds its decorations
	hints := &icccm.NormalHints{
		Flags:     icccm.SizeHintPSize | icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize,
		Width:     uint(w),
		Height:    uint(h),
		MinWidth:  uint(w),
		MinHeight: uint(h),
		MaxWidth:  uint(w),
		MaxHeight: uint(h),
	}
	if err := icccm.WmNormalHintsSet(xu, win.Window, hints); err != nil {
		return err
	}
	return win.d.Wmp.Register(win.Window)
}

//----------

// Title returns the title stored in the window properties, or the initial title if the window was disposed.
func (win *Window) Title() (string, error) {
	title := win.title
	err := win.run(func() error {
		if win.disposed() {
			return nil
		}
		s, err := ewmh.WmNameGet(win.d.XU, win.Window)
		if err != nil || s == "" {
			if s2, err2 := icccm.WmNameGet(win.d.XU, win.Window); err2 == nil {
				s, err = s2, nil
			}
		}
		if err != nil {
			if win.title != "" {
				return err
			}
			// empty names might be reported as missing properties
			s = ""
		}
		title = s
		return nil
	})
	return title, err
}

func (win *Window) ClientSize() (image.Point, error) {
	var size image.Point
	err := win.run(func() error {
		if win.disposed() {
			return errors.New("window disposed")
		}
		drawable := xproto.Drawable(win.Window)
		reply, err := xproto.GetGeometry(win.d.Conn, drawable).Reply()
		if err != nil {
			return err
		}
		size = image.Pt(int(reply.Width), int(reply.Height))
		return nil
	})
	return size, err
}

func (win *Window) Close() error {
	return win.run(func() error {
		win.dispose(true)
		return nil
	})
}

func (win *Window) Done() <-chan struct{} {
	return win.done
}

// Runs in the ui loop.
func (win *Window) onMapped() {
	win.mappedOnce.Do(func() { close(win.mapped) })
}

// Must not run in the ui loop: the map notify is delivered there.
func (win *Window) waitMapped(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-win.mapped:
		return true
	case <-win.done:
		return false
	case <-timer.C:
		log.Printf("window %v: not mapped after %v", win.Window, timeout)
		return false
	}
}

func (win *Window) run(fn func() error) error {
	err := win.d.loop.Run(fn)
	if err == uiloop.ErrStopped {
		// display closed, windows were disposed
		if win.disposed() {
			return nil
		}
	}
	return err
}

//----------

func (win *Window) disposed() bool {
	select {
	case <-win.done:
		return true
	default:
		return false
	}
}

// Runs in the ui loop.
func (win *Window) dispose(destroy bool) {
	if win.disposed() {
		return
	}
	close(win.done)
	delete(win.d.wins, win.Window)
	if destroy && !win.d.Dead() {
		_ = xproto.DestroyWindow(win.d.Conn, win.Window)
	}
}
