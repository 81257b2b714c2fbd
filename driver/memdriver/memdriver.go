// In-memory display that records windows instead of showing them.
package memdriver

import (
	"image"
	"sync"

	"github.com/jmigpin/imagewin/driver"
	"github.com/jmigpin/imagewin/util/imageutil"
	"github.com/jmigpin/imagewin/util/uiloop"
	"github.com/pkg/errors"
)

type Display struct {
	loop *uiloop.Loop

	mu   sync.Mutex
	wins []*Window
	fail error // returned once by the next NewWindow

	dead chan struct{}
}

func NewDisplay() *Display {
	return &Display{loop: uiloop.New(), dead: make(chan struct{})}
}

func (d *Display) NewWindow(opt *driver.WindowOptions) (driver.Window, error) {
	var win *Window
	err := d.loop.Run(func() error {
		if d.Dead() {
			return errors.Wrap(driver.ErrEnvironmentUnavailable, "memdriver: connection lost")
		}
		d.mu.Lock()
		defer d.mu.Unlock()
		size := opt.Image.Bounds().Size()
		if size.X > driver.MaxImageSize || size.Y > driver.MaxImageSize {
			return errors.Wrapf(driver.ErrInvalidArgument, "memdriver: image size %v", size)
		}
		if d.fail != nil {
			err := d.fail
			d.fail = nil
			return err
		}
		win = &Window{
			d:     d,
			title: opt.Title,
			img:   opt.Image,
			size:  size,
			done:  make(chan struct{}),
		}
		d.wins = append(d.wins, win)
		return nil
	})
	if err == uiloop.ErrStopped {
		return nil, errors.Wrap(driver.ErrEnvironmentUnavailable, "memdriver: display closed")
	}
	if err != nil {
		return nil, err
	}
	return win, nil
}

func (d *Display) Close() error {
	_ = d.loop.Run(func() error {
		for _, w := range d.Windows() {
			w.dispose()
		}
		return nil
	})
	d.loop.Stop()
	return nil
}

// Disconnect acts as a lost connection: all windows are disposed and no new windows can be created.
func (d *Display) Disconnect() {
	_ = d.loop.Run(func() error {
		if d.Dead() {
			return nil
		}
		close(d.dead)
		for _, w := range d.Windows() {
			w.dispose()
		}
		return nil
	})
}

func (d *Display) Dead() bool {
	select {
	case <-d.dead:
		return true
	default:
		return false
	}
}

// Windows returns every window created so far, disposed or not, in creation order.
func (d *Display) Windows() []*Window {
	d.mu.Lock()
	defer d.mu.Unlock()
	u := make([]*Window, len(d.wins))
	copy(u, d.wins)
	return u
}

// SetFailure makes the next NewWindow call fail with err.
func (d *Display) SetFailure(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fail = err
}

//----------

type Window struct {
	d     *Display
	title string
	img   *imageutil.BGRA
	size  image.Point
	done  chan struct{}
}

func (w *Window) Title() (string, error) {
	return w.title, nil
}
func (w *Window) ClientSize() (image.Point, error) {
	return w.size, nil
}
func (w *Window) Image() *imageutil.BGRA {
	return w.img
}

func (w *Window) Close() error {
	err := w.d.loop.Run(func() error {
		w.dispose()
		return nil
	})
	if err == uiloop.ErrStopped {
		return nil // disposed when the display closed
	}
	return err
}

// SimulateClose acts as the window manager close button.
func (w *Window) SimulateClose() {
	w.d.loop.Post(w.dispose)
}

func (w *Window) Done() <-chan struct{} {
	return w.done
}

func (w *Window) Disposed() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// Runs in the ui loop.
func (w *Window) dispose() {
	if !w.Disposed() {
		close(w.done)
	}
}
