// Package imagewin opens desktop windows that show an in-memory image.
//
// Each window has a single static view with the image at its native size.
// Closing a window disposes only that window, the process keeps running.
package imagewin

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/jmigpin/imagewin/driver"
	"github.com/jmigpin/imagewin/driver/xdriver"
	"github.com/jmigpin/imagewin/util/imageutil"
)

var (
	// Malformed image (nil, or a zero, negative or too large dimension).
	ErrInvalidArgument = driver.ErrInvalidArgument
	// No display, or the toolkit refused to create the window.
	ErrEnvironmentUnavailable = driver.ErrEnvironmentUnavailable
)

type State int

const (
	Shown State = iota
	Disposed
)

func (s State) String() string {
	switch s {
	case Shown:
		return "shown"
	case Disposed:
		return "disposed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

//----------

type Window struct {
	dw    driver.Window
	title string
}

// New shows img in a new top-level window on the default display.
// The window is visible when New returns. The image is copied, the caller keeps ownership.
func New(title string, img image.Image) (*Window, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}
	d, err := defaultDisplay()
	if err != nil {
		return nil, classifyErr(err)
	}
	return NewOnDisplay(d, title, img)
}

// NewOnDisplay is like New but uses the given display.
func NewOnDisplay(d driver.Display, title string, img image.Image) (*Window, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}
	opt := &driver.WindowOptions{
		Title: title,
		Image: imageutil.ToBGRA(img),
	}
	dw, err := d.NewWindow(opt)
	if err != nil {
		return nil, classifyErr(err)
	}
	return &Window{dw: dw, title: title}, nil
}

func checkImage(img image.Image) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidArgument)
	}
	r := img.Bounds()
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return fmt.Errorf("%w: image size %vx%v", ErrInvalidArgument, r.Dx(), r.Dy())
	}
	// checked before the bgra copy is allocated
	if r.Dx() > driver.MaxImageSize || r.Dy() > driver.MaxImageSize {
		return fmt.Errorf("%w: image size %vx%v exceeds %v", ErrInvalidArgument, r.Dx(), r.Dy(), driver.MaxImageSize)
	}
	return nil
}

// Any driver failure that is not an invalid argument means the environment could not provide the window.
func classifyErr(err error) error {
	if errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrEnvironmentUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrEnvironmentUnavailable, err)
}

//----------

// Title returns the title reported by the window. On error, the title given at creation is returned.
func (w *Window) Title() (string, error) {
	s, err := w.dw.Title()
	if err != nil {
		return w.title, err
	}
	return s, nil
}

// ClientSize returns the size of the window area that shows the image.
func (w *Window) ClientSize() (image.Point, error) {
	return w.dw.ClientSize()
}

func (w *Window) State() State {
	select {
	case <-w.dw.Done():
		return Disposed
	default:
		return Shown
	}
}

// Close disposes the window. Closing a disposed window is a no-op.
func (w *Window) Close() error {
	if w.State() == Disposed {
		return nil
	}
	return w.dw.Close()
}

// Done is closed when the window is disposed.
func (w *Window) Done() <-chan struct{} {
	return w.dw.Done()
}

// Wait blocks until all the windows are disposed.
func Wait(ws ...*Window) {
	for _, w := range ws {
		<-w.Done()
	}
}

//----------

type deadDisplay interface {
	driver.Display
	Dead() bool // connection lost
}

var defDisplay struct {
	sync.Mutex
	d   deadDisplay
	new func() (deadDisplay, error)
}

func init() {
	defDisplay.new = func() (deadDisplay, error) {
		return xdriver.NewDisplay()
	}
}

// Connects on first use. Reconnects if the previous connection was lost.
func defaultDisplay() (driver.Display, error) {
	defDisplay.Lock()
	defer defDisplay.Unlock()
	if defDisplay.d != nil && !defDisplay.d.Dead() {
		return defDisplay.d, nil
	}
	if defDisplay.d != nil {
		_ = defDisplay.d.Close()
		defDisplay.d = nil
	}
	d, err := defDisplay.new()
	if err != nil {
		return nil, err
	}
	defDisplay.d = d
	return d, nil
}
