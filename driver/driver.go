package driver

import (
	"errors"
	"image"

	"github.com/jmigpin/imagewin/util/imageutil"
)

var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrEnvironmentUnavailable = errors.New("environment unavailable")
)

// Window sizes are uint16 in the x protocol.
const MaxImageSize = 1<<16 - 1

// Display owns the ui thread and creates top-level windows on it.
type Display interface {
	NewWindow(*WindowOptions) (Window, error)
	Close() error
}

// Window is a top-level window with a single static image view.
type Window interface {
	Title() (string, error)
	ClientSize() (image.Point, error)
	Close() error
	Done() <-chan struct{} // closed when the window is disposed
}

type WindowOptions struct {
	Title string
	Image *imageutil.BGRA // origin at (0,0)
}
