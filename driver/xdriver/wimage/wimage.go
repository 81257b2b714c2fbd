package wimage

import (
	"fmt"
	"image"
	"log"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/imagewin/util/imageutil"
)

type Options struct {
	Conn     *xgb.Conn
	Drawable xproto.Drawable // defines the screen of the pixmaps (usually the root window)
	Depth    byte
	GCtx     xproto.Gcontext
}

// Pixmap is a server side copy of an image.
type Pixmap struct {
	Id   xproto.Pixmap
	Size image.Point
	opt  *Options
}

// NewPixmap creates a pixmap of the image size and uploads the image into it. The image must have its origin at (0,0).
func NewPixmap(opt *Options, img *imageutil.BGRA) (*Pixmap, error) {
	r := img.Bounds()
	pixId, err := xproto.NewPixmapId(opt.Conn)
	if err != nil {
		return nil, err
	}
	err = xproto.CreatePixmapChecked(
		opt.Conn,
		opt.Depth,
		pixId,
		opt.Drawable,
		uint16(r.Dx()),
		uint16(r.Dy())).Check()
	if err != nil {
		return nil, fmt.Errorf("wimage: create pixmap: %w", err)
	}
	pix := &Pixmap{Id: pixId, Size: r.Size(), opt: opt}

	if err := pix.upload(img); err != nil {
		_ = pix.Close()
		return nil, err
	}
	return pix, nil
}

func (pix *Pixmap) Close() error {
	return xproto.FreePixmapChecked(pix.opt.Conn, pix.Id).Check()
}

//----------

func (pix *Pixmap) upload(img *imageutil.BGRA) error {
	// image using shared memory (better performance)
	if shmInitErr == nil {
		err := putShmImage(pix.opt, xproto.Drawable(pix.Id), img)
		if err == nil {
			return nil
		}
		// output error, try next method
		logShmWarningOnce(err)
	}
	// default method via copy in chunks
	return putImageChunks(pix.opt, xproto.Drawable(pix.Id), img)
}

//----------

var shmWarned bool

func logShmWarningOnce(err error) {
	if shmWarned {
		return
	}
	shmWarned = true
	log.Printf("warning: unable to use shm image: %v", err)
}
