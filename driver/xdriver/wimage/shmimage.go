package wimage

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/shm"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/imagewin/util/imageutil"
)

var shmInitErr = fmt.Errorf("wimage: shm not initialized")

// Init initializes the shm extension early to avoid concurrent map read/write (xgb library issue).
func Init(conn *xgb.Conn) {
	shmInitErr = shm.Init(conn)
}

func putShmImage(opt *Options, dst xproto.Drawable, img *imageutil.BGRA) error {
	r := img.Bounds()
	imgWrap, err := NewShmImgWrap(r)
	if err != nil {
		return err
	}
	defer imgWrap.Close()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := imgWrap.Img.PixOffset(r.Min.X, y)
		j := img.PixOffset(r.Min.X, y)
		copy(imgWrap.Img.Pix[i:i+r.Dx()*4], img.Pix[j:])
	}

	// server segment id
	segId, err := shm.NewSegId(opt.Conn)
	if err != nil {
		return err
	}
	readOnly := true
	c1 := shm.AttachChecked(opt.Conn, segId, uint32(imgWrap.shmId), readOnly)
	if err := c1.Check(); err != nil {
		return fmt.Errorf("shm attach: %w", err)
	}
	defer shm.Detach(opt.Conn, segId)

	// checked: returns after the server has read the segment
	c2 := shm.PutImageChecked(
		opt.Conn,
		dst,
		opt.GCtx,
		uint16(r.Dx()), uint16(r.Dy()), // total width/height
		0, 0, uint16(r.Dx()), uint16(r.Dy()), // src x,y,w,h
		0, 0, // dst x,y
		opt.Depth,
		xproto.ImageFormatZPixmap,
		0, // no completion event
		segId,
		0) // offset
	if err := c2.Check(); err != nil {
		return fmt.Errorf("shm put image: %w", err)
	}
	return nil
}

//----------

type ShmImgWrap struct {
	Img   *imageutil.BGRA
	shmId int
}

func NewShmImgWrap(r image.Rectangle) (*ShmImgWrap, error) {
	size := imageutil.BGRASize(r)
	shmId, buf, err := ShmOpen(size)
	if err != nil {
		return nil, err
	}
	img := imageutil.NewBGRAFromBuffer(buf, r)
	imgWrap := &ShmImgWrap{Img: img, shmId: shmId}
	return imgWrap, nil
}

func (imgWrap *ShmImgWrap) Close() error {
	return ShmClose(imgWrap.shmId, imgWrap.Img.Pix)
}
