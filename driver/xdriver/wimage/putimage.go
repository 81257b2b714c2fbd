package wimage

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/imagewin/util/imageutil"
)

// X max request length = (2^16)*4 bytes without the big-requests extension.
const (
	putImgReqSize = 28 // put image request header
	maxReqSize    = (1 << 16) * 4
	maxChunkPix   = (maxReqSize - putImgReqSize) / 4
)

func putImageChunks(opt *Options, dst xproto.Drawable, img *imageutil.BGRA) error {
	r := img.Bounds()
	chunks, err := chunkRects(r, maxChunkPix)
	if err != nil {
		return err
	}
	for _, c := range chunks {
		data := make([]byte, c.Dx()*c.Dy()*4)
		for y := 0; y < c.Dy(); y++ {
			i := y * c.Dx() * 4
			j := img.PixOffset(c.Min.X, c.Min.Y+y)
			copy(data[i:i+c.Dx()*4], img.Pix[j:])
		}
		err := xproto.PutImageChecked(
			opt.Conn,
			xproto.ImageFormatZPixmap,
			dst,
			opt.GCtx,
			uint16(c.Dx()), uint16(c.Dy()), // width/height
			int16(c.Min.X), int16(c.Min.Y), // dst x/y
			0, // left pad, must be 0 for ZPixmap format
			opt.Depth,
			data).Check()
		if err != nil {
			return fmt.Errorf("wimage: put image: %w", err)
		}
	}
	return nil
}

// Splits r in full width row bands with at most maxPix pixels each.
func chunkRects(r image.Rectangle, maxPix int) ([]image.Rectangle, error) {
	if r.Dx() > maxPix {
		return nil, fmt.Errorf("wimage: dx>max, %v>%v", r.Dx(), maxPix)
	}
	rows := maxPix / r.Dx()
	var u []image.Rectangle
	for y := r.Min.Y; y < r.Max.Y; y += rows {
		maxY := y + rows
		if maxY > r.Max.Y {
			maxY = r.Max.Y
		}
		u = append(u, image.Rect(r.Min.X, y, r.Max.X, maxY))
	}
	return u, nil
}
