package imageutil

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// BGRA keeps the pixel bytes in the order used by 32 bit ZPixmap images on
// little-endian servers. The color methods still speak RGBA.
type BGRA struct {
	image.RGBA
}

func NewBGRA(r image.Rectangle) *BGRA {
	u := image.NewRGBA(r)
	return &BGRA{*u}
}

func NewBGRAFromBuffer(buf []byte, r image.Rectangle) *BGRA {
	rgba := image.RGBA{Pix: buf, Stride: 4 * r.Dx(), Rect: r}
	return &BGRA{RGBA: rgba}
}

func BGRASize(r image.Rectangle) int {
	return r.Dx() * r.Dy() * 4
}

// ToBGRA copies src into a new BGRA image with origin at (0,0) and the same
// size as src. No scaling is done.
func ToBGRA(src image.Image) *BGRA {
	sb := src.Bounds()
	r := image.Rect(0, 0, sb.Dx(), sb.Dy())
	img := NewBGRA(r)

	// fast lane: draw into the embedded rgba and swap channels in place
	xdraw.Copy(&img.RGBA, image.Point{}, src, sb, xdraw.Src, nil)
	swapRB(img.Pix)
	return img
}

func swapRB(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}

//----------

func (img *BGRA) ColorModel() color.Model {
	return color.RGBAModel
}

func (img *BGRA) Set(x, y int, c color.Color) {
	img.SetRGBA(x, y, RgbaColor(c))
}

func (img *BGRA) SetRGBA(x, y int, c color.RGBA) {
	c.R, c.B = c.B, c.R // flip to keep bgra
	img.RGBA.SetRGBA(x, y, c)
}

func (img *BGRA) At(x, y int) color.Color {
	return img.RGBAAt(x, y)
}

func (img *BGRA) RGBAAt(x, y int) color.RGBA {
	c := img.RGBA.RGBAAt(x, y)
	c.R, c.B = c.B, c.R // flip to return rgba
	return c
}
