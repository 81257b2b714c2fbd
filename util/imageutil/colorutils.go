package imageutil

import (
	"image/color"
)

func RgbaColor(c color.Color) color.RGBA {
	if u, ok := c.(color.RGBA); ok {
		return u
	}
	return convertToRgbaColor(c)
}
func convertToRgbaColor(c color.Color) color.RGBA {
	// slow
	//return color.RGBAModel.Convert(c).(color.RGBA)

	r, g, b, a := c.RGBA()
	return color.RGBA{
		uint8(r >> 8),
		uint8(g >> 8),
		uint8(b >> 8),
		uint8(a >> 8),
	}
}
