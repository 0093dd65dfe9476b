package codegen

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// Resize scales src into a w x h canvas. With keepRatio the image is fitted
// inside the box and centered on white; otherwise it is stretched.
func Resize(src image.Image, w, h int, keepRatio bool) *image.RGBA {
	w, h = max(w, 1), max(h, 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	sb := src.Bounds()

	if !keepRatio {
		if sb.Empty() {
			draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
			return dst
		}
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
		return dst
	}

	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if sb.Empty() {
		return dst
	}
	scale := math.Min(float64(w)/float64(sb.Dx()), float64(h)/float64(sb.Dy()))
	fw := min(max(int(math.Round(float64(sb.Dx())*scale)), 1), w)
	fh := min(max(int(math.Round(float64(sb.Dy())*scale)), 1), h)
	off := image.Pt((w-fw)/2, (h-fh)/2)
	draw.CatmullRom.Scale(dst, image.Rectangle{Min: off, Max: off.Add(image.Pt(fw, fh))}, src, sb, draw.Src, nil)
	return dst
}
