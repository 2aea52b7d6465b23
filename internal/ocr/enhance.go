package ocr

import (
	"image"
	"image/draw"
	"math"
)

// Grayscale converts img to a single channel 8-bit image
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}

// Enhance converts img to grayscale and scales every pixel's distance from
// the mean luminance by factor. A factor of 1 leaves the image unchanged and
// 0 flattens it to the mean.
func Enhance(img image.Image, factor float64) *image.Gray {
	gray := Grayscale(img)
	if factor == 1 || len(gray.Pix) == 0 {
		return gray
	}

	mean := meanLuminance(gray)
	bounds := gray.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := gray.Pix[(y-bounds.Min.Y)*gray.Stride:]
		for x := 0; x < bounds.Dx(); x++ {
			v := mean + factor*(float64(row[x])-mean)
			row[x] = clamp8(v)
		}
	}
	return gray
}

func meanLuminance(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	var sum uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := gray.Pix[(y-bounds.Min.Y)*gray.Stride:]
		for x := 0; x < bounds.Dx(); x++ {
			sum += uint64(row[x])
		}
	}
	n := uint64(bounds.Dx() * bounds.Dy())
	// the reference point is the rounded integer mean
	return math.Floor(float64(sum)/float64(n) + 0.5)
}

func clamp8(v float64) uint8 {
	v = math.Round(v)
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}
