// Package imaging provides the image primitives behind face matching:
// decoding, grayscale conversion, canonical normalization and the
// similarity score. Everything here is deterministic - the same input
// bytes always produce the same output.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Decode decodes raw image bytes in any registered format.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Grayscale converts an image to a single-channel intensity image
// using the standard BT.601 luma weights.
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x-bounds.Min.X, y-bounds.Min.Y, img.At(x, y))
		}
	}
	return gray
}

// Crop copies the given region out of a grayscale image. The region is
// clamped to the image bounds, so a slightly oversized detector box still
// yields a valid sample.
func Crop(img *image.Gray, rect image.Rectangle) *image.Gray {
	rect = rect.Intersect(img.Bounds())
	out := image.NewGray(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			out.SetGray(x-rect.Min.X, y-rect.Min.Y, img.GrayAt(x, y))
		}
	}
	return out
}

// EncodePNG encodes a grayscale image as PNG bytes, the persisted form of
// enrolled face samples.
func EncodePNG(img *image.Gray) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode sample: %w", err)
	}
	return buf.Bytes(), nil
}

// resizeGray scales any image into a grayscale canvas of the given size.
// The kernel scaler averages over source pixels when minifying, which is
// what face samples need - they are almost always downscaled.
func resizeGray(img image.Image, width, height int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}
