// Package detector talks to the face detection sidecar. Detection is a
// pretrained capability consumed as a black box - this package only knows
// how to ship image bytes over and read bounding boxes back.
package detector

import (
	"context"
	"image"
)

// Box is an axis-aligned face bounding box in pixel coordinates.
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts the box to an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Area returns the box area in pixels.
func (b Box) Area() int {
	return b.Width * b.Height
}

// AspectRatio returns width/height, or 0 for a degenerate box.
func (b Box) AspectRatio() float64 {
	if b.Height <= 0 {
		return 0
	}
	return float64(b.Width) / float64(b.Height)
}

// Locator finds faces in raw image bytes. An image with no faces yields an
// empty slice, not an error; errors are reserved for transport or backend
// faults.
type Locator interface {
	Detect(ctx context.Context, imageData []byte) ([]Box, error)
}
