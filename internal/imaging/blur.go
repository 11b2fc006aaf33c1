package imaging

import "image"

// LaplacianVariance measures the sharpness of a grayscale region as the
// variance of its Laplacian. Low values indicate a blurry image - sharp
// edges produce strong second-derivative responses.
func LaplacianVariance(img *image.Gray) float64 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 3 || h < 3 {
		return 0
	}

	// 3x3 Laplacian: center -4, plus the 4-neighborhood.
	values := make([]float64, 0, (w-2)*(h-2))
	var sum float64
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			lap := float64(img.GrayAt(x, y-1).Y) +
				float64(img.GrayAt(x-1, y).Y) +
				float64(img.GrayAt(x+1, y).Y) +
				float64(img.GrayAt(x, y+1).Y) -
				4*float64(img.GrayAt(x, y).Y)
			values = append(values, lap)
			sum += lap
		}
	}

	mean := sum / float64(len(values))
	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return variance / float64(len(values))
}
