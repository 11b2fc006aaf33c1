package imaging

import "image"

// Canonical dimensions of a normalized face sample. Every comparison runs
// on samples of exactly this size.
const (
	CanonicalWidth  = 100
	CanonicalHeight = 100
)

// Normalize converts a face region into the canonical comparison form:
// a CanonicalWidth x CanonicalHeight grayscale sample with its histogram
// equalized to flatten exposure differences. Any non-empty region produces
// a result.
func Normalize(region image.Image) *image.Gray {
	sample := resizeGray(region, CanonicalWidth, CanonicalHeight)
	equalize(sample)
	return sample
}

// equalize performs in-place histogram equalization. Pixels are remapped
// through the cumulative distribution so that the full 0-255 range is used
// regardless of the original exposure.
func equalize(img *image.Gray) {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return
	}

	var hist [256]int
	for _, p := range img.Pix {
		hist[p]++
	}

	// Cumulative distribution, anchored at the first occupied bin so the
	// darkest present intensity maps to 0.
	var cdf [256]int
	sum := 0
	cdfMin := -1
	for i, c := range hist {
		sum += c
		cdf[i] = sum
		if cdfMin < 0 && c > 0 {
			cdfMin = cdf[i]
		}
	}

	if cdfMin < 0 || total == cdfMin {
		// Single intensity value; nothing to spread.
		return
	}

	var lut [256]uint8
	for i := range lut {
		if cdf[i] < cdfMin {
			continue
		}
		lut[i] = uint8((cdf[i] - cdfMin) * 255 / (total - cdfMin))
	}

	for i, p := range img.Pix {
		img.Pix[i] = lut[p]
	}
}
