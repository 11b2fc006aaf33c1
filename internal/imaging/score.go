package imaging

import "image"

// Score computes the similarity between two normalized face samples as
// 1 / (1 + d) where d is the mean absolute intensity difference.
// Identical samples score 1.0; the score approaches 0 as the samples
// diverge. Both inputs must have the canonical dimensions, which
// Normalize guarantees.
//
// This is a deliberately crude, explainable metric. It tolerates uniform
// noise but is not invariant to rotation, translation inside the crop or
// expression changes beyond what resizing and equalization absorb.
func Score(a, b *image.Gray) float64 {
	n := min(len(a.Pix), len(b.Pix))
	if n == 0 {
		return 1.0
	}
	var sum int
	for i := range n {
		d := int(a.Pix[i]) - int(b.Pix[i])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	d := float64(sum) / float64(n)
	return 1 / (1 + d)
}
