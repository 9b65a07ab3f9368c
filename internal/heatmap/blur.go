package heatmap

import "math"

// gaussianBlur approximates a gaussian blur of the given sigma with three
// successive box blurs, which is indistinguishable from a true gaussian at
// heatmap resolution and runs in linear time.
func gaussianBlur(buffer []float64, width, height int, sigma float64) {
	if sigma <= 0 || width <= 0 || height <= 0 {
		return
	}
	scratch := make([]float64, len(buffer))
	for _, radius := range boxRadii(sigma, 3) {
		boxBlurHorizontal(buffer, scratch, width, height, radius)
		boxBlurVertical(scratch, buffer, width, height, radius)
	}
}

// boxRadii derives box sizes whose repeated application matches the target
// gaussian sigma.
func boxRadii(sigma float64, passes int) []int {
	ideal := math.Sqrt(12*sigma*sigma/float64(passes) + 1)
	lower := int(math.Floor(ideal))
	if lower%2 == 0 {
		lower--
	}
	upper := lower + 2
	mIdeal := (12*sigma*sigma - float64(passes*lower*lower) - float64(4*passes*lower) - float64(3*passes)) /
		(-4*float64(lower) - 4)
	m := int(math.Round(mIdeal))

	radii := make([]int, passes)
	for i := range radii {
		size := upper
		if i < m {
			size = lower
		}
		radii[i] = (size - 1) / 2
	}
	return radii
}

func boxBlurHorizontal(src, dst []float64, width, height, radius int) {
	if radius <= 0 {
		copy(dst, src)
		return
	}
	norm := 1.0 / float64(2*radius+1)
	for y := 0; y < height; y++ {
		row := y * width
		sum := 0.0
		for x := -radius; x <= radius; x++ {
			sum += src[row+clampIndex(x, width)]
		}
		for x := 0; x < width; x++ {
			dst[row+x] = sum * norm
			sum += src[row+clampIndex(x+radius+1, width)]
			sum -= src[row+clampIndex(x-radius, width)]
		}
	}
}

func boxBlurVertical(src, dst []float64, width, height, radius int) {
	if radius <= 0 {
		copy(dst, src)
		return
	}
	norm := 1.0 / float64(2*radius+1)
	for x := 0; x < width; x++ {
		sum := 0.0
		for y := -radius; y <= radius; y++ {
			sum += src[clampIndex(y, height)*width+x]
		}
		for y := 0; y < height; y++ {
			dst[y*width+x] = sum * norm
			sum += src[clampIndex(y+radius+1, height)*width+x]
			sum -= src[clampIndex(y-radius, height)*width+x]
		}
	}
}

func clampIndex(i, size int) int {
	if i < 0 {
		return 0
	}
	if i > size-1 {
		return size - 1
	}
	return i
}
