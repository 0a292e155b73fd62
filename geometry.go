package loupe

import "math"

// ClampScale restricts scale to [minScale, maxScale]. A maxScale below
// minScale is treated as minScale.
func ClampScale(scale, minScale, maxScale float64) float64 {
	if maxScale < minScale {
		maxScale = minScale
	}
	return math.Max(minScale, math.Min(scale, maxScale))
}

// AutoMaxScale derives the "auto" zoom limit from the image's natural width
// relative to the viewport. Never below MinScale.
func AutoMaxScale(m ImageMetrics) float64 {
	if !m.Valid() {
		return MinScale
	}
	return math.Max(MinScale, m.NaturalWidth/m.ViewportWidth)
}

// displayedSize returns the on-screen size of the image at the given scale.
// Scale 1 is the aspect-fit size.
func displayedSize(scale float64, m ImageMetrics) (w, h float64) {
	fit := m.FitScale()
	return m.NaturalWidth * fit * scale, m.NaturalHeight * fit * scale
}

// MaxPan returns the largest pan magnitude per axis at the given scale: the
// distance the image may travel before its edge reaches the viewport edge.
// At MinScale, or with invalid metrics, it is zero.
func MaxPan(scale float64, m ImageMetrics) Vec2 {
	if !m.Valid() || scale <= MinScale+scaleEpsilon {
		return Vec2{}
	}
	w, h := displayedSize(scale, m)
	return Vec2{
		X: math.Max(0, (w-m.ViewportWidth)/2),
		Y: math.Max(0, (h-m.ViewportHeight)/2),
	}
}

// ClampPan restricts pan so no empty space beyond the image is revealed.
func ClampPan(pan Vec2, scale float64, m ImageMetrics) Vec2 {
	bound := MaxPan(scale, m)
	return Vec2{
		X: math.Max(-bound.X, math.Min(pan.X, bound.X)),
		Y: math.Max(-bound.Y, math.Min(pan.Y, bound.Y)),
	}
}

// rubberBand damps the part of v that lies beyond ±bound.
func rubberBand(v, bound, damping float64) float64 {
	switch {
	case v > bound:
		return bound + (v-bound)*damping
	case v < -bound:
		return -bound + (v+bound)*damping
	default:
		return v
	}
}

// finite reports whether every value is neither NaN nor infinite.
func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
