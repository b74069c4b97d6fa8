package motion

import "github.com/fogleman/ease"

// Easing names accepted by the path and spatial models.
const (
	EaseNone  = "none"
	EaseIn    = "in"
	EaseOut   = "out"
	EaseInOut = "inout"
)

var easingNames = []string{EaseNone, EaseIn, EaseOut, EaseInOut}

// easeT warps normalized progress with a quadratic easing curve.
func easeT(name string, t float64) float64 {
	switch name {
	case EaseIn:
		return ease.InQuad(t)
	case EaseOut:
		return ease.OutQuad(t)
	case EaseInOut:
		return ease.InOutQuad(t)
	}
	return t
}

// clamp01 pins t into [0, 1].
func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// progress converts animation time to normalized progress, guarding a zero
// duration so models never divide by zero.
func progress(time, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return clamp01(time / duration)
}
