// Package smooth implements windowed smoothing over evenly spaced series.
//
// Both smoothers renormalize each output over the in-bounds, non-NaN samples
// of its window, so edge points are averaged over fewer samples rather than
// biased toward zero. An output whose window holds no valid sample is NaN.
package smooth

import (
	"fmt"
	"math"
)

// MovingAverage returns the centered moving average of series. For even
// window sizes the window extends one sample further to the right.
func MovingAverage(series []float64, window int) []float64 {
	out := make([]float64, len(series))
	if window <= 1 {
		copy(out, series)
		return out
	}
	left, right := (window-1)/2, window/2
	for i := range series {
		var sum, n float64
		for j := max(0, i-left); j <= min(len(series)-1, i+right); j++ {
			if math.IsNaN(series[j]) {
				continue
			}
			sum += series[j]
			n++
		}
		out[i] = ratio(sum, n)
	}
	return out
}

// GaussianAverage returns series convolved with a normal kernel of standard
// deviation sigma, truncated at three sigma.
func GaussianAverage(series []float64, sigma float64) []float64 {
	out := make([]float64, len(series))
	if !(sigma > 0) {
		copy(out, series)
		return out
	}
	radius := int(math.Ceil(3 * sigma))
	weights := make([]float64, radius+1)
	for k := range weights {
		weights[k] = math.Exp(-float64(k*k) / (2 * sigma * sigma))
	}
	for i := range series {
		var sum, norm float64
		for j := max(0, i-radius); j <= min(len(series)-1, i+radius); j++ {
			if math.IsNaN(series[j]) {
				continue
			}
			w := weights[abs(j-i)]
			sum += w * series[j]
			norm += w
		}
		out[i] = ratio(sum, norm)
	}
	return out
}

// Method selects a smoothing kernel.
type Method int

const (
	MethodMovingAverage Method = iota
	MethodGaussian
)

// Kernel is a configured smoother.
type Kernel struct {
	Method Method
	Window int     // MethodMovingAverage
	Sigma  float64 // MethodGaussian
}

// MovingAvg returns a moving-average kernel over n samples.
func MovingAvg(n int) Kernel { return Kernel{Method: MethodMovingAverage, Window: n} }

// Gaussian returns a Gaussian kernel with the given sigma in samples.
func Gaussian(sigma float64) Kernel { return Kernel{Method: MethodGaussian, Sigma: sigma} }

// Apply smooths series with the kernel.
func (k Kernel) Apply(series []float64) []float64 {
	switch k.Method {
	case MethodGaussian:
		return GaussianAverage(series, k.Sigma)
	default:
		return MovingAverage(series, k.Window)
	}
}

func (k Kernel) String() string {
	switch k.Method {
	case MethodGaussian:
		return fmt.Sprintf("gaussian(%g)", k.Sigma)
	default:
		return fmt.Sprintf("movingAvg(%d)", k.Window)
	}
}

func ratio(sum, n float64) float64 {
	if n == 0 {
		return math.NaN()
	}
	return sum / n
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
