package smooth

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) < 1e-9
}

func assertSeries(t *testing.T, name string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: len = %d, want %d", name, len(got), len(want))
	}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Fatalf("%s[%d] = %v, want %v (got %v)", name, i, got[i], want[i], got)
		}
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 2, 3, 4, 5}, 3)
	// Edges renormalize over the two in-bounds samples.
	assertSeries(t, "window3", got, []float64{1.5, 2, 3, 4, 4.5})
}

func TestMovingAverageEvenWindow(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	assertSeries(t, "window2", got, []float64{3, 5, 7, 8})
}

func TestMovingAverageSkipsNaN(t *testing.T) {
	nan := math.NaN()
	got := MovingAverage([]float64{nan, 4, nan, nan, nan}, 3)
	assertSeries(t, "nan", got, []float64{4, 4, 4, nan, nan})
}

func TestMovingAverageDegenerate(t *testing.T) {
	if got := MovingAverage(nil, 7); len(got) != 0 {
		t.Fatalf("empty series should give empty output, got %v", got)
	}
	in := []float64{1, 5, 2}
	got := MovingAverage(in, 1)
	assertSeries(t, "window1", got, in)
	got[0] = 99
	if in[0] != 1 {
		t.Fatal("MovingAverage must not alias its input")
	}
}

func TestGaussianAverageConstant(t *testing.T) {
	got := GaussianAverage([]float64{3, 3, 3, 3, 3, 3}, 1.5)
	assertSeries(t, "constant", got, []float64{3, 3, 3, 3, 3, 3})
}

func TestGaussianAverageSymmetric(t *testing.T) {
	got := GaussianAverage([]float64{0, 0, 0, 10, 0, 0, 0}, 1)
	if !almostEqual(got[2], got[4]) || !almostEqual(got[1], got[5]) {
		t.Fatalf("impulse response should be symmetric: %v", got)
	}
	if !(got[3] > got[2] && got[2] > got[1]) {
		t.Fatalf("impulse response should peak at center: %v", got)
	}
}

func TestGaussianAverageZeroSigma(t *testing.T) {
	in := []float64{1, 2, 3}
	assertSeries(t, "sigma0", GaussianAverage(in, 0), in)
}

func TestKernelApply(t *testing.T) {
	in := []float64{1, 2, 3, 4, 5}
	assertSeries(t, "movingAvg", MovingAvg(3).Apply(in), MovingAverage(in, 3))
	assertSeries(t, "gaussian", Gaussian(2).Apply(in), GaussianAverage(in, 2))
	if MovingAvg(7).String() != "movingAvg(7)" {
		t.Fatalf("String = %q", MovingAvg(7).String())
	}
	if Gaussian(1.5).String() != "gaussian(1.5)" {
		t.Fatalf("String = %q", Gaussian(1.5).String())
	}
}
