package chroma

import (
	"math"
	"sort"
	"testing"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
)

const (
	testRate = 22050
	testHop  = 512
)

func tone(freqs []float64, seconds float64) []float64 {
	n := int(seconds * testRate)
	out := make([]float64, n)
	for i := range out {
		for _, f := range freqs {
			out[i] += math.Sin(2*math.Pi*f*float64(i)/testRate) / float64(len(freqs))
		}
	}
	return out
}

func newTestCQT(t *testing.T) *ChromaCQT {
	t.Helper()
	cqt, err := NewChromaCQT(DefaultCQTConfig(testRate, testHop))
	if err != nil {
		t.Fatal(err)
	}
	return cqt
}

func TestChromaCQTSineIsA(t *testing.T) {
	cqt := newTestCQT(t)
	signal := tone([]float64{440}, 1.0)

	chromagram, err := cqt.Compute(signal)
	if err != nil {
		t.Fatal(err)
	}
	if len(chromagram) != 1+len(signal)/testHop {
		t.Fatalf("frames = %d, want %d", len(chromagram), 1+len(signal)/testHop)
	}

	mid := chromagram[len(chromagram)/2]
	if got := common.ArgMax(mid); got != 9 {
		t.Errorf("dominant pitch class = %d, want 9 (A); frame %v", got, mid)
	}
}

func TestChromaCQTMajorTriad(t *testing.T) {
	cqt := newTestCQT(t)
	// C4 E4 G4
	signal := tone([]float64{261.63, 329.63, 392.00}, 1.0)

	chromagram, err := cqt.Compute(signal)
	if err != nil {
		t.Fatal(err)
	}

	mid := chromagram[len(chromagram)/2]
	order := make([]int, NumChroma)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return mid[order[a]] > mid[order[b]] })

	top := map[int]bool{order[0]: true, order[1]: true, order[2]: true}
	for _, pc := range []int{0, 4, 7} {
		if !top[pc] {
			t.Errorf("pitch class %d not among the three strongest: %v", pc, order[:3])
		}
	}
}

func TestNewChromaCQTRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CQTConfig)
	}{
		{"zero hop", func(c *CQTConfig) { c.HopLength = 0 }},
		{"zero rate", func(c *CQTConfig) { c.SampleRate = 0 }},
		{"too few bins", func(c *CQTConfig) { c.BinsPerOctave = 6 }},
		{"above nyquist", func(c *CQTConfig) { c.Octaves = 9 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCQTConfig(testRate, testHop)
			tt.mutate(&cfg)
			if _, err := NewChromaCQT(cfg); !common.IsInvalidInput(err) {
				t.Errorf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestSegmentBoundaries(t *testing.T) {
	got := SegmentBoundaries([]int{0, 4, 4, 9, 20}, 10)
	want := []int{0, 4, 9, 10}
	if len(got) != len(want) {
		t.Fatalf("boundaries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("boundaries = %v, want %v", got, want)
			break
		}
	}
}

func TestBeatSyncMedian(t *testing.T) {
	frames := make([][]float64, 6)
	for i := range frames {
		frames[i] = make([]float64, NumChroma)
		frames[i][0] = float64(i)
	}
	// outlier in the first segment
	frames[1][0] = 100

	synced := BeatSync(frames, []int{3})
	if len(synced) != 2 {
		t.Fatalf("segments = %d, want 2", len(synced))
	}
	if synced[0][0] != 2 {
		t.Errorf("segment 0 median = %f, want 2", synced[0][0])
	}
	if synced[1][0] != 4 {
		t.Errorf("segment 1 median = %f, want 4", synced[1][0])
	}
}

func TestNormalizeLeavesSilence(t *testing.T) {
	in := [][]float64{
		{0, 2, 4, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		make([]float64, NumChroma),
	}
	out := Normalize(in, 1e-10)

	if out[0][2] != 1 || out[0][1] != 0.5 {
		t.Errorf("normalised frame = %v", out[0])
	}
	for _, v := range out[1] {
		if v != 0 {
			t.Fatalf("silent frame changed: %v", out[1])
		}
	}
	if in[0][2] != 4 {
		t.Error("input modified")
	}
}

func TestEstimateHarmonicRhythm(t *testing.T) {
	a := []float64{1, 0, 0, 0, 1, 0, 0, 1, 0, 0, 0, 0}
	b := []float64{0, 0, 1, 0, 0, 1, 0, 0, 0, 1, 0, 0}

	var frames [][]float64
	for i := range 12 {
		if (i/2)%2 == 0 {
			frames = append(frames, a)
		} else {
			frames = append(frames, b)
		}
	}

	if got := EstimateHarmonicRhythm(frames); math.Abs(got-2) > 1e-9 {
		t.Errorf("harmonic rhythm = %f, want 2", got)
	}

	static := [][]float64{a, a, a, a}
	if got := EstimateHarmonicRhythm(static); got != DefaultHarmonicRhythm {
		t.Errorf("static harmonic rhythm = %f, want default", got)
	}
}
