package common

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		want float64
	}{
		{"empty", nil, 0},
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"single", []float64{7}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Median(tt.data); got != tt.want {
				t.Errorf("Median(%v) = %v, want %v", tt.data, got, tt.want)
			}
		})
	}
}

func TestMedianDoesNotMutate(t *testing.T) {
	data := []float64{3, 1, 2}
	Median(data)
	if data[0] != 3 || data[1] != 1 || data[2] != 2 {
		t.Errorf("Median reordered its input: %v", data)
	}
}

func TestArgMaxFirstWins(t *testing.T) {
	if got := ArgMax([]float64{1, 5, 5, 2}); got != 1 {
		t.Errorf("ArgMax = %d, want 1", got)
	}
	if got := ArgMax(nil); got != -1 {
		t.Errorf("ArgMax(nil) = %d, want -1", got)
	}
}

func TestNormalizeSum(t *testing.T) {
	data := []float64{1, 1, 2}
	if !NormalizeSum(data) {
		t.Fatal("NormalizeSum returned false for positive data")
	}
	if math.Abs(data[2]-0.5) > 1e-12 {
		t.Errorf("data[2] = %v, want 0.5", data[2])
	}

	zeros := []float64{0, 0}
	if NormalizeSum(zeros) {
		t.Error("NormalizeSum should refuse a zero vector")
	}
}

func TestNormalizeMax(t *testing.T) {
	data := []float64{0.5, 2, 1}
	NormalizeMax(data, 1e-10)
	if data[1] != 1 || data[0] != 0.25 {
		t.Errorf("NormalizeMax = %v", data)
	}

	silent := []float64{0, 0, 0}
	NormalizeMax(silent, 1e-10)
	for _, v := range silent {
		if v != 0 {
			t.Errorf("silent frame changed: %v", silent)
		}
	}
}

func TestInvalidInputWrapping(t *testing.T) {
	err := fmt.Errorf("decode: %w", InvalidInput("viterbi", "empty emission matrix"))
	if !IsInvalidInput(err) {
		t.Errorf("wrapped error lost ErrInvalidInput: %v", err)
	}

	var iie *InvalidInputError
	if !errors.As(err, &iie) || iie.Op != "viterbi" {
		t.Errorf("errors.As failed: %v", err)
	}
}

func TestOutcome(t *testing.T) {
	ok := Ok(3)
	if ok.FellBack || ok.Value != 3 {
		t.Errorf("Ok = %+v", ok)
	}

	fb := Fallback("C major", "flat histogram")
	if !fb.FellBack || fb.Reason != "flat histogram" {
		t.Errorf("Fallback = %+v", fb)
	}
}

func TestResample(t *testing.T) {
	signal := []float64{0, 1, 2, 3, 4, 5, 6, 7}

	down := Resample(signal, 8, 4)
	want := []float64{0, 2, 4, 6}
	if len(down) != len(want) {
		t.Fatalf("len = %d, want %d", len(down), len(want))
	}
	for i := range want {
		if math.Abs(down[i]-want[i]) > 1e-12 {
			t.Errorf("down[%d] = %f, want %f", i, down[i], want[i])
		}
	}

	up := Resample(signal, 4, 8)
	if len(up) != 16 || math.Abs(up[1]-0.5) > 1e-12 {
		t.Errorf("upsampled = %v", up)
	}

	same := Resample(signal, 8, 8)
	same[0] = 99
	if signal[0] != 0 {
		t.Error("equal-rate resample aliases its input")
	}
}

func TestMax(t *testing.T) {
	if Max(nil) != 0 {
		t.Error("Max(nil) != 0")
	}
	if got := Max([]float64{-3, 5, 2}); got != 5 {
		t.Errorf("Max = %f, want 5", got)
	}
}
