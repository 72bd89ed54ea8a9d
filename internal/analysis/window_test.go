package analysis

import (
	"errors"
	"math/rand"
	"testing"
)

func TestSearchWindowPrefersEarliestTie(t *testing.T) {
	scores := []float64{0, 1, 1, 0, 0, 1, 1, 0}
	for run := 0; run < 50; run++ {
		got, err := SearchWindow(scores, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 1 {
			t.Fatalf("run %d: got index %d, want 1", run, got)
		}
	}
}

func TestSearchWindowKeepsFirstOfRepeatedBlocks(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, width := range []int{3, 17, 64, 215} {
		for _, gap := range []int{1, 10, 333} {
			block := make([]float64, width)
			for i := range block {
				block[i] = 0.5 + 0.5*rng.Float64()
			}
			scores := append([]float64(nil), block...)
			for i := 0; i < gap; i++ {
				scores = append(scores, 0.01*rng.Float64())
			}
			scores = append(scores, block...)
			for i := 0; i < gap; i++ {
				scores = append(scores, 0.01*rng.Float64())
			}

			got, err := SearchWindow(scores, width)
			if err != nil {
				t.Fatalf("width %d gap %d: unexpected error: %v", width, gap, err)
			}
			if got != 0 {
				t.Fatalf("width %d gap %d: got index %d, want 0", width, gap, got)
			}
		}
	}
}

func TestSearchWindowFindsSalientBlock(t *testing.T) {
	scores := make([]float64, 40)
	for i := range scores {
		scores[i] = 0.25
	}
	for i := 10; i < 15; i++ {
		scores[i] = 1
	}
	tests := []struct {
		width  int
		lo, hi int
	}{
		{width: 3, lo: 10, hi: 12},
		{width: 5, lo: 10, hi: 10},
		{width: 9, lo: 6, hi: 10},
	}
	for _, tc := range tests {
		got, err := SearchWindow(scores, tc.width)
		if err != nil {
			t.Fatalf("width %d: unexpected error: %v", tc.width, err)
		}
		if got < tc.lo || got > tc.hi {
			t.Fatalf("width %d: got %d, want within [%d,%d]", tc.width, got, tc.lo, tc.hi)
		}
	}
}

func TestSearchWindowSingleCandidate(t *testing.T) {
	got, err := SearchWindow([]float64{0.5, 0.1, 0.9}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}

func TestSearchWindowInsufficientData(t *testing.T) {
	_, err := SearchWindow([]float64{1, 2, 3}, 4)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	_, err = SearchWindow(nil, 1)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for empty scores, got %v", err)
	}
}

func TestSearchWindowRejectsZeroWidth(t *testing.T) {
	_, err := SearchWindow([]float64{1, 2, 3}, 0)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestWindowFrames(t *testing.T) {
	if got := WindowFrames(20, 22050); got != 861 {
		t.Fatalf("WindowFrames(20) = %d, want 861", got)
	}
	if got := WindowFrames(5, 22050); got != 215 {
		t.Fatalf("WindowFrames(5) = %d, want 215", got)
	}
	if got := WindowFrames(0.001, 22050); got != 1 {
		t.Fatalf("WindowFrames(0.001) = %d, want 1", got)
	}
}

func TestClampStart(t *testing.T) {
	fps := FramesPerSecond(22050)
	tests := []struct {
		name      string
		index     int
		total     float64
		requested float64
		want      float64
	}{
		{name: "inside", index: 431, total: 30, requested: 5, want: 10.01},
		{name: "overruns end", index: 1200, total: 30, requested: 5, want: 25},
		{name: "requested longer than track", index: 0, total: 4, requested: 5, want: 0},
		{name: "start of track", index: 0, total: 30, requested: 5, want: 0},
		{name: "rounding stays inside track", index: 10000, total: 30, requested: 5.004, want: 24.99},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClampStart(tc.index, fps, tc.total, tc.requested); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestClampStartNeverPassesWindowEnd(t *testing.T) {
	fps := FramesPerSecond(22050)
	for _, total := range []float64{12.345, 30, 187.777} {
		for _, requested := range []float64{3.333, 5.004, 9.999, 20} {
			limit := total - requested
			if limit < 0 {
				limit = 0
			}
			for index := 0; index < int(total*fps)+50; index += 7 {
				got := ClampStart(index, fps, total, requested)
				if got < 0 || got > limit {
					t.Fatalf("ClampStart(%d, total=%v, requested=%v) = %v, want within [0,%v]", index, total, requested, got, limit)
				}
			}
		}
	}
}
