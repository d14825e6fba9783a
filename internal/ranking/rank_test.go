package ranking

import (
	"math"
	"testing"

	"github.com/kailas-cloud/newsrec/internal/textvec"
)

func vec(pairs ...float64) textvec.Vector {
	var v textvec.Vector
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Indices = append(v.Indices, int(pairs[i]))
		v.Values = append(v.Values, pairs[i+1])
	}
	return v
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b textvec.Vector
		want float64
	}{
		{"identical", vec(0, 1, 2, 3), vec(0, 1, 2, 3), 1},
		{"scaled", vec(0, 1, 2, 3), vec(0, 2, 2, 6), 1},
		{"orthogonal", vec(0, 1), vec(1, 1), 0},
		{"zero query", vec(), vec(0, 1), 0},
		{"zero candidate", vec(0, 1), vec(), 0},
		{"both zero", vec(), vec(), 0},
		{"explicit zero weight", vec(0, 0), vec(0, 1), 0},
		{"half", vec(0, 1), vec(0, 1, 1, 1), 1 / math.Sqrt2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Cosine(tc.a, tc.b)
			if math.IsNaN(got) {
				t.Fatal("Cosine returned NaN")
			}
			if math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("Cosine = %f, want %f", got, tc.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("Cosine = %f out of [0,1]", got)
			}
		})
	}
}

func TestRank_SortedDescending(t *testing.T) {
	q := vec(0, 1, 1, 1)
	cands := []textvec.Vector{
		vec(2, 1),       // 0
		vec(0, 1, 1, 1), // 1
		vec(0, 1),       // ~0.707
		vec(0, 1, 2, 5), // small
	}
	got := Rank(q, cands, 10)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("not sorted at %d: %f > %f", i, got[i].Score, got[i-1].Score)
		}
	}
	wantOrder := []int{1, 2, 3, 0}
	for i, idx := range wantOrder {
		if got[i].Index != idx {
			t.Errorf("position %d: index %d, want %d", i, got[i].Index, idx)
		}
	}
}

func TestRank_TieBreakByIndex(t *testing.T) {
	q := vec(0, 1)
	cands := []textvec.Vector{
		vec(1, 1),       // 0, score 0
		vec(0, 3),       // 1, score 1
		vec(0, 1, 1, 1), // 2
		vec(0, 7),       // 3, score 1 (tie with 1)
		vec(0, 2, 1, 2), // 4, tie with 2
	}
	got := Rank(q, cands, 5)
	want := []int{1, 3, 2, 4, 0}
	for i, idx := range want {
		if got[i].Index != idx {
			t.Fatalf("order = %v, want indices %v", got, want)
		}
	}
}

func TestRank_TopN(t *testing.T) {
	q := vec(0, 1)
	cands := []textvec.Vector{vec(0, 1), vec(0, 1), vec(0, 1)}

	tests := []struct {
		topN int
		want int
	}{
		{-1, 0},
		{0, 0},
		{1, 1},
		{3, 3},
		{4, 3},
	}
	for _, tc := range tests {
		got := Rank(q, cands, tc.topN)
		if got == nil {
			t.Fatalf("topN=%d: got nil, want empty slice", tc.topN)
		}
		if len(got) != tc.want {
			t.Errorf("topN=%d: len = %d, want %d", tc.topN, len(got), tc.want)
		}
	}
}

func TestRank_EmptyCandidates(t *testing.T) {
	got := Rank(vec(0, 1), nil, 4)
	if got == nil || len(got) != 0 {
		t.Errorf("Rank(nil) = %v, want empty", got)
	}
}

func TestRank_ZeroVectorsScoreZero(t *testing.T) {
	got := Rank(vec(0, 1), []textvec.Vector{vec(), vec(0, 1)}, 4)
	if got[0].Index != 1 || got[1].Index != 0 {
		t.Fatalf("order = %v", got)
	}
	if got[1].Score != 0 {
		t.Errorf("zero vector score = %f, want 0", got[1].Score)
	}

	got = Rank(vec(), []textvec.Vector{vec(0, 1), vec(1, 1)}, 4)
	for _, s := range got {
		if s.Score != 0 {
			t.Errorf("zero query: score %f, want 0", s.Score)
		}
	}
	if len(got) != 2 || got[0].Index != 0 || got[1].Index != 1 {
		t.Errorf("zero query keeps index order, got %v", got)
	}
}

func TestRank_Idempotent(t *testing.T) {
	q := vec(0, 0.3, 4, 1.2, 9, 0.1)
	cands := []textvec.Vector{vec(0, 1), vec(4, 2, 9, 1), vec(9, 1), vec(0, 0.3, 4, 1.2)}
	a := Rank(q, cands, 3)
	b := Rank(q, cands, 3)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("run differs at %d: %v vs %v", i, a[i], b[i])
		}
	}
}
