package domain

import (
	"math"
	"testing"
)

func TestCoeffSize(t *testing.T) {
	tests := []struct {
		degree   int
		expected int
	}{
		{0, 1},
		{1, 3},
		{2, 6},
		{3, 10},
		{13, 105},
	}

	for _, tt := range tests {
		if got := CoeffSize(tt.degree); got != tt.expected {
			t.Errorf("CoeffSize(%d): expected %d, got %d", tt.degree, tt.expected, got)
		}
	}
}

func TestSlotPosition(t *testing.T) {
	tests := []struct {
		n, m     int
		row, col int
	}{
		{0, 0, 0, 0},
		{1, 0, 1, 0},
		{1, 1, 2, 0},
		{1, -1, 2, 1},
		{2, 0, 3, 0},
		{3, -2, 8, 1},
		{3, 3, 9, 0},
	}

	for _, tt := range tests {
		row, col := SlotPosition(tt.n, tt.m)
		if row != tt.row || col != tt.col {
			t.Errorf("SlotPosition(%d, %d): expected (%d, %d), got (%d, %d)", tt.n, tt.m, tt.row, tt.col, row, col)
		}
	}
}

func TestSparseCoefficients_Bookkeeping(t *testing.T) {
	indices := []Index{{N: 2, M: -1}, {N: 1, M: 0}, {N: 4, M: 3}}
	s := NewSparseCoefficients(indices, true)

	if s.Len() != 3 {
		t.Fatalf("Len: expected 3, got %d", s.Len())
	}
	if s.Degree() != 4 {
		t.Errorf("Degree: expected 4, got %d", s.Degree())
	}
	if s.MinDegree() != 1 {
		t.Errorf("MinDegree: expected 1, got %d", s.MinDegree())
	}
	if !s.IsInternal() {
		t.Errorf("expected internal coefficients")
	}

	for k, idx := range indices {
		pos, ok := s.IndexOf(idx.N, idx.M)
		if !ok || pos != k {
			t.Errorf("IndexOf(%d, %d): expected %d, got %d (found=%v)", idx.N, idx.M, k, pos, ok)
		}
		row, col := s.Position(k)
		wantRow, wantCol := SlotPosition(idx.N, idx.M)
		if row != wantRow || col != wantCol {
			t.Errorf("Position(%d): expected (%d, %d), got (%d, %d)", k, wantRow, wantCol, row, col)
		}
	}

	if _, ok := s.IndexOf(2, 1); ok {
		t.Errorf("IndexOf(2, 1): expected missing entry")
	}
}

func TestSparseCoefficients_IndicesIsCopy(t *testing.T) {
	indices := []Index{{N: 1, M: 0}}
	s := NewSparseCoefficients(indices, false)

	indices[0] = Index{N: 9, M: 9}
	got := s.Indices()
	got[0] = Index{N: 7, M: 7}

	if s.Indices()[0] != (Index{N: 1, M: 0}) {
		t.Errorf("stored indices were modified: %+v", s.Indices())
	}
	if s.Degree() != 1 {
		t.Errorf("Degree: expected 1, got %d", s.Degree())
	}
}

func TestSparseCoefficients_Empty(t *testing.T) {
	s := NewSparseCoefficients(nil, false)

	if s.Len() != 0 || s.Degree() != 0 || s.MinDegree() != 0 {
		t.Errorf("empty store: expected zero len and degrees, got (%d, %d, %d)", s.Len(), s.Degree(), s.MinDegree())
	}
}

func TestSparseCoefficients_Validity(t *testing.T) {
	s := NewSparseCoefficients([]Index{{N: 1, M: 0}}, false)

	start, end := s.Validity()
	if !math.IsInf(start, -1) || !math.IsInf(end, 1) {
		t.Errorf("Validity: expected (-Inf, +Inf), got (%v, %v)", start, end)
	}

	tests := []struct {
		mjd   float64
		valid bool
	}{
		{0, true},
		{-36525, true},
		{1e7, true},
		{math.Inf(1), true},
		{math.NaN(), false},
	}

	for _, tt := range tests {
		if got := s.IsValid(tt.mjd); got != tt.valid {
			t.Errorf("IsValid(%v): expected %v, got %v", tt.mjd, tt.valid, got)
		}
	}
}
