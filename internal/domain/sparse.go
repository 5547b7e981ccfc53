package domain

import "math"

// Index is a spherical harmonic (degree, order) pair. Negative orders address the
// sine (h or s) coefficient of |m|.
type Index struct {
	N int
	M int
}

// CoeffSize returns the number of (n, m) slots of a dense coefficient array of the
// given maximum degree, i.e. the triangular count (degree+1)(degree+2)/2.
func CoeffSize(degree int) int {
	return ((degree + 1) * (degree + 2)) / 2
}

// SlotPosition returns the dense (row, column) of a (n, m) coefficient.
// Negative orders go to the second column.
func SlotPosition(n, m int) (row, col int) {
	if m < 0 {
		return n*(n+1)/2 - m, 1
	}
	return n*(n+1)/2 + m, 0
}

// SparseCoefficients holds the index bookkeeping of a sparse set of spherical
// harmonic coefficients. Each stored entry k is scattered into a dense
// (CoeffSize(degree), 2) array at row degreeIndex[k] and column coeffIndex[k].
type SparseCoefficients struct {
	indices     []Index
	degreeIndex []int
	coeffIndex  []int
	positions   map[Index]int
	degree      int
	minDegree   int
	isInternal  bool
}

// NewSparseCoefficients creates the index bookkeeping for the given entries.
// Entry order is preserved and defines the storage positions.
func NewSparseCoefficients(indices []Index, isInternal bool) *SparseCoefficients {
	s := &SparseCoefficients{
		indices:     make([]Index, len(indices)),
		degreeIndex: make([]int, len(indices)),
		coeffIndex:  make([]int, len(indices)),
		positions:   make(map[Index]int, len(indices)),
		isInternal:  isInternal,
	}
	copy(s.indices, indices)

	for k, idx := range indices {
		s.degreeIndex[k], s.coeffIndex[k] = SlotPosition(idx.N, idx.M)
		s.positions[idx] = k

		if k == 0 || idx.N > s.degree {
			s.degree = idx.N
		}
		if k == 0 || idx.N < s.minDegree {
			s.minDegree = idx.N
		}
	}

	return s
}

// Degree returns the maximum degree of the stored entries (0 when empty).
func (s *SparseCoefficients) Degree() int { return s.degree }

// MinDegree returns the minimum degree of the stored entries (0 when empty).
func (s *SparseCoefficients) MinDegree() int { return s.minDegree }

// IsInternal reports whether the coefficients describe an internal source.
func (s *SparseCoefficients) IsInternal() bool { return s.isInternal }

// Len returns the number of stored entries.
func (s *SparseCoefficients) Len() int { return len(s.indices) }

// Indices returns a copy of the stored (n, m) pairs in storage order.
func (s *SparseCoefficients) Indices() []Index {
	out := make([]Index, len(s.indices))
	copy(out, s.indices)
	return out
}

// IndexOf returns the storage position of the (n, m) entry.
func (s *SparseCoefficients) IndexOf(n, m int) (int, bool) {
	k, ok := s.positions[Index{N: n, M: m}]
	return k, ok
}

// Position returns the dense (row, column) target of the k-th stored entry.
func (s *SparseCoefficients) Position(k int) (row, col int) {
	return s.degreeIndex[k], s.coeffIndex[k]
}

// Validity returns the time interval in which the coefficients are defined.
// The sparse set itself is valid at all times.
func (s *SparseCoefficients) Validity() (start, end float64) {
	return math.Inf(-1), math.Inf(1)
}

// IsValid reports whether the given MJD2000 time lies within the validity interval.
// NaN is never valid.
func (s *SparseCoefficients) IsValid(mjd2000 float64) bool {
	start, end := s.Validity()
	return start <= mjd2000 && mjd2000 <= end
}
