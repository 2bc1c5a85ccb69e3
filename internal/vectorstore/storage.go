package vectorstore

import (
	"errors"
	"math"

	"pdfchat/internal/domain"
)

// ErrDimensionMismatch is returned when a vector does not match the collection dimension.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Storage is a collection-scoped vector store owning its connection.
type Storage interface {
	domain.VectorStore
	domain.Resetter
	Close() error
}

// CosineDistance returns 1 - cos(a, b). Zero vectors are at distance 1.
func CosineDistance(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
