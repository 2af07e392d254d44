// Package loss defines loss functions revealed by adversaries each round.
package loss

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ErrDimensionMismatch is the panic cause when a point and a loss disagree on length
var ErrDimensionMismatch = errors.New("dimension mismatch")

// Loss evaluates a loss value at a point of type T.
// Implementations must not mutate themselves in Evaluate.
type Loss[T any] interface {
	// Evaluate returns the loss value at arg
	Evaluate(arg T) float64
}

// LinearLoss is the loss x -> <c, x> for a fixed coefficient vector c
type LinearLoss struct {
	coef []float64
}

// NewLinearLoss creates a linear loss over a copy of coef
func NewLinearLoss(coef []float64) LinearLoss {
	c := make([]float64, len(coef))
	copy(c, coef)
	return LinearLoss{coef: c}
}

// Evaluate returns the inner product of the coefficients and x.
// It panics if len(x) differs from the number of coefficients.
func (l LinearLoss) Evaluate(x []float64) float64 {
	if len(x) != len(l.coef) {
		panic(fmt.Errorf("linear loss: point has %d entries, want %d: %w", len(x), len(l.coef), ErrDimensionMismatch))
	}
	return floats.Dot(l.coef, x)
}

// Coefficients returns a copy of the coefficient vector
func (l LinearLoss) Coefficients() []float64 {
	c := make([]float64, len(l.coef))
	copy(c, l.coef)
	return c
}

// Dim returns the number of coefficients
func (l LinearLoss) Dim() int {
	return len(l.coef)
}
