// Package oblivious provides adversaries whose losses do not depend on the
// learner's actions.
package oblivious

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/boristopalov/olearn/pkg/config"
	"github.com/boristopalov/olearn/pkg/loss"
)

// DefaultSeed seeds every LinearAdversary that is not given a seed
const DefaultSeed uint64 = 777

var (
	ErrInvalidRange      = errors.New("invalid range")
	ErrNegativeDimension = errors.New("negative dimension")
)

// LinearAdversary reveals linear losses whose coefficients are drawn
// uniformly from [lb, ub). Not safe for concurrent use.
type LinearAdversary struct {
	dist distuv.Uniform
	src  *rand.PCG
	seed uint64
	dim  int
	lb   float64
	ub   float64
}

// NewLinearAdversary creates an adversary of dimension dim seeded with
// DefaultSeed over [0, 1). It panics if dim is negative.
func NewLinearAdversary(dim int) *LinearAdversary {
	if dim < 0 {
		panic(fmt.Errorf("linear adversary: dim %d: %w", dim, ErrNegativeDimension))
	}
	a := &LinearAdversary{dim: dim, lb: 0, ub: 1}
	return a.WithSeed(DefaultSeed)
}

// FromConfig builds an adversary from a validated configuration.
func FromConfig(cfg config.AdversaryConfig) (*LinearAdversary, error) {
	if cfg.Dim < 0 {
		return nil, fmt.Errorf("linear adversary: dim %d: %w", cfg.Dim, ErrNegativeDimension)
	}
	if err := validateRange(cfg.LowerBound, cfg.UpperBound); err != nil {
		return nil, err
	}
	a := NewLinearAdversary(cfg.Dim)
	return a.WithRange(cfg.LowerBound, cfg.UpperBound).WithSeed(cfg.Seed), nil
}

// WithRange sets the sampling range to [lb, ub) without reseeding, so the
// current stream continues under the new bounds. It panics unless lb < ub
// and both are finite.
func (a *LinearAdversary) WithRange(lb, ub float64) *LinearAdversary {
	if err := validateRange(lb, ub); err != nil {
		panic(err)
	}
	a.lb, a.ub = lb, ub
	a.dist = distuv.Uniform{Min: lb, Max: ub, Src: a.src}
	return a
}

// WithSeed restarts the generator from seed and keeps the current range.
func (a *LinearAdversary) WithSeed(seed uint64) *LinearAdversary {
	a.seed = seed
	a.src = rand.NewPCG(seed, seed)
	a.dist = distuv.Uniform{Min: a.lb, Max: a.ub, Src: a.src}
	return a
}

// Reveal draws a fresh coefficient vector, advancing the generator by dim draws.
func (a *LinearAdversary) Reveal() loss.LinearLoss {
	coef := make([]float64, a.dim)
	for i := range coef {
		coef[i] = a.draw()
	}
	return loss.NewLinearLoss(coef)
}

// draw keeps ub exclusive when rnd*(ub-lb)+lb rounds up.
func (a *LinearAdversary) draw() float64 {
	v := a.dist.Rand()
	if v >= a.ub {
		v = math.Nextafter(a.ub, a.lb)
	}
	return v
}

// Clone returns an independent adversary that will reveal the same
// sequence as a from this point on.
func (a *LinearAdversary) Clone() *LinearAdversary {
	src := *a.src
	c := *a
	c.src = &src
	c.dist = distuv.Uniform{Min: a.lb, Max: a.ub, Src: c.src}
	return &c
}

func (a *LinearAdversary) Dim() int {
	return a.dim
}

func (a *LinearAdversary) Range() (lb, ub float64) {
	return a.lb, a.ub
}

func (a *LinearAdversary) Seed() uint64 {
	return a.seed
}

func validateRange(lb, ub float64) error {
	if math.IsNaN(lb) || math.IsNaN(ub) || math.IsInf(lb, 0) || math.IsInf(ub, 0) {
		return fmt.Errorf("linear adversary: [%v, %v) is not finite: %w", lb, ub, ErrInvalidRange)
	}
	if lb >= ub {
		return fmt.Errorf("linear adversary: lower bound %v must be below upper bound %v: %w", lb, ub, ErrInvalidRange)
	}
	if math.IsInf(ub-lb, 0) {
		return fmt.Errorf("linear adversary: width of [%v, %v) overflows: %w", lb, ub, ErrInvalidRange)
	}
	return nil
}
