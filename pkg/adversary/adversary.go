// Package adversary defines environments that reveal a loss each round,
// and the bandit view derived from them.
package adversary

import "github.com/boristopalov/olearn/pkg/loss"

// FullInformationAdversary reveals the whole loss function for the current round.
//
// L is fixed by each implementation, so callers always receive the loss
// representation the adversary actually produces. Reveal may update
// internal state; an adaptive adversary does so before returning.
type FullInformationAdversary[L any] interface {
	// Reveal returns the loss function of a new round
	Reveal() L
}

// EvaluateBandit plays one bandit round against adv: it reveals a loss and
// returns only its value at arg.
func EvaluateBandit[T any, L loss.Loss[T]](adv FullInformationAdversary[L], arg T) float64 {
	return adv.Reveal().Evaluate(arg)
}

// Bandit restricts a full-information adversary to scalar feedback.
// Every Evaluate consumes exactly one round of the underlying adversary.
type Bandit[T any, L loss.Loss[T]] struct {
	adv FullInformationAdversary[L]
}

// NewBandit returns the bandit view of adv
func NewBandit[T any, L loss.Loss[T]](adv FullInformationAdversary[L]) *Bandit[T, L] {
	return &Bandit[T, L]{adv: adv}
}

// Evaluate returns the loss of arg for a freshly revealed round
func (b *Bandit[T, L]) Evaluate(arg T) float64 {
	return EvaluateBandit[T, L](b.adv, arg)
}
