package adversary

import "github.com/boristopalov/olearn/pkg/memory"

// Recorder wraps an adversary and keeps the most recently revealed losses.
type Recorder[L any] struct {
	adv     FullInformationAdversary[L]
	history *memory.History[L]
	rounds  int
}

// NewRecorder records up to capacity losses revealed by adv.
// A non-positive capacity only counts rounds.
func NewRecorder[L any](adv FullInformationAdversary[L], capacity int) *Recorder[L] {
	return &Recorder[L]{
		adv:     adv,
		history: memory.NewHistory[L](capacity),
	}
}

// Reveal reveals a round of the wrapped adversary and records its loss
func (r *Recorder[L]) Reveal() L {
	l := r.adv.Reveal()
	r.rounds++
	r.history.Store(l)
	return l
}

// History returns the retained losses, oldest first
func (r *Recorder[L]) History() []L {
	return r.history.All()
}

// Rounds returns the number of rounds revealed so far
func (r *Recorder[L]) Rounds() int {
	return r.rounds
}
