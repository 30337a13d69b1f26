package offer

import (
	"fmt"
	"time"
)

// transitions lists, for every status, the statuses it may move to.
var transitions = map[Status][]Status{
	StatusAvailable: {StatusAccepted, StatusCancelled},
	StatusAccepted:  {StatusAvailable, StatusPickedUp, StatusDelivered, StatusCancelled},
	StatusPickedUp:  {StatusAvailable, StatusDelivered, StatusCancelled},
	StatusDelivered: nil,
	StatusCancelled: nil,
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, n := range transitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool { return len(transitions[s]) == 0 }

// TransitionTo moves the offer to next or returns ErrInvalidTransition.
func (o *Offer) TransitionTo(next Status, at time.Time) error {
	if !o.Status.CanTransitionTo(next) {
		if o.Status == StatusAccepted && next == StatusAccepted {
			return ErrAlreadyAccepted
		}
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}
	o.Status = next
	o.StatusUpdatedAt = at.UTC()
	return nil
}
