package assignment

import (
	"crypto/subtle"
	"fmt"
	"time"
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  nil,
	StatusCancelled:  nil,
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, n := range transitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

func (a *Assignment) TransitionTo(next Status) error {
	if !a.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, next)
	}
	a.Status = next
	return nil
}

// Complete checks the pickup code and marks the assignment completed at the given time.
// A wrong code leaves the assignment untouched.
func (a *Assignment) Complete(otp string, at time.Time) error {
	if !a.Status.CanTransitionTo(StatusCompleted) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, StatusCompleted)
	}
	if a.OTPCode == "" || subtle.ConstantTimeCompare([]byte(a.OTPCode), []byte(otp)) != 1 {
		return ErrInvalidOTP
	}
	ts := at.UTC()
	a.Status = StatusCompleted
	a.CompletedAt = &ts
	return nil
}
