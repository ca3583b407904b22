// Package domain contains the core entities of the timebox tracker.
// These types describe timeboxes, their run state and run history and are
// independent of storage, terminal and transport concerns.
package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Common domain errors.
var (
	ErrInvalidDuration      = errors.New("invalid duration")
	ErrEmptyTitle           = errors.New("timebox title cannot be empty")
	ErrTimeboxNotFound      = errors.New("timebox not found")
	ErrDuplicateTimebox     = errors.New("timebox already exists")
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrAmbiguousID          = errors.New("ambiguous timebox id")
	ErrTimeboxLocked        = errors.New("timebox is locked for running")
	ErrTimeboxEditable      = errors.New("timebox is being edited")
	ErrAlreadyRunning       = errors.New("timer already running")
	ErrNotRunning           = errors.New("timer not running")
	ErrMachineClosed        = errors.New("timer closed")
	ErrSessionAlreadyActive = errors.New("a timebox run is already active")
)

// Timebox is a named task with an allotted duration.
type Timebox struct {
	ID       string
	Title    string
	Duration time.Duration
}

// NewTimebox creates a timebox with a generated ID.
func NewTimebox(title string, minutes float64) (*Timebox, error) {
	if title == "" {
		return nil, ErrEmptyTitle
	}
	d, err := MinutesToDuration(minutes)
	if err != nil {
		return nil, err
	}
	return &Timebox{
		ID:       NewID(),
		Title:    title,
		Duration: d,
	}, nil
}

// MinutesToDuration converts a minutes value as typed by a user into a duration.
func MinutesToDuration(minutes float64) (time.Duration, error) {
	if minutes < 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return 0, fmt.Errorf("%w: %v minutes", ErrInvalidDuration, minutes)
	}
	return time.Duration(minutes * float64(time.Minute)), nil
}

// TotalTimeInMinutes returns the allotted duration in minutes.
func (t Timebox) TotalTimeInMinutes() float64 {
	return t.Duration.Minutes()
}

// Validate checks the invariants a stored timebox must hold.
func (t Timebox) Validate() error {
	if t.Title == "" {
		return ErrEmptyTitle
	}
	if t.Duration < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDuration, t.Duration)
	}
	return nil
}

// SeedTimeboxes returns the entries a fresh pending list starts with.
func SeedTimeboxes() []Timebox {
	return []Timebox{
		{ID: "a", Title: "Uczę się CSS in JS", Duration: 25 * time.Minute},
		{ID: "b", Title: "Uczę się SASS", Duration: 15 * time.Minute},
		{ID: "c", Title: "Uczę się BEM", Duration: 5 * time.Minute},
	}
}

// DefaultActiveTimebox returns the timebox the active container starts with.
func DefaultActiveTimebox() Timebox {
	return Timebox{
		ID:       "active",
		Title:    "Uczę się CSS!",
		Duration: 20 * time.Minute,
	}
}
