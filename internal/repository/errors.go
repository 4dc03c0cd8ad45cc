// Package repository defines error types that are reused across
// multiple repositories.  These sentinel values let higher layers such
// as the scheduling service and handlers distinguish between failure
// scenarios without string matching: ErrForbidden indicates the acting
// user does not own the resource, ErrSlotTaken signals that the
// database-level uniqueness guard rejected a second active booking on
// a slot.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrSlotNotFound indicates that an available slot id did not resolve.
var ErrSlotNotFound = errors.New("slot not found")

// ErrBookingNotFound indicates that a booking id did not resolve.
var ErrBookingNotFound = errors.New("booking not found")

// ErrSubjectNotFound indicates that a subject id did not resolve.
var ErrSubjectNotFound = errors.New("subject not found")

// ErrSlotTaken is returned when an insert hits the unique index on
// active bookings per slot: a concurrent writer won the race.  The
// service treats it exactly like a failed bookable pre-check.
var ErrSlotTaken = errors.New("slot already has an active booking")
