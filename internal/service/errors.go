// Package service implements the scheduling core: every slot and
// booking mutation flows through it, inside one database transaction
// per operation.  Business-rule violations surface as the sentinel
// errors below; handlers translate them into HTTP 400 responses with
// stable reason strings.  Ownership and not-found failures reuse the
// repository sentinels.
package service

import "errors"

// ErrInvalidRange: a slot's start time is not strictly before its end.
var ErrInvalidRange = errors.New("start time must be before end time")

// ErrPastTime: a slot cannot be created or moved into the past.
var ErrPastTime = errors.New("slot cannot start in the past")

// ErrSlotOverlap: the time range collides with another slot of the
// same teacher.
var ErrSlotOverlap = errors.New("slot overlaps an existing slot")

// ErrOverlappingBooking: the student already holds an active booking
// for an intersecting period.
var ErrOverlappingBooking = errors.New("already booked this period")

// ErrSlotHasBooking: the slot carries an active booking, so it can be
// neither updated nor deleted.
var ErrSlotHasBooking = errors.New("slot has an active booking")

// ErrCancelWindow: cancellation requires more than 24 hours of lead
// time before the slot starts.
var ErrCancelWindow = errors.New("booking can only be cancelled more than 24h before the lesson")

// ErrPastLesson: a booking whose slot start has passed can no longer
// be decided.
var ErrPastLesson = errors.New("past booking cannot be decided")

// ErrInvalidStatus: the requested status transition is not allowed by
// the booking lifecycle.
var ErrInvalidStatus = errors.New("invalid status transition")
