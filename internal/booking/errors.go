package booking

import "errors"

var (
	// ErrValidation covers missing or malformed booking input.
	ErrValidation = errors.New("invalid booking request")

	// ErrTooSoon means the requested start violates the minimum lead time.
	ErrTooSoon = errors.New("slot is too soon")

	// ErrOutsideAvailability means the start does not fall inside the
	// professional's posted hours for that weekday.
	ErrOutsideAvailability = errors.New("slot outside availability")

	// ErrConflict means the slot is taken, whether detected by the overlap
	// pre-check or by the storage-level unique constraint at insert time.
	// Callers cannot distinguish the two; both mean "pick another slot".
	ErrConflict = errors.New("slot already booked")

	ErrNotFound         = errors.New("appointment not found")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrAlreadyCancelled = errors.New("appointment already cancelled")
	ErrNotAllowed       = errors.New("not allowed")
)
