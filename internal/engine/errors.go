package engine

import (
	"errors"
)

// Errors returned by engine operations. Callers match them with errors.Is.
var (
	ErrCapacityExceeded           = errors.New("participant limit reached")
	ErrDuplicateName              = errors.New("display name already registered")
	ErrInvalidToken               = errors.New("token length does not match the sequence length")
	ErrInvalidValue               = errors.New("invalid value")
	ErrWinnerCountExceedsCapacity = errors.New("winner count cannot exceed the participant limit")
	ErrNoEligibleParticipants     = errors.New("no eligible participants to draw from")
	ErrPersistence                = errors.New("persistence failure")
	ErrParticipantNotFound        = errors.New("participant not found")
	ErrStatusConflict             = errors.New("participant already holds a different prize status")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrCapacityExceeded, "CAPACITY_EXCEEDED"},
	{ErrDuplicateName, "DUPLICATE_NAME"},
	{ErrInvalidToken, "INVALID_TOKEN"},
	{ErrInvalidValue, "INVALID_VALUE"},
	{ErrWinnerCountExceedsCapacity, "WINNER_COUNT_EXCEEDS_CAPACITY"},
	{ErrNoEligibleParticipants, "NO_ELIGIBLE_PARTICIPANTS"},
	{ErrPersistence, "PERSISTENCE_ERROR"},
	{ErrParticipantNotFound, "PARTICIPANT_NOT_FOUND"},
	{ErrStatusConflict, "STATUS_CONFLICT"},
}

// Code returns the stable tag for an engine error, or "INTERNAL" for anything else.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "INTERNAL"
}
