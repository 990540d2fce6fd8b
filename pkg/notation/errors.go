package notation

import (
	"errors"
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// Error taxonomy. Every error returned by this package wraps exactly one of
// these, so callers can branch with errors.Is.
var (
	ErrInvalidDurationCode  = errors.New("invalid duration code")
	ErrInvalidDurationSplit = errors.New("invalid duration split")
	ErrNoMatchingEvent      = errors.New("no matching event")
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrInvariantViolation   = errors.New("tick invariant violation")
	ErrInvalidPitch         = errors.New("invalid pitch")
	ErrInvalidTimeSignature = errors.New("invalid time signature")
	ErrInvalidClef          = errors.New("invalid clef")
	ErrRestDuration         = errors.New("rest duration")
)

// fail wraps a sentinel with an internal detail, a user-facing issue and a
// transport-neutral kind.
func fail(sentinel error, kind ftag.Kind, detail, issue string) error {
	return fault.Wrap(sentinel,
		fmsg.WithDesc(detail, issue),
		ftag.With(kind),
	)
}

func invalidArgument(sentinel error, detail, issue string) error {
	return fail(sentinel, ftag.InvalidArgument, detail, issue)
}

func notFound(sentinel error, detail, issue string) error {
	return fail(sentinel, ftag.NotFound, detail, issue)
}

// IndexOutOfRange reports an index outside [0, n).
func IndexOutOfRange(what string, index, n int) error {
	return notFound(ErrIndexOutOfRange,
		fmt.Sprintf("%s index %d outside [0,%d)", what, index, n),
		fmt.Sprintf("There is no %s at position %d", what, index),
	)
}
