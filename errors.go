package loupe

import (
	"errors"
	"fmt"
)

// ErrNoSlides is returned by New when the viewer has nothing to show.
var ErrNoSlides = errors.New("loupe: viewer needs at least one slide")

// OutOfRangeError reports a slide index outside [0, Total). State is left
// unchanged when it is returned.
type OutOfRangeError struct {
	Op    string
	Index int
	Total int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("loupe: %s: index %d out of range [0, %d)", e.Op, e.Index, e.Total)
}

// IsOutOfRange reports whether err is, or wraps, an OutOfRangeError.
func IsOutOfRange(err error) bool {
	var oor *OutOfRangeError
	return errors.As(err, &oor)
}
