package features

import (
	"errors"
	"fmt"
)

// Two failure classes exist. Configuration errors cover any parameter
// outside its documented domain, and are raised before any pixel work.
// Shape errors cover input arrays whose rank does not fit the feature.
// Neither produces a partial result.
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrBadShape             = errors.New("bad input shape")
)

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %v", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

func shapeError(format string, args ...any) error {
	return fmt.Errorf("%w: %v", ErrBadShape, fmt.Sprintf(format, args...))
}
