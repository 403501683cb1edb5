package posture

import (
	"errors"
	"fmt"
)

var (
	// ErrImageDecode reports image bytes that are malformed or in an unsupported format.
	ErrImageDecode = errors.New("image could not be decoded")
	// ErrLandmarksMissing reports that the pose model ran but found no usable body pose.
	ErrLandmarksMissing = errors.New("body landmarks not detected")
	// ErrInvalidUserReference reports a malformed user identifier.
	ErrInvalidUserReference = errors.New("invalid user reference")
)

// View names the photograph an analysis step was working on.
type View string

const (
	ViewBack View = "back"
	ViewSide View = "side"
)

// ViewError attaches the failing view to a domain error.
type ViewError struct {
	View   View
	Err    error
	Detail string
}

func (e *ViewError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s photo: %v (%s)", e.View, e.Err, e.Detail)
	}
	return fmt.Sprintf("%s photo: %v", e.View, e.Err)
}

func (e *ViewError) Unwrap() error {
	return e.Err
}
