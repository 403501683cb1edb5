package pose

import (
	"context"

	"github.com/example/posture-check/internal/posture"
)

// Detection is the outcome of running the pose model over one image.
// Found is false when the model ran but saw no body.
type Detection struct {
	Found     bool
	Landmarks posture.LandmarkSet
}

// Extractor exposes the pose estimation capability used by the screening flow.
type Extractor interface {
	Detect(ctx context.Context, img Image) (Detection, error)
}

// StaticExtractor returns fixed detections per view. It stands in for the
// model in tests and offline tooling.
type StaticExtractor struct {
	Back  Detection
	Side  Detection
	Err   error
	calls int
}

// Detect alternates back, side, back, ... which matches the order the
// screening flow processes photos in.
func (s *StaticExtractor) Detect(ctx context.Context, img Image) (Detection, error) {
	s.calls++
	if s.Err != nil {
		return Detection{}, s.Err
	}
	if s.calls%2 == 1 {
		return s.Back, nil
	}
	return s.Side, nil
}

// Calls reports how many detections were requested.
func (s *StaticExtractor) Calls() int {
	return s.calls
}
