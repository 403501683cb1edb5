package posture

import "math"

// LandmarkName identifies an anatomical point reported by the pose model.
type LandmarkName string

const (
	Nose          LandmarkName = "nose"
	LeftShoulder  LandmarkName = "left_shoulder"
	RightShoulder LandmarkName = "right_shoulder"
	LeftHip       LandmarkName = "left_hip"
	RightHip      LandmarkName = "right_hip"
	LeftAnkle     LandmarkName = "left_ankle"
	RightAnkle    LandmarkName = "right_ankle"
)

// Point is a position in normalized image-fraction coordinates.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// LandmarkSet maps landmark names to their positions in a single image.
type LandmarkSet map[LandmarkName]Point

// BackMetrics are the frontal plane distances measured on the back view.
type BackMetrics struct {
	ShoulderDiff float64 `json:"shoulder_diff" yaml:"shoulder_diff"`
	HipDiff      float64 `json:"hip_diff" yaml:"hip_diff"`
}

// SideMetrics are the sagittal plane distances measured on the side view.
type SideMetrics struct {
	ForwardHead float64 `json:"forward_head" yaml:"forward_head"`
	TrunkLean   float64 `json:"trunk_lean" yaml:"trunk_lean"`
}

// Metrics groups the measurements of both views.
type Metrics struct {
	Back BackMetrics `json:"back" yaml:"back"`
	Side SideMetrics `json:"side" yaml:"side"`
}

// ComputeBackMetrics derives shoulder and hip height asymmetry from a back view.
// A nil set means the extractor found no body and yields ErrLandmarksMissing.
func ComputeBackMetrics(set LandmarkSet) (BackMetrics, error) {
	pts, err := set.require(ViewBack, LeftShoulder, RightShoulder, LeftHip, RightHip)
	if err != nil {
		return BackMetrics{}, err
	}
	return BackMetrics{
		ShoulderDiff: math.Abs(pts[0].Y - pts[1].Y),
		HipDiff:      math.Abs(pts[2].Y - pts[3].Y),
	}, nil
}

// ComputeSideMetrics derives forward head posture and trunk lean from a side view.
func ComputeSideMetrics(set LandmarkSet) (SideMetrics, error) {
	pts, err := set.require(ViewSide, Nose, RightShoulder, RightAnkle)
	if err != nil {
		return SideMetrics{}, err
	}
	return SideMetrics{
		ForwardHead: math.Abs(pts[0].X - pts[1].X),
		TrunkLean:   math.Abs(pts[1].X - pts[2].X),
	}, nil
}

func (s LandmarkSet) require(view View, names ...LandmarkName) ([]Point, error) {
	if len(s) == 0 {
		return nil, &ViewError{View: view, Err: ErrLandmarksMissing}
	}
	pts := make([]Point, 0, len(names))
	for _, name := range names {
		p, ok := s[name]
		if !ok {
			return nil, &ViewError{View: view, Err: ErrLandmarksMissing, Detail: string(name)}
		}
		pts = append(pts, p)
	}
	return pts, nil
}

// Rounded returns a copy with every distance rounded to three decimals.
func (m Metrics) Rounded() Metrics {
	return Metrics{
		Back: BackMetrics{ShoulderDiff: round3(m.Back.ShoulderDiff), HipDiff: round3(m.Back.HipDiff)},
		Side: SideMetrics{ForwardHead: round3(m.Side.ForwardHead), TrunkLean: round3(m.Side.TrunkLean)},
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
