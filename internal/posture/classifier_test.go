package posture_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/posture-check/internal/posture"
)

var levels = []posture.RiskLevel{posture.RiskLow, posture.RiskMedium, posture.RiskHigh}

func TestClassifyView_BoundaryIsNotLow(t *testing.T) {
	f := posture.DefaultThresholds().Frontal()

	assert.Equal(t, posture.RiskMedium, posture.ClassifyView(0.03, 0.0, f, f))
	assert.Equal(t, posture.RiskLow, posture.ClassifyView(0.0299, 0.0, f, f))
	assert.Equal(t, posture.RiskHigh, posture.ClassifyView(0.06, 0.0, f, f))
}

func TestClassifyView_HighRegardlessOfSecondMetric(t *testing.T) {
	c := posture.NewClassifier(posture.DefaultThresholds())

	assert.Equal(t, posture.RiskHigh, c.ClassifyBack(posture.BackMetrics{ShoulderDiff: 0.07, HipDiff: 0.01}))
	assert.Equal(t, posture.RiskHigh, c.ClassifyBack(posture.BackMetrics{ShoulderDiff: 0.01, HipDiff: 0.07}))
}

func TestClassifyView_SagittalUsesOwnBounds(t *testing.T) {
	c := posture.NewClassifier(posture.DefaultThresholds())

	// 0.035 is medium on the frontal scale but low on the sagittal one.
	assert.Equal(t, posture.RiskLow, c.ClassifySide(posture.SideMetrics{ForwardHead: 0.035, TrunkLean: 0.01}))
	assert.Equal(t, posture.RiskMedium, c.ClassifySide(posture.SideMetrics{ForwardHead: 0.04, TrunkLean: 0.01}))
	assert.Equal(t, posture.RiskHigh, c.ClassifySide(posture.SideMetrics{ForwardHead: 0.02, TrunkLean: 0.07}))
}

func TestClassifyView_Monotonic(t *testing.T) {
	f := posture.DefaultThresholds().Frontal()
	steps := []float64{0, 0.01, 0.029, 0.03, 0.045, 0.059, 0.06, 0.1, 0.5}

	for _, a := range steps {
		for i := 1; i < len(steps); i++ {
			lo := posture.ClassifyView(a, steps[i-1], f, f)
			hi := posture.ClassifyView(a, steps[i], f, f)
			assert.GreaterOrEqual(t, int(hi), int(lo), "a=%v b: %v -> %v", a, steps[i-1], steps[i])

			lo = posture.ClassifyView(steps[i-1], a, f, f)
			hi = posture.ClassifyView(steps[i], a, f, f)
			assert.GreaterOrEqual(t, int(hi), int(lo), "b=%v a: %v -> %v", a, steps[i-1], steps[i])
		}
	}
}

func TestCombine_SymmetricAndIdempotent(t *testing.T) {
	for _, a := range levels {
		assert.Equal(t, a, posture.Combine(a, a))
		for _, b := range levels {
			assert.Equal(t, posture.Combine(a, b), posture.Combine(b, a))
			got := posture.Combine(a, b)
			assert.True(t, got >= a && got >= b)
		}
	}
}

func TestEvaluate_AllClear(t *testing.T) {
	c := posture.NewClassifier(posture.DefaultThresholds())

	res := c.Evaluate(
		posture.BackMetrics{ShoulderDiff: 0.01, HipDiff: 0.02},
		posture.SideMetrics{ForwardHead: 0.02, TrunkLean: 0.01},
	)

	assert.Equal(t, posture.RiskLow, res.FrontalRisk)
	assert.Equal(t, posture.RiskLow, res.SagittalRisk)
	assert.Equal(t, posture.RiskLow, res.OverallRisk)
	assert.Equal(t, []string{posture.MsgBackClear, posture.MsgSideClear, posture.Disclaimer}, res.Explanation)
}

func TestEvaluate_OverallIsWorstView(t *testing.T) {
	c := posture.NewClassifier(posture.DefaultThresholds())

	res := c.Evaluate(
		posture.BackMetrics{ShoulderDiff: 0.04, HipDiff: 0.01},
		posture.SideMetrics{ForwardHead: 0.08, TrunkLean: 0.01},
	)

	assert.Equal(t, posture.RiskMedium, res.FrontalRisk)
	assert.Equal(t, posture.RiskHigh, res.SagittalRisk)
	assert.Equal(t, posture.RiskHigh, res.OverallRisk)
	assert.Equal(t, []string{posture.MsgBackClear, posture.MsgForwardHead, posture.Disclaimer}, res.Explanation)
}

func TestEvaluate_RoundsReportedMetrics(t *testing.T) {
	c := posture.NewClassifier(posture.DefaultThresholds())

	res := c.Evaluate(
		posture.BackMetrics{ShoulderDiff: 0.029949, HipDiff: 0.0},
		posture.SideMetrics{},
	)

	// classification runs on the raw distance
	assert.Equal(t, posture.RiskLow, res.FrontalRisk)
	assert.Equal(t, 0.03, res.Metrics.Back.ShoulderDiff)
}

func TestExplain_NotableDecoupledFromLevels(t *testing.T) {
	th := posture.DefaultThresholds()
	th.FrontalNotable = 0.04
	m := posture.Metrics{Back: posture.BackMetrics{ShoulderDiff: 0.05}}

	assert.Equal(t, posture.RiskMedium, posture.NewClassifier(th).ClassifyBack(m.Back))
	out := posture.Explain(m, th)
	assert.Equal(t, posture.MsgShoulderAsymmetry, out[0])
	assert.Equal(t, posture.Disclaimer, out[len(out)-1])

	out = posture.Explain(m, posture.DefaultThresholds())
	assert.Equal(t, posture.MsgBackClear, out[0])
}

func TestComputeBackMetrics(t *testing.T) {
	m, err := posture.ComputeBackMetrics(posture.LandmarkSet{
		posture.LeftShoulder:  {X: 0.40, Y: 0.30},
		posture.RightShoulder: {X: 0.60, Y: 0.32},
		posture.LeftHip:       {X: 0.42, Y: 0.55},
		posture.RightHip:      {X: 0.58, Y: 0.54},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.02, m.ShoulderDiff, 1e-9)
	assert.InDelta(t, 0.01, m.HipDiff, 1e-9)
}

func TestComputeSideMetrics(t *testing.T) {
	m, err := posture.ComputeSideMetrics(posture.LandmarkSet{
		posture.Nose:          {X: 0.55, Y: 0.10},
		posture.RightShoulder: {X: 0.50, Y: 0.30},
		posture.RightAnkle:    {X: 0.48, Y: 0.95},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.05, m.ForwardHead, 1e-9)
	assert.InDelta(t, 0.02, m.TrunkLean, 1e-9)
}

func TestComputeMetrics_NoDetectionIsDistinctFromZero(t *testing.T) {
	_, err := posture.ComputeBackMetrics(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, posture.ErrLandmarksMissing))

	var viewErr *posture.ViewError
	require.ErrorAs(t, err, &viewErr)
	assert.Equal(t, posture.ViewBack, viewErr.View)

	zero := posture.Point{}
	m, err := posture.ComputeBackMetrics(posture.LandmarkSet{
		posture.LeftShoulder: zero, posture.RightShoulder: zero,
		posture.LeftHip: zero, posture.RightHip: zero,
	})
	require.NoError(t, err)
	assert.Equal(t, posture.BackMetrics{}, m)
}

func TestComputeSideMetrics_MissingLandmark(t *testing.T) {
	_, err := posture.ComputeSideMetrics(posture.LandmarkSet{posture.Nose: {X: 0.5}})
	assert.ErrorIs(t, err, posture.ErrLandmarksMissing)
	assert.Contains(t, err.Error(), "right_shoulder")
}

func TestRiskLevel_TextRoundTrip(t *testing.T) {
	raw, err := json.Marshal(map[string]posture.RiskLevel{"overall_risk": posture.RiskMedium})
	require.NoError(t, err)
	assert.JSONEq(t, `{"overall_risk":"medium"}`, string(raw))

	for _, l := range levels {
		parsed, err := posture.ParseRiskLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, parsed)
	}
	_, err = posture.ParseRiskLevel("severe")
	assert.Error(t, err)
}
