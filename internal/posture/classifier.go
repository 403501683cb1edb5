package posture

// Bounds are the ascending cut points for one distance. A distance strictly
// below Low is low risk, strictly below Mid is medium, anything else is high.
type Bounds struct {
	Low float64 `json:"low" yaml:"low"`
	Mid float64 `json:"mid" yaml:"mid"`
}

// Thresholds configures the classifier for both viewing planes.
//
// The Notable values gate the narrative explanation independently from the
// level cut points. Zero means "use the Mid bound of that plane".
type Thresholds struct {
	FrontalLow      float64 `mapstructure:"frontal_low" json:"frontal_low" yaml:"frontal_low"`
	FrontalMid      float64 `mapstructure:"frontal_mid" json:"frontal_mid" yaml:"frontal_mid"`
	SagittalLow     float64 `mapstructure:"sagittal_low" json:"sagittal_low" yaml:"sagittal_low"`
	SagittalMid     float64 `mapstructure:"sagittal_mid" json:"sagittal_mid" yaml:"sagittal_mid"`
	FrontalNotable  float64 `mapstructure:"frontal_notable" json:"frontal_notable,omitempty" yaml:"frontal_notable,omitempty"`
	SagittalNotable float64 `mapstructure:"sagittal_notable" json:"sagittal_notable,omitempty" yaml:"sagittal_notable,omitempty"`
}

// DefaultThresholds returns the screening cut points in clinical use.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FrontalLow:  0.03,
		FrontalMid:  0.06,
		SagittalLow: 0.04,
		SagittalMid: 0.07,
	}
}

func (t Thresholds) Frontal() Bounds {
	return Bounds{Low: t.FrontalLow, Mid: t.FrontalMid}
}

func (t Thresholds) Sagittal() Bounds {
	return Bounds{Low: t.SagittalLow, Mid: t.SagittalMid}
}

func (t Thresholds) frontalNotable() float64 {
	if t.FrontalNotable > 0 {
		return t.FrontalNotable
	}
	return t.FrontalMid
}

func (t Thresholds) sagittalNotable() float64 {
	if t.SagittalNotable > 0 {
		return t.SagittalNotable
	}
	return t.SagittalMid
}

// ClassifyView maps two distances of one view to a risk level, each compared
// against its own bounds.
func ClassifyView(a, b float64, boundsA, boundsB Bounds) RiskLevel {
	if a < boundsA.Low && b < boundsB.Low {
		return RiskLow
	}
	if a < boundsA.Mid && b < boundsB.Mid {
		return RiskMedium
	}
	return RiskHigh
}

// Result is the outcome of one screening.
type Result struct {
	FrontalRisk  RiskLevel `json:"frontal_risk" yaml:"frontal_risk"`
	SagittalRisk RiskLevel `json:"sagittal_risk" yaml:"sagittal_risk"`
	OverallRisk  RiskLevel `json:"overall_risk" yaml:"overall_risk"`
	Metrics      Metrics   `json:"metrics" yaml:"metrics"`
	Explanation  []string  `json:"explanation" yaml:"explanation"`
}

// Classifier holds the thresholds used for every evaluation. It has no
// mutable state and is safe for concurrent use.
type Classifier struct {
	thresholds Thresholds
}

func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{thresholds: t}
}

func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

func (c *Classifier) ClassifyBack(m BackMetrics) RiskLevel {
	f := c.thresholds.Frontal()
	return ClassifyView(m.ShoulderDiff, m.HipDiff, f, f)
}

func (c *Classifier) ClassifySide(m SideMetrics) RiskLevel {
	s := c.thresholds.Sagittal()
	return ClassifyView(m.ForwardHead, m.TrunkLean, s, s)
}

// Evaluate classifies both views, combines them and assembles the explanation.
func (c *Classifier) Evaluate(back BackMetrics, side SideMetrics) Result {
	frontal := c.ClassifyBack(back)
	sagittal := c.ClassifySide(side)
	metrics := Metrics{Back: back, Side: side}
	return Result{
		FrontalRisk:  frontal,
		SagittalRisk: sagittal,
		OverallRisk:  Combine(frontal, sagittal),
		Metrics:      metrics.Rounded(),
		Explanation:  Explain(metrics, c.thresholds),
	}
}
