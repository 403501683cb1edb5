package posture

const (
	MsgShoulderAsymmetry = "Shoulder height asymmetry detected (back view)."
	MsgPelvicAsymmetry   = "Pelvic height asymmetry detected (back view)."
	MsgBackClear         = "No significant asymmetry detected in the back view."
	MsgForwardHead       = "Forward head posture detected (side view)."
	MsgTrunkLean         = "Forward or backward trunk lean detected (side view)."
	MsgSideClear         = "No significant posture deviation detected in the side view."

	Disclaimer = "This is a preliminary posture screening, not a medical diagnosis. Consult a specialist for an examination."
)

// ExplainBack lists findings for distances strictly above the notable threshold.
func ExplainBack(m BackMetrics, notable float64) []string {
	var out []string
	if m.ShoulderDiff > notable {
		out = append(out, MsgShoulderAsymmetry)
	}
	if m.HipDiff > notable {
		out = append(out, MsgPelvicAsymmetry)
	}
	if len(out) == 0 {
		out = append(out, MsgBackClear)
	}
	return out
}

func ExplainSide(m SideMetrics, notable float64) []string {
	var out []string
	if m.ForwardHead > notable {
		out = append(out, MsgForwardHead)
	}
	if m.TrunkLean > notable {
		out = append(out, MsgTrunkLean)
	}
	if len(out) == 0 {
		out = append(out, MsgSideClear)
	}
	return out
}

// Explain returns back findings, side findings and the closing disclaimer in that order.
func Explain(m Metrics, t Thresholds) []string {
	out := ExplainBack(m.Back, t.frontalNotable())
	out = append(out, ExplainSide(m.Side, t.sagittalNotable())...)
	return append(out, Disclaimer)
}
