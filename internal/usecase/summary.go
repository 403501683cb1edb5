package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/posture-check/internal/posture"
)

// RiskSummary represents the overall risk distribution across all screenings.
type RiskSummary struct {
	TotalScreenings int64   `json:"total_screenings"`
	Low             int64   `json:"low"`
	Medium          int64   `json:"medium"`
	High            int64   `json:"high"`
	HighRate        float64 `json:"high_rate"`
}

// RiskSummary aggregates screening outcomes from persisted rows.
func (uc *ScreeningUseCase) RiskSummary(ctx context.Context) (*RiskSummary, error) {
	counts, err := uc.repo.AggregateRisk(ctx)
	if err != nil {
		return nil, err
	}

	summary := &RiskSummary{}
	for _, c := range counts {
		level, err := posture.ParseRiskLevel(c.OverallRisk)
		if err != nil {
			uc.logger.Warn("skipping unknown risk level in aggregate", zap.String("overall_risk", c.OverallRisk))
			continue
		}
		switch level {
		case posture.RiskLow:
			summary.Low += c.Count
		case posture.RiskMedium:
			summary.Medium += c.Count
		case posture.RiskHigh:
			summary.High += c.Count
		}
		summary.TotalScreenings += c.Count
	}

	if summary.TotalScreenings > 0 {
		summary.HighRate = float64(summary.High) / float64(summary.TotalScreenings)
	}

	return summary, nil
}
