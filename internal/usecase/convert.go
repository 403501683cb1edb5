package usecase

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/example/posture-check/internal/posture"
	"github.com/example/posture-check/internal/repository"
)

func toRow(s *Screening) (*repository.Screening, error) {
	metrics, err := json.Marshal(s.Metrics)
	if err != nil {
		return nil, err
	}
	explanation, err := json.Marshal(s.Explanation)
	if err != nil {
		return nil, err
	}
	return &repository.Screening{
		ID:           s.ID,
		UserID:       s.UserID,
		CreatedAt:    s.CreatedAt,
		FrontalRisk:  s.FrontalRisk.String(),
		SagittalRisk: s.SagittalRisk.String(),
		OverallRisk:  s.OverallRisk.String(),
		Metrics:      datatypes.JSON(metrics),
		Explanation:  datatypes.JSON(explanation),
	}, nil
}

func fromRow(row *repository.Screening) (*Screening, error) {
	s := &Screening{ID: row.ID, UserID: row.UserID, CreatedAt: row.CreatedAt}

	var err error
	if s.FrontalRisk, err = posture.ParseRiskLevel(row.FrontalRisk); err != nil {
		return nil, fmt.Errorf("screening %s: frontal_risk: %w", row.ID, err)
	}
	if s.SagittalRisk, err = posture.ParseRiskLevel(row.SagittalRisk); err != nil {
		return nil, fmt.Errorf("screening %s: sagittal_risk: %w", row.ID, err)
	}
	if s.OverallRisk, err = posture.ParseRiskLevel(row.OverallRisk); err != nil {
		return nil, fmt.Errorf("screening %s: overall_risk: %w", row.ID, err)
	}
	if len(row.Metrics) > 0 {
		if err := json.Unmarshal(row.Metrics, &s.Metrics); err != nil {
			return nil, fmt.Errorf("screening %s: metrics: %w", row.ID, err)
		}
	}
	if len(row.Explanation) > 0 {
		if err := json.Unmarshal(row.Explanation, &s.Explanation); err != nil {
			return nil, fmt.Errorf("screening %s: explanation: %w", row.ID, err)
		}
	}
	return s, nil
}

func fromRows(rows []*repository.Screening) ([]*Screening, error) {
	out := make([]*Screening, 0, len(rows))
	for _, row := range rows {
		s, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
