package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/posture-check/internal/logging"
	"github.com/example/posture-check/internal/pose"
	"github.com/example/posture-check/internal/posture"
	"github.com/example/posture-check/internal/repository"
	"github.com/example/posture-check/internal/retry"
	"github.com/example/posture-check/internal/telemetry"
)

// ErrScreeningNotFound is returned when a screening does not exist for the caller.
var ErrScreeningNotFound = errors.New("screening not found")

// ScreeningRepository defines the persistence operations needed by the use case.
type ScreeningRepository interface {
	FindUser(ctx context.Context, id uuid.UUID) (*repository.User, error)
	SaveScreening(ctx context.Context, s *repository.Screening) error
	FindScreening(ctx context.Context, id, userID uuid.UUID) (*repository.Screening, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*repository.Screening, error)
	ListRecent(ctx context.Context, limit int) ([]*repository.Screening, error)
	AggregateRisk(ctx context.Context) ([]repository.RiskCount, error)
}

// Screening is a completed analysis together with its identity.
type Screening struct {
	ID        uuid.UUID `json:"screening_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	posture.Result
}

// ScreeningUseCase encapsulates business logic for the screening flow.
type ScreeningUseCase struct {
	repo       ScreeningRepository
	cache      Cache
	extractor  pose.Extractor
	classifier *posture.Classifier
	metrics    *telemetry.Metrics
	logger     *zap.Logger
	cacheTTL   time.Duration
	retry      retry.Policy
	now        func() time.Time
}

// NewScreeningUseCase constructs a new use case instance.
func NewScreeningUseCase(
	repo ScreeningRepository,
	cache Cache,
	extractor pose.Extractor,
	classifier *posture.Classifier,
	metrics *telemetry.Metrics,
	logger *zap.Logger,
) *ScreeningUseCase {
	return &ScreeningUseCase{
		repo:       repo,
		cache:      cache,
		extractor:  extractor,
		classifier: classifier,
		metrics:    metrics,
		logger:     logger.Named("screening_usecase"),
		cacheTTL:   5 * time.Minute,
		retry:      retry.Default,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithCacheTTL overrides how long results stay in the cache.
func (uc *ScreeningUseCase) WithCacheTTL(ttl time.Duration) *ScreeningUseCase {
	if ttl > 0 {
		uc.cacheTTL = ttl
	}
	return uc
}

// ParseUserID validates a user reference.
func ParseUserID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %q", posture.ErrInvalidUserReference, raw)
	}
	return id, nil
}

// Analyze runs the full screening pipeline over a back and a side photo and
// persists the outcome. Nothing is written unless both views are classified.
func (uc *ScreeningUseCase) Analyze(ctx context.Context, userID string, backPhoto, sidePhoto []byte) (*Screening, error) {
	screeningID := uuid.New()
	opLogger := logging.WithOperation(uc.logger, "usecase.analyze", screeningID.String())

	uid, err := ParseUserID(userID)
	if err != nil {
		uc.metrics.AnalysisFailed("invalid_user")
		return nil, err
	}
	if _, err := uc.repo.FindUser(ctx, uid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			uc.metrics.AnalysisFailed("invalid_user")
			return nil, fmt.Errorf("%w: unknown user %s", posture.ErrInvalidUserReference, uid)
		}
		return nil, err
	}

	backImg, err := pose.Decode(backPhoto)
	if err != nil {
		uc.metrics.AnalysisFailed("image_decode")
		return nil, &posture.ViewError{View: posture.ViewBack, Err: err}
	}
	sideImg, err := pose.Decode(sidePhoto)
	if err != nil {
		uc.metrics.AnalysisFailed("image_decode")
		return nil, &posture.ViewError{View: posture.ViewSide, Err: err}
	}

	backSet, err := uc.detect(ctx, screeningID, posture.ViewBack, backImg)
	if err != nil {
		return nil, err
	}
	backMetrics, err := posture.ComputeBackMetrics(backSet)
	if err != nil {
		uc.metrics.AnalysisFailed("landmarks_missing")
		opLogger.Info("back view rejected", zap.Error(err))
		return nil, err
	}

	sideSet, err := uc.detect(ctx, screeningID, posture.ViewSide, sideImg)
	if err != nil {
		return nil, err
	}
	sideMetrics, err := posture.ComputeSideMetrics(sideSet)
	if err != nil {
		uc.metrics.AnalysisFailed("landmarks_missing")
		opLogger.Info("side view rejected", zap.Error(err))
		return nil, err
	}

	screening := &Screening{
		ID:        screeningID,
		UserID:    uid,
		CreatedAt: uc.now(),
		Result:    uc.classifier.Evaluate(backMetrics, sideMetrics),
	}

	row, err := toRow(screening)
	if err != nil {
		return nil, logging.NewOperationError("usecase.encode_screening", screeningID.String(), err)
	}
	if err := uc.repo.SaveScreening(ctx, row); err != nil {
		uc.metrics.AnalysisFailed("persistence")
		wrapped := logging.NewOperationError("usecase.save_screening", screeningID.String(), err)
		opLogger.Error("failed to persist screening", zap.Error(wrapped))
		return nil, wrapped
	}

	uc.cacheScreening(ctx, screening)
	uc.metrics.ScreeningCompleted(screening.OverallRisk.String())
	opLogger.Info("screening completed",
		zap.String("user_id", uid.String()),
		zap.Stringer("frontal_risk", screening.FrontalRisk),
		zap.Stringer("sagittal_risk", screening.SagittalRisk),
		zap.Stringer("overall_risk", screening.OverallRisk),
	)
	return screening, nil
}

func (uc *ScreeningUseCase) detect(ctx context.Context, screeningID uuid.UUID, view posture.View, img pose.Image) (posture.LandmarkSet, error) {
	started := time.Now()
	det, err := uc.extractor.Detect(ctx, img)
	uc.metrics.ObserveExtraction(string(view), time.Since(started))
	if err != nil {
		uc.metrics.AnalysisFailed("extractor")
		wrapped := logging.NewOperationError("usecase.detect_"+string(view), screeningID.String(), err)
		uc.logger.Error("landmark extraction failed", zap.Error(wrapped))
		return nil, wrapped
	}
	if !det.Found {
		return nil, nil
	}
	return det.Landmarks, nil
}

// GetScreening retrieves a cached screening or loads it from persistence.
func (uc *ScreeningUseCase) GetScreening(ctx context.Context, userID, screeningID string) (*Screening, error) {
	uid, err := ParseUserID(userID)
	if err != nil {
		return nil, err
	}
	sid, err := uuid.Parse(screeningID)
	if err != nil {
		return nil, ErrScreeningNotFound
	}

	opLogger := logging.WithOperation(uc.logger, "usecase.get_screening", sid.String())
	var (
		cached string
		hit    bool
	)
	err = retry.Do(ctx, uc.logger, uc.retry, "cache.get.screening", sid.String(), func() error {
		value, err := uc.cache.Get(ctx, screeningCacheKey(sid.String()))
		if IsMiss(err) {
			return nil
		}
		if err != nil {
			return err
		}
		cached, hit = value, true
		return nil
	})
	if err != nil {
		opLogger.Warn("failed to read cache", zap.Error(err))
	} else if hit {
		var s Screening
		if err := json.Unmarshal([]byte(cached), &s); err != nil {
			opLogger.Warn("failed to decode cached screening", zap.Error(err))
		} else if s.UserID == uid {
			return &s, nil
		}
	}

	row, err := uc.repo.FindScreening(ctx, sid, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScreeningNotFound
		}
		return nil, err
	}
	return fromRow(row)
}

// History returns the user's screenings, newest first.
func (uc *ScreeningUseCase) History(ctx context.Context, userID string, limit int) ([]*Screening, error) {
	uid, err := ParseUserID(userID)
	if err != nil {
		return nil, err
	}
	rows, err := uc.repo.ListByUser(ctx, uid, limit)
	if err != nil {
		return nil, err
	}
	return fromRows(rows)
}

// ListRecent returns the latest screenings of every user for the clinician panel.
func (uc *ScreeningUseCase) ListRecent(ctx context.Context, limit int) ([]*Screening, error) {
	rows, err := uc.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return fromRows(rows)
}

func (uc *ScreeningUseCase) cacheScreening(ctx context.Context, s *Screening) {
	serialized, err := json.Marshal(s)
	if err != nil {
		uc.logger.Warn("failed to serialize screening", zap.Error(err))
		return
	}
	err = retry.Do(ctx, uc.logger, uc.retry, "cache.set.screening", s.ID.String(), func() error {
		return uc.cache.Set(ctx, screeningCacheKey(s.ID.String()), string(serialized), uc.cacheTTL)
	})
	if err != nil {
		// The row is committed; readers fall back to the database.
		uc.logger.Warn("failed to cache screening", zap.Error(err))
	}
}
