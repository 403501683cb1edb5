package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/posture-check/internal/retry"
)

// ErrNotFound is returned when no row matches the lookup.
var ErrNotFound = errors.New("record not found")

// DefaultListLimit bounds history and panel queries.
const DefaultListLimit = 50

// ScreeningRepository provides persistence APIs for users and screenings.
type ScreeningRepository struct {
	db             *gorm.DB
	logger         *zap.Logger
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewScreeningRepository creates a new repository instance.
func NewScreeningRepository(db *gorm.DB, logger *zap.Logger) *ScreeningRepository {
	return &ScreeningRepository{
		db:             db,
		logger:         logger.Named("screening_repository"),
		retryAttempts:  retry.Default.Attempts,
		initialBackoff: retry.Default.InitialBackoff,
		maxBackoff:     retry.Default.MaxBackoff,
	}
}

// AutoMigrate ensures the schema is available.
func (r *ScreeningRepository) AutoMigrate(ctx context.Context) error {
	return r.executeWithRetry(ctx, "repository.auto_migrate", "", func() error {
		return r.db.WithContext(ctx).AutoMigrate(&User{}, &Screening{})
	})
}

// CreateUser persists a new user row.
func (r *ScreeningRepository) CreateUser(ctx context.Context, user *User) error {
	return r.executeWithRetry(ctx, "repository.create_user", user.ID.String(), func() error {
		return r.db.WithContext(ctx).Create(user).Error
	})
}

// FindUser loads a user by id.
func (r *ScreeningRepository) FindUser(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := r.executeWithRetry(ctx, "repository.find_user", id.String(), func() error {
		return notFound(r.db.WithContext(ctx).First(&user, "id = ?", id).Error)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SaveScreening persists a completed screening.
func (r *ScreeningRepository) SaveScreening(ctx context.Context, s *Screening) error {
	return r.executeWithRetry(ctx, "repository.save_screening", s.ID.String(), func() error {
		return r.db.WithContext(ctx).Omit("User").Create(s).Error
	})
}

// FindScreening retrieves a screening matching the id and owner.
func (r *ScreeningRepository) FindScreening(ctx context.Context, id, userID uuid.UUID) (*Screening, error) {
	var s Screening
	err := r.executeWithRetry(ctx, "repository.find_screening", id.String(), func() error {
		return notFound(r.db.WithContext(ctx).First(&s, "id = ? AND user_id = ?", id, userID).Error)
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByUser returns the user's screenings, newest first.
func (r *ScreeningRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Screening, error) {
	var rows []*Screening
	err := r.executeWithRetry(ctx, "repository.list_by_user", userID.String(), func() error {
		rows = rows[:0]
		return r.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Order("created_at DESC").
			Limit(clampLimit(limit)).
			Find(&rows).Error
	})
	return rows, err
}

// ListRecent returns the latest screenings across all users.
func (r *ScreeningRepository) ListRecent(ctx context.Context, limit int) ([]*Screening, error) {
	var rows []*Screening
	err := r.executeWithRetry(ctx, "repository.list_recent", "", func() error {
		rows = rows[:0]
		return r.db.WithContext(ctx).
			Order("created_at DESC").
			Limit(clampLimit(limit)).
			Find(&rows).Error
	})
	return rows, err
}

// AggregateRisk counts screenings per overall risk level.
func (r *ScreeningRepository) AggregateRisk(ctx context.Context) ([]RiskCount, error) {
	var counts []RiskCount
	err := r.executeWithRetry(ctx, "repository.aggregate_risk", "", func() error {
		counts = counts[:0]
		return r.db.WithContext(ctx).
			Model(&Screening{}).
			Select("overall_risk, COUNT(*) AS count").
			Group("overall_risk").
			Scan(&counts).Error
	})
	return counts, err
}

func (r *ScreeningRepository) executeWithRetry(ctx context.Context, operation, requestID string, fn func() error) error {
	policy := retry.Policy{
		Attempts:       r.retryAttempts,
		InitialBackoff: r.initialBackoff,
		MaxBackoff:     r.maxBackoff,
	}
	return retry.Do(ctx, r.logger, policy, operation, requestID, fn)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > DefaultListLimit {
		return DefaultListLimit
	}
	return limit
}
