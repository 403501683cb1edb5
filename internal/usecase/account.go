package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/posture-check/internal/auth"
	"github.com/example/posture-check/internal/logging"
	"github.com/example/posture-check/internal/repository"
)

// UserRepository defines the user persistence needed for signup.
type UserRepository interface {
	CreateUser(ctx context.Context, user *repository.User) error
}

// TokenSettings configures the bearer tokens handed out at signup.
type TokenSettings struct {
	Secret   string
	Audience string
	TTL      time.Duration
}

// Account is a freshly registered user and its bearer token.
type Account struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountUseCase handles anonymous signup.
type AccountUseCase struct {
	repo   UserRepository
	tokens TokenSettings
	logger *zap.Logger
}

func NewAccountUseCase(repo UserRepository, tokens TokenSettings, logger *zap.Logger) *AccountUseCase {
	return &AccountUseCase{repo: repo, tokens: tokens, logger: logger.Named("account_usecase")}
}

// RegisterAnonymous creates a user with the given role. An empty email is
// replaced by a placeholder derived from the generated id.
func (uc *AccountUseCase) RegisterAnonymous(ctx context.Context, role, email string) (*Account, error) {
	if role == "" {
		role = auth.RoleParent
	}
	id := uuid.New()
	if email == "" {
		email = fmt.Sprintf("anonymous-%s@posture.local", id.String()[:8])
	}

	user := &repository.User{
		ID:        id,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.repo.CreateUser(ctx, user); err != nil {
		wrapped := logging.NewOperationError("usecase.register_anonymous", id.String(), err)
		uc.logger.Error("failed to create user", zap.Error(wrapped))
		return nil, wrapped
	}

	token, err := auth.IssueToken(uc.tokens.Secret, uc.tokens.Audience, id.String(), role, uc.tokens.TTL)
	if err != nil {
		return nil, logging.NewOperationError("usecase.issue_token", id.String(), err)
	}

	uc.logger.Info("anonymous user registered", zap.String("user_id", id.String()), zap.String("role", role))
	return &Account{
		UserID:    id,
		Email:     email,
		Role:      role,
		Token:     token,
		CreatedAt: user.CreatedAt,
	}, nil
}
