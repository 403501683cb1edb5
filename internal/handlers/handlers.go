package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/example/posture-check/internal/auth"
	"github.com/example/posture-check/internal/posture"
	"github.com/example/posture-check/internal/usecase"
)

// MaxUploadSize is the default per-photo upload limit.
const MaxUploadSize = 10 << 20

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// ScreeningService is the screening behavior the HTTP layer depends on.
type ScreeningService interface {
	Analyze(ctx context.Context, userID string, backPhoto, sidePhoto []byte) (*usecase.Screening, error)
	GetScreening(ctx context.Context, userID, screeningID string) (*usecase.Screening, error)
	History(ctx context.Context, userID string, limit int) ([]*usecase.Screening, error)
	ListRecent(ctx context.Context, limit int) ([]*usecase.Screening, error)
	RiskSummary(ctx context.Context) (*usecase.RiskSummary, error)
}

// AccountService registers anonymous users.
type AccountService interface {
	RegisterAnonymous(ctx context.Context, role, email string) (*usecase.Account, error)
}

// Options tunes the HTTP surface.
type Options struct {
	// MaxUploadBytes limits each photo. Zero means MaxUploadSize.
	MaxUploadBytes int64
	// Metrics, when set, is served on /metrics.
	Metrics http.Handler
}

type signupRequest struct {
	Role  string `form:"role" json:"role" binding:"omitempty,oneof=parent doctor"`
	Email string `form:"email" json:"email" binding:"omitempty,email"`
}

type listQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}

type historyItem struct {
	ScreeningID  uuid.UUID         `json:"screening_id"`
	Date         time.Time         `json:"date"`
	OverallRisk  posture.RiskLevel `json:"overall_risk"`
	FrontalRisk  posture.RiskLevel `json:"frontal_risk"`
	SagittalRisk posture.RiskLevel `json:"sagittal_risk"`
}

type panelItem struct {
	historyItem
	UserID uuid.UUID `json:"user_id"`
}

func toHistoryItem(s *usecase.Screening) historyItem {
	return historyItem{
		ScreeningID:  s.ID,
		Date:         s.CreatedAt,
		OverallRisk:  s.OverallRisk,
		FrontalRisk:  s.FrontalRisk,
		SagittalRisk: s.SagittalRisk,
	}
}

// RegisterRoutes wires the HTTP handlers to the Gin router.
func RegisterRoutes(router *gin.Engine, screenings ScreeningService, accounts AccountService, authMiddleware gin.HandlerFunc, opts Options) {
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = MaxUploadSize
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	router.POST("/auth/anonymous", func(c *gin.Context) {
		var req signupRequest
		if err := c.ShouldBind(&req); err != nil {
			badRequestWithValidation(c, err)
			return
		}

		account, err := accounts.RegisterAnonymous(c.Request.Context(), req.Role, req.Email)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id": account.UserID,
			"role":    account.Role,
			"token":   account.Token,
		})
	})

	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/analyze", func(c *gin.Context) {
		userID, ok := auth.GetUserID(c.Request.Context())
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "unauthenticated")
			return
		}

		// Two photos plus multipart framing.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*maxUpload+1<<20)

		back, status, err := readPhoto(c, "back_photo", maxUpload)
		if err != nil {
			abortWithError(c, status, err.Error())
			return
		}
		side, status, err := readPhoto(c, "side_photo", maxUpload)
		if err != nil {
			abortWithError(c, status, err.Error())
			return
		}

		screening, err := screenings.Analyze(c.Request.Context(), userID, back, side)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, screening)
	})

	protected.GET("/screenings/:id", func(c *gin.Context) {
		userID, ok := auth.GetUserID(c.Request.Context())
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "unauthenticated")
			return
		}

		screening, err := screenings.GetScreening(c.Request.Context(), userID, c.Param("id"))
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, screening)
	})

	protected.GET("/history/:user_id", func(c *gin.Context) {
		target, err := usecase.ParseUserID(c.Param("user_id"))
		if err != nil {
			respondWithError(c, err)
			return
		}
		subject, _ := auth.GetUserID(c.Request.Context())
		if subject != target.String() && auth.GetRole(c.Request.Context()) != auth.RoleDoctor {
			abortWithError(c, http.StatusForbidden, "history belongs to another user")
			return
		}

		var q listQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			badRequestWithValidation(c, err)
			return
		}

		list, err := screenings.History(c.Request.Context(), target.String(), q.Limit)
		if err != nil {
			respondWithError(c, err)
			return
		}
		items := make([]historyItem, 0, len(list))
		for _, s := range list {
			items = append(items, toHistoryItem(s))
		}
		c.JSON(http.StatusOK, items)
	})

	doctor := protected.Group("/doctor")
	doctor.Use(auth.RequireRole(auth.RoleDoctor))

	doctor.GET("/screenings", func(c *gin.Context) {
		var q listQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			badRequestWithValidation(c, err)
			return
		}

		list, err := screenings.ListRecent(c.Request.Context(), q.Limit)
		if err != nil {
			respondWithError(c, err)
			return
		}
		items := make([]panelItem, 0, len(list))
		for _, s := range list {
			items = append(items, panelItem{historyItem: toHistoryItem(s), UserID: s.UserID})
		}
		c.JSON(http.StatusOK, items)
	})

	doctor.GET("/summary", func(c *gin.Context) {
		summary, err := screenings.RiskSummary(c.Request.Context())
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	})
}

func readPhoto(c *gin.Context, field string, maxBytes int64) ([]byte, int, error) {
	file, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("%s file is required", field)
	}
	if file.Size > maxBytes {
		return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("%s exceeds %d bytes", field, maxBytes)
	}

	contentType := strings.ToLower(strings.TrimSpace(file.Header.Get("Content-Type")))
	if !allowedContentTypes[contentType] {
		return nil, http.StatusUnsupportedMediaType, fmt.Errorf("%s must be a JPEG or PNG image", field)
	}

	src, err := file.Open()
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("unable to open %s", field)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to read %s", field)
	}
	return data, 0, nil
}
