package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// User is a caregiver or clinician account. Anonymous signups get a
// placeholder email.
type User struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email     string    `gorm:"column:email;type:text;not null"`
	Role      string    `gorm:"column:role;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

// TableName overrides the default table name.
func (User) TableName() string {
	return "users"
}

// Screening is one persisted analysis outcome. Rows are append-only.
type Screening struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	UserID       uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index:idx_screenings_user_created"`
	User         *User          `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	CreatedAt    time.Time      `gorm:"column:created_at;not null;index:idx_screenings_user_created"`
	FrontalRisk  string         `gorm:"column:frontal_risk;type:text;not null"`
	SagittalRisk string         `gorm:"column:sagittal_risk;type:text;not null"`
	OverallRisk  string         `gorm:"column:overall_risk;type:text;not null;index"`
	Metrics      datatypes.JSON `gorm:"column:metrics;type:jsonb;not null"`
	Explanation  datatypes.JSON `gorm:"column:explanation;type:jsonb;not null"`
}

// TableName overrides the default table name.
func (Screening) TableName() string {
	return "screenings"
}

// RiskCount is one row of the overall risk distribution.
type RiskCount struct {
	OverallRisk string `gorm:"column:overall_risk"`
	Count       int64  `gorm:"column:count"`
}
