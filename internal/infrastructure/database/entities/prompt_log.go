package entities

import (
	"time"

	"gorm.io/datatypes"
)

// TableName specifies the table name for PromptLog.
func (PromptLog) TableName() string {
	return "reportes_promptlog"
}

// PromptLog archives one interpreted prompt for review and retraining.
type PromptLog struct {
	ID              uint    `gorm:"primaryKey"`
	PublicID        string  `gorm:"size:64;uniqueIndex;not null"`
	UserID          *string `gorm:"size:64;index"`
	PromptText      string  `gorm:"type:text;not null"`
	PredictedIntent *string `gorm:"size:50;index"`
	Confidence      *float64
	ResolvedIntent  string         `gorm:"size:50;index;not null"`
	SpecJSON        datatypes.JSON `gorm:"column:spec_json;type:jsonb"`
	HumanLabel      *string        `gorm:"size:50"`
	CreatedAt       time.Time      `gorm:"index"`
}
