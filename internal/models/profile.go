package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is the dietary and health preference record owned by one user
type Profile struct {
	ID           uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID       uuid.UUID        `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	Name         string           `gorm:"size:255" json:"name"`
	Age          *int             `json:"age,omitempty"`
	Height       string           `gorm:"size:50" json:"height"`
	Weight       string           `gorm:"size:50" json:"weight"`
	HealthGoals  string           `gorm:"type:text" json:"health_goals"`
	Preferences  JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"preferences"`
	Allergies    JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"allergies"`
	Deficiencies JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"deficiencies"`
	CuisineType  string           `gorm:"size:50" json:"cuisine_type"`
	SkillLevel   string           `gorm:"size:20" json:"skill_level"`
	AvatarKey    string           `gorm:"size:255" json:"-"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
