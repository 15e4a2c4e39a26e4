package models

import (
	"time"

	"gorm.io/gorm"

	"guildpass/internal/shared/constants"
)

// PlatformSubscriptionModel represents the database persistence model for
// pending platform subscriptions.
type PlatformSubscriptionModel struct {
	ID             uint   `gorm:"primarykey"`
	SID            string `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: pps_xxx"`
	CustomerEmail  string `gorm:"not null;size:255;index:idx_platform_email"`
	SubscriptionID string `gorm:"not null;size:100"`
	PlanID         string `gorm:"not null;size:100"`
	Status         string `gorm:"not null;size:20"`
	ExpiresAt      time.Time
	CouponCode     string `gorm:"uniqueIndex;not null;size:14"`
	Redeemed       bool   `gorm:"not null;default:false"`
	Version        int    `gorm:"not null;default:1"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the table name for GORM
func (PlatformSubscriptionModel) TableName() string {
	return constants.TablePlatformSubscriptions
}

// BeforeCreate hook for GORM
func (m *PlatformSubscriptionModel) BeforeCreate(tx *gorm.DB) error {
	if m.Version == 0 {
		m.Version = 1
	}
	return nil
}
