package models

import "time"

type Institution struct {
	ID                 string `gorm:"type:uuid;primaryKey"`
	LegalName          string `gorm:"type:text;not null"`
	TradingName        string `gorm:"type:text;not null"`
	RegistrationNumber string `gorm:"type:text;not null;uniqueIndex"`
	CreatedAt          time.Time
}

func (Institution) TableName() string {
	return "institutions"
}

type Invitation struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	Email         string    `gorm:"size:320;not null;uniqueIndex"`
	InstitutionID string    `gorm:"type:uuid;not null;index"`
	Role          string    `gorm:"type:text;not null"`
	Token         string    `gorm:"type:text;not null;uniqueIndex"`
	Status        string    `gorm:"type:text;not null"`
	ExpiresAt     time.Time `gorm:"not null"`
	CreatedAt     time.Time
}

func (Invitation) TableName() string {
	return "invitations"
}
