package models

import "time"

type ImportJob struct {
	ID                   string `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	SourceKey            string `gorm:"type:text;not null"`
	Status               string `gorm:"type:text;not null"`
	TotalRows            int64  `gorm:"not null;default:0"`
	ProcessedRows        int64  `gorm:"not null;default:0"`
	ValidEmails          int64  `gorm:"not null;default:0"`
	InvalidEmails        int64  `gorm:"not null;default:0"`
	DuplicateInFile      int64  `gorm:"not null;default:0"`
	AlreadyExistsInDB    int64  `gorm:"column:already_exists_in_db;not null;default:0"`
	TotalEmailsExtracted int64  `gorm:"not null;default:0"`
	CreatedInvites       int64  `gorm:"not null;default:0"`
	FailedCreates        int64  `gorm:"not null;default:0"`
	ProcessedEmails      int64  `gorm:"not null;default:0"`
	CompletedAt          *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (ImportJob) TableName() string {
	return "import_jobs"
}

type ImportJobItem struct {
	ID                 int64   `gorm:"primaryKey"`
	JobID              string  `gorm:"type:uuid;not null;index:idx_import_job_items_job_status,priority:1"`
	RowNumber          int     `gorm:"not null"`
	EmailRaw           string  `gorm:"type:text;not null;default:''"`
	EmailNormalized    string  `gorm:"type:text;not null;default:''"`
	InstitutionNameRaw string  `gorm:"type:text;not null;default:''"`
	InstitutionID      *string `gorm:"type:uuid"`
	Status             string  `gorm:"type:text;not null;index:idx_import_job_items_job_status,priority:2"`
	Reason             string  `gorm:"type:text;not null;default:''"`
	InviteID           *string `gorm:"type:uuid"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (ImportJobItem) TableName() string {
	return "import_job_items"
}
