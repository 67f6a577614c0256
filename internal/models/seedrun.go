package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SeedRunStatus represents the final status of a reconciliation run
type SeedRunStatus string

const (
	SeedRunStatusCompleted SeedRunStatus = "COMPLETED"
	SeedRunStatusPartial   SeedRunStatus = "PARTIAL"
	SeedRunStatusAborted   SeedRunStatus = "ABORTED"
	SeedRunStatusCancelled SeedRunStatus = "CANCELLED"
)

// SeedRun is the persisted audit record of one reconciliation job run.
// Errors holds the per-item failure list as JSONB so a failed subset can be
// identified and re-run without trawling logs.
type SeedRun struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	JobName    string         `json:"jobName" gorm:"type:varchar(100);not null;index"`
	Mode       *string        `json:"mode,omitempty" gorm:"type:varchar(50)"`
	Status     SeedRunStatus  `json:"status" gorm:"type:varchar(20);not null"`
	Succeeded  int            `json:"succeeded" gorm:"not null;default:0"`
	Failed     int            `json:"failed" gorm:"not null;default:0"`
	Created    int            `json:"created" gorm:"not null;default:0"`
	Updated    int            `json:"updated" gorm:"not null;default:0"`
	Skipped    int            `json:"skipped" gorm:"not null;default:0"`
	Errors     datatypes.JSON `json:"errors,omitempty" gorm:"type:jsonb"`
	StartedAt  time.Time      `json:"startedAt" gorm:"not null"`
	FinishedAt time.Time      `json:"finishedAt" gorm:"not null"`
}

// TableName returns the table name for the SeedRun model
func (SeedRun) TableName() string {
	return "seed_runs"
}
