package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	PendingSaleStatusPending = "pending"
	PendingSaleStatusSynced  = "synced"
	PendingSaleStatusFailed  = "failed"
)

// PendingSale is a durably queued sale awaiting backend acknowledgement.
// Rows leave the table only after the backend confirms persistence.
type PendingSale struct {
	LocalID        uuid.UUID       `gorm:"column:local_id;type:text;primaryKey" json:"local_id"`
	IdempotencyKey uuid.UUID       `gorm:"column:idempotency_key;type:text;not null;uniqueIndex:ux_pending_sales_idempotency_key" json:"idempotency_key"`
	Payload        json.RawMessage `gorm:"column:payload;not null" json:"payload"`
	Status         string          `gorm:"column:status;not null;default:'pending'" json:"status"`
	QueuedAt       time.Time       `gorm:"column:queued_at;autoCreateTime" json:"queued_at"`
	AttemptCount   int             `gorm:"column:attempt_count;not null;default:0" json:"attempt_count"`
	LastError      *string         `gorm:"column:last_error" json:"last_error,omitempty"`
}

func (PendingSale) TableName() string { return "pending_sales" }
