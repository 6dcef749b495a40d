package model

import (
	"time"

	"github.com/google/uuid"
)

// Operation action constants
const (
	ActionInvoiceCreate   = "invoice:create"
	ActionInvoiceUpdate   = "invoice:update"
	ActionInvoiceDelete   = "invoice:delete"
	ActionPaymentRecorded = "invoice:payment-recorded"
	ActionStatusChange    = "invoice:status-change"
	ActionEmailSent       = "invoice:email-sent"
	ActionUserCreate      = "user:create"
	ActionAuthLogin       = "auth:login"
	ActionAuthLogout      = "auth:logout"
	ActionSettingsUpdate  = "settings:update"
)

// Operation entity type constants
const (
	EntityInvoice  = "invoice"
	EntityUser     = "user"
	EntityPayment  = "payment"
	EntitySettings = "settings"
	EntitySystem   = "system"
)

// OperationLog tracks who did what to which entity. Writes are best-effort:
// a failed log entry never fails the operation it describes.
type OperationLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityType string     `gorm:"type:varchar(20);not null" json:"entity_type"`
	EntityID   string     `gorm:"type:varchar(64);index" json:"entity_id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Metadata   string     `gorm:"type:jsonb" json:"metadata"` // serialized JSON payload
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
