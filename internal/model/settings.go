package model

import (
	"time"

	"github.com/google/uuid"
)

// SettingsDocID is the fixed primary key of the single company settings row.
const SettingsDocID = "singleton"

// CompanySettings is the issuer profile printed on invoices and used as the
// email sender identity. Stored as a single row.
type CompanySettings struct {
	ID          string     `gorm:"type:varchar(20);primaryKey" json:"-"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	LogoURL     string     `gorm:"type:varchar(512)" json:"logo_url,omitempty"`
	Address     string     `gorm:"type:text" json:"address,omitempty"`
	Phone       string     `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Email       string     `gorm:"type:varchar(255)" json:"email,omitempty"`
	Website     string     `gorm:"type:varchar(255)" json:"website,omitempty"`
	BankDetails string     `gorm:"type:text" json:"bank_details,omitempty"`
	FooterNote  string     `gorm:"type:text" json:"footer_note,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
	UpdatedBy   *uuid.UUID `gorm:"type:uuid" json:"updated_by,omitempty"`
}
