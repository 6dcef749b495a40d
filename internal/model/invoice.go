package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice status enum constants
const (
	StatusDraft     = "draft"
	StatusSent      = "sent"
	StatusPartial   = "partial"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

// DiscountType enum constants
const (
	DiscountAmount  = "amount"
	DiscountPercent = "percent"
)

// PaymentMethod enum constants
const (
	MethodBankTransfer = "bank_transfer"
	MethodCash         = "cash"
	MethodCard         = "card"
	MethodCheque       = "cheque"
	MethodOther        = "other"
)

// StockUpdateStatus enum constants — per-item outcome of the post-payment
// shop stock reconciliation
const (
	StockUpdated           = "updated"
	StockOutOfStock        = "out_of_stock"
	StockInsufficientStock = "insufficient_stock"
	StockNotTracked        = "not_tracked"
	StockFailed            = "failed"
)

// Invoice is the aggregate root: line items and payment records are owned
// child rows, monetary aggregates are derived by the calculator and never
// written directly by handlers.
type Invoice struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceNumber  string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_number_owner" json:"invoice_number"`
	CreatedBy      uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_invoice_number_owner" json:"created_by"`
	CustomerName   string          `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail  string          `gorm:"type:varchar(255);not null" json:"customer_email"`
	Currency       string          `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	Items          []InvoiceItem   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"subtotal"`
	Discount       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"discount"` // raw input magnitude
	DiscountType   string          `gorm:"type:varchar(10);not null;default:'amount'" json:"discount_type"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"discount_amount"` // resolved, 0 <= x <= subtotal
	TaxRate        decimal.Decimal `gorm:"type:decimal(7,2);not null;default:0" json:"tax_rate"`
	Tax            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"tax"`
	Total          decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total"`
	Status         string          `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	Payments       []PaymentRecord `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"payments"`
	InvoiceDate    time.Time       `gorm:"not null" json:"invoice_date"`
	DueDate        *time.Time      `json:"due_date"`
	Terms          string          `gorm:"type:text" json:"terms"`
	Memo           string          `gorm:"type:text" json:"memo"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// InvoiceItem is one purchased line. ProductID references the external shop
// catalog; empty means a non-catalog line that reconciliation skips.
// Area-priced goods carry dimensional attributes; when Area is set the line
// total is price*area and quantity defaults to 1.
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Position    int             `gorm:"type:int;not null;default:0" json:"position"`
	ProductID   string          `gorm:"type:varchar(64)" json:"product_id,omitempty"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"price"`
	Total       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total"`
	SizeLabel   string          `gorm:"type:varchar(100)" json:"size_label,omitempty"`
	Length      *float64        `gorm:"type:decimal(12,2)" json:"length,omitempty"`
	Width       *float64        `gorm:"type:decimal(12,2)" json:"width,omitempty"`
	Area        *float64        `gorm:"type:decimal(12,2)" json:"area,omitempty"`
	Origin      string          `gorm:"type:varchar(100)" json:"origin,omitempty"`

	// Post-payment reconciliation annotation, empty until the invoice is paid
	StockUpdateStatus string `gorm:"type:varchar(20)" json:"stock_update_status,omitempty"`
	StockUpdateNote   string `gorm:"type:varchar(100)" json:"stock_update_note,omitempty"`
}

// PaymentRecord is one payment toward an invoice. Records are append-only:
// nothing in the codebase updates or deletes them once written.
type PaymentRecord struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Method     string          `gorm:"type:varchar(20);not null;default:'other'" json:"method"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Reference  string          `gorm:"type:varchar(255)" json:"reference,omitempty"`
	Notes      string          `gorm:"type:text" json:"notes,omitempty"`
	PaidAt     time.Time       `gorm:"not null" json:"paid_at"`
	RecordedBy uuid.UUID       `gorm:"type:uuid;not null" json:"recorded_by"`
	CreatedAt  time.Time       `json:"created_at"`
}
