package repository

import (
	"context"

	"invoicer/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceRepository is the owner-scoped persistence boundary for the
// invoice aggregate. Every read and write filters on created_by; callers
// never see another owner's invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	FindByID(ctx context.Context, id, owner uuid.UUID) (*model.Invoice, error)
	// FindByIDForUpdate locks the invoice row for the duration of the
	// surrounding transaction, serializing concurrent payment appends.
	FindByIDForUpdate(ctx context.Context, id, owner uuid.UUID) (*model.Invoice, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID, owner uuid.UUID, excludeStatus string) ([]model.Invoice, error)
	List(ctx context.Context, owner uuid.UUID, page, limit int) ([]model.Invoice, int64, error)
	ListAll(ctx context.Context, owner uuid.UUID) ([]model.Invoice, error)
	ListNumbers(ctx context.Context, owner uuid.UUID) ([]string, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []model.InvoiceItem) error
	AppendPayment(ctx context.Context, payment *model.PaymentRecord) error
	AnnotateItem(ctx context.Context, itemID uuid.UUID, status, note string) error
	Delete(ctx context.Context, id, owner uuid.UUID) (int64, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func preloadChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at asc, created_at asc") })
}

func (r *invoiceRepository) FindByID(ctx context.Context, id, owner uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := preloadChildren(GetDB(ctx, r.db)).
		First(&invoice, "id = ? AND created_by = ?", id, owner).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByIDForUpdate(ctx context.Context, id, owner uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&invoice, "id = ? AND created_by = ?", id, owner).Error
	if err != nil {
		return nil, err
	}
	// Children load outside the locked query; the row lock still guards
	// the payments total because appends require the same lock first.
	err = preloadChildren(GetDB(ctx, r.db).Session(&gorm.Session{})).
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID, owner uuid.UUID, excludeStatus string) ([]model.Invoice, error) {
	var invoices []model.Invoice
	query := preloadChildren(GetDB(ctx, r.db)).
		Where("id IN ? AND created_by = ?", ids, owner)
	if excludeStatus != "" {
		query = query.Where("status <> ?", excludeStatus)
	}
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *invoiceRepository) List(ctx context.Context, owner uuid.UUID, page, limit int) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Invoice{}).Where("created_by = ?", owner).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := preloadChildren(db).
		Where("created_by = ?", owner).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (r *invoiceRepository) ListAll(ctx context.Context, owner uuid.UUID) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := GetDB(ctx, r.db).
		Where("created_by = ?", owner).
		Order("created_at desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *invoiceRepository) ListNumbers(ctx context.Context, owner uuid.UUID) ([]string, error) {
	var numbers []string
	err := GetDB(ctx, r.db).Model(&model.Invoice{}).
		Where("created_by = ?", owner).
		Pluck("invoice_number", &numbers).Error
	if err != nil {
		return nil, err
	}
	return numbers, nil
}

func (r *invoiceRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return GetDB(ctx, r.db).Model(&model.Invoice{}).Where("id = ?", id).Updates(fields).Error
}

func (r *invoiceRepository) ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []model.InvoiceItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("invoice_id = ?", invoiceID).Delete(&model.InvoiceItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].ID = uuid.Nil
		items[i].InvoiceID = invoiceID
	}
	return db.Create(&items).Error
}

func (r *invoiceRepository) AppendPayment(ctx context.Context, payment *model.PaymentRecord) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *invoiceRepository) AnnotateItem(ctx context.Context, itemID uuid.UUID, status, note string) error {
	return GetDB(ctx, r.db).Model(&model.InvoiceItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"stock_update_status": status,
			"stock_update_note":   note,
		}).Error
}

func (r *invoiceRepository) Delete(ctx context.Context, id, owner uuid.UUID) (int64, error) {
	res := GetDB(ctx, r.db).Where("id = ? AND created_by = ?", id, owner).Delete(&model.Invoice{})
	return res.RowsAffected, res.Error
}
