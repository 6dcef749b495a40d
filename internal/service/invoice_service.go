package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"invoicer/internal/email"
	"invoicer/internal/invoice"
	"invoicer/internal/model"
	"invoicer/internal/repository"
	"invoicer/internal/stock"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemRequest is one line item as submitted by the client. On update,
// nil pointer fields fall back to the stored line at the same position.
type ItemRequest struct {
	ProductID   string           `json:"product_id"`
	ProductName string           `json:"product_name"`
	Description *string          `json:"description,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	SizeLabel   *string          `json:"size_label,omitempty"`
	Length      *float64         `json:"length,omitempty"`
	Width       *float64         `json:"width,omitempty"`
	Area        *float64         `json:"area,omitempty"`
	Origin      *string          `json:"origin,omitempty"`
}

// InitialPaymentRequest optionally seeds a payment at creation time.
type InitialPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
}

type CreateInvoiceRequest struct {
	InvoiceNumber  string                 `json:"invoice_number" binding:"required"`
	CustomerName   string                 `json:"customer_name" binding:"required"`
	CustomerEmail  string                 `json:"customer_email" binding:"required,email"`
	Currency       string                 `json:"currency"`
	Items          []ItemRequest          `json:"items" binding:"required,min=1"`
	Discount       decimal.Decimal        `json:"discount"`
	DiscountType   string                 `json:"discount_type"`
	TaxRate        decimal.Decimal        `json:"tax_rate"`
	Status         string                 `json:"status"`
	InvoiceDate    *time.Time             `json:"invoice_date,omitempty"`
	DueDate        *time.Time             `json:"due_date,omitempty"`
	Terms          string                 `json:"terms"`
	Memo           string                 `json:"memo"`
	InitialPayment *InitialPaymentRequest `json:"initial_payment,omitempty"`
}

// UpdateInvoiceRequest patches an invoice. Nil fields keep the stored value;
// Items, when present, replaces the full line set (merged position-wise
// against the stored lines).
type UpdateInvoiceRequest struct {
	CustomerName  *string          `json:"customer_name,omitempty"`
	CustomerEmail *string          `json:"customer_email,omitempty"`
	Currency      *string          `json:"currency,omitempty"`
	Items         []ItemRequest    `json:"items,omitempty"`
	Discount      *decimal.Decimal `json:"discount,omitempty"`
	DiscountType  *string          `json:"discount_type,omitempty"`
	TaxRate       *decimal.Decimal `json:"tax_rate,omitempty"`
	Status        *string          `json:"status,omitempty"`
	InvoiceDate   *time.Time       `json:"invoice_date,omitempty"`
	DueDate       *time.Time       `json:"due_date,omitempty"`
	Terms         *string          `json:"terms,omitempty"`
	Memo          *string          `json:"memo,omitempty"`
}

type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
}

type SendEmailRequest struct {
	To                string `json:"to"`
	Subject           string `json:"subject"`
	Message           string `json:"message"`
	IncludeAttachment bool   `json:"include_attachment"`
}

// BulkMarkPaidResult reports the bulk endpoint outcome.
type BulkMarkPaidResult struct {
	Updated       int             `json:"updated"`
	StockOutcomes []stock.Outcome `json:"stock_outcomes"`
}

// StockReconciler is the slice of the stock engine the lifecycle needs.
type StockReconciler interface {
	Reconcile(ctx context.Context, lines []stock.Line) []stock.Outcome
}

// Notifier pushes domain events to connected clients. Nil is allowed.
type Notifier interface {
	Publish(event string, data map[string]interface{})
}

// InvoiceService drives the invoice lifecycle. All operations are scoped to
// the calling user; an invoice belonging to someone else behaves exactly
// like a missing one.
type InvoiceService interface {
	Create(ctx context.Context, req CreateInvoiceRequest, userID string) (*model.Invoice, error)
	Update(ctx context.Context, id string, req UpdateInvoiceRequest, userID string) (*model.Invoice, error)
	Delete(ctx context.Context, id, userID string) error
	Get(ctx context.Context, id, userID string) (*model.Invoice, error)
	List(ctx context.Context, userID string, page, limit int) ([]model.Invoice, int64, error)
	RecordPayment(ctx context.Context, id string, req RecordPaymentRequest, userID string) (*model.Invoice, error)
	MarkPaid(ctx context.Context, id, userID string) (*model.Invoice, []stock.Outcome, error)
	BulkMarkPaid(ctx context.Context, ids []string, userID string) (*BulkMarkPaidResult, error)
	NextNumber(ctx context.Context, userID string) (string, error)
	SendEmail(ctx context.Context, id string, req SendEmailRequest, userID string) error
}

type invoiceService struct {
	repo       repository.InvoiceRepository
	txManager  repository.TransactionManager
	reconciler StockReconciler
	operations OperationsService
	settings   SettingsService
	sender     email.Sender
	notifier   Notifier
	logger     zerolog.Logger
}

func NewInvoiceService(
	repo repository.InvoiceRepository,
	txManager repository.TransactionManager,
	reconciler StockReconciler,
	operations OperationsService,
	settings SettingsService,
	sender email.Sender,
	notifier Notifier,
	logger zerolog.Logger,
) InvoiceService {
	return &invoiceService{
		repo:       repo,
		txManager:  txManager,
		reconciler: reconciler,
		operations: operations,
		settings:   settings,
		sender:     sender,
		notifier:   notifier,
		logger:     logger.With().Str("component", "invoice_service").Logger(),
	}
}

func (s *invoiceService) Create(ctx context.Context, req CreateInvoiceRequest, userID string) (*model.Invoice, error) {
	owner, err := uuid.Parse(userID)
	if err != nil {
		return nil, badRequest("Invalid user id")
	}

	totals, err := invoice.ComputeTotals(toItemInputs(req.Items, nil), invoice.DiscountInput{
		Type:  normalizeDiscountType(req.DiscountType),
		Value: req.Discount,
	}, req.TaxRate)
	if errors.Is(err, invoice.ErrNoItems) {
		return nil, badRequest("Invoice must include at least one item")
	}
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}
	invoiceDate := time.Now()
	if req.InvoiceDate != nil {
		invoiceDate = *req.InvoiceDate
	}

	inv := &model.Invoice{
		InvoiceNumber:  strings.TrimSpace(req.InvoiceNumber),
		CreatedBy:      owner,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		Currency:       currency,
		Items:          totals.Items,
		Subtotal:       totals.Subtotal,
		Discount:       req.Discount,
		DiscountType:   normalizeDiscountType(req.DiscountType),
		DiscountAmount: totals.DiscountAmount,
		TaxRate:        req.TaxRate,
		Tax:            totals.Tax,
		Total:          totals.Total,
		Status:         model.StatusDraft,
		InvoiceDate:    invoiceDate,
		DueDate:        req.DueDate,
		Terms:          req.Terms,
		Memo:           req.Memo,
	}

	var seedPayment *model.PaymentRecord
	if req.InitialPayment != nil {
		payment, err := invoice.NewPayment(invoice.PaymentInput{
			Amount:    req.InitialPayment.Amount,
			Method:    req.InitialPayment.Method,
			Reference: req.InitialPayment.Reference,
			Notes:     req.InitialPayment.Notes,
			PaidAt:    req.InitialPayment.PaidAt,
		}, owner, time.Now())
		if errors.Is(err, invoice.ErrNonPositiveAmount) {
			return nil, badRequest("Payment amount must be greater than zero")
		}
		if err != nil {
			return nil, err
		}
		seedPayment = &payment
		inv.Payments = []model.PaymentRecord{payment}
	}

	// Status: an explicit valid status wins, otherwise derive from the seed
	// payment (a fully covering one creates the invoice already paid).
	if isValidStatus(req.Status) {
		inv.Status = req.Status
	} else if seedPayment != nil {
		inv.Status = invoice.DeriveStatus(seedPayment.Amount, inv.Total, inv.Status, true)
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.operations.Record(ctx, OperationInput{
		Action:     model.ActionInvoiceCreate,
		EntityType: model.EntityInvoice,
		EntityID:   inv.ID.String(),
		UserID:     &owner,
		Metadata: map[string]interface{}{
			"invoiceNumber": inv.InvoiceNumber,
			"total":         inv.Total,
			"status":        inv.Status,
		},
	})
	s.publish("invoice:created", inv)

	return inv, nil
}

func (s *invoiceService) Update(ctx context.Context, id string, req UpdateInvoiceRequest, userID string) (*model.Invoice, error) {
	invoiceID, owner, err := parseIDs(id, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, invoiceID, owner)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Invoice not found")
	}
	if err != nil {
		return nil, err
	}

	itemRequests := req.Items
	if itemRequests == nil {
		itemRequests = toItemRequests(existing.Items)
	}
	if len(itemRequests) == 0 {
		return nil, badRequest("Invoice must include at least one item")
	}

	discount := existing.Discount
	if req.Discount != nil {
		discount = *req.Discount
	}
	discountType := existing.DiscountType
	if req.DiscountType != nil {
		discountType = normalizeDiscountType(*req.DiscountType)
	}
	taxRate := existing.TaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}

	totals, err := invoice.ComputeTotals(toItemInputs(itemRequests, existing.Items), invoice.DiscountInput{
		Type:  discountType,
		Value: discount,
	}, taxRate)
	if errors.Is(err, invoice.ErrNoItems) {
		return nil, badRequest("Invoice must include at least one item")
	}
	if err != nil {
		return nil, err
	}

	// Payments survive every update; status re-derives from the recorded
	// payment total against the new aggregate unless the request pins it.
	status := invoice.DeriveStatus(invoice.PaymentsTotal(existing.Payments), totals.Total, existing.Status, false)
	if req.Status != nil && isValidStatus(*req.Status) {
		status = *req.Status
	}

	fields := map[string]interface{}{
		"subtotal":        totals.Subtotal,
		"discount":        discount,
		"discount_type":   discountType,
		"discount_amount": totals.DiscountAmount,
		"tax_rate":        taxRate,
		"tax":             totals.Tax,
		"total":           totals.Total,
		"status":          status,
	}
	if req.CustomerName != nil {
		fields["customer_name"] = *req.CustomerName
	}
	if req.CustomerEmail != nil {
		fields["customer_email"] = *req.CustomerEmail
	}
	if req.Currency != nil {
		fields["currency"] = strings.ToUpper(strings.TrimSpace(*req.Currency))
	}
	if req.InvoiceDate != nil {
		fields["invoice_date"] = *req.InvoiceDate
	}
	if req.DueDate != nil {
		fields["due_date"] = *req.DueDate
	}
	if req.Terms != nil {
		fields["terms"] = *req.Terms
	}
	if req.Memo != nil {
		fields["memo"] = *req.Memo
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.ReplaceItems(txCtx, invoiceID, totals.Items); err != nil {
			return err
		}
		return s.repo.UpdateFields(txCtx, invoiceID, fields)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, invoiceID, owner)
	if err != nil {
		return nil, err
	}

	s.operations.Record(ctx, OperationInput{
		Action:     model.ActionInvoiceUpdate,
		EntityType: model.EntityInvoice,
		EntityID:   id,
		UserID:     &owner,
		Metadata: map[string]interface{}{
			"invoiceNumber": updated.InvoiceNumber,
			"total":         updated.Total,
			"status":        updated.Status,
		},
	})
	s.publish("invoice:updated", updated)

	return updated, nil
}

func (s *invoiceService) Delete(ctx context.Context, id, userID string) error {
	invoiceID, owner, err := parseIDs(id, userID)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, invoiceID, owner)
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound("Invoice not found")
	}

	s.operations.Record(ctx, OperationInput{
		Action:     model.ActionInvoiceDelete,
		EntityType: model.EntityInvoice,
		EntityID:   id,
		UserID:     &owner,
	})
	s.publish("invoice:deleted", map[string]interface{}{"id": id})

	return nil
}

func (s *invoiceService) Get(ctx context.Context, id, userID string) (*model.Invoice, error) {
	invoiceID, owner, err := parseIDs(id, userID)
	if err != nil {
		return nil, err
	}
	inv, err := s.repo.FindByID(ctx, invoiceID, owner)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Invoice not found")
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) List(ctx context.Context, userID string, page, limit int) ([]model.Invoice, int64, error) {
	owner, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, badRequest("Invalid user id")
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.List(ctx, owner, page, limit)
}

func (s *invoiceService) RecordPayment(ctx context.Context, id string, req RecordPaymentRequest, userID string) (*model.Invoice, error) {
	invoiceID, owner, err := parseIDs(id, userID)
	if err != nil {
		return nil, err
	}

	payment, err := invoice.NewPayment(invoice.PaymentInput{
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		Notes:     req.Notes,
		PaidAt:    req.PaidAt,
	}, owner, time.Now())
	if errors.Is(err, invoice.ErrNonPositiveAmount) {
		return nil, badRequest("Payment amount must be greater than zero")
	}
	if err != nil {
		return nil, err
	}

	var updated *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByIDForUpdate(txCtx, invoiceID, owner)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Invoice not found")
		}
		if err != nil {
			return err
		}

		payment.InvoiceID = invoiceID
		if err := s.repo.AppendPayment(txCtx, &payment); err != nil {
			return err
		}

		paidTotal := invoice.PaymentsTotal(existing.Payments).Add(payment.Amount)
		status := invoice.DeriveStatus(paidTotal, existing.Total, existing.Status, true)
		if status != existing.Status {
			if err := s.repo.UpdateFields(txCtx, invoiceID, map[string]interface{}{"status": status}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err = s.repo.FindByID(ctx, invoiceID, owner)
	if err != nil {
		return nil, err
	}

	s.operations.Record(ctx, OperationInput{
		Action:     model.ActionPaymentRecorded,
		EntityType: model.EntityInvoice,
		EntityID:   id,
		UserID:     &owner,
		Metadata: map[string]interface{}{
			"amount": payment.Amount,
			"method": payment.Method,
			"status": updated.Status,
		},
	})
	s.publish("invoice:payment", updated)

	return updated, nil
}

func (s *invoiceService) MarkPaid(ctx context.Context, id, userID string) (*model.Invoice, []stock.Outcome, error) {
	invoiceID, owner, err := parseIDs(id, userID)
	if err != nil {
		return nil, nil, err
	}

	existing, err := s.repo.FindByID(ctx, invoiceID, owner)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, notFound("Invoice not found")
	}
	if err != nil {
		return nil, nil, err
	}
	if existing.Status == model.StatusPaid {
		return nil, nil, badRequest("Invoice is already paid")
	}

	if err := s.repo.UpdateFields(ctx, invoiceID, map[string]interface{}{"status": model.StatusPaid}); err != nil {
		return nil, nil, err
	}

	outcomes := s.reconcileItems(ctx, existing.Items)

	updated, err := s.repo.FindByID(ctx, invoiceID, owner)
	if err != nil {
		return nil, nil, err
	}

	s.operations.Record(ctx, OperationInput{
		Action:     model.ActionStatusChange,
		EntityType: model.EntityInvoice,
		EntityID:   id,
		UserID:     &owner,
		Metadata: map[string]interface{}{
			"status":  model.StatusPaid,
			"trigger": "pay-endpoint",
		},
	})
	s.publish("invoice:paid", updated)

	return updated, outcomes, nil
}

func (s *invoiceService) BulkMarkPaid(ctx context.Context, ids []string, userID string) (*BulkMarkPaidResult, error) {
	owner, err := uuid.Parse(userID)
	if err != nil {
		return nil, badRequest("Invalid user id")
	}
	if len(ids) == 0 {
		return nil, badRequest("No invoice IDs provided")
	}

	invoiceIDs := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return nil, badRequest("Some invoice IDs are invalid")
		}
		invoiceIDs = append(invoiceIDs, parsed)
	}

	// Already paid invoices are skipped, not failed: paying them twice would
	// double-decrement shop stock.
	invoices, err := s.repo.FindByIDs(ctx, invoiceIDs, owner, model.StatusPaid)
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, notFound("No invoices found to mark as paid")
	}

	var lines []stock.Line
	itemsByProduct := make(map[string][]uuid.UUID)
	for _, inv := range invoices {
		if err := s.repo.UpdateFields(ctx, inv.ID, map[string]interface{}{"status": model.StatusPaid}); err != nil {
			return nil, err
		}
		for _, item := range inv.Items {
			lines = append(lines, stock.Line{ProductID: item.ProductID, Quantity: int(item.Quantity.IntPart())})
			if item.ProductID != "" {
				itemsByProduct[item.ProductID] = append(itemsByProduct[item.ProductID], item.ID)
			}
		}
	}

	// One reconciliation pass over the aggregated lines, then fan the
	// per-product outcome back onto every contributing item.
	outcomes := s.reconciler.Reconcile(ctx, stock.AggregateLines(lines))
	for _, outcome := range outcomes {
		for _, itemID := range itemsByProduct[outcome.ProductID] {
			if err := s.repo.AnnotateItem(ctx, itemID, outcome.Status, outcome.Note); err != nil {
				s.logger.Error().Err(err).Str("itemId", itemID.String()).Msg("failed to annotate item stock outcome")
			}
		}
	}

	for _, inv := range invoices {
		s.operations.Record(ctx, OperationInput{
			Action:     model.ActionStatusChange,
			EntityType: model.EntityInvoice,
			EntityID:   inv.ID.String(),
			UserID:     &owner,
			Metadata: map[string]interface{}{
				"status":  model.StatusPaid,
				"trigger": "bulk-pay-endpoint",
			},
		})
	}
	s.publish("invoice:bulk-paid", map[string]interface{}{"count": len(invoices)})

	return &BulkMarkPaidResult{Updated: len(invoices), StockOutcomes: outcomes}, nil
}

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// NextNumber proposes the next invoice number by scanning the owner's
// existing numbers for the highest trailing integer.
func (s *invoiceService) NextNumber(ctx context.Context, userID string) (string, error) {
	owner, err := uuid.Parse(userID)
	if err != nil {
		return "", badRequest("Invalid user id")
	}

	numbers, err := s.repo.ListNumbers(ctx, owner)
	if err != nil {
		return "", err
	}

	max := 0
	for _, number := range numbers {
		match := trailingDigits.FindStringSubmatch(number)
		if match == nil {
			continue
		}
		n, err := strconv.Atoi(match[1])
		if err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("INV-%06d", max+1), nil
}

func (s *invoiceService) SendEmail(ctx context.Context, id string, req SendEmailRequest, userID string) error {
	invoiceID, owner, err := parseIDs(id, userID)
	if err != nil {
		return err
	}

	inv, err := s.repo.FindByID(ctx, invoiceID, owner)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("Invoice not found")
	}
	if err != nil {
		return err
	}

	if s.sender == nil {
		return &Error{Status: 500, Message: "Email service is not configured. Please add SMTP settings."}
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	company := email.CompanyInfo{
		Name:    settings.Name,
		Email:   settings.Email,
		LogoURL: settings.LogoURL,
		Address: settings.Address,
		Phone:   settings.Phone,
		Website: settings.Website,
	}

	html, err := email.RenderInvoiceHTML(inv, company, settings.FooterNote)
	if err != nil {
		return err
	}
	text := email.RenderInvoiceText(inv, company, settings.FooterNote)

	to := req.To
	if to == "" {
		to = inv.CustomerEmail
	}
	subject := req.Subject
	if subject == "" {
		subject = fmt.Sprintf("Invoice %s", inv.InvoiceNumber)
	}
	message := req.Message
	if message == "" {
		message = "Please find your invoice attached."
	}

	msg := &email.Message{
		To:       []string{to},
		Subject:  subject,
		TextBody: message + "\n\n" + text,
		HTMLBody: fmt.Sprintf(`<div style="font-family: Arial, sans-serif;"><p>%s</p>%s</div>`, message, html),
	}
	if req.IncludeAttachment {
		msg.Attachments = []email.Attachment{{
			Filename:    fmt.Sprintf("invoice-%s.html", inv.InvoiceNumber),
			ContentType: "text/html",
			Content:     []byte(html),
		}}
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		return err
	}

	s.operations.Record(ctx, OperationInput{
		Action:     model.ActionEmailSent,
		EntityType: model.EntityInvoice,
		EntityID:   id,
		UserID:     &owner,
		Metadata: map[string]interface{}{
			"to":                to,
			"subject":           subject,
			"includeAttachment": req.IncludeAttachment,
		},
	})

	return nil
}

// reconcileItems feeds an invoice's lines through the stock engine and
// writes the per-item annotations back, index-aligned.
func (s *invoiceService) reconcileItems(ctx context.Context, items []model.InvoiceItem) []stock.Outcome {
	lines := make([]stock.Line, len(items))
	for i, item := range items {
		lines[i] = stock.Line{ProductID: item.ProductID, Quantity: int(item.Quantity.IntPart())}
	}

	outcomes := s.reconciler.Reconcile(ctx, lines)
	for i, outcome := range outcomes {
		if i >= len(items) {
			break
		}
		if err := s.repo.AnnotateItem(ctx, items[i].ID, outcome.Status, outcome.Note); err != nil {
			s.logger.Error().Err(err).Str("itemId", items[i].ID.String()).Msg("failed to annotate item stock outcome")
		}
	}
	return outcomes
}

func (s *invoiceService) publish(event string, data interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(event, map[string]interface{}{"payload": data})
}

func parseIDs(id, userID string) (uuid.UUID, uuid.UUID, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, uuid.Nil, badRequest("Invalid invoice id")
	}
	owner, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, uuid.Nil, badRequest("Invalid user id")
	}
	return invoiceID, owner, nil
}

// toItemInputs merges request lines against the stored lines position-wise.
// ProductID and ProductName always come from the request; everything else
// falls back to the stored line when the request omits it. Area resolution:
// an explicit request area wins; when the merged line carries length and
// width the calculator recomputes; otherwise the stored area survives.
func toItemInputs(requests []ItemRequest, previous []model.InvoiceItem) []invoice.ItemInput {
	inputs := make([]invoice.ItemInput, 0, len(requests))
	for i, req := range requests {
		var prev *model.InvoiceItem
		if i < len(previous) {
			prev = &previous[i]
		}

		in := invoice.ItemInput{
			ProductID:   req.ProductID,
			ProductName: req.ProductName,
		}

		if req.Description != nil {
			in.Description = *req.Description
		} else if prev != nil {
			in.Description = prev.Description
		}
		if req.Quantity != nil {
			in.Quantity = *req.Quantity
		} else if prev != nil {
			in.Quantity = prev.Quantity
		}
		if req.Price != nil {
			in.Price = *req.Price
		} else if prev != nil {
			in.Price = prev.Price
		}
		if req.SizeLabel != nil {
			in.SizeLabel = *req.SizeLabel
		} else if prev != nil {
			in.SizeLabel = prev.SizeLabel
		}
		if req.Length != nil {
			in.Length = req.Length
		} else if prev != nil {
			in.Length = prev.Length
		}
		if req.Width != nil {
			in.Width = req.Width
		} else if prev != nil {
			in.Width = prev.Width
		}
		if req.Origin != nil {
			in.Origin = *req.Origin
		} else if prev != nil {
			in.Origin = prev.Origin
		}

		switch {
		case req.Area != nil:
			in.Area = req.Area
		case in.Length != nil && in.Width != nil:
			in.Area = nil
		case prev != nil:
			in.Area = prev.Area
		}

		inputs = append(inputs, in)
	}
	return inputs
}

// toItemRequests converts stored lines back to request shape so an update
// without items recomputes over the existing set.
func toItemRequests(items []model.InvoiceItem) []ItemRequest {
	requests := make([]ItemRequest, 0, len(items))
	for i := range items {
		item := items[i]
		req := ItemRequest{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    &item.Quantity,
			Price:       &item.Price,
			Length:      item.Length,
			Width:       item.Width,
			Area:        item.Area,
		}
		if item.Description != "" {
			req.Description = &item.Description
		}
		if item.SizeLabel != "" {
			req.SizeLabel = &item.SizeLabel
		}
		if item.Origin != "" {
			req.Origin = &item.Origin
		}
		requests = append(requests, req)
	}
	return requests
}

func normalizeDiscountType(t string) string {
	if t == model.DiscountPercent {
		return model.DiscountPercent
	}
	return model.DiscountAmount
}

func isValidStatus(status string) bool {
	switch status {
	case model.StatusDraft, model.StatusSent, model.StatusPartial, model.StatusPaid, model.StatusCancelled:
		return true
	}
	return false
}
