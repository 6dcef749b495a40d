package service

import (
	"context"
	"testing"
	"time"

	"invoicer/internal/model"
	"invoicer/internal/stock"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// fakeInvoiceRepo keeps invoices in memory, keyed by id.
type fakeInvoiceRepo struct {
	invoices    map[uuid.UUID]*model.Invoice
	annotations map[uuid.UUID][2]string
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{
		invoices:    make(map[uuid.UUID]*model.Invoice),
		annotations: make(map[uuid.UUID][2]string),
	}
}

func (f *fakeInvoiceRepo) Create(ctx context.Context, invoice *model.Invoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	for i := range invoice.Items {
		if invoice.Items[i].ID == uuid.Nil {
			invoice.Items[i].ID = uuid.New()
		}
		invoice.Items[i].InvoiceID = invoice.ID
	}
	invoice.CreatedAt = time.Now()
	f.invoices[invoice.ID] = invoice
	return nil
}

func (f *fakeInvoiceRepo) FindByID(ctx context.Context, id, owner uuid.UUID) (*model.Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok || inv.CreatedBy != owner {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *inv
	return &copied, nil
}

func (f *fakeInvoiceRepo) FindByIDForUpdate(ctx context.Context, id, owner uuid.UUID) (*model.Invoice, error) {
	return f.FindByID(ctx, id, owner)
}

func (f *fakeInvoiceRepo) FindByIDs(ctx context.Context, ids []uuid.UUID, owner uuid.UUID, excludeStatus string) ([]model.Invoice, error) {
	var out []model.Invoice
	for _, id := range ids {
		inv, ok := f.invoices[id]
		if !ok || inv.CreatedBy != owner {
			continue
		}
		if excludeStatus != "" && inv.Status == excludeStatus {
			continue
		}
		out = append(out, *inv)
	}
	return out, nil
}

func (f *fakeInvoiceRepo) List(ctx context.Context, owner uuid.UUID, page, limit int) ([]model.Invoice, int64, error) {
	var out []model.Invoice
	for _, inv := range f.invoices {
		if inv.CreatedBy == owner {
			out = append(out, *inv)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeInvoiceRepo) ListAll(ctx context.Context, owner uuid.UUID) ([]model.Invoice, error) {
	out, _, err := f.List(ctx, owner, 1, 1000)
	return out, err
}

func (f *fakeInvoiceRepo) ListNumbers(ctx context.Context, owner uuid.UUID) ([]string, error) {
	var numbers []string
	for _, inv := range f.invoices {
		if inv.CreatedBy == owner {
			numbers = append(numbers, inv.InvoiceNumber)
		}
	}
	return numbers, nil
}

func (f *fakeInvoiceRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	inv, ok := f.invoices[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["status"]; ok {
		inv.Status = v.(string)
	}
	if v, ok := fields["subtotal"]; ok {
		inv.Subtotal = v.(decimal.Decimal)
	}
	if v, ok := fields["discount_amount"]; ok {
		inv.DiscountAmount = v.(decimal.Decimal)
	}
	if v, ok := fields["tax"]; ok {
		inv.Tax = v.(decimal.Decimal)
	}
	if v, ok := fields["total"]; ok {
		inv.Total = v.(decimal.Decimal)
	}
	if v, ok := fields["customer_name"]; ok {
		inv.CustomerName = v.(string)
	}
	return nil
}

func (f *fakeInvoiceRepo) ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []model.InvoiceItem) error {
	inv, ok := f.invoices[invoiceID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range items {
		items[i].ID = uuid.New()
		items[i].InvoiceID = invoiceID
	}
	inv.Items = items
	return nil
}

func (f *fakeInvoiceRepo) AppendPayment(ctx context.Context, payment *model.PaymentRecord) error {
	inv, ok := f.invoices[payment.InvoiceID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	payment.ID = uuid.New()
	inv.Payments = append(inv.Payments, *payment)
	return nil
}

func (f *fakeInvoiceRepo) AnnotateItem(ctx context.Context, itemID uuid.UUID, status, note string) error {
	f.annotations[itemID] = [2]string{status, note}
	return nil
}

func (f *fakeInvoiceRepo) Delete(ctx context.Context, id, owner uuid.UUID) (int64, error) {
	inv, ok := f.invoices[id]
	if !ok || inv.CreatedBy != owner {
		return 0, nil
	}
	delete(f.invoices, id)
	return 1, nil
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakeReconciler struct {
	gotLines []stock.Line
	outcomes []stock.Outcome
}

func (f *fakeReconciler) Reconcile(ctx context.Context, lines []stock.Line) []stock.Outcome {
	f.gotLines = lines
	if f.outcomes != nil {
		return f.outcomes
	}
	outcomes := make([]stock.Outcome, len(lines))
	for i, line := range lines {
		outcomes[i] = stock.Outcome{ProductID: line.ProductID, Status: model.StockUpdated}
	}
	return outcomes
}

type fakeOperations struct {
	recorded []OperationInput
}

func (f *fakeOperations) Record(ctx context.Context, in OperationInput) {
	f.recorded = append(f.recorded, in)
}

func (f *fakeOperations) List(ctx context.Context, page, limit int) ([]model.OperationLog, int64, error) {
	return nil, 0, nil
}

func newTestService(repo *fakeInvoiceRepo, reconciler *fakeReconciler, ops *fakeOperations) InvoiceService {
	return NewInvoiceService(repo, fakeTxManager{}, reconciler, ops, nil, nil, nil, zerolog.Nop())
}

func createRequest() CreateInvoiceRequest {
	qty := d("2")
	price := d("50")
	return CreateInvoiceRequest{
		InvoiceNumber: "INV-000001",
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Items: []ItemRequest{
			{ProductID: "p1", ProductName: "Rug", Quantity: &qty, Price: &price},
		},
		TaxRate: d("10"),
	}
}

func TestCreateComputesTotals(t *testing.T) {
	repo := newFakeInvoiceRepo()
	ops := &fakeOperations{}
	svc := newTestService(repo, &fakeReconciler{}, ops)
	owner := uuid.New()

	inv, err := svc.Create(context.Background(), createRequest(), owner.String())
	require.NoError(t, err)

	assert.Equal(t, "100", inv.Subtotal.String())
	assert.Equal(t, "10", inv.Tax.String())
	assert.Equal(t, "110", inv.Total.String())
	assert.Equal(t, model.StatusDraft, inv.Status)
	assert.Equal(t, owner, inv.CreatedBy)
	require.Len(t, ops.recorded, 1)
	assert.Equal(t, model.ActionInvoiceCreate, ops.recorded[0].Action)
}

func TestCreateRejectsEmptyItems(t *testing.T) {
	svc := newTestService(newFakeInvoiceRepo(), &fakeReconciler{}, &fakeOperations{})

	req := createRequest()
	req.Items = nil
	_, err := svc.Create(context.Background(), req, uuid.New().String())

	require.Error(t, err)
	assert.Equal(t, 400, StatusOf(err))
}

func TestCreateWithCoveringInitialPaymentIsPaid(t *testing.T) {
	svc := newTestService(newFakeInvoiceRepo(), &fakeReconciler{}, &fakeOperations{})

	req := createRequest()
	req.InitialPayment = &InitialPaymentRequest{Amount: d("110"), Method: "cash"}
	inv, err := svc.Create(context.Background(), req, uuid.New().String())

	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, inv.Status)
	require.Len(t, inv.Payments, 1)
	assert.Equal(t, model.MethodCash, inv.Payments[0].Method)
}

func TestCreateWithPartialInitialPayment(t *testing.T) {
	svc := newTestService(newFakeInvoiceRepo(), &fakeReconciler{}, &fakeOperations{})

	req := createRequest()
	req.InitialPayment = &InitialPaymentRequest{Amount: d("30")}
	inv, err := svc.Create(context.Background(), req, uuid.New().String())

	require.NoError(t, err)
	assert.Equal(t, model.StatusPartial, inv.Status)
}

func TestUpdatePreservesPaymentsAndRederivesStatus(t *testing.T) {
	repo := newFakeInvoiceRepo()
	svc := newTestService(repo, &fakeReconciler{}, &fakeOperations{})
	owner := uuid.New()

	created, err := svc.Create(context.Background(), createRequest(), owner.String())
	require.NoError(t, err)
	_, err = svc.RecordPayment(context.Background(), created.ID.String(), RecordPaymentRequest{Amount: d("110")}, owner.String())
	require.NoError(t, err)

	// Raising the total drops the invoice from paid back to partial.
	price := d("100")
	updated, err := svc.Update(context.Background(), created.ID.String(), UpdateInvoiceRequest{
		Items: []ItemRequest{{ProductID: "p1", ProductName: "Rug", Quantity: ptr(d("2")), Price: &price}},
	}, owner.String())
	require.NoError(t, err)

	assert.Equal(t, "220", updated.Total.String())
	assert.Equal(t, model.StatusPartial, updated.Status)
	require.Len(t, updated.Payments, 1, "payments must survive item replacement")
}

func ptr[T any](v T) *T { return &v }

func TestUpdateRejectsEmptyItems(t *testing.T) {
	repo := newFakeInvoiceRepo()
	svc := newTestService(repo, &fakeReconciler{}, &fakeOperations{})
	owner := uuid.New()

	created, err := svc.Create(context.Background(), createRequest(), owner.String())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID.String(), UpdateInvoiceRequest{
		Items: []ItemRequest{},
	}, owner.String())
	require.Error(t, err)
	assert.Equal(t, 400, StatusOf(err))
}

func TestUpdateNotFoundForOtherOwner(t *testing.T) {
	repo := newFakeInvoiceRepo()
	svc := newTestService(repo, &fakeReconciler{}, &fakeOperations{})

	created, err := svc.Create(context.Background(), createRequest(), uuid.New().String())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID.String(), UpdateInvoiceRequest{}, uuid.New().String())
	require.Error(t, err)
	assert.Equal(t, 404, StatusOf(err))
}

func TestRecordPaymentPromotesDraftToPartial(t *testing.T) {
	repo := newFakeInvoiceRepo()
	svc := newTestService(repo, &fakeReconciler{}, &fakeOperations{})
	owner := uuid.New()

	created, err := svc.Create(context.Background(), createRequest(), owner.String())
	require.NoError(t, err)

	updated, err := svc.RecordPayment(context.Background(), created.ID.String(), RecordPaymentRequest{Amount: d("40"), Method: "card"}, owner.String())
	require.NoError(t, err)

	assert.Equal(t, model.StatusPartial, updated.Status)
	require.Len(t, updated.Payments, 1)
}

func TestRecordPaymentRejectsNonPositive(t *testing.T) {
	repo := newFakeInvoiceRepo()
	svc := newTestService(repo, &fakeReconciler{}, &fakeOperations{})
	owner := uuid.New()

	created, err := svc.Create(context.Background(), createRequest(), owner.String())
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), created.ID.String(), RecordPaymentRequest{Amount: d("0")}, owner.String())
	require.Error(t, err)
	assert.Equal(t, 400, StatusOf(err))
}

func TestMarkPaidReconcilesAndAnnotates(t *testing.T) {
	repo := newFakeInvoiceRepo()
	reconciler := &fakeReconciler{}
	svc := newTestService(repo, reconciler, &fakeOperations{})
	owner := uuid.New()

	created, err := svc.Create(context.Background(), createRequest(), owner.String())
	require.NoError(t, err)

	updated, outcomes, err := svc.MarkPaid(context.Background(), created.ID.String(), owner.String())
	require.NoError(t, err)

	assert.Equal(t, model.StatusPaid, updated.Status)
	require.Len(t, outcomes, 1)
	require.Len(t, reconciler.gotLines, 1)
	assert.Equal(t, stock.Line{ProductID: "p1", Quantity: 2}, reconciler.gotLines[0])
	assert.Len(t, repo.annotations, 1)
}

func TestMarkPaidRejectsAlreadyPaid(t *testing.T) {
	repo := newFakeInvoiceRepo()
	svc := newTestService(repo, &fakeReconciler{}, &fakeOperations{})
	owner := uuid.New()

	created, err := svc.Create(context.Background(), createRequest(), owner.String())
	require.NoError(t, err)
	_, _, err = svc.MarkPaid(context.Background(), created.ID.String(), owner.String())
	require.NoError(t, err)

	_, _, err = svc.MarkPaid(context.Background(), created.ID.String(), owner.String())
	require.Error(t, err)
	assert.Equal(t, 400, StatusOf(err))
}

func TestBulkMarkPaidAggregatesStockLines(t *testing.T) {
	repo := newFakeInvoiceRepo()
	reconciler := &fakeReconciler{}
	ops := &fakeOperations{}
	svc := newTestService(repo, reconciler, ops)
	owner := uuid.New()

	first, err := svc.Create(context.Background(), createRequest(), owner.String())
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), func() CreateInvoiceRequest {
		req := createRequest()
		req.InvoiceNumber = "INV-000002"
		qty := d("3")
		req.Items[0].Quantity = &qty
		return req
	}(), owner.String())
	require.NoError(t, err)

	result, err := svc.BulkMarkPaid(context.Background(), []string{first.ID.String(), second.ID.String()}, owner.String())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Updated)
	// 2 + 3 units of the same product collapse into one stock write.
	require.Len(t, reconciler.gotLines, 1)
	assert.Equal(t, stock.Line{ProductID: "p1", Quantity: 5}, reconciler.gotLines[0])
	// Both invoices' items carry the shared outcome.
	assert.Len(t, repo.annotations, 2)
	assert.Len(t, ops.recorded, 4) // 2 creates + 2 status changes
}

func TestBulkMarkPaidSkipsAlreadyPaid(t *testing.T) {
	repo := newFakeInvoiceRepo()
	reconciler := &fakeReconciler{}
	svc := newTestService(repo, reconciler, &fakeOperations{})
	owner := uuid.New()

	paid, err := svc.Create(context.Background(), createRequest(), owner.String())
	require.NoError(t, err)
	_, _, err = svc.MarkPaid(context.Background(), paid.ID.String(), owner.String())
	require.NoError(t, err)

	open, err := svc.Create(context.Background(), func() CreateInvoiceRequest {
		req := createRequest()
		req.InvoiceNumber = "INV-000002"
		return req
	}(), owner.String())
	require.NoError(t, err)

	result, err := svc.BulkMarkPaid(context.Background(), []string{paid.ID.String(), open.ID.String()}, owner.String())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
}

func TestBulkMarkPaidInvalidIDs(t *testing.T) {
	svc := newTestService(newFakeInvoiceRepo(), &fakeReconciler{}, &fakeOperations{})

	_, err := svc.BulkMarkPaid(context.Background(), []string{"not-a-uuid"}, uuid.New().String())
	require.Error(t, err)
	assert.Equal(t, 400, StatusOf(err))
}

func TestBulkMarkPaidNothingToPay(t *testing.T) {
	svc := newTestService(newFakeInvoiceRepo(), &fakeReconciler{}, &fakeOperations{})

	_, err := svc.BulkMarkPaid(context.Background(), []string{uuid.New().String()}, uuid.New().String())
	require.Error(t, err)
	assert.Equal(t, 404, StatusOf(err))
}

func TestDeleteNotFound(t *testing.T) {
	svc := newTestService(newFakeInvoiceRepo(), &fakeReconciler{}, &fakeOperations{})

	err := svc.Delete(context.Background(), uuid.New().String(), uuid.New().String())
	require.Error(t, err)
	assert.Equal(t, 404, StatusOf(err))
}

func TestNextNumber(t *testing.T) {
	repo := newFakeInvoiceRepo()
	svc := newTestService(repo, &fakeReconciler{}, &fakeOperations{})
	owner := uuid.New()

	number, err := svc.NextNumber(context.Background(), owner.String())
	require.NoError(t, err)
	assert.Equal(t, "INV-000001", number)

	for _, n := range []string{"INV-000004", "2024-17", "DRAFT"} {
		repo.invoices[uuid.New()] = &model.Invoice{CreatedBy: owner, InvoiceNumber: n}
	}
	number, err = svc.NextNumber(context.Background(), owner.String())
	require.NoError(t, err)
	assert.Equal(t, "INV-000018", number)
}
