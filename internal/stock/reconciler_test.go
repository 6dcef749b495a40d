package stock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"invoicer/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]Product
	listErr  error
	getErr   error

	updateOK  bool
	updateErr error
	updates   map[string]int
}

func newFakeCatalog(products ...Product) *fakeCatalog {
	byID := make(map[string]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &fakeCatalog{products: byID, updateOK: true, updates: make(map[string]int)}
}

func (f *fakeCatalog) ListProducts(ctx context.Context, filters map[string]string) ([]Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []Product
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalog) GetProductByID(ctx context.Context, id string) (*Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeCatalog) UpdateStock(ctx context.Context, id string, newStock int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return false, f.updateErr
	}
	if !f.updateOK {
		return false, nil
	}
	f.updates[id] = newStock
	return true, nil
}

func intp(n int) *int { return &n }

func newTestReconciler(catalog Catalog) *Reconciler {
	return NewReconciler(catalog, time.Second, zerolog.Nop())
}

func TestReconcileUpdatesStock(t *testing.T) {
	catalog := newFakeCatalog(Product{ID: "p1", Stock: intp(10)})
	r := newTestReconciler(catalog)

	outcomes := r.Reconcile(context.Background(), []Line{{ProductID: "p1", Quantity: 4}})

	require.Len(t, outcomes, 1)
	assert.Equal(t, model.StockUpdated, outcomes[0].Status)
	assert.Equal(t, 10, *outcomes[0].OldStock)
	assert.Equal(t, 6, *outcomes[0].NewStock)
	assert.Equal(t, 6, catalog.updates["p1"])
}

func TestReconcileExactDepletionIsOutOfStock(t *testing.T) {
	catalog := newFakeCatalog(Product{ID: "p1", Stock: intp(3)})
	r := newTestReconciler(catalog)

	outcomes := r.Reconcile(context.Background(), []Line{{ProductID: "p1", Quantity: 3}})

	assert.Equal(t, model.StockOutOfStock, outcomes[0].Status)
	assert.Equal(t, 0, *outcomes[0].NewStock)
}

func TestReconcileInsufficientStockDoesNotWrite(t *testing.T) {
	catalog := newFakeCatalog(Product{ID: "p1", Stock: intp(2)})
	r := newTestReconciler(catalog)

	outcomes := r.Reconcile(context.Background(), []Line{{ProductID: "p1", Quantity: 5}})

	assert.Equal(t, model.StockInsufficientStock, outcomes[0].Status)
	assert.Equal(t, NoteInsufficientStock, outcomes[0].Note)
	assert.Equal(t, 2, *outcomes[0].OldStock)
	assert.Empty(t, catalog.updates, "insufficient stock must not touch the catalog")
}

func TestReconcileUntrackedProductMarkedOutOfStock(t *testing.T) {
	catalog := newFakeCatalog(Product{ID: "p1", Stock: nil})
	r := newTestReconciler(catalog)

	outcomes := r.Reconcile(context.Background(), []Line{{ProductID: "p1", Quantity: 1}})

	assert.Equal(t, model.StockOutOfStock, outcomes[0].Status)
	assert.Equal(t, NoteMarkedOutOfStock, outcomes[0].Note)
	assert.Equal(t, 0, catalog.updates["p1"])
}

func TestReconcileUntrackedProductUpdateFailure(t *testing.T) {
	catalog := newFakeCatalog(Product{ID: "p1", Stock: nil})
	catalog.updateOK = false
	r := newTestReconciler(catalog)

	outcomes := r.Reconcile(context.Background(), []Line{{ProductID: "p1", Quantity: 1}})

	assert.Equal(t, model.StockNotTracked, outcomes[0].Status)
	assert.Equal(t, NoteTrackingUpdateFailed, outcomes[0].Note)
}

func TestReconcileMissingProductID(t *testing.T) {
	r := newTestReconciler(newFakeCatalog())

	outcomes := r.Reconcile(context.Background(), []Line{{ProductID: "", Quantity: 2}})

	assert.Equal(t, model.StockFailed, outcomes[0].Status)
	assert.Equal(t, NoteMissingProductID, outcomes[0].Note)
}

func TestReconcileProductNotFound(t *testing.T) {
	r := newTestReconciler(newFakeCatalog())

	outcomes := r.Reconcile(context.Background(), []Line{{ProductID: "ghost", Quantity: 1}})

	assert.Equal(t, model.StockFailed, outcomes[0].Status)
	assert.Equal(t, NoteProductNotFound, outcomes[0].Note)
}

func TestReconcileUpdateFailure(t *testing.T) {
	catalog := newFakeCatalog(Product{ID: "p1", Stock: intp(5)})
	catalog.updateErr = errors.New("shop down")
	r := newTestReconciler(catalog)

	outcomes := r.Reconcile(context.Background(), []Line{{ProductID: "p1", Quantity: 1}})

	assert.Equal(t, model.StockFailed, outcomes[0].Status)
	assert.Equal(t, NoteUpdateFailed, outcomes[0].Note)
}

func TestReconcileListFailureFallsBackToLookup(t *testing.T) {
	catalog := newFakeCatalog(Product{ID: "p1", Stock: intp(5)})
	catalog.listErr = errors.New("list down")
	r := newTestReconciler(catalog)

	outcomes := r.Reconcile(context.Background(), []Line{{ProductID: "p1", Quantity: 2}})

	assert.Equal(t, model.StockUpdated, outcomes[0].Status)
	assert.Equal(t, 3, catalog.updates["p1"])
}

func TestReconcileIsolatesFailuresPerLine(t *testing.T) {
	catalog := newFakeCatalog(
		Product{ID: "ok", Stock: intp(10)},
		Product{ID: "low", Stock: intp(1)},
	)
	r := newTestReconciler(catalog)

	outcomes := r.Reconcile(context.Background(), []Line{
		{ProductID: "ok", Quantity: 2},
		{ProductID: "low", Quantity: 5},
		{ProductID: "ghost", Quantity: 1},
	})

	require.Len(t, outcomes, 3)
	assert.Equal(t, model.StockUpdated, outcomes[0].Status)
	assert.Equal(t, model.StockInsufficientStock, outcomes[1].Status)
	assert.Equal(t, model.StockFailed, outcomes[2].Status)
}

func TestReconcileNonPositiveQuantityCountsAsOne(t *testing.T) {
	catalog := newFakeCatalog(Product{ID: "p1", Stock: intp(5)})
	r := newTestReconciler(catalog)

	outcomes := r.Reconcile(context.Background(), []Line{{ProductID: "p1", Quantity: 0}})

	assert.Equal(t, model.StockUpdated, outcomes[0].Status)
	assert.Equal(t, 4, *outcomes[0].NewStock)
}

func TestAggregateLines(t *testing.T) {
	lines := []Line{
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 1},
		{ProductID: "a", Quantity: 3},
		{ProductID: "", Quantity: 9},
		{ProductID: "c", Quantity: 0},
	}

	out := AggregateLines(lines)

	require.Len(t, out, 3)
	assert.Equal(t, Line{ProductID: "a", Quantity: 5}, out[0])
	assert.Equal(t, Line{ProductID: "b", Quantity: 1}, out[1])
	assert.Equal(t, Line{ProductID: "c", Quantity: 1}, out[2])
}
