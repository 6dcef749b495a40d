// Package stock reconciles quantities sold on paid invoices against the
// external shop catalog. Reconciliation is strictly best-effort: a paid
// invoice stays paid no matter what the catalog does.
package stock

import (
	"context"
	"sync"
	"time"

	"invoicer/internal/model"

	"github.com/rs/zerolog"
)

// Product is the fixed shape every catalog payload is normalized into.
// A nil Stock means the shop does not track stock for this product.
type Product struct {
	ID    string
	Name  string
	SKU   string
	Price float64
	Stock *int
}

// Catalog is the external product catalog capability.
type Catalog interface {
	ListProducts(ctx context.Context, filters map[string]string) ([]Product, error)
	GetProductByID(ctx context.Context, id string) (*Product, error)
	UpdateStock(ctx context.Context, id string, newStock int) (bool, error)
}

// Line is one product/quantity pair to reconcile.
type Line struct {
	ProductID string
	Quantity  int
}

// Outcome note constants
const (
	NoteMissingProductID     = "missing_product_id"
	NoteProductNotFound      = "product_not_found"
	NoteInsufficientStock    = "insufficient_stock"
	NoteMarkedOutOfStock     = "marked_out_of_stock"
	NoteTrackingUpdateFailed = "stock_tracking_disabled_update_failed"
	NoteUpdateFailed         = "update_failed"
	NoteError                = "error"
)

// Outcome is the per-line reconciliation result, recorded on the invoice
// item for later inspection.
type Outcome struct {
	ProductID string
	Status    string // model.StockUpdated, model.StockOutOfStock, ...
	Note      string
	OldStock  *int
	NewStock  *int
}

// Reconciler fans stock updates out across the catalog with per-line
// failure isolation and a bounded per-line timeout.
type Reconciler struct {
	catalog Catalog
	timeout time.Duration
	logger  zerolog.Logger
}

func NewReconciler(catalog Catalog, timeout time.Duration, logger zerolog.Logger) *Reconciler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Reconciler{
		catalog: catalog,
		timeout: timeout,
		logger:  logger.With().Str("component", "stock_reconciler").Logger(),
	}
}

// Reconcile resolves every line against the catalog and attempts the stock
// decrement. The result slice is index-aligned with lines. It never returns
// an error: every failure mode becomes an Outcome.
func (r *Reconciler) Reconcile(ctx context.Context, lines []Line) []Outcome {
	outcomes := make([]Outcome, len(lines))
	if len(lines) == 0 {
		return outcomes
	}

	// One batch list call up front; individual lines fall back to a by-id
	// lookup when missing from the batch or lacking a stock field.
	listCtx, cancel := context.WithTimeout(ctx, r.timeout)
	products, err := r.catalog.ListProducts(listCtx, nil)
	cancel()
	if err != nil {
		r.logger.Warn().Err(err).Msg("catalog list failed, falling back to per-product lookups")
		products = nil
	}
	byID := make(map[string]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var wg sync.WaitGroup
	for i, line := range lines {
		wg.Add(1)
		go func(i int, line Line) {
			defer wg.Done()
			lineCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()
			outcomes[i] = r.reconcileLine(lineCtx, line, byID)
		}(i, line)
	}
	wg.Wait()

	return outcomes
}

func (r *Reconciler) reconcileLine(ctx context.Context, line Line, byID map[string]Product) Outcome {
	log := r.logger.With().Str("productId", line.ProductID).Int("quantity", line.Quantity).Logger()

	if line.ProductID == "" {
		log.Warn().Msg("line missing product id, skipping stock update")
		return Outcome{Status: model.StockFailed, Note: NoteMissingProductID}
	}

	product, found := byID[line.ProductID]
	if !found || product.Stock == nil {
		direct, err := r.catalog.GetProductByID(ctx, line.ProductID)
		if err != nil {
			log.Error().Err(err).Msg("catalog lookup failed")
			return Outcome{ProductID: line.ProductID, Status: model.StockFailed, Note: NoteError}
		}
		if direct != nil {
			product = *direct
			found = true
		}
	}
	if !found {
		log.Warn().Msg("product not found in shop catalog")
		return Outcome{ProductID: line.ProductID, Status: model.StockFailed, Note: NoteProductNotFound}
	}

	// Stock tracking disabled: treat the line as a one-off unit and mark
	// the product out of stock instead of skipping it.
	if product.Stock == nil {
		ok, err := r.catalog.UpdateStock(ctx, line.ProductID, 0)
		if err != nil || !ok {
			log.Warn().Err(err).Msg("failed to mark untracked product as out of stock")
			return Outcome{ProductID: line.ProductID, Status: model.StockNotTracked, Note: NoteTrackingUpdateFailed}
		}
		zero := 0
		log.Info().Msg("marked untracked product as out of stock")
		return Outcome{ProductID: line.ProductID, Status: model.StockOutOfStock, Note: NoteMarkedOutOfStock, NewStock: &zero}
	}

	quantity := line.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	current := *product.Stock
	newStock := current - quantity

	if newStock < 0 {
		log.Warn().Int("currentStock", current).Msg("insufficient stock in shop catalog")
		return Outcome{ProductID: line.ProductID, Status: model.StockInsufficientStock, Note: NoteInsufficientStock, OldStock: &current}
	}

	ok, err := r.catalog.UpdateStock(ctx, line.ProductID, newStock)
	if err != nil || !ok {
		log.Error().Err(err).Msg("failed to update product stock")
		return Outcome{ProductID: line.ProductID, Status: model.StockFailed, Note: NoteUpdateFailed, OldStock: &current}
	}

	status := model.StockUpdated
	if newStock == 0 {
		status = model.StockOutOfStock
	}
	log.Info().Int("oldStock", current).Int("newStock", newStock).Msg("updated product stock")
	return Outcome{ProductID: line.ProductID, Status: status, OldStock: &current, NewStock: &newStock}
}

// AggregateLines sums quantities per product, preserving first-seen order.
// Lines without a product id are dropped; a non-positive quantity counts
// as one unit. Bulk payment batches aggregate before reconciling so a
// product sold across several invoices gets exactly one stock write.
func AggregateLines(lines []Line) []Line {
	index := make(map[string]int)
	var out []Line
	for _, line := range lines {
		if line.ProductID == "" {
			continue
		}
		quantity := line.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		if i, ok := index[line.ProductID]; ok {
			out[i].Quantity += quantity
			continue
		}
		index[line.ProductID] = len(out)
		out = append(out, Line{ProductID: line.ProductID, Quantity: quantity})
	}
	return out
}
