package service

import (
	"context"
	"sort"
	"time"

	"invoicer/internal/model"
	"invoicer/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardOverview aggregates across every invoice the user owns.
type DashboardOverview struct {
	TotalInvoices       int             `json:"total_invoices"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	PendingRevenue      decimal.Decimal `json:"pending_revenue"`
	PaidInvoices        int             `json:"paid_invoices"`
	PendingInvoices     int             `json:"pending_invoices"`
	DraftInvoices       int             `json:"draft_invoices"`
	CancelledInvoices   int             `json:"cancelled_invoices"`
	AverageInvoiceValue decimal.Decimal `json:"average_invoice_value"`
	ConversionRate      decimal.Decimal `json:"conversion_rate"`
}

type MonthlyRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type RecentInvoice struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerName  string          `json:"customer_name"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	InvoiceDate   time.Time       `json:"invoice_date"`
}

type DashboardStats struct {
	Overview           DashboardOverview          `json:"overview"`
	MonthlyRevenue     []MonthlyRevenue           `json:"monthly_revenue"`
	MonthlyCount       []MonthlyCount             `json:"monthly_count"`
	StatusDistribution map[string]int             `json:"status_distribution"`
	RevenueByStatus    map[string]decimal.Decimal `json:"revenue_by_status"`
	RecentInvoices     []RecentInvoice            `json:"recent_invoices"`
}

// StatsService computes the dashboard aggregates with a single in-memory
// fold over the owner's invoices.
type StatsService interface {
	Dashboard(ctx context.Context, userID string) (*DashboardStats, error)
}

type statsService struct {
	repo repository.InvoiceRepository
	now  func() time.Time
}

func NewStatsService(repo repository.InvoiceRepository) StatsService {
	return &statsService{repo: repo, now: time.Now}
}

func (s *statsService) Dashboard(ctx context.Context, userID string) (*DashboardStats, error) {
	owner, err := uuid.Parse(userID)
	if err != nil {
		return nil, badRequest("Invalid user id")
	}

	invoices, err := s.repo.ListAll(ctx, owner)
	if err != nil {
		return nil, err
	}

	overview := DashboardOverview{
		TotalInvoices:       len(invoices),
		TotalRevenue:        decimal.Zero,
		PendingRevenue:      decimal.Zero,
		AverageInvoiceValue: decimal.Zero,
		ConversionRate:      decimal.Zero,
	}
	grandTotal := decimal.Zero
	draftRevenue := decimal.Zero
	cancelledRevenue := decimal.Zero

	// Seed the trailing six calendar months so quiet months show as zero.
	now := s.now()
	monthlyRevenue := make(map[string]decimal.Decimal, 6)
	monthlyCount := make(map[string]int, 6)
	var monthKeys []string
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := 5; i >= 0; i-- {
		key := firstOfMonth.AddDate(0, -i, 0).Format("2006-01")
		monthlyRevenue[key] = decimal.Zero
		monthlyCount[key] = 0
		monthKeys = append(monthKeys, key)
	}

	for _, inv := range invoices {
		grandTotal = grandTotal.Add(inv.Total)

		switch inv.Status {
		case model.StatusPaid:
			overview.PaidInvoices++
			overview.TotalRevenue = overview.TotalRevenue.Add(inv.Total)

			date := inv.InvoiceDate
			if date.IsZero() {
				date = inv.CreatedAt
			}
			key := date.Format("2006-01")
			if _, tracked := monthlyRevenue[key]; tracked {
				monthlyRevenue[key] = monthlyRevenue[key].Add(inv.Total)
				monthlyCount[key]++
			}
		case model.StatusSent, model.StatusPartial:
			overview.PendingInvoices++
			overview.PendingRevenue = overview.PendingRevenue.Add(inv.Total)
		case model.StatusDraft:
			overview.DraftInvoices++
			overview.PendingRevenue = overview.PendingRevenue.Add(inv.Total)
			draftRevenue = draftRevenue.Add(inv.Total)
		case model.StatusCancelled:
			overview.CancelledInvoices++
			cancelledRevenue = cancelledRevenue.Add(inv.Total)
		}
	}

	if overview.TotalInvoices > 0 {
		count := decimal.NewFromInt(int64(overview.TotalInvoices))
		overview.AverageInvoiceValue = grandTotal.Div(count).Round(2)
		overview.ConversionRate = decimal.NewFromInt(int64(overview.PaidInvoices)).
			Mul(decimal.NewFromInt(100)).Div(count).Round(2)
	}

	stats := &DashboardStats{
		Overview: overview,
		StatusDistribution: map[string]int{
			"paid":      overview.PaidInvoices,
			"pending":   overview.PendingInvoices,
			"draft":     overview.DraftInvoices,
			"cancelled": overview.CancelledInvoices,
		},
		RevenueByStatus: map[string]decimal.Decimal{
			"paid":      overview.TotalRevenue,
			"pending":   overview.PendingRevenue,
			"draft":     draftRevenue,
			"cancelled": cancelledRevenue,
		},
	}
	for _, key := range monthKeys {
		stats.MonthlyRevenue = append(stats.MonthlyRevenue, MonthlyRevenue{Month: key, Revenue: monthlyRevenue[key]})
		stats.MonthlyCount = append(stats.MonthlyCount, MonthlyCount{Month: key, Count: monthlyCount[key]})
	}

	recent := make([]model.Invoice, len(invoices))
	copy(recent, invoices)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > 10 {
		recent = recent[:10]
	}
	for _, inv := range recent {
		stats.RecentInvoices = append(stats.RecentInvoices, RecentInvoice{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			CustomerName:  inv.CustomerName,
			Total:         inv.Total,
			Status:        inv.Status,
			CreatedAt:     inv.CreatedAt,
			InvoiceDate:   inv.InvoiceDate,
		})
	}

	return stats, nil
}
