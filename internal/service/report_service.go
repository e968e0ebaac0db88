package service

import (
	"context"
	"time"

	"dms-service/internal/models"
	"dms-service/internal/repository"

	"github.com/shopspring/decimal"
)

// DashboardSummary is the overview shown after sign-in
type DashboardSummary struct {
	TotalProducts     int              `json:"totalProducts"`
	LowStockProducts  []models.Product `json:"lowStockProducts"`
	PendingOrders     int              `json:"pendingOrders"`
	TotalRevenue      float64          `json:"totalRevenue"`
	MonthlyRevenue    float64          `json:"monthlyRevenue"`
	TotalDistributors int              `json:"totalDistributors"`
}

// DailySales summarizes the POS transactions of one day
type DailySales struct {
	Date          string                  `json:"date"`
	Transactions  []models.POSTransaction `json:"transactions"`
	TotalSales    float64                 `json:"totalSales"`
	ItemsSold     int                     `json:"itemsSold"`
	AverageTicket float64                 `json:"averageTicket"`
}

// ReportService computes read-only summaries
type ReportService struct {
	repos *repository.Set
	clock func() time.Time
}

// NewReportService creates a new report service
func NewReportService(repos *repository.Set, clock func() time.Time) *ReportService {
	return &ReportService{repos: repos, clock: clock}
}

// Dashboard summarizes stock, distributor orders and revenue. Revenue is the sum of sales
// order totals; monthly revenue counts orders created since the start of the current month.
func (s *ReportService) Dashboard(ctx context.Context) DashboardSummary {
	products := s.repos.Products.List(ctx)
	orders := s.repos.SalesOrders.List(ctx)

	summary := DashboardSummary{
		TotalProducts:     len(products),
		LowStockProducts:  []models.Product{},
		TotalDistributors: s.repos.Distributors.Count(ctx),
	}
	for _, p := range products {
		if p.LowStock() {
			summary.LowStockProducts = append(summary.LowStockProducts, p)
		}
	}

	now := s.clock()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	total, monthly := decimal.Zero, decimal.Zero
	for _, o := range orders {
		if o.DeliveryStatus == models.DeliveryStatusPending {
			summary.PendingOrders++
		}
		total = total.Add(money(o.TotalAmount))
		if !o.CreatedAt.Before(monthStart) {
			monthly = monthly.Add(money(o.TotalAmount))
		}
	}
	summary.TotalRevenue = toFloat(total)
	summary.MonthlyRevenue = toFloat(monthly)
	return summary
}

// DailySales returns the POS activity of the calendar day containing day, in day's location.
func (s *ReportService) DailySales(ctx context.Context, day time.Time) DailySales {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	txs := s.repos.POSTransactions.Find(ctx, func(t models.POSTransaction) bool {
		at := t.CreatedAt.In(day.Location())
		return !at.Before(start) && at.Before(end)
	})

	report := DailySales{Date: start.Format("2006-01-02"), Transactions: txs}
	if report.Transactions == nil {
		report.Transactions = []models.POSTransaction{}
	}

	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(money(t.TotalAmount))
		report.ItemsSold += len(t.Items)
	}
	report.TotalSales = toFloat(total)
	if len(txs) > 0 {
		report.AverageTicket = toFloat(total.Div(decimal.NewFromInt(int64(len(txs)))))
	}
	return report
}
