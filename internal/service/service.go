// Package service implements the store's use cases on top of the repositories: point-of-sale
// checkout, distributor orders, stock adjustments, sign-in and reports.
package service

import (
	"sync"

	"dms-service/internal/dms"
	"dms-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultTaxRate is the GST applied to sales and orders
var DefaultTaxRate = decimal.NewFromFloat(0.18)

// Config holds business settings
type Config struct {
	TaxRate decimal.Decimal
}

// Services groups the use cases over one store
type Services struct {
	Auth      *AuthService
	POS       *POSService
	Orders    *OrderService
	Inventory *InventoryService
	Reports   *ReportService
}

// New creates the services. Use cases that touch several collections run one at a time.
func New(store *dms.Store, cfg Config, logger *zap.Logger) *Services {
	if cfg.TaxRate.IsZero() {
		cfg.TaxRate = DefaultTaxRate
	}
	logger = util.LoggerOr(logger)

	mu := &sync.Mutex{}
	auth := NewAuthService(store.Repos, store.Session, store.Now, logger)

	return &Services{
		Auth:      auth,
		POS:       NewPOSService(store.Repos, auth, cfg.TaxRate, store.Now, mu, logger),
		Orders:    NewOrderService(store.Repos, auth, cfg.TaxRate, store.Now, mu, logger),
		Inventory: NewInventoryService(store.Repos, auth, store.Now, mu, logger),
		Reports:   NewReportService(store.Repos, store.Now),
	}
}
