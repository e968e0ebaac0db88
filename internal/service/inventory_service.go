package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dms-service/internal/models"
	"dms-service/internal/repository"

	"go.uber.org/zap"
)

// DefaultAdjustmentReference is used when a manual adjustment carries no reference
const DefaultAdjustmentReference = "Manual adjustment"

// StockChange describes a manual stock movement of one product
type StockChange struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Reference string `json:"reference,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// InventoryService handles stock movements entered by hand
type InventoryService struct {
	repos  *repository.Set
	auth   *AuthService
	clock  func() time.Time
	mu     *sync.Mutex
	logger *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(repos *repository.Set, auth *AuthService, clock func() time.Time, mu *sync.Mutex, logger *zap.Logger) *InventoryService {
	return &InventoryService{repos: repos, auth: auth, clock: clock, mu: mu, logger: logger}
}

// AddStock increases stock. kind is Purchase, Adjustment or Return.
func (s *InventoryService) AddStock(ctx context.Context, kind string, change StockChange) (*models.Product, error) {
	switch kind {
	case models.InventoryTypePurchase, models.InventoryTypeAdjustment, models.InventoryTypeReturn:
	default:
		return nil, fmt.Errorf("stock cannot be added as %q: %w", kind, ErrValidation)
	}
	if change.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrValidation)
	}

	return s.apply(ctx, change.ProductID, func(p models.Product) (int, int, error) {
		return p.Stock + change.Quantity, change.Quantity, nil
	}, kind, change.Reference, change.Notes)
}

// ReduceStock takes stock out. Taking more than is on hand fails with ErrInsufficientStock.
func (s *InventoryService) ReduceStock(ctx context.Context, change StockChange) (*models.Product, error) {
	if change.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrValidation)
	}
	notes := change.Notes
	if notes == "" {
		notes = "Stock reduction/adjustment"
	}

	return s.apply(ctx, change.ProductID, func(p models.Product) (int, int, error) {
		if change.Quantity > p.Stock {
			return 0, 0, fmt.Errorf("%s has %d %s, cannot reduce by %d: %w", p.Name, p.Stock, p.Unit, change.Quantity, ErrInsufficientStock)
		}
		return p.Stock - change.Quantity, -change.Quantity, nil
	}, models.InventoryTypeAdjustment, change.Reference, notes)
}

// Adjust corrects stock in either direction. The quantity is at least one and stock never
// drops below zero; the recorded movement keeps the requested quantity.
func (s *InventoryService) Adjust(ctx context.Context, reduce bool, change StockChange) (*models.Product, error) {
	qty := change.Quantity
	if qty < 1 {
		qty = 1
	}
	delta := qty
	if reduce {
		delta = -qty
	}
	reference := change.Reference
	if reference == "" {
		reference = DefaultAdjustmentReference
	}

	return s.apply(ctx, change.ProductID, func(p models.Product) (int, int, error) {
		stock := p.Stock + delta
		if stock < 0 {
			stock = 0
		}
		return stock, delta, nil
	}, models.InventoryTypeAdjustment, reference, change.Notes)
}

// Movements returns the inventory transactions of a product, or all of them for an empty id.
func (s *InventoryService) Movements(ctx context.Context, productID string) []models.InventoryTransaction {
	if productID == "" {
		return s.repos.InventoryTransactions.List(ctx)
	}
	return s.repos.InventoryTransactions.Find(ctx, func(t models.InventoryTransaction) bool {
		return t.ProductID == productID
	})
}

func (s *InventoryService) apply(ctx context.Context, productID string, next func(models.Product) (int, int, error), kind, reference, notes string) (*models.Product, error) {
	user, err := s.auth.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.repos.Products.FindByID(ctx, productID)
	if !ok {
		return nil, fmt.Errorf("product %q: %w", productID, ErrNotFound)
	}
	stock, delta, err := next(p)
	if err != nil {
		return nil, err
	}

	if err := recordMovement(ctx, s.repos, p, stock, delta, kind, reference, notes, user.ID, s.clock()); err != nil {
		return nil, err
	}
	s.logger.Info("Stock changed",
		zap.String("product_id", p.ID),
		zap.String("type", kind),
		zap.Int("delta", delta),
		zap.Int("stock", stock))

	updated, _ := s.repos.Products.FindByID(ctx, productID)
	return &updated, nil
}
