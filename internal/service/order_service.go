package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dms-service/internal/models"
	"dms-service/internal/repository"
	"dms-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService handles distributor sales orders
type OrderService struct {
	repos   *repository.Set
	auth    *AuthService
	taxRate decimal.Decimal
	clock   func() time.Time
	mu      *sync.Mutex
	logger  *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repos *repository.Set, auth *AuthService, taxRate decimal.Decimal, clock func() time.Time, mu *sync.Mutex, logger *zap.Logger) *OrderService {
	return &OrderService{repos: repos, auth: auth, taxRate: taxRate, clock: clock, mu: mu, logger: logger}
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	DistributorID string        `json:"distributorId"`
	Lines         []LineRequest `json:"lines"`
	Discount      float64       `json:"discount"`
}

// CreateOrder records goods received from a distributor. Stock grows by each line with a
// Purchase movement and the order total is added to the distributor's outstanding balance.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.SalesOrder, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	user, err := s.auth.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	distributor, ok := s.repos.Distributors.FindByID(ctx, req.DistributorID)
	if !ok {
		return nil, fmt.Errorf("distributor %q: %w", req.DistributorID, ErrNotFound)
	}

	products := indexProducts(s.repos.Products.List(ctx))
	items, subtotal, _, err := priceLines(req.Lines, products)
	if err != nil {
		return nil, err
	}
	totals, err := computeTotals(subtotal, s.taxRate, req.Discount)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	order := models.SalesOrder{
		ID:             uuid.New().String(),
		OrderNumber:    fmt.Sprintf("ORD-%d", now.UnixMilli()),
		DistributorID:  distributor.ID,
		Items:          items,
		Subtotal:       totals.Subtotal,
		TaxAmount:      totals.Tax,
		Discount:       totals.Discount,
		TotalAmount:    totals.Total,
		PaymentStatus:  models.PaymentStatusPending,
		DeliveryStatus: models.DeliveryStatusPending,
		CreatedBy:      user.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repos.SalesOrders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range items {
		p := products[item.ProductID]
		if err := recordMovement(ctx, s.repos, p, p.Stock+item.Quantity, item.Quantity, models.InventoryTypePurchase, order.OrderNumber, "Purchase from "+distributor.Name, user.ID, now); err != nil {
			return nil, err
		}
		p.Stock += item.Quantity
		products[item.ProductID] = p
	}

	balance := toFloat(money(distributor.OutstandingBalance).Add(money(order.TotalAmount)))
	if err := s.repos.Distributors.Update(ctx, distributor.ID, models.DistributorPatch{OutstandingBalance: &balance}); err != nil {
		return nil, fmt.Errorf("failed to update distributor %s: %w", distributor.ID, err)
	}

	util.SalesOrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("distributor_id", distributor.ID),
		zap.Float64("total", order.TotalAmount))
	if distributor.OutstandingBalance <= distributor.CreditLimit && balance > distributor.CreditLimit {
		s.logger.Warn("Distributor over credit limit",
			zap.String("distributor_id", distributor.ID),
			zap.Float64("outstanding", balance),
			zap.Float64("credit_limit", distributor.CreditLimit))
	}

	return &order, nil
}

// UpdateStatus changes the payment and delivery status of an order. Empty values are kept.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, paymentStatus, deliveryStatus string) error {
	if _, ok := s.repos.SalesOrders.FindByID(ctx, orderID); !ok {
		return fmt.Errorf("order %q: %w", orderID, ErrNotFound)
	}

	var patch models.SalesOrderPatch
	if paymentStatus != "" {
		switch paymentStatus {
		case models.PaymentStatusPending, models.PaymentStatusPartial, models.PaymentStatusPaid:
			patch.PaymentStatus = &paymentStatus
		default:
			return fmt.Errorf("unknown payment status %q: %w", paymentStatus, ErrValidation)
		}
	}
	if deliveryStatus != "" {
		switch deliveryStatus {
		case models.DeliveryStatusPending, models.DeliveryStatusProcessing, models.DeliveryStatusShipped, models.DeliveryStatusDelivered:
			patch.DeliveryStatus = &deliveryStatus
		default:
			return fmt.Errorf("unknown delivery status %q: %w", deliveryStatus, ErrValidation)
		}
	}

	return s.repos.SalesOrders.Update(ctx, orderID, patch)
}
