package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dms-service/internal/models"
	"dms-service/internal/repository"
	"dms-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CheckoutRequest is a point-of-sale cart ready to be paid
type CheckoutRequest struct {
	Lines          []LineRequest `json:"lines"`
	CustomerID     string        `json:"customerId,omitempty"`
	CustomerName   string        `json:"customerName,omitempty"`
	CustomerPhone  string        `json:"customerPhone,omitempty"`
	Discount       float64       `json:"discount"`
	PaymentMethod  string        `json:"paymentMethod"`
	AmountReceived float64       `json:"amountReceived"`
}

// CheckoutResult holds the records written by a checkout
type CheckoutResult struct {
	Transaction models.POSTransaction
	Receipt     models.ReceiptRecord
}

// POSService handles point-of-sale checkouts
type POSService struct {
	repos   *repository.Set
	auth    *AuthService
	taxRate decimal.Decimal
	clock   func() time.Time
	mu      *sync.Mutex
	logger  *zap.Logger
}

// NewPOSService creates a new POS service
func NewPOSService(repos *repository.Set, auth *AuthService, taxRate decimal.Decimal, clock func() time.Time, mu *sync.Mutex, logger *zap.Logger) *POSService {
	return &POSService{repos: repos, auth: auth, taxRate: taxRate, clock: clock, mu: mu, logger: logger}
}

// Checkout sells the cart to the current user's customer. It writes the transaction, its
// receipt, one Sale inventory movement per line, the reduced stock and, for a known customer,
// the grown outstanding balance.
func (s *POSService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	ctx, span := util.StartSpan(ctx, "POSService.Checkout")
	defer span.End()

	user, err := s.auth.requireUser(ctx)
	if err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("unauthenticated").Inc()
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products := indexProducts(s.repos.Products.List(ctx))
	items, subtotal, need, err := priceLines(req.Lines, products)
	if err != nil {
		util.CheckoutsFailedTotal.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}
	for id, n := range need {
		if p := products[id]; p.Stock < n {
			util.CheckoutsFailedTotal.WithLabelValues("insufficient_stock").Inc()
			return nil, fmt.Errorf("%s has %d %s, %d requested: %w", p.Name, p.Stock, p.Unit, n, ErrInsufficientStock)
		}
	}

	method, err := paymentMethod(req.PaymentMethod)
	if err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("invalid_request").Inc()
		return nil, err
	}
	totals, err := computeTotals(subtotal, s.taxRate, req.Discount)
	if err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("invalid_request").Inc()
		return nil, err
	}

	var customer *models.Customer
	if req.CustomerID != "" {
		c, ok := s.repos.CustomerByID(ctx, req.CustomerID)
		if !ok {
			util.CheckoutsFailedTotal.WithLabelValues("unknown_customer").Inc()
			return nil, fmt.Errorf("customer %s: %w", req.CustomerID, ErrNotFound)
		}
		customer = &c
	}

	now := s.clock()
	tx := models.POSTransaction{
		ID:             uuid.New().String(),
		ReceiptNumber:  fmt.Sprintf("REC-%d", now.UnixMilli()),
		CustomerID:     req.CustomerID,
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		Items:          items,
		Subtotal:       totals.Subtotal,
		TaxAmount:      totals.Tax,
		Discount:       totals.Discount,
		TotalAmount:    totals.Total,
		PaymentMethod:  method,
		AmountReceived: toFloat(money(req.AmountReceived)),
		Change:         toFloat(money(req.AmountReceived).Sub(money(totals.Total))),
		CreatedBy:      user.ID,
		CreatedAt:      now,
	}
	if customer != nil {
		if tx.CustomerName == "" {
			tx.CustomerName = customer.Name
		}
		if tx.CustomerPhone == "" {
			tx.CustomerPhone = customer.Phone
		}
	}
	span.SetAttributes(attribute.String("receipt_number", tx.ReceiptNumber), attribute.Int("lines", len(items)))

	html, err := RenderReceipt(tx, products, s.taxRate)
	if err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("render_error").Inc()
		return nil, err
	}
	receipt := models.ReceiptRecord{
		ID:            uuid.New().String(),
		ReceiptNumber: tx.ReceiptNumber,
		TransactionID: tx.ID,
		CustomerName:  tx.CustomerName,
		CreatedAt:     now,
		HTML:          html,
	}

	if err := s.repos.POSTransactions.Create(ctx, tx); err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}
	if err := s.repos.Receipts.Create(ctx, receipt); err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("failed to save receipt: %w", err)
	}

	notes := "POS Sale"
	if tx.CustomerName != "" {
		notes += " - " + tx.CustomerName
	}
	for _, item := range items {
		p := products[item.ProductID]
		if err := recordMovement(ctx, s.repos, p, p.Stock-item.Quantity, -item.Quantity, models.InventoryTypeSale, tx.ReceiptNumber, notes, user.ID, now); err != nil {
			return nil, err
		}
		p.Stock -= item.Quantity
		products[item.ProductID] = p
	}

	if customer != nil {
		balance := toFloat(money(customer.OutstandingBalance).Add(money(tx.TotalAmount)))
		purchases := customer.TotalPurchases + 1
		if err := s.repos.Customers.Update(ctx, customer.ID, models.CustomerPatch{
			OutstandingBalance: &balance,
			TotalPurchases:     &purchases,
		}); err != nil {
			return nil, fmt.Errorf("failed to update customer %s: %w", customer.ID, err)
		}
	}

	util.CheckoutsTotal.Inc()
	s.logger.Info("Checkout completed",
		zap.String("receipt_number", tx.ReceiptNumber),
		zap.String("customer_id", tx.CustomerID),
		zap.Float64("total", tx.TotalAmount))

	return &CheckoutResult{Transaction: tx, Receipt: receipt}, nil
}

// recordMovement sets the product's stock and records a movement of delta.
func recordMovement(ctx context.Context, repos *repository.Set, p models.Product, stock, delta int, kind, reference, notes, userID string, now time.Time) error {
	if err := repos.Products.Update(ctx, p.ID, models.ProductPatch{Stock: &stock}); err != nil {
		return fmt.Errorf("failed to update stock of %s: %w", p.ID, err)
	}
	if err := repos.InventoryTransactions.Create(ctx, models.InventoryTransaction{
		ID:        uuid.New().String(),
		ProductID: p.ID,
		Type:      kind,
		Quantity:  delta,
		Reference: reference,
		Notes:     notes,
		CreatedBy: userID,
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("failed to record %s of %s: %w", kind, p.ID, err)
	}
	util.StockMovementsTotal.WithLabelValues(kind).Inc()
	return nil
}

func paymentMethod(m string) (string, error) {
	switch m {
	case "":
		return models.PaymentMethodCash, nil
	case models.PaymentMethodCash, models.PaymentMethodCard, models.PaymentMethodUPI, models.PaymentMethodOther:
		return m, nil
	default:
		return "", fmt.Errorf("unknown payment method %q: %w", m, ErrValidation)
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "unknown_product"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "invalid_request"
	}
}
