package service

import (
	"context"
	"testing"

	"dms-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutWritesAllRecords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.login(t)

	res, err := f.svc.POS.Checkout(ctx, CheckoutRequest{
		Lines:          []LineRequest{{ProductID: "p1", Quantity: 2}},
		CustomerID:     "c1",
		PaymentMethod:  models.PaymentMethodCash,
		AmountReceived: 300,
	})
	require.NoError(t, err)

	tx := res.Transaction
	assert.Equal(t, 200.0, tx.Subtotal)
	assert.Equal(t, 36.0, tx.TaxAmount)
	assert.Equal(t, 236.0, tx.TotalAmount)
	assert.Equal(t, 64.0, tx.Change)
	assert.Equal(t, "Ali", tx.CustomerName)
	assert.Equal(t, "1", tx.CreatedBy)
	assert.Equal(t, "REC-1781519400000", tx.ReceiptNumber)

	assert.Equal(t, 8, f.product(t, "p1").Stock)

	customer, ok := f.store.Repos.CustomerByID(ctx, "c1")
	require.True(t, ok)
	assert.Equal(t, 236.0, customer.OutstandingBalance)
	assert.Equal(t, 1, customer.TotalPurchases)

	txs := f.store.Repos.POSTransactions.List(ctx)
	require.Len(t, txs, 1)
	receipts := f.store.Repos.Receipts.List(ctx)
	require.Len(t, receipts, 1)
	assert.Equal(t, txs[0].ID, receipts[0].TransactionID)
	assert.Equal(t, tx.ReceiptNumber, receipts[0].ReceiptNumber)
	assert.Contains(t, receipts[0].HTML, "Test Flour")
	assert.Contains(t, receipts[0].HTML, "Rs 236.00")
	assert.Contains(t, receipts[0].HTML, "18% GST")

	movements := f.store.Repos.InventoryTransactions.List(ctx)
	require.Len(t, movements, 1)
	assert.Equal(t, models.InventoryTypeSale, movements[0].Type)
	assert.Equal(t, -2, movements[0].Quantity)
	assert.Equal(t, tx.ReceiptNumber, movements[0].Reference)
	assert.Equal(t, "POS Sale - Ali", movements[0].Notes)
}

func TestCheckoutWalkInCustomer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.login(t)

	res, err := f.svc.POS.Checkout(ctx, CheckoutRequest{
		Lines:          []LineRequest{{ProductID: "p1", Quantity: 1}, {ProductID: "p1", Quantity: 1}},
		PaymentMethod:  models.PaymentMethodCard,
		AmountReceived: 236,
	})
	require.NoError(t, err)
	assert.Zero(t, res.Transaction.Change)
	assert.NotContains(t, res.Receipt.HTML, "Change:")

	assert.Equal(t, 8, f.product(t, "p1").Stock)
	assert.Len(t, f.store.Repos.InventoryTransactions.List(ctx), 2)

	customer, _ := f.store.Repos.CustomerByID(ctx, "c1")
	assert.Zero(t, customer.TotalPurchases)
}

func TestCheckoutRequiresLogin(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.POS.Checkout(context.Background(), CheckoutRequest{
		Lines: []LineRequest{{ProductID: "p1", Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestCheckoutRejectsWithoutWriting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.login(t)

	tests := []struct {
		name string
		req  CheckoutRequest
		want error
	}{
		{"empty cart", CheckoutRequest{}, ErrValidation},
		{"zero quantity", CheckoutRequest{Lines: []LineRequest{{ProductID: "p1"}}}, ErrValidation},
		{"unknown product", CheckoutRequest{Lines: []LineRequest{{ProductID: "nope", Quantity: 1}}}, ErrNotFound},
		{"over stock", CheckoutRequest{Lines: []LineRequest{{ProductID: "p1", Quantity: 11}}}, ErrInsufficientStock},
		{"over stock across lines", CheckoutRequest{Lines: []LineRequest{{ProductID: "p1", Quantity: 6}, {ProductID: "p1", Quantity: 5}}}, ErrInsufficientStock},
		{"unknown customer", CheckoutRequest{Lines: []LineRequest{{ProductID: "p1", Quantity: 1}}, CustomerID: "c9"}, ErrNotFound},
		{"unknown payment method", CheckoutRequest{Lines: []LineRequest{{ProductID: "p1", Quantity: 1}}, PaymentMethod: "Cheque"}, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.POS.Checkout(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, 10, f.product(t, "p1").Stock)
	assert.Empty(t, f.store.Repos.POSTransactions.List(ctx))
	assert.Empty(t, f.store.Repos.Receipts.List(ctx))
	assert.Empty(t, f.store.Repos.InventoryTransactions.List(ctx))
}
