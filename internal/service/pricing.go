package service

import (
	"fmt"

	"dms-service/internal/models"

	"github.com/shopspring/decimal"
)

// LineRequest is one cart or order line. Price overrides the catalog price when set.
type LineRequest struct {
	ProductID string   `json:"productId"`
	Quantity  int      `json:"quantity"`
	Price     *float64 `json:"price,omitempty"`
}

// Totals are the money figures of a sale, rounded to two decimals.
type Totals struct {
	Subtotal float64
	Tax      float64
	Discount float64
	Total    float64
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func toFloat(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// priceLines resolves every line against the catalog and returns the priced items and their
// subtotal. Quantities per product are summed into need for the stock check.
func priceLines(lines []LineRequest, products map[string]models.Product) ([]models.OrderItem, decimal.Decimal, map[string]int, error) {
	if len(lines) == 0 {
		return nil, decimal.Zero, nil, fmt.Errorf("no items: %w", ErrValidation)
	}

	items := make([]models.OrderItem, 0, len(lines))
	need := make(map[string]int, len(lines))
	subtotal := decimal.Zero

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, decimal.Zero, nil, fmt.Errorf("quantity for product %s must be positive: %w", line.ProductID, ErrValidation)
		}
		product, ok := products[line.ProductID]
		if !ok {
			return nil, decimal.Zero, nil, fmt.Errorf("product %s: %w", line.ProductID, ErrNotFound)
		}

		price := money(product.Price)
		if line.Price != nil {
			if *line.Price < 0 {
				return nil, decimal.Zero, nil, fmt.Errorf("price for product %s is negative: %w", line.ProductID, ErrValidation)
			}
			price = money(*line.Price)
		}
		total := price.Mul(decimal.NewFromInt(int64(line.Quantity)))

		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     toFloat(price),
			Total:     toFloat(total),
		})
		need[line.ProductID] += line.Quantity
		subtotal = subtotal.Add(total)
	}
	return items, subtotal, need, nil
}

// computeTotals applies tax on the subtotal and then the discount.
func computeTotals(subtotal, taxRate decimal.Decimal, discount float64) (Totals, error) {
	if discount < 0 {
		return Totals{}, fmt.Errorf("discount is negative: %w", ErrValidation)
	}
	tax := subtotal.Mul(taxRate)
	d := money(discount)
	return Totals{
		Subtotal: toFloat(subtotal),
		Tax:      toFloat(tax),
		Discount: toFloat(d),
		Total:    toFloat(subtotal.Add(tax).Sub(d)),
	}, nil
}

func indexProducts(products []models.Product) map[string]models.Product {
	m := make(map[string]models.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return m
}
