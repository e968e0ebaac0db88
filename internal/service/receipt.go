package service

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"dms-service/internal/models"

	"github.com/shopspring/decimal"
)

// BusinessName is printed at the top of every receipt
const BusinessName = "Shah Distributors"

//go:embed templates/receipt.html
var templateFS embed.FS

var receiptTemplate = template.Must(
	template.New("receipt.html").Funcs(template.FuncMap{
		"rs":  func(v float64) string { return FormatRupees(v, false) },
		"rs2": func(v float64) string { return FormatRupees(v, true) },
	}).ParseFS(templateFS, "templates/receipt.html"),
)

type receiptLine struct {
	Name     string
	Quantity int
	Price    float64
	Total    float64
}

type receiptView struct {
	Business       string
	ReceiptNumber  string
	CreatedAt      time.Time
	CustomerName   string
	Lines          []receiptLine
	Subtotal       float64
	TaxLabel       string
	TaxAmount      float64
	Discount       float64
	TotalAmount    float64
	PaymentMethod  string
	AmountReceived float64
	Change         float64
}

// RenderReceipt renders the printable receipt of tx. Product names are resolved from products
// at render time; the result is stored as-is and never re-rendered.
func RenderReceipt(tx models.POSTransaction, products map[string]models.Product, taxRate decimal.Decimal) (string, error) {
	view := receiptView{
		Business:       BusinessName,
		ReceiptNumber:  tx.ReceiptNumber,
		CreatedAt:      tx.CreatedAt,
		CustomerName:   tx.CustomerName,
		Subtotal:       tx.Subtotal,
		TaxLabel:       taxRate.Mul(decimal.NewFromInt(100)).Round(2).String() + "% GST",
		TaxAmount:      tx.TaxAmount,
		Discount:       tx.Discount,
		TotalAmount:    tx.TotalAmount,
		PaymentMethod:  tx.PaymentMethod,
		AmountReceived: tx.AmountReceived,
		Change:         tx.Change,
	}
	for _, item := range tx.Items {
		name := "Unknown"
		if p, ok := products[item.ProductID]; ok {
			name = p.Name
		}
		view.Lines = append(view.Lines, receiptLine{Name: name, Quantity: item.Quantity, Price: item.Price, Total: item.Total})
	}

	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render receipt %s: %w", tx.ReceiptNumber, err)
	}
	return buf.String(), nil
}

// FormatRupees formats an amount as "Rs 1,234.5". With fixed set, two decimals are always shown.
func FormatRupees(v float64, fixed bool) string {
	d := decimal.NewFromFloat(v).Round(2)
	s := d.StringFixed(2)
	if !fixed {
		s = d.String()
	}

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return "Rs " + sign + b.String()
}
