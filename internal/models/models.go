package models

import "time"

// Record is implemented by every entity kept in a collection.
type Record interface {
	RecordID() string
}

// Patch applies a partial update to a record of type T.
type Patch[T any] interface {
	Apply(rec *T, now time.Time)
}

// User roles
const (
	RoleAdmin            = "Admin"
	RoleSales            = "Sales"
	RoleInventoryManager = "Inventory Manager"
)

// Sales order payment statuses
const (
	PaymentStatusPending = "Pending"
	PaymentStatusPartial = "Partial"
	PaymentStatusPaid    = "Paid"
)

// Sales order delivery statuses
const (
	DeliveryStatusPending    = "Pending"
	DeliveryStatusProcessing = "Processing"
	DeliveryStatusShipped    = "Shipped"
	DeliveryStatusDelivered  = "Delivered"
)

// POS payment methods
const (
	PaymentMethodCash  = "Cash"
	PaymentMethodCard  = "Card"
	PaymentMethodUPI   = "UPI"
	PaymentMethodOther = "Other"
)

// Inventory transaction types
const (
	InventoryTypePurchase   = "Purchase"
	InventoryTypeSale       = "Sale"
	InventoryTypeAdjustment = "Adjustment"
	InventoryTypeReturn     = "Return"
)

// User is an application account. Password is plaintext or a bcrypt hash.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) RecordID() string { return u.ID }

// DefaultAdmin is the administrator created when no user exists yet.
func DefaultAdmin(now time.Time) User {
	return User{
		ID:        "1",
		Username:  "admin",
		Password:  "admin123",
		FullName:  "System Administrator",
		Role:      RoleAdmin,
		CreatedAt: now,
	}
}

// Product is a catalog entry with its stock level
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Brand       string    `json:"brand"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	MinStock    int       `json:"minStock"`
	Unit        string    `json:"unit"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p Product) RecordID() string { return p.ID }

// LowStock reports whether stock has reached the reorder threshold.
func (p Product) LowStock() bool { return p.Stock <= p.MinStock }

// Distributor is a wholesale partner supplying products
type Distributor struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	ContactPerson      string    `json:"contactPerson"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	Address            string    `json:"address"`
	City               string    `json:"city"`
	State              string    `json:"state"`
	Pincode            string    `json:"pincode"`
	GSTNumber          string    `json:"gstNumber"`
	CreditLimit        float64   `json:"creditLimit"`
	OutstandingBalance float64   `json:"outstandingBalance"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (d Distributor) RecordID() string { return d.ID }

// OverCreditLimit reports whether the outstanding balance exceeds the credit limit.
func (d Distributor) OverCreditLimit() bool { return d.OutstandingBalance > d.CreditLimit }

// Customer is a retail buyer served at the point of sale
type Customer struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Phone              string    `json:"phone"`
	Email              string    `json:"email,omitempty"`
	Address            string    `json:"address,omitempty"`
	City               string    `json:"city,omitempty"`
	OutstandingBalance float64   `json:"outstandingBalance"`
	TotalPurchases     int       `json:"totalPurchases"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (c Customer) RecordID() string { return c.ID }

// OrderItem is one line of a sales order or POS sale
type OrderItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Total     float64 `json:"total"`
}

// SalesOrder is a purchase from a distributor
type SalesOrder struct {
	ID             string      `json:"id"`
	OrderNumber    string      `json:"orderNumber"`
	DistributorID  string      `json:"distributorId"`
	Items          []OrderItem `json:"items"`
	Subtotal       float64     `json:"subtotal"`
	TaxAmount      float64     `json:"taxAmount"`
	Discount       float64     `json:"discount"`
	TotalAmount    float64     `json:"totalAmount"`
	PaymentStatus  string      `json:"paymentStatus"`
	DeliveryStatus string      `json:"deliveryStatus"`
	CreatedBy      string      `json:"createdBy"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

func (o SalesOrder) RecordID() string { return o.ID }

// POSTransaction is a completed point-of-sale checkout
type POSTransaction struct {
	ID             string      `json:"id"`
	ReceiptNumber  string      `json:"receiptNumber"`
	CustomerID     string      `json:"customerId,omitempty"`
	CustomerName   string      `json:"customerName,omitempty"`
	CustomerPhone  string      `json:"customerPhone,omitempty"`
	Items          []OrderItem `json:"items"`
	Subtotal       float64     `json:"subtotal"`
	TaxAmount      float64     `json:"taxAmount"`
	Discount       float64     `json:"discount"`
	TotalAmount    float64     `json:"totalAmount"`
	PaymentMethod  string      `json:"paymentMethod"`
	AmountReceived float64     `json:"amountReceived"`
	Change         float64     `json:"change"`
	CreatedBy      string      `json:"createdBy"`
	CreatedAt      time.Time   `json:"createdAt"`
}

func (t POSTransaction) RecordID() string { return t.ID }

// InventoryTransaction records a stock movement. Quantity is signed: negative means stock out.
type InventoryTransaction struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Type      string    `json:"type"`
	Quantity  int       `json:"quantity"`
	Reference string    `json:"reference,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (t InventoryTransaction) RecordID() string { return t.ID }

// ReceiptRecord keeps the rendered receipt of a POS transaction as it was printed.
type ReceiptRecord struct {
	ID            string    `json:"id"`
	ReceiptNumber string    `json:"receiptNumber"`
	TransactionID string    `json:"transactionId"`
	CustomerName  string    `json:"customerName,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	HTML          string    `json:"html"`
}

func (r ReceiptRecord) RecordID() string { return r.ID }
