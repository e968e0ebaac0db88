package models

import "time"

// Patch types list the fields an update may touch. A nil field is left unchanged.

type UserPatch struct {
	Username *string
	Password *string
	FullName *string
	Role     *string
}

// Apply merges the patch. Users carry no updatedAt.
func (p UserPatch) Apply(u *User, _ time.Time) {
	setIf(&u.Username, p.Username)
	setIf(&u.Password, p.Password)
	setIf(&u.FullName, p.FullName)
	setIf(&u.Role, p.Role)
}

type ProductPatch struct {
	Name        *string
	Category    *string
	Brand       *string
	Description *string
	Price       *float64
	Stock       *int
	MinStock    *int
	Unit        *string
}

func (p ProductPatch) Apply(prod *Product, now time.Time) {
	setIf(&prod.Name, p.Name)
	setIf(&prod.Category, p.Category)
	setIf(&prod.Brand, p.Brand)
	setIf(&prod.Description, p.Description)
	setIf(&prod.Price, p.Price)
	setIf(&prod.Stock, p.Stock)
	setIf(&prod.MinStock, p.MinStock)
	setIf(&prod.Unit, p.Unit)
	prod.UpdatedAt = now
}

type DistributorPatch struct {
	Name               *string
	ContactPerson      *string
	Email              *string
	Phone              *string
	Address            *string
	City               *string
	State              *string
	Pincode            *string
	GSTNumber          *string
	CreditLimit        *float64
	OutstandingBalance *float64
}

func (p DistributorPatch) Apply(d *Distributor, now time.Time) {
	setIf(&d.Name, p.Name)
	setIf(&d.ContactPerson, p.ContactPerson)
	setIf(&d.Email, p.Email)
	setIf(&d.Phone, p.Phone)
	setIf(&d.Address, p.Address)
	setIf(&d.City, p.City)
	setIf(&d.State, p.State)
	setIf(&d.Pincode, p.Pincode)
	setIf(&d.GSTNumber, p.GSTNumber)
	setIf(&d.CreditLimit, p.CreditLimit)
	setIf(&d.OutstandingBalance, p.OutstandingBalance)
	d.UpdatedAt = now
}

type CustomerPatch struct {
	Name               *string
	Phone              *string
	Email              *string
	Address            *string
	City               *string
	OutstandingBalance *float64
	TotalPurchases     *int
}

func (p CustomerPatch) Apply(c *Customer, now time.Time) {
	setIf(&c.Name, p.Name)
	setIf(&c.Phone, p.Phone)
	setIf(&c.Email, p.Email)
	setIf(&c.Address, p.Address)
	setIf(&c.City, p.City)
	setIf(&c.OutstandingBalance, p.OutstandingBalance)
	setIf(&c.TotalPurchases, p.TotalPurchases)
	c.UpdatedAt = now
}

type SalesOrderPatch struct {
	Items          *[]OrderItem
	Subtotal       *float64
	TaxAmount      *float64
	Discount       *float64
	TotalAmount    *float64
	PaymentStatus  *string
	DeliveryStatus *string
}

func (p SalesOrderPatch) Apply(o *SalesOrder, now time.Time) {
	setIf(&o.Items, p.Items)
	setIf(&o.Subtotal, p.Subtotal)
	setIf(&o.TaxAmount, p.TaxAmount)
	setIf(&o.Discount, p.Discount)
	setIf(&o.TotalAmount, p.TotalAmount)
	setIf(&o.PaymentStatus, p.PaymentStatus)
	setIf(&o.DeliveryStatus, p.DeliveryStatus)
	o.UpdatedAt = now
}

// Stock movements, sales and receipts are append-only ledgers; only annotations may change.

type InventoryTransactionPatch struct {
	Reference *string
	Notes     *string
}

func (p InventoryTransactionPatch) Apply(t *InventoryTransaction, _ time.Time) {
	setIf(&t.Reference, p.Reference)
	setIf(&t.Notes, p.Notes)
}

type POSTransactionPatch struct {
	CustomerName  *string
	CustomerPhone *string
}

func (p POSTransactionPatch) Apply(t *POSTransaction, _ time.Time) {
	setIf(&t.CustomerName, p.CustomerName)
	setIf(&t.CustomerPhone, p.CustomerPhone)
}

type ReceiptPatch struct {
	CustomerName *string
}

func (p ReceiptPatch) Apply(r *ReceiptRecord, _ time.Time) {
	setIf(&r.CustomerName, p.CustomerName)
}

func setIf[V any](dst *V, src *V) {
	if src != nil {
		*dst = *src
	}
}

// Ptr returns a pointer to v, for building patches inline.
func Ptr[V any](v V) *V {
	return &v
}
