package models

import "time"

// Snapshot is the full data set replicated to the remote endpoint as one JSON document.
type Snapshot struct {
	Users                 []User                 `json:"users"`
	Products              []Product              `json:"products"`
	Distributors          []Distributor          `json:"distributors"`
	Customers             []Customer             `json:"customers"`
	SalesOrders           []SalesOrder           `json:"salesOrders"`
	InventoryTransactions []InventoryTransaction `json:"inventoryTransactions"`
	POSTransactions       []POSTransaction       `json:"posTransactions"`
	Receipts              []ReceiptRecord        `json:"receipts"`
	UpdatedAt             time.Time              `json:"updatedAt"`
}

// SnapshotDocument is a remote snapshot where any collection may be missing.
// A nil slice means the remote side did not include that collection.
type SnapshotDocument struct {
	Users                 []User
	Products              []Product
	Distributors          []Distributor
	Customers             []Customer
	SalesOrders           []SalesOrder
	InventoryTransactions []InventoryTransaction
	POSTransactions       []POSTransaction
	Receipts              []ReceiptRecord
}

// Snapshot field names as they appear on the wire
const (
	FieldUsers                 = "users"
	FieldProducts              = "products"
	FieldDistributors          = "distributors"
	FieldCustomers             = "customers"
	FieldSalesOrders           = "salesOrders"
	FieldInventoryTransactions = "inventoryTransactions"
	FieldPOSTransactions       = "posTransactions"
	FieldReceipts              = "receipts"
)

// Counts returns the number of records per collection, keyed by wire field name.
func (s *Snapshot) Counts() map[string]int {
	return map[string]int{
		FieldUsers:                 len(s.Users),
		FieldProducts:              len(s.Products),
		FieldDistributors:          len(s.Distributors),
		FieldCustomers:             len(s.Customers),
		FieldSalesOrders:           len(s.SalesOrders),
		FieldInventoryTransactions: len(s.InventoryTransactions),
		FieldPOSTransactions:       len(s.POSTransactions),
		FieldReceipts:              len(s.Receipts),
	}
}
