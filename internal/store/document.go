package store

import (
	"time"

	"dms-service/internal/models"
)

// Normalize turns a possibly partial document into a complete snapshot: every collection is
// an array, an administrator exists and the update time is now.
func Normalize(doc models.SnapshotDocument, now time.Time) models.Snapshot {
	snap := models.Snapshot{
		Users:                 ensure(doc.Users),
		Products:              ensure(doc.Products),
		Distributors:          ensure(doc.Distributors),
		Customers:             ensure(doc.Customers),
		SalesOrders:           ensure(doc.SalesOrders),
		InventoryTransactions: ensure(doc.InventoryTransactions),
		POSTransactions:       ensure(doc.POSTransactions),
		Receipts:              ensure(doc.Receipts),
		UpdatedAt:             now,
	}
	if len(snap.Users) == 0 {
		snap.Users = append(snap.Users, models.DefaultAdmin(now))
	}
	return snap
}

func ensure[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
