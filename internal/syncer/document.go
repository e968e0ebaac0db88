package syncer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"dms-service/internal/models"

	"go.uber.org/zap"
)

// DecodeDocument parses a remote snapshot. The payload must be a JSON object. Each collection
// is decoded on its own: a missing or null field stays nil, and a field that is not a valid
// array of its entity is skipped without affecting the others.
func DecodeDocument(body []byte, logger *zap.Logger) (models.SnapshotDocument, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return models.SnapshotDocument{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if fields == nil {
		return models.SnapshotDocument{}, fmt.Errorf("decode snapshot: document is null")
	}

	return models.SnapshotDocument{
		Users:                 decodeField[models.User](fields, models.FieldUsers, logger),
		Products:              decodeField[models.Product](fields, models.FieldProducts, logger),
		Distributors:          decodeField[models.Distributor](fields, models.FieldDistributors, logger),
		Customers:             decodeField[models.Customer](fields, models.FieldCustomers, logger),
		SalesOrders:           decodeField[models.SalesOrder](fields, models.FieldSalesOrders, logger),
		InventoryTransactions: decodeField[models.InventoryTransaction](fields, models.FieldInventoryTransactions, logger),
		POSTransactions:       decodeField[models.POSTransaction](fields, models.FieldPOSTransactions, logger),
		Receipts:              decodeField[models.ReceiptRecord](fields, models.FieldReceipts, logger),
	}, nil
}

func decodeField[T any](fields map[string]json.RawMessage, name string, logger *zap.Logger) []T {
	raw, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		if logger != nil {
			logger.Warn("Skipping malformed snapshot collection", zap.String("field", name), zap.Error(err))
		}
		return nil
	}
	if items == nil {
		items = []T{}
	}
	return items
}
