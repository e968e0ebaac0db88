package repository

import (
	"context"
	"sync"
	"time"

	"dms-service/internal/collection"
	"dms-service/internal/models"
	"dms-service/internal/util"

	"go.uber.org/zap"
)

// Collection storage keys in the durable scope
const (
	KeyUsers                 = "dms_users"
	KeyProducts              = "dms_products"
	KeyDistributors          = "dms_distributors"
	KeyCustomers             = "dms_customers"
	KeySalesOrders           = "dms_sales_orders"
	KeyInventoryTransactions = "dms_inventory_transactions"
	KeyPOSTransactions       = "dms_pos_transactions"
	KeyReceipts              = "dms_receipts"
)

type (
	UserRepository                 = Repository[models.User, models.UserPatch]
	ProductRepository              = Repository[models.Product, models.ProductPatch]
	DistributorRepository          = Repository[models.Distributor, models.DistributorPatch]
	CustomerRepository             = Repository[models.Customer, models.CustomerPatch]
	SalesOrderRepository           = Repository[models.SalesOrder, models.SalesOrderPatch]
	InventoryTransactionRepository = Repository[models.InventoryTransaction, models.InventoryTransactionPatch]
	POSTransactionRepository       = Repository[models.POSTransaction, models.POSTransactionPatch]
	ReceiptRepository              = Repository[models.ReceiptRecord, models.ReceiptPatch]
)

// Set groups the eight entity repositories over one data set.
type Set struct {
	Users                 *UserRepository
	Products              *ProductRepository
	Distributors          *DistributorRepository
	Customers             *CustomerRepository
	SalesOrders           *SalesOrderRepository
	InventoryTransactions *InventoryTransactionRepository
	POSTransactions       *POSTransactionRepository
	Receipts              *ReceiptRepository
}

// NewSet creates the repositories. A nil scheduler disables replication; a nil clock uses time.Now.
func NewSet(data *Dataset, sched Scheduler, clock func() time.Time) *Set {
	if sched == nil {
		sched = noopScheduler{}
	}
	if clock == nil {
		clock = time.Now
	}
	return &Set{
		Users:                 newRepository[models.User, models.UserPatch](KeyUsers, data, sched, clock),
		Products:              newRepository[models.Product, models.ProductPatch](KeyProducts, data, sched, clock),
		Distributors:          newRepository[models.Distributor, models.DistributorPatch](KeyDistributors, data, sched, clock),
		Customers:             newRepository[models.Customer, models.CustomerPatch](KeyCustomers, data, sched, clock),
		SalesOrders:           newRepository[models.SalesOrder, models.SalesOrderPatch](KeySalesOrders, data, sched, clock),
		InventoryTransactions: newRepository[models.InventoryTransaction, models.InventoryTransactionPatch](KeyInventoryTransactions, data, sched, clock),
		POSTransactions:       newRepository[models.POSTransaction, models.POSTransactionPatch](KeyPOSTransactions, data, sched, clock),
		Receipts:              newRepository[models.ReceiptRecord, models.ReceiptPatch](KeyReceipts, data, sched, clock),
	}
}

// UserByUsername finds a user by login name
func (s *Set) UserByUsername(ctx context.Context, username string) (models.User, bool) {
	users := s.Users.Find(ctx, func(u models.User) bool { return u.Username == username })
	if len(users) == 0 {
		return models.User{}, false
	}
	return users[0], true
}

// CustomerByID finds a customer by id
func (s *Set) CustomerByID(ctx context.Context, id string) (models.Customer, bool) {
	return s.Customers.FindByID(ctx, id)
}

// PurchasesForCustomer returns the POS transactions billed to customerID
func (s *Set) PurchasesForCustomer(ctx context.Context, customerID string) []models.POSTransaction {
	return s.POSTransactions.Find(ctx, func(t models.POSTransaction) bool { return t.CustomerID == customerID })
}

// Dataset is the whole collection set seen as one snapshot. Repositories built on the same
// Dataset share its lock so imports never interleave with a read-modify-write.
type Dataset struct {
	coll   *collection.Store
	clock  func() time.Time
	logger *zap.Logger
	mu     sync.Mutex
}

// NewDataset creates a data set over coll
func NewDataset(coll *collection.Store, clock func() time.Time, logger *zap.Logger) *Dataset {
	if clock == nil {
		clock = time.Now
	}
	return &Dataset{coll: coll, clock: clock, logger: util.LoggerOr(logger)}
}

// Export reads every collection into a snapshot
func (d *Dataset) Export(ctx context.Context) models.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	return models.Snapshot{
		Users:                 collection.GetArray[models.User](ctx, d.coll, KeyUsers),
		Products:              collection.GetArray[models.Product](ctx, d.coll, KeyProducts),
		Distributors:          collection.GetArray[models.Distributor](ctx, d.coll, KeyDistributors),
		Customers:             collection.GetArray[models.Customer](ctx, d.coll, KeyCustomers),
		SalesOrders:           collection.GetArray[models.SalesOrder](ctx, d.coll, KeySalesOrders),
		InventoryTransactions: collection.GetArray[models.InventoryTransaction](ctx, d.coll, KeyInventoryTransactions),
		POSTransactions:       collection.GetArray[models.POSTransaction](ctx, d.coll, KeyPOSTransactions),
		Receipts:              collection.GetArray[models.ReceiptRecord](ctx, d.coll, KeyReceipts),
		UpdatedAt:             d.clock(),
	}
}

// Import overwrites every collection present in doc and leaves the others untouched.
// It returns the number of collections written. Imports are not replicated back.
func (d *Dataset) Import(ctx context.Context, doc models.SnapshotDocument) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	n += importArray(ctx, d, KeyUsers, doc.Users)
	n += importArray(ctx, d, KeyProducts, doc.Products)
	n += importArray(ctx, d, KeyDistributors, doc.Distributors)
	n += importArray(ctx, d, KeyCustomers, doc.Customers)
	n += importArray(ctx, d, KeySalesOrders, doc.SalesOrders)
	n += importArray(ctx, d, KeyInventoryTransactions, doc.InventoryTransactions)
	n += importArray(ctx, d, KeyPOSTransactions, doc.POSTransactions)
	n += importArray(ctx, d, KeyReceipts, doc.Receipts)
	return n
}

func importArray[T any](ctx context.Context, d *Dataset, key string, items []T) int {
	if items == nil {
		return 0
	}
	if err := collection.SetArray(ctx, d.coll, key, items); err != nil {
		d.logger.Error("Failed to import collection", zap.String("key", key), zap.Error(err))
		return 0
	}
	return 1
}
