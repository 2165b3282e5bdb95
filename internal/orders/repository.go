package orders

import (
	"context"
	"time"

	"github.com/miniapp/foodshare/internal/domain"
)

// Membership is the shop-membership collaborator consulted by the
// shop-scoped query and mutation paths.
type Membership interface {
	IsMember(ctx context.Context, operatorID, shopID int64) (bool, error)
}

// ListFilter narrows the shop/admin order listing. Nil members are not
// applied. Page is zero-based.
type ListFilter struct {
	ShopID   *int64
	Status   *domain.OrderStatus
	FromDate *time.Time
	ToDate   *time.Time
	Page     int
	Size     int
	SortBy   string
	SortDir  string
}

// Repository is the persistence boundary of the lifecycle engine and the
// query service. Lookups return (nil, nil) when the row does not exist.
//
// InTx runs fn against a Repository bound to a single database transaction;
// the order write and the product/stats mutations of one lifecycle
// operation always share that boundary.
type Repository interface {
	InTx(ctx context.Context, fn func(tx Repository) error) error

	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	// GetOrderForUpdate locks the order row so concurrent transitions of the
	// same order serialize and re-read its committed status.
	GetOrderForUpdate(ctx context.Context, id int64) (*domain.Order, error)
	CreateOrder(ctx context.Context, o *domain.Order) error
	UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error

	// GetProductForUpdate locks the product row for the duration of the
	// surrounding transaction, closing the capacity-check race.
	GetProductForUpdate(ctx context.Context, id int64) (*domain.Product, error)
	// AdjustProductStock applies relative deltas to the inventory counters.
	AdjustProductStock(ctx context.Context, productID int64, availableDelta, pendingDelta int) error
	// SetProductPending overwrites the pending counter (floored cancel path).
	SetProductPending(ctx context.Context, productID int64, pending int) error

	GetShop(ctx context.Context, id int64) (*domain.Shop, error)

	// UpsertSalesStats atomically creates or increments the per-product
	// sales aggregate row.
	UpsertSalesStats(ctx context.Context, productID int64, quantity int, soldAt time.Time) error

	ListOrdersByUser(ctx context.Context, userID int64, status *domain.OrderStatus) ([]domain.Order, error)
	FindOrders(ctx context.Context, f ListFilter) ([]domain.Order, int64, error)
	ListExpiredPending(ctx context.Context, before time.Time, limit int) ([]domain.Order, error)

	ListCustomersByIDs(ctx context.Context, ids []int64) ([]domain.CustomerUser, error)
	ListProductsByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	ListShopsByIDs(ctx context.Context, ids []int64) ([]domain.Shop, error)
}
