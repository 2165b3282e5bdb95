package orders

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/miniapp/foodshare/internal/domain"
)

// sortColumns whitelists the sortable fields of the shop/admin listing.
// Keys accept both the API's camelCase names and raw column names.
var sortColumns = map[string]string{
	"id":         "id",
	"createdAt":  "created_at",
	"created_at": "created_at",
	"updatedAt":  "updated_at",
	"updated_at": "updated_at",
	"pickupTime": "pickup_time",
	"quantity":   "quantity",
	"totalPrice": "total_price",
	"status":     "status",
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) InTx(ctx context.Context, fn func(tx Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}

func (r *GormRepository) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return r.getOrder(ctx, id, false)
}

func (r *GormRepository) GetOrderForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return r.getOrder(ctx, id, true)
}

func (r *GormRepository) getOrder(ctx context.Context, id int64, lock bool) (*domain.Order, error) {
	var o domain.Order
	db := r.db.WithContext(ctx)
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := db.Where("id = ?", id).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "query order")
	}
	return &o, nil
}

func (r *GormRepository) CreateOrder(ctx context.Context, o *domain.Order) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(o).Error, "insert order")
}

func (r *GormRepository) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
	return errors.Wrap(err, "update order status")
}

func (r *GormRepository) GetProductForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "query product")
	}
	return &p, nil
}

func (r *GormRepository) AdjustProductStock(ctx context.Context, productID int64, availableDelta, pendingDelta int) error {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if availableDelta != 0 {
		updates["quantity_available"] = gorm.Expr("quantity_available + ?", availableDelta)
	}
	if pendingDelta != 0 {
		updates["quantity_pending"] = gorm.Expr("quantity_pending + ?", pendingDelta)
	}
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", productID).Updates(updates).Error
	return errors.Wrap(err, "adjust product stock")
}

func (r *GormRepository) SetProductPending(ctx context.Context, productID int64, pending int) error {
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{"quantity_pending": pending, "updated_at": time.Now()}).Error
	return errors.Wrap(err, "set product pending")
}

func (r *GormRepository) GetShop(ctx context.Context, id int64) (*domain.Shop, error) {
	var s domain.Shop
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "query shop")
	}
	return &s, nil
}

func (r *GormRepository) UpsertSalesStats(ctx context.Context, productID int64, quantity int, soldAt time.Time) error {
	err := r.db.WithContext(ctx).Exec(
		`INSERT INTO product_sales_stats (product_id, total_quantity_sold, total_orders, last_sold_at, created_at, updated_at)
		 VALUES (?, ?, 1, ?, ?, ?)
		 ON CONFLICT (product_id) DO UPDATE SET
		   total_quantity_sold = product_sales_stats.total_quantity_sold + EXCLUDED.total_quantity_sold,
		   total_orders = product_sales_stats.total_orders + 1,
		   last_sold_at = EXCLUDED.last_sold_at,
		   updated_at = EXCLUDED.updated_at`,
		productID, quantity, soldAt, soldAt, soldAt).Error
	return errors.Wrap(err, "upsert sales stats")
}

func (r *GormRepository) ListOrdersByUser(ctx context.Context, userID int64, status *domain.OrderStatus) ([]domain.Order, error) {
	db := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != nil {
		db = db.Where("status = ?", *status)
	}
	var rows []domain.Order
	if err := db.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list orders by user")
	}
	return rows, nil
}

func (r *GormRepository) FindOrders(ctx context.Context, f ListFilter) ([]domain.Order, int64, error) {
	db := r.db.WithContext(ctx).Model(&domain.Order{})
	if f.ShopID != nil {
		db = db.Where("shop_id = ?", *f.ShopID)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.FromDate != nil {
		db = db.Where("created_at >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		db = db.Where("created_at <= ?", *f.ToDate)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count orders")
	}

	col, okCol := sortColumns[f.SortBy]
	if !okCol {
		col = "created_at"
	}
	dir := "DESC"
	if f.SortDir == "asc" || f.SortDir == "ASC" {
		dir = "ASC"
	}

	var rows []domain.Order
	err := db.Order(col + " " + dir).Offset(f.Page * f.Size).Limit(f.Size).Find(&rows).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "query orders")
	}
	return rows, total, nil
}

func (r *GormRepository) ListExpiredPending(ctx context.Context, before time.Time, limit int) ([]domain.Order, error) {
	var rows []domain.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", domain.OrderPending, before).
		Order("expires_at ASC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "list expired pending orders")
	}
	return rows, nil
}

func (r *GormRepository) ListCustomersByIDs(ctx context.Context, ids []int64) ([]domain.CustomerUser, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []domain.CustomerUser
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "batch load customers")
	}
	return rows, nil
}

func (r *GormRepository) ListProductsByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []domain.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "batch load products")
	}
	return rows, nil
}

func (r *GormRepository) ListShopsByIDs(ctx context.Context, ids []int64) ([]domain.Shop, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []domain.Shop
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "batch load shops")
	}
	return rows, nil
}
