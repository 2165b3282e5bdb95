package domain

import "time"

// Product carries the inventory ledger for a single listing.
// QuantityAvailable is the operator-managed ceiling; QuantityPending is the
// live reservation counter. Capacity offered to new orders is always
// available - pending; available itself is not decremented by reservations.
type Product struct {
	ID                int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopId            int64        `gorm:"index;not null" json:"shop_id"`
	CategoryId        int64        `gorm:"index" json:"category_id"`
	Name              string       `gorm:"size:255;not null" json:"name"`
	Description       string       `gorm:"type:text" json:"description"`
	Price             int64        `gorm:"not null" json:"price"`
	OriginalPrice     int64        `json:"original_price"`
	ImageUrl          string       `gorm:"size:255" json:"image_url"`
	QuantityAvailable int          `gorm:"default:0" json:"quantity_available"`
	QuantityPending   int          `gorm:"default:0" json:"quantity_pending"`
	Status            EntityStatus `gorm:"size:50;index;not null" json:"status"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

func (Product) TableName() string {
	return "product"
}

// ProductSalesStats is the per-product rolling counter of completed-order
// volume, one row per product. Updated by an atomic upsert when an order
// completes; a failed update is logged and never rolls back the order.
type ProductSalesStats struct {
	ID                int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductId         int64      `gorm:"uniqueIndex;not null" json:"product_id"`
	TotalQuantitySold int        `gorm:"not null;default:0" json:"total_quantity_sold"`
	TotalOrders       int        `gorm:"not null;default:0" json:"total_orders"`
	LastSoldAt        *time.Time `json:"last_sold_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (ProductSalesStats) TableName() string {
	return "product_sales_stats"
}
