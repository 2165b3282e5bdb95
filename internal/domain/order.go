package domain

import "time"

// Order is the unit of a stock reservation. Prices are snapshots taken at
// creation time, in minor currency units. Orders are never physically
// deleted; state changes go through the lifecycle engine only.
type Order struct {
	ID         int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserId     int64       `gorm:"index;not null" json:"user_id"`
	ShopId     int64       `gorm:"index;not null" json:"shop_id"`
	ProductId  int64       `gorm:"index;not null" json:"product_id"`
	Quantity   int         `gorm:"not null" json:"quantity"`
	Status     OrderStatus `gorm:"size:50;index;not null" json:"status"`
	PickupTime time.Time   `json:"pickup_time"`
	ExpiresAt  time.Time   `json:"expires_at"`
	UnitPrice  int64       `json:"unit_price"`
	TotalPrice int64       `json:"total_price"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}
