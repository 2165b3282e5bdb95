package domain

import "time"

type Shop struct {
	ID          int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string       `gorm:"size:255;index;not null" json:"name"`
	Address     string       `gorm:"size:255" json:"address"`
	Phone       string       `gorm:"size:20" json:"phone"`
	ImageUrl    string       `gorm:"size:255" json:"image_url"`
	Latitude    float64      `json:"latitude"`
	Longitude   float64      `json:"longitude"`
	Description string       `gorm:"type:text" json:"description"`
	Rating      float64      `json:"rating"`
	Status      EntityStatus `gorm:"size:50;index" json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (Shop) TableName() string {
	return "shop"
}

// ShopMember associates a backoffice operator with a shop. Shop-scoped
// order queries and mutations consult it for authorization.
type ShopMember struct {
	ID               int64     `gorm:"primaryKey" json:"id,string"`
	ShopId           int64     `gorm:"index;uniqueIndex:idx_shop_member;not null" json:"shop_id"`
	BackofficeUserId int64     `gorm:"index;uniqueIndex:idx_shop_member;not null" json:"backoffice_user_id"`
	Role             string    `gorm:"size:50;not null" json:"role"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (ShopMember) TableName() string {
	return "shop_member"
}
