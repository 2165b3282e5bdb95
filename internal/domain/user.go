package domain

import "time"

type CustomerUser struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name              string    `gorm:"size:255;not null" json:"name"`
	Email             string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Provider          string    `gorm:"size:50;not null" json:"provider"`
	ProviderId        string    `gorm:"size:255;uniqueIndex;not null" json:"provider_id"`
	ProfilePictureUrl string    `gorm:"size:255" json:"profile_picture_url"`
	PhoneNumber       string    `gorm:"size:20" json:"phone_number"`
	Role              string    `gorm:"size:20;not null" json:"role"`
	Latitude          float64   `json:"latitude"`
	Longitude         float64   `json:"longitude"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (CustomerUser) TableName() string {
	return "customer_user"
}

// BackOfficeUser is a seller or administrator account. Ids come from the
// snowflake generator rather than the database sequence.
type BackOfficeUser struct {
	ID        int64     `json:"id,string"`
	Username  string    `gorm:"size:255;uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Realname  string    `gorm:"size:255" json:"realname"`
	Email     string    `gorm:"size:255" json:"email"`
	Role      string    `gorm:"size:20;index;not null" json:"role"`
	Status    string    `gorm:"size:20" json:"status"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BackOfficeUser) TableName() string {
	return "backoffice_user"
}

const (
	RoleAdmin  = "admin"
	RoleSeller = "seller"
)
