package domain

import "time"

// NotifyTemplate defines a renderable notification bound to an order event.
type NotifyTemplate struct {
	ID        int64     `json:"id,string"`
	Event     string    `gorm:"size:64;index;not null" json:"event"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Audience  string    `gorm:"size:20;default:'customer'" json:"audience"`
	Enabled   bool      `gorm:"default:true" json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (NotifyTemplate) TableName() string {
	return "notify_template"
}

const (
	NotifyPending = "pending"
	NotifySent    = "sent"
	NotifyFailed  = "failed"
)

// NotifyMessage is an outbox row awaiting delivery by the dispatcher job.
type NotifyMessage struct {
	ID        int64      `json:"id,string"`
	UserId    int64      `gorm:"index;not null" json:"user_id"`
	OrderId   int64      `gorm:"index" json:"order_id"`
	Audience  string     `gorm:"size:20;default:'customer'" json:"audience"`
	Title     string     `gorm:"size:255" json:"title"`
	Body      string     `gorm:"type:text" json:"body"`
	Status    string     `gorm:"size:20;index;default:'pending'" json:"status"`
	Attempts  int        `gorm:"default:0" json:"attempts"`
	LastError string     `gorm:"size:1024" json:"last_error"`
	SentAt    *time.Time `json:"sent_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (NotifyMessage) TableName() string {
	return "notify_message"
}
