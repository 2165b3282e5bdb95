package orders

import (
	"github.com/asaskevich/EventBus"

	"github.com/miniapp/foodshare/internal/domain"
)

// Event bus topics published by the lifecycle engine after a successful
// transition. Subscribers (the notification pipeline) must not block.
const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status.changed"
)

// OrderEvent is the payload carried on both topics.
type OrderEvent struct {
	OrderID   int64
	UserID    int64
	ShopID    int64
	ProductID int64
	Quantity  int
	OldStatus domain.OrderStatus
	NewStatus domain.OrderStatus
}

func publish(bus EventBus.Bus, topic string, evt OrderEvent) {
	if bus == nil {
		return
	}
	bus.Publish(topic, evt)
}
