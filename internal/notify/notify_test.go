package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/miniapp/foodshare/internal/domain"
	"github.com/miniapp/foodshare/internal/orders"
)

func TestRenderTemplate(t *testing.T) {
	evt := orders.OrderEvent{
		OrderID:   99,
		UserID:    1,
		ShopID:    10,
		ProductID: 100,
		Quantity:  3,
		OldStatus: domain.OrderPending,
		NewStatus: domain.OrderConfirmed,
	}

	out := RenderTemplate("Order {order_id}: {quantity} item(s) now {new_status}", evt)
	assert.Equal(t, "Order 99: 3 item(s) now Confirmed", out)

	out = RenderTemplate("was {old_status}, shop {shop_id} product {product_id}", evt)
	assert.Equal(t, "was Pending, shop 10 product 100", out)

	assert.Equal(t, "no placeholders", RenderTemplate("no placeholders", evt))
}

func TestBuildMessages(t *testing.T) {
	evt := orders.OrderEvent{OrderID: 7, UserID: 42, Quantity: 2, NewStatus: domain.OrderPending}
	templates := []domain.NotifyTemplate{
		{Event: orders.TopicOrderCreated, Title: "Order {order_id} placed", Body: "Qty {quantity}", Audience: "customer"},
		{Event: orders.TopicOrderCreated, Title: "New order {order_id}", Body: "Qty {quantity}", Audience: "seller"},
	}

	msgs := BuildMessages(templates, evt)
	assert.Len(t, msgs, 2)
	assert.Equal(t, "Order 7 placed", msgs[0].Title)
	assert.Equal(t, "Qty 2", msgs[0].Body)
	assert.Equal(t, "customer", msgs[0].Audience)
	assert.Equal(t, "seller", msgs[1].Audience)
	for _, m := range msgs {
		assert.Equal(t, int64(7), m.OrderId)
		assert.Equal(t, int64(42), m.UserId)
		assert.Equal(t, domain.NotifyPending, m.Status)
		assert.NotZero(t, m.ID)
	}

	assert.Empty(t, BuildMessages(nil, evt))
}
