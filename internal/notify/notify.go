package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/miniapp/foodshare/internal/domain"
	"github.com/miniapp/foodshare/internal/orders"
	"github.com/miniapp/foodshare/pkg/common"
)

const (
	maxAttempts   = 3
	dispatchBatch = 100
)

// Sender delivers a single rendered notification. Implementations are
// expected to be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg *domain.NotifyMessage) error
}

// LogSender writes deliveries to the application log. It is the default
// sender until a push or chat channel is wired in.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg *domain.NotifyMessage) error {
	zap.L().Info("notification delivered",
		zap.Int64("message_id", msg.ID),
		zap.Int64("order_id", msg.OrderId),
		zap.String("audience", msg.Audience),
		zap.String("title", msg.Title))
	return nil
}

// Service turns order lifecycle events into outbox rows and drains the
// outbox through a Sender. Event fan-out runs on a bounded worker pool so a
// slow database never blocks the order path.
type Service struct {
	db     *gorm.DB
	pool   *ants.Pool
	sender Sender
}

func NewService(db *gorm.DB, sender Sender) (*Service, error) {
	if sender == nil {
		sender = LogSender{}
	}
	pool, err := ants.NewPool(8)
	if err != nil {
		return nil, errors.Wrap(err, "create notify pool")
	}
	return &Service{db: db, pool: pool, sender: sender}, nil
}

// Subscribe attaches the service to the order event topics.
func (s *Service) Subscribe(bus EventBus.Bus) error {
	if err := bus.Subscribe(orders.TopicOrderCreated, s.onOrderCreated); err != nil {
		return errors.Wrap(err, "subscribe order created")
	}
	if err := bus.Subscribe(orders.TopicOrderStatusChanged, s.onStatusChanged); err != nil {
		return errors.Wrap(err, "subscribe order status changed")
	}
	return nil
}

func (s *Service) Close() {
	s.pool.Release()
}

func (s *Service) onOrderCreated(evt orders.OrderEvent) {
	s.enqueue(orders.TopicOrderCreated, evt)
}

func (s *Service) onStatusChanged(evt orders.OrderEvent) {
	s.enqueue(orders.TopicOrderStatusChanged, evt)
}

func (s *Service) enqueue(event string, evt orders.OrderEvent) {
	err := s.pool.Submit(func() {
		var templates []domain.NotifyTemplate
		err := s.db.Where("event = ? AND enabled = ?", event, true).Find(&templates).Error
		if err != nil {
			zap.L().Error("load notify templates failed", zap.String("event", event), zap.Error(err))
			return
		}
		msgs := BuildMessages(templates, evt)
		if len(msgs) == 0 {
			return
		}
		if err := s.db.Create(&msgs).Error; err != nil {
			zap.L().Error("enqueue notifications failed",
				zap.String("event", event), zap.Int64("order_id", evt.OrderID), zap.Error(err))
		}
	})
	if err != nil {
		zap.L().Error("submit notify task failed", zap.String("event", event), zap.Error(err))
	}
}

// BuildMessages renders every template against the event and returns the
// outbox rows to insert.
func BuildMessages(templates []domain.NotifyTemplate, evt orders.OrderEvent) []domain.NotifyMessage {
	msgs := make([]domain.NotifyMessage, 0, len(templates))
	for i := range templates {
		t := &templates[i]
		msgs = append(msgs, domain.NotifyMessage{
			ID:       common.UUIDint64(),
			OrderId:  evt.OrderID,
			UserId:   evt.UserID,
			Audience: t.Audience,
			Title:    RenderTemplate(t.Title, evt),
			Body:     RenderTemplate(t.Body, evt),
			Status:   domain.NotifyPending,
		})
	}
	return msgs
}

// RenderTemplate substitutes the event fields into the template text.
// Supported placeholders: {order_id}, {quantity}, {shop_id}, {product_id},
// {old_status}, {new_status}.
func RenderTemplate(text string, evt orders.OrderEvent) string {
	r := strings.NewReplacer(
		"{order_id}", strconv.FormatInt(evt.OrderID, 10),
		"{quantity}", strconv.Itoa(evt.Quantity),
		"{shop_id}", strconv.FormatInt(evt.ShopID, 10),
		"{product_id}", strconv.FormatInt(evt.ProductID, 10),
		"{old_status}", evt.OldStatus.Label(),
		"{new_status}", evt.NewStatus.Label(),
	)
	return r.Replace(text)
}

// DispatchPending drains one batch of the outbox. Each row gets at most
// maxAttempts deliveries before it is parked as failed. Returns the number
// of rows delivered.
func (s *Service) DispatchPending(ctx context.Context) (int, error) {
	var pending []domain.NotifyMessage
	err := s.db.WithContext(ctx).
		Where("status = ? AND attempts < ?", domain.NotifyPending, maxAttempts).
		Order("id").Limit(dispatchBatch).
		Find(&pending).Error
	if err != nil {
		return 0, errors.Wrap(err, "load pending notifications")
	}

	sent := 0
	for i := range pending {
		msg := &pending[i]
		msg.Attempts++
		if err := s.sender.Send(ctx, msg); err != nil {
			msg.LastError = fmt.Sprintf("%.250s", err.Error())
			if msg.Attempts >= maxAttempts {
				msg.Status = domain.NotifyFailed
			}
			zap.L().Warn("notification delivery failed",
				zap.Int64("message_id", msg.ID), zap.Int("attempts", msg.Attempts), zap.Error(err))
		} else {
			now := time.Now()
			msg.Status = domain.NotifySent
			msg.SentAt = &now
			msg.LastError = ""
			sent++
		}
		if err := s.db.WithContext(ctx).Save(msg).Error; err != nil {
			zap.L().Error("update notification failed", zap.Int64("message_id", msg.ID), zap.Error(err))
		}
	}
	return sent, nil
}
