package orders

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"

	"github.com/miniapp/foodshare/internal/domain"
)

// Config holds the engine limits. It is passed at construction time; the
// engine keeps no package-level state.
type Config struct {
	MinQuantity  int
	MaxQuantity  int
	ExpiryWindow time.Duration
}

func DefaultConfig() Config {
	return Config{
		MinQuantity:  1,
		MaxQuantity:  20,
		ExpiryWindow: 15 * time.Minute,
	}
}

// CreateRequest carries the inputs of a new reservation. Prices are minor
// currency units snapshotted by the caller.
type CreateRequest struct {
	UserID     int64
	ShopID     int64
	ProductID  int64
	Quantity   int
	PickupTime time.Time
	UnitPrice  int64
	TotalPrice int64
}

// Engine validates and executes order state transitions, mutating the
// product inventory counters and the sales aggregate as side effects.
// Every lifecycle operation runs inside a single repository transaction
// with the product row locked while its counters are read and written.
type Engine struct {
	cfg     Config
	repo    Repository
	members Membership
	bus     EventBus.Bus
}

func NewEngine(cfg Config, repo Repository, members Membership, bus EventBus.Bus) *Engine {
	return &Engine{cfg: cfg, repo: repo, members: members, bus: bus}
}

// Create reserves stock for a new order. Validations run in a fixed order
// and short-circuit on the first failure; on success the PENDING order and
// the quantityPending increment commit atomically.
func (e *Engine) Create(ctx context.Context, req CreateRequest) (*domain.Order, error) {
	if req.UserID <= 0 || req.ShopID <= 0 || req.ProductID <= 0 || req.Quantity == 0 {
		zap.L().Warn("order create missing required fields",
			zap.Int64("user_id", req.UserID),
			zap.Int64("shop_id", req.ShopID),
			zap.Int64("product_id", req.ProductID))
		return nil, newError(CodeMissingRequiredFields, "Missing required fields")
	}
	if req.Quantity < e.cfg.MinQuantity || req.Quantity > e.cfg.MaxQuantity {
		return nil, newError(CodeInvalidQuantity, "Quantity must be between %d and %d",
			e.cfg.MinQuantity, e.cfg.MaxQuantity)
	}

	var created *domain.Order
	err := e.repo.InTx(ctx, func(tx Repository) error {
		product, err := tx.GetProductForUpdate(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return newError(CodeProductNotFound, "Product not found: %d", req.ProductID)
		}
		if product.ShopId != req.ShopID {
			return newError(CodeProductNotBelongToShop, "Product does not belong to shop")
		}
		if !product.Status.Active() {
			return newError(CodeProductNotAvailable, "Product is not available")
		}

		shop, err := tx.GetShop(ctx, req.ShopID)
		if err != nil {
			return err
		}
		if shop == nil {
			return newError(CodeShopNotFound, "Shop not found: %d", req.ShopID)
		}
		if !shop.Status.Active() {
			return newError(CodeShopNotActive, "Shop is not active")
		}

		// Capacity is available minus pending; available itself is an
		// operator-managed ceiling and is not touched by reservations.
		if req.Quantity > product.QuantityAvailable-product.QuantityPending {
			return newError(CodeInsufficientStock, "Insufficient stock")
		}

		now := time.Now()
		if req.PickupTime.IsZero() {
			return newError(CodeInvalidRequest, "Pickup time is required")
		}
		if !req.PickupTime.After(now) {
			return newError(CodeInvalidRequest, "Pickup time must be in the future")
		}

		if req.UnitPrice <= 0 {
			return newError(CodeInvalidRequest, "Unit price must be greater than 0")
		}
		if req.TotalPrice <= 0 {
			return newError(CodeInvalidRequest, "Total price must be greater than 0")
		}
		if req.TotalPrice != req.UnitPrice*int64(req.Quantity) {
			return newError(CodeInvalidRequest, "Total price calculation is incorrect")
		}

		order := &domain.Order{
			UserId:     req.UserID,
			ShopId:     req.ShopID,
			ProductId:  req.ProductID,
			Quantity:   req.Quantity,
			Status:     domain.OrderPending,
			PickupTime: req.PickupTime,
			ExpiresAt:  req.PickupTime.Add(e.cfg.ExpiryWindow),
			UnitPrice:  req.UnitPrice,
			TotalPrice: req.TotalPrice,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		if err := tx.AdjustProductStock(ctx, req.ProductID, 0, req.Quantity); err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		if CodeOf(err) == CodeInternalError {
			zap.L().Error("order create failed", zap.Int64("user_id", req.UserID),
				zap.Int64("product_id", req.ProductID), zap.Error(err))
		} else {
			zap.L().Warn("order create rejected", zap.Int64("user_id", req.UserID),
				zap.Int64("product_id", req.ProductID), zap.String("code", string(CodeOf(err))))
		}
		return nil, err
	}

	zap.L().Info("order created",
		zap.Int64("order_id", created.ID),
		zap.Int64("user_id", created.UserId),
		zap.Int64("product_id", created.ProductId),
		zap.Int("quantity", created.Quantity))
	publish(e.bus, TopicOrderCreated, OrderEvent{
		OrderID:   created.ID,
		UserID:    created.UserId,
		ShopID:    created.ShopId,
		ProductID: created.ProductId,
		Quantity:  created.Quantity,
		NewStatus: domain.OrderPending,
	})
	return created, nil
}

// CancelByOwner cancels the caller's own PENDING order. The pending counter
// is decremented floored at zero; quantityAvailable is deliberately left
// untouched on this path (unlike the generic cancel transition).
func (e *Engine) CancelByOwner(ctx context.Context, orderID, userID int64) (*domain.Order, error) {
	var cancelled *domain.Order
	alreadyCancelled := false
	err := e.repo.InTx(ctx, func(tx Repository) error {
		order, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return newError(CodeOrderNotFound, "Order not found: %d", orderID)
		}
		if order.UserId != userID {
			return newError(CodeForbidden, "Forbidden")
		}
		if order.Status == domain.OrderCancelled {
			// Repeated cancellation is a no-op, not an error.
			cancelled = order
			alreadyCancelled = true
			return nil
		}
		if order.Status != domain.OrderPending {
			return newError(CodeOrderCannotBeCancelled, "Only pending orders can be cancelled")
		}

		product, err := tx.GetProductForUpdate(ctx, order.ProductId)
		if err != nil {
			return err
		}
		if product == nil {
			return newError(CodeProductNotFound, "Product not found: %d", order.ProductId)
		}
		newPending := product.QuantityPending - order.Quantity
		if newPending < 0 {
			newPending = 0
		}
		if err := tx.SetProductPending(ctx, order.ProductId, newPending); err != nil {
			return err
		}

		if err := tx.UpdateOrderStatus(ctx, order.ID, domain.OrderCancelled); err != nil {
			return err
		}
		order.Status = domain.OrderCancelled
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !alreadyCancelled {
		zap.L().Info("order cancelled by owner",
			zap.Int64("order_id", cancelled.ID), zap.Int64("user_id", userID))
		publish(e.bus, TopicOrderStatusChanged, OrderEvent{
			OrderID:   cancelled.ID,
			UserID:    cancelled.UserId,
			ShopID:    cancelled.ShopId,
			ProductID: cancelled.ProductId,
			Quantity:  cancelled.Quantity,
			OldStatus: domain.OrderPending,
			NewStatus: domain.OrderCancelled,
		})
	}
	return cancelled, nil
}

// UpdateStatus applies a generic transition requested by a shop operator or
// administrator. Transitions are legal only out of PENDING.
func (e *Engine) UpdateStatus(ctx context.Context, orderID int64, newStatus domain.OrderStatus) (*domain.Order, error) {
	if !newStatus.Valid() {
		return nil, newError(CodeInvalidOrderStatus, "Invalid order status")
	}
	var updated *domain.Order
	var oldStatus domain.OrderStatus
	err := e.repo.InTx(ctx, func(tx Repository) error {
		order, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return newError(CodeOrderNotFound, "Order not found: %d", orderID)
		}
		if !order.Status.CanTransition(newStatus) {
			return newError(CodeInvalidOrderStatus, "Cannot change status from %s to %s",
				order.Status, newStatus)
		}
		oldStatus = order.Status

		if err := tx.UpdateOrderStatus(ctx, order.ID, newStatus); err != nil {
			return err
		}
		if err := e.applyTransitionEffects(ctx, tx, order, newStatus); err != nil {
			return err
		}
		order.Status = newStatus
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("order status updated",
		zap.Int64("order_id", updated.ID),
		zap.Stringer("from", oldStatus),
		zap.Stringer("to", updated.Status))
	publish(e.bus, TopicOrderStatusChanged, OrderEvent{
		OrderID:   updated.ID,
		UserID:    updated.UserId,
		ShopID:    updated.ShopId,
		ProductID: updated.ProductId,
		Quantity:  updated.Quantity,
		OldStatus: oldStatus,
		NewStatus: updated.Status,
	})
	return updated, nil
}

// Confirm moves a PENDING order straight to COMPLETED with the completion
// side effects. Kept as a dedicated entry point for the pickup flow.
func (e *Engine) Confirm(ctx context.Context, orderID int64) (*domain.Order, error) {
	var confirmed *domain.Order
	err := e.repo.InTx(ctx, func(tx Repository) error {
		order, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return newError(CodeOrderNotFound, "Order not found: %d", orderID)
		}
		if order.Status != domain.OrderPending {
			return newError(CodeInvalidOrderStatus, "Only pending orders can be confirmed")
		}
		if err := tx.UpdateOrderStatus(ctx, order.ID, domain.OrderCompleted); err != nil {
			return err
		}
		if err := e.applyTransitionEffects(ctx, tx, order, domain.OrderCompleted); err != nil {
			return err
		}
		order.Status = domain.OrderCompleted
		confirmed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("order confirmed",
		zap.Int64("order_id", confirmed.ID),
		zap.Int64("product_id", confirmed.ProductId),
		zap.Int("quantity", confirmed.Quantity))
	publish(e.bus, TopicOrderStatusChanged, OrderEvent{
		OrderID:   confirmed.ID,
		UserID:    confirmed.UserId,
		ShopID:    confirmed.ShopId,
		ProductID: confirmed.ProductId,
		Quantity:  confirmed.Quantity,
		OldStatus: domain.OrderPending,
		NewStatus: domain.OrderCompleted,
	})
	return confirmed, nil
}

// UpdateStatusForSeller is the shop-operator path: the seller must be a
// registered member of the order's shop before the transition is applied.
func (e *Engine) UpdateStatusForSeller(ctx context.Context, orderID int64, newStatus domain.OrderStatus, sellerUserID int64) (*domain.Order, error) {
	order, err := e.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, newError(CodeOrderNotFound, "Order not found: %d", orderID)
	}
	isMember, err := e.members.IsMember(ctx, sellerUserID, order.ShopId)
	if err != nil {
		return nil, err
	}
	if !isMember {
		zap.L().Warn("seller is not a member of shop",
			zap.Int64("seller_user_id", sellerUserID), zap.Int64("shop_id", order.ShopId))
		return nil, newError(CodeForbidden, "You don't have permission to update this order")
	}
	return e.UpdateStatus(ctx, orderID, newStatus)
}

// applyTransitionEffects mutates the inventory ledger and the sales
// aggregate for a committed transition.
//
// COMPLETED decrements quantityPending without a floor and bumps the sales
// aggregate; the aggregate upsert runs in its own nested transaction
// (a savepoint on the surrounding one) so a statement-level failure is
// rolled back to the savepoint, logged and swallowed without aborting the
// transition. The generic CANCELLED path restores
// quantityAvailable as well as releasing quantityPending, which the
// owner-cancel path does not; the asymmetry is intentional and documented
// on both operations.
func (e *Engine) applyTransitionEffects(ctx context.Context, tx Repository, order *domain.Order, newStatus domain.OrderStatus) error {
	switch newStatus {
	case domain.OrderCompleted:
		err := tx.InTx(ctx, func(sp Repository) error {
			return sp.UpsertSalesStats(ctx, order.ProductId, order.Quantity, time.Now())
		})
		if err != nil {
			zap.L().Error("failed to update sales stats",
				zap.Int64("order_id", order.ID),
				zap.Int64("product_id", order.ProductId),
				zap.Int("quantity", order.Quantity),
				zap.Error(err))
		}
		product, err := tx.GetProductForUpdate(ctx, order.ProductId)
		if err != nil {
			return err
		}
		if product != nil {
			return tx.AdjustProductStock(ctx, order.ProductId, 0, -order.Quantity)
		}
	case domain.OrderCancelled:
		product, err := tx.GetProductForUpdate(ctx, order.ProductId)
		if err != nil {
			return err
		}
		if product != nil {
			return tx.AdjustProductStock(ctx, order.ProductId, order.Quantity, -order.Quantity)
		}
	}
	return nil
}

// SweepExpired cancels PENDING orders whose expiry has passed, releasing
// their reservations through the generic cancel transition. Called from the
// scheduler; failures on individual orders are logged and skipped.
func (e *Engine) SweepExpired(ctx context.Context) (int, error) {
	rows, err := e.repo.ListExpiredPending(ctx, time.Now(), 200)
	if err != nil {
		return 0, err
	}
	swept := 0
	for i := range rows {
		if _, err := e.UpdateStatus(ctx, rows[i].ID, domain.OrderCancelled); err != nil {
			zap.L().Warn("failed to cancel expired order",
				zap.Int64("order_id", rows[i].ID), zap.Error(err))
			continue
		}
		swept++
	}
	if swept > 0 {
		zap.L().Info("expired pending orders cancelled", zap.Int("count", swept))
	}
	return swept, nil
}
