package app

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/miniapp/foodshare/internal/domain"
	"github.com/miniapp/foodshare/internal/orders"
	"github.com/miniapp/foodshare/pkg/common"
)

func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "foodshare"

	hashedPassword := common.Sha256HashWithSalt(defaultPassword, common.GetSecretSalt())

	var operator domain.BackOfficeUser
	err := a.gormDB.Where("username = ?", superUsername).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.BackOfficeUser{
			ID:        common.UUIDint64(),
			Username:  superUsername,
			Password:  hashedPassword,
			Realname:  "administrator",
			Email:     "N/A",
			Role:      domain.RoleAdmin,
			Status:    common.ENABLED,
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query admin account", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(operator.Password) == ""
	resetRole := !strings.EqualFold(operator.Role, domain.RoleAdmin)
	resetStatus := !strings.EqualFold(operator.Status, common.ENABLED)

	if !resetPassword && !resetRole && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		updates["password"] = hashedPassword
	}
	if resetRole {
		updates["role"] = domain.RoleAdmin
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}

	if err := a.gormDB.Model(&domain.BackOfficeUser{}).Where("id = ?", operator.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default admin account",
		zap.String("username", superUsername),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("roleReset", resetRole),
		zap.Bool("statusEnabled", resetStatus))
}

// checkNotifyTemplates initializes the default notification templates
func (a *Application) checkNotifyTemplates() {
	defaultTemplates := []domain.NotifyTemplate{
		{
			Event:    orders.TopicOrderCreated,
			Title:    "Order {order_id} placed",
			Body:     "Your order for {quantity} item(s) is awaiting confirmation. Pick it up before it expires.",
			Audience: "customer",
			Enabled:  true,
		},
		{
			Event:    orders.TopicOrderCreated,
			Title:    "New order {order_id}",
			Body:     "A customer reserved {quantity} item(s) of product {product_id}.",
			Audience: "seller",
			Enabled:  true,
		},
		{
			Event:    orders.TopicOrderStatusChanged,
			Title:    "Order {order_id} update",
			Body:     "Your order is now {new_status}.",
			Audience: "customer",
			Enabled:  true,
		},
	}

	for _, t := range defaultTemplates {
		var count int64
		a.gormDB.Model(&domain.NotifyTemplate{}).
			Where("event = ? AND audience = ?", t.Event, t.Audience).
			Count(&count)
		if count == 0 {
			t.ID = common.UUIDint64()
			if err := a.gormDB.Create(&t).Error; err != nil {
				zap.L().Error("failed to create default notify template",
					zap.String("event", t.Event),
					zap.Error(err))
			} else {
				zap.L().Info("initialized default notify template",
					zap.String("event", t.Event),
					zap.String("audience", t.Audience))
			}
		}
	}
}
