package shops

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/miniapp/foodshare/internal/domain"
	"github.com/miniapp/foodshare/internal/orders"
	"github.com/miniapp/foodshare/pkg/common"
)

// MembershipService owns the operator-to-shop association consulted by the
// shop-scoped order paths.
type MembershipService struct {
	db *gorm.DB
}

var _ orders.Membership = (*MembershipService)(nil)

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// IsMember reports whether the operator is registered on the shop.
func (s *MembershipService) IsMember(ctx context.Context, operatorID, shopID int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.ShopMember{}).
		Where("backoffice_user_id = ? AND shop_id = ?", operatorID, shopID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "count shop members")
	}
	return count > 0, nil
}

// ListShopIDsFor returns every shop the operator belongs to.
func (s *MembershipService) ListShopIDsFor(ctx context.Context, operatorID int64) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Model(&domain.ShopMember{}).
		Where("backoffice_user_id = ?", operatorID).
		Pluck("shop_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "list shop ids")
	}
	return ids, nil
}

// AddMember registers an operator on a shop; adding an existing member is a
// no-op.
func (s *MembershipService) AddMember(ctx context.Context, shopID, operatorID int64, role string) error {
	exists, err := s.IsMember(ctx, operatorID, shopID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	m := domain.ShopMember{
		ID:               common.UUIDint64(),
		ShopId:           shopID,
		BackofficeUserId: operatorID,
		Role:             role,
	}
	return errors.Wrap(s.db.WithContext(ctx).Create(&m).Error, "insert shop member")
}
