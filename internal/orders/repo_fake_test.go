package orders

import (
	"context"
	"sort"
	"time"

	"github.com/miniapp/foodshare/internal/domain"
)

// fakeRepo is an in-memory Repository used by the engine and query tests.
// InTx runs the function directly but tracks nesting depth so tests can
// assert which transaction scope a write happened in.
type fakeRepo struct {
	orders    map[int64]*domain.Order
	products  map[int64]*domain.Product
	shops     map[int64]*domain.Shop
	customers map[int64]*domain.CustomerUser
	stats     map[int64]*domain.ProductSalesStats

	nextOrderID int64

	txDepth    int
	statsErr   error // injected UpsertSalesStats failure
	statsCalls int
	statsDepth int // tx nesting depth at the last UpsertSalesStats call
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders:    map[int64]*domain.Order{},
		products:  map[int64]*domain.Product{},
		shops:     map[int64]*domain.Shop{},
		customers: map[int64]*domain.CustomerUser{},
		stats:     map[int64]*domain.ProductSalesStats{},
	}
}

func (r *fakeRepo) InTx(ctx context.Context, fn func(tx Repository) error) error {
	r.txDepth++
	defer func() { r.txDepth-- }()
	return fn(r)
}

func (r *fakeRepo) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	if o, ok := r.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeRepo) GetOrderForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return r.GetOrder(ctx, id)
}

func (r *fakeRepo) CreateOrder(ctx context.Context, o *domain.Order) error {
	r.nextOrderID++
	o.ID = r.nextOrderID
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeRepo) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	if o, ok := r.orders[orderID]; ok {
		o.Status = status
		o.UpdatedAt = time.Now()
	}
	return nil
}

func (r *fakeRepo) GetProductForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	if p, ok := r.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeRepo) AdjustProductStock(ctx context.Context, productID int64, availableDelta, pendingDelta int) error {
	if p, ok := r.products[productID]; ok {
		p.QuantityAvailable += availableDelta
		p.QuantityPending += pendingDelta
	}
	return nil
}

func (r *fakeRepo) SetProductPending(ctx context.Context, productID int64, pending int) error {
	if p, ok := r.products[productID]; ok {
		p.QuantityPending = pending
	}
	return nil
}

func (r *fakeRepo) GetShop(ctx context.Context, id int64) (*domain.Shop, error) {
	if s, ok := r.shops[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeRepo) UpsertSalesStats(ctx context.Context, productID int64, quantity int, soldAt time.Time) error {
	r.statsCalls++
	r.statsDepth = r.txDepth
	if r.statsErr != nil {
		return r.statsErr
	}
	if s, ok := r.stats[productID]; ok {
		s.TotalQuantitySold += quantity
		s.TotalOrders++
		s.LastSoldAt = &soldAt
		return nil
	}
	r.stats[productID] = &domain.ProductSalesStats{
		ProductId:         productID,
		TotalQuantitySold: quantity,
		TotalOrders:       1,
		LastSoldAt:        &soldAt,
	}
	return nil
}

func (r *fakeRepo) ListOrdersByUser(ctx context.Context, userID int64, status *domain.OrderStatus) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserId != userID {
			continue
		}
		if status != nil && o.Status != *status {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeRepo) FindOrders(ctx context.Context, f ListFilter) ([]domain.Order, int64, error) {
	var all []domain.Order
	for _, o := range r.orders {
		if f.ShopID != nil && o.ShopId != *f.ShopID {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		if f.FromDate != nil && o.CreatedAt.Before(*f.FromDate) {
			continue
		}
		if f.ToDate != nil && o.CreatedAt.After(*f.ToDate) {
			continue
		}
		all = append(all, *o)
	}
	asc := f.SortDir == "asc" || f.SortDir == "ASC"
	sort.Slice(all, func(i, j int) bool {
		if asc {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	total := int64(len(all))
	start := f.Page * f.Size
	if start > len(all) {
		start = len(all)
	}
	end := start + f.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *fakeRepo) ListExpiredPending(ctx context.Context, before time.Time, limit int) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.Status == domain.OrderPending && o.ExpiresAt.Before(before) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeMembership answers shop membership checks from a static list.
type fakeMembership struct {
	members []domain.ShopMember
}

func (m *fakeMembership) IsMember(ctx context.Context, operatorID, shopID int64) (bool, error) {
	for i := range m.members {
		if m.members[i].BackofficeUserId == operatorID && m.members[i].ShopId == shopID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) ListCustomersByIDs(ctx context.Context, ids []int64) ([]domain.CustomerUser, error) {
	var out []domain.CustomerUser
	for _, id := range ids {
		if c, ok := r.customers[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListProductsByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListShopsByIDs(ctx context.Context, ids []int64) ([]domain.Shop, error) {
	var out []domain.Shop
	for _, id := range ids {
		if s, ok := r.shops[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}
