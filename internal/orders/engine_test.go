package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miniapp/foodshare/internal/domain"
)

func seedShopAndProduct(repo *fakeRepo, available, pending int) {
	repo.shops[10] = &domain.Shop{ID: 10, Name: "Bread Corner", Status: domain.EntityActive}
	repo.products[100] = &domain.Product{
		ID:                100,
		ShopId:            10,
		Name:              "Surprise Box",
		Price:             25000,
		QuantityAvailable: available,
		QuantityPending:   pending,
		Status:            domain.EntityActive,
	}
}

func validCreateRequest() CreateRequest {
	return CreateRequest{
		UserID:     1,
		ShopID:     10,
		ProductID:  100,
		Quantity:   2,
		PickupTime: time.Now().Add(time.Hour),
		UnitPrice:  25000,
		TotalPrice: 50000,
	}
}

func TestEngineCreate(t *testing.T) {
	repo := newFakeRepo()
	seedShopAndProduct(repo, 10, 0)
	engine := NewEngine(DefaultConfig(), repo, nil, nil)

	req := validCreateRequest()
	order, err := engine.Create(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.NotZero(t, order.ID)
	assert.Equal(t, domain.OrderPending, order.Status)
	assert.Equal(t, req.PickupTime.Add(15*time.Minute), order.ExpiresAt)
	assert.Equal(t, int64(50000), order.TotalPrice)

	// reservation increments pending only, never touches available
	assert.Equal(t, 2, repo.products[100].QuantityPending)
	assert.Equal(t, 10, repo.products[100].QuantityAvailable)
}

func TestEngineCreateValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateRequest)
		seed   func(*fakeRepo)
		code   ErrorCode
	}{
		{
			name:   "missing user id",
			mutate: func(r *CreateRequest) { r.UserID = 0 },
			code:   CodeMissingRequiredFields,
		},
		{
			name:   "quantity below minimum",
			mutate: func(r *CreateRequest) { r.Quantity = -1; r.TotalPrice = -25000 },
			code:   CodeInvalidQuantity,
		},
		{
			name:   "quantity above maximum",
			mutate: func(r *CreateRequest) { r.Quantity = 21; r.TotalPrice = 21 * 25000 },
			code:   CodeInvalidQuantity,
		},
		{
			name:   "product not found",
			mutate: func(r *CreateRequest) { r.ProductID = 999 },
			code:   CodeProductNotFound,
		},
		{
			name: "product belongs to another shop",
			seed: func(repo *fakeRepo) {
				repo.shops[11] = &domain.Shop{ID: 11, Status: domain.EntityActive}
			},
			mutate: func(r *CreateRequest) { r.ShopID = 11 },
			code:   CodeProductNotBelongToShop,
		},
		{
			name: "inactive product",
			seed: func(repo *fakeRepo) {
				repo.products[100].Status = domain.EntityInactive
			},
			code: CodeProductNotAvailable,
		},
		{
			name: "shop not found",
			seed: func(repo *fakeRepo) {
				delete(repo.shops, 10)
			},
			code: CodeShopNotFound,
		},
		{
			name: "inactive shop",
			seed: func(repo *fakeRepo) {
				repo.shops[10].Status = domain.EntityInactive
			},
			code: CodeShopNotActive,
		},
		{
			name: "insufficient stock",
			seed: func(repo *fakeRepo) {
				repo.products[100].QuantityAvailable = 1
			},
			code: CodeInsufficientStock,
		},
		{
			name:   "pickup time missing",
			mutate: func(r *CreateRequest) { r.PickupTime = time.Time{} },
			code:   CodeInvalidRequest,
		},
		{
			name:   "pickup time in the past",
			mutate: func(r *CreateRequest) { r.PickupTime = time.Now().Add(-time.Minute) },
			code:   CodeInvalidRequest,
		},
		{
			name:   "unit price not positive",
			mutate: func(r *CreateRequest) { r.UnitPrice = 0 },
			code:   CodeInvalidRequest,
		},
		{
			name:   "total price mismatch",
			mutate: func(r *CreateRequest) { r.TotalPrice = 49999 },
			code:   CodeInvalidRequest,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeRepo()
			seedShopAndProduct(repo, 10, 0)
			if tc.seed != nil {
				tc.seed(repo)
			}
			engine := NewEngine(DefaultConfig(), repo, nil, nil)

			req := validCreateRequest()
			if tc.mutate != nil {
				tc.mutate(&req)
			}

			_, err := engine.Create(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, tc.code, CodeOf(err))
			// a rejected request must not move the counters
			if p, ok := repo.products[100]; ok {
				assert.Zero(t, p.QuantityPending)
			}
		})
	}
}

func TestEngineCreateCapacityBoundary(t *testing.T) {
	repo := newFakeRepo()
	seedShopAndProduct(repo, 10, 4)
	engine := NewEngine(DefaultConfig(), repo, nil, nil)

	// exactly available - pending must be accepted
	req := validCreateRequest()
	req.Quantity = 6
	req.TotalPrice = 6 * 25000
	_, err := engine.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 10, repo.products[100].QuantityPending)

	// one more unit must be rejected
	req = validCreateRequest()
	req.Quantity = 1
	req.TotalPrice = 25000
	_, err = engine.Create(context.Background(), req)
	assert.Equal(t, CodeInsufficientStock, CodeOf(err))
}

func TestEngineCreateExhaustsCapacity(t *testing.T) {
	repo := newFakeRepo()
	seedShopAndProduct(repo, 10, 0)
	engine := NewEngine(DefaultConfig(), repo, nil, nil)

	req := validCreateRequest()
	req.Quantity = 10
	req.TotalPrice = 10 * 25000
	_, err := engine.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 10, repo.products[100].QuantityPending)

	req = validCreateRequest()
	req.Quantity = 1
	req.TotalPrice = 25000
	_, err = engine.Create(context.Background(), req)
	assert.Equal(t, CodeInsufficientStock, CodeOf(err))
}

func TestEngineCreateExactTotalAccepted(t *testing.T) {
	repo := newFakeRepo()
	seedShopAndProduct(repo, 10, 0)
	engine := NewEngine(DefaultConfig(), repo, nil, nil)

	req := validCreateRequest()
	req.UnitPrice = 25000
	req.Quantity = 2
	req.TotalPrice = 50000
	_, err := engine.Create(context.Background(), req)
	assert.NoError(t, err)
}

func seedOrder(repo *fakeRepo, id int64, status domain.OrderStatus, quantity int) *domain.Order {
	o := &domain.Order{
		ID:        id,
		UserId:    1,
		ShopId:    10,
		ProductId: 100,
		Quantity:  quantity,
		Status:    status,
		CreatedAt: time.Now(),
	}
	repo.orders[id] = o
	if id >= repo.nextOrderID {
		repo.nextOrderID = id
	}
	return o
}

func TestEngineCancelByOwner(t *testing.T) {
	t.Run("order not found", func(t *testing.T) {
		engine := NewEngine(DefaultConfig(), newFakeRepo(), nil, nil)
		_, err := engine.CancelByOwner(context.Background(), 42, 1)
		assert.Equal(t, CodeOrderNotFound, CodeOf(err))
	})

	t.Run("foreign order is forbidden", func(t *testing.T) {
		repo := newFakeRepo()
		seedShopAndProduct(repo, 10, 5)
		seedOrder(repo, 1, domain.OrderPending, 3)
		engine := NewEngine(DefaultConfig(), repo, nil, nil)
		_, err := engine.CancelByOwner(context.Background(), 1, 99)
		assert.Equal(t, CodeForbidden, CodeOf(err))
	})

	t.Run("already cancelled is idempotent", func(t *testing.T) {
		repo := newFakeRepo()
		seedShopAndProduct(repo, 10, 5)
		seedOrder(repo, 1, domain.OrderCancelled, 3)
		engine := NewEngine(DefaultConfig(), repo, nil, nil)
		for i := 0; i < 2; i++ {
			order, err := engine.CancelByOwner(context.Background(), 1, 1)
			require.NoError(t, err)
			assert.Equal(t, domain.OrderCancelled, order.Status)
		}
		// no-op must not move the counters
		assert.Equal(t, 5, repo.products[100].QuantityPending)
	})

	t.Run("completed order cannot be cancelled", func(t *testing.T) {
		repo := newFakeRepo()
		seedShopAndProduct(repo, 10, 5)
		seedOrder(repo, 1, domain.OrderCompleted, 3)
		engine := NewEngine(DefaultConfig(), repo, nil, nil)
		_, err := engine.CancelByOwner(context.Background(), 1, 1)
		assert.Equal(t, CodeOrderCannotBeCancelled, CodeOf(err))
	})

	t.Run("releases pending without restoring available", func(t *testing.T) {
		repo := newFakeRepo()
		seedShopAndProduct(repo, 10, 5)
		seedOrder(repo, 1, domain.OrderPending, 3)
		engine := NewEngine(DefaultConfig(), repo, nil, nil)

		order, err := engine.CancelByOwner(context.Background(), 1, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderCancelled, order.Status)
		assert.Equal(t, 2, repo.products[100].QuantityPending)
		assert.Equal(t, 10, repo.products[100].QuantityAvailable)
	})

	t.Run("pending decrement floors at zero", func(t *testing.T) {
		repo := newFakeRepo()
		seedShopAndProduct(repo, 10, 4)
		seedOrder(repo, 1, domain.OrderPending, 10)
		engine := NewEngine(DefaultConfig(), repo, nil, nil)

		_, err := engine.CancelByOwner(context.Background(), 1, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, repo.products[100].QuantityPending)
	})
}

func TestEngineUpdateStatus(t *testing.T) {
	t.Run("terminal states reject any transition", func(t *testing.T) {
		for _, status := range []domain.OrderStatus{domain.OrderCompleted, domain.OrderCancelled} {
			repo := newFakeRepo()
			seedShopAndProduct(repo, 10, 5)
			seedOrder(repo, 1, status, 3)
			engine := NewEngine(DefaultConfig(), repo, nil, nil)

			for _, next := range []domain.OrderStatus{domain.OrderPending, domain.OrderConfirmed, domain.OrderCompleted, domain.OrderCancelled} {
				_, err := engine.UpdateStatus(context.Background(), 1, next)
				assert.Equal(t, CodeInvalidOrderStatus, CodeOf(err), "from %s to %s", status, next)
			}
		}
	})

	t.Run("confirmed has no outgoing transition", func(t *testing.T) {
		repo := newFakeRepo()
		seedShopAndProduct(repo, 10, 5)
		seedOrder(repo, 1, domain.OrderConfirmed, 3)
		engine := NewEngine(DefaultConfig(), repo, nil, nil)
		_, err := engine.UpdateStatus(context.Background(), 1, domain.OrderCompleted)
		assert.Equal(t, CodeInvalidOrderStatus, CodeOf(err))
	})

	t.Run("pending to confirmed leaves counters alone", func(t *testing.T) {
		repo := newFakeRepo()
		seedShopAndProduct(repo, 10, 5)
		seedOrder(repo, 1, domain.OrderPending, 3)
		engine := NewEngine(DefaultConfig(), repo, nil, nil)

		order, err := engine.UpdateStatus(context.Background(), 1, domain.OrderConfirmed)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderConfirmed, order.Status)
		assert.Equal(t, 5, repo.products[100].QuantityPending)
		assert.Equal(t, 10, repo.products[100].QuantityAvailable)
		assert.Zero(t, repo.statsCalls)
	})

	t.Run("pending to completed releases pending and bumps stats", func(t *testing.T) {
		repo := newFakeRepo()
		seedShopAndProduct(repo, 10, 5)
		seedOrder(repo, 1, domain.OrderPending, 5)
		engine := NewEngine(DefaultConfig(), repo, nil, nil)

		order, err := engine.UpdateStatus(context.Background(), 1, domain.OrderCompleted)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderCompleted, order.Status)
		assert.Equal(t, 0, repo.products[100].QuantityPending)
		assert.Equal(t, 10, repo.products[100].QuantityAvailable)

		stats := repo.stats[100]
		require.NotNil(t, stats)
		assert.Equal(t, 5, stats.TotalQuantitySold)
		assert.Equal(t, 1, stats.TotalOrders)
		require.NotNil(t, stats.LastSoldAt)
	})

	t.Run("sales aggregate accumulates across completions", func(t *testing.T) {
		repo := newFakeRepo()
		seedShopAndProduct(repo, 10, 8)
		seedOrder(repo, 1, domain.OrderPending, 5)
		seedOrder(repo, 2, domain.OrderPending, 3)
		engine := NewEngine(DefaultConfig(), repo, nil, nil)

		_, err := engine.UpdateStatus(context.Background(), 1, domain.OrderCompleted)
		require.NoError(t, err)
		_, err = engine.UpdateStatus(context.Background(), 2, domain.OrderCompleted)
		require.NoError(t, err)

		stats := repo.stats[100]
		require.NotNil(t, stats)
		assert.Equal(t, 8, stats.TotalQuantitySold)
		assert.Equal(t, 2, stats.TotalOrders)
	})

	t.Run("stats upsert runs in its own nested transaction", func(t *testing.T) {
		repo := newFakeRepo()
		seedShopAndProduct(repo, 10, 5)
		seedOrder(repo, 1, domain.OrderPending, 5)
		engine := NewEngine(DefaultConfig(), repo, nil, nil)

		_, err := engine.UpdateStatus(context.Background(), 1, domain.OrderCompleted)
		require.NoError(t, err)
		// the upsert must not run directly on the transition's transaction,
		// otherwise a failed statement would poison the whole transition
		assert.Equal(t, 2, repo.statsDepth)
	})

	t.Run("stats failure never rolls back the transition", func(t *testing.T) {
		repo := newFakeRepo()
		seedShopAndProduct(repo, 10, 5)
		seedOrder(repo, 1, domain.OrderPending, 5)
		repo.statsErr = assert.AnError
		engine := NewEngine(DefaultConfig(), repo, nil, nil)

		order, err := engine.UpdateStatus(context.Background(), 1, domain.OrderCompleted)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderCompleted, order.Status)
		assert.Equal(t, 0, repo.products[100].QuantityPending)
		assert.Equal(t, 2, repo.statsDepth)
	})

	t.Run("generic cancel restores available and releases pending", func(t *testing.T) {
		repo := newFakeRepo()
		seedShopAndProduct(repo, 10, 5)
		seedOrder(repo, 1, domain.OrderPending, 3)
		engine := NewEngine(DefaultConfig(), repo, nil, nil)

		order, err := engine.UpdateStatus(context.Background(), 1, domain.OrderCancelled)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderCancelled, order.Status)
		assert.Equal(t, 13, repo.products[100].QuantityAvailable)
		assert.Equal(t, 2, repo.products[100].QuantityPending)
	})

	t.Run("repeated cancel releases stock exactly once", func(t *testing.T) {
		repo := newFakeRepo()
		seedShopAndProduct(repo, 10, 5)
		seedOrder(repo, 1, domain.OrderPending, 3)
		engine := NewEngine(DefaultConfig(), repo, nil, nil)

		_, err := engine.UpdateStatus(context.Background(), 1, domain.OrderCancelled)
		require.NoError(t, err)
		_, err = engine.UpdateStatus(context.Background(), 1, domain.OrderCancelled)
		assert.Equal(t, CodeInvalidOrderStatus, CodeOf(err))
		assert.Equal(t, 13, repo.products[100].QuantityAvailable)
		assert.Equal(t, 2, repo.products[100].QuantityPending)
	})

	t.Run("order not found", func(t *testing.T) {
		engine := NewEngine(DefaultConfig(), newFakeRepo(), nil, nil)
		_, err := engine.UpdateStatus(context.Background(), 404, domain.OrderConfirmed)
		assert.Equal(t, CodeOrderNotFound, CodeOf(err))
	})
}

func TestEngineConfirm(t *testing.T) {
	t.Run("pending order completes with side effects", func(t *testing.T) {
		repo := newFakeRepo()
		seedShopAndProduct(repo, 10, 5)
		seedOrder(repo, 1, domain.OrderPending, 5)
		engine := NewEngine(DefaultConfig(), repo, nil, nil)

		order, err := engine.Confirm(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderCompleted, order.Status)
		assert.Equal(t, 0, repo.products[100].QuantityPending)
		require.NotNil(t, repo.stats[100])
		assert.Equal(t, 5, repo.stats[100].TotalQuantitySold)
	})

	t.Run("non-pending order is rejected", func(t *testing.T) {
		repo := newFakeRepo()
		seedShopAndProduct(repo, 10, 5)
		seedOrder(repo, 1, domain.OrderConfirmed, 5)
		engine := NewEngine(DefaultConfig(), repo, nil, nil)
		_, err := engine.Confirm(context.Background(), 1)
		assert.Equal(t, CodeInvalidOrderStatus, CodeOf(err))
	})
}

func TestEngineUpdateStatusForSeller(t *testing.T) {
	repo := newFakeRepo()
	seedShopAndProduct(repo, 10, 5)
	seedOrder(repo, 1, domain.OrderPending, 3)
	members := &fakeMembership{members: []domain.ShopMember{{ShopId: 10, BackofficeUserId: 7, Role: "owner"}}}
	engine := NewEngine(DefaultConfig(), repo, members, nil)

	_, err := engine.UpdateStatusForSeller(context.Background(), 1, domain.OrderConfirmed, 8)
	assert.Equal(t, CodeForbidden, CodeOf(err))

	order, err := engine.UpdateStatusForSeller(context.Background(), 1, domain.OrderConfirmed, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderConfirmed, order.Status)
}

func TestEngineSweepExpired(t *testing.T) {
	repo := newFakeRepo()
	seedShopAndProduct(repo, 10, 7)
	expired1 := seedOrder(repo, 1, domain.OrderPending, 2)
	expired1.ExpiresAt = time.Now().Add(-time.Hour)
	expired2 := seedOrder(repo, 2, domain.OrderPending, 3)
	expired2.ExpiresAt = time.Now().Add(-time.Minute)
	fresh := seedOrder(repo, 3, domain.OrderPending, 2)
	fresh.ExpiresAt = time.Now().Add(time.Hour)
	engine := NewEngine(DefaultConfig(), repo, nil, nil)

	swept, err := engine.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, swept)
	assert.Equal(t, domain.OrderCancelled, repo.orders[1].Status)
	assert.Equal(t, domain.OrderCancelled, repo.orders[2].Status)
	assert.Equal(t, domain.OrderPending, repo.orders[3].Status)
	// sweep goes through the generic cancel transition, restoring available
	assert.Equal(t, 15, repo.products[100].QuantityAvailable)
	assert.Equal(t, 2, repo.products[100].QuantityPending)
}

func TestEngineCustomConfig(t *testing.T) {
	repo := newFakeRepo()
	seedShopAndProduct(repo, 10, 0)
	cfg := Config{MinQuantity: 1, MaxQuantity: 5, ExpiryWindow: 30 * time.Minute}
	engine := NewEngine(cfg, repo, nil, nil)

	req := validCreateRequest()
	req.Quantity = 6
	req.TotalPrice = 6 * 25000
	_, err := engine.Create(context.Background(), req)
	assert.Equal(t, CodeInvalidQuantity, CodeOf(err))

	req = validCreateRequest()
	order, err := engine.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, req.PickupTime.Add(30*time.Minute), order.ExpiresAt)
}
