package orders

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/miniapp/foodshare/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PagedResult wraps one page of a listing with navigation flags.
// Page numbering is zero-based.
type PagedResult[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
	HasNext       bool  `json:"has_next"`
	HasPrevious   bool  `json:"has_previous"`
}

// NewPagedResult computes the page count and navigation flags for one page
// of content.
func NewPagedResult[T any](content []T, page, size int, total int64) *PagedResult[T] {
	totalPages := int((total + int64(size) - 1) / int64(size))
	return &PagedResult[T]{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
		HasNext:       page < totalPages-1,
		HasPrevious:   page > 0,
	}
}

// ListRequest is the shop/admin listing input.
type ListRequest struct {
	ShopID   *int64
	Status   *domain.OrderStatus
	FromDate *time.Time
	ToDate   *time.Time
	Page     int
	Size     int
	SortBy   string
	SortDir  string
}

// OrderView is an order row enriched with denormalized display fields for
// the backoffice listings. Referenced entities missing from the database
// render as "N/A" rather than failing the listing.
type OrderView struct {
	ID            int64     `json:"id"`
	UserId        int64     `json:"user_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone"`
	ShopId        int64     `json:"shop_id"`
	ShopName      string    `json:"shop_name"`
	ProductId     int64     `json:"product_id"`
	ProductName   string    `json:"product_name"`
	ProductImage  string    `json:"product_image"`
	Quantity      int       `json:"quantity"`
	Status        string    `json:"status"`
	StatusLabel   string    `json:"status_label"`
	PickupTime    time.Time `json:"pickup_time"`
	ExpiresAt     time.Time `json:"expires_at"`
	UnitPrice     int64     `json:"unit_price"`
	TotalPrice    int64     `json:"total_price"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// QueryService serves the paginated, filtered order listings for customers,
// shop operators and administrators.
type QueryService struct {
	repo    Repository
	members Membership
}

func NewQueryService(repo Repository, members Membership) *QueryService {
	return &QueryService{repo: repo, members: members}
}

// ListByUser returns the customer's own orders newest-first, optionally
// filtered by status.
func (s *QueryService) ListByUser(ctx context.Context, userID int64, status *domain.OrderStatus) ([]domain.Order, error) {
	return s.repo.ListOrdersByUser(ctx, userID, status)
}

// ListForShop returns one page of a shop's orders. The caller must be a
// registered member of the target shop.
func (s *QueryService) ListForShop(ctx context.Context, sellerUserID int64, req ListRequest) (*PagedResult[OrderView], error) {
	if req.ShopID == nil {
		return nil, newError(CodeInvalidRequest, "ShopId is required")
	}
	isMember, err := s.members.IsMember(ctx, sellerUserID, *req.ShopID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		zap.L().Warn("seller is not a member of shop",
			zap.Int64("seller_user_id", sellerUserID), zap.Int64("shop_id", *req.ShopID))
		return nil, newError(CodeForbidden, "You don't have permission to access this shop's orders")
	}
	return s.list(ctx, req)
}

// ListForAdmin returns one page over all shops, with an optional shop
// filter. No membership gate applies.
func (s *QueryService) ListForAdmin(ctx context.Context, req ListRequest) (*PagedResult[OrderView], error) {
	return s.list(ctx, req)
}

func (s *QueryService) list(ctx context.Context, req ListRequest) (*PagedResult[OrderView], error) {
	if req.Page < 0 {
		return nil, newError(CodeInvalidRequest, "Page number must be >= 0")
	}
	if req.Size <= 0 {
		req.Size = defaultPageSize
	}
	if req.Size > maxPageSize {
		req.Size = maxPageSize
	}

	rows, total, err := s.repo.FindOrders(ctx, ListFilter{
		ShopID:   req.ShopID,
		Status:   req.Status,
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
		Page:     req.Page,
		Size:     req.Size,
		SortBy:   req.SortBy,
		SortDir:  req.SortDir,
	})
	if err != nil {
		return nil, err
	}

	views, err := s.decorate(ctx, rows)
	if err != nil {
		return nil, err
	}

	return NewPagedResult(views, req.Page, req.Size, total), nil
}

// decorate batch-loads the referenced customers, products and shops so the
// listing never issues one lookup per row.
func (s *QueryService) decorate(ctx context.Context, rows []domain.Order) ([]OrderView, error) {
	userIDs := make([]int64, 0, len(rows))
	productIDs := make([]int64, 0, len(rows))
	shopIDs := make([]int64, 0, len(rows))
	seenUser := map[int64]bool{}
	seenProduct := map[int64]bool{}
	seenShop := map[int64]bool{}
	for i := range rows {
		if !seenUser[rows[i].UserId] {
			seenUser[rows[i].UserId] = true
			userIDs = append(userIDs, rows[i].UserId)
		}
		if !seenProduct[rows[i].ProductId] {
			seenProduct[rows[i].ProductId] = true
			productIDs = append(productIDs, rows[i].ProductId)
		}
		if !seenShop[rows[i].ShopId] {
			seenShop[rows[i].ShopId] = true
			shopIDs = append(shopIDs, rows[i].ShopId)
		}
	}

	customers, err := s.repo.ListCustomersByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.ListProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	shops, err := s.repo.ListShopsByIDs(ctx, shopIDs)
	if err != nil {
		return nil, err
	}

	customerByID := make(map[int64]*domain.CustomerUser, len(customers))
	for i := range customers {
		customerByID[customers[i].ID] = &customers[i]
	}
	productByID := make(map[int64]*domain.Product, len(products))
	for i := range products {
		productByID[products[i].ID] = &products[i]
	}
	shopByID := make(map[int64]*domain.Shop, len(shops))
	for i := range shops {
		shopByID[shops[i].ID] = &shops[i]
	}

	views := make([]OrderView, 0, len(rows))
	for i := range rows {
		views = append(views, mapOrderView(&rows[i],
			customerByID[rows[i].UserId],
			productByID[rows[i].ProductId],
			shopByID[rows[i].ShopId]))
	}
	return views, nil
}

func mapOrderView(o *domain.Order, customer *domain.CustomerUser, product *domain.Product, shop *domain.Shop) OrderView {
	v := OrderView{
		ID:            o.ID,
		UserId:        o.UserId,
		CustomerName:  "N/A",
		CustomerEmail: "N/A",
		CustomerPhone: "N/A",
		ShopId:        o.ShopId,
		ShopName:      "N/A",
		ProductId:     o.ProductId,
		ProductName:   "N/A",
		Quantity:      o.Quantity,
		Status:        o.Status.Code(),
		StatusLabel:   o.Status.Label(),
		PickupTime:    o.PickupTime,
		ExpiresAt:     o.ExpiresAt,
		UnitPrice:     o.UnitPrice,
		TotalPrice:    o.TotalPrice,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if customer != nil {
		v.CustomerName = customer.Name
		v.CustomerEmail = customer.Email
		v.CustomerPhone = customer.PhoneNumber
	}
	if product != nil {
		v.ProductName = product.Name
		v.ProductImage = product.ImageUrl
	}
	if shop != nil {
		v.ShopName = shop.Name
	}
	return v
}
