package products

import (
	"context"
	"fmt"
	"math"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/miniapp/foodshare/internal/domain"
	"github.com/miniapp/foodshare/internal/orders"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	popularCachePrefix = "foodshare:popular"
)

// PopularItem is a product decorated with its lifetime sales volume. When the
// caller supplied coordinates DistanceKm carries the great-circle distance to
// the product's shop.
type PopularItem struct {
	ProductId         int64    `json:"product_id"`
	ShopId            int64    `json:"shop_id"`
	Name              string   `json:"name"`
	ImageUrl          string   `json:"image_url"`
	Price             int64    `json:"price"`
	QuantityAvailable int      `json:"quantity_available"`
	ShopName          string   `json:"shop_name"`
	TotalQuantitySold int64    `json:"total_quantity_sold"`
	TotalOrders       int64    `json:"total_orders"`
	DistanceKm        *float64 `json:"distance_km,omitempty"`
}

// SearchService ranks active products by lifetime units sold. Pages without a
// location filter are served through a short-lived redis cache; the cache
// client is optional and a nil client degrades to direct queries.
type SearchService struct {
	db       *gorm.DB
	rdb      *redis.Client
	cacheTTL time.Duration
}

func NewSearchService(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) *SearchService {
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}
	return &SearchService{db: db, rdb: rdb, cacheTTL: cacheTTL}
}

type popularRow struct {
	ProductId         int64
	ShopId            int64
	Name              string
	ImageUrl          string
	Price             int64
	QuantityAvailable int
	ShopName          string
	ShopLatitude      float64
	ShopLongitude     float64
	TotalQuantitySold int64
	TotalOrders       int64
}

// PopularProducts returns one page of active products ordered by units sold,
// best sellers first. Products that never sold rank last.
func (s *SearchService) PopularProducts(ctx context.Context, lat, lng *float64, page, size int) (*orders.PagedResult[PopularItem], error) {
	if page < 0 {
		return nil, errors.New("page number must be >= 0")
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	located := lat != nil && lng != nil
	if !located {
		if cached := s.cacheGet(ctx, page, size); cached != nil {
			return cached, nil
		}
	}

	base := s.db.WithContext(ctx).Table("product").
		Where("product.status = ?", domain.EntityActive)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "count active products")
	}

	var rows []popularRow
	err := base.Session(&gorm.Session{}).
		Select(`product.id AS product_id, product.shop_id, product.name, product.image_url,
			product.price, product.quantity_available,
			shop.name AS shop_name, shop.latitude AS shop_latitude, shop.longitude AS shop_longitude,
			COALESCE(pss.total_quantity_sold, 0) AS total_quantity_sold,
			COALESCE(pss.total_orders, 0) AS total_orders`).
		Joins("LEFT JOIN product_sales_stats pss ON pss.product_id = product.id").
		Joins("LEFT JOIN shop ON shop.id = product.shop_id").
		Order("total_quantity_sold DESC, product.id ASC").
		Offset(page * size).Limit(size).
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "query popular products")
	}

	items := make([]PopularItem, 0, len(rows))
	for _, r := range rows {
		item := PopularItem{
			ProductId:         r.ProductId,
			ShopId:            r.ShopId,
			Name:              r.Name,
			ImageUrl:          r.ImageUrl,
			Price:             r.Price,
			QuantityAvailable: r.QuantityAvailable,
			ShopName:          r.ShopName,
			TotalQuantitySold: r.TotalQuantitySold,
			TotalOrders:       r.TotalOrders,
		}
		if located {
			d := HaversineKm(*lat, *lng, r.ShopLatitude, r.ShopLongitude)
			item.DistanceKm = &d
		}
		items = append(items, item)
	}

	result := orders.NewPagedResult(items, page, size, total)
	if !located {
		s.cacheSet(ctx, page, size, result)
	}
	return result, nil
}

func popularCacheKey(page, size int) string {
	return fmt.Sprintf("%s:%d:%d", popularCachePrefix, page, size)
}

func (s *SearchService) cacheGet(ctx context.Context, page, size int) *orders.PagedResult[PopularItem] {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, popularCacheKey(page, size)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zap.L().Warn("popular products cache read failed", zap.Error(err))
		}
		return nil
	}
	var result orders.PagedResult[PopularItem]
	if err := jsoniter.Unmarshal(raw, &result); err != nil {
		zap.L().Warn("popular products cache decode failed", zap.Error(err))
		return nil
	}
	return &result
}

func (s *SearchService) cacheSet(ctx context.Context, page, size int, result *orders.PagedResult[PopularItem]) {
	if s.rdb == nil {
		return
	}
	raw, err := jsoniter.Marshal(result)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, popularCacheKey(page, size), raw, s.cacheTTL).Err(); err != nil {
		zap.L().Warn("popular products cache write failed", zap.Error(err))
	}
}

// HaversineKm returns the great-circle distance between two points in
// kilometers.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
