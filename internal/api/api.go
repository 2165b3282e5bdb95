package api

import (
	"gorm.io/gorm"

	"github.com/miniapp/foodshare/config"
	"github.com/miniapp/foodshare/internal/orders"
	"github.com/miniapp/foodshare/internal/products"
	"github.com/miniapp/foodshare/internal/shops"
)

var (
	appConfig  *config.AppConfig
	db         *gorm.DB
	engine     *orders.Engine
	queries    *orders.QueryService
	search     *products.SearchService
	membership *shops.MembershipService
)

// Init stores the handler dependencies and registers every route on the web
// server. Call after webserver.Init.
func Init(cfg *config.AppConfig, gdb *gorm.DB, eng *orders.Engine, qs *orders.QueryService, ss *products.SearchService, ms *shops.MembershipService) {
	appConfig = cfg
	db = gdb
	engine = eng
	queries = qs
	search = ss
	membership = ms

	registerAuthRoutes()
	registerOrderRoutes()
	registerShopOrderRoutes()
	registerShopRoutes()
	registerProductRoutes()
}
