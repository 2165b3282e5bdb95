package app

import (
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/miniapp/foodshare/config"
	"github.com/miniapp/foodshare/internal/domain"
	"github.com/miniapp/foodshare/internal/notify"
	"github.com/miniapp/foodshare/internal/orders"
	"github.com/miniapp/foodshare/internal/products"
	"github.com/miniapp/foodshare/internal/shops"
)

// Application wires the order engine, query services and background jobs
// over a shared database handle and event bus.
type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	redisDB   *redis.Client
	sched     *cron.Cron
	bus       EventBus.Bus

	orderEngine  *orders.Engine
	orderQueries *orders.QueryService
	membership   *shops.MembershipService
	search       *products.SearchService
	notifier     *notify.Service
}

var (
	_ DBProvider     = (*Application)(nil)
	_ ConfigProvider = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) OrderEngine() *orders.Engine {
	return a.orderEngine
}

func (a *Application) OrderQueries() *orders.QueryService {
	return a.orderQueries
}

func (a *Application) Membership() *shops.MembershipService {
	return a.membership
}

func (a *Application) Search() *products.SearchService {
	return a.search
}

func (a *Application) Bus() EventBus.Bus {
	return a.bus
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	initLogger(cfg)

	a.gormDB = getDatabase(cfg.Database)
	zap.S().Info("database connection successful")

	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	if cfg.Redis.Addr != "" {
		a.redisDB = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Passwd,
			DB:       cfg.Redis.DB,
		})
	}

	a.bus = EventBus.New()

	ordersCfg := orders.Config{
		MinQuantity:  cfg.Orders.MinQuantity,
		MaxQuantity:  cfg.Orders.MaxQuantity,
		ExpiryWindow: time.Duration(cfg.Orders.ExpiryMinutes) * time.Minute,
	}
	repo := orders.NewGormRepository(a.gormDB)
	a.membership = shops.NewMembershipService(a.gormDB)
	a.orderEngine = orders.NewEngine(ordersCfg, repo, a.membership, a.bus)
	a.orderQueries = orders.NewQueryService(repo, a.membership)
	a.search = products.NewSearchService(a.gormDB, a.redisDB, 60*time.Second)

	a.notifier, err = notify.NewService(a.gormDB, notify.LogSender{})
	if err != nil {
		zap.S().Errorf("notify service init failed: %v", err)
	} else if err := a.notifier.Subscribe(a.bus); err != nil {
		zap.S().Errorf("notify subscribe failed: %v", err)
	}

	// wait for database initialization to complete
	go func() {
		time.Sleep(3 * time.Second)
		a.checkSuper()
		a.checkNotifyTemplates()
	}()

	a.initJob()
}

func initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}
		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}
	zap.ReplaceGlobals(logger)
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEBUG_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		if err := a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	} else {
		if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	}
	return nil
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.notifier != nil {
		a.notifier.Close()
	}
	if a.redisDB != nil {
		_ = a.redisDB.Close()
	}
	_ = zap.L().Sync()
}
