package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/miniapp/foodshare/config"
	"github.com/miniapp/foodshare/internal/api"
	"github.com/miniapp/foodshare/internal/app"
	"github.com/miniapp/foodshare/internal/webserver"
)

var (
	h        = flag.Bool("h", false, "help usage")
	showVer  = flag.Bool("v", false, "show version")
	conffile = flag.String("c", "", "config yaml file")
	initdb   = flag.Bool("initdb", false, "drop and recreate the database schema")
)

var version = "v1.0.0"

func main() {
	flag.Parse()
	if *h {
		flag.Usage()
		os.Exit(0)
	}
	if *showVer {
		fmt.Println(version)
		os.Exit(0)
	}

	cfg := config.LoadConfig(*conffile)

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	webserver.Init(cfg)
	api.Init(cfg, application.DB(),
		application.OrderEngine(),
		application.OrderQueries(),
		application.Search(),
		application.Membership())

	if err := webserver.Listen(); err != nil {
		zap.S().Fatalf("web server stopped: %v", err)
	}
}
