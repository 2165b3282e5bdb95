package config

import (
	"os"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

type SystemConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

type WebConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	JwtSecret string `yaml:"jwt_secret"`
}

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

type RedisConfig struct {
	Addr   string `yaml:"addr"`
	Passwd string `yaml:"passwd"`
	DB     int    `yaml:"db"`
}

type LoggerConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// OrdersConfig holds the lifecycle engine limits. Values feed the explicit
// orders.Config value object at construction time.
type OrdersConfig struct {
	MinQuantity        int `yaml:"min_quantity"`
	MaxQuantity        int `yaml:"max_quantity"`
	ExpiryMinutes      int `yaml:"expiry_minutes"`
	SweepIntervalSecs  int `yaml:"sweep_interval_secs"`
	NotifyIntervalSecs int `yaml:"notify_interval_secs"`
}

type AppConfig struct {
	System   SystemConfig `yaml:"system"`
	Web      WebConfig    `yaml:"web"`
	Database DBConfig     `yaml:"database"`
	Redis    RedisConfig  `yaml:"redis"`
	Logger   LoggerConfig `yaml:"logger"`
	Orders   OrdersConfig `yaml:"orders"`
}

var DefaultAppConfig = &AppConfig{
	System: SystemConfig{
		Appid:    "foodshare",
		Location: "Asia/Ho_Chi_Minh",
		Workdir:  "/var/foodshare",
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      1816,
		JwtSecret: "9b6de5cc-foodshare-b9dd",
	},
	Database: DBConfig{
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "foodshare",
		User:     "postgres",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LoggerConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/foodshare/foodshare.log",
	},
	Orders: OrdersConfig{
		MinQuantity:        1,
		MaxQuantity:        20,
		ExpiryMinutes:      15,
		SweepIntervalSecs:  60,
		NotifyIntervalSecs: 300,
	},
}

// LoadConfig reads the YAML file when present and applies environment
// overrides. A missing file is not an error; defaults apply.
func LoadConfig(cfile string) *AppConfig {
	c := *DefaultAppConfig
	cfg := &c
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}
	setEnvString("FOODSHARE_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvString("FOODSHARE_WEB_HOST", &cfg.Web.Host)
	setEnvInt("FOODSHARE_WEB_PORT", &cfg.Web.Port)
	setEnvString("FOODSHARE_WEB_JWT_SECRET", &cfg.Web.JwtSecret)
	setEnvString("FOODSHARE_DB_HOST", &cfg.Database.Host)
	setEnvInt("FOODSHARE_DB_PORT", &cfg.Database.Port)
	setEnvString("FOODSHARE_DB_NAME", &cfg.Database.Name)
	setEnvString("FOODSHARE_DB_USER", &cfg.Database.User)
	setEnvString("FOODSHARE_DB_PWD", &cfg.Database.Passwd)
	setEnvString("FOODSHARE_REDIS_ADDR", &cfg.Redis.Addr)
	setEnvString("FOODSHARE_REDIS_PWD", &cfg.Redis.Passwd)
	setEnvInt("FOODSHARE_ORDERS_MAX_QUANTITY", &cfg.Orders.MaxQuantity)
	setEnvInt("FOODSHARE_ORDERS_EXPIRY_MINUTES", &cfg.Orders.ExpiryMinutes)
	return cfg
}

func setEnvString(name string, val *string) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = evalue
	}
}

func setEnvInt(name string, val *int) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = cast.ToInt(evalue)
	}
}
