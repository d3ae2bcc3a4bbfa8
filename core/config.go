package core

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address         string
		DebugAddress    string
		ShutdownTimeout time.Duration
		JWTSecret       string
		JWTExpiration   time.Duration
		DisableReqLogs  bool
	}

	DatabaseConfig struct {
		Engine        string // postgres | sqlite3
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		Path          string // sqlite3 only
	}

	LogConfig struct {
		File       string
		MaxSizeMB  int
		MaxBackups int
	}

	CalendarConfig struct {
		// ReconcileSchedule is a cron expression; empty disables periodic reconciliation.
		ReconcileSchedule string
	}

	Config struct {
		AppName      string
		Build        string
		Env          string // DEV (default), TEST, QA, PROD
		Debug        bool
		TestMode     bool
		Locale       string // en | pt_BR
		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
		Log      LogConfig
		Calendar CalendarConfig
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewConfig loads the app configuration from the environment, and from
// config/.env.<env> when that file exists.
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", env == "DEV")
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("appName", "Planner")
	v.SetDefault("build", "develop")
	v.SetDefault("locale", "pt_BR")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("serverAddress", ":8000")
	v.SetDefault("serverDebugAddress", ":4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtSecret", "c0ff33-pl4nn3r-d3v-s3cr3t")
	v.SetDefault("jwtExpiration", 7*24*time.Hour)
	v.SetDefault("disableReqLogs", false)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbName", "planner")
	v.SetDefault("dbUser", "planner")
	v.SetDefault("dbPassword", "planner")
	v.SetDefault("dbAdminUser", "")
	v.SetDefault("dbAdminPassword", "")
	v.SetDefault("dbDisableTLS", true)
	v.SetDefault("dbPath", "planner.db")

	v.SetDefault("logFile", "")
	v.SetDefault("logMaxSizeMB", 50)
	v.SetDefault("logMaxBackups", 5)

	v.SetDefault("calendarReconcileSchedule", "")

	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		Locale:       v.GetString("locale"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Address:         v.GetString("serverAddress"),
			DebugAddress:    v.GetString("serverDebugAddress"),
			ShutdownTimeout: v.GetDuration("serverShutdownTimeout"),
			JWTSecret:       v.GetString("jwtSecret"),
			JWTExpiration:   v.GetDuration("jwtExpiration"),
			DisableReqLogs:  v.GetBool("disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
			Path:          v.GetString("dbPath"),
		},
		Log: LogConfig{
			File:       v.GetString("logFile"),
			MaxSizeMB:  v.GetInt("logMaxSizeMB"),
			MaxBackups: v.GetInt("logMaxBackups"),
		},
		Calendar: CalendarConfig{
			ReconcileSchedule: v.GetString("calendarReconcileSchedule"),
		},
	}
	if err := conf.validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	return conf
}

func (c *Config) validate() error {
	switch c.Database.Engine {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("unsupported database engine %q", c.Database.Engine)
	}
	switch c.Locale {
	case "en", "pt_BR":
	default:
		return fmt.Errorf("unsupported locale %q", c.Locale)
	}
	return nil
}
