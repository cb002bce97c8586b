package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Backend  BackendConfig
	Terminal TerminalConfig
	Sync     SyncConfig
	Printer  PrinterConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HERMES_APP_ENV" required:"true"`
	Port         string `envconfig:"HERMES_APP_PORT" default:"7070"`
	LogLevel     string `envconfig:"HERMES_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HERMES_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"HERMES_AUTO_MIGRATE" default:"true"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Path            string        `envconfig:"HERMES_DB_PATH" default:"hermes.db"`
	BusyTimeout     time.Duration `envconfig:"HERMES_DB_BUSY_TIMEOUT" default:"5s"`
	MaxOpenConns    int           `envconfig:"HERMES_DB_MAX_OPEN_CONNS" default:"1"`
	MaxIdleConns    int           `envconfig:"HERMES_DB_MAX_IDLE_CONNS" default:"1"`
	ConnMaxLifetime time.Duration `envconfig:"HERMES_DB_CONN_MAX_LIFETIME" default:"1h"`
}

// DSN renders the sqlite connection string with the busy timeout applied.
func (d DBConfig) DSN() string {
	path := d.Path
	if path == "" {
		path = "hermes.db"
	}
	timeoutMS := d.BusyTimeout.Milliseconds()
	if timeoutMS <= 0 {
		timeoutMS = 5000
	}
	return fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_foreign_keys=on", path, timeoutMS)
}

type BackendConfig struct {
	BaseURL string        `envconfig:"HERMES_BACKEND_BASE_URL" required:"true"`
	Token   string        `envconfig:"HERMES_BACKEND_TOKEN"`
	Timeout time.Duration `envconfig:"HERMES_BACKEND_TIMEOUT" default:"10s"`
}

type TerminalConfig struct {
	BranchID  int    `envconfig:"HERMES_BRANCH_ID" required:"true"`
	CashierID int    `envconfig:"HERMES_CASHIER_ID" required:"true"`
	Label     string `envconfig:"HERMES_TERMINAL_LABEL" default:"caja-1"`
}

type SyncConfig struct {
	ProbeInterval time.Duration `envconfig:"HERMES_SYNC_PROBE_INTERVAL" default:"15s"`
	DrainBatch    int           `envconfig:"HERMES_SYNC_DRAIN_BATCH" default:"50"`
}

type PrinterConfig struct {
	ID      string `envconfig:"HERMES_PRINTER_ID"`
	Enabled bool   `envconfig:"HERMES_PRINTER_ENABLED" default:"false"`
}
