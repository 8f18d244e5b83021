package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppConfig     *AppConfig
	FinderConfig  *FinderConfig
	BrowserConfig *BrowserConfig
}

type AppConfig struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	Debug     bool   `envconfig:"DEBUG" default:"false"`
	TraceFile string `envconfig:"TRACE_FILE"`
}

type FinderConfig struct {
	Debug                 bool          `envconfig:"FUZZY_DEBUG" default:"false"`
	DisableCommonAncestor bool          `envconfig:"FUZZY_DISABLE_COMMON_ANCESTOR" default:"false"`
	SearchFrames          bool          `envconfig:"FUZZY_SEARCH_FRAMES" default:"true"`
	WaitTimeout           time.Duration `envconfig:"FUZZY_WAIT_TIMEOUT" default:"10s"`
	WaitInterval          time.Duration `envconfig:"FUZZY_WAIT_INTERVAL" default:"250ms"`
}

type BrowserConfig struct {
	Headless    bool   `envconfig:"BROWSER_HEADLESS" default:"true"`
	SlowMo      int    `envconfig:"BROWSER_SLOW_MO" default:"0"`
	Timeout     int    `envconfig:"BROWSER_TIMEOUT" default:"30000"`
	UserDataDir string `envconfig:"BROWSER_USER_DATA_DIR"`
	StartURL    string `envconfig:"BROWSER_START_URL"`
}

func GetConfig() (*Config, error) {
	_ = godotenv.Load()

	var conf Config

	if err := envconfig.Process("", &conf); err != nil {
		return nil, fmt.Errorf("read config from env vars: %w", err)
	}

	return &conf, nil
}
