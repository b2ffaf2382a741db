package config

import (
	"errors"
	"fmt"
	"os"

	postgres_wrapper "github.com/pekdex/dexcore/pkg/infra/postgres"
	redis_wrapper "github.com/pekdex/dexcore/pkg/infra/redis"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var ErrMissingSection = errors.New("missing config section")

type AppConfig struct {
	ServiceName string                           `yaml:"service_name"`
	OrdersDB    *postgres_wrapper.PostgresConfig `yaml:"orders_db"`
	Redis       *redis_wrapper.RedisConfig       `yaml:"redis"`
	Nats        *NatsConfig                      `yaml:"nats"`
	Oracle      *OracleConfig                    `yaml:"oracle"`
	Settlement  *SettlementConfig                `yaml:"settlement"`
	Matching    *MatchingConfig                  `yaml:"matching"`
	Backup      *BackupConfig                    `yaml:"backup"`
}

type NatsConfig struct {
	URL     string `yaml:"url"`
	Stream  string `yaml:"stream"`
	Subject string `yaml:"subject"`
	Durable string `yaml:"durable"`
}

type OracleConfig struct {
	MarketEndpoint  string `yaml:"market_endpoint"`
	NodeEndpoint    string `yaml:"node_endpoint"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	FallbackPrice   string `yaml:"fallback_price"`
}

type SettlementConfig struct {
	NodeEndpoint   string `yaml:"node_endpoint"`
	RelayEndpoint  string `yaml:"relay_endpoint"`
	RouterEndpoint string `yaml:"router_endpoint"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`

	// AccountRoutes maps a quote asset to the settlement account allowed to
	// broadcast trades in that asset. DefaultAccount is used for quote assets
	// without an entry.
	AccountRoutes  map[string]string `yaml:"account_routes"`
	DefaultAccount string            `yaml:"default_account"`

	// Credentials maps a settlement account to its active key. Values are
	// usually env references expanded at load time.
	Credentials map[string]string `yaml:"credentials"`
}

type MatchingConfig struct {
	IntervalSeconds int    `yaml:"interval_seconds"`
	Epsilon         string `yaml:"epsilon"`
}

type BackupConfig struct {
	SnapshotDelaySeconds int `yaml:"snapshot_delay_seconds"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	fields := []interface{}{
		"func",
		"config.readFromFile",
		"filePath",
		filePath,
	}

	sugar := zap.S().With(fields...)

	sugar.Debug("Load config...")
	zap.S().Debugf("CONFIG_FILE=%v", filePath)

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}

	err = yaml.Unmarshal(configBytes, cfg)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}

// Validate checks the sections the matcher cannot run without. Optional
// sections (redis, nats, backup) are nil-checked at their use sites.
func (c *AppConfig) Validate() error {
	if c.OrdersDB == nil {
		return fmt.Errorf("%w: orders_db", ErrMissingSection)
	}
	if c.Settlement == nil {
		return fmt.Errorf("%w: settlement", ErrMissingSection)
	}
	if c.Matching == nil {
		return fmt.Errorf("%w: matching", ErrMissingSection)
	}
	return nil
}
