package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Logging  LoggingConfig  `yaml:"logging"`
	Alerting AlertingConfig `yaml:"alerting"`
	Scanner  ScannerConfig  `yaml:"scanner"`
	Provider ProviderConfig `yaml:"provider"`
	Filters  FiltersConfig  `yaml:"filters"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Risk     RiskConfig     `yaml:"risk"`
	Links    LinksConfig    `yaml:"links"`
	Sink     SinkConfig     `yaml:"sink"`
	Stores   StoresConfig   `yaml:"stores"`
	Security SecurityConfig `yaml:"security"`
	API      APIConfig      `yaml:"api"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type AppConfig struct {
	InstanceID      string        `yaml:"instance_id"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // json|console
}

type AlertingConfig struct {
	AppName string `yaml:"app_name"`
	Token   string `yaml:"token"`
	ChatID  string `yaml:"chat_id"`
}

// Cycle discipline: one scan every Interval, at most one in flight.
type ScannerConfig struct {
	Interval           time.Duration `yaml:"interval"`
	MinSpecificResults int           `yaml:"min_specific_results"` // fallback queries run below this
	SourceConcurrency  int           `yaml:"source_concurrency"`
	RiskConcurrency    int           `yaml:"risk_concurrency"`
}

type ProviderConfig struct {
	Endpoint        string        `yaml:"endpoint"` // search URL, query appended as ?q=
	ChainID         string        `yaml:"chain_id"`
	Timeout         time.Duration `yaml:"timeout"`
	SpecificQueries []string      `yaml:"specific_queries"`
	FallbackQueries []string      `yaml:"fallback_queries"`
	RatePerSec      float64       `yaml:"rate_per_sec"` // provider request budget
	RateBurst       int           `yaml:"rate_burst"`
}

type FiltersConfig struct {
	MaxAge             time.Duration `yaml:"max_age"`
	MinLiquidityUSD    float64       `yaml:"min_liquidity_usd"`
	MaxLiquidityUSD    float64       `yaml:"max_liquidity_usd"`
	MaxFDV             float64       `yaml:"max_fdv"`
	MinTxns5m          int           `yaml:"min_txns_5m"`
	MinBuySellRatio5m  float64       `yaml:"min_buy_sell_ratio_5m"`
	MinVolume5m        float64       `yaml:"min_volume_5m"`
	MinHolders         int           `yaml:"min_holders"` // 0 disables the holders check
	Keywords           []string      `yaml:"keywords"`
}

type ScoringConfig struct {
	WeightBSR           float64 `yaml:"weight_bsr"`
	WeightVolume5m      float64 `yaml:"weight_volume_5m"`
	WeightVolume1h      float64 `yaml:"weight_volume_1h"`
	WeightPriceChange5m float64 `yaml:"weight_price_change_5m"`
	WeightPriceChange1h float64 `yaml:"weight_price_change_1h"`
	Volume5mDivisor     float64 `yaml:"volume_5m_divisor"`
	Volume1hDivisor     float64 `yaml:"volume_1h_divisor"`
	Volume5mCap         float64 `yaml:"volume_5m_cap"`
	Volume1hCap         float64 `yaml:"volume_1h_cap"`
	LiquidityBonus      float64 `yaml:"liquidity_bonus"`
	// Liquidity band and FDV soft cap for the bonus/penalty terms.
	// Default to the filter thresholds when left zero.
	BonusLiquidityMin float64 `yaml:"bonus_liquidity_min"`
	BonusLiquidityMax float64 `yaml:"bonus_liquidity_max"`
	FDVSoftCap        float64 `yaml:"fdv_soft_cap"`
	FDVPenaltyDivisor float64 `yaml:"fdv_penalty_divisor"`
	MinScore          float64 `yaml:"min_score"` // rank threshold
	TopN              int     `yaml:"top_n"`
}

type RiskConfig struct {
	Endpoint string        `yaml:"endpoint"` // verdict URL template, %s = token address; empty disables
	Timeout  time.Duration `yaml:"timeout"`
}

// Per-candidate reference links, %s = token address.
type LinksConfig struct {
	Marketplace string `yaml:"marketplace"`
	Screener    string `yaml:"screener"`
}

type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

type SinkConfig struct {
	NATS NATSConfig `yaml:"nats"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type StoresConfig struct {
	Redis RedisConfig `yaml:"redis"`
}

type JWTConfig struct {
	Enabled       bool          `yaml:"enabled"`
	PublicKeyPath string        `yaml:"public_key_path"`
	Audience      string        `yaml:"audience"`
	Issuer        string        `yaml:"issuer"`
	Leeway        time.Duration `yaml:"leeway"`
}

type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

type RateBucketConfig struct {
	RefillPerSec int `yaml:"refill_per_sec"`
	Burst        int `yaml:"burst"`
}

type RateLimitConfig struct {
	ByIP  RateBucketConfig `yaml:"by_ip"`
	ByJWT RateBucketConfig `yaml:"by_jwt"`
}

type CORSConfig struct {
	Enabled bool     `yaml:"enabled"`
	Origins []string `yaml:"origins"`
	Methods []string `yaml:"methods"`
	Headers []string `yaml:"headers"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	CORS         CORSConfig    `yaml:"cors"`
}

type APIConfig struct {
	HTTP      HTTPConfig      `yaml:"http"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type PyroscopeConfig struct {
	Enabled    bool              `yaml:"enabled"`
	AppName    string            `yaml:"app_name"`
	ServerAddr string            `yaml:"server_addr"`
	AuthToken  string            `yaml:"auth_token"`
	Tags       map[string]string `yaml:"tags"`
}

type MetricsConfig struct {
	Pyroscope PyroscopeConfig `yaml:"pyroscope"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err = yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Scanner.Interval <= 0 {
		c.Scanner.Interval = 60 * time.Second
	}
	if c.Scanner.SourceConcurrency <= 0 {
		c.Scanner.SourceConcurrency = 3
	}
	if c.Scanner.RiskConcurrency <= 0 {
		c.Scanner.RiskConcurrency = 4
	}
	if c.Provider.Timeout <= 0 {
		c.Provider.Timeout = 10 * time.Second
	}
	if c.Provider.RatePerSec <= 0 {
		c.Provider.RatePerSec = 5
	}
	if c.Provider.RateBurst <= 0 {
		c.Provider.RateBurst = 5
	}
	if c.Risk.Timeout <= 0 {
		c.Risk.Timeout = 5 * time.Second
	}
	if c.Scoring.TopN <= 0 {
		c.Scoring.TopN = 10
	}
	if c.Scoring.BonusLiquidityMin == 0 {
		c.Scoring.BonusLiquidityMin = c.Filters.MinLiquidityUSD
	}
	if c.Scoring.BonusLiquidityMax == 0 {
		c.Scoring.BonusLiquidityMax = c.Filters.MaxLiquidityUSD
	}
	if c.Scoring.FDVSoftCap == 0 {
		c.Scoring.FDVSoftCap = c.Filters.MaxFDV
	}
}

// Validate rejects configurations the scheduler must not start with.
// A scanner without a delivery target would run vacuous cycles.
func (c *Config) Validate() error {
	if c.Provider.Endpoint == "" {
		return errors.New("provider.endpoint is required")
	}
	if c.Provider.ChainID == "" {
		return errors.New("provider.chain_id is required")
	}
	if len(c.Provider.SpecificQueries) == 0 && len(c.Provider.FallbackQueries) == 0 {
		return errors.New("provider: at least one query is required")
	}
	if c.Sink.NATS.URL == "" {
		return errors.New("sink.nats.url is required")
	}
	if c.Sink.NATS.Subject == "" {
		return errors.New("sink.nats.subject is required")
	}
	if c.Scoring.FDVPenaltyDivisor < 0 {
		return fmt.Errorf("scoring.fdv_penalty_divisor must be >= 0, got %f", c.Scoring.FDVPenaltyDivisor)
	}
	return nil
}
