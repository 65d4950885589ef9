package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Timezone    string `yaml:"timezone" default:"Asia/Taipei" validate:"required"`

	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`

	Log struct {
		Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format     string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output     string `yaml:"output" default:"stdout"`
		MaxSizeMB  int    `yaml:"max_size_mb" default:"50"`
		MaxBackups int    `yaml:"max_backups" default:"5"`
		MaxAgeDays int    `yaml:"max_age_days" default:"14"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"log"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`

	Admin struct {
		Token     string  `yaml:"token"`
		RateLimit float64 `yaml:"rate_limit" default:"1" validate:"gt=0"`
		Burst     float64 `yaml:"burst" default:"5" validate:"gte=1"`
	} `yaml:"admin"`

	State struct {
		Backend string `yaml:"backend" default:"file" validate:"oneof=file redis"`
		Path    string `yaml:"path" default:"data/sentinel-state.json"`
		Redis   struct {
			Host     string        `yaml:"host" default:"localhost"`
			Port     int           `yaml:"port" default:"6379"`
			Password string        `yaml:"password"`
			DB       int           `yaml:"db"`
			Prefix   string        `yaml:"prefix" default:"sentinel"`
			Key      string        `yaml:"key" default:"state"`
			LockTTL  time.Duration `yaml:"lock_ttl" default:"5s"`
		} `yaml:"redis"`
	} `yaml:"state"`

	History struct {
		Backend        string `yaml:"backend" default:"state" validate:"oneof=state clickhouse"`
		MaxSamples     int    `yaml:"max_samples" default:"36" validate:"gte=3"`
		SampleSchedule string `yaml:"sample_schedule" default:"@every 10m"`
		ClickHouse     struct {
			Host         string        `yaml:"host" default:"localhost"`
			Port         int           `yaml:"port" default:"9000"`
			Database     string        `yaml:"database" default:"sentinel"`
			User         string        `yaml:"user" default:"default"`
			Password     string        `yaml:"password"`
			UseHTTP      bool          `yaml:"use_http"`
			DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"clickhouse"`
	} `yaml:"history"`

	Market struct {
		Symbols        []string      `yaml:"symbols" validate:"required,min=1,dive,required"`
		WebSocketURL   string        `yaml:"websocket_url" default:"wss://stream.binance.com:9443/ws/!miniTicker@arr"`
		RESTURL        string        `yaml:"rest_url" default:"https://api.binance.com/api/v3/ticker/24hr"`
		StaleAfter     time.Duration `yaml:"stale_after" default:"2m"`
		Timeout        time.Duration `yaml:"timeout" default:"15s"`
		QuoteAsset     string        `yaml:"quote_asset" default:"USDT"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
		Equities       struct {
			Enabled    bool          `yaml:"enabled" default:"true"`
			Symbols    []string      `yaml:"symbols"`
			QuoteURL   string        `yaml:"quote_url" default:"https://query1.finance.yahoo.com/v7/finance/quote"`
			Timeout    time.Duration `yaml:"timeout" default:"10s"`
			NewsTopics []string      `yaml:"news_topics"` // free-text queries; empty uses symbols
		} `yaml:"equities"`
	} `yaml:"market"`

	News struct {
		RSSURL   string             `yaml:"rss_url" default:"https://news.google.com/rss/search"`
		Language string             `yaml:"language" default:"en-US"`
		Region   string             `yaml:"region" default:"US"`
		Timeout  time.Duration      `yaml:"timeout" default:"10s"`
		Trust    map[string]float64 `yaml:"trust"`
	} `yaml:"news"`

	Translate struct {
		Enabled bool          `yaml:"enabled"`
		URL     string        `yaml:"url" default:"https://translate.googleapis.com/translate_a/single"`
		Target  string        `yaml:"target" default:"zh-TW"`
		Timeout time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"translate"`

	Trend struct {
		THLong         float64 `yaml:"th_long" default:"70" validate:"gt=0,lte=100"`
		THShort        float64 `yaml:"th_short" default:"65" validate:"gt=0,lte=100"`
		MinSlopeFire   float64 `yaml:"min_slope_fire" default:"5" validate:"gt=0"`
		MinSlopeBolt   float64 `yaml:"min_slope_bolt" default:"2" validate:"gt=0"`
		VolBoostFire   float64 `yaml:"vol_boost_fire" default:"1.05" validate:"gt=0"`
		VolWeakMoon    float64 `yaml:"vol_weak_moon" default:"0.95" validate:"gt=0"`
		BoltBand       float64 `yaml:"bolt_band" default:"5" validate:"gte=0"`
		MoonBand       float64 `yaml:"moon_band" default:"8" validate:"gte=0"`
		MoonSlope      float64 `yaml:"moon_slope" default:"-3" validate:"lt=0"`
		MinSamples     int     `yaml:"min_samples" default:"3" validate:"gte=3"`
		SlopeWindow    int     `yaml:"slope_window" default:"12" validate:"gte=2"`
		EMAWindow      int     `yaml:"ema_window" default:"6" validate:"gte=1"`
		EMAAlpha       float64 `yaml:"ema_alpha" default:"0.6" validate:"gt=0,lte=1"`
		VolShortWindow int     `yaml:"vol_short_window" default:"3" validate:"gte=1"`
	} `yaml:"trend"`

	Scoring struct {
		WStrong float64 `yaml:"w_strong" default:"0.7" validate:"gte=0"`
		WNews   float64 `yaml:"w_news" default:"0.3" validate:"gte=0"`
	} `yaml:"scoring"`

	Sentiment struct {
		CacheTTL time.Duration `yaml:"cache_ttl" default:"10m" validate:"gt=0"`
		Window   time.Duration `yaml:"window" default:"24h" validate:"gt=0"`
		Clamp    float64       `yaml:"clamp" default:"10" validate:"gt=0"`
		MaxItems int           `yaml:"max_items" default:"20" validate:"gte=1"`
		HotScore int           `yaml:"hot_score" default:"70" validate:"gte=0,lte=100"`
	} `yaml:"sentiment"`

	Reports struct {
		CacheTTL    time.Duration     `yaml:"cache_ttl" default:"15m" validate:"gt=0"`
		TopN        int               `yaml:"top_n" default:"3" validate:"gte=1,lte=20"`
		Attempts    int               `yaml:"attempts" default:"2" validate:"gte=1,lte=2"`
		Backoff     time.Duration     `yaml:"backoff" default:"800ms"`
		CallTimeout time.Duration     `yaml:"call_timeout" default:"20s" validate:"gt=0"`
		Schedule    map[string]string `yaml:"schedule"`
		Badges      string            `yaml:"badges_schedule" default:"*/10 * * * *"`
		News        struct {
			PerTopic    int `yaml:"per_topic" default:"2" validate:"gte=1"`
			MaxTopics   int `yaml:"max_topics" default:"6" validate:"gte=1"`
			MarketItems int `yaml:"market_items" default:"3" validate:"gte=1"`
		} `yaml:"news"`
	} `yaml:"reports"`

	Watch struct {
		Duration      time.Duration `yaml:"duration" default:"1h" validate:"gt=0"`
		ReminderLead  time.Duration `yaml:"reminder_lead" default:"5m" validate:"gt=0"`
		SweepSchedule string        `yaml:"sweep_schedule" default:"@every 60s"`
	} `yaml:"watch"`

	Push struct {
		Line struct {
			Token   string        `yaml:"token"`
			Secret  string        `yaml:"secret"`
			To      string        `yaml:"to"`
			BaseURL string        `yaml:"base_url" default:"https://api.line.me"`
			Timeout time.Duration `yaml:"timeout" default:"10s"`
		} `yaml:"line"`
		Kafka struct {
			Enabled      bool          `yaml:"enabled"`
			Brokers      []string      `yaml:"brokers"`
			Topic        string        `yaml:"topic" default:"sentinel.digests"`
			Compression  string        `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
			RequiredAcks int           `yaml:"required_acks" default:"-1"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"kafka"`
	} `yaml:"push"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse fills defaults, decodes YAML bytes over them and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.fillReportSchedule()
	c.normalizeSymbols()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("env override: %w", err)
	}
	c.normalizeSymbols()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks struct tags and the cross-field constraints tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	t := c.Trend
	if t.MinSlopeBolt > t.MinSlopeFire {
		return fmt.Errorf("trend.min_slope_bolt (%.2f) must not exceed trend.min_slope_fire (%.2f)", t.MinSlopeBolt, t.MinSlopeFire)
	}
	if t.VolWeakMoon > t.VolBoostFire {
		return fmt.Errorf("trend.vol_weak_moon (%.2f) must not exceed trend.vol_boost_fire (%.2f)", t.VolWeakMoon, t.VolBoostFire)
	}
	if c.Scoring.WStrong+c.Scoring.WNews <= 0 {
		return fmt.Errorf("scoring weights must not both be zero")
	}
	if c.Watch.ReminderLead >= c.Watch.Duration {
		return fmt.Errorf("watch.reminder_lead must be shorter than watch.duration")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	for phase := range c.Reports.Schedule {
		if !IsPhase(phase) {
			return fmt.Errorf("reports.schedule: unknown phase %q", phase)
		}
	}
	if c.Push.Kafka.Enabled && len(c.Push.Kafka.Brokers) == 0 {
		return fmt.Errorf("push.kafka.brokers required when kafka push is enabled")
	}
	return nil
}

// Phases are the digest slots of a day, in order.
var Phases = []string{"morning", "noon", "evening", "night"}

// IsPhase reports whether s names a digest slot.
func IsPhase(s string) bool {
	for _, p := range Phases {
		if p == s {
			return true
		}
	}
	return false
}

func (c *Config) fillReportSchedule() {
	def := map[string]string{
		"morning": "30 9 * * *",
		"noon":    "30 12 * * *",
		"evening": "0 18 * * *",
		"night":   "30 22 * * *",
	}
	if c.Reports.Schedule == nil {
		c.Reports.Schedule = def
		return
	}
	for k, v := range def {
		if _, ok := c.Reports.Schedule[k]; !ok {
			c.Reports.Schedule[k] = v
		}
	}
}

func (c *Config) normalizeSymbols() {
	c.Market.Symbols = SplitSymbols(strings.Join(c.Market.Symbols, ","))
	c.Market.Equities.Symbols = SplitSymbols(strings.Join(c.Market.Equities.Symbols, ","))
}
