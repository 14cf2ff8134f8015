package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"cpperf/internal/exclusion"
	"cpperf/internal/logging"
	"cpperf/internal/service"
	"cpperf/internal/voyage"
	"cpperf/internal/warranty"
	"cpperf/internal/weather"
)

// Config materialises application configuration.
type Config struct {
	Voyage       VoyageConfig       `mapstructure:"voyage"`
	Charterparty CharterpartyConfig `mapstructure:"charterparty"`
	Weather      WeatherConfig      `mapstructure:"weather"`
	Exclusions   []ExclusionConfig  `mapstructure:"exclusions"`
	Analysis     AnalysisConfig     `mapstructure:"analysis"`
	Logging      logging.Config     `mapstructure:"logging"`
	API          APIConfig          `mapstructure:"api"`
	Alerting     AlertingConfig     `mapstructure:"alerting"`
}

// VoyageConfig labels the assessed voyage. COSP, EOSP and CP date accept
// the same formats as exclusion bounds.
type VoyageConfig struct {
	VesselName string  `mapstructure:"vessel_name"`
	IMO        string  `mapstructure:"imo"`
	VesselType string  `mapstructure:"vessel_type"`
	DWT        float64 `mapstructure:"dwt_mt"`
	GRT        float64 `mapstructure:"grt"`
	YearBuilt  int     `mapstructure:"year_built"`
	VoyageNo   string  `mapstructure:"voyage_no"`
	FromPort   string  `mapstructure:"from_port"`
	ToPort     string  `mapstructure:"to_port"`
	COSP       any     `mapstructure:"cosp"`
	EOSP       any     `mapstructure:"eosp"`
	Charterer  string  `mapstructure:"charterer"`
	CPDate     any     `mapstructure:"cp_date"`
}

// CharterpartyConfig holds the warranted performance figures.
type CharterpartyConfig struct {
	WarrantedSpeedKnots          float64 `mapstructure:"warranted_speed_knots"`
	WarrantedConsumptionMTPerDay float64 `mapstructure:"warranted_consumption_mt_per_day"`
	FuelTolerancePct             float64 `mapstructure:"fuel_tolerance_pct"`
	SpeedToleranceKnots          float64 `mapstructure:"speed_tolerance_knots"`
}

// WeatherConfig is the good weather definition.
type WeatherConfig struct {
	MaxBeaufort    int     `mapstructure:"max_beaufort"`
	MaxWaveHeightM float64 `mapstructure:"max_wave_height_m"`
}

// ExclusionConfig is one period left out of the assessment. Start and End
// accept RFC 3339 timestamps or bare dates; a bare-date End covers that day.
type ExclusionConfig struct {
	Start  any    `mapstructure:"start"`
	End    any    `mapstructure:"end"`
	Reason string `mapstructure:"reason"`
}

// AnalysisConfig tunes batch runs.
type AnalysisConfig struct {
	Workers             int     `mapstructure:"workers"`
	BunkerPriceUSDPerMT float64 `mapstructure:"bunker_price_usd_per_mt"`
}

// APIConfig configures the HTTP server.
type APIConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadMB     int64         `mapstructure:"max_upload_mb"`
}

// AlertingConfig defines verdict delivery.
type AlertingConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Timeout  time.Duration  `mapstructure:"timeout"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig 描述 Telegram 推送参数。
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	loadDotEnv(path)

	v := viper.New()
	v.SetEnvPrefix("CPPERF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadDotEnv loads the first .env found next to the config file or in the
// working directory. Variables already set in the environment win.
func loadDotEnv(configPath string) {
	paths := []string{".env"}
	if configPath != "" {
		paths = append([]string{filepath.Join(filepath.Dir(configPath), ".env")}, paths...)
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	for _, key := range []string{"vessel_name", "imo", "vessel_type", "voyage_no", "from_port", "to_port", "cosp", "eosp", "charterer", "cp_date"} {
		v.SetDefault("voyage."+key, "")
	}
	v.SetDefault("voyage.dwt_mt", 0)
	v.SetDefault("voyage.grt", 0)
	v.SetDefault("voyage.year_built", 0)

	v.SetDefault("charterparty.warranted_speed_knots", 13.0)
	v.SetDefault("charterparty.warranted_consumption_mt_per_day", 19.9)
	v.SetDefault("charterparty.fuel_tolerance_pct", 5.0)
	v.SetDefault("charterparty.speed_tolerance_knots", 0.5)

	v.SetDefault("weather.max_beaufort", 5)
	v.SetDefault("weather.max_wave_height_m", 2.0)

	v.SetDefault("exclusions", []any{})

	v.SetDefault("analysis.workers", 4)
	v.SetDefault("analysis.bunker_price_usd_per_mt", 500.0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("api.listen_addr", ":8080")
	v.SetDefault("api.read_timeout", "15s")
	v.SetDefault("api.shutdown_timeout", "10s")
	v.SetDefault("api.max_upload_mb", 32)

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.timeout", "10s")
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if _, err := c.Params(); err != nil {
		return err
	}
	if c.Analysis.Workers <= 0 {
		return fmt.Errorf("analysis.workers must be greater than zero")
	}
	if c.API.MaxUploadMB <= 0 {
		return fmt.Errorf("api.max_upload_mb must be greater than zero")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token 必须配置")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id 必须配置")
		}
	}
	return nil
}

// Terms returns the charterparty warranty terms.
func (c *Config) Terms() warranty.Terms {
	return warranty.Terms{
		WarrantedSpeedKnots:          c.Charterparty.WarrantedSpeedKnots,
		WarrantedConsumptionMTPerDay: c.Charterparty.WarrantedConsumptionMTPerDay,
		FuelTolerancePct:             c.Charterparty.FuelTolerancePct,
		SpeedToleranceKnots:          c.Charterparty.SpeedToleranceKnots,
	}
}

// Thresholds returns the good weather thresholds.
func (c *Config) Thresholds() weather.Thresholds {
	return weather.Thresholds{
		MaxBeaufort:    c.Weather.MaxBeaufort,
		MaxWaveHeightM: c.Weather.MaxWaveHeightM,
	}
}

// Params converts the configuration into a validated run parameter snapshot.
func (c *Config) Params() (service.Params, error) {
	periods := make([]exclusion.Period, 0, len(c.Exclusions))
	for i, ex := range c.Exclusions {
		p, err := ex.Period()
		if err != nil {
			return service.Params{}, fmt.Errorf("exclusions[%d]: %w", i, err)
		}
		periods = append(periods, p)
	}

	info, err := c.Voyage.Info()
	if err != nil {
		return service.Params{}, err
	}

	params := service.Params{
		Terms:       c.Terms(),
		Thresholds:  c.Thresholds(),
		Exclusions:  periods,
		BunkerPrice: decimal.NewFromFloat(c.Analysis.BunkerPriceUSDPerMT),
		Voyage:      info,
	}
	if err := params.Validate(); err != nil {
		return service.Params{}, err
	}
	return params, nil
}

// Info converts the voyage particulars. A bare-date EOSP covers that day.
func (v VoyageConfig) Info() (voyage.Info, error) {
	cosp, _, err := optionalBound(v.COSP)
	if err != nil {
		return voyage.Info{}, fmt.Errorf("voyage.cosp: %w", err)
	}
	eosp, dateOnly, err := optionalBound(v.EOSP)
	if err != nil {
		return voyage.Info{}, fmt.Errorf("voyage.eosp: %w", err)
	}
	if dateOnly {
		eosp = eosp.Add(24*time.Hour - time.Nanosecond)
	}
	cpDate, _, err := optionalBound(v.CPDate)
	if err != nil {
		return voyage.Info{}, fmt.Errorf("voyage.cp_date: %w", err)
	}

	return voyage.Info{
		Vessel: voyage.Vessel{
			Name:      strings.TrimSpace(v.VesselName),
			IMO:       strings.TrimSpace(v.IMO),
			Type:      strings.TrimSpace(v.VesselType),
			DWT:       v.DWT,
			GRT:       v.GRT,
			YearBuilt: v.YearBuilt,
		},
		Passage: voyage.Passage{
			VoyageNo: strings.TrimSpace(v.VoyageNo),
			FromPort: strings.TrimSpace(v.FromPort),
			ToPort:   strings.TrimSpace(v.ToPort),
			COSP:     cosp,
			EOSP:     eosp,
		},
		Charter: voyage.Charter{
			Charterer: strings.TrimSpace(v.Charterer),
			CPDate:    cpDate,
		},
	}, nil
}

// optionalBound is parseBound where an empty value means unset.
func optionalBound(raw any) (time.Time, bool, error) {
	if raw == nil {
		return time.Time{}, false, nil
	}
	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		return time.Time{}, false, nil
	}
	return parseBound(raw)
}

// Period parses the configured bounds.
func (e ExclusionConfig) Period() (exclusion.Period, error) {
	start, _, err := parseBound(e.Start)
	if err != nil {
		return exclusion.Period{}, fmt.Errorf("start: %w", err)
	}
	end, dateOnly, err := parseBound(e.End)
	if err != nil {
		return exclusion.Period{}, fmt.Errorf("end: %w", err)
	}
	if dateOnly {
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	return exclusion.Period{Start: start, End: end, Reason: e.Reason}, nil
}

const dateLayout = "2006-01-02"

// parseBound also reports whether the value carried no time of day.
func parseBound(raw any) (time.Time, bool, error) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, false, fmt.Errorf("missing")
	case time.Time:
		// YAML decodes unquoted dates straight to midnight timestamps.
		t := v.UTC()
		return t, t.Equal(t.Truncate(24 * time.Hour)), nil
	case string:
		s := strings.TrimSpace(v)
		if t, err := time.Parse(dateLayout, s); err == nil {
			return t, true, nil
		}
		t, err := cast.ToTimeE(s)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid time %q: %w", s, err)
		}
		return t.UTC(), false, nil
	default:
		t, err := cast.ToTimeE(v)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid time %v: %w", v, err)
		}
		return t.UTC(), false, nil
	}
}

// ResolveWorkers returns either the CLI override or config default.
func (c *Config) ResolveWorkers(override int) int {
	if override > 0 {
		return override
	}
	return c.Analysis.Workers
}
