package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/woosin-customs/analytics-cli/internal/analyzer"
)

// Config holds the full application configuration.
type Config struct {
	Weights    analyzer.Weights `yaml:"weights" mapstructure:"weights"`
	Limits     analyzer.Limits  `yaml:"limits" mapstructure:"limits"`
	Thresholds ThresholdsConfig `yaml:"thresholds" mapstructure:"thresholds"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// ThresholdsConfig holds the qualitative complexity cutoffs. Only
// output rendering consumes these; the engine produces raw scores.
type ThresholdsConfig struct {
	Low  float64 `yaml:"low" mapstructure:"low"`
	High float64 `yaml:"high" mapstructure:"high"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CUSTOMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	weights := analyzer.DefaultWeights()
	v.SetDefault("weights.lane", weights.Lane)
	v.SetDefault("weights.spec", weights.Spec)
	v.SetDefault("weights.requirement", weights.Requirement)
	v.SetDefault("weights.exemption", weights.Exemption)
	v.SetDefault("weights.fta", weights.FTA)
	v.SetDefault("weights.transaction", weights.Transaction)
	v.SetDefault("weights.trader", weights.Trader)

	limits := analyzer.DefaultLimits()
	v.SetDefault("limits.max_scored_declarations", limits.MaxScoredDeclarations)
	v.SetDefault("limits.max_preparers", limits.MaxPreparers)
	v.SetDefault("limits.max_importers", limits.MaxImporters)
	v.SetDefault("limits.max_forwarders", limits.MaxForwarders)
	v.SetDefault("limits.prune_row_threshold", limits.PruneRowThreshold)

	v.SetDefault("thresholds.low", 100.0)
	v.SetDefault("thresholds.high", 200.0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that all weights are positive and the thresholds
// are ordered.
func (c *Config) Validate() error {
	weights := map[string]float64{
		"lane":        c.Weights.Lane,
		"spec":        c.Weights.Spec,
		"requirement": c.Weights.Requirement,
		"exemption":   c.Weights.Exemption,
		"fta":         c.Weights.FTA,
		"transaction": c.Weights.Transaction,
		"trader":      c.Weights.Trader,
	}
	for name, w := range weights {
		if w <= 0 {
			return eris.Errorf("config: weights.%s must be positive (got %v)", name, w)
		}
	}
	if c.Thresholds.High < c.Thresholds.Low {
		return eris.Errorf("config: thresholds.high (%v) below thresholds.low (%v)", c.Thresholds.High, c.Thresholds.Low)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
