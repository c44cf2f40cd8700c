package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Scorer  ScorerConfig  `yaml:"scorer" mapstructure:"scorer"`
	Panel   PanelConfig   `yaml:"panel" mapstructure:"panel"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the optional run store.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ExtractConfig configures text extraction.
type ExtractConfig struct {
	PDFProvider   string `yaml:"pdf_provider" mapstructure:"pdf_provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
}

// ScorerConfig configures the match-count-to-score mapping and the pattern
// library source.
type ScorerConfig struct {
	Base         float64 `yaml:"base" mapstructure:"base"`
	Step         float64 `yaml:"step" mapstructure:"step"`
	PatternsFile string  `yaml:"patterns_file" mapstructure:"patterns_file"`
}

// PanelConfig configures batch processing.
type PanelConfig struct {
	MinYear int `yaml:"min_year" mapstructure:"min_year"`
	MaxYear int `yaml:"max_year" mapstructure:"max_year"`
	Limit   int `yaml:"limit" mapstructure:"limit"`
}

// ServerConfig configures the scoring HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging. File, when set, adds a log file sink next to
// stderr so batch runs leave a processing trace on disk.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	File   string `yaml:"file" mapstructure:"file"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ESGSCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "esgscore.db")
	v.SetDefault("extract.pdf_provider", "native")
	v.SetDefault("extract.pdftotext_path", "pdftotext")
	v.SetDefault("scorer.base", 0.4)
	v.SetDefault("scorer.step", 0.15)
	v.SetDefault("panel.limit", 0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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

	return &cfg, nil
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

	if cfg.File != "" {
		zapCfg.OutputPaths = append(zapCfg.OutputPaths, cfg.File)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
