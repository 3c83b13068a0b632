// Package config loads service settings from defaults, an optional YAML
// file, environment variables and command-line flags, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every config key when read from the
// environment, e.g. CARD_EXTRACT_LOG_LEVEL for "log.level".
const EnvPrefix = "CARD_EXTRACT"

// DefaultFile is the config file looked up in the working directory when
// no explicit path is given.
const DefaultFile = "card-extract.yaml"

// Config is the resolved service configuration.
type Config struct {
	Host  string
	Port  int
	Debug bool

	Log  LogConfig
	NER  NERConfig
	OCR  OCRConfig
	HTTP HTTPConfig

	// File is the config file that was read, or "" when none was.
	File string
}

// LogConfig controls the logger built by internal/logging.
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// NERConfig selects the entity recognizer model.
type NERConfig struct {
	// ModelPath is a prose model directory; "" uses the built-in model.
	ModelPath string
}

// OCRConfig controls the image front-end.
type OCRConfig struct {
	Language       string
	TessdataPrefix string
	MinWidth       int
	Binarize       bool
}

// HTTPConfig holds HTTP transport limits.
type HTTPConfig struct {
	MaxBodyBytes    int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Addr returns the listen address in host:port form.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("debug", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max-size-mb", 50)
	v.SetDefault("log.max-backups", 3)

	v.SetDefault("ner.model-path", "")

	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.tessdata-prefix", "")
	v.SetDefault("ocr.min-width", 1200)
	v.SetDefault("ocr.binarize", false)

	v.SetDefault("http.max-body-bytes", 1<<20)
	v.SetDefault("http.read-timeout", "15s")
	v.SetDefault("http.write-timeout", "30s")
	v.SetDefault("http.shutdown-timeout", "10s")
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// CARD_EXTRACT_LOG_MAX_SIZE_MB maps to "log.max-size-mb"
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	// Bare PORT and DEBUG are honored for container platforms that set them.
	_ = v.BindEnv("port", EnvPrefix+"_PORT", "PORT")
	_ = v.BindEnv("debug", EnvPrefix+"_DEBUG", "DEBUG")

	return v
}

// Load resolves the configuration. file is an explicit config path and may
// be empty, in which case DefaultFile is read if it exists. flags, when
// non-nil, are bound so that explicitly set flags override everything else.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := New()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	switch {
	case file != "":
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	default:
		if _, err := os.Stat(DefaultFile); err == nil {
			v.SetConfigFile(DefaultFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", DefaultFile, err)
			}
		}
	}

	cfg := FromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromViper copies the resolved values out of v.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Host:  v.GetString("host"),
		Port:  v.GetInt("port"),
		Debug: v.GetBool("debug"),
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max-size-mb"),
			MaxBackups: v.GetInt("log.max-backups"),
		},
		NER: NERConfig{
			ModelPath: v.GetString("ner.model-path"),
		},
		OCR: OCRConfig{
			Language:       v.GetString("ocr.language"),
			TessdataPrefix: v.GetString("ocr.tessdata-prefix"),
			MinWidth:       v.GetInt("ocr.min-width"),
			Binarize:       v.GetBool("ocr.binarize"),
		},
		HTTP: HTTPConfig{
			MaxBodyBytes:    v.GetInt64("http.max-body-bytes"),
			ReadTimeout:     v.GetDuration("http.read-timeout"),
			WriteTimeout:    v.GetDuration("http.write-timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown-timeout"),
		},
		File: v.ConfigFileUsed(),
	}
}

// Validate reports every invalid setting in one error.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range 1-65535", c.Port))
	}
	if c.Log.MaxSizeMB <= 0 {
		errs = append(errs, fmt.Errorf("log.max-size-mb must be positive, got %d", c.Log.MaxSizeMB))
	}
	if c.Log.MaxBackups < 0 {
		errs = append(errs, fmt.Errorf("log.max-backups must not be negative, got %d", c.Log.MaxBackups))
	}
	if c.OCR.MinWidth < 0 {
		errs = append(errs, fmt.Errorf("ocr.min-width must not be negative, got %d", c.OCR.MinWidth))
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("http.max-body-bytes must be positive, got %d", c.HTTP.MaxBodyBytes))
	}
	timeouts := []struct {
		key string
		d   time.Duration
	}{
		{"http.read-timeout", c.HTTP.ReadTimeout},
		{"http.write-timeout", c.HTTP.WriteTimeout},
		{"http.shutdown-timeout", c.HTTP.ShutdownTimeout},
	}
	for _, t := range timeouts {
		if t.d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", t.key, t.d))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
