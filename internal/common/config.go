package common

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/joseph-ayodele/paystubs/constants"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	OCR        OCRConfig        `mapstructure:"ocr"`
	Processing ProcessingConfig `mapstructure:"processing"`
	Watch      WatchConfig      `mapstructure:"watch"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr       string        `mapstructure:"http_addr"`
	GRPCAddr       string        `mapstructure:"grpc_addr"` // empty disables the gRPC health server
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	RateLimit      float64       `mapstructure:"rate_limit"` // requests per second per client, 0 disables
	RateBurst      int           `mapstructure:"rate_burst"`
	TrustedProxies []string      `mapstructure:"trusted_proxies"` // addresses or CIDRs allowed to set forwarding headers
}

// OCRConfig holds text acquisition configuration
type OCRConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	Languages      []string `mapstructure:"languages"`
	TessdataDir    string   `mapstructure:"tessdata_dir"`
	DPI            int      `mapstructure:"dpi"`
	MaxPages       int      `mapstructure:"max_pages"`
	PSM            int      `mapstructure:"psm"`
	TempDir        string   `mapstructure:"temp_dir"`
	Pdftotext      string   `mapstructure:"pdftotext"`
	Pdftoppm       string   `mapstructure:"pdftoppm"`
	Magick         string   `mapstructure:"magick"`
	Tesseract      string   `mapstructure:"tesseract"`
	SkipConfidence float64  `mapstructure:"skip_confidence"`
}

// ProcessingConfig holds queue and batch configuration
type ProcessingConfig struct {
	Workers          int           `mapstructure:"workers"`
	QueueSize        int           `mapstructure:"queue_size"`
	JobTimeout       time.Duration `mapstructure:"job_timeout"`
	BatchConcurrency int           `mapstructure:"batch_concurrency"`
}

// WatchConfig holds the directory watcher configuration
type WatchConfig struct {
	Dirs     []string      `mapstructure:"dirs"`
	Debounce time.Duration `mapstructure:"debounce"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EnvPrefix prefixes every environment override, e.g. PAYSTUB_OCR_ENABLED.
const EnvPrefix = "PAYSTUB"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.grpc_addr", "")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 5*time.Minute)
	v.SetDefault("server.max_upload_bytes", int64(20<<20))
	v.SetDefault("server.rate_limit", 5.0)
	v.SetDefault("server.rate_burst", 10)
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("ocr.enabled", true)
	v.SetDefault("ocr.languages", []string{"eng"})
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("ocr.dpi", 300)
	v.SetDefault("ocr.max_pages", 0)
	v.SetDefault("ocr.psm", 0)
	v.SetDefault("ocr.temp_dir", "")
	v.SetDefault("ocr.pdftotext", "pdftotext")
	v.SetDefault("ocr.pdftoppm", "pdftoppm")
	v.SetDefault("ocr.magick", "magick")
	v.SetDefault("ocr.tesseract", "tesseract")
	v.SetDefault("ocr.skip_confidence", constants.DefaultOCRSkipConfidence)

	v.SetDefault("processing.workers", 2)
	v.SetDefault("processing.queue_size", 64)
	v.SetDefault("processing.job_timeout", 2*time.Minute)
	v.SetDefault("processing.batch_concurrency", 4)

	v.SetDefault("watch.dirs", []string{})
	v.SetDefault("watch.debounce", 500*time.Millisecond)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// LoadConfig reads defaults, then the optional YAML file at path (or
// ./paystub.yaml when path is empty), then PAYSTUB_* environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("paystub")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if path != "" {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, NewAppError(CodeConfig, "failed to read config file", fmt.Errorf("%w: %w", ErrInvalidInput, err))
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, NewAppError(CodeConfig, "failed to unmarshal config", fmt.Errorf("%w: %w", ErrInvalidInput, err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("server.http_addr", c.Server.HTTPAddr, Required).
		Field("server.rate_burst", c.Server.RateBurst, IntRange(0, 10000)).
		Field("ocr.languages", c.OCR.Languages, Required).
		Field("ocr.dpi", c.OCR.DPI, IntRange(72, 1200)).
		Field("ocr.psm", c.OCR.PSM, IntRange(0, 13)).
		Field("ocr.skip_confidence", c.OCR.SkipConfidence, FloatRange(0, 1)).
		Field("processing.workers", c.Processing.Workers, IntRange(1, 64)).
		Field("processing.batch_concurrency", c.Processing.BatchConcurrency, IntRange(1, constants.MaxBatchDocuments)).
		Field("logging.level", c.Logging.Level, OneOf("debug", "info", "warn", "error")).
		Field("logging.format", c.Logging.Format, OneOf("json", "text"))
	if c.Server.RateLimit < 0 {
		v.Field("server.rate_limit", c.Server.RateLimit, FloatRange(0, 1e6))
	}
	for _, p := range c.Server.TrustedProxies {
		if !validProxy(p) {
			v.errors = append(v.errors, FieldError{Field: "server.trusted_proxies", Value: p, Message: "must be an IP address or CIDR"})
		}
	}
	if c.Server.MaxUploadBytes <= 0 {
		v.errors = append(v.errors, FieldError{Field: "server.max_upload_bytes", Value: c.Server.MaxUploadBytes, Message: "must be positive"})
	}
	return v.Err(CodeConfig)
}

func validProxy(s string) bool {
	s = strings.TrimSpace(s)
	if _, err := netip.ParsePrefix(s); err == nil {
		return true
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}
