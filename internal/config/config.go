package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Auth     AuthConfig     `yaml:"auth"`
	Render   RenderConfig   `yaml:"render"`
	Logging  LoggingConfig  `yaml:"logging"`

	Secrets Secrets `yaml:"-"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"console"`
}

type ServerConfig struct {
	Host          string        `yaml:"host" default:"0.0.0.0"`
	Port          string        `yaml:"port" default:"12600"`
	ReadTimeout   time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout  time.Duration `yaml:"write_timeout" default:"2m"`
	MaxUploadSize int64         `yaml:"max_upload_size" default:"52428800"`
	AllowedOrigin string        `yaml:"allowed_origin" default:"http://localhost:3000"`
}

func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type DatabaseConfig struct {
	Path        string `yaml:"path" default:"./folio.db"`
	Compression string `yaml:"compression" default:"zstd"`
}

type StorageConfig struct {
	Backend       string `yaml:"backend" default:"fs"`
	Bucket        string `yaml:"bucket" default:""`
	Region        string `yaml:"region" default:"auto"`
	Endpoint      string `yaml:"endpoint" default:""`
	PublicBaseURL string `yaml:"public_base_url" default:"http://localhost:12600/uploads"`
	KeyPrefix     string `yaml:"key_prefix" default:"blog/images/"`
	PathStyle     bool   `yaml:"path_style" default:"false"`
	RootDir       string `yaml:"root_dir" default:"./uploads"`
}

type IngestConfig struct {
	UploadConcurrency int           `yaml:"upload_concurrency" default:"8"`
	Timeout           time.Duration `yaml:"timeout" default:"90s"`
	MaxArchiveSize    int64         `yaml:"max_archive_size" default:"104857600"`
	MaxEntrySize      int64         `yaml:"max_entry_size" default:"26214400"`
	DuplicateImages   string        `yaml:"duplicate_images" default:"overwrite"`
}

type AuthConfig struct {
	Enabled       bool          `yaml:"enabled" default:"true"`
	SessionName   string        `yaml:"session_name" default:"session-token"`
	SessionMaxAge time.Duration `yaml:"session_max_age" default:"168h"`
	CookieSecure  bool          `yaml:"cookie_secure" default:"false"`
	AllowedEmails []string      `yaml:"allowed_emails"`
}

type RenderConfig struct {
	Engine      string `yaml:"engine" default:"mmark"`
	SyntaxTheme string `yaml:"syntax_theme" default:"gruvbox"`
}

// Secrets are never read from the YAML file, only from the environment.
type Secrets struct {
	S3AccessKeyID     string
	S3SecretAccessKey string
	GoogleClientID    string
	SessionSecret     string
}

const (
	EnvConfigPath        = "FOLIO_CONFIG"
	EnvLogLevel          = "FOLIO_LOG_LEVEL"
	EnvDBPath            = "FOLIO_DB_PATH"
	EnvS3AccessKeyID     = "S3_ACCESS_KEY_ID"
	EnvS3SecretAccessKey = "S3_SECRET_ACCESS_KEY"
	EnvGoogleClientID    = "GOOGLE_CLIENT_ID"
	EnvSessionSecret     = "SESSION_SECRET"
)

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides and secrets. A missing file is not an error.
func Load(path string) (*Config, error) {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	data, err := os.ReadFile(path)
	if err != nil {
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
	} else if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func applyEnv(config *Config) {
	if v := os.Getenv(EnvLogLevel); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		config.Database.Path = v
	}

	config.Secrets = Secrets{
		S3AccessKeyID:     os.Getenv(EnvS3AccessKeyID),
		S3SecretAccessKey: os.Getenv(EnvS3SecretAccessKey),
		GoogleClientID:    os.Getenv(EnvGoogleClientID),
		SessionSecret:     os.Getenv(EnvSessionSecret),
	}
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageS3:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the s3 backend")
		}
	case StorageFS:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Database.Compression {
	case CompressionZstd, CompressionGzip:
	default:
		return fmt.Errorf("unknown database compression %q", c.Database.Compression)
	}

	switch c.Ingest.DuplicateImages {
	case DuplicateImagesOverwrite, DuplicateImagesReject:
	default:
		return fmt.Errorf("unknown ingest.duplicate_images policy %q", c.Ingest.DuplicateImages)
	}

	switch c.Render.Engine {
	case RendererMmark, RendererClassic:
	default:
		return fmt.Errorf("unknown render engine %q", c.Render.Engine)
	}

	if c.Ingest.UploadConcurrency < 0 {
		return fmt.Errorf("ingest.upload_concurrency must not be negative")
	}

	return nil
}

const (
	StorageS3 = "s3"
	StorageFS = "fs"

	CompressionZstd = "zstd"
	CompressionGzip = "gzip"

	DuplicateImagesOverwrite = "overwrite"
	DuplicateImagesReject    = "reject"
)

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

var durationType = reflect.TypeOf(time.Duration(0))

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		if field.Type() == durationType {
			if d, err := time.ParseDuration(defaultValue); err == nil {
				field.SetInt(int64(d))
			}
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int, reflect.Int64:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
