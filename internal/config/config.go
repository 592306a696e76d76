package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/spf13/viper"
)

const envPrefix = "HOMELOTO"

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Log      *LogConfig      `mapstructure:"log"`
	Database *DatabaseConfig `mapstructure:"database"`
	Redis    *RedisConfig    `mapstructure:"redis"`
	Auth     *AuthConfig     `mapstructure:"auth"`
	Media    *MediaConfig    `mapstructure:"media"`
	Mail     *MailConfig     `mapstructure:"mail"`
	Lottery  *LotteryConfig  `mapstructure:"lottery"`
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	TokenTTL           time.Duration `mapstructure:"token_ttl"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DatabaseConfig either carries a full DSN or the postgres connection parts.
type DatabaseConfig struct {
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	Provider           string `mapstructure:"provider"`
	FirebaseAPIKey     string `mapstructure:"firebase_api_key"`
	FirebaseProjectID  string `mapstructure:"firebase_project_id"`
	CredentialsFile    string `mapstructure:"credentials_file"`
	IdentityToolkitURL string `mapstructure:"identity_toolkit_url"`
}

type MediaConfig struct {
	Driver        string `mapstructure:"driver"`
	LocalDir      string `mapstructure:"local_dir"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	Bucket        string `mapstructure:"bucket"`
}

type MailConfig struct {
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	From           string `mapstructure:"from"`
	AdminNotify    string `mapstructure:"admin_notify"`
}

type LotteryConfig struct {
	TicketPrice int64  `mapstructure:"ticket_price"`
	Currency    string `mapstructure:"currency"`
}

const (
	AuthProviderLocal    = "local"
	AuthProviderFirebase = "firebase"

	MediaDriverLocal = "local"
	MediaDriverGCS   = "gcs"
)

// Every key gets a default, otherwise AutomaticEnv cannot surface it through Unmarshal.
func setDefaults(v *viper.Viper) {
	for _, key := range []string{
		"api.jwt_signing_key",
		"log.file",
		"database.dsn", "database.host", "database.port", "database.user", "database.password", "database.name",
		"redis.addr", "redis.password",
		"auth.firebase_api_key", "auth.firebase_project_id", "auth.credentials_file",
		"media.bucket",
		"mail.sendgrid_api_key", "mail.admin_notify",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("redis.db", 0)
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.token_ttl", 12*time.Hour)
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:3000"})
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("auth.provider", AuthProviderLocal)
	v.SetDefault("auth.identity_toolkit_url", "https://identitytoolkit.googleapis.com/v1")
	v.SetDefault("media.driver", MediaDriverLocal)
	v.SetDefault("media.local_dir", "./var/media")
	v.SetDefault("media.public_base_url", "http://localhost:8080/media")
	v.SetDefault("mail.from", "no-reply@homeloto.local")
	v.SetDefault("lottery.ticket_price", 100)
	v.SetDefault("lottery.currency", "RUB")
}

// Load reads the yaml file at path; any key can be overridden by HOMELOTO_<SECTION>_<KEY>.
// A missing file is not an error so the service can run from the environment alone.
func Load(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
		}
	}

	return decode(v)
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func decode(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config -> %w", err)
	}

	return conf, nil
}

func (c *AppConfig) Validate() error {
	if err := validation.ValidateStruct(c.API,
		validation.Field(&c.API.Port, validation.Required),
		validation.Field(&c.API.JWTSigningKey, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.API.TokenTTL, validation.Required),
	); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	if err := validation.ValidateStruct(c.Auth,
		validation.Field(&c.Auth.Provider, validation.In(AuthProviderLocal, AuthProviderFirebase)),
	); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if c.Auth.Provider == AuthProviderFirebase && c.Auth.FirebaseAPIKey == "" {
		return errors.New("auth: firebase_api_key is required for the firebase provider")
	}

	if err := validation.ValidateStruct(c.Media,
		validation.Field(&c.Media.Driver, validation.In(MediaDriverLocal, MediaDriverGCS)),
	); err != nil {
		return fmt.Errorf("media: %w", err)
	}
	if c.Media.Driver == MediaDriverGCS && c.Media.Bucket == "" {
		return errors.New("media: bucket is required for the gcs driver")
	}
	if c.Media.Driver == MediaDriverLocal && c.Media.LocalDir == "" {
		return errors.New("media: local_dir is required for the local driver")
	}

	if err := validation.ValidateStruct(c.Lottery,
		validation.Field(&c.Lottery.TicketPrice, validation.Required, validation.Min(int64(1))),
	); err != nil {
		return fmt.Errorf("lottery: %w", err)
	}

	return nil
}

// PostgresDSN builds a keyword/value DSN from the connection parts.
func (c *DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}
