package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort       = 3000
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBName     = "velora"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"
	defaultJWTExpires = "168h"
)

// AppConfig holds runtime startup configuration loaded from YAML,
// with env-var fallbacks for container deployments.
type AppConfig struct {
	Port           int            `yaml:"port"`
	Env            string         `yaml:"env"` // "development" | "production"
	Database       DatabaseConfig `yaml:"database"`
	RedisURL       string         `yaml:"redis_url"`
	JWTSecret      string         `yaml:"jwt_secret"`
	JWTExpires     string         `yaml:"jwt_expires"`
	AllowedOrigins []string       `yaml:"allowed_origins"`
	Site           SiteConfig     `yaml:"site"`
	Storage        StorageConfig  `yaml:"storage"`
}

// SiteConfig identifies the public site in feeds and links.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	URL         string `yaml:"url"`
}

type DatabaseConfig struct {
	DSN       string            `yaml:"dsn"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	Charset   string            `yaml:"charset"`
	ParseTime bool              `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

// StorageConfig configures the S3-compatible object store.
type StorageConfig struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"` // empty = AWS
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PathStyle       bool   `yaml:"path_style"`
	CustomDomain    string `yaml:"custom_domain"` // CDN/public base URL, optional
	BlogBucket      string `yaml:"blog_bucket"`
	ProductBucket   string `yaml:"product_bucket"`
	MaxUploadMB     int    `yaml:"max_upload_mb"`
}

// Load reads the YAML config at path, applies env fallbacks and defaults.
// A missing file is not an error; env vars alone can configure the app.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required (config or JWT_SECRET)")
	}
	return cfg, nil
}

func (c *AppConfig) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	envStr(&c.Env, "APP_ENV")
	envStr(&c.Database.DSN, "DATABASE_DSN")
	envStr(&c.Database.Host, "DB_HOST")
	envStr(&c.Database.User, "DB_USER")
	envStr(&c.Database.Password, "DB_PASSWORD")
	envStr(&c.Database.Name, "DB_NAME")
	envStr(&c.RedisURL, "REDIS_URL")
	envStr(&c.JWTSecret, "JWT_SECRET")
	envStr(&c.Storage.Region, "STORAGE_REGION")
	envStr(&c.Storage.Endpoint, "STORAGE_ENDPOINT")
	envStr(&c.Storage.AccessKeyID, "STORAGE_ACCESS_KEY_ID")
	envStr(&c.Storage.SecretAccessKey, "STORAGE_SECRET_ACCESS_KEY")
	envStr(&c.Storage.CustomDomain, "STORAGE_CUSTOM_DOMAIN")
	envStr(&c.Site.URL, "SITE_URL")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitTrim(v)
	}
}

func (c *AppConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Env == "" {
		c.Env = defaultEnv
	}
	if c.JWTExpires == "" {
		c.JWTExpires = defaultJWTExpires
	}
	if c.Site.Title == "" {
		c.Site.Title = "Velora"
	}
	if c.Site.URL == "" {
		c.Site.URL = "http://localhost:3000"
	}
	if c.Storage.Region == "" {
		c.Storage.Region = "us-east-1"
	}
	if c.Storage.BlogBucket == "" {
		c.Storage.BlogBucket = "blog-images"
	}
	if c.Storage.ProductBucket == "" {
		c.Storage.ProductBucket = "product-images"
	}
	if c.Storage.MaxUploadMB == 0 {
		c.Storage.MaxUploadMB = 5
	}
}

// IsProduction reports whether the app runs in production mode.
func (c *AppConfig) IsProduction() bool { return c.Env == "production" }

func envStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
