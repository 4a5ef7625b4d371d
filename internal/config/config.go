package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		PublicURL      string   `yaml:"publicURL"`
		MaxUploadBytes int64    `yaml:"maxUploadBytes"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json | console
	} `yaml:"log"`

	AI struct {
		Provider      string        `yaml:"provider"` // openai | gemini | fixture
		APIKey        string        `yaml:"apiKey"`
		Model         string        `yaml:"model"`
		BaseURL       string        `yaml:"baseURL"`
		PromptVersion string        `yaml:"promptVersion"`
		Timeout       time.Duration `yaml:"timeout"`
	} `yaml:"ai"`

	Session struct {
		IdleTTL       time.Duration `yaml:"idleTTL"`
		SweepInterval time.Duration `yaml:"sweepInterval"`
	} `yaml:"session"`

	RateLimit struct {
		Capacity   int `yaml:"capacity"`
		RefillRate int `yaml:"refillRate"`
	} `yaml:"rateLimit"`

	Admin struct {
		APIKeys map[string]string `yaml:"apiKeys"` // operator name -> key
	} `yaml:"admin"`

	Audit struct {
		Driver           string `yaml:"driver"` // memory | mysql | postgres | none
		MemoryMaxRecords int    `yaml:"memoryMaxRecords"`
	} `yaml:"audit"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Load baca file config.yaml, lalu isi default dan override dari env
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML, applies defaults and environment overrides, then validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.PublicURL == "" {
		c.Server.PublicURL = fmt.Sprintf("http://localhost:%d/", c.Server.Port)
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 10 << 20
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "openai"
	}
	if c.AI.Timeout == 0 {
		c.AI.Timeout = 60 * time.Second
	}
	if c.Session.IdleTTL == 0 {
		c.Session.IdleTTL = 24 * time.Hour
	}
	if c.Session.SweepInterval == 0 {
		c.Session.SweepInterval = 10 * time.Minute
	}
	if c.RateLimit.Capacity == 0 {
		c.RateLimit.Capacity = 10
	}
	if c.RateLimit.RefillRate == 0 {
		c.RateLimit.RefillRate = 1
	}
	if c.Audit.Driver == "" {
		c.Audit.Driver = "memory"
	}
	if c.Audit.MemoryMaxRecords == 0 {
		c.Audit.MemoryMaxRecords = 10000
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PETMOJI_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("PETMOJI_PUBLIC_URL"); v != "" {
		c.Server.PublicURL = v
	}
	if v := os.Getenv("PETMOJI_AI_PROVIDER"); v != "" {
		c.AI.Provider = v
	}
	if c.AI.APIKey == "" {
		switch c.AI.Provider {
		case "openai":
			c.AI.APIKey = os.Getenv("OPENAI_API_KEY")
		case "gemini":
			c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
			if c.AI.APIKey == "" {
				c.AI.APIKey = os.Getenv("GOOGLE_API_KEY")
			}
		}
	}
	if v := os.Getenv("PETMOJI_ADMIN_KEY"); v != "" {
		if c.Admin.APIKeys == nil {
			c.Admin.APIKeys = map[string]string{}
		}
		c.Admin.APIKeys["env"] = v
	}
	if v := os.Getenv("PETMOJI_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("PETMOJI_MINIO_SECRET_KEY"); v != "" {
		c.Minio.SecretKey = v
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case "openai", "gemini":
		if c.AI.APIKey == "" {
			return fmt.Errorf("ai.apiKey is required for provider %q", c.AI.Provider)
		}
	case "fixture":
	default:
		return fmt.Errorf("unknown ai.provider %q (allowed: openai, gemini, fixture)", c.AI.Provider)
	}
	switch c.Audit.Driver {
	case "memory", "none":
	case "mysql", "postgres":
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("database.host and database.name are required for audit driver %q", c.Audit.Driver)
		}
	default:
		return fmt.Errorf("unknown audit.driver %q (allowed: memory, mysql, postgres, none)", c.Audit.Driver)
	}
	if c.Minio.Enabled && (c.Minio.Endpoint == "" || c.Minio.BucketName == "") {
		return fmt.Errorf("minio.endpoint and minio.bucketName are required when minio is enabled")
	}
	if _, err := c.PageURL(); err != nil {
		return err
	}
	if c.Audit.MemoryMaxRecords < 0 {
		return fmt.Errorf("audit.memoryMaxRecords must be positive")
	}
	if c.Server.MaxUploadBytes < 0 {
		return fmt.Errorf("server.maxUploadBytes must be positive")
	}
	return nil
}

// PageURL is the public page share links point to.
func (c *Config) PageURL() (*url.URL, error) {
	u, err := url.Parse(c.Server.PublicURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server.publicURL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server.publicURL scheme %q", u.Scheme)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection string
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String()
}
