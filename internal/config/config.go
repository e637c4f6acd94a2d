package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultApproverName = "Eng. José Leopoldo Pugliese"

type Config struct {
	AppPort string
	LogMode string

	DatabaseURL string

	UploadDir     string
	MaxPhotoBytes int64

	EmailAPIKey   string
	EmailFrom     string
	EmailFromName string
	EmailBaseURL  string

	SessionSecret string

	PDFTemplatePath     string
	PDFOutputDir        string
	DefaultApproverName string
	Timezone            string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs        int
	NotificationTTLDays int

	// DotenvErr holds a .env that exists but could not be parsed. Load runs
	// before the logger exists, so callers report it.
	DotenvErr error
}

func getenv(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

// Load reads the environment. A .env file in the working directory, if
// present, seeds variables that are not already set.
func Load() *Config {
	var dotenvErr error
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			dotenvErr = fmt.Errorf("ignoring .env: %w", err)
		}
	}

	c := &Config{
		DotenvErr: dotenvErr,

		AppPort: getenv("APP_PORT", "8080"),
		LogMode: getenv("LOG_MODE", "dev"),

		DatabaseURL: NormalizeDatabaseURL(os.Getenv("DATABASE_URL")),

		UploadDir:     getenv("UPLOAD_DIR", "uploads"),
		MaxPhotoBytes: 10 << 20,

		EmailAPIKey:   getenv("EMAIL_API_KEY", ""),
		EmailFrom:     getenv("EMAIL_FROM", "relatorios@pugliese.eng.br"),
		EmailFromName: getenv("EMAIL_FROM_NAME", "Relatórios de Obra"),
		EmailBaseURL:  getenv("EMAIL_BASE_URL", ""),

		SessionSecret: getenv("SESSION_SECRET", ""),

		PDFTemplatePath:     getenv("PDF_TEMPLATE_PATH", "templates/relatorio_template.pdf"),
		PDFOutputDir:        getenv("PDF_OUTPUT_DIR", "generated"),
		DefaultApproverName: getenv("DEFAULT_APPROVER_NAME", DefaultApproverName),
		Timezone:            getenv("APP_TIMEZONE", "America/Sao_Paulo"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:   getint("REDIS_DB", 0),

		IdempTTLSecs:        getint("IDEMPOTENCY_TTL_SECONDS", 300),
		NotificationTTLDays: getint("NOTIFICATION_TTL_DAYS", 30),
	}
	if v := strings.TrimSpace(os.Getenv("MAX_PHOTO_BYTES")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.MaxPhotoBytes = n
		}
	}
	return c
}

// NormalizeDatabaseURL accepts both postgres:// and postgresql:// and always
// returns the latter. Other schemes (sqlite://) pass through untouched.
func NormalizeDatabaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "postgres://") {
		return "postgresql://" + strings.TrimPrefix(raw, "postgres://")
	}
	return raw
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("missing DATABASE_URL")
	}
	if !strings.HasPrefix(c.DatabaseURL, "postgresql://") && !strings.HasPrefix(c.DatabaseURL, "sqlite://") {
		return fmt.Errorf("unsupported DATABASE_URL scheme in %q", redactURL(c.DatabaseURL))
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.MaxPhotoBytes <= 0 {
		return errors.New("MAX_PHOTO_BYTES must be positive")
	}
	if strings.EqualFold(c.LogMode, "prod") && c.SessionSecret == "" {
		return errors.New("missing SESSION_SECRET")
	}
	return nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) NotificationTTL() time.Duration {
	return time.Duration(c.NotificationTTLDays) * 24 * time.Hour
}

func redactURL(u string) string {
	at := strings.LastIndex(u, "@")
	scheme := strings.Index(u, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return u
	}
	return u[:scheme+3] + "***" + u[at:]
}
