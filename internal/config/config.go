package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Store    StoreConfig
	MongoDB  MongoDBConfig
	Sheets   SheetsConfig
	Export   ExportConfig
	WhatsApp WhatsAppConfig
	Schedule ScheduleConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port        string
	GinMode     string   // debug|release|test
	CORSOrigins []string // empty allows every origin
}

// LogConfig selects the zap level.
type LogConfig struct {
	Level string // debug|info|warn|error
}

// StoreConfig selects the persistence adapter.
type StoreConfig struct {
	Driver string // mongo|memory
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
// Leaving both fields empty disables the sheets export.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	SheetName       string
}

// Enabled reports whether the sheets export is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// ExportConfig configures the spreadsheet webhook export.
type ExportConfig struct {
	WebhookURL   string
	WebhookToken string
	Timeout      time.Duration
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
// Leaving the token empty disables chat logging and notifications.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	BaseURL       string
	APIVersion    string
	OwnerID       string // recipient of reminders and weekly reports
}

// Enabled reports whether WhatsApp messaging is configured.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != ""
}

// ScheduleConfig holds cron expressions. The value "off" disables a job.
type ScheduleConfig struct {
	ReminderCron     string
	WeeklyReportCron string
	ExportCron       string
	Timezone         string
}

// Location resolves the configured timezone.
func (c ScheduleConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// missing .env files are fine when configuration comes from the environment
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getenvWithDefault("APP_PORT", "8080"),
			GinMode:     strings.ToLower(getenvWithDefault("GIN_MODE", "release")),
			CORSOrigins: splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		Log: LogConfig{
			Level: strings.ToLower(getenvWithDefault("LOG_LEVEL", "info")),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getenvWithDefault("STORE_DRIVER", DriverMongo)),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "pibao"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			SheetName:       getenvWithDefault("SHEETS_SHEET_NAME", "DailyLog"),
		},
		Export: ExportConfig{
			WebhookURL:   os.Getenv("EXPORT_WEBHOOK_URL"),
			WebhookToken: os.Getenv("EXPORT_WEBHOOK_TOKEN"),
			Timeout:      getdur("EXPORT_WEBHOOK_TIMEOUT", 15*time.Second),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:   os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			OwnerID:       os.Getenv("WHATSAPP_OWNER_ID"),
		},
		Schedule: ScheduleConfig{
			ReminderCron:     getenvWithDefault("REMINDER_CRON", "0 9 * * *"),
			WeeklyReportCron: getenvWithDefault("WEEKLY_REPORT_CRON", "0 20 * * 5"),
			ExportCron:       getenvWithDefault("EXPORT_CRON", "30 23 * * *"),
			Timezone:         getenvWithDefault("TIMEZONE", "Asia/Taipei"),
		},
	}

	if cfg.Log.Level == "warning" {
		cfg.Log.Level = "warn"
	}
	switch cfg.Server.GinMode {
	case "debug", "release", "test":
	default:
		cfg.Server.GinMode = "release"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverMongo:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q", DriverMongo, DriverMemory)
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}
	if c.Sheets.Enabled() && c.Sheets.SheetName == "" {
		return errors.New("SHEETS_SHEET_NAME must not be empty")
	}

	if c.Export.WebhookURL != "" && !strings.HasPrefix(c.Export.WebhookURL, "http") {
		return errors.New("EXPORT_WEBHOOK_URL must be an http(s) URL")
	}
	if c.Export.Timeout <= 0 {
		return errors.New("EXPORT_WEBHOOK_TIMEOUT must be positive")
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.VerifyToken == "":
			return errors.New("META_VERIFY_TOKEN must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if c.Schedule.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}
	if _, err := c.Schedule.Location(); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getdur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
