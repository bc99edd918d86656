package config

import (
	"fmt"
	"os"
	"time"

	"hostexport/internal/logger"
)

// DateLayout is the calendar date format used for the run's date range.
const DateLayout = "2006-01-02"

type Config struct {
	// Hospitable API
	Token        string
	PropertyName string
	PropertyID   string
	APIURL       string
	HTTPTimeout  string
	DateQuery    string

	// Run window and switches, kept as raw strings until validated
	StartDate  string
	EndDate    string
	Debug      string
	Accounting string

	// Output locations
	OutputDir      string
	DebugDir       string
	AccountMapFile string

	// Optional publishing targets
	GoogleSheetURL  string
	GCSOutputBucket string
	GCSOutputFolder string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
	LogFile       string
}

// Settings is the validated, typed view of Config that the pipeline runs on.
type Settings struct {
	Token        string
	PropertyName string
	PropertyID   string
	StartDate    time.Time
	EndDate      time.Time
	Debug        bool
	Accounting   bool
	HTTPTimeout  time.Duration
}

func Load() *Config {
	return &Config{
		Token:           getEnv("PAT", ""),
		PropertyName:    getEnv("PROPERTY_NAME", ""),
		PropertyID:      getEnv("PROPERTY_ID", ""),
		APIURL:          getEnv("HOSPITABLE_API_URL", "https://public.api.hospitable.com/v2"),
		HTTPTimeout:     getEnv("HTTP_TIMEOUT", "30s"),
		DateQuery:       getEnv("DATE_QUERY", ""),
		StartDate:       getEnv("START_DATE", ""),
		EndDate:         getEnv("END_DATE", ""),
		Debug:           getEnv("DEBUG", "false"),
		Accounting:      getEnv("ACCOUNTING", "false"),
		OutputDir:       getEnv("OUTPUT_DIR", "output"),
		DebugDir:        getEnv("DEBUG_DIR", "debug"),
		AccountMapFile:  getEnv("ACCOUNT_MAP_FILE", ""),
		GoogleSheetURL:  getEnv("GOOGLE_SHEET_URL", ""),
		GCSOutputBucket: getEnv("GCS_OUTPUT_BUCKET", ""),
		GCSOutputFolder: getEnv("GCS_OUTPUT_FOLDER", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:   getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:       getEnv("LOG_OUTPUT", "stdout"),
		LogFile:         getEnv("LOG_FILE", "logs/hostexport.log"),
	}
}

// ExportName is the base file name shared by every artifact of a run.
func (s Settings) ExportName() string {
	return fmt.Sprintf("export_%s_to_%s", s.StartDate.Format(DateLayout), s.EndDate.Format(DateLayout))
}

// AccountingName is the base file name of the ledger export.
func (s Settings) AccountingName() string {
	return fmt.Sprintf("accounting_%s_to_%s", s.StartDate.Format(DateLayout), s.EndDate.Format(DateLayout))
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
		File:       c.LogFile,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
