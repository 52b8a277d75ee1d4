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

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"

	OCRProviderHTTP   = "http"
	OCRProviderGemini = "gemini"

	// El scheduler nunca debe quedar más de un minuto sin revisar.
	MaxSchedulerInterval = 60 * time.Second
)

type Config struct {
	Env       string
	Port      string
	LogLevel  string
	LogFormat string
	AppName   string

	// URL pública usada en los links de las notificaciones.
	PublicBaseURL string

	StorageBackend string
	StorageDir     string
	SQLitePath     string
	DBDSN          string

	OCRProvider   string
	OCRBaseURL    string
	OCRAPIKey     string
	OCRModel      string
	OCRTimeout    time.Duration
	OCRRatePerMin int
	OCRCacheSize  int

	SchedulerInterval time.Duration

	PushURL          string
	PushToken        string
	NotifyPermission bool

	SpeechEnabled bool
	TTSURL        string
	TTSAPIKey     string
	TTSPlayer     string
	SpeechCommand string
}

// Load lee .env (si existe) y luego el entorno. Las variables ya
// definidas en el entorno tienen prioridad sobre .env.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Env:       getEnv("APP_ENV", "development"),
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		AppName:   getEnv("APP_NAME", "prescription-reminder"),

		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendFile)),
		StorageDir:     getEnv("STORAGE_DIR", "data"),
		SQLitePath:     getEnv("SQLITE_PATH", "data/reminders.db"),
		DBDSN:          getEnv("DB_DSN", ""),

		OCRProvider:   strings.ToLower(getEnv("OCR_PROVIDER", OCRProviderHTTP)),
		OCRAPIKey:     getEnv("OCR_API_KEY", ""),
		OCRCacheSize:  128,
		OCRRatePerMin: 10,

		PushURL:   getEnv("PUSH_URL", ""),
		PushToken: getEnv("PUSH_TOKEN", ""),

		TTSURL:        getEnv("TTS_URL", ""),
		TTSAPIKey:     getEnv("TTS_API_KEY", ""),
		TTSPlayer:     getEnv("TTS_PLAYER", ""),
		SpeechCommand: getEnv("SPEECH_COMMAND", "espeak"),
	}

	// defaults por proveedor; gemini usa el endpoint del SDK
	if cfg.OCRProvider == OCRProviderGemini {
		cfg.OCRBaseURL = getEnv("OCR_BASE_URL", "")
		cfg.OCRModel = getEnv("OCR_MODEL", "gemini-2.0-flash")
	} else {
		cfg.OCRBaseURL = getEnv("OCR_BASE_URL", "https://api.together.xyz")
		cfg.OCRModel = getEnv("OCR_MODEL", "meta-llama/Llama-Vision-Free")
	}

	var err error
	if cfg.OCRTimeout, err = getDuration("OCR_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.SchedulerInterval, err = getDuration("SCHEDULER_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.OCRRatePerMin, err = getInt("OCR_RATE_PER_MIN", cfg.OCRRatePerMin); err != nil {
		return nil, err
	}
	if cfg.OCRCacheSize, err = getInt("OCR_CACHE_SIZE", cfg.OCRCacheSize); err != nil {
		return nil, err
	}
	if cfg.NotifyPermission, err = getBool("NOTIFY_PERMISSION", false); err != nil {
		return nil, err
	}
	if cfg.SpeechEnabled, err = getBool("SPEECH_ENABLED", false); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory:
	case BackendFile:
		if strings.TrimSpace(c.StorageDir) == "" {
			return errors.New("STORAGE_DIR is required when STORAGE_BACKEND=file")
		}
	case BackendSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return errors.New("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
		}
	case BackendPostgres:
		if strings.TrimSpace(c.DBDSN) == "" {
			return errors.New("DB_DSN is required when STORAGE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of: memory, file, sqlite, postgres (got %q)", c.StorageBackend)
	}

	if c.OCRProvider != OCRProviderHTTP && c.OCRProvider != OCRProviderGemini {
		return fmt.Errorf("OCR_PROVIDER must be one of: http, gemini (got %q)", c.OCRProvider)
	}
	if c.SchedulerInterval < time.Second || c.SchedulerInterval > MaxSchedulerInterval {
		return errors.New("SCHEDULER_INTERVAL must be between 1s and 60s")
	}
	if c.OCRRatePerMin < 0 {
		return errors.New("OCR_RATE_PER_MIN must be >= 0")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration (e.g. 30s): %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	switch strings.ToLower(v) {
	case "granted":
		return true, nil
	case "denied", "default":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}
