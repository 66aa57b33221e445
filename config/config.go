package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/pivolan/data_visualizer/logging"
)

type Config struct {
	DataDir     string
	ListenAddr  string
	TgToken     string
	DbDsn       string
	LogLevel    string
	ChartWidth  int
	ChartHeight int
	ChartFormat string
	MaxUploadMB int64
	FileTTL     time.Duration
	PublicURL   string
}

var (
	config *Config
	once   sync.Once
)

// GetConfig возвращает singleton экземпляр конфигурации
func GetConfig() *Config {
	once.Do(func() {
		config = Load()
	})
	return config
}

// Load reads the given env files (".env" when none) and builds a fresh config.
// A missing file is not an error, values then come from the process environment.
func Load(files ...string) *Config {
	if err := godotenv.Load(files...); err != nil {
		logging.Debug("env file not loaded: %v", err)
	}
	return FromEnv()
}

func FromEnv() *Config {
	c := &Config{
		DataDir:     getString("DATA_DIR", "data"),
		ListenAddr:  getString("LISTEN_ADDR", ":8005"),
		TgToken:     os.Getenv("TG_TOKEN"),
		DbDsn:       os.Getenv("DB_DSN"),
		LogLevel:    getString("LOG_LEVEL", "INFO"),
		ChartWidth:  getInt("CHART_WIDTH", 800),
		ChartHeight: getInt("CHART_HEIGHT", 500),
		ChartFormat: strings.ToLower(getString("CHART_FORMAT", "png")),
		MaxUploadMB: int64(getInt("MAX_UPLOAD_MB", 64)),
		FileTTL:     getDuration("FILE_TTL", 0),
		PublicURL:   strings.TrimRight(getString("PUBLIC_URL", "http://localhost:8005"), "/"),
	}
	if c.ChartFormat != "png" && c.ChartFormat != "html" {
		logging.Warn("unknown CHART_FORMAT %q, using png", c.ChartFormat)
		c.ChartFormat = "png"
	}
	return c
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		logging.Warn("invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logging.Warn("invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}
