package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env                string
	ServerAddr         string
	PublicOrigin       string
	APIBaseURL         string
	APIToken           string
	APITimeout         time.Duration
	APIMaxRetries      int
	RedisURL           string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	CacheTTLSeconds    int
	PreviewTTLMinutes  int
	PreviewMaxMB       int
	UploadMaxMB        int
	MongoURI           string
	MongoDB            string
	AdminUser          string
	AdminPassword      string
	AdminPasswordHash  string
	JWTSecret          string
	SessionTTLMinutes  int
	CookieSecure       bool
	ImageHosts         []string
	RateLimitLogin     int
	RateLimitWindowSec int
	Timezone           *time.Location
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func Load() (*Config, error) {
	loadDotEnv(".env")
	loc, err := time.LoadLocation(getEnv("TZ", "Asia/Dhaka"))
	if err != nil {
		return nil, err
	}

	mongoURI := getEnv("MONGO_URI", "")
	mongoDB := getEnv("MONGO_DB", "")
	if mongoDB == "" {
		mongoDB = mongoDBFromURI(mongoURI)
	}
	if mongoDB == "" {
		mongoDB = "bssaj_admin"
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		ServerAddr:         getEnv("SERVER_ADDR", ":8080"),
		PublicOrigin:       getEnv("PUBLIC_ORIGIN", "http://localhost:8080"),
		APIBaseURL:         strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000/api/v1"), "/"),
		APIToken:           getEnv("API_TOKEN", ""),
		APITimeout:         time.Duration(getEnvInt("API_TIMEOUT_SECONDS", 10)) * time.Second,
		APIMaxRetries:      getEnvInt("API_MAX_RETRIES", 3),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		CacheTTLSeconds:    getEnvInt("CACHE_TTL_SECONDS", 30),
		PreviewTTLMinutes:  getEnvInt("PREVIEW_TTL_MINUTES", 30),
		PreviewMaxMB:       getEnvInt("PREVIEW_MAX_MB", 256),
		UploadMaxMB:        getEnvInt("UPLOAD_MAX_MB", 10),
		MongoURI:           mongoURI,
		MongoDB:            mongoDB,
		AdminUser:          getEnv("ADMIN_USER", "admin"),
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		AdminPasswordHash:  getEnv("ADMIN_PASSWORD_HASH", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		SessionTTLMinutes:  getEnvInt("SESSION_TTL_MINUTES", 720),
		CookieSecure:       getEnvBool("COOKIE_SECURE", false),
		ImageHosts:         getEnvList("IMAGE_HOSTS", "res.cloudinary.com,bssaj-bucket.s3.ap-southeast-1.amazonaws.com"),
		RateLimitLogin:     getEnvInt("RATE_LIMIT_LOGIN", 10),
		RateLimitWindowSec: getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),
		Timezone:           loc,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("config: API_BASE_URL must be an absolute url")
	}
	if len(c.ImageHosts) == 0 {
		return errors.New("config: IMAGE_HOSTS must list at least one host")
	}
	if c.CacheTTLSeconds < 0 || c.PreviewTTLMinutes <= 0 {
		return errors.New("config: cache and preview ttl must be positive")
	}
	// Previews are stored base64 encoded.
	if c.UploadMaxMB <= 0 || c.PreviewMaxMB < 2*c.UploadMaxMB {
		return errors.New("config: PREVIEW_MAX_MB must be at least twice UPLOAD_MAX_MB")
	}
	return nil
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c *Config) PreviewTTL() time.Duration {
	return time.Duration(c.PreviewTTLMinutes) * time.Minute
}

func (c *Config) PreviewMaxBytes() int64 {
	return int64(c.PreviewMaxMB) << 20
}

func (c *Config) UploadMaxBytes() int64 {
	return int64(c.UploadMaxMB) << 20
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func mongoDBFromURI(uri string) string {
	if uri == "" {
		return ""
	}
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	db := strings.Trim(u.Path, "/")
	if db == "" {
		return ""
	}
	// mongodb URIs sometimes include extra path segments; we only support the first one as db name.
	if idx := strings.Index(db, "/"); idx >= 0 {
		db = db[:idx]
	}
	return db
}

func loadDotEnv(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.Trim(strings.TrimSpace(parts[1]), `"`)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, val)
	}
}
