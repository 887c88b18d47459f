package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env       string
	Port      string
	DBDriver  string
	DBSource  string
	PublicDir string

	JWTSecret        string
	JWTTTL           time.Duration
	JWTCookieTTL     time.Duration
	RedisURL         string
	RateLimitMax     int
	RateLimitWindow  time.Duration
	StripeSecretKey  string
	StripePublicKey  string
	StripeWebhookKey string
	AdminEmail       string
	AdminPassword    string
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// LoadConfig reads config.env/.env (if present), the optional YAML file and
// the process environment, in increasing order of precedence.
func LoadConfig(file string) (*Config, error) {
	for _, f := range []string{"config.env", ".env"} {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				log.Printf("⚠️ could not load %s: %v", f, err)
			}
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	env := v.GetString("APP_ENV")
	if env == "" {
		env = v.GetString("NODE_ENV")
	}

	jwtTTL, err := durationValue(v, "JWT_EXPIRES_IN")
	if err != nil {
		return nil, err
	}
	window, err := durationValue(v, "RATE_LIMIT_WINDOW")
	if err != nil {
		return nil, err
	}

	return &Config{
		Env:              env,
		Port:             v.GetString("PORT"),
		DBDriver:         v.GetString("DB_DRIVER"),
		DBSource:         v.GetString("DB_SOURCE"),
		PublicDir:        v.GetString("PUBLIC_DIR"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTTTL:           jwtTTL,
		JWTCookieTTL:     time.Duration(v.GetInt("JWT_COOKIE_EXPIRES_IN")) * 24 * time.Hour,
		RedisURL:         v.GetString("REDIS_URL"),
		RateLimitMax:     v.GetInt("RATE_LIMIT_MAX"),
		RateLimitWindow:  window,
		StripeSecretKey:  v.GetString("STRIPE_SECRET_KEY"),
		StripePublicKey:  v.GetString("STRIPE_PUBLISHABLE_KEY"),
		StripeWebhookKey: v.GetString("STRIPE_WEBHOOK_SECRET"),
		AdminEmail:       v.GetString("ADMIN_EMAIL"),
		AdminPassword:    v.GetString("ADMIN_PASSWORD"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("NODE_ENV", "development")
	v.SetDefault("PORT", "8000")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_SOURCE", "natours.db")
	v.SetDefault("PUBLIC_DIR", "public")
	v.SetDefault("JWT_SECRET", "changeme")
	v.SetDefault("JWT_EXPIRES_IN", "90d")
	v.SetDefault("JWT_COOKIE_EXPIRES_IN", 90)
	v.SetDefault("RATE_LIMIT_MAX", 1000)
	v.SetDefault("RATE_LIMIT_WINDOW", "1h")
}

// durationValue accepts Go durations plus a "<n>d" day suffix. The result
// must be positive.
func durationValue(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := time.ParseDuration(raw)
	if strings.HasSuffix(raw, "d") {
		var n int
		n, err = strconv.Atoi(strings.TrimSuffix(raw, "d"))
		d = time.Duration(n) * 24 * time.Hour
	}
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: want a positive duration such as 90d or 1h", key, raw)
	}
	return d, nil
}
