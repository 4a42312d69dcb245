package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application settings not owned by the database package.
type Config struct {
	Port     string
	Env      string
	Location *time.Location

	StoreDriver string

	JWTSecret string
	JWTExpiry time.Duration

	OTPTTL         time.Duration
	OTPMaxRequests int
	OTPRateWindow  time.Duration
	OTPMaxAttempts int
	OTPPepper      string

	Argon2 Argon2Config

	Storage StorageConfig
	SMS     SMSConfig

	AuthRPS   float64
	AuthBurst int
	// TrustProxy honours X-Forwarded-For and X-Real-IP. Enable it only
	// behind a proxy that overwrites those headers.
	TrustProxy bool
}

type Argon2Config struct {
	Time      uint32
	Memory    uint32
	Threads   uint8
	KeyLength uint32
}

type StorageConfig struct {
	Driver       string
	LocalDir     string
	PublicPrefix string
	S3           S3Config
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

type SMSConfig struct {
	Driver           string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string
}

var envBindings = map[string]string{
	"app.port":               "PORT",
	"app.env":                "APP_ENV",
	"app.timezone":           "APP_TIMEZONE",
	"store.driver":           "STORE_DRIVER",
	"database.host":          "DATABASE_HOST",
	"database.port":          "DATABASE_PORT",
	"database.user":          "DATABASE_USER",
	"database.password":      "DATABASE_PASSWORD",
	"database.name":          "DATABASE_NAME",
	"database.ssl_mode":      "DATABASE_SSL_MODE",
	"redis.enabled":          "REDIS_ENABLED",
	"redis.host":             "REDIS_HOST",
	"redis.port":             "REDIS_PORT",
	"redis.password":         "REDIS_PASSWORD",
	"redis.db":               "REDIS_DB",
	"jwt.secret_key":         "JWT_SECRET_KEY",
	"jwt.expiry_hours":       "JWT_EXPIRY_HOURS",
	"otp.ttl":                "OTP_TTL",
	"otp.max_requests":       "OTP_MAX_REQUESTS",
	"otp.rate_window":        "OTP_RATE_WINDOW",
	"otp.max_attempts":       "OTP_MAX_ATTEMPTS",
	"otp.pepper":             "OTP_PEPPER",
	"argon2.time":            "ARGON2_TIME",
	"argon2.memory":          "ARGON2_MEMORY",
	"argon2.threads":         "ARGON2_THREADS",
	"argon2.key_length":      "ARGON2_KEY_LENGTH",
	"storage.driver":         "STORAGE_DRIVER",
	"storage.local_dir":      "STORAGE_LOCAL_DIR",
	"storage.public_prefix":  "STORAGE_PUBLIC_PREFIX",
	"storage.s3.bucket":      "S3_BUCKET",
	"storage.s3.region":      "S3_REGION",
	"storage.s3.endpoint":    "S3_ENDPOINT",
	"storage.s3.access_key":  "S3_ACCESS_KEY",
	"storage.s3.secret_key":  "S3_SECRET_KEY",
	"storage.s3.public_url":  "S3_PUBLIC_URL",
	"sms.driver":             "SMS_DRIVER",
	"sms.twilio.account_sid": "TWILIO_ACCOUNT_SID",
	"sms.twilio.auth_token":  "TWILIO_AUTH_TOKEN",
	"sms.twilio.from":        "TWILIO_FROM",
	"ratelimit.auth_rps":     "RATELIMIT_AUTH_RPS",
	"ratelimit.auth_burst":   "RATELIMIT_AUTH_BURST",
	"http.trust_proxy":       "HTTP_TRUST_PROXY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "production")
	v.SetDefault("app.timezone", "Local")
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("redis.enabled", true)
	v.SetDefault("jwt.expiry_hours", 720)
	v.SetDefault("otp.ttl", 10*time.Minute)
	v.SetDefault("otp.max_requests", 5)
	v.SetDefault("otp.rate_window", time.Hour)
	v.SetDefault("otp.max_attempts", 5)
	v.SetDefault("argon2.time", 1)
	v.SetDefault("argon2.memory", 64*1024)
	v.SetDefault("argon2.threads", 4)
	v.SetDefault("argon2.key_length", 32)
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_dir", "./uploads")
	v.SetDefault("storage.public_prefix", "/uploads")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("sms.driver", "log")
	v.SetDefault("ratelimit.auth_rps", 5.0)
	v.SetDefault("ratelimit.auth_burst", 10)
	v.SetDefault("http.trust_proxy", false)
}

// Load reads the optional .env file and the environment into v and returns
// the resolved settings.
func Load(v *viper.Viper, envFile string) (*Config, error) {
	setDefaults(v)

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !isMissingFile(err) {
				return nil, err
			}
		}
		// .env entries are read under their variable names; map them onto
		// the dotted keys below the environment.
		for key, env := range envBindings {
			if val := v.GetString(strings.ToLower(env)); val != "" {
				v.SetDefault(key, val)
			}
		}
	}

	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	secret := v.GetString("jwt.secret_key")
	if secret == "" {
		return nil, errors.New("jwt.secret_key is required")
	}

	loc, err := time.LoadLocation(v.GetString("app.timezone"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:           v.GetString("app.port"),
		Env:            v.GetString("app.env"),
		Location:       loc,
		StoreDriver:    strings.ToLower(v.GetString("store.driver")),
		JWTSecret:      secret,
		JWTExpiry:      time.Duration(v.GetInt("jwt.expiry_hours")) * time.Hour,
		OTPTTL:         v.GetDuration("otp.ttl"),
		OTPMaxRequests: v.GetInt("otp.max_requests"),
		OTPRateWindow:  v.GetDuration("otp.rate_window"),
		OTPMaxAttempts: v.GetInt("otp.max_attempts"),
		OTPPepper:      v.GetString("otp.pepper"),
		Argon2: Argon2Config{
			Time:      v.GetUint32("argon2.time"),
			Memory:    v.GetUint32("argon2.memory"),
			Threads:   v.GetUint8("argon2.threads"),
			KeyLength: v.GetUint32("argon2.key_length"),
		},
		Storage: StorageConfig{
			Driver:       strings.ToLower(v.GetString("storage.driver")),
			LocalDir:     v.GetString("storage.local_dir"),
			PublicPrefix: v.GetString("storage.public_prefix"),
			S3: S3Config{
				Bucket:    v.GetString("storage.s3.bucket"),
				Region:    v.GetString("storage.s3.region"),
				Endpoint:  v.GetString("storage.s3.endpoint"),
				AccessKey: v.GetString("storage.s3.access_key"),
				SecretKey: v.GetString("storage.s3.secret_key"),
				PublicURL: v.GetString("storage.s3.public_url"),
			},
		},
		SMS: SMSConfig{
			Driver:           strings.ToLower(v.GetString("sms.driver")),
			TwilioAccountSID: v.GetString("sms.twilio.account_sid"),
			TwilioAuthToken:  v.GetString("sms.twilio.auth_token"),
			TwilioFrom:       v.GetString("sms.twilio.from"),
		},
		AuthRPS:    v.GetFloat64("ratelimit.auth_rps"),
		AuthBurst:  v.GetInt("ratelimit.auth_burst"),
		TrustProxy: v.GetBool("http.trust_proxy"),
	}, nil
}

// IsDevelopment reports whether console logging and the log code sender are expected.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
