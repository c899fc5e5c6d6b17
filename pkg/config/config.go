package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Rewards       RewardsConfig
	Cron          CronConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ACADEMY_APP_ENV" required:"true"`
	Port         string `envconfig:"ACADEMY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ACADEMY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ACADEMY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, "dev")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, "prod")
}

type ServiceConfig struct {
	Kind string `envconfig:"ACADEMY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ACADEMY_DB_DSN"`
	Driver string `envconfig:"ACADEMY_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"ACADEMY_DB_HOST"`
	Port     int    `envconfig:"ACADEMY_DB_PORT" default:"5432"`
	User     string `envconfig:"ACADEMY_DB_USER"`
	Password string `envconfig:"ACADEMY_DB_PASSWORD"`
	Name     string `envconfig:"ACADEMY_DB_NAME"`
	SSLMode  string `envconfig:"ACADEMY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ACADEMY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ACADEMY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ACADEMY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ACADEMY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ACADEMY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ACADEMY_REDIS_ADDR"`
	Password     string        `envconfig:"ACADEMY_REDIS_PASSWORD"`
	DB           int           `envconfig:"ACADEMY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ACADEMY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ACADEMY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ACADEMY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ACADEMY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ACADEMY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ACADEMY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ACADEMY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ACADEMY_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ACADEMY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ACADEMY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ACADEMY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ACADEMY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ACADEMY_ARGON_KEY_LEN" default:"32"`
}

// RewardsConfig carries the tunable economy amounts. They are configuration,
// not constants, so environments can run different reward schedules.
type RewardsConfig struct {
	DailyClaimXP    int           `envconfig:"ACADEMY_REWARDS_DAILY_CLAIM_XP" default:"100"`
	LootBoxMinXP    int           `envconfig:"ACADEMY_REWARDS_LOOT_BOX_MIN_XP" default:"50"`
	LootBoxMaxXP    int           `envconfig:"ACADEMY_REWARDS_LOOT_BOX_MAX_XP" default:"250"`
	ExpiryWarnDays  int           `envconfig:"ACADEMY_REWARDS_EXPIRY_WARN_DAYS" default:"7"`
	BoostDuration   time.Duration `envconfig:"ACADEMY_REWARDS_DEFAULT_BOOST_DURATION" default:"24h"`
	PremiumBookings int           `envconfig:"ACADEMY_REWARDS_PREMIUM_FREE_BOOKINGS" default:"1"`
	VIPBookings     int           `envconfig:"ACADEMY_REWARDS_VIP_FREE_BOOKINGS" default:"20"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ACADEMY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"ACADEMY_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"ACADEMY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"ACADEMY_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ACADEMY_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ACADEMY_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CronConfig struct {
	Interval              time.Duration `envconfig:"ACADEMY_CRON_INTERVAL" default:"1h"`
	SweepBatchSize        int           `envconfig:"ACADEMY_CRON_SWEEP_BATCH_SIZE" default:"250"`
	NotificationRetention time.Duration `envconfig:"ACADEMY_CRON_NOTIFICATION_RETENTION" default:"720h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ACADEMY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ACADEMY_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for env, value := range map[string]string{
		"ACADEMY_DB_HOST": db.Host,
		"ACADEMY_DB_USER": db.User,
		"ACADEMY_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either ACADEMY_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
