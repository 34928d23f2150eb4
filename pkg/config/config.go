package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "COMANDA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "COMANDA_DB_DSN"
	EnvDBHost = "COMANDA_DB_HOST"
	EnvDBUser = "COMANDA_DB_USER"
	EnvDBName = "COMANDA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Reservations ReservationsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COMANDA_APP_ENV" required:"true"`
	Port         string `envconfig:"COMANDA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"COMANDA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COMANDA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"COMANDA_DB_DSN"`
	Driver string `envconfig:"COMANDA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"COMANDA_DB_HOST"`
	LegacyPort     int    `envconfig:"COMANDA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"COMANDA_DB_USER"`
	LegacyPassword string `envconfig:"COMANDA_DB_PASSWORD"`
	LegacyName     string `envconfig:"COMANDA_DB_NAME"`
	LegacySSLMode  string `envconfig:"COMANDA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COMANDA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COMANDA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COMANDA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COMANDA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"COMANDA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"COMANDA_REDIS_ADDR"`
	Password     string        `envconfig:"COMANDA_REDIS_PASSWORD"`
	DB           int           `envconfig:"COMANDA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COMANDA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COMANDA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COMANDA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COMANDA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COMANDA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// ReservationsConfig tunes the reservation lifecycle engine.
type ReservationsConfig struct {
	// MaxWindow caps how far a single reservation may stretch.
	MaxWindow time.Duration `envconfig:"COMANDA_RESERVATIONS_MAX_WINDOW" default:"12h"`
	// BootstrapTimeout bounds how long startup recovery may take before the
	// process refuses to serve traffic.
	BootstrapTimeout time.Duration `envconfig:"COMANDA_RESERVATIONS_BOOTSTRAP_TIMEOUT" default:"30s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"COMANDA_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
