package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefijo de todas las variables de entorno que pisan el YAML.
const EnvPrefix = "DIRPORTAL_"

type Config struct {
	Server struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Log struct {
		// dev | prod
		Env   string `yaml:"env"`
		Level string `yaml:"level"`
	} `yaml:"log"`

	Store struct {
		// memory | postgres
		Driver          string        `yaml:"driver"`
		DSN             string        `yaml:"dsn"`
		MaxConns        int           `yaml:"max_conns"`
		MinConns        int           `yaml:"min_conns"`
		MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
		Migrate         bool          `yaml:"migrate"`
		SeedFile        string        `yaml:"seed_file"`
		PrimaryDomain   string        `yaml:"primary_domain"`
	} `yaml:"store"`

	Cache struct {
		// memory | redis
		Driver   string        `yaml:"driver"`
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Prefix   string        `yaml:"prefix"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"cache"`

	Rate struct {
		Enabled bool          `yaml:"enabled"`
		Max     int           `yaml:"max"`
		Window  time.Duration `yaml:"window"`
	} `yaml:"rate"`

	Session struct {
		Secret string        `yaml:"secret"`
		Issuer string        `yaml:"issuer"`
		TTL    time.Duration `yaml:"ttl"`

		// AdminGroup nombre visible del grupo cuyos miembros administran
		// otros usuarios
		AdminGroup string `yaml:"admin_group"`
	} `yaml:"session"`

	Claims struct {
		Dialect      string `yaml:"dialect"`
		UsernameURI  string `yaml:"username_uri"`
		GroupNameURI string `yaml:"groupname_uri"`
	} `yaml:"claims"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
}

// Load lee el YAML (opcional: path vacío arranca de defaults), aplica
// defaults, pisa con variables DIRPORTAL_* y valida.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	c.applyEnvOverrides()
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Env == "" {
		c.Log.Env = "dev"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
	if c.Store.PrimaryDomain == "" {
		c.Store.PrimaryDomain = "PRIMARY"
	}
	if c.Store.MaxConns == 0 {
		c.Store.MaxConns = 10
	}
	if c.Store.MinConns == 0 {
		c.Store.MinConns = 2
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "memory"
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = "dirportal:"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = time.Minute
	}
	if c.Rate.Max == 0 {
		c.Rate.Max = 10
	}
	if c.Rate.Window == 0 {
		c.Rate.Window = time.Minute
	}
	if c.Session.Issuer == "" {
		c.Session.Issuer = "dirportal"
	}
	if c.Session.AdminGroup == "" {
		c.Session.AdminGroup = "admins"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 15 * time.Minute
	}
	if c.Claims.Dialect == "" {
		c.Claims.Dialect = "http://wso2.org/claims"
	}
	if c.Claims.UsernameURI == "" {
		c.Claims.UsernameURI = c.Claims.Dialect + "/username"
	}
	if c.Claims.GroupNameURI == "" {
		c.Claims.GroupNameURI = c.Claims.Dialect + "/groupname"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(EnvPrefix + key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}

// applyEnvOverrides pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// server
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvDur("SERVER_SHUTDOWN_TIMEOUT"); ok {
		c.Server.ShutdownTimeout = v
	}

	// log
	if v, ok := getEnvStr("LOG_ENV"); ok {
		c.Log.Env = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	// store
	if v, ok := getEnvStr("STORE_DRIVER"); ok {
		c.Store.Driver = v
	}
	if v, ok := getEnvStr("STORE_DSN"); ok {
		c.Store.DSN = v
	}
	if v, ok := getEnvInt("STORE_MAX_CONNS"); ok {
		c.Store.MaxConns = v
	}
	if v, ok := getEnvInt("STORE_MIN_CONNS"); ok {
		c.Store.MinConns = v
	}
	if v, ok := getEnvDur("STORE_MAX_CONN_LIFETIME"); ok {
		c.Store.MaxConnLifetime = v
	}
	if v, ok := getEnvBool("STORE_MIGRATE"); ok {
		c.Store.Migrate = v
	}
	if v, ok := getEnvStr("STORE_SEED_FILE"); ok {
		c.Store.SeedFile = v
	}
	if v, ok := getEnvStr("STORE_PRIMARY_DOMAIN"); ok {
		c.Store.PrimaryDomain = v
	}

	// cache
	if v, ok := getEnvStr("CACHE_DRIVER"); ok {
		c.Cache.Driver = v
	}
	if v, ok := getEnvStr("CACHE_ADDR"); ok {
		c.Cache.Addr = v
	}
	if v, ok := getEnvStr("CACHE_PASSWORD"); ok {
		c.Cache.Password = v
	}
	if v, ok := getEnvInt("CACHE_DB"); ok {
		c.Cache.DB = v
	}
	if v, ok := getEnvDur("CACHE_TTL"); ok {
		c.Cache.TTL = v
	}

	// rate
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_MAX"); ok {
		c.Rate.Max = v
	}
	if v, ok := getEnvDur("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}

	// session
	if v, ok := getEnvStr("SESSION_SECRET"); ok {
		c.Session.Secret = v
	}
	if v, ok := getEnvStr("SESSION_ISSUER"); ok {
		c.Session.Issuer = v
	}
	if v, ok := getEnvStr("SESSION_ADMIN_GROUP"); ok {
		c.Session.AdminGroup = v
	}
	if v, ok := getEnvDur("SESSION_TTL"); ok {
		c.Session.TTL = v
	}

	// claims
	if v, ok := getEnvStr("CLAIMS_DIALECT"); ok {
		c.Claims.Dialect = v
	}
	if v, ok := getEnvStr("CLAIMS_USERNAME_URI"); ok {
		c.Claims.UsernameURI = v
	}
	if v, ok := getEnvStr("CLAIMS_GROUPNAME_URI"); ok {
		c.Claims.GroupNameURI = v
	}

	// metrics
	if v, ok := getEnvBool("METRICS_ENABLED"); ok {
		c.Metrics.Enabled = v
	}
}

// Validate chequea los valores críticos una vez aplicados defaults y env.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case "memory":
	case "postgres":
		if strings.TrimSpace(c.Store.DSN) == "" {
			errs = append(errs, errors.New("store.dsn is required for postgres"))
		}
		if c.Store.MinConns > c.Store.MaxConns {
			errs = append(errs, fmt.Errorf("store.min_conns (%d) > store.max_conns (%d)", c.Store.MinConns, c.Store.MaxConns))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver %q not supported", c.Store.Driver))
	}

	switch c.Cache.Driver {
	case "memory":
	case "redis":
		if c.Cache.Addr == "" {
			errs = append(errs, errors.New("cache.addr is required for redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.driver %q not supported", c.Cache.Driver))
	}

	if len(c.Session.Secret) < 32 {
		errs = append(errs, errors.New("session.secret must be at least 32 bytes"))
	}
	if c.Rate.Enabled && c.Rate.Max <= 0 {
		errs = append(errs, errors.New("rate.max must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
