// Package config loads server options from command-line flags, a .env file,
// a config file and environment variables.
//
// Precedence, highest first: explicitly set flags, environment, config file,
// flag defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers for listings.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string
	// DatabaseDSN is the PostgreSQL connection string.
	DatabaseDSN string
	// Config is the path to the config file (JSON, YAML or TOML).
	Config   string
	LogLevel string

	// StorageDriver selects the listing store: postgres or mongo.
	StorageDriver string
	MongoURI      string
	MongoDatabase string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret     string
	SessionTTL    time.Duration
	SecureCookies bool

	// NATSURL enables event publishing when set.
	NATSURL string

	// SMTPHost enables seller emails when set.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// OTLPEndpoint enables tracing when set.
	OTLPEndpoint string

	MessageRetention time.Duration
	JanitorInterval  time.Duration
}

// keys maps flag names to viper keys. Viper resolves each key against the
// upper-cased environment variable of the same name.
var keys = map[string]string{
	"a":                 "server_address",
	"d":                 "database_dsn",
	"log-level":         "log_level",
	"storage":           "storage_driver",
	"mongo-uri":         "mongo_uri",
	"mongo-db":          "mongo_database",
	"redis":             "redis_addr",
	"redis-password":    "redis_password",
	"redis-db":          "redis_db",
	"jwt-secret":        "jwt_secret",
	"session-ttl":       "session_ttl",
	"secure-cookies":    "secure_cookies",
	"nats":              "nats_url",
	"smtp-host":         "smtp_host",
	"smtp-port":         "smtp_port",
	"smtp-user":         "smtp_username",
	"smtp-password":     "smtp_password",
	"smtp-from":         "smtp_from",
	"otlp":              "otel_exporter_otlp_endpoint",
	"message-retention": "message_retention",
	"janitor-interval":  "janitor_interval",
}

func newFlagSet(o *Options) *flag.FlagSet {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&o.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&o.DatabaseDSN, "d", "", "postgres dsn")
	fs.StringVar(&o.Config, "config", "config.json", "path to config file")
	fs.StringVar(&o.Config, "c", "config.json", "path to config file (shorthand)")
	fs.StringVar(&o.LogLevel, "log-level", "info", "log level")
	fs.StringVar(&o.StorageDriver, "storage", DriverPostgres, "listing store: postgres or mongo")
	fs.StringVar(&o.MongoURI, "mongo-uri", "mongodb://localhost:27017", "mongo connection uri")
	fs.StringVar(&o.MongoDatabase, "mongo-db", "golfclub", "mongo database name")
	fs.StringVar(&o.RedisAddr, "redis", "localhost:6379", "redis address")
	fs.StringVar(&o.RedisPassword, "redis-password", "", "redis password")
	fs.IntVar(&o.RedisDB, "redis-db", 0, "redis database number")
	fs.StringVar(&o.JWTSecret, "jwt-secret", "", "hmac secret for session tokens")
	fs.DurationVar(&o.SessionTTL, "session-ttl", 24*time.Hour, "session lifetime")
	fs.BoolVar(&o.SecureCookies, "secure-cookies", false, "mark session cookies Secure")
	fs.StringVar(&o.NATSURL, "nats", "", "nats url; empty disables events")
	fs.StringVar(&o.SMTPHost, "smtp-host", "", "smtp host; empty disables seller emails")
	fs.IntVar(&o.SMTPPort, "smtp-port", 587, "smtp port")
	fs.StringVar(&o.SMTPUsername, "smtp-user", "", "smtp username")
	fs.StringVar(&o.SMTPPassword, "smtp-password", "", "smtp password")
	fs.StringVar(&o.SMTPFrom, "smtp-from", "", "sender address; defaults to the smtp username")
	fs.StringVar(&o.OTLPEndpoint, "otlp", "", "otlp grpc endpoint; empty disables tracing")
	fs.DurationVar(&o.MessageRetention, "message-retention", 0, "purge contact messages older than this; 0 keeps them forever")
	fs.DurationVar(&o.JanitorInterval, "janitor-interval", time.Hour, "message purge interval")
	return fs
}

// Load parses args and merges the other sources into Options.
func Load(args []string) (*Options, error) {
	o := &Options{}
	fs := newFlagSet(o)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	fs.VisitAll(func(f *flag.Flag) {
		if key, ok := keys[f.Name]; ok {
			v.SetDefault(key, f.Value.String())
		}
	})
	fs.Visit(func(f *flag.Flag) {
		if key, ok := keys[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})

	if path := os.Getenv("CONFIG"); path != "" {
		o.Config = path
	}
	if o.Config != "" {
		if _, err := os.Stat(o.Config); err == nil {
			v.SetConfigFile(o.Config)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config file %s: %w", o.Config, err)
			}
		}
	}

	o.Port = v.GetString("server_address")
	o.DatabaseDSN = v.GetString("database_dsn")
	o.LogLevel = v.GetString("log_level")
	o.StorageDriver = strings.ToLower(v.GetString("storage_driver"))
	o.MongoURI = v.GetString("mongo_uri")
	o.MongoDatabase = v.GetString("mongo_database")
	o.RedisAddr = v.GetString("redis_addr")
	o.RedisPassword = v.GetString("redis_password")
	o.RedisDB = v.GetInt("redis_db")
	o.JWTSecret = v.GetString("jwt_secret")
	o.SessionTTL = v.GetDuration("session_ttl")
	o.SecureCookies = v.GetBool("secure_cookies")
	o.NATSURL = v.GetString("nats_url")
	o.SMTPHost = v.GetString("smtp_host")
	o.SMTPPort = v.GetInt("smtp_port")
	o.SMTPUsername = v.GetString("smtp_username")
	o.SMTPPassword = v.GetString("smtp_password")
	o.SMTPFrom = v.GetString("smtp_from")
	o.OTLPEndpoint = v.GetString("otel_exporter_otlp_endpoint")
	o.MessageRetention = v.GetDuration("message_retention")
	o.JanitorInterval = v.GetDuration("janitor_interval")

	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate checks option combinations that would fail later at startup.
func (o *Options) Validate() error {
	switch o.StorageDriver {
	case DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("unknown storage driver %q", o.StorageDriver)
	}
	if o.JWTSecret == "" {
		return errors.New("jwt secret is required (JWT_SECRET or -jwt-secret)")
	}
	if o.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", o.SessionTTL)
	}
	if o.MessageRetention < 0 {
		return fmt.Errorf("message retention must not be negative, got %s", o.MessageRetention)
	}
	if o.MessageRetention > 0 && o.JanitorInterval <= 0 {
		return fmt.Errorf("janitor interval must be positive, got %s", o.JanitorInterval)
	}
	return nil
}

// Parse loads options from the process arguments and exits on error.
func Parse() *Options {
	o, err := Load(os.Args[1:])
	if err != nil {
		log.Fatalf("error while loading config: %v", err)
	}
	return o
}
