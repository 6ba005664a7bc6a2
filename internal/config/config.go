package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvProd  = "prod"

	MediaBolt   = "bolt"
	MediaGridFS = "gridfs"
)

type Config struct {
	Env           string        `yaml:"env" env:"ENV" env-default:"local"`
	LogLevel      string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	DatabaseUrl   string        `yaml:"database_url" env:"DATABASE_URL"`
	BaseURL       string        `yaml:"base_url" env:"BASE_URL" env-default:"http://localhost:8080"`
	Server        ServerConfig  `yaml:"rest"`
	JWT           JWTConfig     `yaml:"jwt"`
	CORS          CORSConfig    `yaml:"cors"`
	Media         MediaConfig   `yaml:"media"`
	SMTP          SMTPConfig    `yaml:"smtp"`
	StatsInterval time.Duration `yaml:"stats_interval" env:"STATS_INTERVAL" env-default:"1m"`
}

type ServerConfig struct {
	Port string `yaml:"port" env:"PORT" env-default:"8080"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret" env:"JWT_SECRET"`
	TTL    time.Duration `yaml:"ttl" env:"JWT_TTL" env-default:"168h"`
}

type CORSConfig struct {
	Origin []string `yaml:"origin" env:"CORS_ORIGIN" env-separator:"," env-default:"*"`
}

type MediaConfig struct {
	Backend        string `yaml:"backend" env:"MEDIA_BACKEND" env-default:"bolt"`
	BoltPath       string `yaml:"bolt_path" env:"MEDIA_BOLT_PATH" env-default:"./data/media.db"`
	MongoURI       string `yaml:"mongodb_uri" env:"MONGODB_URI"`
	MongoDatabase  string `yaml:"mongodb_database" env:"MONGODB_DATABASE" env-default:"eventsite"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" env:"MEDIA_MAX_UPLOAD_BYTES" env-default:"10485760"`
	MaxImageWidth  int    `yaml:"max_image_width" env:"MEDIA_MAX_IMAGE_WIDTH" env-default:"1920"`
}

// SMTPConfig drives owner notifications. An empty Addr disables them.
type SMTPConfig struct {
	Addr     string `yaml:"addr" env:"SMTP_ADDR"`
	From     string `yaml:"from" env:"SMTP_FROM" env-default:"no-reply@localhost"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	// TLS is auto, starttls, tls or none.
	TLS string `yaml:"tls" env:"SMTP_TLS" env-default:"auto"`
}

// Addr is the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func (c *Config) IsProd() bool {
	return c.Env == EnvProd
}

func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseUrl == "" {
		errs = append(errs, errors.New("database_url is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("jwt.ttl must be positive"))
	}
	switch c.Media.Backend {
	case MediaBolt:
		if c.Media.BoltPath == "" {
			errs = append(errs, errors.New("media.bolt_path is required for the bolt backend"))
		}
	case MediaGridFS:
		if c.Media.MongoURI == "" {
			errs = append(errs, errors.New("media.mongodb_uri is required for the gridfs backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown media.backend %q", c.Media.Backend))
	}
	switch c.SMTP.TLS {
	case "", "auto", "starttls", "tls", "none":
	default:
		errs = append(errs, fmt.Errorf("unknown smtp.tls %q", c.SMTP.TLS))
	}
	if c.Media.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("media.max_upload_bytes must be positive"))
	}
	return errors.Join(errs...)
}

// Load reads path when it exists and falls back to the environment alone
// otherwise. Environment variables override file values in both cases.
func Load(path string) (*Config, error) {
	var config Config
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &config); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			return &config, nil
		}
	}
	if err := cleanenv.ReadEnv(&config); err != nil {
		return nil, fmt.Errorf("read config from env: %w", err)
	}
	return &config, nil
}

func MustLoad() *Config {
	path := fetchConfigPath()

	log.Printf("Loading config from %s", path)
	config, err := Load(path)
	if err != nil {
		panic(err)
	}
	if err := config.Validate(); err != nil {
		panic(err)
	}
	return config
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "config path")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	if res == "" {
		res = "./config/local.yaml"
	}

	return res
}
