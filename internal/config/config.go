package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-required:"true"`
	HTTPServer `yaml:"http_server"`
	Storage    Storage       `yaml:"storage"`
	Database   Database      `yaml:"database"`
	Steam      Steam         `yaml:"steam"`
	Identity   Identity      `yaml:"identity"`
	Clients    ClientsConfig `yaml:"clients"`
	Events     Events        `yaml:"events"`
	List       List          `yaml:"list"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	Cors        []string      `yaml:"cors" env-default:"http://localhost:3000"`
	RateLimit   int           `yaml:"rate_limit" env:"RATE_LIMIT" env-default:"120"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"mariadb"`
}

type Database struct {
	Host       string `yaml:"host" env:"HOST" env-default:"localhost"`
	Port       int    `yaml:"port" env:"PORT" env-default:"3306"`
	UsernameDB string `yaml:"username-db" env:"USERNAMEDB"`
	Password   string `yaml:"password" env:"PASSWORD"`
	DBName     string `yaml:"dbname" env:"DBNAME" env-default:"willplay"`
}

type Steam struct {
	APIURL            string        `yaml:"api_url" env:"STEAM_API_URL" env-default:"https://store.steampowered.com/api"`
	StoreURL          string        `yaml:"store_url" env:"STEAM_STORE_URL" env-default:"https://store.steampowered.com"`
	Timeout           time.Duration `yaml:"timeout" env-default:"5s"`
	RequestsPerMinute int           `yaml:"requests_per_minute" env-default:"40"`
	Country           string        `yaml:"country" env-default:"US"`
	Language          string        `yaml:"language" env-default:"english"`
}

type Identity struct {
	Provider  string `yaml:"provider" env:"IDENTITY_PROVIDER" env-default:"jwt"`
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`
}

type Client struct {
	Address      string        `yaml:"address"`
	Timeout      time.Duration `yaml:"timeout" env-default:"5s"`
	RetriesCount int           `yaml:"retries_count" env-default:"3"`
	Insecure     bool          `yaml:"insecure"`
}

type ClientsConfig struct {
	SSO Client `yaml:"sso"`
}

type Events struct {
	NatsURL   string `yaml:"nats_url" env:"NATS_URL"`
	NatsToken string `yaml:"nats_token" env:"NATS_TOKEN"`
}

type List struct {
	Statuses []string `yaml:"statuses" env:"LIST_STATUSES" env-default:"wishlist,backlog,playing,completed"`
}

const (
	ProviderJWT = "jwt"
	ProviderSSO = "sso"

	DriverMariaDB = "mariadb"
	DriverMemory  = "memory"
)

func MustLoad() *Config {
	configPath := flag.String("config", "", "path to config yaml file")
	flag.Parse()
	if *configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", *configPath)
	}

	// .env is optional, real environment wins over it
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("cannot read .env: %s", err)
	}

	cfg, err := Load(*configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s - %s", *configPath, err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (cfg *Config) Validate() error {
	switch cfg.Identity.Provider {
	case ProviderJWT:
		if cfg.Identity.JWTSecret == "" {
			return errors.New("identity.jwt_secret is required for the jwt provider")
		}
	case ProviderSSO:
		if cfg.Clients.SSO.Address == "" {
			return errors.New("clients.sso.address is required for the sso provider")
		}
	default:
		return fmt.Errorf("unknown identity provider %q", cfg.Identity.Provider)
	}

	switch cfg.Storage.Driver {
	case DriverMariaDB:
		if cfg.Database.UsernameDB == "" {
			return errors.New("database.username-db is required for the mariadb driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if len(cfg.List.Statuses) == 0 {
		return errors.New("list.statuses must not be empty")
	}

	return nil
}

func (cfg *Database) GetDSN() string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		cfg.UsernameDB,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
	)
}
