package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

type Configs struct {
	Env     string `toml:"env"`
	Network string `toml:"network"`

	Networks          map[string]NetworkConfig `toml:"networks"`
	DevelopmentChains []string                 `toml:"development_chains"`

	Log              LogConfigs      `toml:"log"`
	Database         DatabaseConfigs `toml:"database"`
	ApiServer        ServerConfigs   `toml:"api_server"`
	PrometheusServer ServerConfigs   `toml:"prometheus_server"`
	Auth             AuthConfigs     `toml:"auth"`
	Redis            RedisConfigs    `toml:"redis"`
	Kafka            KafkaConfigs    `toml:"kafka"`
	Storage          StorageConfigs  `toml:"storage"`
	Keeper           KeeperConfigs   `toml:"keeper"`
	Deploy           DeployConfigs   `toml:"deploy"`
}

type LogConfigs struct {
	Level      string `toml:"level"`
	Production bool   `toml:"production"`
}

type DatabaseConfigs struct {
	// Driver is either mysql or sqlite.
	Driver   string `toml:"driver"`
	DSN      string `toml:"dsn"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	if d.DSN != "" {
		return d.DSN
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local&multiStatements=true",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host           string   `toml:"host"`
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

func (s ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type AuthConfigs struct {
	Secret string `toml:"secret"`
	// Expiration is a time.ParseDuration string, e.g. "24h".
	Expiration string `toml:"expiration"`
}

func (a AuthConfigs) TokenExpiration() time.Duration {
	d, err := time.ParseDuration(a.Expiration)
	if err != nil {
		return 24 * time.Hour
	}

	return d
}

type RedisConfigs struct {
	Enable bool   `toml:"enable"`
	Addr   string `toml:"addr"`
	// CacheTTL is a time.ParseDuration string.
	CacheTTL string `toml:"cache_ttl"`
}

func (r RedisConfigs) TTL() time.Duration {
	d, err := time.ParseDuration(r.CacheTTL)
	if err != nil {
		return time.Minute
	}

	return d
}

type KafkaConfigs struct {
	Enable      bool   `toml:"enable"`
	Addr        string `toml:"addr"`
	ClientID    string `toml:"client_id"`
	EventsTopic string `toml:"events_topic"`
}

type StorageConfigs struct {
	// Kind is either local or s3.
	Kind    string    `toml:"kind"`
	BaseDir string    `toml:"base_dir"`
	S3      S3Configs `toml:"s3"`
}

type S3Configs struct {
	Region         string `toml:"region"`
	Endpoint       string `toml:"endpoint"`
	PublicEndpoint string `toml:"public_endpoint"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	Bucket         string `toml:"bucket"`
	SSLDisabled    bool   `toml:"ssl_disabled"`
}

type KeeperConfigs struct {
	Account     string `toml:"account"`
	Schedule    string `toml:"schedule"`
	AutoFulfill bool   `toml:"auto_fulfill"`
}

type DeployConfigs struct {
	Deployer       string `toml:"deployer"`
	UpdateFrontend bool   `toml:"update_frontend"`
	// FundAmount is the LINK amount (in ether units) used to fund a newly
	// created subscription on development chains.
	FundAmount string `toml:"fund_amount"`
}

// Load reads the configuration from a toml file, fills in defaults, then
// applies environment overrides.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Configs{}, fmt.Errorf("cannot decode config file %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv("NETWORK"); v != "" {
		cfg.Network = v
	}

	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	if v := os.Getenv("UPDATE_FRONTEND"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			// Any non-empty value enables the frontend update.
			b = true
		}
		cfg.Deploy.UpdateFrontend = b
	}

	for name, network := range cfg.Networks {
		network.Name = name
		cfg.Networks[name] = network
	}

	return cfg, nil
}

// Default returns a configuration that runs everything locally on the
// hardhat development network.
func Default() Configs {
	return Configs{
		Env:               "local",
		Network:           "hardhat",
		Networks:          DefaultNetworks(),
		DevelopmentChains: []string{"hardhat", "localhost"},
		Log:               LogConfigs{Level: "INFO"},
		Database:          DatabaseConfigs{Driver: "sqlite", DSN: "raffle.db"},
		ApiServer:         ServerConfigs{Port: "8080", AllowedOrigins: []string{"*"}},
		PrometheusServer:  ServerConfigs{Port: "9090"},
		Auth:              AuthConfigs{Secret: "secret", Expiration: "24h"},
		Redis:             RedisConfigs{Addr: "localhost:6379", CacheTTL: "1m"},
		Kafka:             KafkaConfigs{Addr: "localhost:9092", ClientID: "raffle", EventsTopic: "raffle_events"},
		Storage:           StorageConfigs{Kind: "local", BaseDir: "frontend/constants"},
		Keeper: KeeperConfigs{
			Account:  "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
			Schedule: "@every 10s",
		},
		Deploy: DeployConfigs{
			Deployer:   "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
			FundAmount: "2",
		},
	}
}
