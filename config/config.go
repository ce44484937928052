package config

import (
	"errors"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env                string            `mapstructure:"env"`
	LogLevel           string            `mapstructure:"log_level"`
	LogType            string            `mapstructure:"log_type"`
	ServiceName        string            `mapstructure:"service_name"`
	Port               string            `mapstructure:"port"`
	Version            string            `mapstructure:"version"`
	CorsMaxAgeHours    time.Duration     `mapstructure:"cors_max_age_hours"`
	ApiUrlPath         string            `mapstructure:"api_url_path"`
	MaxBodySize        int64             `mapstructure:"max_body_size"`
	CheckerSettings    *CheckerConfig    `mapstructure:"checker"`
	HttpClientSettings *HttpClientConfig `mapstructure:"http_client"`
	TelemetrySettings  *TelemetryConfig  `mapstructure:"telemetry"`
	Agents             []CompanyConfig   `mapstructure:"agents"`
}

type CheckerConfig struct {
	RobotsTimeout   time.Duration `mapstructure:"robots_timeout"`
	PageTimeout     time.Duration `mapstructure:"page_timeout"`
	MaxWorkers      int           `mapstructure:"max_workers"`
	RobotsUserAgent string        `mapstructure:"robots_user_agent"`
	MaxPageSize     int64         `mapstructure:"max_page_size"`
}

type HttpClientConfig struct {
	RequestTimeout            time.Duration `mapstructure:"request_timeout"`
	MaxIdleConnections        int           `mapstructure:"max_idle_connections"`
	MaxIdleConnectionsPerHost int           `mapstructure:"max_idle_connections_per_host"`
	MaxConnectionsPerHost     int           `mapstructure:"max_connections_per_host"`
	IdleConnectionTimeout     time.Duration `mapstructure:"idle_connection_timeout"`
	TlsHandshakeTimeout       time.Duration `mapstructure:"tls_handshake_timeout"`
	DialTimeout               time.Duration `mapstructure:"dial_timeout"`
	DialKeepAlive             time.Duration `mapstructure:"dial_keep_alive"`
	TlsInsecureSkipVerify     bool          `mapstructure:"tls_insecure_skip_verify"`
}

type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	CollectorUrl string `mapstructure:"collector_url"`
}

// CompanyConfig lists the crawlers of one company in the order they are reported.
type CompanyConfig struct {
	Company string      `mapstructure:"company"`
	Bots    []BotConfig `mapstructure:"bots"`
}

type BotConfig struct {
	Name      string `mapstructure:"name"`
	UserAgent string `mapstructure:"user_agent"`
}

func MustLoad() *Config {
	cfg, err := Load("")
	if err != nil {
		slog.Error("can't initialize config.", slog.String("err", err.Error()))
		os.Exit(1)
	}

	return cfg
}

// Load reads config.yaml from the working directory, or cfgFile when it is set.
// A missing default config file is not an error: defaults and environment are used.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(path.Join("."))
		v.SetConfigName("config")
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, err
		}
		slog.Debug("config file not found. Using defaults.")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_type", "text")
	v.SetDefault("service_name", "bots-checker")
	v.SetDefault("port", "8080")
	v.SetDefault("version", "dev")
	v.SetDefault("cors_max_age_hours", 12*time.Hour)
	v.SetDefault("api_url_path", "/api/v1")
	v.SetDefault("max_body_size", 1)

	v.SetDefault("checker.robots_timeout", 10*time.Second)
	v.SetDefault("checker.page_timeout", 30*time.Second)
	v.SetDefault("checker.max_workers", 4)
	v.SetDefault("checker.robots_user_agent", "bots-checker/1.0")
	v.SetDefault("checker.max_page_size", 5*1024*1024)

	v.SetDefault("http_client.request_timeout", 0)
	v.SetDefault("http_client.max_idle_connections", 100)
	v.SetDefault("http_client.max_idle_connections_per_host", 10)
	v.SetDefault("http_client.max_connections_per_host", 0)
	v.SetDefault("http_client.idle_connection_timeout", 90*time.Second)
	v.SetDefault("http_client.tls_handshake_timeout", 10*time.Second)
	v.SetDefault("http_client.dial_timeout", 10*time.Second)
	v.SetDefault("http_client.dial_keep_alive", 30*time.Second)
	v.SetDefault("http_client.tls_insecure_skip_verify", false)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.collector_url", "localhost:4318")
}
