package config

import (
    "fmt"
    "strings"

    "github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
    Server    ServerConfig    `mapstructure:"server"`
    Database  DatabaseConfig  `mapstructure:"database"`
    GeoIP     GeoIPConfig     `mapstructure:"geoip"`
    Logging   LoggingConfig   `mapstructure:"logging"`
    Emulation EmulationConfig `mapstructure:"emulation"`
}

// ServerConfig holds listener and public-facing configuration
type ServerConfig struct {
    Host      string `mapstructure:"host"`
    HTTPPort  int    `mapstructure:"http_port"`
    HTTPSPort int    `mapstructure:"https_port"`
    TLSCert   string `mapstructure:"tls_cert"`
    TLSKey    string `mapstructure:"tls_key"`
    PublicURL string `mapstructure:"public_url"`
    MaxPorts  int    `mapstructure:"max_ports"`
}

// DatabaseConfig holds store configuration
type DatabaseConfig struct {
    Driver      string `mapstructure:"driver"`
    URL         string `mapstructure:"url"`
    CacheSizeMB int    `mapstructure:"cache_size_mb"`
}

// GeoIPConfig holds GeoIP database configuration
type GeoIPConfig struct {
    Database string `mapstructure:"database"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
    Level string `mapstructure:"level"`
}

// EmulationConfig holds protocol-emulation tunables
type EmulationConfig struct {
    SSHBanner    string `mapstructure:"ssh_banner"`
    FTPBanner    string `mapstructure:"ftp_banner"`
    MySQLVersion string `mapstructure:"mysql_version"`
}

// Load loads configuration from file and environment
func Load(configFile string) (*Config, error) {
    if configFile != "" {
        viper.SetConfigFile(configFile)
    } else {
        viper.SetConfigName("config")
        viper.SetConfigType("toml")
        viper.AddConfigPath("./configs")
        viper.AddConfigPath("/etc/honeypot")
        viper.AddConfigPath(".")
    }

    // Set environment variable support
    viper.SetEnvPrefix("HONEYPOT")
    viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
    viper.AutomaticEnv()

    // Set defaults
    setDefaults()

    // Read configuration
    if err := viper.ReadInConfig(); err != nil {
        if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
            return nil, fmt.Errorf("failed to read config file: %w", err)
        }
        // Config file not found; use defaults and environment
    }

    // Unmarshal into config struct
    var config Config
    if err := viper.Unmarshal(&config); err != nil {
        return nil, fmt.Errorf("failed to unmarshal config: %w", err)
    }

    // Validate configuration
    if err := config.Validate(); err != nil {
        return nil, fmt.Errorf("invalid configuration: %w", err)
    }

    return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
    // Server defaults
    viper.SetDefault("server.host", "0.0.0.0")
    viper.SetDefault("server.http_port", 8080)
    viper.SetDefault("server.https_port", 0)
    viper.SetDefault("server.tls_cert", "")
    viper.SetDefault("server.tls_key", "")
    viper.SetDefault("server.public_url", "")
    viper.SetDefault("server.max_ports", 0)

    // Database defaults
    viper.SetDefault("database.driver", "sqlite")
    viper.SetDefault("database.url", "data/honeypot.db")
    viper.SetDefault("database.cache_size_mb", 64)

    // GeoIP defaults
    viper.SetDefault("geoip.database", "data/GeoLite2-City.mmdb")

    // Logging defaults
    viper.SetDefault("logging.level", "info")

    // Emulation defaults
    viper.SetDefault("emulation.ssh_banner", "SSH-2.0-OpenSSH_8.2p1 Ubuntu-4ubuntu0.5")
    viper.SetDefault("emulation.ftp_banner", "220 (vsFTPd 3.0.3)")
    viper.SetDefault("emulation.mysql_version", "8.0.28")
}

// Validate validates the configuration
func (c *Config) Validate() error {
    if c.Server.Host == "" {
        return fmt.Errorf("server host is required")
    }
    if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
        return fmt.Errorf("invalid server http_port: %d", c.Server.HTTPPort)
    }
    if c.Server.HTTPSPort < 0 || c.Server.HTTPSPort > 65535 {
        return fmt.Errorf("invalid server https_port: %d", c.Server.HTTPSPort)
    }
    if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
        return fmt.Errorf("tls_cert and tls_key must both be set or both be empty")
    }
    if c.Server.MaxPorts < 0 {
        return fmt.Errorf("server max_ports must not be negative")
    }

    if c.Database.URL == "" {
        return fmt.Errorf("database url is required")
    }
    switch c.Database.Driver {
    case "sqlite", "postgres":
    default:
        return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
    }
    if c.Database.CacheSizeMB <= 0 {
        return fmt.Errorf("database cache_size_mb must be positive")
    }

    return nil
}

// DSN returns the store connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
    switch c.Driver {
    case "sqlite":
        return fmt.Sprintf("%s?mode=rwc&cache=shared", c.URL)
    default:
        return c.URL
    }
}

// HTTPAddr returns the listen address for the plaintext HTTP server.
func (c *ServerConfig) HTTPAddr() string {
    return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// HTTPSAddr returns the listen address for the TLS HTTP server.
func (c *ServerConfig) HTTPSAddr() string {
    return fmt.Sprintf("%s:%d", c.Host, c.HTTPSPort)
}

// TLSEnabled reports whether HTTPS serving is configured.
func (c *ServerConfig) TLSEnabled() bool {
    return c.HTTPSPort > 0 && c.TLSCert != "" && c.TLSKey != ""
}
