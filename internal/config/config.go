package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Frontend FrontendConfig `mapstructure:"frontend"`
	Device   DeviceConfig   `mapstructure:"device"`
	Settings SettingsConfig `mapstructure:"settings"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	HTTPPort        int           `mapstructure:"http_port"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// SHA-256 hex of the API token, see "camerad token". Empty disables auth.
	APITokenHash string `mapstructure:"api_token_hash"`
}

type WorkerConfig struct {
	PreviewInterval time.Duration `mapstructure:"preview_interval"`
	CallTimeout     time.Duration `mapstructure:"call_timeout"`
}

type FrontendConfig struct {
	TickInterval  time.Duration `mapstructure:"tick_interval"`
	AutoOpenFirst bool          `mapstructure:"auto_open_first"`
}

type DeviceConfig struct {
	Backend string `mapstructure:"backend"`
	Fixture string `mapstructure:"fixture"`
}

// Settings shown to the user
type SettingsConfig struct {
	Exclude     []string `mapstructure:"exclude"`
	StrictNames bool     `mapstructure:"strict_names"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

// Load reads path, or only defaults and environment when path is empty.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults setzen
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.grpc_port", 50051)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.api_token_hash", "")
	v.SetDefault("worker.preview_interval", "20ms")
	v.SetDefault("worker.call_timeout", "0s")
	v.SetDefault("frontend.tick_interval", "100ms")
	v.SetDefault("frontend.auto_open_first", true)
	v.SetDefault("device.backend", "sim")
	v.SetDefault("device.fixture", "configs/devices.yaml")
	v.SetDefault("settings.exclude", []string{})
	v.SetDefault("settings.strict_names", false)
	v.SetDefault("log.development", false)

	// Environment Variables mit Prefix OCC_, z.B. OCC_SERVER_HTTP_PORT
	v.SetEnvPrefix("OCC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid server.http_port %d", c.Server.HTTPPort)
	}
	if c.Server.GRPCPort <= 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid server.grpc_port %d", c.Server.GRPCPort)
	}
	if c.Server.GRPCPort == c.Server.HTTPPort {
		return fmt.Errorf("server.grpc_port and server.http_port are both %d", c.Server.GRPCPort)
	}
	if h := c.Server.APITokenHash; h != "" && !isSHA256Hex(h) {
		return fmt.Errorf("server.api_token_hash must be a hex encoded SHA-256 digest")
	}
	if c.Worker.PreviewInterval <= 0 {
		return fmt.Errorf("worker.preview_interval must be positive")
	}
	if c.Frontend.TickInterval <= 0 {
		return fmt.Errorf("frontend.tick_interval must be positive")
	}
	if c.Device.Backend != "sim" {
		return fmt.Errorf("unsupported device.backend %q", c.Device.Backend)
	}
	return nil
}

func isSHA256Hex(s string) bool {
	b, err := hex.DecodeString(s)
	return err == nil && len(b) == sha256.Size
}
