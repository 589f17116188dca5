package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Mode         string        `mapstructure:"mode"`
	Port         int           `mapstructure:"port"`
	LogLevel     string        `mapstructure:"log_level"`
	StaticPath   string        `mapstructure:"static_path"`
	Secret       string        `mapstructure:"secret"`
	CORSOrigins  string        `mapstructure:"cors_origins"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	Backpressure string        `mapstructure:"backpressure"`
	GRPCAddr     string        `mapstructure:"grpc_addr"`
	RateLimit    RateLimit     `mapstructure:"rate_limit"`
	Media        Media         `mapstructure:"media"`
}

type RateLimit struct {
	Events   int           `mapstructure:"events"`
	Interval time.Duration `mapstructure:"interval"`
}

// Media selects where uploads go. Store is "local" or "s3".
type Media struct {
	Store      string `mapstructure:"store"`
	Dir        string `mapstructure:"dir"`
	PublicPath string `mapstructure:"public_path"`
	MaxSize    int64  `mapstructure:"max_size"`

	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	PublicURL string `mapstructure:"public_url"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 3001)
	v.SetDefault("log_level", "info")
	v.SetDefault("static_path", "./web")
	v.SetDefault("secret", "change-me")
	v.SetDefault("cors_origins", "")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("backpressure", "kick")
	v.SetDefault("grpc_addr", "")
	v.SetDefault("rate_limit.events", 20)
	v.SetDefault("rate_limit.interval", "10s")

	v.SetDefault("media.store", "local")
	v.SetDefault("media.dir", "./uploads")
	v.SetDefault("media.public_path", "/uploads")
	v.SetDefault("media.max_size", 50<<20)
	v.SetDefault("media.endpoint", "")
	v.SetDefault("media.region", "us-east-1")
	v.SetDefault("media.bucket", "")
	v.SetDefault("media.access_key", "")
	v.SetDefault("media.secret_key", "")
	v.SetDefault("media.use_ssl", true)
	v.SetDefault("media.public_url", "")
}

// Load reads config/config.<CONFIG_ENV>.yaml (or path when set), then
// environment variables, then flags that were explicitly passed.
// A missing file is not an error.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if path == "" {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		path = fmt.Sprintf("config/config.%s.yaml", env)
	}
	v.SetConfigFile(path)
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if f := flags.Lookup("port"); f != nil {
			if err := v.BindPFlag("port", f); err != nil {
				return nil, fmt.Errorf("bind port flag: %w", err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		log.Warn().Str("module", "config").Str("file", path).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", path).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("media", cfg.Media.Store).Msg("config ready")
	return &cfg, nil
}

// AllowedOrigins parses the comma separated CORS list.
func (c *Config) AllowedOrigins() []string {
	return ParseOrigins(c.CORSOrigins)
}

// ParseOrigins falls back to the wildcard when raw is empty or holds anything
// that is not an absolute origin.
func ParseOrigins(raw string) []string {
	wildcard := []string{"*"}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return wildcard
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		origin := strings.TrimRight(strings.TrimSpace(part), "/")
		if origin == "" {
			continue
		}
		if origin == "*" {
			return wildcard
		}
		u, err := url.Parse(strings.Replace(origin, "*.", "", 1))
		if err != nil || u.Scheme == "" || u.Host == "" {
			log.Warn().Str("module", "config").Str("origin", origin).Msg("invalid CORS origin, allowing all")
			return wildcard
		}
		out = append(out, origin)
	}
	if len(out) == 0 {
		return wildcard
	}
	return out
}
