package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/alexzimmer/portfolio/internal/version"
)

// EnvPrefix namespaces every environment override.
// PORTFOLIO_HTTP__PORT maps to http.port.
const EnvPrefix = "PORTFOLIO_"

// Config holds all runtime configuration. Sources, lowest priority first:
// built-in defaults, an optional YAML file, deployment environment variables
// shared with the rest of the stack, then PORTFOLIO_* overrides.
type Config struct {
	HTTP      HTTPConfig      `koanf:"http"`
	Site      SiteConfig      `koanf:"site"`
	Health    HealthConfig    `koanf:"health"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Log       LogConfig       `koanf:"log"`
	Tracing   TracingConfig   `koanf:"tracing"`
}

type HTTPConfig struct {
	Port            string        `koanf:"port" validate:"required,numeric"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// SiteConfig is echoed in health reports.
type SiteConfig struct {
	Environment string `koanf:"environment" validate:"required"`
	Region      string `koanf:"region" validate:"required"`
	Version     string `koanf:"version" validate:"required"`
}

type HealthConfig struct {
	// ProbeDirs are tried in order; the filesystem check passes if any is
	// readable. The default ends with the working directory, which every
	// image has, so a bare deployment reports healthy; list only the asset
	// directories to make their absence degrade the service.
	ProbeDirs []string `koanf:"probe_dirs" validate:"min=1,dive,required"`
}

type RateLimitConfig struct {
	Enabled   bool          `koanf:"enabled"`
	PerSecond int           `koanf:"per_second" validate:"gt=0"`
	Burst     int           `koanf:"burst" validate:"gt=0"`
	IdleTTL   time.Duration `koanf:"idle_ttl" validate:"gt=0"`
}

type LogConfig struct {
	Level      string `koanf:"level" validate:"oneof=debug info warn error"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `koanf:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `koanf:"max_age_days" validate:"gte=0"`
}

type TracingConfig struct {
	// Endpoint is an OTLP/HTTP traces URL. Tracing is off when empty.
	Endpoint    string  `koanf:"endpoint" validate:"omitempty,url"`
	ServiceName string  `koanf:"service_name" validate:"required"`
	SampleRatio float64 `koanf:"sample_ratio" validate:"gte=0,lte=1"`
}

func defaults() map[string]any {
	return map[string]any{
		"http.port":             "8080",
		"http.read_timeout":     "5s",
		"http.write_timeout":    "10s",
		"http.shutdown_timeout": "30s",

		"site.environment": "development",
		"site.region":      "hetzner-nbg1",
		"site.version":     version.Version,

		"health.probe_dirs": []string{"./public", "./static", "."},

		"rate_limit.enabled":    true,
		"rate_limit.per_second": 20,
		"rate_limit.burst":      40,
		"rate_limit.idle_ttl":   "5m",

		"log.level":        "info",
		"log.file":         "",
		"log.max_size_mb":  100,
		"log.max_backups":  10,
		"log.max_age_days": 28,

		"tracing.endpoint":     "",
		"tracing.service_name": "portfolio",
		"tracing.sample_ratio": 1.0,
	}
}

// deploymentEnv maps unprefixed variables set by the container platform.
var deploymentEnv = map[string]string{
	"DEPLOYMENT_REGION": "site.region",
	"APP_ENV":           "site.environment",
	"NODE_ENV":          "site.environment",
	"HTTP_PORT":         "http.port",
}

// Load builds the configuration. path may be empty, in which case no file
// is read.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %q: %w", path, err)
		}
	}

	if err := k.Load(confmap.Provider(lookupDeploymentEnv(), "."), nil); err != nil {
		return nil, fmt.Errorf("load deployment env: %w", err)
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKeyValue), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// lookupDeploymentEnv collects the unprefixed variables that are set.
// APP_ENV wins over NODE_ENV when both are present.
func lookupDeploymentEnv() map[string]any {
	out := make(map[string]any)
	for _, name := range []string{"NODE_ENV", "APP_ENV", "DEPLOYMENT_REGION", "HTTP_PORT"} {
		if v := os.Getenv(name); v != "" {
			out[deploymentEnv[name]] = v
		}
	}
	return out
}

// envKeyValue turns PORTFOLIO_HEALTH__PROBE_DIRS=a,b into health.probe_dirs=[a b].
func envKeyValue(key, value string) (string, any) {
	key = strings.TrimPrefix(key, EnvPrefix)
	key = strings.ReplaceAll(strings.ToLower(key), "__", ".")
	if key == "health.probe_dirs" {
		return key, splitList(value)
	}
	return key, value
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
