// Package config loads the auditor settings from flags, environment and an optional file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/naka-gawa/fork-auditor/internal/domain"
)

const (
	environmentPrefix = "FORKAUDIT"
	configName        = "fork-auditor"
	configType        = "yaml"
)

var (
	// ErrUsage marks invalid or missing command-line input.
	ErrUsage = errors.New("usage error")
	// ErrMissingToken marks a run without GitHub credentials.
	ErrMissingToken = errors.New("no GitHub token found: set GH_TOKEN or GITHUB_TOKEN (for example `export GH_TOKEN=$(gh auth token)`)")
)

// Config holds every setting of a single run.
type Config struct {
	Username          string        `mapstructure:"username"`
	DryRun            bool          `mapstructure:"dry-run"`
	KeepWithPRs       bool          `mapstructure:"keep-with-prs"`
	MaxRepos          int           `mapstructure:"max-repos"`
	Output            string        `mapstructure:"output"`
	Verbose           bool          `mapstructure:"verbose"`
	LogFormat         string        `mapstructure:"log-format"`
	Throttle          time.Duration `mapstructure:"throttle"`
	RateLimitWarn     int           `mapstructure:"rate-limit-warn"`
	RateLimitCritical int           `mapstructure:"rate-limit-critical"`

	// Token is read from the environment only, never from flags or files.
	Token string `mapstructure:"-"`
}

// RegisterFlags declares the auditor flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("username", "u", "", "GitHub user whose forks are audited (required)")
	fs.Bool("dry-run", false, "Report what would be deleted without deleting anything")
	fs.Bool("keep-with-prs", false, "Keep forks that have an open pull request to their parent")
	fs.Int("max-repos", 0, "Maximum number of forks to audit (0 = all)")
	fs.StringP("output", "o", "text", "Report format: text or json")
	fs.String("log-format", "console", "Log encoding: console or json")
	fs.Duration("throttle", 500*time.Millisecond, "Minimum delay between GitHub API calls")
	fs.Int("rate-limit-warn", domain.DefaultThresholds.Low, "Warn when fewer API requests remain")
	fs.Int("rate-limit-critical", domain.DefaultThresholds.Critical, "Stop classifying when fewer API requests remain")
}

// Load merges, in increasing priority, an optional config file, FORKAUDIT_*
// environment variables and explicitly set flags. An empty configFile makes
// the loader look for ./fork-auditor.yaml and ignore its absence.
func Load(fs *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(environmentPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read configuration: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	cfg.Token, _ = ResolveToken(nil)
	return &cfg, nil
}

// Validate reports usage errors. A missing token is reported separately as ErrMissingToken.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return fmt.Errorf("%w: --username is required", ErrUsage)
	}
	if c.MaxRepos < 0 {
		return fmt.Errorf("%w: --max-repos must not be negative, got %d", ErrUsage, c.MaxRepos)
	}
	if c.Throttle < 0 {
		return fmt.Errorf("%w: --throttle must not be negative, got %s", ErrUsage, c.Throttle)
	}
	if c.RateLimitCritical < 0 || c.RateLimitCritical >= c.RateLimitWarn {
		return fmt.Errorf("%w: --rate-limit-critical (%d) must be at least 0 and below --rate-limit-warn (%d)",
			ErrUsage, c.RateLimitCritical, c.RateLimitWarn)
	}
	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// Options returns the audit options carried by the configuration.
func (c *Config) Options() domain.Options {
	return domain.Options{
		Username:    strings.TrimSpace(c.Username),
		DryRun:      c.DryRun,
		KeepWithPRs: c.KeepWithPRs,
		MaxRepos:    c.MaxRepos,
	}
}

// Thresholds returns the rate-limit guard thresholds.
func (c *Config) Thresholds() domain.Thresholds {
	return domain.Thresholds{Low: c.RateLimitWarn, Critical: c.RateLimitCritical}
}
