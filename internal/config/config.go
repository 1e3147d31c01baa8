package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/indexwatch/internal/domain"
	"github.com/kailas-cloud/indexwatch/internal/domain/query"
)

// Config holds the indexwatch configuration.
type Config struct {
	Solr      SolrConfig      `yaml:"solr"`
	Poll      PollConfig      `yaml:"poll"`
	Playback  PollConfig      `yaml:"playback"`
	Retention RetentionConfig `yaml:"retention"`
	History   HistoryConfig   `yaml:"history"`
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SolrConfig locates the index core. Either CoreURL or all of ServerURL,
// IndexName and BackupsetID must be set.
type SolrConfig struct {
	ServerURL         string `yaml:"server_url"`
	IndexName         string `yaml:"index_name"`
	BackupsetID       string `yaml:"backupset_id"`
	CoreURL           string `yaml:"core_url"`
	UniqueKey         string `yaml:"unique_key"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec"`
}

// PollConfig holds polling cadence settings.
type PollConfig struct {
	IntervalSec int `yaml:"interval_sec"`
	MaxAttempts int `yaml:"max_attempts"`
}

// RetentionConfig holds the command that runs the product's retention rules.
type RetentionConfig struct {
	Command   []string `yaml:"command"`
	SettleSec int      `yaml:"settle_sec"` // wait after the command before re-querying
}

// HistoryConfig holds the verification history store settings. Empty Addrs disables it.
type HistoryConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	TTLHours         int      `yaml:"ttl_hours"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"` // default: longest wait/played request plus 30s
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML, substituting ${VAR} and ${VAR:-default} first.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Solr.UniqueKey == "" {
		c.Solr.UniqueKey = "contentid"
	}
	if c.Solr.RequestTimeoutSec <= 0 {
		c.Solr.RequestTimeoutSec = 30
	}
	poll, playback := domain.DefaultPollConfig(), domain.DefaultPlaybackConfig()
	if c.Poll.IntervalSec <= 0 {
		c.Poll.IntervalSec = int(poll.Interval / time.Second)
	}
	if c.Poll.MaxAttempts <= 0 {
		c.Poll.MaxAttempts = poll.MaxAttempts
	}
	if c.Playback.IntervalSec <= 0 {
		c.Playback.IntervalSec = int(playback.Interval / time.Second)
	}
	if c.Playback.MaxAttempts <= 0 {
		c.Playback.MaxAttempts = playback.MaxAttempts
	}
	if c.Retention.SettleSec < 0 {
		c.Retention.SettleSec = 0
	}
	addrs := c.History.Addrs[:0]
	for _, a := range c.History.Addrs {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	c.History.Addrs = addrs
	if c.History.TTLHours <= 0 {
		c.History.TTLHours = 24 * 7
	}
	if c.History.ReadinessTimeout <= 0 {
		c.History.ReadinessTimeout = 10
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = int((c.LongestRequest() + writeTimeoutSlack) / time.Second)
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Solr.CoreURL == "" {
		var missing []string
		if c.Solr.ServerURL == "" {
			missing = append(missing, "server_url")
		}
		if c.Solr.IndexName == "" {
			missing = append(missing, "index_name")
		}
		if c.Solr.BackupsetID == "" {
			missing = append(missing, "backupset_id")
		}
		if len(missing) > 0 {
			return fmt.Errorf("solr.core_url or solr.%s is required", strings.Join(missing, ", solr."))
		}
	}
	for i, key := range c.Auth.APIKeys {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("auth.api_keys[%d] is empty", i)
		}
	}
	return nil
}

// CoreURL returns the configured core URL, or builds it from server, index and backupset.
func (c *Config) CoreURL() string {
	if c.Solr.CoreURL != "" {
		return c.Solr.CoreURL
	}
	return query.CoreURL(c.Solr.ServerURL, c.Solr.IndexName, c.Solr.BackupsetID)
}

// RequestTimeout returns the per-request transport timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Solr.RequestTimeoutSec) * time.Second
}

// HistoryTTL returns how long recorded outcomes are kept.
func (c *Config) HistoryTTL() time.Duration {
	return time.Duration(c.History.TTLHours) * time.Hour
}

// writeTimeoutSlack covers encoding and network time after a blocking poll returns.
const writeTimeoutSlack = 30 * time.Second

// LongestRequest bounds how long a wait or played request can block. A poll
// sleeps once per attempt; a playback check can sleep twice per attempt when
// the count stalls. Every sleep is followed by one search request.
func (c *Config) LongestRequest() time.Duration {
	req := c.RequestTimeout()
	poll, play := c.Poll.Domain(), c.Playback.Domain()

	pollWorst := time.Duration(poll.MaxAttempts)*poll.Interval + time.Duration(poll.MaxAttempts+1)*req
	playWorst := time.Duration(2*play.MaxAttempts)*play.Interval + time.Duration(2*play.MaxAttempts+1)*req
	return max(pollWorst, playWorst)
}

// WriteTimeout returns the HTTP server write timeout.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.HTTP.WriteTimeoutSec) * time.Second
}

// Domain converts poll settings.
func (p PollConfig) Domain() domain.PollConfig {
	return domain.PollConfig{
		Interval:    time.Duration(p.IntervalSec) * time.Second,
		MaxAttempts: p.MaxAttempts,
	}
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
