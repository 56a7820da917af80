package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	httpclient "github.com/natserract/jiraci/pkg/http"
	"github.com/natserract/jiraci/pkg/jira"
)

var (
	ErrMissingAccessToken = errors.New("JIRA_ACCESS_TOKEN is required")
	ErrMissingSites       = errors.New("JIRA_SITES is required")
)

const (
	defaultHTTPTimeout        = 30 * time.Second
	defaultMaxConcurrentSites = 4
)

// Site is a Jira Cloud tenant that receives updates.
type Site struct {
	URL     string
	CloudID string
}

type Config struct {
	BuildsEndpoint      string
	DeploymentsEndpoint string
	Sites               []Site
	AccessToken         string
	HTTPTimeout         time.Duration
	MaxConcurrentSites  int
	RecordSubmissions   bool
}

// Option overrides a value read from the environment.
type Option func(*Config) error

// WithSites replaces the configured sites with the given siteURL=cloudID pairs.
// An empty list keeps the environment's sites.
func WithSites(raw []string) Option {
	return func(c *Config) error {
		if len(raw) == 0 {
			return nil
		}
		sites := make([]Site, 0, len(raw))
		for _, entry := range raw {
			site, err := ParseSite(entry)
			if err != nil {
				return err
			}
			sites = append(sites, site)
		}
		c.Sites = sites
		return nil
	}
}

// WithAccessToken overrides the bearer token when token is non-empty.
func WithAccessToken(token string) Option {
	return func(c *Config) error {
		if token != "" {
			c.AccessToken = token
		}
		return nil
	}
}

// WithRecordSubmissions turns submission history on or off.
func WithRecordSubmissions(enabled bool) Option {
	return func(c *Config) error {
		c.RecordSubmissions = enabled
		return nil
	}
}

// Load reads .env and the environment, applies opts in order and validates the result.
func Load(opts ...Option) (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv reads the configuration from the environment without validating it.
func FromEnv() (*Config, error) {
	cfg := &Config{
		BuildsEndpoint:      getEnv("JIRA_BUILDS_API_URL", jira.DefaultBuildsEndpoint),
		DeploymentsEndpoint: getEnv("JIRA_DEPLOYMENTS_API_URL", jira.DefaultDeploymentsEndpoint),
		AccessToken:         os.Getenv("JIRA_ACCESS_TOKEN"),
		HTTPTimeout:         defaultHTTPTimeout,
		MaxConcurrentSites:  defaultMaxConcurrentSites,
	}

	sites, err := ParseSites(os.Getenv("JIRA_SITES"))
	if err != nil {
		return nil, fmt.Errorf("JIRA_SITES: %w", err)
	}
	cfg.Sites = sites

	if v := os.Getenv("JIRA_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("JIRA_HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}

	if v := os.Getenv("JIRA_MAX_CONCURRENT_SITES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("JIRA_MAX_CONCURRENT_SITES: %w", err)
		}
		cfg.MaxConcurrentSites = n
	}

	if v := os.Getenv("JIRA_RECORD_SUBMISSIONS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("JIRA_RECORD_SUBMISSIONS: %w", err)
		}
		cfg.RecordSubmissions = b
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := httpclient.ValidateTemplate(c.BuildsEndpoint); err != nil {
		return fmt.Errorf("JIRA_BUILDS_API_URL: %w", err)
	}
	if err := httpclient.ValidateTemplate(c.DeploymentsEndpoint); err != nil {
		return fmt.Errorf("JIRA_DEPLOYMENTS_API_URL: %w", err)
	}
	if c.AccessToken == "" {
		return ErrMissingAccessToken
	}
	if len(c.Sites) == 0 {
		return ErrMissingSites
	}
	for i, s := range c.Sites {
		if s.URL == "" || s.CloudID == "" {
			return fmt.Errorf("site %d: both site URL and cloud id are required", i)
		}
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("JIRA_HTTP_TIMEOUT must be > 0")
	}
	if c.MaxConcurrentSites <= 0 {
		return fmt.Errorf("JIRA_MAX_CONCURRENT_SITES must be > 0")
	}
	return nil
}

// ParseSites parses a comma-separated list of siteURL=cloudID pairs.
func ParseSites(raw string) ([]Site, error) {
	var sites []Site
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		site, err := ParseSite(entry)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, nil
}

// ParseSite parses a single siteURL=cloudID pair. The split happens on the last
// '=' since site URLs may carry query strings.
func ParseSite(entry string) (Site, error) {
	idx := strings.LastIndex(entry, "=")
	if idx <= 0 || idx == len(entry)-1 {
		return Site{}, fmt.Errorf("invalid site %q, expected siteURL=cloudID", entry)
	}
	return Site{
		URL:     strings.TrimSpace(entry[:idx]),
		CloudID: strings.TrimSpace(entry[idx+1:]),
	}, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
