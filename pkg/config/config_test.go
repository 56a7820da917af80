package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/natserract/jiraci/pkg/jira"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"JIRA_BUILDS_API_URL", "JIRA_DEPLOYMENTS_API_URL", "JIRA_SITES", "JIRA_ACCESS_TOKEN",
		"JIRA_HTTP_TIMEOUT", "JIRA_MAX_CONCURRENT_SITES", "JIRA_RECORD_SUBMISSIONS",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, jira.DefaultBuildsEndpoint, cfg.BuildsEndpoint)
	assert.Equal(t, jira.DefaultDeploymentsEndpoint, cfg.DeploymentsEndpoint)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 4, cfg.MaxConcurrentSites)
	assert.False(t, cfg.RecordSubmissions)
	assert.Empty(t, cfg.Sites)
}

func TestFromEnv_AllValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("JIRA_BUILDS_API_URL", "http://localhost:9000/%s/builds")
	t.Setenv("JIRA_DEPLOYMENTS_API_URL", "http://localhost:9000/%s/deployments")
	t.Setenv("JIRA_SITES", "https://a.atlassian.net=cloud-a, https://b.atlassian.net=cloud-b")
	t.Setenv("JIRA_ACCESS_TOKEN", "tok")
	t.Setenv("JIRA_HTTP_TIMEOUT", "5s")
	t.Setenv("JIRA_MAX_CONCURRENT_SITES", "2")
	t.Setenv("JIRA_RECORD_SUBMISSIONS", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://localhost:9000/%s/builds", cfg.BuildsEndpoint)
	assert.Equal(t, []Site{
		{URL: "https://a.atlassian.net", CloudID: "cloud-a"},
		{URL: "https://b.atlassian.net", CloudID: "cloud-b"},
	}, cfg.Sites)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 2, cfg.MaxConcurrentSites)
	assert.True(t, cfg.RecordSubmissions)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"JIRA_HTTP_TIMEOUT", "soon"},
		{"JIRA_MAX_CONCURRENT_SITES", "many"},
		{"JIRA_RECORD_SUBMISSIONS", "perhaps"},
		{"JIRA_SITES", "https://a.atlassian.net"},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			BuildsEndpoint:      jira.DefaultBuildsEndpoint,
			DeploymentsEndpoint: jira.DefaultDeploymentsEndpoint,
			Sites:               []Site{{URL: "https://a.atlassian.net", CloudID: "c"}},
			AccessToken:         "tok",
			HTTPTimeout:         time.Second,
			MaxConcurrentSites:  1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"missing token", func(c *Config) { c.AccessToken = "" }, ErrMissingAccessToken},
		{"missing sites", func(c *Config) { c.Sites = nil }, ErrMissingSites},
		{"site without cloud id", func(c *Config) { c.Sites = []Site{{URL: "https://a"}} }, nil},
		{"builds template without slot", func(c *Config) { c.BuildsEndpoint = "https://x/builds" }, nil},
		{"deployments template with two slots", func(c *Config) { c.DeploymentsEndpoint = "https://%s/%s" }, nil},
		{"builds template with stray verb", func(c *Config) { c.BuildsEndpoint = "https://x/%s/builds?n=%d" }, nil},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }, nil},
		{"zero concurrency", func(c *Config) { c.MaxConcurrentSites = 0 }, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			switch {
			case tc.name == "valid":
				assert.NoError(t, err)
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			default:
				assert.Error(t, err)
			}
		})
	}
}

func TestParseSite(t *testing.T) {
	site, err := ParseSite("https://a.atlassian.net/?x=1=cloud-a")
	require.NoError(t, err)
	assert.Equal(t, Site{URL: "https://a.atlassian.net/?x=1", CloudID: "cloud-a"}, site)

	for _, bad := range []string{"", "=cloud", "https://a.atlassian.net=", "no-separator"} {
		_, err := ParseSite(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoad_AppliesOverrides(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("JIRA_SITES", "https://env.atlassian.net=cloud-env")
	t.Setenv("JIRA_ACCESS_TOKEN", "env-token")

	cfg, err := Load(
		WithSites([]string{"https://flag.atlassian.net=cloud-flag"}),
		WithAccessToken("flag-token"),
		WithRecordSubmissions(true),
	)
	require.NoError(t, err)

	assert.Equal(t, []Site{{URL: "https://flag.atlassian.net", CloudID: "cloud-flag"}}, cfg.Sites)
	assert.Equal(t, "flag-token", cfg.AccessToken)
	assert.True(t, cfg.RecordSubmissions)
}

func TestLoad_EmptyOverridesKeepEnvironment(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("JIRA_SITES", "https://env.atlassian.net=cloud-env")
	t.Setenv("JIRA_ACCESS_TOKEN", "env-token")
	t.Setenv("JIRA_RECORD_SUBMISSIONS", "true")

	cfg, err := Load(WithSites(nil), WithAccessToken(""))
	require.NoError(t, err)

	assert.Equal(t, []Site{{URL: "https://env.atlassian.net", CloudID: "cloud-env"}}, cfg.Sites)
	assert.Equal(t, "env-token", cfg.AccessToken)
	assert.True(t, cfg.RecordSubmissions)
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Unsetenv("JIRA_SITES"))
	require.NoError(t, os.Unsetenv("JIRA_ACCESS_TOKEN"))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("JIRA_SITES=https://dot.atlassian.net=cloud-dot\nJIRA_ACCESS_TOKEN=dot-token\n"), 0o600))
	t.Chdir(dir)
	t.Cleanup(func() {
		_ = os.Unsetenv("JIRA_SITES")
		_ = os.Unsetenv("JIRA_ACCESS_TOKEN")
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []Site{{URL: "https://dot.atlassian.net", CloudID: "cloud-dot"}}, cfg.Sites)
	assert.Equal(t, "dot-token", cfg.AccessToken)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("invalid environment", func(t *testing.T) {
		clearEnv(t)
		t.Chdir(t.TempDir())
		t.Setenv("JIRA_HTTP_TIMEOUT", "soon")

		_, err := Load(WithSites([]string{"https://a=c"}), WithAccessToken("tok"))
		assert.ErrorContains(t, err, "failed to load config")
	})

	t.Run("invalid site override", func(t *testing.T) {
		clearEnv(t)
		t.Chdir(t.TempDir())

		_, err := Load(WithSites([]string{"no-separator"}), WithAccessToken("tok"))
		assert.Error(t, err)
	})

	t.Run("missing token", func(t *testing.T) {
		clearEnv(t)
		t.Chdir(t.TempDir())

		_, err := Load(WithSites([]string{"https://a=c"}))
		assert.ErrorIs(t, err, ErrMissingAccessToken)
	})
}
