package config

import (
	"testing"
	"time"

	scrapeerrors "sjsage522/eventscraper/pkg/errors"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("SCRAPER")
	v.AutomaticEnv()
	return v
}

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := FromViper(newTestViper())
	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, "5000", config.Port)
	assert.Equal(t, 30*time.Second, config.ListingTimeout)
	assert.Equal(t, 3*time.Second, config.ScrollPause)
	assert.Equal(t, 3*time.Second, config.StabilityPause)
	assert.Equal(t, time.Second, config.LoadMoreExtraPause)
	assert.Equal(t, 8, config.MaxScrollAttempts)
	assert.Equal(t, "https://devfolio.co/", config.DevfolioURL)
	assert.Equal(t, "https://devpost.com/", config.DevpostURL)
	assert.Equal(t, "https://unstop.com/", config.UnstopURL)
	assert.True(t, config.BrowserHeadless)
	assert.True(t, config.BrowserAutoDownload)
	assert.Equal(t, DefaultUserAgent, config.UserAgent)
	assert.False(t, config.PublishingEnabled())
	assert.Equal(t, 10*time.Second, config.PublishTimeout)
	assert.NoError(t, config.Validate())

	// Test with environment variables
	t.Setenv("SCRAPER_PORT", "8080")
	t.Setenv("SCRAPER_LISTING_TIMEOUT_SECONDS", "10")
	t.Setenv("SCRAPER_SCROLL_PAUSE_SECONDS", "0.5")
	t.Setenv("SCRAPER_BROWSER_PATH", "/usr/bin/chromium")
	t.Setenv("SCRAPER_REDIS_ADDR", "redis.example.com:6379")
	t.Setenv("SCRAPER_ENVIRONMENT", "production")

	config = FromViper(newTestViper())
	assert.Equal(t, "8080", config.Port)
	assert.Equal(t, 10*time.Second, config.ListingTimeout)
	assert.Equal(t, 500*time.Millisecond, config.ScrollPause)
	assert.Equal(t, "/usr/bin/chromium", config.BrowserPath)
	assert.True(t, config.PublishingEnabled())
	assert.True(t, config.IsProduction())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return FromViper(newTestViper())
	}

	cfg := valid()
	cfg.Port = ""
	err := cfg.Validate()
	assert.Error(t, err)
	assert.True(t, scrapeerrors.Is(err, scrapeerrors.ErrorTypeValidation))

	cfg = valid()
	cfg.ListingTimeout = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.MaxScrollAttempts = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.DevpostURL = "/hackathons"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.RedisAddr = "localhost:6379"
	cfg.RedisStreamCount = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.RedisAddr = "localhost:6379"
	cfg.PublishTimeout = 0
	assert.Error(t, cfg.Validate())
}
