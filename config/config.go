package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	scrapeerrors "sjsage522/eventscraper/pkg/errors"

	"github.com/spf13/viper"
)

// Config keys. Each one can be set through the environment as SCRAPER_<KEY in upper case>.
const (
	KeyEnvironment          = "environment"
	KeyLogLevel             = "log_level"
	KeyPort                 = "port"
	KeyBrowserPath          = "browser_path"
	KeyBrowserAutoDownload  = "browser_auto_download"
	KeyBrowserHeadless      = "browser_headless"
	KeyUserAgent            = "user_agent"
	KeyWindowWidth          = "window_width"
	KeyWindowHeight         = "window_height"
	KeyListingTimeout       = "listing_timeout_seconds"
	KeyStabilityPause       = "stability_pause_seconds"
	KeyScrollPause          = "scroll_pause_seconds"
	KeyLoadMoreExtraPause   = "load_more_extra_pause_seconds"
	KeyMaxScrollAttempts    = "max_scroll_attempts"
	KeyDevfolioURL          = "devfolio_url"
	KeyDevpostURL           = "devpost_url"
	KeyUnstopURL            = "unstop_url"
	KeyRedisAddr            = "redis_addr"
	KeyRedisDB              = "redis_db"
	KeyRedisStream          = "redis_stream"
	KeyRedisStreamCount     = "redis_stream_count"
	KeyRedisStreamMaxLength = "redis_stream_max_length"
	KeyPublishTimeout       = "publish_timeout_seconds"
	KeyOutputFile           = "output_file"
)

// DefaultUserAgent is a desktop Chrome user agent sent by every browser session
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"

// Config represents the application configuration
type Config struct {
	// Environment
	Environment string
	LogLevel    string

	// HTTP server configuration
	Port string

	// Browser configuration
	BrowserPath         string
	BrowserAutoDownload bool
	BrowserHeadless     bool
	UserAgent           string
	WindowWidth         int
	WindowHeight        int

	// Crawler timing
	ListingTimeout     time.Duration
	StabilityPause     time.Duration
	ScrollPause        time.Duration
	LoadMoreExtraPause time.Duration
	MaxScrollAttempts  int

	// URLs for different crawlers
	DevfolioURL string
	DevpostURL  string
	UnstopURL   string

	// Redis event feed configuration, disabled when RedisAddr is empty
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int
	PublishTimeout       time.Duration

	// Direct-run output
	OutputFile string
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyEnvironment, "development")
	v.SetDefault(KeyLogLevel, "")
	v.SetDefault(KeyPort, "5000")
	v.SetDefault(KeyBrowserPath, "")
	v.SetDefault(KeyBrowserAutoDownload, true)
	v.SetDefault(KeyBrowserHeadless, true)
	v.SetDefault(KeyUserAgent, DefaultUserAgent)
	v.SetDefault(KeyWindowWidth, 1920)
	v.SetDefault(KeyWindowHeight, 1080)
	v.SetDefault(KeyListingTimeout, 30)
	v.SetDefault(KeyStabilityPause, 3.0)
	v.SetDefault(KeyScrollPause, 3.0)
	v.SetDefault(KeyLoadMoreExtraPause, 1.0)
	v.SetDefault(KeyMaxScrollAttempts, 8)
	v.SetDefault(KeyDevfolioURL, "https://devfolio.co/")
	v.SetDefault(KeyDevpostURL, "https://devpost.com/")
	v.SetDefault(KeyUnstopURL, "https://unstop.com/")
	v.SetDefault(KeyRedisAddr, "")
	v.SetDefault(KeyRedisDB, 0)
	v.SetDefault(KeyRedisStream, "hackathon_events")
	v.SetDefault(KeyRedisStreamCount, 1)
	v.SetDefault(KeyRedisStreamMaxLength, 1000)
	v.SetDefault(KeyPublishTimeout, 10)
	v.SetDefault(KeyOutputFile, "aggregated_events_direct_run.json")
}

// Setup prepares the global viper instance: defaults plus SCRAPER_* environment variables
func Setup() {
	SetDefaults(viper.GetViper())
	viper.SetEnvPrefix("SCRAPER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

// LoadConfig loads the configuration from the global viper instance
func LoadConfig() *Config {
	Setup()
	return FromViper(viper.GetViper())
}

// FromViper builds a Config from v
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Environment:          v.GetString(KeyEnvironment),
		LogLevel:             v.GetString(KeyLogLevel),
		Port:                 v.GetString(KeyPort),
		BrowserPath:          v.GetString(KeyBrowserPath),
		BrowserAutoDownload:  v.GetBool(KeyBrowserAutoDownload),
		BrowserHeadless:      v.GetBool(KeyBrowserHeadless),
		UserAgent:            v.GetString(KeyUserAgent),
		WindowWidth:          v.GetInt(KeyWindowWidth),
		WindowHeight:         v.GetInt(KeyWindowHeight),
		ListingTimeout:       seconds(v.GetFloat64(KeyListingTimeout)),
		StabilityPause:       seconds(v.GetFloat64(KeyStabilityPause)),
		ScrollPause:          seconds(v.GetFloat64(KeyScrollPause)),
		LoadMoreExtraPause:   seconds(v.GetFloat64(KeyLoadMoreExtraPause)),
		MaxScrollAttempts:    v.GetInt(KeyMaxScrollAttempts),
		DevfolioURL:          v.GetString(KeyDevfolioURL),
		DevpostURL:           v.GetString(KeyDevpostURL),
		UnstopURL:            v.GetString(KeyUnstopURL),
		RedisAddr:            v.GetString(KeyRedisAddr),
		RedisDB:              v.GetInt(KeyRedisDB),
		RedisStream:          v.GetString(KeyRedisStream),
		RedisStreamCount:     v.GetInt(KeyRedisStreamCount),
		RedisStreamMaxLength: v.GetInt(KeyRedisStreamMaxLength),
		PublishTimeout:       seconds(v.GetFloat64(KeyPublishTimeout)),
		OutputFile:           v.GetString(KeyOutputFile),
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// IsProduction reports whether the service runs in the production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// PublishingEnabled reports whether finished scrapes are fanned out to Redis
func (c *Config) PublishingEnabled() bool {
	return c.RedisAddr != ""
}

// Validate checks the configuration for values the scraper cannot run with
func (c *Config) Validate() error {
	if c.Port == "" {
		return scrapeerrors.NewValidation("config", "port must not be empty")
	}
	if c.ListingTimeout <= 0 {
		return scrapeerrors.NewValidation("config", KeyListingTimeout+" must be positive")
	}
	if c.ScrollPause < 0 || c.StabilityPause < 0 || c.LoadMoreExtraPause < 0 {
		return scrapeerrors.NewValidation("config", "pause durations must not be negative")
	}
	if c.MaxScrollAttempts <= 0 {
		return scrapeerrors.NewValidation("config", KeyMaxScrollAttempts+" must be positive")
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return scrapeerrors.NewValidation("config", fmt.Sprintf("window size must be positive, got %dx%d", c.WindowWidth, c.WindowHeight))
	}

	for key, raw := range map[string]string{
		KeyDevfolioURL: c.DevfolioURL,
		KeyDevpostURL:  c.DevpostURL,
		KeyUnstopURL:   c.UnstopURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return scrapeerrors.NewValidation("config", fmt.Sprintf("%s must be an absolute URL, got %q", key, raw))
		}
	}

	if c.PublishingEnabled() && c.RedisStreamCount < 1 {
		return scrapeerrors.NewValidation("config", KeyRedisStreamCount+" must be at least 1")
	}
	if c.PublishingEnabled() && c.PublishTimeout <= 0 {
		return scrapeerrors.NewValidation("config", KeyPublishTimeout+" must be positive")
	}

	return nil
}
