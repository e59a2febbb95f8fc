package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Feed    FeedConfig    `mapstructure:"feed"`
	Cache   CacheConfig   `mapstructure:"cache"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// StorageConfig holds storage-related configuration
type StorageConfig struct {
	Type string `mapstructure:"type"`
	Path string `mapstructure:"path"`
}

// FeedConfig holds the ranking and filtering settings for the four
// feed shapes. Channel lists are provider id prefixes matched against
// posts.pid.
type FeedConfig struct {
	TagsLimit    int `mapstructure:"tags_limit"`
	TagsMaxLimit int `mapstructure:"tags_max_limit"`

	TrendingAgeHours   int     `mapstructure:"trending_age_hours"`
	TrendingDecay      float64 `mapstructure:"trending_decay"`
	TrendingScoreFloor float64 `mapstructure:"trending_score_floor"`
	TrendingLimit      int     `mapstructure:"trending_limit"`

	TopAgeHours int `mapstructure:"top_age_hours"`
	TopLimit    int `mapstructure:"top_limit"`

	AnnouncementsAgeHours int `mapstructure:"announcements_age_hours"`

	// ExcludedChannels is filtered out of the tags and top shapes.
	ExcludedChannels []string `mapstructure:"excluded_channels"`

	// TrendingExcludedChannels is filtered out of the trending shape.
	TrendingExcludedChannels []string `mapstructure:"trending_excluded_channels"`

	// AnnouncementChannels is the inclusion list for the announcements
	// shape: only posts from these channels appear. beta-announcements
	// is deliberately not active; add its prefix here to enable it.
	AnnouncementChannels []string `mapstructure:"announcement_channels"`
}

// CacheConfig holds response cache settings
type CacheConfig struct {
	// FlushInterval drops all cached responses on a schedule. Zero
	// disables flushing; entries then live for the process lifetime.
	FlushInterval string `mapstructure:"flush_interval"`
}

// Discord channel id prefixes for the special-purpose channels.
const (
	channelNetworkStatus     = "discord:844618231553720330:"
	channelAnnouncements     = "discord:370285586894028811:"
	channelBetaAnnouncements = "discord:572793415138410517:"
	channelRepAnnouncements  = "discord:644987172935565335:"
	channelGeneral           = "discord:370266023905198085:"
)

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		log.Println("No config file found, using defaults and environment variables")
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.host", "0.0.0.0")

	viper.SetDefault("storage.type", "sqlite")
	viper.SetDefault("storage.path", "./data/community.db")

	viper.SetDefault("feed.tags_limit", 50)
	viper.SetDefault("feed.tags_max_limit", 100)

	viper.SetDefault("feed.trending_age_hours", 72)
	viper.SetDefault("feed.trending_decay", 90000.0)
	viper.SetDefault("feed.trending_score_floor", 4.0)
	viper.SetDefault("feed.trending_limit", 100)

	viper.SetDefault("feed.top_age_hours", 168)
	viper.SetDefault("feed.top_limit", 5)

	viper.SetDefault("feed.announcements_age_hours", 336)

	viper.SetDefault("feed.excluded_channels", []string{
		channelNetworkStatus,
		channelAnnouncements,
		channelBetaAnnouncements,
		channelRepAnnouncements,
	})
	viper.SetDefault("feed.trending_excluded_channels", []string{
		channelGeneral,
	})
	viper.SetDefault("feed.announcement_channels", []string{
		channelNetworkStatus,
		channelAnnouncements,
		channelRepAnnouncements,
	})

	viper.SetDefault("cache.flush_interval", "0")
}
