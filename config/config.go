package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server       Server
	Database     Database
	Assessment   Assessment
	Reaper       Reaper
	GeminiApiKey string
}

type Server struct {
	Port string
}
type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Assessment holds the endpoints of the external scoring services.
type Assessment struct {
	WritingApiUrl  string
	SpeakingApiUrl string
	Timeout        time.Duration
}

// Reaper controls the expired-session sweep loop.
type Reaper struct {
	Interval    time.Duration
	GracePeriod time.Duration
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("AI_TIMEOUT_SECONDS", 120)
	viper.SetDefault("REAPER_INTERVAL_MINUTES", 2)
	viper.SetDefault("REAPER_GRACE_MINUTES", 5)

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Assessment.WritingApiUrl = viper.GetString("WRITING_API_URL")
	config.Assessment.SpeakingApiUrl = viper.GetString("SPEAKING_API_URL")
	config.Assessment.Timeout = time.Duration(viper.GetInt("AI_TIMEOUT_SECONDS")) * time.Second

	config.Reaper.Interval = time.Duration(viper.GetInt("REAPER_INTERVAL_MINUTES")) * time.Minute
	config.Reaper.GracePeriod = time.Duration(viper.GetInt("REAPER_GRACE_MINUTES")) * time.Minute

	config.GeminiApiKey = viper.GetString("GEMINI_API_KEY")

	log.Info().Str("port", config.Server.Port).Str("db_host", config.Database.Host).Msg("Config loaded")
	return &config, nil
}
