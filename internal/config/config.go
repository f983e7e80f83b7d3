package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Thread   ThreadConfig
	Analysis AnalysisConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	FeedLogFilePath    string
	CorsAllowedOrigins string
	DecisionSavedTopic string
}

// ThreadConfig points at the remote thread service that institutional
// memory is persisted to.
type ThreadConfig struct {
	BaseURL string
	Timeout time.Duration
}

// AnalysisConfig tunes the simulated document-analysis pipeline.
// Tests shrink these to keep runs fast.
type AnalysisConfig struct {
	StageDelay        time.Duration
	FinalizeDelay     time.Duration
	HighlightDuration time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3100"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			FeedLogFilePath:    getEnv("FEED_LOG_FILE_PATH", "feed.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			DecisionSavedTopic: getEnv("DECISION_SAVED_TOPIC_NAME", "DECISION_SAVED"),
		},
		Thread: ThreadConfig{
			BaseURL: getEnv("THREAD_BACKEND_URL", "http://localhost:3000"),
			Timeout: getEnvAsDuration("THREAD_BACKEND_TIMEOUT_MS", 30000),
		},
		Analysis: AnalysisConfig{
			StageDelay:        getEnvAsDuration("ANALYSIS_STAGE_DELAY_MS", 900),
			FinalizeDelay:     getEnvAsDuration("ANALYSIS_FINALIZE_DELAY_MS", 350),
			HighlightDuration: getEnvAsDuration("LEDGER_HIGHLIGHT_MS", 3200),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallbackMs int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallbackMs)) * time.Millisecond
}
