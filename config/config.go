/* config.go
 * Loads the runtime configuration from environment variables. main.go loads .env into the environment before
 * calling Load
 */

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// AuthMode values
const (
	AuthFirebase = "firebase"
	AuthHeader   = "header"
)

// Config holds every setting used by the web server and the bot
type Config struct {
	Env         string // "local", "dev", "prod"
	ServiceName string

	HTTPAddr string

	MongoURI string
	MongoDB  string

	PandaScoreToken   string
	PandaScoreBaseURL string
	NewsBaseURL       string
	NewsAPIKey        string
	UpstreamRPS       float64
	UpstreamBurst     int
	HTTPClientTimeout time.Duration

	RedisAddr     string // empty disables the match cache
	MatchCacheTTL time.Duration

	KafkaBrokers         string // empty disables prediction events
	TopicPredictionEvent string

	FirebaseCredentialsJSON string
	FirebaseProjectID       string
	AuthMode                string

	DiscordToken string
}

// Load reads the environment and applies defaults
func Load() Config {
	cfg := Config{
		Env:         getEnv("ENV", "local"),
		ServiceName: getEnv("SERVICE_NAME", "e-network"),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "enetwork"),

		PandaScoreToken:   getEnv("PANDASCORE_TOKEN", ""),
		PandaScoreBaseURL: getEnv("PANDASCORE_BASE_URL", "https://api.pandascore.co"),
		NewsBaseURL:       getEnv("NEWS_BASE_URL", ""),
		NewsAPIKey:        getEnv("NEWS_API_KEY", ""),
		UpstreamRPS:       getEnvFloat("UPSTREAM_RPS", 1),
		UpstreamBurst:     getEnvInt("UPSTREAM_BURST", 5),
		HTTPClientTimeout: getEnvDuration("HTTP_CLIENT_TIMEOUT", 10*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		MatchCacheTTL: getEnvDuration("MATCH_CACHE_TTL", 5*time.Minute),

		KafkaBrokers:         getEnv("KAFKA_BROKERS", ""),
		TopicPredictionEvent: getEnv("KAFKA_TOPIC_PREDICTIONS", "prediction.recorded"),

		FirebaseCredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		AuthMode:                strings.ToLower(getEnv("AUTH_MODE", AuthFirebase)),

		DiscordToken: getEnv("DISCORD_TOKEN", ""),
	}
	return cfg
}

// KafkaBrokerList splits the comma separated broker list
func (c Config) KafkaBrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// getEnv returns the value of the environment variable or def
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

// getEnvDuration accepts Go durations ("30s") and bare integers as seconds
func getEnvDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	v = strings.TrimSpace(v)
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
