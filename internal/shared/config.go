package shared

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"estate_hub/internal/similarity"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration

	ArtifactDir     string
	ArtifactBaseURL string // takes precedence over ArtifactDir when set
	ArtifactRPS     int
	ModelBaseURL    string // empty disables price estimates
	ListingsSource  string // csv | mysql
	Weights         similarity.Weights

	FacilitiesFile string
	PriceFile      string
	LocationFile   string
	DistancesFile  string
	ListingsFile   string

	RateLimitRPM int
	CORSOrigins  []string
	Workers      int
}

// Load reads the environment, after merging an optional .env file from the
// working directory. Variables already set win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg(".env could not be read")
	}

	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/estates?parseTime=true&charset=utf8mb4&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", ""),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,

		ArtifactDir:     env("ARTIFACT_DIR", "./datasets"),
		ArtifactBaseURL: env("ARTIFACT_BASE_URL", ""),
		ArtifactRPS:     atoi("ARTIFACT_RPS", 5),
		ModelBaseURL:    env("MODEL_BASE_URL", ""),
		ListingsSource:  strings.ToLower(env("LISTINGS_SOURCE", "csv")),
		Weights:         similarity.DefaultWeights(),

		FacilitiesFile: env("SIM_FACILITIES_FILE", "cosine_sim1.csv"),
		PriceFile:      env("SIM_PRICE_FILE", "cosine_sim2.csv"),
		LocationFile:   env("SIM_LOCATION_FILE", "cosine_sim3.csv"),
		DistancesFile:  env("DISTANCES_FILE", "location_distance.csv"),
		ListingsFile:   env("LISTINGS_FILE", "appartments.csv"),

		RateLimitRPM: atoi("RATE_LIMIT_RPM", 600),
		CORSOrigins:  list("CORS_ORIGINS"),
		Workers:      atoi("INGEST_WORKERS", 8),
	}
	if v := os.Getenv("SIM_WEIGHTS"); v != "" {
		w, err := similarity.ParseWeights(v)
		if err != nil {
			log.Warn().Err(err).Str("value", v).Msg("SIM_WEIGHTS ignored, using defaults")
		} else {
			c.Weights = w
		}
	}
	if c.ListingsSource != "csv" && c.ListingsSource != "mysql" {
		log.Warn().Str("value", c.ListingsSource).Msg("unknown LISTINGS_SOURCE, using csv")
		c.ListingsSource = "csv"
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
	}
	return def
}

func list(k string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(k), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
