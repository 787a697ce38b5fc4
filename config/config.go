package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contient toutes les configurations de l'application
type Config struct {
	Port                    string
	Host                    string
	MongoURI                string
	MongoDB                 string
	JWTSecret               string
	Environment             string
	CORSOrigins             []string
	EventTimezone           *time.Location
	VAPIDPublicKey          string
	VAPIDPrivateKey         string
	VAPIDSubject            string
	FirebaseCredentialsFile string
	RedisURL                string
	EventsCacheTTL          time.Duration
	SlackWebhookURL         string
	StatusSweepSpec         string
	RateLimitRPS            float64
	RateLimitBurst          int
}

// Load charge la configuration depuis les variables d'environnement
func Load() (*Config, error) {
	// Charger le fichier .env s'il existe
	_ = godotenv.Load()

	config := &Config{
		Port:                    getEnv("PORT", "8090"),
		Host:                    getEnv("HOST", "0.0.0.0"),
		MongoURI:                getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:                 getEnv("MONGO_DB", "eventhub_db"),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		Environment:             getEnv("ENVIRONMENT", "development"),
		CORSOrigins:             splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		VAPIDPublicKey:          getEnv("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey:         getEnv("VAPID_PRIVATE_KEY", ""),
		VAPIDSubject:            getEnv("VAPID_SUBJECT", "mailto:contact@example.com"),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		RedisURL:                getEnv("REDIS_URL", ""),
		SlackWebhookURL:         getEnv("SLACK_WEBHOOK_URL", ""),
		StatusSweepSpec:         getEnv("STATUS_SWEEP_SPEC", "@every 1m"),
	}

	// Valider les configurations critiques
	if config.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET est requis")
	}

	var err error
	tz := getEnv("EVENT_TIMEZONE", "Europe/Paris")
	if config.EventTimezone, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("EVENT_TIMEZONE invalide %q: %w", tz, err)
	}

	ttl, err := getEnvInt("EVENTS_CACHE_TTL", 30)
	if err != nil {
		return nil, err
	}
	config.EventsCacheTTL = time.Duration(ttl) * time.Second

	if config.RateLimitRPS, err = getEnvFloat("RATE_LIMIT_RPS", 5); err != nil {
		return nil, err
	}
	if config.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", 10); err != nil {
		return nil, err
	}

	return config, nil
}

// IsProduction indique si l'application tourne en production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv récupère une variable d'environnement avec une valeur par défaut
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s doit être un entier positif", key)
	}
	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s doit être un nombre strictement positif", key)
	}
	return v, nil
}

// splitList découpe une liste séparée par des virgules en ignorant les espaces
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
