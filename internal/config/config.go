package config

import "os"

// Config holds everything the server needs from the environment.
// Connection parameters are never embedded in code; every value has a
// localhost fallback so a bare `go run` works against local services.
type Config struct {
	ServerPort string
	DB         DB
	RedisAddr  string
	ElasticURL string
}

// DB describes the SQL store. Driver is either "postgres" (production)
// or "sqlite3" (local development and tests). Path is only used by
// sqlite3; the host/port/user fields only by postgres.
type DB struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	Path     string
}

// FromEnv builds a Config from environment variables, applying
// defaults for anything unset.
func FromEnv() Config {
	return Config{
		ServerPort: getenv("SERVER_PORT", "8080"),
		DB: DB{
			Driver:   getenv("DB_DRIVER", "postgres"),
			Host:     getenv("DB_HOST", "localhost"),
			Port:     getenv("DB_PORT", "5432"),
			User:     getenv("DB_USER", "bloguser"),
			Password: getenv("DB_PASSWORD", "blogpass"),
			Name:     getenv("DB_NAME", "blogdb"),
			Path:     getenv("DB_PATH", "blog.db"),
		},
		RedisAddr:  getenv("REDIS_ADDR", "localhost:6379"),
		ElasticURL: getenv("ELASTICSEARCH_URL", "http://localhost:9200"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
