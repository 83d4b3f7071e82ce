package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{"SERVER_PORT", "DB_DRIVER", "DB_HOST", "REDIS_ADDR", "ELASTICSEARCH_URL"} {
			t.Setenv(key, "")
		}
		cfg := FromEnv()
		assert.Equal(t, "8080", cfg.ServerPort)
		assert.Equal(t, "postgres", cfg.DB.Driver)
		assert.Equal(t, "localhost", cfg.DB.Host)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
		assert.Equal(t, "http://localhost:9200", cfg.ElasticURL)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("DB_DRIVER", "sqlite3")
		t.Setenv("DB_PATH", "/tmp/dev.db")
		t.Setenv("DB_PASSWORD", "hunter2")

		cfg := FromEnv()
		assert.Equal(t, "9090", cfg.ServerPort)
		assert.Equal(t, "sqlite3", cfg.DB.Driver)
		assert.Equal(t, "/tmp/dev.db", cfg.DB.Path)
		assert.Equal(t, "hunter2", cfg.DB.Password)
	})
}
