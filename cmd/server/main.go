package main

import (
	"context"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"blog/internal/cache"
	"blog/internal/config"
	"blog/internal/db"
	"blog/internal/repository"
	"blog/internal/search"
	"blog/internal/server"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.FromEnv()
	ctx := context.Background()

	database, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	defer redisClient.Close()

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticURL},
	})
	if err != nil {
		logger.Fatal("failed to initialize elasticsearch", zap.Error(err))
	}

	searcher := search.New(esClient)
	if err := searcher.EnsureIndex(ctx); err != nil {
		// Search degrades gracefully; the CRUD surface works without it.
		logger.Warn("failed to ensure search index", zap.Error(err))
	}

	srv, err := server.New(server.Options{
		Posts:       repository.NewPostRepository(database),
		Comments:    repository.NewCommentRepository(database),
		Cache:       cache.New(redisClient),
		Index:       searcher,
		DB:          database,
		TemplateDir: "web/templates",
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("failed to build server", zap.Error(err))
	}

	logger.Info("server starting", zap.String("port", cfg.ServerPort))
	if err := http.ListenAndServe(":"+cfg.ServerPort, srv.Handler()); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
