package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/advigo/advigo/providers/memory"
	"github.com/advigo/advigo/providers/memory/inmemory"
	"github.com/advigo/advigo/providers/memory/mysqlmemory"
	"github.com/advigo/advigo/providers/memory/pgmemory"
	"github.com/advigo/advigo/providers/memory/redismemory"
)

// openStore builds the conversation store named by the memoryBackend
// config key. The returned cleanup closes whatever connection the backend
// opened; for the in-memory backend it is a no-op.
func openStore(ctx context.Context, config *Config) (memory.Store, func(), error) {
	backend := config.GetStringOrDefault("memoryBackend", "memory")
	switch backend {
	case "memory":
		return inmemory.New(), func() {}, nil
	case "redis":
		return openRedisStore(ctx, config)
	case "postgres":
		return openPostgresStore(ctx)
	case "mysql":
		return openMySQLStore(ctx)
	default:
		return nil, nil, fmt.Errorf("unknown memory backend %q (expected memory, redis, postgres or mysql)", backend)
	}
}

func openRedisStore(ctx context.Context, config *Config) (memory.Store, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.GetStringOrDefault("redisAddr", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       config.GetIntOrDefault("redisDB", 0),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	cleanup := func() { _ = client.Close() }
	return redismemory.New(client), cleanup, nil
}

func openPostgresStore(ctx context.Context) (memory.Store, func(), error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, nil, fmt.Errorf("the postgres backend needs DATABASE_URL to be set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	store := pgmemory.New(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool.Close, nil
}

func openMySQLStore(ctx context.Context) (memory.Store, func(), error) {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		return nil, nil, fmt.Errorf("the mysql backend needs MYSQL_DSN to be set")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mysql: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping mysql: %w", err)
	}
	store := mysqlmemory.New(db)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	cleanup := func() { _ = db.Close() }
	return store, cleanup, nil
}
