package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"brainquiz/internal/app"
	"brainquiz/internal/config"
	"brainquiz/internal/infra/memory"
	"brainquiz/internal/infra/postgres"
	infraredis "brainquiz/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
)

// backends holds the repositories chosen from config. Postgres replaces the
// in-memory stores when postgres.url is set; Redis takes over sessions and the
// question cache when redis.addr is set.
type backends struct {
	questions app.QuestionRepository
	users     app.UserRepository
	scores    app.ScoreRepository
	sessions  app.SessionRepository

	// memSessions is set when sessions live in process memory and need sweeping.
	memSessions *memory.SessionStore

	closers []func()
}

func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}

	var bunDB *bun.DB
	if cfg.Postgres.URL != "" {
		bunDB = openBunDB(cfg.Postgres.URL)
		b.closers = append(b.closers, func() { _ = bunDB.Close() })
		if err := runMigrations(ctx, bunDB); err != nil {
			b.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, pool.Close)

		b.questions = postgres.NewQuestionStore(pool)
		b.users = postgres.NewUserStore(pool)
		b.scores = postgres.NewScoreStore(bunDB)
		slog.Info("using postgres storage")
	} else {
		b.questions = memory.NewQuestionStore()
		b.users = memory.NewUserStore()
		b.scores = memory.NewScoreStore()
		slog.Warn("postgres not configured, using in-memory storage")
	}

	sessionTTL := config.Duration(cfg.Server.SessionTTL, 24*time.Hour)
	cacheTTL := config.Duration(cfg.Quiz.QuestionCacheTTL, 10*time.Minute)

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			b.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		b.sessions = infraredis.NewSessionStore(client, config.Duration(cfg.Redis.TTL, sessionTTL))
		b.questions = infraredis.NewQuestionCache(client, b.questions, cacheTTL)
		slog.Info("using redis for sessions and question cache", "addr", cfg.Redis.Addr)
	} else {
		b.memSessions = memory.NewSessionStore(sessionTTL)
		b.sessions = b.memSessions
		b.questions = memory.NewQuestionCache(b.questions, cacheTTL)
	}
	return b, nil
}

// Close releases connections in reverse order of opening.
func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}
