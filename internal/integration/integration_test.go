package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"brainquiz/internal/app"
	"brainquiz/internal/domain"
	"brainquiz/internal/infra/postgres"
	pgmigrations "brainquiz/internal/infra/postgres/migrations"
	infraredis "brainquiz/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestQuizAgainstPostgresAndRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := migrateDB(t, ctx, pgURL)
	defer db.Close()

	pool, err := pgxpool.Connect(ctx, pgURL)
	require.NoError(t, err)
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	require.NoError(t, err)
	defer redisClient.Close()

	store := postgres.NewQuestionStore(pool)
	questions := infraredis.NewQuestionCache(redisClient, store, 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	board := app.NewScoreBoard(postgres.NewScoreStore(db), 10)
	require.NoError(t, board.Init(ctx))
	require.NoError(t, board.Init(ctx), "init must be idempotent")

	service := app.NewQuestionService(questions)
	inserted, err := service.Insert(ctx, pickB())
	require.NoError(t, err)
	assert.Equal(t, 1, inserted.Number)

	got, err := questions.Get(ctx, inserted.ID)
	require.NoError(t, err)
	assert.Equal(t, inserted, got)

	_, err = service.Insert(ctx, pickB())
	assert.ErrorIs(t, err, domain.ErrDuplicateQuestion)

	quiz := app.NewQuizService(sessions, questions, board)
	require.NoError(t, sessions.Save(ctx, domain.Session{ID: "s1"}))
	_, err = quiz.Start(ctx, "s1", 1)
	require.NoError(t, err)
	res, err := quiz.Answer(ctx, "s1", "B")
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.True(t, res.Finished)

	sum, err := quiz.SubmitName(ctx, "s1", "alice")
	require.NoError(t, err)
	require.Len(t, sum.HighScores, 1)
	assert.Equal(t, "alice", sum.HighScores[0].Name)
	assert.Equal(t, 100.0, sum.HighScores[0].Score)
}

func TestModerationAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	pool, err := pgxpool.Connect(ctx, pgURL)
	require.NoError(t, err)
	defer pool.Close()

	store := postgres.NewQuestionStore(pool)

	// no questions table yet
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	db := migrateDB(t, ctx, pgURL)
	defer db.Close()

	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	service := app.NewQuestionService(store)
	q, err := service.Insert(ctx, pickB())
	require.NoError(t, err)

	target := q.ID
	del, err := service.Propose(ctx, domain.ProposedChange{Kind: domain.ChangeDelete, TargetID: &target, SubmittedBy: "alice"})
	require.NoError(t, err)
	add, err := service.Propose(ctx, domain.ProposedChange{Kind: domain.ChangeAdd, Question: domain.Question{
		Text: "Pick C", Options: [4]string{"one", "two", "three", "four"}, Correct: "C",
	}})
	require.NoError(t, err)

	pending, err := service.ListProposed(ctx)
	require.NoError(t, err)
	assert.Len(t, pending.Delete, 1)
	assert.Len(t, pending.Add, 1)

	moderation := app.NewModerationService(store, app.NewScoreBoard(postgres.NewScoreStore(db), 10))
	outcomes := moderation.Review(ctx, []app.Decision{
		{ProposalID: del.ID, Action: app.ActionAccept},
		{ProposalID: add.ID, Action: app.ActionAccept},
		{ProposalID: del.ID, Action: app.ActionReject},
	})
	require.Len(t, outcomes, 3)
	assert.NoError(t, outcomes[0].Err)
	assert.NoError(t, outcomes[1].Err)
	assert.ErrorIs(t, outcomes[2].Err, domain.ErrNotFound)

	_, err = store.Get(ctx, q.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Pick C", list[0].Text)

	users := postgres.NewUserStore(pool)
	creds := app.NewCredentialService(users, app.BcryptHasher{Cost: 4}, nil)
	require.NoError(t, creds.Register(ctx, "alice", "secret", "secret"))
	assert.ErrorIs(t, creds.Register(ctx, "alice", "x", "x"), domain.ErrDuplicateUser)
	name, err := creds.Verify(ctx, "alice", "secret")
	assert.NoError(t, err)
	assert.Equal(t, "alice", name)
	_, err = creds.Verify(ctx, "alice", "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	_, err = creds.Verify(ctx, "bob", "secret")
	assert.ErrorIs(t, err, domain.ErrUnknownUser)
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func pickB() domain.Question {
	return domain.Question{
		Text:    "What is 2 + 2?",
		Options: [4]string{"3", "4", "5", "6"},
		Correct: "B",
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
