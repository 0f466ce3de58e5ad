package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"quiz-rooms/internal/app"
	"quiz-rooms/internal/domain"
	"quiz-rooms/internal/infra/memory"
	"quiz-rooms/internal/infra/postgres"
	pgmigrations "quiz-rooms/internal/infra/postgres/migrations"
	infraredis "quiz-rooms/internal/infra/redis"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun/migrate"
)

func TestRoomLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := postgres.OpenBun(pgURL)
	defer db.Close()
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := postgres.ImportDeck(ctx, db, "ortho", sampleDeck()); err != nil {
		t.Fatalf("import deck: %v", err)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	loader := infraredis.NewDeckCache(redisClient, postgres.NewDeckLoader(pool), 5*time.Minute)
	bank, err := app.LoadQuestionBank(ctx, loader, "ortho")
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if bank.Len() != 2 {
		t.Fatalf("expected 2 questions, got %d", bank.Len())
	}
	if _, err := postgres.NewDeckLoader(pool).LoadDeck(ctx, "missing"); !errors.Is(err, domain.ErrDeckNotFound) {
		t.Fatalf("expected deck not found, got %v", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	archive := postgres.NewResultArchive(db, 8, nil)
	go func() { _ = archive.Run(runCtx) }()

	hub := memory.NewHub(32)
	service := app.NewQuizService(
		infraredis.NewRoomStore(redisClient, 5*time.Minute),
		bank,
		infraredis.NewPublisher(hub, redisClient, 8, nil),
		app.WithResultRecorder(archive),
	)

	code := service.CreateRoom(ctx, "host")
	if n, err := redisClient.Exists(ctx, "quiz:room:"+code).Result(); err != nil || n != 1 {
		t.Fatalf("expected room marker in redis, got %d %v", n, err)
	}
	if err := service.Join(ctx, strings.ToLower(code), "Alice", "alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := service.StartGame(ctx, "host", code); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < bank.Len(); i++ {
		q, _ := bank.At(i)
		if err := service.SubmitAnswer(ctx, "alice", code, q.CorrectIndices); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		if err := service.ReadyNext(ctx, "alice", code); err != nil {
			t.Fatalf("ready %d: %v", i, err)
		}
	}

	var results []domain.GameResult
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		results, err = archive.Recent(ctx, 10)
		if err == nil && len(results) == 1 {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if len(results) != 1 {
		t.Fatalf("expected one archived result, got %d (%v)", len(results), err)
	}
	got := results[0]
	if got.RoomCode != code || got.TotalQuestions != 2 || len(got.Players) != 1 || got.Players[0].Score != 2 {
		t.Fatalf("unexpected archived result %+v", got)
	}

	service.Disconnect(ctx, "host")
	if n, _ := redisClient.Exists(ctx, "quiz:room:"+code).Result(); n != 0 {
		t.Fatalf("expected room marker removed")
	}
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

func sampleDeck() []domain.Question {
	return []domain.Question{
		{
			Kind:           domain.KindMulti,
			Prompt:         "Which findings suggest compartment syndrome? (Select all that apply.)",
			Choices:        []string{"Pain on passive stretch", "Paresthesia", "Warm fingers", "Increasing tightness"},
			CorrectIndices: []int{0, 1, 3},
			Explanation:    "Classic early signs.",
		},
		{
			Kind:           domain.KindSingle,
			Prompt:         "What is the priority action for suspected fat embolism?",
			Choices:        []string{"Increase IV fluids", "High-flow oxygen", "Elevate legs"},
			CorrectIndices: []int{1},
			Explanation:    "Support oxygenation first.",
		},
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
