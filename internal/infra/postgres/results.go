package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quiz-rooms/internal/domain"

	"github.com/uptrace/bun"
)

// ResultArchive persists finished games off the hot path. Record only enqueues;
// Run drains the queue into game_results.
type ResultArchive struct {
	db     *bun.DB
	logger *slog.Logger
	queue  chan domain.GameResult
}

func NewResultArchive(db *bun.DB, buffer int, logger *slog.Logger) *ResultArchive {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultArchive{
		db:     db,
		logger: logger,
		queue:  make(chan domain.GameResult, buffer),
	}
}

// Record implements app.ResultRecorder. A full queue drops the result.
func (a *ResultArchive) Record(result domain.GameResult) {
	select {
	case a.queue <- result:
	default:
		a.logger.Warn("result queue full, dropping game result", "code", result.RoomCode, "id", result.ID)
	}
}

// Run writes queued results until ctx is done, then flushes what is left.
func (a *ResultArchive) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			a.flush()
			return nil
		case result := <-a.queue:
			a.save(ctx, result)
		}
	}
}

func (a *ResultArchive) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case result := <-a.queue:
			a.save(ctx, result)
		default:
			return
		}
	}
}

func (a *ResultArchive) save(ctx context.Context, result domain.GameResult) {
	row := newGameResultRow(result)
	if _, err := a.db.NewInsert().Model(&row).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		a.logger.Error("archive game result", "code", result.RoomCode, "id", result.ID, "err", err)
		return
	}
	a.logger.Info("game result archived", "code", result.RoomCode, "id", result.ID)
}

// Recent returns the latest archived results, newest first.
func (a *ResultArchive) Recent(ctx context.Context, limit int) ([]domain.GameResult, error) {
	var rows []GameResultRow
	if err := a.db.NewSelect().Model(&rows).Order("finished_at DESC").Limit(limit).Scan(ctx); err != nil {
		return nil, fmt.Errorf("list game results: %w", err)
	}
	out := make([]domain.GameResult, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.GameResult{
			ID:             r.ID,
			RoomCode:       r.RoomCode,
			TotalQuestions: r.TotalQuestions,
			Players:        r.Players,
			FinishedAt:     r.FinishedAt,
		})
	}
	return out, nil
}
