package postgres

import (
	"context"
	"fmt"
	"time"

	"brainquiz/internal/domain"
	"github.com/uptrace/bun"
)

type highScoreRow struct {
	bun.BaseModel `bun:"table:high_scores"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	Score     float64   `bun:"score,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// ScoreStore is the high score table, accessed through bun.
type ScoreStore struct {
	db *bun.DB
}

func NewScoreStore(db *bun.DB) *ScoreStore {
	return &ScoreStore{db: db}
}

func (s *ScoreStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*highScoreRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create high_scores: %w", err)
	}
	return nil
}

func (s *ScoreStore) Record(ctx context.Context, entry domain.HighScoreEntry) (domain.HighScoreEntry, error) {
	row := highScoreRow{Name: entry.Name, Score: entry.Score, CreatedAt: entry.CreatedAt}
	if _, err := s.db.NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
		return domain.HighScoreEntry{}, fmt.Errorf("insert high score: %w", err)
	}
	entry.ID = row.ID
	return entry, nil
}

func (s *ScoreStore) Top(ctx context.Context, n int) ([]domain.HighScoreEntry, error) {
	var rows []highScoreRow
	err := s.db.NewSelect().
		Model(&rows).
		OrderExpr("score DESC, id ASC").
		Limit(n).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select high scores: %w", err)
	}
	out := make([]domain.HighScoreEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.HighScoreEntry{ID: r.ID, Name: r.Name, Score: r.Score, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

func (s *ScoreStore) Reset(ctx context.Context) error {
	if _, err := s.db.NewDelete().Model((*highScoreRow)(nil)).Where("TRUE").Exec(ctx); err != nil {
		return fmt.Errorf("reset high scores: %w", err)
	}
	return nil
}
