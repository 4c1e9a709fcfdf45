package app

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"brainquiz/internal/domain"
)

// DefaultLeaderboardSize is the number of entries shown and used for eligibility.
const DefaultLeaderboardSize = 10

// ScoreBoard wraps the high score table and pushes fresh snapshots to subscribers.
type ScoreBoard struct {
	repo ScoreRepository
	size int
	now  func() time.Time
	mu   sync.Mutex
	subs map[chan []domain.HighScoreEntry]struct{}
}

func NewScoreBoard(repo ScoreRepository, size int) *ScoreBoard {
	if size <= 0 {
		size = DefaultLeaderboardSize
	}
	return &ScoreBoard{
		repo: repo,
		size: size,
		now:  time.Now,
		subs: make(map[chan []domain.HighScoreEntry]struct{}),
	}
}

// Size is the leaderboard length N.
func (b *ScoreBoard) Size() int {
	return b.size
}

// Init runs the repository's idempotent setup. Call once at startup.
func (b *ScoreBoard) Init(ctx context.Context) error {
	return b.repo.Init(ctx)
}

// Record appends a named score.
func (b *ScoreBoard) Record(ctx context.Context, name string, score float64) (domain.HighScoreEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.HighScoreEntry{}, domain.Invalid("name", "Name cannot be left blank")
	}
	if math.IsNaN(score) || score < 0 || score > 100 {
		return domain.HighScoreEntry{}, domain.Invalid("score", "Score must be between 0 and 100")
	}

	entry, err := b.repo.Record(ctx, domain.HighScoreEntry{
		Name:      name,
		Score:     score,
		CreatedAt: b.now().UTC(),
	})
	if err != nil {
		return domain.HighScoreEntry{}, err
	}
	b.publish(ctx)
	return entry, nil
}

// Top returns at most n entries by descending score.
func (b *ScoreBoard) Top(ctx context.Context, n int) ([]domain.HighScoreEntry, error) {
	if n <= 0 {
		return []domain.HighScoreEntry{}, nil
	}
	return b.repo.Top(ctx, n)
}

// Leaders returns the top Size entries.
func (b *ScoreBoard) Leaders(ctx context.Context) ([]domain.HighScoreEntry, error) {
	return b.Top(ctx, b.size)
}

// Eligible reports whether a percentage would make it onto the current leaderboard.
func (b *ScoreBoard) Eligible(ctx context.Context, percentage float64) (bool, error) {
	leaders, err := b.Leaders(ctx)
	if err != nil {
		return false, err
	}
	if len(leaders) < b.size {
		return true, nil
	}
	return percentage >= leaders[b.size-1].Score, nil
}

// Reset clears the board.
func (b *ScoreBoard) Reset(ctx context.Context) error {
	if err := b.repo.Reset(ctx); err != nil {
		return err
	}
	b.broadcast([]domain.HighScoreEntry{})
	return nil
}

// Subscribe returns a channel that receives leaderboard snapshots, starting with the
// current one. The caller must invoke the returned cancel function to avoid leaks.
func (b *ScoreBoard) Subscribe(ctx context.Context) (<-chan []domain.HighScoreEntry, func(), error) {
	initial, err := b.Leaders(ctx)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan []domain.HighScoreEntry, 8)
	ch <- initial

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel, nil
}

func (b *ScoreBoard) publish(ctx context.Context) {
	b.mu.Lock()
	idle := len(b.subs) == 0
	b.mu.Unlock()
	if idle {
		return
	}
	leaders, err := b.Leaders(ctx)
	if err != nil {
		slog.Warn("leaderboard snapshot failed", "err", err)
		return
	}
	b.broadcast(leaders)
}

func (b *ScoreBoard) broadcast(entries []domain.HighScoreEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- entries:
		default:
			// drop the oldest snapshot so slow readers never block writers
			select {
			case <-ch:
			default:
			}
			ch <- entries
		}
	}
}
