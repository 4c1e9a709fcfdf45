package app

import (
	"context"

	"brainquiz/internal/domain"
)

// QuestionRepository persists live questions and the proposals against them.
type QuestionRepository interface {
	// Count returns 0 when the backing table has not been created yet.
	Count(ctx context.Context) (int, error)
	Get(ctx context.Context, id int64) (domain.Question, error)
	ListIDs(ctx context.Context) ([]int64, error)
	// List returns every live question ordered by number.
	List(ctx context.Context) ([]domain.Question, error)
	Insert(ctx context.Context, q domain.Question) (domain.Question, error)

	Propose(ctx context.Context, c domain.ProposedChange) (domain.ProposedChange, error)
	ListProposed(ctx context.Context) (domain.ProposalBuckets, error)
	// ApplyProposed applies the change to the live table and removes the proposal
	// atomically, returning the change that was applied.
	ApplyProposed(ctx context.Context, id int64) (domain.ProposedChange, error)
	RejectProposed(ctx context.Context, id int64) error
}

// UserRepository stores credentials.
type UserRepository interface {
	// Create returns domain.ErrDuplicateUser when the username is taken.
	Create(ctx context.Context, u domain.User) error
	// Get returns domain.ErrUnknownUser when the username is absent.
	Get(ctx context.Context, username string) (domain.User, error)
}

// ScoreRepository is the append-only high score table.
type ScoreRepository interface {
	// Init creates the backing storage if needed. It must be idempotent.
	Init(ctx context.Context) error
	Record(ctx context.Context, entry domain.HighScoreEntry) (domain.HighScoreEntry, error)
	Top(ctx context.Context, n int) ([]domain.HighScoreEntry, error)
	Reset(ctx context.Context) error
}

// SessionRepository abstracts how browser sessions are stored (in-memory, Redis).
type SessionRepository interface {
	Get(ctx context.Context, id string) (domain.Session, error)
	Save(ctx context.Context, s domain.Session) error
	Delete(ctx context.Context, id string) error
}
