package app

import (
	"context"
	"strings"
	"time"

	"brainquiz/internal/domain"
)

// QuestionService validates question writes before they reach the repository.
type QuestionService struct {
	repo QuestionRepository
	now  func() time.Time
}

func NewQuestionService(repo QuestionRepository) *QuestionService {
	return &QuestionService{repo: repo, now: time.Now}
}

func (s *QuestionService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *QuestionService) Get(ctx context.Context, id int64) (domain.Question, error) {
	return s.repo.Get(ctx, id)
}

func (s *QuestionService) List(ctx context.Context) ([]domain.Question, error) {
	return s.repo.List(ctx)
}

// Insert adds a question directly to the live table.
func (s *QuestionService) Insert(ctx context.Context, q domain.Question) (domain.Question, error) {
	q = normalizeQuestion(q)
	if err := q.Validate(); err != nil {
		return domain.Question{}, err
	}
	return s.repo.Insert(ctx, q)
}

// Propose records a pending change for administrator review.
func (s *QuestionService) Propose(ctx context.Context, c domain.ProposedChange) (domain.ProposedChange, error) {
	c.Question = normalizeQuestion(c.Question)
	if err := c.Validate(); err != nil {
		return domain.ProposedChange{}, err
	}
	if c.Kind == domain.ChangeAdd {
		c.TargetID = nil
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now().UTC()
	}
	return s.repo.Propose(ctx, c)
}

func (s *QuestionService) ListProposed(ctx context.Context) (domain.ProposalBuckets, error) {
	return s.repo.ListProposed(ctx)
}

func normalizeQuestion(q domain.Question) domain.Question {
	q.Text = strings.TrimSpace(q.Text)
	for i := range q.Options {
		q.Options[i] = strings.TrimSpace(q.Options[i])
	}
	q.Correct = strings.TrimSpace(q.Correct)
	return q
}
