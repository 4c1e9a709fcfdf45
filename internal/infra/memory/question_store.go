package memory

import (
	"context"
	"sort"
	"sync"

	"brainquiz/internal/domain"
)

// QuestionStore keeps questions and proposals in process memory. It implements
// app.QuestionRepository and backs the server when no database is configured.
type QuestionStore struct {
	mu           sync.RWMutex
	questions    map[int64]domain.Question
	proposals    map[int64]domain.ProposedChange
	nextQuestion int64
	nextProposal int64
}

func NewQuestionStore() *QuestionStore {
	return &QuestionStore{
		questions: make(map[int64]domain.Question),
		proposals: make(map[int64]domain.ProposedChange),
	}
}

func (s *QuestionStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questions), nil
}

func (s *QuestionStore) Get(_ context.Context, id int64) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrNotFound
	}
	return q, nil
}

func (s *QuestionStore) ListIDs(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.questions))
	for id := range s.questions {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *QuestionStore) List(_ context.Context) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, 0, len(s.questions))
	for _, q := range s.questions {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Number != out[j].Number {
			return out[i].Number < out[j].Number
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *QuestionStore) Insert(_ context.Context, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(q)
}

func (s *QuestionStore) Propose(_ context.Context, c domain.ProposedChange) (domain.ProposedChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextProposal++
	c.ID = s.nextProposal
	if c.TargetID != nil {
		target := *c.TargetID
		c.TargetID = &target
	}
	s.proposals[c.ID] = c
	return c, nil
}

func (s *QuestionStore) ListProposed(_ context.Context) (domain.ProposalBuckets, error) {
	s.mu.RLock()
	pending := make([]domain.ProposedChange, 0, len(s.proposals))
	for _, c := range s.proposals {
		pending = append(pending, c)
	}
	s.mu.RUnlock()

	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })
	var buckets domain.ProposalBuckets
	for _, c := range pending {
		buckets.Put(c)
	}
	return buckets, nil
}

func (s *QuestionStore) ApplyProposed(_ context.Context, id int64) (domain.ProposedChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.proposals[id]
	if !ok {
		return domain.ProposedChange{}, domain.ErrNotFound
	}

	switch c.Kind {
	case domain.ChangeAdd:
		if _, err := s.insertLocked(c.Question); err != nil {
			return domain.ProposedChange{}, err
		}
	case domain.ChangeUpdate:
		current, ok := s.questions[*c.TargetID]
		if !ok {
			return domain.ProposedChange{}, domain.ErrNotFound
		}
		if s.textTakenLocked(c.Question.Text, current.ID) {
			return domain.ProposedChange{}, domain.ErrDuplicateQuestion
		}
		updated := c.Question
		updated.ID = current.ID
		updated.Number = current.Number
		s.questions[current.ID] = updated
	case domain.ChangeDelete:
		if _, ok := s.questions[*c.TargetID]; !ok {
			return domain.ProposedChange{}, domain.ErrNotFound
		}
		delete(s.questions, *c.TargetID)
	}

	delete(s.proposals, id)
	return c, nil
}

func (s *QuestionStore) RejectProposed(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proposals[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.proposals, id)
	return nil
}

func (s *QuestionStore) insertLocked(q domain.Question) (domain.Question, error) {
	if s.textTakenLocked(q.Text, 0) {
		return domain.Question{}, domain.ErrDuplicateQuestion
	}
	maxNumber := 0
	for _, existing := range s.questions {
		if existing.Number > maxNumber {
			maxNumber = existing.Number
		}
	}
	s.nextQuestion++
	q.ID = s.nextQuestion
	q.Number = maxNumber + 1
	s.questions[q.ID] = q
	return q, nil
}

func (s *QuestionStore) textTakenLocked(text string, except int64) bool {
	for id, existing := range s.questions {
		if id != except && existing.Text == text {
			return true
		}
	}
	return false
}
