package postgres

import (
	"context"
	"errors"
	"fmt"

	"brainquiz/internal/domain"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// QuestionStore keeps live questions and proposals in Postgres.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

func (s *QuestionStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM questions`).Scan(&n)
	if err != nil {
		if isUndefinedTable(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

func (s *QuestionStore) Get(ctx context.Context, id int64) (domain.Question, error) {
	var q domain.Question
	err := s.pool.QueryRow(ctx,
		`SELECT id, number, question, ans_a, ans_b, ans_c, ans_d, correct FROM questions WHERE id=$1`, id,
	).Scan(&q.ID, &q.Number, &q.Text, &q.Options[0], &q.Options[1], &q.Options[2], &q.Options[3], &q.Correct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Question{}, domain.ErrNotFound
		}
		return domain.Question{}, fmt.Errorf("load question: %w", err)
	}
	return q, nil
}

func (s *QuestionStore) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM questions`)
	if err != nil {
		return nil, fmt.Errorf("list question ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan question id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *QuestionStore) List(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, number, question, ans_a, ans_b, ans_c, ans_d, correct FROM questions ORDER BY number, id`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	out := []domain.Question{}
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Number, &q.Text, &q.Options[0], &q.Options[1], &q.Options[2], &q.Options[3], &q.Correct); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *QuestionStore) Insert(ctx context.Context, q domain.Question) (domain.Question, error) {
	return insertQuestion(ctx, s.pool, q)
}

func (s *QuestionStore) Propose(ctx context.Context, c domain.ProposedChange) (domain.ProposedChange, error) {
	q := c.Question
	err := s.pool.QueryRow(ctx,
		`INSERT INTO proposed_changes (target_id, question, ans_a, ans_b, ans_c, ans_d, correct, kind, submitted_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		c.TargetID, q.Text, q.Options[0], q.Options[1], q.Options[2], q.Options[3], q.Correct, string(c.Kind), c.SubmittedBy, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return domain.ProposedChange{}, fmt.Errorf("insert proposal: %w", err)
	}
	return c, nil
}

func (s *QuestionStore) ListProposed(ctx context.Context) (domain.ProposalBuckets, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, target_id, question, ans_a, ans_b, ans_c, ans_d, correct, kind, submitted_by, created_at
		 FROM proposed_changes ORDER BY id`)
	if err != nil {
		return domain.ProposalBuckets{}, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	var buckets domain.ProposalBuckets
	for rows.Next() {
		c, err := scanProposal(rows)
		if err != nil {
			return domain.ProposalBuckets{}, err
		}
		buckets.Put(c)
	}
	return buckets, rows.Err()
}

// ApplyProposed performs the change and deletes the proposal in one transaction.
func (s *QuestionStore) ApplyProposed(ctx context.Context, id int64) (domain.ProposedChange, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ProposedChange{}, fmt.Errorf("begin apply: %w", err)
	}
	defer tx.Rollback(ctx)

	c, err := scanProposal(tx.QueryRow(ctx,
		`SELECT id, target_id, question, ans_a, ans_b, ans_c, ans_d, correct, kind, submitted_by, created_at
		 FROM proposed_changes WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return domain.ProposedChange{}, err
	}

	switch c.Kind {
	case domain.ChangeAdd:
		if _, err := insertQuestion(ctx, tx, c.Question); err != nil {
			return domain.ProposedChange{}, err
		}
	case domain.ChangeUpdate:
		q := c.Question
		tag, err := tx.Exec(ctx,
			`UPDATE questions SET question=$2, ans_a=$3, ans_b=$4, ans_c=$5, ans_d=$6, correct=$7 WHERE id=$1`,
			*c.TargetID, q.Text, q.Options[0], q.Options[1], q.Options[2], q.Options[3], q.Correct)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ProposedChange{}, domain.ErrDuplicateQuestion
			}
			return domain.ProposedChange{}, fmt.Errorf("update question: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ProposedChange{}, domain.ErrNotFound
		}
	case domain.ChangeDelete:
		tag, err := tx.Exec(ctx, `DELETE FROM questions WHERE id=$1`, *c.TargetID)
		if err != nil {
			return domain.ProposedChange{}, fmt.Errorf("delete question: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ProposedChange{}, domain.ErrNotFound
		}
	default:
		return domain.ProposedChange{}, fmt.Errorf("proposal %d has unknown kind %q", c.ID, c.Kind)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM proposed_changes WHERE id=$1`, id); err != nil {
		return domain.ProposedChange{}, fmt.Errorf("delete proposal: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ProposedChange{}, fmt.Errorf("commit apply: %w", err)
	}
	return c, nil
}

func (s *QuestionStore) RejectProposed(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM proposed_changes WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("reject proposal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func insertQuestion(ctx context.Context, db querier, q domain.Question) (domain.Question, error) {
	err := db.QueryRow(ctx,
		`INSERT INTO questions (number, question, ans_a, ans_b, ans_c, ans_d, correct)
		 SELECT COALESCE(MAX(number), 0) + 1, $1, $2, $3, $4, $5, $6 FROM questions
		 RETURNING id, number`,
		q.Text, q.Options[0], q.Options[1], q.Options[2], q.Options[3], q.Correct,
	).Scan(&q.ID, &q.Number)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Question{}, domain.ErrDuplicateQuestion
		}
		return domain.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return q, nil
}

func scanProposal(row pgx.Row) (domain.ProposedChange, error) {
	var (
		c    domain.ProposedChange
		kind string
	)
	q := &c.Question
	err := row.Scan(&c.ID, &c.TargetID, &q.Text, &q.Options[0], &q.Options[1], &q.Options[2], &q.Options[3], &q.Correct,
		&kind, &c.SubmittedBy, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ProposedChange{}, domain.ErrNotFound
		}
		return domain.ProposedChange{}, fmt.Errorf("scan proposal: %w", err)
	}
	c.Kind = domain.ChangeKind(kind)
	return c, nil
}
