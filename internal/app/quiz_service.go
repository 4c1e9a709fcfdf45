package app

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"time"

	"brainquiz/internal/domain"
)

// QuestionSource is the read side of the question repository the quiz needs.
type QuestionSource interface {
	Count(ctx context.Context) (int, error)
	Get(ctx context.Context, id int64) (domain.Question, error)
	ListIDs(ctx context.Context) ([]int64, error)
}

// Step is the question currently presented to a session. Number is 1-based.
type Step struct {
	Number   int
	Total    int
	Question domain.Question
}

// AnswerResult summarizes one answer submission.
type AnswerResult struct {
	Answered bool
	Correct  bool
	Feedback string
	Finished bool
	Score    int
}

// Summary is the end-of-quiz view.
type Summary struct {
	Score      int
	Total      int
	Percentage float64
	Eligible   bool
	Recorded   bool
	HighScores []domain.HighScoreEntry
}

const sessionLockStripes = 64

// QuizService drives a session through a shuffled subset of questions. All quiz state
// lives in the session record, keyed by the id passed to every call.
type QuizService struct {
	sessions  SessionRepository
	questions QuestionSource
	scores    *ScoreBoard

	rndMu sync.Mutex
	rnd   *rand.Rand

	// serializes read-modify-write of one session's quiz state
	locks [sessionLockStripes]sync.Mutex
}

func NewQuizService(sessions SessionRepository, questions QuestionSource, scores *ScoreBoard) *QuizService {
	return NewQuizServiceWithRand(sessions, questions, scores, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewQuizServiceWithRand allows deterministic shuffles in tests.
func NewQuizServiceWithRand(sessions SessionRepository, questions QuestionSource, scores *ScoreBoard, rnd *rand.Rand) *QuizService {
	return &QuizService{sessions: sessions, questions: questions, scores: scores, rnd: rnd}
}

// LengthOptions lists selectable quiz lengths: multiples of 5 up to the number of
// questions, plus the exact total when it is not one of them.
func (s *QuizService) LengthOptions(ctx context.Context) ([]int, error) {
	total, err := s.questions.Count(ctx)
	if err != nil {
		return nil, err
	}
	return LengthOptions(total), nil
}

// LengthOptions is the pure form of QuizService.LengthOptions.
func LengthOptions(total int) []int {
	options := make([]int, 0, total/5+1)
	for n := 5; n <= total; n += 5 {
		options = append(options, n)
	}
	if total > 0 && (len(options) == 0 || options[len(options)-1] != total) {
		options = append(options, total)
	}
	return options
}

// Start draws n distinct questions at random and resets progress.
func (s *QuizService) Start(ctx context.Context, sessionID string, n int) (domain.QuizSession, error) {
	defer s.lock(sessionID)()
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.QuizSession{}, err
	}

	ids, err := s.questions.ListIDs(ctx)
	if err != nil {
		return domain.QuizSession{}, err
	}
	if n < 1 || n > len(ids) {
		return domain.QuizSession{}, domain.Invalid("nquestions", "Choose between 1 and %d questions", len(ids))
	}

	s.rndMu.Lock()
	s.rnd.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	s.rndMu.Unlock()

	quiz := domain.QuizSession{
		QuestionIDs: append([]int64(nil), ids[:n]...),
		Total:       n,
	}
	sess.Quiz = &quiz
	if err := s.sessions.Save(ctx, sess); err != nil {
		return domain.QuizSession{}, err
	}
	return quiz, nil
}

// Finished reports whether the session's quiz has no more questions. It returns
// ErrQuizNotStarted when there is no quiz.
func (s *QuizService) Finished(ctx context.Context, sessionID string) (bool, error) {
	_, quiz, err := s.load(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return quiz.Finished(), nil
}

// Current returns the question at the current index.
func (s *QuizService) Current(ctx context.Context, sessionID string) (Step, error) {
	defer s.lock(sessionID)()
	sess, quiz, err := s.load(ctx, sessionID)
	if err != nil {
		return Step{}, err
	}
	if quiz.Finished() {
		return Step{}, domain.ErrQuizFinished
	}
	q, err := s.currentQuestion(ctx, &sess)
	if err != nil {
		return Step{}, err
	}
	return Step{Number: quiz.Index + 1, Total: quiz.Total, Question: q}, nil
}

// Answer scores label against the current question. An empty label leaves the
// session untouched so the same question is presented again.
func (s *QuizService) Answer(ctx context.Context, sessionID, label string) (AnswerResult, error) {
	defer s.lock(sessionID)()
	sess, quiz, err := s.load(ctx, sessionID)
	if err != nil {
		return AnswerResult{}, err
	}
	if quiz.Finished() {
		return AnswerResult{}, domain.ErrQuizFinished
	}
	if strings.TrimSpace(label) == "" {
		return AnswerResult{Score: quiz.Score}, nil
	}

	q, err := s.currentQuestion(ctx, &sess)
	if err != nil {
		return AnswerResult{}, err
	}

	res := AnswerResult{Answered: true}
	quiz.Index++
	if label == q.Correct {
		quiz.Score++
		res.Correct = true
		res.Feedback = "Correct!"
	} else {
		text, _ := q.Option(q.Correct)
		res.Feedback = fmt.Sprintf("Incorrect! The correct answer was %q", text)
	}
	res.Finished = quiz.Finished()
	res.Score = quiz.Score

	sess.Quiz = quiz
	if err := s.sessions.Save(ctx, sess); err != nil {
		return AnswerResult{}, err
	}
	return res, nil
}

// Summary returns the final score and leaderboard for a finished quiz.
func (s *QuizService) Summary(ctx context.Context, sessionID string) (Summary, error) {
	_, quiz, err := s.load(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	if !quiz.Finished() {
		return Summary{}, domain.ErrQuizInProgress
	}
	return s.summarize(ctx, quiz)
}

// SubmitName records the finished quiz on the leaderboard under name. Only one
// submission is accepted per quiz.
func (s *QuizService) SubmitName(ctx context.Context, sessionID, name string) (Summary, error) {
	defer s.lock(sessionID)()
	sess, quiz, err := s.load(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	if !quiz.Finished() {
		return Summary{}, domain.ErrQuizInProgress
	}
	if quiz.Recorded {
		return Summary{}, domain.ErrAlreadyRecorded
	}
	eligible, err := s.scores.Eligible(ctx, quiz.Percentage())
	if err != nil {
		return Summary{}, err
	}
	if !eligible {
		return Summary{}, domain.ErrNotEligible
	}

	if _, err := s.scores.Record(ctx, name, quiz.Percentage()); err != nil {
		return Summary{}, err
	}
	quiz.Recorded = true
	sess.Quiz = quiz
	if err := s.sessions.Save(ctx, sess); err != nil {
		return Summary{}, err
	}
	return s.summarize(ctx, quiz)
}

// Abandon discards any quiz state held by the session.
func (s *QuizService) Abandon(ctx context.Context, sessionID string) error {
	defer s.lock(sessionID)()
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.Quiz == nil {
		return nil
	}
	sess.Quiz = nil
	return s.sessions.Save(ctx, sess)
}

// currentQuestion fetches the question at the quiz index. Ids whose question was
// deleted after the quiz started are dropped from the draw and the session is
// saved. When nothing is left the quiz is finished, or discarded if it never had
// a playable question.
func (s *QuizService) currentQuestion(ctx context.Context, sess *domain.Session) (domain.Question, error) {
	quiz := sess.Quiz
	dropped := false
	for !quiz.Finished() {
		q, err := s.questions.Get(ctx, quiz.QuestionIDs[quiz.Index])
		if err == nil {
			if dropped {
				if err := s.sessions.Save(ctx, *sess); err != nil {
					return domain.Question{}, err
				}
			}
			return q, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.Question{}, err
		}
		quiz.QuestionIDs = slices.Delete(quiz.QuestionIDs, quiz.Index, quiz.Index+1)
		quiz.Total--
		dropped = true
	}

	outcome := domain.ErrQuizFinished
	if quiz.Total == 0 {
		sess.Quiz = nil
		outcome = domain.ErrQuizNotStarted
	}
	if err := s.sessions.Save(ctx, *sess); err != nil {
		return domain.Question{}, err
	}
	return domain.Question{}, outcome
}

func (s *QuizService) lock(sessionID string) func() {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	mu := &s.locks[h.Sum32()%sessionLockStripes]
	mu.Lock()
	return mu.Unlock
}

func (s *QuizService) summarize(ctx context.Context, quiz *domain.QuizSession) (Summary, error) {
	leaders, err := s.scores.Leaders(ctx)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{
		Score:      quiz.Score,
		Total:      quiz.Total,
		Percentage: quiz.Percentage(),
		Recorded:   quiz.Recorded,
		HighScores: leaders,
	}
	if !quiz.Recorded {
		sum.Eligible = len(leaders) < s.scores.Size() || sum.Percentage >= leaders[s.scores.Size()-1].Score
	}
	return sum, nil
}

func (s *QuizService) load(ctx context.Context, sessionID string) (domain.Session, *domain.QuizSession, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.Session{}, nil, err
	}
	if sess.Quiz == nil {
		return domain.Session{}, nil, domain.ErrQuizNotStarted
	}
	return sess, sess.Quiz, nil
}
