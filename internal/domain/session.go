package domain

import "time"

// QuizSession is one user's in-progress quiz attempt.
type QuizSession struct {
	QuestionIDs []int64 `json:"questionIds"`
	Index       int     `json:"index"`
	Score       int     `json:"score"`
	Total       int     `json:"total"`
	Recorded    bool    `json:"recorded"`
}

// Finished reports whether every question has been answered.
func (q *QuizSession) Finished() bool {
	return q.Index >= q.Total
}

// Percentage is the final score on the 0-100 leaderboard scale.
func (q *QuizSession) Percentage() float64 {
	if q.Total == 0 {
		return 0
	}
	return float64(q.Score) / float64(q.Total) * 100
}

// Session is the server-side state behind one browser cookie.
type Session struct {
	ID            string       `json:"id"`
	Username      string       `json:"username,omitempty"`
	Authenticated bool         `json:"authenticated"`
	Quiz          *QuizSession `json:"quiz,omitempty"`
	Flashes       []string     `json:"flashes,omitempty"`
	ExpiresAt     time.Time    `json:"expiresAt"`
}

// Flash queues a one-shot message for the next rendered page.
func (s *Session) Flash(msg string) {
	s.Flashes = append(s.Flashes, msg)
}

// PopFlashes returns and clears queued messages.
func (s *Session) PopFlashes() []string {
	out := s.Flashes
	s.Flashes = nil
	return out
}
