package domain

import (
	"strings"
	"time"
)

// Labels are the option letters every question carries, in display order.
var Labels = [4]string{"A", "B", "C", "D"}

// Question is a live multiple-choice question.
type Question struct {
	ID      int64     `json:"id"`
	Number  int       `json:"number"`
	Text    string    `json:"text"`
	Options [4]string `json:"options"`
	Correct string    `json:"correct"` // one of Labels
}

// Option returns the option text for label.
func (q Question) Option(label string) (string, bool) {
	for i, l := range Labels {
		if l == label {
			return q.Options[i], true
		}
	}
	return "", false
}

// Validate checks that every field is filled in and Correct names one of the options.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return Invalid("question", "Input cannot be left blank")
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return Invalid("ans"+Labels[i], "Input cannot be left blank")
		}
	}
	if _, ok := q.Option(q.Correct); !ok {
		return Invalid("correct", "Correct answer must be one of A, B, C or D")
	}
	return nil
}

// ChangeKind is the kind of a proposed change.
type ChangeKind string

const (
	ChangeAdd    ChangeKind = "add"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// ParseChangeKind maps a form value onto a ChangeKind.
func ParseChangeKind(raw string) (ChangeKind, error) {
	switch kind := ChangeKind(strings.ToLower(strings.TrimSpace(raw))); kind {
	case ChangeAdd, ChangeUpdate, ChangeDelete:
		return kind, nil
	}
	return "", Invalid("change", "Unknown change type %q", raw)
}

// ProposedChange is a pending add/update/delete waiting for an administrator.
type ProposedChange struct {
	ID          int64      `json:"id"`
	TargetID    *int64     `json:"targetId,omitempty"`
	Question    Question   `json:"question"`
	Kind        ChangeKind `json:"kind"`
	SubmittedBy string     `json:"submittedBy"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Validate applies the per-kind field requirements.
func (c ProposedChange) Validate() error {
	switch c.Kind {
	case ChangeAdd:
		return c.Question.Validate()
	case ChangeUpdate:
		if c.TargetID == nil {
			return Invalid("id", "Must enter question number to update or delete")
		}
		return c.Question.Validate()
	case ChangeDelete:
		if c.TargetID == nil {
			return Invalid("id", "Must enter question number to update or delete")
		}
		return nil
	}
	return Invalid("change", "Unknown change type %q", c.Kind)
}

// ProposalBuckets groups pending proposals by kind.
type ProposalBuckets struct {
	Add    []ProposedChange
	Update []ProposedChange
	Delete []ProposedChange
}

// Len returns the total number of pending proposals.
func (b ProposalBuckets) Len() int {
	return len(b.Add) + len(b.Update) + len(b.Delete)
}

// Put appends c to the bucket matching its kind.
func (b *ProposalBuckets) Put(c ProposedChange) {
	switch c.Kind {
	case ChangeAdd:
		b.Add = append(b.Add, c)
	case ChangeUpdate:
		b.Update = append(b.Update, c)
	case ChangeDelete:
		b.Delete = append(b.Delete, c)
	}
}

// User is a registered account.
type User struct {
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}

// HighScoreEntry is one leaderboard row. Score is a percentage in [0, 100].
type HighScoreEntry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}
