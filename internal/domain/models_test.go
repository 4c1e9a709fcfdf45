package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuestion() Question {
	return Question{Text: "Pick B", Options: [4]string{"one", "two", "three", "four"}, Correct: "B"}
}

func TestQuestionValidate(t *testing.T) {
	assert.NoError(t, validQuestion().Validate())

	blank := validQuestion()
	blank.Options[2] = "  "
	err := blank.Validate()
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Input cannot be left blank", err.Error())

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "ansC", vErr.Field)

	lower := validQuestion()
	lower.Correct = "b"
	assert.ErrorIs(t, lower.Validate(), ErrValidation)
}

func TestQuestionOption(t *testing.T) {
	q := validQuestion()
	text, ok := q.Option("D")
	assert.True(t, ok)
	assert.Equal(t, "four", text)

	_, ok = q.Option("E")
	assert.False(t, ok)
}

func TestProposedChangeValidate(t *testing.T) {
	id := int64(3)
	cases := []struct {
		name    string
		change  ProposedChange
		wantErr bool
	}{
		{"add", ProposedChange{Kind: ChangeAdd, Question: validQuestion()}, false},
		{"add blank", ProposedChange{Kind: ChangeAdd}, true},
		{"update without target", ProposedChange{Kind: ChangeUpdate, Question: validQuestion()}, true},
		{"update", ProposedChange{Kind: ChangeUpdate, TargetID: &id, Question: validQuestion()}, false},
		{"delete without target", ProposedChange{Kind: ChangeDelete}, true},
		{"delete ignores fields", ProposedChange{Kind: ChangeDelete, TargetID: &id}, false},
		{"unknown", ProposedChange{Kind: "rename", TargetID: &id}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.change.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseChangeKind(t *testing.T) {
	kind, err := ParseChangeKind(" Update ")
	require.NoError(t, err)
	assert.Equal(t, ChangeUpdate, kind)

	_, err = ParseChangeKind("")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProposalBuckets(t *testing.T) {
	var b ProposalBuckets
	b.Put(ProposedChange{ID: 1, Kind: ChangeAdd})
	b.Put(ProposedChange{ID: 2, Kind: ChangeDelete})
	b.Put(ProposedChange{ID: 3, Kind: ChangeDelete})
	assert.Equal(t, 3, b.Len())
	assert.Len(t, b.Delete, 2)
	assert.Empty(t, b.Update)
}

func TestIsUserError(t *testing.T) {
	assert.True(t, IsUserError(fmt.Errorf("line 3: %w", Invalid("x", "bad"))))
	assert.True(t, IsUserError(ErrDuplicateQuestion))
	assert.True(t, IsUserError(ErrNotEligible))
	assert.False(t, IsUserError(errors.New("connection reset")))
	assert.False(t, IsUserError(ErrSessionNotFound))
}

func TestQuizSessionProgress(t *testing.T) {
	q := &QuizSession{QuestionIDs: []int64{1, 2, 3}, Total: 3}
	assert.False(t, q.Finished())
	assert.Zero(t, q.Percentage())

	q.Index, q.Score = 3, 2
	assert.True(t, q.Finished())
	assert.InDelta(t, 66.67, q.Percentage(), 0.01)

	assert.Zero(t, (&QuizSession{}).Percentage())
}

func TestSessionFlashes(t *testing.T) {
	var s Session
	s.Flash("one")
	s.Flash("two")
	assert.Equal(t, []string{"one", "two"}, s.PopFlashes())
	assert.Empty(t, s.PopFlashes())
}
