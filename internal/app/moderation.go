package app

import (
	"context"
	"log/slog"

	"brainquiz/internal/domain"
)

// Action is an administrator decision on a proposal.
type Action string

const (
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
)

// Decision targets one proposal.
type Decision struct {
	ProposalID int64
	Action     Action
}

// Outcome is the result of one decision. Err is nil on success.
type Outcome struct {
	Decision
	Applied domain.ProposedChange
	Err     error
}

// Pending is the administrator's review screen.
type Pending struct {
	Proposals domain.ProposalBuckets
	Questions []domain.Question
}

// ModerationService lets administrators apply or discard proposed changes.
type ModerationService struct {
	questions QuestionRepository
	scores    *ScoreBoard
}

func NewModerationService(questions QuestionRepository, scores *ScoreBoard) *ModerationService {
	return &ModerationService{questions: questions, scores: scores}
}

func (s *ModerationService) Pending(ctx context.Context) (Pending, error) {
	buckets, err := s.questions.ListProposed(ctx)
	if err != nil {
		return Pending{}, err
	}
	questions, err := s.questions.List(ctx)
	if err != nil {
		return Pending{}, err
	}
	return Pending{Proposals: buckets, Questions: questions}, nil
}

// Review processes every decision independently; one failure never stops the rest.
func (s *ModerationService) Review(ctx context.Context, decisions []Decision) []Outcome {
	outcomes := make([]Outcome, 0, len(decisions))
	for _, d := range decisions {
		out := Outcome{Decision: d}
		switch d.Action {
		case ActionAccept:
			out.Applied, out.Err = s.questions.ApplyProposed(ctx, d.ProposalID)
		case ActionReject:
			out.Err = s.questions.RejectProposed(ctx, d.ProposalID)
		default:
			out.Err = domain.Invalid("action", "Unknown action %q", d.Action)
		}
		if out.Err != nil {
			slog.Warn("proposal review failed", "proposal", d.ProposalID, "action", d.Action, "err", out.Err)
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// ResetScores clears the leaderboard.
func (s *ModerationService) ResetScores(ctx context.Context) error {
	return s.scores.Reset(ctx)
}
