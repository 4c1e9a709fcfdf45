package http

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"brainquiz/internal/app"
	"brainquiz/internal/domain"
)

// proposalForm echoes the submitted values back when a proposal is rejected.
type proposalForm struct {
	Change   string
	ID       string
	Question string
	Ans1     string
	Ans2     string
	Ans3     string
	Ans4     string
	Correct  string
}

type databaseData struct {
	Form      proposalForm
	Questions []domain.Question
}

func (h *Handler) databaseView(w http.ResponseWriter, r *http.Request) {
	h.renderDatabase(w, r, http.StatusOK, proposalForm{}, "")
}

func (h *Handler) renderDatabase(w http.ResponseWriter, r *http.Request, status int, form proposalForm, errMsg string) {
	questions, err := h.svc.Questions.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, status, "database", view{
		Title: "Questions",
		Error: errMsg,
		Data:  databaseData{Form: form, Questions: questions},
	})
}

func (h *Handler) propose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form := proposalForm{
		Change:   r.PostFormValue("change"),
		ID:       strings.TrimSpace(r.PostFormValue("id")),
		Question: r.PostFormValue("question"),
		Ans1:     r.PostFormValue("ans1"),
		Ans2:     r.PostFormValue("ans2"),
		Ans3:     r.PostFormValue("ans3"),
		Ans4:     r.PostFormValue("ans4"),
		Correct:  r.PostFormValue("correct"),
	}

	change, err := parseProposal(form)
	if err == nil {
		var sess domain.Session
		sess, err = h.currentSession(ctx)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		change.SubmittedBy = sess.Username
		_, err = h.svc.Questions.Propose(ctx, change)
	}
	if err != nil {
		if !domain.IsUserError(err) {
			h.fail(w, r, err)
			return
		}
		h.renderDatabase(w, r, http.StatusBadRequest, form, "Invalid question entry: "+err.Error())
		return
	}

	var msg string
	switch change.Kind {
	case domain.ChangeAdd:
		msg = "Question submitted for addition"
	case domain.ChangeUpdate:
		msg = "Question submitted for update"
	case domain.ChangeDelete:
		msg = "Question submitted for deletion"
	}
	if err := h.flash(ctx, msg); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, "/database")
}

func parseProposal(form proposalForm) (domain.ProposedChange, error) {
	kind, err := domain.ParseChangeKind(form.Change)
	if err != nil {
		return domain.ProposedChange{}, err
	}
	change := domain.ProposedChange{
		Kind: kind,
		Question: domain.Question{
			Text:    form.Question,
			Options: [4]string{form.Ans1, form.Ans2, form.Ans3, form.Ans4},
			Correct: strings.ToUpper(strings.TrimSpace(form.Correct)),
		},
	}
	if form.ID != "" {
		id, err := strconv.ParseInt(form.ID, 10, 64)
		if err != nil || id < 1 {
			return domain.ProposedChange{}, domain.Invalid("id", "Question ID must be a positive number")
		}
		change.TargetID = &id
	}
	return change, nil
}

func (h *Handler) adminView(w http.ResponseWriter, r *http.Request) {
	pending, err := h.svc.Moderation.Pending(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "admin", view{Title: "Admin", Data: pending})
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "error", view{Title: "Malformed form submission"})
		return
	}

	decisions := parseDecisions(r.PostForm)
	applied := 0
	var notes []string
	for _, out := range h.svc.Moderation.Review(ctx, decisions) {
		switch {
		case out.Err == nil:
			applied++
		case domain.IsUserError(out.Err):
			notes = append(notes, fmt.Sprintf("Proposal %d: %s", out.ProposalID, out.Err))
		default:
			notes = append(notes, fmt.Sprintf("Proposal %d could not be processed", out.ProposalID))
		}
	}
	if len(decisions) > 0 {
		notes = append([]string{fmt.Sprintf("Processed %d of %d proposal(s)", applied, len(decisions))}, notes...)
	}

	if r.PostForm.Get("reset_scores") == "on" {
		if err := h.svc.Moderation.ResetScores(ctx); err != nil {
			h.fail(w, r, err)
			return
		}
		notes = append(notes, "High scores reset")
	}

	err := h.update(ctx, func(s *domain.Session) {
		for _, n := range notes {
			s.Flash(n)
		}
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, "/admin")
}

// parseDecisions reads decision_<id>=accept|reject fields, ordered by proposal id.
// Proposals without a decision are left pending.
func parseDecisions(form map[string][]string) []app.Decision {
	var decisions []app.Decision
	for key, values := range form {
		raw, ok := strings.CutPrefix(key, "decision_")
		if !ok || len(values) == 0 {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		action := app.Action(values[0])
		if action != app.ActionAccept && action != app.ActionReject {
			continue
		}
		decisions = append(decisions, app.Decision{ProposalID: id, Action: action})
	}
	sort.Slice(decisions, func(i, j int) bool { return decisions[i].ProposalID < decisions[j].ProposalID })
	return decisions
}
