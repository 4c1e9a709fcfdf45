package http

import (
	"errors"
	"net/http"
	"strconv"

	"brainquiz/internal/domain"
)

type welcomeData struct {
	Options    []int
	HighScores []domain.HighScoreEntry
}

func (h *Handler) welcome(w http.ResponseWriter, r *http.Request) {
	h.renderWelcome(w, r, http.StatusOK, "")
}

func (h *Handler) renderWelcome(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	options, err := h.svc.Quiz.LengthOptions(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	leaders, err := h.svc.Scores.Leaders(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, status, "welcome", view{
		Title: "Welcome",
		Error: errMsg,
		Data:  welcomeData{Options: options, HighScores: leaders},
	})
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.PostFormValue("nquestions"))
	if err != nil {
		h.renderWelcome(w, r, http.StatusBadRequest, "Choose how many questions to play")
		return
	}
	if _, err := h.svc.Quiz.Start(r.Context(), sessionID(r.Context()), n); err != nil {
		if domain.IsUserError(err) {
			h.renderWelcome(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.fail(w, r, err)
		return
	}
	redirect(w, r, "/main")
}

// route sends the player to the next question or the summary.
func (h *Handler) route(w http.ResponseWriter, r *http.Request) {
	finished, err := h.svc.Quiz.Finished(r.Context(), sessionID(r.Context()))
	switch {
	case errors.Is(err, domain.ErrQuizNotStarted):
		redirect(w, r, "/")
	case err != nil:
		h.fail(w, r, err)
	case finished:
		redirect(w, r, "/end")
	default:
		redirect(w, r, "/next")
	}
}

func (h *Handler) question(w http.ResponseWriter, r *http.Request) {
	step, err := h.svc.Quiz.Current(r.Context(), sessionID(r.Context()))
	if h.quizRedirect(w, r, err) {
		return
	}
	h.render(w, r, http.StatusOK, "question", view{Title: "Question " + strconv.Itoa(step.Number), Data: step})
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Quiz.Answer(r.Context(), sessionID(r.Context()), r.PostFormValue("response"))
	if h.quizRedirect(w, r, err) {
		return
	}
	if res.Answered {
		if err := h.flash(r.Context(), res.Feedback); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	redirect(w, r, "/main")
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Quiz.Summary(r.Context(), sessionID(r.Context()))
	if h.quizRedirect(w, r, err) {
		return
	}
	h.render(w, r, http.StatusOK, "end", view{Title: "Results", Data: sum})
}

func (h *Handler) submitName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, err := h.svc.Quiz.SubmitName(ctx, sessionID(ctx), r.PostFormValue("name"))
	if err != nil && domain.IsUserError(err) {
		sum, sumErr := h.svc.Quiz.Summary(ctx, sessionID(ctx))
		if h.quizRedirect(w, r, sumErr) {
			return
		}
		h.render(w, r, http.StatusBadRequest, "end", view{Title: "Results", Error: err.Error(), Data: sum})
		return
	}
	if h.quizRedirect(w, r, err) {
		return
	}
	if err := h.flash(ctx, "Score saved"); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, "/end")
}

// quizRedirect handles the quiz state errors shared by the quiz pages and reports
// whether a response was written.
func (h *Handler) quizRedirect(w http.ResponseWriter, r *http.Request, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, domain.ErrQuizNotStarted):
		redirect(w, r, "/")
	case errors.Is(err, domain.ErrQuizFinished):
		redirect(w, r, "/end")
	case errors.Is(err, domain.ErrQuizInProgress):
		redirect(w, r, "/next")
	default:
		h.fail(w, r, err)
	}
	return true
}
