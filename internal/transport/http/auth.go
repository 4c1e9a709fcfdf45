package http

import (
	"errors"
	"net/http"

	"brainquiz/internal/domain"
)

type credentialsForm struct {
	Username string
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", view{Title: "Log in", Data: credentialsForm{}})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	name, err := h.svc.Credentials.Verify(r.Context(), username, r.PostFormValue("password"))
	switch {
	case errors.Is(err, domain.ErrUnknownUser):
		h.render(w, r, http.StatusUnauthorized, "login", view{Title: "Log in", Error: "Invalid username", Data: credentialsForm{Username: username}})
		return
	case errors.Is(err, domain.ErrInvalidCredential):
		h.render(w, r, http.StatusUnauthorized, "login", view{Title: "Log in", Error: "Incorrect password", Data: credentialsForm{Username: username}})
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}

	err = h.update(r.Context(), func(s *domain.Session) {
		s.Authenticated = true
		s.Username = name
		s.Flash("You were logged in")
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, "/database")
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Quiz.Abandon(r.Context(), sessionID(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	err := h.update(r.Context(), func(s *domain.Session) {
		s.Authenticated = false
		s.Username = ""
		s.Flash("You were logged out")
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, "/")
}

func (h *Handler) createAccountForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "create_account", view{Title: "Create account", Data: credentialsForm{}})
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	err := h.svc.Credentials.Register(r.Context(), username, r.PostFormValue("password"), r.PostFormValue("password_confirm"))
	if err != nil {
		if !domain.IsUserError(err) {
			h.fail(w, r, err)
			return
		}
		msg := err.Error()
		if errors.Is(err, domain.ErrDuplicateUser) {
			msg = "Username already in use. Please choose another."
		}
		h.render(w, r, http.StatusBadRequest, "create_account", view{Title: "Create account", Error: msg, Data: credentialsForm{Username: username}})
		return
	}

	if err := h.flash(r.Context(), "Account created"); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, "/login")
}
