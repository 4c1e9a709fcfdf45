package http

import (
	"context"
	"errors"
	"net/http"

	"brainquiz/internal/domain"
	"github.com/google/uuid"
)

type sessionKey struct{}

func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// withSession makes sure every page request carries a stored session and puts its id
// into the request context. Handlers load and save the record themselves.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var id string
		if c, err := r.Cookie(h.opts.CookieName); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				id = c.Value
			}
		}
		if id != "" {
			if _, err := h.svc.Sessions.Get(ctx, id); err != nil {
				if !errors.Is(err, domain.ErrSessionNotFound) {
					h.fail(w, r, err)
					return
				}
				id = ""
			}
		}
		if id == "" {
			id = uuid.NewString()
			if err := h.svc.Sessions.Save(ctx, domain.Session{ID: id}); err != nil {
				h.fail(w, r, err)
				return
			}
		}

		http.SetCookie(w, &http.Cookie{
			Name:     h.opts.CookieName,
			Value:    id,
			Path:     "/",
			MaxAge:   int(h.opts.SessionTTL.Seconds()),
			HttpOnly: true,
			Secure:   h.opts.Secure,
			SameSite: http.SameSiteLaxMode,
		})
		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, sessionKey{}, id)))
	})
}

// update loads the request's session, applies fn and stores the result.
func (h *Handler) update(ctx context.Context, fn func(*domain.Session)) error {
	id := sessionID(ctx)
	if id == "" {
		return domain.ErrSessionNotFound
	}
	sess, err := h.svc.Sessions.Get(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		sess = domain.Session{ID: id}
	} else if err != nil {
		return err
	}
	fn(&sess)
	return h.svc.Sessions.Save(ctx, sess)
}

func (h *Handler) flash(ctx context.Context, msg string) error {
	return h.update(ctx, func(s *domain.Session) { s.Flash(msg) })
}

func (h *Handler) currentSession(ctx context.Context) (domain.Session, error) {
	sess, err := h.svc.Sessions.Get(ctx, sessionID(ctx))
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.Session{ID: sessionID(ctx)}, nil
	}
	return sess, err
}
