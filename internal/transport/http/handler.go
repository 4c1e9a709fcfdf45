package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"brainquiz/internal/app"
	"brainquiz/internal/domain"
	"github.com/gorilla/mux"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{
	"login", "create_account", "welcome", "question", "end", "database", "admin", "error",
}

// Services are the use cases the web front end drives.
type Services struct {
	Credentials *app.CredentialService
	Questions   *app.QuestionService
	Quiz        *app.QuizService
	Moderation  *app.ModerationService
	Scores      *app.ScoreBoard
	Sessions    app.SessionRepository
}

// Options tune the session cookie.
type Options struct {
	CookieName string
	SessionTTL time.Duration
	// Secure marks the cookie HTTPS-only.
	Secure bool
}

// Handler serves the quiz HTML pages and the leaderboard feed.
type Handler struct {
	svc       Services
	opts      Options
	templates map[string]*template.Template
	ws        *WSHandler
}

func NewHandler(svc Services, opts Options) (*Handler, error) {
	if opts.CookieName == "" {
		opts.CookieName = "quiz_session"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}

	funcs := template.FuncMap{
		"label":   func(i int) string { return domain.Labels[i] },
		"percent": func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
		"bucket": func(title string, changes []domain.ProposedChange) proposalBucket {
			return proposalBucket{Title: title, Changes: changes}
		},
	}
	templates := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/partials.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		templates[name] = t
	}

	return &Handler{
		svc:       svc,
		opts:      opts,
		templates: templates,
		ws:        NewWSHandler(svc.Scores),
	}, nil
}

// Routes builds the full router.
func (h *Handler) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(logRequests)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/ws/leaderboard", h.ws.ServeWS).Methods(http.MethodGet)

	site := r.PathPrefix("/").Subrouter()
	site.Use(h.withSession)

	site.HandleFunc("/login", h.loginForm).Methods(http.MethodGet)
	site.HandleFunc("/login", h.login).Methods(http.MethodPost)
	site.HandleFunc("/logout", h.logout).Methods(http.MethodGet)
	site.HandleFunc("/create_account", h.createAccountForm).Methods(http.MethodGet)
	site.HandleFunc("/create_account", h.createAccount).Methods(http.MethodPost)

	site.Handle("/database", h.requireLogin(http.HandlerFunc(h.databaseView))).Methods(http.MethodGet)
	site.Handle("/database", h.requireLogin(http.HandlerFunc(h.propose))).Methods(http.MethodPost)
	site.Handle("/admin", h.requireAdmin(http.HandlerFunc(h.adminView))).Methods(http.MethodGet)
	site.Handle("/admin", h.requireAdmin(http.HandlerFunc(h.review))).Methods(http.MethodPost)

	site.HandleFunc("/", h.welcome).Methods(http.MethodGet)
	site.HandleFunc("/", h.start).Methods(http.MethodPost)
	site.HandleFunc("/main", h.route).Methods(http.MethodGet)
	site.HandleFunc("/next", h.question).Methods(http.MethodGet)
	site.HandleFunc("/next", h.answer).Methods(http.MethodPost)
	site.HandleFunc("/end", h.summary).Methods(http.MethodGet)
	site.HandleFunc("/end", h.submitName).Methods(http.MethodPost)
	return r
}

type proposalBucket struct {
	Title   string
	Changes []domain.ProposedChange
}

// view is what every page template receives.
type view struct {
	Title         string
	Username      string
	Authenticated bool
	Admin         bool
	Flashes       []string
	Error         string
	Data          any
}

// render executes a page into a buffer first so a template failure never leaves a
// half-written response. Pending flashes are consumed.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	if sessionID(r.Context()) != "" {
		err := h.update(r.Context(), func(s *domain.Session) {
			v.Flashes = s.PopFlashes()
			v.Username = s.Username
			v.Authenticated = s.Authenticated
		})
		if err != nil {
			slog.Error("load session for render", "err", err)
		}
	}
	v.Admin = v.Authenticated && h.svc.Credentials.IsAdmin(v.Username)

	var buf bytes.Buffer
	if err := h.templates[page].ExecuteTemplate(&buf, "layout", v); err != nil {
		slog.Error("render template", "page", page, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// fail renders the generic error page for storage and internal failures.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	h.render(w, r, http.StatusInternalServerError, "error", view{Title: "Something went wrong"})
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}
