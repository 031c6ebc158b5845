package dashboard

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	roleAdmin      = "admin"
	roleDepartment = "department"
)

// page is the data handed to the log template.
type page struct {
	Lang          string
	Languages     []Language
	Role          string
	Path          string
	BackURL       string
	Filter        Filter
	FilterOptions []string
	Statuses      []models.Status
	Rows          []Row
	Error         string
}

// Server serves the staff dashboard pages
type Server struct {
	view        *LogView
	translator  *Translator
	tmpl        *template.Template
	defaultLang string
	logger      *zap.SugaredLogger
}

// NewServer parses the embedded templates and creates a dashboard server.
func NewServer(view *LogView, translator *Translator, defaultLang string, logger *zap.SugaredLogger) (*Server, error) {
	if !translator.Supports(defaultLang) {
		defaultLang = DefaultLang
	}

	tmpl, err := template.New("dashboard").Funcs(template.FuncMap{
		"t":            translator.T,
		"deref":        models.StrVal,
		"statusBadge":  StatusBadge,
		"urgencyBadge": UrgencyBadge,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Server{
		view:        view,
		translator:  translator,
		tmpl:        tmpl,
		defaultLang: defaultLang,
		logger:      logger,
	}, nil
}

// Routes mounts the dashboard pages on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/", s.renderLog(""))
	r.Get("/admindashboard", s.renderLog(roleAdmin))
	r.Get("/department", s.renderLog(roleDepartment))
	r.Post("/complaints/{id}/status", s.updateStatus)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
}

func (s *Server) renderLog(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		p := page{
			Lang:          s.lang(q.Get("lang")),
			Languages:     s.translator.Languages(),
			Role:          role,
			Path:          r.URL.Path,
			BackURL:       r.URL.RequestURI(),
			Filter:        Filter{Status: q.Get("status"), Search: q.Get("q")},
			FilterOptions: FilterOptions,
			Statuses:      models.Statuses,
			Error:         q.Get("error"),
		}
		if p.Filter.Status == "" {
			p.Filter.Status = FilterAll
		}

		if err := s.view.Load(r.Context()); err != nil {
			p.Error = "load_error"
		}
		p.Rows = s.view.Rows(p.Filter)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.tmpl.ExecuteTemplate(w, "log", p); err != nil {
			s.logger.Errorw("Failed to render complaint log", "error", err)
		}
	}
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := safeBack(r.FormValue("back"))

	status, err := models.ParseStatus(r.FormValue("status"))
	if err == nil {
		err = s.view.UpdateStatus(r.Context(), id, status)
	}
	if err != nil {
		s.logger.Warnw("Status update rejected", "id", id, "error", err)
		back = withQuery(back, "error", "update_error")
	}

	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (s *Server) lang(requested string) string {
	if requested != "" && s.translator.Supports(requested) {
		return requested
	}
	return s.defaultLang
}

// safeBack only accepts local paths as redirect targets.
func safeBack(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || raw == "" || u.IsAbs() || u.Host != "" || len(u.Path) == 0 || u.Path[0] != '/' {
		return "/"
	}
	return u.RequestURI()
}

func withQuery(target, key, value string) string {
	u, err := url.Parse(target)
	if err != nil {
		return "/"
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.RequestURI()
}
