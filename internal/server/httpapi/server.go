package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/fieldreport/internal/logging"
	"github.com/dmitrijs2005/fieldreport/internal/server/models"
	"github.com/dmitrijs2005/fieldreport/internal/server/services"
)

// UserProvider authenticates agents. Satisfied by *services.UserService.
type UserProvider interface {
	Login(ctx context.Context, userName, password string) (string, *models.User, error)
}

// ReportProvider is the report intake and triage surface. Satisfied by
// *services.ReportService.
type ReportProvider interface {
	Create(ctx context.Context, rec *models.Report) (string, error)
	List(ctx context.Context, page, limit int) (*services.Page, error)
	EvidenceURL(ctx context.Context, rec *models.Report) string
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

// PersonProvider is the community-contact surface. Satisfied by
// *services.PersonService.
type PersonProvider interface {
	Create(ctx context.Context, rec *models.Person) (string, error)
	List(ctx context.Context, page, limit int) (*services.PersonPage, error)
	Delete(ctx context.Context, id string) error
}

// Server wires the HTTP handlers to the service layer.
type Server struct {
	users     UserProvider
	reports   ReportProvider
	people    PersonProvider
	jwtSecret []byte
	log       logging.Logger
}

func NewServer(users UserProvider, reports ReportProvider, people PersonProvider, jwtSecret []byte, log logging.Logger) *Server {
	return &Server{
		users:     users,
		reports:   reports,
		people:    people,
		jwtSecret: jwtSecret,
		log:       log.With("module", "httpapi"),
	}
}

// Router assembles the API routes. Health and login are public, everything
// else requires a bearer token.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(JWTAuth(s.jwtSecret))

		r.Route("/api/reports", func(r chi.Router) {
			r.Post("/", s.handleCreateReport)
			r.Get("/", s.handleListReports)
			r.Put("/{id}", s.handleUpdateReportStatus)
			r.Delete("/{id}", s.handleDeleteReport)
		})

		r.Route("/api/people", func(r chi.Router) {
			r.Post("/", s.handleCreatePerson)
			r.Get("/", s.handleListPeople)
			r.Delete("/{id}", s.handleDeletePerson)
		})
	})

	return r
}

func pageParams(r *http.Request) (page, limit int) {
	page = intQuery(r, "page", 1)
	limit = intQuery(r, "limit", 20)
	return page, limit
}
