package http

import (
	"context"
	"net/http"
	"time"

	"github.com/certportal/internal/application/admin"
	"github.com/certportal/internal/application/auth"
	"github.com/certportal/internal/application/certificate"
	"github.com/certportal/internal/application/event"
	"github.com/certportal/internal/application/generation"
	"github.com/certportal/internal/application/stats"
	"github.com/certportal/internal/application/verification"
	"github.com/certportal/internal/config"
	"github.com/certportal/internal/domain"
	jwtinfra "github.com/certportal/internal/infrastructure/jwt"
	"github.com/certportal/internal/infrastructure/mail"
	"github.com/certportal/internal/infrastructure/sns"
	"github.com/certportal/internal/transport/http/handler"
	appmiddleware "github.com/certportal/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// uploadTTL is how long a staged recipient list stays usable.
const uploadTTL = 24 * time.Hour

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	CertificateRepo CertificateRepository
	JobRepo         JobRepository
	UploadRepo      UploadRepository
	EventRepo       EventRepository
	AdminRepo       AdminRepository
	ObjectStore     ObjectStore
	Verifier        IdentityVerifier
	Renderer        CertificateRenderer
	Mailer          mail.Mailer
	Publisher       sns.JobPublisher
	JWTProvider     *jwtinfra.Provider
	Health          HealthProbe
}

// Router is the application handler plus the background work it owns.
type Router struct {
	http.Handler
	events     event.Service
	generation generation.Service
	limiters   []*appmiddleware.RateLimiter
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) *Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)
	operator := appmiddleware.RequireRole(domain.RoleAdmin, domain.RoleOrganizer)
	adminOnly := appmiddleware.RequireRole(domain.RoleAdmin)

	verifyRL := appmiddleware.PerMinute(cfg.VerifyRatePerMinute).TrustProxies(cfg.TrustedProxies)
	// 5 requests/second, burst of 10 on sign-in endpoints.
	loginRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10).TrustProxies(cfg.TrustedProxies)

	eventSvc := event.NewService(deps.EventRepo)
	authSvc := auth.NewService(auth.ServiceDeps{
		AdminRepo:   deps.AdminRepo,
		Verifier:    deps.Verifier,
		JWTProvider: deps.JWTProvider,
		AdminEmails: cfg.AdminEmails,
	})
	adminSvc := admin.NewService(deps.AdminRepo)
	verifySvc := verification.NewService(verification.ServiceDeps{
		Certificates: deps.CertificateRepo,
		Events:       eventSvc,
		Storage:      deps.ObjectStore,
		URLTTL:       cfg.DownloadURLTTL,
	})
	genSvc := generation.NewService(generation.ServiceDeps{
		Uploads:            deps.UploadRepo,
		Jobs:               deps.JobRepo,
		Certificates:       deps.CertificateRepo,
		Storage:            deps.ObjectStore,
		Events:             eventSvc,
		Renderer:           deps.Renderer,
		Mailer:             deps.Mailer,
		Publisher:          deps.Publisher,
		Workers:            cfg.GenerationWorkers,
		TemplateRequired:   cfg.TemplateMode == config.TemplateUpload,
		DefaultTemplateKey: cfg.DefaultTemplateKey,
		PublicBaseURL:      cfg.PublicBaseURL,
		MailSubject:        cfg.MailSubject,
		UploadTTL:          uploadTTL,
	})
	certSvc := certificate.NewService(deps.CertificateRepo, deps.ObjectStore, eventSvc)
	statsSvc := stats.NewService(deps.CertificateRepo, eventSvc)

	healthH := handler.NewHealthHandler(deps.Health)
	verifyH := handler.NewVerifyHandler(verifySvc)
	authH := handler.NewAuthHandler(authSvc)
	genH := handler.NewGenerationHandler(genSvc, cfg.MaxRecipientBytes, cfg.MaxTemplateBytes)
	eventH := handler.NewEventHandler(eventSvc)
	adminH := handler.NewAdminHandler(adminSvc)
	certH := handler.NewCertificateHandler(certSvc)
	statsH := handler.NewStatsHandler(statsSvc)

	// ── Public routes (no auth) ──────────────────────────────────────────
	r.Get("/health", healthH.Health)
	r.With(verifyRL.Limit).Post("/verify", verifyH.Verify)
	r.With(loginRL.Limit).Post("/admin/firebase-login", authH.FirebaseLogin)
	r.With(loginRL.Limit).Post("/admin/login", authH.Login)
	r.With(loginRL.Limit).Post("/admin/signup", authH.Signup)

	// ── Authenticated routes ─────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(authMw)

		r.Get("/stats", statsH.Summary)
		r.Get("/admin/me", adminH.Me)
		r.Get("/admin/events", eventH.List)
		r.Get("/admin/jobs/{id}", genH.GetJob)

		// Operators
		r.Group(func(r chi.Router) {
			r.Use(operator)

			r.Post("/admin/upload-csv", genH.UploadCSV)
			r.Post("/admin/generate-bulk", genH.GenerateBulk)
			r.Get("/admin/events/{id}/certificates", certH.List)
		})

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(adminOnly)

			r.Put("/admin/events/{id}", eventH.Upsert)
			r.Delete("/admin/events/{id}/certificates/{email}", certH.Revoke)
			r.Get("/admin/admins", adminH.List)
			r.Put("/admin/admins/{email}/role", adminH.SetRole)
		})
	})

	return &Router{
		Handler:    r,
		events:     eventSvc,
		generation: genSvc,
		limiters:   []*appmiddleware.RateLimiter{verifyRL, loginRL},
	}
}

// SeedEvents makes sure every configured event exists.
func (rt *Router) SeedEvents(ctx context.Context, names []string) error {
	return rt.events.Bootstrap(ctx, names)
}

// Shutdown drains running generation jobs and stops the limiter sweepers.
func (rt *Router) Shutdown(ctx context.Context) error {
	for _, l := range rt.limiters {
		l.Stop()
	}
	return rt.generation.Shutdown(ctx)
}
