package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"medilink-backend/internal/handlers"
	"medilink-backend/internal/middleware"
)

func New(
	jwtAuth *middleware.JWTAuth,
	triageHandler *handlers.TriageHandler,
	chatHandler *handlers.ChatHandler,
	wsHandler *handlers.WSHandler,
	doctorHandler *handlers.DoctorHandler,
	appointmentHandler *handlers.AppointmentHandler,
	reportHandler *handlers.ReportHandler,
	meHandler *handlers.MeHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Triage rate limiter (20 req/min per IP); each message costs a
	// completion call upstream.
	triageLimiter := middleware.NewRateLimiter(20, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Triage Routes ────
		r.Route("/triage", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/session", triageHandler.GetSession)

			r.Group(func(r chi.Router) {
				r.Use(triageLimiter.Middleware)
				r.Post("/messages", triageHandler.SendMessage)
				r.Post("/image", triageHandler.AnalyzeImage)
				r.Post("/consultation", triageHandler.RequestConsultation)
			})
		})

		// ──── Chat Routes ────
		r.Route("/chat", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/{id}/messages", chatHandler.ListMessages)
			r.Post("/{id}/messages", chatHandler.SendMessage)
		})

		// ──── Doctor Directory ────
		r.Route("/doctors", func(r chi.Router) {
			r.Get("/", doctorHandler.List) // Public
			r.Get("/{id}", doctorHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Get("/mine", doctorHandler.MyDoctors)
			})
		})

		// ──── Appointment Routes ────
		r.Route("/appointments", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", appointmentHandler.List)
			r.Post("/", appointmentHandler.Create)
			r.Delete("/{id}", appointmentHandler.Cancel)
		})

		// ──── Symptom Report Routes ────
		r.Route("/reports", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", reportHandler.ListQueue)
			r.Get("/mine", reportHandler.ListMine)
			r.Get("/{id}", reportHandler.Get)
			r.Put("/{id}/status", reportHandler.UpdateStatus)
		})

		// ──── Profile ────
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/me", meHandler.Get)
		})

		// ──── WebSocket ────
		// Browsers cannot set Authorization headers on WebSocket upgrades,
		// so these authenticate via a token query parameter inside the
		// handler instead of the JWT middleware.
		r.Get("/ws/chat/{id}", wsHandler.ChatSocket)
		r.Get("/ws/updates", wsHandler.UpdatesSocket)
	})

	return r
}
