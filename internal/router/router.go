package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rada-learning/internal/handlers"
	"rada-learning/internal/middleware"
)

func New(
	jwtAuth *middleware.JWTAuth,
	createLimiter *middleware.RateLimiter,
	catalogHandler *handlers.CatalogHandler,
	sessionHandler *handlers.SessionHandler,
	healthHandler *handlers.HealthHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtAuth.Middleware)

		// ──── Catalog (stateless) ────
		r.Get("/catalog", catalogHandler.List)
		r.Get("/challenges", catalogHandler.Challenges)
		r.Get("/challenges/{id}", catalogHandler.Challenge)

		// ──── Learner Sessions ────
		r.Route("/sessions", func(r chi.Router) {
			r.With(createLimiter.Middleware).Post("/", sessionHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Delete("/", sessionHandler.Delete)
				r.Get("/ws", sessionHandler.Stream)

				r.Post("/home", sessionHandler.Home)
				r.Post("/browse", sessionHandler.Browse)
				r.Post("/back", sessionHandler.Back)

				r.Post("/catalog/filter", sessionHandler.SetFilter)
				r.Post("/catalog/more", sessionHandler.ShowMore)

				r.Post("/challenges", sessionHandler.OpenChallenges)
				r.Post("/challenges/{challengeId}", sessionHandler.OpenChallenge)

				r.Post("/modules/{moduleId}", sessionHandler.OpenModule)
				r.Post("/module/retry", sessionHandler.RetryModule)

				r.Post("/lessons/{lessonId}", sessionHandler.OpenLesson)
				r.Post("/lesson/next", sessionHandler.NextSection)
				r.Post("/lesson/previous", sessionHandler.PreviousSection)

				r.Post("/quizzes/{quizId}", sessionHandler.OpenQuiz)
				r.Post("/quiz/select", sessionHandler.SelectAnswer)
				r.Post("/quiz/advance", sessionHandler.Advance)
				r.Post("/quiz/previous", sessionHandler.PreviousQuestion)
				r.Post("/quiz/retry", sessionHandler.RetryQuiz)
				r.Post("/quiz/continue", sessionHandler.ContinueLearning)
			})
		})
	})

	return r
}
