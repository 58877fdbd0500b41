package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"trail-backend/internal/handlers"
	"trail-backend/internal/middleware"
	"trail-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authLimiter *middleware.RateLimiter,
	generateLimiter *middleware.RateLimiter,
	authHandler *handlers.AuthHandler,
	courseHandler *handlers.CourseHandler,
	wizardHandler *handlers.WizardHandler,
	quizHandler *handlers.QuizHandler,
	wsHub *websocket.Hub,
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
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/anonymous", authHandler.Anonymous)
		})

		// ──── Generation Routes (public) ────
		r.Route("/generate", func(r chi.Router) {
			r.Use(generateLimiter.Middleware)
			r.Post("/", courseHandler.Generate)
			r.Post("/description", courseHandler.Describe)
		})

		// ──── Course Library Routes ────
		r.Route("/courses", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", courseHandler.List)
			r.Get("/{id}", courseHandler.Get)
			r.Delete("/{id}", courseHandler.Delete)
			r.Post("/{id}/quiz-sessions", courseHandler.StartQuiz)
		})

		// ──── Wizard Routes ────
		r.Route("/wizard/sessions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", wizardHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", wizardHandler.Get)
				r.Delete("/", wizardHandler.Delete)
				r.Post("/course-type", wizardHandler.ChooseCourseType)
				r.Post("/resources", wizardHandler.AddResource)
				r.Delete("/resources/{index}", wizardHandler.RemoveResource)
				r.Post("/specs", wizardHandler.SubmitSpecs)
				r.Post("/next", wizardHandler.Next)
				r.Post("/back", wizardHandler.Back)
				r.Put("/settings", wizardHandler.Configure)
				r.With(generateLimiter.Middleware).Post("/generate", wizardHandler.Generate)
				r.Post("/dismiss-error", wizardHandler.DismissError)
				r.Post("/preview", wizardHandler.OpenPreview)
				r.Delete("/preview", wizardHandler.ClosePreview)
				r.Post("/preview/navigate", wizardHandler.NavigateModule)
				r.Put("/preview/mode", wizardHandler.SetViewMode)
				r.Post("/landing", wizardHandler.ShowLanding)
				r.Delete("/landing", wizardHandler.HideLanding)
				r.Post("/create-new", wizardHandler.CreateNew)
				r.Post("/select-course", wizardHandler.SelectCourse)
			})
		})

		// ──── Quiz Session Routes ────
		r.Route("/quiz-sessions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/{id}", quizHandler.Get)
			r.Delete("/{id}", quizHandler.Leave)
			r.Post("/{id}/answer", quizHandler.Answer)
			r.Post("/{id}/next", quizHandler.Next)
			r.Post("/{id}/previous", quizHandler.Previous)
			r.Post("/{id}/retake", quizHandler.Retake)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
