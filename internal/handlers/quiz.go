package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"trail-backend/internal/middleware"
	"trail-backend/internal/quiz"
	"trail-backend/internal/services"
)

type QuizHandler struct {
	quizzes *services.QuizService
}

func NewQuizHandler(quizzes *services.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

// quizSessionView is what clients see of a quiz session. Answers stay hidden
// until the engine reveals them.
type quizSessionView struct {
	ID          uuid.UUID `json:"id"`
	CourseID    uuid.UUID `json:"courseId"`
	ModuleIndex int       `json:"moduleIndex"`
	Title       string    `json:"title"`
	quiz.View
}

func quizSessionResponse(qs *services.QuizSession) quizSessionView {
	return quizSessionView{
		ID:          qs.ID,
		CourseID:    qs.CourseID,
		ModuleIndex: qs.ModuleIndex,
		Title:       qs.Title,
		View:        qs.View(),
	}
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	qs, err := h.quizzes.Get(r.Context(), ownerID, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quizSessionResponse(qs))
}

type answerRequest struct {
	Option *int `json:"option" validate:"required"`
}

func (h *QuizHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.apply(w, r, func(s *quiz.Session) error {
		return s.Select(*req.Option)
	})
}

func (h *QuizHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(s *quiz.Session) error {
		return s.Next()
	})
}

func (h *QuizHandler) Previous(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(s *quiz.Session) error {
		s.Previous()
		return nil
	})
}

func (h *QuizHandler) Retake(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(s *quiz.Session) error {
		s.Retake()
		return nil
	})
}

func (h *QuizHandler) Leave(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.quizzes.Leave(r.Context(), ownerID, id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *QuizHandler) apply(w http.ResponseWriter, r *http.Request, action func(*quiz.Session) error) {
	ownerID := middleware.GetOwnerID(r.Context())
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	qs, err := h.quizzes.Apply(r.Context(), ownerID, id, action)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quizSessionResponse(qs))
}
