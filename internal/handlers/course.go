package handlers

import (
	"net/http"

	"trail-backend/internal/middleware"
	"trail-backend/internal/models"
	"trail-backend/internal/services"
)

type CourseHandler struct {
	generator *services.CourseGenerator
	library   *services.CourseLibrary
	quizzes   *services.QuizService
}

func NewCourseHandler(generator *services.CourseGenerator, library *services.CourseLibrary, quizzes *services.QuizService) *CourseHandler {
	return &CourseHandler{generator: generator, library: library, quizzes: quizzes}
}

// Generate runs one synchronous generation. Nothing is persisted.
func (h *CourseHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var cfg models.CourseConfig
	if !decodeBody(w, r, &cfg) {
		return
	}

	course, err := h.generator.Generate(r.Context(), cfg, nil)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.GenerateCourseResponse{Success: true, Course: course})
}

func (h *CourseHandler) Describe(w http.ResponseWriter, r *http.Request) {
	var req models.DescriptionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	description, err := h.generator.Describe(r.Context(), req.ModuleTitle)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.DescriptionResponse{Description: description})
}

func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())

	courses, err := h.library.List(r.Context(), ownerID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"courses": courses})
}

func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	course, err := h.library.Get(r.Context(), ownerID, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.library.Delete(r.Context(), ownerID, id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type startQuizRequest struct {
	ModuleIndex *int `json:"moduleIndex" validate:"omitempty,min=0"`
	FinalExam   bool `json:"finalExam"`
}

// StartQuiz opens a quiz session on a module quiz or the final exam.
func (h *CourseHandler) StartQuiz(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	courseID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req startQuizRequest
	if !decodeBody(w, r, &req) {
		return
	}

	moduleIndex := services.FinalExamIndex
	if !req.FinalExam {
		if req.ModuleIndex == nil {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
				map[string]string{"moduleIndex": "moduleIndex or finalExam is required"}, r))
			return
		}
		moduleIndex = *req.ModuleIndex
	}

	qs, err := h.quizzes.Start(r.Context(), ownerID, courseID, moduleIndex)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, quizSessionResponse(qs))
}
