package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"trail-backend/internal/middleware"
	"trail-backend/internal/models"
	"trail-backend/internal/services"
	"trail-backend/internal/wizard"
)

type WizardHandler struct {
	wizards *services.WizardService
}

func NewWizardHandler(wizards *services.WizardService) *WizardHandler {
	return &WizardHandler{wizards: wizards}
}

func (h *WizardHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())

	st, err := h.wizards.Create(r.Context(), ownerID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, st)
}

func (h *WizardHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	st, err := h.wizards.Get(r.Context(), ownerID, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, st)
}

func (h *WizardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.wizards.Delete(r.Context(), ownerID, id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type courseTypeRequest struct {
	CourseType models.CourseType `json:"courseType" validate:"required"`
}

func (h *WizardHandler) ChooseCourseType(w http.ResponseWriter, r *http.Request) {
	var req courseTypeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.apply(w, r, func(st *wizard.State) error {
		return st.ChooseCourseType(req.CourseType)
	})
}

func (h *WizardHandler) AddResource(w http.ResponseWriter, r *http.Request) {
	var req models.Resource
	if !decodeBody(w, r, &req) {
		return
	}
	h.apply(w, r, func(st *wizard.State) error {
		return st.AddResource(req)
	})
}

func (h *WizardHandler) RemoveResource(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid index", r))
		return
	}
	h.apply(w, r, func(st *wizard.State) error {
		return st.RemoveResource(index)
	})
}

func (h *WizardHandler) SubmitSpecs(w http.ResponseWriter, r *http.Request) {
	var req models.CourseSpecs
	if !decodeBody(w, r, &req) {
		return
	}
	h.apply(w, r, func(st *wizard.State) error {
		return st.SubmitSpecs(req)
	})
}

func (h *WizardHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, (*wizard.State).Next)
}

func (h *WizardHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, (*wizard.State).Back)
}

type settingsRequest struct {
	ModuleCount  int  `json:"moduleCount" validate:"min=1,max=20"`
	ExamCount    int  `json:"examCount" validate:"min=0,max=5"`
	IncludeNotes bool `json:"includeNotes"`
}

func (h *WizardHandler) Configure(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.apply(w, r, func(st *wizard.State) error {
		return st.Configure(wizard.Settings{
			ModuleCount:  req.ModuleCount,
			ExamCount:    req.ExamCount,
			IncludeNotes: req.IncludeNotes,
		})
	})
}

// Generate queues generation and answers 202; progress and the result are
// pushed over the websocket.
func (h *WizardHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	st, err := h.wizards.StartGeneration(r.Context(), ownerID, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, st)
}

func (h *WizardHandler) DismissError(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, (*wizard.State).DismissError)
}

func (h *WizardHandler) OpenPreview(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, (*wizard.State).OpenPreview)
}

func (h *WizardHandler) ClosePreview(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, (*wizard.State).ClosePreview)
}

type navigateRequest struct {
	Direction wizard.Direction `json:"direction" validate:"required"`
}

func (h *WizardHandler) NavigateModule(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.apply(w, r, func(st *wizard.State) error {
		return st.NavigateModule(req.Direction)
	})
}

type viewModeRequest struct {
	Mode wizard.ViewMode `json:"mode" validate:"required"`
}

func (h *WizardHandler) SetViewMode(w http.ResponseWriter, r *http.Request) {
	var req viewModeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.apply(w, r, func(st *wizard.State) error {
		return st.SetViewMode(req.Mode)
	})
}

func (h *WizardHandler) ShowLanding(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, (*wizard.State).ShowLanding)
}

func (h *WizardHandler) HideLanding(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, (*wizard.State).HideLanding)
}

func (h *WizardHandler) CreateNew(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, (*wizard.State).CreateNew)
}

type selectCourseRequest struct {
	CourseID uuid.UUID `json:"courseId" validate:"required"`
}

func (h *WizardHandler) SelectCourse(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req selectCourseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	st, err := h.wizards.SelectCourse(r.Context(), ownerID, id, req.CourseID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, st)
}

func (h *WizardHandler) apply(w http.ResponseWriter, r *http.Request, action func(*wizard.State) error) {
	ownerID := middleware.GetOwnerID(r.Context())
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	st, err := h.wizards.Apply(r.Context(), ownerID, id, action)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, st)
}
