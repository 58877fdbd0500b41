package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"trail-backend/internal/middleware"
	"trail-backend/internal/models"
	"trail-backend/internal/quiz"
	"trail-backend/internal/services"
	"trail-backend/internal/wizard"
)

type AuthHandler struct {
	jwtAuth *middleware.JWTAuth
}

func NewAuthHandler(jwtAuth *middleware.JWTAuth) *AuthHandler {
	return &AuthHandler{jwtAuth: jwtAuth}
}

type anonymousResponse struct {
	Token     string    `json:"token"`
	OwnerID   uuid.UUID `json:"ownerId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Anonymous hands out an owner token. A caller that already holds a valid
// token gets a fresh one for the same owner.
func (h *AuthHandler) Anonymous(w http.ResponseWriter, r *http.Request) {
	ownerID := uuid.New()
	if tokenStr, ok := middleware.BearerToken(r); ok {
		if existing, err := h.jwtAuth.ParseOwnerToken(tokenStr); err == nil {
			ownerID = existing
		}
	}

	token, expiresAt, err := h.jwtAuth.IssueOwnerToken(ownerID)
	if err != nil {
		handleServiceError(w, r, fmt.Errorf("issue owner token: %w", err))
		return
	}

	writeJSON(w, http.StatusOK, anonymousResponse{Token: token, OwnerID: ownerID, ExpiresAt: expiresAt})
}

// Shared helpers

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationFields turns validator errors into a field -> message map keyed
// by JSON path, e.g. "courseSpecs.resources[0].type".
func validationFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := fe.Namespace()
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		fields[key] = fieldMessage(fe)
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		return fe.Field() + " must be at most " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

// decodeBody decodes and validates a JSON body. On failure it writes the 400
// response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", validationFields(err), r))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.APIError {
	return models.APIError{
		Error:     message,
		Code:      code,
		RequestID: r.Header.Get(middleware.RequestIDHeader),
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.APIError {
	resp := errorResp(code, message, r)
	resp.Fields = fields
	return resp
}

func errorRespWithDetails(code, message, details string, r *http.Request) models.APIError {
	resp := errorResp(code, message, r)
	resp.Details = details
	return resp
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch e := err.(type) {
	case *services.ValidationError:
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", e.Fields, r))
		return
	case *services.ConflictError:
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", e.Message, r))
		return
	case *services.NotFoundError:
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", e.Message, r))
		return
	case *services.ForbiddenError:
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", e.Message, r))
		return
	}

	if ge, ok := services.AsGenerationError(err); ok {
		writeJSON(w, http.StatusInternalServerError, errorRespWithDetails(ge.Code(), ge.Message, ge.Details, r))
		return
	}

	switch {
	case errors.Is(err, wizard.ErrInvalidTransition),
		errors.Is(err, wizard.ErrGenerationInFlight),
		errors.Is(err, wizard.ErrStaleTicket),
		errors.Is(err, quiz.ErrNotAnswered):
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", err.Error(), r))
	case errors.Is(err, wizard.ErrInvalidInput),
		errors.Is(err, wizard.ErrResourceTitleRequired),
		errors.Is(err, quiz.ErrOptionOutOfRange):
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}

// pathUUID parses a chi URL parameter as a UUID, writing a 400 on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid "+param, r))
		return uuid.Nil, false
	}
	return id, true
}
