package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/construtivo/construtivo-api/internal/domain"
	"github.com/construtivo/construtivo-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var validate = validator.New()

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondValidationError sends a standardized validation error response with
// per-field messages
func respondValidationError(w http.ResponseWriter, err error) {
	fieldErrors := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fieldErrors[toJSONFieldName(fe.Field())] = formatValidationError(fe)
		}
	}

	respondJSON(w, http.StatusBadRequest, domain.APIError{
		Type:   domain.ErrorTypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
		Detail: "One or more fields failed validation",
		Errors: fieldErrors,
	})
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", toJSONFieldName(fe.Field()))
	case "email":
		return "Must be a valid email address"
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s items", fe.Param())
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	default:
		return domain.GetValidationMessage(fe.Tag())
	}
}

// toJSONFieldName converts a Go struct field name to its JSON equivalent
func toJSONFieldName(field string) string {
	if len(field) == 0 {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// respondWithError sends a standardized JSON error response
func respondWithError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, domain.APIError{
		Type:   errorType(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: message,
	})
}

func errorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrorTypeBadRequest
	case http.StatusUnauthorized:
		return domain.ErrorTypeUnauthorized
	case http.StatusForbidden:
		return domain.ErrorTypeForbidden
	case http.StatusNotFound:
		return domain.ErrorTypeNotFound
	case http.StatusConflict:
		return domain.ErrorTypeConflict
	default:
		return domain.ErrorTypeInternal
	}
}

// respondServiceError translates service-level errors into HTTP responses.
// Business rule violations surface as 409 with the rule's message so the
// browser can show it directly.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Recurso não encontrado")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, service.ErrInvalidInput.Error())
	case errors.Is(err, service.ErrParcelasDivergem):
		respondWithError(w, http.StatusBadRequest, service.ErrParcelasDivergem.Error())
	case errors.Is(err, service.ErrPedidoJaAprovado),
		errors.Is(err, service.ErrMedicaoJaAprovada),
		errors.Is(err, service.ErrOrcamentoExcedido),
		errors.Is(err, service.ErrItemIndisponivel),
		errors.Is(err, service.ErrConflitoVersao),
		errors.Is(err, service.ErrCNPJDuplicado),
		errors.Is(err, service.ErrPossuiDependencias):
		respondWithError(w, http.StatusConflict, err.Error())
	default:
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == domain.PgForeignKeyViolation {
			respondWithError(w, http.StatusConflict, "O registro possui vínculos e não pode ser removido")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Erro interno do servidor")
	}
}

// parseUUIDParam extracts and parses a UUID path parameter
func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

// parseUUIDQuery parses an optional UUID query parameter
func parseUUIDQuery(r *http.Request, name string) (*uuid.UUID, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func decodeAndValidate(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return err
	}
	return validate.Struct(target)
}
