package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	domerrors "github.com/rejoanahmed/starter-template-sub001/internal/domain/errors"
)

type errorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details []domerrors.FieldError `json:"details,omitempty"`
}

// writeErr sends JSON { "error": message, "code": errCode }. If errCode is empty, a default is used from code.
func writeErr(w http.ResponseWriter, code int, errCode string, message string) {
	if errCode == "" {
		errCode = defaultErrCode(code)
	}
	writeJSON(w, code, errorResponse{Error: message, Code: errCode})
}

func defaultErrCode(httpCode int) string {
	switch httpCode {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusForbidden:
		return ErrCodeForbidden
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusUnprocessableEntity:
		return ErrCodeValidationFailed
	case http.StatusTooManyRequests:
		return ErrCodeRateLimited
	default:
		return ErrCodeInternal
	}
}

// writeError maps a service error onto a status code and body. Internal causes are logged, never sent.
func writeError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, op string, err error) {
	var de domerrors.Error
	if !errors.As(err, &de) {
		de = domerrors.NewInternal("unexpected error", err)
	}
	switch e := de.(type) {
	case *domerrors.UnauthorizedError:
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, e.Error())
	case *domerrors.ForbiddenError:
		writeErr(w, http.StatusForbidden, ErrCodeForbidden, e.Error())
	case *domerrors.NotFoundError:
		writeErr(w, http.StatusNotFound, ErrCodeNotFound, e.Error())
	case *domerrors.ValidationError:
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   "validation failed",
			Code:    ErrCodeValidationFailed,
			Details: e.Errors,
		})
	case *domerrors.InternalError:
		log.Error().
			Err(e.Cause).
			Str("request_id", chimid.GetReqID(r.Context())).
			Str("operation", op).
			Msg(e.Message)
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
