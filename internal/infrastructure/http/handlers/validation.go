package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domerrors "github.com/rejoanahmed/starter-template-sub001/internal/domain/errors"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs struct tags and reports failures as a ValidationError keyed by JSON field name.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domerrors.NewInternal("validate request", err)
	}
	out := make([]domerrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, domerrors.FieldError{Field: fieldPath(fe), Message: tagMessage(fe)})
	}
	return domerrors.NewValidation(out...)
}

// fieldPath drops the top-level struct name: "createIssueRequest.label_ids[0]" becomes "label_ids[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "hexcolor":
		return "must be a hex color"
	default:
		return "is invalid"
	}
}

// decodeBody reads a JSON body into dst. Malformed input is reported as a plain error for a 400.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return domerrors.NewValidation(domerrors.FieldError{Field: typeErr.Field, Message: "has the wrong type"})
		}
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("malformed JSON: %w", err)
	}
	return nil
}

// writeDecodeError answers a decodeBody failure: 422 for typed field errors, 400 otherwise.
func writeDecodeError(w http.ResponseWriter, err error) {
	var verr *domerrors.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   "validation failed",
			Code:    ErrCodeValidationFailed,
			Details: verr.Errors,
		})
		return
	}
	writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
}
