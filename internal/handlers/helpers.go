package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"stock-backend/internal/apperrors"
	"stock-backend/internal/logging"
	"stock-backend/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and runs struct validation on it
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.ErrValidation("Invalid request body").WithDetail("body", err.Error())
	}
	return validateStruct(dst, "")
}

// validateStruct maps validator failures to a VALIDATION_ERROR with one detail per field.
// prefix is prepended to field paths, e.g. "items[2]".
func validateStruct(v any, prefix string) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.ErrValidation(err.Error())
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Namespace()
		// drop the struct name
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		if prefix != "" {
			field = prefix + "." + field
		}
		details[field] = fieldMessage(fe)
	}
	return apperrors.ErrValidationWithFields("Validation failed", details)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email"
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

// pathID reads the {id} route variable
func pathID(r *http.Request) (int, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apperrors.ErrValidation("Invalid id").WithDetail("id", raw)
	}
	return id, nil
}

// writeError renders err in the error envelope. Errors without an application
// code are logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code == apperrors.CodeInternalError {
		logging.FromContext(r.Context(), nil).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		utils.Error(w, apperrors.ErrInternal(""))
		return
	}
	utils.Error(w, appErr)
}
