// Package handlers implements the boardroom HTTP API.
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
	"github.com/go-playground/validator/v10/non-standard/validators"
	"go.uber.org/zap"

	"boardroom-backend/internal/middleware"
	"boardroom-backend/pkg/api"
	appErrors "boardroom-backend/pkg/errors"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

var validate = newValidator()

// newValidator reports fields by their JSON names and adds "notblank".
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// decodeJSON reads and validates a JSON body into dst. Every failure is a
// validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return appErrors.NewValidation("request body is empty")
		}
		return appErrors.NewValidation("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return appErrors.NewValidation(describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required", "notblank":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}

// handleServiceError converts service errors to HTTP responses. Upstream
// rejections are handled by the caller, which knows the provider.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	fields := []zap.Field{
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("error_type", string(appErrors.TypeOf(err))),
		zap.Error(err),
	}

	switch {
	case appErrors.IsValidation(err):
		logger.Debug("validation error", fields...)
		api.Error(w, http.StatusBadRequest, validationMessage(err))
	case appErrors.IsBusy(err):
		logger.Info("busy", fields...)
		api.Error(w, http.StatusConflict, "A previous message is still being answered")
	default:
		logger.Error("request failed", fields...)
		api.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}

func validationMessage(err error) string {
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "invalid request"
}
