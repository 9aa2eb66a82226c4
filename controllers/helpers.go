package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"quill/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelError   = "error"
)

// Response is the envelope every endpoint answers with. Empty fields are
// omitted.
type Response struct {
	Data     interface{}         `json:"data,omitempty"`
	Message  string              `json:"message,omitempty"`
	Level    string              `json:"level,omitempty"`
	Errors   map[string][]string `json:"errors,omitempty"`
	Form     interface{}         `json:"form,omitempty"`
	Redirect string              `json:"redirect,omitempty"`
}

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var registerOnce sync.Once

// RegisterValidators teaches gin's validator the custom tags used by the
// request types and makes field errors use json names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		}); err != nil {
			slog.Error("failed to register username validator", "error", err)
		}
	})
}

// bind decodes the body (json, form or multipart by content type) into req
// and answers 400 with per-field errors when it fails. echo, when set,
// replaces req as the form sent back, so secrets can be left out.
func bind(c *gin.Context, req interface{}, message string, echo func() interface{}) bool {
	if err := c.ShouldBind(req); err != nil {
		form := req
		if echo != nil {
			form = echo()
		}
		c.JSON(http.StatusBadRequest, Response{
			Message: message,
			Level:   LevelError,
			Errors:  fieldErrors(err),
			Form:    form,
		})
		return false
	}
	return true
}

func fieldErrors(err error) map[string][]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string][]string{"__all__": {"Invalid request body."}}
	}
	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = append(fields[fe.Field()], fieldMessage(fe))
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "oneof":
		return "Select a valid choice."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	}
	return "Enter a valid value."
}

// summarize flattens field errors into "Field: msg; Other: msg".
func summarize(fields map[string][]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		label := "Form"
		if name != "__all__" {
			label = strings.ToUpper(name[:1]) + name[1:]
		}
		parts = append(parts, fmt.Sprintf("%s: %s", label, strings.Join(fields[name], ", ")))
	}
	return strings.Join(parts, "; ")
}

// fail maps a service error onto its status and envelope. Unknown errors
// are attached to the context for ErrorHandler.
func fail(c *gin.Context, err error, form interface{}) {
	if verr, ok := services.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, Response{
			Message: "Please correct the errors below.",
			Level:   LevelError,
			Errors:  verr.Fields,
			Form:    form,
		})
		return
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Message: "Not found.", Level: LevelError})
	case errors.Is(err, services.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, Response{Message: "You do not have permission to perform this action.", Level: LevelError})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, Response{Message: "Invalid username or password.", Level: LevelError, Form: form})
	default:
		_ = c.Error(err)
	}
}

// handle strips the leading "@" of a /@username/ path segment.
func handle(c *gin.Context, param string) (string, bool) {
	raw := c.Param(param)
	if !strings.HasPrefix(raw, "@") || len(raw) == 1 {
		c.JSON(http.StatusNotFound, Response{Message: "Not found.", Level: LevelError})
		return "", false
	}
	return raw[1:], true
}

func redirectTo(c *gin.Context, status int, location string, resp Response) {
	resp.Redirect = location
	if status >= 300 && status < 400 {
		c.Header("Location", location)
	}
	c.JSON(status, resp)
}
