package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrorBody is the uniform error shape: a short human-readable message and,
// for validation failures, field-level error strings. Nothing internal leaks.
type ErrorBody struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorBody{Message: message})
}

// BindingError turns a gin binding failure into a 400 with per-field errors.
func BindingError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]string, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			fields = append(fields, fmt.Sprintf("%s failed on the %q rule", fieldErr.Field(), fieldErr.Tag()))
		}
		c.JSON(http.StatusBadRequest, ErrorBody{Message: "validation failed", Errors: fields})
		return
	}
	c.JSON(http.StatusBadRequest, ErrorBody{Message: "invalid request payload"})
}
