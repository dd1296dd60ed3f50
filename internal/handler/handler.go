package handler

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apperrors "github.com/medicare/pharmacy-api/pkg/errors"
)

var cnicPattern = regexp.MustCompile(`^\d{5}-\d{7}-\d{1}$`)

// RegisterValidators installs custom binding rules on gin's validator engine.
// Call once at startup before routes are served.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("cnic", func(fl validator.FieldLevel) bool {
			return cnicPattern.MatchString(fl.Field().String())
		})
	}
}

// BindJSON binds and validates the request body, translating validator
// failures into the per-field validation error shape.
func BindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		var verrs validator.ValidationErrors
		if ok := asValidationErrors(err, &verrs); ok {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[strings.ToLower(fe.Field())] = validationMessage(fe)
			}
			return apperrors.Validation("validation failed", fields)
		}
		return apperrors.Validation(err.Error(), nil)
	}
	return nil
}

// ParseUUIDParam parses a path parameter as a UUID.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid "+name, map[string]string{
			name: "must be a valid uuid",
		})
	}
	return id, nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters or items"
	case "len":
		return "must have exactly " + fe.Param() + " entries"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "cnic":
		return "must match the format 12345-1234567-1"
	default:
		return "is invalid"
	}
}
