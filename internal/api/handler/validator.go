package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// reservedChars may not appear in a username and at least one of them must
// appear in a new password.
const reservedChars = `/()"<>\{}`

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator with the username and special rules
// registered, ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	v := validator.New()
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("username", validUsername)
	_ = v.RegisterValidation("special", hasSpecialChar)
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

func validUsername(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return strings.TrimSpace(s) != "" && !strings.ContainsAny(s, reservedChars)
}

func hasSpecialChar(fl validator.FieldLevel) bool {
	return strings.ContainsAny(fl.Field().String(), reservedChars)
}

// fieldError converts a single ValidationError into a human-readable message.
// Values are never echoed back, since the field may be a password.
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte", "lte":
		return field + " is out of range"
	case "username":
		return fmt.Sprintf("%s must not be blank or contain any of %s", field, reservedChars)
	case "special":
		return fmt.Sprintf("%s must contain at least one of %s", field, reservedChars)
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
