package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/userhub/identity-api/internal/core/domain"
	"github.com/userhub/identity-api/internal/core/ports"
)

const passwordSpecials = "@#$!%&*"

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// inputValidator runs go-playground/validator rules field by field so every
// violation of an input is reported together.
type inputValidator struct {
	v *validator.Validate
}

func newInputValidator() *inputValidator {
	v := validator.New()
	mustRegister(v, "password", validPassword)
	mustRegister(v, "isodate", validPastDate)
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return &inputValidator{v: v}
}

// mustRegister panics on a bad custom rule so the mistake fails at startup.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

var inputs = newInputValidator()

// rule binds a value to a validator tag under the field name callers see.
type rule struct {
	field string
	value any
	tag   string
}

func (iv *inputValidator) check(rules ...rule) []domain.FieldError {
	var out []domain.FieldError
	for _, r := range rules {
		err := iv.v.Var(r.value, r.tag)
		if err == nil {
			continue
		}
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			out = append(out, domain.FieldError{Field: r.field, Message: "is invalid"})
			continue
		}
		for _, fe := range ve {
			out = append(out, domain.FieldError{Field: r.field, Message: fieldMessage(fe)})
		}
	}
	return out
}

// ValidateRegister checks a registration request.
func ValidateRegister(in ports.RegisterInput) error {
	fields := inputs.check(
		rule{"username", in.Username, "required,min=3,max=50,username"},
		rule{"password", in.Password, "required,password"},
		rule{"firstname", in.FirstName, "required,max=100"},
		rule{"lastname", in.LastName, "required,max=100"},
		rule{"email", in.Email, "required,email,max=254"},
		rule{"birthdate", in.Birthdate, "required,isodate"},
		rule{"countryName", in.CountryName, "required"},
	)
	return asValidationError(fields)
}

// ValidateUpdate checks a profile update. The old password is only required
// when a new password is supplied.
func ValidateUpdate(in ports.UpdateInput) error {
	fields := inputs.check(
		rule{"password", in.Password, "omitempty,password"},
		rule{"firstname", in.FirstName, "required,max=100"},
		rule{"lastname", in.LastName, "required,max=100"},
		rule{"email", in.Email, "required,email,max=254"},
		rule{"birthdate", in.Birthdate, "required,isodate"},
		rule{"countryName", in.CountryName, "required"},
	)
	if in.Password != "" && in.OldPassword == "" {
		fields = append(fields, domain.FieldError{Field: "oldPassword", Message: "is required to change the password"})
	}
	return asValidationError(fields)
}

func asValidationError(fields []domain.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: fields}
}

// fieldMessage converts a single validator failure into a human-readable message.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "password":
		return "must be 8-72 characters with upper and lower case letters, a digit and one of " + passwordSpecials
	case "isodate":
		return "must be a past date in YYYY-MM-DD format"
	case "username":
		return "may only contain letters, digits, '.', '_' and '-'"
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}

func validPassword(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	if len(p) < 8 || len(p) > 72 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return lower && upper && digit && special
}

func validPastDate(fl validator.FieldLevel) bool {
	d, err := time.Parse(domain.DateLayout, fl.Field().String())
	if err != nil {
		return false
	}
	return d.Before(time.Now().UTC())
}

func parseDate(s string) time.Time {
	d, _ := time.Parse(domain.DateLayout, s)
	return d
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
