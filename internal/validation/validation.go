// Package validation checks shape and semantic constraints of user payloads.
// It is pure: no storage access, no logging. Failures enumerate every
// violated field rather than stopping at the first.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	UsernameMinLen = 3
	UsernameMaxLen = 50
	NameMaxLen     = 100
	BioMaxLen      = 500
	PasswordMinLen = 8
	PasswordMaxLen = 128
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// CreateInput is a creation payload before normalization.
type CreateInput struct {
	Username        string
	Email           string
	FirstName       *string
	LastName        *string
	Bio             *string
	Password        string
	ConfirmPassword string
}

// UpdateInput is a partial update payload. Nil fields are untouched.
type UpdateInput struct {
	Username        *string
	Email           *string
	FirstName       *string
	LastName        *string
	Bio             *string
	Password        *string
	ConfirmPassword *string
}

// Empty reports whether the update carries no fields at all.
func (in UpdateInput) Empty() bool {
	return in.Username == nil && in.Email == nil && in.FirstName == nil &&
		in.LastName == nil && in.Bio == nil && in.Password == nil
}

// FieldErrors maps field names to violation messages.
type FieldErrors map[string]string

// Details converts field errors into the error-detail payload shape.
func (fe FieldErrors) Details() map[string]any {
	out := make(map[string]any, len(fe))
	for field, msg := range fe {
		out[field] = msg
	}
	return out
}

// ValidateCreate checks a creation payload and normalizes it in place:
// username and email are lowercased and trimmed.
func ValidateCreate(in *CreateInput) FieldErrors {
	errs := FieldErrors{}

	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	if msg := checkUsername(in.Username); msg != "" {
		errs["username"] = msg
	}

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if msg := checkEmail(in.Email); msg != "" {
		errs["email"] = msg
	}

	checkOptionalName(errs, "first_name", in.FirstName)
	checkOptionalName(errs, "last_name", in.LastName)
	checkBio(errs, in.Bio)

	if in.Password == "" {
		errs["password"] = "password is required"
	} else if msg := checkPasswordStrength(in.Password); msg != "" {
		errs["password"] = msg
	}
	if in.ConfirmPassword == "" {
		errs["confirm_password"] = "password confirmation is required"
	} else if in.Password != "" && in.Password != in.ConfirmPassword {
		errs["confirm_password"] = "passwords do not match"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateUpdate checks only the supplied fields of a partial update and
// normalizes username/email when present.
func ValidateUpdate(in *UpdateInput) FieldErrors {
	errs := FieldErrors{}

	if in.Username != nil {
		normalized := strings.ToLower(strings.TrimSpace(*in.Username))
		in.Username = &normalized
		if msg := checkUsername(normalized); msg != "" {
			errs["username"] = msg
		}
	}
	if in.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*in.Email))
		in.Email = &normalized
		if msg := checkEmail(normalized); msg != "" {
			errs["email"] = msg
		}
	}
	checkOptionalName(errs, "first_name", in.FirstName)
	checkOptionalName(errs, "last_name", in.LastName)
	checkBio(errs, in.Bio)

	if in.Password != nil {
		if msg := checkPasswordStrength(*in.Password); msg != "" {
			errs["password"] = msg
		}
		if in.ConfirmPassword == nil || *in.Password != *in.ConfirmPassword {
			errs["confirm_password"] = "passwords do not match"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func checkUsername(username string) string {
	if username == "" {
		return "username is required"
	}
	if len(username) < UsernameMinLen || len(username) > UsernameMaxLen {
		return fmt.Sprintf("username must be between %d and %d characters", UsernameMinLen, UsernameMaxLen)
	}
	if !usernameRe.MatchString(username) {
		return "username must contain only letters, numbers, underscores, and hyphens"
	}
	return ""
}

func checkEmail(email string) string {
	if email == "" {
		return "email is required"
	}
	if !emailRe.MatchString(email) {
		return "email is not a valid address"
	}
	return ""
}

func checkOptionalName(errs FieldErrors, field string, value *string) {
	if value == nil {
		return
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" || len(trimmed) > NameMaxLen {
		errs[field] = fmt.Sprintf("%s must be between 1 and %d characters", field, NameMaxLen)
	}
}

func checkBio(errs FieldErrors, bio *string) {
	if bio != nil && len(*bio) > BioMaxLen {
		errs["bio"] = fmt.Sprintf("bio must be at most %d characters", BioMaxLen)
	}
}

func checkPasswordStrength(password string) string {
	if len(password) < PasswordMinLen {
		return fmt.Sprintf("password must be at least %d characters long", PasswordMinLen)
	}
	if len(password) > PasswordMaxLen {
		return fmt.Sprintf("password must be at most %d characters long", PasswordMaxLen)
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(`!@#$%^&*(),.?":{}|<>`, r):
			special = true
		}
	}
	switch {
	case !upper:
		return "password must contain at least one uppercase letter"
	case !lower:
		return "password must contain at least one lowercase letter"
	case !digit:
		return "password must contain at least one digit"
	case !special:
		return "password must contain at least one special character"
	}
	return ""
}
