package httpapi

import (
	"errors"
	"regexp"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

var usernameAlphanumeric = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// SignupRequest is the registration payload
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
}

// Validate will run validation rules
func (r SignupRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(
				&r.Username,
				validation.Required,
				validation.Length(10, 20),
				validation.Match(usernameAlphanumeric),
			),
			validation.Field(
				&r.Password,
				validation.Required,
				validation.Length(10, 0),
				validation.By(validatePasswordClasses),
			),
			validation.Field(&r.Name, validation.Required),
			validation.Field(&r.Email, validation.Required, is.Email),
		)
	}, "Invalid signup request payload")
}

// LoginRequest is the credential payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Username, validation.Required),
			validation.Field(&r.Password, validation.Required),
		)
	}, "Invalid login request payload")
}

// RefreshRequest carries the opaque refresh token presented for rotation
type RefreshRequest struct {
	Username     string `json:"username"`
	RefreshToken string `json:"refreshToken"`
}

// Validate will run validation rules
func (r RefreshRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Username, validation.Required),
			validation.Field(&r.RefreshToken, validation.Required),
		)
	}, "Invalid refresh request payload")
}

// ResignRequest confirms the password before closing the account
type ResignRequest struct {
	Password string `json:"password"`
}

// Validate will run validation rules
func (r ResignRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Password, validation.Required),
		)
	}, "Invalid resign request payload")
}

// ProfileUpdateRequest carries the editable profile fields. A password change
// is optional and requires the current password alongside the new one.
type ProfileUpdateRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Bio             string `json:"bio"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Validate will run validation rules
func (r ProfileUpdateRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Name, validation.Required),
			validation.Field(&r.Email, validation.Required, is.Email),
			validation.Field(
				&r.NewPassword,
				validation.Length(10, 0),
				validation.By(optionalPasswordClasses),
			),
			validation.Field(&r.CurrentPassword, validation.By(r.requiredForPasswordChange)),
		)
	}, "Invalid profile request payload")
}

func (r ProfileUpdateRequest) requiredForPasswordChange(value any) error {
	current, _ := value.(string)
	if r.NewPassword != "" && current == "" {
		return errors.New("current password is required to change the password")
	}
	return nil
}

// PostRequest is the payload for creating or editing a post
type PostRequest struct {
	Contents string `json:"contents"`
}

// Validate will run validation rules
func (r PostRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Contents, validation.Required),
		)
	}, "Invalid post request payload")
}

// CommentRequest is the payload for creating or editing a comment
type CommentRequest struct {
	Contents string `json:"contents"`
}

// Validate will run validation rules
func (r CommentRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Contents, validation.Required),
		)
	}, "Invalid comment request payload")
}

// validatePasswordClasses requires at least one letter, one digit and one
// special character. RE2 has no lookahead, so the classes are counted by hand.
func validatePasswordClasses(value any) error {
	s, _ := value.(string)

	var hasLetter, hasDigit, hasSpecial bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsSpace(r):
			hasSpecial = true
		}
	}

	if !hasLetter || !hasDigit || !hasSpecial {
		return errors.New("must contain letters, digits and special characters")
	}

	return nil
}

// optionalPasswordClasses applies the character-class rule only when a value
// is present, for payloads where the password change itself is optional.
func optionalPasswordClasses(value any) error {
	if s, _ := value.(string); s == "" {
		return nil
	}
	return validatePasswordClasses(value)
}
