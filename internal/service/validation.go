package service

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/domain/entity"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidationError carries one message per rejected field. It is produced
// before any request is sent and matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func validateLogin(req entity.LoginRequest) error {
	var v ValidationError
	if strings.TrimSpace(req.Username) == "" {
		v.add("username", "Username is required")
	}
	if req.Password == "" {
		v.add("password", "Password is required")
	}
	return v.orNil()
}

func validateRegister(req entity.RegisterRequest) error {
	var v ValidationError

	switch {
	case strings.TrimSpace(req.Username) == "":
		v.add("username", "Username is required")
	case len(req.Username) < minUsernameLength:
		v.add("username", "Username must be at least 3 characters")
	}

	switch {
	case strings.TrimSpace(req.Email) == "":
		v.add("email", "Email is required")
	case !emailPattern.MatchString(req.Email):
		v.add("email", "Please enter a valid email")
	}

	if strings.TrimSpace(req.FirstName) == "" {
		v.add("first_name", "First name is required")
	}
	if strings.TrimSpace(req.LastName) == "" {
		v.add("last_name", "Last name is required")
	}

	switch {
	case req.Password == "":
		v.add("password", "Password is required")
	case len(req.Password) < minPasswordLength:
		v.add("password", "Password must be at least 8 characters")
	}
	if req.Password != req.PasswordConfirm {
		v.add("password_confirm", "Passwords do not match")
	}

	return v.orNil()
}

func validateProfileUpdate(upd entity.ProfileUpdate) error {
	var v ValidationError
	if upd.Email != "" && !emailPattern.MatchString(upd.Email) {
		v.add("email", "Please enter a valid email")
	}
	if upd.FirstName == "" && upd.LastName == "" && upd.Email == "" {
		v.add("profile", "Nothing to update")
	}
	return v.orNil()
}
