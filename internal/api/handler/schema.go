package handler

import "github.com/userhub/user-service/internal/core/domain"

// errorResponse is the error envelope used on 4xx responses that carry a body.
type errorResponse struct {
	Error string `json:"error"`
}

// usernameTakenMessage is returned by the availability check.
const usernameTakenMessage = "The username is already taken."

// notLoggedIn is the sentinel body sent instead of a principal.
const notLoggedIn = "0"

// --- Request types ---

type registerRequest struct {
	Username  string   `json:"username"  validate:"required,max=64"`
	Password  string   `json:"password"  validate:"required,max=72"`
	Email     string   `json:"email"     validate:"omitempty,email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Roles     []string `json:"roles"     validate:"omitempty,dive,required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// updateUserRequest is a partial user. Absent fields stay untouched and
// password is accepted but never applied.
type updateUserRequest struct {
	Username  *string  `json:"username"  validate:"omitempty,min=1,max=64"`
	Password  *string  `json:"password"`
	Email     *string  `json:"email"     validate:"omitempty,email"`
	FirstName *string  `json:"firstName"`
	LastName  *string  `json:"lastName"`
	Roles     []string `json:"roles"     validate:"omitempty,dive,required"`
}

func (r updateUserRequest) changes(allowRoles bool) domain.UserChanges {
	ch := domain.UserChanges{
		Username:  r.Username,
		Password:  r.Password,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
	if allowRoles {
		ch.Roles = r.Roles
	}
	return ch
}
