package auth

import (
	errors "github.com/gatehouse/visitor-management/internal"
	"github.com/gatehouse/visitor-management/internal/core/common/validation"
)

type RegisterDTO struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role,omitempty"`
}

func (d RegisterDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required().MinLength(6)
	v.Field("firstName", d.FirstName).Required().MaxLength(100)
	v.Field("lastName", d.LastName).Required().MaxLength(100)
	if err := v.Validate(); err != nil {
		return err
	}
	if d.Role != "" && !d.Role.Valid() {
		return errors.NewValidationError("role must be one of admin, employee, receptionist", errors.ErrCodeValidationFailed)
	}
	return nil
}

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required()
	v.Field("password", d.Password).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken"`
}

func (d RefreshTokenDTO) Validate() error {
	if d.RefreshToken == "" {
		return errors.NewValidationError("Refresh token is required", errors.ErrCodeValidationFailed)
	}
	return nil
}

// AuthResponse is the register/login payload: the user plus its token pair.
type AuthResponse struct {
	User         *Account `json:"user"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}
