package user

import (
	internalerrors "github.com/gatehouse/visitor-management/internal"
	"github.com/gatehouse/visitor-management/internal/auth"
	"github.com/gatehouse/visitor-management/internal/core/common/validation"
)

// UpdateUserDTO carries a partial update. Nil fields are left untouched.
type UpdateUserDTO struct {
	FirstName *string    `json:"firstName,omitempty"`
	LastName  *string    `json:"lastName,omitempty"`
	Role      *auth.Role `json:"role,omitempty"`
	IsActive  *bool      `json:"isActive,omitempty"`
}

func (d UpdateUserDTO) Validate() *internalerrors.AppError {
	v := validation.NewValidator()
	if d.FirstName != nil {
		v.Field("firstName", *d.FirstName).Required().MaxLength(100)
	}
	if d.LastName != nil {
		v.Field("lastName", *d.LastName).Required().MaxLength(100)
	}
	if d.Role != nil && !d.Role.Valid() {
		return internalerrors.NewValidationError("role must be one of admin, employee, receptionist", internalerrors.ErrCodeValidationFailed)
	}
	return v.Validate()
}

// Updates flattens the DTO into a column map for the repository.
func (d UpdateUserDTO) Updates() map[string]interface{} {
	updates := map[string]interface{}{}
	if d.FirstName != nil {
		updates["first_name"] = *d.FirstName
	}
	if d.LastName != nil {
		updates["last_name"] = *d.LastName
	}
	if d.Role != nil {
		updates["role"] = *d.Role
	}
	if d.IsActive != nil {
		updates["is_active"] = *d.IsActive
	}
	return updates
}

// ListQuery filters the user listing.
type ListQuery struct {
	Role   auth.Role
	Search string
}
