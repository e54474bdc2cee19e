package dto

// CreateAdminRequest payload for superadmin-created admin accounts.
type CreateAdminRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// UpdateRoleRequest payload.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// SetBanRequest payload.
type SetBanRequest struct {
	Banned bool `json:"banned"`
}

// UserListResponse is the admin user-listing envelope.
type UserListResponse struct {
	Data  []UserResponse `json:"data"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
