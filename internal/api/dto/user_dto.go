package dto

import (
	"time"

	"github.com/spec-kit/user-service/internal/domain"
)

// UserCreateRequest payload for new users.
type UserCreateRequest struct {
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	Bio             *string `json:"bio"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirm_password"`
}

// UserUpdateRequest payload for partial updates. Absent fields stay untouched.
type UserUpdateRequest struct {
	Username        *string `json:"username"`
	Email           *string `json:"email"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	Bio             *string `json:"bio"`
	Password        *string `json:"password"`
	ConfirmPassword *string `json:"confirm_password"`
}

// StatusChangeRequest payload for status transitions.
type StatusChangeRequest struct {
	Status string `json:"status"`
}

// UserResponse is the public user representation. The password hash never
// leaves the service.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName *string   `json:"first_name,omitempty"`
	LastName  *string   `json:"last_name,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserResponse maps a domain user to its public shape.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Bio:       user.Bio,
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// NewUserResponses maps a slice of domain users.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

// UserListResponse wraps a paginated listing.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Count int            `json:"count"`
	Skip  int            `json:"skip"`
	Limit int            `json:"limit"`
}

// StatsResponse carries aggregate per-status counts.
type StatsResponse struct {
	TotalUsers     int64 `json:"total_users"`
	ActiveUsers    int64 `json:"active_users"`
	SuspendedUsers int64 `json:"suspended_users"`
	DeletedUsers   int64 `json:"deleted_users"`
}

// NewStatsResponse maps domain stats.
func NewStatsResponse(stats domain.UserStats) StatsResponse {
	return StatsResponse{
		TotalUsers:     stats.Total,
		ActiveUsers:    stats.Active,
		SuspendedUsers: stats.Suspended,
		DeletedUsers:   stats.Deleted,
	}
}

// MessageResponse is a plain confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}
